package assist

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/bankql/bankql/internal/gemini"
	"github.com/bankql/bankql/internal/log"
)

// fakeGenerator scripts the two model invocations.
type fakeGenerator struct {
	directiveText string
	directiveErr  error
	model         string

	summaryText string
	summaryErr  error

	generateCalls     int
	generateWithCalls int
	summaryModel      string
	summaryPrompt     string
}

func (f *fakeGenerator) Generate(_ context.Context, _, _ string, _ float32) (gemini.Generation, error) {
	f.generateCalls++
	if f.directiveErr != nil {
		return gemini.Generation{}, f.directiveErr
	}
	model := f.model
	if model == "" {
		model = "model-a"
	}
	return gemini.Generation{Text: f.directiveText, Model: model}, nil
}

func (f *fakeGenerator) GenerateWith(_ context.Context, model, prompt string, _ float32) (string, error) {
	f.generateWithCalls++
	f.summaryModel = model
	f.summaryPrompt = prompt
	if f.summaryErr != nil {
		return "", f.summaryErr
	}
	return f.summaryText, nil
}

// fakeDatastore records aggregation calls.
type fakeDatastore struct {
	records []map[string]string
	err     error

	calls      int
	collection string
	pipeline   bson.A
}

func (f *fakeDatastore) Aggregate(_ context.Context, collection string, pipeline bson.A) ([]map[string]string, error) {
	f.calls++
	f.collection = collection
	f.pipeline = pipeline
	return f.records, f.err
}

func newService(gen Generator, db Datastore) *Service {
	return New(gen, db, Options{}, log.NewNop())
}

func TestChat_NoDatabase(t *testing.T) {
	gen := &fakeGenerator{}
	svc := New(gen, nil, Options{}, log.NewNop())

	reply := svc.Chat(context.Background(), "total deposits")

	assert.Contains(t, reply.Response, "DATABASE_URL")
	assert.Nil(t, reply.Data)
	assert.Zero(t, gen.generateCalls, "no model call without a database")
}

func TestChat_NoModel(t *testing.T) {
	db := &fakeDatastore{}
	svc := New(nil, db, Options{}, log.NewNop())

	reply := svc.Chat(context.Background(), "total deposits")

	assert.Contains(t, reply.Response, "GEMINI_API_KEY")
	assert.Zero(t, db.calls)
}

func TestChat_Conversation(t *testing.T) {
	gen := &fakeGenerator{directiveText: `{"type":"conversation","message":"Hi"}`}
	db := &fakeDatastore{}
	svc := newService(gen, db)

	reply := svc.Chat(context.Background(), "hello")

	assert.Equal(t, "Hi", reply.Response)
	assert.Nil(t, reply.Data)
	assert.Zero(t, db.calls, "conversational replies make no database call")
	assert.Zero(t, gen.generateWithCalls, "conversational replies are not summarized")
}

func TestChat_QueryDirective(t *testing.T) {
	gen := &fakeGenerator{
		directiveText: "```json\n" + `{"collection":"accounts","pipeline":[{"$group":{"_id":null,"totalBalance":{"$sum":"$balance"}}}]}` + "\n```",
		model:         "model-b",
		summaryText:   "The total balance across all accounts is 350.",
	}
	db := &fakeDatastore{records: []map[string]string{{"totalBalance": "350"}}}
	svc := newService(gen, db)

	reply := svc.Chat(context.Background(), "Show me the total balance of all accounts")

	assert.Equal(t, "The total balance across all accounts is 350.", reply.Response)
	assert.Equal(t, []map[string]string{{"totalBalance": "350"}}, reply.Data)

	assert.Equal(t, "accounts", db.collection)
	require.Len(t, db.pipeline, 1)

	// Summarization reuses the model that produced the directive.
	assert.Equal(t, "model-b", gen.summaryModel)
	assert.Contains(t, gen.summaryPrompt, "Show me the total balance of all accounts")
	assert.Contains(t, gen.summaryPrompt, `"totalBalance":"350"`)
}

func TestChat_EmptyResults(t *testing.T) {
	gen := &fakeGenerator{
		directiveText: `{"collection":"loans","pipeline":[{"$match":{"status":"overdue"}}]}`,
	}
	db := &fakeDatastore{records: nil}
	svc := newService(gen, db)

	reply := svc.Chat(context.Background(), "overdue loans")

	assert.Equal(t, "No results found for your query in the loans collection.", reply.Response)
	data, ok := reply.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, db.pipeline, data["query"], "empty-result replies echo the executed pipeline")
	assert.Zero(t, gen.generateWithCalls, "nothing to summarize")
}

func TestChat_ModelsExhausted(t *testing.T) {
	gen := &fakeGenerator{directiveErr: gemini.ErrModelsExhausted}
	db := &fakeDatastore{}
	svc := newService(gen, db)

	reply := svc.Chat(context.Background(), "total deposits")

	assert.Contains(t, reply.Response, "exceeded their quota")
	assert.Nil(t, reply.Data)
	assert.Zero(t, db.calls)
}

func TestChat_UnexpectedProviderError(t *testing.T) {
	gen := &fakeGenerator{directiveErr: errors.New("API key not valid")}
	svc := newService(gen, &fakeDatastore{})

	reply := svc.Chat(context.Background(), "total deposits")

	assert.True(t, strings.HasPrefix(reply.Response, "An error occurred:"), "got %q", reply.Response)
	assert.Contains(t, reply.Response, "API key not valid")
}

func TestChat_ParseFailure(t *testing.T) {
	raw := "I would query the accounts collection for you"
	gen := &fakeGenerator{directiveText: raw}
	db := &fakeDatastore{}
	svc := newService(gen, db)

	reply := svc.Chat(context.Background(), "total deposits")

	assert.Contains(t, reply.Response, "Failed to parse response")
	assert.Contains(t, reply.Response, raw, "advisory embeds the raw model output")
	assert.Zero(t, db.calls, "parse failures issue no database call")
}

func TestChat_MissingDirectiveFields(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{name: "no pipeline", text: `{"collection":"accounts"}`},
		{name: "no collection", text: `{"pipeline":[{"$match":{}}]}`},
		{name: "empty pipeline", text: `{"collection":"accounts","pipeline":[]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &fakeGenerator{directiveText: tt.text}
			db := &fakeDatastore{}
			svc := newService(gen, db)

			reply := svc.Chat(context.Background(), "q")

			assert.Equal(t, msgNoIntent, reply.Response)
			assert.Zero(t, db.calls)
		})
	}
}

func TestChat_ExecutionFailure(t *testing.T) {
	gen := &fakeGenerator{directiveText: `{"collection":"accounts","pipeline":[{"$bogus":{}}]}`}
	db := &fakeDatastore{err: errors.New("unknown top level operator $bogus")}
	svc := newService(gen, db)

	reply := svc.Chat(context.Background(), "q")

	assert.Contains(t, reply.Response, "An error occurred:")
	assert.Contains(t, reply.Response, "$bogus")
	assert.Nil(t, reply.Data)
}

func TestChat_SummarizerFailure(t *testing.T) {
	gen := &fakeGenerator{
		directiveText: `{"collection":"accounts","pipeline":[{"$match":{}}]}`,
		summaryErr:    errors.New("503 Service Unavailable"),
	}
	db := &fakeDatastore{records: []map[string]string{{"balance": "100"}}}
	svc := newService(gen, db)

	reply := svc.Chat(context.Background(), "q")

	assert.Contains(t, reply.Response, "An error occurred:")
}

func TestSummaryPrompt_TruncatesToLimit(t *testing.T) {
	records := make([]map[string]string, 25)
	for i := range records {
		records[i] = map[string]string{"n": fmt.Sprint(i)}
	}

	p, err := summaryPrompt("how many?", records, 10)
	require.NoError(t, err)

	assert.Contains(t, p, "showing first 10 items out of 25 total")
	assert.Contains(t, p, `{"n":"9"}`)
	assert.NotContains(t, p, `{"n":"10"}`, "records past the limit are not shown to the model")
}

func TestSummaryPrompt_FewerThanLimit(t *testing.T) {
	records := []map[string]string{{"totalBalance": "350"}}

	p, err := summaryPrompt("total balance?", records, 10)
	require.NoError(t, err)

	assert.Contains(t, p, "showing first 1 items out of 1 total")
	assert.Contains(t, p, `"total balance?"`)
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()

	assert.InDelta(t, 0.7, opts.DirectiveTemperature, 0.001)
	assert.InDelta(t, 0.3, opts.SummaryTemperature, 0.001)
	assert.Equal(t, 10, opts.SummaryLimit)
}
