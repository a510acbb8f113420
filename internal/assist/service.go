// Package assist orchestrates one chat request end to end: directive
// generation via the model dispatcher, directive interpretation, read-only
// pipeline execution, and result summarization.
//
// Every handled failure converges to an advisory Reply with a
// human-readable response string; the HTTP layer never signals these via
// status codes. Control flow is strictly linear per request and no
// conversation state survives the request.
package assist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/bankql/bankql/internal/gemini"
	"github.com/bankql/bankql/internal/observability"
	"github.com/bankql/bankql/internal/prompt"
)

// Advisory messages for handled failure modes.
const (
	msgNoDatabase = "The AI Banking Assistant is not connected to the database. Please check your DATABASE_URL environment variable."
	msgNoModel    = "The AI Banking Assistant is not correctly initialized. Please check your GEMINI_API_KEY."
	msgExhausted  = "All Gemini models have exceeded their quota. Please try again later or check your API key quota at https://ai.dev/rate-limit."
	msgNoIntent   = "Sorry, I couldn't understand how to query the database for that."
)

// Generator is the model dispatcher consumed by the service.
type Generator interface {
	// Generate runs the prompt through the candidate model list.
	Generate(ctx context.Context, system, prompt string, temperature float32) (gemini.Generation, error)
	// GenerateWith invokes one specific model with no fallback.
	GenerateWith(ctx context.Context, model, prompt string, temperature float32) (string, error)
}

// Datastore executes a read-only aggregation pipeline.
type Datastore interface {
	Aggregate(ctx context.Context, collection string, pipeline bson.A) ([]map[string]string, error)
}

// Reply is the user-facing result of one chat request. Data is null for
// conversational and advisory replies.
type Reply struct {
	Response string `json:"response"`
	Data     any    `json:"data"`
}

// Options tunes the two model invocations.
type Options struct {
	// DirectiveTemperature is used for directive generation.
	DirectiveTemperature float32
	// SummaryTemperature is used for result summarization; lower to favor
	// determinism.
	SummaryTemperature float32
	// SummaryLimit caps how many records are shown to the summarizer. The
	// full record set is still attached to the reply.
	SummaryLimit int
}

// DefaultOptions returns the standard tuning.
func DefaultOptions() Options {
	return Options{
		DirectiveTemperature: 0.7,
		SummaryTemperature:   0.3,
		SummaryLimit:         10,
	}
}

// Service handles chat requests. gen and db may each be nil when the
// corresponding configuration is absent; the affected requests degrade to
// advisory replies instead of failing startup.
type Service struct {
	gen    Generator
	db     Datastore
	opts   Options
	logger *slog.Logger
}

// New creates a Service. Zero-valued Options fields are filled with
// defaults.
func New(gen Generator, db Datastore, opts Options, logger *slog.Logger) *Service {
	def := DefaultOptions()
	if opts.DirectiveTemperature == 0 {
		opts.DirectiveTemperature = def.DirectiveTemperature
	}
	if opts.SummaryTemperature == 0 {
		opts.SummaryTemperature = def.SummaryTemperature
	}
	if opts.SummaryLimit <= 0 {
		opts.SummaryLimit = def.SummaryLimit
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{gen: gen, db: db, opts: opts, logger: logger}
}

// Chat handles one user message and always returns a renderable Reply.
func (s *Service) Chat(ctx context.Context, message string) Reply {
	if s.db == nil {
		observability.RecordChatRequest("no_database")
		return Reply{Response: msgNoDatabase}
	}
	if s.gen == nil {
		observability.RecordChatRequest("no_model")
		return Reply{Response: msgNoModel}
	}

	gen, err := s.gen.Generate(ctx, prompt.System, message, s.opts.DirectiveTemperature)
	if err != nil {
		if errors.Is(err, gemini.ErrModelsExhausted) {
			observability.RecordChatRequest("exhausted")
			return Reply{Response: msgExhausted}
		}
		observability.RecordChatRequest("error")
		s.logger.Error("directive generation failed", "error", err)
		return Reply{Response: fmt.Sprintf("An error occurred: %v", err)}
	}

	cleaned := stripFences(gen.Text)
	directive, err := parseDirective(cleaned)
	if err != nil {
		observability.RecordChatRequest("parse_error")
		s.logger.Warn("model output is not valid JSON", "model", gen.Model, "raw", cleaned)
		return Reply{Response: fmt.Sprintf("AI Error: Failed to parse response. Raw: %s", cleaned)}
	}

	if directive.IsConversation() {
		observability.RecordChatRequest("conversation")
		return Reply{Response: directive.Message}
	}

	if directive.Collection == "" || len(directive.Pipeline) == 0 {
		observability.RecordChatRequest("no_intent")
		return Reply{Response: msgNoIntent}
	}

	s.logger.Info("executing pipeline",
		"collection", directive.Collection,
		"model", gen.Model,
		"stages", len(directive.Pipeline),
	)

	records, err := s.db.Aggregate(ctx, directive.Collection, directive.Pipeline)
	if err != nil {
		observability.RecordChatRequest("error")
		s.logger.Error("pipeline execution failed", "collection", directive.Collection, "error", err)
		return Reply{Response: fmt.Sprintf("An error occurred: %v", err)}
	}

	if len(records) == 0 {
		observability.RecordChatRequest("empty")
		return Reply{
			Response: fmt.Sprintf("No results found for your query in the %s collection.", directive.Collection),
			Data:     map[string]any{"query": directive.Pipeline},
		}
	}

	summary, err := s.summarize(ctx, gen.Model, message, records)
	if err != nil {
		observability.RecordChatRequest("error")
		s.logger.Error("summarization failed", "model", gen.Model, "error", err)
		return Reply{Response: fmt.Sprintf("An error occurred: %v", err)}
	}

	observability.RecordChatRequest("answered")
	return Reply{Response: summary, Data: records}
}
