package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/bankql/bankql/internal/assist"
	"github.com/bankql/bankql/internal/gemini"
	"github.com/bankql/bankql/internal/log"
)

// scriptedGenerator returns fixed model output.
type scriptedGenerator struct {
	text string
}

func (g *scriptedGenerator) Generate(context.Context, string, string, float32) (gemini.Generation, error) {
	return gemini.Generation{Text: g.text, Model: "model-a"}, nil
}

func (g *scriptedGenerator) GenerateWith(context.Context, string, string, float32) (string, error) {
	return "summary", nil
}

type noopDatastore struct{}

func (noopDatastore) Aggregate(context.Context, string, bson.A) ([]map[string]string, error) {
	return nil, nil
}

func newTestServer(t *testing.T, gen assist.Generator, db assist.Datastore) http.Handler {
	t.Helper()
	svc := assist.New(gen, db, assist.Options{}, log.NewNop())
	srv, err := NewServer(ServerConfig{
		Logger:      log.NewNop(),
		Assist:      svc,
		CORSOrigins: []string{"*"},
	})
	require.NoError(t, err)
	return srv.Handler()
}

func TestNewServer_RequiresAssist(t *testing.T) {
	_, err := NewServer(ServerConfig{})
	require.Error(t, err)
}

func TestChat_Conversation(t *testing.T) {
	gen := &scriptedGenerator{text: `{"type":"conversation","message":"Hello!"}`}
	handler := newTestServer(t, gen, noopDatastore{})

	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"message":"hi"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var reply assist.Reply
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reply))
	assert.Equal(t, "Hello!", reply.Response)
	assert.Nil(t, reply.Data)
}

func TestChat_AdvisoryFailuresAre200(t *testing.T) {
	// No datastore wired: the service answers with an advisory, not an
	// HTTP error.
	handler := newTestServer(t, &scriptedGenerator{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"message":"total deposits"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var reply assist.Reply
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reply))
	assert.Contains(t, reply.Response, "DATABASE_URL")
}

func TestChat_MalformedBody(t *testing.T) {
	handler := newTestServer(t, &scriptedGenerator{}, noopDatastore{})

	tests := []struct {
		name string
		body string
	}{
		{name: "invalid json", body: `{"message":`},
		{name: "empty body", body: ""},
		{name: "missing message", body: `{}`},
		{name: "empty message", body: `{"message":""}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestChat_MethodNotAllowed(t *testing.T) {
	handler := newTestServer(t, &scriptedGenerator{}, noopDatastore{})

	req := httptest.NewRequest(http.MethodGet, "/chat", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHealth_Degraded(t *testing.T) {
	// No store and no model client: both readiness flags are down.
	handler := newTestServer(t, &scriptedGenerator{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var report healthReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, "degraded", report.Status)
	assert.False(t, report.GeminiReady)
	assert.False(t, report.MongoDBConnected)
	assert.NotNil(t, report.AvailableCollections)
	assert.Empty(t, report.AvailableCollections)
}

func TestSchemas(t *testing.T) {
	handler := newTestServer(t, &scriptedGenerator{}, noopDatastore{})

	req := httptest.NewRequest(http.MethodGet, "/schemas", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var schemas map[string]struct {
		Fields      []string `json:"fields"`
		Description string   `json:"description"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &schemas))

	for _, name := range []string{"profiles", "accounts", "transactions", "loans", "emipayments"} {
		s, ok := schemas[name]
		assert.True(t, ok, "collection %s missing", name)
		assert.NotEmpty(t, s.Fields)
	}
}

func TestDebugTransactions_NoDatabase(t *testing.T) {
	handler := newTestServer(t, &scriptedGenerator{}, noopDatastore{})

	req := httptest.NewRequest(http.MethodGet, "/debug/transactions", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	// Debug endpoint follows the advisory contract too.
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Database not connected", body["error"])
}

func TestMetricsEndpoint(t *testing.T) {
	handler := newTestServer(t, &scriptedGenerator{}, noopDatastore{})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequestIDHeader(t *testing.T) {
	handler := newTestServer(t, &scriptedGenerator{}, noopDatastore{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestCORSPreflight(t *testing.T) {
	handler := newTestServer(t, &scriptedGenerator{}, noopDatastore{})

	req := httptest.NewRequest(http.MethodOptions, "/chat", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}
