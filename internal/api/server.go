// Package api exposes the assistant over HTTP as a small JSON API.
//
// The chat endpoint follows an advisory error contract: any failure the
// service can handle is reported inside a 200 response body, so callers
// always render the response field. Only a malformed request body yields a
// non-200 status.
package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bankql/bankql/internal/assist"
	"github.com/bankql/bankql/internal/store"
)

// ServerConfig contains configuration for creating the API server.
type ServerConfig struct {
	Logger      *slog.Logger
	Assist      *assist.Service // Required
	Store       *store.Store    // Optional: nil reports mongodb_connected=false
	ModelReady  bool            // Whether a model client was initialized
	CORSOrigins []string        // Allowed origins for CORS
}

// Server is the JSON API HTTP server.
type Server struct {
	handler http.Handler
}

// NewServer creates a new API server with all routes configured.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Assist == nil {
		return nil, errors.New("assist service is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ch := &chatHandler{svc: cfg.Assist, logger: logger}
	hh := &healthHandler{store: cfg.Store, modelReady: cfg.ModelReady, logger: logger}
	dh := &debugHandler{store: cfg.Store, logger: logger}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /chat", ch.send)
	mux.HandleFunc("GET /health", hh.health)
	mux.HandleFunc("GET /schemas", schemas)
	mux.HandleFunc("GET /debug/transactions", dh.transactions)
	mux.Handle("GET /metrics", promhttp.Handler())

	// Middleware stack (outermost first):
	//   Recovery → RequestID → Logging → Metrics → CORS → Routes
	// RequestID must precede Logging so request_id appears in log attributes.
	var handler http.Handler = mux
	handler = corsMiddleware(cfg.CORSOrigins)(handler)
	handler = metricsMiddleware()(handler)
	handler = loggingMiddleware(logger)(handler)
	handler = requestIDMiddleware()(handler)
	handler = recoveryMiddleware(logger)(handler)

	return &Server{handler: handler}, nil
}

// Handler returns the server as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}
