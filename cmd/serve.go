package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/bankql/bankql/internal/api"
	"github.com/bankql/bankql/internal/assist"
	"github.com/bankql/bankql/internal/config"
	"github.com/bankql/bankql/internal/gemini"
	"github.com/bankql/bankql/internal/log"
	"github.com/bankql/bankql/internal/store"
)

// Server timeout configuration.
const (
	readHeaderTimeout = 10 * time.Second
	readTimeout       = 30 * time.Second
	writeTimeout      = 2 * time.Minute // two model round trips plus the query
	idleTimeout       = 2 * time.Minute
	shutdownTimeout   = 30 * time.Second
	connectTimeout    = 10 * time.Second
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve [addr]",
	Short: "Start the HTTP API server",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "server address (host:port), overrides config")
	rootCmd.AddCommand(serveCmd)
}

// runServe initializes and starts the HTTP API server. Missing database or
// model configuration is logged, not fatal: the affected endpoints answer
// with advisory messages until the operator fixes the environment.
func runServe(_ *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	addr := cfg.Addr
	if len(args) > 0 {
		addr = args[0]
	}
	if serveAddr != "" {
		addr = serveAddr
	}
	if err := validateAddr(addr); err != nil {
		return fmt.Errorf("invalid address %q: %w", addr, err)
	}

	logger := log.New(log.Config{Level: logLevel(), JSON: true})
	logger.Info("starting bankql", "version", AppVersion)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// The assist service takes interfaces; keep them nil unless the
	// concrete client exists, a typed nil would defeat its nil checks.
	var (
		st        *store.Store
		datastore assist.Datastore
	)
	if cfg.MongoURI == "" {
		logger.Warn("DATABASE_URL not set, chat requests will be answered with an advisory")
	} else {
		connectCtx, connectCancel := context.WithTimeout(ctx, connectTimeout)
		st, err = store.Connect(connectCtx, cfg.MongoURI, cfg.MongoDBName, logger)
		connectCancel()
		if err != nil {
			logger.Warn("mongodb connection failed, continuing without database", "error", err)
			st = nil
		} else {
			datastore = st
			defer func() {
				closeCtx, closeCancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer closeCancel()
				if closeErr := st.Close(closeCtx); closeErr != nil {
					logger.Warn("mongodb shutdown error", "error", closeErr)
				}
			}()
		}
	}

	var generator assist.Generator
	if cfg.GeminiAPIKey == "" {
		logger.Warn("GEMINI_API_KEY not set, chat requests will be answered with an advisory")
	} else {
		client, clientErr := gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.Models, logger)
		if clientErr != nil {
			logger.Warn("gemini client initialization failed, continuing without model", "error", clientErr)
		} else {
			generator = client
		}
	}

	svc := assist.New(generator, datastore, assist.Options{
		DirectiveTemperature: cfg.DirectiveTemperature,
		SummaryTemperature:   cfg.SummaryTemperature,
		SummaryLimit:         cfg.SummaryLimit,
	}, logger)

	apiServer, err := api.NewServer(api.ServerConfig{
		Logger:      logger,
		Assist:      svc,
		Store:       st,
		ModelReady:  generator != nil,
		CORSOrigins: cfg.CORSOrigins,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           apiServer.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}

	logger.Info("HTTP server ready",
		"addr", addr,
		"endpoints", "/chat, /health, /schemas, /debug/transactions, /metrics",
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down HTTP server")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down server: %w", err)
		}
		<-errCh
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("HTTP server: %w", err)
	}
}

// logLevel maps the DEBUG environment variable to a log level.
func logLevel() slog.Level {
	if os.Getenv("DEBUG") != "" {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}
