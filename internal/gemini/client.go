// Package gemini dispatches prompts to the Gemini API across an ordered
// list of candidate models, falling back to the next candidate on quota,
// not-found and invalid-argument failures.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/genai"

	"github.com/bankql/bankql/internal/observability"
)

// DefaultModels is the candidate list, ordered by preference (most reliable
// and highest quota first).
var DefaultModels = []string{
	"gemini-1.5-flash",
	"gemini-1.5-flash-8b",
	"gemini-2.0-flash",
	"gemini-2.0-flash-lite",
	"gemini-2.0-flash-exp",
	"gemini-1.5-pro",
}

// ErrModelsExhausted reports that every candidate model failed with a
// fallback-eligible error. Callers surface this as an advisory message to
// the user, not as a hard failure.
var ErrModelsExhausted = errors.New("all candidate models exhausted")

// Generation is the text produced by a dispatch, together with the
// identifier of the model that produced it.
type Generation struct {
	Text  string
	Model string
}

// generateFunc invokes a single model once.
type generateFunc func(ctx context.Context, model, system, prompt string, temperature float32) (string, error)

// Client is a Gemini client with model fallback. It is safe for concurrent
// use; it holds no mutable state beyond the underlying SDK client.
type Client struct {
	models   []string
	logger   *slog.Logger
	generate generateFunc
}

// NewClient creates a Client backed by the Gemini API. If models is empty,
// DefaultModels is used.
func NewClient(ctx context.Context, apiKey string, models []string, logger *slog.Logger) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("api key is required")
	}
	if len(models) == 0 {
		models = DefaultModels
	}
	if logger == nil {
		logger = slog.Default()
	}

	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}

	c := &Client{models: models, logger: logger}
	c.generate = func(ctx context.Context, model, system, prompt string, temperature float32) (string, error) {
		cfg := &genai.GenerateContentConfig{
			Temperature: genai.Ptr(temperature),
		}
		if system != "" {
			cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
		}
		resp, err := gc.Models.GenerateContent(ctx, model, genai.Text(prompt), cfg)
		if err != nil {
			return "", fmt.Errorf("generate content: %w", err)
		}
		return strings.TrimSpace(resp.Text()), nil
	}
	return c, nil
}

// Models returns the candidate list, in dispatch order.
func (c *Client) Models() []string {
	return c.models
}

// Generate runs the prompt through the candidate list and returns the first
// successful generation. Fallback-eligible failures (quota, not-found,
// invalid-argument) move to the next candidate; any other error aborts the
// loop. When every candidate fails with a fallback-eligible error, the
// returned error is ErrModelsExhausted.
func (c *Client) Generate(ctx context.Context, system, prompt string, temperature float32) (Generation, error) {
	for _, model := range c.models {
		text, err := c.generate(ctx, model, system, prompt, temperature)
		if err == nil {
			observability.RecordModelCall(model, "ok")
			c.logger.Debug("model succeeded", "model", model)
			return Generation{Text: text, Model: model}, nil
		}

		reason, eligible := fallbackReason(err)
		if !eligible {
			observability.RecordModelCall(model, "error")
			return Generation{}, fmt.Errorf("model %s: %w", model, err)
		}

		observability.RecordModelCall(model, reason)
		observability.RecordModelFallback(model, reason)
		c.logger.Warn("model failed, trying next candidate",
			"model", model,
			"reason", reason,
			"error", err,
		)
	}
	return Generation{}, ErrModelsExhausted
}

// GenerateWith invokes one specific model with no fallback. Used by the
// result summarizer with the model selected by a prior Generate call.
func (c *Client) GenerateWith(ctx context.Context, model, prompt string, temperature float32) (string, error) {
	text, err := c.generate(ctx, model, "", prompt, temperature)
	if err != nil {
		observability.RecordModelCall(model, "error")
		return "", fmt.Errorf("model %s: %w", model, err)
	}
	observability.RecordModelCall(model, "ok")
	return text, nil
}
