package assist

import (
	"context"
	"encoding/json"
	"fmt"
)

// summarize re-invokes the model that produced the directive to turn the
// result records into prose. Only the first SummaryLimit records are shown
// to the model; the caller still attaches the full set to the reply.
func (s *Service) summarize(ctx context.Context, model, message string, records []map[string]string) (string, error) {
	p, err := summaryPrompt(message, records, s.opts.SummaryLimit)
	if err != nil {
		return "", err
	}
	text, err := s.gen.GenerateWith(ctx, model, p, s.opts.SummaryTemperature)
	if err != nil {
		return "", fmt.Errorf("summarizing results: %w", err)
	}
	return text, nil
}

// summaryPrompt builds the summarization prompt from the original question
// and a truncated result set.
func summaryPrompt(message string, records []map[string]string, limit int) (string, error) {
	total := len(records)
	shown := records
	if len(shown) > limit {
		shown = shown[:limit]
	}

	data, err := json.Marshal(shown)
	if err != nil {
		return "", fmt.Errorf("encoding results for summary: %w", err)
	}

	return fmt.Sprintf(`User Question: %q
Database Results: %s (showing first %d items out of %d total)

Provide a clear, natural language summary. Include numbers and format currencies properly.`,
		message, data, len(shown), total), nil
}
