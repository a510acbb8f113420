package assist

import (
	"encoding/json"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
)

// Directive is the model's structured instruction: either a conversational
// reply (type == "conversation") or a collection plus an aggregation
// pipeline to execute. The pipeline is structurally opaque; it is passed to
// the store verbatim.
type Directive struct {
	Type       string `json:"type"`
	Message    string `json:"message"`
	Collection string `json:"collection"`
	Pipeline   bson.A `json:"pipeline"`
}

// IsConversation reports whether the directive is a conversational reply
// requiring no database interaction.
func (d Directive) IsConversation() bool {
	return d.Type == "conversation"
}

// stripFences removes one leading "```json" or "```" marker and one
// trailing "```" marker. Models frequently wrap JSON output in a markdown
// code fence despite instructions not to.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// parseDirective parses fence-stripped model output as a directive.
func parseDirective(cleaned string) (Directive, error) {
	var d Directive
	if err := json.Unmarshal([]byte(cleaned), &d); err != nil {
		return Directive{}, fmt.Errorf("parsing directive: %w", err)
	}
	return d, nil
}
