package gemini

import (
	"errors"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

// Fallback reasons, used as metric labels and log attributes.
const (
	reasonQuota           = "quota"
	reasonNotFound        = "not_found"
	reasonInvalidArgument = "invalid_argument"
)

// fallbackPatterns groups error substrings by fallback reason. Matched
// case-insensitively against err.Error().
//
// NOTE: This uses string matching because provider errors frequently arrive
// pre-stringified (wrapped by transport layers) and the SDK does not expose
// sentinel errors for these cases. The typed genai.APIError is checked
// first when available. Re-evaluate if the SDK adds structured error types.
var fallbackPatterns = []struct {
	reason  string
	substrs []string
}{
	{reasonQuota, []string{"429", "resource_exhausted", "quota"}},
	{reasonNotFound, []string{"404", "not_found"}},
	{reasonInvalidArgument, []string{"400", "invalid_argument"}},
}

// fallbackReason classifies a provider error. It returns the fallback
// reason and true when the dispatcher should continue with the next
// candidate model, or false when the error must abort the dispatch loop.
func fallbackReason(err error) (string, bool) {
	if err == nil {
		return "", false
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusTooManyRequests:
			return reasonQuota, true
		case http.StatusNotFound:
			return reasonNotFound, true
		case http.StatusBadRequest:
			return reasonInvalidArgument, true
		}
	}

	lower := strings.ToLower(err.Error())
	for _, group := range fallbackPatterns {
		if containsAny(lower, group.substrs...) {
			return group.reason, true
		}
	}
	return "", false
}

// containsAny reports whether s contains any of the substrings. s must
// already be lowercased.
func containsAny(s string, substrs ...string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
