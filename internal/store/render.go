package store

import (
	"fmt"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// renderDocuments converts every top-level value of every record to its
// display string, so identifiers, dates and numbers survive JSON encoding
// and model summarization unchanged.
func renderDocuments(docs []bson.M) []map[string]string {
	out := make([]map[string]string, 0, len(docs))
	for _, doc := range docs {
		rec := make(map[string]string, len(doc))
		for key, value := range doc {
			rec[key] = displayString(value)
		}
		out = append(out, rec)
	}
	return out
}

// displayString formats a single BSON value for display.
func displayString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case primitive.ObjectID:
		return val.Hex()
	case primitive.DateTime:
		return val.Time().UTC().Format(time.RFC3339)
	case time.Time:
		return val.UTC().Format(time.RFC3339)
	case primitive.Decimal128:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case int:
		return strconv.Itoa(val)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	case bson.M:
		// Nested documents (e.g. unwound $lookup results) render as
		// extended JSON when possible.
		if data, err := bson.MarshalExtJSON(val, false, false); err == nil {
			return string(data)
		}
		return fmt.Sprint(val)
	default:
		return fmt.Sprint(val)
	}
}
