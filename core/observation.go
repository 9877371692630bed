package core

import (
	"encoding/json"
	"fmt"
)

// StringifyObservation serializes a tool result (or structured error value)
// into the textual Observation form fed back to the model. Maps and slices
// are rendered as compact JSON; nil becomes the "<none>" placeholder; values
// that cannot be marshaled fall back to their Go string representation.
func StringifyObservation(v any) string {
	if v == nil {
		return "<none>"
	}
	switch v.(type) {
	case string:
		return v.(string)
	case map[string]any, []any:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(b)
	}
	if b, err := json.Marshal(v); err == nil {
		return string(b)
	}
	return fmt.Sprintf("%v", v)
}

// ErrorObservation builds the structured error value the executor returns in
// place of a raised error, visible to the model on its next turn.
func ErrorObservation(msg string) map[string]any {
	return map[string]any{"error": msg}
}
