// Package util holds the minimal JSON-Schema subset validation used by
// function tools. Schemas are plain maps following the usual object shape
// (type/properties/required/enum); only the checks tools actually rely on
// are implemented.
package util

import (
	"fmt"
)

// ValidationError reports a single failed parameter check.
type ValidationError struct {
	Field   string `json:"field"`
	Value   any    `json:"value"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// ValidateParameters checks args against a JSON-Schema-like object schema:
// required fields must be present, declared properties must match their
// declared type, and enum-constrained strings must hold an allowed value.
// Undeclared fields pass through untouched; the executor boundary, not the
// schema, decides what a handler tolerates.
func ValidateParameters(args map[string]any, schema map[string]any) error {
	for _, name := range requiredFields(schema) {
		if _, ok := args[name]; !ok {
			return &ValidationError{Field: name, Message: "required field is missing"}
		}
	}

	properties, _ := schema["properties"].(map[string]any)
	for name, value := range args {
		prop, ok := properties[name].(map[string]any)
		if !ok {
			continue
		}
		expected, _ := prop["type"].(string)
		if !matchesType(value, expected) {
			return &ValidationError{
				Field:   name,
				Value:   value,
				Message: fmt.Sprintf("expected type %s, got %T", expected, value),
			}
		}
		if err := checkEnum(name, value, prop); err != nil {
			return err
		}
	}
	return nil
}

// requiredFields tolerates both []string (hand-written schemas) and []any
// (schemas that round-tripped through JSON or YAML).
func requiredFields(schema map[string]any) []string {
	switch req := schema["required"].(type) {
	case []string:
		return req
	case []any:
		fields := make([]string, 0, len(req))
		for _, r := range req {
			if s, ok := r.(string); ok {
				fields = append(fields, s)
			}
		}
		return fields
	}
	return nil
}

func checkEnum(field string, value any, prop map[string]any) error {
	allowed := enumValues(prop)
	if len(allowed) == 0 {
		return nil
	}
	s, ok := value.(string)
	if !ok {
		return nil // enum checks only constrain strings here
	}
	for _, a := range allowed {
		if s == a {
			return nil
		}
	}
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: fmt.Sprintf("value %q is not one of the allowed values %v", s, allowed),
	}
}

func enumValues(prop map[string]any) []string {
	switch e := prop["enum"].(type) {
	case []string:
		return e
	case []any:
		vals := make([]string, 0, len(e))
		for _, v := range e {
			if s, ok := v.(string); ok {
				vals = append(vals, s)
			}
		}
		return vals
	}
	return nil
}

func matchesType(value any, expected string) bool {
	if value == nil || expected == "" {
		return true
	}
	switch expected {
	case "string":
		_, ok := value.(string)
		return ok
	case "integer":
		switch v := value.(type) {
		case int, int32, int64:
			return true
		case float64: // JSON numbers decode to float64
			return v == float64(int64(v))
		}
		return false
	case "number":
		switch value.(type) {
		case int, int32, int64, float32, float64:
			return true
		}
		return false
	case "boolean":
		_, ok := value.(bool)
		return ok
	case "array":
		_, ok := value.([]any)
		return ok
	case "object":
		_, ok := value.(map[string]any)
		return ok
	}
	return true
}
