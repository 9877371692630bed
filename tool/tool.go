// Package tool implements the capability subsystem the agent loops invoke:
// a Tool interface with a JSON-Schema-like argument description, a Registry
// mapping names to tools, and an Executor that is the single boundary where
// handler failures are translated into structured error observations.
package tool

import (
	"context"
	"fmt"

	"github.com/sbrizzi/reagent/internal/util"
)

// Tool is a named, schema-described capability the model may request.
//
// Tool implementations should:
//   - Provide clear names (snake_case recommended) and descriptions; the
//     description is rendered verbatim into the system prompt.
//   - Declare a JSON-Schema-like Parameters map used for documentation and
//     argument validation.
//   - Be safe for concurrent use; the registry is shared across runs.
type Tool interface {
	// Name returns the unique identifier the model uses to request the tool.
	Name() string

	// Description returns the human-readable description shown to the model.
	Description() string

	// Parameters returns a JSON-Schema-like object describing accepted
	// arguments (properties, types, enums, required list).
	Parameters() map[string]any

	// Call executes the tool with the model-supplied argument mapping.
	// Failures are reported through the returned error; the executor turns
	// them into observation values, never letting them cross into the loop.
	Call(ctx context.Context, args map[string]any) (any, error)
}

// ValidationError re-exports the schema validation error type so tool
// consumers do not import internal packages.
type ValidationError = util.ValidationError

// ToolError represents a failure during tool execution, with a code for
// categorization. Tools may return it directly to control the code; plain
// errors are wrapped with EXECUTION_ERROR by FunctionTool.
type ToolError struct {
	Tool    string `json:"tool"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

func (e *ToolError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("tool error [%s] in %s: %s", e.Code, e.Tool, e.Message)
	}
	return fmt.Sprintf("tool error in %s: %s", e.Tool, e.Message)
}

// NewToolError creates a ToolError with the given details.
func NewToolError(tool, message, code string) *ToolError {
	return &ToolError{Tool: tool, Message: message, Code: code}
}
