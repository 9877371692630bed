package tool

import (
	"context"
	"fmt"
	"time"

	"github.com/sbrizzi/reagent/core"
	"github.com/sbrizzi/reagent/logging"
)

// Executor invokes registered tools on behalf of the agent loops. It is the
// single translation boundary from handler failure to structured error
// value: no error (and no panic) raised inside a tool ever reaches the loop.
// The returned value is always observation-ready — either the handler's
// result or a {"error": <message>} mapping.
type Executor struct {
	registry *Registry
	logger   logging.Logger
}

// NewExecutor wraps a registry. A nil logger disables executor logging.
func NewExecutor(registry *Registry, logger logging.Logger) *Executor {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &Executor{registry: registry, logger: logger}
}

// Execute runs the named tool with the given arguments.
//
// Unknown names yield {"error": "Tool '<name>' not available."}. Handler
// errors yield {"error": <message>}; a panicking handler is recovered and
// reported the same way. Side effects live entirely inside the handler; the
// executor only invokes and translates.
func (e *Executor) Execute(ctx context.Context, name string, args map[string]any) (result any) {
	t, ok := e.registry.Get(name)
	if !ok {
		e.logger.Warn("tool.execute.unknown", "tool", name)
		return core.ErrorObservation(fmt.Sprintf("Tool '%s' not available.", name))
	}

	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("tool.execute.panic", "tool", name, "panic", fmt.Sprintf("%v", r))
			result = core.ErrorObservation(fmt.Sprintf("%v", r))
		}
	}()

	start := time.Now()
	out, err := t.Call(ctx, args)
	if err != nil {
		e.logger.Error("tool.execute.error", "tool", name, "error", err.Error())
		return core.ErrorObservation(err.Error())
	}

	e.logger.Info("tool.execute.success", "tool", name, "duration_ms", time.Since(start).Milliseconds())
	return out
}
