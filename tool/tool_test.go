package tool

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sbrizzi/reagent/logging"
)

func echoTool(name string) Tool {
	return NewFunctionTool(name, "echoes its arguments", map[string]any{
		"type":       "object",
		"properties": map[string]any{"msg": map[string]any{"type": "string"}},
		"required":   []string{"msg"},
	}, func(_ context.Context, args map[string]any) (any, error) {
		return args["msg"], nil
	})
}

// -------------------- FunctionTool --------------------

func TestFunctionToolCall(t *testing.T) {
	tl := echoTool("echo")
	out, err := tl.Call(context.Background(), map[string]any{"msg": "hi"})
	assert.NoError(t, err)
	assert.Equal(t, "hi", out)
}

func TestFunctionToolValidation(t *testing.T) {
	tl := echoTool("echo")
	_, err := tl.Call(context.Background(), map[string]any{})
	require.Error(t, err)

	var te *ToolError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "VALIDATION_ERROR", te.Code)
	assert.Equal(t, "echo", te.Tool)
}

func TestFunctionToolWrapsHandlerError(t *testing.T) {
	tl := NewFunctionTool("boom", "always fails", map[string]any{"type": "object"},
		func(context.Context, map[string]any) (any, error) {
			return nil, errors.New("upstream unavailable")
		})

	_, err := tl.Call(context.Background(), map[string]any{})
	require.Error(t, err)

	var te *ToolError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "EXECUTION_ERROR", te.Code)
	assert.Contains(t, te.Message, "upstream unavailable")
}

func TestFunctionToolForwardsToolError(t *testing.T) {
	orig := NewToolError("boom", "quota exceeded", "EXECUTION_ERROR")
	tl := NewFunctionTool("boom", "always fails", map[string]any{"type": "object"},
		func(context.Context, map[string]any) (any, error) {
			return nil, orig
		})

	_, err := tl.Call(context.Background(), map[string]any{})
	var te *ToolError
	require.ErrorAs(t, err, &te)
	assert.Same(t, orig, te)
}

// -------------------- Registry --------------------

func TestRegistryRejectsDuplicates(t *testing.T) {
	_, err := NewRegistry(echoTool("echo"), echoTool("echo"))
	assert.Error(t, err)
}

func TestRegistryRejectsEmpty(t *testing.T) {
	_, err := NewRegistry()
	assert.Error(t, err)
}

func TestRegistryPreservesOrder(t *testing.T) {
	reg, err := NewRegistry(echoTool("b"), echoTool("a"), echoTool("c"))
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a", "c"}, reg.Names())
	assert.Equal(t, []string{"a", "b", "c"}, reg.SortedNames())

	got, ok := reg.Get("a")
	assert.True(t, ok)
	assert.Equal(t, "a", got.Name())

	_, ok = reg.Get("missing")
	assert.False(t, ok)
}

// -------------------- Executor --------------------

func TestExecutorUnknownTool(t *testing.T) {
	reg, err := NewRegistry(echoTool("echo"))
	require.NoError(t, err)
	ex := NewExecutor(reg, logging.NoOpLogger{})

	out := ex.Execute(context.Background(), "nope", map[string]any{})
	assert.Equal(t, map[string]any{"error": "Tool 'nope' not available."}, out)
}

func TestExecutorTranslatesErrors(t *testing.T) {
	reg, err := NewRegistry(NewFunctionTool("boom", "always fails", map[string]any{"type": "object"},
		func(context.Context, map[string]any) (any, error) {
			return nil, errors.New("kaput")
		}))
	require.NoError(t, err)
	ex := NewExecutor(reg, nil)

	out := ex.Execute(context.Background(), "boom", map[string]any{})
	obs, ok := out.(map[string]any)
	require.True(t, ok)
	assert.Contains(t, obs["error"], "kaput")
}

func TestExecutorRecoversPanics(t *testing.T) {
	reg, err := NewRegistry(NewFunctionTool("panic", "always panics", map[string]any{"type": "object"},
		func(context.Context, map[string]any) (any, error) {
			panic("unreachable state")
		}))
	require.NoError(t, err)
	ex := NewExecutor(reg, nil)

	out := ex.Execute(context.Background(), "panic", map[string]any{})
	obs, ok := out.(map[string]any)
	require.True(t, ok)
	assert.Contains(t, obs["error"], "unreachable state")
}

func TestExecutorSuccessPassesResultThrough(t *testing.T) {
	reg, err := NewRegistry(echoTool("echo"))
	require.NoError(t, err)
	ex := NewExecutor(reg, nil)

	out := ex.Execute(context.Background(), "echo", map[string]any{"msg": "ok"})
	assert.Equal(t, "ok", out)
}
