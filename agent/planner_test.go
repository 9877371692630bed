package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sbrizzi/reagent/model"
)

func TestPlannerExecutesPlanThenFinal(t *testing.T) {
	rt := &recordingTool{reply: "ok"}
	reg := mustRegistry(t, rt.asTool("lookup"))
	provider := model.NewScripted(
		`[{"tool":"lookup","args":{"q":"first"}},{"tool":"lookup","args":{"q":"second"}}]`,
		"confirmed, proceed as planned",
		"Final Answer: both done.",
	)

	a := NewPlanner(provider, reg)
	out, err := a.Run(context.Background(), "two lookups please", nil)
	require.NoError(t, err)
	assert.Equal(t, "both done.", out)
	assert.EqualValues(t, 2, rt.calls)
	// initial plan + one confirm + check-final
	assert.Equal(t, 3, provider.CallCount())
}

func TestPlannerConfirmCanAdjustAction(t *testing.T) {
	rt := &recordingTool{reply: "ok"}
	reg := mustRegistry(t, rt.asTool("lookup"))
	provider := model.NewScripted(
		`[{"tool":"lookup","args":{"q":"first"}},{"tool":"lookup","args":{"q":"<from_prev>"}}]`,
		`{"tool":"lookup","args":{"q":"resolved"}}`,
		"Final Answer: done.",
	)

	a := NewPlanner(provider, reg)
	out, err := a.Run(context.Background(), "dependent lookups", nil)
	require.NoError(t, err)
	assert.Equal(t, "done.", out)

	require.Len(t, rt.args, 2)
	assert.Equal(t, "first", rt.args[0]["q"])
	assert.Equal(t, "resolved", rt.args[1]["q"])
}

func TestPlannerIgnoresMidPlanFinalAnswer(t *testing.T) {
	rt := &recordingTool{reply: "ok"}
	reg := mustRegistry(t, rt.asTool("lookup"))
	provider := model.NewScripted(
		`[{"tool":"lookup","args":{"q":"first"}},{"tool":"lookup","args":{"q":"second"}}]`,
		"Final Answer: I want to stop early.",
		"Final Answer: finished properly.",
	)

	a := NewPlanner(provider, reg)
	out, err := a.Run(context.Background(), "two lookups", nil)
	require.NoError(t, err)
	// The mid-plan final is treated as confirm-unchanged; both actions run.
	assert.Equal(t, "finished properly.", out)
	assert.EqualValues(t, 2, rt.calls)
	assert.Equal(t, "second", rt.args[1]["q"])
}

func TestPlannerReplanLimit(t *testing.T) {
	reg := mustRegistry(t, (&recordingTool{}).asTool("lookup"))
	provider := model.NewScripted("this is not a plan")

	a := NewPlanner(provider, reg, func(o *Options) { o.MaxReplans = 2 })
	out, err := a.Run(context.Background(), "anything", nil)
	require.NoError(t, err)
	assert.Equal(t, ReplanLimitMessage, out)
	// initial ask + one retry per round before the last
	assert.Equal(t, 3, provider.CallCount())
}

func TestPlannerStepLimitAcrossPlan(t *testing.T) {
	rt := &recordingTool{reply: "ok"}
	reg := mustRegistry(t, rt.asTool("lookup"))
	provider := model.NewScripted(
		`[{"tool":"lookup","args":{"q":"a"}},{"tool":"lookup","args":{"q":"b"}},{"tool":"lookup","args":{"q":"c"}}]`,
		"confirmed",
	)

	a := NewPlanner(provider, reg, func(o *Options) { o.MaxSteps = 2 })
	out, err := a.Run(context.Background(), "three lookups", nil)
	require.NoError(t, err)
	assert.Equal(t, StepLimitMessage, out)
	assert.EqualValues(t, 2, rt.calls)
}

func TestPlannerSingleObjectPlan(t *testing.T) {
	rt := &recordingTool{reply: "ok"}
	reg := mustRegistry(t, rt.asTool("lookup"))
	provider := model.NewScripted(
		`{"tool":"lookup","args":{"q":"only"}}`,
		"Final Answer: done.",
	)

	a := NewPlanner(provider, reg)
	out, err := a.Run(context.Background(), "one lookup", nil)
	require.NoError(t, err)
	assert.Equal(t, "done.", out)
	assert.EqualValues(t, 1, rt.calls)
}

func TestPlannerStuckOnRepeatedAction(t *testing.T) {
	rt := &recordingTool{reply: "same"}
	reg := mustRegistry(t, rt.asTool("lookup"))
	provider := model.NewScripted(
		`[{"tool":"lookup","args":{"q":"x"}},{"tool":"lookup","args":{"q":"x"}},{"tool":"lookup","args":{"q":"x"}}]`,
		"confirmed",
	)

	a := NewPlanner(provider, reg)
	out, err := a.Run(context.Background(), "repeat", nil)
	require.NoError(t, err)
	assert.Equal(t, StuckMessage, out)
	assert.EqualValues(t, 2, rt.calls)
}
