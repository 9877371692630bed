package parse

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sbrizzi/reagent/core"
)

// -------------------- Final answer extraction --------------------

func TestCleanFinal_Basic(t *testing.T) {
	body, ok := CleanFinal("Final Answer: 2024-01-15.")
	require.True(t, ok)
	assert.Equal(t, "2024-01-15.", body)
}

func TestCleanFinal_CaseInsensitiveAndWhitespace(t *testing.T) {
	body, ok := CleanFinal("  final ANSWER:   It will rain tomorrow.  \n")
	require.True(t, ok)
	assert.Equal(t, "It will rain tomorrow.", body)
}

func TestCleanFinal_StripsCodeFences(t *testing.T) {
	body, ok := CleanFinal("Final Answer: ```\nRome is sunny.\n```")
	require.True(t, ok)
	assert.Equal(t, "Rome is sunny.", body)
}

func TestCleanFinal_TruncatesAtLeakageMarkers(t *testing.T) {
	cases := map[string]string{
		"plan":       "Final Answer: Done.\nPlan: do more things",
		"plan_upper": "Final Answer: Done.\nPLAN: [{\"tool\":\"x\"}]",
		"piano":      "Final Answer: Done.\nPiano: altre azioni",
		"fence":      "Final Answer: Done.\n```json\n{}\n```",
		"object":     "Final Answer: Done.\n{\"tool\": \"date_math\"}",
		"array":      "Final Answer: Done.\n[{\"tool\": \"date_math\"}]",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			body, ok := CleanFinal(raw)
			require.True(t, ok)
			assert.Equal(t, "Done.", body)
		})
	}
}

func TestCleanFinal_EmptyBodyIsNoMatch(t *testing.T) {
	_, ok := CleanFinal("Final Answer: ```\n```")
	assert.False(t, ok)
}

func TestCleanFinal_NoMarker(t *testing.T) {
	_, ok := CleanFinal("The answer is 42.")
	assert.False(t, ok)
}

// Re-parsing an already-cleaned body must not re-extract an answer.
func TestCleanFinal_Idempotence(t *testing.T) {
	body, ok := CleanFinal("Final Answer: The forecast looks clear.")
	require.True(t, ok)
	_, again := CleanFinal(body)
	assert.False(t, again)
}

// -------------------- Action decoding --------------------

func TestParse_SingletonArrayAction(t *testing.T) {
	d := Parse(`[{"tool":"date_math","args":{"operation":"add","date":"2024-01-10","days":5}}]`)
	require.Equal(t, core.DecisionAction, d.Kind)
	assert.Equal(t, "date_math", d.Action.Tool)
	assert.Equal(t, "add", d.Action.Args["operation"])
	assert.Equal(t, float64(5), d.Action.Args["days"])
}

func TestParse_BareObjectAction(t *testing.T) {
	d := Parse(`{"tool":"tavily_search","args":{"query":"go agents"}}`)
	require.Equal(t, core.DecisionAction, d.Kind)
	assert.Equal(t, "tavily_search", d.Action.Tool)
	assert.Equal(t, "go agents", d.Action.Args["query"])
}

func TestParse_FencedAction(t *testing.T) {
	raw := "```json\n{\"tool\":\"openmeteo_forecast\",\"args\":{\"location\":\"Rome\"}}\n```"
	d := Parse(raw)
	require.Equal(t, core.DecisionAction, d.Kind)
	assert.Equal(t, "openmeteo_forecast", d.Action.Tool)
}

// The singleton-array form wins even when the sole object would also decode
// as a bare object after unwrapping.
func TestParse_ArrayFormTieBreak(t *testing.T) {
	d := Parse(`[{"tool":"a","args":{}}]`)
	require.Equal(t, core.DecisionAction, d.Kind)
	assert.Equal(t, "a", d.Action.Tool)
}

// A multi-element array falls through to the object attempt, which accepts
// the first object element.
func TestParse_MultiElementArrayTakesFirst(t *testing.T) {
	d := Parse(`[{"tool":"first","args":{}},{"tool":"second","args":{}}]`)
	require.Equal(t, core.DecisionAction, d.Kind)
	assert.Equal(t, "first", d.Action.Tool)
}

func TestParse_ArgsMustBeObject(t *testing.T) {
	d := Parse(`{"tool":"date_math","args":"not-a-mapping"}`)
	assert.Equal(t, core.DecisionUnparsed, d.Kind)
}

func TestParse_FinalBeatsAction(t *testing.T) {
	d := Parse("Final Answer: done\n")
	assert.Equal(t, core.DecisionFinal, d.Kind)
	assert.Equal(t, "done", d.Final)
}

// -------------------- Unparsed degradation --------------------

func TestParse_NeverPanicsOnGarbage(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"just some prose about the weather",
		"{broken json",
		"[1, 2, 3]",
		`{"args":{"x":1}}`,
		`{"tool":"x"}`,
		`{"tool": 42, "args": {}}`,
		"```\n```",
		strings.Repeat("{", 1000),
		"Final Answer:",
	}
	for _, in := range inputs {
		assert.NotPanics(t, func() {
			d := Parse(in)
			assert.Equal(t, core.DecisionUnparsed, d.Kind, "input %q", in)
		})
	}
}

// -------------------- Plan parsing --------------------

func TestParsePlan_Array(t *testing.T) {
	plan := ParsePlan(`[
		{"tool":"date_math","args":{"operation":"add","date":"oggi","days":2}},
		{"tool":"openmeteo_forecast","args":{"location":"Milan","target_date":"<from_prev>"}}
	]`)
	require.Len(t, plan, 2)
	assert.Equal(t, "date_math", plan[0].Tool)
	assert.Equal(t, "openmeteo_forecast", plan[1].Tool)
}

func TestParsePlan_SingleObjectBecomesOneActionPlan(t *testing.T) {
	plan := ParsePlan(`{"tool":"tavily_search","args":{"query":"x"}}`)
	require.Len(t, plan, 1)
	assert.Equal(t, "tavily_search", plan[0].Tool)
}

func TestParsePlan_DropsMalformedElements(t *testing.T) {
	plan := ParsePlan(`[{"tool":"ok","args":{}}, "noise", {"tool":"no-args"}, 7]`)
	require.Len(t, plan, 1)
	assert.Equal(t, "ok", plan[0].Tool)
}

func TestParsePlan_InvalidJSON(t *testing.T) {
	assert.Empty(t, ParsePlan("I think we should search first"))
}

// -------------------- Signatures --------------------

func TestActionSignature_Canonical(t *testing.T) {
	a := core.ActionRequest{Tool: "t", Args: map[string]any{"b": 1.0, "a": "x"}}
	b := core.ActionRequest{Tool: "t", Args: map[string]any{"a": "x", "b": 1.0}}
	assert.Equal(t, a.Signature(), b.Signature())

	c := core.ActionRequest{Tool: "t", Args: map[string]any{"a": "y", "b": 1.0}}
	assert.NotEqual(t, a.Signature(), c.Signature())
}
