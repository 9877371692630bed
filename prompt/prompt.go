// Package prompt holds the system prompt templates for both loop variants
// and renders the tool list included in them. Prompt wording is a
// configuration input to the agent core, not part of the loop logic; the
// loops only depend on the output contracts described here (single JSON
// action / JSON plan array / "Final Answer:" marker).
package prompt

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sbrizzi/reagent/tool"
)

// reactTemplate solicits one decision per round-trip: either a single JSON
// action or a final answer.
const reactTemplate = `You are a step-by-step ReAct agent.

STRICT LOOP

At every turn output EXACTLY ONE of:
  a) A single JSON action: {"tool": "<tool name>", "args": {<parameters>}}
     (a one-element JSON array [ {...} ] is also accepted), OR
  b) "Final Answer: ..." — clean prose, no plans, no JSON, no code.

ADDITIONAL RULES
- Never include code fences (` + "```" + `) in your outputs.
- Never repeat the exact same action with the exact same arguments more than once.
- Do NOT include any plan or JSON in the Final Answer.
- Do NOT produce a Final Answer until ALL parts of the user's request are answered.
- Date handling: for "oggi", "domani", "dopodomani", "ieri", "avantieri", do NOT
  invent numeric dates; pass the natural phrase to the tool and let it resolve
  using the environment's TODAY.

Available tools:
%s
`

// plannerTemplate solicits a whole ordered plan up front, confirms each
// action against accumulated observations, and only asks for the final
// answer once the plan has fully executed.
const plannerTemplate = `You are a Planner-Executor-Replanner agent.

STRICT LOOP

1) PLAN
- Output a JSON ARRAY of actions to run, in order. Each action has:
  - "tool": one of the available tools
  - "args": JSON object with parameters
- If an argument depends on a previous Observation, put the literal token
  "<from_prev>" (you will adjust it later).
- Output ONLY raw JSON (no code fences, no prose).

2) EXECUTE (performed by the system)
- After each action is executed, you will receive an Observation.
- Then you must either:
    a) Output an UPDATED ACTION (a single JSON OBJECT or a one-element JSON
       ARRAY) with dependencies resolved, OR
    b) Say to continue unchanged if the next action needs no edits.
- IMPORTANT: Do NOT output a Final Answer during this phase; the system will
  ask for it ONLY after the whole plan is executed.

3) AFTER PLAN
- Once ALL actions in the current plan have been executed, the system will
  ask if you can provide the Final Answer.
- If yes, reply ONLY with "Final Answer: ..." (clean prose, no plans/JSON/code).
- If not, you may output a NEW PLAN (JSON ARRAY).

ADDITIONAL RULES
- Never include code fences (` + "```" + `) in your outputs.
- For PLAN: JSON ARRAY only. For CONFIRM/ADJUST: JSON OBJECT (or [OBJECT]) only.
- Never repeat the exact same action with the exact same arguments more than once.
- Do NOT include any plan or JSON in the Final Answer.
- Do NOT produce a Final Answer until ALL parts of the user's request are answered.
- Date handling: for "oggi", "domani", "dopodomani", "ieri", "avantieri", do NOT
  invent numeric dates; pass the natural phrase to the tool and let it resolve
  using the environment's TODAY.

Available tools:
%s
`

// ConfirmAction is the per-action instruction the planner variant sends
// before executing each planned action after the first.
const ConfirmAction = `Confirm or adjust the NEXT action against the observations so far. ` +
	`Output a single JSON OBJECT (or one-element JSON ARRAY) for the updated action, ` +
	`or repeat it unchanged. Do NOT output a Final Answer.`

// PlanRetry is sent when the model's plan output was not understood.
const PlanRetry = `Your output was not understood. Output the PLAN as a raw JSON ARRAY of ` +
	`actions only, each with "tool" and "args". No prose, no code fences.`

// CheckFinal is the question the planner variant asks once a plan has fully
// executed.
const CheckFinal = `All actions in the plan have been executed. If you can answer the user's ` +
	`request, reply ONLY with "Final Answer: ...". Otherwise output a NEW PLAN as a JSON ARRAY.`

// ReActSystem renders the step-variant system prompt for the given tools.
func ReActSystem(registry *tool.Registry) string {
	return fmt.Sprintf(reactTemplate, ToolList(registry))
}

// PlannerSystem renders the plan-variant system prompt for the given tools.
func PlannerSystem(registry *tool.Registry) string {
	return fmt.Sprintf(plannerTemplate, ToolList(registry))
}

// ToolList renders one "- name: description (schema: {...})" line per tool,
// in registration order. Descriptions are included verbatim so the model
// sees exactly what each tool declares.
func ToolList(registry *tool.Registry) string {
	var lines []string
	for _, t := range registry.All() {
		schema, err := json.Marshal(t.Parameters())
		if err != nil {
			schema = []byte("{}")
		}
		lines = append(lines, fmt.Sprintf("- %s: %s (schema: %s)", t.Name(), t.Description(), schema))
	}
	return strings.Join(lines, "\n")
}
