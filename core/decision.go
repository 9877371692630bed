// Package core defines the shared value types exchanged between the response
// parser, the tool executor and the agent loops: the tagged Decision produced
// from each model turn, the ActionRequest it may carry, and the textual
// Observation serialization appended to the conversation context.
package core

import (
	"encoding/json"
	"fmt"
)

// DecisionKind tags the three possible outcomes of parsing one model turn.
type DecisionKind int

const (
	// DecisionUnparsed marks model output that is neither a final answer nor
	// a well-formed action. The zero value, so an empty Decision is Unparsed.
	DecisionUnparsed DecisionKind = iota
	// DecisionFinal marks a cleaned final answer.
	DecisionFinal
	// DecisionAction marks a single tool invocation request.
	DecisionAction
)

// String returns the string representation of the decision kind.
func (k DecisionKind) String() string {
	switch k {
	case DecisionFinal:
		return "final"
	case DecisionAction:
		return "action"
	default:
		return "unparsed"
	}
}

// ActionRequest is one tool invocation requested by the model: a tool name
// plus a JSON-object argument mapping. Args is never nil on a parsed action.
type ActionRequest struct {
	Tool string         `json:"tool"`
	Args map[string]any `json:"args"`
}

// Signature returns the canonical serialization of the action used for
// repeat detection: a JSON object with sorted keys, so two actions with the
// same tool and the same arguments always produce identical signatures.
func (a ActionRequest) Signature() string {
	b, err := json.Marshal(map[string]any{"tool": a.Tool, "args": a.Args})
	if err != nil {
		// Maps of JSON-decoded values always marshal; this path only exists
		// for handler-injected non-serializable arguments.
		return fmt.Sprintf("%s:%v", a.Tool, a.Args)
	}
	return string(b)
}

// Decision is the parsed outcome of one model turn. Exactly one of the
// payload fields is meaningful, selected by Kind. Decisions are produced
// fresh by parse.Parse each step and never mutated.
type Decision struct {
	Kind   DecisionKind
	Final  string
	Action ActionRequest
}

// NewFinalDecision wraps a cleaned final answer body.
func NewFinalDecision(text string) Decision {
	return Decision{Kind: DecisionFinal, Final: text}
}

// NewActionDecision wraps a single tool invocation request.
func NewActionDecision(tool string, args map[string]any) Decision {
	if args == nil {
		args = map[string]any{}
	}
	return Decision{Kind: DecisionAction, Action: ActionRequest{Tool: tool, Args: args}}
}

// NewUnparsedDecision marks model output that matched neither accepted shape.
func NewUnparsedDecision() Decision { return Decision{Kind: DecisionUnparsed} }
