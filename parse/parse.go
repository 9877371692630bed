// Package parse converts raw model text into the tagged core.Decision the
// agent loops branch on. Model output is adversarially unreliable, so the
// parser is maximally permissive about surface syntax (code fences,
// surrounding prose, stray whitespace) while staying strict about the two
// accepted decision shapes. Parse never panics and never returns an error:
// anything that does not match degrades to an Unparsed decision.
package parse

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/sbrizzi/reagent/core"
)

var (
	codeFenceRe = regexp.MustCompile("(?m)^```[\\w-]*\\s*|\\s*```$")
	finalRe     = regexp.MustCompile(`(?is)final answer:\s*(.+)$`)
)

// leakageMarkers truncate a final answer at the point where the model
// improperly continued with plan, JSON or fence syntax. Applied in order.
var leakageMarkers = []string{"\nPlan:", "\nPLAN:", "\nPiano:", "\n```", "\n{", "\n["}

// StripCodeFences removes triple-backtick fence markers at line boundaries
// (with optional language tags) and trims surrounding whitespace.
func StripCodeFences(text string) string {
	return strings.TrimSpace(codeFenceRe.ReplaceAllString(text, ""))
}

// CleanFinal extracts and cleans the final-answer body from raw model text.
// The "Final Answer:" marker is matched case-insensitively anywhere in the
// text; the remainder is fence-stripped and truncated at the first leakage
// marker. The boolean is false when no marker was found or when cleaning
// left an empty body — an empty answer is "no answer", never "".
func CleanFinal(text string) (string, bool) {
	m := finalRe.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	body := StripCodeFences(strings.TrimSpace(m[1]))
	for _, marker := range leakageMarkers {
		if idx := strings.Index(body, marker); idx >= 0 {
			body = strings.TrimSpace(body[:idx])
		}
	}
	if body == "" {
		return "", false
	}
	return body, true
}

// Parse converts one model turn into a Decision.
//
// Order of attempts:
//  1. Final answer marker ("Final Answer:" case-insensitive). Found and
//     non-empty after cleaning -> Final decision.
//  2. Action as a singleton JSON array of one object with "tool" and "args"
//     (args itself an object). The array form wins the tie-break.
//  3. Action as a bare JSON object (or first element of a non-empty array)
//     with the same "tool"/"args" shape.
//  4. Anything else -> Unparsed.
func Parse(text string) core.Decision {
	if body, ok := CleanFinal(text); ok {
		return core.NewFinalDecision(body)
	}

	// Array form first: exactly one object element.
	if candidates := decodeObjects(text); len(candidates) == 1 {
		if act, ok := asAction(candidates[0]); ok {
			return act
		}
	}

	// Bare object form (or first element of a larger array).
	if obj, ok := decodeObject(text); ok {
		if act, ok := asAction(obj); ok {
			return act
		}
	}

	return core.NewUnparsedDecision()
}

// ParsePlan interprets model text as an ordered plan: a JSON array of action
// objects. Non-object elements are dropped; a bare object is treated as a
// one-action plan. Elements missing the "tool"/"args" shape are skipped.
// An empty result means the text held no usable plan.
func ParsePlan(text string) []core.ActionRequest {
	var plan []core.ActionRequest
	for _, obj := range decodeObjects(text) {
		if act, ok := asAction(obj); ok {
			plan = append(plan, act.Action)
		}
	}
	return plan
}

// decodeObjects parses fence-stripped text as JSON and normalizes it into a
// list of objects: arrays keep only their object elements, a bare object
// becomes a singleton. Invalid JSON yields nil.
func decodeObjects(text string) []map[string]any {
	var parsed any
	if err := json.Unmarshal([]byte(StripCodeFences(text)), &parsed); err != nil {
		return nil
	}
	switch v := parsed.(type) {
	case []any:
		var objs []map[string]any
		for _, el := range v {
			if obj, ok := el.(map[string]any); ok {
				objs = append(objs, obj)
			}
		}
		return objs
	case map[string]any:
		return []map[string]any{v}
	}
	return nil
}

// decodeObject parses fence-stripped text as a single JSON object, accepting
// either a bare object or the first object element of a non-empty array.
func decodeObject(text string) (map[string]any, bool) {
	var parsed any
	if err := json.Unmarshal([]byte(StripCodeFences(text)), &parsed); err != nil {
		return nil, false
	}
	switch v := parsed.(type) {
	case map[string]any:
		return v, true
	case []any:
		if len(v) > 0 {
			if obj, ok := v[0].(map[string]any); ok {
				return obj, true
			}
		}
	}
	return nil, false
}

// asAction validates the accepted action shape: a string "tool" key plus an
// "args" key whose value is itself an object.
func asAction(obj map[string]any) (core.Decision, bool) {
	toolVal, hasTool := obj["tool"]
	argsVal, hasArgs := obj["args"]
	if !hasTool || !hasArgs {
		return core.Decision{}, false
	}
	tool, ok := toolVal.(string)
	if !ok {
		return core.Decision{}, false
	}
	args, ok := argsVal.(map[string]any)
	if !ok {
		return core.Decision{}, false
	}
	return core.NewActionDecision(tool, args), true
}
