package tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sbrizzi/reagent/tool"
)

var dateMathSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"operation": map[string]any{"type": "string", "enum": []string{"add", "sub", "diff", "range"}},
		"date":      map[string]any{"type": "string"},
		"days":      map[string]any{"type": "integer"},
		"end_date":  map[string]any{"type": "string"},
	},
	"required": []string{"operation"},
}

// NewDateMath builds the date_math tool: calendar offsets and intervals over
// dates normalized by the resolver.
//
// Operations:
//
//	add/sub   - require "date" and "days"; returns base, days and result.
//	diff      - requires "date" (start) and "end_date"; returns signed days.
//	range     - like diff but inclusive of both endpoints.
func NewDateMath(resolver *DateResolver) tool.Tool {
	return tool.NewFunctionTool(
		"date_math",
		"Calculate date offsets and intervals (LLM-based parsing).",
		dateMathSchema,
		func(ctx context.Context, args map[string]any) (any, error) {
			return dateMath(ctx, resolver, args)
		},
	)
}

func dateMath(ctx context.Context, resolver *DateResolver, args map[string]any) (any, error) {
	op := strings.ToLower(strings.TrimSpace(stringArg(args, "operation")))

	switch op {
	case "add", "sub":
		date := stringArg(args, "date")
		days, hasDays := intArg(args, "days")
		if date == "" || !hasDays {
			return nil, fmt.Errorf("add/sub require 'date' and 'days'")
		}
		baseISO, err := resolver.Resolve(ctx, date)
		if err != nil {
			return nil, err
		}
		delta := days
		if op == "sub" {
			delta = -delta
		}
		base, err := time.Parse("2006-01-02", baseISO)
		if err != nil {
			return nil, fmt.Errorf("invalid base date %q", baseISO)
		}
		return map[string]any{
			"operation": op,
			"base":      baseISO,
			"days":      days,
			"result":    base.AddDate(0, 0, delta).Format("2006-01-02"),
		}, nil

	case "diff", "range":
		date := stringArg(args, "date")
		endDate := stringArg(args, "end_date")
		if date == "" || endDate == "" {
			return nil, fmt.Errorf("diff/range require 'date' (start) and 'end_date' (end)")
		}
		startISO, err := resolver.Resolve(ctx, date)
		if err != nil {
			return nil, err
		}
		endISO, err := resolver.Resolve(ctx, endDate)
		if err != nil {
			return nil, err
		}
		diff, err := daysBetween(startISO, endISO)
		if err != nil {
			return nil, err
		}
		if op == "diff" {
			return map[string]any{"operation": "diff", "start": startISO, "end": endISO, "days": diff}, nil
		}
		return map[string]any{"operation": "range", "start": startISO, "end": endISO, "days_inclusive": diff + 1}, nil

	default:
		return nil, fmt.Errorf("operation must be one of: add, sub, diff, range")
	}
}

// daysBetween returns the signed whole-day distance between two ISO dates.
func daysBetween(startISO, endISO string) (int, error) {
	start, err := time.Parse("2006-01-02", startISO)
	if err != nil {
		return 0, fmt.Errorf("invalid start date %q", startISO)
	}
	end, err := time.Parse("2006-01-02", endISO)
	if err != nil {
		return 0, fmt.Errorf("invalid end date %q", endISO)
	}
	return int(end.Sub(start).Hours() / 24), nil
}

// stringArg reads a string argument, tolerating absence.
func stringArg(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}

// intArg reads an integer argument, tolerating the float64 form produced by
// JSON decoding.
func intArg(args map[string]any, key string) (int, bool) {
	switch v := args[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	}
	return 0, false
}
