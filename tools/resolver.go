package tools

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/sbrizzi/reagent/model"
)

var isoDateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

const resolverSystemPrompt = "You are a date normalization assistant.\n" +
	"You must resolve the user-provided date expression into an absolute calendar date " +
	"in ISO 8601 format (YYYY-MM-DD).\n" +
	"Today's reference date is: %s.\n" +
	"If the input cannot be understood, respond with the single token: ERROR."

// DateResolver normalizes natural-language date expressions ("domani",
// "next friday") into ISO dates through the same model.Provider boundary the
// agent uses. ISO inputs pass through without a model call. The provider,
// model id and timezone are injected at construction; the resolver reads no
// ambient environment.
type DateResolver struct {
	provider model.Provider
	model    string
	location *time.Location
	now      func() time.Time
}

// NewDateResolver builds a resolver for the given IANA timezone. An
// unknown timezone is a construction error.
func NewDateResolver(provider model.Provider, modelID, timezone string) (*DateResolver, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("tools: unknown timezone %q: %w", timezone, err)
	}
	return &DateResolver{provider: provider, model: modelID, location: loc, now: time.Now}, nil
}

// Today returns the current date in the resolver's timezone as YYYY-MM-DD.
func (r *DateResolver) Today() string {
	return r.now().In(r.location).Format("2006-01-02")
}

// Resolve turns a date expression into an ISO date. Already-ISO input is
// returned as-is; anything else goes through one zero-temperature model
// call anchored to Today.
func (r *DateResolver) Resolve(ctx context.Context, expression string) (string, error) {
	expr := strings.TrimSpace(expression)
	if expr == "" {
		return "", fmt.Errorf("empty date expression")
	}
	if isoDateRe.MatchString(expr) {
		return expr, nil
	}

	out, err := r.provider.Complete(ctx, model.Request{
		Model:       r.model,
		Temperature: 0,
		Messages: []model.Message{
			{Role: model.RoleSystem, Content: fmt.Sprintf(resolverSystemPrompt, r.Today())},
			{Role: model.RoleUser, Content: fmt.Sprintf("Input: %s\nReturn only the ISO date, nothing else.", expr)},
		},
	})
	if err != nil {
		return "", fmt.Errorf("date resolution failed: %w", err)
	}

	out = strings.TrimSpace(out)
	if strings.HasPrefix(strings.ToUpper(out), "ERROR") || !isoDateRe.MatchString(out) {
		return "", fmt.Errorf("could not parse date from %q", expression)
	}
	return out, nil
}
