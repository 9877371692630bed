// Package model defines the synchronous completion boundary the agent loops
// consume. Providers receive an ordered list of role-tagged messages plus
// generation parameters and return raw text; everything downstream of that
// text (parsing, branching, termination) belongs to the agent core.
package model

import (
	"context"
	"fmt"
	"sync"
)

// Roles understood by providers. Unknown roles are treated as user content.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one role-tagged entry in the conversation sent to a provider.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request captures one completion call. Model and Temperature override the
// provider's defaults when set; cancellation and deadlines travel on the
// context passed to Complete.
type Request struct {
	Model       string    `json:"model,omitempty"`
	Temperature float64   `json:"temperature"`
	Messages    []Message `json:"messages"`
}

// Provider is the opaque completion collaborator. Implementations must be
// safe for concurrent use; the agent issues strictly sequential calls within
// one run but separate runs may overlap.
type Provider interface {
	// Complete performs one synchronous request/response round-trip and
	// returns the generated text. Transport and API failures surface as
	// errors; they are the only loop-external failures an agent reports.
	Complete(ctx context.Context, req Request) (string, error)

	// Info returns metadata about the provider implementation.
	Info() Info
}

// Info describes a provider implementation.
type Info struct {
	Name     string `json:"name"`
	Provider string `json:"provider"` // "openai", "anthropic", "scripted", ...
}

// Scripted is an in-memory Provider that replays a fixed sequence of
// responses, recording every request it receives. Useful for loop tests and
// examples; safe for concurrent use.
type Scripted struct {
	mu        sync.Mutex
	responses []string
	requests  []Request
	repeat    bool
}

// NewScripted builds a provider replaying the given responses in order.
// When the script is exhausted the last response repeats, so bounded loops
// can be driven with a single entry.
func NewScripted(responses ...string) *Scripted {
	return &Scripted{responses: responses, repeat: true}
}

// Complete pops the next scripted response.
func (s *Scripted) Complete(_ context.Context, req Request) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, req)
	if len(s.responses) == 0 {
		return "", fmt.Errorf("scripted provider: no responses configured")
	}
	idx := len(s.requests) - 1
	if idx >= len(s.responses) {
		if !s.repeat {
			return "", fmt.Errorf("scripted provider: script exhausted after %d responses", len(s.responses))
		}
		idx = len(s.responses) - 1
	}
	return s.responses[idx], nil
}

// Requests returns a copy of every request received so far.
func (s *Scripted) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// CallCount returns how many completions have been requested.
func (s *Scripted) CallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

// Info implements Provider.
func (s *Scripted) Info() Info {
	return Info{Name: "scripted", Provider: "scripted"}
}
