// Package agent implements the control loop at the heart of the module: it
// alternates between querying a model provider, parsing the reply into a
// tagged decision, executing tools and feeding observations back, until a
// final answer is produced or a termination guard fires.
//
// Two loop variants share the same contracts behind the Agent interface:
//
//   - ReAct solicits one decision per model round-trip and accepts a final
//     answer at any step.
//   - Planner solicits a whole ordered plan up front, confirms each action
//     against accumulated observations, and only accepts a final answer at
//     an explicit check-final query after the plan has executed.
//
// Both honor the anti-repetition window and the step/replan ceilings, and
// both normalize every non-bootstrap failure into the string-returning Run
// contract: tool failures become observations, unparseable model output
// becomes a diagnostic observation, and exhausted budgets become fixed
// fallback strings. Only provider transport failures (and context
// cancellation) surface as errors.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sbrizzi/reagent/core"
	"github.com/sbrizzi/reagent/logging"
	"github.com/sbrizzi/reagent/model"
	"github.com/sbrizzi/reagent/tool"
)

// Terminal fallback strings. Run returns these verbatim; they are part of
// the external contract and must not change between releases.
const (
	// StuckMessage is returned when the same action signature repeats three
	// consecutive times.
	StuckMessage = "I’m stuck repeating the same action. Please rephrase or provide more details."
	// StepLimitMessage is returned when the step budget is exhausted without
	// reaching a final answer.
	StepLimitMessage = "I could not reach a final answer within the step limit."
	// ReplanLimitMessage is returned by the planner variant when the replan
	// budget is exhausted without reaching a final answer.
	ReplanLimitMessage = "I could not reach a final answer within the replanning limit."
)

// Diagnostic strings injected into the conversation when model output is
// not understood.
const (
	unparsedObservation = "Observation: model output not understood; please output a single JSON action or Final Answer."
	unparsedWarning     = "Warning: unparseable output; retrying."
)

// repeatWindow is the number of consecutive identical action signatures that
// triggers the stuck-repeating abort.
const repeatWindow = 3

// StepObserver receives single-line text notifications at each significant
// loop event ("Action: ...", "Observation: ...", "Final Answer: ..."). It
// must tolerate being called zero or many times per step; its return is
// ignored and it cannot influence loop control flow. A nil observer is
// valid and disables notifications.
type StepObserver func(line string)

// Agent is the shared external contract of both loop variants: Run always
// returns a plain string — the cleaned final answer or one of the fixed
// fallback strings. The returned error is non-nil only for provider
// transport failures or context cancellation; loop-internal conditions
// never surface as errors.
type Agent interface {
	Run(ctx context.Context, userQuery string, observer StepObserver) (string, error)
}

// Options configure a loop agent. The zero value is completed by defaults
// in the constructors.
type Options struct {
	// Model and Temperature are forwarded to the provider on every call.
	Model       string
	Temperature float64
	// RequestTimeout bounds each individual model call. Tool handlers carry
	// their own timeouts; the loop itself never sleeps.
	RequestTimeout time.Duration
	// MaxSteps is the hard ceiling on loop iterations (ReAct) and on total
	// executed actions (Planner).
	MaxSteps int
	// MaxReplans bounds how many times the planner variant may discard its
	// plan and request a new one.
	MaxReplans int
	// TodayPhrase is the literal phrase meaning "today" in the locale in
	// use, injected as the target_date default for date-sensitive tools.
	TodayPhrase string
	// DateSensitiveTools lists the tools that receive the target_date
	// default when the model omits it.
	DateSensitiveTools []string
	// SystemPrompt overrides the rendered default template when non-empty.
	SystemPrompt string
	// Logger receives step lifecycle logs. Nil disables logging.
	Logger logging.Logger
}

func defaultOptions() Options {
	return Options{
		Temperature:        0.2,
		RequestTimeout:     60 * time.Second,
		MaxSteps:           10,
		MaxReplans:         2,
		TodayPhrase:        "oggi",
		DateSensitiveTools: []string{"openmeteo_forecast", "date_parse"},
		Logger:             logging.NoOpLogger{},
	}
}

// loopCore holds the immutable collaborators both variants share. All
// per-run mutable state lives in the run struct, so one agent instance can
// serve concurrent Run calls.
type loopCore struct {
	provider     model.Provider
	executor     *tool.Executor
	opts         Options
	systemPrompt string
	logger       logging.Logger
}

func newLoopCore(provider model.Provider, executor *tool.Executor, systemPrompt string, opts Options) loopCore {
	if opts.SystemPrompt != "" {
		systemPrompt = opts.SystemPrompt
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return loopCore{
		provider:     provider,
		executor:     executor,
		opts:         opts,
		systemPrompt: systemPrompt,
		logger:       logger,
	}
}

// run is the per-invocation state: the append-only observation history and
// the sliding signature window. It is owned exclusively by one Run call and
// discarded when Run returns.
type run struct {
	id           string
	query        string
	observations []string
	window       []string
	actions      int
	observer     StepObserver
}

func newRun(query string, observer StepObserver) *run {
	return &run{id: uuid.NewString(), query: query, observer: observer}
}

// notify forwards a single-line event to the observer, if any.
func (r *run) notify(line string) {
	if r.observer != nil {
		r.observer(line)
	}
}

// observe appends a turn block to the conversation history.
func (r *run) observe(block string) {
	r.observations = append(r.observations, block)
}

// pushSignature records an action signature in the sliding window of the
// last three and reports whether the window is full of identical entries.
func (r *run) pushSignature(sig string) bool {
	r.window = append(r.window, sig)
	if len(r.window) > repeatWindow {
		r.window = r.window[1:]
	}
	if len(r.window) < repeatWindow {
		return false
	}
	for _, s := range r.window {
		if s != sig {
			return false
		}
	}
	return true
}

// ask performs one model round-trip: system prompt, user query, accumulated
// observations as a single assistant block, plus an optional extra user
// instruction (used by the planner's confirm and check-final queries).
func (c *loopCore) ask(ctx context.Context, r *run, extra string) (string, error) {
	msgs := []model.Message{
		{Role: model.RoleSystem, Content: c.systemPrompt},
		{Role: model.RoleUser, Content: r.query},
	}
	if len(r.observations) > 0 {
		msgs = append(msgs, model.Message{Role: model.RoleAssistant, Content: strings.Join(r.observations, "\n")})
	}
	if extra != "" {
		msgs = append(msgs, model.Message{Role: model.RoleUser, Content: extra})
	}

	callCtx := ctx
	if c.opts.RequestTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, c.opts.RequestTimeout)
		defer cancel()
	}

	start := time.Now()
	text, err := c.provider.Complete(callCtx, model.Request{
		Model:       c.opts.Model,
		Temperature: c.opts.Temperature,
		Messages:    msgs,
	})
	if err != nil {
		c.logger.Error("agent.model.error", "run_id", r.id, "error", err.Error())
		return "", err
	}
	c.logger.Debug("agent.model.completed", "run_id", r.id, "duration_ms", time.Since(start).Milliseconds())
	return strings.TrimSpace(text), nil
}

// applyDefaults injects the safety defaults into a missing argument mapping:
// units always defaults to "metric", and date-sensitive tools receive the
// configured today-phrase as target_date. Injection is silent toward the
// model (the observation does not disclose it) but logged for operators.
func (c *loopCore) applyDefaults(r *run, act *core.ActionRequest) {
	var injected []string
	if _, ok := act.Args["units"]; !ok {
		act.Args["units"] = "metric"
		injected = append(injected, "units")
	}
	if c.isDateSensitive(act.Tool) {
		if _, ok := act.Args["target_date"]; !ok {
			act.Args["target_date"] = c.opts.TodayPhrase
			injected = append(injected, "target_date")
		}
	}
	if len(injected) > 0 {
		c.logger.Debug("agent.defaults.injected", "run_id", r.id, "tool", act.Tool, "fields", strings.Join(injected, ","))
	}
}

func (c *loopCore) isDateSensitive(name string) bool {
	for _, t := range c.opts.DateSensitiveTools {
		if t == name {
			return true
		}
	}
	return false
}

// executeAction runs one resolved action through the executor, appends the
// turn block to the conversation and notifies the observer. The returned
// string is the stuck-repeating terminal message when the anti-repetition
// guard fires, empty otherwise.
func (c *loopCore) executeAction(ctx context.Context, r *run, act core.ActionRequest) string {
	c.applyDefaults(r, &act)

	if r.pushSignature(act.Signature()) {
		c.logger.Warn("agent.repeat.abort", "run_id", r.id, "tool", act.Tool)
		r.notify("Final Answer: " + StuckMessage)
		return StuckMessage
	}

	argsJSON := marshalArgs(act.Args)
	r.notify("Action: " + act.Tool)
	r.notify("Action Input: " + argsJSON)

	obs := c.executor.Execute(ctx, act.Tool, act.Args)
	obsText := core.StringifyObservation(obs)

	r.observe(fmt.Sprintf("Action: %s\nAction Input: %s\nObservation: %s", act.Tool, argsJSON, obsText))
	r.actions++
	r.notify("Observation: " + obsText)
	return ""
}

// recordUnparsed appends the fixed diagnostic observation for output that
// matched neither accepted shape and warns the observer. Counts against the
// step budget but is not fatal.
func (c *loopCore) recordUnparsed(r *run) {
	c.logger.Warn("agent.decision.unparsed", "run_id", r.id)
	r.observe(unparsedObservation)
	r.notify(unparsedWarning)
}

func marshalArgs(args map[string]any) string {
	b, err := json.Marshal(args)
	if err != nil {
		return fmt.Sprintf("%v", args)
	}
	return string(b)
}
