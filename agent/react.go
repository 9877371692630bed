package agent

import (
	"context"

	"github.com/sbrizzi/reagent/core"
	"github.com/sbrizzi/reagent/model"
	"github.com/sbrizzi/reagent/parse"
	"github.com/sbrizzi/reagent/prompt"
	"github.com/sbrizzi/reagent/tool"
)

// ReAct is the step-wise Reason-Act-Observe loop: one decision is solicited
// per model round-trip and a final answer is accepted at any step.
//
// Termination guarantees, in priority order within a step:
//  1. Final decision -> return the cleaned answer.
//  2. Three consecutive identical action signatures -> StuckMessage.
//  3. MaxSteps iterations exhausted -> StepLimitMessage.
//
// Unparseable output consumes a step but is not fatal.
type ReAct struct {
	loopCore
}

// NewReAct constructs the step-loop agent. The tool registry and the system
// prompt are fixed at construction; the returned agent is safe for
// concurrent Run calls.
func NewReAct(provider model.Provider, registry *tool.Registry, optFns ...func(o *Options)) *ReAct {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	executor := tool.NewExecutor(registry, opts.Logger)
	return &ReAct{loopCore: newLoopCore(provider, executor, prompt.ReActSystem(registry), opts)}
}

// Run executes the loop for up to MaxSteps iterations. See Agent for the
// error contract.
func (a *ReAct) Run(ctx context.Context, userQuery string, observer StepObserver) (string, error) {
	r := newRun(userQuery, observer)
	a.logger.Info("agent.run.start", "run_id", r.id, "variant", "react", "max_steps", a.opts.MaxSteps)

	for step := 0; step < a.opts.MaxSteps; step++ {
		text, err := a.ask(ctx, r, "")
		if err != nil {
			return "", err
		}
		r.notify("Next: " + text)

		decision := parse.Parse(text)
		switch decision.Kind {
		case core.DecisionFinal:
			a.logger.Info("agent.run.final", "run_id", r.id, "steps", step+1)
			r.notify("Final Answer: " + decision.Final)
			return decision.Final, nil

		case core.DecisionAction:
			if msg := a.executeAction(ctx, r, decision.Action); msg != "" {
				return msg, nil
			}

		default:
			a.recordUnparsed(r)
		}
	}

	a.logger.Warn("agent.run.step_limit", "run_id", r.id)
	r.notify("Final Answer: " + StepLimitMessage)
	return StepLimitMessage, nil
}

var _ Agent = (*ReAct)(nil)
