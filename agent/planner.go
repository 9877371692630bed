package agent

import (
	"context"
	"encoding/json"

	"github.com/sbrizzi/reagent/core"
	"github.com/sbrizzi/reagent/model"
	"github.com/sbrizzi/reagent/parse"
	"github.com/sbrizzi/reagent/prompt"
	"github.com/sbrizzi/reagent/tool"
)

// Planner is the plan/replan loop variant: the model produces a whole
// ordered plan up front, each action after the first is confirmed or
// adjusted against the observations accumulated so far, and once the plan
// has fully executed a separate check-final query decides between a final
// answer and a new plan.
//
// Termination semantics differ from ReAct and are deliberate: a final answer
// is NOT accepted during plan execution — a "Final Answer:" emitted at a
// confirm step is treated as confirm-unchanged — and is only honored at the
// check-final query. The run is bounded three ways:
//  1. Three consecutive identical action signatures -> StuckMessage.
//  2. More than MaxSteps actions executed in total -> StepLimitMessage.
//  3. MaxReplans plan replacements exhausted -> ReplanLimitMessage.
type Planner struct {
	loopCore
}

// NewPlanner constructs the plan-loop agent. Safe for concurrent Run calls.
func NewPlanner(provider model.Provider, registry *tool.Registry, optFns ...func(o *Options)) *Planner {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	executor := tool.NewExecutor(registry, opts.Logger)
	return &Planner{loopCore: newLoopCore(provider, executor, prompt.PlannerSystem(registry), opts)}
}

// Run executes up to 1+MaxReplans plans. See Agent for the error contract.
func (a *Planner) Run(ctx context.Context, userQuery string, observer StepObserver) (string, error) {
	r := newRun(userQuery, observer)
	a.logger.Info("agent.run.start", "run_id", r.id, "variant", "planner", "max_replans", a.opts.MaxReplans)

	// Phase 1: the system prompt itself solicits the initial plan.
	planText, err := a.ask(ctx, r, "")
	if err != nil {
		return "", err
	}

	for round := 0; round <= a.opts.MaxReplans; round++ {
		plan := parse.ParsePlan(planText)
		if len(plan) == 0 {
			a.recordUnparsed(r)
			if round == a.opts.MaxReplans {
				break
			}
			if planText, err = a.ask(ctx, r, prompt.PlanRetry); err != nil {
				return "", err
			}
			continue
		}

		r.notify("Plan: " + marshalPlan(plan))
		a.logger.Info("agent.plan.accepted", "run_id", r.id, "round", round, "actions", len(plan))

		msg, err := a.executePlan(ctx, r, plan)
		if err != nil {
			return "", err
		}
		if msg != "" {
			return msg, nil
		}

		// Phase 3: ask whether the accumulated observations suffice.
		answerText, err := a.ask(ctx, r, prompt.CheckFinal)
		if err != nil {
			return "", err
		}
		r.notify("Check-Final: " + answerText)

		if body, ok := parse.CleanFinal(answerText); ok {
			a.logger.Info("agent.run.final", "run_id", r.id, "rounds", round+1)
			r.notify("Final Answer: " + body)
			return body, nil
		}

		// Not final: the reply is the candidate next plan.
		planText = answerText
	}

	a.logger.Warn("agent.run.replan_limit", "run_id", r.id)
	r.notify("Final Answer: " + ReplanLimitMessage)
	return ReplanLimitMessage, nil
}

// executePlan runs the plan's actions in order, confirming each action after
// the first against the observations gathered so far. It returns a terminal
// message when a loop guard fires, empty when the plan completed.
func (a *Planner) executePlan(ctx context.Context, r *run, plan []core.ActionRequest) (string, error) {
	for i, act := range plan {
		if r.actions >= a.opts.MaxSteps {
			a.logger.Warn("agent.run.step_limit", "run_id", r.id)
			r.notify("Final Answer: " + StepLimitMessage)
			return StepLimitMessage, nil
		}

		if i > 0 {
			adjusted, err := a.confirmAction(ctx, r, act)
			if err != nil {
				return "", err
			}
			act = adjusted
		}

		if msg := a.executeAction(ctx, r, act); msg != "" {
			return msg, nil
		}
	}
	return "", nil
}

// confirmAction gives the model a chance to resolve dependencies ("<from_prev>"
// placeholders) in the next planned action. An action-shaped reply replaces
// the planned action; anything else — including a forbidden mid-plan final
// answer — leaves it unchanged.
func (a *Planner) confirmAction(ctx context.Context, r *run, act core.ActionRequest) (core.ActionRequest, error) {
	instruction := prompt.ConfirmAction + "\nNext action: " + marshalAction(act)
	text, err := a.ask(ctx, r, instruction)
	if err != nil {
		return core.ActionRequest{}, err
	}
	r.notify("Confirm: " + text)

	if d := parse.Parse(text); d.Kind == core.DecisionAction {
		return d.Action, nil
	}
	return act, nil
}

func marshalAction(act core.ActionRequest) string {
	b, err := json.Marshal(act)
	if err != nil {
		return act.Signature()
	}
	return string(b)
}

func marshalPlan(plan []core.ActionRequest) string {
	b, err := json.Marshal(plan)
	if err != nil {
		return "[]"
	}
	return string(b)
}

var _ Agent = (*Planner)(nil)
