package runner

import (
	"context"
	"fmt"
	"time"

	"capeval/pkg/events"
	"capeval/pkg/results"
	"capeval/pkg/task"
	"capeval/pkg/verify"
)

// State is the per-task position in the attempt loop.
type State string

const (
	StateAwaiting  State = "AWAITING_ATTEMPT"
	StatePassed    State = "PASSED"
	StateExhausted State = "EXHAUSTED"
)

// TaskResult is the terminal outcome of running one task.
type TaskResult struct {
	TaskID   string
	State    State
	Attempts []results.Attempt
}

// RunResult summarizes a completed run over a catalog.
type RunResult struct {
	Results   []TaskResult
	Passed    int
	Exhausted int
}

// Runner drives bounded retries per task: obtain one output, validate it,
// record the attempt, stop on first pass or after MaxAttempts failures.
// Execution is strictly sequential, one task and one attempt at a time.
type Runner struct {
	Source      OutputSource
	Recorder    results.Recorder
	MaxAttempts int

	// Bus, when set, receives run/task/attempt events.
	Bus events.EventBus

	// Progress, when set, is called synchronously after each recorded
	// attempt. The run command uses it for live operator feedback between
	// interactive prompts.
	Progress func(a results.Attempt, v verify.Verdict)
}

// RunTask runs the attempt loop for a single task. Every attempt is
// recorded unconditionally, pass or fail, before the loop moves on. A
// source or recorder error aborts the task; attempts recorded before the
// error remain recorded.
func (r *Runner) RunTask(ctx context.Context, t task.Task) (TaskResult, error) {
	res := TaskResult{TaskID: t.ID, State: StateAwaiting}
	r.publish(events.Event{Type: events.EventTaskStart, TaskID: t.ID})

	for attempt := 1; attempt <= r.MaxAttempts; attempt++ {
		output, err := r.Source.Output(ctx, t, attempt)
		if err != nil {
			r.publish(events.Event{Type: events.EventConfigError, TaskID: t.ID, Attempt: attempt, Data: err.Error()})
			return res, fmt.Errorf("obtain output: %w", err)
		}

		verdict := verify.Validate(t, output)
		a := results.Attempt{
			TaskID:      t.ID,
			Attempt:     attempt,
			Output:      output,
			Passed:      verdict.Passed,
			FailureMode: string(verdict.Mode),
			Timestamp:   time.Now(),
		}
		if err := r.Recorder.Record(a); err != nil {
			return res, fmt.Errorf("record task %s attempt %d: %w", t.ID, attempt, err)
		}
		res.Attempts = append(res.Attempts, a)

		r.publish(events.Event{Type: events.EventAttemptResult, TaskID: t.ID, Attempt: attempt, Data: verdict})
		if r.Progress != nil {
			r.Progress(a, verdict)
		}

		if verdict.Passed {
			res.State = StatePassed
			r.publish(events.Event{Type: events.EventTaskPassed, TaskID: t.ID, Attempt: attempt})
			return res, nil
		}
	}

	res.State = StateExhausted
	r.publish(events.Event{Type: events.EventTaskExhausted, TaskID: t.ID, Attempt: r.MaxAttempts})
	return res, nil
}

// Run drives every task in the catalog, in catalog order. A configuration
// error (source failure, recorder failure) aborts the run; everything
// recorded up to that point stays recorded.
func (r *Runner) Run(ctx context.Context, catalog task.Catalog) (RunResult, error) {
	if r.Source == nil {
		return RunResult{}, fmt.Errorf("runner: no output source configured")
	}
	if r.Recorder == nil {
		return RunResult{}, fmt.Errorf("runner: no recorder configured")
	}
	if r.MaxAttempts < 1 {
		return RunResult{}, fmt.Errorf("runner: max attempts must be >= 1, got %d", r.MaxAttempts)
	}

	r.publish(events.Event{Type: events.EventRunStart, Data: map[string]any{
		"tasks":   len(catalog),
		"retries": r.MaxAttempts,
	}})

	var run RunResult
	for _, t := range catalog {
		res, err := r.RunTask(ctx, t)
		if len(res.Attempts) > 0 || err == nil {
			run.Results = append(run.Results, res)
		}
		if err != nil {
			r.publish(events.Event{Type: events.EventRunEnd, Data: "aborted"})
			return run, fmt.Errorf("task %s: %w", t.ID, err)
		}
		switch res.State {
		case StatePassed:
			run.Passed++
		case StateExhausted:
			run.Exhausted++
		}
	}

	r.publish(events.Event{Type: events.EventRunEnd, Data: "completed"})
	return run, nil
}

func (r *Runner) publish(e events.Event) {
	if r.Bus != nil {
		r.Bus.Publish(e)
	}
}
