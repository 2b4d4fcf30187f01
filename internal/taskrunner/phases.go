package taskrunner

import (
	"context"
	"fmt"
	"time"
)

// Phase is one batch in a phased run. Build receives the previous phase's
// result (nil for the first phase) and returns the tasks to run.
type Phase struct {
	Name    string
	Options Options
	Build   func(prev *PhaseResult) ([]Task, error)
}

// PhaseResult is a finished phase.
type PhaseResult struct {
	Name  string
	Batch *BatchResult
}

// PhasedResult collects every phase that ran, in order.
type PhasedResult struct {
	Phases   []PhaseResult
	Duration time.Duration
}

// Last returns the final phase that ran.
func (p *PhasedResult) Last() *PhaseResult {
	if len(p.Phases) == 0 {
		return nil
	}
	return &p.Phases[len(p.Phases)-1]
}

// PhaseError aborts a phased run.
type PhaseError struct {
	Phase string
	Err   error
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("phase %s: %v", e.Phase, e.Err)
}

func (e *PhaseError) Unwrap() error {
	return e.Err
}

// RunPhased executes phases in order. A phase whose batch fails, or whose
// Build returns an error, aborts the chain; completed phases are returned
// alongside the error.
func RunPhased(ctx context.Context, phases []Phase) (*PhasedResult, error) {
	return runPhased(ctx, phases, RunParallel)
}

type batchFunc func(ctx context.Context, tasks []Task, opts Options) *BatchResult

func runPhased(ctx context.Context, phases []Phase, run batchFunc) (*PhasedResult, error) {
	start := time.Now()
	out := &PhasedResult{}

	for _, phase := range phases {
		if err := ctx.Err(); err != nil {
			out.Duration = time.Since(start)
			return out, &PhaseError{Phase: phase.Name, Err: err}
		}

		tasks, err := phase.Build(out.Last())
		if err != nil {
			out.Duration = time.Since(start)
			return out, &PhaseError{Phase: phase.Name, Err: err}
		}

		batch := run(ctx, tasks, phase.Options)
		out.Phases = append(out.Phases, PhaseResult{Name: phase.Name, Batch: batch})
		if batch.Failed() {
			out.Duration = time.Since(start)
			return out, &PhaseError{Phase: phase.Name, Err: batch.Err}
		}
	}

	out.Duration = time.Since(start)
	return out, nil
}

// Executor is the execution strategy injected into the orchestrator.
type Executor interface {
	RunParallel(ctx context.Context, tasks []Task, opts Options) *BatchResult
	RunPhased(ctx context.Context, phases []Phase) (*PhasedResult, error)
}

// LocalExecutor runs tasks as goroutines in this process. MaxConcurrency caps
// every batch regardless of the batch's own options; TaskTimeout is the
// default when a batch sets none.
type LocalExecutor struct {
	MaxConcurrency int
	TaskTimeout    time.Duration
}

func NewLocalExecutor(maxConcurrency int, taskTimeout time.Duration) *LocalExecutor {
	return &LocalExecutor{MaxConcurrency: maxConcurrency, TaskTimeout: taskTimeout}
}

// NewSerialExecutor runs one task at a time.
func NewSerialExecutor(taskTimeout time.Duration) *LocalExecutor {
	return &LocalExecutor{MaxConcurrency: 1, TaskTimeout: taskTimeout}
}

func (e *LocalExecutor) RunParallel(ctx context.Context, tasks []Task, opts Options) *BatchResult {
	return RunParallel(ctx, tasks, e.clamp(opts))
}

func (e *LocalExecutor) RunPhased(ctx context.Context, phases []Phase) (*PhasedResult, error) {
	return runPhased(ctx, phases, e.RunParallel)
}

func (e *LocalExecutor) clamp(opts Options) Options {
	if e.MaxConcurrency > 0 && (opts.MaxConcurrency < 1 || opts.MaxConcurrency > e.MaxConcurrency) {
		opts.MaxConcurrency = e.MaxConcurrency
	}
	if opts.TaskTimeout <= 0 {
		opts.TaskTimeout = e.TaskTimeout
	}
	return opts
}
