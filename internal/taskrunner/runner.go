// Package taskrunner executes independent tasks with bounded concurrency and
// chains batches into ordered phases.
package taskrunner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
)

// Status of a finished task.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusTimedOut  Status = "timed_out"
	StatusCancelled Status = "cancelled"
)

// ErrTaskTimeout marks a task that exceeded its deadline.
var ErrTaskTimeout = errors.New("TASK_TIMEOUT")

// Task is one unit of work. Run must honour ctx.
type Task struct {
	ID       string
	Critical bool
	// Timeout overrides Options.TaskTimeout when positive.
	Timeout time.Duration
	Run     func(ctx context.Context) (interface{}, error)
}

// TaskResult is the outcome of one task.
type TaskResult struct {
	ID       string
	Critical bool
	Status   Status
	Output   interface{}
	Err      error
	Duration time.Duration
}

// Succeeded reports whether the task finished without error.
func (r TaskResult) Succeeded() bool {
	return r.Status == StatusSucceeded
}

// Options control a batch.
type Options struct {
	// MaxConcurrency is a hard ceiling; values < 1 mean 1.
	MaxConcurrency        int
	StopOnCriticalFailure bool
	TaskTimeout           time.Duration
}

// BatchResult holds per-task results in task order.
type BatchResult struct {
	Results  []TaskResult
	Duration time.Duration
	// Err is set when a critical task failed and the batch was aborted.
	Err error
}

// Failed reports whether the batch was aborted.
func (b *BatchResult) Failed() bool {
	return b.Err != nil
}

// Output returns the output of the task with id.
func (b *BatchResult) Output(id string) (interface{}, bool) {
	for _, r := range b.Results {
		if r.ID == id && r.Succeeded() {
			return r.Output, true
		}
	}
	return nil, false
}

// Result returns the result of the task with id.
func (b *BatchResult) Result(id string) (TaskResult, bool) {
	for _, r := range b.Results {
		if r.ID == id {
			return r, true
		}
	}
	return TaskResult{}, false
}

// Failures returns every task that did not succeed.
func (b *BatchResult) Failures() []TaskResult {
	var out []TaskResult
	for _, r := range b.Results {
		if !r.Succeeded() {
			out = append(out, r)
		}
	}
	return out
}

// CriticalTaskError is returned when a critical task fails.
type CriticalTaskError struct {
	TaskID string
	Err    error
}

func (e *CriticalTaskError) Error() string {
	return fmt.Sprintf("critical task %s failed: %v", e.TaskID, e.Err)
}

func (e *CriticalTaskError) Unwrap() error {
	return e.Err
}

// RunParallel runs tasks with at most opts.MaxConcurrency in flight; the rest
// queue. Non-critical failures are collected. A critical failure with
// StopOnCriticalFailure cancels outstanding and queued tasks.
func RunParallel(ctx context.Context, tasks []Task, opts Options) *BatchResult {
	start := time.Now()
	results := make([]TaskResult, len(tasks))

	limit := opts.MaxConcurrency
	if limit < 1 {
		limit = 1
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(limit)

	for i, task := range tasks {
		eg.Go(func() error {
			results[i] = runOne(egCtx, task, opts.TaskTimeout)
			r := results[i]
			if task.Critical && opts.StopOnCriticalFailure && !r.Succeeded() && r.Status != StatusCancelled {
				return &CriticalTaskError{TaskID: task.ID, Err: r.Err}
			}
			return nil
		})
	}

	err := eg.Wait()
	if err == nil && ctx.Err() != nil {
		err = ctx.Err()
	}

	return &BatchResult{
		Results:  results,
		Duration: time.Since(start),
		Err:      err,
	}
}

func runOne(ctx context.Context, task Task, defaultTimeout time.Duration) TaskResult {
	res := TaskResult{ID: task.ID, Critical: task.Critical}

	if err := ctx.Err(); err != nil {
		res.Status = StatusCancelled
		res.Err = err
		return res
	}

	timeout := task.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	taskCtx := ctx
	cancel := func() {}
	if timeout > 0 {
		taskCtx, cancel = context.WithTimeout(ctx, timeout)
	}
	defer cancel()

	type outcome struct {
		out interface{}
		err error
	}
	done := make(chan outcome, 1)
	start := time.Now()
	go func() {
		out, err := task.Run(taskCtx)
		done <- outcome{out, err}
	}()

	select {
	case o := <-done:
		res.Duration = time.Since(start)
		res.Output, res.Err = o.out, o.err
	case <-taskCtx.Done():
		res.Duration = time.Since(start)
		res.Err = taskCtx.Err()
	}

	switch {
	case res.Err == nil:
		res.Status = StatusSucceeded
	case ctx.Err() != nil:
		res.Status = StatusCancelled
	case errors.Is(res.Err, context.DeadlineExceeded) || errors.Is(taskCtx.Err(), context.DeadlineExceeded):
		res.Status = StatusTimedOut
		res.Err = fmt.Errorf("%w: %s after %s", ErrTaskTimeout, task.ID, timeout)
	default:
		res.Status = StatusFailed
	}
	return res
}
