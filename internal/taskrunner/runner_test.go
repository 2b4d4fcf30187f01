package taskrunner

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// ==========================
// Test Helpers
// ==========================

func sleepTask(id string, d time.Duration, out interface{}) Task {
	return Task{
		ID: id,
		Run: func(ctx context.Context) (interface{}, error) {
			select {
			case <-time.After(d):
				return out, nil
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		},
	}
}

func failTask(id string, critical bool) Task {
	return Task{
		ID:       id,
		Critical: critical,
		Run: func(ctx context.Context) (interface{}, error) {
			return nil, fmt.Errorf("%s broke", id)
		},
	}
}

// ==========================
// RunParallel
// ==========================

func TestRunParallel_AllSucceed(t *testing.T) {
	defer goleak.VerifyNone(t)

	tasks := []Task{
		sleepTask("a", 5*time.Millisecond, 1),
		sleepTask("b", 1*time.Millisecond, 2),
		sleepTask("c", 3*time.Millisecond, 3),
	}

	res := RunParallel(context.Background(), tasks, Options{MaxConcurrency: 3})
	require.NoError(t, res.Err)
	require.Len(t, res.Results, 3)

	for i, id := range []string{"a", "b", "c"} {
		assert.Equal(t, id, res.Results[i].ID)
		assert.Equal(t, StatusSucceeded, res.Results[i].Status)
		assert.Equal(t, i+1, res.Results[i].Output)
	}
	out, ok := res.Output("b")
	assert.True(t, ok)
	assert.Equal(t, 2, out)
}

func TestRunParallel_ConcurrencyCeiling(t *testing.T) {
	defer goleak.VerifyNone(t)

	var inFlight, peak int32
	tasks := make([]Task, 10)
	for i := range tasks {
		tasks[i] = Task{
			ID: fmt.Sprintf("t%d", i),
			Run: func(ctx context.Context) (interface{}, error) {
				n := atomic.AddInt32(&inFlight, 1)
				for {
					p := atomic.LoadInt32(&peak)
					if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
						break
					}
				}
				time.Sleep(5 * time.Millisecond)
				atomic.AddInt32(&inFlight, -1)
				return nil, nil
			},
		}
	}

	res := RunParallel(context.Background(), tasks, Options{MaxConcurrency: 3})
	require.NoError(t, res.Err)
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(3))
	assert.Len(t, res.Failures(), 0)
}

func TestRunParallel_NonCriticalFailureCollected(t *testing.T) {
	defer goleak.VerifyNone(t)

	tasks := []Task{
		sleepTask("ok", time.Millisecond, "fine"),
		failTask("optional", false),
	}

	res := RunParallel(context.Background(), tasks, Options{MaxConcurrency: 2, StopOnCriticalFailure: true})
	require.NoError(t, res.Err)

	failures := res.Failures()
	require.Len(t, failures, 1)
	assert.Equal(t, "optional", failures[0].ID)
	assert.Equal(t, StatusFailed, failures[0].Status)
}

func TestRunParallel_CriticalFailureCancelsSiblings(t *testing.T) {
	defer goleak.VerifyNone(t)

	tasks := []Task{
		sleepTask("slow", 5*time.Second, nil),
		failTask("core", true),
		sleepTask("queued", 5*time.Second, nil),
	}

	start := time.Now()
	res := RunParallel(context.Background(), tasks, Options{MaxConcurrency: 2, StopOnCriticalFailure: true})
	require.Error(t, res.Err)
	assert.Less(t, time.Since(start), 2*time.Second)

	var critErr *CriticalTaskError
	require.True(t, errors.As(res.Err, &critErr))
	assert.Equal(t, "core", critErr.TaskID)

	slow, _ := res.Result("slow")
	assert.Equal(t, StatusCancelled, slow.Status)
	queued, _ := res.Result("queued")
	assert.Equal(t, StatusCancelled, queued.Status)
}

func TestRunParallel_CriticalFailureWithoutStop(t *testing.T) {
	res := RunParallel(context.Background(), []Task{failTask("core", true)}, Options{MaxConcurrency: 1})
	require.NoError(t, res.Err)
	assert.Len(t, res.Failures(), 1)
}

func TestRunParallel_TaskTimeout(t *testing.T) {
	defer goleak.VerifyNone(t)

	stubborn := Task{
		ID: "stubborn",
		Run: func(ctx context.Context) (interface{}, error) {
			<-ctx.Done()
			time.Sleep(20 * time.Millisecond)
			return "late", nil
		},
		Timeout: 10 * time.Millisecond,
	}

	res := RunParallel(context.Background(), []Task{stubborn, sleepTask("quick", time.Millisecond, 1)}, Options{MaxConcurrency: 2})
	require.NoError(t, res.Err)

	r, _ := res.Result("stubborn")
	assert.Equal(t, StatusTimedOut, r.Status)
	assert.ErrorIs(t, r.Err, ErrTaskTimeout)
	assert.Less(t, r.Duration, 20*time.Millisecond)

	q, _ := res.Result("quick")
	assert.True(t, q.Succeeded())

	// let the stubborn goroutine finish before the leak check
	time.Sleep(40 * time.Millisecond)
}

func TestRunParallel_ParentCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := RunParallel(ctx, []Task{sleepTask("a", time.Second, nil)}, Options{MaxConcurrency: 1})
	assert.ErrorIs(t, res.Err, context.Canceled)
	assert.Equal(t, StatusCancelled, res.Results[0].Status)
}

// ==========================
// RunPhased
// ==========================

func TestRunPhased_PassesOutputForward(t *testing.T) {
	defer goleak.VerifyNone(t)

	phases := []Phase{
		{
			Name:    "render",
			Options: Options{MaxConcurrency: 2},
			Build: func(prev *PhaseResult) ([]Task, error) {
				assert.Nil(t, prev)
				return []Task{sleepTask("x", time.Millisecond, "X"), sleepTask("y", time.Millisecond, "Y")}, nil
			},
		},
		{
			Name:    "assemble",
			Options: Options{MaxConcurrency: 1},
			Build: func(prev *PhaseResult) ([]Task, error) {
				require.NotNil(t, prev)
				assert.Equal(t, "render", prev.Name)
				x, _ := prev.Batch.Output("x")
				y, _ := prev.Batch.Output("y")
				return []Task{{
					ID: "join",
					Run: func(ctx context.Context) (interface{}, error) {
						return x.(string) + y.(string), nil
					},
				}}, nil
			},
		},
	}

	res, err := RunPhased(context.Background(), phases)
	require.NoError(t, err)
	require.Len(t, res.Phases, 2)

	joined, ok := res.Last().Batch.Output("join")
	require.True(t, ok)
	assert.Equal(t, "XY", joined)
}

func TestRunPhased_FailingPhaseAborts(t *testing.T) {
	var built bool
	phases := []Phase{
		{
			Name:    "first",
			Options: Options{MaxConcurrency: 1, StopOnCriticalFailure: true},
			Build: func(*PhaseResult) ([]Task, error) {
				return []Task{failTask("core", true)}, nil
			},
		},
		{
			Name: "second",
			Build: func(*PhaseResult) ([]Task, error) {
				built = true
				return nil, nil
			},
		},
	}

	res, err := RunPhased(context.Background(), phases)
	require.Error(t, err)

	var phaseErr *PhaseError
	require.True(t, errors.As(err, &phaseErr))
	assert.Equal(t, "first", phaseErr.Phase)
	assert.Len(t, res.Phases, 1)
	assert.False(t, built)
}

func TestRunPhased_BuildError(t *testing.T) {
	_, err := RunPhased(context.Background(), []Phase{{
		Name:  "broken",
		Build: func(*PhaseResult) ([]Task, error) { return nil, errors.New("no input") },
	}})
	assert.ErrorContains(t, err, "no input")
}

// ==========================
// LocalExecutor
// ==========================

func TestLocalExecutor_ClampsOptions(t *testing.T) {
	exec := NewLocalExecutor(2, time.Second)

	opts := exec.clamp(Options{MaxConcurrency: 10})
	assert.Equal(t, 2, opts.MaxConcurrency)
	assert.Equal(t, time.Second, opts.TaskTimeout)

	opts = exec.clamp(Options{MaxConcurrency: 1, TaskTimeout: time.Minute})
	assert.Equal(t, 1, opts.MaxConcurrency)
	assert.Equal(t, time.Minute, opts.TaskTimeout)

	serial := NewSerialExecutor(0)
	assert.Equal(t, 1, serial.clamp(Options{MaxConcurrency: 8}).MaxConcurrency)
}
