// Package invoker runs a single structured request against a model provider:
// it enforces the timeout, retries a bounded number of times, parses and
// validates the JSON answer and records cost metrics.
package invoker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"site-pipeline/internal/common/config"
	apperrors "site-pipeline/internal/common/errors"
	"site-pipeline/internal/common/llm"
	"site-pipeline/internal/common/logger"
	"site-pipeline/internal/common/metrics"
	"site-pipeline/internal/common/validation"
)

// Config controls one agent's model calls.
type Config struct {
	Model       string
	MaxTokens   int
	Timeout     time.Duration
	Temperature float64
	MaxRetries  int
}

// ConfigFrom converts the file configuration of an agent.
func ConfigFrom(c config.AgentConfig) Config {
	return Config{
		Model:       c.Model,
		MaxTokens:   c.MaxTokens,
		Timeout:     config.GetDuration(c.Timeout),
		Temperature: c.Temperature,
		MaxRetries:  c.MaxRetries,
	}
}

// Call describes the prompt side of an invocation.
type Call struct {
	Agent        string
	SystemPrompt string
	UserPrompt   string
	Schema       *validation.Schema
}

// Result is a successful invocation.
type Result[T any] struct {
	Output   T
	Raw      string
	Duration time.Duration
	Usage    llm.Usage
	Attempts int
}

// Validator rejects outputs that parsed but are semantically unusable.
type Validator[T any] func(*T) error

type Invoker struct {
	provider llm.Provider
	logger   logger.Logger
	backoff  func(attempt int) time.Duration
}

type Option func(*Invoker)

// WithBackoff overrides the delay before retry attempt n (n >= 1).
func WithBackoff(fn func(attempt int) time.Duration) Option {
	return func(i *Invoker) { i.backoff = fn }
}

func New(provider llm.Provider, log logger.Logger, opts ...Option) *Invoker {
	inv := &Invoker{
		provider: provider,
		logger:   log,
		backoff: func(attempt int) time.Duration {
			return time.Duration(100*(1<<(attempt-1))) * time.Millisecond
		},
	}
	for _, opt := range opts {
		opt(inv)
	}
	return inv
}

// Budget is the longest an Invoke with cfg can take: every attempt at its
// full timeout plus the backoff between attempts.
func (inv *Invoker) Budget(cfg Config) time.Duration {
	total := cfg.Timeout * time.Duration(cfg.MaxRetries+1)
	for n := 1; n <= cfg.MaxRetries; n++ {
		total += inv.backoff(n)
	}
	return total
}

// Provider returns the underlying provider.
func (inv *Invoker) Provider() llm.Provider {
	return inv.provider
}

const jsonInstruction = "\n\nRespond with a single JSON object only. Do not add commentary."

// Invoke performs the call with up to cfg.MaxRetries retries. Failures are
// returned as *errors.AgentError.
func Invoke[T any](ctx context.Context, inv *Invoker, call Call, cfg Config, validate Validator[T]) (*Result[T], error) {
	log := logger.ForAgent(inv.logger, call.Agent)
	start := time.Now()

	req := llm.Request{
		Agent:        call.Agent,
		Model:        cfg.Model,
		SystemPrompt: call.SystemPrompt + jsonInstruction,
		UserPrompt:   call.UserPrompt,
		MaxTokens:    cfg.MaxTokens,
		Temperature:  cfg.Temperature,
	}
	if call.Schema != nil {
		req.SchemaHint = call.Schema.Source()
		req.SystemPrompt += "\nThe JSON must satisfy this schema:\n" + req.SchemaHint
	}

	var (
		usage    llm.Usage
		lastErr  *apperrors.AgentError
		attempts int
	)

loop:
	for attempts < cfg.MaxRetries+1 {
		if attempts > 0 {
			select {
			case <-time.After(inv.backoff(attempts)):
			case <-ctx.Done():
				lastErr = parentDone(ctx, call.Agent, cfg.Timeout)
				break loop
			}
		}
		attempts++

		resp, err := complete(ctx, inv.provider, req, cfg.Timeout)
		if err != nil {
			switch {
			case ctx.Err() != nil:
				lastErr = parentDone(ctx, call.Agent, cfg.Timeout)
			case errors.Is(err, context.DeadlineExceeded):
				lastErr = apperrors.NewAgentTimeoutError(call.Agent, cfg.Timeout)
			default:
				lastErr = apperrors.NewProviderError(call.Agent, err, llm.IsRetryable(err))
			}
			log.Warn("Model call failed", map[string]interface{}{
				"attempt": attempts,
				"kind":    string(lastErr.Kind),
				"error":   lastErr.Message,
			})
			if !lastErr.Retryable {
				break loop
			}
			continue
		}

		usage.InputTokens += resp.Usage.InputTokens
		usage.OutputTokens += resp.Usage.OutputTokens

		out, err := Decode[T](resp.Text, call.Schema)
		if err == nil && validate != nil {
			err = validate(&out)
		}
		if err != nil {
			lastErr = apperrors.NewInvalidOutputError(call.Agent, err.Error(), resp.Text)
			log.Warn("Model output rejected", map[string]interface{}{
				"attempt": attempts,
				"reason":  truncate(err.Error(), 300),
			})
			continue
		}

		duration := time.Since(start)
		record(call.Agent, "success", duration, usage)
		log.Info("Agent invocation completed", map[string]interface{}{
			"durationMs":   duration.Milliseconds(),
			"inputTokens":  usage.InputTokens,
			"outputTokens": usage.OutputTokens,
			"attempts":     attempts,
			"success":      true,
		})
		return &Result[T]{
			Output:   out,
			Raw:      resp.Text,
			Duration: duration,
			Usage:    usage,
			Attempts: attempts,
		}, nil
	}

	if lastErr == nil {
		lastErr = apperrors.NewProviderError(call.Agent, fmt.Errorf("no attempt was made"), false)
	}
	lastErr.Attempts = attempts
	duration := time.Since(start)
	record(call.Agent, strings.ToLower(string(lastErr.Kind)), duration, usage)
	log.Error("Agent invocation failed", map[string]interface{}{
		"durationMs":   duration.Milliseconds(),
		"inputTokens":  usage.InputTokens,
		"outputTokens": usage.OutputTokens,
		"attempts":     attempts,
		"kind":         string(lastErr.Kind),
		"success":      false,
	})
	return nil, lastErr
}

// complete races the provider call against the per-attempt deadline so a
// provider that ignores cancellation cannot stall the caller.
func complete(ctx context.Context, p llm.Provider, req llm.Request, timeout time.Duration) (*llm.Response, error) {
	if timeout <= 0 {
		return p.Complete(ctx, req)
	}
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type outcome struct {
		resp *llm.Response
		err  error
	}
	done := make(chan outcome, 1)
	go func() {
		resp, err := p.Complete(attemptCtx, req)
		done <- outcome{resp, err}
	}()

	select {
	case o := <-done:
		if o.err == nil && attemptCtx.Err() != nil {
			return nil, attemptCtx.Err()
		}
		return o.resp, o.err
	case <-attemptCtx.Done():
		return nil, attemptCtx.Err()
	}
}

func parentDone(ctx context.Context, agent string, timeout time.Duration) *apperrors.AgentError {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		e := apperrors.NewAgentTimeoutError(agent, timeout)
		e.Retryable = false
		return e
	}
	return apperrors.NewProviderError(agent, ctx.Err(), false)
}

func record(agent, status string, d time.Duration, usage llm.Usage) {
	metrics.AgentInvocations.WithLabelValues(agent, status).Inc()
	metrics.AgentDuration.WithLabelValues(agent).Observe(d.Seconds())
	metrics.AgentTokens.WithLabelValues(agent, "input").Add(float64(usage.InputTokens))
	metrics.AgentTokens.WithLabelValues(agent, "output").Add(float64(usage.OutputTokens))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
