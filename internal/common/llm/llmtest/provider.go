// Package llmtest provides a scripted llm.Provider for tests.
package llmtest

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"site-pipeline/internal/common/llm"
)

// Handler answers one request.
type Handler func(ctx context.Context, req llm.Request) (*llm.Response, error)

// Provider routes requests by agent name to scripted handlers and counts
// calls. It is safe for concurrent use.
type Provider struct {
	mu       sync.Mutex
	handlers map[string]Handler
	calls    map[string]int
	requests []llm.Request
}

func New() *Provider {
	return &Provider{
		handlers: make(map[string]Handler),
		calls:    make(map[string]int),
	}
}

func (p *Provider) Name() string { return "scripted" }

// On registers the handler for an agent.
func (p *Provider) On(agent string, h Handler) *Provider {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handlers[agent] = h
	return p
}

// OnJSON answers every request for agent with v marshaled to JSON.
func (p *Provider) OnJSON(agent string, v interface{}) *Provider {
	return p.On(agent, JSON(v))
}

// OnSequence answers successive requests with successive handlers; the last
// handler repeats.
func (p *Provider) OnSequence(agent string, hs ...Handler) *Provider {
	var mu sync.Mutex
	i := 0
	return p.On(agent, func(ctx context.Context, req llm.Request) (*llm.Response, error) {
		mu.Lock()
		h := hs[i]
		if i < len(hs)-1 {
			i++
		}
		mu.Unlock()
		return h(ctx, req)
	})
}

func (p *Provider) Complete(ctx context.Context, req llm.Request) (*llm.Response, error) {
	p.mu.Lock()
	h, ok := p.handlers[req.Agent]
	p.calls[req.Agent]++
	p.requests = append(p.requests, req)
	p.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("llmtest: no handler for agent %q", req.Agent)
	}
	return h(ctx, req)
}

// Calls returns how many requests an agent made.
func (p *Provider) Calls(agent string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[agent]
}

// TotalCalls returns the number of requests across all agents.
func (p *Provider) TotalCalls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, c := range p.calls {
		n += c
	}
	return n
}

// Requests returns a copy of every request seen.
func (p *Provider) Requests() []llm.Request {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]llm.Request(nil), p.requests...)
}

// Text answers with a fixed string.
func Text(s string) Handler {
	return func(ctx context.Context, req llm.Request) (*llm.Response, error) {
		return &llm.Response{Text: s, Usage: llm.Usage{InputTokens: 10, OutputTokens: len(s) / 4}}, nil
	}
}

// JSON answers with v marshaled to JSON.
func JSON(v interface{}) Handler {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return Text(string(data))
}

// Fail answers with err.
func Fail(err error) Handler {
	return func(ctx context.Context, req llm.Request) (*llm.Response, error) {
		return nil, err
	}
}

// Block waits until the request context ends.
func Block() Handler {
	return func(ctx context.Context, req llm.Request) (*llm.Response, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}
}
