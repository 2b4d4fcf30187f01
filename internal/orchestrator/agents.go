package orchestrator

import (
	"context"

	"site-pipeline/internal/agents/invoker"
	"site-pipeline/internal/common/config"
	"site-pipeline/internal/common/llm"
	"site-pipeline/internal/common/logger"
	"site-pipeline/internal/taskrunner"

	cr "site-pipeline/internal/workers/agents/code-renderer"
	cpg "site-pipeline/internal/workers/agents/content-pack-generator"
	"site-pipeline/internal/workers/agents/editor"
	"site-pipeline/internal/workers/agents/strategist"
)

type StrategyAgent interface {
	Run(ctx context.Context, input *strategist.Input) (*strategist.Output, error)
}

type ContentAgent interface {
	Run(ctx context.Context, input *cpg.Input) (*cpg.Output, error)
}

type ReviewAgent interface {
	Review(ctx context.Context, input *editor.Input) (*editor.Output, error)
	ReviewCode(ctx context.Context, input *editor.Input) (*editor.Output, error)
}

type RenderAgent interface {
	Render(ctx context.Context, input *cr.Input) (*cr.Output, error)
}

// Agents are the four pipeline stages.
type Agents struct {
	Strategist StrategyAgent
	Content    ContentAgent
	Editor     ReviewAgent
	Renderer   RenderAgent
}

// NewAgents wires every agent to one invoker over provider. exec is the
// execution strategy shared by the agents that fan out.
func NewAgents(cfg *config.Config, provider llm.Provider, exec taskrunner.Executor, log logger.Logger, opts ...invoker.Option) Agents {
	inv := invoker.New(provider, log, opts...)
	return Agents{
		Strategist: strategist.New(strategist.LoadConfig(cfg), inv, log),
		Content:    cpg.New(cpg.LoadConfig(cfg), inv, exec, log),
		Editor:     editor.New(editor.LoadConfig(cfg), inv, log),
		Renderer:   cr.New(cr.LoadConfig(cfg), inv, exec, log),
	}
}
