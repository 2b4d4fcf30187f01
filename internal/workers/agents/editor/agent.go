// internal/workers/agents/editor/agent.go
package editor

import (
	"context"
	"errors"

	"site-pipeline/internal/agents/invoker"
	"site-pipeline/internal/common/config"
	"site-pipeline/internal/common/logger"
	"site-pipeline/internal/models"
)

const (
	AgentName = config.AgentEditor

	// CodeReviewTask is the request name of the rendered-code pass.
	CodeReviewTask = AgentName + ".code"

	contentPackAgent = config.AgentContentPack
)

type Agent struct {
	config  *Config
	invoker *invoker.Invoker
	logger  logger.Logger
}

func New(cfg *Config, inv *invoker.Invoker, log logger.Logger) *Agent {
	return &Agent{
		config:  cfg,
		invoker: inv,
		logger:  logger.ForAgent(log, AgentName),
	}
}

// Review scores a content pack. Scores are clamped and the aggregate is
// recomputed; Approved is left as the model reported it until ApplyPolicy runs.
func (a *Agent) Review(ctx context.Context, input *Input) (*Output, error) {
	if input.Pack == nil {
		return nil, errors.New("editor: content pack is required")
	}
	return a.run(ctx, invoker.Call{
		Agent:        AgentName,
		SystemPrompt: contentSystemPrompt,
		UserPrompt:   buildContentPrompt(input),
		Schema:       verdictSchema,
	})
}

// ReviewCode scores rendered files.
func (a *Agent) ReviewCode(ctx context.Context, input *Input) (*Output, error) {
	if len(input.Files) == 0 {
		return nil, errors.New("editor: no files to review")
	}
	return a.run(ctx, invoker.Call{
		Agent:        CodeReviewTask,
		SystemPrompt: codeSystemPrompt,
		UserPrompt:   buildCodePrompt(input, a.config.MaxFileBytes),
		Schema:       verdictSchema,
	})
}

func (a *Agent) run(ctx context.Context, call invoker.Call) (*Output, error) {
	res, err := invoker.Invoke[models.EditorVerdict](ctx, a.invoker, call, a.config.Invoker, nil)
	if err != nil {
		return nil, err
	}

	verdict := res.Output
	Normalize(&verdict)

	a.logger.Info("Review completed", map[string]interface{}{
		"request":   call.Agent,
		"aggregate": verdict.Scores.Aggregate,
		"critical":  verdict.CriticalCount(),
		"feedback":  len(verdict.Feedback),
	})

	return &Output{
		Verdict:  verdict,
		Usage:    res.Usage,
		Duration: res.Duration,
		Attempts: res.Attempts,
	}, nil
}
