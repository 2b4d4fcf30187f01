// internal/workers/agents/strategist/agent.go
package strategist

import (
	"context"
	"errors"
	"strings"

	"site-pipeline/internal/agents/invoker"
	"site-pipeline/internal/common/config"
	"site-pipeline/internal/common/logger"
	"site-pipeline/internal/models"
)

const AgentName = config.AgentStrategist

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

// Run asks the model for a strategy. Errors are *errors.AgentError; callers
// decide whether to fall back.
func (a *Agent) Run(ctx context.Context, input *Input) (*Output, error) {
	res, err := invoker.Invoke[models.StrategyOutput](ctx, a.invoker, invoker.Call{
		Agent:        AgentName,
		SystemPrompt: systemPrompt,
		UserPrompt:   buildUserPrompt(input.Intake.Clone()),
		Schema:       outputSchema,
	}, a.config.Invoker, validate)
	if err != nil {
		return nil, err
	}

	a.logger.Info("Strategy generated", map[string]interface{}{
		"pages": len(res.Output.SiteStructure.Pages),
	})

	return &Output{
		Strategy: res.Output,
		Usage:    res.Usage,
		Duration: res.Duration,
		Attempts: res.Attempts,
	}, nil
}

func validate(s *models.StrategyOutput) error {
	if strings.TrimSpace(s.BrandStrategy.Identity.Name) == "" {
		return errors.New("brandStrategy.identity.name is empty")
	}
	if strings.TrimSpace(s.BrandStrategy.Identity.Tagline) == "" {
		return errors.New("brandStrategy.identity.tagline is empty")
	}
	if len(s.SiteStructure.Pages) == 0 {
		return errors.New("siteStructure.pages is empty")
	}
	return nil
}
