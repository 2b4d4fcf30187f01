// internal/workers/agents/content-pack-generator/agent.go
package contentpackgenerator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"site-pipeline/internal/agents/invoker"
	"site-pipeline/internal/common/config"
	apperrors "site-pipeline/internal/common/errors"
	"site-pipeline/internal/common/llm"
	"site-pipeline/internal/common/logger"
	"site-pipeline/internal/models"
	"site-pipeline/internal/taskrunner"
)

const (
	AgentName = config.AgentContentPack

	// Sub-generation task names, also used as model request agent names.
	CoreTask       = AgentName
	LegalTask      = AgentName + ".legal"
	ComponentsTask = AgentName + ".components"
)

type Agent struct {
	config   *Config
	invoker  *invoker.Invoker
	executor taskrunner.Executor
	logger   logger.Logger
}

func New(cfg *Config, inv *invoker.Invoker, exec taskrunner.Executor, log logger.Logger) *Agent {
	return &Agent{
		config:   cfg,
		invoker:  inv,
		executor: exec,
		logger:   logger.ForAgent(log, AgentName),
	}
}

// Run generates a full content pack. The core content is critical; legal text
// and component copy fail soft into placeholders so the pack stays complete.
// The returned pack is not stamped.
func (a *Agent) Run(ctx context.Context, input *Input) (*Output, error) {
	start := time.Now()
	revisions := a.ownRevisions(input.Revisions)

	tasks := []taskrunner.Task{
		{
			ID:       CoreTask,
			Critical: true,
			Timeout:  a.invoker.Budget(a.config.Core),
			Run: func(ctx context.Context) (interface{}, error) {
				return invoker.Invoke[corePack](ctx, a.invoker, invoker.Call{
					Agent:        CoreTask,
					SystemPrompt: coreSystemPrompt,
					UserPrompt:   buildCorePrompt(input, revisions),
					Schema:       coreSchema,
				}, a.config.Core, validateCore)
			},
		},
		{
			ID:      LegalTask,
			Timeout: a.invoker.Budget(a.config.Legal),
			Run: func(ctx context.Context) (interface{}, error) {
				return invoker.Invoke[models.LegalContent](ctx, a.invoker, invoker.Call{
					Agent:        LegalTask,
					SystemPrompt: legalSystemPrompt,
					UserPrompt:   buildLegalPrompt(input, forPaths(revisions, "legal")),
					Schema:       legalSchema,
				}, a.config.Legal, nil)
			},
		},
		{
			ID:      ComponentsTask,
			Timeout: a.invoker.Budget(a.config.Components),
			Run: func(ctx context.Context) (interface{}, error) {
				return invoker.Invoke[models.ComponentCopy](ctx, a.invoker, invoker.Call{
					Agent:        ComponentsTask,
					SystemPrompt: componentsSystemPrompt,
					UserPrompt:   buildComponentsPrompt(input, forPaths(revisions, "components")),
					Schema:       componentsSchema,
				}, a.config.Components, nil)
			},
		},
	}

	batch := a.executor.RunParallel(ctx, tasks, taskrunner.Options{
		MaxConcurrency:        a.config.MaxConcurrency,
		StopOnCriticalFailure: true,
	})
	if batch.Failed() {
		return nil, coreError(batch)
	}

	out := &Output{}
	pack := &models.ContentPack{}

	core, ok := batch.Output(CoreTask)
	if !ok {
		return nil, coreError(batch)
	}
	coreRes := core.(*invoker.Result[corePack])
	pack.Settings = coreRes.Output.Settings
	pack.Pages = coreRes.Output.Pages
	pack.Navigation = coreRes.Output.Navigation
	pack.Footer = coreRes.Output.Footer
	pack.SEO = coreRes.Output.SEO
	out.add(coreRes.Usage)

	if legal, ok := batch.Output(LegalTask); ok {
		res := legal.(*invoker.Result[models.LegalContent])
		pack.Legal = res.Output
		out.add(res.Usage)
	} else {
		pack.Legal = placeholderLegal()
		out.Warnings = append(out.Warnings, failureWarning(batch, LegalTask))
	}
	if pack.Legal.Imprint == nil || pack.Legal.Privacy == nil {
		fill := placeholderLegal()
		if pack.Legal.Imprint == nil {
			pack.Legal.Imprint = fill.Imprint
		}
		if pack.Legal.Privacy == nil {
			pack.Legal.Privacy = fill.Privacy
		}
	}

	if comps, ok := batch.Output(ComponentsTask); ok {
		res := comps.(*invoker.Result[models.ComponentCopy])
		pack.Components = res.Output
		out.add(res.Usage)
	} else {
		out.Warnings = append(out.Warnings, failureWarning(batch, ComponentsTask))
	}

	applyStrategy(pack, input)

	out.Pack = pack
	out.Duration = time.Since(start)
	out.Invocations = len(tasks)

	a.logger.Info("Content pack generated", map[string]interface{}{
		"attempt":    input.Attempt,
		"pages":      len(pack.Pages),
		"warnings":   len(out.Warnings),
		"durationMs": out.Duration.Milliseconds(),
	})
	return out, nil
}

func (o *Output) add(u llm.Usage) {
	o.Usage.InputTokens += u.InputTokens
	o.Usage.OutputTokens += u.OutputTokens
}

// ownRevisions keeps instructions addressed to this agent. Strategy is stable
// for the whole run, so instructions for the strategist are dropped.
func (a *Agent) ownRevisions(all []models.RevisionInstruction) []models.RevisionInstruction {
	var out []models.RevisionInstruction
	for _, r := range all {
		target := strings.ToLower(strings.TrimSpace(r.TargetAgent))
		if target == "" || strings.HasPrefix(target, AgentName) {
			out = append(out, r)
			continue
		}
		a.logger.Info("Ignoring revision for another agent", map[string]interface{}{
			"targetAgent": r.TargetAgent,
			"instruction": r.Instruction,
		})
	}
	return out
}

func forPaths(revisions []models.RevisionInstruction, prefix string) []models.RevisionInstruction {
	var out []models.RevisionInstruction
	for _, r := range revisions {
		for _, p := range r.Paths {
			if strings.HasPrefix(p, prefix) {
				out = append(out, r)
				break
			}
		}
	}
	return out
}

func validateCore(c *corePack) error {
	if len(c.Pages) == 0 {
		return errors.New("pages is empty")
	}
	for i, p := range c.Pages {
		if len(p.Sections) == 0 {
			return fmt.Errorf("pages[%d] has no sections", i)
		}
	}
	return nil
}

// applyStrategy fills settings the model left empty from the strategy and
// intake, and gives sections stable ids.
func applyStrategy(pack *models.ContentPack, input *Input) {
	brand := input.Strategy.BrandStrategy
	s := &pack.Settings

	if s.Brand.Name == "" {
		s.Brand.Name = brand.Identity.Name
	}
	if s.Brand.Tagline == "" {
		s.Brand.Tagline = brand.Identity.Tagline
	}
	if s.Colors.Primary == "" {
		s.Colors = brand.Colors
	}
	if s.Typography.HeadingFont == "" && s.Typography.BodyFont == "" {
		s.Typography = brand.Typography
	}
	if s.Contact.Email == "" {
		s.Contact.Email = input.Intake.ContactEmail
	}
	if pack.SEO == nil {
		pack.SEO = make(map[string]models.SEOEntry)
	}

	for pi := range pack.Pages {
		for si := range pack.Pages[pi].Sections {
			sec := &pack.Pages[pi].Sections[si]
			if sec.ID == "" {
				sec.ID = fmt.Sprintf("%s-%d", sec.Type, si)
			}
			if sec.Content == nil {
				sec.Content = map[string]interface{}{}
			}
		}
	}
}

func placeholderLegal() models.LegalContent {
	return models.LegalContent{
		Imprint: &models.LegalDocument{
			Title: "{{TODO: imprint title}}",
			Sections: []models.LegalSection{
				{Heading: "{{TODO: company details heading}}", Body: "{{TODO: legal name, address, representative and register entry}}"},
			},
		},
		Privacy: &models.LegalDocument{
			Title: "{{TODO: privacy policy title}}",
			Sections: []models.LegalSection{
				{Heading: "{{TODO: privacy policy heading}}", Body: "{{TODO: privacy policy text}}"},
			},
		},
	}
}

// coreError returns the agent error behind a failed critical task.
func coreError(batch *taskrunner.BatchResult) error {
	r, ok := batch.Result(CoreTask)
	if !ok || r.Err == nil {
		if batch.Err != nil {
			return apperrors.NewProviderError(AgentName, batch.Err, false)
		}
		return apperrors.NewProviderError(AgentName, errors.New("core generation produced no output"), false)
	}
	if agentErr, ok := apperrors.AsAgentError(r.Err); ok {
		return agentErr
	}
	if errors.Is(r.Err, taskrunner.ErrTaskTimeout) {
		return apperrors.NewAgentTimeoutError(AgentName, r.Duration)
	}
	return apperrors.NewProviderError(AgentName, r.Err, false)
}

// failureWarning describes a soft-failed sub-generation with the code of
// its underlying failure.
func failureWarning(batch *taskrunner.BatchResult, id string) Warning {
	r, _ := batch.Result(id)
	w := Warning{Task: id, Code: apperrors.ErrCodeProviderError}

	reason := string(r.Status)
	if r.Err != nil {
		reason = r.Err.Error()
	}
	switch agentErr, ok := apperrors.AsAgentError(r.Err); {
	case ok:
		w.Code = agentErr.Code()
	case r.Status == taskrunner.StatusTimedOut, errors.Is(r.Err, taskrunner.ErrTaskTimeout):
		w.Code = apperrors.ErrCodeTimeout
	}
	w.Message = fmt.Sprintf("%s failed, using placeholders: %s", id, reason)
	return w
}
