// internal/workers/agents/code-renderer/agent.go
package coderenderer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"site-pipeline/internal/agents/invoker"
	"site-pipeline/internal/common/config"
	apperrors "site-pipeline/internal/common/errors"
	"site-pipeline/internal/common/logger"
	"site-pipeline/internal/common/validation"
	"site-pipeline/internal/models"
	"site-pipeline/internal/taskrunner"
)

const AgentName = config.AgentCodeRenderer

// ErrUntraceableText is returned when rendered files contain copy that is not
// in the content pack.
var ErrUntraceableText = errors.New("UNTRACEABLE_TEXT")

const modelSystemPrompt = `You generate a Next.js app router site from a content pack.
Import the pack with: import { content } from "@/data/content" and read every
visible text from it. Do not write any copy yourself. Return
{"files": [{"path", "content", "type"}], "dependencies": [{"name", "version"}]}
with type one of page, component, utility or config. Do not emit
src/data/content.ts, it is provided.`

var modelSchema = validation.MustCompile("renderer.files", `{
	"type": "object",
	"required": ["files"],
	"properties": {
		"files": {
			"type": "array",
			"minItems": 1,
			"items": {
				"type": "object",
				"required": ["path", "content"],
				"properties": {
					"path": {"type": "string", "minLength": 1},
					"content": {"type": "string"},
					"type": {"enum": ["page", "component", "utility", "config", ""]}
				}
			}
		},
		"dependencies": {
			"type": "array",
			"items": {"type": "object", "required": ["name", "version"]}
		}
	}
}`)

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

// Render turns a content pack into source files in two phases: render, then
// post-process. Any failure is returned as an error and no files.
func (a *Agent) Render(ctx context.Context, input *Input) (*Output, error) {
	if input.Pack == nil {
		return nil, errors.New("code renderer: content pack is required")
	}
	start := time.Now()
	out := &Output{}
	var extraDeps []models.Dependency

	renderTasks := a.templateTasks(input)
	if a.config.Mode == ModeModel {
		renderTasks = []taskrunner.Task{a.modelTask(input, out, &extraDeps)}
	}

	phases := []taskrunner.Phase{
		{
			Name: "render",
			Options: taskrunner.Options{
				MaxConcurrency:        a.config.MaxConcurrency,
				StopOnCriticalFailure: true,
			},
			Build: func(*taskrunner.PhaseResult) ([]taskrunner.Task, error) {
				return renderTasks, nil
			},
		},
		{
			Name:    "post-process",
			Options: taskrunner.Options{MaxConcurrency: 1, StopOnCriticalFailure: true},
			Build: func(prev *taskrunner.PhaseResult) ([]taskrunner.Task, error) {
				var files []models.GeneratedFile
				for _, r := range prev.Batch.Results {
					if batch, ok := r.Output.([]models.GeneratedFile); ok {
						files = append(files, batch...)
					}
				}
				return []taskrunner.Task{{
					ID:       "post-process",
					Critical: true,
					Run: func(context.Context) (interface{}, error) {
						return a.finish(files, input.Pack)
					},
				}}, nil
			},
		},
	}

	res, err := a.executor.RunPhased(ctx, phases)
	if err != nil {
		a.logger.Error("Rendering failed", map[string]interface{}{"error": err.Error()})
		return nil, renderError(err)
	}

	final, _ := res.Last().Batch.Output("post-process")
	out.Files = final.([]models.GeneratedFile)
	out.Dependencies, out.EnvVars = requirements(input.Addons, extraDeps)
	out.Duration = time.Since(start)

	a.logger.Info("Rendering completed", map[string]interface{}{
		"mode":         a.config.Mode,
		"files":        len(out.Files),
		"dependencies": len(out.Dependencies),
		"durationMs":   out.Duration.Milliseconds(),
	})
	return out, nil
}

func (a *Agent) templateTasks(input *Input) []taskrunner.Task {
	r := &renderer{pack: input.Pack, addons: input.Addons}
	task := func(id string, fn func() ([]models.GeneratedFile, error)) taskrunner.Task {
		return taskrunner.Task{
			ID:       id,
			Critical: true,
			Run: func(context.Context) (interface{}, error) {
				return fn()
			},
		}
	}
	return []taskrunner.Task{
		task("shell", r.shell),
		task("pages", r.pages),
		task("legal", r.legal),
	}
}

func (a *Agent) modelTask(input *Input, out *Output, extraDeps *[]models.Dependency) taskrunner.Task {
	return taskrunner.Task{
		ID:       "model",
		Critical: true,
		Run: func(ctx context.Context) (interface{}, error) {
			res, err := invoker.Invoke[modelOutput](ctx, a.invoker, invoker.Call{
				Agent:        AgentName,
				SystemPrompt: modelSystemPrompt,
				UserPrompt:   buildModelPrompt(input),
				Schema:       modelSchema,
			}, a.config.Invoker, func(m *modelOutput) error {
				violations, err := TraceCheck(m.Files, input.Pack)
				if err != nil {
					return err
				}
				return violationError(violations)
			})
			if err != nil {
				return nil, err
			}
			out.Usage = res.Usage
			out.Invocations = res.Attempts
			*extraDeps = res.Output.Dependencies
			return res.Output.Files, nil
		},
	}
}

// finish post-processes and re-verifies the final file set.
func (a *Agent) finish(files []models.GeneratedFile, pack *models.ContentPack) ([]models.GeneratedFile, error) {
	final, err := postProcess(files, pack)
	if err != nil {
		return nil, err
	}
	violations, err := TraceCheck(final, pack)
	if err != nil {
		return nil, err
	}
	if err := violationError(violations); err != nil {
		return nil, err
	}
	return final, nil
}

func violationError(violations []Violation) error {
	if len(violations) == 0 {
		return nil
	}
	shown := violations
	if len(shown) > 5 {
		shown = shown[:5]
	}
	parts := make([]string, len(shown))
	for i, v := range shown {
		parts[i] = v.String()
	}
	return fmt.Errorf("%w: %d literal(s) not in content pack: %s", ErrUntraceableText, len(violations), strings.Join(parts, "; "))
}

func buildModelPrompt(input *Input) string {
	var parts []string
	parts = append(parts, "Content pack:")
	parts = append(parts, toJSON(input.Pack))
	if len(input.Addons) > 0 {
		parts = append(parts, fmt.Sprintf("\nEnabled add-ons: %s", strings.Join(input.Addons, ", ")))
	}
	return strings.Join(parts, "\n")
}

// renderError unwraps the phase and task wrappers down to the agent error
// where there is one.
func renderError(err error) error {
	if agentErr, ok := apperrors.AsAgentError(err); ok {
		return agentErr
	}
	return fmt.Errorf("code renderer: %w", err)
}

func toJSON(v interface{}) string {
	data, _ := json.MarshalIndent(v, "", "  ")
	return string(data)
}
