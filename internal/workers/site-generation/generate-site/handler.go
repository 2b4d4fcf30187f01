// internal/workers/site-generation/generate-site/handler.go
package generatesite

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"site-pipeline/internal/artifacts"
	"site-pipeline/internal/common/aws"
	"site-pipeline/internal/common/errors"
	"site-pipeline/internal/common/logger"
	"site-pipeline/internal/common/metrics"
	"site-pipeline/internal/models"
	"site-pipeline/internal/orchestrator"
)

const (
	TaskType = "site.generate"
)

// Generator runs one pipeline.
type Generator interface {
	Generate(ctx context.Context, req *orchestrator.GenerateRequest) *models.PipelineResult
}

// Notifier reports finished runs.
type Notifier interface {
	NotifyRunCompleted(ctx context.Context, note aws.RunNotification) error
}

type HandlerOptions struct {
	Config    *Config
	Generator Generator
	Notifier  Notifier
	Logger    logger.Logger
}

type Handler struct {
	config     *Config
	generator  Generator
	notifier   Notifier
	logger     logger.Logger
	errHandler *errors.ErrorHandler
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", TaskType, err)
	}
	if opts.Generator == nil {
		return nil, fmt.Errorf("generator is required")
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewStructured("info", "json")
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})

	return &Handler{
		config:     cfg,
		generator:  opts.Generator,
		notifier:   opts.Notifier,
		logger:     log,
		errHandler: errors.NewErrorHandler(log),
	}, nil
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	metrics.JobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.JobsActive.WithLabelValues(TaskType).Dec()

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":             job.GetKey(),
		"processInstanceKey": job.GetProcessInstanceKey(),
	})

	input, err := h.parseInput(job)
	if err != nil {
		h.fail(context.Background(), client, job, err)
		return
	}

	output, err := h.Execute(ctx, input)
	if err != nil {
		h.fail(context.Background(), client, job, err)
		return
	}

	// the run may have used up ctx; completion gets its own deadline
	h.completeJob(context.Background(), client, job, output)
	metrics.JobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.JobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
}

func (h *Handler) parseInput(job entities.Job) (*Input, error) {
	var input Input
	if err := json.Unmarshal([]byte(job.GetVariables()), &input); err != nil {
		return nil, errors.NewInputValidationFailedError(fmt.Sprintf("parse job variables: %v", err))
	}
	if input.Intake.ProjectID == "" {
		return nil, errors.NewInputValidationFailedError("intake.projectId is required")
	}
	if err := artifacts.ValidateID(input.Intake.ProjectID); err != nil {
		return nil, errors.NewInputValidationFailedError("intake.projectId: " + err.Error())
	}
	return &input, nil
}

// Execute runs the pipeline for input, writes its files and notifies. A
// failed run is returned as an error after the failure notification.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	res := h.generator.Generate(ctx, &orchestrator.GenerateRequest{
		Intake:          input.Intake,
		ExistingPack:    input.ExistingPack,
		ForceRegenerate: input.ForceRegenerate,
	})

	if !res.Success {
		h.notify(ctx, input.Intake, res, "")
		return nil, runError(res)
	}

	var dir string
	if h.config.WriteArtifacts {
		var err error
		dir, err = artifacts.Write(h.config.OutputDir, res)
		if err != nil {
			return nil, err
		}
	}
	h.notify(ctx, input.Intake, res, dir)

	out := &Output{
		Success:       true,
		RunID:         res.RunID,
		ProjectID:     res.ProjectID,
		CacheHit:      res.Metrics.CacheHit,
		FileCount:     len(res.GeneratedFiles),
		OutputDir:     dir,
		RequiredTodos: len(res.RequiredTodos()),
		Warnings:      res.Errors,
	}
	if res.ContentPack != nil {
		out.ContentHash = res.ContentPack.Hash
	}
	return out, nil
}

func (h *Handler) notify(ctx context.Context, intake models.ProjectIntake, res *models.PipelineResult, dir string) {
	if h.notifier == nil {
		return
	}
	if err := h.notifier.NotifyRunCompleted(ctx, aws.NewRunNotification(intake, res, dir)); err != nil {
		h.logger.Warn("run notification failed", map[string]interface{}{
			"runId": res.RunID,
			"error": err.Error(),
		})
	}
}

// runError picks the error that ended a failed run.
func runError(res *models.PipelineResult) error {
	for _, e := range res.Errors {
		if e.Recoverable {
			continue
		}
		if e.Code == string(errors.ErrCodeInputValidationFailed) {
			return errors.NewInputValidationFailedError(e.Message)
		}
		return errors.NewFatalError(e.Phase, fmt.Errorf("%s: %s", e.Code, e.Message))
	}
	return errors.NewFatalError(models.PhaseFailed, fmt.Errorf("run %s failed", res.RunID))
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.GetKey()).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func (h *Handler) fail(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	metrics.JobsFailed.WithLabelValues(TaskType, string(errors.Normalize(err).Code)).Inc()
	h.errHandler.HandleJobError(ctx, client, job, err)
}
