// Package orchestrator drives one site generation run through its phases:
// cache check, strategy, content generation with bounded revisions, code
// rendering and assembly.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	apperrors "site-pipeline/internal/common/errors"
	"site-pipeline/internal/common/logger"
	"site-pipeline/internal/common/metrics"
	"site-pipeline/internal/common/observability"
	"site-pipeline/internal/contentpack"
	"site-pipeline/internal/models"
	"site-pipeline/internal/store"

	cr "site-pipeline/internal/workers/agents/code-renderer"
	cpg "site-pipeline/internal/workers/agents/content-pack-generator"
	"site-pipeline/internal/workers/agents/editor"
	"site-pipeline/internal/workers/agents/strategist"
)

var pipelineAgents = []string{strategist.AgentName, cpg.AgentName, editor.AgentName, cr.AgentName}

type Orchestrator struct {
	config *Config
	agents Agents
	packs  store.PackStore
	audit  store.AuditSink
	obs    *observability.Observability
	logger logger.Logger
	now    func() time.Time
}

type Option func(*Orchestrator)

// WithAudit records every verdict and run summary into sink.
func WithAudit(sink store.AuditSink) Option {
	return func(o *Orchestrator) { o.audit = sink }
}

func WithObservability(obs *observability.Observability) Option {
	return func(o *Orchestrator) { o.obs = obs }
}

// WithClock replaces time.Now for freshness checks and stamping.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// New creates an orchestrator. packs may be nil, which disables the cache
// lookup and persistence.
func New(cfg *Config, agents Agents, packs store.PackStore, log logger.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		config: cfg,
		agents: agents,
		packs:  packs,
		logger: log,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Generate runs the pipeline. A run either succeeds with a complete file set
// or fails with no files and a non-empty error list; it never returns a
// partial result.
func (o *Orchestrator) Generate(ctx context.Context, req *GenerateRequest) *models.PipelineResult {
	metrics.PipelineRunsActive.Inc()
	defer metrics.PipelineRunsActive.Dec()

	st := &runState{
		intake:  req.Intake.Clone(),
		started: o.now(),
	}
	st.run = models.NewPipelineRun(uuid.New().String(), st.intake.ProjectID, pipelineAgents)

	log := logger.ForRun(o.logger, st.run.ID, st.intake.ProjectID)

	ctx, span := o.obs.StartSpan(ctx, "pipeline.generate",
		attribute.String("project.id", st.intake.ProjectID),
		attribute.String("run.id", st.run.ID),
	)

	log.Info("Pipeline run started", map[string]interface{}{
		"forceRegenerate": req.ForceRegenerate,
		"tier":            st.intake.PackageTier,
	})

	err := o.execute(ctx, st, req, log)
	if err != nil {
		o.fail(st, err, log)
	} else {
		st.run.Success = true
		st.run.Phase = models.PhaseDone
	}
	st.run.FinishedAt = o.now().UTC()

	result := o.result(st)
	o.recordRun(ctx, st, result, log)

	observability.EndSpan(span, err)
	return result
}

func (o *Orchestrator) execute(ctx context.Context, st *runState, req *GenerateRequest, log logger.Logger) error {
	if err := validateIntake(st.intake); err != nil {
		st.run.Phase = models.PhaseCacheCheck
		return err
	}

	hash, err := contentpack.IntakeHash(st.intake)
	if err != nil {
		return apperrors.NewFatalError(models.PhaseCacheCheck, err)
	}
	st.intakeHash = hash

	if err := o.phase(ctx, st, models.PhaseCacheCheck, log, func(ctx context.Context) error {
		st.pack = o.cacheCheck(ctx, st, req, log)
		return nil
	}); err != nil {
		return err
	}

	if !st.run.CacheHit {
		if err := o.phase(ctx, st, models.PhaseStrategy, log, func(ctx context.Context) error {
			return o.runStrategy(ctx, st, log)
		}); err != nil {
			return err
		}

		if err := o.phase(ctx, st, models.PhaseContentGeneration, log, func(ctx context.Context) error {
			return o.generateContent(ctx, st, log)
		}); err != nil {
			return err
		}
	}

	if err := o.phase(ctx, st, models.PhaseCodeRendering, log, func(ctx context.Context) error {
		return o.render(ctx, st, log)
	}); err != nil {
		return err
	}

	return o.phase(ctx, st, models.PhaseAssembly, log, func(ctx context.Context) error {
		return o.assemble(ctx, st, log)
	})
}

// phase runs fn as one state of the machine and records its duration.
func (o *Orchestrator) phase(ctx context.Context, st *runState, name string, log logger.Logger, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return apperrors.NewFatalError(name, err)
	}

	st.run.Phase = name
	log = logger.ForPhase(log, name)
	log.Info("Phase started", nil)

	ctx, span := o.obs.StartSpan(ctx, "pipeline.phase."+name)
	start := time.Now()
	err := fn(ctx)
	d := time.Since(start)
	observability.EndSpan(span, err)

	st.run.PhaseStats(name).Duration += d
	metrics.PipelinePhaseDuration.WithLabelValues(name).Observe(d.Seconds())
	o.obs.RecordPhase(ctx, name, d)

	fields := map[string]interface{}{"durationMs": d.Milliseconds()}
	if err != nil {
		fields["error"] = err.Error()
		log.Error("Phase failed", fields)
		return err
	}
	log.Info("Phase completed", fields)
	return nil
}

func validateIntake(intake models.ProjectIntake) error {
	var missing []string
	if strings.TrimSpace(intake.ProjectID) == "" {
		missing = append(missing, "projectId")
	}
	if strings.TrimSpace(intake.Name) == "" {
		missing = append(missing, "name")
	}
	if len(missing) > 0 {
		return apperrors.NewInputValidationFailedError("missing required fields: " + strings.Join(missing, ", "))
	}
	return nil
}

// ==========================
// Cache check
// ==========================

func (o *Orchestrator) cacheCheck(ctx context.Context, st *runState, req *GenerateRequest, log logger.Logger) *models.ContentPack {
	if req.ForceRegenerate {
		log.Info("Cache bypassed", nil)
		return nil
	}

	candidate := req.ExistingPack
	if candidate == nil && o.packs != nil {
		sctx, cancel := context.WithTimeout(ctx, o.config.StoreTimeout)
		pack, err := o.packs.LoadContentPack(sctx, st.intake.ProjectID)
		cancel()
		if err != nil {
			o.recordError(st, models.PhaseCacheCheck, "", apperrors.NewCacheReadFailedError(err), true, log)
		}
		candidate = pack
	}

	if !contentpack.Fresh(candidate, st.intakeHash, o.config.CacheTTL, o.now()) {
		if candidate != nil {
			log.Info("Cached content pack is stale", map[string]interface{}{
				"generatedAt": candidate.GeneratedAt,
				"hashMatch":   candidate.SourceHash == st.intakeHash,
			})
		}
		return nil
	}

	pack, err := candidate.Clone()
	if err != nil {
		return nil
	}
	st.run.CacheHit = true
	st.run.ContentHash = pack.Hash
	metrics.PipelineCacheHits.Inc()
	log.Info("Cache hit", map[string]interface{}{"hash": pack.Hash})
	return pack
}

// ==========================
// Strategy
// ==========================

func (o *Orchestrator) runStrategy(ctx context.Context, st *runState, log logger.Logger) error {
	out, err := o.agents.Strategist.Run(ctx, &strategist.Input{Intake: st.intake.Clone()})
	if err == nil {
		st.strategy = out.Strategy
		o.addUsage(st, models.PhaseStrategy, out.Usage.InputTokens, out.Usage.OutputTokens, out.Attempts)
		st.run.CompleteAgent(strategist.AgentName)
		return nil
	}

	agentErr, ok := apperrors.AsAgentError(err)
	if ok && agentErr.Kind == apperrors.KindInvalidOutput {
		o.recordError(st, models.PhaseStrategy, strategist.AgentName, err, true, log)
		st.strategy = strategist.Fallback(st.intake.Clone(), agentErr.RawOutput)
		o.addUsage(st, models.PhaseStrategy, 0, 0, agentErr.Attempts)
		st.run.CompleteAgent(strategist.AgentName)
		log.Warn("Using fallback strategy", map[string]interface{}{
			"pages": len(st.strategy.SiteStructure.Pages),
		})
		return nil
	}

	return apperrors.NewFatalError(models.PhaseStrategy, err)
}

// ==========================
// Content generation and review
// ==========================

// generateContent is the bounded revision loop. Every attempt regenerates
// the pack from the same strategy, feeding back structural issues or the
// editor's revision instructions from the previous attempt.
func (o *Orchestrator) generateContent(ctx context.Context, st *runState, log logger.Logger) error {
	skeleton := contentpack.MergeSkeleton(st.strategy.SiteStructure.Pages, st.intake.Pages)
	maxAttempts := o.config.maxAttempts()

	var (
		revisions  []models.RevisionInstruction
		issues     []string
		accepted   bool
		lastIssues []string
		lastErr    error
	)

	for attempt := 1; attempt <= maxAttempts && !accepted; attempt++ {
		if err := ctx.Err(); err != nil {
			return apperrors.NewFatalError(models.PhaseContentGeneration, err)
		}
		st.run.Phase = models.PhaseContentGeneration
		st.run.ContentAttempts = attempt
		if attempt > 1 {
			metrics.ContentRevisions.Inc()
		}

		alog := logger.ForAttempt(log, attempt)
		alog.Info("Content attempt started", map[string]interface{}{
			"revisions": len(revisions),
			"issues":    len(issues),
		})

		pack, err := o.generateOnce(ctx, st, skeleton, revisions, issues, attempt, alog)
		if err != nil {
			lastErr = err
			o.recordError(st, models.PhaseContentGeneration, cpg.AgentName, err, true, alog)
			continue
		}
		st.pack = pack
		revisions, issues = nil, nil

		if pre := editor.Precheck(pack); pre != nil {
			lastIssues = feedbackMessages(pre)
			issues = lastIssues
			st.verdict = pre
			o.recordError(st, models.PhaseContentGeneration, cpg.AgentName,
				apperrors.NewStructuralValidationError(lastIssues), true, alog)
			o.recordVerdict(ctx, st, attempt, pre, alog)
			continue
		}
		lastIssues = nil
		o.checkSections(st, pack, alog)

		verdict, err := o.review(ctx, st, pack, attempt, alog)
		if err != nil {
			// an unavailable editor must not block a structurally valid pack
			o.recordError(st, models.PhaseReview, editor.AgentName, err, true, alog)
			st.verdict = nil
			accepted = true
			break
		}
		st.verdict = verdict

		if !editor.ShouldRequestRevision(verdict, o.config.QualityThreshold) {
			accepted = true
			break
		}
		revisions = verdict.Revisions
		if len(revisions) == 0 {
			revisions = revisionsFromFeedback(verdict)
		}
	}

	st.run.Phase = models.PhaseContentGeneration
	if st.pack == nil {
		cause := lastErr
		if cause == nil {
			cause = errors.New("no content pack produced")
		}
		return apperrors.NewFatalError(models.PhaseContentGeneration, cause)
	}

	st.run.ContentHash = st.pack.Hash
	st.run.CompleteAgent(cpg.AgentName)
	if st.verdict != nil {
		st.run.FinalScore = st.verdict.Scores.Aggregate
	}

	if !accepted {
		o.recordError(st, models.PhaseContentGeneration, editor.AgentName,
			apperrors.NewQualityWarning(exhaustedDetails(st.verdict, lastIssues, o.config.QualityThreshold)), true, log)
	}
	return nil
}

func (o *Orchestrator) generateOnce(ctx context.Context, st *runState, skeleton []models.PageSkeleton, revisions []models.RevisionInstruction, issues []string, attempt int, log logger.Logger) (*models.ContentPack, error) {
	out, err := o.agents.Content.Run(ctx, &cpg.Input{
		Intake:    st.intake.Clone(),
		Strategy:  st.strategy,
		Skeleton:  skeleton,
		Revisions: revisions,
		Issues:    issues,
		Attempt:   attempt,
	})
	if err != nil {
		return nil, err
	}
	o.addUsage(st, models.PhaseContentGeneration, out.Usage.InputTokens, out.Usage.OutputTokens, out.Invocations)

	for _, w := range out.Warnings {
		o.recordMessage(st, models.PhaseContentGeneration, w.Task, string(w.Code), w.Message, log)
	}

	if err := contentpack.Stamp(out.Pack, st.intake.ProjectID, o.config.PackVersion, st.intakeHash, o.now()); err != nil {
		return nil, fmt.Errorf("stamp content pack: %w", err)
	}
	return out.Pack, nil
}

// checkSections records section payloads that do not match their type
// schema. The checks are advisory and never trigger a revision.
func (o *Orchestrator) checkSections(st *runState, pack *models.ContentPack, log logger.Logger) {
	issues := contentpack.ValidateSections(pack)
	if len(issues) == 0 {
		return
	}
	log.Info("Section payload issues", map[string]interface{}{"issues": len(issues)})
	for _, issue := range issues {
		o.recordMessage(st, models.PhaseContentGeneration, cpg.AgentName,
			string(apperrors.ErrCodeStructuralValidation), "advisory section check: "+issue.String(), log)
	}
}

// review asks the editor for a verdict and applies the approval policy to it.
// The model's own approval flag is never trusted.
func (o *Orchestrator) review(ctx context.Context, st *runState, pack *models.ContentPack, attempt int, log logger.Logger) (*models.EditorVerdict, error) {
	st.run.Phase = models.PhaseReview
	start := time.Now()
	out, err := o.agents.Editor.Review(ctx, &editor.Input{Strategy: st.strategy, Pack: pack})
	st.run.PhaseStats(models.PhaseReview).Duration += time.Since(start)
	if err != nil {
		return nil, err
	}
	o.addUsage(st, models.PhaseReview, out.Usage.InputTokens, out.Usage.OutputTokens, out.Attempts)
	st.run.CompleteAgent(editor.AgentName)

	verdict := out.Verdict
	claimed := verdict.Approved
	editor.ApplyPolicy(&verdict, o.config.QualityThreshold)
	metrics.EditorAggregateScore.Observe(verdict.Scores.Aggregate)

	log.Info("Editor verdict", map[string]interface{}{
		"approved":  verdict.Approved,
		"claimed":   claimed,
		"aggregate": verdict.Scores.Aggregate,
		"critical":  verdict.CriticalCount(),
	})
	o.recordVerdict(ctx, st, attempt, &verdict, log)
	return &verdict, nil
}

// ==========================
// Rendering and assembly
// ==========================

func (o *Orchestrator) render(ctx context.Context, st *runState, log logger.Logger) error {
	out, err := o.agents.Renderer.Render(ctx, &cr.Input{
		Pack:   st.pack,
		Addons: append([]string(nil), st.intake.SelectedAddons...),
	})
	if err != nil {
		return apperrors.NewFatalError(models.PhaseCodeRendering, err)
	}
	if len(out.Files) == 0 {
		return apperrors.NewFatalError(models.PhaseCodeRendering, errors.New("renderer produced no files"))
	}

	st.rendered = out
	o.addUsage(st, models.PhaseCodeRendering, out.Usage.InputTokens, out.Usage.OutputTokens, out.Invocations)
	st.run.CompleteAgent(cr.AgentName)

	if o.config.ReviewCode {
		o.reviewCode(ctx, st, log)
	}
	return nil
}

// reviewCode is advisory: its findings become warnings.
func (o *Orchestrator) reviewCode(ctx context.Context, st *runState, log logger.Logger) {
	start := time.Now()
	out, err := o.agents.Editor.ReviewCode(ctx, &editor.Input{
		Strategy: st.strategy,
		Pack:     st.pack,
		Files:    st.rendered.Files,
	})
	st.run.PhaseStats(models.PhaseReview).Duration += time.Since(start)
	if err != nil {
		o.recordError(st, models.PhaseCodeRendering, editor.CodeReviewTask, err, true, log)
		return
	}
	o.addUsage(st, models.PhaseReview, out.Usage.InputTokens, out.Usage.OutputTokens, out.Attempts)

	verdict := out.Verdict
	editor.ApplyPolicy(&verdict, o.config.QualityThreshold)
	if !verdict.Approved {
		o.recordError(st, models.PhaseCodeRendering, editor.CodeReviewTask,
			apperrors.NewQualityWarning(fmt.Sprintf("code review: aggregate %.1f, %d critical", verdict.Scores.Aggregate, verdict.CriticalCount())), true, log)
	}
}

func (o *Orchestrator) assemble(ctx context.Context, st *runState, log logger.Logger) error {
	todos, err := contentpack.ScanTodos(st.pack)
	if err != nil {
		return apperrors.NewFatalError(models.PhaseAssembly, err)
	}
	st.todos = todos

	if o.packs != nil {
		sctx, cancel := context.WithTimeout(ctx, o.config.StoreTimeout)
		err := o.packs.StoreContentPack(sctx, st.intake.ProjectID, st.pack)
		cancel()
		if err != nil {
			o.recordError(st, models.PhaseAssembly, "", apperrors.NewCacheWriteFailedError(err), true, log)
		}
	}

	log.Info("Run assembled", map[string]interface{}{
		"files":         len(st.rendered.Files),
		"todos":         len(todos),
		"requiredTodos": countRequired(todos),
		"hash":          st.pack.Hash,
	})
	return nil
}

func (o *Orchestrator) result(st *runState) *models.PipelineResult {
	res := &models.PipelineResult{
		Success:   st.run.Success,
		RunID:     st.run.ID,
		ProjectID: st.run.ProjectID,
		Errors:    append([]models.PipelineError{}, st.run.Errors...),
		Metrics: models.RunMetrics{
			CacheHit:        st.run.CacheHit,
			TotalDuration:   st.run.FinishedAt.Sub(st.started),
			ContentAttempts: st.run.ContentAttempts,
			Phases:          make(map[string]models.PhaseMetrics, len(st.run.Phases)),
		},
	}
	for name, m := range st.run.Phases {
		res.Metrics.Phases[name] = *m
		res.Metrics.TotalInputTokens += m.InputTokens
		res.Metrics.TotalOutputTokens += m.OutputTokens
	}

	if !st.run.Success {
		return res
	}

	res.ContentPack = st.pack
	res.GeneratedFiles = st.rendered.Files
	res.Dependencies = st.rendered.Dependencies
	res.EnvVars = st.rendered.EnvVars
	res.TodoMarkers = st.todos
	res.Verdict = st.verdict
	return res
}

// ==========================
// Bookkeeping
// ==========================

func (o *Orchestrator) fail(st *runState, err error, log logger.Logger) {
	phase := st.run.Phase
	agent := ""
	if agentErr, ok := apperrors.AsAgentError(err); ok {
		agent = agentErr.Agent
	}
	o.recordError(st, phase, agent, err, false, log)
	st.run.Success = false
	st.run.Phase = models.PhaseFailed
}

func (o *Orchestrator) recordError(st *runState, phase, agent string, err error, recoverable bool, log logger.Logger) {
	stdErr := apperrors.Normalize(err)
	if agent == "" {
		if agentErr, ok := apperrors.AsAgentError(err); ok {
			agent = agentErr.Agent
		}
	}
	message := stdErr.Message
	if stdErr.Details != "" {
		message += ": " + stdErr.Details
	}
	o.recordMessage(st, phase, agent, string(stdErr.Code), message, log)
	st.run.Errors[len(st.run.Errors)-1].Recoverable = recoverable
}

func (o *Orchestrator) recordMessage(st *runState, phase, agent, code, message string, log logger.Logger) {
	st.run.Errors = append(st.run.Errors, models.PipelineError{
		Agent:       agent,
		Phase:       phase,
		Code:        code,
		Message:     message,
		Recoverable: true,
		Timestamp:   o.now().UTC(),
	})
	logger.ForPhase(log, phase).Warn("Pipeline error recorded", map[string]interface{}{
		logger.FieldAgent: agent,
		"code":            code,
		"message":         message,
	})
}

func (o *Orchestrator) addUsage(st *runState, phase string, in, out, invocations int) {
	m := st.run.PhaseStats(phase)
	m.InputTokens += in
	m.OutputTokens += out
	m.Invocations += invocations
}

func (o *Orchestrator) recordVerdict(ctx context.Context, st *runState, attempt int, verdict *models.EditorVerdict, log logger.Logger) {
	if o.audit == nil {
		return
	}
	sctx, cancel := context.WithTimeout(ctx, o.config.StoreTimeout)
	defer cancel()

	err := o.audit.RecordVerdict(sctx, store.VerdictRecord{
		RunID:      st.run.ID,
		ProjectID:  st.run.ProjectID,
		Attempt:    attempt,
		Verdict:    verdict,
		RecordedAt: o.now().UTC(),
	})
	if err != nil {
		o.recordError(st, models.PhaseReview, "", apperrors.NewAuditWriteFailedError(err), true, log)
	}
}

func (o *Orchestrator) recordRun(ctx context.Context, st *runState, res *models.PipelineResult, log logger.Logger) {
	status := "success"
	if !res.Success {
		status = "failed"
	}
	metrics.PipelineRuns.WithLabelValues(status).Inc()
	o.obs.RecordRun(ctx, res.Metrics.TotalDuration, status, res.Metrics.CacheHit)

	log.Info("Pipeline run finished", map[string]interface{}{
		"success":      res.Success,
		"cacheHit":     res.Metrics.CacheHit,
		"attempts":     res.Metrics.ContentAttempts,
		"errors":       len(res.Errors),
		"inputTokens":  res.Metrics.TotalInputTokens,
		"outputTokens": res.Metrics.TotalOutputTokens,
		"durationMs":   res.Metrics.TotalDuration.Milliseconds(),
	})

	if o.audit == nil {
		return
	}
	sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.config.StoreTimeout)
	defer cancel()

	err := o.audit.RecordRun(sctx, store.RunRecord{
		RunID:       res.RunID,
		ProjectID:   res.ProjectID,
		Success:     res.Success,
		CacheHit:    res.Metrics.CacheHit,
		Revisions:   max(res.Metrics.ContentAttempts-1, 0),
		ContentHash: st.run.ContentHash,
		TotalTokens: res.Metrics.TotalInputTokens + res.Metrics.TotalOutputTokens,
		Duration:    res.Metrics.TotalDuration,
		Errors:      res.Errors,
		RecordedAt:  o.now().UTC(),
	})
	if err != nil {
		log.Warn("Run audit write failed", map[string]interface{}{"error": err.Error()})
	}
}

func feedbackMessages(v *models.EditorVerdict) []string {
	out := make([]string, 0, len(v.Feedback))
	for _, f := range v.Feedback {
		out = append(out, f.Message)
	}
	return out
}

// revisionsFromFeedback turns critical and major feedback into instructions
// when the editor returned none.
func revisionsFromFeedback(v *models.EditorVerdict) []models.RevisionInstruction {
	var out []models.RevisionInstruction
	for _, f := range v.Feedback {
		if f.Severity != models.SeverityCritical && f.Severity != models.SeverityMajor {
			continue
		}
		rev := models.RevisionInstruction{
			TargetAgent: cpg.AgentName,
			Instruction: f.Message,
			Priority:    f.Severity,
		}
		if f.Path != "" {
			rev.Paths = []string{f.Path}
		}
		out = append(out, rev)
	}
	return out
}

func exhaustedDetails(v *models.EditorVerdict, issues []string, threshold float64) string {
	if len(issues) > 0 {
		return "unresolved structural issues: " + strings.Join(issues, "; ")
	}
	if v == nil {
		return "no content pack passed review"
	}
	return fmt.Sprintf("last verdict: aggregate %.1f (threshold %.1f), %d critical, approved=%t",
		v.Scores.Aggregate, threshold, v.CriticalCount(), v.Approved)
}

func countRequired(todos []models.TodoMarker) int {
	n := 0
	for _, t := range todos {
		if t.Required {
			n++
		}
	}
	return n
}
