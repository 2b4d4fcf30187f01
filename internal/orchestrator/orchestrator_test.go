package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"site-pipeline/internal/agents/invoker"
	apperrors "site-pipeline/internal/common/errors"
	apihttp "site-pipeline/internal/common/http"
	"site-pipeline/internal/common/llm/llmtest"
	"site-pipeline/internal/common/logger"
	"site-pipeline/internal/contentpack/packtest"
	"site-pipeline/internal/models"
	"site-pipeline/internal/store"
	"site-pipeline/internal/taskrunner"

	cr "site-pipeline/internal/workers/agents/code-renderer"
	cpg "site-pipeline/internal/workers/agents/content-pack-generator"
	"site-pipeline/internal/workers/agents/editor"
	"site-pipeline/internal/workers/agents/strategist"
)

// ==========================
// Test Helpers
// ==========================

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *clock {
	return &clock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type harness struct {
	orch     *Orchestrator
	provider *llmtest.Provider
	packs    *store.MemoryStore
	clock    *clock
	config   *Config
}

type harnessOption func(*harnessConfig)

type harnessConfig struct {
	config   *Config
	renderer RenderAgent
	packs    store.PackStore
	log      logger.Logger
}

func withConfig(fn func(*Config)) harnessOption {
	return func(h *harnessConfig) { fn(h.config) }
}

func withRenderer(r RenderAgent) harnessOption {
	return func(h *harnessConfig) { h.renderer = r }
}

func withPackStore(s store.PackStore) harnessOption {
	return func(h *harnessConfig) { h.packs = s }
}

func withLogger(l logger.Logger) harnessOption {
	return func(h *harnessConfig) { h.log = l }
}

func newHarness(t *testing.T, p *llmtest.Provider, opts ...harnessOption) *harness {
	mem := store.NewMemoryStore()
	hc := &harnessConfig{
		config: &Config{
			MaxRevisions:     2,
			QualityThreshold: 8,
			CacheTTL:         24 * time.Hour,
			PackVersion:      "1.0.0",
			StoreTimeout:     time.Second,
		},
		packs: mem,
		log:   logger.NewTestLogger(t),
	}
	for _, opt := range opts {
		opt(hc)
	}

	log := hc.log
	inv := invoker.New(p, log, invoker.WithBackoff(func(int) time.Duration { return 0 }))
	ic := invoker.Config{Model: "test", MaxTokens: 1000, Timeout: time.Second, MaxRetries: 1}
	exec := taskrunner.NewLocalExecutor(4, 5*time.Second)
	if hc.renderer == nil {
		hc.renderer = cr.New(&cr.Config{Mode: cr.ModeTemplate, Invoker: ic, MaxConcurrency: 4}, inv, exec, log)
	}

	agents := Agents{
		Strategist: strategist.New(&strategist.Config{Invoker: ic}, inv, log),
		Content:    cpg.New(&cpg.Config{Core: ic, Legal: ic, Components: ic, MaxConcurrency: 3}, inv, exec, log),
		Editor:     editor.New(&editor.Config{Invoker: ic, MaxFileBytes: 200}, inv, log),
		Renderer:   hc.renderer,
	}

	clk := newClock()
	orch := New(hc.config, agents, hc.packs, log, WithAudit(mem), WithClock(clk.Now))
	return &harness{orch: orch, provider: p, packs: mem, clock: clk, config: hc.config}
}

func coreAnswer(pack *models.ContentPack) map[string]interface{} {
	return map[string]interface{}{
		"settings":   pack.Settings,
		"pages":      pack.Pages,
		"navigation": pack.Navigation,
		"footer":     pack.Footer,
		"seo":        pack.SEO,
	}
}

func verdict(score float64, approved bool, feedback ...models.FeedbackItem) map[string]interface{} {
	if feedback == nil {
		feedback = []models.FeedbackItem{}
	}
	return map[string]interface{}{
		"approved": approved,
		"scores": map[string]float64{
			"content": score, "brand": score, "seo": score, "accessibility": score, "technical": score,
		},
		"feedback": feedback,
	}
}

// scriptedProvider answers every agent with a valid, approvable result.
func scriptedProvider() *llmtest.Provider {
	pack := packtest.Valid()
	return llmtest.New().
		OnJSON(strategist.AgentName, packtest.Strategy()).
		OnJSON(cpg.CoreTask, coreAnswer(pack)).
		OnJSON(cpg.LegalTask, pack.Legal).
		OnJSON(cpg.ComponentsTask, pack.Components).
		OnJSON(editor.AgentName, verdict(9, true))
}

func request() *GenerateRequest {
	return &GenerateRequest{Intake: packtest.Intake()}
}

func errorCodes(res *models.PipelineResult) []string {
	out := make([]string, 0, len(res.Errors))
	for _, e := range res.Errors {
		out = append(out, e.Code)
	}
	return out
}

func contentPrompts(p *llmtest.Provider) []string {
	var out []string
	for _, r := range p.Requests() {
		if r.Agent == cpg.CoreTask {
			out = append(out, r.UserPrompt)
		}
	}
	return out
}

type failingRenderer struct{}

func (failingRenderer) Render(context.Context, *cr.Input) (*cr.Output, error) {
	return nil, apperrors.NewProviderError(cr.AgentName, errors.New("template engine exploded"), false)
}

type brokenPackStore struct{}

func (brokenPackStore) LoadContentPack(context.Context, string) (*models.ContentPack, error) {
	return nil, errors.New("redis: connection refused")
}

func (brokenPackStore) StoreContentPack(context.Context, string, *models.ContentPack) error {
	return errors.New("redis: connection refused")
}

// ==========================
// Happy path and cache
// ==========================

func TestGenerate_FreshRun(t *testing.T) {
	h := newHarness(t, scriptedProvider())

	res := h.orch.Generate(context.Background(), request())
	require.True(t, res.Success, "errors: %+v", res.Errors)

	assert.False(t, res.Metrics.CacheHit)
	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, "proj-acme", res.ProjectID)
	assert.NotEmpty(t, res.GeneratedFiles)
	assert.Equal(t, 1, res.Metrics.ContentAttempts)
	assert.Empty(t, res.Errors)

	require.NotNil(t, res.ContentPack)
	_, hasRoot := res.ContentPack.PageBySlug("/")
	assert.True(t, hasRoot)
	assert.Equal(t, "proj-acme", res.ContentPack.ProjectID)
	assert.NotEmpty(t, res.ContentPack.Hash)

	require.NotNil(t, res.Verdict)
	assert.True(t, res.Verdict.Approved)
	assert.InDelta(t, 9.0, res.Verdict.Scores.Aggregate, 1e-9)

	assert.NotEmpty(t, res.TodoMarkers)
	assert.NotEmpty(t, res.RequiredTodos())
	assert.Greater(t, res.Metrics.TotalInputTokens, 0)

	for _, phase := range []string{models.PhaseCacheCheck, models.PhaseStrategy, models.PhaseContentGeneration, models.PhaseReview, models.PhaseCodeRendering, models.PhaseAssembly} {
		_, ok := res.Metrics.Phases[phase]
		assert.True(t, ok, phase)
	}

	assert.Equal(t, 1, h.provider.Calls(strategist.AgentName))
	assert.Equal(t, 1, h.provider.Calls(cpg.CoreTask))
	assert.Equal(t, 1, h.provider.Calls(editor.AgentName))

	stored, err := h.packs.LoadContentPack(context.Background(), "proj-acme")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, res.ContentPack.Hash, stored.Hash)

	require.Len(t, h.packs.Runs(), 1)
	assert.True(t, h.packs.Runs()[0].Success)
	assert.Len(t, h.packs.Verdicts(), 1)
}

func TestGenerate_LogLinesCarryRunScope(t *testing.T) {
	log, logs := logger.NewObserved(zapcore.InfoLevel)
	h := newHarness(t, scriptedProvider(), withLogger(log))

	res := h.orch.Generate(context.Background(), request())
	require.True(t, res.Success, "errors: %+v", res.Errors)

	started := logs.FilterMessage("Phase started").All()
	require.Len(t, started, 5)
	var phases []string
	for _, entry := range started {
		fields := entry.ContextMap()
		assert.Equal(t, res.RunID, fields[logger.FieldRunID])
		assert.Equal(t, "proj-acme", fields[logger.FieldProjectID])
		phases = append(phases, fields[logger.FieldPhase].(string))
	}
	assert.Equal(t, []string{models.PhaseCacheCheck, models.PhaseStrategy, models.PhaseContentGeneration, models.PhaseCodeRendering, models.PhaseAssembly}, phases)

	attempts := logs.FilterMessage("Content attempt started").All()
	require.Len(t, attempts, 1)
	assert.EqualValues(t, 1, attempts[0].ContextMap()[logger.FieldAttempt])
	assert.Equal(t, res.RunID, attempts[0].ContextMap()[logger.FieldRunID])
}

func TestGenerate_SecondRunWithinTTLHitsCache(t *testing.T) {
	h := newHarness(t, scriptedProvider())

	first := h.orch.Generate(context.Background(), request())
	require.True(t, first.Success)
	calls := h.provider.TotalCalls()

	h.clock.Advance(time.Hour)
	second := h.orch.Generate(context.Background(), request())
	require.True(t, second.Success, "errors: %+v", second.Errors)

	assert.True(t, second.Metrics.CacheHit)
	assert.Equal(t, first.ContentPack.Hash, second.ContentPack.Hash)
	assert.NotEmpty(t, second.GeneratedFiles)
	assert.Equal(t, 0, second.Metrics.ContentAttempts)
	assert.Equal(t, calls, h.provider.TotalCalls())

	_, ranStrategy := second.Metrics.Phases[models.PhaseStrategy]
	assert.False(t, ranStrategy)
}

func TestGenerate_CacheMisses(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(h *harness, req *GenerateRequest)
	}{
		{
			name:   "pack older than ttl",
			mutate: func(h *harness, _ *GenerateRequest) { h.clock.Advance(25 * time.Hour) },
		},
		{
			name:   "intake changed",
			mutate: func(_ *harness, req *GenerateRequest) { req.Intake.Brief = "Now also selling garden tools" },
		},
		{
			name:   "force regenerate",
			mutate: func(_ *harness, req *GenerateRequest) { req.ForceRegenerate = true },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, scriptedProvider())
			require.True(t, h.orch.Generate(context.Background(), request()).Success)

			req := request()
			tt.mutate(h, req)
			res := h.orch.Generate(context.Background(), req)

			require.True(t, res.Success)
			assert.False(t, res.Metrics.CacheHit)
			assert.Equal(t, 2, h.provider.Calls(strategist.AgentName))
		})
	}
}

func TestGenerate_ExistingPackArgument(t *testing.T) {
	h := newHarness(t, scriptedProvider())
	first := h.orch.Generate(context.Background(), request())
	require.True(t, first.Success)

	other := newHarness(t, scriptedProvider(), withPackStore(nil))
	other.clock.Advance(time.Minute)

	req := request()
	req.ExistingPack = first.ContentPack
	res := other.orch.Generate(context.Background(), req)

	require.True(t, res.Success)
	assert.True(t, res.Metrics.CacheHit)
	assert.Equal(t, 0, other.provider.TotalCalls())
}

func TestGenerate_CacheReadFailureIsRecoverable(t *testing.T) {
	h := newHarness(t, scriptedProvider(), withPackStore(brokenPackStore{}))

	res := h.orch.Generate(context.Background(), request())
	require.True(t, res.Success)
	assert.Contains(t, errorCodes(res), string(apperrors.ErrCodeCacheReadFailed))
	assert.Contains(t, errorCodes(res), string(apperrors.ErrCodeCacheWriteFailed))
	for _, e := range res.Errors {
		assert.True(t, e.Recoverable)
	}
}

// ==========================
// Revision loop
// ==========================

func TestGenerate_MissingNavigationExhaustsBudget(t *testing.T) {
	pack := packtest.Valid()
	pack.Navigation.Items = nil
	p := scriptedProvider().OnJSON(cpg.CoreTask, coreAnswer(pack))
	h := newHarness(t, p)

	res := h.orch.Generate(context.Background(), request())
	require.True(t, res.Success, "errors: %+v", res.Errors)

	assert.Equal(t, h.config.MaxRevisions+1, res.Metrics.ContentAttempts)
	assert.Equal(t, h.config.MaxRevisions+1, p.Calls(cpg.CoreTask))
	assert.Equal(t, 0, p.Calls(editor.AgentName))
	assert.NotEmpty(t, res.GeneratedFiles)

	codes := errorCodes(res)
	assert.Contains(t, codes, string(apperrors.ErrCodeStructuralValidation))
	assert.Contains(t, codes, string(apperrors.ErrCodeQualityWarning))

	last := res.Errors[len(res.Errors)-1]
	assert.Equal(t, string(apperrors.ErrCodeQualityWarning), last.Code)
	assert.Contains(t, last.Message, "navigation has no items")

	prompts := contentPrompts(p)
	require.Len(t, prompts, 3)
	assert.NotContains(t, prompts[0], "navigation has no items")
	assert.Contains(t, prompts[1], "navigation has no items")

	require.NotNil(t, res.Verdict)
	assert.True(t, res.Verdict.Precheck)
}

func TestGenerate_ModelApprovalIsNotTrusted(t *testing.T) {
	p := scriptedProvider().OnJSON(editor.AgentName, map[string]interface{}{
		"approved": true,
		"scores":   map[string]float64{"content": 10, "brand": 10, "seo": 10, "accessibility": 10, "technical": 10},
		"feedback": []models.FeedbackItem{{Severity: models.SeverityCritical, Message: "Hero claims an award the company never won"}},
		"revisions": []models.RevisionInstruction{
			{TargetAgent: cpg.AgentName, Instruction: "Remove the award claim from the hero"},
		},
	})
	h := newHarness(t, p)

	res := h.orch.Generate(context.Background(), request())
	require.True(t, res.Success)

	require.NotNil(t, res.Verdict)
	assert.False(t, res.Verdict.Approved)
	assert.Equal(t, 3, p.Calls(editor.AgentName))
	assert.Contains(t, errorCodes(res), string(apperrors.ErrCodeQualityWarning))

	prompts := contentPrompts(p)
	require.Len(t, prompts, 3)
	assert.Contains(t, prompts[1], "Remove the award claim from the hero")
	assert.Len(t, h.packs.Verdicts(), 3)
}

func TestGenerate_RevisionThenApproval(t *testing.T) {
	p := scriptedProvider().OnSequence(editor.AgentName,
		llmtest.JSON(verdict(6, false, models.FeedbackItem{Severity: models.SeverityMajor, Path: "pages[0]", Message: "Hero is vague"})),
		llmtest.JSON(verdict(9, true)),
	)
	h := newHarness(t, p)

	res := h.orch.Generate(context.Background(), request())
	require.True(t, res.Success)

	assert.Equal(t, 2, res.Metrics.ContentAttempts)
	assert.NotContains(t, errorCodes(res), string(apperrors.ErrCodeQualityWarning))
	assert.True(t, res.Verdict.Approved)

	prompts := contentPrompts(p)
	require.Len(t, prompts, 2)
	assert.Contains(t, prompts[1], "Hero is vague (pages[0])")
}

func TestGenerate_RevisionLoopIsBounded(t *testing.T) {
	for _, maxRevisions := range []int{0, 1, 3} {
		t.Run(fmt.Sprintf("max_revisions_%d", maxRevisions), func(t *testing.T) {
			p := scriptedProvider().OnJSON(editor.AgentName, verdict(2, false))
			h := newHarness(t, p, withConfig(func(c *Config) { c.MaxRevisions = maxRevisions }))

			res := h.orch.Generate(context.Background(), request())
			require.True(t, res.Success)
			assert.Equal(t, maxRevisions+1, res.Metrics.ContentAttempts)
			assert.Equal(t, maxRevisions+1, p.Calls(cpg.CoreTask))
		})
	}
}

func TestGenerate_EditorFailureAcceptsValidPack(t *testing.T) {
	p := scriptedProvider().On(editor.AgentName, llmtest.Fail(&apihttp.StatusError{StatusCode: 401, Body: "bad key"}))
	h := newHarness(t, p)

	res := h.orch.Generate(context.Background(), request())
	require.True(t, res.Success)

	assert.Equal(t, 1, res.Metrics.ContentAttempts)
	assert.Nil(t, res.Verdict)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, models.PhaseReview, res.Errors[0].Phase)
	assert.Equal(t, editor.AgentName, res.Errors[0].Agent)
	assert.Equal(t, string(apperrors.ErrCodeProviderError), res.Errors[0].Code)
}

func TestGenerate_SectionIssuesAreAdvisoryWarnings(t *testing.T) {
	pack := packtest.Valid()
	pack.Pages[0].Sections[1].Content = map[string]interface{}{"title": "Why Acme"}
	pack.Pages[1].Sections = append(pack.Pages[1].Sections, models.Section{ID: "carousel", Type: "carousel", Content: map[string]interface{}{}})
	h := newHarness(t, scriptedProvider().OnJSON(cpg.CoreTask, coreAnswer(pack)))

	res := h.orch.Generate(context.Background(), request())
	require.True(t, res.Success, "errors: %+v", res.Errors)
	assert.Equal(t, 1, res.Metrics.ContentAttempts)

	require.Len(t, res.Errors, 2)
	for _, e := range res.Errors {
		assert.Equal(t, string(apperrors.ErrCodeStructuralValidation), e.Code)
		assert.Equal(t, models.PhaseContentGeneration, e.Phase)
		assert.Equal(t, cpg.AgentName, e.Agent)
		assert.True(t, e.Recoverable)
		assert.Contains(t, e.Message, "advisory section check")
	}
	assert.Contains(t, res.Errors[0].Message, "pages[0].sections[1].content")
	assert.Contains(t, res.Errors[1].Message, `unknown section type "carousel"`)
}

func TestGenerate_SubTaskWarningKeepsCause(t *testing.T) {
	p := scriptedProvider().On(cpg.LegalTask, llmtest.Text("Legal text is not my job."))
	h := newHarness(t, p)

	res := h.orch.Generate(context.Background(), request())
	require.True(t, res.Success, "errors: %+v", res.Errors)

	require.Len(t, res.Errors, 1)
	assert.Equal(t, cpg.LegalTask, res.Errors[0].Agent)
	assert.Equal(t, string(apperrors.ErrCodeInvalidOutput), res.Errors[0].Code)
	assert.Contains(t, res.Errors[0].Message, "using placeholders")
}

func TestGenerate_ContentFailureRetriesWithinBudget(t *testing.T) {
	pack := packtest.Valid()
	p := scriptedProvider().OnSequence(cpg.CoreTask,
		llmtest.Fail(&apihttp.StatusError{StatusCode: 400, Body: "context too long"}),
		llmtest.JSON(coreAnswer(pack)),
	)
	h := newHarness(t, p)

	res := h.orch.Generate(context.Background(), request())
	require.True(t, res.Success)
	assert.Equal(t, 2, res.Metrics.ContentAttempts)
	assert.Contains(t, errorCodes(res), string(apperrors.ErrCodeProviderError))
}

// ==========================
// Fatal paths
// ==========================

func TestGenerate_StrategyFailureIsFatal(t *testing.T) {
	p := scriptedProvider().On(strategist.AgentName, llmtest.Fail(&apihttp.StatusError{StatusCode: 403, Body: "forbidden"}))
	h := newHarness(t, p)

	res := h.orch.Generate(context.Background(), request())
	assert.False(t, res.Success)
	assert.Empty(t, res.GeneratedFiles)
	assert.Nil(t, res.ContentPack)
	require.NotEmpty(t, res.Errors)

	last := res.Errors[len(res.Errors)-1]
	assert.Equal(t, string(apperrors.ErrCodeFatal), last.Code)
	assert.Equal(t, models.PhaseStrategy, last.Phase)
	assert.Equal(t, strategist.AgentName, last.Agent)
	assert.False(t, last.Recoverable)

	assert.Equal(t, 0, p.Calls(cpg.CoreTask))
	assert.Equal(t, 0, h.packs.Projects())
	require.Len(t, h.packs.Runs(), 1)
	assert.False(t, h.packs.Runs()[0].Success)
}

func TestGenerate_StrategyInvalidOutputFallsBack(t *testing.T) {
	p := scriptedProvider().On(strategist.AgentName, llmtest.Text("I would rather write a poem."))
	h := newHarness(t, p)

	res := h.orch.Generate(context.Background(), request())
	require.True(t, res.Success, "errors: %+v", res.Errors)

	assert.Equal(t, 2, p.Calls(strategist.AgentName))
	require.NotEmpty(t, res.Errors)
	assert.Equal(t, string(apperrors.ErrCodeInvalidOutput), res.Errors[0].Code)
	assert.True(t, res.Errors[0].Recoverable)
}

func TestGenerate_RenderFailureIsFatal(t *testing.T) {
	h := newHarness(t, scriptedProvider(), withRenderer(failingRenderer{}))

	res := h.orch.Generate(context.Background(), request())
	assert.False(t, res.Success)
	assert.Nil(t, res.GeneratedFiles)
	assert.Nil(t, res.ContentPack)

	last := res.Errors[len(res.Errors)-1]
	assert.Equal(t, string(apperrors.ErrCodeFatal), last.Code)
	assert.Equal(t, models.PhaseCodeRendering, last.Phase)
	assert.Equal(t, cr.AgentName, last.Agent)
	assert.Equal(t, 0, h.packs.Projects())
}

func TestGenerate_InvalidIntake(t *testing.T) {
	h := newHarness(t, scriptedProvider())

	req := request()
	req.Intake.ProjectID = " "
	res := h.orch.Generate(context.Background(), req)

	assert.False(t, res.Success)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, string(apperrors.ErrCodeInputValidationFailed), res.Errors[0].Code)
	assert.Equal(t, 0, h.provider.TotalCalls())
}

func TestGenerate_CancelledContext(t *testing.T) {
	h := newHarness(t, scriptedProvider())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := h.orch.Generate(ctx, request())
	assert.False(t, res.Success)
	assert.Equal(t, string(apperrors.ErrCodeFatal), res.Errors[len(res.Errors)-1].Code)
}

// ==========================
// Code review
// ==========================

func TestGenerate_CodeReviewFindingsAreWarnings(t *testing.T) {
	p := scriptedProvider().OnJSON(editor.CodeReviewTask, verdict(4, true,
		models.FeedbackItem{Severity: models.SeverityCritical, Message: "Missing alt text on hero image"}))
	h := newHarness(t, p, withConfig(func(c *Config) { c.ReviewCode = true }))

	res := h.orch.Generate(context.Background(), request())
	require.True(t, res.Success)
	assert.NotEmpty(t, res.GeneratedFiles)

	require.Len(t, res.Errors, 1)
	assert.Equal(t, string(apperrors.ErrCodeQualityWarning), res.Errors[0].Code)
	assert.Equal(t, models.PhaseCodeRendering, res.Errors[0].Phase)
	assert.Equal(t, 1, p.Calls(editor.CodeReviewTask))
}

// ==========================
// Helpers
// ==========================

func TestRevisionsFromFeedback(t *testing.T) {
	v := &models.EditorVerdict{Feedback: []models.FeedbackItem{
		{Severity: models.SeverityMinor, Message: "comma"},
		{Severity: models.SeverityCritical, Path: "footer.tagline", Message: "tagline contradicts brand"},
		{Severity: models.SeverityMajor, Message: "too long"},
	}}

	revs := revisionsFromFeedback(v)
	require.Len(t, revs, 2)
	assert.Equal(t, cpg.AgentName, revs[0].TargetAgent)
	assert.Equal(t, []string{"footer.tagline"}, revs[0].Paths)
	assert.Nil(t, revs[1].Paths)
}

func TestConfig_MaxAttempts(t *testing.T) {
	assert.Equal(t, 1, (&Config{MaxRevisions: -1}).maxAttempts())
	assert.Equal(t, 1, (&Config{}).maxAttempts())
	assert.Equal(t, 3, (&Config{MaxRevisions: 2}).maxAttempts())
}
