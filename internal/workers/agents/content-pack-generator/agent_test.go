// internal/workers/agents/content-pack-generator/agent_test.go
package contentpackgenerator

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"site-pipeline/internal/agents/invoker"
	apperrors "site-pipeline/internal/common/errors"
	"site-pipeline/internal/common/llm/llmtest"
	"site-pipeline/internal/common/logger"
	"site-pipeline/internal/contentpack"
	"site-pipeline/internal/contentpack/packtest"
	"site-pipeline/internal/models"
	"site-pipeline/internal/taskrunner"
)

// ==========================
// Test Helpers
// ==========================

func newTestAgent(t *testing.T, p *llmtest.Provider) *Agent {
	log := logger.NewTestLogger(t)
	inv := invoker.New(p, log, invoker.WithBackoff(func(int) time.Duration { return 0 }))
	ic := invoker.Config{Model: "test", MaxTokens: 1000, Timeout: time.Second, MaxRetries: 1}
	cfg := &Config{Core: ic, Legal: ic, Components: ic, MaxConcurrency: 3}
	return New(cfg, inv, taskrunner.NewLocalExecutor(3, 5*time.Second), log)
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

func scriptedProvider() *llmtest.Provider {
	pack := packtest.Valid()
	return llmtest.New().
		OnJSON(CoreTask, coreAnswer(pack)).
		OnJSON(LegalTask, pack.Legal).
		OnJSON(ComponentsTask, pack.Components)
}

func testInput() *Input {
	strategy := packtest.Strategy()
	return &Input{
		Intake:   packtest.Intake(),
		Strategy: strategy,
		Skeleton: contentpack.MergeSkeleton(strategy.SiteStructure.Pages, packtest.Intake().Pages),
	}
}

// ==========================
// Run
// ==========================

func TestRun_AssemblesPack(t *testing.T) {
	p := scriptedProvider()

	out, err := newTestAgent(t, p).Run(context.Background(), testInput())
	require.NoError(t, err)
	require.NotNil(t, out.Pack)

	assert.Empty(t, contentpack.Validate(out.Pack))
	assert.Equal(t, "Privacy Policy", out.Pack.Legal.Privacy.Title)
	assert.Equal(t, "Page not found", out.Pack.Components.NotFound.Title)
	assert.Empty(t, out.Warnings)
	assert.Equal(t, 30, out.Usage.InputTokens)
	assert.Equal(t, 3, out.Invocations)

	for _, task := range []string{CoreTask, LegalTask, ComponentsTask} {
		assert.Equal(t, 1, p.Calls(task), task)
	}
}

func TestRun_LegalFailureUsesPlaceholders(t *testing.T) {
	p := scriptedProvider().On(LegalTask, llmtest.Fail(errors.New("upstream exploded")))

	out, err := newTestAgent(t, p).Run(context.Background(), testInput())
	require.NoError(t, err)

	require.NotNil(t, out.Pack.Legal.Imprint)
	require.NotNil(t, out.Pack.Legal.Privacy)
	require.Len(t, out.Warnings, 1)
	assert.Equal(t, LegalTask, out.Warnings[0].Task)
	assert.Equal(t, apperrors.ErrCodeProviderError, out.Warnings[0].Code)
	assert.Contains(t, out.Warnings[0].Message, "upstream exploded")

	markers, err := contentpack.ScanTodos(out.Pack)
	require.NoError(t, err)
	var required int
	for _, m := range markers {
		if m.Required {
			required++
		}
	}
	assert.GreaterOrEqual(t, required, 4)
}

func TestRun_SoftFailureWarningCodes(t *testing.T) {
	log := logger.NewTestLogger(t)
	p := scriptedProvider().
		On(LegalTask, llmtest.Block()).
		On(ComponentsTask, llmtest.Text("I cannot write that copy."))
	inv := invoker.New(p, log, invoker.WithBackoff(func(int) time.Duration { return 0 }))
	ic := invoker.Config{Model: "test", MaxTokens: 1000, Timeout: time.Second, MaxRetries: 1}
	short := ic
	short.Timeout = 20 * time.Millisecond
	agent := New(&Config{Core: ic, Legal: short, Components: ic, MaxConcurrency: 3}, inv, taskrunner.NewLocalExecutor(3, 0), log)

	out, err := agent.Run(context.Background(), testInput())
	require.NoError(t, err)
	require.Len(t, out.Warnings, 2)

	codes := map[string]apperrors.ErrorCode{}
	for _, w := range out.Warnings {
		codes[w.Task] = w.Code
	}
	assert.Equal(t, apperrors.ErrCodeTimeout, codes[LegalTask])
	assert.Equal(t, apperrors.ErrCodeInvalidOutput, codes[ComponentsTask])
}

func TestRun_FillsSettingsFromStrategy(t *testing.T) {
	pack := packtest.Valid()
	pack.Settings = models.SiteSettings{}
	p := scriptedProvider().OnJSON(CoreTask, coreAnswer(pack))

	out, err := newTestAgent(t, p).Run(context.Background(), testInput())
	require.NoError(t, err)

	s := out.Pack.Settings
	assert.Equal(t, "Acme GmbH", s.Brand.Name)
	assert.Equal(t, "Tools that last", s.Brand.Tagline)
	assert.Equal(t, "#1f4e79", s.Colors.Primary)
	assert.Equal(t, "hello@acme.example", s.Contact.Email)
}

func TestRun_CoreFailureIsAgentError(t *testing.T) {
	p := scriptedProvider().On(CoreTask, llmtest.Text(`{"pages": "not a list"}`))

	_, err := newTestAgent(t, p).Run(context.Background(), testInput())
	require.Error(t, err)

	agentErr, ok := apperrors.AsAgentError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.KindInvalidOutput, agentErr.Kind)
	assert.Equal(t, 2, p.Calls(CoreTask))
}

func TestRun_RevisionsRouting(t *testing.T) {
	p := scriptedProvider()
	input := testInput()
	input.Attempt = 1
	input.Issues = []string{"MISSING_NAVIGATION at navigation.items: navigation has no items"}
	input.Revisions = []models.RevisionInstruction{
		{TargetAgent: "content-pack", Instruction: "Add navigation items", Paths: []string{"navigation.items"}},
		{TargetAgent: "content-pack", Instruction: "Name the data controller", Paths: []string{"legal.privacy"}},
		{TargetAgent: "strategist", Instruction: "Rethink the positioning"},
	}

	_, err := newTestAgent(t, p).Run(context.Background(), input)
	require.NoError(t, err)

	var core, legal string
	for _, req := range p.Requests() {
		switch req.Agent {
		case CoreTask:
			core = req.UserPrompt
		case LegalTask:
			legal = req.UserPrompt
		}
	}

	assert.Contains(t, core, "Add navigation items")
	assert.Contains(t, core, "MISSING_NAVIGATION")
	assert.NotContains(t, core, "Rethink the positioning")
	assert.Contains(t, legal, "Name the data controller")
	assert.False(t, strings.Contains(legal, "Add navigation items"))
}
