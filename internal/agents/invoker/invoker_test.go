package invoker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	apperrors "site-pipeline/internal/common/errors"
	apihttp "site-pipeline/internal/common/http"
	"site-pipeline/internal/common/llm/llmtest"
	"site-pipeline/internal/common/logger"
	"site-pipeline/internal/common/validation"
)

// ==========================
// Test Helpers
// ==========================

type greeting struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
}

var greetingSchema = validation.MustCompile("greeting", `{
	"type": "object",
	"required": ["message"],
	"properties": {"message": {"type": "string"}, "count": {"type": "integer"}}
}`)

func newTestInvoker(t *testing.T, p *llmtest.Provider) *Invoker {
	return New(p, logger.NewTestLogger(t), WithBackoff(func(int) time.Duration { return 0 }))
}

func testConfig() Config {
	return Config{Model: "test", MaxTokens: 100, Timeout: time.Second, MaxRetries: 2}
}

func nonEmpty(g *greeting) error {
	if g.Message == "" {
		return errors.New("message empty")
	}
	return nil
}

// ==========================
// Invoke
// ==========================

func TestInvoke_Success(t *testing.T) {
	p := llmtest.New().On("greeter", llmtest.Text("```json\n{\"message\": \"hi\", \"count\": 2,}\n```"))

	res, err := Invoke[greeting](context.Background(), newTestInvoker(t, p), Call{
		Agent:        "greeter",
		SystemPrompt: "be nice",
		UserPrompt:   "say hi",
		Schema:       greetingSchema,
	}, testConfig(), nonEmpty)
	require.NoError(t, err)

	assert.Equal(t, "hi", res.Output.Message)
	assert.Equal(t, 2, res.Output.Count)
	assert.Equal(t, 1, res.Attempts)
	assert.Equal(t, 10, res.Usage.InputTokens)

	req := p.Requests()[0]
	assert.Contains(t, req.SystemPrompt, "be nice")
	assert.Contains(t, req.SystemPrompt, "JSON")
	assert.Equal(t, greetingSchema.Source(), req.SchemaHint)
}

func TestInvoke_InvalidOutputRetriesThenSucceeds(t *testing.T) {
	p := llmtest.New().OnSequence("greeter",
		llmtest.Text("sorry, I cannot"),
		llmtest.Text(`{"message": ""}`),
		llmtest.Text(`{"message": "third time"}`),
	)

	res, err := Invoke[greeting](context.Background(), newTestInvoker(t, p), Call{Agent: "greeter", Schema: greetingSchema}, testConfig(), nonEmpty)
	require.NoError(t, err)

	assert.Equal(t, "third time", res.Output.Message)
	assert.Equal(t, 3, res.Attempts)
	assert.Equal(t, 3, p.Calls("greeter"))
	assert.Equal(t, 30, res.Usage.InputTokens)
}

func TestInvoke_InvalidOutputExhausted(t *testing.T) {
	p := llmtest.New().On("greeter", llmtest.Text(`{"count": 3}`))

	_, err := Invoke[greeting](context.Background(), newTestInvoker(t, p), Call{Agent: "greeter", Schema: greetingSchema}, testConfig(), nil)
	require.Error(t, err)

	agentErr, ok := apperrors.AsAgentError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.KindInvalidOutput, agentErr.Kind)
	assert.Equal(t, 3, agentErr.Attempts)
	assert.Equal(t, `{"count": 3}`, agentErr.RawOutput)
	assert.True(t, agentErr.Retryable)
}

func TestInvoke_Timeout(t *testing.T) {
	defer goleak.VerifyNone(t)

	p := llmtest.New().On("slow", llmtest.Block())
	cfg := testConfig()
	cfg.Timeout = 20 * time.Millisecond
	cfg.MaxRetries = 1

	start := time.Now()
	_, err := Invoke[greeting](context.Background(), newTestInvoker(t, p), Call{Agent: "slow"}, cfg, nil)
	require.Error(t, err)

	assert.True(t, apperrors.IsKind(err, apperrors.KindTimeout))
	assert.Equal(t, 2, p.Calls("slow"))
	assert.Less(t, time.Since(start), time.Second)
}

func TestInvoke_NonRetryableProviderError(t *testing.T) {
	p := llmtest.New().On("greeter", llmtest.Fail(&apihttp.StatusError{StatusCode: 401, Body: "bad key"}))

	_, err := Invoke[greeting](context.Background(), newTestInvoker(t, p), Call{Agent: "greeter"}, testConfig(), nil)
	require.Error(t, err)

	agentErr, ok := apperrors.AsAgentError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.KindProviderError, agentErr.Kind)
	assert.False(t, agentErr.Retryable)
	assert.Equal(t, 1, p.Calls("greeter"))
}

func TestInvoke_RetryableProviderError(t *testing.T) {
	p := llmtest.New().OnSequence("greeter",
		llmtest.Fail(fmt.Errorf("connection reset")),
		llmtest.Text(`{"message": "back"}`),
	)

	res, err := Invoke[greeting](context.Background(), newTestInvoker(t, p), Call{Agent: "greeter"}, testConfig(), nonEmpty)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Attempts)
}

func TestInvoke_ParentCancelled(t *testing.T) {
	p := llmtest.New().On("greeter", llmtest.Block())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Invoke[greeting](ctx, newTestInvoker(t, p), Call{Agent: "greeter"}, testConfig(), nil)
	require.Error(t, err)

	agentErr, ok := apperrors.AsAgentError(err)
	require.True(t, ok)
	assert.False(t, agentErr.Retryable)
	assert.Equal(t, 1, agentErr.Attempts)
}

func TestInvoker_Budget(t *testing.T) {
	inv := New(llmtest.New(), logger.NewTestLogger(t))
	cfg := Config{Timeout: time.Second, MaxRetries: 2}

	// two retries wait 100ms and 200ms
	assert.Equal(t, 3*time.Second+300*time.Millisecond, inv.Budget(cfg))

	cfg.MaxRetries = 0
	assert.Equal(t, time.Second, inv.Budget(cfg))
}

// ==========================
// ExtractJSON
// ==========================

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantErr bool
	}{
		{"plain", `{"a":1}`, false},
		{"fenced", "```json\n{\"a\":1}\n```", false},
		{"prose around", "Here you go: {\"a\":1} hope it helps", false},
		{"trailing comma and comment", "{\"a\":1, // note\n}", false},
		{"prose then fence", "Here is the pack:\n```json\n{\"a\":1}\n```\nDone.", false},
		{"no object", "nothing here", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSON(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.JSONEq(t, `{"a":1}`, string(got))
		})
	}
}

func TestExtractJSON_FenceInsideStringValue(t *testing.T) {
	readme := "# Setup\n\n```bash\nnpm install\nnpm run dev\n```\n"
	doc, err := json.Marshal(map[string]interface{}{
		"files": []map[string]string{{"path": "README.md", "content": readme}},
	})
	require.NoError(t, err)

	for name, in := range map[string]string{
		"bare":   string(doc),
		"fenced": "```json\n" + string(doc) + "\n```",
	} {
		t.Run(name, func(t *testing.T) {
			got, err := ExtractJSON(in)
			require.NoError(t, err)

			var out struct {
				Files []struct {
					Content string `json:"content"`
				} `json:"files"`
			}
			require.NoError(t, json.Unmarshal(got, &out))
			require.Len(t, out.Files, 1)
			assert.Equal(t, readme, out.Files[0].Content)
		})
	}
}
