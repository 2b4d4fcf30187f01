package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"site-pipeline/internal/common/config"
	"site-pipeline/internal/common/llm/llmtest"
	"site-pipeline/internal/common/logger"
)

func loadConfig(t *testing.T, body string) *config.Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	cfg, err := config.LoadFromFile(path)
	require.NoError(t, err)
	return cfg
}

// ==========================
// Wiring
// ==========================

func TestNew_WithoutBackends(t *testing.T) {
	cfg := loadConfig(t, `
llm:
  provider: gateway
  base_url: http://localhost:9000
`)

	a, err := New(context.Background(), cfg, logger.NewTestLogger(t), Options{})
	require.NoError(t, err)
	defer a.Close()

	assert.NotNil(t, a.Orchestrator)
	assert.Nil(t, a.Notifier)
	assert.Empty(t, a.Ready(context.Background()))
}

func TestNew_WithRedisCache(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := loadConfig(t, `
llm:
  provider: gateway
  base_url: http://localhost:9000
database:
  redis:
    address: `+mr.Addr()+`
`)

	a, err := New(context.Background(), cfg, logger.NewTestLogger(t), Options{Provider: llmtest.New()})
	require.NoError(t, err)
	defer a.Close()

	assert.Equal(t, map[string]string{"redis": "ok"}, a.Ready(context.Background()))

	mr.SetError("LOADING server is loading")
	status := a.Ready(context.Background())
	assert.NotEqual(t, "ok", status["redis"])
}

func TestNew_RedisUnreachable(t *testing.T) {
	cfg := loadConfig(t, `
llm:
  provider: gateway
  base_url: http://localhost:9000
database:
  redis:
    address: 127.0.0.1:1
`)

	_, err := New(context.Background(), cfg, logger.NewTestLogger(t), Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Redis connection failed after 1 attempts")
}

func TestNew_UnsupportedProvider(t *testing.T) {
	cfg := loadConfig(t, `
llm:
  provider: gateway
  base_url: http://localhost:9000
`)
	cfg.LLM.Provider = "carrier-pigeon"

	_, err := New(context.Background(), cfg, logger.NewTestLogger(t), Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported llm provider")
}

// ==========================
// Retry
// ==========================

func TestRetryWithBackoff(t *testing.T) {
	log := logger.NewTestLogger(t)

	t.Run("eventual success", func(t *testing.T) {
		calls := 0
		err := retryWithBackoff(context.Background(), RetryPolicy{Attempts: 3, Delay: time.Millisecond}, log, "op", func() error {
			calls++
			if calls < 2 {
				return errors.New("not yet")
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 2, calls)
	})

	t.Run("exhausted", func(t *testing.T) {
		calls := 0
		err := retryWithBackoff(context.Background(), RetryPolicy{Attempts: 2, Delay: time.Millisecond}, log, "op", func() error {
			calls++
			return errors.New("down")
		})
		assert.EqualError(t, err, "op failed after 2 attempts: down")
		assert.Equal(t, 2, calls)
	})

	t.Run("cancelled while waiting", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := retryWithBackoff(ctx, RetryPolicy{Attempts: 5, Delay: time.Hour}, log, "op", func() error {
			return errors.New("down")
		})
		assert.ErrorIs(t, err, context.Canceled)
	})
}
