package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestScopes(t *testing.T) {
	base, logs := NewObserved(zapcore.DebugLevel)

	run := ForRun(base, "run-1", "proj-acme")
	ForAttempt(ForPhase(run, "content_generation"), 2).Info("Content attempt started", map[string]interface{}{"issues": 3})
	ForAgent(run, "editor").Warn("Editor unavailable", nil)

	entries := logs.All()
	require.Len(t, entries, 2)

	first := entries[0].ContextMap()
	assert.Equal(t, "run-1", first[FieldRunID])
	assert.Equal(t, "proj-acme", first[FieldProjectID])
	assert.Equal(t, "content_generation", first[FieldPhase])
	assert.EqualValues(t, 2, first[FieldAttempt])
	assert.EqualValues(t, 3, first["issues"])

	second := entries[1].ContextMap()
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, "editor", second[FieldAgent])
	assert.Equal(t, "run-1", second[FieldRunID])
	assert.NotContains(t, second, FieldPhase)
}

func TestErrorFields(t *testing.T) {
	base, logs := NewObserved(zapcore.InfoLevel)

	base.WithError(errors.New("boom")).Error("Phase failed", map[string]interface{}{"cause": errors.New("upstream")})
	base.Debug("dropped", nil)

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "boom", fields["error"])
	assert.Equal(t, "upstream", fields["cause"])
}

func TestNew_FallsBackToInfo(t *testing.T) {
	l := New("verbose", "console")
	require.NotNil(t, l)
	assert.False(t, l.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, l.Core().Enabled(zapcore.InfoLevel))

	assert.True(t, New("debug", "json").Core().Enabled(zapcore.DebugLevel))
}
