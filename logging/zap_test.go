package logging_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/goliatone/go-accounts/logging"
)

func TestZapLogger_FormatsMessages(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := logging.NewZap(zap.New(core))

	logger.Debug("debug %d", 1)
	logger.Info("user registered id=%s", "abc")
	logger.Warn("event delivery failed: %v", "boom")
	logger.Error("oops")

	entries := logs.All()
	require.Len(t, entries, 4)
	assert.Equal(t, "debug 1", entries[0].Message)
	assert.Equal(t, "user registered id=abc", entries[1].Message)
	assert.Equal(t, zapcore.WarnLevel, entries[2].Level)
	assert.Equal(t, "event delivery failed: boom", entries[2].Message)
	assert.Equal(t, zapcore.ErrorLevel, entries[3].Level)
}

func TestZapLogger_NilFallsBackToNop(t *testing.T) {
	logger := logging.NewZap(nil)
	assert.NotPanics(t, func() {
		logger.Info("nothing to see")
	})
}

func TestNew_RejectsUnknownLevel(t *testing.T) {
	_, err := logging.New(false, "loud")
	assert.Error(t, err)

	l, err := logging.New(true, "warn")
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
}
