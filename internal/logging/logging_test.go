package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew_Levels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		logger, err := New(level, "")
		require.NoError(t, err, level)
		want, _ := zapcore.ParseLevel(level)
		assert.True(t, logger.Core().Enabled(want), level)
		if want > zapcore.DebugLevel {
			assert.False(t, logger.Core().Enabled(want-1), level)
		}
	}
}

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New("loud", "")
	assert.Error(t, err)
}

func TestNew_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.log")
	logger, err := New("info", path)
	require.NoError(t, err)

	logger.Info("hello from test")
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello from test")
}

func TestVerbosity(t *testing.T) {
	assert.Equal(t, 2, Verbosity("debug"))
	assert.Equal(t, 1, Verbosity("info"))
	assert.Equal(t, 0, Verbosity("warn"))
	assert.Equal(t, 0, Verbosity("error"))
}
