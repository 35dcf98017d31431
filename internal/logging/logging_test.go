package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name        string
		level       string
		development bool
		wantLevel   zapcore.Level
	}{
		{"production info", "info", false, zapcore.InfoLevel},
		{"production warn", "warn", false, zapcore.WarnLevel},
		{"development debug", "debug", true, zapcore.DebugLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.level, tt.development)
			require.NoError(t, err)
			require.NotNil(t, logger)

			assert.True(t, logger.Core().Enabled(tt.wantLevel))
			if tt.wantLevel > zapcore.DebugLevel {
				assert.False(t, logger.Core().Enabled(tt.wantLevel-1))
			}
		})
	}
}

func TestNewInvalidLevel(t *testing.T) {
	_, err := New("loud", false)
	assert.Error(t, err)
}

func TestInstall(t *testing.T) {
	logger := zap.NewNop()
	restore := Install(logger)
	assert.Same(t, logger, zap.L())

	restore()
	assert.NotSame(t, logger, zap.L())
}
