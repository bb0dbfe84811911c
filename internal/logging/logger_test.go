package logging

import (
	"testing"

	"github.com/mikey/loan-approval/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("warn"))
	assert.Equal(t, zapcore.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("verbose"))
}

func TestInitLogger(t *testing.T) {
	v := config.NewEmptyViper()
	v.Set("logging.level", "warn")

	logger, err := InitLogger(config.NewFromViper(v))
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))
}

func TestInitConsoleLogger(t *testing.T) {
	logger, err := InitConsoleLogger(true, false)
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
}
