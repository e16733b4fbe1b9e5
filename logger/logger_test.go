package logger_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/warp/leave-planner/config"
	"github.com/warp/leave-planner/logger"
)

func TestNew(t *testing.T) {
	log, err := logger.New(config.LogConfig{Level: "warn", Format: "json"})
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(zap.InfoLevel))
	assert.True(t, log.Core().Enabled(zap.WarnLevel))

	log, err = logger.New(config.LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zap.DebugLevel))
}

func TestNew_InvalidLevel(t *testing.T) {
	_, err := logger.New(config.LogConfig{Level: "loud"})
	assert.Error(t, err)
}
