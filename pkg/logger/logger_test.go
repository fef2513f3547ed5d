package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/config"
)

func TestNew(t *testing.T) {
	app := config.AppConfig{Name: "vetcare", Environment: "development"}

	log, err := New(app, config.LogConfig{Level: "debug", Format: "console", OutputPath: "stderr"})
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zapcore.DebugLevel))

	log, err = New(app, config.LogConfig{Level: "warn", Format: "json", OutputPath: "stderr"})
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(zapcore.InfoLevel))

	_, err = New(app, config.LogConfig{Level: "loud", Format: "json", OutputPath: "stderr"})
	assert.Error(t, err)
}

func TestNewTagsEveryLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vetcare.log")
	app := config.AppConfig{Name: "vetcare", Environment: "staging", Version: "1.4.0"}

	log, err := New(app, config.LogConfig{Level: "info", Format: "json", OutputPath: path})
	require.NoError(t, err)
	log.Info("consultation confirmed")
	_ = log.Sync()

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var line map[string]any
	require.NoError(t, json.Unmarshal(raw, &line))
	assert.Equal(t, "vetcare", line["service"])
	assert.Equal(t, "staging", line["env"])
	assert.Equal(t, "1.4.0", line["version"])
	assert.Equal(t, "consultation confirmed", line["msg"])
	assert.Contains(t, line, "ts")
}
