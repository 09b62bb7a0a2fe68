package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/dmehra2102/prod-golang-projects/clinicdesk/internal/config"
)

func TestNewLevels(t *testing.T) {
	tests := []struct {
		level   string
		format  string
		enabled zapcore.Level
		muted   zapcore.Level
	}{
		{"debug", "console", zapcore.DebugLevel, zapcore.DebugLevel - 1},
		{"info", "json", zapcore.InfoLevel, zapcore.DebugLevel},
		{"warn", "console", zapcore.WarnLevel, zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level+"/"+tt.format, func(t *testing.T) {
			out := filepath.Join(t.TempDir(), "out.log")
			log, err := New(config.LogConfig{Level: tt.level, Format: tt.format, OutputPath: out})
			require.NoError(t, err)

			assert.True(t, log.Core().Enabled(tt.enabled))
			assert.False(t, log.Core().Enabled(tt.muted))
			log.Info("ready")
		})
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(config.LogConfig{Level: "loud", Format: "json", OutputPath: "stderr"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid log level "loud"`)
}

func TestNewStampsServiceAndSession(t *testing.T) {
	out := filepath.Join(t.TempDir(), "logs", "desk.log")
	log, err := New(
		config.LogConfig{Level: "info", Format: "json", OutputPath: out},
		WithService(config.AppConfig{Name: "clinicdesk", Environment: "test", Version: "1.0.0"}),
		WithSession("sess-42"),
	)
	require.NoError(t, err)

	log.Info("ticket issued")
	require.NoError(t, log.Sync())

	raw, err := os.ReadFile(out)
	require.NoError(t, err)

	var line map[string]any
	require.NoError(t, json.Unmarshal(raw, &line))
	assert.Equal(t, "ticket issued", line["msg"])
	assert.Equal(t, "clinicdesk", line["service"])
	assert.Equal(t, "test", line["env"])
	assert.Equal(t, "1.0.0", line["version"])
	assert.Equal(t, "sess-42", line["session_id"])
}
