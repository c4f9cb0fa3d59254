package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zsiec/livedash/internal/config"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		config  *config.LoggingConfig
		wantErr bool
		check   func(t *testing.T, logger *logrus.Logger)
	}{
		{
			name:   "json format stdout",
			config: &config.LoggingConfig{Level: "info", Format: "json", Output: "stdout"},
			check: func(t *testing.T, logger *logrus.Logger) {
				assert.Equal(t, logrus.InfoLevel, logger.Level)
				_, ok := logger.Formatter.(*logrus.JSONFormatter)
				assert.True(t, ok)
				assert.Equal(t, os.Stdout, logger.Out)
			},
		},
		{
			name:   "text format stderr",
			config: &config.LoggingConfig{Level: "debug", Format: "text", Output: "stderr"},
			check: func(t *testing.T, logger *logrus.Logger) {
				assert.Equal(t, logrus.DebugLevel, logger.Level)
				_, ok := logger.Formatter.(*logrus.TextFormatter)
				assert.True(t, ok)
				assert.Equal(t, os.Stderr, logger.Out)
			},
		},
		{
			name:    "invalid level",
			config:  &config.LoggingConfig{Level: "chatty", Format: "json", Output: "stdout"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.config)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, logger)
		})
	}
}

func TestNewFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "watch.log")
	logger, err := New(&config.LoggingConfig{
		Level: "info", Format: "json", Output: path, MaxSize: 1, MaxBackups: 1, MaxAge: 1,
	})
	require.NoError(t, err)

	logger.Info("hello")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"hello"`)
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetFormatter(&logrus.JSONFormatter{})

	WithComponent(logger, "poller").Info("tick")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "poller", entry["component"])
	assert.Equal(t, "livedash", entry["service"])
	assert.NotEmpty(t, entry["version"])
}

func TestLogrusAdapter(t *testing.T) {
	var buf bytes.Buffer
	base := logrus.New()
	base.SetOutput(&buf)
	base.SetFormatter(&logrus.JSONFormatter{})
	base.SetLevel(logrus.DebugLevel)

	log := NewLogrusAdapter(logrus.NewEntry(base)).
		WithField("poller", "twitch").
		WithFields(map[string]interface{}{"slot": "followers"}).
		WithError(assert.AnError)
	log.Warnf("write failed after %d fields", 2)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "twitch", entry["poller"])
	assert.Equal(t, "followers", entry["slot"])
	assert.Equal(t, assert.AnError.Error(), entry["error"])
	assert.Equal(t, "warning", entry["level"])
	assert.Equal(t, "write failed after 2 fields", entry["msg"])
}

func TestNullLogger(t *testing.T) {
	log := NewNullLogger()
	assert.NotPanics(t, func() {
		log.WithField("a", 1).WithError(assert.AnError).Errorf("x %d", 1)
		log.Log(logrus.ErrorLevel, "y")
	})
}
