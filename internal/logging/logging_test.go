package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/llehouerou/tazaudio/internal/config"
)

func TestSetup_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "tazaudio.log")

	log, closer, err := Setup(config.LogConfig{Level: "debug", File: path})
	require.NoError(t, err)

	log.WithField("item", "art1.html").Debug("state transition")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "state transition")
	assert.Contains(t, string(data), "item=art1.html")
}

func TestSetup_AppendsToExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tazaudio.log")
	require.NoError(t, os.WriteFile(path, []byte("previous run\n"), 0o600))

	log, closer, err := Setup(config.LogConfig{Level: "info", File: path})
	require.NoError(t, err)
	log.Info("next run")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "previous run\n"))
	assert.Contains(t, string(data), "next run")
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, config.LogConfig{Level: "info", JSON: true})

	log.WithField("media_id", "a.mp3").Warn("playback failed")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "playback failed", entry["msg"])
	assert.Equal(t, "warning", entry["level"])
	assert.Equal(t, "a.mp3", entry["media_id"])
}

func TestNew_Level(t *testing.T) {
	tests := []struct {
		level string
		want  logrus.Level
	}{
		{"debug", logrus.DebugLevel},
		{"warn", logrus.WarnLevel},
		{"error", logrus.ErrorLevel},
		{"", logrus.InfoLevel},
		{"chatty", logrus.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			log := New(&bytes.Buffer{}, config.LogConfig{Level: tt.level})
			assert.Equal(t, tt.want, log.GetLevel())
		})
	}
}

func TestNew_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, config.LogConfig{Level: "warn"})

	log.Info("hidden")
	log.Error("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestDiscard(t *testing.T) {
	log := Discard()
	log.Error("nothing")
	assert.Equal(t, logrus.InfoLevel, log.GetLevel())
}
