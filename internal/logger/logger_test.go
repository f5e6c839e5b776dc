package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/dimitrije/worktrack-api/internal/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWith_WritesJSON(t *testing.T) {
	var buf bytes.Buffer
	log := With(&buf, zerolog.InfoLevel)

	log.Debug().Msg("hidden")
	log.Info().Str("table_id", "t1").Msg("table submitted")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "table submitted", line["message"])
	assert.Equal(t, "t1", line["table_id"])
	assert.Equal(t, "worktrack-api", line["service"])
}

func TestNew_WritesRotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "api.log")
	cfg := &config.Config{
		Env: "production",
		Log: config.LogConfig{Level: "debug", File: path, MaxSizeMB: 1},
	}

	log, err := New(cfg)
	require.NoError(t, err)
	log.Debug().Msg("to file")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "to file")
}

func TestNew_UnknownLevelFallsBackToInfo(t *testing.T) {
	log, err := New(&config.Config{Log: config.LogConfig{Level: "loud"}})
	require.NoError(t, err)
	assert.Equal(t, zerolog.InfoLevel, log.GetLevel())
}
