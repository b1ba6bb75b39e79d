package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitDisabledDiscards(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, Init(Options{Enabled: false, Output: &out}))
	Info("should not appear")
	assert.Zero(t, out.Len())
}

func TestInitJSONToWriter(t *testing.T) {
	t.Cleanup(func() { _ = Init(Options{}) })

	var out bytes.Buffer
	require.NoError(t, Init(Options{Enabled: true, Output: &out, Level: slog.LevelDebug, JSON: true}))
	Debug("heap: alloc failed", "blocks", 3)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &rec))
	assert.Equal(t, "heap: alloc failed", rec["msg"])
	assert.Equal(t, float64(3), rec["blocks"])
}

func TestInitLevelFilters(t *testing.T) {
	t.Cleanup(func() { _ = Init(Options{}) })

	var out bytes.Buffer
	require.NoError(t, Init(Options{Enabled: true, Output: &out, Level: slog.LevelWarn}))
	Info("dropped")
	assert.Zero(t, out.Len())
	Warn("kept")
	assert.Contains(t, out.String(), "kept")
}

func TestCleanOldLogs(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	old := filepath.Join(dir, "kheap-2024-01-01.log")
	recent := filepath.Join(dir, "kheap-2024-02-20.log")
	other := filepath.Join(dir, "unrelated-2020-01-01.log")
	for _, p := range []string{old, recent, other} {
		require.NoError(t, os.WriteFile(p, nil, 0o644))
	}

	cleanOldLogs(dir, now)

	assert.NoFileExists(t, old)
	assert.FileExists(t, recent)
	assert.FileExists(t, other)
}
