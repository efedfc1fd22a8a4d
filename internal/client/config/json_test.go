package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, data map[string]any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cfg.json")
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func TestParseJson_OverlaysValues(t *testing.T) {
	path := writeTempJSON(t, map[string]any{
		"service_url":           "https://db.example.co",
		"api_key":               "key1",
		"database_path":         "notes.db",
		"online_check_interval": "10s",
		"drain_debounce":        "2s",
		"offline_enabled":       false,
	})
	os.Args = []string{"cmd", "-c", path}

	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)

	assert.Equal(t, "https://db.example.co", cfg.ServiceURL)
	assert.Equal(t, "key1", cfg.APIKey)
	assert.Equal(t, "notes.db", cfg.DatabasePath)
	assert.Equal(t, 10*time.Second, cfg.OnlineCheckInterval)
	assert.Equal(t, 2*time.Second, cfg.DrainDebounce)
	assert.False(t, cfg.OfflineEnabled)
}

func TestParseJson_PartialFileKeepsDefaults(t *testing.T) {
	path := writeTempJSON(t, map[string]any{
		"service_url": "https://db.example.co",
	})
	os.Args = []string{"cmd", "-c", path}

	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)

	assert.Equal(t, "https://db.example.co", cfg.ServiceURL)
	assert.Equal(t, "inkwell.db", cfg.DatabasePath)
	assert.Equal(t, 3*time.Second, cfg.OnlineCheckInterval)
	assert.True(t, cfg.OfflineEnabled)
}

func TestParseJson_NoFileFlagIsNoop(t *testing.T) {
	os.Args = []string{"cmd"}

	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)

	assert.Equal(t, "http://127.0.0.1:8000", cfg.ServiceURL)
}

func TestParseJson_MissingFilePanics(t *testing.T) {
	os.Args = []string{"cmd", "-c", filepath.Join(t.TempDir(), "absent.json")}

	cfg := &Config{}
	assert.Panics(t, func() { parseJson(cfg) })
}

func TestParseJson_NanosecondNumbers(t *testing.T) {
	path := writeTempJSON(t, map[string]any{
		"online_check_interval": int64(5 * time.Second),
	})
	os.Args = []string{"cmd", "-c", path}

	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)

	assert.Equal(t, 5*time.Second, cfg.OnlineCheckInterval)
}
