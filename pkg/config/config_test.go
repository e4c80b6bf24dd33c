package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	return dir
}

func TestLoadConfigDefaults(t *testing.T) {
	dir := isolate(t)

	cfg, err := LoadConfig(filepath.Join(dir, "missing.toml"))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:5000/api", cfg.Backend.BaseURL)
	assert.Zero(t, cfg.Backend.Timeout.Duration)
	assert.False(t, cfg.Backend.FenceStaleResponses)
	assert.Equal(t, "localhost:8080", cfg.Addr())
	assert.Equal(t, 3*time.Second, cfg.Notifications.Lifetime.Duration)
	assert.Equal(t, 300*time.Millisecond, cfg.Notifications.Exit.Duration)
	assert.True(t, cfg.History)
	assert.Equal(t, filepath.Join(dir, "data", "stusearch"), cfg.StorageDir)
	assert.Equal(t, filepath.Join(dir, "data", "stusearch", "history.db"), cfg.HistoryPath())
}

func TestLoadConfigFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
storage_dir = "/tmp/stusearch-test"
history = false

[backend]
base_url = "http://records.internal:5000/api"
timeout = "10s"
fence_stale_responses = true

[web]
port = 9090
`), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/stusearch-test", cfg.StorageDir)
	assert.False(t, cfg.History)
	assert.Equal(t, "http://records.internal:5000/api", cfg.Backend.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.Backend.Timeout.Duration)
	assert.True(t, cfg.Backend.FenceStaleResponses)
	assert.Equal(t, "localhost:9090", cfg.Addr())
	assert.Equal(t, 12*time.Hour, cfg.Web.SessionTTL.Duration)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	dir := isolate(t)
	t.Setenv("STUSEARCH_BACKEND_URL", "http://env.example:5000/api")
	t.Setenv("STUSEARCH_WEB_PORT", "7000")
	t.Setenv("STUSEARCH_BACKEND_TIMEOUT", "2s")
	t.Setenv("STUSEARCH_FENCE_STALE", "true")

	cfg, err := LoadConfig(filepath.Join(dir, "missing.toml"))
	require.NoError(t, err)

	assert.Equal(t, "http://env.example:5000/api", cfg.Backend.BaseURL)
	assert.Equal(t, 7000, cfg.Web.Port)
	assert.Equal(t, 2*time.Second, cfg.Backend.Timeout.Duration)
	assert.True(t, cfg.Backend.FenceStaleResponses)
}

func TestLoadConfigValidation(t *testing.T) {
	dir := isolate(t)

	tests := []struct {
		name string
		body string
	}{
		{"bad url", "[backend]\nbase_url = \"not a url\"\n"},
		{"bad port", "[web]\nport = 70000\n"},
		{"negative timeout", "[backend]\ntimeout = \"-1s\"\n"},
		{"zero lifetime", "[notifications]\nlifetime = \"0s\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, strings.ReplaceAll(tt.name, " ", "_")+".toml")
			require.NoError(t, os.WriteFile(path, []byte(tt.body), 0644))

			_, err := LoadConfig(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid config")
		})
	}
}

func TestLoadConfigBadTOML(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("[backend\n"), 0644))

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmarshaling config")
}

func TestSaveTemplateConfigLoads(t *testing.T) {
	dir := isolate(t)
	cfg, err := GetDefaultConfig()
	require.NoError(t, err)

	path := filepath.Join(dir, "nested", "config.toml")
	require.NoError(t, cfg.SaveTemplateConfig(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), cfg.StorageDir)

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.StorageDir, loaded.StorageDir)
	assert.Equal(t, cfg.Backend.BaseURL, loaded.Backend.BaseURL)
}

func TestSaveConfigRoundTrip(t *testing.T) {
	dir := isolate(t)
	cfg, err := GetDefaultConfig()
	require.NoError(t, err)
	cfg.Web.Port = 8181

	path := filepath.Join(dir, "saved.toml")
	require.NoError(t, cfg.SaveConfig(path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 8181, loaded.Web.Port)
	assert.Equal(t, cfg.Notifications.Exit, loaded.Notifications.Exit)
}

func TestWatchReloads(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[web]\nport = 8080\n"), 0644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan *Config, 16)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, func(c *Config) {
			select {
			case changes <- c:
			default:
			}
		})
	}()

	// give the watcher time to register
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("[web]\nport = 9191\n"), 0644))

	timeout := time.After(3 * time.Second)
	for observed := false; !observed; {
		select {
		case cfg := <-changes:
			observed = cfg.Web.Port == 9191
		case <-timeout:
			t.Fatal("config change not observed")
		}
	}

	cancel()
	require.NoError(t, <-done)
}
