package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.True(t, cfg.Browser.Headless)
	assert.True(t, cfg.Browser.NoSandbox)
	assert.Equal(t, 1920, cfg.Browser.ViewportWidth)
	assert.Equal(t, 1080, cfg.Browser.ViewportHeight)
	assert.Equal(t, "index.html", cfg.Sequence.Target)
	assert.Equal(t, ReadinessPoll, cfg.Sequence.ReadinessMode)
	assert.Equal(t, 8*time.Second, cfg.Sequence.ReadyTimeout)
	assert.Equal(t, 2*time.Second, cfg.Sequence.KeyDelay)
	assert.Equal(t, time.Second, cfg.Sequence.HoverDelay)
	assert.Equal(t, 5*time.Second, cfg.Sequence.HoverTimeout)
	assert.True(t, cfg.Hold.Enabled)
	assert.Empty(t, cfg.Server.Addr)
	assert.Equal(t, 5.0, cfg.Server.RequestsPerSecond)
	assert.Equal(t, 10, cfg.Server.Burst)
	require.NoError(t, cfg.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("VIBCHECK_TARGET", "dist/index.html")
	t.Setenv("VIBCHECK_READY_TIMEOUT", "3s")
	t.Setenv("VIBCHECK_HEADLESS", "false")
	t.Setenv("VIBCHECK_API_KEYS", "a, b,,c")
	t.Setenv("VIBCHECK_VIEWPORT_WIDTH", "not-a-number")

	cfg := Load()

	assert.Equal(t, "dist/index.html", cfg.Sequence.Target)
	assert.Equal(t, 3*time.Second, cfg.Sequence.ReadyTimeout)
	assert.False(t, cfg.Browser.Headless)
	assert.Equal(t, []string{"a", "b", "c"}, cfg.Server.APIKeys)
	assert.Equal(t, 1920, cfg.Browser.ViewportWidth, "unparsable values fall back to the default")
}

func TestLoadFileOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vibcheck.toml")
	data := `
[sequence]
target = "build/index.html"
readiness_mode = "sleep"
key_delay = "500ms"

[server]
addr = "127.0.0.1:9090"
api_keys = ["secret"]
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg := Load()
	require.NoError(t, LoadFile(path, cfg))

	assert.Equal(t, "build/index.html", cfg.Sequence.Target)
	assert.Equal(t, ReadinessSleep, cfg.Sequence.ReadinessMode)
	assert.Equal(t, 500*time.Millisecond, cfg.Sequence.KeyDelay)
	assert.Equal(t, "127.0.0.1:9090", cfg.Server.Addr)
	assert.Equal(t, []string{"secret"}, cfg.Server.APIKeys)

	// Untouched keys keep their defaults.
	assert.Equal(t, time.Second, cfg.Sequence.HoverDelay)
	assert.Equal(t, 1080, cfg.Browser.ViewportHeight)
}

func TestLoadFileMissing(t *testing.T) {
	cfg := Load()
	err := LoadFile(filepath.Join(t.TempDir(), "absent.toml"), cfg)
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad readiness mode", func(c *Config) { c.Sequence.ReadinessMode = "spin" }},
		{"empty target", func(c *Config) { c.Sequence.Target = "" }},
		{"zero poll interval", func(c *Config) { c.Sequence.PollInterval = 0 }},
		{"zero viewport", func(c *Config) { c.Browser.ViewportWidth = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Load()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
