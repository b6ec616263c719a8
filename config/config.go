package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds all application configuration.
type Config struct {
	Browser  BrowserConfig  `toml:"browser"`
	Sequence SequenceConfig `toml:"sequence"`
	Hold     HoldConfig     `toml:"hold"`
	Server   ServerConfig   `toml:"server"`
	Webhook  WebhookConfig  `toml:"webhook"`
	Log      LogConfig      `toml:"log"`
}

// BrowserConfig controls the Rod browser instance.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless.
	Headless bool `toml:"headless"` // default: true

	// NoSandbox disables Chrome's sandbox. Local file audits need it.
	NoSandbox bool `toml:"no_sandbox"` // default: true

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string `toml:"browser_bin"`

	// Stealth masks navigator.webdriver and friends before navigation.
	Stealth bool `toml:"stealth"` // default: false

	ViewportWidth  int `toml:"viewport_width"`  // default: 1920
	ViewportHeight int `toml:"viewport_height"` // default: 1080
}

// Readiness strategies for step 2 of the sequence.
const (
	ReadinessPoll  = "poll"
	ReadinessSleep = "sleep"
)

// SequenceConfig controls the interaction sequence.
type SequenceConfig struct {
	// Target is the local HTML file under test.
	Target string `toml:"target"` // default: "index.html"

	// OutputDir receives the screenshots.
	OutputDir string `toml:"output_dir"` // default: "."

	// ReadinessMode is "poll" (wait for the system global) or "sleep"
	// (fixed settle delay of ReadyTimeout).
	ReadinessMode string `toml:"readiness_mode"` // default: "poll"

	// ReadyTimeout bounds the readiness wait.
	ReadyTimeout time.Duration `toml:"ready_timeout"` // default: 8s

	// PollInterval is the gap between readiness probes.
	PollInterval time.Duration `toml:"poll_interval"` // default: 250ms

	// KeyDelay is the pause after pressing "2".
	KeyDelay time.Duration `toml:"key_delay"` // default: 2s

	// HoverDelay is the pause after hovering the first card.
	HoverDelay time.Duration `toml:"hover_delay"` // default: 1s

	// HoverTimeout bounds locating and hovering the first card.
	HoverTimeout time.Duration `toml:"hover_timeout"` // default: 5s

	// IdleWindow is the quiet period that counts as network-idle.
	IdleWindow time.Duration `toml:"idle_window"` // default: 500ms

	// NavigationTimeout is the max time for navigation plus idle wait.
	NavigationTimeout time.Duration `toml:"navigation_timeout"` // default: 30s
}

// HoldConfig controls what happens after the report is printed.
type HoldConfig struct {
	// Enabled keeps the browser open until SIGINT/SIGTERM.
	Enabled bool `toml:"enabled"` // default: true

	// Watch re-runs the audit whenever the target file changes during hold.
	Watch bool `toml:"watch"` // default: false
}

// ServerConfig controls the optional status API.
type ServerConfig struct {
	// Addr is the listen address. Empty disables the server.
	Addr string `toml:"addr"`

	// Mode is the gin mode: "debug", "release", "test"; default: "release".
	Mode string `toml:"mode"`

	// APIKeys restricts access to the status API. Empty means open access.
	APIKeys []string `toml:"api_keys"`

	// MaxRuns is how many run results are kept in memory.
	MaxRuns int `toml:"max_runs"` // default: 50

	// RequestsPerSecond is the sustained rate per caller; 0 disables limiting.
	RequestsPerSecond float64 `toml:"requests_per_second"` // default: 5

	// Burst is the token-bucket burst size.
	Burst int `toml:"burst"` // default: 10
}

// WebhookConfig controls run notifications.
type WebhookConfig struct {
	URL    string `toml:"url"`
	Secret string `toml:"secret"`
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string `toml:"level"`  // default: "info"
	Format string `toml:"format"` // "json" or "text"; default: "text"
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Browser: BrowserConfig{
			Headless:       envBoolOr("VIBCHECK_HEADLESS", true),
			NoSandbox:      envBoolOr("VIBCHECK_NO_SANDBOX", true),
			BrowserBin:     os.Getenv("VIBCHECK_BROWSER_BIN"),
			Stealth:        envBoolOr("VIBCHECK_STEALTH", false),
			ViewportWidth:  envIntOr("VIBCHECK_VIEWPORT_WIDTH", 1920),
			ViewportHeight: envIntOr("VIBCHECK_VIEWPORT_HEIGHT", 1080),
		},
		Sequence: SequenceConfig{
			Target:            envOr("VIBCHECK_TARGET", "index.html"),
			OutputDir:         envOr("VIBCHECK_OUTPUT_DIR", "."),
			ReadinessMode:     envOr("VIBCHECK_READINESS", ReadinessPoll),
			ReadyTimeout:      envDurationOr("VIBCHECK_READY_TIMEOUT", 8*time.Second),
			PollInterval:      envDurationOr("VIBCHECK_POLL_INTERVAL", 250*time.Millisecond),
			KeyDelay:          envDurationOr("VIBCHECK_KEY_DELAY", 2*time.Second),
			HoverDelay:        envDurationOr("VIBCHECK_HOVER_DELAY", 1*time.Second),
			HoverTimeout:      envDurationOr("VIBCHECK_HOVER_TIMEOUT", 5*time.Second),
			IdleWindow:        envDurationOr("VIBCHECK_IDLE_WINDOW", 500*time.Millisecond),
			NavigationTimeout: envDurationOr("VIBCHECK_NAV_TIMEOUT", 30*time.Second),
		},
		Hold: HoldConfig{
			Enabled: envBoolOr("VIBCHECK_HOLD", true),
			Watch:   envBoolOr("VIBCHECK_WATCH", false),
		},
		Server: ServerConfig{
			Addr:    os.Getenv("VIBCHECK_ADDR"),
			Mode:    envOr("VIBCHECK_MODE", "release"),
			APIKeys: envSliceOr("VIBCHECK_API_KEYS", nil),
			MaxRuns: envIntOr("VIBCHECK_MAX_RUNS", 50),

			RequestsPerSecond: envFloatOr("VIBCHECK_RATE_LIMIT_RPS", 5),
			Burst:             envIntOr("VIBCHECK_RATE_LIMIT_BURST", 10),
		},
		Webhook: WebhookConfig{
			URL:    os.Getenv("VIBCHECK_WEBHOOK_URL"),
			Secret: os.Getenv("VIBCHECK_WEBHOOK_SECRET"),
		},
		Log: LogConfig{
			Level:  envOr("VIBCHECK_LOG_LEVEL", "info"),
			Format: envOr("VIBCHECK_LOG_FORMAT", "text"),
		},
	}
}

// LoadFile overlays the TOML file at path onto cfg. Keys absent from the
// file keep their current values.
func LoadFile(path string, cfg *Config) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("config: decode %s: %w", path, err)
	}
	for _, key := range md.Undecoded() {
		slog.Warn("unknown config key ignored", "file", path, "key", key.String())
	}
	return nil
}

// Validate rejects settings the sequence cannot run with.
func (c *Config) Validate() error {
	switch c.Sequence.ReadinessMode {
	case ReadinessPoll, ReadinessSleep:
	default:
		return fmt.Errorf("config: readiness mode %q must be %q or %q",
			c.Sequence.ReadinessMode, ReadinessPoll, ReadinessSleep)
	}
	if c.Sequence.Target == "" {
		return fmt.Errorf("config: target must not be empty")
	}
	if c.Sequence.PollInterval <= 0 {
		return fmt.Errorf("config: poll interval must be positive")
	}
	if c.Browser.ViewportWidth <= 0 || c.Browser.ViewportHeight <= 0 {
		return fmt.Errorf("config: viewport %dx%d is invalid",
			c.Browser.ViewportWidth, c.Browser.ViewportHeight)
	}
	return nil
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
