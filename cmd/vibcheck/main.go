package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/use-agent/vibcheck/config"
)

// Exit codes.
const (
	exitOK      = 0
	exitFailed  = 1
	exitVerdict = 2
)

var (
	configPath   string
	target       string
	outputDir    string
	headless     bool
	readiness    string
	readyTimeout string
	addr         string
	watch        bool
	hold         bool
	strict       bool
	logLevel     string
	logFormat    string

	exitCode = exitOK
)

var rootCmd = &cobra.Command{
	Use:   "vibcheck",
	Short: "Drive the VIB34D page in a real browser and report what loaded",
	Long: `vibcheck opens a local index.html in Chromium, walks it through the
initial, tech-state and hover states, captures a screenshot of each and
prints an inspection report with remediation hints. The browser stays open
afterwards until interrupted.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runAudit,
}

var runCmd = &cobra.Command{
	Use:          "run",
	Short:        "Run the browser audit (default)",
	SilenceUsage: true,
	RunE:         runAudit,
}

var inspectHTMLCmd = &cobra.Command{
	Use:          "inspect-html <file>",
	Short:        "Inspect a saved HTML snapshot without a browser",
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE:         runInspectHTML,
}

func init() {
	addRunFlags(rootCmd)
	addRunFlags(runCmd)
	rootCmd.PersistentFlags().BoolVar(&strict, "strict", false, "Exit 2 when any check fails")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "text or json")

	rootCmd.AddCommand(runCmd, inspectHTMLCmd)
}

func addRunFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&configPath, "config", "c", "", "TOML config file")
	f.StringVarP(&target, "target", "t", "", "HTML file to audit (default index.html)")
	f.StringVarP(&outputDir, "output-dir", "o", "", "Directory for screenshots (default .)")
	f.BoolVar(&headless, "headless", true, "Run the browser headless")
	f.StringVar(&readiness, "readiness", "", "Readiness strategy: poll or sleep")
	f.StringVar(&readyTimeout, "ready-timeout", "", "Readiness wait bound, e.g. 8s")
	f.StringVar(&addr, "addr", "", "Serve the status API on this address while holding")
	f.BoolVarP(&watch, "watch", "w", false, "Re-run the audit when the target file changes")
	f.BoolVar(&hold, "hold", true, "Keep the browser open after the report")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitFailed)
	}
	os.Exit(exitCode)
}

// loadConfig layers environment, the optional TOML file and flags, in that
// order of precedence from lowest to highest.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Load()
	if configPath != "" {
		if err := config.LoadFile(configPath, cfg); err != nil {
			return nil, err
		}
	}
	if err := applyFlags(cmd, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	f := cmd.Flags()
	if f.Changed("target") {
		cfg.Sequence.Target = target
	}
	if f.Changed("output-dir") {
		cfg.Sequence.OutputDir = outputDir
	}
	if f.Changed("headless") {
		cfg.Browser.Headless = headless
	}
	if f.Changed("readiness") {
		cfg.Sequence.ReadinessMode = readiness
	}
	if f.Changed("ready-timeout") {
		d, err := parseDuration("ready-timeout", readyTimeout)
		if err != nil {
			return err
		}
		cfg.Sequence.ReadyTimeout = d
	}
	if f.Changed("addr") {
		cfg.Server.Addr = addr
	}
	if f.Changed("watch") {
		cfg.Hold.Watch = watch
	}
	if f.Changed("hold") {
		cfg.Hold.Enabled = hold
	}
	if f.Changed("log-level") {
		cfg.Log.Level = logLevel
	}
	if f.Changed("log-format") {
		cfg.Log.Format = logFormat
	}
	return nil
}

// initLogger configures slog based on the LogConfig. Logs go to w so the
// report on stdout stays readable.
func initLogger(w io.Writer, cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	slog.SetDefault(slog.New(handler))
}
