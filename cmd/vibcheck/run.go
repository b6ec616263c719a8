package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/use-agent/vibcheck/api"
	"github.com/use-agent/vibcheck/audit"
	"github.com/use-agent/vibcheck/cache"
	"github.com/use-agent/vibcheck/config"
	"github.com/use-agent/vibcheck/driver"
	"github.com/use-agent/vibcheck/inspect"
	"github.com/use-agent/vibcheck/models"
)

func runAudit(cmd *cobra.Command, _ []string) error {
	// ── 1. Load configuration ───────────────────────────────────────
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	// ── 2. Initialise structured logging ────────────────────────────
	initLogger(os.Stderr, cfg.Log)
	slog.Info("vibcheck starting",
		"target", cfg.Sequence.Target,
		"output_dir", cfg.Sequence.OutputDir,
		"readiness", cfg.Sequence.ReadinessMode,
		"headless", cfg.Browser.Headless,
	)

	notes, err := inspect.ValidateSelectors(inspect.DefaultSpec())
	if err != nil {
		return err
	}
	for _, n := range notes {
		slog.Debug("selector note", "field", n.Field, "selector", n.Selector, "reason", n.Reason)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ── 3. Claim the output directory ───────────────────────────────
	unlock, err := audit.LockOutputDir(cfg.Sequence.OutputDir)
	if err != nil {
		return err
	}
	defer unlock()

	targetURL, err := driver.FileURL(cfg.Sequence.Target)
	if err != nil {
		return err
	}

	// ── 4. Launch the browser and open the page ─────────────────────
	drv, err := driver.Launch(cfg.Browser)
	if err != nil {
		return err
	}
	defer drv.Close()

	sess, err := drv.OpenPage(os.Stdout, cfg.Sequence)
	if err != nil {
		return holdAfterFailure(ctx, cfg.Hold.Enabled, err)
	}

	// ── 5. Optional status API ──────────────────────────────────────
	store := cache.New(cfg.Server.MaxRuns)
	srv := startServer(cfg, store)

	// ── 6. Run the audit ────────────────────────────────────────────
	runner := audit.NewRunner(cfg, targetURL, os.Stdout, store)
	run, runErr := runner.Run(ctx, sess)

	// ── 7. Hold the browser open ────────────────────────────────────
	if cfg.Hold.Enabled && ctx.Err() == nil {
		if cfg.Hold.Watch {
			err := audit.Watch(ctx, cfg.Sequence.Target, func(ctx context.Context) {
				run, runErr = runner.Run(ctx, sess)
			})
			if err != nil {
				slog.Error("watch failed, falling back to hold", "error", err)
				audit.Hold(ctx)
			}
		} else {
			audit.Hold(ctx)
		}
	}
	stop()

	// ── 8. Shut down ────────────────────────────────────────────────
	if srv != nil {
		shutdownServer(srv)
	}

	exitCode = decideExit(run, runErr, strict)
	slog.Info("vibcheck stopped", "exit_code", exitCode)
	return nil
}

// holdAfterFailure keeps a launched browser up for inspection after a setup
// failure, then returns err. The deferred Close only runs once the hold is
// released.
func holdAfterFailure(ctx context.Context, hold bool, err error) error {
	slog.Error("page setup failed", "error", err)
	if hold && ctx.Err() == nil {
		audit.Hold(ctx)
	}
	return err
}

// decideExit maps the final run to a process exit code. A failing report
// only matters in strict mode.
func decideExit(run *models.RunResult, runErr error, strict bool) int {
	if runErr != nil {
		return exitFailed
	}
	if strict && !run.Succeeded() {
		return exitVerdict
	}
	return exitOK
}

func startServer(cfg *config.Config, store *cache.Store) *http.Server {
	if cfg.Server.Addr == "" {
		return nil
	}
	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: api.NewRouter(store, cfg, time.Now()),
	}
	go func() {
		slog.Info("HTTP server listening", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
		}
	}()
	return srv
}

func shutdownServer(srv *http.Server) {
	// Give in-flight requests 5 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("HTTP server forced shutdown", "error", err)
	} else {
		slog.Info("HTTP server drained gracefully")
	}
}

func parseDuration(flag, v string) (time.Duration, error) {
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, models.NewAuditError(models.ErrCodeInvalidInput, fmt.Sprintf("--%s %q", flag, v), err)
	}
	return d, nil
}
