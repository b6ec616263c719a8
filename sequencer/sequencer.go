// Package sequencer drives the fixed interaction sequence against a page:
// load, wait for readiness, capture, press "2", capture, hover, capture.
package sequencer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/go-rod/rod/lib/input"
	"github.com/use-agent/vibcheck/config"
	"github.com/use-agent/vibcheck/fingerprint"
	"github.com/use-agent/vibcheck/inspect"
	"github.com/use-agent/vibcheck/models"
)

// Screenshot file names, written under SequenceConfig.OutputDir.
const (
	FileInitial   = "vib34d-initial.png"
	FileTechState = "vib34d-tech-state.png"
	FileHover     = "vib34d-hover-effect.png"
)

// TechKey switches the app to its tech view.
var TechKey = input.Digit2

// readyProbe reports whether the named window binding exists.
const readyProbe = `(name) => typeof window[name] !== 'undefined'`

// Session is the page handle the sequencer drives. The sequencer owns it
// exclusively for the duration of Run.
type Session interface {
	inspect.Evaluator

	// Navigate loads url and returns once the network is idle.
	Navigate(ctx context.Context, url string) error

	// Screenshot writes a full-page PNG to path.
	Screenshot(ctx context.Context, path string) error

	// PressKey types a single key.
	PressKey(ctx context.Context, key input.Key) error

	// HoverFirst moves the pointer over the first element matching
	// selector. It reports false, with no error, when nothing matches.
	HoverFirst(ctx context.Context, selector string) (bool, error)

	// HTML returns the current serialized DOM.
	HTML(ctx context.Context) (string, error)
}

// Result is what one pass of the sequence produced.
type Result struct {
	Screenshots []models.Screenshot
	Hovered     bool
}

// Sequencer runs the interaction steps with the configured timings.
type Sequencer struct {
	cfg config.SequenceConfig
}

// New creates a Sequencer.
func New(cfg config.SequenceConfig) *Sequencer {
	return &Sequencer{cfg: cfg}
}

// Run executes the sequence against sess. Every step is awaited before
// the next starts. A missing hover target is not an error: the third
// screenshot is simply skipped.
//
// Steps:
//
//  1. Navigate      – load targetURL, wait for network idle
//  2. Readiness     – poll for the system global (or fixed settle delay)
//  3. Capture       – vib34d-initial.png
//  4. Key press     – "2"
//  5. Pause         – KeyDelay
//  6. Capture       – vib34d-tech-state.png
//  7. Hover         – first .adaptive-card, if any, within HoverTimeout
//  8. Pause         – HoverDelay
//  9. Capture       – vib34d-hover-effect.png, only when step 7 hovered
func (s *Sequencer) Run(ctx context.Context, sess Session, targetURL string) (*Result, error) {
	res := &Result{}

	// ── 1. Navigate ───────────────────────────────────────────────────
	navCtx, cancel := withOptionalTimeout(ctx, s.cfg.NavigationTimeout)
	err := sess.Navigate(navCtx, targetURL)
	cancel()
	if err != nil {
		return nil, categorizeError(err, models.ErrCodeNavigation, "navigation to target failed")
	}
	slog.Debug("navigation complete", "step", 1, "url", targetURL)

	// ── 2. Readiness ──────────────────────────────────────────────────
	if err := s.awaitReady(ctx, sess); err != nil {
		return nil, err
	}

	// ── 3. Initial capture ────────────────────────────────────────────
	if err := s.capture(ctx, sess, res, models.StateInitial, FileInitial); err != nil {
		return nil, err
	}

	// ── 4. Key press ──────────────────────────────────────────────────
	if err := sess.PressKey(ctx, TechKey); err != nil {
		return nil, categorizeError(err, models.ErrCodeInput, "key press failed")
	}

	// ── 5. Pause ──────────────────────────────────────────────────────
	if err := sleep(ctx, s.cfg.KeyDelay); err != nil {
		return nil, categorizeError(err, models.ErrCodeTimeout, "interrupted after key press")
	}

	// ── 6. Tech-state capture ─────────────────────────────────────────
	if err := s.capture(ctx, sess, res, models.StateTechState, FileTechState); err != nil {
		return nil, err
	}

	// ── 7. Hover ──────────────────────────────────────────────────────
	hovered, err := s.hover(ctx, sess)
	if err != nil {
		return nil, err
	}
	res.Hovered = hovered

	// ── 8. Pause ──────────────────────────────────────────────────────
	if err := sleep(ctx, s.cfg.HoverDelay); err != nil {
		return nil, categorizeError(err, models.ErrCodeTimeout, "interrupted after hover")
	}

	// ── 9. Hover capture ──────────────────────────────────────────────
	if hovered {
		if err := s.capture(ctx, sess, res, models.StateHover, FileHover); err != nil {
			return nil, err
		}
	}

	return res, nil
}

// awaitReady either sleeps the fixed settle delay or polls for the system
// global until it exists or ReadyTimeout elapses.
func (s *Sequencer) awaitReady(ctx context.Context, sess Session) error {
	if s.cfg.ReadinessMode == config.ReadinessSleep {
		if err := sleep(ctx, s.cfg.ReadyTimeout); err != nil {
			return categorizeError(err, models.ErrCodeTimeout, "interrupted during settle delay")
		}
		return nil
	}

	start := time.Now()
	readyCtx, cancel := context.WithTimeout(ctx, s.cfg.ReadyTimeout)
	defer cancel()

	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	for {
		ok, err := probe(readyCtx, sess)
		if ok {
			slog.Debug("system ready", "step", 2, "elapsed", time.Since(start).Round(time.Millisecond))
			return nil
		}
		if err != nil {
			slog.Debug("readiness probe failed, retrying", "error", err)
		}

		select {
		case <-readyCtx.Done():
			if ctx.Err() != nil {
				return categorizeError(ctx.Err(), models.ErrCodeTimeout, "interrupted while waiting for readiness")
			}
			return models.NewAuditError(
				models.ErrCodeNotReady,
				fmt.Sprintf("window.%s not defined after %s", models.SystemGlobal, s.cfg.ReadyTimeout),
				readyCtx.Err(),
			)
		case <-ticker.C:
		}
	}
}

// hover moves the pointer over the first card within HoverTimeout. A hover
// that runs out of time is treated like a missing card so the run still
// reaches inspection. Only cancellation of the run itself is an error.
func (s *Sequencer) hover(ctx context.Context, sess Session) (bool, error) {
	hoverCtx, cancel := withOptionalTimeout(ctx, s.cfg.HoverTimeout)
	defer cancel()

	hovered, err := sess.HoverFirst(hoverCtx, inspect.CardSelector)
	switch {
	case ctx.Err() != nil:
		return false, categorizeError(ctx.Err(), models.ErrCodeTimeout, "interrupted during hover")
	case hoverCtx.Err() != nil:
		slog.Warn("hover timed out, skipping hover capture",
			"selector", inspect.CardSelector,
			"timeout", s.cfg.HoverTimeout,
		)
		return false, nil
	case err != nil:
		return false, categorizeError(err, models.ErrCodeInput, "hover failed")
	case !hovered:
		slog.Info("no hover target found, skipping hover capture", "selector", inspect.CardSelector)
	}
	return hovered, nil
}

func probe(ctx context.Context, sess Session) (bool, error) {
	res, err := sess.Eval(ctx, readyProbe, models.SystemGlobal)
	if err != nil {
		return false, err
	}
	return res.Bool(), nil
}

// capture writes one screenshot and records the DOM fingerprint at that
// moment. A DOM read failure only loses the fingerprint.
func (s *Sequencer) capture(ctx context.Context, sess Session, res *Result, state, name string) error {
	path := filepath.Join(s.cfg.OutputDir, name)
	if err := sess.Screenshot(ctx, path); err != nil {
		return categorizeError(err, models.ErrCodeScreenshot, fmt.Sprintf("screenshot %s failed", name))
	}

	shot := models.Screenshot{State: state, File: path}
	if doc, err := sess.HTML(ctx); err == nil {
		shot.Fingerprint = fingerprint.Structure(doc)
	} else {
		slog.Debug("could not read DOM for fingerprint", "state", state, "error", err)
	}
	res.Screenshots = append(res.Screenshots, shot)

	slog.Info("screenshot saved", "state", state, "file", path)
	return nil
}

// withOptionalTimeout bounds ctx by d when d is positive.
func withOptionalTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// sleep pauses for d unless ctx ends first.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// categorizeError wraps raw errors into typed AuditErrors. Context expiry
// is reported as a timeout whatever step it interrupted.
func categorizeError(err error, code, msg string) *models.AuditError {
	var ae *models.AuditError
	if errors.As(err, &ae) {
		return ae
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return models.NewAuditError(models.ErrCodeTimeout, msg, err)
	case errors.Is(err, context.Canceled):
		return models.NewAuditError(models.ErrCodeTimeout, "run canceled", err)
	default:
		return models.NewAuditError(code, msg, err)
	}
}
