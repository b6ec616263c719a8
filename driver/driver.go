// Package driver owns the browser process and the single page a run
// drives. It is the only package that spawns anything.
package driver

import (
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"path/filepath"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/use-agent/vibcheck/config"
	"github.com/use-agent/vibcheck/models"
)

// Driver manages the browser lifecycle.
type Driver struct {
	browser *rod.Browser
	cfg     config.BrowserConfig
}

// Launch starts a browser configured for unrestricted local file access.
func Launch(cfg config.BrowserConfig) (*Driver, error) {
	l := launcher.New().
		Headless(cfg.Headless).
		NoSandbox(cfg.NoSandbox)

	if cfg.BrowserBin != "" {
		l = l.Bin(cfg.BrowserBin)
	}

	// ── Local file + WebGL flags ─────────────────────────────────────
	l.Set(flags.Flag("allow-file-access-from-files"))
	l.Set(flags.Flag("disable-setuid-sandbox"))
	l.Set(flags.Flag("ignore-gpu-blocklist"))
	l.Set(flags.Flag("enable-webgl"))
	l.Set(flags.Flag("disable-background-timer-throttling"))
	l.Set(flags.Flag("disable-renderer-backgrounding"))
	l.Set(flags.Flag("disable-backgrounding-occluded-windows"))
	l.Set(flags.Flag("no-first-run"))

	controlURL, err := l.Launch()
	if err != nil {
		return nil, models.NewAuditError(
			models.ErrCodeBrowserLaunch,
			"failed to launch browser",
			err,
		)
	}
	slog.Info("browser launched", "controlURL", controlURL, "headless", cfg.Headless)

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		// Nothing can drive a browser we failed to connect to.
		l.Kill()
		return nil, models.NewAuditError(
			models.ErrCodeBrowserLaunch,
			"failed to connect to browser",
			err,
		)
	}

	return &Driver{browser: browser, cfg: cfg}, nil
}

// OpenPage creates the run's page: fixed viewport, optional stealth, and
// console forwarding to out for the page's whole lifetime.
func (d *Driver) OpenPage(out io.Writer, seq config.SequenceConfig) (*Session, error) {
	page, err := d.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, models.NewAuditError(
			models.ErrCodeBrowserLaunch,
			"failed to open page",
			err,
		)
	}

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             d.cfg.ViewportWidth,
		Height:            d.cfg.ViewportHeight,
		DeviceScaleFactor: 1,
	}); err != nil {
		return nil, models.NewAuditError(
			models.ErrCodeBrowserLaunch,
			fmt.Sprintf("failed to set %dx%d viewport", d.cfg.ViewportWidth, d.cfg.ViewportHeight),
			err,
		)
	}

	// Stealth must be installed before the first navigation.
	if d.cfg.Stealth {
		if _, err := page.EvalOnNewDocument(stealth.JS); err != nil {
			slog.Warn("stealth injection failed, proceeding without stealth", "error", err)
		}
	}

	attachConsole(page, NewForwarder(out))

	return &Session{page: page, idleWindow: seq.IdleWindow}, nil
}

// Close kills the browser process. Runs normally end by holding the
// browser open, so this is only called once the hold is released.
func (d *Driver) Close() {
	slog.Info("closing browser")
	if err := d.browser.Close(); err != nil {
		slog.Warn("browser close failed", "error", err)
	}
}

// FileURL turns a local path into an absolute file:// URL.
func FileURL(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", models.NewAuditError(
			models.ErrCodeInvalidInput,
			fmt.Sprintf("cannot resolve %q", path),
			err,
		)
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
	return u.String(), nil
}
