// Package audit ties one run together: sequence, inspection, report,
// storage and notification, then holds the session open.
package audit

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/use-agent/vibcheck/cache"
	"github.com/use-agent/vibcheck/config"
	"github.com/use-agent/vibcheck/inspect"
	"github.com/use-agent/vibcheck/models"
	"github.com/use-agent/vibcheck/report"
	"github.com/use-agent/vibcheck/sequencer"
	"github.com/use-agent/vibcheck/webhook"
)

// Runner executes audit runs against a session.
type Runner struct {
	seq       *sequencer.Sequencer
	targetURL string
	out       io.Writer
	store     *cache.Store
	hook      config.WebhookConfig
}

// NewRunner creates a Runner. The report is written to out; store may be
// nil when no status API is running.
func NewRunner(cfg *config.Config, targetURL string, out io.Writer, store *cache.Store) *Runner {
	return &Runner{
		seq:       sequencer.New(cfg.Sequence),
		targetURL: targetURL,
		out:       out,
		store:     store,
		hook:      cfg.Webhook,
	}
}

// Run performs one audit: the interaction sequence, a single inspection,
// and the report. The returned result is always non-nil; err is set when
// the sequence or the inspection failed, in which case no report is
// printed.
func (r *Runner) Run(ctx context.Context, sess sequencer.Session) (*models.RunResult, error) {
	run := &models.RunResult{
		ID:        uuid.New().String(),
		Target:    r.targetURL,
		StartedAt: time.Now(),
	}
	log := slog.With("run_id", run.ID)
	log.Info("audit started", "target", r.targetURL)

	err := r.execute(ctx, sess, run)
	run.FinishedAt = time.Now()

	if err != nil {
		run.Error = toDetail(err)
		log.Error("audit failed", "error", err)
	} else {
		log.Info("audit finished",
			"overall", run.Verdict.Overall,
			"screenshots", len(run.Screenshots),
			"elapsed", run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond),
		)
	}

	if r.store != nil {
		r.store.Put(run)
	}
	if r.hook.URL != "" {
		webhook.DeliverAsync(r.hook.URL, r.hook.Secret, webhook.NewRunEvent(run))
	}
	return run, err
}

func (r *Runner) execute(ctx context.Context, sess sequencer.Session, run *models.RunResult) error {
	res, err := r.seq.Run(ctx, sess, r.targetURL)
	if err != nil {
		return err
	}
	run.Screenshots = res.Screenshots
	run.Hovered = res.Hovered

	rec, err := inspect.Live(ctx, sess)
	if err != nil {
		return err
	}
	verdict := report.Evaluate(rec)
	run.Record = &rec
	run.Verdict = &verdict
	run.Remediation = report.Remediation(verdict)

	if err := report.PrintStates(r.out, run.Screenshots); err != nil {
		slog.Warn("failed to print captured states", "error", err)
	}
	if err := report.Print(r.out, rec, verdict); err != nil {
		slog.Warn("failed to print report", "error", err)
	}
	return nil
}

func toDetail(err error) *models.ErrorDetail {
	var ae *models.AuditError
	if errors.As(err, &ae) {
		return &models.ErrorDetail{Code: ae.Code, Message: ae.Error()}
	}
	return &models.ErrorDetail{Code: models.ErrCodeInspection, Message: err.Error()}
}
