package audit

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/use-agent/vibcheck/models"
)

// LockFile is created in the output directory while a run owns it.
const LockFile = ".vibcheck.lock"

// LockOutputDir takes an exclusive lock on dir so two runs cannot write
// screenshots over each other. The returned func releases it.
func LockOutputDir(dir string) (func(), error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("audit: create output dir: %w", err)
	}

	fl := flock.New(filepath.Join(dir, LockFile))
	locked, err := fl.TryLock()
	if err != nil {
		return nil, models.NewAuditError(models.ErrCodeLocked, "failed to lock output dir", err)
	}
	if !locked {
		return nil, models.NewAuditError(
			models.ErrCodeLocked,
			fmt.Sprintf("output dir %s is in use by another run", dir),
			nil,
		)
	}

	return func() {
		if err := fl.Unlock(); err != nil {
			slog.Warn("failed to release output dir lock", "error", err)
		}
	}, nil
}
