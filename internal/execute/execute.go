// Package execute applies an approved operation queue to the audio folder.
//
// Execution runs in four fixed phases: ensure the quarantine directory,
// quarantine moves, renames, then log writes. A single failed file operation
// is recorded and execution continues; only a failure to create the
// quarantine directory aborts the run, before any file has moved.
package execute

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"dekereke/internal/config"
	"dekereke/internal/fileutil"
	"dekereke/internal/ledger"
	"dekereke/internal/logging"
	"dekereke/internal/plan"
	"dekereke/internal/reconcile"
	"dekereke/internal/services"
)

// Log file names within the audio folder. The names are part of the folder's
// contract with other tools and never change.
const (
	MarkdownLogName   = "soundfile_changes.md"
	MachineLogName    = "soundfile_changes.json"
	UnresolvedLogName = "unrecorded_fields.md"

	lockFileName = ".dekereke.lock"
)

// Failure records one file operation that did not complete.
type Failure struct {
	Operation plan.Operation
	Err       string
}

// Skip records an operation that was deliberately not performed and why.
type Skip struct {
	Operation plan.Operation
	Reason    string
}

// Report is the per-run outcome: what executed, what failed, what was
// skipped, and what never ran because the run was cancelled.
type Report struct {
	RunAt     time.Time
	Completed []plan.Operation
	Failed    []Failure
	Skipped   []Skip
	Remaining []plan.Operation // not attempted, run cancelled first
	Cancelled bool
}

// Executor applies operation queues. It is strictly sequential and holds an
// exclusive lock on the audio folder for the duration of each run.
type Executor struct {
	cfg    *config.Config
	store  *ledger.Store
	logger *slog.Logger
}

// New builds an executor. The ledger store stays open across runs and is
// owned by the caller.
func New(cfg *config.Config, store *ledger.Store, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Executor{cfg: cfg, store: store, logger: logging.NewComponentLogger(logger, "execute")}
}

// Run executes the queue. The returned error is non-nil only for fatal
// conditions: another instance holds the folder lock, or the quarantine
// directory could not be created. All other failures land in the report.
func (e *Executor) Run(ctx context.Context, p plan.Plan, unresolved []reconcile.UnresolvedRecord) (Report, error) {
	report := Report{RunAt: time.Now()}

	lock := flock.New(filepath.Join(e.cfg.Paths.AudioDir, lockFileName))
	ok, err := lock.TryLock()
	if err != nil {
		return report, services.Wrap(services.ErrPrecondition, "execute", "lock",
			"acquire folder lock", err)
	}
	if !ok {
		return report, services.Wrap(services.ErrPrecondition, "execute", "lock",
			"another instance is already working on this folder", nil)
	}
	defer func() {
		_ = lock.Unlock()
	}()

	var moves, renames, excludes []plan.Operation
	for _, op := range p.Operations {
		switch op.Kind {
		case plan.MoveToQuarantine:
			moves = append(moves, op)
		case plan.Rename:
			renames = append(renames, op)
		case plan.Exclude:
			excludes = append(excludes, op)
		}
	}

	quarantineDir := e.cfg.QuarantineDir()
	if len(moves) > 0 {
		if err := os.MkdirAll(quarantineDir, 0o755); err != nil {
			return report, services.Wrap(services.ErrPrecondition, "execute", "quarantine",
				"create quarantine directory "+quarantineDir, err)
		}
	}

	e.runMoves(ctx, moves, quarantineDir, &report)
	e.runRenames(ctx, renames, &report)

	// Excludes mutate no files; they executed the moment the plan was
	// accepted. Recorded here so the report accounts for every operation.
	if !report.Cancelled {
		report.Completed = append(report.Completed, excludes...)
	} else {
		report.Remaining = append(report.Remaining, excludes...)
	}

	e.writeLogs(ctx, &report, unresolved, quarantineDir)

	e.logger.Info("run finished",
		logging.Int("completed", len(report.Completed)),
		logging.Int("failed", len(report.Failed)),
		logging.Int("skipped", len(report.Skipped)),
		logging.Bool("cancelled", report.Cancelled),
	)
	return report, nil
}

func (e *Executor) runMoves(ctx context.Context, moves []plan.Operation, quarantineDir string, report *Report) {
	for i, op := range moves {
		if ctx.Err() != nil {
			report.Cancelled = true
			report.Remaining = append(report.Remaining, moves[i:]...)
			return
		}
		oldPath := filepath.Join(e.cfg.Paths.AudioDir, op.From)
		newPath := filepath.Join(quarantineDir, op.From)
		if _, err := os.Stat(newPath); err == nil {
			e.fail(report, op, fmt.Sprintf("file already exists in quarantine: %s", op.From))
			continue
		}
		if err := fileutil.MoveFile(oldPath, newPath); err != nil {
			e.fail(report, op, err.Error())
			continue
		}
		e.record(ctx, report, op, ledger.OpMove, oldPath, newPath, defaultReason(op.Reason, "no matching record found"))
	}
}

func (e *Executor) runRenames(ctx context.Context, renames []plan.Operation, report *Report) {
	for i, op := range renames {
		if report.Cancelled || ctx.Err() != nil {
			report.Cancelled = true
			report.Remaining = append(report.Remaining, renames[i:]...)
			return
		}
		oldPath := filepath.Join(e.cfg.Paths.AudioDir, op.From)
		newPath := filepath.Join(e.cfg.Paths.AudioDir, op.To)
		if _, err := os.Stat(oldPath); os.IsNotExist(err) {
			report.Skipped = append(report.Skipped, Skip{
				Operation: op,
				Reason:    "source was moved to quarantine in the previous phase",
			})
			continue
		}
		if _, err := os.Stat(newPath); err == nil {
			e.fail(report, op, fmt.Sprintf("target file already exists: %s", op.To))
			continue
		}
		if err := os.Rename(oldPath, newPath); err != nil {
			e.fail(report, op, err.Error())
			continue
		}
		e.record(ctx, report, op, ledger.OpRename, oldPath, newPath, defaultReason(op.Reason, "linked to record"))
	}
}

// record updates the identity ledger for a completed operation. A ledger
// write failure does not undo the file operation; it is reported alongside
// file-system failures so nothing disappears silently.
func (e *Executor) record(ctx context.Context, report *Report, op plan.Operation, kind, oldPath, newPath, reason string) {
	id, err := e.store.Identify(ctx, oldPath)
	if err != nil {
		e.fail(report, op, "ledger: "+err.Error())
		return
	}
	entry := ledger.Entry{
		Operation: kind,
		OldPath:   oldPath,
		NewPath:   newPath,
		Reason:    reason,
		Reference: op.Reference,
		Field:     op.Field,
	}
	if err := e.store.Record(ctx, id, entry); err != nil {
		e.fail(report, op, "ledger: "+err.Error())
		return
	}
	report.Completed = append(report.Completed, op)
	e.logger.Info("applied operation",
		logging.String("kind", string(op.Kind)),
		logging.String("from", op.From),
		logging.String("to", op.To),
	)
}

func (e *Executor) fail(report *Report, op plan.Operation, msg string) {
	report.Failed = append(report.Failed, Failure{Operation: op, Err: msg})
	e.logger.Warn("operation failed",
		logging.String("kind", string(op.Kind)),
		logging.String("from", op.From),
		logging.String("error", msg),
	)
}

func defaultReason(reason, fallback string) string {
	if reason == "" {
		return fallback
	}
	return reason
}
