package execute

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"dekereke/internal/fileutil"
	"dekereke/internal/logging"
	"dekereke/internal/plan"
	"dekereke/internal/reconcile"
)

// writeLogs is the final phase. Log failures never fail the run: files have
// already moved, so the report stands regardless, but every write error is
// surfaced through the logger.
func (e *Executor) writeLogs(ctx context.Context, report *Report, unresolved []reconcile.UnresolvedRecord, quarantineDir string) {
	audioDir := e.cfg.Paths.AudioDir

	if err := e.appendMarkdownLog(filepath.Join(audioDir, MarkdownLogName), report); err != nil {
		e.logger.Warn("write markdown log", logging.Error(err))
	}

	machinePath := filepath.Join(audioDir, MachineLogName)
	if err := e.store.ExportMachineLog(ctx, machinePath); err != nil {
		e.logger.Warn("export machine log", logging.Error(err))
	} else if _, err := os.Stat(quarantineDir); err == nil {
		// Quarantined files keep a copy of their provenance next to them.
		if err := fileutil.CopyFile(machinePath, filepath.Join(quarantineDir, MachineLogName)); err != nil {
			e.logger.Warn("copy machine log to quarantine", logging.Error(err))
		}
	}

	if err := writeUnresolvedReport(filepath.Join(audioDir, UnresolvedLogName), report.RunAt, unresolved); err != nil {
		e.logger.Warn("write unresolved report", logging.Error(err))
	}
}

// appendMarkdownLog adds one dated section to the human-readable change log.
func (e *Executor) appendMarkdownLog(path string, report *Report) error {
	var b strings.Builder
	fmt.Fprintf(&b, "\n## %s\n\n", report.RunAt.Format("2006-01-02 15:04:05"))

	var renames, moves []plan.Operation
	for _, op := range report.Completed {
		switch op.Kind {
		case plan.Rename:
			renames = append(renames, op)
		case plan.MoveToQuarantine:
			moves = append(moves, op)
		}
	}

	if len(renames) > 0 {
		b.WriteString("### Renamed Files\n")
		for _, op := range renames {
			fmt.Fprintf(&b, "- `%s` → `%s`\n", op.From, op.To)
			fmt.Fprintf(&b, "  - Linked to Record %s, field %s\n", orNA(op.Reference), orNA(op.Field))
			fmt.Fprintf(&b, "  - Reason: %s\n", defaultReason(op.Reason, "linked to record"))
		}
		b.WriteString("\n")
	}

	if len(moves) > 0 {
		quarantineName := filepath.Base(e.cfg.QuarantineDir())
		b.WriteString("### Quarantined Files\n")
		for _, op := range moves {
			fmt.Fprintf(&b, "- `%s` → `%s/%s`\n", op.From, quarantineName, op.From)
			fmt.Fprintf(&b, "  - Reason: %s\n", defaultReason(op.Reason, "no matching record found"))
		}
		b.WriteString("\n")
	}

	if len(report.Failed) > 0 {
		b.WriteString("### Failed Operations\n")
		for _, f := range report.Failed {
			fmt.Fprintf(&b, "- `%s`: %s\n", f.Operation.From, f.Err)
		}
		b.WriteString("\n")
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.WriteString(b.String()); err != nil {
		return err
	}
	return f.Close()
}

// writeUnresolvedReport rewrites the to-do list of expected recordings that
// still have no file. The report is a full snapshot, not an append log.
func writeUnresolvedReport(path string, runAt time.Time, unresolved []reconcile.UnresolvedRecord) error {
	if len(unresolved) == 0 {
		// Nothing outstanding; drop any stale report.
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return err
		}
		return nil
	}

	groups := append([]reconcile.UnresolvedRecord{}, unresolved...)
	sort.Slice(groups, func(i, j int) bool { return groups[i].Reference < groups[j].Reference })

	var b strings.Builder
	b.WriteString("# Unrecorded Fields To-Do List\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", runAt.Format("2006-01-02 15:04:05"))
	for _, group := range groups {
		fmt.Fprintf(&b, "## Record %s", group.Reference)
		if group.Content != "" {
			fmt.Fprintf(&b, " - %q", group.Content)
		}
		b.WriteString("\n")
		for _, field := range group.Fields {
			fmt.Fprintf(&b, "- [ ] %s\n", field)
		}
		b.WriteString("\n")
	}
	return os.WriteFile(path, []byte(b.String()), 0o644)
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
