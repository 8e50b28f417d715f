package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// machineLog is the on-disk shape of the machine-readable log. The layout is
// stable across versions: future runs parse it to rebuild identity state, so
// field names never change.
type machineLog struct {
	Files map[string]machineFile `json:"files"`
}

type machineFile struct {
	CurrentPath string         `json:"current_path"`
	History     []machineEntry `json:"history"`
}

type machineEntry struct {
	Timestamp string `json:"timestamp"`
	Operation string `json:"operation"`
	OldPath   string `json:"old_path"`
	NewPath   string `json:"new_path"`
	Reason    string `json:"reason,omitempty"`
	Reference string `json:"record_reference,omitempty"`
	Field     string `json:"field_name,omitempty"`
}

// ExportMachineLog writes the full ledger to path as JSON. The write goes
// through a temp file and rename so a crash never leaves a half-written log.
func (s *Store) ExportMachineLog(ctx context.Context, path string) error {
	idents, err := s.Identities(ctx)
	if err != nil {
		return err
	}

	log := machineLog{Files: map[string]machineFile{}}
	for _, ident := range idents {
		entries, err := s.History(ctx, ident.ID)
		if err != nil {
			return err
		}
		file := machineFile{CurrentPath: ident.CurrentPath, History: []machineEntry{}}
		for _, entry := range entries {
			file.History = append(file.History, machineEntry{
				Timestamp: entry.Timestamp.Format(time.RFC3339Nano),
				Operation: entry.Operation,
				OldPath:   entry.OldPath,
				NewPath:   entry.NewPath,
				Reason:    entry.Reason,
				Reference: entry.Reference,
				Field:     entry.Field,
			})
		}
		log.Files[ident.ID] = file
	}

	data, err := json.MarshalIndent(log, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal machine log: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write machine log: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace machine log: %w", err)
	}
	return nil
}

// importMachineLog loads a previously exported log into an empty database.
func (s *Store) importMachineLog(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read machine log: %w", err)
	}
	var log machineLog
	if err := json.Unmarshal(data, &log); err != nil {
		return fmt.Errorf("parse machine log %s: %w", filepath.Base(path), err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin import tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	for id, file := range log.Files {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO identities (id, current_path, created_at) VALUES (?, ?, ?)",
			id, file.CurrentPath, now,
		); err != nil {
			return fmt.Errorf("import identity %s: %w", id, err)
		}
		for _, entry := range file.History {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO history (identity_id, timestamp, operation, old_path, new_path, reason, record_reference, field_name)
                 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				id, entry.Timestamp, entry.Operation, entry.OldPath, entry.NewPath,
				entry.Reason, entry.Reference, entry.Field,
			); err != nil {
				return fmt.Errorf("import history for %s: %w", id, err)
			}
		}
	}
	return tx.Commit()
}
