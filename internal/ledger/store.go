// Package ledger persists file identities and their operation history.
//
// An identity is assigned the first time a file is observed and follows the
// file through every rename and quarantine move. The SQLite database is the
// authoritative store; a JSON machine log mirroring it is exported after
// every run so future runs (and other tools) can rebuild identity state if
// the database is ever lost.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"dekereke/internal/services"
)

// Operation kind names as written to history and to the machine log. The
// quarantine kind keeps its legacy wire name so existing logs stay readable.
const (
	OpRename = "rename"
	OpMove   = "move_to_orphans"
)

// Entry is one step in an identity's history chain.
type Entry struct {
	Timestamp time.Time
	Operation string
	OldPath   string
	NewPath   string
	Reason    string
	Reference string
	Field     string
}

// Identity is a stable handle for one physical file.
type Identity struct {
	ID          string
	CurrentPath string
	CreatedAt   time.Time
}

// Store is the SQLite-backed identity ledger.
type Store struct {
	db   *sql.DB
	path string
}

// Open connects to the ledger database, creating and migrating it as needed.
// When the database file does not exist but a previously exported machine
// log does, the log seeds the fresh database so identity continuity survives
// the loss of the database file.
func Open(dbPath, machineLogPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("ensure ledger directory: %w", err)
	}

	_, statErr := os.Stat(dbPath)
	fresh := errors.Is(statErr, os.ErrNotExist)

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	if fresh && machineLogPath != "" {
		if _, err := os.Stat(machineLogPath); err == nil {
			if err := store.importMachineLog(context.Background(), machineLogPath); err != nil {
				_ = db.Close()
				return nil, fmt.Errorf("seed ledger from machine log: %w", err)
			}
		}
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Identify returns the identity currently at path, creating one on first
// sight. Identity is assigned by discovery, never derived from the name.
func (s *Store) Identify(ctx context.Context, path string) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx, "SELECT id FROM identities WHERE current_path = ?", path).Scan(&id)
	switch {
	case err == nil:
		return id, nil
	case !errors.Is(err, sql.ErrNoRows):
		return "", fmt.Errorf("look up identity for %s: %w", path, err)
	}

	id = uuid.NewString()
	now := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := s.db.ExecContext(ctx,
		"INSERT INTO identities (id, current_path, created_at) VALUES (?, ?, ?)",
		id, path, now,
	); err != nil {
		return "", fmt.Errorf("create identity for %s: %w", path, err)
	}
	return id, nil
}

// Record appends an entry to the identity's history chain and moves its
// current path to the entry's new path.
func (s *Store) Record(ctx context.Context, identityID string, entry Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin history tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	ts := entry.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO history (identity_id, timestamp, operation, old_path, new_path, reason, record_reference, field_name)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		identityID, ts.UTC().Format(time.RFC3339Nano), entry.Operation,
		entry.OldPath, entry.NewPath, entry.Reason, entry.Reference, entry.Field,
	); err != nil {
		return fmt.Errorf("insert history entry: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE identities SET current_path = ? WHERE id = ?",
		entry.NewPath, identityID,
	); err != nil {
		return fmt.Errorf("update identity path: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit history entry: %w", err)
	}
	return nil
}

// History returns the identity's chain in chronological order.
func (s *Store) History(ctx context.Context, identityID string) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT timestamp, operation, old_path, new_path, reason, record_reference, field_name
         FROM history WHERE identity_id = ? ORDER BY id`,
		identityID,
	)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// HistoryByPath resolves the identity currently at path and returns its
// chain. Returns services.ErrNotFound when no identity lives there.
func (s *Store) HistoryByPath(ctx context.Context, path string) (Identity, []Entry, error) {
	ident, err := s.identityByPath(ctx, path)
	if err != nil {
		return Identity{}, nil, err
	}
	entries, err := s.History(ctx, ident.ID)
	if err != nil {
		return Identity{}, nil, err
	}
	return ident, entries, nil
}

func (s *Store) identityByPath(ctx context.Context, path string) (Identity, error) {
	var ident Identity
	var created string
	err := s.db.QueryRowContext(ctx,
		"SELECT id, current_path, created_at FROM identities WHERE current_path = ?", path,
	).Scan(&ident.ID, &ident.CurrentPath, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return Identity{}, services.Wrap(services.ErrNotFound, "ledger", "lookup",
			"no identity at "+path, nil)
	}
	if err != nil {
		return Identity{}, fmt.Errorf("look up identity: %w", err)
	}
	ident.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	return ident, nil
}

// Identities returns every identity sorted by current path.
func (s *Store) Identities(ctx context.Context) ([]Identity, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, current_path, created_at FROM identities")
	if err != nil {
		return nil, fmt.Errorf("query identities: %w", err)
	}
	defer rows.Close()

	var idents []Identity
	for rows.Next() {
		var ident Identity
		var created string
		if err := rows.Scan(&ident.ID, &ident.CurrentPath, &created); err != nil {
			return nil, fmt.Errorf("scan identity: %w", err)
		}
		ident.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		idents = append(idents, ident)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sort.Slice(idents, func(i, j int) bool { return idents[i].CurrentPath < idents[j].CurrentPath })
	return idents, nil
}

type entryScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row entryScanner) (Entry, error) {
	var entry Entry
	var ts string
	if err := row.Scan(&ts, &entry.Operation, &entry.OldPath, &entry.NewPath,
		&entry.Reason, &entry.Reference, &entry.Field); err != nil {
		return Entry{}, fmt.Errorf("scan history entry: %w", err)
	}
	entry.Timestamp, _ = time.Parse(time.RFC3339Nano, ts)
	return entry, nil
}
