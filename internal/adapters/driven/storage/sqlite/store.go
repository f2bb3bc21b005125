package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/custodia-labs/procdesk/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/procdesk/internal/core/domain"
	"github.com/custodia-labs/procdesk/internal/core/ports/driven"
)

// DefaultFileName is used when the ledger path names a directory.
const DefaultFileName = "ledger.db"

var _ driven.UsageLedger = (*Store)(nil)

// Store keeps the usage ledger in a SQLite database.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens or creates the database at dbPath and applies pending
// migrations. An empty dbPath means ~/.procdesk/data/ledger.db.
func NewStore(dbPath string) (*Store, error) {
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dbPath = filepath.Join(home, ".procdesk", "data", DefaultFileName)
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, path: dbPath}
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Ledger returns the store as a driven.UsageLedger.
func (s *Store) Ledger() driven.UsageLedger {
	return s
}

// migrate applies every NNN_name.up.sql newer than the recorded version,
// each in its own transaction together with its version row.
func (s *Store) migrate(fsys fs.FS) error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var current int
	if err := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&current); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	names, err := fs.Glob(fsys, "*.up.sql")
	if err != nil {
		return fmt.Errorf("listing migrations: %w", err)
	}
	sort.Strings(names)

	for _, name := range names {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil || version <= current {
			continue
		}
		body, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if err := s.apply(version, string(body)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}
	return nil
}

func (s *Store) apply(version int, body string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	if strings.TrimSpace(body) != "" {
		if _, err := tx.Exec(body); err != nil {
			return err
		}
	}
	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
		return err
	}
	return tx.Commit()
}

// Append adds a row after every existing row. Order is kept by the
// autoincrement seq column, not by timestamp.
func (s *Store) Append(ctx context.Context, rec domain.LedgerRecord) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO usage_ledger
		(invocation_id, recorded_at, user_name, process, filename, outcome)
		VALUES (?, ?, ?, ?, ?, ?)`,
		rec.InvocationID, rec.Timestamp.UTC(), rec.User, rec.Process, rec.Filename, rec.Outcome)
	if err != nil {
		return fmt.Errorf("appending ledger record: %w", err)
	}
	return nil
}

// ReadAll returns every record in append order, timestamps in local time.
func (s *Store) ReadAll(ctx context.Context) ([]domain.LedgerRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT invocation_id, recorded_at, user_name, process, filename, outcome
		FROM usage_ledger ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("querying ledger: %w", err)
	}
	defer rows.Close()

	records := []domain.LedgerRecord{}
	for rows.Next() {
		var (
			rec domain.LedgerRecord
			at  time.Time
		)
		if err := rows.Scan(&rec.InvocationID, &at, &rec.User, &rec.Process, &rec.Filename, &rec.Outcome); err != nil {
			return nil, fmt.Errorf("scanning ledger record: %w", err)
		}
		rec.Timestamp = at.Local()
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating ledger: %w", err)
	}
	return records, nil
}

// Clear deletes every record. The schema and its version are kept.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM usage_ledger"); err != nil {
		return fmt.Errorf("clearing ledger: %w", err)
	}
	return nil
}
