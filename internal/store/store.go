// Package store is the durable Store (C1): plan records and their
// dependency edges, SQLite-backed with additive schema migration.
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/avery-ling/task-tracker/internal/core"
)

//go:embed migrations/001_initial_schema.sql
var migrationV1 string

// columnDefaults enumerates every plans column this version of the Store
// knows about and its nullable default, for the additive-migration pass:
// on open, any column present here but missing from the table is added
// with ALTER TABLE ... ADD COLUMN. Columns are never removed or renamed
// online.
var columnDefaults = []struct {
	name    string
	ddlType string
}{
	{"plan_path", "TEXT NOT NULL DEFAULT ''"},
	{"title", "TEXT NOT NULL DEFAULT ''"},
	{"description", "TEXT NOT NULL DEFAULT ''"},
	{"display_name", "TEXT NOT NULL DEFAULT ''"},
	{"status", "TEXT NOT NULL DEFAULT 'open'"},
	{"branch", "TEXT NOT NULL DEFAULT ''"},
	{"session_id", "TEXT NOT NULL DEFAULT ''"},
	{"planning_session_id", "TEXT NOT NULL DEFAULT ''"},
	{"worktree_path", "TEXT NOT NULL DEFAULT ''"},
	{"depends_on_id", "INTEGER"},
}

// Store is a SQLite-backed implementation of the plan repository. It holds
// two connections, a single-writer connection and a read-only pool, so
// concurrent CLI invocations never block each other on reads.
type Store struct {
	dbPath string
	db     *sql.DB // write connection
	readDB *sql.DB // read-only connection pool

	maxRetries    int
	baseRetryWait time.Duration

	mu sync.Mutex
}

// Option configures a Store.
type Option func(*Store)

// WithMaxRetries overrides the SQLITE_BUSY retry budget.
func WithMaxRetries(n int) Option {
	return func(s *Store) { s.maxRetries = n }
}

// Open creates or opens the plans database at dbPath, applies pending
// migrations, and returns a ready Store.
func Open(dbPath string, opts ...Option) (*Store, error) {
	s := &Store{
		dbPath:        dbPath,
		maxRetries:    5,
		baseRetryWait: 100 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
		return nil, core.ErrIO("create data directory", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, core.ErrIO("open write connection", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	s.db = db

	readDB, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&mode=ro&_pragma=busy_timeout(1000)")
	if err != nil {
		_ = db.Close()
		return nil, core.ErrIO("open read connection", err)
	}
	readDB.SetMaxOpenConns(10)
	readDB.SetMaxIdleConns(5)
	readDB.SetConnMaxLifetime(5 * time.Minute)
	s.readDB = readDB

	if err := s.migrate(); err != nil {
		_ = db.Close()
		_ = readDB.Close()
		return nil, err
	}

	return s, nil
}

// Close closes both connections.
func (s *Store) Close() error {
	var errs []error
	if s.readDB != nil {
		if err := s.readDB.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}

func (s *Store) migrate() error {
	var version int
	err := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&version)
	if err != nil {
		version = 0
	}

	if version < 1 {
		if _, err := s.db.Exec(migrationV1); err != nil {
			return core.ErrIO("apply migration v1", err)
		}
	}

	return s.addMissingColumns()
}

// addMissingColumns introspects the plans table via PRAGMA table_info and
// adds any column listed in columnDefaults that isn't present yet.
func (s *Store) addMissingColumns() error {
	rows, err := s.db.Query("PRAGMA table_info(plans)")
	if err != nil {
		return core.ErrIO("introspect plans table", err)
	}
	existing := map[string]bool{}
	for rows.Next() {
		var cid int
		var name, colType string
		var notNull, pk int
		var dflt sql.NullString
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dflt, &pk); err != nil {
			rows.Close()
			return core.ErrIO("scan table_info", err)
		}
		existing[name] = true
	}
	rows.Close()

	for _, col := range columnDefaults {
		if existing[col.name] {
			continue
		}
		ddl := fmt.Sprintf("ALTER TABLE plans ADD COLUMN %s %s", col.name, col.ddlType)
		if _, err := s.db.Exec(ddl); err != nil && !strings.Contains(err.Error(), "duplicate column") {
			return core.ErrIO(fmt.Sprintf("add column %s", col.name), err)
		}
	}
	return nil
}

// isSQLiteBusy reports whether err is a SQLITE_BUSY/locked condition that
// is worth retrying.
func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "SQLITE_BUSY") ||
		strings.Contains(msg, "SQLITE_LOCKED")
}

// retryWrite executes fn with exponential backoff on SQLITE_BUSY. Domain
// errors that fn already produced (not-found, state guards) pass through
// unwrapped; only raw driver errors get wrapped as IOError.
func (s *Store) retryWrite(ctx context.Context, op string, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if err := fn(); err != nil {
			var domErr *core.DomainError
			if errors.As(err, &domErr) {
				return err
			}
			if isSQLiteBusy(err) {
				lastErr = err
				if attempt < s.maxRetries {
					wait := s.baseRetryWait * time.Duration(1<<attempt)
					select {
					case <-ctx.Done():
						return core.ErrIO(op, ctx.Err())
					case <-time.After(wait):
						continue
					}
				}
			}
			return core.ErrIO(op, err)
		}
		return nil
	}
	return core.ErrIO(op, lastErr)
}
