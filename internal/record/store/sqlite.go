package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var sqliteSchema = []string{`
	CREATE TABLE IF NOT EXISTS users (
		id         INTEGER PRIMARY KEY,
		name       TEXT    NOT NULL,
		email      TEXT    NOT NULL UNIQUE,
		age        INTEGER NOT NULL,
		gender     TEXT    NOT NULL,
		address    TEXT    NOT NULL,
		mobile_no  TEXT    NOT NULL,
		created_at TEXT    NOT NULL,
		updated_at TEXT    NOT NULL
	)`,
}

// SQLiteStore persists records in a SQLite database file.
type SQLiteStore struct {
	*sqlStore
}

// OpenSQLite opens path (":memory:" for an ephemeral database) and ensures the
// users table exists.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// SQLite serializes writers; a single connection also keeps ":memory:"
	// databases from splitting per connection.
	db.SetMaxOpenConns(1)

	s, err := NewSQLite(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQLite wraps an already opened SQLite handle.
func NewSQLite(ctx context.Context, db *sql.DB) (*SQLiteStore, error) {
	s, err := newSQLStore(ctx, db, dialect{
		name:   "sqlite",
		schema: sqliteSchema,
		bind: func(int) string {
			return "?"
		},
		timeArg: func(t time.Time) any {
			return t.UTC().Format(time.RFC3339Nano)
		},
		classify: classifySQLite,
	})
	if err != nil {
		return nil, err
	}
	return &SQLiteStore{sqlStore: s}, nil
}

func classifySQLite(err error) error {
	var sqlErr *sqlite.Error
	if !errors.As(err, &sqlErr) {
		return nil
	}
	switch sqlErr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return ErrDuplicateIdentifier
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE:
		return ErrDuplicateEmail
	}
	// Primary result code only: fall back to the constraint text.
	if sqlErr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT {
		msg := sqlErr.Error()
		switch {
		case strings.Contains(msg, "users.id"):
			return ErrDuplicateIdentifier
		case strings.Contains(msg, "users.email"):
			return ErrDuplicateEmail
		}
	}
	return nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
