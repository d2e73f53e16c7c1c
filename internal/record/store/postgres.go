package store

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/lib/pq"
)

const (
	pgUniqueViolation = pq.ErrorCode("23505")

	pgPrimaryKeyConstraint = "users_pkey"
	pgEmailConstraint      = "users_email_key"
)

var postgresSchema = []string{`
	CREATE TABLE IF NOT EXISTS users (
		id         BIGINT      NOT NULL,
		name       TEXT        NOT NULL,
		email      TEXT        NOT NULL,
		age        INTEGER     NOT NULL,
		gender     TEXT        NOT NULL,
		address    TEXT        NOT NULL,
		mobile_no  TEXT        NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		CONSTRAINT ` + pgPrimaryKeyConstraint + ` PRIMARY KEY (id),
		CONSTRAINT ` + pgEmailConstraint + ` UNIQUE (email)
	)`,
}

// PostgresStore persists records in PostgreSQL.
type PostgresStore struct {
	*sqlStore
}

// NewPostgres ensures the users table exists and returns a store over db.
func NewPostgres(ctx context.Context, db *sql.DB) (*PostgresStore, error) {
	s, err := newSQLStore(ctx, db, dialect{
		name:   "postgres",
		schema: postgresSchema,
		bind: func(n int) string {
			return "$" + strconv.Itoa(n)
		},
		timeArg: func(t time.Time) any {
			return t
		},
		classify: classifyPostgres,
	})
	if err != nil {
		return nil, err
	}
	return &PostgresStore{sqlStore: s}, nil
}

func classifyPostgres(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != pgUniqueViolation {
		return nil
	}
	switch pqErr.Constraint {
	case pgPrimaryKeyConstraint:
		return ErrDuplicateIdentifier
	case pgEmailConstraint:
		return ErrDuplicateEmail
	default:
		return nil
	}
}

// TruncateForTests removes every record. Integration suites call it between tests.
func (s *PostgresStore) TruncateForTests(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `TRUNCATE TABLE users`)
	return err
}
