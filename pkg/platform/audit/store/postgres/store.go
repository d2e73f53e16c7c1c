package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	audit "roster/pkg/platform/audit"
)

const schema = `
CREATE TABLE IF NOT EXISTS audit_events (
	id         UUID PRIMARY KEY,
	category   TEXT NOT NULL,
	timestamp  TIMESTAMPTZ NOT NULL,
	user_id    BIGINT,
	action     TEXT NOT NULL,
	email      TEXT NOT NULL DEFAULT '',
	request_id TEXT NOT NULL DEFAULT '',
	reason     TEXT NOT NULL DEFAULT ''
)`

const indexSchema = `CREATE INDEX IF NOT EXISTS audit_events_user_id_idx ON audit_events (user_id, timestamp)`

// Store implements audit.Store on PostgreSQL. It shares the
// database with the record store when STORE_DRIVER is postgres.
type Store struct {
	db *sql.DB
}

// New creates the audit_events table if needed.
func New(ctx context.Context, db *sql.DB) (*Store, error) {
	for _, stmt := range []string{schema, indexSchema} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return nil, fmt.Errorf("create audit schema: %w", err)
		}
	}
	return &Store{db: db}, nil
}

// Append inserts event. Re-delivering an event with the same ID is a no-op.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Category == "" {
		event.Category = audit.AuditEvent(event.Action).Category()
	}

	var userID sql.NullInt64
	if event.UserID != 0 {
		userID = sql.NullInt64{Int64: event.UserID, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_events (id, category, timestamp, user_id, action, email, request_id, reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING`,
		event.ID,
		string(event.Category),
		event.Timestamp,
		userID,
		event.Action,
		event.Email,
		event.RequestID,
		event.Reason,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// ListByUser returns events for a record identifier, oldest first.
func (s *Store) ListByUser(ctx context.Context, userID int64) ([]audit.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, category, timestamp, user_id, action, email, request_id, reason
		FROM audit_events
		WHERE user_id = $1
		ORDER BY timestamp ASC, id ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var (
			event    audit.Event
			category string
			uid      sql.NullInt64
		)
		if err := rows.Scan(&event.ID, &category, &event.Timestamp, &uid,
			&event.Action, &event.Email, &event.RequestID, &event.Reason); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		event.Category = audit.EventCategory(category)
		event.UserID = uid.Int64
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}
