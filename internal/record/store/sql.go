package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"roster/internal/record/models"
	"roster/pkg/requestcontext"
)

const recordColumns = "id, name, email, age, gender, address, mobile_no, created_at, updated_at"

// dialect captures what differs between the SQL backends: placeholder syntax,
// how timestamps are bound, and how a driver error maps onto a sentinel.
type dialect struct {
	name     string
	schema   []string
	bind     func(n int) string
	timeArg  func(t time.Time) any
	classify func(err error) error
}

// sqlStore implements the record store contract over database/sql.
type sqlStore struct {
	db      *sql.DB
	dialect dialect
}

func newSQLStore(ctx context.Context, db *sql.DB, d dialect) (*sqlStore, error) {
	s := &sqlStore{db: db, dialect: d}
	for _, stmt := range d.schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return nil, fmt.Errorf("%s: ensure schema: %w", d.name, err)
		}
	}
	return s, nil
}

// q rewrites "?" placeholders into the dialect's syntax.
func (s *sqlStore) q(query string) string {
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString(s.dialect.bind(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *sqlStore) FindByEmail(ctx context.Context, email string) (*models.Record, error) {
	row := s.db.QueryRowContext(ctx, s.q(`SELECT `+recordColumns+` FROM users WHERE email = ?`), email)
	r, err := scanRecord(row)
	if err != nil {
		return nil, s.wrap("find by email", err)
	}
	return r, nil
}

func (s *sqlStore) FindMaxIdentifier(ctx context.Context) (*models.Record, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM users ORDER BY id DESC LIMIT 1`)
	r, err := scanRecord(row)
	if err != nil {
		return nil, s.wrap("find max identifier", err)
	}
	return r, nil
}

func (s *sqlStore) FindByID(ctx context.Context, id int64) (*models.Record, error) {
	row := s.db.QueryRowContext(ctx, s.q(`SELECT `+recordColumns+` FROM users WHERE id = ?`), id)
	r, err := scanRecord(row)
	if err != nil {
		return nil, s.wrap("find by id", err)
	}
	return r, nil
}

// Insert relies on the primary key and the unique email constraint; the
// driver error is classified into ErrDuplicateIdentifier or ErrDuplicateEmail.
func (s *sqlStore) Insert(ctx context.Context, record *models.Record) error {
	now := requestcontext.Now(ctx).UTC()
	_, err := s.db.ExecContext(ctx, s.q(`
		INSERT INTO users (`+recordColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		record.ID,
		record.Name,
		record.Email,
		record.Age,
		record.Gender,
		record.Address,
		record.MobileNo,
		s.dialect.timeArg(now),
		s.dialect.timeArg(now),
	)
	if err != nil {
		return s.wrap("insert record", err)
	}
	record.CreatedAt = now
	record.UpdatedAt = now
	return nil
}

func (s *sqlStore) UpdateByID(ctx context.Context, id int64, fields models.UpdateFields) (*models.Record, error) {
	now := requestcontext.Now(ctx).UTC()
	row := s.db.QueryRowContext(ctx, s.q(`
		UPDATE users
		SET name = ?, age = ?, gender = ?, address = ?, mobile_no = ?, updated_at = ?
		WHERE id = ?
		RETURNING `+recordColumns),
		fields.Name,
		fields.Age,
		fields.Gender,
		fields.Address,
		fields.MobileNo,
		s.dialect.timeArg(now),
		id,
	)
	r, err := scanRecord(row)
	if err != nil {
		return nil, s.wrap("update record", err)
	}
	return r, nil
}

func (s *sqlStore) DeleteByID(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, s.q(`DELETE FROM users WHERE id = ?`), id)
	if err != nil {
		return false, s.wrap("delete record", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete record: rows affected: %w", err)
	}
	return n > 0, nil
}

func (s *sqlStore) List(ctx context.Context) ([]*models.Record, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+recordColumns+` FROM users ORDER BY id ASC`)
	if err != nil {
		return nil, s.wrap("list records", err)
	}
	defer rows.Close()

	var out []*models.Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("list records: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	return out, nil
}

func (s *sqlStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *sqlStore) wrap(op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if classified := s.dialect.classify(err); classified != nil {
		return classified
	}
	return fmt.Errorf("%s: %w", op, err)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*models.Record, error) {
	var r models.Record
	err := row.Scan(
		&r.ID,
		&r.Name,
		&r.Email,
		&r.Age,
		&r.Gender,
		&r.Address,
		&r.MobileNo,
		timestamp{&r.CreatedAt},
		timestamp{&r.UpdatedAt},
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// timestamp scans the driver representations of a time column: native
// time.Time (Postgres) or RFC 3339 text (SQLite).
type timestamp struct {
	t *time.Time
}

func (ts timestamp) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		*ts.t = v.UTC()
		return nil
	case string:
		return ts.parse(v)
	case []byte:
		return ts.parse(string(v))
	case nil:
		*ts.t = time.Time{}
		return nil
	default:
		return fmt.Errorf("unsupported timestamp type %T", src)
	}
}

func (ts timestamp) parse(s string) error {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	*ts.t = t.UTC()
	return nil
}
