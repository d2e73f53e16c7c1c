//go:build integration

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	audit "roster/pkg/platform/audit"
	"roster/pkg/platform/audit/store/postgres"
	"roster/pkg/testutil/containers"
)

type PostgresAuditSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *postgres.Store
}

func TestPostgresAuditSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresAuditSuite))
}

func (s *PostgresAuditSuite) SetupSuite() {
	s.pg = containers.GetManager().GetPostgres(s.T())
	var err error
	s.store, err = postgres.New(context.Background(), s.pg.DB)
	s.Require().NoError(err)
}

func (s *PostgresAuditSuite) SetupTest() {
	s.Require().NoError(s.pg.TruncateTables(context.Background(), "audit_events"))
}

func (s *PostgresAuditSuite) TestAppendAndList() {
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	created := audit.Event{ID: uuid.New(), Timestamp: base, UserID: 4, Action: string(audit.EventUserCreated), Email: "a***@x.io"}
	deleted := audit.Event{ID: uuid.New(), Timestamp: base.Add(time.Minute), UserID: 4, Action: string(audit.EventUserDeleted)}
	other := audit.Event{ID: uuid.New(), Timestamp: base, UserID: 5, Action: string(audit.EventUserCreated)}

	for _, e := range []audit.Event{deleted, created, other} {
		s.Require().NoError(s.store.Append(ctx, e))
	}
	s.Require().NoError(s.store.Append(ctx, created), "redelivery is ignored")

	events, err := s.store.ListByUser(ctx, 4)
	s.Require().NoError(err)
	s.Require().Len(events, 2)
	s.Equal(created.ID, events[0].ID)
	s.Equal(audit.CategoryCompliance, events[0].Category)
	s.Equal("a***@x.io", events[0].Email)
	s.Equal(deleted.ID, events[1].ID)
}

func (s *PostgresAuditSuite) TestEventsWithoutUser() {
	ctx := context.Background()
	s.Require().NoError(s.store.Append(ctx, audit.Event{
		Timestamp: time.Now(),
		Action:    string(audit.EventCreateConflict),
	}))

	events, err := s.store.ListByUser(ctx, 0)
	s.Require().NoError(err)
	s.Empty(events)
}
