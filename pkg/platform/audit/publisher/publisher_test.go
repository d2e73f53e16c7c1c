package publisher

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audit "roster/pkg/platform/audit"
	"roster/pkg/platform/audit/store/memory"
	"roster/pkg/requestcontext"
)

func TestPublisher_SyncMode(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	fixed := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithRequestID(requestcontext.WithTime(context.Background(), fixed), "req-42")

	require.NoError(t, pub.Emit(ctx, audit.Event{UserID: 1, Action: string(audit.EventUserCreated)}))

	events, err := store.ListByUser(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, string(audit.EventUserCreated), events[0].Action)
	assert.Equal(t, audit.CategoryCompliance, events[0].Category)
	assert.Equal(t, fixed, events[0].Timestamp)
	assert.Equal(t, "req-42", events[0].RequestID)
	assert.NotEmpty(t, events[0].ID)
}

func TestPublisher_AsyncDrainsOnClose(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(100))

	for range 10 {
		require.NoError(t, pub.Emit(context.Background(), audit.Event{
			UserID: 3,
			Action: string(audit.EventUserUpdated),
		}))
	}
	pub.Close()

	events, err := store.ListByUser(context.Background(), 3)
	require.NoError(t, err)
	assert.Len(t, events, 10)
}

func TestPublisher_EmitAfterClose(t *testing.T) {
	pub := NewPublisher(memory.NewInMemoryStore(), WithAsyncBuffer(1))
	pub.Close()
	pub.Close()

	err := pub.Emit(context.Background(), audit.Event{Action: string(audit.EventUserDeleted)})
	assert.ErrorIs(t, err, ErrClosed)
}

type failingStore struct{}

func (failingStore) Append(context.Context, audit.Event) error {
	return errors.New("sink down")
}

func TestPublisher_SyncModeReturnsStoreError(t *testing.T) {
	pub := NewPublisher(failingStore{})
	defer pub.Close()

	err := pub.Emit(context.Background(), audit.Event{Action: string(audit.EventUserCreated)})
	assert.EqualError(t, err, "sink down")
}

func TestCategoryDefaultsToOperations(t *testing.T) {
	assert.Equal(t, audit.CategoryOperations, audit.AuditEvent("something_else").Category())
	assert.Equal(t, audit.CategoryCompliance, audit.EventUserDeleted.Category())
}
