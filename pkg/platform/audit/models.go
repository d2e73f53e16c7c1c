package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EventCategory classifies audit events so sinks can route or retain them
// differently.
type EventCategory string

const (
	// CategoryCompliance covers record lifecycle changes with retention requirements.
	CategoryCompliance EventCategory = "compliance"
	// CategoryOperations covers routine activity that may be sampled.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID        uuid.UUID
	Category  EventCategory
	Timestamp time.Time
	// UserID is the record identifier the action applied to; 0 when none was
	// allocated (rejected creates).
	UserID    int64
	Action    string
	Email     string // redacted before emission
	RequestID string
	Reason    string
}

type AuditEvent string

const (
	EventUserCreated     AuditEvent = "user_created"
	EventUserUpdated     AuditEvent = "user_updated"
	EventUserDeleted     AuditEvent = "user_deleted"
	EventCreateConflict  AuditEvent = "user_create_conflict"
	EventAllocationRetry AuditEvent = "identifier_allocation_retry"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventUserCreated: CategoryCompliance,
	EventUserUpdated: CategoryCompliance,
	EventUserDeleted: CategoryCompliance,

	EventCreateConflict:  CategoryOperations,
	EventAllocationRetry: CategoryOperations,
}

// Category returns the category for e. Unknown events are operational.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Store is an append-only sink for audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
}
