package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"roster/internal/record/metrics"
	"roster/internal/record/models"
	"roster/internal/record/store"
	"roster/internal/record/validator"
	"roster/pkg/attrs"
	dErrors "roster/pkg/domain-errors"
	"roster/pkg/email"
	audit "roster/pkg/platform/audit"
	"roster/pkg/requestcontext"
)

// Messages returned to clients.
const (
	MsgEmailExists   = "User with this email already exists"
	MsgCreateFailed  = "Something went wrong while creating the user"
	MsgNotFound      = "User not found"
	MsgNoneFound     = "No users found"
	MsgUpdateFailed  = "Error while updating user"
	MsgDeleteFailed  = "Error while deleting user"
	MsgLookupFailed  = "failed to load user"
	MsgListingFailed = "failed to list users"
)

// DefaultAllocationAttempts bounds how often Create re-allocates after the
// store rejected an identifier that a concurrent create took first.
const DefaultAllocationAttempts = 3

// Store is the persistence contract the flows need.
type Store interface {
	FindByEmail(ctx context.Context, email string) (*models.Record, error)
	FindByID(ctx context.Context, id int64) (*models.Record, error)
	Insert(ctx context.Context, record *models.Record) error
	UpdateByID(ctx context.Context, id int64, fields models.UpdateFields) (*models.Record, error)
	DeleteByID(ctx context.Context, id int64) (bool, error)
	List(ctx context.Context) ([]*models.Record, error)
}

// Allocator is the single place identifiers come from.
type Allocator interface {
	Next(ctx context.Context) (int64, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service sequences validation, uniqueness checks, allocation and store
// writes. It holds no locks: each request does its store round-trips one
// after another, and concurrent requests are kept apart only by the store's
// constraints.
type Service struct {
	store              Store
	allocator          Allocator
	logger             *slog.Logger
	auditPublisher     AuditPublisher
	metrics            *metrics.Metrics
	tracer             trace.Tracer
	allocationAttempts int
	emptyListOK        bool
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithAllocationAttempts sets how many identifiers Create may try before
// giving up. Values below 1 are ignored.
func WithAllocationAttempts(n int) Option {
	return func(s *Service) {
		if n >= 1 {
			s.allocationAttempts = n
		}
	}
}

// WithEmptyListOK makes List return an empty result instead of a not-found
// error when there are no records. Existing clients expect the error, so it
// is opt-in.
func WithEmptyListOK(ok bool) Option {
	return func(s *Service) {
		s.emptyListOK = ok
	}
}

func New(store Store, allocator Allocator, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("record store is required")
	}
	if allocator == nil {
		return nil, fmt.Errorf("identifier allocator is required")
	}
	s := &Service{
		store:              store,
		allocator:          allocator,
		tracer:             otel.Tracer("roster/internal/record/service"),
		allocationAttempts: DefaultAllocationAttempts,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Create validates req, rejects a taken email, allocates an identifier and
// inserts. An identifier collision at insert time triggers a new allocation,
// up to the configured number of attempts.
func (s *Service) Create(ctx context.Context, req *models.CreateRecordRequest) (*models.Record, error) {
	ctx, span := s.tracer.Start(ctx, "record.Create")
	defer span.End()
	if s.metrics != nil {
		defer s.metrics.ObserveCreate(time.Now())
	}

	if err := validator.ValidateCreate(req); err != nil {
		s.rejected("create", "validation")
		return nil, s.fail(span, err)
	}
	record := req.ToRecord()

	if _, err := s.store.FindByEmail(ctx, record.Email); err == nil {
		s.rejected("create", "conflict")
		s.logAudit(ctx, string(audit.EventCreateConflict), "email", record.Email)
		return nil, s.fail(span, dErrors.New(dErrors.CodeConflict, MsgEmailExists))
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, s.fail(span, storeFailure(err, MsgCreateFailed))
	}

	for attempt := 1; ; attempt++ {
		id, err := s.allocator.Next(ctx)
		if err != nil {
			return nil, s.fail(span, storeFailure(err, MsgCreateFailed))
		}
		record.ID = id

		err = s.store.Insert(ctx, record)
		if err == nil {
			break
		}
		switch {
		case errors.Is(err, store.ErrDuplicateIdentifier) && attempt < s.allocationAttempts:
			if s.metrics != nil {
				s.metrics.IncrementAllocationConflict()
			}
			s.logAudit(ctx, string(audit.EventAllocationRetry),
				"identifier", id,
				"attempt", attempt,
			)
			continue
		case errors.Is(err, store.ErrDuplicateEmail):
			// Lost the race against a concurrent create with the same email.
			s.rejected("create", "conflict")
			return nil, s.fail(span, dErrors.New(dErrors.CodeConflict, MsgEmailExists))
		default:
			return nil, s.fail(span, storeFailure(err, MsgCreateFailed))
		}
	}

	span.SetAttributes(attribute.Int64("record.id", record.ID))
	s.logAudit(ctx, string(audit.EventUserCreated),
		"user_id", record.ID,
		"email", record.Email,
	)
	if s.metrics != nil {
		s.metrics.IncrementCreated()
	}
	return record, nil
}

// Get returns the record with id.
func (s *Service) Get(ctx context.Context, id int64) (*models.Record, error) {
	ctx, span := s.tracer.Start(ctx, "record.Get", trace.WithAttributes(attribute.Int64("record.id", id)))
	defer span.End()

	record, err := s.find(ctx, id)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			s.rejected("read", "not_found")
		}
		return nil, s.fail(span, err)
	}
	return record, nil
}

func (s *Service) find(ctx context.Context, id int64) (*models.Record, error) {
	record, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, MsgNotFound)
		}
		return nil, storeFailure(err, MsgLookupFailed)
	}
	return record, nil
}

// List returns every record ordered by identifier. With no records it
// reports not-found unless WithEmptyListOK was set.
func (s *Service) List(ctx context.Context) ([]*models.Record, error) {
	ctx, span := s.tracer.Start(ctx, "record.List")
	defer span.End()

	records, err := s.store.List(ctx)
	if err != nil {
		return nil, s.fail(span, storeFailure(err, MsgListingFailed))
	}
	if len(records) == 0 {
		if s.emptyListOK {
			return []*models.Record{}, nil
		}
		s.rejected("list", "not_found")
		return nil, s.fail(span, dErrors.New(dErrors.CodeNotFound, MsgNoneFound))
	}
	span.SetAttributes(attribute.Int("record.count", len(records)))
	return records, nil
}

// Update validates the mutable fields, checks the record exists and applies
// the change. Email and identifier are never touched.
func (s *Service) Update(ctx context.Context, id int64, req *models.UpdateRecordRequest) (*models.Record, error) {
	ctx, span := s.tracer.Start(ctx, "record.Update", trace.WithAttributes(attribute.Int64("record.id", id)))
	defer span.End()

	if err := validator.ValidateUpdate(req); err != nil {
		s.rejected("update", "validation")
		return nil, s.fail(span, err)
	}

	if _, err := s.find(ctx, id); err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			s.rejected("update", "not_found")
		}
		return nil, s.fail(span, err)
	}

	updated, err := s.store.UpdateByID(ctx, id, req.ToUpdateFields())
	if err != nil {
		// Includes a record deleted between the existence check and the write.
		return nil, s.fail(span, storeFailure(err, MsgUpdateFailed))
	}

	s.logAudit(ctx, string(audit.EventUserUpdated), "user_id", id)
	if s.metrics != nil {
		s.metrics.IncrementUpdated()
	}
	return updated, nil
}

// Delete hard-deletes the record with id. Deleting an absent id is a
// not-found error every time.
func (s *Service) Delete(ctx context.Context, id int64) error {
	ctx, span := s.tracer.Start(ctx, "record.Delete", trace.WithAttributes(attribute.Int64("record.id", id)))
	defer span.End()

	existing, err := s.find(ctx, id)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			s.rejected("delete", "not_found")
		}
		return s.fail(span, err)
	}

	deleted, err := s.store.DeleteByID(ctx, id)
	if err != nil {
		return s.fail(span, storeFailure(err, MsgDeleteFailed))
	}
	if !deleted {
		return s.fail(span, dErrors.New(dErrors.CodeInternal, MsgDeleteFailed))
	}

	s.logAudit(ctx, string(audit.EventUserDeleted),
		"user_id", id,
		"email", existing.Email,
	)
	if s.metrics != nil {
		s.metrics.IncrementDeleted()
	}
	return nil
}

// storeFailure reports a failed dependency call. A call cut short by the
// request deadline is a timeout; anything else is internal.
func storeFailure(err error, msg string) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return dErrors.Wrap(err, dErrors.CodeTimeout, msg)
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, msg)
}

func (s *Service) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

func (s *Service) rejected(operation, reason string) {
	if s.metrics != nil {
		s.metrics.IncrementRejected(operation, reason)
	}
}

func (s *Service) logAudit(ctx context.Context, event string, attributes ...any) {
	// Emails never reach logs or sinks unredacted.
	for i := 0; i+1 < len(attributes); i += 2 {
		if k, ok := attributes[i].(string); ok && k == "email" {
			if v, ok := attributes[i+1].(string); ok {
				attributes[i+1] = email.Redact(v)
			}
		}
	}
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		attributes = append(attributes, "request_id", requestID)
	}
	args := append(attributes, "event", event, "log_type", "audit")
	if s.logger != nil {
		s.logger.InfoContext(ctx, event, args...)
	}
	if s.auditPublisher == nil {
		return
	}
	userID, _ := attrs.Extract[int64](attributes, "user_id")
	_ = s.auditPublisher.Emit(ctx, audit.Event{
		UserID: userID,
		Action: event,
		Email:  attrs.ExtractString(attributes, "email"),
	})
}
