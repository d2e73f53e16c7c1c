// Package publisher emits audit events to a store, either inline or through a
// buffered channel drained by a worker.
package publisher

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	audit "roster/pkg/platform/audit"
	"roster/pkg/platform/audit/worker"
	"roster/pkg/requestcontext"
)

var ErrClosed = errors.New("audit publisher closed")

type Publisher struct {
	store  audit.Store
	logger *slog.Logger

	bufferSize int
	mu         sync.RWMutex
	closed     bool
	inbox      chan audit.Event
	done       chan struct{}
}

type Option func(*Publisher)

// WithAsyncBuffer makes Emit enqueue instead of appending inline. When the
// buffer is full the event is dropped and logged.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		p.bufferSize = size
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func NewPublisher(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{store: store}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.New(slog.DiscardHandler)
	}
	if p.bufferSize > 0 {
		p.inbox = make(chan audit.Event, p.bufferSize)
		p.done = make(chan struct{})
		w := worker.NewWorker(store, p.inbox, p.logger)
		go func() {
			defer close(p.done)
			_ = w.Run(context.Background())
		}()
	}
	return p
}

// Emit fills in id, timestamp, category and request id, then delivers the event.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.Category == "" {
		event.Category = audit.AuditEvent(event.Action).Category()
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}
	if p.inbox == nil {
		return p.store.Append(ctx, event)
	}
	select {
	case p.inbox <- event:
	default:
		p.logger.WarnContext(ctx, "audit buffer full, dropping event",
			"action", event.Action,
			"user_id", event.UserID,
		)
	}
	return nil
}

// Close stops accepting events and, in async mode, waits until the buffer is drained.
func (p *Publisher) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	if p.inbox != nil {
		close(p.inbox)
	}
	p.mu.Unlock()

	if p.done != nil {
		<-p.done
	}
}
