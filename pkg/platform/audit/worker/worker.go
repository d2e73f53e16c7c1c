package worker

import (
	"context"
	"log/slog"

	audit "roster/pkg/platform/audit"
)

// Worker drains audit events from a channel into a store. A failed append is
// logged and the event dropped; audit delivery never blocks request handling.
type Worker struct {
	store  audit.Store
	inbox  <-chan audit.Event
	logger *slog.Logger
}

func NewWorker(store audit.Store, inbox <-chan audit.Event, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Worker{store: store, inbox: inbox, logger: logger}
}

// Run returns when the inbox is closed (after draining it) or ctx is done.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.inbox:
			if !ok {
				return nil
			}
			w.append(ctx, event)
		}
	}
}

func (w *Worker) append(ctx context.Context, event audit.Event) {
	if err := w.store.Append(ctx, event); err != nil {
		w.logger.ErrorContext(ctx, "failed to append audit event",
			"action", event.Action,
			"user_id", event.UserID,
			"error", err,
		)
	}
}
