// Package allocator hands out record identifiers.
//
// Identifiers are strictly increasing per allocator and never reused by it;
// gaps are allowed. No allocator here is trusted to prevent duplicates on its
// own: the store's identifier constraint rejects a duplicate and the create
// flow allocates again.
package allocator

import (
	"context"
	"errors"
	"fmt"

	"roster/internal/record/models"
	"roster/pkg/platform/sentinel"
)

// Allocator returns the identifier for the next created record.
type Allocator interface {
	Next(ctx context.Context) (int64, error)
}

// MaxFinder is the store query StoreMax reads from.
type MaxFinder interface {
	FindMaxIdentifier(ctx context.Context) (*models.Record, error)
}

// StoreMax allocates max(identifier)+1 by reading the store, or 1 when the
// store is empty.
//
// This is read-then-write with no lock: two concurrent creates can read the
// same max and both propose the same identifier. The store accepts one insert
// and rejects the other with store.ErrDuplicateIdentifier; the loser re-reads
// a larger max on its next attempt.
//
// Identifiers are derived from the live rows only, so deleting the current
// maximum makes its identifier available again. Use the Redis sequence
// (ALLOCATOR=redis) when an identifier must never be reused.
type StoreMax struct {
	store MaxFinder
}

func NewStoreMax(store MaxFinder) *StoreMax {
	return &StoreMax{store: store}
}

func (a *StoreMax) Next(ctx context.Context) (int64, error) {
	top, err := a.store.FindMaxIdentifier(ctx)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return 1, nil
		}
		return 0, fmt.Errorf("find max identifier: %w", err)
	}
	return top.ID + 1, nil
}
