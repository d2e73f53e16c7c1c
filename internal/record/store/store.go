// Package store persists records keyed by identifier and by email.
//
// Every implementation enforces both uniqueness constraints at write time.
// Lookups done by the service beforehand only produce friendlier errors; the
// constraint in the store is what keeps duplicates out.
package store

import (
	"fmt"

	"roster/pkg/platform/sentinel"
)

var (
	// ErrNotFound is returned by lookups and updates for unknown keys.
	ErrNotFound = sentinel.ErrNotFound

	// ErrDuplicateIdentifier means another record already holds the identifier.
	// Allocation raced with a concurrent create; the caller may allocate again.
	ErrDuplicateIdentifier = fmt.Errorf("duplicate identifier: %w", sentinel.ErrConflict)

	// ErrDuplicateEmail means the email is held by another live record.
	ErrDuplicateEmail = fmt.Errorf("duplicate email: %w", sentinel.ErrAlreadyUsed)
)
