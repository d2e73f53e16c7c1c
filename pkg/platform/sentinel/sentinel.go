package sentinel

import "errors"

// Sentinel errors for storage facts. Stores return these, usually wrapped with
// the detail of which constraint or lookup produced them, and services translate
// them into domain errors.
//
//   - ErrNotFound: no row or map entry for the key
//   - ErrAlreadyUsed: a unique natural key is already taken
//   - ErrConflict: a write collided with another write (duplicate primary key)
//   - ErrUnavailable: the backing service could not be reached
//
// Validation failures are not sentinels; use pkg/domain-errors directly.
var (
	ErrNotFound    = errors.New("not found")
	ErrAlreadyUsed = errors.New("already used")
	ErrConflict    = errors.New("conflict")
	ErrUnavailable = errors.New("unavailable")
)
