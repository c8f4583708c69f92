/*
errors.go - Centralized error types for the attendance engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  The API layer maps these onto HTTP status codes.

ERROR CATEGORIES:
  1. Invalid argument - malformed dates, unknown statuses, bad targets.
     Surfaced immediately to the caller, never silently coerced.
  2. Storage unavailable - the durable-store collaborator failed. The
     engine degrades to in-memory operation and reports the condition.

USAGE:
  if attendance.IsInvalidArgument(err) {
      // 400
  }

SEE ALSO:
  - record.go, projector.go: Raise these errors
  - storage.go: Wraps collaborator failures
*/
package attendance

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidDate is returned when a date-key does not parse as a
	// calendar date in YYYY-MM-DD form.
	ErrInvalidDate = errors.New("invalid date")

	// ErrInvalidStatus is returned when a status is not one of the four
	// enumerated marks.
	ErrInvalidStatus = errors.New("invalid status")

	// ErrInvalidTarget is returned when a target percentage is not in
	// (0, 100]. Zero is rejected because the confidence score divides
	// by the target.
	ErrInvalidTarget = errors.New("invalid target percentage")

	// ErrInvalidDays is returned when a simulation day count is not a
	// positive integer.
	ErrInvalidDays = errors.New("invalid day count")

	// ErrInvalidBackup is returned when an import payload is not a JSON
	// object.
	ErrInvalidBackup = errors.New("invalid backup payload")

	// ErrStorageUnavailable is returned when the durable store cannot be
	// reached. The engine keeps working in memory.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InvalidArgumentError reports which input was malformed.
type InvalidArgumentError struct {
	Field string
	Value string
	Err   error
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("%s: %s %q", e.Err, e.Field, e.Value)
}

func (e *InvalidArgumentError) Unwrap() error { return e.Err }

// StorageError wraps a collaborator failure with the operation that hit it.
type StorageError struct {
	Op  string // "load", "save", "load_target", "save_target"
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

// Unwrap exposes both the category sentinel and the underlying cause.
func (e *StorageError) Unwrap() []error { return []error{ErrStorageUnavailable, e.Err} }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsInvalidArgument returns true if the error is due to invalid caller input.
func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrInvalidStatus) ||
		errors.Is(err, ErrInvalidTarget) ||
		errors.Is(err, ErrInvalidDays) ||
		errors.Is(err, ErrInvalidBackup)
}

// IsStorageUnavailable returns true if the durable store is down and the
// engine is running in memory only.
func IsStorageUnavailable(err error) bool {
	return errors.Is(err, ErrStorageUnavailable)
}
