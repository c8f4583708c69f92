/*
storage.go - Durable-store collaborator interface

PURPOSE:
  Defines the boundary between the engine and whatever keeps the record
  durable. The engine only needs a key-value store keyed by date string
  plus a single target value; it does not care about the engine behind
  it.

DEGRADED MODE:
  Storage being unavailable at startup is tolerated: the engine
  initializes empty and keeps working in memory. The condition is
  reported to the caller, not swallowed.

IMPLEMENTATIONS:
  - attendance/store: in-memory, for tests and dev
  - store/sqlite: SQLite-backed

SEE ALSO:
  - record.go: Observers invoke SaveData after mutations
*/
package attendance

import "context"

// =============================================================================
// STORAGE - durable key-value collaborator
// =============================================================================

// Storage persists the attendance record and target. Implementations
// must be safe for concurrent use.
type Storage interface {
	// LoadData returns the persisted record mapping, empty when nothing
	// was saved yet.
	LoadData(ctx context.Context) (map[DateKey]Status, error)

	// SaveData persists the full record mapping, replacing what was there.
	SaveData(ctx context.Context, data map[DateKey]Status) error

	// LoadTarget returns the persisted target percentage, or
	// DefaultTarget when none was saved.
	LoadTarget(ctx context.Context) (float64, error)

	// SaveTarget persists the target percentage. Last value wins.
	SaveTarget(ctx context.Context, target float64) error

	// Holidays returns the session holiday dates seeded in storage,
	// empty when none were seeded (callers fall back to the defaults).
	Holidays(ctx context.Context) ([]DateKey, error)
}

// =============================================================================
// LOAD - startup hydration with degraded-mode fallback
// =============================================================================

// LoadState describes how startup hydration went.
type LoadState struct {
	// Degraded is true when storage failed and the engine started empty.
	Degraded bool
	// Err holds the storage failure behind a degraded start.
	Err error
}

// Load hydrates a record and target from storage. On storage failure it
// returns an empty record with the default target and a LoadState
// reporting the degradation; the error itself never aborts startup.
func Load(ctx context.Context, st Storage) (*Record, float64, LoadState) {
	rec := NewRecord()

	data, err := st.LoadData(ctx)
	if err != nil {
		return rec, DefaultTarget, LoadState{Degraded: true, Err: &StorageError{Op: "load", Err: err}}
	}
	if err := rec.ReplaceAll(data); err != nil {
		// Corrupt persisted keys are treated like unavailable storage.
		return NewRecord(), DefaultTarget, LoadState{Degraded: true, Err: &StorageError{Op: "load", Err: err}}
	}

	target, err := st.LoadTarget(ctx)
	if err != nil {
		return rec, DefaultTarget, LoadState{Degraded: true, Err: &StorageError{Op: "load_target", Err: err}}
	}
	if target <= 0 || target > 100 {
		target = DefaultTarget
	}

	return rec, target, LoadState{}
}
