/*
record.go - The canonical attendance record

PURPOSE:
  Owns the mapping from calendar date to attendance status. This is the
  only mutable state in the engine; everything else is derived from it.

INVARIANTS:
  - At most one status per date-key; SetStatus overwrites.
  - A missing key means "unrecorded", which is distinct from every
    status value. Aggregation skips unrecorded dates entirely.
  - Entries are only removed by being overwritten; the whole record can
    be cleared with Reset (idempotent) or replaced wholesale on import.

OBSERVERS:
  Persistence is an explicit side effect, not a hidden background one.
  Callers subscribe to mutations and decide when and how to write back
  (immediate, debounced, batched - all valid as long as every mutation
  is durable before the next dependent read in the same session).

SEE ALSO:
  - storage.go: The durable-store collaborator that observers call
  - stats.go: Read-side aggregation
*/
package attendance

import (
	"sort"
	"sync"
)

// =============================================================================
// RECORD - date -> status, last write wins
// =============================================================================

// Record is the canonical attendance record. Safe for concurrent use.
type Record struct {
	mu        sync.RWMutex
	entries   map[DateKey]Status
	observers []func(Event)
}

// Entry is one recorded (date, status) pair.
type Entry struct {
	Date   DateKey
	Status Status
}

// Event describes a completed mutation, delivered to observers.
type Event struct {
	Kind   EventKind
	Date   DateKey // set for EventMarked only
	Status Status  // set for EventMarked only
}

type EventKind string

const (
	EventMarked   EventKind = "marked"
	EventReset    EventKind = "reset"
	EventReplaced EventKind = "replaced"
)

// NewRecord creates an empty record.
func NewRecord() *Record {
	return &Record{entries: make(map[DateKey]Status)}
}

// SetStatus records a status for a date, overwriting any prior entry.
// Fails with an invalid-argument error when the date or status is
// malformed; valid inputs have no error path.
func (r *Record) SetStatus(date DateKey, st Status) error {
	canonical, err := ParseDateKey(string(date))
	if err != nil {
		return err
	}
	if !st.Valid() {
		return &InvalidArgumentError{Field: "status", Value: string(st), Err: ErrInvalidStatus}
	}

	r.mu.Lock()
	r.entries[canonical] = st
	r.mu.Unlock()

	r.notify(Event{Kind: EventMarked, Date: canonical, Status: st})
	return nil
}

// Mark parses raw date and status strings and records them.
func (r *Record) Mark(date, status string) (DateKey, Status, error) {
	d, err := ParseDateKey(date)
	if err != nil {
		return "", "", err
	}
	st, err := ParseStatus(status)
	if err != nil {
		return "", "", err
	}
	return d, st, r.SetStatus(d, st)
}

// Status looks up the recorded status for a date. The second return is
// false when the date is unrecorded. Never fails.
func (r *Record) Status(date DateKey) (Status, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	st, ok := r.entries[date]
	return st, ok
}

// Entries returns all recorded entries in ascending date order.
func (r *Record) Entries() []Entry {
	r.mu.RLock()
	out := make([]Entry, 0, len(r.entries))
	for d, st := range r.entries {
		out = append(out, Entry{Date: d, Status: st})
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// Range calls fn for each recorded entry in ascending date order,
// stopping early when fn returns false. Restartable: each call walks a
// fresh snapshot.
func (r *Record) Range(fn func(Entry) bool) {
	for _, e := range r.Entries() {
		if !fn(e) {
			return
		}
	}
}

// Snapshot copies the full mapping, for persistence and export.
func (r *Record) Snapshot() map[DateKey]Status {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[DateKey]Status, len(r.entries))
	for d, st := range r.entries {
		out[d] = st
	}
	return out
}

// Len returns the number of recorded entries.
func (r *Record) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Reset removes all entries. Idempotent.
func (r *Record) Reset() {
	r.mu.Lock()
	r.entries = make(map[DateKey]Status)
	r.mu.Unlock()

	r.notify(Event{Kind: EventReset})
}

// ReplaceAll swaps the record wholesale. Entries with malformed dates or
// unknown statuses are rejected; nothing is replaced on error. Used by
// load-at-startup and JSON import.
func (r *Record) ReplaceAll(data map[DateKey]Status) error {
	clean := make(map[DateKey]Status, len(data))
	for d, st := range data {
		canonical, err := ParseDateKey(string(d))
		if err != nil {
			return err
		}
		if !st.Valid() {
			return &InvalidArgumentError{Field: "status", Value: string(st), Err: ErrInvalidStatus}
		}
		clean[canonical] = st
	}

	r.mu.Lock()
	r.entries = clean
	r.mu.Unlock()

	r.notify(Event{Kind: EventReplaced})
	return nil
}

// Subscribe registers fn to run after every completed mutation.
// Observers run synchronously on the mutating goroutine, outside the
// record lock.
func (r *Record) Subscribe(fn func(Event)) {
	r.mu.Lock()
	r.observers = append(r.observers, fn)
	r.mu.Unlock()
}

func (r *Record) notify(ev Event) {
	r.mu.RLock()
	observers := make([]func(Event), len(r.observers))
	copy(observers, r.observers)
	r.mu.RUnlock()

	for _, fn := range observers {
		fn(ev)
	}
}
