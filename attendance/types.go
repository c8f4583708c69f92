/*
Package attendance provides the core attendance tracking engine.

PURPOSE:
  This package contains the types and algorithms for keeping a daily
  attendance record over an academic session, deriving aggregate counts
  over arbitrary date ranges, and projecting forward to decide whether a
  target attendance percentage is still reachable.

KEY CONCEPTS IN THIS FILE (types.go):
  - Status: A closed set of attendance marks (present/absent/leave/holiday)
  - RangeStats: Counts-by-status over a selected date range
  - TargetConfig: What the user is aiming for, and by when

DESIGN PRINCIPLES:
  1. Determinism: Identical inputs always produce identical statistics
     and projections. Nothing in this package reads the clock.
  2. Precision: Percentages and pace values use decimal.Decimal so that
     no NaN/Infinity ever leaks out of a guarded division.
  3. Type Safety: Status is a closed enum; unknown strings are rejected
     at the boundary, never stored.

USAGE:
  rec := attendance.NewRecord()
  _ = rec.SetStatus("2025-09-01", attendance.StatusPresent)
  stats := attendance.OverallStats(rec)

SEE ALSO:
  - record.go: The mutable date->status store
  - stats.go: Aggregation over the record
  - projector.go: Target projection
*/
package attendance

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// STATUS - Closed set of attendance marks
// =============================================================================

// Status is a recorded attendance mark for a single day.
type Status string

const (
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
	StatusLeave   Status = "leave"
	StatusHoliday Status = "holiday"
)

// ParseStatus validates s against the closed status set.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPresent, StatusAbsent, StatusLeave, StatusHoliday:
		return Status(s), nil
	default:
		return "", &InvalidArgumentError{Field: "status", Value: s, Err: ErrInvalidStatus}
	}
}

// Valid reports whether st is one of the four enumerated marks.
func (st Status) Valid() bool {
	switch st {
	case StatusPresent, StatusAbsent, StatusLeave, StatusHoliday:
		return true
	}
	return false
}

// AllStatuses lists the enumerated marks in display order.
func AllStatuses() []Status {
	return []Status{StatusPresent, StatusAbsent, StatusLeave, StatusHoliday}
}

// =============================================================================
// RANGE STATS - Counts over a selected range of recorded dates
// =============================================================================

// RangeStats holds counts-by-status for the recorded dates of a range.
// Total is always the sum of the four buckets; unrecorded dates never
// contribute, even when they fall on a Sunday or a known holiday.
type RangeStats struct {
	Present int
	Absent  int
	Leave   int
	Holiday int
	Total   int
}

// Add increments the bucket for st and the total.
func (s *RangeStats) Add(st Status) {
	switch st {
	case StatusPresent:
		s.Present++
	case StatusAbsent:
		s.Absent++
	case StatusLeave:
		s.Leave++
	case StatusHoliday:
		s.Holiday++
	default:
		return // unknown marks never reach the record, but never count either
	}
	s.Total++
}

// WorkingDays returns the recorded days that count toward percentage:
// present + absent + leave. Recorded holidays are excluded.
func (s RangeStats) WorkingDays() int {
	return s.Present + s.Absent + s.Leave
}

// PresentPercentage returns present/total as a percentage, 0 when the
// range holds no recorded days.
func (s RangeStats) PresentPercentage() decimal.Decimal {
	if s.Total == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(s.Present)).
		Div(decimal.NewFromInt(int64(s.Total))).
		Mul(hundred)
}

// =============================================================================
// TARGET CONFIG - What the user wants to reach
// =============================================================================

// TargetConfig captures the user's goal. Last value wins; there is no
// other persistence invariant.
type TargetConfig struct {
	// TargetPercentage must be in (0, 100]. Zero is rejected because the
	// confidence score divides by it.
	TargetPercentage float64

	// TargetDate is the day the target should be met by. The zero value
	// defaults to the session end.
	TargetDate DateKey

	// IncludeHistorical folds the recorded counts into the projection
	// base. When false the projection starts from a clean slate.
	IncludeHistorical bool
}

// DefaultTarget is the target percentage used when storage has none.
const DefaultTarget = 75.0

var hundred = decimal.NewFromInt(100)
