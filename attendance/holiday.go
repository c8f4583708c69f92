/*
holiday.go - Holiday calendar and calendar-cell classification

PURPOSE:
  A fixed set of dates known in advance to be non-working, plus the
  derived display classification for calendar cells.

THE SUNDAY RULE:
  Sundays are holiday-equivalent for display even when unrecorded and
  not in the holiday set. This is derived from calendar arithmetic, not
  stored.

AGGREGATION ASYMMETRY (intentional, do not "fix"):
  Classification affects calendar DISPLAY only. The statistics
  aggregator counts explicitly recorded days and nothing else, so an
  unrecorded Sunday or listed holiday contributes to no bucket. Tests
  pin this behavior.

SEE ALSO:
  - stats.go: Aggregation, which ignores derived classification
*/
package attendance

import "sort"

// =============================================================================
// HOLIDAY SET - Session-scoped, read-only configuration
// =============================================================================

// HolidaySet is the set of date-keys designated non-working for the
// session. Read-only at the engine level; deployments seed it through
// storage.
type HolidaySet struct {
	dates map[DateKey]struct{}
}

// NewHolidaySet builds a set from the given dates.
func NewHolidaySet(dates ...DateKey) HolidaySet {
	m := make(map[DateKey]struct{}, len(dates))
	for _, d := range dates {
		m[d] = struct{}{}
	}
	return HolidaySet{dates: m}
}

// DefaultHolidays returns the predefined public holidays for the
// 2025-26 academic session.
func DefaultHolidays() HolidaySet {
	return NewHolidaySet(
		"2025-08-15", // Independence Day
		"2025-10-02", // Gandhi Jayanti
		"2025-10-24", // Diwali
		"2025-12-25", // Christmas
		"2026-01-26", // Republic Day
	)
}

// Contains reports whether d is a designated holiday.
func (h HolidaySet) Contains(d DateKey) bool {
	_, ok := h.dates[d]
	return ok
}

// Dates returns the holiday dates in ascending order.
func (h HolidaySet) Dates() []DateKey {
	out := make([]DateKey, 0, len(h.dates))
	for d := range h.dates {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (h HolidaySet) Len() int { return len(h.dates) }

// IsHoliday reports whether d is a holiday: either listed in the set or
// explicitly recorded as one.
func IsHoliday(rec *Record, set HolidaySet, d DateKey) bool {
	if set.Contains(d) {
		return true
	}
	st, ok := rec.Status(d)
	return ok && st == StatusHoliday
}

// =============================================================================
// DISPLAY CLASSIFICATION - Calendar cell rendering only
// =============================================================================

// DayClass is the derived display classification of a calendar cell.
// It is never stored and never feeds the aggregator.
type DayClass string

const (
	ClassPresent DayClass = "present"
	ClassAbsent  DayClass = "absent"
	ClassLeave   DayClass = "leave"
	ClassHoliday DayClass = "holiday"
	ClassSunday  DayClass = "sunday"
	ClassPending DayClass = "pending"
)

// Classify derives the display class for a date. Precedence:
// holiday (in set or recorded) > Sunday > recorded status > pending.
func Classify(rec *Record, set HolidaySet, d DateKey) DayClass {
	if IsHoliday(rec, set, d) {
		return ClassHoliday
	}
	if d.IsSunday() {
		return ClassSunday
	}
	if st, ok := rec.Status(d); ok {
		return DayClass(st)
	}
	return ClassPending
}

// Cell is one classified day of a month grid.
type Cell struct {
	Date  DateKey
	Class DayClass
}

// MonthCells classifies every day of a month, in ascending order.
// The leading blank-cell count for a Sunday-first grid is
// m.FirstWeekday().
func MonthCells(rec *Record, set HolidaySet, m MonthKey) []Cell {
	days := m.Days()
	cells := make([]Cell, len(days))
	for i, d := range days {
		cells[i] = Cell{Date: d, Class: Classify(rec, set, d)}
	}
	return cells
}
