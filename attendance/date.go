package attendance

import (
	"fmt"
	"time"
)

// =============================================================================
// DATE KEY - Canonical YYYY-MM-DD identity for attendance entries
// =============================================================================

// DateKey is a calendar date in canonical YYYY-MM-DD form, with no
// timezone. It is the sole identity for attendance entries, and its
// lexical order is chronological order.
type DateKey string

const dateKeyLayout = "2006-01-02"

// ParseDateKey validates s as a calendar date and returns it in
// canonical form.
func ParseDateKey(s string) (DateKey, error) {
	t, err := time.Parse(dateKeyLayout, s)
	if err != nil {
		return "", &InvalidArgumentError{Field: "date", Value: s, Err: ErrInvalidDate}
	}
	return DateKey(t.Format(dateKeyLayout)), nil
}

// NewDateKey builds a DateKey from calendar components.
func NewDateKey(year int, month time.Month, day int) DateKey {
	return DateKey(time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Format(dateKeyLayout))
}

// DateKeyFromTime truncates t to its calendar date.
func DateKeyFromTime(t time.Time) DateKey {
	return DateKey(t.Format(dateKeyLayout))
}

// Today returns the current calendar date.
func Today() DateKey {
	return DateKeyFromTime(time.Now())
}

// Time returns the date at midnight UTC. Invalid keys return the zero time;
// keys built through ParseDateKey/NewDateKey are always valid.
func (d DateKey) Time() time.Time {
	t, err := time.Parse(dateKeyLayout, string(d))
	if err != nil {
		return time.Time{}
	}
	return t
}

func (d DateKey) Weekday() time.Weekday { return d.Time().Weekday() }

// IsSunday reports whether the date falls on day-of-week 0 under the
// Sunday-first week convention.
func (d DateKey) IsSunday() bool { return d.Weekday() == time.Sunday }

// WeekdayName returns the full English weekday name, e.g. "Monday".
func (d DateKey) WeekdayName() string { return d.Weekday().String() }

// MonthKey returns the YYYY-MM prefix of the date.
func (d DateKey) MonthKey() MonthKey { return MonthKey(d[:7]) }

func (d DateKey) AddDays(n int) DateKey { return DateKeyFromTime(d.Time().AddDate(0, 0, n)) }

func (d DateKey) Before(other DateKey) bool { return d < other }
func (d DateKey) After(other DateKey) bool  { return d > other }

func (d DateKey) String() string { return string(d) }

// DaysBetween returns the whole calendar days from one date to another.
// Negative when to precedes from.
func DaysBetween(from, to DateKey) int {
	return int(to.Time().Sub(from.Time()).Hours() / 24)
}

// =============================================================================
// MONTH KEY - YYYY-MM prefix used for month-scoped queries
// =============================================================================

// MonthKey is a month in YYYY-MM form.
type MonthKey string

const monthKeyLayout = "2006-01"

// ParseMonthKey validates s as a YYYY-MM month.
func ParseMonthKey(s string) (MonthKey, error) {
	t, err := time.Parse(monthKeyLayout, s)
	if err != nil {
		return "", &InvalidArgumentError{Field: "month", Value: s, Err: ErrInvalidDate}
	}
	return MonthKey(t.Format(monthKeyLayout)), nil
}

func (m MonthKey) Year() int {
	return m.firstDay().Time().Year()
}

func (m MonthKey) Month() time.Month {
	return m.firstDay().Time().Month()
}

func (m MonthKey) firstDay() DateKey { return DateKey(string(m) + "-01") }

// Days returns every DateKey of the month in ascending order.
func (m MonthKey) Days() []DateKey {
	first := m.firstDay().Time()
	n := daysInMonth(first.Year(), first.Month())
	days := make([]DateKey, 0, n)
	for day := 1; day <= n; day++ {
		days = append(days, NewDateKey(first.Year(), first.Month(), day))
	}
	return days
}

// FirstWeekday returns the day-of-week of the 1st, Sunday-first.
// Calendar grids use it as the leading blank-cell count.
func (m MonthKey) FirstWeekday() int {
	return int(m.firstDay().Weekday())
}

func (m MonthKey) Next() MonthKey {
	return MonthKey(m.firstDay().Time().AddDate(0, 1, 0).Format(monthKeyLayout))
}

func (m MonthKey) Prev() MonthKey {
	return MonthKey(m.firstDay().Time().AddDate(0, -1, 0).Format(monthKeyLayout))
}

func (m MonthKey) String() string { return string(m) }

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// =============================================================================
// SESSION - The bounded academic year attendance is tracked within
// =============================================================================

// Session is the bounded date range attendance is tracked and projected
// within, e.g. April through March for an Indian academic year.
type Session struct {
	Start DateKey
	End   DateKey
}

// DefaultSession is the 2025-26 academic session the default holiday
// list belongs to.
var DefaultSession = Session{
	Start: NewDateKey(2025, time.April, 1),
	End:   NewDateKey(2026, time.March, 31),
}

// Contains reports whether d falls inside the session, inclusive.
func (s Session) Contains(d DateKey) bool {
	return !d.Before(s.Start) && !d.After(s.End)
}

// ContainsMonth reports whether the month overlaps the session.
func (s Session) ContainsMonth(m MonthKey) bool {
	return m >= s.Start.MonthKey() && m <= s.End.MonthKey()
}

// ClampMonth pins m to the session bounds, so month navigation cannot
// walk outside the academic year.
func (s Session) ClampMonth(m MonthKey) MonthKey {
	if m < s.Start.MonthKey() {
		return s.Start.MonthKey()
	}
	if m > s.End.MonthKey() {
		return s.End.MonthKey()
	}
	return m
}

// Months lists every month of the session in order.
func (s Session) Months() []MonthKey {
	var months []MonthKey
	for m := s.Start.MonthKey(); m <= s.End.MonthKey(); m = m.Next() {
		months = append(months, m)
	}
	return months
}

func (s Session) String() string {
	return fmt.Sprintf("%s..%s", s.Start, s.End)
}
