/*
stats.go - Statistics aggregation over the attendance record

PURPOSE:
  Derives RangeStats from the record for an arbitrary range predicate,
  with month and all-time conveniences, plus the dashboard target
  progress summary.

COUNTING POLICY:
  Only dates with an explicit recorded status are counted. A date whose
  derived display class is "sunday" or "holiday" but which has no
  recorded status contributes to no bucket and not to Total. See
  holiday.go for why this asymmetry is intentional.

DETERMINISM:
  Same record, same predicate, same output. No hidden time dependence.

SEE ALSO:
  - projector.go: Consumes RangeStats for forward projection
*/
package attendance

import (
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// AGGREGATION
// =============================================================================

// RangePredicate selects which date-keys are in scope for aggregation.
type RangePredicate func(DateKey) bool

// AllTime selects every recorded date.
func AllTime() RangePredicate {
	return func(DateKey) bool { return true }
}

// InMonth selects dates whose key starts with the YYYY-MM prefix.
func InMonth(m MonthKey) RangePredicate {
	prefix := string(m) + "-"
	return func(d DateKey) bool { return strings.HasPrefix(string(d), prefix) }
}

// Between selects dates in [from, to], inclusive. Lexical comparison is
// chronological for canonical keys.
func Between(from, to DateKey) RangePredicate {
	return func(d DateKey) bool { return !d.Before(from) && !d.After(to) }
}

// ComputeStats folds the recorded entries selected by pred into
// counts-by-status.
func ComputeStats(rec *Record, pred RangePredicate) RangeStats {
	var stats RangeStats
	rec.Range(func(e Entry) bool {
		if pred(e.Date) {
			stats.Add(e.Status)
		}
		return true
	})
	return stats
}

// MonthStats aggregates one month of the record.
func MonthStats(rec *Record, m MonthKey) RangeStats {
	return ComputeStats(rec, InMonth(m))
}

// OverallStats aggregates the whole record.
func OverallStats(rec *Record) RangeStats {
	return ComputeStats(rec, AllTime())
}

// =============================================================================
// TARGET PROGRESS - Dashboard summary over recorded working days
// =============================================================================

// futureWindowDays is the fixed future working-day window the dashboard
// progress assumes. A coarse placeholder for "about a month of classes
// ahead", independent of the projector's remaining-days estimate.
const futureWindowDays = 30

// TargetProgress summarizes how the recorded history tracks against the
// target percentage. Unlike the projector it excludes recorded holidays
// from the denominator.
type TargetProgress struct {
	// Percentage is present over recorded working days
	// (present+absent+leave), as a percentage. Zero with no history.
	Percentage decimal.Decimal

	// DaysNeeded is how many of the assumed upcoming days must be
	// present to reach the target.
	DaysNeeded int

	// AbsentsAllowed is how many more absences the target tolerates
	// within the assumed window.
	AbsentsAllowed int
}

// Progress computes the dashboard summary for the given target
// percentage over the whole record.
func Progress(rec *Record, targetPercentage float64) (TargetProgress, error) {
	if err := validateTarget(targetPercentage); err != nil {
		return TargetProgress{}, err
	}

	stats := OverallStats(rec)
	working := stats.WorkingDays()

	var percentage decimal.Decimal
	if working > 0 {
		percentage = decimal.NewFromInt(int64(stats.Present)).
			Div(decimal.NewFromInt(int64(working))).
			Mul(hundred)
	}

	target := decimal.NewFromFloat(targetPercentage)
	window := decimal.NewFromInt(int64(working + futureWindowDays))

	requiredPresent := int(target.Div(hundred).Mul(window).Ceil().IntPart())
	daysNeeded := max(0, requiredPresent-stats.Present)

	maxAbsents := int(hundred.Sub(target).Div(hundred).Mul(window).Floor().IntPart())
	absentsAllowed := max(0, maxAbsents-stats.Absent)

	return TargetProgress{
		Percentage:     percentage,
		DaysNeeded:     daysNeeded,
		AbsentsAllowed: absentsAllowed,
	}, nil
}

func validateTarget(pct float64) error {
	if pct <= 0 || pct > 100 {
		return &InvalidArgumentError{
			Field: "target_percentage",
			Value: decimal.NewFromFloat(pct).String(),
			Err:   ErrInvalidTarget,
		}
	}
	return nil
}
