/*
projector.go - Target projection

PURPOSE:
  Answers "is the target percentage still reachable by the target date,
  and at what pace?" from current counts and a remaining-days estimate.
  A pure deterministic formula over RangeStats - no sampling, no model,
  no clock reads. The caller supplies "today".

KEY APPROXIMATION:
  workingDayFraction (0.85) approximates the share of remaining
  calendar days that are working days, instead of enumerating Sundays
  and holidays individually. A deliberate simplification; keep it
  unless the product's calendar rules change.

GUARDED ARITHMETIC:
  Every division is guarded (zero history, zero target, zero remaining
  working days). The result never carries NaN or Infinity; a
  non-positive target fails fast instead.

SEE ALSO:
  - stats.go: Produces the RangeStats input
*/
package attendance

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// HEURISTICS
// =============================================================================

// workingDayFraction estimates the fraction of remaining calendar days
// that are working days, excluding weekly off-days and holidays without
// enumerating them. Known approximation, not derived from the holiday
// calendar.
var workingDayFraction = decimal.NewFromFloat(0.85)

// confidenceAdvisoryThreshold is the confidence score below which the
// projector advises caution even when the target is achievable.
const confidenceAdvisoryThreshold = 70

// Advisory strings, selected by a three-way tie-break in order:
// not achievable, low confidence, on track.
const (
	adviceNotAchievable1 = "Target may not be achievable with current attendance pattern."
	adviceNotAchievable2 = "Consider adjusting your target or improving attendance consistency."
	adviceLowConfidence1 = "Maintain consistent attendance to meet your target."
	adviceLowConfidence2 = "Avoid unnecessary absences, especially in the coming weeks."
	adviceOnTrack1       = "You are on track to meet your target!"
	adviceOnTrackFmt     = "You can afford %d absent days per month."
)

// =============================================================================
// PROJECTION RESULT
// =============================================================================

// ProjectionResult is the derived forecast. Never persisted; recomputed
// on demand from the record, the target, and the supplied today.
type ProjectionResult struct {
	TargetPercentage  float64
	CurrentPercentage decimal.Decimal

	DaysRemaining        int
	WorkingDaysRemaining int

	// DaysNeeded is how many of the remaining working days must be
	// present. PresentNeeded is its alias in the external contract.
	DaysNeeded    int
	PresentNeeded int

	AbsentsAllowed      int
	AbsentsPerWeek      decimal.Decimal
	AbsentsPerMonth     decimal.Decimal
	WeeklyPresentNeeded decimal.Decimal

	// ConfidenceScore is current/target expressed 0-100, clamped. Not a
	// statistical confidence interval.
	ConfidenceScore decimal.Decimal

	IsAchievable    bool
	Recommendations []string
}

// =============================================================================
// PROJECT
// =============================================================================

// Project computes the forecast for cfg given current stats, as of the
// supplied today. Fails with an invalid-argument error when the target
// percentage is outside (0, 100] or the target date is malformed.
func Project(stats RangeStats, cfg TargetConfig, today DateKey) (*ProjectionResult, error) {
	if err := validateTarget(cfg.TargetPercentage); err != nil {
		return nil, err
	}

	targetDate := cfg.TargetDate
	if targetDate == "" {
		targetDate = DefaultSession.End
	}
	targetDate, err := ParseDateKey(string(targetDate))
	if err != nil {
		return nil, err
	}
	if _, err := ParseDateKey(string(today)); err != nil {
		return nil, err
	}

	current := stats.PresentPercentage()

	daysRemaining := max(0, DaysBetween(today, targetDate))
	workingDaysRemaining := int(decimal.NewFromInt(int64(daysRemaining)).
		Mul(workingDayFraction).Floor().IntPart())

	baseDays, basePresent := 0, 0
	if cfg.IncludeHistorical {
		baseDays, basePresent = stats.Total, stats.Present
	}
	totalFutureDays := baseDays + workingDaysRemaining

	target := decimal.NewFromFloat(cfg.TargetPercentage)
	requiredPresent := int(target.Div(hundred).
		Mul(decimal.NewFromInt(int64(totalFutureDays))).
		Ceil().IntPart())

	daysNeeded := max(0, requiredPresent-basePresent)
	isAchievable := daysNeeded <= workingDaysRemaining

	confidence := clampScore(current.Div(target).Mul(hundred))

	absentsAllowed := max(0, workingDaysRemaining-daysNeeded)

	weeks := guardedDenominator(workingDaysRemaining, 7)
	months := guardedDenominator(workingDaysRemaining, 30)

	absentsPerWeek := decimal.NewFromInt(int64(absentsAllowed)).Div(weeks)
	absentsPerMonth := decimal.NewFromInt(int64(absentsAllowed)).Div(months)
	weeklyPresentNeeded := decimal.NewFromInt(int64(daysNeeded)).Div(weeks)

	return &ProjectionResult{
		TargetPercentage:     cfg.TargetPercentage,
		CurrentPercentage:    current,
		DaysRemaining:        daysRemaining,
		WorkingDaysRemaining: workingDaysRemaining,
		DaysNeeded:           daysNeeded,
		PresentNeeded:        daysNeeded,
		AbsentsAllowed:       absentsAllowed,
		AbsentsPerWeek:       absentsPerWeek,
		AbsentsPerMonth:      absentsPerMonth,
		WeeklyPresentNeeded:  weeklyPresentNeeded,
		ConfidenceScore:      confidence,
		IsAchievable:         isAchievable,
		Recommendations:      recommend(isAchievable, confidence, absentsPerMonth),
	}, nil
}

// ProjectRecord is a convenience that aggregates the whole record first.
func ProjectRecord(rec *Record, cfg TargetConfig, today DateKey) (*ProjectionResult, error) {
	return Project(OverallStats(rec), cfg, today)
}

// =============================================================================
// SIMULATION - What-if over hypothetical future days
// =============================================================================

// Simulate recomputes the current percentage and confidence score as if
// days additional days were recorded with the given status (present or
// absent). Pace and achievability fields of base are untouched.
func Simulate(base *ProjectionResult, stats RangeStats, days int, st Status) (*ProjectionResult, error) {
	if days <= 0 {
		return nil, &InvalidArgumentError{Field: "days", Value: fmt.Sprint(days), Err: ErrInvalidDays}
	}
	if st != StatusPresent && st != StatusAbsent {
		return nil, &InvalidArgumentError{Field: "status", Value: string(st), Err: ErrInvalidStatus}
	}

	newPresent := stats.Present
	newTotal := stats.Total + days
	if st == StatusPresent {
		newPresent += days
	}

	percentage := decimal.NewFromInt(int64(newPresent)).
		Div(decimal.NewFromInt(int64(newTotal))).
		Mul(hundred)

	out := *base
	out.CurrentPercentage = percentage
	out.ConfidenceScore = clampScore(percentage.Div(decimal.NewFromFloat(base.TargetPercentage)).Mul(hundred))
	return &out, nil
}

// =============================================================================
// INTERNALS
// =============================================================================

// guardedDenominator returns max(1, n/unit) as a decimal, keeping the
// fractional quotient when it exceeds one.
func guardedDenominator(n, unit int) decimal.Decimal {
	q := decimal.NewFromInt(int64(n)).Div(decimal.NewFromInt(int64(unit)))
	one := decimal.NewFromInt(1)
	if q.LessThan(one) {
		return one
	}
	return q
}

func clampScore(score decimal.Decimal) decimal.Decimal {
	if score.IsNegative() {
		return decimal.Zero
	}
	if score.GreaterThan(hundred) {
		return hundred
	}
	return score
}

func recommend(achievable bool, confidence, absentsPerMonth decimal.Decimal) []string {
	switch {
	case !achievable:
		return []string{adviceNotAchievable1, adviceNotAchievable2}
	case confidence.LessThan(decimal.NewFromInt(confidenceAdvisoryThreshold)):
		return []string{adviceLowConfidence1, adviceLowConfidence2}
	default:
		return []string{
			adviceOnTrack1,
			fmt.Sprintf(adviceOnTrackFmt, absentsPerMonth.Floor().IntPart()),
		}
	}
}
