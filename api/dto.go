/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication, decoupling the
  engine's internal types from the external contract. Fractional values
  cross the boundary as float64; inside the engine they are decimals.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Request types carry validator tags; handlers run them through a
  single validator instance before touching the engine.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"github.com/warp/attendance-engine/attendance"
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

// MarkRequest records a status for one date.
type MarkRequest struct {
	Status string `json:"status" validate:"required,oneof=present absent leave holiday"`
}

// TargetRequest replaces the target percentage.
type TargetRequest struct {
	Target float64 `json:"target" validate:"required,gt=0,lte=100"`
}

// PredictionRequest asks for a projection.
type PredictionRequest struct {
	TargetPercentage  float64 `json:"target_percentage" validate:"required,gt=0,lte=100"`
	TargetDate        string  `json:"target_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	IncludeHistorical bool    `json:"include_historical"`

	// Today pins the projection date; defaults to the server clock.
	Today string `json:"today,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// SimulationRequest reruns a prediction with hypothetical extra days.
type SimulationRequest struct {
	PredictionRequest
	Days       int    `json:"days" validate:"required,gt=0"`
	DaysStatus string `json:"days_status" validate:"required,oneof=present absent"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// EntryDTO is one recorded (date, status) pair.
type EntryDTO struct {
	Date   string `json:"date"`
	Status string `json:"status"`
}

// StatsDTO mirrors attendance.RangeStats.
type StatsDTO struct {
	Present int `json:"present"`
	Absent  int `json:"absent"`
	Leave   int `json:"leave"`
	Holiday int `json:"holiday"`
	Total   int `json:"total"`
}

// ProgressDTO is the dashboard target progress summary.
type ProgressDTO struct {
	Percentage     float64 `json:"percentage"`
	DaysNeeded     int     `json:"days_needed"`
	AbsentsAllowed int     `json:"absents_allowed"`
}

// TargetDTO is the current target percentage.
type TargetDTO struct {
	Target float64 `json:"target"`
}

// PredictionDTO is the projection result.
type PredictionDTO struct {
	TargetPercentage     float64  `json:"target_percentage"`
	CurrentPercentage    float64  `json:"current_percentage"`
	DaysRemaining        int      `json:"days_remaining"`
	WorkingDaysRemaining int      `json:"working_days_remaining"`
	DaysNeeded           int      `json:"days_needed"`
	PresentNeeded        int      `json:"present_needed"`
	AbsentsAllowed       int      `json:"absents_allowed"`
	AbsentsPerWeek       float64  `json:"absents_per_week"`
	AbsentsPerMonth      float64  `json:"absents_per_month"`
	WeeklyPresentNeeded  float64  `json:"weekly_present_needed"`
	ConfidenceScore      float64  `json:"confidence_score"`
	IsAchievable         bool     `json:"is_achievable"`
	Recommendations      []string `json:"recommendations"`
}

// CellDTO is one classified calendar cell.
type CellDTO struct {
	Date  string `json:"date"`
	Class string `json:"class"`
}

// CalendarDTO is a classified month grid.
type CalendarDTO struct {
	Month        string    `json:"month"`
	FirstWeekday int       `json:"first_weekday"`
	Cells        []CellDTO `json:"cells"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toStatsDTO(s attendance.RangeStats) StatsDTO {
	return StatsDTO{
		Present: s.Present,
		Absent:  s.Absent,
		Leave:   s.Leave,
		Holiday: s.Holiday,
		Total:   s.Total,
	}
}

func toProgressDTO(p attendance.TargetProgress) ProgressDTO {
	return ProgressDTO{
		Percentage:     p.Percentage.InexactFloat64(),
		DaysNeeded:     p.DaysNeeded,
		AbsentsAllowed: p.AbsentsAllowed,
	}
}

func toPredictionDTO(r *attendance.ProjectionResult) PredictionDTO {
	return PredictionDTO{
		TargetPercentage:     r.TargetPercentage,
		CurrentPercentage:    r.CurrentPercentage.InexactFloat64(),
		DaysRemaining:        r.DaysRemaining,
		WorkingDaysRemaining: r.WorkingDaysRemaining,
		DaysNeeded:           r.DaysNeeded,
		PresentNeeded:        r.PresentNeeded,
		AbsentsAllowed:       r.AbsentsAllowed,
		AbsentsPerWeek:       r.AbsentsPerWeek.InexactFloat64(),
		AbsentsPerMonth:      r.AbsentsPerMonth.InexactFloat64(),
		WeeklyPresentNeeded:  r.WeeklyPresentNeeded.InexactFloat64(),
		ConfidenceScore:      r.ConfidenceScore.InexactFloat64(),
		IsAchievable:         r.IsAchievable,
		Recommendations:      r.Recommendations,
	}
}

func toEntryDTOs(entries []attendance.Entry) []EntryDTO {
	dtos := make([]EntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = EntryDTO{Date: string(e.Date), Status: string(e.Status)}
	}
	return dtos
}

func toCalendarDTO(m attendance.MonthKey, cells []attendance.Cell) CalendarDTO {
	dto := CalendarDTO{
		Month:        string(m),
		FirstWeekday: m.FirstWeekday(),
		Cells:        make([]CellDTO, len(cells)),
	}
	for i, c := range cells {
		dto.Cells[i] = CellDTO{Date: string(c.Date), Class: string(c.Class)}
	}
	return dto
}
