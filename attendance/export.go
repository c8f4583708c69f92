/*
export.go - CSV month export and JSON backup export/import

PURPOSE:
  Serializes the record for the two export surfaces the product has: a
  per-month CSV and a full JSON backup that can be imported back.

CSV CONTRACT:
  Header "Date,Status,Day"; one row per recorded date of the month in
  ascending order; Day is the full English weekday name. Fields never
  contain commas, so no quoting. A month with no recorded entries
  yields exactly the header row.

BACKUP CONTRACT:
  {attendanceData, target, holidays, exportDate} plus an exportId the
  import side ignores. Import replaces the record wholesale when
  attendanceData is present and the target when target is present;
  unknown keys are ignored, not errors.
*/
package attendance

import (
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// =============================================================================
// CSV EXPORT
// =============================================================================

const csvHeader = "Date,Status,Day"

// ExportCSV renders one month of the record as CSV.
func ExportCSV(rec *Record, m MonthKey) string {
	var b strings.Builder
	b.WriteString(csvHeader)

	inMonth := InMonth(m)
	rec.Range(func(e Entry) bool {
		if inMonth(e.Date) {
			b.WriteString("\n")
			b.WriteString(string(e.Date))
			b.WriteString(",")
			b.WriteString(string(e.Status))
			b.WriteString(",")
			b.WriteString(e.Date.WeekdayName())
		}
		return true
	})
	return b.String()
}

// =============================================================================
// JSON BACKUP
// =============================================================================

// Backup is the full-export shape.
type Backup struct {
	AttendanceData map[DateKey]Status `json:"attendanceData"`
	Target         float64            `json:"target"`
	Holidays       []DateKey          `json:"holidays"`
	ExportDate     string             `json:"exportDate"`
	ExportID       string             `json:"exportId"`
}

// NewBackup snapshots the record, target and holiday list, stamped with
// the export time.
func NewBackup(rec *Record, target float64, holidays HolidaySet, at time.Time) Backup {
	return Backup{
		AttendanceData: rec.Snapshot(),
		Target:         target,
		Holidays:       holidays.Dates(),
		ExportDate:     at.UTC().Format(time.RFC3339),
		ExportID:       uuid.New().String(),
	}
}

// Marshal renders the backup as indented JSON.
func (b Backup) Marshal() ([]byte, error) {
	return json.MarshalIndent(b, "", "  ")
}

// ImportResult reports which parts of an import payload were applied.
type ImportResult struct {
	DataReplaced   bool
	TargetReplaced bool
	Target         float64
}

// Import applies a backup payload to the record. A payload with an
// attendanceData key replaces the record wholesale; a payload with a
// target key replaces the target. Missing and unknown keys are ignored.
// Malformed entries inside attendanceData reject the whole import.
func Import(rec *Record, raw []byte) (ImportResult, error) {
	var payload struct {
		AttendanceData map[DateKey]Status `json:"attendanceData"`
		Target         *float64           `json:"target"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return ImportResult{}, &InvalidArgumentError{Field: "backup", Value: "unparseable JSON", Err: ErrInvalidBackup}
	}

	var result ImportResult
	if payload.AttendanceData != nil {
		if err := rec.ReplaceAll(payload.AttendanceData); err != nil {
			return ImportResult{}, err
		}
		result.DataReplaced = true
	}
	if payload.Target != nil {
		if err := validateTarget(*payload.Target); err != nil {
			return ImportResult{}, err
		}
		result.TargetReplaced = true
		result.Target = *payload.Target
	}
	return result, nil
}
