package attendance_test

import (
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/attendance-engine/attendance"
)

// =============================================================================
// CSV EXPORT
// =============================================================================

func TestExportCSV_HeaderOnlyForEmptyMonth(t *testing.T) {
	csv := attendance.ExportCSV(attendance.NewRecord(), "2025-09")
	assert.Equal(t, "Date,Status,Day", csv)
}

func TestExportCSV_RowsInAscendingOrder(t *testing.T) {
	// GIVEN: Three September entries recorded out of order, plus an
	//        October entry that must not leak into the September export

	rec := recordWith(t, map[attendance.DateKey]attendance.Status{
		"2025-09-15": attendance.StatusAbsent,
		"2025-09-01": attendance.StatusPresent,
		"2025-09-07": attendance.StatusHoliday,
		"2025-10-01": attendance.StatusPresent,
	})

	csv := attendance.ExportCSV(rec, "2025-09")

	lines := strings.Split(csv, "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Date,Status,Day", lines[0])
	assert.Equal(t, "2025-09-01,present,Monday", lines[1])
	assert.Equal(t, "2025-09-07,holiday,Sunday", lines[2])
	assert.Equal(t, "2025-09-15,absent,Monday", lines[3])
}

// =============================================================================
// JSON BACKUP
// =============================================================================

func TestBackup_RoundTrip(t *testing.T) {
	// GIVEN: A record, a custom target, and the default holiday list
	// WHEN: Exporting a backup and importing it into a fresh record
	// THEN: The fresh record and target match the original exactly

	entries := map[attendance.DateKey]attendance.Status{
		"2025-09-01": attendance.StatusPresent,
		"2025-09-02": attendance.StatusLeave,
		"2025-09-03": attendance.StatusAbsent,
	}
	rec := recordWith(t, entries)

	backup := attendance.NewBackup(rec, 80, attendance.DefaultHolidays(), time.Date(2025, 9, 4, 12, 0, 0, 0, time.UTC))
	raw, err := backup.Marshal()
	require.NoError(t, err)

	restored := attendance.NewRecord()
	result, err := attendance.Import(restored, raw)
	require.NoError(t, err)

	assert.True(t, result.DataReplaced)
	assert.True(t, result.TargetReplaced)
	assert.Equal(t, 80.0, result.Target)
	assert.Equal(t, entries, restored.Snapshot())
}

func TestBackup_WireShape(t *testing.T) {
	rec := recordWith(t, map[attendance.DateKey]attendance.Status{
		"2025-09-01": attendance.StatusPresent,
	})

	backup := attendance.NewBackup(rec, 75, attendance.NewHolidaySet("2025-12-25"), time.Date(2025, 9, 4, 12, 0, 0, 0, time.UTC))
	raw, err := backup.Marshal()
	require.NoError(t, err)

	var wire map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &wire))
	for _, key := range []string{"attendanceData", "target", "holidays", "exportDate", "exportId"} {
		assert.Contains(t, wire, key)
	}

	var exportDate string
	require.NoError(t, json.Unmarshal(wire["exportDate"], &exportDate))
	assert.Equal(t, "2025-09-04T12:00:00Z", exportDate)
}

// =============================================================================
// IMPORT
// =============================================================================

func TestImport_ReplacesWholesale(t *testing.T) {
	// GIVEN: A record with an entry the imported payload does not carry
	// THEN: The pre-existing entry is gone after import, not merged

	rec := recordWith(t, map[attendance.DateKey]attendance.Status{
		"2025-08-01": attendance.StatusPresent,
	})

	_, err := attendance.Import(rec, []byte(`{"attendanceData":{"2025-09-01":"absent"},"target":60}`))
	require.NoError(t, err)

	_, ok := rec.Status("2025-08-01")
	assert.False(t, ok)
	st, ok := rec.Status("2025-09-01")
	require.True(t, ok)
	assert.Equal(t, attendance.StatusAbsent, st)
}

func TestImport_PartialPayloads(t *testing.T) {
	t.Run("data only", func(t *testing.T) {
		rec := attendance.NewRecord()
		result, err := attendance.Import(rec, []byte(`{"attendanceData":{"2025-09-01":"present"}}`))
		require.NoError(t, err)
		assert.True(t, result.DataReplaced)
		assert.False(t, result.TargetReplaced)
	})

	t.Run("target only", func(t *testing.T) {
		rec := recordWith(t, map[attendance.DateKey]attendance.Status{
			"2025-09-01": attendance.StatusPresent,
		})
		result, err := attendance.Import(rec, []byte(`{"target":85}`))
		require.NoError(t, err)
		assert.False(t, result.DataReplaced)
		assert.True(t, result.TargetReplaced)
		assert.Equal(t, 85.0, result.Target)
		// The record is untouched when the payload has no data key.
		assert.Equal(t, 1, rec.Len())
	})

	t.Run("unknown keys ignored", func(t *testing.T) {
		result, err := attendance.Import(attendance.NewRecord(), []byte(`{"exportId":"abc","exportDate":"2025-09-04","holidays":["2025-12-25"]}`))
		require.NoError(t, err)
		assert.False(t, result.DataReplaced)
		assert.False(t, result.TargetReplaced)
	})
}

func TestImport_RejectsMalformedPayloads(t *testing.T) {
	t.Run("unparseable JSON", func(t *testing.T) {
		_, err := attendance.Import(attendance.NewRecord(), []byte(`{not json`))
		assert.ErrorIs(t, err, attendance.ErrInvalidBackup)
	})

	t.Run("bad status inside data", func(t *testing.T) {
		rec := recordWith(t, map[attendance.DateKey]attendance.Status{
			"2025-08-01": attendance.StatusPresent,
		})
		_, err := attendance.Import(rec, []byte(`{"attendanceData":{"2025-09-01":"late"}}`))
		assert.ErrorIs(t, err, attendance.ErrInvalidStatus)
		// Rejected import leaves the record as it was.
		assert.Equal(t, 1, rec.Len())
	})

	t.Run("bad date inside data", func(t *testing.T) {
		_, err := attendance.Import(attendance.NewRecord(), []byte(`{"attendanceData":{"2025-13-40":"present"}}`))
		assert.ErrorIs(t, err, attendance.ErrInvalidDate)
	})

	t.Run("out-of-range target", func(t *testing.T) {
		_, err := attendance.Import(attendance.NewRecord(), []byte(`{"target":150}`))
		assert.ErrorIs(t, err, attendance.ErrInvalidTarget)
	})
}
