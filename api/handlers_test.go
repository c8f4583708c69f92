package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/attendance-engine/attendance"
	"github.com/warp/attendance-engine/attendance/store"
)

// =============================================================================
// TEST HARNESS
// =============================================================================

type harness struct {
	handler *Handler
	store   *store.Memory
	router  http.Handler
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	mem := store.NewMemory()
	h := NewHandler(attendance.NewRecord(), mem, attendance.DefaultHolidays(),
		attendance.DefaultTarget, log.New(io.Discard))
	h.now = func() time.Time {
		return time.Date(2025, 9, 1, 10, 0, 0, 0, time.UTC)
	}
	return &harness{handler: h, store: mem, router: NewRouter(h)}
}

func (h *harness) do(t *testing.T, method, path string, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(w.Body).Decode(&out))
	return out
}

// =============================================================================
// ATTENDANCE ENDPOINTS
// =============================================================================

func TestMarkAndListAttendance(t *testing.T) {
	h := newHarness(t)

	w := h.do(t, http.MethodPut, "/api/attendance/2025-09-01", `{"status":"present"}`)
	require.Equal(t, http.StatusOK, w.Code)
	entry := decode[EntryDTO](t, w)
	assert.Equal(t, "2025-09-01", entry.Date)
	assert.Equal(t, "present", entry.Status)

	h.do(t, http.MethodPut, "/api/attendance/2025-09-02", `{"status":"absent"}`)

	w = h.do(t, http.MethodGet, "/api/attendance", "")
	require.Equal(t, http.StatusOK, w.Code)
	entries := decode[[]EntryDTO](t, w)
	require.Len(t, entries, 2)
	assert.Equal(t, "2025-09-01", entries[0].Date)
	assert.Equal(t, "2025-09-02", entries[1].Date)
}

func TestMarkAttendance_PersistsThroughObserver(t *testing.T) {
	h := newHarness(t)

	h.do(t, http.MethodPut, "/api/attendance/2025-09-01", `{"status":"leave"}`)

	persisted, err := h.store.LoadData(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[attendance.DateKey]attendance.Status{
		"2025-09-01": attendance.StatusLeave,
	}, persisted)
}

func TestMarkAttendance_Validation(t *testing.T) {
	h := newHarness(t)

	tests := []struct {
		name string
		path string
		body string
	}{
		{"unknown status", "/api/attendance/2025-09-01", `{"status":"late"}`},
		{"missing status", "/api/attendance/2025-09-01", `{}`},
		{"malformed body", "/api/attendance/2025-09-01", `{not json`},
		{"bad date", "/api/attendance/09-01-2025", `{"status":"present"}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := h.do(t, http.MethodPut, tc.path, tc.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}

	// Nothing was recorded by the rejected requests.
	assert.Equal(t, 0, h.handler.Record.Len())
}

func TestResetAttendance(t *testing.T) {
	h := newHarness(t)
	h.do(t, http.MethodPut, "/api/attendance/2025-09-01", `{"status":"present"}`)

	w := h.do(t, http.MethodPost, "/api/attendance/reset", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, h.handler.Record.Len())

	persisted, err := h.store.LoadData(context.Background())
	require.NoError(t, err)
	assert.Empty(t, persisted)
}

// =============================================================================
// STATS + PROGRESS ENDPOINTS
// =============================================================================

func TestGetStats_OverallAndMonth(t *testing.T) {
	h := newHarness(t)
	h.do(t, http.MethodPut, "/api/attendance/2025-09-01", `{"status":"present"}`)
	h.do(t, http.MethodPut, "/api/attendance/2025-09-02", `{"status":"absent"}`)
	h.do(t, http.MethodPut, "/api/attendance/2025-10-01", `{"status":"present"}`)

	overall := decode[StatsDTO](t, h.do(t, http.MethodGet, "/api/stats", ""))
	assert.Equal(t, 2, overall.Present)
	assert.Equal(t, 3, overall.Total)

	sept := decode[StatsDTO](t, h.do(t, http.MethodGet, "/api/stats?month=2025-09", ""))
	assert.Equal(t, 1, sept.Present)
	assert.Equal(t, 1, sept.Absent)
	assert.Equal(t, 2, sept.Total)

	w := h.do(t, http.MethodGet, "/api/stats?month=september", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetProgress(t *testing.T) {
	h := newHarness(t)
	h.do(t, http.MethodPut, "/api/attendance/2025-09-01", `{"status":"present"}`)
	h.do(t, http.MethodPut, "/api/attendance/2025-09-02", `{"status":"absent"}`)

	progress := decode[ProgressDTO](t, h.do(t, http.MethodGet, "/api/progress", ""))
	assert.InDelta(t, 50.0, progress.Percentage, 1e-9)
}

// =============================================================================
// TARGET ENDPOINTS
// =============================================================================

func TestTargetRoundTrip(t *testing.T) {
	h := newHarness(t)

	got := decode[TargetDTO](t, h.do(t, http.MethodGet, "/api/target", ""))
	assert.Equal(t, attendance.DefaultTarget, got.Target)

	w := h.do(t, http.MethodPut, "/api/target", `{"target":85}`)
	require.Equal(t, http.StatusOK, w.Code)

	got = decode[TargetDTO](t, h.do(t, http.MethodGet, "/api/target", ""))
	assert.Equal(t, 85.0, got.Target)

	persisted, err := h.store.LoadTarget(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 85.0, persisted)
}

func TestPutTarget_Validation(t *testing.T) {
	h := newHarness(t)

	for _, body := range []string{`{"target":0}`, `{"target":-5}`, `{"target":101}`, `{}`} {
		w := h.do(t, http.MethodPut, "/api/target", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, "body %s", body)
	}

	// The rejected values never replaced the target.
	assert.Equal(t, attendance.DefaultTarget, h.handler.Target())
}

// =============================================================================
// PREDICTION ENDPOINTS
// =============================================================================

func TestPredict(t *testing.T) {
	h := newHarness(t)

	body := `{"target_percentage":75,"target_date":"2025-10-01","include_historical":true,"today":"2025-09-01"}`
	w := h.do(t, http.MethodPost, "/api/predictions", body)
	require.Equal(t, http.StatusOK, w.Code)

	pred := decode[PredictionDTO](t, w)
	assert.Equal(t, 30, pred.DaysRemaining)
	assert.Equal(t, 25, pred.WorkingDaysRemaining)
	assert.Equal(t, 19, pred.DaysNeeded)
	assert.True(t, pred.IsAchievable)
	assert.Equal(t, 6, pred.AbsentsAllowed)
	assert.NotEmpty(t, pred.Recommendations)
}

func TestPredict_Validation(t *testing.T) {
	h := newHarness(t)

	for _, body := range []string{
		`{"target_percentage":0}`,
		`{"target_percentage":120}`,
		`{"target_percentage":75,"target_date":"soon"}`,
	} {
		w := h.do(t, http.MethodPost, "/api/predictions", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, "body %s", body)
	}
}

func TestSimulatePrediction(t *testing.T) {
	h := newHarness(t)
	h.do(t, http.MethodPut, "/api/attendance/2025-09-01", `{"status":"present"}`)
	h.do(t, http.MethodPut, "/api/attendance/2025-09-02", `{"status":"absent"}`)

	body := `{"target_percentage":75,"target_date":"2025-10-02","include_historical":true,"today":"2025-09-02","days":2,"days_status":"present"}`
	w := h.do(t, http.MethodPost, "/api/predictions/simulate", body)
	require.Equal(t, http.StatusOK, w.Code)

	pred := decode[PredictionDTO](t, w)
	assert.InDelta(t, 75.0, pred.CurrentPercentage, 1e-9)
	assert.InDelta(t, 100.0, pred.ConfidenceScore, 1e-9)

	// leave is a recordable status but not a simulatable one.
	bad := strings.Replace(body, `"present"`, `"leave"`, 1)
	w = h.do(t, http.MethodPost, "/api/predictions/simulate", bad)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// =============================================================================
// CALENDAR ENDPOINTS
// =============================================================================

func TestGetCalendar(t *testing.T) {
	h := newHarness(t)
	h.do(t, http.MethodPut, "/api/attendance/2025-09-01", `{"status":"present"}`)

	cal := decode[CalendarDTO](t, h.do(t, http.MethodGet, "/api/calendar/2025-09", ""))
	assert.Equal(t, "2025-09", cal.Month)
	assert.Equal(t, 1, cal.FirstWeekday)
	require.Len(t, cal.Cells, 30)
	assert.Equal(t, "present", cal.Cells[0].Class)
	assert.Equal(t, "sunday", cal.Cells[6].Class)
	assert.Equal(t, "pending", cal.Cells[1].Class)
}

func TestGetCalendar_ClampsToSession(t *testing.T) {
	h := newHarness(t)

	cal := decode[CalendarDTO](t, h.do(t, http.MethodGet, "/api/calendar/2024-01", ""))
	assert.Equal(t, "2025-04", cal.Month)

	cal = decode[CalendarDTO](t, h.do(t, http.MethodGet, "/api/calendar/2027-01", ""))
	assert.Equal(t, "2026-03", cal.Month)
}

func TestListHolidays(t *testing.T) {
	h := newHarness(t)

	w := h.do(t, http.MethodGet, "/api/holidays", "")
	require.Equal(t, http.StatusOK, w.Code)
	out := decode[map[string][]string](t, w)
	assert.Equal(t, []string{
		"2025-08-15", "2025-10-02", "2025-10-24", "2025-12-25", "2026-01-26",
	}, out["holidays"])
}

// =============================================================================
// EXPORT + IMPORT ENDPOINTS
// =============================================================================

func TestExportCSVEndpoint(t *testing.T) {
	h := newHarness(t)
	h.do(t, http.MethodPut, "/api/attendance/2025-09-01", `{"status":"present"}`)

	w := h.do(t, http.MethodGet, "/api/export/csv?month=2025-09", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attendance-2025-09.csv")
	assert.Equal(t, "Date,Status,Day\n2025-09-01,present,Monday", w.Body.String())
}

func TestBackupAndImportEndpoints(t *testing.T) {
	h := newHarness(t)
	h.do(t, http.MethodPut, "/api/attendance/2025-09-01", `{"status":"present"}`)
	h.do(t, http.MethodPut, "/api/target", `{"target":80}`)

	w := h.do(t, http.MethodGet, "/api/export/backup", "")
	require.Equal(t, http.StatusOK, w.Code)
	backup := w.Body.Bytes()

	// Restore into a fresh engine.
	fresh := newHarness(t)
	w = fresh.do(t, http.MethodPost, "/api/import", string(backup))
	require.Equal(t, http.StatusOK, w.Code)
	result := decode[map[string]bool](t, w)
	assert.True(t, result["data_replaced"])
	assert.True(t, result["target_replaced"])

	assert.Equal(t, 80.0, fresh.handler.Target())
	st, ok := fresh.handler.Record.Status("2025-09-01")
	require.True(t, ok)
	assert.Equal(t, attendance.StatusPresent, st)
}

func TestImport_RejectsBadPayloads(t *testing.T) {
	h := newHarness(t)

	w := h.do(t, http.MethodPost, "/api/import", `{not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = h.do(t, http.MethodPost, "/api/import", `{"attendanceData":{"2025-09-01":"late"}}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// =============================================================================
// DEGRADED MODE
// =============================================================================

func TestDegradedHeaderAfterFailedSave(t *testing.T) {
	// GIVEN: A store whose next write fails
	// WHEN: A mutation goes through
	// THEN: It still succeeds in memory and responses flag degradation
	//       until a later write succeeds

	h := newHarness(t)
	h.store.FailNext(errors.New("db locked"))

	w := h.do(t, http.MethodPut, "/api/attendance/2025-09-01", `{"status":"present"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, h.handler.Record.Len())

	w = h.do(t, http.MethodGet, "/api/stats", "")
	assert.Equal(t, "true", w.Header().Get("X-Storage-Degraded"))

	// Next mutation persists fine and clears the flag.
	h.do(t, http.MethodPut, "/api/attendance/2025-09-02", `{"status":"absent"}`)
	w = h.do(t, http.MethodGet, "/api/stats", "")
	assert.Empty(t, w.Header().Get("X-Storage-Degraded"))
}
