/*
handlers.go - HTTP API handlers for the attendance engine

PURPOSE:
  Exposes the attendance engine via REST. Handles HTTP request/response,
  JSON serialization, validation, and delegates to the engine.

ENDPOINTS:
  Attendance:
    GET    /api/attendance              All recorded entries
    PUT    /api/attendance/{date}       Mark a day
    POST   /api/attendance/reset        Clear the record

  Statistics:
    GET    /api/stats                   Overall counts
    GET    /api/stats?month=YYYY-MM     Month counts
    GET    /api/progress                Dashboard target progress

  Target:
    GET    /api/target                  Current target percentage
    PUT    /api/target                  Replace target percentage

  Predictions:
    POST   /api/predictions             Run projection
    POST   /api/predictions/simulate    Projection with hypothetical days

  Calendar:
    GET    /api/calendar/{month}        Classified month grid
    GET    /api/holidays                Session holiday list

  Export:
    GET    /api/export/csv?month=       CSV month export
    GET    /api/export/backup           Full JSON backup
    POST   /api/import                  Restore from backup

PERSISTENCE:
  The handler subscribes to record mutations and writes back
  immediately. When the store is down, mutations still succeed in
  memory; responses carry an X-Storage-Degraded header until a write
  succeeds again.

ERROR HANDLING:
  - 400: invalid argument (bad date, status, target, payload)
  - 404: unknown route
  - 500: internal errors

SEE ALSO:
  - dto.go: Request/response shapes
  - server.go: Router setup and middleware
  - stream.go: Websocket stats push
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/warp/attendance-engine/attendance"
)

// maxImportBytes bounds backup uploads. A full session is a few KB.
const maxImportBytes = 1 << 20

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Record   *attendance.Record
	Storage  attendance.Storage
	Holidays attendance.HolidaySet
	Session  attendance.Session
	Stream   *Stream
	Log      *log.Logger

	validate *validator.Validate
	now      func() time.Time

	mu       sync.RWMutex
	target   float64
	degraded bool
}

// NewHandler wires the handler onto the record: every mutation is
// persisted and pushed to stream subscribers.
func NewHandler(rec *attendance.Record, storage attendance.Storage, holidays attendance.HolidaySet, target float64, logger *log.Logger) *Handler {
	h := &Handler{
		Record:   rec,
		Storage:  storage,
		Holidays: holidays,
		Session:  attendance.DefaultSession,
		Stream:   NewStream(logger),
		Log:      logger,
		validate: validator.New(),
		now:      time.Now,
		target:   target,
	}

	rec.Subscribe(func(attendance.Event) {
		h.persistData()
		h.broadcastStats()
	})
	return h
}

// Target returns the current target percentage.
func (h *Handler) Target() float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.target
}

func (h *Handler) setTarget(t float64) {
	h.mu.Lock()
	h.target = t
	h.mu.Unlock()
}

// =============================================================================
// ATTENDANCE HANDLERS
// =============================================================================

// ListAttendance returns all recorded entries in ascending date order.
func (h *Handler) ListAttendance(w http.ResponseWriter, r *http.Request) {
	h.respond(w, http.StatusOK, toEntryDTOs(h.Record.Entries()))
}

// MarkAttendance records a status for the date in the URL.
func (h *Handler) MarkAttendance(w http.ResponseWriter, r *http.Request) {
	var req MarkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid status", err)
		return
	}

	date, status, err := h.Record.Mark(chi.URLParam(r, "date"), req.Status)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}

	h.respond(w, http.StatusOK, EntryDTO{Date: string(date), Status: string(status)})
}

// ResetAttendance clears the whole record. Idempotent.
func (h *Handler) ResetAttendance(w http.ResponseWriter, r *http.Request) {
	h.Record.Reset()
	h.respond(w, http.StatusOK, map[string]bool{"reset": true})
}

// =============================================================================
// STATISTICS HANDLERS
// =============================================================================

// GetStats returns overall counts, or month counts when ?month= is set.
func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	if monthParam := r.URL.Query().Get("month"); monthParam != "" {
		month, err := attendance.ParseMonthKey(monthParam)
		if err != nil {
			h.writeEngineError(w, err)
			return
		}
		h.respond(w, http.StatusOK, toStatsDTO(attendance.MonthStats(h.Record, month)))
		return
	}
	h.respond(w, http.StatusOK, toStatsDTO(attendance.OverallStats(h.Record)))
}

// GetProgress returns the dashboard target progress summary.
func (h *Handler) GetProgress(w http.ResponseWriter, r *http.Request) {
	progress, err := attendance.Progress(h.Record, h.Target())
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	h.respond(w, http.StatusOK, toProgressDTO(progress))
}

// =============================================================================
// TARGET HANDLERS
// =============================================================================

// GetTarget returns the current target percentage.
func (h *Handler) GetTarget(w http.ResponseWriter, r *http.Request) {
	h.respond(w, http.StatusOK, TargetDTO{Target: h.Target()})
}

// PutTarget replaces the target percentage. Last value wins.
func (h *Handler) PutTarget(w http.ResponseWriter, r *http.Request) {
	var req TargetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Target must be in (0, 100]", err)
		return
	}

	h.setTarget(req.Target)
	h.persistTarget(req.Target)
	h.broadcastStats()

	h.respond(w, http.StatusOK, TargetDTO{Target: req.Target})
}

// =============================================================================
// PREDICTION HANDLERS
// =============================================================================

// Predict runs the target projection.
func (h *Handler) Predict(w http.ResponseWriter, r *http.Request) {
	var req PredictionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid prediction request", err)
		return
	}

	result, err := h.project(req)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	h.respond(w, http.StatusOK, toPredictionDTO(result))
}

// SimulatePrediction reruns a projection as if extra days were recorded.
func (h *Handler) SimulatePrediction(w http.ResponseWriter, r *http.Request) {
	var req SimulationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid simulation request", err)
		return
	}

	base, err := h.project(req.PredictionRequest)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}

	stats := attendance.OverallStats(h.Record)
	result, err := attendance.Simulate(base, stats, req.Days, attendance.Status(req.DaysStatus))
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	h.respond(w, http.StatusOK, toPredictionDTO(result))
}

func (h *Handler) project(req PredictionRequest) (*attendance.ProjectionResult, error) {
	today := attendance.DateKeyFromTime(h.now())
	if req.Today != "" {
		today = attendance.DateKey(req.Today)
	}
	cfg := attendance.TargetConfig{
		TargetPercentage:  req.TargetPercentage,
		TargetDate:        attendance.DateKey(req.TargetDate),
		IncludeHistorical: req.IncludeHistorical,
	}
	return attendance.ProjectRecord(h.Record, cfg, today)
}

// =============================================================================
// CALENDAR HANDLERS
// =============================================================================

// GetCalendar returns the classified grid for a month, clamped to the
// academic session.
func (h *Handler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	month, err := attendance.ParseMonthKey(chi.URLParam(r, "month"))
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	month = h.Session.ClampMonth(month)

	cells := attendance.MonthCells(h.Record, h.Holidays, month)
	h.respond(w, http.StatusOK, toCalendarDTO(month, cells))
}

// ListHolidays returns the session holiday dates.
func (h *Handler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	dates := h.Holidays.Dates()
	out := make([]string, len(dates))
	for i, d := range dates {
		out[i] = string(d)
	}
	h.respond(w, http.StatusOK, map[string][]string{"holidays": out})
}

// =============================================================================
// EXPORT HANDLERS
// =============================================================================

// ExportCSV streams one month of the record as CSV.
func (h *Handler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	month, err := attendance.ParseMonthKey(r.URL.Query().Get("month"))
	if err != nil {
		h.writeEngineError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="attendance-%s.csv"`, month))
	io.WriteString(w, attendance.ExportCSV(h.Record, month))
}

// ExportBackup streams the full JSON backup.
func (h *Handler) ExportBackup(w http.ResponseWriter, r *http.Request) {
	backup := attendance.NewBackup(h.Record, h.Target(), h.Holidays, h.now())
	body, err := backup.Marshal()
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to build backup", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="attendance-backup.json"`)
	w.Write(body)
}

// Import restores the record and/or target from a backup payload.
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxImportBytes))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Failed to read body", err)
		return
	}

	result, err := attendance.Import(h.Record, body)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	if result.TargetReplaced {
		h.setTarget(result.Target)
		h.persistTarget(result.Target)
	}

	h.respond(w, http.StatusOK, map[string]bool{
		"data_replaced":   result.DataReplaced,
		"target_replaced": result.TargetReplaced,
	})
}

// =============================================================================
// PERSISTENCE + BROADCAST
// =============================================================================

// persistContext bounds each write-back so a wedged store cannot stall
// the mutating request.
func persistContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 5*time.Second)
}

func (h *Handler) persistData() {
	ctx, cancel := persistContext()
	defer cancel()

	if err := h.Storage.SaveData(ctx, h.Record.Snapshot()); err != nil {
		h.Log.Warn("attendance save failed, running in memory", "err", err)
		h.setDegraded(true)
		return
	}
	h.setDegraded(false)
}

func (h *Handler) persistTarget(target float64) {
	ctx, cancel := persistContext()
	defer cancel()

	if err := h.Storage.SaveTarget(ctx, target); err != nil {
		h.Log.Warn("target save failed, running in memory", "err", err)
		h.setDegraded(true)
		return
	}
	h.setDegraded(false)
}

func (h *Handler) broadcastStats() {
	progress, err := attendance.Progress(h.Record, h.Target())
	if err != nil {
		return // target is always validated before it gets here
	}
	h.Stream.Broadcast(StreamUpdate{
		Stats:    toStatsDTO(attendance.OverallStats(h.Record)),
		Progress: toProgressDTO(progress),
		Target:   h.Target(),
	})
}

func (h *Handler) setDegraded(v bool) {
	h.mu.Lock()
	h.degraded = v
	h.mu.Unlock()
}

func (h *Handler) isDegraded() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.degraded
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func (h *Handler) respond(w http.ResponseWriter, status int, v any) {
	if h.isDegraded() {
		w.Header().Set("X-Storage-Degraded", "true")
	}
	writeJSON(w, status, v)
}

func (h *Handler) writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case attendance.IsInvalidArgument(err):
		h.writeError(w, http.StatusBadRequest, err.Error(), nil)
	case attendance.IsStorageUnavailable(err):
		h.writeError(w, http.StatusServiceUnavailable, err.Error(), nil)
	default:
		h.writeError(w, http.StatusInternalServerError, "Internal error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, msg string, err error) {
	if err != nil {
		h.Log.Error(msg, "err", err)
	}
	writeJSON(w, status, ErrorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
