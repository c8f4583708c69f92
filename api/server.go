/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the chi router, middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the frontend

SECURITY NOTE:
  Single-user tool, no authentication. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Attendance record
		r.Route("/attendance", func(r chi.Router) {
			r.Get("/", h.ListAttendance)
			r.Put("/{date}", h.MarkAttendance)
			r.Post("/reset", h.ResetAttendance)
		})

		// Statistics
		r.Get("/stats", h.GetStats)
		r.Get("/progress", h.GetProgress)

		// Target
		r.Route("/target", func(r chi.Router) {
			r.Get("/", h.GetTarget)
			r.Put("/", h.PutTarget)
		})

		// Predictions
		r.Route("/predictions", func(r chi.Router) {
			r.Post("/", h.Predict)
			r.Post("/simulate", h.SimulatePrediction)
		})

		// Calendar
		r.Get("/calendar/{month}", h.GetCalendar)
		r.Get("/holidays", h.ListHolidays)

		// Export / import
		r.Route("/export", func(r chi.Router) {
			r.Get("/csv", h.ExportCSV)
			r.Get("/backup", h.ExportBackup)
		})
		r.Post("/import", h.Import)

		// Live updates
		r.Get("/stream", h.Stream.Handle)
	})

	return r
}
