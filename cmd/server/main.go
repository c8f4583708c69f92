/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the attendance engine server. Handles
  configuration, dependency wiring, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load .env (optional) and parse command-line flags
  2. Open the SQLite store and seed session holidays
  3. Hydrate the record and target (degrades to empty on failure)
  4. Wire the API handler and router
  5. Start the server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (default: 8080, env PORT)
  -db      SQLite database path (default: attendance.db, env DB_PATH)
           Use ":memory:" for an in-memory database

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close the database connection

SEE ALSO:
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"github.com/warp/attendance-engine/api"
	"github.com/warp/attendance-engine/attendance"
	"github.com/warp/attendance-engine/store/sqlite"
)

// sessionHolidayNames labels the seeded 2025-26 session holidays.
var sessionHolidayNames = map[attendance.DateKey]string{
	"2025-08-15": "Independence Day",
	"2025-10-02": "Gandhi Jayanti",
	"2025-10-24": "Diwali",
	"2025-12-25": "Christmas",
	"2026-01-26": "Republic Day",
}

func main() {
	// .env is optional; flags and real env still apply without it.
	_ = godotenv.Load()

	port := flag.Int("port", envInt("PORT", 8080), "HTTP server port")
	dbPath := flag.String("db", envStr("DB_PATH", "attendance.db"), "SQLite database path")
	flag.Parse()

	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "attendance",
	})

	ctx := context.Background()

	// Storage
	store, err := sqlite.New(*dbPath)
	if err != nil {
		logger.Fatal("failed to initialize database", "err", err)
	}
	defer store.Close()

	if err := store.SeedHolidays(ctx, sessionHolidayNames); err != nil {
		logger.Warn("failed to seed holidays", "err", err)
	}

	// Hydrate; storage failure degrades to an empty in-memory record.
	rec, target, state := attendance.Load(ctx, store)
	if state.Degraded {
		logger.Warn("storage unavailable, starting empty", "err", state.Err)
	} else {
		logger.Info("record loaded", "entries", rec.Len(), "target", target)
	}

	holidays := attendance.DefaultHolidays()
	if dates, err := store.Holidays(ctx); err == nil && len(dates) > 0 {
		holidays = attendance.NewHolidaySet(dates...)
	}

	handler := api.NewHandler(rec, store, holidays, target, logger)
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", "addr", fmt.Sprintf("http://localhost:%d", *port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", "err", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("forced shutdown", "err", err)
	}
	logger.Info("server stopped")
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
