/*
Package sqlite provides a SQLite-backed implementation of the storage
interface.

PURPOSE:
  Keeps the attendance record, the target percentage, and the seeded
  holiday list durable across sessions. The engine treats this as an
  external synchronous collaborator; when it fails, the engine degrades
  to in-memory operation.

KEY TABLES:
  attendance: date-key -> status, one row per recorded day
  settings:   single-row key/value pairs (target percentage)
  holidays:   seeded session holidays

WRITE MODEL:
  SaveData replaces the whole mapping inside one transaction. The record
  is tiny (at most one academic year of days), so wholesale replacement
  is simpler and safer than diffing, and it matches the export/import
  contract which is also wholesale.

WAL MODE:
  SQLite is opened with WAL for better crash recovery and so readers
  don't block the single writer.

USAGE:
  st, err := sqlite.New("./attendance.db")
  if err != nil { ... }
  defer st.Close()
  rec, target, state := attendance.Load(ctx, st)

SEE ALSO:
  - attendance/storage.go: Interface definition and degraded-mode load
  - attendance/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"sync"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/warp/attendance-engine/attendance"
)

// Store implements attendance.Storage using SQLite.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

const targetKey = "attendance_target"

// New creates a SQLite store at the given path. Use ":memory:" for an
// in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	-- Attendance record: one row per recorded day, last write wins
	CREATE TABLE IF NOT EXISTS attendance (
		date TEXT PRIMARY KEY,
		status TEXT NOT NULL CHECK (status IN ('present','absent','leave','holiday')),
		updated_at TEXT NOT NULL DEFAULT (datetime('now'))
	);

	CREATE INDEX IF NOT EXISTS idx_attendance_month
		ON attendance(substr(date, 1, 7));

	-- Settings: single-value configuration (target percentage)
	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TEXT NOT NULL DEFAULT (datetime('now'))
	);

	-- Seeded session holidays, read-only at the engine level
	CREATE TABLE IF NOT EXISTS holidays (
		id TEXT PRIMARY KEY,
		date TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL DEFAULT ''
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// ATTENDANCE DATA
// =============================================================================

func (s *Store) LoadData(ctx context.Context) (map[attendance.DateKey]attendance.Status, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT date, status FROM attendance ORDER BY date`)
	if err != nil {
		return nil, fmt.Errorf("load attendance: %w", err)
	}
	defer rows.Close()

	data := make(map[attendance.DateKey]attendance.Status)
	for rows.Next() {
		var date, status string
		if err := rows.Scan(&date, &status); err != nil {
			return nil, fmt.Errorf("scan attendance row: %w", err)
		}
		data[attendance.DateKey(date)] = attendance.Status(status)
	}
	return data, rows.Err()
}

// SaveData replaces the persisted mapping wholesale, atomically.
func (s *Store) SaveData(ctx context.Context, data map[attendance.DateKey]attendance.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM attendance`); err != nil {
		return fmt.Errorf("clear attendance: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO attendance (date, status) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for date, status := range data {
		if _, err := stmt.ExecContext(ctx, string(date), string(status)); err != nil {
			return fmt.Errorf("insert %s: %w", date, err)
		}
	}
	return tx.Commit()
}

// =============================================================================
// TARGET
// =============================================================================

func (s *Store) LoadTarget(ctx context.Context) (float64, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = ?`, targetKey).Scan(&value)
	if err == sql.ErrNoRows {
		return attendance.DefaultTarget, nil
	}
	if err != nil {
		return 0, fmt.Errorf("load target: %w", err)
	}

	target, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return attendance.DefaultTarget, nil // unreadable value falls back to default
	}
	return target, nil
}

func (s *Store) SaveTarget(ctx context.Context, target float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = datetime('now')`,
		targetKey, strconv.FormatFloat(target, 'f', -1, 64))
	if err != nil {
		return fmt.Errorf("save target: %w", err)
	}
	return nil
}

// =============================================================================
// HOLIDAYS
// =============================================================================

func (s *Store) Holidays(ctx context.Context) ([]attendance.DateKey, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT date FROM holidays ORDER BY date`)
	if err != nil {
		return nil, fmt.Errorf("load holidays: %w", err)
	}
	defer rows.Close()

	var dates []attendance.DateKey
	for rows.Next() {
		var date string
		if err := rows.Scan(&date); err != nil {
			return nil, fmt.Errorf("scan holiday row: %w", err)
		}
		dates = append(dates, attendance.DateKey(date))
	}
	return dates, rows.Err()
}

// SeedHolidays inserts the given holidays, skipping dates already
// present. Deployments call this once at startup with the session list.
func (s *Store) SeedHolidays(ctx context.Context, holidays map[attendance.DateKey]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed: %w", err)
	}
	defer tx.Rollback()

	for date, name := range holidays {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO holidays (id, date, name) VALUES (?, ?, ?)
			ON CONFLICT(date) DO NOTHING`,
			uuid.New().String(), string(date), name)
		if err != nil {
			return fmt.Errorf("seed holiday %s: %w", date, err)
		}
	}
	return tx.Commit()
}
