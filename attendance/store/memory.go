// Package store provides Storage implementations.
package store

import (
	"context"
	"sync"

	"github.com/warp/attendance-engine/attendance"
)

// =============================================================================
// MEMORY STORAGE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu       sync.RWMutex
	data     map[attendance.DateKey]attendance.Status
	target   float64
	hasData  bool
	holidays []attendance.DateKey

	// FailNext simulates an unavailable store: when set, the next
	// operation fails with the given error and clears the flag.
	failNext error
}

func NewMemory() *Memory {
	return &Memory{target: attendance.DefaultTarget}
}

// FailNext makes the next storage operation return err.
func (m *Memory) FailNext(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failNext = err
}

func (m *Memory) takeFailure() error {
	err := m.failNext
	m.failNext = nil
	return err
}

func (m *Memory) LoadData(_ context.Context) (map[attendance.DateKey]attendance.Status, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFailure(); err != nil {
		return nil, err
	}

	out := make(map[attendance.DateKey]attendance.Status, len(m.data))
	for d, st := range m.data {
		out[d] = st
	}
	return out, nil
}

func (m *Memory) SaveData(_ context.Context, data map[attendance.DateKey]attendance.Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFailure(); err != nil {
		return err
	}

	m.data = make(map[attendance.DateKey]attendance.Status, len(data))
	for d, st := range data {
		m.data[d] = st
	}
	m.hasData = true
	return nil
}

func (m *Memory) LoadTarget(_ context.Context) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFailure(); err != nil {
		return 0, err
	}
	return m.target, nil
}

func (m *Memory) SaveTarget(_ context.Context, target float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFailure(); err != nil {
		return err
	}
	m.target = target
	return nil
}

func (m *Memory) Holidays(_ context.Context) ([]attendance.DateKey, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]attendance.DateKey(nil), m.holidays...), nil
}

// SeedHolidays sets the holiday list returned by Holidays.
func (m *Memory) SeedHolidays(dates ...attendance.DateKey) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.holidays = append([]attendance.DateKey(nil), dates...)
}
