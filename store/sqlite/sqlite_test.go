package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/attendance-engine/attendance"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

// =============================================================================
// ATTENDANCE DATA
// =============================================================================

func TestSaveLoadData_RoundTrip(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	data := map[attendance.DateKey]attendance.Status{
		"2025-09-01": attendance.StatusPresent,
		"2025-09-02": attendance.StatusAbsent,
		"2025-09-03": attendance.StatusLeave,
		"2025-09-04": attendance.StatusHoliday,
	}
	require.NoError(t, st.SaveData(ctx, data))

	loaded, err := st.LoadData(ctx)
	require.NoError(t, err)
	assert.Equal(t, data, loaded)
}

func TestSaveData_ReplacesWholesale(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.SaveData(ctx, map[attendance.DateKey]attendance.Status{
		"2025-09-01": attendance.StatusPresent,
		"2025-09-02": attendance.StatusAbsent,
	}))
	require.NoError(t, st.SaveData(ctx, map[attendance.DateKey]attendance.Status{
		"2025-09-03": attendance.StatusLeave,
	}))

	loaded, err := st.LoadData(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[attendance.DateKey]attendance.Status{
		"2025-09-03": attendance.StatusLeave,
	}, loaded)
}

func TestSaveData_EmptyMapClears(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.SaveData(ctx, map[attendance.DateKey]attendance.Status{
		"2025-09-01": attendance.StatusPresent,
	}))
	require.NoError(t, st.SaveData(ctx, nil))

	loaded, err := st.LoadData(ctx)
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestLoadData_EmptyDatabase(t *testing.T) {
	st := newTestStore(t)

	loaded, err := st.LoadData(context.Background())
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

// =============================================================================
// TARGET
// =============================================================================

func TestLoadTarget_DefaultWhenUnset(t *testing.T) {
	st := newTestStore(t)

	target, err := st.LoadTarget(context.Background())
	require.NoError(t, err)
	assert.Equal(t, attendance.DefaultTarget, target)
}

func TestSaveTarget_LastWriteWins(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.SaveTarget(ctx, 80))
	require.NoError(t, st.SaveTarget(ctx, 85.5))

	target, err := st.LoadTarget(ctx)
	require.NoError(t, err)
	assert.Equal(t, 85.5, target)
}

// =============================================================================
// HOLIDAYS
// =============================================================================

func TestSeedHolidays_OrderedAndIdempotent(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	seed := map[attendance.DateKey]string{
		"2025-12-25": "Christmas",
		"2025-08-15": "Independence Day",
	}
	require.NoError(t, st.SeedHolidays(ctx, seed))
	// Reseeding the same dates must not duplicate rows.
	require.NoError(t, st.SeedHolidays(ctx, seed))

	dates, err := st.Holidays(ctx)
	require.NoError(t, err)
	assert.Equal(t, []attendance.DateKey{"2025-08-15", "2025-12-25"}, dates)
}

func TestHolidays_EmptyWhenUnseeded(t *testing.T) {
	st := newTestStore(t)

	dates, err := st.Holidays(context.Background())
	require.NoError(t, err)
	assert.Empty(t, dates)
}

// =============================================================================
// ENGINE INTEGRATION
// =============================================================================

func TestLoad_ThroughStore(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.SaveData(ctx, map[attendance.DateKey]attendance.Status{
		"2025-09-01": attendance.StatusPresent,
	}))
	require.NoError(t, st.SaveTarget(ctx, 80))

	rec, target, state := attendance.Load(ctx, st)

	assert.False(t, state.Degraded)
	assert.Equal(t, 80.0, target)
	status, ok := rec.Status("2025-09-01")
	require.True(t, ok)
	assert.Equal(t, attendance.StatusPresent, status)
}
