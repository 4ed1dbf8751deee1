package market

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func TestTableRejectsOutOfOrderRows(t *testing.T) {
	tab := NewTable()
	require.NoError(t, tab.AddRow(day(2), Snapshot{"X": 10}))

	assert.Error(t, tab.AddRow(day(1), Snapshot{"X": 9}))
	assert.Error(t, tab.AddRow(day(2), Snapshot{"X": 11}))
}

func TestTableRowSkipsMissing(t *testing.T) {
	tab := NewTable()
	require.NoError(t, tab.AddRow(day(1), Snapshot{"X": 10, "Y": 20}))
	require.NoError(t, tab.AddRow(day(2), Snapshot{"X": 11}))

	snap := tab.Row(1)
	assert.True(t, snap.Has("X"))
	assert.False(t, snap.Has("Y"), "missing observation leaked into snapshot")
}

func TestSnapshotDropsNaN(t *testing.T) {
	snap := make(Snapshot)
	snap.Set("X", math.NaN())
	snap.Set("Y", math.Inf(1))
	snap.Set("Z", 5)

	assert.False(t, snap.Has("X"))
	assert.False(t, snap.Has("Y"))
	assert.Equal(t, 5.0, snap.Get("Z"))
	assert.Equal(t, 0.0, snap.Get("missing"))
}

func TestTableSlice(t *testing.T) {
	tab := NewTable()
	for d := 1; d <= 5; d++ {
		require.NoError(t, tab.AddRow(day(d), Snapshot{"X": float64(d), "Y": float64(d * 10)}))
	}

	sliced := tab.Slice(day(2), day(4), []string{"X"})
	assert.Equal(t, 3, sliced.Len())
	assert.Equal(t, []string{"X"}, sliced.Instruments())
	assert.Equal(t, day(2), sliced.Time(0))
	assert.Equal(t, 2.0, sliced.Row(0).Get("X"))

	// Zero bounds keep everything; nil instruments keep all columns.
	all := tab.Slice(time.Time{}, time.Time{}, nil)
	assert.Equal(t, 5, all.Len())
	assert.Equal(t, []string{"X", "Y"}, all.Instruments())
}

func TestTableFirstLast(t *testing.T) {
	tab := NewTable()
	require.NoError(t, tab.AddRow(day(1), Snapshot{"Y": 1}))
	require.NoError(t, tab.AddRow(day(2), Snapshot{"X": 10, "Y": 2}))
	require.NoError(t, tab.AddRow(day(3), Snapshot{"X": 12}))

	first, ok := tab.First("X")
	require.True(t, ok)
	assert.Equal(t, 10.0, first)

	last, ok := tab.Last("Y")
	require.True(t, ok)
	assert.Equal(t, 2.0, last)

	_, ok = tab.First("Z")
	assert.False(t, ok)
}

func TestHistoryBoundedWindow(t *testing.T) {
	h := NewHistory(3)
	for i := 1; i <= 5; i++ {
		h.Push("X", float64(i))
	}

	assert.Equal(t, 3, h.Len("X"))
	assert.Equal(t, []float64{3, 4, 5}, h.Prices("X"))

	h.Drop("X")
	assert.Zero(t, h.Len("X"))
}
