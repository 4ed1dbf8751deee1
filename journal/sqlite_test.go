package journal

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLite(t *testing.T) *SQLite {
	t.Helper()
	j, err := NewSQLite(filepath.Join(t.TempDir(), "journal.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func TestSQLiteRecordAndList(t *testing.T) {
	j := newTestSQLite(t)

	fills := []Fill{
		{ID: "a", Strategy: "TrendHunter", Time: day(1), Action: "BUY", Instrument: "NVDA", Price: 10.01, Quantity: 49, Fee: 0.98, Balance: 508.53},
		{ID: "b", Strategy: "TrendHunter", Time: day(3), Action: "SELL", Instrument: "NVDA", Price: 11.99, Quantity: 49, Fee: 1.18, Balance: 1094.7, RealizedPL: 97.0},
		{ID: "c", Strategy: "MeanRev", Time: day(2), Action: "BUY", Instrument: "TSLA", Price: 200, Quantity: 1, Fee: 0.4, Balance: 799.6},
	}
	for _, rec := range fills {
		require.NoError(t, j.RecordFill(rec))
	}

	got, err := j.ListFills("TrendHunter", day(1), day(4))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "b", got[1].ID)
	assert.Equal(t, 97.0, got[1].RealizedPL)

	// Half-open range excludes the end.
	got, err = j.ListFills("TrendHunter", day(1), day(3))
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestSQLiteEquityCurve(t *testing.T) {
	j := newTestSQLite(t)

	for d := 1; d <= 3; d++ {
		require.NoError(t, j.RecordEquity(EquityMark{
			Strategy: "GridBot",
			Time:     day(d),
			Equity:   1000 + float64(d),
		}))
	}

	curve, err := j.EquityCurve("GridBot")
	require.NoError(t, err)
	require.Len(t, curve, 3)
	assert.Equal(t, 1001.0, curve[0].Equity)
	assert.Equal(t, 1003.0, curve[2].Equity)
}

func TestSQLiteWinLoss(t *testing.T) {
	j := newTestSQLite(t)

	recs := []Fill{
		{ID: "1", Strategy: "S", Time: day(1), Action: "SELL", Instrument: "X", RealizedPL: 5},
		{ID: "2", Strategy: "S", Time: day(2), Action: "SELL", Instrument: "X", RealizedPL: -3},
		{ID: "3", Strategy: "S", Time: day(3), Action: "SELL", Instrument: "X", RealizedPL: 2},
		{ID: "4", Strategy: "S", Time: day(4), Action: "BUY", Instrument: "X"},
	}
	for _, rec := range recs {
		require.NoError(t, j.RecordFill(rec))
	}

	wins, losses, err := j.WinLoss("S")
	require.NoError(t, err)
	assert.Equal(t, 2, wins)
	assert.Equal(t, 1, losses)
}
