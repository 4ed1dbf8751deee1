package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/stratlab/broker"
)

func sampleState() broker.State {
	return broker.State{
		Balance: 508.53,
		Positions: map[string]broker.Position{
			"NVDA": {Quantity: 49, EntryPrice: 10.01},
		},
		TradeLog: []broker.TradeRecord{
			{
				ID:         "01TRADE1",
				Time:       time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
				Action:     "BUY",
				Instrument: "NVDA",
				Price:      10.01,
				Quantity:   49,
				Fee:        0.981,
				Balance:    508.53,
			},
			{
				ID:         "01TRADE2",
				Time:       time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC),
				Action:     "SELL",
				Instrument: "NVDA",
				Price:      11.99,
				Quantity:   49,
				Fee:        1.175,
				Balance:    1095.0,
				RealizedPL: 97.0,
			},
		},
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	want := sampleState()
	require.NoError(t, s.Save("TrendHunter", want))

	got, ok, err := s.Load("TrendHunter")
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, want.Balance, got.Balance)
	assert.Equal(t, want.Positions, got.Positions)
	require.Len(t, got.TradeLog, 2)
	assert.Equal(t, "01TRADE1", got.TradeLog[0].ID)
	assert.Equal(t, "01TRADE2", got.TradeLog[1].ID)
	assert.True(t, got.TradeLog[0].Time.Equal(want.TradeLog[0].Time))
}

func TestFileStoreMissingKey(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	_, ok, err := s.Load("nope")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileStoreOverwriteByKey(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.Save("k", broker.State{Balance: 1}))
	require.NoError(t, s.Save("k", broker.State{Balance: 2}))

	got, ok, err := s.Load("k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 2.0, got.Balance)
}

func TestFileStoreMalformedSnapshot(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "sim_bad.json"), []byte("{not json"), 0o644))

	_, _, err = s.Load("bad")
	assert.Error(t, err)
}
