package journal

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVJournal(t *testing.T) {
	dir := t.TempDir()
	fillsPath := filepath.Join(dir, "fills.csv")
	equityPath := filepath.Join(dir, "equity.csv")

	j, err := NewCSV(fillsPath, equityPath)
	require.NoError(t, err)

	require.NoError(t, j.RecordFill(Fill{
		ID: "a", Strategy: "S", Time: day(1), Action: "BUY",
		Instrument: "NVDA", Price: 10.01, Quantity: 49,
	}))
	require.NoError(t, j.RecordEquity(EquityMark{Strategy: "S", Time: day(1), Equity: 999.5}))
	require.NoError(t, j.Close())

	f, err := os.Open(fillsPath)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2, "header plus one fill")
	assert.Equal(t, "id", rows[0][0])
	assert.Equal(t, "NVDA", rows[1][4])

	e, err := os.Open(equityPath)
	require.NoError(t, err)
	defer e.Close()

	rows, err = csv.NewReader(e).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "S", rows[1][0])
}
