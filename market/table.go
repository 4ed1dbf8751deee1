package market

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// Table is a time-indexed table of daily prices, one column per
// instrument. Rows are kept in ascending time order. Missing observations
// are stored as NaN and never make it into a Snapshot.
type Table struct {
	times   []time.Time
	columns map[string][]float64
}

func NewTable() *Table {
	return &Table{columns: make(map[string][]float64)}
}

// AddRow appends one timestamp worth of prices. Rows must be appended in
// ascending time order; out-of-order rows are rejected.
func (t *Table) AddRow(ts time.Time, prices Snapshot) error {
	if n := len(t.times); n > 0 && !ts.After(t.times[n-1]) {
		return fmt.Errorf("table: row %s not after %s", ts.Format(time.RFC3339), t.times[n-1].Format(time.RFC3339))
	}

	t.times = append(t.times, ts)
	n := len(t.times)

	for instr := range prices {
		if _, ok := t.columns[instr]; !ok {
			col := make([]float64, n-1, n)
			for i := range col {
				col[i] = math.NaN()
			}
			t.columns[instr] = col
		}
	}
	for instr, col := range t.columns {
		if p, ok := prices[instr]; ok {
			t.columns[instr] = append(col, p)
		} else {
			t.columns[instr] = append(col, math.NaN())
		}
	}
	return nil
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.times) }

// Time returns the timestamp of row i.
func (t *Table) Time(i int) time.Time { return t.times[i] }

// Instruments returns the column names in sorted order.
func (t *Table) Instruments() []string {
	out := make([]string, 0, len(t.columns))
	for instr := range t.columns {
		out = append(out, instr)
	}
	sort.Strings(out)
	return out
}

// Row builds the snapshot for row i, discarding NaN observations.
func (t *Table) Row(i int) Snapshot {
	snap := make(Snapshot, len(t.columns))
	for instr, col := range t.columns {
		snap.Set(instr, col[i])
	}
	return snap
}

// Slice returns a view of the table restricted to [from, to] and to the
// given instruments. A nil instrument list keeps every column. Rows where
// every kept column is NaN are dropped.
func (t *Table) Slice(from, to time.Time, instruments []string) *Table {
	keep := t.columns
	if instruments != nil {
		keep = make(map[string][]float64, len(instruments))
		for _, instr := range instruments {
			if col, ok := t.columns[instr]; ok {
				keep[instr] = col
			}
		}
	}

	out := NewTable()
	for i, ts := range t.times {
		if !from.IsZero() && ts.Before(from) {
			continue
		}
		if !to.IsZero() && ts.After(to) {
			continue
		}
		snap := make(Snapshot, len(keep))
		for instr, col := range keep {
			snap.Set(instr, col[i])
		}
		if len(snap) == 0 {
			continue
		}
		out.AddRow(ts, snap)
	}
	return out
}

// First returns the first finite price in the named column, used for
// buy-and-hold benchmarks. ok is false when the column has none.
func (t *Table) First(instr string) (price float64, ok bool) {
	col, exists := t.columns[instr]
	if !exists {
		return 0, false
	}
	for _, p := range col {
		if !math.IsNaN(p) {
			return p, true
		}
	}
	return 0, false
}

// Last returns the last finite price in the named column.
func (t *Table) Last(instr string) (price float64, ok bool) {
	col, exists := t.columns[instr]
	if !exists {
		return 0, false
	}
	for i := len(col) - 1; i >= 0; i-- {
		if !math.IsNaN(col[i]) {
			return col[i], true
		}
	}
	return 0, false
}
