// Package data loads historical daily price tables from CSV files,
// compressed dataset bundles, or the Stooq download endpoint, and serves
// latest quotes to the live loop. The core never fetches mid-replay; a
// table is built once up front.
package data

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rustyeddy/stratlab/market"
)

// LoadCSV reads long-format rows:
//
//	time,instrument,close
//
// where time is either 2006-01-02 or RFC3339. A header row starting with
// "time" or "date" is allowed. Empty and short rows are skipped; rows
// with an unparsable close are an error.
func LoadCSV(r io.Reader) (*market.Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	rows := make(map[time.Time]market.Snapshot)
	sawFirst := false

	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(row) < 3 {
			continue
		}

		if !sawFirst {
			sawFirst = true
			head := strings.ToLower(strings.TrimSpace(row[0]))
			if head == "time" || head == "date" {
				continue
			}
		}

		ts, err := parseTime(row[0])
		if err != nil {
			return nil, err
		}
		instr := strings.TrimSpace(row[1])
		if instr == "" {
			continue
		}
		price, err := strconv.ParseFloat(strings.TrimSpace(row[2]), 64)
		if err != nil {
			return nil, fmt.Errorf("bad close %q: %w", row[2], err)
		}

		snap, ok := rows[ts]
		if !ok {
			snap = make(market.Snapshot)
			rows[ts] = snap
		}
		snap.Set(instr, price)
	}

	return tableFromRows(rows)
}

// LoadCSVFile opens and parses one CSV file, decompressing .xz on the
// fly (research datasets often ship xz-compressed).
func LoadCSVFile(path string) (*market.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if strings.HasSuffix(path, ".xz") {
		return loadXZ(f)
	}
	return LoadCSV(f)
}

func parseTime(field string) (time.Time, error) {
	s := strings.TrimSpace(field)
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad time %q: %w", field, err)
	}
	return t.UTC(), nil
}

func tableFromRows(rows map[time.Time]market.Snapshot) (*market.Table, error) {
	times := make([]time.Time, 0, len(rows))
	for ts := range rows {
		times = append(times, ts)
	}
	sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })

	table := market.NewTable()
	for _, ts := range times {
		if err := table.AddRow(ts, rows[ts]); err != nil {
			return nil, err
		}
	}
	return table, nil
}

// Merge folds src's columns into dst row by row.
func Merge(dst, src *market.Table) (*market.Table, error) {
	rows := make(map[time.Time]market.Snapshot)
	for _, t := range []*market.Table{dst, src} {
		if t == nil {
			continue
		}
		for i := 0; i < t.Len(); i++ {
			ts := t.Time(i)
			snap, ok := rows[ts]
			if !ok {
				snap = make(market.Snapshot)
				rows[ts] = snap
			}
			snap.Merge(t.Row(i))
		}
	}
	return tableFromRows(rows)
}
