package data

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rustyeddy/stratlab/market"
)

const stooqBase = "https://stooq.com"

// Stooq downloads daily close series and latest quotes from stooq.com's
// CSV endpoints. Symbols follow stooq conventions (e.g. "aapl.us").
type Stooq struct {
	Base   string
	client *http.Client
}

func NewStooq() *Stooq {
	return &Stooq{
		Base:   stooqBase,
		client: &http.Client{Timeout: 45 * time.Second},
	}
}

// FetchDaily downloads the daily close history for every symbol over
// [from, to] and merges the series into one table. Symbols that return
// no data are skipped with an error only when nothing loads at all.
func (s *Stooq) FetchDaily(ctx context.Context, symbols []string, from, to time.Time) (*market.Table, error) {
	var table *market.Table
	var lastErr error

	for _, sym := range symbols {
		part, err := s.fetchSymbol(ctx, sym, from, to)
		if err != nil {
			lastErr = err
			continue
		}
		table, err = Merge(table, part)
		if err != nil {
			return nil, err
		}
	}

	if table == nil || table.Len() == 0 {
		if lastErr != nil {
			return nil, fmt.Errorf("no data for any symbol: %w", lastErr)
		}
		return nil, fmt.Errorf("no data for symbols %v", symbols)
	}
	return table, nil
}

func (s *Stooq) fetchSymbol(ctx context.Context, symbol string, from, to time.Time) (*market.Table, error) {
	url := fmt.Sprintf("%s/q/d/l/?s=%s&d1=%s&d2=%s&i=d",
		s.Base, strings.ToLower(symbol), from.Format("20060102"), to.Format("20060102"))

	body, err := s.get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	// Layout: Date,Open,High,Low,Close,Volume
	cr := csv.NewReader(body)
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
		if len(row) < 5 {
			continue
		}
		if !sawFirst {
			sawFirst = true
			if strings.EqualFold(strings.TrimSpace(row[0]), "date") {
				continue
			}
		}

		ts, err := parseTime(row[0])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", symbol, err)
		}
		closePrice, err := strconv.ParseFloat(strings.TrimSpace(row[4]), 64)
		if err != nil {
			return nil, fmt.Errorf("%s: bad close %q: %w", symbol, row[4], err)
		}

		snap := make(market.Snapshot)
		snap.Set(symbol, closePrice)
		rows[ts] = snap
	}

	return tableFromRows(rows)
}

// Latest returns the most recent quote for every symbol, for the live
// loop. Missing quotes are left out of the snapshot rather than failing
// the whole fetch.
func (s *Stooq) Latest(ctx context.Context, symbols []string) (market.Snapshot, error) {
	snap := make(market.Snapshot)

	for _, sym := range symbols {
		url := fmt.Sprintf("%s/q/l/?s=%s&f=sd2t2ohlcv&h&e=csv", s.Base, strings.ToLower(sym))
		body, err := s.get(ctx, url)
		if err != nil {
			continue
		}

		cr := csv.NewReader(body)
		cr.FieldsPerRecord = -1
		// Layout: Symbol,Date,Time,Open,High,Low,Close,Volume
		for {
			row, err := cr.Read()
			if err != nil {
				break
			}
			if len(row) < 7 || strings.EqualFold(strings.TrimSpace(row[0]), "symbol") {
				continue
			}
			if price, err := strconv.ParseFloat(strings.TrimSpace(row[6]), 64); err == nil {
				snap.Set(sym, price)
			}
		}
		body.Close()
	}

	if len(snap) == 0 {
		return nil, fmt.Errorf("no quotes for %v", symbols)
	}
	return snap, nil
}

func (s *Stooq) get(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("GET %s: status %d", url, resp.StatusCode)
	}
	return resp.Body, nil
}
