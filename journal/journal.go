// Package journal records executed fills and equity marks during a run
// for audit and later analysis. Records are append-only.
package journal

import "time"

// Fill is one executed trade, tagged with the strategy that made it.
type Fill struct {
	ID         string
	Strategy   string
	Time       time.Time
	Action     string // BUY or SELL
	Instrument string
	Price      float64
	Quantity   float64
	Fee        float64
	Balance    float64
	RealizedPL float64
}

// EquityMark is one strategy's total equity at one tick.
type EquityMark struct {
	Strategy string
	Time     time.Time
	Equity   float64
}

type Journal interface {
	RecordFill(Fill) error
	RecordEquity(EquityMark) error
	Close() error
}

// Nop discards everything; used when no journal is configured.
type Nop struct{}

func (Nop) RecordFill(Fill) error         { return nil }
func (Nop) RecordEquity(EquityMark) error { return nil }
func (Nop) Close() error                  { return nil }
