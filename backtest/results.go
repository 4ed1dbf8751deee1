package backtest

import (
	"fmt"
	"io"
	"time"
)

// EquityPoint is one sample of a strategy's equity curve.
type EquityPoint struct {
	Time   time.Time
	Equity float64
}

// Result summarizes one strategy's run.
type Result struct {
	Strategy string
	Equity   float64
	ROI      float64 // percent vs initial balance
	Balance  float64 // final cash
	Trades   int
	Wins     int
	Losses   int

	MaxDrawdownPct float64
	Curve          []EquityPoint
}

// Benchmark is the buy-and-hold return of a single instrument over the
// replayed period, for comparison against the strategies.
type Benchmark struct {
	Instrument string
	ROI        float64
}

// Results is the full outcome of a replay.
type Results struct {
	Start time.Time
	End   time.Time

	Strategies []Result
	Benchmarks []Benchmark
}

// Print writes a human-readable results table.
func (r Results) Print(w io.Writer) {
	fmt.Fprintln(w, "==================================================")
	fmt.Fprintln(w, " Backtest Results")
	fmt.Fprintln(w, "==================================================")
	fmt.Fprintf(w, "Period:  %s -> %s\n",
		r.Start.Format("2006-01-02"), r.End.Format("2006-01-02"))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%-16s %12s %9s %12s %7s %5s %7s %8s\n",
		"Strategy", "Equity", "ROI%", "Cash", "Trades", "W/L", "", "MaxDD%")
	fmt.Fprintln(w, "--------------------------------------------------")
	for _, s := range r.Strategies {
		fmt.Fprintf(w, "%-16s %12.2f %9.2f %12.2f %7d %3d/%-3d %7s %8.2f\n",
			s.Strategy, s.Equity, s.ROI, s.Balance, s.Trades, s.Wins, s.Losses, "", s.MaxDrawdownPct)
	}

	if len(r.Benchmarks) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Buy & Hold Benchmarks")
		fmt.Fprintln(w, "--------------------------------------------------")
		for _, b := range r.Benchmarks {
			fmt.Fprintf(w, "%-16s %9.2f%%\n", b.Instrument, b.ROI)
		}
	}

	fmt.Fprintln(w)
}
