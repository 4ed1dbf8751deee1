// Package backtest replays a historical price table through a set of
// strategies, each trading against its own broker, and reports the
// resulting equity curves.
package backtest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rustyeddy/stratlab/internal/logger"
	"github.com/rustyeddy/stratlab/journal"
	"github.com/rustyeddy/stratlab/market"
	"github.com/rustyeddy/stratlab/strategies"
)

// Engine is the replay driver: a time-ordered multi-instrument price
// table folded, tick by tick, over every registered strategy. Strategies
// are dispatched in registration order; their brokers are independent, so
// ordering only affects log interleaving.
type Engine struct {
	from, to time.Time
	strats   []strategies.Strategy
	table    *market.Table
	journal  journal.Journal

	log *slog.Logger
}

func New(from, to time.Time, strats []strategies.Strategy, table *market.Table) *Engine {
	return &Engine{
		from:    from,
		to:      to,
		strats:  strats,
		table:   table,
		journal: journal.Nop{},
		log:     logger.Get("backtest"),
	}
}

// SetJournal attaches a journal that receives every fill and per-tick
// equity mark during the replay.
func (e *Engine) SetJournal(j journal.Journal) {
	if j == nil {
		j = journal.Nop{}
	}
	e.journal = j
}

// instruments returns the union of every strategy's instrument set, used
// to slice the table down to what the run actually needs. Strategies
// with no declared instruments keep every column.
func (e *Engine) instruments() []string {
	seen := make(map[string]bool)
	var out []string
	for _, st := range e.strats {
		base, ok := st.(interface{ Instruments() []string })
		if !ok || len(base.Instruments()) == 0 {
			return nil
		}
		for _, instr := range base.Instruments() {
			if !seen[instr] {
				seen[instr] = true
				out = append(out, instr)
			}
		}
	}
	return out
}

// Run replays the table in ascending timestamp order. A strategy error
// or panic on one tick is logged and isolated: the other strategies and
// all subsequent ticks still run. Returns an error only when there is no
// data to replay at all.
func (e *Engine) Run(ctx context.Context) (Results, error) {
	if e.table == nil || len(e.strats) == 0 {
		return Results{}, fmt.Errorf("backtest: table and strategies are required")
	}

	sliced := e.table.Slice(e.from, e.to, e.instruments())
	if sliced.Len() == 0 {
		return Results{}, fmt.Errorf("backtest: no data between %s and %s",
			e.from.Format("2006-01-02"), e.to.Format("2006-01-02"))
	}

	last := make(market.Snapshot)
	curves := make([][]EquityPoint, len(e.strats))
	recorded := make([]int, len(e.strats)) // fills already journaled per strategy

	for i := 0; i < sliced.Len(); i++ {
		if err := ctx.Err(); err != nil {
			e.log.Warn("replay cancelled", "tick", i)
			break
		}

		snap := sliced.Row(i)
		if len(snap) == 0 {
			continue
		}
		ts := sliced.Time(i)
		last.Merge(snap)

		for si, st := range e.strats {
			e.dispatch(st, snap, ts)
			e.journalFills(st, &recorded[si])

			equity := st.Broker().PortfolioValue(last)
			curves[si] = append(curves[si], EquityPoint{Time: ts, Equity: equity})
			e.journal.RecordEquity(journal.EquityMark{
				Strategy: st.Name(),
				Time:     ts,
				Equity:   equity,
			})
		}
	}

	return e.collect(sliced, last, curves), nil
}

// dispatch runs one strategy for one tick, containing both returned
// errors and panics so a faulty policy cannot invalidate the run.
func (e *Engine) dispatch(st strategies.Strategy, snap market.Snapshot, ts time.Time) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("strategy panicked", "strategy", st.Name(), "time", ts, "panic", r)
		}
	}()

	if err := st.RunTick(snap, ts); err != nil {
		e.log.Error("strategy tick failed", "strategy", st.Name(), "time", ts, "error", err)
	}
}

// journalFills records fills the strategy's broker executed since the
// last call. *from is the count already written.
func (e *Engine) journalFills(st strategies.Strategy, from *int) {
	trades := st.Broker().Trades()
	for ; *from < len(trades); *from++ {
		rec := trades[*from]
		e.journal.RecordFill(journal.Fill{
			ID:         rec.ID,
			Strategy:   st.Name(),
			Time:       rec.Time,
			Action:     string(rec.Action),
			Instrument: rec.Instrument,
			Price:      rec.Price,
			Quantity:   rec.Quantity,
			Fee:        rec.Fee,
			Balance:    rec.Balance,
			RealizedPL: rec.RealizedPL,
		})
	}
}

func (e *Engine) collect(table *market.Table, last market.Snapshot, curves [][]EquityPoint) Results {
	res := Results{}
	if table.Len() > 0 {
		res.Start = table.Time(0)
		res.End = table.Time(table.Len() - 1)
	}

	for si, st := range e.strats {
		b := st.Broker()
		equity := b.PortfolioValue(last)
		initial := b.InitialBalance()

		r := Result{
			Strategy: st.Name(),
			Equity:   equity,
			ROI:      (equity - initial) / initial * 100,
			Balance:  b.Cash(),
			Trades:   b.TradeCount(),
			Curve:    curves[si],
		}
		for _, rec := range b.Trades() {
			if rec.Action == "SELL" {
				if rec.RealizedPL > 0 {
					r.Wins++
				} else if rec.RealizedPL < 0 {
					r.Losses++
				}
			}
		}
		r.MaxDrawdownPct = maxDrawdown(curves[si])
		res.Strategies = append(res.Strategies, r)
	}

	for _, instr := range table.Instruments() {
		first, ok1 := table.First(instr)
		lastPrice, ok2 := table.Last(instr)
		if !ok1 || !ok2 || first == 0 {
			continue
		}
		res.Benchmarks = append(res.Benchmarks, Benchmark{
			Instrument: instr,
			ROI:        (lastPrice - first) / first * 100,
		})
	}

	return res
}

// maxDrawdown returns the deepest peak-to-trough equity drop as a
// percentage of the peak.
func maxDrawdown(curve []EquityPoint) float64 {
	var peak, worst float64
	for _, p := range curve {
		if p.Equity > peak {
			peak = p.Equity
		}
		if peak > 0 {
			dd := (peak - p.Equity) / peak * 100
			if dd > worst {
				worst = dd
			}
		}
	}
	return worst
}
