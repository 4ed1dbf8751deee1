package strategies

import (
	"math"
	"time"

	"github.com/rustyeddy/stratlab/market"
	"github.com/rustyeddy/stratlab/risk"
)

// Grid trades price-level crossings around a center: buy when the price
// falls through a level, sell one rung when it rises through one. The
// grid re-centers once price escapes its range. All fills go through the
// broker's public ledger operations.
type Grid struct {
	*Base

	Levels   int     // number of rungs across the whole range
	RangePct float64 // half-range around the center, e.g. 0.10

	grids map[string]*gridState
}

type gridState struct {
	center    float64
	qty       float64
	levels    []float64
	lastPrice float64
}

func (s *Grid) setupGrid(instr string, price float64) {
	// One rung is roughly 10% of the initial balance.
	qty := math.Max(1, math.Floor(s.Broker().InitialBalance()*0.1/price))

	step := s.RangePct * 2 / float64(s.Levels)
	levels := make([]float64, 0, s.Levels+1)
	for i := s.Levels / 2; i >= 1; i-- {
		levels = append(levels, price*(1-float64(i)*step))
	}
	levels = append(levels, price)
	for i := 1; i <= s.Levels/2; i++ {
		levels = append(levels, price*(1+float64(i)*step))
	}

	s.grids[instr] = &gridState{
		center:    price,
		qty:       qty,
		levels:    levels,
		lastPrice: price,
	}
	s.log.Info("grid initialized", "instrument", instr, "center", price, "qty", qty)
}

func (s *Grid) RunTick(snap market.Snapshot, ts time.Time) error {
	s.CheckRisk(snap, ts)
	s.pushHistory(snap)

	for _, instr := range s.tracked(snap) {
		price := snap[instr]

		grid, ok := s.grids[instr]
		if !ok {
			s.setupGrid(instr, price)
			continue
		}

		// Re-center once price escapes the grid range.
		if price < grid.levels[0] || price > grid.levels[len(grid.levels)-1] {
			s.log.Info("grid re-centering", "instrument", instr, "price", price, "center", grid.center)
			s.setupGrid(instr, price)
			continue
		}

		for _, level := range grid.levels {
			ctx := map[string]float64{"grid_level": level, "grid_center": grid.center}

			switch {
			case grid.lastPrice > level && price <= level:
				// Falling through a rung: buy one rung's worth.
				s.buyUnits(instr, level, ts, grid.qty, ctx)

			case grid.lastPrice < level && price >= level:
				// Rising through a rung: sell one rung's worth.
				if s.Broker().PositionQuantity(instr) >= grid.qty {
					s.Broker().Sell(instr, level, ts, grid.qty, ctx)
				}
			}
		}

		grid.lastPrice = price
	}
	return nil
}

// buyUnits budgets an explicit-amount buy so the whole-share fill comes
// out to qty units at the slippage-adjusted price.
func (s *Grid) buyUnits(instr string, quote float64, ts time.Time, qty float64, ctx map[string]float64) bool {
	rm := s.Broker().Risk()
	exec := rm.SlippageAdjusted(quote, risk.Buy)
	amount := (qty + 0.5) * exec * (1 + rm.CommissionRate)
	return s.Broker().BuyAmount(instr, quote, ts, amount, ctx)
}
