package strategies

import (
	"log/slog"
	"sort"
	"time"

	"github.com/rustyeddy/stratlab/broker"
	"github.com/rustyeddy/stratlab/internal/logger"
	"github.com/rustyeddy/stratlab/market"
)

// Base carries the state every policy shares: the owned broker, the
// bounded rolling price history, and the stop-loss/trailing-stop overlay.
// Policies embed it and call CheckRisk before their own signal logic.
type Base struct {
	name        string
	broker      *broker.Broker
	instruments []string
	history     *market.History

	StopLossPct     float64
	TrailingStopPct float64

	// Running high-water mark per held instrument, for the trailing stop.
	highWater map[string]float64

	log *slog.Logger
}

func newBase(name string, b *broker.Broker, instruments []string, stopLoss, trailing float64) *Base {
	return &Base{
		name:            name,
		broker:          b,
		instruments:     instruments,
		history:         market.NewHistory(market.DefaultWindow),
		StopLossPct:     stopLoss,
		TrailingStopPct: trailing,
		highWater:       make(map[string]float64),
		log:             logger.Get("strat." + name),
	}
}

func (s *Base) Name() string           { return s.name }
func (s *Base) Broker() *broker.Broker { return s.broker }
func (s *Base) History() *market.History {
	return s.history
}

// Instruments returns the configured instrument set.
func (s *Base) Instruments() []string { return s.instruments }

func (s *Base) tracks(instr string) bool {
	for _, t := range s.instruments {
		if t == instr {
			return true
		}
	}
	return false
}

// tracked returns the snapshot's instruments this strategy trades, in
// sorted order so replays stay deterministic.
func (s *Base) tracked(snap market.Snapshot) []string {
	out := make([]string, 0, len(s.instruments))
	for instr := range snap {
		if s.tracks(instr) {
			out = append(out, instr)
		}
	}
	sort.Strings(out)
	return out
}

// pushHistory records the tick's prices for tracked instruments.
func (s *Base) pushHistory(snap market.Snapshot) {
	for _, instr := range s.tracked(snap) {
		s.history.Push(instr, snap[instr])
	}
}

// CheckRisk runs the shared stop overlay over every held position before
// signal logic: track the high-water mark, force-sell on the fixed stop
// (price below entry*(1-stop)) or the trailing stop (price below
// hwm*(1-trailing)), whichever fires first.
func (s *Base) CheckRisk(snap market.Snapshot, ts time.Time) {
	instrs := make([]string, 0, len(snap))
	for instr := range snap {
		instrs = append(instrs, instr)
	}
	sort.Strings(instrs)

	rm := s.broker.Risk()

	for _, instr := range instrs {
		price := snap[instr]

		held := s.broker.PositionQuantity(instr)
		if held <= 0 {
			delete(s.highWater, instr)
			continue
		}

		hwm, ok := s.highWater[instr]
		if !ok || price > hwm {
			hwm = price
			s.highWater[instr] = hwm
		}

		pos, _ := s.broker.Position(instr)

		if rm.StopLossTriggered(price, pos.EntryPrice, s.StopLossPct) {
			s.log.Warn("stop loss", "instrument", instr, "price", price, "entry", pos.EntryPrice)
			s.broker.Sell(instr, price, ts, held, map[string]float64{"stop_loss": 1})
			delete(s.highWater, instr)
			continue
		}

		if price < hwm*(1-s.TrailingStopPct) {
			s.log.Warn("trailing stop", "instrument", instr, "price", price, "high", hwm)
			s.broker.Sell(instr, price, ts, held, map[string]float64{"trailing_stop": 1})
			delete(s.highWater, instr)
		}
	}
}
