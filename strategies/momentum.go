package strategies

import (
	"time"

	"github.com/rustyeddy/stratlab/indicators"
	"github.com/rustyeddy/stratlab/market"
)

// Momentum trades rate of change: enter when the ROC over Period ticks
// clears Threshold, exit once it turns negative past the same margin.
type Momentum struct {
	*Base

	Period    int
	Threshold float64
	Fraction  float64
}

func (s *Momentum) RunTick(snap market.Snapshot, ts time.Time) error {
	s.CheckRisk(snap, ts)
	s.pushHistory(snap)

	for _, instr := range s.tracked(snap) {
		price := snap[instr]
		prices := s.History().Prices(instr)
		if len(prices) <= s.Period {
			continue
		}

		roc := indicators.ROC(prices, s.Period)
		ctx := map[string]float64{"roc": roc}

		switch {
		case roc > s.Threshold:
			if s.Broker().PositionQuantity(instr) == 0 {
				s.Broker().Buy(instr, price, ts, s.Fraction, ctx)
			}
		case roc < -s.Threshold:
			if s.Broker().PositionQuantity(instr) > 0 {
				s.Broker().SellFraction(instr, price, ts, 1.0, ctx)
			}
		}
	}
	return nil
}
