package strategies

import (
	"time"

	"github.com/rustyeddy/stratlab/indicators"
	"github.com/rustyeddy/stratlab/market"
)

// Trend is a moving-average crossover follower: enter when the fast SMA
// is above the slow SMA and flat, exit entirely when the cross breaks
// down. Optionally keeps a core-satellite vault allocation topped up via
// the broker's rebalancer.
type Trend struct {
	*Base

	Fast     int
	Slow     int
	Fraction float64

	VaultInstrument string
	VaultFraction   float64
}

func (s *Trend) RunTick(snap market.Snapshot, ts time.Time) error {
	s.CheckRisk(snap, ts)
	s.pushHistory(snap)

	if s.VaultInstrument != "" {
		s.Broker().RebalanceVault(snap, s.VaultInstrument, s.VaultFraction, ts)
	}

	for _, instr := range s.tracked(snap) {
		price := snap[instr]
		prices := s.History().Prices(instr)
		if len(prices) < s.Slow {
			continue
		}

		fast := indicators.SMA(prices, s.Fast)
		slow := indicators.SMA(prices, s.Slow)
		ctx := map[string]float64{
			"fast_ma": fast,
			"slow_ma": slow,
		}

		switch {
		case fast > slow:
			if s.Broker().PositionQuantity(instr) == 0 {
				s.Broker().Buy(instr, price, ts, s.Fraction, ctx)
			}
		case fast < slow:
			if s.Broker().PositionQuantity(instr) > 0 {
				s.log.Info("trend broken, selling", "instrument", instr)
				s.Broker().SellFraction(instr, price, ts, 1.0, ctx)
			}
		}
	}
	return nil
}
