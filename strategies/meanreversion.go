package strategies

import (
	"time"

	"github.com/rustyeddy/stratlab/indicators"
	"github.com/rustyeddy/stratlab/market"
)

// MeanReversion buys oversold instruments and exits once the oscillator
// recovers: RSI below BuyRSI enters, above SellRSI exits.
type MeanReversion struct {
	*Base

	Window   int
	BuyRSI   float64
	SellRSI  float64
	Fraction float64
}

func (s *MeanReversion) RunTick(snap market.Snapshot, ts time.Time) error {
	s.CheckRisk(snap, ts)
	s.pushHistory(snap)

	for _, instr := range s.tracked(snap) {
		price := snap[instr]
		prices := s.History().Prices(instr)
		if len(prices) < s.Window+1 {
			continue
		}

		rsi := indicators.RSI(prices, s.Window)
		ctx := map[string]float64{"rsi": rsi}

		switch {
		case rsi < s.BuyRSI:
			if s.Broker().Cash() > price {
				s.Broker().Buy(instr, price, ts, s.Fraction, ctx)
			}
		case rsi > s.SellRSI:
			if s.Broker().PositionQuantity(instr) > 0 {
				s.Broker().SellFraction(instr, price, ts, 1.0, ctx)
			}
		}
	}
	return nil
}
