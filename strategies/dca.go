package strategies

import (
	"time"

	"github.com/rustyeddy/stratlab/market"
)

// DCA buys a fixed cash amount of each tracked instrument once per
// calendar day, regardless of price. Exits are left to the risk overlay.
type DCA struct {
	*Base

	Amount float64

	lastBuy map[string]string // instrument -> YYYY-MM-DD of last buy
}

func (s *DCA) RunTick(snap market.Snapshot, ts time.Time) error {
	s.CheckRisk(snap, ts)
	s.pushHistory(snap)

	day := ts.Format("2006-01-02")

	for _, instr := range s.tracked(snap) {
		if s.lastBuy[instr] == day {
			continue
		}
		if s.Broker().Cash() < s.Amount {
			continue
		}

		if s.Broker().BuyAmount(instr, snap[instr], ts, s.Amount, map[string]float64{"dca": 1}) {
			s.lastBuy[instr] = day
		}
	}
	return nil
}
