package risk

// Side is the direction of a fill, used for slippage adjustment.
type Side string

const (
	Buy  Side = "BUY"
	Sell Side = "SELL"
)

// Default fill-cost rates. Commission approximates an exchange fee,
// slippage approximates spread plus price impact.
const (
	DefaultCommissionRate = 0.002
	DefaultSlippageRate   = 0.001
)

// Manager prices fills for one broker: commission cost, slippage-adjusted
// execution price and the stop-loss trigger test. All methods are pure.
type Manager struct {
	CommissionRate float64
	SlippageRate   float64
}

func NewManager(commissionRate, slippageRate float64) Manager {
	return Manager{
		CommissionRate: commissionRate,
		SlippageRate:   slippageRate,
	}
}

func DefaultManager() Manager {
	return NewManager(DefaultCommissionRate, DefaultSlippageRate)
}

// Cost returns the commission charged for trading quantity units at price.
func (m Manager) Cost(quantity, price float64) float64 {
	return quantity * price * m.CommissionRate
}

// SlippageAdjusted models an adverse fill: buys pay up, sells receive
// less. Any other side returns the quote unchanged.
func (m Manager) SlippageAdjusted(price float64, side Side) float64 {
	switch side {
	case Buy:
		return price * (1 + m.SlippageRate)
	case Sell:
		return price * (1 - m.SlippageRate)
	default:
		return price
	}
}

// StopLossTriggered reports whether current has fallen below the stop
// level entry*(1-threshold). A price exactly at the boundary does not
// trigger. An unset entry (0) never triggers.
func (m Manager) StopLossTriggered(current, entry, threshold float64) bool {
	if entry == 0 {
		return false
	}
	return current < entry*(1-threshold)
}

// DrawdownExceeded is the kill-switch test: true once equity has dropped
// more than maxDrawdown (a fraction) below the session-start equity.
func DrawdownExceeded(equity, sessionStart, maxDrawdown float64) bool {
	if sessionStart <= 0 {
		return false
	}
	return equity < sessionStart*(1-maxDrawdown)
}
