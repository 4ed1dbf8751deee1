package broker

import (
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/rustyeddy/stratlab/internal/id"
	"github.com/rustyeddy/stratlab/internal/logger"
	"github.com/rustyeddy/stratlab/market"
	"github.com/rustyeddy/stratlab/risk"
)

const (
	// DustEpsilon is the residual quantity below which a position is
	// removed rather than tracked.
	DustEpsilon = 1e-6

	// MinTradeValue rejects fraction-sized buys whose budget is too
	// small to be worth the commission, in account currency.
	MinTradeValue = 100.0
)

// Position is one holding: the running quantity and the quantity-weighted
// average cost basis. EntryPrice is only recomputed on buys; sells reduce
// Quantity and leave the basis alone.
type Position struct {
	Quantity   float64 `json:"quantity"`
	EntryPrice float64 `json:"entry_price"`
}

// TradeRecord is one immutable entry in a broker's append-only trade log.
type TradeRecord struct {
	ID         string             `json:"id"`
	Time       time.Time          `json:"time"`
	Action     risk.Side          `json:"action"`
	Instrument string             `json:"instrument"`
	Price      float64            `json:"price"` // execution price after slippage
	Quantity   float64            `json:"quantity"`
	Fee        float64            `json:"fee"`
	Balance    float64            `json:"balance"` // cash after the fill
	RealizedPL float64            `json:"realized_pl,omitempty"`
	Context    map[string]float64 `json:"context,omitempty"`
}

// Broker is a simulated brokerage account: cash, the position ledger and
// the trade log, with fill pricing delegated to a risk.Manager. One broker
// is owned by exactly one strategy and is not safe for concurrent use.
type Broker struct {
	name    string
	cash    float64
	initial float64
	risk    risk.Manager

	positions map[string]Position
	trades    []TradeRecord

	log *slog.Logger
}

func New(name string, startBalance float64, rm risk.Manager) *Broker {
	return &Broker{
		name:      name,
		cash:      startBalance,
		initial:   startBalance,
		risk:      rm,
		positions: make(map[string]Position),
		log:       logger.Get("broker." + name),
	}
}

func (b *Broker) Name() string            { return b.name }
func (b *Broker) Cash() float64           { return b.cash }
func (b *Broker) InitialBalance() float64 { return b.initial }
func (b *Broker) Risk() risk.Manager      { return b.risk }

// TradeCount returns the number of fills executed so far.
func (b *Broker) TradeCount() int { return len(b.trades) }

// Trades returns a copy of the append-only trade log, oldest first.
func (b *Broker) Trades() []TradeRecord {
	out := make([]TradeRecord, len(b.trades))
	copy(out, b.trades)
	return out
}

// LastTrade returns the most recent fill, if any.
func (b *Broker) LastTrade() (TradeRecord, bool) {
	if len(b.trades) == 0 {
		return TradeRecord{}, false
	}
	return b.trades[len(b.trades)-1], true
}

// PositionQuantity returns the held quantity for instr, 0 if absent.
func (b *Broker) PositionQuantity(instr string) float64 {
	return b.positions[instr].Quantity
}

// Position returns the full position for instr.
func (b *Broker) Position(instr string) (Position, bool) {
	pos, ok := b.positions[instr]
	return pos, ok
}

// Instruments returns the held instruments in sorted order.
func (b *Broker) Instruments() []string {
	out := make([]string, 0, len(b.positions))
	for instr := range b.positions {
		out = append(out, instr)
	}
	sort.Strings(out)
	return out
}

// Buy sizes a purchase as a fraction of the broker's initial balance,
// capped at current cash, and executes it at the slippage-adjusted price.
// The budget is based on the immutable initial balance so position sizes
// stay stable across a run instead of compounding on winning streaks.
// Returns false when the budget is below MinTradeValue or the resulting
// whole-share quantity rounds to zero; no state changes on failure.
func (b *Broker) Buy(instr string, quote float64, ts time.Time, fraction float64, ctx map[string]float64) bool {
	if quote <= 0 || fraction <= 0 {
		return false
	}
	budget := math.Min(b.initial*fraction, b.cash)
	if budget < MinTradeValue {
		return false
	}
	return b.fillBuy(instr, quote, ts, budget, ctx)
}

// BuyAmount executes a purchase with an explicit cash budget, capped at
// current cash. Used by the vault rebalancer and the DCA policy, which
// size in currency rather than portfolio fractions.
func (b *Broker) BuyAmount(instr string, quote float64, ts time.Time, amount float64, ctx map[string]float64) bool {
	if quote <= 0 || amount <= 0 {
		return false
	}
	return b.fillBuy(instr, quote, ts, math.Min(amount, b.cash), ctx)
}

// fillBuy is the single mutation path for purchases: one in-memory update
// covering cash, position and log, so there is no partially-applied state.
func (b *Broker) fillBuy(instr string, quote float64, ts time.Time, budget float64, ctx map[string]float64) bool {
	exec := b.risk.SlippageAdjusted(quote, risk.Buy)

	// budget = qty*exec + qty*exec*commission, solved for whole shares
	qty := math.Floor(budget / (exec * (1 + b.risk.CommissionRate)))
	if qty < 1 {
		return false
	}

	fee := b.risk.Cost(qty, exec)
	b.cash -= qty*exec + fee

	pos := b.positions[instr]
	newQty := pos.Quantity + qty
	entry := exec
	if pos.Quantity > 0 {
		entry = (pos.Quantity*pos.EntryPrice + qty*exec) / newQty
	}
	b.positions[instr] = Position{Quantity: newQty, EntryPrice: entry}

	b.append(TradeRecord{
		ID:         id.New(),
		Time:       ts,
		Action:     risk.Buy,
		Instrument: instr,
		Price:      exec,
		Quantity:   qty,
		Fee:        fee,
		Balance:    b.cash,
		Context:    ctx,
	})

	b.log.Info("BUY", "instrument", instr, "qty", qty, "price", exec, "entry", entry, "cash", b.cash)
	return true
}

// Sell disposes of up to quantity units at the slippage-adjusted price.
// Requests beyond the held quantity clamp to the holding; a sell on an
// absent position fails with no state change. The realized P&L against
// the entry price at time of sale is recorded in the trade log.
func (b *Broker) Sell(instr string, quote float64, ts time.Time, quantity float64, ctx map[string]float64) bool {
	pos, ok := b.positions[instr]
	if !ok {
		return false
	}
	if quote <= 0 {
		return false
	}

	qty := math.Min(quantity, pos.Quantity)
	if qty <= 0 {
		return false
	}

	exec := b.risk.SlippageAdjusted(quote, risk.Sell)
	gross := qty * exec
	fee := gross * b.risk.CommissionRate
	b.cash += gross - fee

	pl := (exec - pos.EntryPrice) * qty

	pos.Quantity -= qty
	if pos.Quantity < DustEpsilon {
		delete(b.positions, instr)
	} else {
		b.positions[instr] = pos
	}

	b.append(TradeRecord{
		ID:         id.New(),
		Time:       ts,
		Action:     risk.Sell,
		Instrument: instr,
		Price:      exec,
		Quantity:   qty,
		Fee:        fee,
		Balance:    b.cash,
		RealizedPL: pl,
		Context:    ctx,
	})

	b.log.Info("SELL", "instrument", instr, "qty", qty, "price", exec, "pl", pl, "cash", b.cash)
	return true
}

// SellFraction sells the given fraction of the held quantity.
func (b *Broker) SellFraction(instr string, quote float64, ts time.Time, fraction float64, ctx map[string]float64) bool {
	pos, ok := b.positions[instr]
	if !ok {
		return false
	}
	return b.Sell(instr, quote, ts, pos.Quantity*fraction, ctx)
}

// PortfolioValue returns total equity: cash plus every position valued at
// the snapshot price. Instruments missing from the snapshot value at 0,
// so callers should pass a complete last-known-price map.
func (b *Broker) PortfolioValue(snap market.Snapshot) float64 {
	equity := b.cash
	for instr, pos := range b.positions {
		equity += pos.Quantity * snap.Get(instr)
	}
	return equity
}

// CheckSafety evaluates the stop-loss test for every held position with a
// current price and returns the instruments that tripped it, sorted. It
// does not sell; the caller decides how to act.
func (b *Broker) CheckSafety(snap market.Snapshot, stopLossPct float64) []string {
	var hit []string
	for instr, pos := range b.positions {
		if pos.Quantity <= 0 || pos.EntryPrice <= 0 {
			continue
		}
		cur, ok := snap[instr]
		if !ok {
			continue
		}
		if b.risk.StopLossTriggered(cur, pos.EntryPrice, stopLossPct) {
			b.log.Warn("stop loss tripped", "instrument", instr, "entry", pos.EntryPrice, "current", cur)
			hit = append(hit, instr)
		}
	}
	sort.Strings(hit)
	return hit
}

func (b *Broker) append(rec TradeRecord) {
	b.trades = append(b.trades, rec)
}
