// Package live runs strategies against current quotes on a fixed polling
// interval, persisting broker state between ticks. It is the paper-trade
// counterpart of the backtest replay.
package live

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rustyeddy/stratlab/broker"
	"github.com/rustyeddy/stratlab/internal/logger"
	"github.com/rustyeddy/stratlab/market"
	"github.com/rustyeddy/stratlab/notify"
	"github.com/rustyeddy/stratlab/risk"
	"github.com/rustyeddy/stratlab/strategies"
)

// ErrKillSwitch is returned when aggregate drawdown breaches the
// configured limit. It is fatal to the loop by design: state is flushed
// and the loop exits rather than trading on.
var ErrKillSwitch = errors.New("live: kill switch tripped")

// PriceSource supplies current quotes for the live loop.
type PriceSource interface {
	Latest(ctx context.Context, instruments []string) (market.Snapshot, error)
}

type Options struct {
	// Interval between polls; defaults to one hour.
	Interval time.Duration

	// KillSwitchPct stops the loop once total equity drops this fraction
	// below session-start equity. Zero disables the check.
	KillSwitchPct float64

	// Store persists broker snapshots between runs; nil disables.
	Store broker.Store

	// Notifier receives trade and safety pushes; nil disables.
	Notifier notify.Notifier
}

type Loop struct {
	strats []strategies.Strategy
	source PriceSource
	opts   Options

	sessionStart float64
	tradeCounts  []int

	log *slog.Logger
}

func New(strats []strategies.Strategy, source PriceSource, opts Options) *Loop {
	if opts.Interval <= 0 {
		opts.Interval = time.Hour
	}
	if opts.Notifier == nil {
		opts.Notifier = notify.Nop{}
	}
	return &Loop{
		strats:      strats,
		source:      source,
		opts:        opts,
		tradeCounts: make([]int, len(strats)),
		log:         logger.Get("live"),
	}
}

// Run polls until the context is cancelled or the kill switch fires.
// A failed fetch or a failing strategy skips that tick for the affected
// party and keeps the loop alive.
func (l *Loop) Run(ctx context.Context) error {
	if l.source == nil || len(l.strats) == 0 {
		return fmt.Errorf("live: source and strategies are required")
	}

	// Warm restart from persisted snapshots.
	for i, st := range l.strats {
		st.Broker().LoadFrom(l.opts.Store)
		l.tradeCounts[i] = st.Broker().TradeCount()
	}

	instruments := l.instruments()
	last := make(market.Snapshot)

	for {
		if err := ctx.Err(); err != nil {
			l.log.Info("live loop stopped", "reason", err)
			l.flush()
			return nil
		}

		snap, err := l.source.Latest(ctx, instruments)
		if err != nil {
			l.log.Warn("no market data, skipping tick", "error", err)
		} else {
			last.Merge(snap)
			l.tick(snap, time.Now().UTC())

			if err := l.checkKillSwitch(last); err != nil {
				l.flush()
				return err
			}
		}

		select {
		case <-ctx.Done():
		case <-time.After(l.opts.Interval):
		}
	}
}

func (l *Loop) tick(snap market.Snapshot, ts time.Time) {
	for i, st := range l.strats {
		l.dispatch(st, snap, ts)

		// Push a notification per new fill, then persist.
		trades := st.Broker().Trades()
		for ; l.tradeCounts[i] < len(trades); l.tradeCounts[i]++ {
			rec := trades[l.tradeCounts[i]]
			l.opts.Notifier.Push(
				"Trader: "+st.Name(),
				fmt.Sprintf("%s %s %.4f @ %.2f", rec.Action, rec.Instrument, rec.Quantity, rec.Price),
				notify.PriorityHigh,
			)
		}
		st.Broker().SaveTo(l.opts.Store)
	}
}

func (l *Loop) dispatch(st strategies.Strategy, snap market.Snapshot, ts time.Time) {
	defer func() {
		if r := recover(); r != nil {
			l.log.Error("strategy panicked", "strategy", st.Name(), "time", ts, "panic", r)
		}
	}()

	if err := st.RunTick(snap, ts); err != nil {
		l.log.Error("strategy tick failed", "strategy", st.Name(), "time", ts, "error", err)
	}
}

func (l *Loop) checkKillSwitch(last market.Snapshot) error {
	total := 0.0
	for _, st := range l.strats {
		total += st.Broker().PortfolioValue(last)
	}

	if l.sessionStart == 0 {
		l.sessionStart = total
		return nil
	}
	if l.opts.KillSwitchPct <= 0 {
		return nil
	}

	if risk.DrawdownExceeded(total, l.sessionStart, l.opts.KillSwitchPct) {
		l.log.Error("kill switch tripped", "equity", total, "session_start", l.sessionStart)
		l.opts.Notifier.Push(
			"Trader: KILL SWITCH",
			fmt.Sprintf("equity %.2f below limit (start %.2f)", total, l.sessionStart),
			notify.PriorityUrgent,
		)
		return ErrKillSwitch
	}
	return nil
}

// flush persists every broker before exit.
func (l *Loop) flush() {
	for _, st := range l.strats {
		st.Broker().SaveTo(l.opts.Store)
	}
}

func (l *Loop) instruments() []string {
	seen := make(map[string]bool)
	var out []string
	for _, st := range l.strats {
		base, ok := st.(interface{ Instruments() []string })
		if !ok {
			continue
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
