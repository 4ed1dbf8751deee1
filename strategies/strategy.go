package strategies

import (
	"fmt"
	"strings"
	"time"

	"github.com/rustyeddy/stratlab/broker"
	"github.com/rustyeddy/stratlab/market"
	"github.com/rustyeddy/stratlab/risk"
)

// Strategy is the policy interface the replay driver dispatches to. It is
// called once per tick with the snapshot for that timestamp. Every
// strategy owns exactly one broker and one bounded rolling history.
type Strategy interface {
	Name() string
	Broker() *broker.Broker
	RunTick(snap market.Snapshot, ts time.Time) error
}

// Config carries the constructor parameters shared by the built-in
// policies. Values are passed explicitly; there is no ambient lookup.
type Config struct {
	Name        string   `json:"name" yaml:"name"`
	Policy      string   `json:"policy" yaml:"policy"`
	Balance     float64  `json:"balance" yaml:"balance"`
	Instruments []string `json:"instruments" yaml:"instruments"`

	CommissionRate float64 `json:"commission_rate" yaml:"commission_rate"`
	SlippageRate   float64 `json:"slippage_rate" yaml:"slippage_rate"`

	StopLossPct     float64 `json:"stop_loss_pct" yaml:"stop_loss_pct"`
	TrailingStopPct float64 `json:"trailing_stop_pct" yaml:"trailing_stop_pct"`

	// Fraction of the initial balance committed per entry.
	Fraction float64 `json:"fraction" yaml:"fraction"`

	// Core-satellite vault allocation; empty instrument disables it.
	VaultInstrument string  `json:"vault_instrument,omitempty" yaml:"vault_instrument,omitempty"`
	VaultFraction   float64 `json:"vault_fraction,omitempty" yaml:"vault_fraction,omitempty"`
}

func (c *Config) defaults() {
	if c.Balance <= 0 {
		c.Balance = 1000
	}
	if c.CommissionRate == 0 {
		c.CommissionRate = risk.DefaultCommissionRate
	}
	if c.SlippageRate == 0 {
		c.SlippageRate = risk.DefaultSlippageRate
	}
	if c.StopLossPct == 0 {
		c.StopLossPct = 0.05
	}
	if c.TrailingStopPct == 0 {
		c.TrailingStopPct = 0.10
	}
	if c.Fraction == 0 {
		c.Fraction = 0.20
	}
}

// New builds a strategy by policy name. The broker is created here so
// ownership is unambiguous: one broker per strategy, never shared.
func New(cfg Config) (Strategy, error) {
	cfg.defaults()

	name := cfg.Name
	if name == "" {
		name = cfg.Policy
	}
	b := broker.New(name, cfg.Balance, risk.NewManager(cfg.CommissionRate, cfg.SlippageRate))
	base := newBase(name, b, cfg.Instruments, cfg.StopLossPct, cfg.TrailingStopPct)

	switch strings.ToLower(strings.TrimSpace(cfg.Policy)) {
	case "trend":
		return &Trend{
			Base:            base,
			Fast:            10,
			Slow:            20,
			Fraction:        cfg.Fraction,
			VaultInstrument: cfg.VaultInstrument,
			VaultFraction:   cfg.VaultFraction,
		}, nil

	case "mean-reversion", "meanrev":
		return &MeanReversion{
			Base:     base,
			Window:   14,
			BuyRSI:   30,
			SellRSI:  70,
			Fraction: cfg.Fraction,
		}, nil

	case "grid":
		return &Grid{
			Base:     base,
			Levels:   20,
			RangePct: 0.10,
			grids:    make(map[string]*gridState),
		}, nil

	case "dca":
		return &DCA{
			Base:    base,
			Amount:  50,
			lastBuy: make(map[string]string),
		}, nil

	case "momentum":
		return &Momentum{
			Base:      base,
			Period:    10,
			Threshold: 0.02,
			Fraction:  cfg.Fraction,
		}, nil

	default:
		return nil, fmt.Errorf("unknown policy %q (supported: trend, mean-reversion, grid, dca, momentum)", cfg.Policy)
	}
}
