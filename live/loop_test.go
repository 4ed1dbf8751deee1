package live

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/stratlab/broker"
	"github.com/rustyeddy/stratlab/market"
	"github.com/rustyeddy/stratlab/risk"
	"github.com/rustyeddy/stratlab/strategies"
)

// holder is a strategy that just marks to market: it never trades, so
// equity moves with the seeded position alone.
type holder struct {
	name   string
	broker *broker.Broker
	instrs []string
	ticks  int
	onTick func(h *holder, snap market.Snapshot, ts time.Time)
}

func newHolder(name string, instrs ...string) *holder {
	return &holder{
		name:   name,
		broker: broker.New(name, 1000, risk.NewManager(0, 0)),
		instrs: instrs,
	}
}

func (h *holder) Name() string           { return h.name }
func (h *holder) Broker() *broker.Broker { return h.broker }
func (h *holder) Instruments() []string  { return h.instrs }

func (h *holder) RunTick(snap market.Snapshot, ts time.Time) error {
	h.ticks++
	if h.onTick != nil {
		h.onTick(h, snap, ts)
	}
	return nil
}

// scriptedSource returns one snapshot per call, then errors out.
type scriptedSource struct {
	mu    sync.Mutex
	snaps []market.Snapshot
	errs  []error
	calls int
}

func (s *scriptedSource) Latest(ctx context.Context, instruments []string) (market.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.calls
	s.calls++
	if i < len(s.errs) && s.errs[i] != nil {
		return nil, s.errs[i]
	}
	if i < len(s.snaps) {
		return s.snaps[i], nil
	}
	return nil, fmt.Errorf("script exhausted")
}

// pushSpy records notifications.
type pushSpy struct {
	mu     sync.Mutex
	pushes []string
}

func (p *pushSpy) Push(title, message, priority string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pushes = append(p.pushes, priority+": "+title)
}

// memStore counts saves.
type memStore struct {
	mu    sync.Mutex
	saves int
	data  map[string]broker.State
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string]broker.State)}
}

func (m *memStore) Save(key string, st broker.State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	m.data[key] = st
	return nil
}

func (m *memStore) Load(key string) (broker.State, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.data[key]
	return st, ok, nil
}

func TestKillSwitchTripsAndFlushes(t *testing.T) {
	h := newHolder("h", "A")
	// Seed a 10-share position so equity follows the price.
	h.broker.Restore(broker.State{
		Balance:   0,
		Positions: map[string]broker.Position{"A": {Quantity: 10, EntryPrice: 100}},
	})

	src := &scriptedSource{snaps: []market.Snapshot{
		{"A": 100}, // session start: equity 1000
		{"A": 80},  // 20% drawdown
	}}
	spy := &pushSpy{}
	store := newMemStore()

	l := New([]strategies.Strategy{h}, src, Options{
		Interval:      time.Millisecond,
		KillSwitchPct: 0.05,
		Store:         store,
		Notifier:      spy,
	})

	err := l.Run(context.Background())
	require.ErrorIs(t, err, ErrKillSwitch)

	// The urgent push fired and state was flushed on the way out.
	spy.mu.Lock()
	defer spy.mu.Unlock()
	require.NotEmpty(t, spy.pushes)
	assert.Contains(t, spy.pushes[len(spy.pushes)-1], "urgent")
	assert.Greater(t, store.saves, 0)
}

func TestCancelReturnsNil(t *testing.T) {
	h := newHolder("h", "A")
	ctx, cancel := context.WithCancel(context.Background())

	src := &scriptedSource{snaps: []market.Snapshot{{"A": 100}}}
	h.onTick = func(h *holder, snap market.Snapshot, ts time.Time) { cancel() }

	store := newMemStore()
	l := New([]strategies.Strategy{h}, src, Options{Interval: time.Millisecond, Store: store})

	err := l.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, h.ticks)
	assert.Greater(t, store.saves, 0, "flushed on shutdown")
}

func TestFetchFailureSkipsTick(t *testing.T) {
	h := newHolder("h", "A")
	ctx, cancel := context.WithCancel(context.Background())
	h.onTick = func(h *holder, snap market.Snapshot, ts time.Time) { cancel() }

	src := &scriptedSource{
		errs:  []error{errors.New("market closed"), nil},
		snaps: []market.Snapshot{nil, {"A": 100}},
	}

	l := New([]strategies.Strategy{h}, src, Options{Interval: time.Millisecond})
	require.NoError(t, l.Run(ctx))

	// The failed first fetch produced no tick; the second did.
	assert.Equal(t, 1, h.ticks)
	assert.Equal(t, 2, src.calls)
}

func TestNewFillPushesNotification(t *testing.T) {
	h := newHolder("h", "A")
	ctx, cancel := context.WithCancel(context.Background())
	h.onTick = func(h *holder, snap market.Snapshot, ts time.Time) {
		h.broker.Buy("A", snap["A"], ts, 0.5, nil)
		cancel()
	}

	src := &scriptedSource{snaps: []market.Snapshot{{"A": 10}}}
	spy := &pushSpy{}

	l := New([]strategies.Strategy{h}, src, Options{Interval: time.Millisecond, Notifier: spy})
	require.NoError(t, l.Run(ctx))

	spy.mu.Lock()
	defer spy.mu.Unlock()
	require.Len(t, spy.pushes, 1)
	assert.Equal(t, "high: Trader: h", spy.pushes[0])
}

func TestWarmRestart(t *testing.T) {
	store := newMemStore()
	store.data["h"] = broker.State{
		Balance:   250,
		Positions: map[string]broker.Position{"A": {Quantity: 5, EntryPrice: 50}},
	}

	h := newHolder("h", "A")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	l := New([]strategies.Strategy{h}, &scriptedSource{}, Options{Interval: time.Millisecond, Store: store})
	require.NoError(t, l.Run(ctx))

	assert.Equal(t, 250.0, h.broker.Cash())
	assert.Equal(t, 5.0, h.broker.PositionQuantity("A"))
}

func TestRunRequiresSource(t *testing.T) {
	h := newHolder("h", "A")
	err := New([]strategies.Strategy{h}, nil, Options{}).Run(context.Background())
	require.Error(t, err)
}
