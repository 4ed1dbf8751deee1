package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCost(t *testing.T) {
	m := NewManager(0.002, 0.001)

	assert.InDelta(t, 0.98098, m.Cost(49, 10.01), 1e-9)
	assert.Zero(t, m.Cost(0, 100))
}

func TestSlippageDirection(t *testing.T) {
	m := NewManager(0.002, 0.001)

	buy := m.SlippageAdjusted(100, Buy)
	sell := m.SlippageAdjusted(100, Sell)

	assert.Greater(t, buy, 100.0)
	assert.Less(t, sell, 100.0)
	assert.InDelta(t, 100*m.SlippageRate, buy-100, 1e-9)
	assert.InDelta(t, 100*m.SlippageRate, 100-sell, 1e-9)
}

func TestSlippageUnknownSideUnchanged(t *testing.T) {
	m := NewManager(0.002, 0.001)

	assert.Equal(t, 100.0, m.SlippageAdjusted(100, Side("HOLD")))
}

func TestStopLossBoundary(t *testing.T) {
	m := DefaultManager()

	// Exactly at the boundary does not trigger; just below does.
	assert.False(t, m.StopLossTriggered(97.0, 100, 0.03))
	assert.True(t, m.StopLossTriggered(96.99, 100, 0.03))
}

func TestStopLossZeroEntry(t *testing.T) {
	m := DefaultManager()

	assert.False(t, m.StopLossTriggered(1, 0, 0.03))
}

func TestDrawdownExceeded(t *testing.T) {
	assert.False(t, DrawdownExceeded(960, 1000, 0.05))
	assert.False(t, DrawdownExceeded(950, 1000, 0.05))
	assert.True(t, DrawdownExceeded(949, 1000, 0.05))
	assert.False(t, DrawdownExceeded(100, 0, 0.05))
}
