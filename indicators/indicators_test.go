package indicators

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSMA(t *testing.T) {
	prices := []float64{1, 2, 3, 4, 5}

	assert.InDelta(t, 4.0, SMA(prices, 3), 1e-9)
	assert.InDelta(t, 3.0, SMA(prices, 5), 1e-9)
	assert.Equal(t, 0.0, SMA(prices, 6), "insufficient data")
	assert.Equal(t, 0.0, SMA(prices, 0))
}

func TestROC(t *testing.T) {
	prices := []float64{100, 101, 102, 110}

	assert.InDelta(t, 0.10, ROC(prices, 3), 1e-9)
	assert.InDelta(t, (110.0-102.0)/102.0, ROC(prices, 1), 1e-9)
	assert.Equal(t, 0.0, ROC(prices, 4), "needs period+1 points")
	assert.Equal(t, 0.0, ROC([]float64{0, 5}, 1), "zero base")
}

func TestRSI(t *testing.T) {
	up := []float64{1, 2, 3, 4, 5, 6}
	assert.Equal(t, 100.0, RSI(up, 5), "no down moves")

	assert.Equal(t, 50.0, RSI([]float64{1, 2}, 5), "insufficient data")

	// Alternating equal up/down moves give a neutral reading.
	flat := []float64{10, 11, 10, 11, 10, 11, 10, 11, 10}
	got := RSI(flat, 4)
	assert.Greater(t, got, 30.0)
	assert.Less(t, got, 70.0)

	down := []float64{10, 9, 8, 7, 6, 5}
	assert.Less(t, RSI(down, 5), 1.0)
}

func TestSimpleMAStreaming(t *testing.T) {
	ma := NewMA(3)
	assert.Equal(t, "MA(3)", ma.Name())
	assert.Equal(t, 3, ma.Warmup())

	ma.Update(1)
	ma.Update(2)
	assert.False(t, ma.Ready())
	assert.Equal(t, 0.0, ma.Value())

	ma.Update(3)
	assert.True(t, ma.Ready())
	assert.InDelta(t, 2.0, ma.Value(), 1e-9)

	// Window slides: oldest value drops out.
	ma.Update(6)
	assert.InDelta(t, (2.0+3.0+6.0)/3.0, ma.Value(), 1e-9)

	ma.Reset()
	assert.False(t, ma.Ready())
}

func TestExponentialMAStreaming(t *testing.T) {
	ema := NewEMA(3)
	assert.Equal(t, "EMA(3)", ema.Name())

	ema.Update(2)
	ema.Update(4)
	assert.False(t, ema.Ready())

	// Warmup completes with an SMA seed.
	ema.Update(6)
	assert.True(t, ema.Ready())
	assert.InDelta(t, 4.0, ema.Value(), 1e-9)

	// Next update applies the 2/(n+1) multiplier.
	ema.Update(8)
	want := (8.0-4.0)*0.5 + 4.0
	assert.InDelta(t, want, ema.Value(), 1e-9)

	ema.Reset()
	assert.False(t, ema.Ready())
	assert.Equal(t, 0.0, ema.Value())
}
