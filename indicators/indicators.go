// Package indicators provides the small set of in-strategy indicators
// the built-in policies need, computed over bounded rolling windows of
// close prices. Batch helpers work on slices; streaming types carry
// their own state via Update/Ready/Value.
package indicators

// SMA returns the simple moving average of the last period prices, or 0
// when there is not enough data.
func SMA(prices []float64, period int) float64 {
	if period <= 0 || len(prices) < period {
		return 0
	}
	sum := 0.0
	for _, p := range prices[len(prices)-period:] {
		sum += p
	}
	return sum / float64(period)
}

// ROC returns the rate of change over the last period steps as a
// fraction: (latest - past) / past. Returns 0 without enough data.
func ROC(prices []float64, period int) float64 {
	if period <= 0 || len(prices) <= period {
		return 0
	}
	past := prices[len(prices)-1-period]
	if past == 0 {
		return 0
	}
	return (prices[len(prices)-1] - past) / past
}

// RSI computes Wilder's relative strength index over the full slice with
// the given lookback window. Returns the neutral 50 without enough data
// and 100 when there are no down moves in the seed window.
func RSI(prices []float64, window int) float64 {
	if window <= 0 || len(prices) < window+1 {
		return 50
	}

	// Seed averages from the first window of deltas.
	var up, down float64
	for i := 1; i <= window; i++ {
		delta := prices[i] - prices[i-1]
		if delta >= 0 {
			up += delta
		} else {
			down -= delta
		}
	}
	up /= float64(window)
	down /= float64(window)

	// Wilder smoothing over the remainder.
	for i := window + 1; i < len(prices); i++ {
		delta := prices[i] - prices[i-1]
		upval, downval := 0.0, 0.0
		if delta > 0 {
			upval = delta
		} else {
			downval = -delta
		}
		up = (up*float64(window-1) + upval) / float64(window)
		down = (down*float64(window-1) + downval) / float64(window)
	}

	if down == 0 {
		return 100
	}
	rs := up / down
	return 100 - 100/(1+rs)
}
