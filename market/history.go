package market

// History keeps a bounded rolling window of recent prices per instrument.
// Strategies use it to compute indicators without an external feature
// pipeline. Zero instruments are added lazily on first Push.
type History struct {
	window int
	prices map[string][]float64
}

// DefaultWindow bounds per-instrument history; enough for the slowest
// indicator used by the built-in policies.
const DefaultWindow = 50

func NewHistory(window int) *History {
	if window <= 0 {
		window = DefaultWindow
	}
	return &History{
		window: window,
		prices: make(map[string][]float64),
	}
}

// Push appends a price, evicting the oldest once the window is full.
func (h *History) Push(instr string, price float64) {
	series := append(h.prices[instr], price)
	if len(series) > h.window {
		series = series[1:]
	}
	h.prices[instr] = series
}

// Prices returns the rolled window for instr, oldest first. The returned
// slice is owned by the history; callers must not mutate it.
func (h *History) Prices(instr string) []float64 {
	return h.prices[instr]
}

// Len returns the number of samples held for instr.
func (h *History) Len(instr string) int {
	return len(h.prices[instr])
}

// Drop removes an instrument's window entirely.
func (h *History) Drop(instr string) {
	delete(h.prices, instr)
}
