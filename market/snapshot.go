package market

import "math"

// Snapshot holds the prices of every instrument observed at a single
// timestamp. Instruments without a finite price for that timestamp are
// simply absent.
type Snapshot map[string]float64

// Get returns the price for instr, or 0 if the snapshot has none.
func (s Snapshot) Get(instr string) float64 {
	return s[instr]
}

// Has reports whether the snapshot carries a price for instr.
func (s Snapshot) Has(instr string) bool {
	_, ok := s[instr]
	return ok
}

// Set stores a price, dropping NaN and infinite values.
func (s Snapshot) Set(instr string, price float64) {
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return
	}
	s[instr] = price
}

// Merge copies every price in other into s, overwriting existing entries.
// Used by replay loops to maintain a last-known-price map across ticks.
func (s Snapshot) Merge(other Snapshot) {
	for instr, price := range other {
		s[instr] = price
	}
}
