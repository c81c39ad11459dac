package stattrak

import "strconv"

// LinearBinner maps float values onto a fixed number of equal-width
// bins over [Min, Max]. Values outside the range clamp to the edge
// bins. Useful for building histogram counters.
type LinearBinner struct {
	Min  float64
	Max  float64
	Bins int
}

// Bin returns the bin index for value.
func (b LinearBinner) Bin(value float64) int {
	if value <= b.Min {
		return 0
	}
	if value >= b.Max {
		return b.Bins - 1
	}
	f := (value - b.Min) / (b.Max - b.Min)
	return int(f * float64(b.Bins))
}

// Key returns the bin index as a counter path segment.
func (b LinearBinner) Key(value float64) string {
	return strconv.Itoa(b.Bin(value))
}
