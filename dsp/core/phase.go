package core

import "math"

// Picoseconds per second.
const picoPerSecond = 1e12

// PhaseDelay converts a phase angle in degrees to a time delay in
// picoseconds for a carrier modulated at modHz:
//
//	delay = 1e12 * deg / (360 * modHz)
//
// The multiplication is applied before the division so results are
// bit-identical to evaluating the formula left to right.
func PhaseDelay(deg, modHz float64) float64 {
	return picoPerSecond * deg / (360 * modHz)
}

// FirstNonFinite returns the index of the first NaN or Inf in x, or -1.
func FirstNonFinite(x []float64) int {
	for i, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return i
		}
	}
	return -1
}
