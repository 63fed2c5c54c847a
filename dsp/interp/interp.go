package interp

import (
	"math"

	timestats "github.com/cwbudde/algo-phase/stats/time"
)

// Midpoint returns the arithmetic mean of a and b.
func Midpoint(a, b float64) float64 {
	return (a + b) / 2
}

// FindOutliers returns, in ascending order, every index i of x with
// |x[i]| > k*std, where std is the sample standard deviation of x[skip:].
// The scan covers all of x, including the skipped prefix. It also returns
// the std used. An undefined std (fewer than two tail samples) yields no
// outliers; a zero std flags every nonzero sample.
func FindOutliers(x []float64, skip int, k float64) ([]int, float64) {
	if skip < 0 {
		skip = 0
	}
	if skip >= len(x) {
		return nil, math.NaN()
	}

	std := timestats.StdDev(x[skip:])
	if math.IsNaN(std) {
		return nil, std
	}

	limit := k * std
	var idx []int
	for i, v := range x {
		if math.Abs(v) > limit {
			idx = append(idx, i)
		}
	}
	return idx, std
}

// TrimEdges drops idx[0] when it is the first sample and the final entry
// when it is the last sample of an n-sample channel. idx must be ascending.
func TrimEdges(idx []int, n int) []int {
	if len(idx) > 0 && idx[0] == 0 {
		idx = idx[1:]
	}
	if len(idx) > 0 && idx[len(idx)-1] == n-1 {
		idx = idx[:len(idx)-1]
	}
	return idx
}

// Bridge replaces x[i] with the midpoint of x[i-1] and x[i+1] for each i in
// idx, in the order given. Indices without both neighbours are skipped.
// It returns the number of samples replaced.
func Bridge(x []float64, idx []int) int {
	n := 0
	for _, i := range idx {
		if i <= 0 || i >= len(x)-1 {
			continue
		}
		x[i] = Midpoint(x[i-1], x[i+1])
		n++
	}
	return n
}

// Repair runs FindOutliers, TrimEdges and Bridge on x in place and returns
// the indices that were replaced.
func Repair(x []float64, skip int, k float64) []int {
	idx, _ := FindOutliers(x, skip, k)
	idx = TrimEdges(idx, len(x))
	Bridge(x, idx)
	return idx
}
