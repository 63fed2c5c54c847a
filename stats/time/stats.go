// Package time computes per-channel time-domain statistics for phase data.
//
// Every function operates on a single channel (one matrix row) and is safe
// to call concurrently on different rows.
package time

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary holds the statistics persisted alongside every channel snapshot.
type Summary struct {
	Length int
	Mean   float64
	StdDev float64 // sample (N-1) standard deviation
	Min    float64
	MinPos int
	Max    float64
	MaxPos int
	Range  float64 // max - min
}

// Mean returns the arithmetic mean of x using Kahan summation.
// Returns 0 for an empty slice.
func Mean(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}

	var sum, c float64
	for _, v := range x {
		y := v - c
		t := sum + y
		c = (t - sum) - y
		sum = t
	}

	return sum / float64(len(x))
}

// StdDev returns the unbiased sample standard deviation (divisor N-1).
// Returns NaN when fewer than two samples are available.
func StdDev(x []float64) float64 {
	if len(x) < 2 {
		return math.NaN()
	}
	return stat.StdDev(x, nil)
}

// Center subtracts the mean of x from every sample in place and returns
// the removed mean.
func Center(x []float64) float64 {
	m := Mean(x)
	floats.AddConst(-m, x)
	return m
}

// Summarize computes a Summary in a single pass using Welford's update.
func Summarize(x []float64) Summary {
	n := len(x)
	if n == 0 {
		return Summary{StdDev: math.NaN()}
	}

	var (
		mean   float64
		m2     float64
		minVal = x[0]
		maxVal = x[0]
		minPos int
		maxPos int
	)

	for i, v := range x {
		delta := v - mean
		mean += delta / float64(i+1)
		m2 += delta * (v - mean)

		if v < minVal {
			minVal = v
			minPos = i
		}
		if v > maxVal {
			maxVal = v
			maxPos = i
		}
	}

	std := math.NaN()
	if n > 1 {
		std = math.Sqrt(m2 / float64(n-1))
	}

	return Summary{
		Length: n,
		Mean:   mean,
		StdDev: std,
		Min:    minVal,
		MinPos: minPos,
		Max:    maxVal,
		MaxPos: maxPos,
		Range:  maxVal - minVal,
	}
}
