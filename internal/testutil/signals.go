// Package testutil holds deterministic signal generators and tolerance
// assertions shared by the package tests.
package testutil

import (
	"math"
	"math/rand"
)

// DC generates a constant-valued signal.
func DC(value float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = value
	}
	return out
}

// DeterministicNoise generates uniform noise in [-amplitude, amplitude)
// with a fixed seed for reproducibility.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// DeterministicSine generates amplitude*sin(2*pi*freqHz*i/sampleRate).
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out
}

// Polynomial evaluates coeffs (ascending powers) at x = start, start+1, ...
func Polynomial(coeffs []float64, start float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		x := start + float64(i)
		var y float64
		for k := len(coeffs) - 1; k >= 0; k-- {
			y = y*x + coeffs[k]
		}
		out[i] = y
	}
	return out
}

// Alternating generates +amplitude, -amplitude, +amplitude, ...
func Alternating(amplitude float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		if i%2 == 0 {
			out[i] = amplitude
		} else {
			out[i] = -amplitude
		}
	}
	return out
}

// Add returns the element-wise sum of equally sized signals.
func Add(signals ...[]float64) []float64 {
	if len(signals) == 0 {
		return nil
	}
	out := make([]float64, len(signals[0]))
	for _, s := range signals {
		for i := range out {
			out[i] += s[i]
		}
	}
	return out
}
