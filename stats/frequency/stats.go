// Package frequency summarises the spectral content of a channel.
//
// The channel is Hann-windowed, zero-padded to the next power of two and
// transformed with algo-fft. Statistics are computed on the one-sided power
// spectrum, bins 0..N/2.
package frequency

import (
	"errors"
	"fmt"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-phase/dsp/window"
)

// ErrTooShort is returned for channels with fewer than two samples.
var ErrTooShort = errors.New("frequency: need at least 2 samples")

// rolloffFraction is the share of total power below the rolloff frequency.
const rolloffFraction = 0.85

// Summary holds spectral statistics of one channel.
type Summary struct {
	FFTSize    int
	BinCount   int
	BinHz      float64
	PeakBin    int // strongest non-DC bin
	PeakHz     float64
	PeakPower  float64
	Centroid   float64 // power-weighted mean frequency (Hz)
	Rolloff    float64 // frequency below which 85% of the power lies (Hz)
	TotalPower float64
}

// PowerSpectrum returns |X[k]|^2 for k = 0..N/2 of the Hann-windowed,
// zero-padded signal together with the FFT size N.
func PowerSpectrum(x []float64) ([]float64, int, error) {
	if len(x) < 2 {
		return nil, 0, ErrTooShort
	}

	size := nextPowerOf2(len(x))

	windowed := append([]float64(nil), x...)
	window.Apply(window.TypeHann, windowed)
	in := make([]complex128, size)
	for i, v := range windowed {
		in[i] = complex(v, 0)
	}

	plan, err := algofft.NewPlan64(size)
	if err != nil {
		return nil, 0, fmt.Errorf("frequency: fft plan %d: %w", size, err)
	}

	out := make([]complex128, size)
	if err := plan.Forward(out, in); err != nil {
		return nil, 0, fmt.Errorf("frequency: fft forward: %w", err)
	}

	bins := size/2 + 1
	re := make([]float64, bins)
	im := make([]float64, bins)
	for k := range bins {
		re[k] = real(out[k])
		im[k] = imag(out[k])
	}

	power := make([]float64, bins)
	vecmath.Power(power, re, im)
	return power, size, nil
}

// Analyze computes a Summary of x sampled at sampleRate Hz.
// A non-positive sampleRate reports frequencies in cycles per sample.
func Analyze(x []float64, sampleRate float64) (Summary, error) {
	power, size, err := PowerSpectrum(x)
	if err != nil {
		return Summary{}, err
	}
	if sampleRate <= 0 {
		sampleRate = 1
	}
	return summarize(power, size, sampleRate), nil
}

func summarize(power []float64, size int, sampleRate float64) Summary {
	s := Summary{
		FFTSize:  size,
		BinCount: len(power),
		BinHz:    sampleRate / float64(size),
	}

	var weighted float64
	for k, p := range power {
		s.TotalPower += p
		weighted += float64(k) * s.BinHz * p
		if k > 0 && p > s.PeakPower {
			s.PeakPower = p
			s.PeakBin = k
		}
	}
	s.PeakHz = float64(s.PeakBin) * s.BinHz

	if s.TotalPower == 0 {
		return s
	}
	s.Centroid = weighted / s.TotalPower

	limit := rolloffFraction * s.TotalPower
	var acc float64
	for k, p := range power {
		acc += p
		if acc >= limit {
			s.Rolloff = float64(k) * s.BinHz
			break
		}
	}
	return s
}

func nextPowerOf2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
