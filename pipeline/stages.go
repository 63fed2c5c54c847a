package pipeline

import (
	"sync/atomic"

	"github.com/cwbudde/algo-phase/dsp/buffer"
	"github.com/cwbudde/algo-phase/dsp/core"
	"github.com/cwbudde/algo-phase/dsp/interp"
	"github.com/cwbudde/algo-phase/dsp/polyfit"
	"github.com/cwbudde/algo-phase/dsp/unwrap"
	timestats "github.com/cwbudde/algo-phase/stats/time"
)

// Every stage returns a new matrix and the number of samples it changed
// (0 where a count is not meaningful).

func replaceBadPoints(r rowRunner, in *buffer.Matrix, n int) (*buffer.Matrix, int, error) {
	out := in.Clone()
	if n <= 0 {
		return out, 0, nil
	}
	err := r.each(out, func(_ int, row []float64) error {
		good := row[n]
		for j := range n {
			row[j] = good
		}
		return nil
	})
	return out, n * out.Rows(), err
}

func unwrapPhase(r rowRunner, in *buffer.Matrix, th unwrap.Thresholds) (*buffer.Matrix, int, error) {
	out := in.Clone()
	var shifted atomic.Int64
	err := r.each(out, func(_ int, row []float64) error {
		_, n, err := unwrap.Channel(row, th)
		shifted.Add(int64(n))
		return err
	})
	return out, int(shifted.Load()), err
}

func detrend(r rowRunner, in *buffer.Matrix, degree int) (*buffer.Matrix, int, error) {
	out := in.Clone()
	err := r.each(out, func(_ int, row []float64) error {
		_, err := polyfit.DetrendInPlace(row, degree)
		return err
	})
	return out, 0, err
}

func removeMean(r rowRunner, in *buffer.Matrix) (*buffer.Matrix, int, error) {
	out := in.Clone()
	err := r.each(out, func(_ int, row []float64) error {
		timestats.Center(row)
		return nil
	})
	return out, 0, err
}

func interpolateOutliers(r rowRunner, in *buffer.Matrix, skip int, k float64) (*buffer.Matrix, int, error) {
	out := in.Clone()
	var fixed atomic.Int64
	err := r.each(out, func(_ int, row []float64) error {
		fixed.Add(int64(len(interp.Repair(row, skip, k))))
		return nil
	})
	return out, int(fixed.Load()), err
}

func toPicoseconds(r rowRunner, in *buffer.Matrix, modHz float64) (*buffer.Matrix, int, error) {
	out := in.Clone()
	err := r.each(out, func(_ int, row []float64) error {
		for j, v := range row {
			row[j] = core.PhaseDelay(v, modHz)
		}
		return nil
	})
	return out, 0, err
}

// ReplaceBadPoints overwrites samples [0, n) of every channel with sample n.
// n must be smaller than the column count.
func ReplaceBadPoints(m *buffer.Matrix, n int) *buffer.Matrix {
	out, _, _ := replaceBadPoints(sequential, m, n)
	return out
}

// Unwrap removes single-turn wraparound channel by channel.
func Unwrap(m *buffer.Matrix, th unwrap.Thresholds) (*buffer.Matrix, error) {
	out, _, err := unwrapPhase(sequential, m, th)
	return out, err
}

// Detrend subtracts a least-squares polynomial of the given degree, fitted
// against x = 1..N, from every channel.
func Detrend(m *buffer.Matrix, degree int) (*buffer.Matrix, error) {
	out, _, err := detrend(sequential, m, degree)
	return out, err
}

// RemoveMean centres every channel on zero.
func RemoveMean(m *buffer.Matrix) *buffer.Matrix {
	out, _, _ := removeMean(sequential, m)
	return out
}

// InterpolateOutliers replaces k-sigma outliers of every channel with the
// midpoint of their neighbours. The spread estimate ignores the first skip
// samples of each channel.
func InterpolateOutliers(m *buffer.Matrix, skip int, k float64) *buffer.Matrix {
	out, _, _ := interpolateOutliers(sequential, m, skip, k)
	return out
}

// ToPicoseconds converts phase degrees to picoseconds at modulation
// frequency modHz.
func ToPicoseconds(m *buffer.Matrix, modHz float64) *buffer.Matrix {
	out, _, _ := toPicoseconds(sequential, m, modHz)
	return out
}
