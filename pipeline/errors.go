package pipeline

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-phase/dsp/buffer"
	"github.com/cwbudde/algo-phase/dsp/core"
)

var (
	// ErrEmptyMatrix is returned for a nil matrix or one without samples.
	ErrEmptyMatrix = errors.New("pipeline: empty matrix")
	// ErrRaggedMatrix is returned when input rows differ in length.
	ErrRaggedMatrix = buffer.ErrRagged
	// ErrTooFewSamples is returned when a channel is too short for the chain.
	ErrTooFewSamples = errors.New("pipeline: too few samples per channel")
	// ErrNonFinite is returned when the input contains NaN or Inf.
	ErrNonFinite = errors.New("pipeline: non-finite sample")
)

// check validates m against p before any stage runs.
func (p Params) check(m *buffer.Matrix) error {
	if m == nil || m.Empty() {
		return ErrEmptyMatrix
	}
	if need := p.MinSamples(); m.Cols() < need {
		return fmt.Errorf("%w: have %d, need %d", ErrTooFewSamples, m.Cols(), need)
	}
	for i := range m.Rows() {
		if j := core.FirstNonFinite(m.Row(i)); j >= 0 {
			return fmt.Errorf("%w: channel %d sample %d is %v", ErrNonFinite, i, j, m.At(i, j))
		}
	}
	return nil
}
