package pipeline

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-phase/dsp/unwrap"
)

// Params holds the fixed constants of the conditioning chain.
// It is passed by value and never modified by the pipeline.
type Params struct {
	BadPoints        int     // leading samples overwritten by sample BadPoints
	LeadingSamples   int     // samples averaged to pick the unwrap direction
	WrapPivot        float64 // degrees
	WrapHigh         float64 // degrees
	WrapLow          float64 // degrees
	FullTurn         float64 // degrees
	DetrendDegree    int
	OutlierThreshold float64 // in standard deviations
	ModulationHz     float64
}

// DefaultParams returns the constants used for Imagent phase recordings.
func DefaultParams() Params {
	return Params{
		BadPoints:        12,
		LeadingSamples:   50,
		WrapPivot:        180,
		WrapHigh:         270,
		WrapLow:          90,
		FullTurn:         360,
		DetrendDegree:    3,
		OutlierThreshold: 3,
		ModulationHz:     1.1e8,
	}
}

var errInvalidParams = errors.New("pipeline: invalid parameters")

// Validate checks that p describes a runnable chain.
func (p Params) Validate() error {
	switch {
	case p.BadPoints < 0:
		return fmt.Errorf("%w: bad points %d < 0", errInvalidParams, p.BadPoints)
	case p.LeadingSamples <= 0:
		return fmt.Errorf("%w: leading samples %d <= 0", errInvalidParams, p.LeadingSamples)
	case p.DetrendDegree < 0:
		return fmt.Errorf("%w: detrend degree %d < 0", errInvalidParams, p.DetrendDegree)
	case p.OutlierThreshold <= 0:
		return fmt.Errorf("%w: outlier threshold %v <= 0", errInvalidParams, p.OutlierThreshold)
	case p.ModulationHz <= 0:
		return fmt.Errorf("%w: modulation frequency %v <= 0", errInvalidParams, p.ModulationHz)
	case p.FullTurn <= 0:
		return fmt.Errorf("%w: full turn %v <= 0", errInvalidParams, p.FullTurn)
	}
	return nil
}

// MinSamples returns the smallest column count the chain accepts.
func (p Params) MinSamples() int {
	return max(p.BadPoints+1, p.LeadingSamples, p.DetrendDegree+1)
}

func (p Params) thresholds() unwrap.Thresholds {
	return unwrap.Thresholds{
		Leading:  p.LeadingSamples,
		Pivot:    p.WrapPivot,
		High:     p.WrapHigh,
		Low:      p.WrapLow,
		FullTurn: p.FullTurn,
	}
}
