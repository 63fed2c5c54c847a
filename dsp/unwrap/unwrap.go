// Package unwrap removes single-turn phase wraparound from a channel of
// phase samples measured in degrees.
//
// The wrap direction is chosen per channel from the mean of its leading
// segment: channels that start in the lower half of the circle have their
// high-side excursions pulled down by a full turn, channels that start in the
// upper half have their low-side excursions pushed up.
package unwrap

import (
	"fmt"

	timestats "github.com/cwbudde/algo-phase/stats/time"
)

// Thresholds configures the unwrap decision, all values in degrees.
type Thresholds struct {
	Leading  int     // samples averaged to pick the wrap direction
	Pivot    float64 // leading mean below Pivot selects the high-side rule
	High     float64 // samples strictly above High are shifted down
	Low      float64 // samples strictly below Low are shifted up
	FullTurn float64
}

// Default returns the thresholds used by the conditioning pipeline.
func Default() Thresholds {
	return Thresholds{
		Leading:  50,
		Pivot:    180,
		High:     270,
		Low:      90,
		FullTurn: 360,
	}
}

// Direction reports which rule was applied to a channel.
type Direction int

const (
	// Down subtracts a full turn from samples above the high threshold.
	Down Direction = iota
	// Up adds a full turn to samples below the low threshold.
	Up
)

func (d Direction) String() string {
	if d == Up {
		return "up"
	}
	return "down"
}

// Channel unwraps x in place and returns the direction used and the number
// of samples shifted. len(x) must be at least th.Leading.
func Channel(x []float64, th Thresholds) (Direction, int, error) {
	if th.Leading <= 0 || len(x) < th.Leading {
		return Down, 0, fmt.Errorf("unwrap: need %d leading samples, have %d", th.Leading, len(x))
	}

	if timestats.Mean(x[:th.Leading]) < th.Pivot {
		n := 0
		for i, v := range x {
			if v > th.High {
				x[i] = v - th.FullTurn
				n++
			}
		}
		return Down, n, nil
	}

	n := 0
	for i, v := range x {
		if v < th.Low {
			x[i] = v + th.FullTurn
			n++
		}
	}
	return Up, n, nil
}
