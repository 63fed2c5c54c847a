package pipeline

import (
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/cwbudde/algo-phase/dsp/buffer"
)

// rowRunner applies a per-channel function to every row of a matrix.
type rowRunner struct {
	workers int
}

var sequential = rowRunner{workers: 1}

// each calls fn for every row of m. With more than one worker rows are
// processed concurrently; each row is only ever touched by one call.
func (r rowRunner) each(m *buffer.Matrix, fn func(i int, row []float64) error) error {
	if r.workers <= 1 {
		for i := range m.Rows() {
			if err := fn(i, m.Row(i)); err != nil {
				return fmt.Errorf("channel %d: %w", i, err)
			}
		}
		return nil
	}

	var g errgroup.Group
	g.SetLimit(r.workers)
	for i := range m.Rows() {
		g.Go(func() error {
			if err := fn(i, m.Row(i)); err != nil {
				return fmt.Errorf("channel %d: %w", i, err)
			}
			return nil
		})
	}
	return g.Wait()
}
