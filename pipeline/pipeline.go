package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cwbudde/algo-phase/dsp/buffer"
)

// StageReport describes one completed stage.
type StageReport struct {
	Stage   Stage
	Changed int // samples rewritten, where the stage counts them
	Elapsed time.Duration
}

// Result is the outcome of a complete run.
type Result struct {
	Final   *buffer.Matrix
	Reports []StageReport
}

type step struct {
	stage Stage
	apply func(rowRunner, *buffer.Matrix) (*buffer.Matrix, int, error)
}

// Pipeline is a configured conditioning chain. It holds no per-run state
// and may be reused.
type Pipeline struct {
	params Params
	log    *slog.Logger
	rows   rowRunner
	steps  []step
}

// New returns a Pipeline for params.
func New(params Params, opts ...Option) (*Pipeline, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	p := &Pipeline{
		params: params,
		log:    slog.New(slog.DiscardHandler),
		rows:   sequential,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}

	th := params.thresholds()
	p.steps = []step{
		{StageBadPoints, func(r rowRunner, m *buffer.Matrix) (*buffer.Matrix, int, error) {
			return replaceBadPoints(r, m, params.BadPoints)
		}},
		{StageUnwrap, func(r rowRunner, m *buffer.Matrix) (*buffer.Matrix, int, error) {
			return unwrapPhase(r, m, th)
		}},
		{StageDetrend, func(r rowRunner, m *buffer.Matrix) (*buffer.Matrix, int, error) {
			return detrend(r, m, params.DetrendDegree)
		}},
		{StageMeanRemoval, removeMean},
		{StageOutliers, func(r rowRunner, m *buffer.Matrix) (*buffer.Matrix, int, error) {
			return interpolateOutliers(r, m, params.BadPoints, params.OutlierThreshold)
		}},
		{StageNormalize, removeMean},
		{StagePicoseconds, func(r rowRunner, m *buffer.Matrix) (*buffer.Matrix, int, error) {
			return toPicoseconds(r, m, params.ModulationHz)
		}},
	}
	return p, nil
}

// Params returns the constants the pipeline was built with.
func (p *Pipeline) Params() Params { return p.params }

// Validate reports whether in is acceptable input for Run: non-empty,
// finite and long enough for every stage.
func (p *Pipeline) Validate(in *buffer.Matrix) error {
	return p.params.check(in)
}

// Run validates in and executes every stage, offering each result to sink.
// The input matrix is not modified. Nothing reaches sink when in fails
// validation.
func (p *Pipeline) Run(ctx context.Context, in *buffer.Matrix, sink Sink) (*Result, error) {
	if err := p.Validate(in); err != nil {
		return nil, err
	}
	if sink == nil {
		sink = DiscardSink{}
	}

	rows, cols := in.Shape()
	p.log.Info("pipeline start", "channels", rows, "samples", cols, "workers", p.rows.workers)

	res := &Result{Reports: make([]StageReport, 0, len(p.steps))}
	cur := in
	for _, st := range p.steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		start := time.Now()
		next, changed, err := st.apply(p.rows, cur)
		if err != nil {
			return nil, fmt.Errorf("pipeline: %s: %w", st.stage, err)
		}
		if !next.SameShape(in) {
			return nil, fmt.Errorf("pipeline: %s changed shape", st.stage)
		}
		if err := sink.Save(ctx, st.stage, next); err != nil {
			return nil, fmt.Errorf("pipeline: save %s: %w", st.stage, err)
		}

		rep := StageReport{Stage: st.stage, Changed: changed, Elapsed: time.Since(start)}
		res.Reports = append(res.Reports, rep)
		p.log.Debug("stage done",
			"stage", st.stage.String(),
			"index", int(st.stage),
			"changed", changed,
			"elapsed", rep.Elapsed,
		)
		cur = next
	}

	res.Final = cur
	p.log.Info("pipeline done", "stages", len(res.Reports))
	return res, nil
}

// RunSource loads the input from src and runs the chain.
func (p *Pipeline) RunSource(ctx context.Context, src Source, sink Sink) (*Result, error) {
	m, err := src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("pipeline: load: %w", err)
	}
	return p.Run(ctx, m, sink)
}

// RunRows builds a matrix from rows and runs the chain.
func (p *Pipeline) RunRows(ctx context.Context, rows [][]float64, sink Sink) (*Result, error) {
	m, err := buffer.FromRows(rows)
	if err != nil {
		if errors.Is(err, buffer.ErrEmpty) {
			return nil, ErrEmptyMatrix
		}
		return nil, err
	}
	return p.Run(ctx, m, sink)
}
