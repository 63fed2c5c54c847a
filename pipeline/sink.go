package pipeline

import (
	"context"
	"errors"

	"github.com/cwbudde/algo-phase/dsp/buffer"
)

// Source supplies the raw phase matrix in degrees.
type Source interface {
	Load(ctx context.Context) (*buffer.Matrix, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) (*buffer.Matrix, error)

// Load calls f.
func (f SourceFunc) Load(ctx context.Context) (*buffer.Matrix, error) { return f(ctx) }

// Sink receives the matrix produced by each stage. The matrix is not
// modified after Save returns, so sinks may keep it.
type Sink interface {
	Save(ctx context.Context, stage Stage, m *buffer.Matrix) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, stage Stage, m *buffer.Matrix) error

// Save calls f.
func (f SinkFunc) Save(ctx context.Context, stage Stage, m *buffer.Matrix) error {
	return f(ctx, stage, m)
}

// DiscardSink drops every snapshot.
type DiscardSink struct{}

// Save does nothing.
func (DiscardSink) Save(context.Context, Stage, *buffer.Matrix) error { return nil }

// MultiSink forwards each snapshot to every sink in order and stops at the
// first error.
type MultiSink []Sink

// Save forwards to every sink.
func (ms MultiSink) Save(ctx context.Context, stage Stage, m *buffer.Matrix) error {
	for _, s := range ms {
		if s == nil {
			continue
		}
		if err := s.Save(ctx, stage, m); err != nil {
			return err
		}
	}
	return nil
}

// Recorder is an in-memory Sink that keeps every snapshot by stage.
type Recorder struct {
	Order     []Stage
	Snapshots map[Stage]*buffer.Matrix
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{Snapshots: make(map[Stage]*buffer.Matrix)}
}

var errDuplicateStage = errors.New("pipeline: stage recorded twice")

// Save stores m under stage.
func (r *Recorder) Save(_ context.Context, stage Stage, m *buffer.Matrix) error {
	if _, ok := r.Snapshots[stage]; ok {
		return errDuplicateStage
	}
	r.Order = append(r.Order, stage)
	r.Snapshots[stage] = m
	return nil
}
