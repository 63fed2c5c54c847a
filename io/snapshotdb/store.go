// Package snapshotdb stores pipeline runs and their per-stage snapshots in
// a SQLite database. Each run gets a UUID; every stage snapshot is kept as
// one little-endian float64 blob per channel together with summary
// statistics for that channel.
package snapshotdb

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/cwbudde/algo-phase/dsp/buffer"
	"github.com/cwbudde/algo-phase/pipeline"
	timestats "github.com/cwbudde/algo-phase/stats/time"
)

// ErrNotFound is returned when a run or snapshot does not exist.
var ErrNotFound = errors.New("snapshotdb: not found")

// timeLayout sorts lexically in time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store is a SQLite-backed snapshot archive.
type Store struct {
	db  *sql.DB
	log *slog.Logger
	now func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger for store and migration messages.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// Open opens or creates the database at path and migrates it to the
// latest schema.
func Open(path string, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("snapshotdb: open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	s := &Store{
		db:  db,
		log: slog.New(slog.DiscardHandler),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.MigrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	s.log.Debug("snapshot store ready", "path", path)
	return s, nil
}

// Close releases the database.
func (s *Store) Close() error { return s.db.Close() }

// RunInfo describes a stored run.
type RunInfo struct {
	ID       string
	Source   string
	Channels int
	Samples  int
	Created  time.Time
}

// Run is an open run. It implements pipeline.Sink.
type Run struct {
	RunInfo
	store *Store
}

// BeginRun registers a new run for a rows x cols input read from source.
func (s *Store) BeginRun(ctx context.Context, source string, rows, cols int) (*Run, error) {
	r := &Run{
		RunInfo: RunInfo{
			ID:       uuid.NewString(),
			Source:   source,
			Channels: rows,
			Samples:  cols,
			Created:  s.now().UTC(),
		},
		store: s,
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (run_id, source, channels, samples, created_at) VALUES (?, ?, ?, ?, ?)`,
		r.ID, r.Source, r.Channels, r.Samples, r.Created.Format(timeLayout))
	if err != nil {
		return nil, fmt.Errorf("snapshotdb: begin run: %w", err)
	}
	s.log.Info("run started", "run_id", r.ID, "source", source, "channels", rows, "samples", cols)
	return r, nil
}

// Save stores m as the snapshot of stage. The matrix must match the run's
// shape and each stage may be saved once.
func (r *Run) Save(ctx context.Context, stage pipeline.Stage, m *buffer.Matrix) error {
	if rows, cols := m.Shape(); rows != r.Channels || cols != r.Samples {
		return fmt.Errorf("snapshotdb: %s is %dx%d, run is %dx%d", stage, rows, cols, r.Channels, r.Samples)
	}

	tx, err := r.store.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var seq int
	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(seq), 0) + 1 FROM snapshots WHERE run_id = ?`, r.ID).Scan(&seq); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO snapshots (run_id, stage, seq, created_at) VALUES (?, ?, ?, ?)`,
		r.ID, int(stage), seq, r.store.now().UTC().Format(timeLayout)); err != nil {
		return fmt.Errorf("snapshotdb: save %s: %w", stage, err)
	}

	data, err := tx.PrepareContext(ctx,
		`INSERT INTO channel_data (run_id, stage, channel, samples) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer data.Close()
	stats, err := tx.PrepareContext(ctx,
		`INSERT INTO channel_stats (run_id, stage, channel, mean, std_dev, min, max) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stats.Close()

	for ch := range m.Rows() {
		row := m.Row(ch)
		if _, err := data.ExecContext(ctx, r.ID, int(stage), ch, encode(row)); err != nil {
			return fmt.Errorf("snapshotdb: save %s channel %d: %w", stage, ch, err)
		}
		sum := timestats.Summarize(row)
		if _, err := stats.ExecContext(ctx, r.ID, int(stage), ch,
			nullable(sum.Mean), nullable(sum.StdDev), nullable(sum.Min), nullable(sum.Max)); err != nil {
			return fmt.Errorf("snapshotdb: stats %s channel %d: %w", stage, ch, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	r.store.log.Debug("snapshot stored", "run_id", r.ID, "stage", stage.String(), "seq", seq)
	return nil
}

// Load returns the snapshot of stage stored for run.
func (s *Store) Load(ctx context.Context, runID string, stage pipeline.Stage) (*buffer.Matrix, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT samples FROM channel_data WHERE run_id = ? AND stage = ? ORDER BY channel`,
		runID, int(stage))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out [][]float64
	for rows.Next() {
		var blob []byte
		if err := rows.Scan(&blob); err != nil {
			return nil, err
		}
		ch, err := decode(blob)
		if err != nil {
			return nil, fmt.Errorf("snapshotdb: %s channel %d: %w", stage, len(out), err)
		}
		out = append(out, ch)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: run %s stage %s", ErrNotFound, runID, stage)
	}
	return buffer.FromRows(out)
}

// ChannelStats summarises one channel of a snapshot. StdDev is NaN for
// channels with fewer than two samples.
type ChannelStats struct {
	Channel int
	Mean    float64
	StdDev  float64
	Min     float64
	Max     float64
}

// Stats returns the per-channel statistics of a stored snapshot.
func (s *Store) Stats(ctx context.Context, runID string, stage pipeline.Stage) ([]ChannelStats, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT channel, mean, std_dev, min, max FROM channel_stats
		 WHERE run_id = ? AND stage = ? ORDER BY channel`,
		runID, int(stage))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ChannelStats
	for rows.Next() {
		var (
			cs                   ChannelStats
			mean, std, low, high sql.NullFloat64
		)
		if err := rows.Scan(&cs.Channel, &mean, &std, &low, &high); err != nil {
			return nil, err
		}
		cs.Mean, cs.StdDev, cs.Min, cs.Max = orNaN(mean), orNaN(std), orNaN(low), orNaN(high)
		out = append(out, cs)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: run %s stage %s", ErrNotFound, runID, stage)
	}
	return out, nil
}

// Runs lists stored runs, newest first.
func (s *Store) Runs(ctx context.Context) ([]RunInfo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, source, channels, samples, created_at FROM runs ORDER BY created_at DESC, run_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunInfo
	for rows.Next() {
		var (
			ri      RunInfo
			created string
		)
		if err := rows.Scan(&ri.ID, &ri.Source, &ri.Channels, &ri.Samples, &created); err != nil {
			return nil, err
		}
		if ri.Created, err = time.Parse(timeLayout, created); err != nil {
			return nil, fmt.Errorf("snapshotdb: run %s: %w", ri.ID, err)
		}
		out = append(out, ri)
	}
	return out, rows.Err()
}

// Stages lists the stages stored for a run in the order they were saved.
func (s *Store) Stages(ctx context.Context, runID string) ([]pipeline.Stage, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT stage FROM snapshots WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []pipeline.Stage
	for rows.Next() {
		var st int
		if err := rows.Scan(&st); err != nil {
			return nil, err
		}
		out = append(out, pipeline.Stage(st))
	}
	return out, rows.Err()
}

// DeleteRun removes a run and all of its snapshots.
func (s *Store) DeleteRun(ctx context.Context, runID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE run_id = ?`, runID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: run %s", ErrNotFound, runID)
	}
	return nil
}

// Discard deletes the run and whatever snapshots it has saved so far.
func (r *Run) Discard(ctx context.Context) error {
	if err := r.store.DeleteRun(ctx, r.ID); err != nil {
		return err
	}
	r.store.log.Info("run discarded", "run_id", r.ID)
	return nil
}

func encode(x []float64) []byte {
	out := make([]byte, 8*len(x))
	for i, v := range x {
		binary.LittleEndian.PutUint64(out[8*i:], math.Float64bits(v))
	}
	return out
}

func decode(b []byte) ([]float64, error) {
	if len(b)%8 != 0 {
		return nil, fmt.Errorf("blob length %d is not a multiple of 8", len(b))
	}
	out := make([]float64, len(b)/8)
	for i := range out {
		out[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[8*i:]))
	}
	return out, nil
}

// nullable maps NaN to NULL, which SQLite would store anyway.
func nullable(v float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: v, Valid: !math.IsNaN(v)}
}

func orNaN(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}
