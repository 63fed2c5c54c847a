// Package snapshot persists per-stage pipeline output as CSV files, one
// file per stage and one line per channel.
package snapshot

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"github.com/cwbudde/algo-phase/dsp/buffer"
	"github.com/cwbudde/algo-phase/pipeline"
)

var fileRe = regexp.MustCompile(`^(\d{2})_([a-z_]+)\.csv$`)

// FileName returns the snapshot file name for stage, e.g. "03_detrended.csv".
func FileName(stage pipeline.Stage) string {
	return fmt.Sprintf("%02d_%s.csv", int(stage), stage)
}

// DirSink writes every snapshot it receives into Dir.
type DirSink struct {
	Dir string
}

// NewDirSink creates dir if needed and returns a sink writing into it.
func NewDirSink(dir string) (*DirSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	return &DirSink{Dir: dir}, nil
}

// Save writes m to Dir/FileName(stage), replacing any earlier file.
func (s *DirSink) Save(ctx context.Context, stage pipeline.Stage, m *buffer.Matrix) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !stage.Valid() {
		return fmt.Errorf("snapshot: invalid stage %d", int(stage))
	}

	tmp, err := os.CreateTemp(s.Dir, ".snapshot-*")
	if err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp, m); err != nil {
		tmp.Close()
		return fmt.Errorf("snapshot: %s: %w", stage, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	return os.Rename(tmp.Name(), filepath.Join(s.Dir, FileName(stage)))
}

func write(f *os.File, m *buffer.Matrix) error {
	w := csv.NewWriter(f)
	record := make([]string, m.Cols())
	for i := range m.Rows() {
		for j, v := range m.Row(i) {
			record[j] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// Load reads the snapshot of stage from dir.
func Load(dir string, stage pipeline.Stage) (*buffer.Matrix, error) {
	f, err := os.Open(filepath.Join(dir, FileName(stage)))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("snapshot: %s: %w", stage, err)
	}

	rows := make([][]float64, len(records))
	for i, rec := range records {
		rows[i] = make([]float64, len(rec))
		for j, field := range rec {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("snapshot: %s row %d col %d: %w", stage, i, j, err)
			}
			rows[i][j] = v
		}
	}
	return buffer.FromRows(rows)
}

// List returns the stages stored in dir in execution order.
func List(dir string) ([]pipeline.Stage, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var stages []pipeline.Stage
	for _, e := range entries {
		m := fileRe.FindStringSubmatch(e.Name())
		if m == nil || e.IsDir() {
			continue
		}
		st, err := pipeline.ParseStage(m[2])
		if err != nil {
			continue
		}
		if n, _ := strconv.Atoi(m[1]); n != int(st) {
			continue
		}
		stages = append(stages, st)
	}
	sort.Slice(stages, func(i, j int) bool { return stages[i] < stages[j] })
	return stages, nil
}
