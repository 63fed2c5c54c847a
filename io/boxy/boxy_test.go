package boxy

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sample is the synthetic value stored for one channel and time point.
func sample(dt DataType, det, src, t, offset int) float64 {
	base := float64(det*100 + src*10 + t + offset)
	switch dt {
	case AC:
		return base + 1000
	case DC:
		return base + 2000
	}
	return base + 0.25
}

func header(b *strings.Builder, det, src int) {
	b.WriteString("BOXY data file\n")
	fmt.Fprintf(b, "%d Detector Channels\n", det)
	fmt.Fprintf(b, "%d External MUX Channels\n", src)
	b.WriteString("0 Auxiliary Channels\n")
	b.WriteString("110.0 Waveform (CCF) Frequency (Hz)\n")
	b.WriteString("12.5 Updata Rate (Hz)\n")
	b.WriteString("#DATA BEGINS\n")
}

func parsedText(det, src, samples, offset int) string {
	var b strings.Builder
	header(&b, det, src)

	cols := []string{"time", "group", "step"}
	for d := range det {
		for _, dt := range []DataType{DC, AC, Phase} {
			for s := 1; s <= src; s++ {
				cols = append(cols, fmt.Sprintf("%c-%s%d", 'A'+d, dt, s))
			}
		}
	}
	b.WriteString(strings.Join(cols, "\t") + "\n")
	b.WriteString("\n")

	for t := range samples {
		vals := []string{fmt.Sprint(float64(t) * 0.08), "0", "1"}
		for d := range det {
			for _, dt := range []DataType{DC, AC, Phase} {
				for s := 1; s <= src; s++ {
					vals = append(vals, fmt.Sprint(sample(dt, d, s, t, offset)))
				}
			}
		}
		b.WriteString(strings.Join(vals, "\t") + "\n")
	}
	b.WriteString("#DATA ENDS\n")
	return b.String()
}

func nonParsedText(det, src, samples int) string {
	var b strings.Builder
	header(&b, det, src)

	cols := []string{"time", "record", "group", "exmux", "step"}
	for d := range det {
		for _, dt := range []DataType{AC, DC, Phase} {
			cols = append(cols, fmt.Sprintf("%c-%s", 'A'+d, dt))
		}
	}
	b.WriteString(strings.Join(cols, "\t") + "\n")
	b.WriteString("\n")

	for t := range samples {
		for s := 1; s <= src; s++ {
			vals := []string{fmt.Sprint(t), fmt.Sprint(t + 1), "0", fmt.Sprint(s), "1"}
			for d := range det {
				for _, dt := range []DataType{AC, DC, Phase} {
					vals = append(vals, fmt.Sprint(sample(dt, d, s, t, 0)))
				}
			}
			b.WriteString(strings.Join(vals, "\t") + "\n")
		}
	}
	b.WriteString("#DATA ENDS\n")
	return b.String()
}

func writeFile(t *testing.T, dir, name, text string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
	return path
}

func expectRows(dt DataType, det, src, samples int, offsets ...int) [][]float64 {
	if len(offsets) == 0 {
		offsets = []int{0}
	}
	var rows [][]float64
	for d := range det {
		for s := 1; s <= src; s++ {
			var row []float64
			for _, off := range offsets {
				for t := range samples {
					row = append(row, sample(dt, d, s, t, off))
				}
			}
			rows = append(rows, row)
		}
	}
	return rows
}

func TestReadBlockHeader(t *testing.T) {
	b, err := ReadBlock(strings.NewReader(parsedText(2, 3, 4, 0)))
	require.NoError(t, err)

	assert.Equal(t, 2, b.Detectors)
	assert.Equal(t, 3, b.Sources)
	assert.Equal(t, 0, b.Auxiliary)
	assert.Equal(t, 110.0, b.CCFFrequency)
	assert.Equal(t, 12.5, b.SampleRate)
	assert.Equal(t, Parsed, b.Layout)
	assert.Len(t, b.Table, 4)
	assert.Equal(t, 4, b.Samples())
	assert.Equal(t, "A-DC1", b.Columns[3])
}

func TestParsedChannels(t *testing.T) {
	b, err := ReadBlock(strings.NewReader(parsedText(2, 3, 5, 0)))
	require.NoError(t, err)

	for _, dt := range []DataType{AC, DC, Phase} {
		m, err := b.Channels(dt)
		require.NoError(t, err)
		if diff := cmp.Diff(expectRows(dt, 2, 3, 5), m.ToRows()); diff != "" {
			t.Fatalf("%s channels mismatch (-want +got):\n%s", dt, diff)
		}
	}
}

func TestNonParsedChannels(t *testing.T) {
	b, err := ReadBlock(strings.NewReader(nonParsedText(2, 3, 4)))
	require.NoError(t, err)
	require.Equal(t, NonParsed, b.Layout)
	assert.Equal(t, 4, b.Samples())

	m, err := b.Channels(Phase)
	require.NoError(t, err)
	if diff := cmp.Diff(expectRows(Phase, 2, 3, 4), m.ToRows()); diff != "" {
		t.Fatalf("channels mismatch (-want +got):\n%s", diff)
	}
}

func TestChannelsMissingColumn(t *testing.T) {
	b, err := ReadBlock(strings.NewReader(parsedText(1, 2, 3, 0)))
	require.NoError(t, err)
	b.Sources = 3

	_, err = b.Channels(AC)
	require.ErrorIs(t, err, ErrMissingColumn)
}

func TestChannelsRejectsUnknownType(t *testing.T) {
	b, err := ReadBlock(strings.NewReader(parsedText(1, 1, 3, 0)))
	require.NoError(t, err)
	_, err = b.Channels("XX")
	require.ErrorIs(t, err, ErrDataType)
}

func TestReadBlockPadsShortRows(t *testing.T) {
	text := strings.TrimSuffix(parsedText(1, 1, 2, 0), "#DATA ENDS\n") + "0.2\t0\n#DATA ENDS\n"

	b, err := ReadBlock(strings.NewReader(text))
	require.NoError(t, err)
	last := b.Table[len(b.Table)-1]
	assert.Equal(t, 0.2, last[0])
	assert.True(t, math.IsNaN(last[len(last)-1]))
}

func TestReadBlockMalformed(t *testing.T) {
	good := parsedText(1, 1, 2, 0)
	tests := map[string]string{
		"no begin":      strings.Replace(good, "#DATA BEGINS", "#DATA", 1),
		"no end":        strings.Replace(good, "#DATA ENDS", "", 1),
		"no detectors":  strings.Replace(good, "1 Detector Channels", "0 Detector Channels", 1),
		"bad source":    strings.Replace(good, "1 External MUX Channels", "x External MUX Channels", 1),
		"too many vals": strings.TrimSuffix(good, "#DATA ENDS\n") + "1\t2\t3\t4\t5\t6\t7\n#DATA ENDS\n",
	}
	for name, text := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ReadBlock(strings.NewReader(text))
			require.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestReadSingleFileDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "subject01.txt", parsedText(2, 2, 6, 0))

	rec, err := Read(dir, Options{DataType: Phase})
	require.NoError(t, err)

	assert.Equal(t, []string{"S1_D1_1", "S2_D1_1", "S1_D2_1", "S2_D2_1"}, rec.Labels)
	assert.Equal(t, 12.5, rec.SampleRate)
	assert.Equal(t, 110.0, rec.CCFFrequency)
	assert.Equal(t, Phase, rec.DataType)
	if diff := cmp.Diff(expectRows(Phase, 2, 2, 6), rec.Data.ToRows()); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}
}

func TestReadFilePathDefaultsToAC(t *testing.T) {
	path := writeFile(t, t.TempDir(), "rec.txt", nonParsedText(1, 2, 3))

	rec, err := Read(path, Options{})
	require.NoError(t, err)
	assert.Equal(t, AC, rec.DataType)
	assert.Equal(t, expectRows(AC, 1, 2, 3), rec.Data.ToRows())
}

func TestReadMultiFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "1anc071a.001", parsedText(1, 2, 3, 0))
	writeFile(t, dir, "1anc071a.002", parsedText(1, 2, 3, 50))
	writeFile(t, dir, "1anc071b.001", parsedText(1, 2, 3, 0))
	writeFile(t, dir, "1anc071b.002", parsedText(1, 2, 3, 50))
	writeFile(t, dir, "notes.md", "ignored")

	files, err := Files(dir, true)
	require.NoError(t, err)
	require.Len(t, files, 4)
	assert.Equal(t, File{Path: filepath.Join(dir, "1anc071b.001"), Montage: "b", Block: "001"}, files[2])

	rec, err := Read(dir, Options{DataType: DC, MultiFile: true})
	require.NoError(t, err)

	assert.Equal(t, []string{"S1_D1_1", "S2_D1_1", "S1_D1_2", "S2_D1_2"}, rec.Labels)
	montage := expectRows(DC, 1, 2, 3, 0, 50)
	if diff := cmp.Diff(append(montage, montage...), rec.Data.ToRows()); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}
}

func TestReadWarnsOnHeaderMismatch(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "ra.001", parsedText(1, 1, 3, 0))
	writeFile(t, dir, "ra.002", strings.Replace(parsedText(1, 1, 3, 0), "12.5 Updata Rate", "25.0 Updata Rate", 1))

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	rec, err := Read(dir, Options{MultiFile: true, Logger: logger})
	require.NoError(t, err)
	assert.Equal(t, 12.5, rec.SampleRate)
	assert.Contains(t, logs.String(), "boxy header mismatch")
	assert.Contains(t, logs.String(), "ra.002")

	logs.Reset()
	writeFile(t, dir, "ra.002", parsedText(1, 1, 3, 0))
	_, err = Read(dir, Options{MultiFile: true, Logger: logger})
	require.NoError(t, err)
	assert.NotContains(t, logs.String(), "boxy header mismatch")
}

func TestReadMontageLengthMismatch(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "xa.001", parsedText(1, 1, 3, 0))
	writeFile(t, dir, "xb.001", parsedText(1, 1, 4, 0))

	_, err := Read(dir, Options{MultiFile: true})
	require.Error(t, err)
}

func TestFilesErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := Files(dir, false)
	require.ErrorIs(t, err, ErrNoFiles)
	_, err = Files(dir, true)
	require.ErrorIs(t, err, ErrNoFiles)

	writeFile(t, dir, "a.txt", "")
	writeFile(t, dir, "b.txt", "")
	_, err = Files(dir, false)
	require.Error(t, err)
}

func TestSourceLoad(t *testing.T) {
	path := writeFile(t, t.TempDir(), "rec.txt", parsedText(1, 3, 4, 0))

	m, err := Source{Path: path, Options: Options{DataType: Phase}}.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, expectRows(Phase, 1, 3, 4), m.ToRows())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Source{Path: path}.Load(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestParseDataType(t *testing.T) {
	for _, s := range []string{"AC", "DC", "Ph"} {
		dt, err := ParseDataType(s)
		require.NoError(t, err)
		assert.Equal(t, DataType(s), dt)
	}
	_, err := ParseDataType("ph")
	require.ErrorIs(t, err, ErrDataType)
}
