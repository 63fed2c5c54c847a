package boxy

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/cwbudde/algo-phase/dsp/buffer"
)

var (
	// ErrMalformed is returned for files whose header or table cannot be read.
	ErrMalformed = errors.New("boxy: malformed file")
	// ErrMissingColumn is returned when the table lacks a requested channel.
	ErrMissingColumn = errors.New("boxy: missing column")
	// ErrDataType is returned for a measurement type other than AC, DC or Ph.
	ErrDataType = errors.New("boxy: unknown data type")
)

// DataType selects which measurement a reader extracts.
type DataType string

const (
	AC    DataType = "AC"
	DC    DataType = "DC"
	Phase DataType = "Ph"
)

// ParseDataType validates s.
func ParseDataType(s string) (DataType, error) {
	switch dt := DataType(s); dt {
	case AC, DC, Phase:
		return dt, nil
	}
	return "", fmt.Errorf("%w: %q", ErrDataType, s)
}

// Layout is the table organisation of a BOXY file.
type Layout int

const (
	Parsed Layout = iota
	NonParsed
)

func (l Layout) String() string {
	if l == NonParsed {
		return "non-parsed"
	}
	return "parsed"
}

const maxDetectors = 26

var (
	columnRe = regexp.MustCompile(`\w+-\w+|\w+-\d+|\w+`)
	numberRe = regexp.MustCompile(`[-+]?\d*\.?\d+`)
)

// Header holds the acquisition settings of one file.
type Header struct {
	Detectors    int
	Sources      int
	Auxiliary    int
	CCFFrequency float64 // Hz
	SampleRate   float64 // Hz
	Layout       Layout
	Columns      []string
}

// Block is the raw content of one file: its header and the data table.
// Rows shorter than the column list are padded with NaN.
type Block struct {
	Header
	Table [][]float64
}

// ReadBlock parses a single BOXY file.
func ReadBlock(r io.Reader) (*Block, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16<<20)

	var (
		b      Block
		line   int
		begins = -1
		ended  bool
	)
	for sc.Scan() {
		line++
		text := sc.Text()
		if strings.Contains(text, "#DATA ENDS") {
			ended = true
			break
		}

		if begins >= 0 {
			switch {
			case line == begins+1:
				b.Columns = columnRe.FindAllString(firstField(text), -1)
				if slices.Contains(b.Columns, "exmux") {
					b.Layout = NonParsed
				}
			case line > begins+2:
				row, err := parseRow(text, len(b.Columns))
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", line, err)
				}
				b.Table = append(b.Table, row)
			}
			continue
		}

		var err error
		switch {
		case strings.Contains(text, "Detector Channels"):
			b.Detectors, err = headerInt(text)
		case strings.Contains(text, "External MUX Channels"):
			b.Sources, err = headerInt(text)
		case strings.Contains(text, "Auxiliary Channels"):
			b.Auxiliary, err = headerInt(text)
		case strings.Contains(text, "Waveform (CCF) Frequency (Hz)"):
			b.CCFFrequency, err = headerFloat(text)
		case strings.Contains(text, "Update Rate (Hz)"), strings.Contains(text, "Updata Rate (Hz)"):
			b.SampleRate, err = headerFloat(text)
		case strings.Contains(text, "#DATA BEGINS"):
			begins = line
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	switch {
	case begins < 0:
		return nil, fmt.Errorf("%w: no #DATA BEGINS marker", ErrMalformed)
	case !ended:
		return nil, fmt.Errorf("%w: no #DATA ENDS marker", ErrMalformed)
	case b.Detectors <= 0 || b.Detectors > maxDetectors:
		return nil, fmt.Errorf("%w: %d detector channels", ErrMalformed, b.Detectors)
	case b.Sources <= 0:
		return nil, fmt.Errorf("%w: %d source channels", ErrMalformed, b.Sources)
	case len(b.Columns) == 0:
		return nil, fmt.Errorf("%w: no column names", ErrMalformed)
	}
	return &b, nil
}

// Channels extracts the dt channels of the block as a
// (detectors*sources) x samples matrix.
func (b *Block) Channels(dt DataType) (*buffer.Matrix, error) {
	if _, err := ParseDataType(string(dt)); err != nil {
		return nil, err
	}
	if b.Layout == NonParsed {
		return b.nonParsed(dt)
	}
	return b.parsed(dt)
}

func (b *Block) parsed(dt DataType) (*buffer.Matrix, error) {
	m := buffer.NewMatrix(b.Detectors*b.Sources, len(b.Table))
	for det := range b.Detectors {
		for src := 1; src <= b.Sources; src++ {
			name := fmt.Sprintf("%c-%s%d", 'A'+det, dt, src)
			col, err := b.column(name)
			if err != nil {
				return nil, err
			}
			out := m.Row(det*b.Sources + src - 1)
			for t, row := range b.Table {
				out[t] = row[col]
			}
		}
	}
	return m, nil
}

func (b *Block) nonParsed(dt DataType) (*buffer.Matrix, error) {
	samples := len(b.Table) / b.Sources
	if rec, err := b.column("record"); err == nil && len(b.Table) > 0 {
		last := b.Table[len(b.Table)-1][rec]
		if math.IsNaN(last) || int(last)*b.Sources > len(b.Table) {
			return nil, fmt.Errorf("%w: record count %v does not fit %d rows", ErrMalformed, last, len(b.Table))
		}
		samples = int(last)
	}

	m := buffer.NewMatrix(b.Detectors*b.Sources, samples)
	for det := range b.Detectors {
		col, err := b.column(fmt.Sprintf("%c-%s", 'A'+det, dt))
		if err != nil {
			return nil, err
		}
		for src := 1; src <= b.Sources; src++ {
			out := m.Row(det*b.Sources + src - 1)
			for k := range out {
				out[k] = b.Table[src-1+k*b.Sources][col]
			}
		}
	}
	return m, nil
}

func (b *Block) column(name string) (int, error) {
	i := slices.Index(b.Columns, name)
	if i < 0 {
		return 0, fmt.Errorf("%w: %s", ErrMissingColumn, name)
	}
	return i, nil
}

// Samples returns the number of time points a channel of b holds.
func (b *Block) Samples() int {
	if b.Layout == NonParsed {
		return len(b.Table) / b.Sources
	}
	return len(b.Table)
}

func parseRow(text string, width int) ([]float64, error) {
	fields := numberRe.FindAllString(firstField(text), -1)
	if len(fields) > width {
		return nil, fmt.Errorf("%w: %d values for %d columns", ErrMalformed, len(fields), width)
	}

	row := make([]float64, width)
	for i := range row {
		row[i] = math.NaN()
	}
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		row[i] = v
	}
	return row, nil
}

// firstField returns text up to the first space. Table cells are tab
// separated, so this is the whole row unless trailing text follows.
func firstField(text string) string {
	before, _, _ := strings.Cut(text, " ")
	return before
}

// headerValue returns the leading token of a header line.
func headerValue(text string) string {
	if f := strings.Fields(text); len(f) > 0 {
		return f[0]
	}
	return ""
}

func headerInt(text string) (int, error) {
	v, err := strconv.Atoi(headerValue(text))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return v, nil
}

func headerFloat(text string) (float64, error) {
	v, err := strconv.ParseFloat(headerValue(text), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return v, nil
}
