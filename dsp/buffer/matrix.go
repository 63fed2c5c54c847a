package buffer

import (
	"errors"
	"fmt"
)

var (
	// ErrEmpty is returned when a matrix would have no rows or no columns.
	ErrEmpty = errors.New("buffer: matrix has no rows or columns")
	// ErrRagged is returned when input rows differ in length.
	ErrRagged = errors.New("buffer: rows have different lengths")
	// ErrShape is returned when matrices cannot be joined.
	ErrShape = errors.New("buffer: incompatible shapes")
)

// Matrix is a dense channels x samples matrix of float64 values.
type Matrix struct {
	rows int
	cols int
	data []float64
}

// NewMatrix returns a zero-filled matrix. Negative dimensions are treated as 0.
func NewMatrix(rows, cols int) *Matrix {
	if rows < 0 {
		rows = 0
	}
	if cols < 0 {
		cols = 0
	}
	return &Matrix{rows: rows, cols: cols, data: make([]float64, rows*cols)}
}

// FromRows copies rows into a new matrix.
// All rows must share the same non-zero length.
func FromRows(rows [][]float64) (*Matrix, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, ErrEmpty
	}

	cols := len(rows[0])
	m := NewMatrix(len(rows), cols)
	for i, r := range rows {
		if len(r) != cols {
			return nil, fmt.Errorf("%w: row %d has %d samples, want %d", ErrRagged, i, len(r), cols)
		}
		copy(m.Row(i), r)
	}
	return m, nil
}

// Rows returns the channel count.
func (m *Matrix) Rows() int { return m.rows }

// Cols returns the sample count.
func (m *Matrix) Cols() int { return m.cols }

// Shape returns (rows, cols).
func (m *Matrix) Shape() (int, int) { return m.rows, m.cols }

// Empty reports whether the matrix has no samples.
func (m *Matrix) Empty() bool { return m.rows == 0 || m.cols == 0 }

// Row returns channel i as a slice sharing the matrix storage.
func (m *Matrix) Row(i int) []float64 {
	start := i * m.cols
	return m.data[start : start+m.cols : start+m.cols]
}

// At returns the sample at (row, col).
func (m *Matrix) At(row, col int) float64 {
	return m.data[row*m.cols+col]
}

// Set stores v at (row, col).
func (m *Matrix) Set(row, col int, v float64) {
	m.data[row*m.cols+col] = v
}

// Column returns a copy of column j.
func (m *Matrix) Column(j int) []float64 {
	out := make([]float64, m.rows)
	for i := range out {
		out[i] = m.data[i*m.cols+j]
	}
	return out
}

// SetColumn overwrites column j with v. len(v) must equal Rows.
func (m *Matrix) SetColumn(j int, v []float64) {
	if len(v) != m.rows {
		panic(fmt.Sprintf("buffer: column length %d, want %d", len(v), m.rows))
	}
	for i, x := range v {
		m.data[i*m.cols+j] = x
	}
}

// Data returns the row-major backing slice.
func (m *Matrix) Data() []float64 { return m.data }

// Clone returns a deep copy.
func (m *Matrix) Clone() *Matrix {
	data := make([]float64, len(m.data))
	copy(data, m.data)
	return &Matrix{rows: m.rows, cols: m.cols, data: data}
}

// ToRows returns a copy of the matrix as a slice of rows.
func (m *Matrix) ToRows() [][]float64 {
	out := make([][]float64, m.rows)
	for i := range out {
		out[i] = append([]float64(nil), m.Row(i)...)
	}
	return out
}

// SameShape reports whether m and other have identical dimensions.
func (m *Matrix) SameShape(other *Matrix) bool {
	return other != nil && m.rows == other.rows && m.cols == other.cols
}

// Equal reports whether both matrices have the same shape and identical samples.
func (m *Matrix) Equal(other *Matrix) bool {
	if !m.SameShape(other) {
		return false
	}
	for i, v := range m.data {
		if other.data[i] != v {
			return false
		}
	}
	return true
}

// HStack joins matrices side by side. All inputs must have the same row count.
func HStack(ms ...*Matrix) (*Matrix, error) {
	if len(ms) == 0 {
		return nil, ErrEmpty
	}
	rows, cols := ms[0].rows, 0
	for i, m := range ms {
		if m.rows != rows {
			return nil, fmt.Errorf("%w: matrix %d has %d rows, want %d", ErrShape, i, m.rows, rows)
		}
		cols += m.cols
	}

	out := NewMatrix(rows, cols)
	for r := range rows {
		dst := out.Row(r)
		off := 0
		for _, m := range ms {
			off += copy(dst[off:], m.Row(r))
		}
	}
	return out, nil
}

// VStack joins matrices top to bottom. All inputs must have the same column count.
func VStack(ms ...*Matrix) (*Matrix, error) {
	if len(ms) == 0 {
		return nil, ErrEmpty
	}
	rows, cols := 0, ms[0].cols
	for i, m := range ms {
		if m.cols != cols {
			return nil, fmt.Errorf("%w: matrix %d has %d columns, want %d", ErrShape, i, m.cols, cols)
		}
		rows += m.rows
	}

	out := NewMatrix(rows, cols)
	off := 0
	for _, m := range ms {
		off += copy(out.data[off:], m.data)
	}
	return out, nil
}
