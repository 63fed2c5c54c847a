package polyfit

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var (
	// ErrLengthMismatch is returned when x and y differ in length.
	ErrLengthMismatch = errors.New("polyfit: x and y must have the same length")
	// ErrNegativeDegree is returned for a degree below zero.
	ErrNegativeDegree = errors.New("polyfit: degree must be >= 0")
	// ErrTooFewPoints is returned when there are fewer points than coefficients.
	ErrTooFewPoints = errors.New("polyfit: not enough points for degree")
)

// Poly holds polynomial coefficients in ascending power order:
// p(x) = p[0] + p[1]*x + p[2]*x^2 + ...
type Poly []float64

// Degree returns the polynomial degree, or -1 for an empty Poly.
func (p Poly) Degree() int { return len(p) - 1 }

// Eval evaluates p at x using Horner's scheme.
func (p Poly) Eval(x float64) float64 {
	var y float64
	for k := len(p) - 1; k >= 0; k-- {
		y = y*x + p[k]
	}
	return y
}

// EvalInto writes p(x[i]) into dst[i]. dst and x must have equal length.
func (p Poly) EvalInto(dst, x []float64) {
	for i, xi := range x {
		dst[i] = p.Eval(xi)
	}
}

// Index returns the abscissa start, start+1, ..., start+n-1.
func Index(n int, start float64) []float64 {
	if n <= 0 {
		return nil
	}
	x := make([]float64, n)
	for i := range x {
		x[i] = start + float64(i)
	}
	return x
}

// Fit returns the least-squares polynomial of the given degree through
// the points (x[i], y[i]).
func Fit(x, y []float64, degree int) (Poly, error) {
	if len(x) != len(y) {
		return nil, ErrLengthMismatch
	}
	if degree < 0 {
		return nil, ErrNegativeDegree
	}

	n, cols := len(x), degree+1
	if n < cols {
		return nil, fmt.Errorf("%w: %d points, degree %d", ErrTooFewPoints, n, degree)
	}

	vander := mat.NewDense(n, cols, nil)
	for i, xi := range x {
		v := 1.0
		for j := range cols {
			vander.Set(i, j, v)
			v *= xi
		}
	}

	// Normalise each column to unit length; the scale is undone on the
	// solution so coefficients refer to raw x.
	scale := make([]float64, cols)
	col := make([]float64, n)
	for j := range cols {
		mat.Col(col, j, vander)
		s := floats.Norm(col, 2)
		if s == 0 {
			s = 1
		}
		scale[j] = s
		floats.Scale(1/s, col)
		vander.SetCol(j, col)
	}

	var qr mat.QR
	qr.Factorize(vander)

	rhs := mat.NewVecDense(n, append([]float64(nil), y...))

	var sol mat.VecDense
	if err := qr.SolveVecTo(&sol, false, rhs); err != nil {
		return nil, fmt.Errorf("polyfit: degree %d solve: %w", degree, err)
	}

	coeffs := make(Poly, cols)
	for j := range coeffs {
		coeffs[j] = sol.AtVec(j) / scale[j]
	}
	return coeffs, nil
}

// Detrend fits a polynomial of the given degree to y sampled at x = 1..N
// and returns the residual y - p(x) as a new slice.
func Detrend(y []float64, degree int) ([]float64, error) {
	out := append([]float64(nil), y...)
	if _, err := DetrendInPlace(out, degree); err != nil {
		return nil, err
	}
	return out, nil
}

// DetrendInPlace replaces y with its residual against the fitted
// polynomial and returns that polynomial.
func DetrendInPlace(y []float64, degree int) (Poly, error) {
	x := Index(len(y), 1)
	p, err := Fit(x, y, degree)
	if err != nil {
		return nil, err
	}

	trend := make([]float64, len(y))
	p.EvalInto(trend, x)
	floats.Sub(y, trend)
	return p, nil
}
