// Package polyfit provides least-squares polynomial fitting and
// polynomial baseline removal (detrending).
//
// Fits are solved with a QR factorisation of the column-scaled Vandermonde
// matrix, so coefficients are reported against the caller's raw abscissa
// while the solve itself stays well conditioned for long records:
//
//	x := polyfit.Index(len(y), 1) // 1, 2, ..., N
//	p, err := polyfit.Fit(x, y, 3)
//	residual := y[i] - p.Eval(x[i])
//
// [Detrend] and [DetrendInPlace] wrap this for the common case of a signal
// sampled on the 1-based index grid.
package polyfit
