package testutil

import (
	"fmt"
	"math"
	"testing"

	"github.com/cwbudde/algo-phase/dsp/buffer"
)

// RequireSliceNearlyEqual fails t if got and want differ in length or if
// any element pair exceeds eps (absolute tolerance).
func RequireSliceNearlyEqual(t testing.TB, got, want []float64, eps float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %d, want %d", len(got), len(want))
	}
	for i := range got {
		if diff := math.Abs(got[i] - want[i]); diff > eps {
			t.Fatalf("index %d: got %v, want %v (diff %v > eps %v)", i, got[i], want[i], diff, eps)
		}
	}
}

// RequireRelNearlyEqual is like RequireSliceNearlyEqual but scales the
// tolerance by max(1, |want|).
func RequireRelNearlyEqual(t testing.TB, got, want []float64, rel float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %d, want %d", len(got), len(want))
	}
	for i := range got {
		limit := rel * math.Max(1, math.Abs(want[i]))
		if diff := math.Abs(got[i] - want[i]); diff > limit {
			t.Fatalf("index %d: got %v, want %v (diff %v > %v)", i, got[i], want[i], diff, limit)
		}
	}
}

// RequireMatrixNearlyEqual compares two matrices row by row.
func RequireMatrixNearlyEqual(t testing.TB, got, want *buffer.Matrix, eps float64) {
	t.Helper()
	if !got.SameShape(want) {
		gr, gc := got.Shape()
		wr, wc := want.Shape()
		t.Fatalf("shape mismatch: got %dx%d, want %dx%d", gr, gc, wr, wc)
	}
	for i := range got.Rows() {
		if d, _ := MaxAbsDiff(got.Row(i), want.Row(i)); d > eps {
			t.Fatalf("row %d: max abs diff %v > eps %v", i, d, eps)
		}
	}
}

// RequireFinite fails t if any element is NaN or Inf.
func RequireFinite(t testing.TB, data []float64) {
	t.Helper()
	for i, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("index %d: non-finite value %v", i, v)
		}
	}
}

// MaxAbsDiff returns the maximum absolute difference between two slices.
// Returns an error if the slices differ in length.
func MaxAbsDiff(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("length mismatch: %d vs %d", len(a), len(b))
	}
	maxDiff := 0.0
	for i := range a {
		if d := math.Abs(a[i] - b[i]); d > maxDiff {
			maxDiff = d
		}
	}
	return maxDiff, nil
}
