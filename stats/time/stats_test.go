package time

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-phase/internal/testutil"
)

const tolerance = 1e-10

func almostEqual(a, b, tol float64) bool {
	if math.IsNaN(a) && math.IsNaN(b) {
		return true
	}
	return math.Abs(a-b) <= tol
}

func TestMean(t *testing.T) {
	tests := []struct {
		name string
		in   []float64
		want float64
	}{
		{name: "empty", in: nil, want: 0},
		{name: "constant", in: testutil.DC(3.5, 100), want: 3.5},
		{name: "ramp", in: []float64{1, 2, 3, 4}, want: 2.5},
		{name: "symmetric", in: []float64{-2, -1, 0, 1, 2}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Mean(tt.in); !almostEqual(got, tt.want, tolerance) {
				t.Fatalf("Mean() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMeanKahanLargeOffset(t *testing.T) {
	x := make([]float64, 10000)
	for i := range x {
		x[i] = 1e8 + 0.1
	}
	if got := Mean(x); !almostEqual(got, 1e8+0.1, 1e-6) {
		t.Fatalf("Mean() = %.10f, want %.10f", got, 1e8+0.1)
	}
}

func TestStdDevUsesSampleDivisor(t *testing.T) {
	// Population std of {1,2,3,4} is sqrt(1.25); sample std is sqrt(5/3).
	got := StdDev([]float64{1, 2, 3, 4})
	if !almostEqual(got, math.Sqrt(5.0/3.0), tolerance) {
		t.Fatalf("StdDev() = %v, want %v", got, math.Sqrt(5.0/3.0))
	}
}

func TestStdDevDegenerate(t *testing.T) {
	if got := StdDev([]float64{1}); !math.IsNaN(got) {
		t.Fatalf("StdDev(single) = %v, want NaN", got)
	}
	if got := StdDev(testutil.DC(2, 50)); got != 0 {
		t.Fatalf("StdDev(constant) = %v, want 0", got)
	}
}

func TestCenter(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5}
	removed := Center(x)
	if !almostEqual(removed, 3, tolerance) {
		t.Fatalf("Center() returned %v, want 3", removed)
	}
	testutil.RequireSliceNearlyEqual(t, x, []float64{-2, -1, 0, 1, 2}, tolerance)
	if m := Mean(x); !almostEqual(m, 0, tolerance) {
		t.Fatalf("mean after Center = %v, want 0", m)
	}
}

func TestSummarize(t *testing.T) {
	x := []float64{4, -1, 7, 2, 2}
	s := Summarize(x)

	if s.Length != 5 {
		t.Errorf("Length: got %d, want 5", s.Length)
	}
	if !almostEqual(s.Mean, 2.8, tolerance) {
		t.Errorf("Mean: got %v, want 2.8", s.Mean)
	}
	if !almostEqual(s.StdDev, StdDev(x), tolerance) {
		t.Errorf("StdDev: got %v, want %v", s.StdDev, StdDev(x))
	}
	if s.Min != -1 || s.MinPos != 1 {
		t.Errorf("Min: got %v@%d, want -1@1", s.Min, s.MinPos)
	}
	if s.Max != 7 || s.MaxPos != 2 {
		t.Errorf("Max: got %v@%d, want 7@2", s.Max, s.MaxPos)
	}
	if s.Range != 8 {
		t.Errorf("Range: got %v, want 8", s.Range)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	if s.Length != 0 || !math.IsNaN(s.StdDev) {
		t.Fatalf("Summarize(nil) = %+v, want zero length and NaN std", s)
	}
}

func BenchmarkSummarize(b *testing.B) {
	x := testutil.DeterministicNoise(1, 1, 2500)
	b.ReportAllocs()
	b.SetBytes(int64(len(x) * 8))
	for range b.N {
		Summarize(x)
	}
}
