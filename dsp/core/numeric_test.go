package core

import (
	"math"
	"testing"
)

func TestNearlyEqual(t *testing.T) {
	tests := []struct {
		a, b, eps float64
		want      bool
	}{
		{1, 1 + 1e-13, 1e-12, true},
		{1, 1.1, 1e-3, false},
		{1e12, 1e12 + 1, 1e-9, true},
		{0, 1e-13, 0, true},
		{0, 1e-6, 0, false},
	}
	for _, tt := range tests {
		if got := NearlyEqual(tt.a, tt.b, tt.eps); got != tt.want {
			t.Errorf("NearlyEqual(%v, %v, %v) = %v, want %v", tt.a, tt.b, tt.eps, got, tt.want)
		}
	}
}

func TestPowerDB(t *testing.T) {
	if got := PowerDB(100); !NearlyEqual(got, 20, 1e-12) {
		t.Fatalf("PowerDB(100) = %v, want 20", got)
	}
	if got := PowerDB(0); !math.IsInf(got, -1) {
		t.Fatalf("PowerDB(0) = %v, want -Inf", got)
	}
	if got := PowerDB(-1); !math.IsNaN(got) {
		t.Fatalf("PowerDB(-1) = %v, want NaN", got)
	}
}
