package core

import (
	"math"
	"testing"
)

func TestPhaseDelay(t *testing.T) {
	tests := []struct {
		name  string
		deg   float64
		modHz float64
		want  float64
	}{
		{name: "full turn", deg: 360, modHz: 1.1e8, want: 1e12 / 1.1e8},
		{name: "zero", deg: 0, modHz: 1.1e8, want: 0},
		{name: "negative", deg: -90, modHz: 1e8, want: -2500},
		{name: "quarter turn", deg: 90, modHz: 1e8, want: 2500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PhaseDelay(tt.deg, tt.modHz)
			if !NearlyEqual(got, tt.want, 1e-12) {
				t.Fatalf("PhaseDelay(%v, %v) = %v, want %v", tt.deg, tt.modHz, got, tt.want)
			}
		})
	}
}

func TestPhaseDelayFullTurnValue(t *testing.T) {
	got := PhaseDelay(360, 1.1e8)
	if math.Abs(got-9090.909090909) > 1e-6 {
		t.Fatalf("PhaseDelay(360) = %v, want ~9090.91", got)
	}
}

func TestFirstNonFinite(t *testing.T) {
	tests := []struct {
		in   []float64
		want int
	}{
		{in: nil, want: -1},
		{in: []float64{1, 2, 3}, want: -1},
		{in: []float64{1, math.NaN(), 3}, want: 1},
		{in: []float64{math.Inf(-1)}, want: 0},
		{in: []float64{0, 0, math.Inf(1)}, want: 2},
	}

	for _, tt := range tests {
		if got := FirstNonFinite(tt.in); got != tt.want {
			t.Fatalf("FirstNonFinite(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
