package unwrap

import (
	"testing"

	"github.com/cwbudde/algo-phase/internal/testutil"
)

func TestChannelLowStartShiftsHighSamplesDown(t *testing.T) {
	x := testutil.DC(100, 60)
	x[10] = 300
	x[55] = 271
	x[56] = 270 // boundary is exclusive

	dir, n, err := Channel(x, Default())
	if err != nil {
		t.Fatal(err)
	}
	if dir != Down || n != 2 {
		t.Fatalf("Channel() = (%v, %d), want (down, 2)", dir, n)
	}
	if x[10] != -60 || x[55] != -89 || x[56] != 270 {
		t.Fatalf("unexpected values: x[10]=%v x[55]=%v x[56]=%v", x[10], x[55], x[56])
	}
	for i, v := range x {
		if v > 270 {
			t.Fatalf("x[%d] = %v still above 270", i, v)
		}
	}
}

func TestChannelHighStartShiftsLowSamplesUp(t *testing.T) {
	x := testutil.DC(250, 60)
	x[3] = 10
	x[40] = 89.5
	x[41] = 90 // boundary is exclusive

	dir, n, err := Channel(x, Default())
	if err != nil {
		t.Fatal(err)
	}
	if dir != Up || n != 2 {
		t.Fatalf("Channel() = (%v, %d), want (up, 2)", dir, n)
	}
	if x[3] != 370 || x[40] != 449.5 || x[41] != 90 {
		t.Fatalf("unexpected values: x[3]=%v x[40]=%v x[41]=%v", x[3], x[40], x[41])
	}
	for i, v := range x {
		if v < 90 {
			t.Fatalf("x[%d] = %v still below 90", i, v)
		}
	}
}

func TestChannelPivotIsInclusiveForUp(t *testing.T) {
	// Leading mean of exactly 180 takes the low-side rule.
	x := testutil.DC(180, 50)
	x[49] = 0
	x[0] = 360
	dir, _, err := Channel(x, Default())
	if err != nil {
		t.Fatal(err)
	}
	if dir != Up {
		t.Fatalf("direction = %v, want up", dir)
	}
	if x[49] != 360 {
		t.Fatalf("x[49] = %v, want 360", x[49])
	}
}

func TestChannelOnlyLeadingSegmentDecides(t *testing.T) {
	x := append(testutil.DC(100, 50), testutil.DC(300, 50)...)
	dir, n, err := Channel(x, Default())
	if err != nil {
		t.Fatal(err)
	}
	if dir != Down || n != 50 {
		t.Fatalf("Channel() = (%v, %d), want (down, 50)", dir, n)
	}
}

func TestChannelTooShort(t *testing.T) {
	if _, _, err := Channel(make([]float64, 49), Default()); err == nil {
		t.Fatal("expected error for fewer than 50 samples")
	}
}

func TestDirectionString(t *testing.T) {
	if Up.String() != "up" || Down.String() != "down" {
		t.Fatalf("unexpected strings %q %q", Up, Down)
	}
}
