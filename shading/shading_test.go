package shading

import (
	"errors"
	"image/color"
	"math"
	"testing"

	"github.com/pthm-cable/tubedensity/density"
)

func TestAttributePublish(t *testing.T) {
	a := NewAttribute("density", 3)

	if err := a.Publish([]float64{0, 0.5, 1}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if a.Published() != 1 {
		t.Errorf("expected 1 published frame, got %d", a.Published())
	}
	if a.Value(1) != 0.5 {
		t.Errorf("Value(1) = %g, want 0.5", a.Value(1))
	}

	snap := a.Snapshot(nil)
	snap[0] = 42
	if a.Value(0) != 0 {
		t.Error("snapshot aliases attribute storage")
	}
}

func TestAttributeRejectsBadFrames(t *testing.T) {
	a := NewAttribute("density", 2)
	if err := a.Publish([]float64{0.2, 0.4}); err != nil {
		t.Fatal(err)
	}

	err := a.Publish([]float64{0.1})
	if !errors.Is(err, density.ErrShapeMismatch) {
		t.Errorf("expected shape mismatch, got %v", err)
	}

	for _, bad := range []float64{-0.1, 1.5, math.NaN()} {
		err = a.Publish([]float64{0.5, bad})
		if !errors.Is(err, ErrOutOfRange) {
			t.Errorf("value %g: expected ErrOutOfRange, got %v", bad, err)
		}
	}

	// Rejected frames leave the previous frame intact
	if a.Value(0) != 0.2 || a.Value(1) != 0.4 || a.Published() != 1 {
		t.Errorf("rejected frame modified attribute: %v", a.Snapshot(nil))
	}
}

func TestMapRange(t *testing.T) {
	m := MapRange{FromMin: 0.2, FromMax: 0.6, ToMin: 0, ToMax: 1}
	tests := []struct {
		in, want float64
	}{
		{0.2, 0},
		{0.4, 0.5},
		{0.6, 1},
		{-1, 0},
		{5, 1},
	}
	for _, tt := range tests {
		if got := m.Map(tt.in); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("Map(%g) = %g, want %g", tt.in, got, tt.want)
		}
	}

	if got := UnitRange.Map(0.3); got != 0.3 {
		t.Errorf("UnitRange.Map(0.3) = %g", got)
	}
	if got := (MapRange{FromMin: 1, FromMax: 1, ToMin: 0.25}).Map(7); got != 0.25 {
		t.Errorf("degenerate range should return ToMin, got %g", got)
	}
}

func TestDensityRamp(t *testing.T) {
	blue := color.RGBA{B: 255, A: 255}
	red := color.RGBA{R: 255, A: 255}

	if got := DensityRamp.At(0); got != blue {
		t.Errorf("At(0) = %v, want blue", got)
	}
	if got := DensityRamp.At(1); got != red {
		t.Errorf("At(1) = %v, want red", got)
	}
	if got := DensityRamp.At(-3); got != blue {
		t.Errorf("At(-3) should clamp to blue, got %v", got)
	}

	mid := DensityRamp.At(0.5)
	if mid.R != 128 || mid.B != 128 || mid.G != 0 {
		t.Errorf("At(0.5) = %v, want (128,0,128)", mid)
	}

	if got := DensityRamp.Shade(UnitRange, 1); got != red {
		t.Errorf("Shade(1) = %v, want red", got)
	}
}

func TestMultiStopRamp(t *testing.T) {
	r := ColorRamp{Stops: []Stop{
		{Pos: 0, Color: color.RGBA{A: 255}},
		{Pos: 0.5, Color: color.RGBA{G: 200, A: 255}},
		{Pos: 1, Color: color.RGBA{G: 200, B: 100, A: 255}},
	}}
	if got := r.At(0.25); got.G != 100 {
		t.Errorf("At(0.25).G = %d, want 100", got.G)
	}
	if got := r.At(0.75); got.G != 200 || got.B != 50 {
		t.Errorf("At(0.75) = %v, want G=200 B=50", got)
	}
}
