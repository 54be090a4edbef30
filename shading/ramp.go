package shading

import (
	"image/color"
	"math"
)

// MapRange linearly remaps [FromMin, FromMax] onto [ToMin, ToMax], clamped.
type MapRange struct {
	FromMin, FromMax float64
	ToMin, ToMax     float64
}

// UnitRange maps [0,1] onto itself.
var UnitRange = MapRange{FromMin: 0, FromMax: 1, ToMin: 0, ToMax: 1}

// Map applies the range mapping.
func (m MapRange) Map(v float64) float64 {
	span := m.FromMax - m.FromMin
	if span == 0 {
		return m.ToMin
	}
	t := (v - m.FromMin) / span
	t = math.Max(0, math.Min(1, t))
	return m.ToMin + t*(m.ToMax-m.ToMin)
}

// Stop is a color ramp element.
type Stop struct {
	Pos   float64
	Color color.RGBA
}

// ColorRamp interpolates linearly between sorted stops.
type ColorRamp struct {
	Stops []Stop
}

// DensityRamp is blue at zero density and red at full density.
var DensityRamp = ColorRamp{Stops: []Stop{
	{Pos: 0, Color: color.RGBA{R: 0, G: 0, B: 255, A: 255}},
	{Pos: 1, Color: color.RGBA{R: 255, G: 0, B: 0, A: 255}},
}}

// At returns the color at t, clamping outside the first and last stop.
func (r ColorRamp) At(t float64) color.RGBA {
	if len(r.Stops) == 0 {
		return color.RGBA{A: 255}
	}
	if math.IsNaN(t) || t <= r.Stops[0].Pos {
		return r.Stops[0].Color
	}
	last := r.Stops[len(r.Stops)-1]
	if t >= last.Pos {
		return last.Color
	}
	for i := 1; i < len(r.Stops); i++ {
		hi := r.Stops[i]
		if t > hi.Pos {
			continue
		}
		lo := r.Stops[i-1]
		f := (t - lo.Pos) / (hi.Pos - lo.Pos)
		return color.RGBA{
			R: lerp8(lo.Color.R, hi.Color.R, f),
			G: lerp8(lo.Color.G, hi.Color.G, f),
			B: lerp8(lo.Color.B, hi.Color.B, f),
			A: lerp8(lo.Color.A, hi.Color.A, f),
		}
	}
	return last.Color
}

// Shade maps a density value through m and the ramp.
func (r ColorRamp) Shade(m MapRange, v float64) color.RGBA {
	return r.At(m.Map(v))
}

func lerp8(a, b uint8, f float64) uint8 {
	return uint8(math.Round(float64(a) + (float64(b)-float64(a))*f))
}
