// Kernel preview tool - compares density kernels interactively with sliders.
//
// Usage: go run ./cmd/kernelpreview
package main

import (
	"fmt"
	"math/rand"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/tubedensity/density"
	"github.com/pthm-cable/tubedensity/shading"
)

const (
	windowWidth  = 1000
	windowHeight = 720
	plotWidth    = 600
	plotHeight   = 300
	panelWidth   = windowWidth - plotWidth - 40
	maxDistance  = 6.0 // Distance range of the weight plot
	lineLength   = 15.0
	samples      = 300
)

// PreviewParams holds the kernel parameters.
type PreviewParams struct {
	Bandwidth float32
	Rate      float32
	Particles int
	Seed      int64
}

func defaultParams() PreviewParams {
	return PreviewParams{Bandwidth: 1.5, Rate: 2.0, Particles: 40, Seed: 1}
}

func main() {
	rl.InitWindow(windowWidth, windowHeight, "Density Kernel Preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(30)

	params := defaultParams()

	// Vertices along a line through the tube axis
	vertices := make([]r3.Vec, samples)
	for i := range vertices {
		vertices[i] = r3.Vec{X: -lineLength/2 + lineLength*float64(i)/float64(samples-1)}
	}

	var particles density.ParticleSet
	var gaussField, expField density.DensityField
	needsRegen := true

	for !rl.WindowShouldClose() {
		gauss := density.Gaussian{H: float64(params.Bandwidth)}
		exp := density.Exponential{Rate: float64(params.Rate)}

		if needsRegen {
			particles = scatter(params.Particles, params.Seed)
			gaussField = density.Evaluate(gauss, particles, vertices)
			expField = density.Evaluate(exp, particles, vertices)
			needsRegen = false
		}

		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)

		// Kernel weight vs distance
		weightPlot := rl.Rectangle{X: 10, Y: 30, Width: plotWidth, Height: plotHeight}
		rl.DrawText("Kernel weight vs distance", 10, 8, 18, rl.DarkGray)
		drawFrame(weightPlot)
		drawCurve(weightPlot, samples, func(t float64) float64 {
			d := t * maxDistance
			return gauss.Weight(d * d)
		}, rl.Blue)
		drawCurve(weightPlot, samples, func(t float64) float64 {
			d := t * maxDistance
			return exp.Weight(d * d)
		}, rl.Red)
		rl.DrawText(fmt.Sprintf("0 .. %.0f", maxDistance), int32(weightPlot.X)+4, int32(weightPlot.Y+weightPlot.Height)+4, 14, rl.Gray)

		// Normalized density along the axis
		fieldPlot := rl.Rectangle{X: 10, Y: 380, Width: plotWidth, Height: plotHeight}
		rl.DrawText("Normalized density along the axis", 10, 358, 18, rl.DarkGray)
		drawFrame(fieldPlot)
		drawField(fieldPlot, gaussField)
		drawCurve(fieldPlot, len(expField), func(t float64) float64 {
			return expField[min(int(t*float64(len(expField)-1)), len(expField)-1)]
		}, rl.Red)
		for _, p := range particles {
			x := fieldPlot.X + float32((p.X+lineLength/2)/lineLength)*fieldPlot.Width
			rl.DrawLine(int32(x), int32(fieldPlot.Y+fieldPlot.Height), int32(x), int32(fieldPlot.Y+fieldPlot.Height)-6, rl.DarkGray)
		}

		// Control panel
		panelX := float32(plotWidth + 30)
		panelY := float32(10)

		rl.DrawText("Kernel Parameters", int32(panelX), int32(panelY), 20, rl.DarkGray)
		panelY += 35

		rl.DrawText("Gaussian bandwidth h", int32(panelX), int32(panelY), 14, rl.Blue)
		panelY += 18
		newH := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"0.1", "6.0",
			params.Bandwidth, 0.1, 6.0,
		)
		rl.DrawText(fmt.Sprintf("%.2f", params.Bandwidth), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		if newH != params.Bandwidth {
			params.Bandwidth = newH
			needsRegen = true
		}
		panelY += 35

		rl.DrawText("Exponential rate", int32(panelX), int32(panelY), 14, rl.Red)
		panelY += 18
		newRate := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"0.1", "5.0",
			params.Rate, 0.1, 5.0,
		)
		rl.DrawText(fmt.Sprintf("%.2f", params.Rate), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		if newRate != params.Rate {
			params.Rate = newRate
			needsRegen = true
		}
		panelY += 35

		rl.DrawText("Particles", int32(panelX), int32(panelY), 14, rl.Gray)
		panelY += 18
		newCount := gui.SliderBar(
			rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
			"0", "200",
			float32(params.Particles), 0, 200,
		)
		rl.DrawText(fmt.Sprintf("%d", params.Particles), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
		if int(newCount) != params.Particles {
			params.Particles = int(newCount)
			needsRegen = true
		}
		panelY += 45

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, "Reshuffle") {
			params.Seed++
			needsRegen = true
		}
		if gui.Button(rl.Rectangle{X: panelX + 130, Y: panelY, Width: 120, Height: 30}, "Reset All") {
			params = defaultParams()
			needsRegen = true
		}
		panelY += 55

		// YAML snippet for the current settings
		rl.DrawText("YAML Config:", int32(panelX), int32(panelY), 16, rl.DarkGray)
		panelY += 25
		yamlLines := []string{
			"kernel:",
			"  type: gaussian",
			fmt.Sprintf("  bandwidth: %.2f", params.Bandwidth),
			fmt.Sprintf("  rate: %.2f", params.Rate),
		}
		for _, line := range yamlLines {
			rl.DrawText(line, int32(panelX), int32(panelY), 14, rl.Gray)
			panelY += 16
		}

		rl.DrawText("Blue: gaussian (ramp colored)  Red: exponential", int32(panelX), int32(windowHeight-50), 12, rl.Gray)
		rl.DrawText("Press C to copy YAML to clipboard", int32(panelX), int32(windowHeight-30), 12, rl.LightGray)

		if rl.IsKeyPressed(rl.KeyC) {
			rl.SetClipboardText(fmt.Sprintf("kernel:\n  type: gaussian\n  bandwidth: %.2f\n  rate: %.2f",
				params.Bandwidth, params.Rate))
		}

		rl.EndDrawing()
	}
}

// scatter places n particles along the axis, clustered toward the emitter end.
func scatter(n int, seed int64) density.ParticleSet {
	rng := rand.New(rand.NewSource(seed))
	ps := make(density.ParticleSet, n)
	for i := range ps {
		u := rng.Float64()
		ps[i] = r3.Vec{
			X: -lineLength/2 + lineLength*u*u,
			Y: (rng.Float64()*2 - 1) * 0.5,
			Z: (rng.Float64()*2 - 1) * 0.5,
		}
	}
	return ps
}

func drawFrame(r rl.Rectangle) {
	rl.DrawRectangleLinesEx(r, 1, rl.DarkGray)
}

// drawCurve plots f over t in [0,1], with f values in [0,1].
func drawCurve(r rl.Rectangle, n int, f func(t float64) float64, col rl.Color) {
	if n < 2 {
		return
	}
	prev := rl.Vector2{}
	for i := 0; i < n; i++ {
		t := float64(i) / float64(n-1)
		pt := rl.Vector2{
			X: r.X + float32(t)*r.Width,
			Y: r.Y + r.Height - float32(f(t))*r.Height,
		}
		if i > 0 {
			rl.DrawLineV(prev, pt, col)
		}
		prev = pt
	}
}

// drawField draws the Gaussian field as ramp-colored bars.
func drawField(r rl.Rectangle, field density.DensityField) {
	if len(field) == 0 {
		return
	}
	w := r.Width / float32(len(field))
	for i, v := range field {
		h := float32(v) * r.Height
		col := rl.Color(shading.DensityRamp.At(v))
		rl.DrawRectangleRec(rl.Rectangle{X: r.X + float32(i)*w, Y: r.Y + r.Height - h, Width: w + 1, Height: h}, col)
	}
}
