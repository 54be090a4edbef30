package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/tubedensity/shading"
)

// Bandwidth slider limits.
const (
	MinBandwidth = 0.1
	MaxBandwidth = 6.0
)

// ControlsState is the panel's view of the adjustable settings.
type ControlsState struct {
	Bandwidth     float64
	Paused        bool
	ShowParticles bool
	Wireframe     bool
}

// ControlsAction reports what the user asked for this frame.
type ControlsAction struct {
	Bandwidth   float64 // Non-zero when the slider moved
	TogglePause bool
	StepOnce    bool
	ToggleParts bool
	ToggleWire  bool
	ResetCamera bool
}

// ControlsPanel renders the right-side panel with raygui controls.
type ControlsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	visible  bool
}

// NewControlsPanel creates a new controls panel.
func NewControlsPanel(x, y, width int32) *ControlsPanel {
	return &ControlsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
		visible:  true,
	}
}

// SetPosition updates the panel position.
func (c *ControlsPanel) SetPosition(x, y int32) {
	c.x = x
	c.y = y
}

// IsVisible returns whether the panel is shown.
func (c *ControlsPanel) IsVisible() bool {
	return c.visible
}

// Toggle switches panel visibility.
func (c *ControlsPanel) Toggle() bool {
	c.visible = !c.visible
	return c.visible
}

// Draw renders the panel and returns the requested actions.
func (c *ControlsPanel) Draw(state ControlsState) ControlsAction {
	var act ControlsAction
	if !c.visible {
		return act
	}

	r := c.renderer
	padding := r.Theme.Padding
	inner := c.width - 2*padding
	r.DrawPanel(c.x, c.y, c.width, 250)

	x := c.x + padding
	y := c.y + padding

	rl.DrawText("Density", x, y, 16, rl.White)
	y += r.Theme.LineHeight + 4

	// Bandwidth slider
	rl.DrawText("Bandwidth h", x, y, r.Theme.FontSize, r.Theme.LabelColor)
	y += r.Theme.LineHeight
	sliderW := float32(inner - 50)
	newH := gui.SliderBar(
		rl.Rectangle{X: float32(x), Y: float32(y), Width: sliderW, Height: 20},
		"", "",
		float32(state.Bandwidth), MinBandwidth, MaxBandwidth,
	)
	rl.DrawText(fmt.Sprintf("%.2f", state.Bandwidth), x+int32(sliderW)+8, y+4, r.Theme.FontSize, r.Theme.ValueColor)
	if newH != float32(state.Bandwidth) && rl.IsMouseButtonDown(rl.MouseButtonLeft) {
		act.Bandwidth = float64(newH)
	}
	y += 30

	// Ramp legend
	y = r.DrawSectionHeader(x, y, "Color ramp")
	y = r.DrawRampLegend(x, y, inner, shading.DensityRamp)
	y += 6

	// Buttons
	half := float32(inner-10) / 2
	if gui.Button(rl.Rectangle{X: float32(x), Y: float32(y), Width: half, Height: 26}, toggleText(state.Paused, "Resume", "Pause")) {
		act.TogglePause = true
	}
	if gui.Button(rl.Rectangle{X: float32(x) + half + 10, Y: float32(y), Width: half, Height: 26}, "Step") {
		act.StepOnce = true
	}
	y += 34

	if gui.Button(rl.Rectangle{X: float32(x), Y: float32(y), Width: half, Height: 26}, toggleText(state.ShowParticles, "Hide particles", "Show particles")) {
		act.ToggleParts = true
	}
	if gui.Button(rl.Rectangle{X: float32(x) + half + 10, Y: float32(y), Width: half, Height: 26}, toggleText(state.Wireframe, "Solid", "Wireframe")) {
		act.ToggleWire = true
	}
	y += 34

	if gui.Button(rl.Rectangle{X: float32(x), Y: float32(y), Width: float32(inner), Height: 26}, "Reset camera") {
		act.ResetCamera = true
	}

	return act
}

func toggleText(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}
