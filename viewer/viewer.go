// Package viewer runs the interactive raylib window around a scene.
package viewer

import (
	"errors"

	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/tubedensity/camera"
	"github.com/pthm-cable/tubedensity/config"
	"github.com/pthm-cable/tubedensity/density"
	"github.com/pthm-cable/tubedensity/renderer"
	"github.com/pthm-cable/tubedensity/scene"
	"github.com/pthm-cable/tubedensity/ui"
)

// Default eye position in the Z-up scene frame, looking at the tube center.
var defaultEye = r3.Vec{X: -2.97, Y: -33.27, Z: 3.57}

const panelWidth = 240

const controlsHelp = "[Space] pause  [N] step  [RMB drag] orbit  [Wheel] zoom  [P] particles  [W] wireframe  [Tab] panel  [R] reset view"

// Viewer holds the window-side state for a scene.
type Viewer struct {
	scene *scene.Scene
	cfg   *config.Config

	view      *renderer.View
	tube      *renderer.TubeRenderer
	particles *renderer.ParticleRenderer
	hud       *ui.HUD
	perfPanel *ui.PerfPanel
	controls  *ui.ControlsPanel

	points []r3.Vec

	fatal         error // Set once the density update cannot continue
	paused        bool
	stepOnce      bool
	showParticles bool
	showPerf      bool

	screenWidth, screenHeight int32
}

// New creates a viewer. The raylib window must already be open.
func New(s *scene.Scene, cfg *config.Config) *Viewer {
	w := int32(rl.GetScreenWidth())
	h := int32(rl.GetScreenHeight())
	orbit := camera.New(camera.ZUpToYUp(defaultEye), r3.Vec{})

	return &Viewer{
		scene:         s,
		cfg:           cfg,
		view:          renderer.NewView(orbit),
		tube:          renderer.NewTubeRenderer(),
		particles:     renderer.NewParticleRenderer(),
		hud:           ui.NewHUD(),
		perfPanel:     ui.NewPerfPanel(10, 100),
		controls:      ui.NewControlsPanel(w-panelWidth-10, 10, panelWidth),
		showParticles: true,
		screenWidth:   w,
		screenHeight:  h,
	}
}

// Update handles input and advances the scene unless paused.
// A returned error means the density update hit a fatal condition.
func (v *Viewer) Update() error {
	v.handleInput()

	if v.fatal != nil || (v.paused && !v.stepOnce) {
		return nil
	}
	v.stepOnce = false

	err := v.scene.Update()
	if errors.Is(err, density.ErrShapeMismatch) {
		v.fatal = err
		v.paused = true
	}
	return err
}

// Draw renders the scene and the UI.
func (v *Viewer) Draw() {
	v.scene.Perf().RecordRender()

	rl.BeginDrawing()
	rl.ClearBackground(rl.Color{R: 18, G: 20, B: 24, A: 255})

	v.view.Begin()
	v.tube.Draw(v.scene.Mesh(), v.scene.WorldVertices(), v.scene.Density())
	if v.showParticles {
		v.points = v.scene.Particles(v.points)
		v.particles.Draw(v.points)
		v.particles.DrawEmitter(v.cfg.Derived.EmitterX, v.cfg.Cylinder.Radius)
	}
	v.view.End()

	v.drawHUD()

	act := v.controls.Draw(ui.ControlsState{
		Bandwidth:     v.scene.Bandwidth(),
		Paused:        v.paused,
		ShowParticles: v.showParticles,
		Wireframe:     v.tube.Wireframe(),
	})
	v.apply(act)

	v.hud.DrawControls(v.screenHeight, controlsHelp)

	rl.EndDrawing()
}

// drawHUD renders the status text and optional perf panel.
func (v *Viewer) drawHUD() {
	out := v.scene.LastOutcome()
	skipped := ""
	if out.Skipped != nil {
		skipped = out.Skipped.Error()
	}
	stopped := ""
	if v.fatal != nil {
		stopped = v.fatal.Error()
	}
	v.hud.Draw(ui.HUDData{
		Title:     "Tube Density",
		Frame:     v.scene.Frame(),
		Particles: len(v.points),
		Count:     v.cfg.Particles.Count,
		Vertices:  v.scene.Mesh().VertexCount(),
		FPS:       rl.GetFPS(),
		Paused:    v.paused,
		Skipped:   skipped,
		Stopped:   stopped,
		RawMax:    out.Result.RawMax,
		Bandwidth: v.scene.Bandwidth(),
		Kernel:    v.cfg.Kernel.Type,
	})

	if v.showPerf {
		v.perfPanel.Draw(v.scene.Perf().Stats())
	}
}

// apply carries out the control panel's requests.
func (v *Viewer) apply(act ui.ControlsAction) {
	if act.Bandwidth > 0 {
		v.scene.SetBandwidth(act.Bandwidth)
	}
	if act.TogglePause {
		v.paused = !v.paused
	}
	if act.StepOnce {
		v.stepOnce = true
	}
	if act.ToggleParts {
		v.showParticles = !v.showParticles
	}
	if act.ToggleWire {
		v.tube.SetWireframe(!v.tube.Wireframe())
	}
	if act.ResetCamera {
		v.view.Orbit().Reset()
	}
}

// Paused reports whether the simulation is paused.
func (v *Viewer) Paused() bool {
	return v.paused
}
