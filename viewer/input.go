package viewer

import rl "github.com/gen2brain/raylib-go/raylib"

// orbitSpeed is radians per pixel of mouse drag.
const orbitSpeed = 0.005

// handleInput processes keyboard and mouse input.
func (v *Viewer) handleInput() {
	v.handleResize()

	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	if rl.IsKeyPressed(rl.KeySpace) {
		v.paused = !v.paused
	}
	if rl.IsKeyPressed(rl.KeyN) {
		v.stepOnce = true
	}
	if rl.IsKeyPressed(rl.KeyP) {
		v.showParticles = !v.showParticles
	}
	if rl.IsKeyPressed(rl.KeyW) {
		v.tube.SetWireframe(!v.tube.Wireframe())
	}
	if rl.IsKeyPressed(rl.KeyTab) {
		v.controls.Toggle()
	}
	if rl.IsKeyPressed(rl.KeyF) {
		v.showPerf = !v.showPerf
	}

	v.handleCameraInput()
}

// handleCameraInput orbits on right-drag and zooms on the wheel.
func (v *Viewer) handleCameraInput() {
	orbit := v.view.Orbit()

	if rl.IsMouseButtonDown(rl.MouseButtonRight) {
		d := rl.GetMouseDelta()
		orbit.Rotate(-float64(d.X)*orbitSpeed, float64(d.Y)*orbitSpeed)
	}

	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		orbit.ZoomBy(1 + 0.1*float64(wheel))
	}

	if rl.IsKeyPressed(rl.KeyR) {
		orbit.Reset()
	}
}

// handleResize keeps the control panel anchored to the right edge.
func (v *Viewer) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := int32(rl.GetScreenWidth())
	h := int32(rl.GetScreenHeight())
	if w == v.screenWidth && h == v.screenHeight {
		return
	}
	v.screenWidth = w
	v.screenHeight = h
	v.controls.SetPosition(w-panelWidth-10, 10)
}
