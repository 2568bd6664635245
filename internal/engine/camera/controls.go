package camera

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/opengraphics/internal/config"
	"github.com/Faultbox/opengraphics/internal/engine/input"
)

var moves = []struct {
	key input.Key
	dir Direction
}{
	{input.KeyW, Forward},
	{input.KeyS, Backward},
	{input.KeyA, Left},
	{input.KeyD, Right},
	{input.KeySpace, Up},
	{input.KeyShift, Down},
}

// FromConfig builds a camera for a width x height framebuffer. Zero speed
// or sensitivity keep the defaults.
func FromConfig(cfg config.CameraConfig, width, height int) *FlyCamera {
	aspect := float32(1)
	if width > 0 && height > 0 {
		aspect = float32(width) / float32(height)
	}
	c := NewFlyCamera(mgl32.Vec3(cfg.Position), aspect)
	c.SetYaw(cfg.Yaw)
	c.SetPitch(cfg.Pitch)
	c.SetFov(cfg.Fov)
	if cfg.Speed > 0 {
		c.Speed = cfg.Speed
	}
	if cfg.Sensitivity > 0 {
		c.Sensitivity = cfg.Sensitivity
	}
	return c
}

// ApplyInput moves and turns the camera from one frame of input. WASD move
// in the view plane, Space and Shift move vertically, the mouse looks and
// the wheel zooms. Screen y grows downwards, so it is negated for pitch.
func (c *FlyCamera) ApplyInput(st *input.State, dt float32) {
	for _, m := range moves {
		if st.Held(m.key) {
			c.Move(m.dir, dt)
		}
	}
	if st.MouseDX != 0 || st.MouseDY != 0 {
		c.Look(st.MouseDX, -st.MouseDY)
	}
	if st.Scroll != 0 {
		c.Zoom(st.Scroll)
	}
}
