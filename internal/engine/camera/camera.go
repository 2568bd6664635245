// Package camera provides the free-flying camera used to view the scene.
package camera

import (
	gomath "math"

	"github.com/go-gl/mathgl/mgl32"
)

// Clamp limits and fixed projection planes.
const (
	MinPitch = -89.0
	MaxPitch = 89.0
	MinFov   = 1.0
	MaxFov   = 90.0

	NearPlane = 0.1
	FarPlane  = 100.0
)

// Direction is a movement direction relative to the camera.
type Direction int

const (
	Forward Direction = iota
	Backward
	Left
	Right
	Up
	Down
)

// worldUp is the right-handed world vertical.
var worldUp = mgl32.Vec3{0, 1, 0}

// FlyCamera is a first-person camera. Orientation is stored as yaw and
// pitch in degrees; the basis vectors and matrices are derived on demand.
type FlyCamera struct {
	Position mgl32.Vec3

	yaw    float32
	pitch  float32
	fov    float32
	aspect float32

	// Speed is the movement rate in units per second.
	Speed float32
	// Sensitivity is degrees of rotation per unit of look delta.
	Sensitivity float32
}

// NewFlyCamera creates a camera at position looking down -Z.
func NewFlyCamera(position mgl32.Vec3, aspectRatio float32) *FlyCamera {
	return &FlyCamera{
		Position:    position,
		yaw:         -90,
		pitch:       0,
		fov:         45,
		aspect:      aspectRatio,
		Speed:       1.5,
		Sensitivity: 0.2,
	}
}

// Yaw returns the horizontal angle in degrees.
func (c *FlyCamera) Yaw() float32 { return c.yaw }

// SetYaw sets the horizontal angle. It is not clamped; the trigonometry
// wraps it.
func (c *FlyCamera) SetYaw(degrees float32) { c.yaw = degrees }

// Pitch returns the vertical angle in degrees.
func (c *FlyCamera) Pitch() float32 { return c.pitch }

// SetPitch sets the vertical angle, clamped to [MinPitch, MaxPitch] so the
// view never flips over the pole.
func (c *FlyCamera) SetPitch(degrees float32) {
	c.pitch = mgl32.Clamp(degrees, MinPitch, MaxPitch)
}

// Fov returns the vertical field of view in degrees.
func (c *FlyCamera) Fov() float32 { return c.fov }

// SetFov sets the vertical field of view, clamped to [MinFov, MaxFov].
func (c *FlyCamera) SetFov(degrees float32) {
	c.fov = mgl32.Clamp(degrees, MinFov, MaxFov)
}

// AspectRatio returns width divided by height.
func (c *FlyCamera) AspectRatio() float32 { return c.aspect }

// SetAspectRatio updates the projection aspect. Non-positive values are
// ignored; a minimised window reports zero height.
func (c *FlyCamera) SetAspectRatio(aspect float32) {
	if aspect <= 0 || gomath.IsInf(float64(aspect), 0) || gomath.IsNaN(float64(aspect)) {
		return
	}
	c.aspect = aspect
}

// OnResize updates the aspect ratio from framebuffer dimensions.
func (c *FlyCamera) OnResize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	c.SetAspectRatio(float32(width) / float32(height))
}

// Front returns the unit view direction.
func (c *FlyCamera) Front() mgl32.Vec3 {
	yaw := float64(mgl32.DegToRad(c.yaw))
	pitch := float64(mgl32.DegToRad(c.pitch))
	return mgl32.Vec3{
		float32(gomath.Cos(pitch) * gomath.Cos(yaw)),
		float32(gomath.Sin(pitch)),
		float32(gomath.Cos(pitch) * gomath.Sin(yaw)),
	}.Normalize()
}

// Right returns the unit vector to the camera's right.
func (c *FlyCamera) Right() mgl32.Vec3 {
	return c.Front().Cross(worldUp).Normalize()
}

// Up returns the unit vector above the camera.
func (c *FlyCamera) Up() mgl32.Vec3 {
	return c.Right().Cross(c.Front()).Normalize()
}

// GetViewMatrix returns the world-to-view transform.
func (c *FlyCamera) GetViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.Position.Add(c.Front()), c.Up())
}

// GetProjectionMatrix returns the perspective projection.
func (c *FlyCamera) GetProjectionMatrix() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.fov), c.aspect, NearPlane, FarPlane)
}

// Move translates the camera along one of its axes for dt seconds.
func (c *FlyCamera) Move(dir Direction, dt float32) {
	step := c.Speed * dt
	switch dir {
	case Forward:
		c.Position = c.Position.Add(c.Front().Mul(step))
	case Backward:
		c.Position = c.Position.Sub(c.Front().Mul(step))
	case Right:
		c.Position = c.Position.Add(c.Right().Mul(step))
	case Left:
		c.Position = c.Position.Sub(c.Right().Mul(step))
	case Up:
		c.Position = c.Position.Add(c.Up().Mul(step))
	case Down:
		c.Position = c.Position.Sub(c.Up().Mul(step))
	}
}

// Look turns the camera by a pointer delta. Positive dy looks up.
func (c *FlyCamera) Look(dx, dy float32) {
	c.SetYaw(c.yaw + dx*c.Sensitivity)
	c.SetPitch(c.pitch + dy*c.Sensitivity)
}

// Zoom narrows the field of view for positive delta.
func (c *FlyCamera) Zoom(delta float32) {
	c.SetFov(c.fov - delta)
}
