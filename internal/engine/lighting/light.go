// Package lighting provides the scene's single point light and the orbit
// that moves its emitter.
package lighting

import (
	"time"

	"github.com/go-gl/mathgl/mgl32"
)

// Light is a point light in world space with Phong colour terms.
type Light struct {
	Position mgl32.Vec3
	Ambient  mgl32.Vec3
	Diffuse  mgl32.Vec3
	Specular mgl32.Vec3
}

// Warm returns the default warm white light at position.
func Warm(position mgl32.Vec3) Light {
	return Light{
		Position: position,
		Ambient:  mgl32.Vec3{0.1, 0.1, 0.1},
		Diffuse:  mgl32.Vec3{1, 0.9, 0.81},
		Specular: mgl32.Vec3{1, 0.9, 0.81},
	}
}

// Orbit circles the vertical axis: the emitter is first offset by
// (Radius, Height, 0) and then rotated about Y by Speed degrees per second.
type Orbit struct {
	Radius float32
	Height float32
	Speed  float32 // degrees per second
}

// DefaultOrbit is a radius 5 orbit, one unit up, at 5 degrees per second.
func DefaultOrbit() Orbit {
	return Orbit{Radius: 5, Height: 1, Speed: 5}
}

// Angle returns the rotation in radians after elapsed time.
func (o Orbit) Angle(elapsed time.Duration) float32 {
	return mgl32.DegToRad(float32(elapsed.Seconds()) * o.Speed)
}

// Period returns the time for one full revolution, or 0 for a still orbit.
func (o Orbit) Period() time.Duration {
	if o.Speed == 0 {
		return 0
	}
	speed := o.Speed
	if speed < 0 {
		speed = -speed
	}
	return time.Duration(360 / float64(speed) * float64(time.Second))
}

// Transform returns the emitter's model matrix after elapsed time.
func (o Orbit) Transform(elapsed time.Duration) mgl32.Mat4 {
	return mgl32.HomogRotate3DY(o.Angle(elapsed)).Mul4(mgl32.Translate3D(o.Radius, o.Height, 0))
}

// Position extracts the world translation of a model matrix.
func Position(m mgl32.Mat4) mgl32.Vec3 {
	return m.Col(3).Vec3()
}
