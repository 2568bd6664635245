package lighting

import (
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
)

// near compares two vectors with an absolute per-component tolerance.
func near(a, b mgl32.Vec3, tol float32) bool {
	return a.ApproxFuncEqual(b, func(x, y float32) bool { return mgl32.Abs(x-y) <= tol })
}

const epsilon = 1e-4

func TestOrbitStartsOnRadius(t *testing.T) {
	o := DefaultOrbit()
	got := Position(o.Transform(0))
	if !near(got, mgl32.Vec3{5, 1, 0}, epsilon) {
		t.Errorf("start position = %v, want (5, 1, 0)", got)
	}
}

func TestOrbitReturnsAfterPeriod(t *testing.T) {
	o := DefaultOrbit()
	if o.Period() != 72*time.Second {
		t.Fatalf("period = %v, want 72s", o.Period())
	}

	start := Position(o.Transform(0))
	end := Position(o.Transform(o.Period()))
	if !near(start, end, epsilon) {
		t.Errorf("after one period light is at %v, started at %v", end, start)
	}
}

func TestOrbitKeepsRadiusAndHeight(t *testing.T) {
	o := Orbit{Radius: 5, Height: 1, Speed: 90}
	for _, s := range []float64{0.5, 1, 2.5, 3} {
		p := Position(o.Transform(time.Duration(s * float64(time.Second))))
		r := mgl32.Vec2{p.X(), p.Z()}.Len()
		if mgl32.Abs(r-5) > epsilon {
			t.Errorf("t=%vs: radius %v, want 5", s, r)
		}
		if mgl32.Abs(p.Y()-1) > epsilon {
			t.Errorf("t=%vs: height %v, want 1", s, p.Y())
		}
	}

	// A quarter turn about +Y takes +X to -Z.
	quarter := Position(o.Transform(time.Second))
	if !near(quarter, mgl32.Vec3{0, 1, -5}, epsilon) {
		t.Errorf("quarter turn = %v, want (0, 1, -5)", quarter)
	}
}

func TestStillOrbit(t *testing.T) {
	o := Orbit{Radius: 2}
	if o.Period() != 0 {
		t.Errorf("still orbit period = %v", o.Period())
	}
	if p := Position(o.Transform(time.Hour)); !near(p, mgl32.Vec3{2, 0, 0}, epsilon) {
		t.Errorf("still orbit moved to %v", p)
	}
}

func TestWarm(t *testing.T) {
	l := Warm(mgl32.Vec3{1, 2, 3})
	if l.Position != (mgl32.Vec3{1, 2, 3}) {
		t.Errorf("position = %v", l.Position)
	}
	if l.Ambient != (mgl32.Vec3{0.1, 0.1, 0.1}) || l.Diffuse != l.Specular {
		t.Errorf("unexpected colours %+v", l)
	}
}
