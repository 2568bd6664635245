package picking

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

// near compares two vectors with an absolute per-component tolerance.
func near(a, b mgl32.Vec3, tol float32) bool {
	return a.ApproxFuncEqual(b, func(x, y float32) bool { return mgl32.Abs(x-y) <= tol })
}

const epsilon = 1e-4

func TestIntersectAABB(t *testing.T) {
	box := NewAABB(mgl32.Vec3{1, 1, 1}, mgl32.Vec3{-1, -1, -1})

	tests := []struct {
		name  string
		ray   Ray
		hit   bool
		wantT float32
	}{
		{"head on", Ray{mgl32.Vec3{0, 0, 5}, mgl32.Vec3{0, 0, -1}}, true, 4},
		{"miss", Ray{mgl32.Vec3{3, 0, 5}, mgl32.Vec3{0, 0, -1}}, false, 0},
		{"behind", Ray{mgl32.Vec3{0, 0, 5}, mgl32.Vec3{0, 0, 1}}, false, 0},
		{"inside", Ray{mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 0, 0}}, true, 1},
		{"parallel outside", Ray{mgl32.Vec3{0, 2, 5}, mgl32.Vec3{0, 0, -1}}, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, hit := tt.ray.IntersectAABB(box)
			if hit != tt.hit {
				t.Fatalf("hit = %v, want %v", hit, tt.hit)
			}
			if hit && mgl32.Abs(got-tt.wantT) > epsilon {
				t.Errorf("t = %v, want %v", got, tt.wantT)
			}
		})
	}
}

func TestIntersectPlaneY(t *testing.T) {
	r := Ray{Origin: mgl32.Vec3{0, 4, 0}, Dir: mgl32.Vec3{1, -1, 0}.Normalize()}
	x, z, ok := r.IntersectPlaneY(0)
	if !ok || mgl32.Abs(x-4) > epsilon || z != 0 {
		t.Errorf("got (%v, %v, %v), want (4, 0, true)", x, z, ok)
	}

	flat := Ray{Origin: mgl32.Vec3{0, 4, 0}, Dir: mgl32.Vec3{1, 0, 0}}
	if _, _, ok := flat.IntersectPlaneY(0); ok {
		t.Error("parallel ray should not hit")
	}
}

func TestTransformCoversRotatedCorners(t *testing.T) {
	m := mgl32.Translate3D(2, 0, 0).Mul4(mgl32.HomogRotate3DY(mgl32.DegToRad(45)))
	box := UnitCube.Transform(m)

	half := float32(0.5 * 1.41421356)
	if mgl32.Abs(box.Max.X()-(2+half)) > epsilon || mgl32.Abs(box.Min.X()-(2-half)) > epsilon {
		t.Errorf("x range [%v, %v]", box.Min.X(), box.Max.X())
	}
	if mgl32.Abs(box.Max.Y()-0.5) > epsilon {
		t.Errorf("y max %v, want 0.5", box.Max.Y())
	}
	if !box.Contains(mgl32.Vec3{2, 0, 0}) {
		t.Error("box should contain its centre")
	}
}

func TestCenterRayFollowsCamera(t *testing.T) {
	eye := mgl32.Vec3{0, 0, 3}
	view := mgl32.LookAtV(eye, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
	proj := mgl32.Perspective(mgl32.DegToRad(45), 16.0/9.0, 0.1, 100)

	r := CenterRay(view, proj)
	if !near(r.Dir, mgl32.Vec3{0, 0, -1}, epsilon) {
		t.Errorf("dir = %v, want (0, 0, -1)", r.Dir)
	}
	if mgl32.Abs(r.Origin.Z()-(3-0.1)) > 1e-3 {
		t.Errorf("origin %v should sit on the near plane", r.Origin)
	}

	tHit, hit := r.IntersectAABB(UnitCube)
	if !hit || mgl32.Abs(tHit-2.4) > 1e-3 {
		t.Errorf("hit %v at %v, want front face at 2.4", hit, tHit)
	}
}
