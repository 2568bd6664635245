// Package picking casts rays from the screen into the scene and tests them
// against object bounds.
package picking

import (
	gomath "math"

	"github.com/go-gl/mathgl/mgl32"
)

// Ray is a half-line in world space. Dir is unit length.
type Ray struct {
	Origin mgl32.Vec3
	Dir    mgl32.Vec3
}

// At returns the point t units along the ray.
func (r Ray) At(t float32) mgl32.Vec3 {
	return r.Origin.Add(r.Dir.Mul(t))
}

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// UnitCube bounds the cube mesh in model space.
var UnitCube = AABB{
	Min: mgl32.Vec3{-0.5, -0.5, -0.5},
	Max: mgl32.Vec3{0.5, 0.5, 0.5},
}

// ScreenToRay converts pixel coordinates to a world-space ray. invViewProj
// is the inverse of projection * view.
func ScreenToRay(screenX, screenY, viewportW, viewportH float32, invViewProj mgl32.Mat4) Ray {
	ndcX := 2*screenX/viewportW - 1
	ndcY := 1 - 2*screenY/viewportH // screen y grows downwards

	near := invViewProj.Mul4x1(mgl32.Vec4{ndcX, ndcY, -1, 1})
	far := invViewProj.Mul4x1(mgl32.Vec4{ndcX, ndcY, 1, 1})

	nearWorld := perspectiveDivide(near)
	farWorld := perspectiveDivide(far)

	dir := farWorld.Sub(nearWorld)
	if dir.Len() > 0 {
		dir = dir.Normalize()
	}
	return Ray{Origin: nearWorld, Dir: dir}
}

// CenterRay is the ray through the middle of the viewport.
func CenterRay(view, projection mgl32.Mat4) Ray {
	return ScreenToRay(0.5, 0.5, 1, 1, projection.Mul4(view).Inv())
}

func perspectiveDivide(v mgl32.Vec4) mgl32.Vec3 {
	if v.W() != 0 {
		return v.Vec3().Mul(1 / v.W())
	}
	return v.Vec3()
}

// IntersectPlaneY intersects the ray with the horizontal plane y = planeY.
func (r Ray) IntersectPlaneY(planeY float32) (x, z float32, ok bool) {
	if gomath.Abs(float64(r.Dir.Y())) < 0.001 {
		return 0, 0, false
	}

	t := (planeY - r.Origin.Y()) / r.Dir.Y()
	if t < 0 {
		return 0, 0, false
	}

	p := r.At(t)
	return p.X(), p.Z(), true
}

// IntersectAABB returns the distance to the first hit with box. If the ray
// starts inside the box, it returns the exit distance.
func (r Ray) IntersectAABB(box AABB) (t float32, hit bool) {
	tmin := float32(-gomath.MaxFloat32)
	tmax := float32(gomath.MaxFloat32)

	for axis := 0; axis < 3; axis++ {
		o, d := r.Origin[axis], r.Dir[axis]
		if d == 0 {
			if o < box.Min[axis] || o > box.Max[axis] {
				return 0, false
			}
			continue
		}
		t1 := (box.Min[axis] - o) / d
		t2 := (box.Max[axis] - o) / d
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = max(tmin, t1)
		tmax = min(tmax, t2)
	}

	if tmax < tmin || tmax < 0 {
		return 0, false
	}
	if tmin < 0 {
		return tmax, true
	}
	return tmin, true
}

// NewAABB creates a box from two opposite corners in any order.
func NewAABB(a, b mgl32.Vec3) AABB {
	var box AABB
	for i := 0; i < 3; i++ {
		box.Min[i] = min(a[i], b[i])
		box.Max[i] = max(a[i], b[i])
	}
	return box
}

// Transform returns the world bounds of box under the model matrix m. The
// result encloses all eight transformed corners, so rotated boxes grow.
func (box AABB) Transform(m mgl32.Mat4) AABB {
	first := true
	var out AABB
	for i := 0; i < 8; i++ {
		corner := mgl32.Vec3{box.Min.X(), box.Min.Y(), box.Min.Z()}
		if i&1 != 0 {
			corner[0] = box.Max.X()
		}
		if i&2 != 0 {
			corner[1] = box.Max.Y()
		}
		if i&4 != 0 {
			corner[2] = box.Max.Z()
		}
		p := mgl32.TransformCoordinate(corner, m)
		if first {
			out = AABB{Min: p, Max: p}
			first = false
			continue
		}
		out = out.Extend(p)
	}
	return out
}

// Extend grows the box to contain p.
func (box AABB) Extend(p mgl32.Vec3) AABB {
	for i := 0; i < 3; i++ {
		box.Min[i] = min(box.Min[i], p[i])
		box.Max[i] = max(box.Max[i], p[i])
	}
	return box
}

// Contains reports whether p lies inside or on the box.
func (box AABB) Contains(p mgl32.Vec3) bool {
	for i := 0; i < 3; i++ {
		if p[i] < box.Min[i] || p[i] > box.Max[i] {
			return false
		}
	}
	return true
}
