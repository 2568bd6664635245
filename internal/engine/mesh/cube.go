package mesh

import "github.com/Faultbox/opengraphics/internal/engine/gpu"

// Vertex attribute names shared by geometry and shader sources.
const (
	AttrPosition = "aPosition"
	AttrNormal   = "aNormal"
	AttrTexCoord = "aTexCoord"
)

// StandardLayout is position, normal and texture coordinate interleaved
// as 8 floats per vertex.
func StandardLayout() Layout {
	l, err := Interleaved(
		Spec{Name: AttrPosition, Dimension: 3, Type: gpu.Float},
		Spec{Name: AttrNormal, Dimension: 3, Type: gpu.Float},
		Spec{Name: AttrTexCoord, Dimension: 2, Type: gpu.Float},
	)
	if err != nil {
		panic(err)
	}
	return l
}

// Cube returns a unit cube centred on the origin with one quad per face so
// each face carries its own normal and full texture.
func Cube() Geometry {
	vertices := []float32{
		// Front
		-0.5, -0.5, 0.5, 0, 0, 1, 0, 0,
		0.5, -0.5, 0.5, 0, 0, 1, 1, 0,
		0.5, 0.5, 0.5, 0, 0, 1, 1, 1,
		-0.5, 0.5, 0.5, 0, 0, 1, 0, 1,

		// Back
		-0.5, -0.5, -0.5, 0, 0, -1, 1, 0,
		-0.5, 0.5, -0.5, 0, 0, -1, 1, 1,
		0.5, 0.5, -0.5, 0, 0, -1, 0, 1,
		0.5, -0.5, -0.5, 0, 0, -1, 0, 0,

		// Top
		-0.5, 0.5, -0.5, 0, 1, 0, 0, 1,
		-0.5, 0.5, 0.5, 0, 1, 0, 0, 0,
		0.5, 0.5, 0.5, 0, 1, 0, 1, 0,
		0.5, 0.5, -0.5, 0, 1, 0, 1, 1,

		// Bottom
		-0.5, -0.5, -0.5, 0, -1, 0, 0, 0,
		0.5, -0.5, -0.5, 0, -1, 0, 1, 0,
		0.5, -0.5, 0.5, 0, -1, 0, 1, 1,
		-0.5, -0.5, 0.5, 0, -1, 0, 0, 1,

		// Right
		0.5, -0.5, -0.5, 1, 0, 0, 1, 0,
		0.5, 0.5, -0.5, 1, 0, 0, 1, 1,
		0.5, 0.5, 0.5, 1, 0, 0, 0, 1,
		0.5, -0.5, 0.5, 1, 0, 0, 0, 0,

		// Left
		-0.5, -0.5, -0.5, -1, 0, 0, 0, 0,
		-0.5, -0.5, 0.5, -1, 0, 0, 1, 0,
		-0.5, 0.5, 0.5, -1, 0, 0, 1, 1,
		-0.5, 0.5, -0.5, -1, 0, 0, 0, 1,
	}

	indices := make([]uint32, 0, 36)
	for face := uint32(0); face < 6; face++ {
		base := face * 4
		indices = append(indices, base, base+1, base+2, base, base+2, base+3)
	}

	return Geometry{
		Vertices: vertices,
		Indices:  indices,
		Layout:   StandardLayout(),
	}
}
