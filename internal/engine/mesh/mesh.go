package mesh

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/opengraphics/internal/engine/gpu"
	"github.com/Faultbox/opengraphics/internal/logger"
)

// AttributeResolver looks up vertex input slots of a linked program.
type AttributeResolver interface {
	GetAttributeLocation(name string) int32
}

// Geometry is CPU-side vertex and index data with its layout.
type Geometry struct {
	Vertices []float32
	Indices  []uint32
	Layout   Layout
}

// VertexCount returns the number of whole records in Vertices.
func (g Geometry) VertexCount() int {
	stride := int(g.Layout.Stride())
	if stride == 0 {
		return 0
	}
	return len(g.Vertices) * 4 / stride
}

// Validate checks the vertex data against the layout and the indices
// against the vertex count.
func (g Geometry) Validate() error {
	if err := g.Layout.Validate(); err != nil {
		return err
	}
	for _, a := range g.Layout.attrs {
		if a.Type != gpu.Float {
			return fmt.Errorf("%w: %s is %s but vertex data is float32", ErrInvalidLayout, a.Name, a.Type)
		}
		if a.Stride%4 != 0 || a.Offset%4 != 0 {
			return fmt.Errorf("%w: %s stride %d offset %d not aligned to float32",
				ErrInvalidLayout, a.Name, a.Stride, a.Offset)
		}
	}
	if stride := int(g.Layout.Stride()); len(g.Vertices)*4%stride != 0 {
		return fmt.Errorf("%w: %d vertex bytes is not a multiple of stride %d",
			ErrInvalidLayout, len(g.Vertices)*4, stride)
	}
	if len(g.Indices) == 0 {
		return fmt.Errorf("%w: no indices", ErrInvalidLayout)
	}
	if len(g.Indices)%3 != 0 {
		return fmt.Errorf("%w: %d indices do not form a triangle list", ErrInvalidLayout, len(g.Indices))
	}
	n := uint32(g.VertexCount())
	for i, idx := range g.Indices {
		if idx >= n {
			return fmt.Errorf("%w: index %d at %d out of range (%d vertices)", ErrInvalidLayout, idx, i, n)
		}
	}
	return nil
}

// Bounds returns the corners of the box enclosing every vertex position.
// ok is false when the layout has no position attribute or no vertices.
func (g Geometry) Bounds() (lo, hi mgl32.Vec3, ok bool) {
	pos, found := g.Layout.Get(AttrPosition)
	n := g.VertexCount()
	if !found || n == 0 || pos.Dimension < 3 {
		return lo, hi, false
	}
	stride, offset := int(g.Layout.Stride()/4), int(pos.Offset/4)
	for i := 0; i < n; i++ {
		base := i*stride + offset
		p := mgl32.Vec3{g.Vertices[base], g.Vertices[base+1], g.Vertices[base+2]}
		if i == 0 {
			lo, hi = p, p
			continue
		}
		for k := 0; k < 3; k++ {
			lo[k] = min(lo[k], p[k])
			hi[k] = max(hi[k], p[k])
		}
	}
	return lo, hi, true
}

// Mesh owns one vertex buffer, one index buffer and the vertex array object
// that binds them to a program's attribute slots.
type Mesh struct {
	dev        gpu.Device
	vao        uint32
	vbo        uint32
	ebo        uint32
	indexCount int32
	layout     Layout
	disposed   bool
}

// Create uploads the geometry once and describes every layout attribute to
// the vertex array object. Every layout name must resolve to a slot in the
// program; nothing is allocated on the device when one does not.
//
// The vertex array is unbound before returning.
func Create(dev gpu.Device, g Geometry, program AttributeResolver) (*Mesh, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}

	locations := make([]uint32, g.Layout.Len())
	for i, a := range g.Layout.attrs {
		loc := program.GetAttributeLocation(a.Name)
		if loc < 0 {
			return nil, fmt.Errorf("%w: program has no attribute %q", ErrInvalidAttribute, a.Name)
		}
		locations[i] = uint32(loc)
	}

	m := &Mesh{
		dev:        dev,
		indexCount: int32(len(g.Indices)),
		layout:     g.Layout,
	}

	// The array object must be bound before buffers and attribute formats
	// are attached to it.
	m.vao = dev.CreateVertexArray()
	dev.BindVertexArray(m.vao)

	m.vbo = dev.CreateBuffer()
	dev.BindBuffer(gpu.ArrayBuffer, m.vbo)
	dev.BufferFloat32(gpu.ArrayBuffer, g.Vertices, gpu.StaticDraw)

	m.ebo = dev.CreateBuffer()
	dev.BindBuffer(gpu.ElementArrayBuffer, m.ebo)
	dev.BufferUint32(gpu.ElementArrayBuffer, g.Indices, gpu.StaticDraw)

	for i, a := range g.Layout.attrs {
		dev.EnableVertexAttribArray(locations[i])
		dev.VertexAttribPointer(locations[i], a.Dimension, a.Type, a.Normalized, a.Stride, a.Offset)
	}

	dev.BindVertexArray(0)
	dev.BindBuffer(gpu.ArrayBuffer, 0)

	logger.Named("mesh").Debug("mesh uploaded",
		zap.Uint32("vao", m.vao),
		zap.Int("vertices", g.VertexCount()),
		zap.Int32("indices", m.indexCount),
		zap.Strings("attributes", g.Layout.Names()),
	)
	return m, nil
}

// Draw binds the vertex array and draws the full index range as triangles.
func (m *Mesh) Draw() {
	m.dev.BindVertexArray(m.vao)
	m.dev.DrawElements(m.indexCount)
}

// IndexCount returns the number of indices drawn per Draw.
func (m *Mesh) IndexCount() int32 { return m.indexCount }

// VertexArray returns the device vertex array handle.
func (m *Mesh) VertexArray() uint32 { return m.vao }

// Layout returns the layout the mesh was built with.
func (m *Mesh) Layout() Layout { return m.layout }

// Disposed reports whether Dispose has run.
func (m *Mesh) Disposed() bool { return m.disposed }

// Dispose deletes the device objects. Further calls are no-ops.
func (m *Mesh) Dispose() {
	if m.disposed {
		return
	}
	m.disposed = true
	m.dev.DeleteVertexArray(m.vao)
	m.dev.DeleteBuffer(m.vbo)
	m.dev.DeleteBuffer(m.ebo)
}
