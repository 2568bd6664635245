package assets

import (
	"bytes"
	"errors"
	"testing"
	"testing/fstest"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/Faultbox/opengraphics/internal/engine/gpu/gputest"
	"github.com/Faultbox/opengraphics/internal/engine/mesh"
	"github.com/Faultbox/opengraphics/internal/engine/shader/shaders"
)

// glbTriangle encodes a single triangle, optionally with texture
// coordinates, as a binary glTF document.
func glbTriangle(t *testing.T, withUV bool) []byte {
	t.Helper()
	doc := gltf.NewDocument()
	attrs := map[string]int{
		"POSITION": modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}),
		"NORMAL":   modeler.WriteNormal(doc, [][3]float32{{0, 0, 1}, {0, 0, 1}, {0, 0, 1}}),
	}
	if withUV {
		attrs["TEXCOORD_0"] = modeler.WriteTextureCoord(doc, [][2]float32{{0, 0}, {1, 0}, {0, 1}})
	}
	doc.Meshes = []*gltf.Mesh{{
		Name: "triangle",
		Primitives: []*gltf.Primitive{{
			Indices:    gltf.Index(modeler.WriteIndices(doc, []uint16{0, 1, 2})),
			Attributes: attrs,
		}},
	}}

	var buf bytes.Buffer
	enc := gltf.NewEncoder(&buf)
	enc.AsBinary = true
	if err := enc.Encode(doc); err != nil {
		t.Fatalf("encoding glb: %v", err)
	}
	return buf.Bytes()
}

func TestDecodeGeometry(t *testing.T) {
	g, err := DecodeGeometry(bytes.NewReader(glbTriangle(t, true)))
	if err != nil {
		t.Fatalf("DecodeGeometry: %v", err)
	}
	if err := g.Validate(); err != nil {
		t.Fatalf("decoded geometry invalid: %v", err)
	}
	if g.VertexCount() != 3 || len(g.Indices) != 3 {
		t.Fatalf("got %d vertices, %d indices", g.VertexCount(), len(g.Indices))
	}

	// Second vertex: position (1,0,0), normal (0,0,1), uv (1,0).
	want := []float32{1, 0, 0, 0, 0, 1, 1, 0}
	got := g.Vertices[8:16]
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("vertex 1 = %v, want %v", got, want)
		}
	}
}

func TestDecodeGeometryDefaultsMissingAttributes(t *testing.T) {
	g, err := DecodeGeometry(bytes.NewReader(glbTriangle(t, false)))
	if err != nil {
		t.Fatalf("DecodeGeometry: %v", err)
	}
	if uv := g.Vertices[8+6 : 8+8]; uv[0] != 0 || uv[1] != 0 {
		t.Errorf("missing uv decoded as %v", uv)
	}
}

func TestDecodeGeometryErrors(t *testing.T) {
	if _, err := DecodeGeometry(bytes.NewReader([]byte("not gltf"))); err == nil {
		t.Error("expected decode error")
	}

	var buf bytes.Buffer
	enc := gltf.NewEncoder(&buf)
	enc.AsBinary = true
	if err := enc.Encode(gltf.NewDocument()); err != nil {
		t.Fatal(err)
	}
	if _, err := DecodeGeometry(&buf); !errors.Is(err, ErrNoGeometry) {
		t.Errorf("expected ErrNoGeometry, got %v", err)
	}
}

func TestLoadGeometryRegistersAndUploads(t *testing.T) {
	dev := gputest.New()
	files := fstest.MapFS{"models/tri.glb": {Data: glbTriangle(t, true)}}
	c := New(dev, files, shaders.FS)
	defer c.Close()

	if _, err := c.LoadGeometry("tri", "models/tri.glb"); err != nil {
		t.Fatalf("LoadGeometry: %v", err)
	}
	if _, err := c.LoadGeometry("tri", "models/tri.glb"); err != nil {
		t.Fatalf("second LoadGeometry: %v", err)
	}
	if s := c.Stats(); s.FileMisses != 1 {
		t.Errorf("file read %d times, want 1", s.FileMisses)
	}

	program, err := c.Program(shaders.ObjectVertex, shaders.LitFragment)
	if err != nil {
		t.Fatalf("Program: %v", err)
	}
	defer program.Release()
	m, err := c.Mesh("tri", program)
	if err != nil {
		t.Fatalf("Mesh: %v", err)
	}
	if m.IndexCount() != 3 {
		t.Errorf("index count %d, want 3", m.IndexCount())
	}

	if _, err := c.LoadGeometry("missing", "models/none.glb"); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := c.Geometry("missing"); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("expected ErrKeyNotFound, got %v", err)
	}
	if g, err := c.Geometry("tri"); err != nil || g.Layout.Stride() != mesh.StandardLayout().Stride() {
		t.Errorf("Geometry(tri) = %v, %v", g.Layout.Stride(), err)
	}
}
