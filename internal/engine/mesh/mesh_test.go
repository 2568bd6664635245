package mesh

import (
	"errors"
	"testing"

	"github.com/Faultbox/opengraphics/internal/engine/gpu"
	"github.com/Faultbox/opengraphics/internal/engine/gpu/gputest"
)

// slots is an AttributeResolver backed by a fixed table.
type slots map[string]int32

func (s slots) GetAttributeLocation(name string) int32 {
	if loc, ok := s[name]; ok {
		return loc
	}
	return gpu.InvalidLocation
}

var litSlots = slots{AttrPosition: 0, AttrNormal: 1, AttrTexCoord: 2}

func TestStandardLayout(t *testing.T) {
	l := StandardLayout()

	if l.Stride() != 32 {
		t.Errorf("stride = %d, want 32", l.Stride())
	}
	want := map[string]int32{AttrPosition: 0, AttrNormal: 12, AttrTexCoord: 24}
	for name, offset := range want {
		a, ok := l.Get(name)
		if !ok {
			t.Fatalf("missing %s", name)
		}
		if a.Offset != offset {
			t.Errorf("%s offset = %d, want %d", name, a.Offset, offset)
		}
	}
	names := l.Names()
	if len(names) != 3 || names[0] != AttrPosition || names[2] != AttrTexCoord {
		t.Errorf("names out of declaration order: %v", names)
	}
}

func TestInterleavedStrideCoversAttributes(t *testing.T) {
	layouts := [][]Spec{
		{{Name: "a", Dimension: 3, Type: gpu.Float}},
		{{Name: "a", Dimension: 3, Type: gpu.Float}, {Name: "b", Dimension: 2, Type: gpu.Float}},
		{{Name: "a", Dimension: 4, Type: gpu.UnsignedByte, Normalized: true}, {Name: "b", Dimension: 1, Type: gpu.Float}},
		{{Name: "a", Dimension: 2, Type: gpu.Short}, {Name: "b", Dimension: 3, Type: gpu.Float}, {Name: "c", Dimension: 4, Type: gpu.Byte}},
	}

	for _, specs := range layouts {
		l, err := Interleaved(specs...)
		if err != nil {
			t.Fatalf("Interleaved(%v): %v", specs, err)
		}
		var sum int32
		for _, a := range l.Attributes() {
			sum += a.Size()
			if a.Offset+a.Size() > l.Stride() {
				t.Errorf("%s ends at %d past stride %d", a.Name, a.Offset+a.Size(), l.Stride())
			}
		}
		if l.Stride() < sum {
			t.Errorf("stride %d smaller than attribute total %d", l.Stride(), sum)
		}
	}
}

func TestNewLayoutRejectsInconsistentPlacement(t *testing.T) {
	tests := []struct {
		name  string
		attrs []Attribute
	}{
		{"empty", nil},
		{"overlap", []Attribute{
			{Name: "a", Dimension: 3, Type: gpu.Float, Stride: 24, Offset: 0},
			{Name: "b", Dimension: 3, Type: gpu.Float, Stride: 24, Offset: 8},
		}},
		{"past stride", []Attribute{
			{Name: "a", Dimension: 3, Type: gpu.Float, Stride: 20, Offset: 12},
		}},
		{"stride mismatch", []Attribute{
			{Name: "a", Dimension: 3, Type: gpu.Float, Stride: 32, Offset: 0},
			{Name: "b", Dimension: 2, Type: gpu.Float, Stride: 20, Offset: 12},
		}},
		{"duplicate", []Attribute{
			{Name: "a", Dimension: 2, Type: gpu.Float, Stride: 16, Offset: 0},
			{Name: "a", Dimension: 2, Type: gpu.Float, Stride: 16, Offset: 8},
		}},
		{"zero dimension", []Attribute{
			{Name: "a", Dimension: 0, Type: gpu.Float, Stride: 12, Offset: 0},
		}},
		{"negative offset", []Attribute{
			{Name: "a", Dimension: 1, Type: gpu.Float, Stride: 12, Offset: -4},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLayout(tt.attrs...)
			if !errors.Is(err, ErrInvalidLayout) {
				t.Errorf("expected ErrInvalidLayout, got %v", err)
			}
		})
	}
}

func TestSelectKeepsPlacement(t *testing.T) {
	sub, err := StandardLayout().Select(AttrPosition, AttrTexCoord)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if sub.Len() != 2 || sub.Stride() != 32 {
		t.Errorf("subset len %d stride %d, want 2 and 32", sub.Len(), sub.Stride())
	}
	if a, _ := sub.Get(AttrTexCoord); a.Offset != 24 {
		t.Errorf("aTexCoord offset = %d, want 24", a.Offset)
	}
	if _, err := StandardLayout().Select("aColor"); !errors.Is(err, ErrInvalidLayout) {
		t.Errorf("expected ErrInvalidLayout for unknown name, got %v", err)
	}
}

func TestGeometryValidate(t *testing.T) {
	cube := Cube()
	if err := cube.Validate(); err != nil {
		t.Fatalf("cube: %v", err)
	}
	if cube.VertexCount() != 24 || len(cube.Indices) != 36 {
		t.Errorf("cube has %d vertices, %d indices", cube.VertexCount(), len(cube.Indices))
	}

	bad := Cube()
	bad.Indices = append([]uint32(nil), bad.Indices...)
	bad.Indices[5] = 24
	if err := bad.Validate(); !errors.Is(err, ErrInvalidLayout) {
		t.Errorf("expected out-of-range index to fail, got %v", err)
	}

	ragged := Cube()
	ragged.Vertices = ragged.Vertices[:len(ragged.Vertices)-1]
	if err := ragged.Validate(); !errors.Is(err, ErrInvalidLayout) {
		t.Errorf("expected partial record to fail, got %v", err)
	}
}

func TestGeometryValidateFloatAlignment(t *testing.T) {
	tests := []struct {
		name           string
		stride, offset int32
		floats         int
		ok             bool
	}{
		{"aligned", 16, 4, 8, true},
		{"stride not a float multiple", 14, 0, 7, false},
		{"offset not a float multiple", 16, 2, 8, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			layout, err := NewLayout(Attribute{
				Name: AttrPosition, Dimension: 3, Type: gpu.Float,
				Stride: tt.stride, Offset: tt.offset,
			})
			if err != nil {
				t.Fatalf("NewLayout: %v", err)
			}
			g := Geometry{
				Layout:   layout,
				Vertices: make([]float32, tt.floats),
				Indices:  []uint32{0, 1, 0},
			}
			err = g.Validate()
			if tt.ok && err != nil {
				t.Errorf("Validate: %v", err)
			}
			if !tt.ok && !errors.Is(err, ErrInvalidLayout) {
				t.Errorf("expected ErrInvalidLayout, got %v", err)
			}
		})
	}
}

func TestGeometryBounds(t *testing.T) {
	lo, hi, ok := Cube().Bounds()
	if !ok {
		t.Fatal("cube has no bounds")
	}
	for k := 0; k < 3; k++ {
		if lo[k] != -0.5 || hi[k] != 0.5 {
			t.Errorf("axis %d spans [%v, %v], want [-0.5, 0.5]", k, lo[k], hi[k])
		}
	}

	if _, _, ok := (Geometry{Layout: StandardLayout()}).Bounds(); ok {
		t.Error("empty geometry reported bounds")
	}
}

func TestCreateWiresVertexArray(t *testing.T) {
	dev := gputest.New()
	cube := Cube()

	m, err := Create(dev, cube, litSlots)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if errs := dev.Errors(); len(errs) != 0 {
		t.Fatalf("device errors: %v", errs)
	}

	vao, ok := dev.VertexArray(m.VertexArray())
	if !ok {
		t.Fatal("vertex array not created")
	}
	for _, a := range cube.Layout.Attributes() {
		loc := uint32(litSlots[a.Name])
		got := vao.Attribs[loc]
		if !got.Enabled {
			t.Errorf("%s slot %d not enabled", a.Name, loc)
		}
		if got.Size != a.Dimension || got.Stride != a.Stride || got.Offset != a.Offset {
			t.Errorf("%s described as %+v, want %+v", a.Name, got, a)
		}
	}

	indices, _ := dev.BufferData(vao.ElementBuffer)
	if got := indices.([]uint32); len(got) != 36 {
		t.Errorf("element buffer holds %d indices, want 36", len(got))
	}
	vertices, _ := dev.BufferData(vao.Attribs[0].Buffer)
	if got := vertices.([]float32); len(got) != len(cube.Vertices) {
		t.Errorf("vertex buffer holds %d floats, want %d", len(got), len(cube.Vertices))
	}

	if dev.BoundVertexArray() != 0 {
		t.Error("vertex array left bound after Create")
	}
}

func TestCreateBindsArrayObjectFirst(t *testing.T) {
	dev := gputest.New()
	if _, err := Create(dev, Cube(), litSlots); err != nil {
		t.Fatalf("Create: %v", err)
	}

	names := dev.CallNames()
	firstBindVAO, firstBuffer := -1, -1
	for i, n := range names {
		if n == "BindVertexArray" && firstBindVAO < 0 {
			firstBindVAO = i
		}
		if n == "BindBuffer" && firstBuffer < 0 {
			firstBuffer = i
		}
	}
	if firstBindVAO < 0 || firstBuffer < 0 || firstBindVAO > firstBuffer {
		t.Errorf("vertex array must be bound before buffers: %v", names)
	}
}

func TestCreateRejectsUnknownAttribute(t *testing.T) {
	dev := gputest.New()
	plain := slots{AttrPosition: 0, AttrTexCoord: 1}

	_, err := Create(dev, Cube(), plain)
	if !errors.Is(err, ErrInvalidAttribute) {
		t.Fatalf("expected ErrInvalidAttribute, got %v", err)
	}
	if _, vaos, buffers, _ := dev.Live(); vaos != 0 || buffers != 0 {
		t.Errorf("failed Create leaked %d vertex arrays, %d buffers", vaos, buffers)
	}

	// The same geometry with the program's attribute subset works.
	cube := Cube()
	cube.Layout, err = cube.Layout.Select(AttrPosition, AttrTexCoord)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if _, err := Create(dev, cube, plain); err != nil {
		t.Fatalf("Create with subset: %v", err)
	}
}

func TestDrawRebindsVertexArray(t *testing.T) {
	dev := gputest.New()
	a, _ := Create(dev, Cube(), litSlots)
	b, _ := Create(dev, Cube(), litSlots)
	program := dev.CreateProgram()
	dev.UseProgram(program)

	dev.BindVertexArray(b.VertexArray())
	dev.ResetCalls()
	a.Draw()

	draws := dev.Draws()
	if len(draws) != 1 {
		t.Fatalf("expected 1 draw, got %d", len(draws))
	}
	if draws[0].VAO != a.VertexArray() {
		t.Errorf("drew with vertex array %d, want %d", draws[0].VAO, a.VertexArray())
	}
	if draws[0].Count != 36 {
		t.Errorf("drew %d indices, want 36", draws[0].Count)
	}
	if errs := dev.Errors(); len(errs) != 0 {
		t.Errorf("device errors: %v", errs)
	}
}

func TestDisposeOnce(t *testing.T) {
	dev := gputest.New()
	m, _ := Create(dev, Cube(), litSlots)

	m.Dispose()
	m.Dispose()

	if _, vaos, buffers, _ := dev.Live(); vaos != 0 || buffers != 0 {
		t.Errorf("left %d vertex arrays, %d buffers", vaos, buffers)
	}
	if errs := dev.Errors(); len(errs) != 0 {
		t.Errorf("device errors: %v", errs)
	}
}
