package assets

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/Faultbox/opengraphics/internal/engine/gpu/gputest"
	"github.com/Faultbox/opengraphics/internal/engine/mesh"
	"github.com/Faultbox/opengraphics/internal/engine/shader/shaders"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("encoding png: %v", err)
	}
	return buf.Bytes()
}

func newCatalog(t *testing.T) (*Catalog, *gputest.Device) {
	t.Helper()
	dev := gputest.New()
	files := fstest.MapFS{
		"textures/stone.png": {Data: pngBytes(t, 4, 4)},
		"textures/gold.png":  {Data: pngBytes(t, 2, 2)},
		"textures/bad.png":   {Data: []byte("garbage")},
	}
	c := New(dev, files, shaders.FS)
	if err := c.AddGeometry("cube", mesh.Cube()); err != nil {
		t.Fatalf("AddGeometry: %v", err)
	}
	return c, dev
}

func TestDefaultMaterials(t *testing.T) {
	m := DefaultMaterials()

	want := []string{"Cobblestone", "GoldBlock", "WoodenPlanks"}
	if got := m.Names(); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("names = %v, want %v", got, want)
	}

	stone, err := m.Get("Cobblestone")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if stone.Shininess != 16 || stone.SpecularColor[0] != 0.5 {
		t.Errorf("Cobblestone = %+v", stone)
	}

	if _, err := m.Get("Obsidian"); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("expected ErrKeyNotFound, got %v", err)
	}
}

func TestLoadMaterialsRejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown field", "materials:\n  A:\n    color: [1, 1, 1]\n    shininess: 2\n"},
		{"short colour", "materials:\n  A:\n    specular_color: [1, 1]\n    shininess: 2\n"},
		{"zero shininess", "materials:\n  A:\n    specular_color: [1, 1, 1]\n    shininess: 0\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadMaterials(strings.NewReader(tt.yaml)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestCacheStats(t *testing.T) {
	c := NewCache[int]()
	c.Set("a", 1)

	c.Get("a")
	c.Get("a")
	c.Get("b")

	hits, misses := c.Stats()
	if hits != 2 || misses != 1 {
		t.Errorf("stats = %d/%d, want 2/1", hits, misses)
	}

	c.Clear()
	if c.Len() != 0 {
		t.Errorf("len after clear = %d", c.Len())
	}
	if hits, misses := c.Stats(); hits != 0 || misses != 0 {
		t.Errorf("stats after clear = %d/%d", hits, misses)
	}
}

func TestLoadTextureSharesByPath(t *testing.T) {
	c, dev := newCatalog(t)

	gold, err := c.LoadTexture("goldBlock", "textures/gold.png")
	if err != nil {
		t.Fatalf("LoadTexture: %v", err)
	}
	again, err := c.LoadTexture("goldSpecular", "textures/gold.png")
	if err != nil {
		t.Fatalf("LoadTexture: %v", err)
	}
	if gold != again {
		t.Error("same path loaded twice")
	}
	if _, _, _, textures := dev.Live(); textures != 1 {
		t.Errorf("%d device textures, want 1", textures)
	}

	got, err := c.Texture("goldSpecular")
	if err != nil || got != gold {
		t.Errorf("Texture(goldSpecular) = %v, %v", got, err)
	}
	if w, h := got.Size(); w != 2 || h != 2 {
		t.Errorf("size %dx%d, want 2x2", w, h)
	}
}

func TestLoadTextureErrors(t *testing.T) {
	c, _ := newCatalog(t)

	if _, err := c.Texture("missing"); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("expected ErrKeyNotFound, got %v", err)
	}
	if _, err := c.LoadTexture("bad", "textures/bad.png"); err == nil {
		t.Error("expected decode error")
	}
	if _, err := c.LoadTexture("none", "textures/none.png"); err == nil {
		t.Error("expected missing file error")
	}
	if _, err := c.LoadTexture("stone", "textures/stone.png"); err != nil {
		t.Fatalf("LoadTexture: %v", err)
	}
	if _, err := c.LoadTexture("stone", "textures/gold.png"); err == nil {
		t.Error("expected error when rebinding a name to another path")
	}
}

func TestMaterialLookup(t *testing.T) {
	c, _ := newCatalog(t)

	if _, err := c.Material("GoldBlock"); err != nil {
		t.Errorf("Material(GoldBlock): %v", err)
	}
	if _, err := c.Material("Dirt"); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("expected ErrKeyNotFound, got %v", err)
	}
}

func TestProgramsAreShared(t *testing.T) {
	c, dev := newCatalog(t)

	a, err := c.Program(shaders.ObjectVertex, shaders.LitFragment)
	if err != nil {
		t.Fatalf("Program: %v", err)
	}
	b, err := c.Program(shaders.ObjectVertex, shaders.LitFragment)
	if err != nil {
		t.Fatalf("Program: %v", err)
	}
	if a != b {
		t.Error("expected one shared program")
	}
	if programs, _, _, _ := dev.Live(); programs != 1 {
		t.Errorf("%d device programs, want 1", programs)
	}
	if refs := c.Programs().Refs(shaders.ObjectVertex, shaders.LitFragment); refs != 2 {
		t.Errorf("refs = %d, want 2", refs)
	}
}

func TestMeshCachedPerProgramAndSubset(t *testing.T) {
	c, _ := newCatalog(t)
	lit, _ := c.Program(shaders.ObjectVertex, shaders.LitFragment)
	light, _ := c.Program(shaders.LightVertex, shaders.LightFragment)

	a, err := c.Mesh("cube", lit)
	if err != nil {
		t.Fatalf("Mesh: %v", err)
	}
	b, _ := c.Mesh("cube", lit)
	if a != b {
		t.Error("expected the lit cube to be shared")
	}

	if _, err := c.Mesh("cube", light); !errors.Is(err, mesh.ErrInvalidAttribute) {
		t.Errorf("full layout on light program: expected ErrInvalidAttribute, got %v", err)
	}
	plain, err := c.Mesh("cube", light, mesh.AttrPosition, mesh.AttrTexCoord)
	if err != nil {
		t.Fatalf("Mesh subset: %v", err)
	}
	if plain == a || plain.Layout().Len() != 2 {
		t.Errorf("subset mesh has %d attributes", plain.Layout().Len())
	}

	if _, err := c.Mesh("sphere", lit); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("expected ErrKeyNotFound, got %v", err)
	}

	s := c.Stats()
	if s.Meshes != 2 || s.MeshHits != 1 {
		t.Errorf("stats = %+v", s)
	}
}

func TestMeshDroppedWithProgram(t *testing.T) {
	c, dev := newCatalog(t)
	p, _ := c.Program(shaders.ObjectVertex, shaders.LitFragment)
	first, err := c.Mesh("cube", p)
	if err != nil {
		t.Fatalf("Mesh: %v", err)
	}

	p.Release()
	if !first.Disposed() {
		t.Error("mesh should be disposed with its program")
	}
	if _, vaos, _, _ := dev.Live(); vaos != 0 {
		t.Errorf("%d live VAOs after program deletion", vaos)
	}
	if s := c.Stats(); s.Meshes != 0 {
		t.Errorf("stats = %+v", s)
	}

	q, _ := c.Program(shaders.ObjectVertex, shaders.LitFragment)
	second, err := c.Mesh("cube", q)
	if err != nil {
		t.Fatalf("Mesh: %v", err)
	}
	if second == first || second.Disposed() {
		t.Error("expected a fresh mesh for the new program")
	}
	if s := c.Stats(); s.Meshes != 1 || s.MeshHits != 0 || s.MeshMisses != 2 {
		t.Errorf("stats = %+v", s)
	}
}

func TestReadFileCaches(t *testing.T) {
	c, _ := newCatalog(t)

	for i := 0; i < 3; i++ {
		if _, err := c.ReadFile("textures/stone.png"); err != nil {
			t.Fatalf("ReadFile: %v", err)
		}
	}
	s := c.Stats()
	if s.Files != 1 || s.FileHits != 2 || s.FileMisses != 1 {
		t.Errorf("stats = %+v", s)
	}
}

func TestCloseDisposesEverything(t *testing.T) {
	c, dev := newCatalog(t)
	p, _ := c.Program(shaders.ObjectVertex, shaders.LitFragment)
	if _, err := c.Mesh("cube", p); err != nil {
		t.Fatalf("Mesh: %v", err)
	}
	if _, err := c.LoadTexture("stone", "textures/stone.png"); err != nil {
		t.Fatalf("LoadTexture: %v", err)
	}

	c.Close()
	c.Close()

	programs, vaos, buffers, textures := dev.Live()
	if programs+vaos+buffers+textures != 0 {
		t.Errorf("live after Close: %d programs, %d vaos, %d buffers, %d textures",
			programs, vaos, buffers, textures)
	}
	if errs := dev.Errors(); len(errs) != 0 {
		t.Errorf("device errors: %v", errs)
	}
}
