// Package assets owns everything the scene loads once and shares: textures,
// materials, compiled programs and uploaded meshes.
package assets

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/opengraphics/internal/engine/gpu"
	"github.com/Faultbox/opengraphics/internal/engine/mesh"
	"github.com/Faultbox/opengraphics/internal/engine/shader"
	"github.com/Faultbox/opengraphics/internal/engine/texture"
	"github.com/Faultbox/opengraphics/internal/logger"
)

// ErrKeyNotFound is returned for names the catalog does not hold.
var ErrKeyNotFound = errors.New("key not found")

// Stats reports cache usage.
type Stats struct {
	Files, Textures, Meshes, Programs int
	FileHits, FileMisses              int
	MeshHits, MeshMisses              int
}

// Catalog is built once at scene load and passed to whatever needs assets.
// It is not safe for concurrent use; like the device it belongs to the
// render thread.
type Catalog struct {
	dev   gpu.Device
	files fs.FS

	programs  *shader.Cache
	materials Materials

	// Raw file contents by path.
	raw *Cache[[]byte]
	// Decoded textures by path, and texture names mapped to paths so two
	// names for one file share a texture.
	byPath *Cache[*texture.Texture]
	names  map[string]string

	geometries map[string]mesh.Geometry
	meshes     *Cache[*mesh.Mesh]
	// Mesh keys by program handle, dropped when the program is deleted.
	programMeshes map[uint32][]string

	closed bool
}

// New creates a catalog reading textures from files and shader stages from
// shaderFS, with the built-in material table.
func New(dev gpu.Device, files, shaderFS fs.FS) *Catalog {
	c := &Catalog{
		dev:           dev,
		files:         files,
		programs:      shader.NewCache(dev, shaderFS),
		materials:     DefaultMaterials(),
		raw:           NewCache[[]byte](),
		byPath:        NewCache[*texture.Texture](),
		names:         make(map[string]string),
		geometries:    make(map[string]mesh.Geometry),
		meshes:        NewCache[*mesh.Mesh](),
		programMeshes: make(map[uint32][]string),
	}
	c.programs.OnDelete = c.dropMeshes
	return c
}

// dropMeshes disposes the meshes wired to a program that is being deleted,
// so a later program reusing its handle never gets them.
func (c *Catalog) dropMeshes(p *shader.Program) {
	keys := c.programMeshes[p.Handle()]
	for _, key := range keys {
		if m, ok := c.meshes.data[key]; ok {
			m.Dispose()
			c.meshes.Delete(key)
		}
	}
	delete(c.programMeshes, p.Handle())
	if len(keys) > 0 {
		logger.Named("assets").Debug("meshes dropped with program",
			zap.String("program", p.Name()),
			zap.Int("meshes", len(keys)),
		)
	}
}

// SetMaterials replaces the material table.
func (c *Catalog) SetMaterials(m Materials) {
	c.materials = m
}

// SetStrictShaders makes Program fail on compile or link diagnostics.
func (c *Catalog) SetStrictShaders(strict bool) {
	c.programs.Strict = strict
}

// ReadFile returns the contents of path, reading it at most once.
func (c *Catalog) ReadFile(path string) ([]byte, error) {
	if data, ok := c.raw.Get(path); ok {
		return data, nil
	}
	data, err := fs.ReadFile(c.files, path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	c.raw.Set(path, data)
	return data, nil
}

// LoadTexture decodes path and registers it under name. Loading the same
// path under a second name shares the device texture.
func (c *Catalog) LoadTexture(name, path string) (*texture.Texture, error) {
	if prev, ok := c.names[name]; ok && prev != path {
		return nil, fmt.Errorf("texture %q already loaded from %s", name, prev)
	}
	if tex, ok := c.byPath.Get(path); ok {
		c.names[name] = path
		return tex, nil
	}

	data, err := c.ReadFile(path)
	if err != nil {
		return nil, err
	}
	img, err := texture.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("texture %s: %w", path, err)
	}
	tex := texture.Upload(c.dev, img)
	c.byPath.Set(path, tex)
	c.names[name] = path

	w, h := tex.Size()
	logger.Named("assets").Debug("texture loaded",
		zap.String("name", name),
		zap.String("path", path),
		zap.Int("width", w),
		zap.Int("height", h),
	)
	return tex, nil
}

// Texture returns a loaded texture by name.
func (c *Catalog) Texture(name string) (*texture.Texture, error) {
	path, ok := c.names[name]
	if !ok {
		return nil, fmt.Errorf("texture %q: %w", name, ErrKeyNotFound)
	}
	tex, _ := c.byPath.Get(path)
	return tex, nil
}

// Material returns a material by name.
func (c *Catalog) Material(name string) (Material, error) {
	return c.materials.Get(name)
}

// Program returns a shared program for the stage pair. The caller owns one
// reference and gives it back with Program.Release.
func (c *Catalog) Program(vertexPath, fragmentPath string) (*shader.Program, error) {
	return c.programs.Acquire(vertexPath, fragmentPath)
}

// Programs exposes the program cache.
func (c *Catalog) Programs() *shader.Cache { return c.programs }

// AddGeometry registers CPU-side geometry under name.
func (c *Catalog) AddGeometry(name string, g mesh.Geometry) error {
	if err := g.Validate(); err != nil {
		return fmt.Errorf("geometry %q: %w", name, err)
	}
	c.geometries[name] = g
	return nil
}

// Geometry returns registered geometry by name.
func (c *Catalog) Geometry(name string) (mesh.Geometry, error) {
	g, ok := c.geometries[name]
	if !ok {
		return mesh.Geometry{}, fmt.Errorf("geometry %q: %w", name, ErrKeyNotFound)
	}
	return g, nil
}

// Mesh returns the uploaded mesh for a geometry wired to program. With
// attribute names given, only that subset of the geometry's layout is
// wired; otherwise the whole layout is. Meshes are shared between callers
// asking for the same geometry, program and subset, and stay owned by the
// catalog.
func (c *Catalog) Mesh(geometry string, program *shader.Program, attributes ...string) (*mesh.Mesh, error) {
	g, ok := c.geometries[geometry]
	if !ok {
		return nil, fmt.Errorf("geometry %q: %w", geometry, ErrKeyNotFound)
	}
	if len(attributes) == 0 {
		attributes = g.Layout.Names()
	}
	key := fmt.Sprintf("%s|%d|%s", geometry, program.Handle(), strings.Join(attributes, ","))
	if m, ok := c.meshes.Get(key); ok {
		return m, nil
	}

	layout, err := g.Layout.Select(attributes...)
	if err != nil {
		return nil, fmt.Errorf("geometry %q: %w", geometry, err)
	}
	g.Layout = layout
	m, err := mesh.Create(c.dev, g, program)
	if err != nil {
		return nil, fmt.Errorf("geometry %q with %s: %w", geometry, program.Name(), err)
	}
	c.meshes.Set(key, m)
	c.programMeshes[program.Handle()] = append(c.programMeshes[program.Handle()], key)
	return m, nil
}

// Stats returns cache counts and hit rates.
func (c *Catalog) Stats() Stats {
	s := Stats{
		Files:    c.raw.Len(),
		Textures: c.byPath.Len(),
		Meshes:   c.meshes.Len(),
		Programs: c.programs.Len(),
	}
	s.FileHits, s.FileMisses = c.raw.Stats()
	s.MeshHits, s.MeshMisses = c.meshes.Stats()
	return s
}

// Close disposes every texture, mesh and program the catalog holds.
func (c *Catalog) Close() {
	if c.closed {
		return
	}
	c.closed = true

	stats := c.Stats()
	for _, key := range c.meshes.Keys() {
		m, _ := c.meshes.Get(key)
		m.Dispose()
	}
	for _, path := range c.byPath.Keys() {
		tex, _ := c.byPath.Get(path)
		tex.Dispose()
	}
	c.programs.Close()

	c.meshes.Clear()
	c.programMeshes = make(map[uint32][]string)
	c.byPath.Clear()
	c.raw.Clear()
	c.names = make(map[string]string)

	logger.Named("assets").Info("catalog closed",
		zap.Int("textures", stats.Textures),
		zap.Int("meshes", stats.Meshes),
		zap.Int("programs", stats.Programs),
	)
}
