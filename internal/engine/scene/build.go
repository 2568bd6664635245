package scene

import (
	"fmt"
	"sort"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/opengraphics/internal/engine/mesh"
	"github.com/Faultbox/opengraphics/internal/engine/picking"
	"github.com/Faultbox/opengraphics/internal/engine/renderable"
	"github.com/Faultbox/opengraphics/internal/engine/shader/shaders"
)

// Texture names.
const (
	TexCobblestone         = "cobblestone"
	TexCobblestoneSpecular = "cobblestoneSpecular"
	TexGlowstone           = "glowstone"
	TexOakPlanks           = "oakPlanks"
	TexGoldBlock           = "goldBlock"
)

// Material names.
const (
	MatCobblestone  = "Cobblestone"
	MatGoldBlock    = "GoldBlock"
	MatWoodenPlanks = "WoodenPlanks"
)

// GeometryCube is the catalog name of the unit cube.
const GeometryCube = "cube"

// LightSourceName is the object moved along the light orbit.
const LightSourceName = "rotating_glowstone"

// Room is an enclosure of unit blocks spanning two opposite corners.
//
// Cells on the row and column of Min are walls and reach Max's height;
// every other cell is floor at Min's height. The corner cell at Min is
// left open.
type Room struct {
	Min, Max [3]int
}

// DefaultRoom spans (-2,-1,-2) to (1,1,1).
func DefaultRoom() Room {
	return Room{Min: [3]int{-2, -1, -2}, Max: [3]int{1, 1, 1}}
}

// Cells returns the block positions in build order: x, then z, then y.
func (r Room) Cells() [][3]int {
	var cells [][3]int
	for x := r.Min[0]; x <= r.Max[0]; x++ {
		for z := r.Min[2]; z <= r.Max[2]; z++ {
			if x == r.Min[0] && z == r.Min[2] {
				continue
			}
			top := r.Min[1]
			if x == r.Min[0] || z == r.Min[2] {
				top = r.Max[1]
			}
			for y := r.Min[1]; y <= top; y++ {
				cells = append(cells, [3]int{x, y, z})
			}
		}
	}
	return cells
}

// CellName is the object name of a room block.
func CellName(c [3]int) string {
	return fmt.Sprintf("wooden_planks_%d_%d_%d", c[0], c[1], c[2])
}

func (s *Scene) populate() error {
	if err := s.catalog.AddGeometry(GeometryCube, mesh.Cube()); err != nil {
		return err
	}

	names := make([]string, 0, len(s.config.Textures))
	for name := range s.config.Textures {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if _, err := s.catalog.LoadTexture(name, s.config.Textures[name]); err != nil {
			return err
		}
	}

	if err := s.AddSolid("cobblestone1", TexCobblestone, TexCobblestoneSpecular, MatCobblestone,
		mgl32.Translate3D(0, 0, 0)); err != nil {
		return err
	}
	if err := s.AddSolid("gold_block1", TexGoldBlock, TexGoldBlock, MatGoldBlock,
		mgl32.Translate3D(1, -1, 1)); err != nil {
		return err
	}
	if err := s.AddPlain(LightSourceName, TexGlowstone, mgl32.Translate3D(0, 0, 0)); err != nil {
		return err
	}

	for _, c := range s.config.Room.Cells() {
		t := mgl32.Translate3D(float32(c[0]), float32(c[1]), float32(c[2]))
		if err := s.AddSolid(CellName(c), TexOakPlanks, TexOakPlanks, MatWoodenPlanks, t); err != nil {
			return err
		}
	}

	for _, m := range s.config.Models {
		if err := s.AddModel(m); err != nil {
			return fmt.Errorf("model %s: %w", m.Name, err)
		}
	}
	return nil
}

// AddModel loads the model's geometry, keyed by its path, and adds it as a
// lit object picked by the geometry's bounds.
func (s *Scene) AddModel(m Model) error {
	g, err := s.catalog.LoadGeometry(m.Path, m.Path)
	if err != nil {
		return err
	}
	bounds := picking.UnitCube
	if lo, hi, ok := g.Bounds(); ok {
		bounds = picking.NewAABB(lo, hi)
	}
	specular := m.Specular
	if specular == "" {
		specular = m.Diffuse
	}
	return s.addSolid(m.Name, m.Path, m.Diffuse, specular, m.Material, m.Transform(), bounds)
}

// AddSolid builds a lit cube from catalog names and adds it.
func (s *Scene) AddSolid(name, diffuse, specular, material string, transform mgl32.Mat4) error {
	return s.addSolid(name, GeometryCube, diffuse, specular, material, transform, picking.UnitCube)
}

func (s *Scene) addSolid(name, geometry, diffuse, specular, material string, transform mgl32.Mat4, bounds picking.AABB) error {
	d, err := s.catalog.Texture(diffuse)
	if err != nil {
		return err
	}
	sp, err := s.catalog.Texture(specular)
	if err != nil {
		return err
	}
	mat, err := s.catalog.Material(material)
	if err != nil {
		return err
	}

	program, err := s.catalog.Program(shaders.ObjectVertex, shaders.LitFragment)
	if err != nil {
		return err
	}
	m, err := s.catalog.Mesh(geometry, program)
	if err != nil {
		program.Release()
		return err
	}
	obj, err := renderable.NewSolid(m, program, d, sp, mat, transform)
	if err != nil {
		program.Release()
		return fmt.Errorf("building %s: %w", name, err)
	}
	if err := s.AddBounded(name, obj, bounds); err != nil {
		obj.Dispose()
		return err
	}
	return nil
}

// AddPlain builds an unlit cube from catalog names and adds it.
func (s *Scene) AddPlain(name, diffuse string, transform mgl32.Mat4) error {
	d, err := s.catalog.Texture(diffuse)
	if err != nil {
		return err
	}

	program, err := s.catalog.Program(shaders.LightVertex, shaders.LightFragment)
	if err != nil {
		return err
	}
	m, err := s.catalog.Mesh(GeometryCube, program, mesh.AttrPosition, mesh.AttrTexCoord)
	if err != nil {
		program.Release()
		return err
	}
	obj, err := renderable.New(m, program, d, transform)
	if err != nil {
		program.Release()
		return fmt.Errorf("building %s: %w", name, err)
	}
	if err := s.Add(name, obj); err != nil {
		obj.Dispose()
		return err
	}
	return nil
}
