package renderable

import (
	"errors"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/opengraphics/internal/assets"
	"github.com/Faultbox/opengraphics/internal/engine/lighting"
	"github.com/Faultbox/opengraphics/internal/engine/mesh"
	"github.com/Faultbox/opengraphics/internal/engine/shader"
	"github.com/Faultbox/opengraphics/internal/engine/texture"
)

// LightReceiver is implemented by objects that respond to the scene light.
type LightReceiver interface {
	SetLight(l lighting.Light) error
	SetViewPosition(p mgl32.Vec3) error
}

// Solid is a lit renderable with a specular map and material constants.
type Solid struct {
	*Renderable
	specular *texture.Texture
	material assets.Material
}

// NewSolid creates a lit renderable. The program must declare the material
// and light uniforms.
func NewSolid(m *mesh.Mesh, program *shader.Program, diffuse, specular *texture.Texture,
	material assets.Material, transform mgl32.Mat4) (*Solid, error) {
	if specular == nil {
		return nil, errors.New("solid renderable needs a specular map")
	}
	base, err := New(m, program, diffuse, transform)
	if err != nil {
		return nil, err
	}
	s := &Solid{
		Renderable: base,
		specular:   specular,
		material:   material,
	}
	if err := s.applyMaterial(); err != nil {
		return nil, err
	}
	return s, nil
}

// Kind reports Lit.
func (s *Solid) Kind() Kind { return Lit }

// Material returns the material constants.
func (s *Solid) Material() assets.Material { return s.material }

// SetMaterial replaces the material and uploads it.
func (s *Solid) SetMaterial(m assets.Material) error {
	if s.disposed {
		return ErrDisposed
	}
	s.material = m
	return s.applyMaterial()
}

func (s *Solid) applyMaterial() error {
	p := s.program
	if err := p.SetInt(UniformSpecularMap, int32(SpecularUnit)); err != nil {
		return err
	}
	if err := p.SetVec3(UniformSpecularColor, s.material.SpecularColor); err != nil {
		return err
	}
	return p.SetFloat(UniformShininess, s.material.Shininess)
}

// SetLight uploads the four light terms.
func (s *Solid) SetLight(l lighting.Light) error {
	if s.disposed {
		return ErrDisposed
	}
	p := s.program
	if err := p.SetVec3(UniformLightPosition, l.Position); err != nil {
		return err
	}
	if err := p.SetVec3(UniformLightAmbient, l.Ambient); err != nil {
		return err
	}
	if err := p.SetVec3(UniformLightDiffuse, l.Diffuse); err != nil {
		return err
	}
	return p.SetVec3(UniformLightSpecular, l.Specular)
}

// Draw binds the specular map, restores the material and draws.
func (s *Solid) Draw() error {
	if s.disposed {
		return ErrDisposed
	}
	s.specular.Bind(SpecularUnit)
	if err := s.applyMaterial(); err != nil {
		return err
	}
	return s.Renderable.Draw()
}
