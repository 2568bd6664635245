// Package renderable binds a mesh, a program and its textures into objects
// the scene can place and draw.
package renderable

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/opengraphics/internal/engine/mesh"
	"github.com/Faultbox/opengraphics/internal/engine/shader"
	"github.com/Faultbox/opengraphics/internal/engine/texture"
)

// Uniform names shared with the GLSL sources.
const (
	UniformTransform  = "transform"
	UniformView       = "view"
	UniformProjection = "projection"
	UniformViewPos    = "viewPos"

	UniformDiffuseMap    = "material.diffuse"
	UniformSpecularMap   = "material.specularMap"
	UniformSpecularColor = "material.specularColor"
	UniformShininess     = "material.shininess"

	UniformLightPosition = "light.position"
	UniformLightAmbient  = "light.ambient"
	UniformLightDiffuse  = "light.diffuse"
	UniformLightSpecular = "light.specular"
)

// Texture units.
const (
	DiffuseUnit  uint32 = 0
	SpecularUnit uint32 = 1
)

// ErrDisposed is returned when drawing or updating a disposed object.
var ErrDisposed = errors.New("renderable disposed")

// Kind tells plain objects from light-responsive ones.
type Kind int

const (
	Plain Kind = iota
	Lit
)

func (k Kind) String() string {
	switch k {
	case Plain:
		return "plain"
	case Lit:
		return "lit"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Object is anything a scene can place, update and draw.
type Object interface {
	Kind() Kind
	Transform() mgl32.Mat4
	SetTransform(m mgl32.Mat4) error
	SetViewMatrix(m mgl32.Mat4) error
	SetProjectionMatrix(m mgl32.Mat4) error
	Draw() error
	Dispose()
}

// Renderable is a textured mesh drawn with one program and a model transform.
//
// Meshes, programs and textures may be shared with other renderables, so
// Draw re-uploads the per-instance uniforms every time instead of relying
// on what the program last held.
type Renderable struct {
	mesh      *mesh.Mesh
	program   *shader.Program
	diffuse   *texture.Texture
	transform mgl32.Mat4
	disposed  bool
}

// New creates a renderable and uploads its initial transform. The
// renderable takes over one reference to program and releases it on
// Dispose; mesh and diffuse stay owned by the caller.
func New(m *mesh.Mesh, program *shader.Program, diffuse *texture.Texture, transform mgl32.Mat4) (*Renderable, error) {
	if m == nil || program == nil || diffuse == nil {
		return nil, errors.New("renderable needs a mesh, a program and a diffuse texture")
	}
	r := &Renderable{
		mesh:    m,
		program: program,
		diffuse: diffuse,
	}
	if err := r.program.SetInt(UniformDiffuseMap, int32(DiffuseUnit)); err != nil {
		return nil, err
	}
	if err := r.SetTransform(transform); err != nil {
		return nil, err
	}
	return r, nil
}

// Kind reports Plain.
func (r *Renderable) Kind() Kind { return Plain }

// Program returns the program the renderable draws with.
func (r *Renderable) Program() *shader.Program { return r.program }

// Mesh returns the mesh the renderable draws.
func (r *Renderable) Mesh() *mesh.Mesh { return r.mesh }

// Transform returns the model matrix.
func (r *Renderable) Transform() mgl32.Mat4 { return r.transform }

// SetTransform stores the model matrix and uploads it at once.
func (r *Renderable) SetTransform(m mgl32.Mat4) error {
	if r.disposed {
		return ErrDisposed
	}
	r.transform = mgl32.Ident4().Mul4(m)
	return r.program.SetMat4(UniformTransform, r.transform)
}

// SetViewMatrix uploads the camera view matrix.
func (r *Renderable) SetViewMatrix(m mgl32.Mat4) error {
	if r.disposed {
		return ErrDisposed
	}
	return r.program.SetMat4(UniformView, m)
}

// SetProjectionMatrix uploads the camera projection matrix.
func (r *Renderable) SetProjectionMatrix(m mgl32.Mat4) error {
	if r.disposed {
		return ErrDisposed
	}
	return r.program.SetMat4(UniformProjection, m)
}

// SetViewPosition uploads the eye position. Only lighting programs declare
// it; others return shader.ErrUnknownUniform.
func (r *Renderable) SetViewPosition(p mgl32.Vec3) error {
	if r.disposed {
		return ErrDisposed
	}
	return r.program.SetVec3(UniformViewPos, p)
}

// Draw binds the diffuse texture and the program, restores the instance
// uniforms and draws the mesh.
func (r *Renderable) Draw() error {
	if r.disposed {
		return ErrDisposed
	}
	r.diffuse.Bind(DiffuseUnit)
	r.program.Use()
	if err := r.program.SetInt(UniformDiffuseMap, int32(DiffuseUnit)); err != nil {
		return err
	}
	if err := r.program.SetMat4(UniformTransform, r.transform); err != nil {
		return err
	}
	r.mesh.Draw()
	return nil
}

// Dispose releases the program reference. Further calls are no-ops.
func (r *Renderable) Dispose() {
	if r.disposed {
		return
	}
	r.disposed = true
	r.program.Release()
}
