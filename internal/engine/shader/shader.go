// Package shader compiles GPU programs and uploads their uniforms.
package shader

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/opengraphics/internal/engine/gpu"
	"github.com/Faultbox/opengraphics/internal/logger"
)

// ErrUnknownUniform is returned when a setter names a uniform the linked
// program does not expose. It means the host code and the shader source
// disagree, so callers treat it as a bug rather than retrying.
var ErrUnknownUniform = errors.New("unknown uniform")

// transposeMatrices is the transpose flag for every matrix upload.
// mgl32 matrices are column-major, which is what GLSL expects.
const transposeMatrices = false

// Diagnostic is one compiler or linker message.
type Diagnostic struct {
	Stage string // "vertex", "fragment" or "link"
	Log   string
}

// CompileError collects the diagnostics of a program build.
type CompileError struct {
	Program     string
	Diagnostics []Diagnostic
}

func (e *CompileError) Error() string {
	parts := make([]string, len(e.Diagnostics))
	for i, d := range e.Diagnostics {
		parts[i] = fmt.Sprintf("%s: %s", d.Stage, d.Log)
	}
	return fmt.Sprintf("program %s: %s", e.Program, strings.Join(parts, "; "))
}

// Program is a linked vertex+fragment program with its uniform locations
// resolved once after linking.
type Program struct {
	dev      gpu.Device
	handle   uint32
	name     string
	uniforms map[string]int32
	linked   bool
	disposed bool

	// Set when the program is handed out by a Cache.
	cache *Cache
	key   cacheKey
}

// Create compiles both stages and links them.
//
// Failed stages do not stop the build: diagnostics are logged, linking
// proceeds with whatever compiled, and a usable *Program is always
// returned. A non-nil *CompileError reports what went wrong so the caller
// can decide whether that is fatal.
func Create(dev gpu.Device, vertexSrc, fragmentSrc string) (*Program, error) {
	return build(dev, "anonymous", vertexSrc, fragmentSrc)
}

func build(dev gpu.Device, name, vertexSrc, fragmentSrc string) (*Program, error) {
	log := logger.Named("shader")
	var diags []Diagnostic

	vert, ok, msg := compileShader(dev, gpu.VertexStage, vertexSrc)
	if !ok {
		diags = append(diags, Diagnostic{Stage: gpu.VertexStage.String(), Log: msg})
	}
	frag, ok, msg := compileShader(dev, gpu.FragmentStage, fragmentSrc)
	if !ok {
		diags = append(diags, Diagnostic{Stage: gpu.FragmentStage.String(), Log: msg})
	}

	handle := dev.CreateProgram()
	dev.AttachShader(handle, vert)
	dev.AttachShader(handle, frag)
	linked, linkLog := dev.LinkProgram(handle)
	if !linked {
		diags = append(diags, Diagnostic{Stage: "link", Log: linkLog})
	}

	// Stage objects are no longer needed once the program is linked.
	for _, s := range []uint32{vert, frag} {
		dev.DetachShader(handle, s)
		dev.DeleteShader(s)
	}

	p := &Program{
		dev:      dev,
		handle:   handle,
		name:     name,
		uniforms: make(map[string]int32),
		linked:   linked,
	}
	p.resolveUniforms()

	for _, d := range diags {
		log.Warn("shader build diagnostic",
			zap.String("program", name),
			zap.String("stage", d.Stage),
			zap.String("log", d.Log),
		)
	}
	log.Debug("program created",
		zap.String("program", name),
		zap.Uint32("handle", handle),
		zap.Int("uniforms", len(p.uniforms)),
		zap.Bool("linked", linked),
	)

	if len(diags) > 0 {
		return p, &CompileError{Program: name, Diagnostics: diags}
	}
	return p, nil
}

// compileShader compiles a single stage and reports the compiler log on failure.
func compileShader(dev gpu.Device, stage gpu.Stage, source string) (uint32, bool, string) {
	s := dev.CreateShader(stage, source)
	ok, log := dev.CompileShader(s)
	return s, ok, log
}

// resolveUniforms records the location of every active uniform. It runs
// exactly once, right after linking.
func (p *Program) resolveUniforms() {
	for _, name := range p.dev.ActiveUniforms(p.handle) {
		loc := p.dev.UniformLocation(p.handle, name)
		if loc == gpu.InvalidLocation {
			continue
		}
		p.uniforms[name] = loc
	}
}

// Name returns the label the program was built under.
func (p *Program) Name() string { return p.name }

// Handle returns the device program handle.
func (p *Program) Handle() uint32 { return p.handle }

// Linked reports whether the link step succeeded.
func (p *Program) Linked() bool { return p.linked }

// Disposed reports whether the device program has been deleted.
func (p *Program) Disposed() bool { return p.disposed }

// Uniforms returns the resolved uniform names in sorted order.
func (p *Program) Uniforms() []string {
	names := make([]string, 0, len(p.uniforms))
	for name := range p.uniforms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HasUniform reports whether name was resolved after linking.
func (p *Program) HasUniform(name string) bool {
	_, ok := p.uniforms[name]
	return ok
}

// GetAttributeLocation returns the binding slot of a vertex input, or
// gpu.InvalidLocation if the program has no such active attribute.
func (p *Program) GetAttributeLocation(name string) int32 {
	return p.dev.AttribLocation(p.handle, name)
}

// Use makes the program current.
func (p *Program) Use() {
	p.dev.UseProgram(p.handle)
}

func (p *Program) location(name string) (int32, error) {
	loc, ok := p.uniforms[name]
	if !ok {
		return gpu.InvalidLocation, fmt.Errorf("%w %q in program %s", ErrUnknownUniform, name, p.name)
	}
	return loc, nil
}

// SetInt uploads an int (or sampler unit) uniform.
func (p *Program) SetInt(name string, v int32) error {
	loc, err := p.location(name)
	if err != nil {
		return err
	}
	p.Use()
	p.dev.Uniform1i(loc, v)
	return nil
}

// SetFloat uploads a float uniform.
func (p *Program) SetFloat(name string, v float32) error {
	loc, err := p.location(name)
	if err != nil {
		return err
	}
	p.Use()
	p.dev.Uniform1f(loc, v)
	return nil
}

// SetVec3 uploads a vec3 uniform.
func (p *Program) SetVec3(name string, v mgl32.Vec3) error {
	loc, err := p.location(name)
	if err != nil {
		return err
	}
	p.Use()
	p.dev.Uniform3f(loc, v[0], v[1], v[2])
	return nil
}

// SetMat4 uploads a mat4 uniform.
func (p *Program) SetMat4(name string, m mgl32.Mat4) error {
	loc, err := p.location(name)
	if err != nil {
		return err
	}
	p.Use()
	p.dev.UniformMatrix4(loc, transposeMatrices, (*[16]float32)(&m))
	return nil
}

// Dispose deletes the device program. Further calls are no-ops.
func (p *Program) Dispose() {
	if p.disposed {
		return
	}
	p.disposed = true
	p.dev.DeleteProgram(p.handle)
}

// Release gives up one reference. Programs from a Cache are deleted when
// the last reference goes; standalone programs are disposed directly.
func (p *Program) Release() {
	if p.cache != nil {
		p.cache.release(p)
		return
	}
	p.Dispose()
}
