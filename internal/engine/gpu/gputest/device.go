// Package gputest provides a recording gpu.Device for tests that run
// without an OpenGL context.
//
// The fake parses GLSL declarations to emulate what a driver reports after
// linking: vertex inputs become attributes and uniforms (including struct
// members) become active uniforms. It does not eliminate unused declarations
// the way a real driver does, so every declared uniform counts as active.
package gputest

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/Faultbox/opengraphics/internal/engine/gpu"
)

// Call is one recorded device call.
type Call struct {
	Name string
	Args []any
}

// AttribPointer is the recorded format of one enabled attribute slot.
type AttribPointer struct {
	Size       int32
	Type       gpu.AttribType
	Normalized bool
	Stride     int32
	Offset     int32
	Buffer     uint32
	Enabled    bool
}

// VertexArray is the recorded state of a vertex array object.
type VertexArray struct {
	Attribs       map[uint32]AttribPointer
	ElementBuffer uint32
}

// DrawCall is a snapshot of the bindings in effect when a draw was issued.
type DrawCall struct {
	Program  uint32
	VAO      uint32
	Count    int32
	Textures map[uint32]uint32
}

// Texture is a recorded texture upload.
type Texture struct {
	Width, Height int32
	Pixels        []uint8
}

type shaderObject struct {
	stage    gpu.Stage
	source   string
	compiled bool
}

type programObject struct {
	shaders  []uint32
	linked   bool
	uniforms map[string]int32
	names    []string
	attribs  map[string]int32
	values   map[int32]any
}

// Device is a gpu.Device that records calls and tracks object state.
type Device struct {
	nextHandle uint32

	shaders  map[uint32]*shaderObject
	programs map[uint32]*programObject
	vaos     map[uint32]*VertexArray
	buffers  map[uint32]any
	textures map[uint32]*Texture

	currentProgram uint32
	boundVAO       uint32
	arrayBuffer    uint32
	units          map[uint32]uint32
	clear          [4]uint8

	calls  []Call
	draws  []DrawCall
	errors []string
}

// New returns an empty fake device.
func New() *Device {
	return &Device{
		shaders:  make(map[uint32]*shaderObject),
		programs: make(map[uint32]*programObject),
		vaos:     make(map[uint32]*VertexArray),
		buffers:  make(map[uint32]any),
		textures: make(map[uint32]*Texture),
		units:    make(map[uint32]uint32),
	}
}

func (d *Device) record(name string, args ...any) {
	d.calls = append(d.calls, Call{Name: name, Args: args})
}

func (d *Device) fail(format string, args ...any) {
	d.errors = append(d.errors, fmt.Sprintf(format, args...))
}

func (d *Device) handle() uint32 {
	d.nextHandle++
	return d.nextHandle
}

// Calls returns every recorded call in order.
func (d *Device) Calls() []Call { return d.calls }

// CallNames returns the names of every recorded call in order.
func (d *Device) CallNames() []string {
	names := make([]string, len(d.calls))
	for i, c := range d.calls {
		names[i] = c.Name
	}
	return names
}

// Count returns how many times the named call was recorded.
func (d *Device) Count(name string) int {
	n := 0
	for _, c := range d.calls {
		if c.Name == name {
			n++
		}
	}
	return n
}

// Draws returns a snapshot per DrawElements call.
func (d *Device) Draws() []DrawCall { return d.draws }

// Errors returns the invalid operations the device detected, in the spirit
// of glGetError.
func (d *Device) Errors() []string { return d.errors }

// ResetCalls clears recorded calls, draws and errors but keeps object state.
func (d *Device) ResetCalls() {
	d.calls = nil
	d.draws = nil
	d.errors = nil
}

// CurrentProgram returns the program in use.
func (d *Device) CurrentProgram() uint32 { return d.currentProgram }

// BoundVertexArray returns the bound vertex array object.
func (d *Device) BoundVertexArray() uint32 { return d.boundVAO }

// VertexArray returns the recorded state of a vertex array object.
func (d *Device) VertexArray(vao uint32) (*VertexArray, bool) {
	v, ok := d.vaos[vao]
	return v, ok
}

// BufferData returns the data uploaded to a buffer ([]float32 or []uint32).
func (d *Device) BufferData(buffer uint32) (any, bool) {
	data, ok := d.buffers[buffer]
	return data, ok
}

// Texture returns a recorded texture.
func (d *Device) Texture(tex uint32) (*Texture, bool) {
	t, ok := d.textures[tex]
	return t, ok
}

// Live returns the number of undeleted programs, vertex arrays, buffers
// and textures.
func (d *Device) Live() (programs, vaos, buffers, textures int) {
	return len(d.programs), len(d.vaos), len(d.buffers), len(d.textures)
}

// Uniform returns the last value uploaded to a uniform of a program.
// Matrices are returned as the shader sees them (transposed if requested).
func (d *Device) Uniform(program uint32, name string) (any, bool) {
	p, ok := d.programs[program]
	if !ok {
		return nil, false
	}
	loc, ok := p.uniforms[name]
	if !ok {
		return nil, false
	}
	v, ok := p.values[loc]
	return v, ok
}

// UniformUploads returns how many uploads targeted the named uniform.
func (d *Device) UniformUploads(program uint32, name string) int {
	p, ok := d.programs[program]
	if !ok {
		return 0
	}
	loc, ok := p.uniforms[name]
	if !ok {
		return 0
	}
	n := 0
	for _, c := range d.calls {
		if !strings.HasPrefix(c.Name, "Uniform") || len(c.Args) < 2 {
			continue
		}
		if c.Args[0] == program && c.Args[1] == loc {
			n++
		}
	}
	return n
}

func (d *Device) CreateShader(stage gpu.Stage, source string) uint32 {
	h := d.handle()
	d.shaders[h] = &shaderObject{stage: stage, source: source}
	d.record("CreateShader", stage, h)
	return h
}

func (d *Device) CompileShader(shader uint32) (bool, string) {
	d.record("CompileShader", shader)
	s, ok := d.shaders[shader]
	if !ok {
		d.fail("CompileShader: unknown shader %d", shader)
		return false, "invalid shader"
	}
	if msg := compileError(s.source); msg != "" {
		return false, msg
	}
	s.compiled = true
	return true, ""
}

func (d *Device) DeleteShader(shader uint32) {
	d.record("DeleteShader", shader)
	delete(d.shaders, shader)
}

func (d *Device) CreateProgram() uint32 {
	h := d.handle()
	d.programs[h] = &programObject{
		uniforms: make(map[string]int32),
		attribs:  make(map[string]int32),
		values:   make(map[int32]any),
	}
	d.record("CreateProgram", h)
	return h
}

func (d *Device) AttachShader(program, shader uint32) {
	d.record("AttachShader", program, shader)
	p, ok := d.programs[program]
	if !ok {
		d.fail("AttachShader: unknown program %d", program)
		return
	}
	p.shaders = append(p.shaders, shader)
}

func (d *Device) DetachShader(program, shader uint32) {
	d.record("DetachShader", program, shader)
	p, ok := d.programs[program]
	if !ok {
		return
	}
	for i, s := range p.shaders {
		if s == shader {
			p.shaders = append(p.shaders[:i], p.shaders[i+1:]...)
			break
		}
	}
}

func (d *Device) LinkProgram(program uint32) (bool, string) {
	d.record("LinkProgram", program)
	p, ok := d.programs[program]
	if !ok {
		d.fail("LinkProgram: unknown program %d", program)
		return false, "invalid program"
	}

	var vertex, fragment *shaderObject
	for _, h := range p.shaders {
		s := d.shaders[h]
		if s == nil || !s.compiled {
			continue
		}
		switch s.stage {
		case gpu.VertexStage:
			vertex = s
		case gpu.FragmentStage:
			fragment = s
		}
	}

	// A failed link still leaves a program object behind; whatever stages
	// compiled contribute their declarations.
	var sources []string
	if vertex != nil {
		sources = append(sources, vertex.source)
		p.attribs = parseAttributes(vertex.source)
	}
	if fragment != nil {
		sources = append(sources, fragment.source)
	}
	p.names = parseUniforms(sources...)
	p.uniforms = make(map[string]int32, len(p.names))
	for i, name := range p.names {
		p.uniforms[name] = int32(i)
	}

	switch {
	case vertex == nil:
		return false, "error: no compiled vertex shader attached"
	case fragment == nil:
		return false, "error: no compiled fragment shader attached"
	}
	p.linked = true
	return true, ""
}

func (d *Device) DeleteProgram(program uint32) {
	d.record("DeleteProgram", program)
	if _, ok := d.programs[program]; !ok {
		d.fail("DeleteProgram: unknown program %d", program)
		return
	}
	delete(d.programs, program)
	if d.currentProgram == program {
		d.currentProgram = 0
	}
}

func (d *Device) UseProgram(program uint32) {
	d.record("UseProgram", program)
	if program != 0 {
		if _, ok := d.programs[program]; !ok {
			d.fail("UseProgram: unknown program %d", program)
		}
	}
	d.currentProgram = program
}

func (d *Device) ActiveUniforms(program uint32) []string {
	d.record("ActiveUniforms", program)
	p, ok := d.programs[program]
	if !ok {
		return nil
	}
	return append([]string(nil), p.names...)
}

func (d *Device) UniformLocation(program uint32, name string) int32 {
	d.record("UniformLocation", program, name)
	p, ok := d.programs[program]
	if !ok {
		return gpu.InvalidLocation
	}
	if loc, ok := p.uniforms[name]; ok {
		return loc
	}
	return gpu.InvalidLocation
}

func (d *Device) AttribLocation(program uint32, name string) int32 {
	d.record("AttribLocation", program, name)
	p, ok := d.programs[program]
	if !ok {
		return gpu.InvalidLocation
	}
	if loc, ok := p.attribs[name]; ok {
		return loc
	}
	return gpu.InvalidLocation
}

func (d *Device) setUniform(call string, location int32, v any) {
	d.record(call, d.currentProgram, location, v)
	p, ok := d.programs[d.currentProgram]
	if !ok {
		d.fail("%s: no program in use", call)
		return
	}
	if location == gpu.InvalidLocation {
		return
	}
	if int(location) >= len(p.names) {
		d.fail("%s: location %d out of range", call, location)
		return
	}
	p.values[location] = v
}

func (d *Device) Uniform1i(location int32, v int32) {
	d.setUniform("Uniform1i", location, v)
}

func (d *Device) Uniform1f(location int32, v float32) {
	d.setUniform("Uniform1f", location, v)
}

func (d *Device) Uniform3f(location int32, x, y, z float32) {
	d.setUniform("Uniform3f", location, [3]float32{x, y, z})
}

func (d *Device) UniformMatrix4(location int32, transpose bool, m *[16]float32) {
	v := *m
	if transpose {
		for r := 0; r < 4; r++ {
			for c := 0; c < 4; c++ {
				v[c*4+r] = m[r*4+c]
			}
		}
	}
	d.setUniform("UniformMatrix4", location, v)
}

func (d *Device) CreateVertexArray() uint32 {
	h := d.handle()
	d.vaos[h] = &VertexArray{Attribs: make(map[uint32]AttribPointer)}
	d.record("CreateVertexArray", h)
	return h
}

func (d *Device) BindVertexArray(vao uint32) {
	d.record("BindVertexArray", vao)
	if vao != 0 {
		if _, ok := d.vaos[vao]; !ok {
			d.fail("BindVertexArray: unknown vertex array %d", vao)
		}
	}
	d.boundVAO = vao
}

func (d *Device) DeleteVertexArray(vao uint32) {
	d.record("DeleteVertexArray", vao)
	if _, ok := d.vaos[vao]; !ok {
		d.fail("DeleteVertexArray: unknown vertex array %d", vao)
		return
	}
	delete(d.vaos, vao)
	if d.boundVAO == vao {
		d.boundVAO = 0
	}
}

func (d *Device) CreateBuffer() uint32 {
	h := d.handle()
	d.buffers[h] = nil
	d.record("CreateBuffer", h)
	return h
}

func (d *Device) BindBuffer(target gpu.BufferTarget, buffer uint32) {
	d.record("BindBuffer", target, buffer)
	if _, ok := d.buffers[buffer]; !ok && buffer != 0 {
		d.fail("BindBuffer: unknown buffer %d", buffer)
	}
	switch target {
	case gpu.ArrayBuffer:
		d.arrayBuffer = buffer
	case gpu.ElementArrayBuffer:
		vao, ok := d.vaos[d.boundVAO]
		if !ok {
			d.fail("BindBuffer: element buffer bound without a vertex array")
			return
		}
		vao.ElementBuffer = buffer
	}
}

func (d *Device) boundBuffer(target gpu.BufferTarget) uint32 {
	if target == gpu.ArrayBuffer {
		return d.arrayBuffer
	}
	if vao, ok := d.vaos[d.boundVAO]; ok {
		return vao.ElementBuffer
	}
	return 0
}

func (d *Device) BufferFloat32(target gpu.BufferTarget, data []float32, usage gpu.Usage) {
	d.record("BufferFloat32", target, len(data), usage)
	buf := d.boundBuffer(target)
	if buf == 0 {
		d.fail("BufferFloat32: no buffer bound")
		return
	}
	d.buffers[buf] = append([]float32(nil), data...)
}

func (d *Device) BufferUint32(target gpu.BufferTarget, data []uint32, usage gpu.Usage) {
	d.record("BufferUint32", target, len(data), usage)
	buf := d.boundBuffer(target)
	if buf == 0 {
		d.fail("BufferUint32: no buffer bound")
		return
	}
	d.buffers[buf] = append([]uint32(nil), data...)
}

func (d *Device) DeleteBuffer(buffer uint32) {
	d.record("DeleteBuffer", buffer)
	if _, ok := d.buffers[buffer]; !ok {
		d.fail("DeleteBuffer: unknown buffer %d", buffer)
		return
	}
	delete(d.buffers, buffer)
}

func (d *Device) EnableVertexAttribArray(index uint32) {
	d.record("EnableVertexAttribArray", index)
	vao, ok := d.vaos[d.boundVAO]
	if !ok {
		d.fail("EnableVertexAttribArray: no vertex array bound")
		return
	}
	a := vao.Attribs[index]
	a.Enabled = true
	vao.Attribs[index] = a
}

func (d *Device) VertexAttribPointer(index uint32, size int32, typ gpu.AttribType, normalized bool, stride, offset int32) {
	d.record("VertexAttribPointer", index, size, typ, normalized, stride, offset)
	vao, ok := d.vaos[d.boundVAO]
	if !ok {
		d.fail("VertexAttribPointer: no vertex array bound")
		return
	}
	if d.arrayBuffer == 0 {
		d.fail("VertexAttribPointer: no array buffer bound")
		return
	}
	a := vao.Attribs[index]
	a.Size, a.Type, a.Normalized, a.Stride, a.Offset = size, typ, normalized, stride, offset
	a.Buffer = d.arrayBuffer
	vao.Attribs[index] = a
}

func (d *Device) DrawElements(count int32) {
	d.record("DrawElements", count)
	if _, ok := d.programs[d.currentProgram]; !ok {
		d.fail("DrawElements: no program in use")
	}
	vao, ok := d.vaos[d.boundVAO]
	if !ok {
		d.fail("DrawElements: no vertex array bound")
	} else if vao.ElementBuffer == 0 {
		d.fail("DrawElements: vertex array %d has no element buffer", d.boundVAO)
	}
	textures := make(map[uint32]uint32, len(d.units))
	for unit, tex := range d.units {
		textures[unit] = tex
	}
	d.draws = append(d.draws, DrawCall{
		Program:  d.currentProgram,
		VAO:      d.boundVAO,
		Count:    count,
		Textures: textures,
	})
}

func (d *Device) CreateTexture(width, height int32, pixels []uint8) uint32 {
	h := d.handle()
	if int(width*height*4) != len(pixels) {
		d.fail("CreateTexture: %dx%d needs %d bytes, got %d", width, height, width*height*4, len(pixels))
	}
	d.textures[h] = &Texture{Width: width, Height: height, Pixels: append([]uint8(nil), pixels...)}
	d.record("CreateTexture", h, width, height)
	return h
}

func (d *Device) BindTexture(unit uint32, texture uint32) {
	d.record("BindTexture", unit, texture)
	if _, ok := d.textures[texture]; !ok && texture != 0 {
		d.fail("BindTexture: unknown texture %d", texture)
	}
	d.units[unit] = texture
}

func (d *Device) DeleteTexture(texture uint32) {
	d.record("DeleteTexture", texture)
	if _, ok := d.textures[texture]; !ok {
		d.fail("DeleteTexture: unknown texture %d", texture)
		return
	}
	delete(d.textures, texture)
}

func (d *Device) Viewport(x, y, width, height int32) {
	d.record("Viewport", x, y, width, height)
}

func (d *Device) ClearColor(r, g, b, a float32) {
	d.record("ClearColor", r, g, b, a)
	for i, c := range [4]float32{r, g, b, a} {
		c = max(0, min(c, 1))
		d.clear[i] = uint8(c*255 + 0.5)
	}
}

func (d *Device) Clear() {
	d.record("Clear")
}

func (d *Device) EnableDepthTest() {
	d.record("EnableDepthTest")
}

// ReadPixels returns a region filled with the last clear colour.
func (d *Device) ReadPixels(x, y, width, height int32) []uint8 {
	d.record("ReadPixels", x, y, width, height)
	if width <= 0 || height <= 0 {
		d.fail("ReadPixels: empty region %dx%d", width, height)
		return nil
	}
	pixels := make([]uint8, width*height*4)
	for i := 0; i < len(pixels); i += 4 {
		copy(pixels[i:i+4], d.clear[:])
	}
	return pixels
}

var (
	reStruct    = regexp.MustCompile(`struct\s+(\w+)\s*\{([^}]*)\}`)
	reMember    = regexp.MustCompile(`(\w+)\s+(\w+)\s*;`)
	reUniform   = regexp.MustCompile(`(?m)^\s*uniform\s+(\w+)\s+(\w+)\s*;`)
	reAttribute = regexp.MustCompile(`(?m)^\s*(?:layout\s*\(\s*location\s*=\s*(\d+)\s*\)\s*)?in\s+\w+\s+(\w+)\s*;`)
	reComment   = regexp.MustCompile(`//[^\n]*`)
)

// compileError emulates the driver rejecting a stage.
func compileError(source string) string {
	src := reComment.ReplaceAllString(source, "")
	if !strings.Contains(src, "#version") {
		return "ERROR: 0:1: '' : #version required and missing."
	}
	if !strings.Contains(src, "void main") {
		return "ERROR: 0:1: 'main' : function not defined"
	}
	if strings.Contains(src, "#error") {
		return "ERROR: 0:1: '#error' : user error"
	}
	return ""
}

func parseAttributes(source string) map[string]int32 {
	src := reComment.ReplaceAllString(source, "")
	attribs := make(map[string]int32)
	next := int32(0)
	for _, m := range reAttribute.FindAllStringSubmatch(src, -1) {
		loc := next
		if m[1] != "" {
			n, _ := strconv.Atoi(m[1])
			loc = int32(n)
		}
		attribs[m[2]] = loc
		next = loc + 1
	}
	return attribs
}

func parseUniforms(sources ...string) []string {
	seen := make(map[string]bool)
	var names []string
	for _, source := range sources {
		src := reComment.ReplaceAllString(source, "")
		structs := make(map[string][]string)
		for _, m := range reStruct.FindAllStringSubmatch(src, -1) {
			for _, member := range reMember.FindAllStringSubmatch(m[2], -1) {
				structs[m[1]] = append(structs[m[1]], member[2])
			}
		}
		for _, m := range reUniform.FindAllStringSubmatch(src, -1) {
			typ, name := m[1], m[2]
			members, isStruct := structs[typ]
			if !isStruct {
				members = []string{""}
			}
			for _, member := range members {
				full := name
				if member != "" {
					full = name + "." + member
				}
				if !seen[full] {
					seen[full] = true
					names = append(names, full)
				}
			}
		}
	}
	sort.Strings(names)
	return names
}

var _ gpu.Device = (*Device)(nil)
