package gpu

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// GL is the OpenGL 4.1 core implementation of Device.
type GL struct{}

// NewGL loads the OpenGL function pointers and returns the device.
// IMPORTANT: Must be called AFTER the OpenGL context is created!
func NewGL() (*GL, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	return &GL{}, nil
}

// Info returns the driver version and renderer strings.
func (d *GL) Info() (version, renderer string) {
	return gl.GoStr(gl.GetString(gl.VERSION)), gl.GoStr(gl.GetString(gl.RENDERER))
}

func (d *GL) CreateShader(stage Stage, source string) uint32 {
	shaderType := uint32(gl.VERTEX_SHADER)
	if stage == FragmentStage {
		shaderType = gl.FRAGMENT_SHADER
	}
	shader := gl.CreateShader(shaderType)
	csource, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csource, nil)
	free()
	return shader
}

func (d *GL) CompileShader(shader uint32) (bool, string) {
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.TRUE {
		return true, ""
	}

	var logLen int32
	gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
	if logLen == 0 {
		return false, ""
	}
	log := make([]byte, logLen)
	gl.GetShaderInfoLog(shader, logLen, nil, &log[0])
	return false, strings.TrimRight(string(log), "\x00\n")
}

func (d *GL) DeleteShader(shader uint32) {
	gl.DeleteShader(shader)
}

func (d *GL) CreateProgram() uint32 {
	return gl.CreateProgram()
}

func (d *GL) AttachShader(program, shader uint32) {
	gl.AttachShader(program, shader)
}

func (d *GL) DetachShader(program, shader uint32) {
	gl.DetachShader(program, shader)
}

func (d *GL) LinkProgram(program uint32) (bool, string) {
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.TRUE {
		return true, ""
	}

	var logLen int32
	gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLen)
	if logLen == 0 {
		return false, ""
	}
	log := make([]byte, logLen)
	gl.GetProgramInfoLog(program, logLen, nil, &log[0])
	return false, strings.TrimRight(string(log), "\x00\n")
}

func (d *GL) DeleteProgram(program uint32) {
	gl.DeleteProgram(program)
}

func (d *GL) UseProgram(program uint32) {
	gl.UseProgram(program)
}

func (d *GL) ActiveUniforms(program uint32) []string {
	var count, maxLen int32
	gl.GetProgramiv(program, gl.ACTIVE_UNIFORMS, &count)
	gl.GetProgramiv(program, gl.ACTIVE_UNIFORM_MAX_LENGTH, &maxLen)
	if count == 0 || maxLen == 0 {
		return nil
	}

	names := make([]string, 0, count)
	buf := make([]byte, maxLen)
	for i := int32(0); i < count; i++ {
		var length, size int32
		var xtype uint32
		gl.GetActiveUniform(program, uint32(i), maxLen, &length, &size, &xtype, &buf[0])
		// Arrays are reported as "name[0]"; callers address them by base name.
		name := strings.TrimSuffix(string(buf[:length]), "[0]")
		names = append(names, name)
	}
	return names
}

func (d *GL) UniformLocation(program uint32, name string) int32 {
	return gl.GetUniformLocation(program, gl.Str(name+"\x00"))
}

func (d *GL) AttribLocation(program uint32, name string) int32 {
	return gl.GetAttribLocation(program, gl.Str(name+"\x00"))
}

func (d *GL) Uniform1i(location int32, v int32) {
	gl.Uniform1i(location, v)
}

func (d *GL) Uniform1f(location int32, v float32) {
	gl.Uniform1f(location, v)
}

func (d *GL) Uniform3f(location int32, x, y, z float32) {
	gl.Uniform3f(location, x, y, z)
}

func (d *GL) UniformMatrix4(location int32, transpose bool, m *[16]float32) {
	gl.UniformMatrix4fv(location, 1, transpose, &m[0])
}

func (d *GL) CreateVertexArray() uint32 {
	var vao uint32
	gl.GenVertexArrays(1, &vao)
	return vao
}

func (d *GL) BindVertexArray(vao uint32) {
	gl.BindVertexArray(vao)
}

func (d *GL) DeleteVertexArray(vao uint32) {
	gl.DeleteVertexArrays(1, &vao)
}

func (d *GL) CreateBuffer() uint32 {
	var buf uint32
	gl.GenBuffers(1, &buf)
	return buf
}

func (d *GL) BindBuffer(target BufferTarget, buffer uint32) {
	gl.BindBuffer(glTarget(target), buffer)
}

func (d *GL) BufferFloat32(target BufferTarget, data []float32, usage Usage) {
	if len(data) == 0 {
		gl.BufferData(glTarget(target), 0, nil, glUsage(usage))
		return
	}
	gl.BufferData(glTarget(target), len(data)*4, gl.Ptr(data), glUsage(usage))
}

func (d *GL) BufferUint32(target BufferTarget, data []uint32, usage Usage) {
	if len(data) == 0 {
		gl.BufferData(glTarget(target), 0, nil, glUsage(usage))
		return
	}
	gl.BufferData(glTarget(target), len(data)*4, gl.Ptr(data), glUsage(usage))
}

func (d *GL) DeleteBuffer(buffer uint32) {
	gl.DeleteBuffers(1, &buffer)
}

func (d *GL) EnableVertexAttribArray(index uint32) {
	gl.EnableVertexAttribArray(index)
}

func (d *GL) VertexAttribPointer(index uint32, size int32, typ AttribType, normalized bool, stride, offset int32) {
	gl.VertexAttribPointerWithOffset(index, size, glType(typ), normalized, stride, uintptr(offset))
}

func (d *GL) DrawElements(count int32) {
	gl.DrawElements(gl.TRIANGLES, count, gl.UNSIGNED_INT, nil)
}

func (d *GL) CreateTexture(width, height int32, pixels []uint8) uint32 {
	var tex uint32
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_2D, tex)

	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	// Nearest magnification keeps block textures crisp up close.
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)

	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, width, height, 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	gl.GenerateMipmap(gl.TEXTURE_2D)

	gl.BindTexture(gl.TEXTURE_2D, 0)
	return tex
}

func (d *GL) BindTexture(unit uint32, texture uint32) {
	gl.ActiveTexture(gl.TEXTURE0 + unit)
	gl.BindTexture(gl.TEXTURE_2D, texture)
}

func (d *GL) DeleteTexture(texture uint32) {
	gl.DeleteTextures(1, &texture)
}

func (d *GL) Viewport(x, y, width, height int32) {
	gl.Viewport(x, y, width, height)
}

func (d *GL) ClearColor(r, g, b, a float32) {
	gl.ClearColor(r, g, b, a)
}

func (d *GL) Clear() {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

func (d *GL) EnableDepthTest() {
	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
}

func (d *GL) ReadPixels(x, y, width, height int32) []uint8 {
	pixels := make([]uint8, width*height*4)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(x, y, width, height, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	return pixels
}

func glTarget(t BufferTarget) uint32 {
	if t == ElementArrayBuffer {
		return gl.ELEMENT_ARRAY_BUFFER
	}
	return gl.ARRAY_BUFFER
}

func glUsage(u Usage) uint32 {
	if u == DynamicDraw {
		return gl.DYNAMIC_DRAW
	}
	return gl.STATIC_DRAW
}

func glType(t AttribType) uint32 {
	switch t {
	case Int:
		return gl.INT
	case UnsignedInt:
		return gl.UNSIGNED_INT
	case Short:
		return gl.SHORT
	case UnsignedShort:
		return gl.UNSIGNED_SHORT
	case Byte:
		return gl.BYTE
	case UnsignedByte:
		return gl.UNSIGNED_BYTE
	default:
		return gl.FLOAT
	}
}

var _ Device = (*GL)(nil)
