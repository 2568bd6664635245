// Package gpu defines the device interface the rendering layer draws through.
//
// All GPU objects live in process-wide device state with a single implicit
// "current" binding for the program, the vertex array and each texture unit.
// Device makes that state explicit: every component receives the Device it
// draws with, and every Draw re-establishes the bindings it needs instead of
// relying on whatever a previous draw left behind.
package gpu

// InvalidLocation is returned for attributes and uniforms the program lacks.
const InvalidLocation int32 = -1

// Stage identifies a shader stage.
type Stage int

const (
	VertexStage Stage = iota
	FragmentStage
)

// String returns the stage name used in diagnostics.
func (s Stage) String() string {
	switch s {
	case VertexStage:
		return "vertex"
	case FragmentStage:
		return "fragment"
	default:
		return "unknown"
	}
}

// BufferTarget selects the binding point of a buffer.
type BufferTarget int

const (
	ArrayBuffer BufferTarget = iota
	ElementArrayBuffer
)

// Usage is the upload frequency hint for buffer data.
type Usage int

const (
	StaticDraw Usage = iota
	DynamicDraw
)

// AttribType is the element type of a vertex attribute component.
type AttribType int

const (
	Float AttribType = iota
	Int
	UnsignedInt
	Short
	UnsignedShort
	Byte
	UnsignedByte
)

// Size returns the size of one component in bytes.
func (t AttribType) Size() int {
	switch t {
	case Float, Int, UnsignedInt:
		return 4
	case Short, UnsignedShort:
		return 2
	case Byte, UnsignedByte:
		return 1
	default:
		return 0
	}
}

// String returns the GLSL-ish name of the type.
func (t AttribType) String() string {
	switch t {
	case Float:
		return "float"
	case Int:
		return "int"
	case UnsignedInt:
		return "uint"
	case Short:
		return "short"
	case UnsignedShort:
		return "ushort"
	case Byte:
		return "byte"
	case UnsignedByte:
		return "ubyte"
	default:
		return "invalid"
	}
}

// Device is the rendering context. Implementations are not safe for
// concurrent use; all calls happen on the thread that owns the context.
type Device interface {
	// Shader stages and programs.
	CreateShader(stage Stage, source string) uint32
	CompileShader(shader uint32) (ok bool, log string)
	DeleteShader(shader uint32)
	CreateProgram() uint32
	AttachShader(program, shader uint32)
	DetachShader(program, shader uint32)
	LinkProgram(program uint32) (ok bool, log string)
	DeleteProgram(program uint32)
	UseProgram(program uint32)

	// ActiveUniforms lists the names of every active uniform of a linked
	// program. Struct members are reported as "struct.member".
	ActiveUniforms(program uint32) []string
	UniformLocation(program uint32, name string) int32
	AttribLocation(program uint32, name string) int32

	// Uniform uploads target the program currently in use.
	Uniform1i(location int32, v int32)
	Uniform1f(location int32, v float32)
	Uniform3f(location int32, x, y, z float32)
	UniformMatrix4(location int32, transpose bool, m *[16]float32)

	// Buffers and vertex array objects.
	CreateVertexArray() uint32
	BindVertexArray(vao uint32)
	DeleteVertexArray(vao uint32)
	CreateBuffer() uint32
	BindBuffer(target BufferTarget, buffer uint32)
	BufferFloat32(target BufferTarget, data []float32, usage Usage)
	BufferUint32(target BufferTarget, data []uint32, usage Usage)
	DeleteBuffer(buffer uint32)
	EnableVertexAttribArray(index uint32)
	VertexAttribPointer(index uint32, size int32, typ AttribType, normalized bool, stride, offset int32)

	// DrawElements draws count indices from the bound element buffer as a
	// triangle list of unsigned 32-bit indices starting at offset 0.
	DrawElements(count int32)

	// Textures. Pixels are tightly packed RGBA8 rows, bottom row first.
	CreateTexture(width, height int32, pixels []uint8) uint32
	BindTexture(unit uint32, texture uint32)
	DeleteTexture(texture uint32)

	// Frame state.
	Viewport(x, y, width, height int32)
	ClearColor(r, g, b, a float32)
	Clear()
	EnableDepthTest()

	// ReadPixels returns the framebuffer region as RGBA8 rows, bottom row
	// first.
	ReadPixels(x, y, width, height int32) []uint8
}
