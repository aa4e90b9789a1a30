// Package gpu defines the graphics device the engine renders through.
//
// All GPU objects are addressed by typed handles. A handle is only valid
// between the call that created it and the matching Delete call, and every
// call must come from the thread that owns the graphics context.
package gpu

import "github.com/go-gl/mathgl/mgl32"

// ShaderID identifies a compiled shader stage.
type ShaderID uint32

// ProgramID identifies a linked shader program.
type ProgramID uint32

// BufferID identifies a vertex or index buffer.
type BufferID uint32

// VertexArrayID identifies a vertex layout descriptor.
type VertexArrayID uint32

// TextureID identifies a 2D texture.
type TextureID uint32

// FramebufferID identifies a render target.
type FramebufferID uint32

// UniformLocation is a resolved uniform slot. Inactive uniforms resolve to
// InactiveUniform, and setting them is a no-op.
type UniformLocation int32

// InactiveUniform is the location of a uniform the linker optimized away.
const InactiveUniform UniformLocation = -1

// DefaultFramebuffer is the window-system framebuffer.
const DefaultFramebuffer FramebufferID = 0

// ShaderStage selects the pipeline stage a shader is compiled for.
type ShaderStage uint8

const (
	StageVertex ShaderStage = iota
	StageFragment
)

func (s ShaderStage) String() string {
	switch s {
	case StageVertex:
		return "vertex"
	case StageFragment:
		return "fragment"
	default:
		return "unknown"
	}
}

// BufferTarget selects what a buffer stores.
type BufferTarget uint8

const (
	ArrayBuffer BufferTarget = iota
	ElementArrayBuffer
)

// PixelFormat is the layout of texture data.
type PixelFormat uint8

const (
	FormatRed PixelFormat = iota
	FormatRGB
	FormatRGBA
	FormatDepth
)

// Filter is a texture sampling filter.
type Filter uint8

const (
	FilterNearest Filter = iota
	FilterLinear
	FilterLinearMipmapLinear
)

// Wrap is a texture coordinate wrapping mode.
type Wrap uint8

const (
	WrapRepeat Wrap = iota
	WrapClampToEdge
	WrapClampToBorder
)

// TextureParams configures sampling state at creation time.
type TextureParams struct {
	MinFilter   Filter
	MagFilter   Filter
	WrapS       Wrap
	WrapT       Wrap
	BorderColor [4]float32
	// DepthCompare enables reference comparison for shadow samplers.
	DepthCompare bool
	Mipmaps      bool
}

// ClearMask selects which buffers Clear resets.
type ClearMask uint8

const (
	ClearColorBuffer ClearMask = 1 << iota
	ClearDepthBuffer
)

// Capability is a toggleable pipeline state.
type Capability uint8

const (
	DepthTest Capability = iota
	CullFace
)

// Face selects polygon faces for culling.
type Face uint8

const (
	FaceBack Face = iota
	FaceFront
)

// FramebufferStatus is the completeness status reported by the driver.
type FramebufferStatus uint32

// FramebufferComplete is the only status a target can be rendered to with.
const FramebufferComplete FramebufferStatus = 0x8CD5

// Device is the set of GPU commands the engine issues.
type Device interface {
	// CompileShader compiles source for stage. When ok is false the shader
	// has already been deleted and infoLog holds the compiler diagnostics.
	CompileShader(stage ShaderStage, source string) (id ShaderID, infoLog string, ok bool)
	DeleteShader(id ShaderID)
	// LinkProgram links and validates shaders into a program. The stages
	// are detached afterwards; deleting them is up to the caller.
	LinkProgram(shaders []ShaderID) (id ProgramID, infoLog string, ok bool)
	DeleteProgram(id ProgramID)
	UseProgram(id ProgramID)
	UniformLocation(program ProgramID, name string) UniformLocation
	UniformMatrix4(loc UniformLocation, m *mgl32.Mat4)
	Uniform3(loc UniformLocation, v mgl32.Vec3)
	Uniform1f(loc UniformLocation, v float32)
	Uniform1i(loc UniformLocation, v int32)

	CreateVertexArray() VertexArrayID
	BindVertexArray(id VertexArrayID)
	DeleteVertexArray(id VertexArrayID)
	// CreateBuffer allocates immutable-use storage and binds it to target
	// on the currently bound vertex array.
	CreateBuffer(target BufferTarget, data []byte) BufferID
	DeleteBuffer(id BufferID)
	// VertexAttrib declares a float attribute read from the bound array buffer.
	VertexAttrib(location uint32, components int32, stride int32, offset uintptr)
	// DrawElements draws count uint32 indices as triangles, starting at first.
	DrawElements(count int32, first int32)

	CreateTexture2D(width, height int32, format PixelFormat, data []byte, params TextureParams) TextureID
	BindTexture(unit uint32, id TextureID)
	DeleteTexture(id TextureID)

	CreateFramebuffer() FramebufferID
	// AttachDepthTexture makes tex the only attachment of fb and disables
	// color reads and writes for it.
	AttachDepthTexture(fb FramebufferID, tex TextureID)
	CheckFramebuffer(fb FramebufferID) FramebufferStatus
	BindFramebuffer(id FramebufferID)
	DeleteFramebuffer(id FramebufferID)

	Viewport(x, y, width, height int32)
	ClearColor(r, g, b, a float32)
	ClearDepth(d float32)
	Clear(mask ClearMask)
	Enable(c Capability)
	Disable(c Capability)
	CullFace(f Face)
	// ReadPixels returns RGBA bytes of the bound framebuffer, bottom row first.
	ReadPixels(x, y, width, height int32) []byte
}
