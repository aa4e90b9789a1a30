// Package opengl implements gpu.Device on top of OpenGL 4.1 core.
package opengl

import (
	"fmt"
	"strings"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/tinyrender/internal/engine/gpu"
	"github.com/Faultbox/tinyrender/internal/logger"
)

// Device issues gpu.Device commands to the current OpenGL context.
type Device struct {
	version  string
	renderer string
}

var _ gpu.Device = (*Device)(nil)

// New loads the OpenGL function pointers and applies the default state.
// IMPORTANT: Must be called AFTER the OpenGL context is made current!
func New() (*Device, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	d := &Device{
		version:  gl.GoStr(gl.GetString(gl.VERSION)),
		renderer: gl.GoStr(gl.GetString(gl.RENDERER)),
	}
	logger.Info("OpenGL initialized",
		zap.String("version", d.version),
		zap.String("renderer", d.renderer),
	)

	gl.DepthFunc(gl.LESS)
	gl.FrontFace(gl.CCW)
	// Tightly packed RGB and single-channel rows
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)

	return d, nil
}

// Renderer returns the GL_RENDERER string of the context.
func (d *Device) Renderer() string {
	return d.renderer
}

func (d *Device) CompileShader(stage gpu.ShaderStage, source string) (gpu.ShaderID, string, bool) {
	shader := gl.CreateShader(shaderType(stage))
	csource, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csource, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		log := infoLog(logLen, func(buf *uint8) {
			gl.GetShaderInfoLog(shader, logLen, nil, buf)
		})
		gl.DeleteShader(shader)
		return 0, log, false
	}
	return gpu.ShaderID(shader), "", true
}

func (d *Device) DeleteShader(id gpu.ShaderID) {
	gl.DeleteShader(uint32(id))
}

func (d *Device) LinkProgram(shaders []gpu.ShaderID) (gpu.ProgramID, string, bool) {
	program := gl.CreateProgram()
	for _, s := range shaders {
		gl.AttachShader(program, uint32(s))
	}
	gl.LinkProgram(program)
	for _, s := range shaders {
		gl.DetachShader(program, uint32(s))
	}

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.TRUE {
		gl.ValidateProgram(program)
		gl.GetProgramiv(program, gl.VALIDATE_STATUS, &status)
	}
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLen)
		log := infoLog(logLen, func(buf *uint8) {
			gl.GetProgramInfoLog(program, logLen, nil, buf)
		})
		gl.DeleteProgram(program)
		return 0, log, false
	}
	return gpu.ProgramID(program), "", true
}

func (d *Device) DeleteProgram(id gpu.ProgramID) {
	gl.DeleteProgram(uint32(id))
}

func (d *Device) UseProgram(id gpu.ProgramID) {
	gl.UseProgram(uint32(id))
}

func (d *Device) UniformLocation(program gpu.ProgramID, name string) gpu.UniformLocation {
	return gpu.UniformLocation(gl.GetUniformLocation(uint32(program), gl.Str(name+"\x00")))
}

func (d *Device) UniformMatrix4(loc gpu.UniformLocation, m *mgl32.Mat4) {
	gl.UniformMatrix4fv(int32(loc), 1, false, &m[0])
}

func (d *Device) Uniform3(loc gpu.UniformLocation, v mgl32.Vec3) {
	gl.Uniform3f(int32(loc), v[0], v[1], v[2])
}

func (d *Device) Uniform1f(loc gpu.UniformLocation, v float32) {
	gl.Uniform1f(int32(loc), v)
}

func (d *Device) Uniform1i(loc gpu.UniformLocation, v int32) {
	gl.Uniform1i(int32(loc), v)
}

func (d *Device) CreateVertexArray() gpu.VertexArrayID {
	var vao uint32
	gl.GenVertexArrays(1, &vao)
	return gpu.VertexArrayID(vao)
}

func (d *Device) BindVertexArray(id gpu.VertexArrayID) {
	gl.BindVertexArray(uint32(id))
}

func (d *Device) DeleteVertexArray(id gpu.VertexArrayID) {
	vao := uint32(id)
	gl.DeleteVertexArrays(1, &vao)
}

func (d *Device) CreateBuffer(target gpu.BufferTarget, data []byte) gpu.BufferID {
	var buf uint32
	gl.GenBuffers(1, &buf)
	t := bufferTarget(target)
	gl.BindBuffer(t, buf)
	var ptr unsafe.Pointer
	if len(data) > 0 {
		ptr = unsafe.Pointer(&data[0])
	}
	gl.BufferData(t, len(data), ptr, gl.STATIC_DRAW)
	return gpu.BufferID(buf)
}

func (d *Device) DeleteBuffer(id gpu.BufferID) {
	buf := uint32(id)
	gl.DeleteBuffers(1, &buf)
}

func (d *Device) VertexAttrib(location uint32, components int32, stride int32, offset uintptr) {
	gl.VertexAttribPointerWithOffset(location, components, gl.FLOAT, false, stride, offset)
	gl.EnableVertexAttribArray(location)
}

func (d *Device) DrawElements(count int32, first int32) {
	gl.DrawElementsWithOffset(gl.TRIANGLES, count, gl.UNSIGNED_INT, uintptr(first)*4)
}

func (d *Device) CreateTexture2D(width, height int32, format gpu.PixelFormat, data []byte, params gpu.TextureParams) gpu.TextureID {
	var tex uint32
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_2D, tex)

	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, wrapMode(params.WrapS))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, wrapMode(params.WrapT))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, filterMode(params.MinFilter))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, filterMode(params.MagFilter))
	if params.WrapS == gpu.WrapClampToBorder || params.WrapT == gpu.WrapClampToBorder {
		border := params.BorderColor
		gl.TexParameterfv(gl.TEXTURE_2D, gl.TEXTURE_BORDER_COLOR, &border[0])
	}
	if params.DepthCompare {
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_COMPARE_MODE, gl.COMPARE_REF_TO_TEXTURE)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_COMPARE_FUNC, gl.LEQUAL)
	}

	internal, pixelFormat, pixelType := textureFormat(format)
	var ptr unsafe.Pointer
	if len(data) > 0 {
		ptr = unsafe.Pointer(&data[0])
	}
	gl.TexImage2D(gl.TEXTURE_2D, 0, internal, width, height, 0, pixelFormat, pixelType, ptr)
	if params.Mipmaps {
		gl.GenerateMipmap(gl.TEXTURE_2D)
	}

	gl.BindTexture(gl.TEXTURE_2D, 0)
	return gpu.TextureID(tex)
}

func (d *Device) BindTexture(unit uint32, id gpu.TextureID) {
	gl.ActiveTexture(gl.TEXTURE0 + unit)
	gl.BindTexture(gl.TEXTURE_2D, uint32(id))
}

func (d *Device) DeleteTexture(id gpu.TextureID) {
	tex := uint32(id)
	gl.DeleteTextures(1, &tex)
}

func (d *Device) CreateFramebuffer() gpu.FramebufferID {
	var fbo uint32
	gl.GenFramebuffers(1, &fbo)
	return gpu.FramebufferID(fbo)
}

func (d *Device) AttachDepthTexture(fb gpu.FramebufferID, tex gpu.TextureID) {
	gl.BindFramebuffer(gl.FRAMEBUFFER, uint32(fb))
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.TEXTURE_2D, uint32(tex), 0)
	// No color buffer for depth-only targets
	gl.DrawBuffer(gl.NONE)
	gl.ReadBuffer(gl.NONE)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
}

func (d *Device) CheckFramebuffer(fb gpu.FramebufferID) gpu.FramebufferStatus {
	var prev int32
	gl.GetIntegerv(gl.FRAMEBUFFER_BINDING, &prev)
	gl.BindFramebuffer(gl.FRAMEBUFFER, uint32(fb))
	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, uint32(prev))
	return gpu.FramebufferStatus(status)
}

func (d *Device) BindFramebuffer(id gpu.FramebufferID) {
	gl.BindFramebuffer(gl.FRAMEBUFFER, uint32(id))
}

func (d *Device) DeleteFramebuffer(id gpu.FramebufferID) {
	fbo := uint32(id)
	gl.DeleteFramebuffers(1, &fbo)
}

func (d *Device) Viewport(x, y, width, height int32) {
	gl.Viewport(x, y, width, height)
}

func (d *Device) ClearColor(r, g, b, a float32) {
	gl.ClearColor(r, g, b, a)
}

func (d *Device) ClearDepth(v float32) {
	gl.ClearDepth(float64(v))
}

func (d *Device) Clear(mask gpu.ClearMask) {
	var bits uint32
	if mask&gpu.ClearColorBuffer != 0 {
		bits |= gl.COLOR_BUFFER_BIT
	}
	if mask&gpu.ClearDepthBuffer != 0 {
		bits |= gl.DEPTH_BUFFER_BIT
	}
	gl.Clear(bits)
}

func (d *Device) Enable(c gpu.Capability) {
	gl.Enable(capability(c))
}

func (d *Device) Disable(c gpu.Capability) {
	gl.Disable(capability(c))
}

func (d *Device) CullFace(f gpu.Face) {
	if f == gpu.FaceFront {
		gl.CullFace(gl.FRONT)
		return
	}
	gl.CullFace(gl.BACK)
}

func (d *Device) ReadPixels(x, y, width, height int32) []byte {
	pixels := make([]byte, int(width)*int(height)*4)
	gl.ReadPixels(x, y, width, height, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	return pixels
}

// infoLog reads a driver info log of logLen bytes, trimming the terminator.
func infoLog(logLen int32, read func(buf *uint8)) string {
	if logLen <= 0 {
		return ""
	}
	buf := make([]byte, logLen)
	read(&buf[0])
	return strings.TrimRight(string(buf), "\x00")
}

func shaderType(s gpu.ShaderStage) uint32 {
	if s == gpu.StageFragment {
		return gl.FRAGMENT_SHADER
	}
	return gl.VERTEX_SHADER
}

func bufferTarget(t gpu.BufferTarget) uint32 {
	if t == gpu.ElementArrayBuffer {
		return gl.ELEMENT_ARRAY_BUFFER
	}
	return gl.ARRAY_BUFFER
}

func capability(c gpu.Capability) uint32 {
	if c == gpu.CullFace {
		return gl.CULL_FACE
	}
	return gl.DEPTH_TEST
}

func wrapMode(w gpu.Wrap) int32 {
	switch w {
	case gpu.WrapClampToEdge:
		return gl.CLAMP_TO_EDGE
	case gpu.WrapClampToBorder:
		return gl.CLAMP_TO_BORDER
	default:
		return gl.REPEAT
	}
}

func filterMode(f gpu.Filter) int32 {
	switch f {
	case gpu.FilterNearest:
		return gl.NEAREST
	case gpu.FilterLinearMipmapLinear:
		return gl.LINEAR_MIPMAP_LINEAR
	default:
		return gl.LINEAR
	}
}

// textureFormat maps a pixel format to internal format, data format and data type.
func textureFormat(f gpu.PixelFormat) (int32, uint32, uint32) {
	switch f {
	case gpu.FormatRed:
		return gl.R8, gl.RED, gl.UNSIGNED_BYTE
	case gpu.FormatRGB:
		return gl.RGB8, gl.RGB, gl.UNSIGNED_BYTE
	case gpu.FormatDepth:
		return gl.DEPTH_COMPONENT24, gl.DEPTH_COMPONENT, gl.FLOAT
	default:
		return gl.RGBA8, gl.RGBA, gl.UNSIGNED_BYTE
	}
}
