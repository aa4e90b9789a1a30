// Package gputest provides a recording gpu.Device for tests.
package gputest

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/tinyrender/internal/engine/gpu"
)

// Draw is one recorded DrawElements call with the state it was issued under.
type Draw struct {
	Program     gpu.ProgramID
	Framebuffer gpu.FramebufferID
	VertexArray gpu.VertexArrayID
	Culled      gpu.Face
	Count       int32
	First       int32
	Viewport    [4]int32
	// Units holds the texture bound to each unit at draw time.
	Units [TextureUnits]gpu.TextureID
}

// TextureUnits is the number of texture units the fake tracks.
const TextureUnits = 8

// UniformSet is one recorded uniform upload.
type UniformSet struct {
	Program gpu.ProgramID
	Name    string
	Value   any
}

// TextureBind is one recorded BindTexture call.
type TextureBind struct {
	Program gpu.ProgramID
	Unit    uint32
	Texture gpu.TextureID
}

// Texture is the recorded creation state of a texture.
type Texture struct {
	Width, Height int32
	Format        gpu.PixelFormat
	Bytes         int
	Params        gpu.TextureParams
}

// Device records every command it receives. Handles are allocated from a
// single counter so that ids never collide across object kinds.
type Device struct {
	// CompileErrors fails compilation of any source containing the key,
	// reporting the value as the info log.
	CompileErrors map[string]string
	// LinkError, when set, fails every link with this info log.
	LinkError string
	// FramebufferStatus overrides the completeness status of every target.
	FramebufferStatus gpu.FramebufferStatus

	Calls    []string
	Draws    []Draw
	Uniforms []UniformSet
	Binds    []TextureBind
	Clears   []gpu.ClearMask

	// Enabled and Culled track the current pipeline state.
	Enabled map[gpu.Capability]bool
	Culled  gpu.Face

	Shaders      map[gpu.ShaderID]string
	Programs     map[gpu.ProgramID]bool
	Textures     map[gpu.TextureID]Texture
	Buffers      map[gpu.BufferID]int
	VertexArrays map[gpu.VertexArrayID]bool
	Framebuffers map[gpu.FramebufferID]gpu.TextureID
	Attributes   map[gpu.VertexArrayID][]Attribute

	DeletedShaders []gpu.ShaderID

	next        uint32
	program     gpu.ProgramID
	framebuffer gpu.FramebufferID
	vertexArray gpu.VertexArrayID
	viewport    [4]int32
	units       [TextureUnits]gpu.TextureID
	uniformName map[gpu.UniformLocation]string
	locations   map[gpu.ProgramID]map[string]gpu.UniformLocation
}

// Attribute is a recorded VertexAttrib declaration.
type Attribute struct {
	Location   uint32
	Components int32
	Stride     int32
	Offset     uintptr
}

var _ gpu.Device = (*Device)(nil)

// New returns an empty recording device.
func New() *Device {
	return &Device{
		CompileErrors:     map[string]string{},
		FramebufferStatus: gpu.FramebufferComplete,
		Enabled:           map[gpu.Capability]bool{},
		Shaders:           map[gpu.ShaderID]string{},
		Programs:          map[gpu.ProgramID]bool{},
		Textures:          map[gpu.TextureID]Texture{},
		Buffers:           map[gpu.BufferID]int{},
		VertexArrays:      map[gpu.VertexArrayID]bool{},
		Framebuffers:      map[gpu.FramebufferID]gpu.TextureID{},
		Attributes:        map[gpu.VertexArrayID][]Attribute{},
		uniformName:       map[gpu.UniformLocation]string{},
		locations:         map[gpu.ProgramID]map[string]gpu.UniformLocation{},
	}
}

func (d *Device) id() uint32 {
	d.next++
	return d.next
}

func (d *Device) record(format string, args ...any) {
	d.Calls = append(d.Calls, fmt.Sprintf(format, args...))
}

// Reset forgets recorded commands but keeps live objects.
func (d *Device) Reset() {
	d.Calls = nil
	d.Draws = nil
	d.Uniforms = nil
	d.Binds = nil
	d.Clears = nil
}

func (d *Device) CompileShader(stage gpu.ShaderStage, source string) (gpu.ShaderID, string, bool) {
	d.record("CompileShader(%s)", stage)
	for key, log := range d.CompileErrors {
		if strings.Contains(source, key) {
			return 0, log, false
		}
	}
	id := gpu.ShaderID(d.id())
	d.Shaders[id] = source
	return id, "", true
}

func (d *Device) DeleteShader(id gpu.ShaderID) {
	d.record("DeleteShader(%d)", id)
	delete(d.Shaders, id)
	d.DeletedShaders = append(d.DeletedShaders, id)
}

func (d *Device) LinkProgram(shaders []gpu.ShaderID) (gpu.ProgramID, string, bool) {
	d.record("LinkProgram(%v)", shaders)
	if d.LinkError != "" {
		return 0, d.LinkError, false
	}
	id := gpu.ProgramID(d.id())
	d.Programs[id] = true
	return id, "", true
}

func (d *Device) DeleteProgram(id gpu.ProgramID) {
	d.record("DeleteProgram(%d)", id)
	delete(d.Programs, id)
}

func (d *Device) UseProgram(id gpu.ProgramID) {
	d.record("UseProgram(%d)", id)
	d.program = id
}

func (d *Device) UniformLocation(program gpu.ProgramID, name string) gpu.UniformLocation {
	locs, ok := d.locations[program]
	if !ok {
		locs = map[string]gpu.UniformLocation{}
		d.locations[program] = locs
	}
	if loc, ok := locs[name]; ok {
		return loc
	}
	loc := gpu.UniformLocation(d.id())
	locs[name] = loc
	d.uniformName[loc] = name
	return loc
}

func (d *Device) setUniform(loc gpu.UniformLocation, v any) {
	if loc == gpu.InactiveUniform {
		return
	}
	d.Uniforms = append(d.Uniforms, UniformSet{Program: d.program, Name: d.uniformName[loc], Value: v})
}

func (d *Device) UniformMatrix4(loc gpu.UniformLocation, m *mgl32.Mat4) {
	d.setUniform(loc, *m)
}

func (d *Device) Uniform3(loc gpu.UniformLocation, v mgl32.Vec3) {
	d.setUniform(loc, v)
}

func (d *Device) Uniform1f(loc gpu.UniformLocation, v float32) {
	d.setUniform(loc, v)
}

func (d *Device) Uniform1i(loc gpu.UniformLocation, v int32) {
	d.setUniform(loc, v)
}

func (d *Device) CreateVertexArray() gpu.VertexArrayID {
	id := gpu.VertexArrayID(d.id())
	d.record("CreateVertexArray() = %d", id)
	d.VertexArrays[id] = true
	return id
}

func (d *Device) BindVertexArray(id gpu.VertexArrayID) {
	d.vertexArray = id
}

func (d *Device) DeleteVertexArray(id gpu.VertexArrayID) {
	d.record("DeleteVertexArray(%d)", id)
	delete(d.VertexArrays, id)
}

func (d *Device) CreateBuffer(target gpu.BufferTarget, data []byte) gpu.BufferID {
	id := gpu.BufferID(d.id())
	d.record("CreateBuffer(%d, %d bytes) = %d", target, len(data), id)
	d.Buffers[id] = len(data)
	return id
}

func (d *Device) DeleteBuffer(id gpu.BufferID) {
	d.record("DeleteBuffer(%d)", id)
	delete(d.Buffers, id)
}

func (d *Device) VertexAttrib(location uint32, components int32, stride int32, offset uintptr) {
	d.Attributes[d.vertexArray] = append(d.Attributes[d.vertexArray], Attribute{
		Location:   location,
		Components: components,
		Stride:     stride,
		Offset:     offset,
	})
}

func (d *Device) DrawElements(count int32, first int32) {
	d.record("DrawElements(%d, %d)", count, first)
	d.Draws = append(d.Draws, Draw{
		Program:     d.program,
		Framebuffer: d.framebuffer,
		VertexArray: d.vertexArray,
		Culled:      d.Culled,
		Count:       count,
		First:       first,
		Viewport:    d.viewport,
		Units:       d.units,
	})
}

func (d *Device) CreateTexture2D(width, height int32, format gpu.PixelFormat, data []byte, params gpu.TextureParams) gpu.TextureID {
	id := gpu.TextureID(d.id())
	d.record("CreateTexture2D(%dx%d) = %d", width, height, id)
	d.Textures[id] = Texture{Width: width, Height: height, Format: format, Bytes: len(data), Params: params}
	return id
}

func (d *Device) BindTexture(unit uint32, id gpu.TextureID) {
	d.record("BindTexture(%d, %d)", unit, id)
	d.Binds = append(d.Binds, TextureBind{Program: d.program, Unit: unit, Texture: id})
	if unit < TextureUnits {
		d.units[unit] = id
	}
}

func (d *Device) DeleteTexture(id gpu.TextureID) {
	d.record("DeleteTexture(%d)", id)
	delete(d.Textures, id)
}

func (d *Device) CreateFramebuffer() gpu.FramebufferID {
	id := gpu.FramebufferID(d.id())
	d.record("CreateFramebuffer() = %d", id)
	d.Framebuffers[id] = 0
	return id
}

func (d *Device) AttachDepthTexture(fb gpu.FramebufferID, tex gpu.TextureID) {
	d.record("AttachDepthTexture(%d, %d)", fb, tex)
	d.Framebuffers[fb] = tex
}

func (d *Device) CheckFramebuffer(fb gpu.FramebufferID) gpu.FramebufferStatus {
	d.record("CheckFramebuffer(%d)", fb)
	return d.FramebufferStatus
}

func (d *Device) BindFramebuffer(id gpu.FramebufferID) {
	d.record("BindFramebuffer(%d)", id)
	d.framebuffer = id
}

func (d *Device) DeleteFramebuffer(id gpu.FramebufferID) {
	d.record("DeleteFramebuffer(%d)", id)
	delete(d.Framebuffers, id)
}

func (d *Device) Viewport(x, y, width, height int32) {
	d.record("Viewport(%d, %d, %d, %d)", x, y, width, height)
	d.viewport = [4]int32{x, y, width, height}
}

func (d *Device) ClearColor(r, g, b, a float32) {
	d.record("ClearColor(%g, %g, %g, %g)", r, g, b, a)
}

func (d *Device) ClearDepth(v float32) {
	d.record("ClearDepth(%g)", v)
}

func (d *Device) Clear(mask gpu.ClearMask) {
	d.record("Clear(%d) on %d", mask, d.framebuffer)
	d.Clears = append(d.Clears, mask)
}

func (d *Device) Enable(c gpu.Capability) {
	d.record("Enable(%d)", c)
	d.Enabled[c] = true
}

func (d *Device) Disable(c gpu.Capability) {
	d.record("Disable(%d)", c)
	d.Enabled[c] = false
}

func (d *Device) CullFace(f gpu.Face) {
	d.record("CullFace(%d)", f)
	d.Culled = f
}

func (d *Device) ReadPixels(x, y, width, height int32) []byte {
	return make([]byte, int(width)*int(height)*4)
}

// DrawsTo returns the draws issued while fb was bound.
func (d *Device) DrawsTo(fb gpu.FramebufferID) []Draw {
	var out []Draw
	for _, dr := range d.Draws {
		if dr.Framebuffer == fb {
			out = append(out, dr)
		}
	}
	return out
}

// UniformValue returns the last value uploaded for name in program.
func (d *Device) UniformValue(program gpu.ProgramID, name string) (any, bool) {
	for i := len(d.Uniforms) - 1; i >= 0; i-- {
		u := d.Uniforms[i]
		if u.Program == program && u.Name == name {
			return u.Value, true
		}
	}
	return nil, false
}

// UniformNames returns every uniform name uploaded for program, in order.
func (d *Device) UniformNames(program gpu.ProgramID) []string {
	var out []string
	for _, u := range d.Uniforms {
		if u.Program == program {
			out = append(out, u.Name)
		}
	}
	return out
}

// BindsTo returns the texture binds issued for unit.
func (d *Device) BindsTo(unit uint32) []TextureBind {
	var out []TextureBind
	for _, b := range d.Binds {
		if b.Unit == unit {
			out = append(out, b)
		}
	}
	return out
}
