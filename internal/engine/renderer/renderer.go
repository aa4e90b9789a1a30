// Package renderer draws a scene in two passes: a depth pass from the
// directional light into the shadow map, then the lit pass into the
// default framebuffer.
package renderer

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/tinyrender/internal/engine/gpu"
	"github.com/Faultbox/tinyrender/internal/engine/lighting"
	"github.com/Faultbox/tinyrender/internal/engine/mesh"
	"github.com/Faultbox/tinyrender/internal/engine/scene"
	"github.com/Faultbox/tinyrender/internal/engine/shader"
	"github.com/Faultbox/tinyrender/internal/engine/shader/shaders"
	"github.com/Faultbox/tinyrender/internal/engine/shadow"
	"github.com/Faultbox/tinyrender/internal/logger"
)

// Texture units. Every PBR slot has its own unit; the Phong diffuse map
// shares the albedo unit.
const (
	UnitAlbedo uint32 = iota
	UnitNormal
	UnitMetallic
	UnitRoughness
	UnitAO
	UnitShadow
)

// UnitFor returns the texture unit of a PBR slot.
func UnitFor(slot scene.TextureSlot) uint32 {
	return UnitAlbedo + uint32(slot)
}

var (
	// ErrNotSetup is returned by Render before a successful Setup.
	ErrNotSetup = errors.New("renderer not set up")
	// ErrMissingMesh is returned for an entry whose mesh id is not in the
	// scene's resource table.
	ErrMissingMesh = errors.New("entry mesh not loaded")
)

// Config holds renderer configuration.
type Config struct {
	Shading          shader.ShadingModel
	Shadows          bool
	ShadowResolution int32
	ShadowFrustum    shadow.Frustum
	// FitShadowToScene sizes the light frustum to the scene bounds instead
	// of centering ShadowFrustum on the camera target.
	FitShadowToScene bool
	ClearColor       [4]float32
	// ShaderFS holds the GLSL sources. Nil selects the embedded shaders.
	ShaderFS       fs.FS
	MaxPointLights int
}

// DefaultConfig returns a PBR renderer with shadows.
func DefaultConfig() Config {
	return Config{
		Shading:          shader.ShadingPBR,
		Shadows:          true,
		ShadowResolution: shadow.DefaultResolution,
		ShadowFrustum:    shadow.DefaultFrustum(),
		ClearColor:       [4]float32{1, 1, 1, 1},
		MaxPointLights:   lighting.MaxPointLights,
	}
}

// Renderer owns the shader programs and the shadow map. It is not safe for
// concurrent use; every call must come from the thread owning the context.
type Renderer struct {
	dev gpu.Device
	cfg Config

	programs  *shader.Set
	shadowMap *shadow.Map

	shadowU shadowUniforms
	litU    lightingUniforms

	ready bool
}

// New creates a renderer. Nothing is allocated until Setup.
func New(dev gpu.Device, cfg Config) *Renderer {
	if cfg.Shading == "" {
		cfg.Shading = shader.ShadingPBR
	}
	if cfg.MaxPointLights <= 0 {
		cfg.MaxPointLights = lighting.MaxPointLights
	}
	if cfg.ShadowFrustum == (shadow.Frustum{}) {
		cfg.ShadowFrustum = shadow.DefaultFrustum()
	}
	if cfg.ShaderFS == nil {
		cfg.ShaderFS = shaders.FS
	}
	return &Renderer{dev: dev, cfg: cfg}
}

// Setup sets the global pipeline state, builds the shader programs and
// allocates the shadow map. A compile or link failure leaves nothing
// allocated and the renderer unusable.
func (r *Renderer) Setup() error {
	dev := r.dev

	dev.Enable(gpu.DepthTest)
	dev.Enable(gpu.CullFace)
	dev.CullFace(gpu.FaceBack)
	dev.ClearDepth(1)
	c := r.cfg.ClearColor
	dev.ClearColor(c[0], c[1], c[2], c[3])

	defines := map[string]string{"MAX_POINT_LIGHTS": strconv.Itoa(r.cfg.MaxPointLights)}
	programs, err := shader.LoadSet(dev, r.cfg.ShaderFS, r.cfg.Shading, defines)
	if err != nil {
		return fmt.Errorf("renderer setup: %w", err)
	}
	r.programs = programs

	r.shadowU = resolveShadowUniforms(dev, programs.Shadow)
	r.litU = resolveLightingUniforms(dev, programs.Lighting, r.cfg.MaxPointLights)
	r.bindSamplers()

	if r.cfg.Shadows {
		r.shadowMap = shadow.NewMap(dev, r.cfg.ShadowResolution)
	}
	r.ready = true

	logger.Info("renderer ready",
		zap.String("shading", string(r.cfg.Shading)),
		zap.Bool("shadows", r.cfg.Shadows),
		zap.Int32("shadow_resolution", r.cfg.ShadowResolution),
		zap.Int("max_point_lights", r.cfg.MaxPointLights))
	return nil
}

// bindSamplers assigns every sampler uniform its fixed texture unit.
func (r *Renderer) bindSamplers() {
	p := r.programs.Lighting
	p.Use(r.dev)
	u := &r.litU
	for _, slot := range scene.Slots {
		r.dev.Uniform1i(u.maps[slot], int32(UnitFor(slot)))
	}
	r.dev.Uniform1i(u.diffuseMap, int32(UnitAlbedo))
	r.dev.Uniform1i(u.shadowMap, int32(UnitShadow))
}

// Render draws one frame of s into a width × height viewport. The scene is
// only read.
func (r *Renderer) Render(s *scene.Scene, width, height int32) error {
	if !r.ready {
		return ErrNotSetup
	}

	lightSpace := mgl32.Ident4()
	shadowed := false
	if r.shadowMap != nil && s.Directional != nil {
		var err error
		if lightSpace, err = r.shadowPass(s); err != nil {
			return err
		}
		shadowed = true
	}
	return r.lightingPass(s, width, height, lightSpace, shadowed)
}

// LightSpaceMatrix returns the projection × view matrix the shadow pass
// uses for s, and false when s has no directional light.
func (r *Renderer) LightSpaceMatrix(s *scene.Scene) (mgl32.Mat4, bool) {
	if s.Directional == nil {
		return mgl32.Ident4(), false
	}
	target, frustum := s.Camera.Target, r.cfg.ShadowFrustum
	if r.cfg.FitShadowToScene {
		if b, ok := s.Bounds(); ok {
			target, frustum = shadow.FitFrustum(shadow.AABB{Min: b.Min, Max: b.Max})
		}
	}
	return shadow.LightSpaceMatrix(s.Directional.Direction, target, frustum), true
}

func (r *Renderer) shadowPass(s *scene.Scene) (mgl32.Mat4, error) {
	dev := r.dev
	lightSpace, _ := r.LightSpaceMatrix(s)

	if err := r.shadowMap.Begin(dev); err != nil {
		return lightSpace, err
	}
	defer r.shadowMap.End(dev)

	r.programs.Shadow.Use(dev)
	dev.UniformMatrix4(r.shadowU.lightSpace, &lightSpace)
	for i := range s.Entries {
		e := &s.Entries[i]
		m, err := meshOf(s, e)
		if err != nil {
			return lightSpace, err
		}
		dev.UniformMatrix4(r.shadowU.model, &e.Model)
		m.Draw(dev)
	}
	return lightSpace, nil
}

func (r *Renderer) lightingPass(s *scene.Scene, width, height int32, lightSpace mgl32.Mat4, shadowed bool) error {
	dev := r.dev

	dev.BindFramebuffer(gpu.DefaultFramebuffer)
	dev.Viewport(0, 0, width, height)
	dev.Clear(gpu.ClearColorBuffer | gpu.ClearDepthBuffer)

	cam := s.Camera
	cam.SetViewport(width, height)
	view, projection := cam.View(), cam.Projection()

	u := &r.litU
	r.programs.Lighting.Use(dev)
	dev.UniformMatrix4(u.view, &view)
	dev.UniformMatrix4(u.projection, &projection)
	dev.UniformMatrix4(u.lightSpace, &lightSpace)
	dev.Uniform3(u.cameraPos, cam.Eye)
	r.uploadLights(s)

	if shadowed {
		r.shadowMap.BindTexture(dev, UnitShadow)
		dev.Uniform1i(u.shadowEnabled, 1)
	} else {
		dev.Uniform1i(u.shadowEnabled, 0)
	}

	for i := range s.Entries {
		e := &s.Entries[i]
		m, err := meshOf(s, e)
		if err != nil {
			return err
		}
		dev.UniformMatrix4(u.model, &e.Model)

		if r.cfg.Shading == shader.ShadingPhong {
			r.drawPhong(s, e, m)
			continue
		}
		if err := r.drawPBR(s, e, m); err != nil {
			return err
		}
	}
	return nil
}

// uploadLights sets the light uniforms. Each enabled point light goes to
// the array index of its list position; disabled lights are skipped
// without shifting later ones.
func (r *Renderer) uploadLights(s *scene.Scene) {
	dev, u := r.dev, &r.litU

	count, slots := lighting.ActiveSlots(s.PointLights, len(u.pointLights))
	dev.Uniform1i(u.numPointLights, int32(count))
	for _, slot := range slots {
		pl := u.pointLights[slot.Index]
		dev.Uniform3(pl.position, slot.Light.Position)
		dev.Uniform3(pl.color, slot.Light.Color)
	}

	if d := s.Directional; d != nil {
		dev.Uniform3(u.dirDirection, d.Direction)
		dev.Uniform3(u.dirColor, d.Color)
	} else {
		dev.Uniform3(u.dirColor, mgl32.Vec3{})
	}
}

// drawPBR binds the albedo map and every present optional slot, flags
// the absent ones and clears their units, then draws the whole mesh.
func (r *Renderer) drawPBR(s *scene.Scene, e *scene.Entry, m *mesh.Mesh) error {
	dev, u := r.dev, &r.litU

	albedo := textureOf(s, e, scene.SlotAlbedo)
	if albedo == nil {
		return fmt.Errorf("entry %q: %w", e.Name, &scene.MissingTextureError{Slot: scene.SlotAlbedo})
	}
	albedo.Bind(dev, UnitAlbedo)

	for _, slot := range scene.Slots[1:] {
		if tex := textureOf(s, e, slot); tex != nil {
			tex.Bind(dev, UnitFor(slot))
			dev.Uniform1i(u.mapped[slot], 1)
			continue
		}
		dev.BindTexture(UnitFor(slot), 0)
		dev.Uniform1i(u.mapped[slot], 0)
	}

	m.Draw(dev)
	return nil
}

// drawPhong draws each material range with its own material terms.
func (r *Renderer) drawPhong(s *scene.Scene, e *scene.Entry, m *mesh.Mesh) {
	dev, u := r.dev, &r.litU

	for _, rg := range m.Ranges() {
		mat := e.Material(rg.MaterialID)
		dev.Uniform3(u.ambient, mat.Ambient)
		dev.Uniform3(u.diffuse, mat.Diffuse)
		dev.Uniform3(u.specular, mat.Specular)
		dev.Uniform1f(u.shininess, mat.Shininess)

		if tex := s.Resources.Texture(mat.DiffuseMap); mat.HasDiffuseMap && tex != nil {
			tex.Bind(dev, UnitAlbedo)
			dev.Uniform1i(u.diffuseMapped, 1)
		} else {
			dev.Uniform1i(u.diffuseMapped, 0)
		}
		m.DrawRange(dev, rg)
	}
}

// Programs returns the shader programs, or nil before Setup.
func (r *Renderer) Programs() *shader.Set { return r.programs }

// ShadowMap returns the shadow map, or nil when shadows are off.
func (r *Renderer) ShadowMap() *shadow.Map { return r.shadowMap }

// Close releases the programs and the shadow map.
func (r *Renderer) Close() {
	logger.Info("closing renderer")
	if r.shadowMap != nil {
		r.shadowMap.Release(r.dev)
		r.shadowMap = nil
	}
	if r.programs != nil {
		r.programs.Release(r.dev)
		r.programs = nil
	}
	r.ready = false
}

func meshOf(s *scene.Scene, e *scene.Entry) (*mesh.Mesh, error) {
	m := s.Resources.Mesh(e.Mesh)
	if m == nil {
		return nil, fmt.Errorf("entry %q: %w", e.Name, ErrMissingMesh)
	}
	return m, nil
}
