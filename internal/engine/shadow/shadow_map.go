// Package shadow provides real-time shadow mapping for a directional light.
package shadow

import (
	"fmt"

	"github.com/Faultbox/tinyrender/internal/engine/framebuffer"
	"github.com/Faultbox/tinyrender/internal/engine/gpu"
)

// DefaultResolution is the default shadow map resolution.
const DefaultResolution = 1024

// Map is the depth target written by the shadow pass and sampled by the
// lighting pass. Its depth image is fully overwritten every frame.
type Map struct {
	target     *framebuffer.DepthTarget
	Resolution int32

	// CullFrontFaces renders back faces only during the depth pass to
	// reduce shadow acne on closed meshes.
	CullFrontFaces bool

	checked bool
}

// NewMap allocates a square shadow map. A non-positive resolution selects
// DefaultResolution.
func NewMap(dev gpu.Device, resolution int32) *Map {
	if resolution <= 0 {
		resolution = DefaultResolution
	}
	return &Map{
		target:         framebuffer.NewDepth(dev, resolution, resolution),
		Resolution:     resolution,
		CullFrontFaces: true,
	}
}

// Begin binds the map for the depth pass: the viewport covers the map and
// only depth is cleared. Completeness is verified on the first call.
func (sm *Map) Begin(dev gpu.Device) error {
	if !sm.checked {
		if err := sm.target.Check(dev); err != nil {
			return fmt.Errorf("shadow map: %w", err)
		}
		sm.checked = true
	}

	sm.target.Bind(dev)
	dev.Clear(gpu.ClearDepthBuffer)
	dev.Enable(gpu.DepthTest)
	if sm.CullFrontFaces {
		dev.CullFace(gpu.FaceFront)
	}
	return nil
}

// End restores the default framebuffer and back-face culling. The caller
// restores its own viewport.
func (sm *Map) End(dev gpu.Device) {
	sm.target.Unbind(dev)
	if sm.CullFrontFaces {
		dev.CullFace(gpu.FaceBack)
	}
}

// BindTexture binds the depth texture to unit for sampling.
func (sm *Map) BindTexture(dev gpu.Device, unit uint32) {
	dev.BindTexture(unit, sm.target.DepthTexture())
}

// DepthTexture returns the depth texture handle.
func (sm *Map) DepthTexture() gpu.TextureID {
	return sm.target.DepthTexture()
}

// FBO returns the framebuffer handle.
func (sm *Map) FBO() gpu.FramebufferID {
	return sm.target.FBO()
}

// Release deletes the GPU resources of the map.
func (sm *Map) Release(dev gpu.Device) {
	sm.target.Release(dev)
}
