// Package framebuffer provides offscreen render targets.
package framebuffer

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/tinyrender/internal/engine/gpu"
	"github.com/Faultbox/tinyrender/internal/logger"
)

// FramebufferIncompleteError reports a target the driver refuses to render to.
type FramebufferIncompleteError struct {
	Status gpu.FramebufferStatus
}

func (e *FramebufferIncompleteError) Error() string {
	return fmt.Sprintf("framebuffer incomplete: 0x%x", uint32(e.Status))
}

// DepthParams samples a depth texture with hardware comparison. Outside the
// texture the border depth of 1 reads as unoccluded.
var DepthParams = gpu.TextureParams{
	MinFilter:    gpu.FilterLinear,
	MagFilter:    gpu.FilterLinear,
	WrapS:        gpu.WrapClampToBorder,
	WrapT:        gpu.WrapClampToBorder,
	BorderColor:  [4]float32{1, 1, 1, 1},
	DepthCompare: true,
}

// DepthTarget is a framebuffer with a single depth texture attachment and
// no color output.
type DepthTarget struct {
	fbo    gpu.FramebufferID
	depth  gpu.TextureID
	width  int32
	height int32
}

// NewDepth allocates a depth-only target. Completeness is not checked here;
// call Check before the first render.
func NewDepth(dev gpu.Device, width, height int32) *DepthTarget {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}

	t := &DepthTarget{width: width, height: height}
	t.depth = dev.CreateTexture2D(width, height, gpu.FormatDepth, nil, DepthParams)
	t.fbo = dev.CreateFramebuffer()
	dev.AttachDepthTexture(t.fbo, t.depth)

	logger.Debug("depth target allocated", zap.Int32("width", width), zap.Int32("height", height))
	return t
}

// Check returns a *FramebufferIncompleteError unless the target is complete.
func (t *DepthTarget) Check(dev gpu.Device) error {
	if status := dev.CheckFramebuffer(t.fbo); status != gpu.FramebufferComplete {
		return &FramebufferIncompleteError{Status: status}
	}
	return nil
}

// Bind makes the target current and sets the viewport to its size.
func (t *DepthTarget) Bind(dev gpu.Device) {
	dev.BindFramebuffer(t.fbo)
	dev.Viewport(0, 0, t.width, t.height)
}

// Unbind restores the default framebuffer. The caller restores its viewport.
func (t *DepthTarget) Unbind(dev gpu.Device) {
	dev.BindFramebuffer(gpu.DefaultFramebuffer)
}

// DepthTexture returns the depth attachment.
func (t *DepthTarget) DepthTexture() gpu.TextureID { return t.depth }

// FBO returns the framebuffer handle.
func (t *DepthTarget) FBO() gpu.FramebufferID { return t.fbo }

// Size returns the target dimensions.
func (t *DepthTarget) Size() (width, height int32) {
	return t.width, t.height
}

// Release deletes the framebuffer and its texture. It is safe to call more than once.
func (t *DepthTarget) Release(dev gpu.Device) {
	if t.fbo != 0 {
		dev.DeleteFramebuffer(t.fbo)
		t.fbo = 0
	}
	if t.depth != 0 {
		dev.DeleteTexture(t.depth)
		t.depth = 0
	}
}
