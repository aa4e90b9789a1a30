package framebuffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/tinyrender/internal/engine/gpu"
	"github.com/Faultbox/tinyrender/internal/engine/gpu/gputest"
)

func TestNewDepth_AttachesComparisonTexture(t *testing.T) {
	dev := gputest.New()
	target := NewDepth(dev, 512, 256)

	w, h := target.Size()
	assert.Equal(t, int32(512), w)
	assert.Equal(t, int32(256), h)

	tex, ok := dev.Textures[target.DepthTexture()]
	require.True(t, ok)
	assert.Equal(t, gpu.FormatDepth, tex.Format)
	assert.True(t, tex.Params.DepthCompare)
	assert.Equal(t, gpu.WrapClampToBorder, tex.Params.WrapS)
	assert.Equal(t, [4]float32{1, 1, 1, 1}, tex.Params.BorderColor)
	assert.Equal(t, target.DepthTexture(), dev.Framebuffers[target.FBO()])
}

func TestNewDepth_ClampsSize(t *testing.T) {
	dev := gputest.New()
	w, h := NewDepth(dev, 0, -5).Size()
	assert.Equal(t, int32(1), w)
	assert.Equal(t, int32(1), h)
}

func TestDepthTarget_Check(t *testing.T) {
	dev := gputest.New()
	target := NewDepth(dev, 64, 64)
	require.NoError(t, target.Check(dev))

	dev.FramebufferStatus = 0x8CD6 // incomplete attachment
	err := target.Check(dev)

	var incomplete *FramebufferIncompleteError
	require.ErrorAs(t, err, &incomplete)
	assert.Equal(t, gpu.FramebufferStatus(0x8CD6), incomplete.Status)
	assert.Contains(t, err.Error(), "0x8cd6")
}

func TestDepthTarget_BindSetsViewport(t *testing.T) {
	dev := gputest.New()
	target := NewDepth(dev, 1024, 1024)

	target.Bind(dev)
	assert.Contains(t, dev.Calls, "Viewport(0, 0, 1024, 1024)")
	assert.Contains(t, dev.Calls, "BindFramebuffer(2)")
}

func TestDepthTarget_ReleaseIsIdempotent(t *testing.T) {
	dev := gputest.New()
	target := NewDepth(dev, 16, 16)

	target.Release(dev)
	target.Release(dev)
	assert.Empty(t, dev.Framebuffers)
	assert.Empty(t, dev.Textures)
}

func TestDepthTarget_Unbind(t *testing.T) {
	dev := gputest.New()
	target := NewDepth(dev, 8, 8)
	target.Bind(dev)
	target.Unbind(dev)

	assert.Equal(t, "BindFramebuffer(0)", dev.Calls[len(dev.Calls)-1])
}
