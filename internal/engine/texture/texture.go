package texture

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/tinyrender/internal/engine/gpu"
	"github.com/Faultbox/tinyrender/internal/logger"
)

// UnsupportedFormatError reports a channel count with no matching pixel format.
type UnsupportedFormatError struct {
	Channels int
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported texture format: %d channels", e.Channels)
}

// DefaultParams samples with repeat wrapping and trilinear filtering.
var DefaultParams = gpu.TextureParams{
	MinFilter: gpu.FilterLinearMipmapLinear,
	MagFilter: gpu.FilterLinear,
	WrapS:     gpu.WrapRepeat,
	WrapT:     gpu.WrapRepeat,
	Mipmaps:   true,
}

// Texture is a 2D texture owned exclusively until Release.
type Texture struct {
	id       gpu.TextureID
	width    int
	height   int
	channels int
}

// FormatFor maps a channel count to its pixel format.
func FormatFor(channels int) (gpu.PixelFormat, error) {
	switch channels {
	case 1:
		return gpu.FormatRed, nil
	case 3:
		return gpu.FormatRGB, nil
	case 4:
		return gpu.FormatRGBA, nil
	default:
		return 0, &UnsupportedFormatError{Channels: channels}
	}
}

// New uploads img with DefaultParams. No GPU object is created when the
// channel count is unsupported.
func New(dev gpu.Device, img *Image) (*Texture, error) {
	format, err := FormatFor(img.Channels)
	if err != nil {
		return nil, err
	}
	if want := img.Width * img.Height * img.Channels; img.Width <= 0 || img.Height <= 0 || len(img.Pix) < want {
		return nil, fmt.Errorf("texture %dx%dx%d needs %d bytes, got %d",
			img.Width, img.Height, img.Channels, want, len(img.Pix))
	}

	id := dev.CreateTexture2D(int32(img.Width), int32(img.Height), format, img.Pix, DefaultParams)

	logger.Debug("texture created",
		zap.Int("width", img.Width),
		zap.Int("height", img.Height),
		zap.Int("channels", img.Channels))

	return &Texture{id: id, width: img.Width, height: img.Height, channels: img.Channels}, nil
}

// Bind binds the texture to unit.
func (t *Texture) Bind(dev gpu.Device, unit uint32) {
	dev.BindTexture(unit, t.id)
}

// ID returns the texture handle.
func (t *Texture) ID() gpu.TextureID { return t.id }

// Size returns the texture dimensions.
func (t *Texture) Size() (int, int) { return t.width, t.height }

// Channels returns the channel count.
func (t *Texture) Channels() int { return t.channels }

// Release deletes the texture. It is safe to call more than once.
func (t *Texture) Release(dev gpu.Device) {
	if t.id == 0 {
		return
	}
	dev.DeleteTexture(t.id)
	t.id = 0
}
