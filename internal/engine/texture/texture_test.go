package texture

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/tinyrender/internal/engine/gpu"
	"github.com/Faultbox/tinyrender/internal/engine/gpu/gputest"
)

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestFormatFor(t *testing.T) {
	tests := []struct {
		channels int
		want     gpu.PixelFormat
		wantErr  bool
	}{
		{1, gpu.FormatRed, false},
		{2, 0, true},
		{3, gpu.FormatRGB, false},
		{4, gpu.FormatRGBA, false},
		{5, 0, true},
	}
	for _, tt := range tests {
		got, err := FormatFor(tt.channels)
		if tt.wantErr {
			var unsupported *UnsupportedFormatError
			require.ErrorAs(t, err, &unsupported)
			assert.Equal(t, tt.channels, unsupported.Channels)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestNew_UploadsWithDefaultParams(t *testing.T) {
	dev := gputest.New()
	img := &Image{Width: 2, Height: 2, Channels: 3, Pix: make([]byte, 12)}

	tex, err := New(dev, img)
	require.NoError(t, err)

	rec, ok := dev.Textures[tex.ID()]
	require.True(t, ok)
	assert.Equal(t, int32(2), rec.Width)
	assert.Equal(t, gpu.FormatRGB, rec.Format)
	assert.Equal(t, 12, rec.Bytes)
	assert.Equal(t, gpu.WrapRepeat, rec.Params.WrapS)
	assert.Equal(t, gpu.WrapRepeat, rec.Params.WrapT)
	assert.Equal(t, gpu.FilterLinear, rec.Params.MagFilter)
	assert.True(t, rec.Params.Mipmaps)
}

func TestNew_UnsupportedChannelsCreatesNothing(t *testing.T) {
	dev := gputest.New()
	img := &Image{Width: 1, Height: 1, Channels: 2, Pix: make([]byte, 2)}

	tex, err := New(dev, img)
	assert.Nil(t, tex)
	var unsupported *UnsupportedFormatError
	assert.ErrorAs(t, err, &unsupported)
	assert.Empty(t, dev.Textures)
}

func TestNew_ShortPixelData(t *testing.T) {
	dev := gputest.New()
	_, err := New(dev, &Image{Width: 4, Height: 4, Channels: 4, Pix: make([]byte, 10)})
	assert.Error(t, err)
	assert.Empty(t, dev.Textures)
}

func TestTexture_BindAndRelease(t *testing.T) {
	dev := gputest.New()
	tex, err := New(dev, &Image{Width: 1, Height: 1, Channels: 1, Pix: []byte{7}})
	require.NoError(t, err)

	tex.Bind(dev, 3)
	require.Len(t, dev.BindsTo(3), 1)
	assert.Equal(t, tex.ID(), dev.BindsTo(3)[0].Texture)

	tex.Release(dev)
	tex.Release(dev)
	assert.Empty(t, dev.Textures)
}

func TestDecode_PNGChannels(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 2, 1))
	gray.SetGray(0, 0, color.Gray{Y: 10})
	gray.SetGray(1, 0, color.Gray{Y: 20})

	img, err := Decode(encodePNG(t, gray), "ao.png")
	require.NoError(t, err)
	assert.Equal(t, 1, img.Channels)
	assert.Equal(t, []byte{10, 20}, img.Pix)

	opaque := image.NewRGBA(image.Rect(0, 0, 1, 1))
	opaque.Set(0, 0, color.RGBA{R: 1, G: 2, B: 3, A: 255})
	img, err = Decode(encodePNG(t, opaque), "albedo.png")
	require.NoError(t, err)
	assert.Equal(t, 3, img.Channels)
	assert.Equal(t, []byte{1, 2, 3}, img.Pix)

	translucent := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	translucent.Set(0, 0, color.NRGBA{R: 1, G: 2, B: 3, A: 128})
	img, err = Decode(encodePNG(t, translucent), "leaf.png")
	require.NoError(t, err)
	assert.Equal(t, 4, img.Channels)
	assert.Equal(t, []byte{1, 2, 3, 128}, img.Pix)
}

func TestFromImage_RowsBottomUp(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 1, 2))
	src.SetGray(0, 0, color.Gray{Y: 1}) // top
	src.SetGray(0, 1, color.Gray{Y: 2}) // bottom

	img := FromImage(src)
	assert.Equal(t, []byte{2, 1}, img.Pix)
}

func TestDecode_Garbage(t *testing.T) {
	_, err := Decode([]byte("not an image"), "albedo.png")
	assert.Error(t, err)
}

func tgaHeader(imageType, bpp, descriptor byte, w, h int) []byte {
	hdr := make([]byte, 18)
	hdr[2] = imageType
	hdr[12], hdr[13] = byte(w), byte(w>>8)
	hdr[14], hdr[15] = byte(h), byte(h>>8)
	hdr[16] = bpp
	hdr[17] = descriptor
	return hdr
}

func TestDecodeTGA_TrueColor(t *testing.T) {
	// 2x1, top-to-bottom, BGR order.
	data := append(tgaHeader(TGATypeTrueColor, 24, 0x20, 2, 1), 3, 2, 1, 6, 5, 4)

	img, err := Decode(data, "albedo.TGA")
	require.NoError(t, err)
	assert.Equal(t, 3, img.Channels)
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6}, img.Pix)
}

func TestDecodeTGA_RLEGray(t *testing.T) {
	// Run of 3 gray pixels with value 9, then a raw packet of 1 pixel.
	data := append(tgaHeader(TGATypeGrayRLE, 8, 0x20, 4, 1), 0x82, 9, 0x00, 5)

	img, err := DecodeTGA(data)
	require.NoError(t, err)
	g, ok := img.(*image.Gray)
	require.True(t, ok)
	assert.Equal(t, []byte{9, 9, 9, 5}, g.Pix)
}

func TestDecodeTGA_Errors(t *testing.T) {
	_, err := DecodeTGA([]byte{1, 2, 3})
	assert.ErrorIs(t, err, ErrTGATruncated)

	_, err = DecodeTGA(append(tgaHeader(TGATypeTrueColor, 32, 0, 2, 2), 1, 2, 3))
	assert.ErrorIs(t, err, ErrTGATruncated)

	_, err = DecodeTGA(tgaHeader(1, 8, 0, 1, 1))
	assert.Error(t, err)

	_, err = DecodeTGA(append(tgaHeader(TGATypeTrueColorRLE, 24, 0, 2, 1), 0x81))
	assert.ErrorIs(t, err, ErrTGATruncated)
}
