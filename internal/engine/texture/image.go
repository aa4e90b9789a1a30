// Package texture decodes images and owns 2D textures on the GPU.
package texture

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Image is decoded 8-bit pixel data ready for upload. Rows are stored
// bottom-up, matching the texture coordinate origin of the GPU.
type Image struct {
	Width    int
	Height   int
	Channels int
	Pix      []byte
}

// Decode decodes an encoded image. name selects the TGA decoder by
// extension; every other format is sniffed from its header.
func Decode(data []byte, name string) (*Image, error) {
	var img image.Image
	var err error
	if strings.EqualFold(filepath.Ext(name), ".tga") {
		img, err = DecodeTGA(data)
	} else {
		img, _, err = image.Decode(bytes.NewReader(data))
	}
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", name, err)
	}
	return FromImage(img), nil
}

// FromImage converts img to packed bytes. Grayscale images keep one
// channel, opaque images three, and everything else four.
func FromImage(img image.Image) *Image {
	channels := 4
	switch img.(type) {
	case *image.Gray, *image.Gray16:
		channels = 1
	default:
		if o, ok := img.(interface{ Opaque() bool }); ok && o.Opaque() {
			channels = 3
		}
	}

	b := img.Bounds()
	out := &Image{
		Width:    b.Dx(),
		Height:   b.Dy(),
		Channels: channels,
		Pix:      make([]byte, 0, b.Dx()*b.Dy()*channels),
	}

	for y := b.Max.Y - 1; y >= b.Min.Y; y-- {
		for x := b.Min.X; x < b.Max.X; x++ {
			if channels == 1 {
				out.Pix = append(out.Pix, color.GrayModel.Convert(img.At(x, y)).(color.Gray).Y)
				continue
			}
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			out.Pix = append(out.Pix, c.R, c.G, c.B)
			if channels == 4 {
				out.Pix = append(out.Pix, c.A)
			}
		}
	}
	return out
}
