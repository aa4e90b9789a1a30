package texture

import (
	"errors"
	"fmt"
	"image"
	"image/color"
)

// TGA image types.
const (
	TGATypeTrueColor    = 2
	TGATypeGray         = 3
	TGATypeTrueColorRLE = 10
	TGATypeGrayRLE      = 11
)

// ErrTGATruncated is returned when pixel data ends early.
var ErrTGATruncated = errors.New("TGA data truncated")

// DecodeTGA decodes an uncompressed or RLE true-color (24/32 bit) or
// grayscale (8 bit) TGA image. Grayscale images decode to *image.Gray,
// everything else to *image.RGBA.
func DecodeTGA(data []byte) (image.Image, error) {
	if len(data) < 18 {
		return nil, ErrTGATruncated
	}

	idLength := int(data[0])
	colorMapType := data[1]
	imageType := int(data[2])
	width := int(data[12]) | int(data[13])<<8
	height := int(data[14]) | int(data[15])<<8
	bpp := int(data[16])
	topToBottom := data[17]&0x20 != 0

	if colorMapType != 0 {
		return nil, fmt.Errorf("color-mapped TGA not supported")
	}
	gray := imageType == TGATypeGray || imageType == TGATypeGrayRLE
	rle := imageType == TGATypeTrueColorRLE || imageType == TGATypeGrayRLE
	switch {
	case gray && bpp != 8:
		return nil, fmt.Errorf("unsupported grayscale TGA bit depth %d", bpp)
	case !gray && imageType != TGATypeTrueColor && imageType != TGATypeTrueColorRLE:
		return nil, fmt.Errorf("unsupported TGA type %d", imageType)
	case !gray && bpp != 24 && bpp != 32:
		return nil, fmt.Errorf("unsupported TGA bit depth %d", bpp)
	}

	offset := 18 + idLength
	if offset > len(data) {
		return nil, ErrTGATruncated
	}

	bytesPerPixel := bpp / 8
	var pixels []byte
	if rle {
		var err error
		if pixels, err = expandTGARLE(data[offset:], width*height, bytesPerPixel); err != nil {
			return nil, err
		}
	} else {
		n := width * height * bytesPerPixel
		if len(data)-offset < n {
			return nil, ErrTGATruncated
		}
		pixels = data[offset : offset+n]
	}

	rect := image.Rect(0, 0, width, height)
	var img interface {
		image.Image
		Set(x, y int, c color.Color)
	}
	if gray {
		img = image.NewGray(rect)
	} else {
		img = image.NewRGBA(rect)
	}

	for y := 0; y < height; y++ {
		destY := y
		if !topToBottom {
			destY = height - 1 - y
		}
		for x := 0; x < width; x++ {
			p := pixels[(y*width+x)*bytesPerPixel:]
			if gray {
				img.Set(x, destY, color.Gray{Y: p[0]})
				continue
			}
			a := uint8(255)
			if bytesPerPixel == 4 {
				a = p[3]
			}
			img.Set(x, destY, color.RGBA{R: p[2], G: p[1], B: p[0], A: a})
		}
	}

	return img, nil
}

// expandTGARLE decodes RLE packets into raw pixel bytes.
func expandTGARLE(src []byte, pixelCount, bytesPerPixel int) ([]byte, error) {
	out := make([]byte, 0, pixelCount*bytesPerPixel)
	i := 0
	for len(out) < pixelCount*bytesPerPixel {
		if i >= len(src) {
			return nil, ErrTGATruncated
		}
		packet := src[i]
		i++
		count := int(packet&0x7F) + 1

		if packet&0x80 != 0 {
			// Run packet: one pixel repeated.
			if i+bytesPerPixel > len(src) {
				return nil, ErrTGATruncated
			}
			px := src[i : i+bytesPerPixel]
			i += bytesPerPixel
			for n := 0; n < count; n++ {
				out = append(out, px...)
			}
			continue
		}

		// Raw packet.
		n := count * bytesPerPixel
		if i+n > len(src) {
			return nil, ErrTGATruncated
		}
		out = append(out, src[i:i+n]...)
		i += n
	}
	return out[:pixelCount*bytesPerPixel], nil
}
