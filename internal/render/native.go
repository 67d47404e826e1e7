package render

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"

	"golang.org/x/image/bmp"

	"github.com/rook-computer/flightdeck/internal/deck"
)

const jpegQuality = 95

// Native converts a composed key image into the bytes format expects:
// rotate, flip, then encode.
func Native(img image.Image, format deck.ImageFormat) ([]byte, error) {
	out := toRGBA(img)
	if format.Rotation%360 != 0 {
		out = rotate(out, format.Rotation)
	}
	if format.FlipH || format.FlipV {
		out = flip(out, format.FlipH, format.FlipV)
	}

	var buf bytes.Buffer
	switch format.Encoding {
	case deck.JPEG:
		if err := jpeg.Encode(&buf, out, &jpeg.Options{Quality: jpegQuality}); err != nil {
			return nil, err
		}
	case deck.BMP:
		if err := bmp.Encode(&buf, out); err != nil {
			return nil, err
		}
	case deck.Raw:
		return append([]byte(nil), out.Pix...), nil
	default:
		return nil, fmt.Errorf("unsupported key encoding %s", format.Encoding)
	}
	return buf.Bytes(), nil
}

// FromRaw rebuilds an image from deck.Raw bytes of the given size.
func FromRaw(data []byte, size image.Point) (*image.RGBA, error) {
	if len(data) != size.X*size.Y*4 {
		return nil, fmt.Errorf("raw key image is %d bytes, want %d", len(data), size.X*size.Y*4)
	}
	img := image.NewRGBA(image.Rectangle{Max: size})
	copy(img.Pix, data)
	return img, nil
}

func toRGBA(img image.Image) *image.RGBA {
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}

// rotate turns src clockwise by a multiple of 90 degrees.
func rotate(src *image.RGBA, degrees int) *image.RGBA {
	turns := ((degrees/90)%4 + 4) % 4
	for i := 0; i < turns; i++ {
		w, h := src.Rect.Dx(), src.Rect.Dy()
		dst := image.NewRGBA(image.Rect(0, 0, h, w))
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				dst.SetRGBA(h-1-y, x, src.RGBAAt(x, y))
			}
		}
		src = dst
	}
	return src
}

func flip(src *image.RGBA, horizontal, vertical bool) *image.RGBA {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	dst := image.NewRGBA(src.Rect)
	for y := 0; y < h; y++ {
		sy := y
		if vertical {
			sy = h - 1 - y
		}
		for x := 0; x < w; x++ {
			sx := x
			if horizontal {
				sx = w - 1 - x
			}
			dst.SetRGBA(x, y, src.RGBAAt(sx, sy))
		}
	}
	return dst
}
