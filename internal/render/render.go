// Package render draws key faces: a scaled icon with an optional label,
// converted to the format of the target deck.
package render

import (
	"image"
	"image/color"
	"image/draw"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/rook-computer/flightdeck/internal/deck"
	"github.com/rook-computer/flightdeck/internal/keymap"
)

// Renderer turns a key style into device bytes.
type Renderer interface {
	Render(style keymap.Style, format deck.ImageFormat) ([]byte, error)
}

// KeyRenderer renders key styles from icon and font files. It is safe for
// concurrent use; every call builds its own canvas and font face.
type KeyRenderer struct {
	Assets *Assets
}

func NewKeyRenderer(assets *Assets) *KeyRenderer {
	if assets == nil {
		assets = NewAssets()
	}
	return &KeyRenderer{Assets: assets}
}

func (r *KeyRenderer) Render(style keymap.Style, format deck.ImageFormat) ([]byte, error) {
	img, err := r.Compose(style, format.Size)
	if err != nil {
		return nil, err
	}
	return Native(img, format)
}

// Compose draws style onto a size canvas in upright orientation.
func (r *KeyRenderer) Compose(style keymap.Style, size image.Point) (*image.RGBA, error) {
	icon, err := r.Assets.Icon(style.Icon)
	if err != nil {
		return nil, err
	}

	canvas := image.NewRGBA(image.Rectangle{Max: size})
	draw.Draw(canvas, canvas.Bounds(), &image.Uniform{C: KeyColor}, image.Point{}, draw.Src)

	margin := 0
	if style.Label != "" {
		margin = LabelMargin
	}
	area := image.Rect(0, 0, size.X, size.Y-margin)
	DrawImageInRect(canvas, icon, area)

	if style.Label == "" {
		return canvas, nil
	}
	fnt, err := r.Assets.Font(style.Font)
	if err != nil {
		return nil, err
	}
	face, err := fnt.Face(LabelSize)
	if err != nil {
		return nil, err
	}
	defer face.Close()
	DrawText(canvas, style.Label, size.X/2, size.Y-LabelMargin, TextStyle{Color: LabelColor, Face: face, Align: TextAlignCenter})
	return canvas, nil
}

// DrawImageInRect scales img to the largest size that fits rect with its
// aspect ratio kept and centers it there.
func DrawImageInRect(dst draw.Image, img image.Image, rect image.Rectangle) {
	src := img.Bounds()
	if src.Empty() || rect.Empty() {
		return
	}
	w, h := rect.Dx(), rect.Dy()
	if src.Dx()*h > src.Dy()*w {
		h = src.Dy() * w / src.Dx()
	} else {
		w = src.Dx() * h / src.Dy()
	}
	x := rect.Min.X + (rect.Dx()-w)/2
	y := rect.Min.Y + (rect.Dy()-h)/2
	xdraw.CatmullRom.Scale(dst, image.Rect(x, y, x+w, y+h), img, src, xdraw.Over, nil)
}

type TextAlign int

const (
	TextAlignLeft TextAlign = iota
	TextAlignCenter
	TextAlignRight
)

// TextStyle describes how to draw text. For DrawText, y is the top of the
// text and Align controls how x is interpreted.
type TextStyle struct {
	Color color.Color
	Face  font.Face
	Align TextAlign
}

type TextMetrics struct {
	Width   int
	Ascent  int
	Descent int
}

func MeasureText(text string, style TextStyle) TextMetrics {
	drawer := &font.Drawer{Face: style.Face}
	metrics := style.Face.Metrics()
	return TextMetrics{
		Width:   drawer.MeasureString(text).Ceil(),
		Ascent:  metrics.Ascent.Ceil(),
		Descent: metrics.Descent.Ceil(),
	}
}

func DrawText(dst draw.Image, text string, x, y int, style TextStyle) TextMetrics {
	m := MeasureText(text, style)
	switch style.Align {
	case TextAlignCenter:
		x -= m.Width / 2
	case TextAlignRight:
		x -= m.Width
	}
	drawer := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(style.Color),
		Face: style.Face,
		Dot:  fixed.P(x, y+m.Ascent),
	}
	drawer.DrawString(text)
	return m
}
