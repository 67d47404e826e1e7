package render

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/image/font/gofont/goregular"

	"github.com/rook-computer/flightdeck/internal/deck"
	"github.com/rook-computer/flightdeck/internal/keymap"
)

var red = color.RGBA{R: 0xFF, A: 0xFF}

// writeAssets creates an assets directory with one solid red icon and the
// Go regular font standing in for the label font.
func writeAssets(t *testing.T) (iconPath, fontPath string) {
	t.Helper()
	dir := t.TempDir()
	iconPath = filepath.Join(dir, "Icons", "AP_on.png")
	fontPath = filepath.Join(dir, "Fonts", "Roboto", "Roboto-Regular.ttf")
	for _, p := range []string{iconPath, fontPath} {
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
	}

	icon := image.NewRGBA(image.Rect(0, 0, 10, 10))
	for i := 0; i < len(icon.Pix); i += 4 {
		icon.Pix[i], icon.Pix[i+3] = 0xFF, 0xFF
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, icon); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(iconPath, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(fontPath, goregular.TTF, 0o644); err != nil {
		t.Fatal(err)
	}
	return iconPath, fontPath
}

func TestComposeWithoutLabelFillsKey(t *testing.T) {
	icon, fnt := writeAssets(t)
	r := NewKeyRenderer(nil)

	img, err := r.Compose(keymap.Style{Name: "AP", Icon: icon, Font: fnt}, image.Pt(72, 72))
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range []image.Point{{0, 0}, {36, 36}, {71, 71}} {
		if got := img.RGBAAt(p.X, p.Y); got != red {
			t.Fatalf("pixel %v = %v, want red", p, got)
		}
	}
}

func TestComposeWithLabelKeepsMargin(t *testing.T) {
	icon, fnt := writeAssets(t)
	r := NewKeyRenderer(nil)

	img, err := r.Compose(keymap.Style{Name: "COM1", Icon: icon, Font: fnt, Label: "118.25"}, image.Pt(72, 72))
	if err != nil {
		t.Fatal(err)
	}
	// the icon shrinks to 52x52, centered horizontally
	if got := img.RGBAAt(36, 26); got != red {
		t.Fatalf("icon center = %v, want red", got)
	}
	if got := img.RGBAAt(5, 26); got != (color.RGBA{A: 0xFF}) {
		t.Fatalf("left of icon = %v, want black", got)
	}

	var white, redInMargin int
	for y := 72 - LabelMargin; y < 72; y++ {
		for x := 0; x < 72; x++ {
			c := img.RGBAAt(x, y)
			if c.R > 0xC0 && c.G > 0xC0 && c.B > 0xC0 {
				white++
			}
			if c == red {
				redInMargin++
			}
		}
	}
	if white == 0 {
		t.Fatal("no label pixels in the bottom margin")
	}
	if redInMargin != 0 {
		t.Fatalf("icon leaks %d pixels into the label margin", redInMargin)
	}
}

func TestRenderIsDeterministic(t *testing.T) {
	icon, fnt := writeAssets(t)
	r := NewKeyRenderer(nil)
	style := keymap.Style{Name: "ETE", Icon: icon, Font: fnt, Label: "2:05"}
	format := deck.ImageFormat{Size: image.Pt(72, 72), Encoding: deck.JPEG, FlipH: true, FlipV: true}

	first, err := r.Render(style, format)
	if err != nil {
		t.Fatal(err)
	}
	second, err := NewKeyRenderer(nil).Render(style, format)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(first, second) {
		t.Fatal("identical input rendered to different bytes")
	}

	decoded, err := jpeg.Decode(bytes.NewReader(first))
	if err != nil {
		t.Fatal(err)
	}
	if decoded.Bounds().Size() != image.Pt(72, 72) {
		t.Fatalf("jpeg size = %v", decoded.Bounds().Size())
	}
}

func TestRenderMissingAssets(t *testing.T) {
	icon, fnt := writeAssets(t)
	r := NewKeyRenderer(nil)
	format := deck.ImageFormat{Size: image.Pt(72, 72), Encoding: deck.Raw}

	tests := []struct {
		name    string
		style   keymap.Style
		wantErr bool
	}{
		{"missing icon", keymap.Style{Icon: icon + ".missing", Font: fnt}, true},
		{"missing font with label", keymap.Style{Icon: icon, Font: fnt + ".missing", Label: "OFF"}, true},
		{"missing font without label", keymap.Style{Icon: icon, Font: fnt + ".missing"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Render(tt.style, format)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %t", err, tt.wantErr)
			}
		})
	}
}

func TestNativeOrientation(t *testing.T) {
	a := color.RGBA{R: 1, A: 0xFF}
	b := color.RGBA{G: 2, A: 0xFF}
	src := image.NewRGBA(image.Rect(0, 0, 2, 1))
	src.SetRGBA(0, 0, a)
	src.SetRGBA(1, 0, b)

	tests := []struct {
		name   string
		format deck.ImageFormat
		size   image.Point
		first  color.RGBA
	}{
		{"as is", deck.ImageFormat{}, image.Pt(2, 1), a},
		{"flip h", deck.ImageFormat{FlipH: true}, image.Pt(2, 1), b},
		{"rotate 90", deck.ImageFormat{Rotation: 90}, image.Pt(1, 2), a},
		{"rotate 90 flip v", deck.ImageFormat{Rotation: 90, FlipV: true}, image.Pt(1, 2), b},
		{"rotate 270", deck.ImageFormat{Rotation: 270}, image.Pt(1, 2), b},
		{"rotate 180", deck.ImageFormat{Rotation: 180}, image.Pt(2, 1), b},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			format := tt.format
			format.Encoding = deck.Raw
			data, err := Native(src, format)
			if err != nil {
				t.Fatal(err)
			}
			img, err := FromRaw(data, tt.size)
			if err != nil {
				t.Fatal(err)
			}
			if got := img.RGBAAt(0, 0); got != tt.first {
				t.Fatalf("first pixel = %v, want %v", got, tt.first)
			}
		})
	}
}

func TestNativeBMP(t *testing.T) {
	data, err := Native(image.NewRGBA(image.Rect(0, 0, 80, 80)), deck.ImageFormat{Encoding: deck.BMP, Rotation: 90, FlipV: true})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("BM")) {
		t.Fatalf("bmp header = % x", data[:2])
	}
}

func TestAssetsWithoutWatchReadDisk(t *testing.T) {
	icon, fnt := writeAssets(t)
	assets := NewAssets()

	if _, err := assets.Icon(icon); err != nil {
		t.Fatal(err)
	}
	if _, err := assets.Font(fnt); err != nil {
		t.Fatal(err)
	}
	if assets.Len() != 0 {
		t.Fatalf("cached %d assets without a watch", assets.Len())
	}
	if err := os.Remove(icon); err != nil {
		t.Fatal(err)
	}
	if _, err := assets.Icon(icon); err == nil {
		t.Fatal("removed icon still served")
	}
}

func TestRenderFailsOnceIconRemoved(t *testing.T) {
	icon, fnt := writeAssets(t)
	r := NewKeyRenderer(nil)
	style := keymap.Style{Name: "AP", Icon: icon, Font: fnt, Label: "AP"}
	format := deck.ImageFormat{Size: image.Pt(72, 72), Encoding: deck.Raw}

	if _, err := r.Render(style, format); err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(icon); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Render(style, format); err == nil {
		t.Fatal("render succeeded after the icon was removed")
	}
}

func TestAssetsForgetWhileWatching(t *testing.T) {
	icon, _ := writeAssets(t)
	assets := NewAssets()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := assets.Watch(ctx, filepath.Dir(icon)); err != nil {
		t.Fatal(err)
	}

	if _, err := assets.Icon(icon); err != nil {
		t.Fatal(err)
	}
	if assets.Len() != 1 {
		t.Fatalf("cached %d assets, want 1", assets.Len())
	}
	assets.Forget(icon)
	if assets.Len() != 0 {
		t.Fatalf("Forget left %d assets", assets.Len())
	}

	cancel()
	deadline := time.Now().Add(2 * time.Second)
	for assets.Watching() {
		if time.Now().After(deadline) {
			t.Fatal("still caching after the watch stopped")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if assets.Len() != 0 {
		t.Fatalf("cache not emptied when the watch stopped: %d", assets.Len())
	}
}

func TestAssetsWatchDropsRemovedFiles(t *testing.T) {
	icon, fnt := writeAssets(t)
	assets := NewAssets()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	root := filepath.Dir(filepath.Dir(icon))
	if err := assets.Watch(ctx, root); err != nil {
		t.Fatal(err)
	}
	if _, err := assets.Icon(icon); err != nil {
		t.Fatal(err)
	}
	if _, err := assets.Font(fnt); err != nil {
		t.Fatal(err)
	}
	if assets.Len() != 2 {
		t.Fatalf("cached %d assets, want 2", assets.Len())
	}

	if err := os.Remove(icon); err != nil {
		t.Fatal(err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for assets.Len() != 1 {
		if time.Now().After(deadline) {
			t.Fatal("watcher did not drop the removed icon")
		}
		time.Sleep(10 * time.Millisecond)
	}
	if _, err := assets.Icon(icon); err == nil {
		t.Fatal("removed icon must fail after invalidation")
	}
}

func TestDrawQRCode(t *testing.T) {
	canvas := image.NewRGBA(image.Rect(0, 0, 200, 100))
	if err := DrawQRCode(canvas, canvas.Bounds(), "http://127.0.0.1:8080"); err != nil {
		t.Fatal(err)
	}
	// the code is a 100px square anchored top-left; quiet zone is white
	if got := canvas.RGBAAt(1, 1); got.R != 0xFF {
		t.Fatalf("quiet zone = %v", got)
	}
	if got := canvas.RGBAAt(150, 50); got != (color.RGBA{}) {
		t.Fatalf("pixel outside the square = %v", got)
	}
	if err := DrawQRCode(canvas, canvas.Bounds(), ""); err != nil {
		t.Fatal(err)
	}
}
