// Package fbdeck is a virtual key deck drawn on the Linux framebuffer and
// driven from a keyboard, for running without Stream Deck hardware.
package fbdeck

import (
	"image"

	"github.com/rook-computer/flightdeck/internal/render/layout"
)

const (
	keyGap      = 8
	screenInset = 16
)

// Geometry is where the keys and the status panel sit on the screen.
type Geometry struct {
	Keys    []image.Rectangle
	KeySize int
	Status  image.Rectangle
}

// Plan lays out columns x rows square keys on the left three quarters of
// screen and the status panel on the rest.
func Plan(screen image.Rectangle, columns, rows int) Geometry {
	area := layout.Inset(screen, screenInset)
	keysArea, status := layout.SplitVertical(area, area.Dx()*3/4)
	status = layout.Inset(status, keyGap)

	cells := layout.Grid(keysArea, columns, rows, keyGap)
	size := 0
	if len(cells) > 0 {
		size = cells[0].Dx()
		if cells[0].Dy() < size {
			size = cells[0].Dy()
		}
	}
	keys := make([]image.Rectangle, len(cells))
	for i, cell := range cells {
		keys[i] = layout.Center(cell, size, size)
	}
	return Geometry{Keys: keys, KeySize: size, Status: status}
}

// keyRows are the keyboard rows mapped onto key slots, left to right.
var keyRows = [][]int{
	{2, 3, 4, 5, 6, 7, 8, 9, 10, 11},         // 1 ... 0
	{16, 17, 18, 19, 20, 21, 22, 23, 24, 25}, // q ... p
	{30, 31, 32, 33, 34, 35, 36, 37, 38},     // a ... l
}

// SlotForCode maps an evdev key code to a key slot.
func SlotForCode(code int, keyCount int) (int, bool) {
	slot := 0
	for _, row := range keyRows {
		for _, c := range row {
			if c == code {
				return slot, slot < keyCount
			}
			slot++
		}
	}
	return 0, false
}

// scaleBrightness dims img in place to percent of full intensity.
func scaleBrightness(img *image.RGBA, percent int) {
	if percent >= 100 {
		return
	}
	if percent < 0 {
		percent = 0
	}
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = uint8(int(img.Pix[i]) * percent / 100)
		img.Pix[i+1] = uint8(int(img.Pix[i+1]) * percent / 100)
		img.Pix[i+2] = uint8(int(img.Pix[i+2]) * percent / 100)
	}
}
