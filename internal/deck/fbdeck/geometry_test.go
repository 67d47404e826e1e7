package fbdeck

import (
	"image"
	"testing"
)

func TestPlanFitsKeysLeftOfStatus(t *testing.T) {
	g := Plan(image.Rect(0, 0, 1280, 720), 5, 3)

	if len(g.Keys) != 15 {
		t.Fatalf("got %d keys, want 15", len(g.Keys))
	}
	if g.KeySize <= 0 {
		t.Fatalf("key size = %d", g.KeySize)
	}
	for i, k := range g.Keys {
		if k.Dx() != g.KeySize || k.Dy() != g.KeySize {
			t.Fatalf("key %d is %v, not square", i, k)
		}
		if k.Max.X > g.Status.Min.X {
			t.Fatalf("key %d overlaps the status panel", i)
		}
		for j := i + 1; j < len(g.Keys); j++ {
			if k.Overlaps(g.Keys[j]) {
				t.Fatalf("keys %d and %d overlap", i, j)
			}
		}
	}
	if g.Keys[1].Min.X <= g.Keys[0].Min.X || g.Keys[5].Min.Y <= g.Keys[0].Min.Y {
		t.Fatal("keys are not laid out left-to-right, top-to-bottom")
	}
}

func TestSlotForCode(t *testing.T) {
	tests := []struct {
		code int
		slot int
		ok   bool
	}{
		{2, 0, true},   // 1
		{11, 9, true},  // 0
		{16, 10, true}, // q
		{20, 14, true}, // t
		{21, 15, false},
		{1, 0, false}, // esc
	}
	for _, tt := range tests {
		slot, ok := SlotForCode(tt.code, 15)
		if ok != tt.ok || (ok && slot != tt.slot) {
			t.Errorf("SlotForCode(%d) = %d, %t; want %d, %t", tt.code, slot, ok, tt.slot, tt.ok)
		}
	}
}

func TestScaleBrightness(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	copy(img.Pix, []byte{200, 100, 50, 255})
	scaleBrightness(img, 40)
	if got := img.Pix; got[0] != 80 || got[1] != 40 || got[2] != 20 || got[3] != 255 {
		t.Fatalf("pixel = %v", got)
	}
}
