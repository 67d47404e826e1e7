package layout

import (
	"image"
	"testing"
)

func TestGrid(t *testing.T) {
	cells := Grid(image.Rect(0, 0, 100, 50), 3, 2, 5)
	if len(cells) != 6 {
		t.Fatalf("got %d cells, want 6", len(cells))
	}
	// (100 - 2*5) / 3 = 30 wide, (50 - 5) / 2 = 22 high
	if cells[0] != image.Rect(0, 0, 30, 22) {
		t.Fatalf("first cell = %v", cells[0])
	}
	if cells[4] != image.Rect(35, 27, 65, 49) {
		t.Fatalf("fifth cell = %v", cells[4])
	}
	if Grid(image.Rect(0, 0, 10, 10), 0, 2, 0) != nil {
		t.Fatal("zero columns must give no cells")
	}
}

func TestSplitAndFit(t *testing.T) {
	left, right := SplitVertical(image.Rect(0, 0, 100, 40), 70)
	if left != image.Rect(0, 0, 70, 40) || right != image.Rect(70, 0, 100, 40) {
		t.Fatalf("split = %v %v", left, right)
	}
	if sq := FitSquare(right); sq != image.Rect(70, 0, 100, 30) {
		t.Fatalf("square = %v", sq)
	}
	top, bottom := SplitHorizontal(image.Rect(0, 0, 10, 10), 20)
	if top != image.Rect(0, 0, 10, 10) || !bottom.Empty() {
		t.Fatalf("clamped split = %v %v", top, bottom)
	}
	if c := Center(image.Rect(0, 0, 10, 10), 4, 4); c != image.Rect(3, 3, 7, 7) {
		t.Fatalf("center = %v", c)
	}
	if in := Inset(image.Rect(0, 0, 10, 10), 2); in != image.Rect(2, 2, 8, 8) {
		t.Fatalf("inset = %v", in)
	}
}
