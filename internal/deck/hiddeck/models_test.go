package hiddeck

import (
	"bytes"
	"testing"

	"github.com/rook-computer/flightdeck/internal/deck"
)

func TestLookupModel(t *testing.T) {
	tests := []struct {
		product  uint16
		name     string
		keys     int
		encoding deck.Encoding
	}{
		{0x0063, "Stream Deck Mini", 6, deck.BMP},
		{0x006d, "Stream Deck Original", 15, deck.JPEG},
		{0x0080, "Stream Deck MK.2", 15, deck.JPEG},
		{0x006c, "Stream Deck XL", 32, deck.JPEG},
	}
	for _, tt := range tests {
		m, ok := lookupModel(tt.product)
		if !ok {
			t.Fatalf("product 0x%04x not found", tt.product)
		}
		if m.name != tt.name || m.keys != tt.keys || m.format.Encoding != tt.encoding {
			t.Fatalf("product 0x%04x = %s/%d/%s", tt.product, m.name, m.keys, m.format.Encoding)
		}
		if m.keys%m.columns != 0 {
			t.Fatalf("%s: %d keys do not fill %d columns", m.name, m.keys, m.columns)
		}
	}
	if _, ok := lookupModel(0x0060); ok {
		t.Fatal("first generation Original is not supported")
	}
}

func TestGen2Pages(t *testing.T) {
	data := bytes.Repeat([]byte{0xAB}, 2000)
	reports := pages(gen2{}, 4, data)

	if len(reports) != 2 {
		t.Fatalf("got %d reports, want 2", len(reports))
	}
	first, second := reports[0], reports[1]
	if len(first) != imageReportLength || len(second) != imageReportLength {
		t.Fatal("reports must be padded to the report length")
	}
	if want := []byte{0x02, 0x07, 4, 0, 0xf8, 0x03, 0, 0}; !bytes.Equal(first[:8], want) {
		t.Fatalf("first header = % x, want % x", first[:8], want)
	}
	// 1016 payload bytes per report, 984 left for the second
	if want := []byte{0x02, 0x07, 4, 1, 0xd8, 0x03, 1, 0}; !bytes.Equal(second[:8], want) {
		t.Fatalf("second header = % x, want % x", second[:8], want)
	}
	if second[8+983] != 0xAB || second[8+984] != 0 {
		t.Fatal("payload not copied or padding not zero")
	}
}

func TestGen1Pages(t *testing.T) {
	reports := pages(gen1{}, 0, make([]byte, 100))
	if len(reports) != 1 {
		t.Fatalf("got %d reports, want 1", len(reports))
	}
	if want := []byte{0x02, 0x01, 0, 0, 1, 1}; !bytes.Equal(reports[0][:6], want) {
		t.Fatalf("header = % x, want % x", reports[0][:6], want)
	}
}

func TestEmptyImageStillSendsOneReport(t *testing.T) {
	reports := pages(gen2{}, 1, nil)
	if len(reports) != 1 || reports[0][3] != 1 {
		t.Fatalf("want one final report, got %d", len(reports))
	}
}

func TestFeatureReports(t *testing.T) {
	if r := (gen1{}).brightnessReport(40); len(r) != 17 || r[0] != 0x05 || r[5] != 40 {
		t.Fatalf("gen1 brightness = % x", r)
	}
	if r := (gen2{}).brightnessReport(40); len(r) != 32 || r[0] != 0x03 || r[1] != 0x08 || r[2] != 40 {
		t.Fatalf("gen2 brightness = % x", r)
	}
	if r := (gen1{}).resetReport(); r[0] != 0x0B || r[1] != 0x63 {
		t.Fatalf("gen1 reset = % x", r)
	}
	if r := (gen2{}).resetReport(); r[0] != 0x03 || r[1] != 0x02 {
		t.Fatalf("gen2 reset = % x", r)
	}
}

func TestKeyStates(t *testing.T) {
	report := []byte{0x01, 0x00, 0x0f, 0x00, 1, 0, 0, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1}
	states := (gen2{}).keyStates(report, 15)
	if len(states) != 15 || states[0] != 1 || states[3] != 1 || states[14] != 1 {
		t.Fatalf("gen2 states = %v", states)
	}

	mini := (gen1{}).keyStates([]byte{0x01, 0, 1, 0, 0, 0, 1, 0, 0}, 6)
	if len(mini) != 6 || mini[1] != 1 || mini[5] != 1 {
		t.Fatalf("gen1 states = %v", mini)
	}

	if got := (gen2{}).keyStates([]byte{0x01}, 15); got != nil {
		t.Fatalf("short report = %v", got)
	}
}
