package hiddeck

import (
	"encoding/binary"
	"image"

	"github.com/rook-computer/flightdeck/internal/deck"
)

const vendorID = 0x0fd9

const imageReportLength = 1024

// protocol is the report layout of one Stream Deck hardware generation.
type protocol interface {
	imageHeader(key int, page int, length int, last bool) []byte
	resetReport() []byte
	brightnessReport(percent int) []byte
	serialReport() (id byte, length int, offset int)
	// keyStates returns the key state bytes of an input report.
	keyStates(report []byte, keys int) []byte
	inputLength(keys int) int
}

type model struct {
	name    string
	product uint16
	keys    int
	columns int
	format  deck.ImageFormat
	proto   protocol
}

var models = []model{
	{
		name: "Stream Deck Mini", product: 0x0063, keys: 6, columns: 3,
		format: deck.ImageFormat{Size: image.Pt(80, 80), Encoding: deck.BMP, FlipV: true, Rotation: 90},
		proto:  gen1{},
	},
	{
		name: "Stream Deck Original", product: 0x006d, keys: 15, columns: 5,
		format: deck.ImageFormat{Size: image.Pt(72, 72), Encoding: deck.JPEG, FlipH: true, FlipV: true},
		proto:  gen2{},
	},
	{
		name: "Stream Deck MK.2", product: 0x0080, keys: 15, columns: 5,
		format: deck.ImageFormat{Size: image.Pt(72, 72), Encoding: deck.JPEG, FlipH: true, FlipV: true},
		proto:  gen2{},
	},
	{
		name: "Stream Deck XL", product: 0x006c, keys: 32, columns: 8,
		format: deck.ImageFormat{Size: image.Pt(96, 96), Encoding: deck.JPEG, FlipH: true, FlipV: true},
		proto:  gen2{},
	},
}

func lookupModel(product uint16) (model, bool) {
	for _, m := range models {
		if m.product == product {
			return m, true
		}
	}
	return model{}, false
}

// gen1 covers the Mini: 16 byte image header, 17 byte feature reports.
type gen1 struct{}

func (gen1) imageHeader(key int, page int, length int, last bool) []byte {
	header := make([]byte, 16)
	header[0] = 0x02
	header[1] = 0x01
	header[2] = byte(page)
	if last {
		header[4] = 1
	}
	header[5] = byte(key + 1)
	return header
}

func (gen1) resetReport() []byte { return padded(17, 0x0B, 0x63) }

func (gen1) brightnessReport(percent int) []byte {
	return padded(17, 0x05, 0x55, 0xAA, 0xD1, 0x01, byte(percent))
}

func (gen1) serialReport() (byte, int, int) { return 0x03, 17, 5 }

func (gen1) keyStates(report []byte, keys int) []byte { return clip(report, 1, keys) }

func (gen1) inputLength(keys int) int { return 1 + keys }

// gen2 covers the Original V2, MK.2 and XL: 8 byte image header with
// little-endian length and page, 32 byte feature reports.
type gen2 struct{}

func (gen2) imageHeader(key int, page int, length int, last bool) []byte {
	header := make([]byte, 8)
	header[0] = 0x02
	header[1] = 0x07
	header[2] = byte(key)
	if last {
		header[3] = 1
	}
	binary.LittleEndian.PutUint16(header[4:6], uint16(length))
	binary.LittleEndian.PutUint16(header[6:8], uint16(page))
	return header
}

func (gen2) resetReport() []byte { return padded(32, 0x03, 0x02) }

func (gen2) brightnessReport(percent int) []byte { return padded(32, 0x03, 0x08, byte(percent)) }

func (gen2) serialReport() (byte, int, int) { return 0x06, 32, 2 }

func (gen2) keyStates(report []byte, keys int) []byte { return clip(report, 4, keys) }

func (gen2) inputLength(keys int) int { return 4 + keys }

func padded(length int, data ...byte) []byte {
	out := make([]byte, length)
	copy(out, data)
	return out
}

func clip(report []byte, offset int, keys int) []byte {
	if len(report) <= offset {
		return nil
	}
	report = report[offset:]
	if len(report) > keys {
		report = report[:keys]
	}
	return report
}

// pages splits an encoded key image into output reports.
func pages(p protocol, key int, data []byte) [][]byte {
	headerLen := len(p.imageHeader(0, 0, 0, false))
	payload := imageReportLength - headerLen

	var reports [][]byte
	for page := 0; page == 0 || page*payload < len(data); page++ {
		start := page * payload
		end := start + payload
		if end > len(data) {
			end = len(data)
		}
		chunk := data[start:end]
		last := end == len(data)

		report := make([]byte, imageReportLength)
		copy(report, p.imageHeader(key, page, len(chunk), last))
		copy(report[headerLen:], chunk)
		reports = append(reports, report)
	}
	return reports
}
