package render

import (
	"image"
	"image/draw"

	"github.com/skip2/go-qrcode"

	"github.com/rook-computer/flightdeck/internal/render/layout"
)

// GenerateQRCodeImage returns a QR code image for the given payload.
// If payload is empty, it returns (nil, nil).
func GenerateQRCodeImage(payload string, sizePx int) (image.Image, error) {
	if payload == "" || sizePx <= 0 {
		return nil, nil
	}
	qrCode, err := qrcode.New(payload, qrcode.Medium)
	if err != nil {
		return nil, err
	}
	return qrCode.Image(sizePx), nil
}

// DrawQRCode draws payload as the largest square QR code fitting rect.
func DrawQRCode(dst draw.Image, rect image.Rectangle, payload string) error {
	square := layout.FitSquare(rect)
	img, err := GenerateQRCodeImage(payload, square.Dx())
	if err != nil || img == nil {
		return err
	}
	draw.Draw(dst, square, img, img.Bounds().Min, draw.Src)
	return nil
}
