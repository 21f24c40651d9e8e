package ticketcode

import (
	"bytes"
	"image/png"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
	qrcode "github.com/skip2/go-qrcode"
)

const (
	qrImageSize   = 300
	barcodeWidth  = 300
	barcodeHeight = 80
)

// QRImage renders the full code payload as a PNG QR code. The payload size
// check in BuildPayload guarantees this fits; an encode failure here is
// still fatal to the caller.
func QRImage(payload string) ([]byte, error) {
	return qrcode.Encode(payload, qrcode.Medium, qrImageSize)
}

// BarcodeImage renders just the ticket number as a Code 128 PNG, the 1-D
// fallback symbol printed under the QR code.
func BarcodeImage(ticketNumber string) ([]byte, error) {
	for _, r := range ticketNumber {
		if r < 32 || r > 126 {
			return nil, ErrInvalidCharacter
		}
	}

	bc, err := code128.Encode(ticketNumber)
	if err != nil {
		return nil, err
	}
	scaled, err := barcode.Scale(bc, barcodeWidth, barcodeHeight)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, scaled); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
