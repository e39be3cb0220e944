package source

import (
	"fmt"
	"image"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
	"github.com/boombuler/barcode/code39"
	"github.com/boombuler/barcode/ean"
	"github.com/skip2/go-qrcode"
)

// QR renders a QR code at the given pixel size. Level is one of L, M, Q, H
// (empty means M).
func QR(value string, level string, size int) (image.Image, error) {
	if value == "" {
		return nil, fmt.Errorf("qr code value is empty")
	}
	if size < 21 {
		size = 256
	}

	errorCorrection := qrcode.Medium
	switch level {
	case "", "M":
	case "L":
		errorCorrection = qrcode.Low
	case "Q":
		errorCorrection = qrcode.High
	case "H":
		errorCorrection = qrcode.Highest
	default:
		return nil, fmt.Errorf("unknown qr error-correction level %q", level)
	}

	qr, err := qrcode.New(value, errorCorrection)
	if err != nil {
		return nil, fmt.Errorf("failed to generate qr code: %w", err)
	}
	return qr.Image(size), nil
}

// Barcode renders a 1D barcode scaled to the given pixel dimensions.
// Supported formats: CODE128 (default), CODE39, EAN13, EAN8.
func Barcode(value string, format string, width, height int) (image.Image, error) {
	if value == "" {
		return nil, fmt.Errorf("barcode value is empty")
	}
	if width < 1 {
		width = 400
	}
	if height < 1 {
		height = 120
	}

	var code barcode.Barcode
	var err error
	switch format {
	case "", "CODE128":
		code, err = code128.Encode(value)
	case "CODE39":
		code, err = code39.Encode(value, false, false)
	case "EAN13", "EAN8":
		code, err = ean.Encode(value)
	default:
		return nil, fmt.Errorf("unknown barcode format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to generate barcode: %w", err)
	}

	code, err = barcode.Scale(code, width, height)
	if err != nil {
		return nil, fmt.Errorf("failed to scale barcode: %w", err)
	}
	return code, nil
}
