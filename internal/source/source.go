// Package source produces the images fed into the processing pipeline:
// decoded picture files, rendered text labels, and QR/barcode stamps.
package source

import (
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"strings"
)

// FromReader decodes a PNG, JPEG, or GIF image.
func FromReader(r io.Reader) (image.Image, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

// FromFile decodes an image from disk.
func FromFile(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	return FromReader(file)
}

// FromBase64 decodes a base64-encoded image, as submitted over the API.
func FromBase64(data string) (image.Image, error) {
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64 image: %w", err)
	}
	return FromReader(strings.NewReader(string(raw)))
}
