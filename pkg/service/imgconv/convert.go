// Package imgconv converts images between JPEG and PNG.
package imgconv

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

const jpegQuality = 90

// Convert decodes data and re-encodes it in the opposite format: PNG input
// becomes JPEG, anything else decodable becomes PNG. It returns the encoded
// bytes and the new file extension ("jpg" or "png").
func Convert(data []byte) ([]byte, string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", goerr.Wrap(err, "failed to decode image")
	}

	var buf bytes.Buffer
	if format == "png" {
		// JPEG has no alpha channel; flatten onto white first
		flat := image.NewRGBA(img.Bounds())
		draw.Draw(flat, flat.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
		draw.Draw(flat, flat.Bounds(), img, img.Bounds().Min, draw.Over)

		if err := jpeg.Encode(&buf, flat, &jpeg.Options{Quality: jpegQuality}); err != nil {
			return nil, "", goerr.Wrap(err, "failed to encode JPEG")
		}
		return buf.Bytes(), "jpg", nil
	}

	if err := png.Encode(&buf, img); err != nil {
		return nil, "", goerr.Wrap(err, "failed to encode PNG")
	}
	return buf.Bytes(), "png", nil
}

// ConvertedName derives the output filename: the original base name with a
// "_converted" suffix and the new extension.
func ConvertedName(name, ext string) string {
	base := name
	if i := strings.LastIndex(name, "."); i > 0 {
		base = name[:i]
	}
	return base + "_converted." + ext
}
