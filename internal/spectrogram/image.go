// SPDX-License-Identifier: MIT
package spectrogram

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
)

// Format is an output image encoding.
type Format string

const (
	FormatPNG Format = "png"
	FormatBMP Format = "bmp"
)

// ParseFormat converts a case-insensitive name to a Format.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case FormatPNG, FormatBMP:
		return f, nil
	default:
		return "", fmt.Errorf("unknown image format: '%s'", name)
	}
}

// FormatFromPath picks the Format from a file extension.
func FormatFromPath(path string) (Format, error) {
	return ParseFormat(strings.TrimPrefix(filepath.Ext(path), "."))
}

// Encode writes img to w.
func Encode(w io.Writer, img image.Image, f Format) error {
	switch f {
	case FormatPNG:
		return png.Encode(w, img)
	case FormatBMP:
		return bmp.Encode(w, img)
	default:
		return fmt.Errorf("unknown image format: '%s'", f)
	}
}

// WriteFile encodes img into a new file at path.
func WriteFile(path string, img image.Image, f Format) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Encode(out, img, f); err != nil {
		out.Close()
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return out.Close()
}

// Scale resamples img to width x height with bilinear filtering.
func Scale(img image.Image, width, height int) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.BiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}
