package imaging

import (
	"fmt"
	"image"
	"io"
	"strings"

	"github.com/disintegration/imaging"
)

// SupportedFormat reports whether ext (including the dot) is a raster format
// samples can be written in. Only lossless formats are accepted.
func SupportedFormat(ext string) bool {
	switch strings.ToLower(ext) {
	case ".tif", ".tiff", ".png":
		return true
	}
	return false
}

// Encode writes img to w in the format named by ext.
//
// TIFF output is Deflate-compressed with a horizontal predictor, which is
// lossless and what the Tesseract training tools expect.
func Encode(w io.Writer, img image.Image, ext string) error {
	if !SupportedFormat(ext) {
		return fmt.Errorf("unsupported image format %q", ext)
	}
	format, err := imaging.FormatFromExtension(ext)
	if err != nil {
		return fmt.Errorf("failed to resolve image format: %w", err)
	}
	if err := imaging.Encode(w, img, format); err != nil {
		return fmt.Errorf("failed to encode %s image: %w", format, err)
	}
	return nil
}
