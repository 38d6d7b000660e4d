package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/ironsheep/tesstrain-gen/internal/boxes"
)

// PaintText draws text onto dst starting at the canvas baseline origin.
//
// Each rune is placed at the cursor position the box engine uses for the same
// metrics: the cursor starts at (BaselineX, BaselineY) and advances by
// m.Advance(r). Kerning is therefore not applied, which keeps painted glyphs
// and computed boxes in step.
//
// Parameters:
//   - dst: Destination image, usually a noise background.
//   - face: The face to rasterize with. It must be the face m describes.
//   - m: Metrics used for cursor advancement.
//   - text: The string to paint.
//   - c: Canvas geometry providing the baseline origin.
//   - col: Text colour.
//
// Returns an error if the advance of any rune cannot be determined. Runes
// painted before the failure remain on dst.
func PaintText(dst draw.Image, face font.Face, m boxes.Metrics, text string, c boxes.Canvas, col color.Color) error {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: face,
	}

	x := float64(c.BaselineX)
	y := fixed.I(c.BaselineY)
	for i, r := range []rune(text) {
		advance, err := m.Advance(r)
		if err != nil {
			return fmt.Errorf("failed to paint %q at index %d: %w", r, i, err)
		}
		d.Dot = fixed.Point26_6{X: toFixed(x), Y: y}
		d.DrawString(string(r))
		x += advance
	}
	return nil
}

// toFixed converts a pixel position to 26.6 fixed point, rounding to the
// nearest 1/64 pixel.
func toFixed(v float64) fixed.Int26_6 {
	return fixed.Int26_6(math.Round(v * 64))
}
