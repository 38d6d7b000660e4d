package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/tesstrain-gen/internal/boxes"
)

// OverlayStyle controls how character boxes are outlined.
type OverlayStyle struct {
	// Color outlines every box when Cycle is false.
	Color color.RGBA

	// Cycle gives consecutive boxes different hues so adjacent boxes are
	// easy to tell apart.
	Cycle bool
}

// DefaultOverlayStyle outlines boxes in opaque red.
var DefaultOverlayStyle = OverlayStyle{Color: color.RGBA{255, 0, 0, 255}}

// OverlayBoxes returns a copy of img with a one pixel outline around every box.
//
// Boxes are given in bottom-left-origin space and converted back to image
// coordinates with the canvas height: the outline spans rows Height-Top
// through Height-Bottom and columns Left through Right, both inclusive.
// Pixels falling outside the image are skipped.
func OverlayBoxes(img image.Image, bxs []boxes.CharBox, c boxes.Canvas, style OverlayStyle) *image.RGBA {
	bounds := img.Bounds()
	result := image.NewRGBA(bounds)
	draw.Draw(result, bounds, img, bounds.Min, draw.Src)

	for i, b := range bxs {
		col := style.Color
		if style.Cycle {
			col = cycleColor(i)
		}
		r := b.Rect(c).Add(bounds.Min)
		drawOutline(result, r.Min.X, r.Min.Y, r.Max.X, r.Max.Y, col)
	}
	return result
}

// drawOutline draws the inclusive rectangle (x1,y1)-(x2,y2).
func drawOutline(img *image.RGBA, x1, y1, x2, y2 int, col color.RGBA) {
	bounds := img.Bounds()
	set := func(x, y int) {
		if x >= bounds.Min.X && x < bounds.Max.X && y >= bounds.Min.Y && y < bounds.Max.Y {
			img.SetRGBA(x, y, col)
		}
	}

	for x := x1; x <= x2; x++ {
		set(x, y1)
		set(x, y2)
	}
	for y := y1; y <= y2; y++ {
		set(x1, y)
		set(x2, y)
	}
}

// cycleColor picks a saturated colour for box i, stepping the hue by a
// golden-angle increment.
func cycleColor(i int) color.RGBA {
	hue := float64((i * 137) % 360)
	r, g, b := colorful.Hsv(hue, 0.9, 0.85).Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// ParseHexColor parses "#RRGGBB" or "#RRGGBBAA". The leading '#' is optional.
func ParseHexColor(hex string) (color.RGBA, error) {
	hex = strings.TrimSpace(hex)
	if hex == "" {
		return color.RGBA{}, fmt.Errorf("empty color string")
	}
	hex = strings.TrimPrefix(hex, "#")

	alpha := uint8(255)
	switch len(hex) {
	case 6:
	case 8:
		a, err := strconv.ParseUint(hex[6:], 16, 8)
		if err != nil {
			return color.RGBA{}, fmt.Errorf("invalid alpha in %q: %w", hex, err)
		}
		alpha = uint8(a)
		hex = hex[:6]
	default:
		return color.RGBA{}, fmt.Errorf("invalid hex color length %d", len(hex))
	}

	c, err := colorful.Hex("#" + hex)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid hex color %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	// color.RGBA is alpha-premultiplied.
	return color.RGBA{
		R: uint8(uint16(r) * uint16(alpha) / 255),
		G: uint8(uint16(g) * uint16(alpha) / 255),
		B: uint8(uint16(b) * uint16(alpha) / 255),
		A: alpha,
	}, nil
}
