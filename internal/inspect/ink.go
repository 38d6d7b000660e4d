// Package inspect measures rendered glyph ink and derives box corrections.
//
// Fonts whose outlines overshoot or undershoot their advance box produce
// character boxes that do not hug the painted glyph. Suggest renders each
// character alone on a clean canvas, finds the tight bounds of its ink and
// returns the margins that move the computed box onto that ink under the
// profile's convention. The result can be pasted into a profile's "chars"
// table.
package inspect

import (
	"image"

	"github.com/disintegration/imaging"
)

// DefaultThreshold is the gray level below which a pixel counts as ink.
const DefaultThreshold = 128

// InkBounds returns the tight bounds of the pixels within rect whose gray
// level is below threshold. The rectangle uses canvas coordinates with an
// exclusive Max. ok is false when rect holds no ink.
func InkBounds(img image.Image, rect image.Rectangle, threshold uint8) (bounds image.Rectangle, ok bool) {
	rect = rect.Intersect(img.Bounds())
	if rect.Empty() {
		return image.Rectangle{}, false
	}

	gray := imaging.Grayscale(imaging.Crop(img, rect))
	gb := gray.Bounds()

	minX, minY := gb.Max.X, gb.Max.Y
	maxX, maxY := gb.Min.X-1, gb.Min.Y-1
	for y := gb.Min.Y; y < gb.Max.Y; y++ {
		for x := gb.Min.X; x < gb.Max.X; x++ {
			// Grayscale stores the same value in R, G and B.
			if gray.Pix[gray.PixOffset(x, y)] >= threshold {
				continue
			}
			if x < minX {
				minX = x
			}
			if x > maxX {
				maxX = x
			}
			if y < minY {
				minY = y
			}
			if y > maxY {
				maxY = y
			}
		}
	}

	if maxX < minX {
		return image.Rectangle{}, false
	}

	// Crop re-bases the image at the origin.
	return image.Rect(minX, minY, maxX+1, maxY+1).Add(rect.Min), true
}
