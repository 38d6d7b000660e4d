package boxes

import (
	"fmt"
	"image"
)

// Canvas describes the fixed pixel geometry shared by every sample in a batch.
type Canvas struct {
	// Width and Height are the image dimensions in pixels.
	Width  int `json:"width"`
	Height int `json:"height"`

	// BaselineX and BaselineY locate the start of the text baseline,
	// measured from the top-left corner.
	BaselineX int `json:"baseline_x"`
	BaselineY int `json:"baseline_y"`
}

// DefaultCanvas is the 320x100 canvas with a (22, 26) baseline used for
// box-file-accurate training data.
var DefaultCanvas = Canvas{Width: 320, Height: 100, BaselineX: 22, BaselineY: 26}

// Validate reports whether the canvas has positive dimensions and a baseline
// origin inside the image.
func (c Canvas) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("canvas dimensions must be positive, got %dx%d", c.Width, c.Height)
	}
	if c.BaselineX < 0 || c.BaselineX >= c.Width {
		return fmt.Errorf("baseline x %d outside canvas width %d", c.BaselineX, c.Width)
	}
	if c.BaselineY < 0 || c.BaselineY >= c.Height {
		return fmt.Errorf("baseline y %d outside canvas height %d", c.BaselineY, c.Height)
	}
	return nil
}

// Metrics is the font information the engine needs. Values are in canvas pixels.
type Metrics interface {
	// Ascent is the distance from the baseline to the top of the font's design extent.
	Ascent() float64
	// Descent is the distance from the baseline to the bottom of the design extent.
	Descent() float64
	// Advance returns the horizontal advance width of r. An error means the
	// font cannot render r.
	Advance(r rune) (float64, error)
}

// CharBox is the bounding box of one character in bottom-left-origin space.
type CharBox struct {
	Char   rune `json:"char"`
	Left   int  `json:"left"`
	Bottom int  `json:"bottom"`
	Right  int  `json:"right"`
	Top    int  `json:"top"`
}

// Clip clamps every coordinate into the canvas bounds. Clipping an already
// clipped box returns it unchanged.
func (b CharBox) Clip(c Canvas) CharBox {
	b.Left = clampInt(b.Left, 0, c.Width)
	b.Right = clampInt(b.Right, 0, c.Width)
	b.Bottom = clampInt(b.Bottom, 0, c.Height)
	b.Top = clampInt(b.Top, 0, c.Height)
	return b
}

// Rect converts the box back to canvas (top-left-origin) space.
func (b CharBox) Rect(c Canvas) image.Rectangle {
	return image.Rect(b.Left, c.Height-b.Top, b.Right, c.Height-b.Bottom)
}

// GlyphError reports a character whose metrics could not be looked up.
type GlyphError struct {
	Char  rune
	Index int // rune index within the text
	Err   error
}

func (e *GlyphError) Error() string {
	return fmt.Sprintf("glyph %q at index %d: %v", e.Char, e.Index, e.Err)
}

func (e *GlyphError) Unwrap() error {
	return e.Err
}

// Compute returns the bounding box of every rune of text, in order.
//
// The cursor starts at the canvas baseline origin and advances by each rune's
// unmodified advance width; margins only shape the emitted boxes. An empty text
// yields an empty slice. If any rune's metrics cannot be read, Compute returns a
// *GlyphError and no boxes.
func Compute(text string, m Metrics, c Canvas, conv MarginConvention, p MarginPolicy) ([]CharBox, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if !conv.Valid() {
		return nil, fmt.Errorf("unknown margin convention %d", conv)
	}
	if p == nil {
		p = NoMargins
	}

	ascent := m.Ascent()
	descent := m.Descent()
	width := float64(c.Width)
	height := float64(c.Height)

	result := make([]CharBox, 0, len(text))
	x := float64(c.BaselineX)
	i := 0
	for _, r := range text {
		mg := p.Margins(r)

		advance, err := m.Advance(r)
		if err != nil {
			return nil, &GlyphError{Char: r, Index: i, Err: err}
		}

		left := x + mg.Left
		right := x + advance + conv.sign()*mg.Right
		yTop := float64(c.BaselineY) - ascent - mg.Top
		yBottom := float64(c.BaselineY) + descent - conv.sign()*mg.Bottom

		top := height - yTop
		bottom := height - yBottom

		result = append(result, CharBox{
			Char:   r,
			Left:   int(clampFloat(left, 0, width)),
			Bottom: int(clampFloat(bottom, 0, height)),
			Right:  int(clampFloat(right, 0, width)),
			Top:    int(clampFloat(top, 0, height)),
		})

		x += advance
		i++
	}

	return result, nil
}

func clampFloat(val, min, max float64) float64 {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

func clampInt(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
