package fonts

import (
	"fmt"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// MissingGlyphError reports a character the font has no glyph for.
type MissingGlyphError struct {
	Char rune
}

func (e *MissingGlyphError) Error() string {
	return fmt.Sprintf("font has no glyph for %q (U+%04X)", e.Char, e.Char)
}

// Face is one font at one size, ready for measuring and painting.
// It implements boxes.Metrics. A Face is not safe for concurrent use.
type Face struct {
	face     font.Face
	hasGlyph func(rune) (bool, error)
	ascent   float64
	descent  float64
}

func newFace(face font.Face, hasGlyph func(rune) (bool, error)) *Face {
	m := face.Metrics()
	return &Face{
		face:     face,
		hasGlyph: hasGlyph,
		ascent:   toFloat(m.Ascent),
		descent:  toFloat(m.Descent),
	}
}

// Font returns the underlying face for drawing.
func (f *Face) Font() font.Face {
	return f.face
}

// Ascent returns the distance from the baseline to the top of the font, in pixels.
func (f *Face) Ascent() float64 {
	return f.ascent
}

// Descent returns the distance from the baseline to the bottom of the font, in pixels.
func (f *Face) Descent() float64 {
	return f.descent
}

// Advance returns the advance width of r in pixels. Characters that map to
// the font's .notdef glyph yield a *MissingGlyphError rather than the width of
// the replacement box.
func (f *Face) Advance(r rune) (float64, error) {
	ok, err := f.hasGlyph(r)
	if err != nil {
		return 0, fmt.Errorf("failed to look up glyph %q: %w", r, err)
	}
	if !ok {
		return 0, &MissingGlyphError{Char: r}
	}

	adv, ok := f.face.GlyphAdvance(r)
	if !ok {
		return 0, fmt.Errorf("failed to read advance of %q", r)
	}
	return toFloat(adv), nil
}

// Close releases the face.
func (f *Face) Close() error {
	return f.face.Close()
}

func toFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
