// Package synth turns a font profile and a text into a training sample.
//
// Render is the single rendering pipeline: it opens one face for the profile,
// computes the character boxes from that face's metrics, paints the text with
// the same face on a noise background and optionally outlines the boxes. Using
// one face for both steps keeps painted glyphs and boxes consistent.
package synth

import (
	"errors"
	"fmt"
	"image"
	"math/rand"

	"github.com/ironsheep/tesstrain-gen/internal/boxes"
	"github.com/ironsheep/tesstrain-gen/internal/config"
	"github.com/ironsheep/tesstrain-gen/internal/fonts"
	"github.com/ironsheep/tesstrain-gen/internal/imaging"
)

// Sample is one rendered training example. It is not modified after Render returns.
type Sample struct {
	ID    string
	Text  string
	Boxes []boxes.CharBox
	Image *image.RGBA
	Font  string
}

// FontRenderError reports a failure attributable to a font: the face could not
// be opened or a character has no usable glyph.
type FontRenderError struct {
	Font string
	Char rune // zero when the failure is not tied to a character
	Err  error
}

func (e *FontRenderError) Error() string {
	if e.Char != 0 {
		return fmt.Sprintf("font %s cannot render %q: %v", e.Font, e.Char, e.Err)
	}
	return fmt.Sprintf("font %s: %v", e.Font, e.Err)
}

func (e *FontRenderError) Unwrap() error {
	return e.Err
}

// Synthesizer renders samples on a fixed canvas.
type Synthesizer struct {
	Fonts  *fonts.Registry
	Canvas boxes.Canvas
	Noise  imaging.NoiseOptions

	// Debug outlines each computed box on the image.
	Debug   bool
	Overlay imaging.OverlayStyle
}

// New returns a Synthesizer for cfg's canvas and noise settings.
func New(reg *fonts.Registry, cfg *config.Config) *Synthesizer {
	return &Synthesizer{
		Fonts:   reg,
		Canvas:  cfg.Canvas,
		Noise:   cfg.Noise,
		Overlay: imaging.DefaultOverlayStyle,
	}
}

// Render produces the sample for text in profile's font. rng drives the
// background noise and must not be shared with other goroutines.
func (s *Synthesizer) Render(profile config.FontProfile, id, text string, rng *rand.Rand) (*Sample, error) {
	bg := imaging.NoiseBackground(s.Canvas.Width, s.Canvas.Height, s.Noise, rng)
	return s.render(profile, id, text, bg, s.Debug)
}

// RenderClean produces the sample on a plain white background without
// overlays, for measuring glyph ink.
func (s *Synthesizer) RenderClean(profile config.FontProfile, text string) (*Sample, error) {
	bg := imaging.WhiteBackground(s.Canvas.Width, s.Canvas.Height)
	return s.render(profile, "", text, bg, false)
}

func (s *Synthesizer) render(profile config.FontProfile, id, text string, bg *image.RGBA, debug bool) (*Sample, error) {
	if err := s.Canvas.Validate(); err != nil {
		return nil, err
	}
	col, err := imaging.ParseHexColor(profile.TextColor())
	if err != nil {
		return nil, fmt.Errorf("invalid text color for %s: %w", profile.Path, err)
	}

	face, err := s.Fonts.Open(profile)
	if err != nil {
		return nil, &FontRenderError{Font: profile.Path, Err: err}
	}
	defer face.Close()

	bxs, err := boxes.Compute(text, face, s.Canvas, profile.MarginConvention(), profile.MarginTable())
	if err != nil {
		return nil, fontError(profile, err)
	}

	if err := imaging.PaintText(bg, face.Font(), face, text, s.Canvas, col); err != nil {
		return nil, fontError(profile, err)
	}

	img := bg
	if debug {
		img = imaging.OverlayBoxes(bg, bxs, s.Canvas, s.Overlay)
	}

	return &Sample{
		ID:    id,
		Text:  text,
		Boxes: bxs,
		Image: img,
		Font:  profile.Path,
	}, nil
}

func fontError(profile config.FontProfile, err error) error {
	var gerr *boxes.GlyphError
	if errors.As(err, &gerr) {
		return &FontRenderError{Font: profile.Path, Char: gerr.Char, Err: err}
	}
	var missing *fonts.MissingGlyphError
	if errors.As(err, &missing) {
		return &FontRenderError{Font: profile.Path, Char: missing.Char, Err: err}
	}
	return &FontRenderError{Font: profile.Path, Err: err}
}
