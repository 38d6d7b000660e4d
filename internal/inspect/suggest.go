package inspect

import (
	"fmt"
	"image"
	"math"
	"sort"

	"github.com/ironsheep/tesstrain-gen/internal/boxes"
	"github.com/ironsheep/tesstrain-gen/internal/config"
	"github.com/ironsheep/tesstrain-gen/internal/synth"
)

// Suggestion is the measured correction for one character.
type Suggestion struct {
	Char rune `json:"char"`

	// Ink is the tight bounds of the painted glyph in canvas coordinates.
	Ink image.Rectangle `json:"ink"`

	// Margins moves the uncorrected box onto Ink under the profile's convention.
	Margins boxes.Margins `json:"margins"`

	// Empty marks characters that paint no ink, such as a space.
	Empty bool `json:"empty,omitempty"`
}

// Suggest measures every distinct character of charset in profile's font and
// returns one suggestion per character, in charset order. threshold is the
// ink gray level; zero selects DefaultThreshold.
func Suggest(s *synth.Synthesizer, profile config.FontProfile, charset string, threshold uint8) ([]Suggestion, error) {
	if threshold == 0 {
		threshold = DefaultThreshold
	}

	face, err := s.Fonts.Open(profile)
	if err != nil {
		return nil, &synth.FontRenderError{Font: profile.Path, Err: err}
	}
	defer face.Close()

	c := s.Canvas
	conv := profile.MarginConvention()
	sign := 1.0
	if conv == boxes.Subtractive {
		sign = -1
	}

	x := float64(c.BaselineX)
	y0 := float64(c.BaselineY)
	height := float64(c.Height)
	ascent := face.Ascent()
	descent := face.Descent()

	seen := make(map[rune]bool)
	var out []Suggestion
	for _, r := range charset {
		if seen[r] {
			continue
		}
		seen[r] = true

		advance, err := face.Advance(r)
		if err != nil {
			return nil, &synth.FontRenderError{Font: profile.Path, Char: r, Err: err}
		}

		sample, err := s.RenderClean(profile, string(r))
		if err != nil {
			return nil, err
		}

		ink, ok := InkBounds(sample.Image, sample.Image.Bounds(), threshold)
		if !ok {
			out = append(out, Suggestion{Char: r, Empty: true})
			continue
		}

		// Each delta is what the corresponding box coordinate must gain for
		// the truncated box edge to land on the ink edge.
		dl := fit(float64(ink.Min.X)-x, ink.Min.X, func(d float64) float64 {
			return x + d
		})
		dr := fit(float64(ink.Max.X)-x-advance, ink.Max.X, func(d float64) float64 {
			return x + advance + d
		})
		dt := fit(y0-ascent-float64(ink.Min.Y), c.Height-ink.Min.Y, func(d float64) float64 {
			return height - (y0 - ascent - d)
		})
		db := fit(y0+descent-float64(ink.Max.Y), c.Height-ink.Max.Y, func(d float64) float64 {
			return height - (y0 + descent - d)
		})

		out = append(out, Suggestion{
			Char: r,
			Ink:  ink,
			Margins: boxes.Margins{
				Left:   dl,
				Top:    dt,
				Right:  zero(sign * dr),
				Bottom: zero(sign * db),
			},
		})
	}
	return out, nil
}

// fit rounds d to two decimals, then nudges it up until eval(d) truncates to
// target.
func fit(d float64, target int, eval func(float64) float64) float64 {
	r := math.Round(d*100) / 100
	for i := 0; i < 3 && eval(r) < float64(target); i++ {
		r = math.Round((r+0.01)*100) / 100
	}
	return zero(r)
}

// zero normalizes negative zero so that tables print "0".
func zero(v float64) float64 {
	if v == 0 {
		return 0
	}
	return v
}

// SuggestionTable converts suggestions into a profile "chars" table.
// Empty characters are left out.
func SuggestionTable(suggestions []Suggestion) map[string]boxes.Margins {
	table := make(map[string]boxes.Margins, len(suggestions))
	for _, s := range suggestions {
		if s.Empty {
			continue
		}
		table[string(s.Char)] = s.Margins
	}
	return table
}

// CorrectedProfile returns profile with its convention made explicit and its
// per-character table replaced by the suggestions. The uniform margins are
// cleared so that characters outside the table keep their raw boxes.
func CorrectedProfile(profile config.FontProfile, suggestions []Suggestion) config.FontProfile {
	conv := profile.MarginConvention()
	profile.Convention = &conv
	profile.Margins = nil
	profile.Chars = SuggestionTable(suggestions)
	return profile
}

// Summary returns one human-readable line per suggestion, sorted by character.
func Summary(suggestions []Suggestion) []string {
	sorted := append([]Suggestion(nil), suggestions...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Char < sorted[j].Char })

	lines := make([]string, 0, len(sorted))
	for _, s := range sorted {
		if s.Empty {
			lines = append(lines, fmt.Sprintf("%q: no ink", s.Char))
			continue
		}
		m := s.Margins
		lines = append(lines, fmt.Sprintf("%q: ink %v margins left=%g top=%g right=%g bottom=%g",
			s.Char, s.Ink, m.Left, m.Top, m.Right, m.Bottom))
	}
	return lines
}
