package boxes

import (
	"fmt"
	"strings"
)

// Margins is a box correction in pixels. How Right and Bottom are applied
// depends on the MarginConvention of the font that owns the margins.
type Margins struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
}

// IsZero reports whether all four offsets are zero.
func (m Margins) IsZero() bool {
	return m == Margins{}
}

// MarginConvention selects the sign applied to the right and bottom offsets.
type MarginConvention int

const (
	// Subtractive shrinks the box as Right grows and extends it downward as Bottom grows.
	Subtractive MarginConvention = iota
	// Additive extends the box as Right grows and raises its bottom as Bottom grows.
	Additive
)

// Valid reports whether c is a known convention.
func (c MarginConvention) Valid() bool {
	return c == Subtractive || c == Additive
}

func (c MarginConvention) sign() float64 {
	if c == Additive {
		return 1
	}
	return -1
}

func (c MarginConvention) String() string {
	switch c {
	case Subtractive:
		return "subtractive"
	case Additive:
		return "additive"
	default:
		return fmt.Sprintf("MarginConvention(%d)", int(c))
	}
}

// ParseMarginConvention parses "subtractive" or "additive" (case-insensitive).
func ParseMarginConvention(s string) (MarginConvention, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "subtractive":
		return Subtractive, nil
	case "additive":
		return Additive, nil
	default:
		return 0, fmt.Errorf("unknown margin convention %q (want subtractive or additive)", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (c MarginConvention) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("unknown margin convention %d", int(c))
	}
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *MarginConvention) UnmarshalText(text []byte) error {
	v, err := ParseMarginConvention(string(text))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// MarginPolicy returns the correction for a character.
type MarginPolicy interface {
	Margins(r rune) Margins
}

// MarginFunc adapts a function to MarginPolicy.
type MarginFunc func(r rune) Margins

// Margins calls f(r).
func (f MarginFunc) Margins(r rune) Margins {
	return f(r)
}

// NoMargins applies no correction to any character.
var NoMargins MarginPolicy = MarginFunc(func(rune) Margins { return Margins{} })

// MarginTable is a per-character correction table with a uniform fallback.
// Characters missing from Chars use Default.
type MarginTable struct {
	Default Margins
	Chars   map[rune]Margins
}

// Margins returns the override for r, or the table default.
func (t MarginTable) Margins(r rune) Margins {
	if m, ok := t.Chars[r]; ok {
		return m
	}
	return t.Default
}

// IsZero reports whether the table applies no correction to any character.
func (t MarginTable) IsZero() bool {
	if !t.Default.IsZero() {
		return false
	}
	for _, m := range t.Chars {
		if !m.IsZero() {
			return false
		}
	}
	return true
}
