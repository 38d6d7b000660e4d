package config

import (
	"fmt"
	"unicode/utf8"

	"github.com/ironsheep/tesstrain-gen/internal/boxes"
	"github.com/ironsheep/tesstrain-gen/internal/imaging"
)

// Rasterizer backends.
const (
	RasterizerOpenType = "opentype"
	RasterizerFreeType = "freetype"
)

// Hinting modes.
const (
	HintingNone = "none"
	HintingFull = "full"
)

// DefaultTextColor is used when a profile does not set a colour.
const DefaultTextColor = "#000000"

// FontProfile identifies a font at a pixel size together with its box
// corrections. A profile is read-only once loaded.
type FontProfile struct {
	// Path to an OpenType or TrueType font file.
	Path string `json:"path"`

	// Size in pixels. Fonts are rasterized at 72 DPI, so this equals the point size.
	Size float64 `json:"size"`

	// Rasterizer is "opentype" (default) or "freetype" (TrueType outlines only).
	Rasterizer string `json:"rasterizer,omitempty"`

	// Hinting is "none" (default) or "full".
	Hinting string `json:"hinting,omitempty"`

	// Color is the text colour as "#RRGGBB" or "#RRGGBBAA".
	Color string `json:"color,omitempty"`

	// Convention states how Right and Bottom corrections are applied.
	// Required when any correction is non-zero.
	Convention *boxes.MarginConvention `json:"convention,omitempty"`

	// Margins is the uniform correction applied to characters missing from Chars.
	Margins *boxes.Margins `json:"margins,omitempty"`

	// Chars maps a single character to its correction.
	Chars map[string]boxes.Margins `json:"chars,omitempty"`
}

// Name returns a short label for logs.
func (p FontProfile) Name() string {
	return fmt.Sprintf("%s@%g", p.Path, p.Size)
}

// RasterizerName returns the configured rasterizer or the default.
func (p FontProfile) RasterizerName() string {
	if p.Rasterizer == "" {
		return RasterizerOpenType
	}
	return p.Rasterizer
}

// HintingName returns the configured hinting mode or the default.
func (p FontProfile) HintingName() string {
	if p.Hinting == "" {
		return HintingNone
	}
	return p.Hinting
}

// TextColor returns the configured text colour or the default.
func (p FontProfile) TextColor() string {
	if p.Color == "" {
		return DefaultTextColor
	}
	return p.Color
}

// MarginConvention returns the profile's convention. Profiles without
// corrections report Subtractive; both conventions agree on zero offsets.
func (p FontProfile) MarginConvention() boxes.MarginConvention {
	if p.Convention == nil {
		return boxes.Subtractive
	}
	return *p.Convention
}

// MarginTable builds the per-character correction table. Call Validate first;
// keys that are not a single character are skipped.
func (p FontProfile) MarginTable() boxes.MarginTable {
	table := boxes.MarginTable{Chars: make(map[rune]boxes.Margins, len(p.Chars))}
	if p.Margins != nil {
		table.Default = *p.Margins
	}
	for key, m := range p.Chars {
		r, size := utf8.DecodeRuneInString(key)
		if size == 0 || size != len(key) {
			continue
		}
		table.Chars[r] = m
	}
	return table
}

// Validate checks a single profile.
func (p FontProfile) Validate() error {
	if p.Path == "" {
		return &ConfigError{Field: "path", Reason: "must not be empty"}
	}
	if p.Size <= 0 {
		return &ConfigError{Field: "size", Reason: fmt.Sprintf("%g must be positive", p.Size)}
	}

	switch p.RasterizerName() {
	case RasterizerOpenType, RasterizerFreeType:
	default:
		return &ConfigError{Field: "rasterizer", Reason: fmt.Sprintf("unknown rasterizer %q", p.Rasterizer)}
	}

	switch p.HintingName() {
	case HintingNone, HintingFull:
	default:
		return &ConfigError{Field: "hinting", Reason: fmt.Sprintf("unknown hinting %q", p.Hinting)}
	}

	if _, err := imaging.ParseHexColor(p.TextColor()); err != nil {
		return &ConfigError{Field: "color", Reason: "invalid colour", Err: err}
	}

	for key := range p.Chars {
		if utf8.RuneCountInString(key) != 1 || !utf8.ValidString(key) {
			return &ConfigError{Field: "chars", Reason: fmt.Sprintf("key %q must be exactly one character", key)}
		}
	}

	if p.Convention != nil && !p.Convention.Valid() {
		return &ConfigError{Field: "convention", Reason: fmt.Sprintf("unknown convention %d", int(*p.Convention))}
	}
	if p.Convention == nil && !p.MarginTable().IsZero() {
		return &ConfigError{Field: "convention", Reason: "required when margins are set (subtractive or additive)"}
	}

	return nil
}
