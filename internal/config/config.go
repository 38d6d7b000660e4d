// Package config loads and validates the run configuration: canvas geometry,
// background noise, output naming and the font profiles used by a batch.
//
// The configuration is a JSON document. Fields left out of the document keep
// the values from Default, so a minimal file only needs to list its fonts:
//
//	{
//	  "fonts": [
//	    {"path": "fonts/Xfont80.otf", "size": 14},
//	    {"path": "fonts/T_win15.otf", "size": 8, "convention": "additive",
//	     "chars": {"1": {"left": 2, "top": 0, "right": -1, "bottom": 0}}}
//	  ]
//	}
//
// Every validation failure is reported as a *ConfigError so callers can tell
// configuration problems apart from runtime failures.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ironsheep/tesstrain-gen/internal/boxes"
	"github.com/ironsheep/tesstrain-gen/internal/imaging"
)

// ConfigError reports an invalid configuration value.
type ConfigError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid config %s: %s: %v", e.Field, e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid config %s: %s", e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Config is a complete run configuration.
type Config struct {
	Canvas boxes.Canvas         `json:"canvas"`
	Noise  imaging.NoiseOptions `json:"noise"`

	// ImageFormat is the raster file extension, ".tif" or ".png".
	ImageFormat string `json:"image_format"`

	// Prefix and IDWidth form sequential stems such as "eng_000042".
	Prefix  string `json:"prefix"`
	IDWidth int    `json:"id_width"`

	Fonts []FontProfile `json:"fonts"`
}

// Default returns the configuration used for box-file-accurate training data:
// a 320x100 canvas with its baseline at (22, 26), noise in [205, 255] blurred
// with radius 1, TIFF output and "eng_%06d" stems. It has no fonts.
func Default() *Config {
	return &Config{
		Canvas:      boxes.DefaultCanvas,
		Noise:       imaging.NoiseOptions{Min: 205, Max: 255, BlurRadius: 1},
		ImageFormat: ".tif",
		Prefix:      "eng",
		IDWidth:     6,
	}
}

// Load reads a JSON configuration file over Default and validates it.
// Relative font paths are resolved against the directory of the file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{Field: "file", Reason: "failed to read " + path, Err: err}
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}

	base := filepath.Dir(path)
	for i := range cfg.Fonts {
		if cfg.Fonts[i].Path != "" && !filepath.IsAbs(cfg.Fonts[i].Path) {
			cfg.Fonts[i].Path = filepath.Join(base, cfg.Fonts[i].Path)
		}
	}

	return cfg, nil
}

// Parse decodes a JSON configuration over Default and validates it.
// Unknown fields are rejected so that misspelled margin keys do not pass silently.
func Parse(data []byte) (*Config, error) {
	cfg := Default()

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return nil, &ConfigError{Field: "file", Reason: "failed to decode JSON", Err: err}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the whole configuration and returns the first problem found.
func (c *Config) Validate() error {
	if err := c.Canvas.Validate(); err != nil {
		return &ConfigError{Field: "canvas", Reason: "invalid geometry", Err: err}
	}

	if c.Noise.Min < 0 || c.Noise.Max > 255 || c.Noise.Min > c.Noise.Max {
		return &ConfigError{
			Field:  "noise",
			Reason: fmt.Sprintf("intensity range [%d, %d] must lie within [0, 255]", c.Noise.Min, c.Noise.Max),
		}
	}
	if c.Noise.BlurRadius < 0 {
		return &ConfigError{Field: "noise.blur_radius", Reason: "must not be negative"}
	}

	if !imaging.SupportedFormat(c.ImageFormat) {
		return &ConfigError{Field: "image_format", Reason: fmt.Sprintf("unsupported format %q (want .tif or .png)", c.ImageFormat)}
	}

	if c.Prefix == "" || strings.ContainsAny(c.Prefix, `/\`) {
		return &ConfigError{Field: "prefix", Reason: fmt.Sprintf("%q is not a valid file name prefix", c.Prefix)}
	}
	if c.IDWidth < 1 || c.IDWidth > 18 {
		return &ConfigError{Field: "id_width", Reason: fmt.Sprintf("%d out of range [1, 18]", c.IDWidth)}
	}

	for i := range c.Fonts {
		if err := c.Fonts[i].Validate(); err != nil {
			return withFontIndex(err, i)
		}
	}
	return nil
}

// RequireFonts returns a *ConfigError when no font profiles are configured.
func (c *Config) RequireFonts() error {
	if len(c.Fonts) == 0 {
		return &ConfigError{Field: "fonts", Reason: "at least one font profile is required"}
	}
	return nil
}

func withFontIndex(err error, i int) error {
	if cerr, ok := err.(*ConfigError); ok {
		return &ConfigError{
			Field:  fmt.Sprintf("fonts[%d].%s", i, cerr.Field),
			Reason: cerr.Reason,
			Err:    cerr.Err,
		}
	}
	return err
}
