// Package fonts loads font files and exposes their metrics to the box engine.
//
// A Registry parses each font file once and keeps the parsed outlines for the
// rest of the batch. Open creates a fresh Face for one render: faces carry
// scratch buffers and must not be shared between goroutines, while the parsed
// fonts behind them are read-only and shared freely.
//
// Two rasterizers are available:
//   - "opentype": golang.org/x/image/font/opentype, handles TrueType and CFF
//     (.otf) outlines.
//   - "freetype": github.com/golang/freetype/truetype, TrueType outlines only.
//
// Sizes are pixel sizes; faces are created at 72 DPI so one point is one pixel.
package fonts

import (
	"fmt"
	"os"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"

	"github.com/ironsheep/tesstrain-gen/internal/config"
)

const dpi = 72

// parsedFont is a font file parsed by one of the rasterizer backends.
type parsedFont struct {
	otf *sfnt.Font
	ttf *truetype.Font
}

type registryKey struct {
	rasterizer string
	path       string
}

// Registry caches parsed font files. It is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	fonts map[registryKey]*parsedFont
	read  func(path string) ([]byte, error)
}

// NewRegistry returns an empty registry reading font files from disk.
func NewRegistry() *Registry {
	return &Registry{
		fonts: make(map[registryKey]*parsedFont),
		read:  os.ReadFile,
	}
}

// Register adds an in-memory font under path, replacing any cached entry.
// It is used for embedded fonts and tests.
func (r *Registry) Register(path, rasterizer string, data []byte) error {
	pf, err := parse(rasterizer, data)
	if err != nil {
		return fmt.Errorf("failed to parse font %s: %w", path, err)
	}
	r.mu.Lock()
	r.fonts[registryKey{rasterizer, path}] = pf
	r.mu.Unlock()
	return nil
}

// Preload parses the fonts of every profile so that unreadable fonts are
// reported before any work starts.
func (r *Registry) Preload(profiles []config.FontProfile) error {
	for _, p := range profiles {
		if _, err := r.load(p.RasterizerName(), p.Path); err != nil {
			return err
		}
	}
	return nil
}

func (r *Registry) load(rasterizer, path string) (*parsedFont, error) {
	key := registryKey{rasterizer, path}

	r.mu.RLock()
	if pf, ok := r.fonts[key]; ok {
		r.mu.RUnlock()
		return pf, nil
	}
	r.mu.RUnlock()

	data, err := r.read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read font: %w", err)
	}
	pf, err := parse(rasterizer, data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font %s: %w", path, err)
	}

	r.mu.Lock()
	if existing, ok := r.fonts[key]; ok {
		pf = existing
	} else {
		r.fonts[key] = pf
	}
	r.mu.Unlock()

	return pf, nil
}

func parse(rasterizer string, data []byte) (*parsedFont, error) {
	switch rasterizer {
	case config.RasterizerOpenType, "":
		f, err := opentype.Parse(data)
		if err != nil {
			return nil, err
		}
		return &parsedFont{otf: f}, nil
	case config.RasterizerFreeType:
		f, err := truetype.Parse(data)
		if err != nil {
			return nil, err
		}
		return &parsedFont{ttf: f}, nil
	default:
		return nil, fmt.Errorf("unknown rasterizer %q", rasterizer)
	}
}

// Open creates a face for the profile's font and size.
func (r *Registry) Open(p config.FontProfile) (*Face, error) {
	if p.Size <= 0 {
		return nil, fmt.Errorf("invalid font size %g", p.Size)
	}
	pf, err := r.load(p.RasterizerName(), p.Path)
	if err != nil {
		return nil, err
	}

	hinting := font.HintingNone
	if p.HintingName() == config.HintingFull {
		hinting = font.HintingFull
	}

	if pf.ttf != nil {
		face := truetype.NewFace(pf.ttf, &truetype.Options{
			Size:    p.Size,
			DPI:     dpi,
			Hinting: hinting,
		})
		return newFace(face, func(c rune) (bool, error) {
			return pf.ttf.Index(c) != 0, nil
		}), nil
	}

	face, err := opentype.NewFace(pf.otf, &opentype.FaceOptions{
		Size:    p.Size,
		DPI:     dpi,
		Hinting: hinting,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create face: %w", err)
	}
	var buf sfnt.Buffer
	return newFace(face, func(c rune) (bool, error) {
		idx, err := pf.otf.GlyphIndex(&buf, c)
		if err != nil {
			return false, err
		}
		return idx != 0, nil
	}), nil
}
