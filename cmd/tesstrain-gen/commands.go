package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ironsheep/tesstrain-gen/internal/batch"
	"github.com/ironsheep/tesstrain-gen/internal/boxes"
	"github.com/ironsheep/tesstrain-gen/internal/config"
	"github.com/ironsheep/tesstrain-gen/internal/dataset"
	"github.com/ironsheep/tesstrain-gen/internal/fonts"
	"github.com/ironsheep/tesstrain-gen/internal/imaging"
	"github.com/ironsheep/tesstrain-gen/internal/inspect"
	"github.com/ironsheep/tesstrain-gen/internal/labels"
	"github.com/ironsheep/tesstrain-gen/internal/synth"
)

// loadConfig loads the configuration file and checks it names fonts.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(*configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.RequireFonts(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newSynthesizer parses every configured font up front so that a missing or
// corrupt font file fails the run before any sample is written.
func newSynthesizer(cfg *config.Config) (*synth.Synthesizer, error) {
	reg := fonts.NewRegistry()
	if err := reg.Preload(cfg.Fonts); err != nil {
		return nil, &config.ConfigError{Field: "fonts", Reason: "failed to load font", Err: err}
	}
	return synth.New(reg, cfg), nil
}

// splitList splits a comma-separated flag value, dropping empty items.
func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func runGenerate(ctx context.Context, debug bool) error {
	if *genQuantity < 1 {
		return &config.ConfigError{Field: "quantity", Reason: fmt.Sprintf("must be at least 1, got %d", *genQuantity)}
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if *genImageFormat != "" {
		cfg.ImageFormat = *genImageFormat
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	gens, err := labels.NewAll(splitList(*genKinds), *genCharset)
	if err != nil {
		return &config.ConfigError{Field: "kinds", Reason: "invalid label kind", Err: err}
	}

	s, err := newSynthesizer(cfg)
	if err != nil {
		return err
	}
	s.Debug = *genDebug

	seed := *genSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	log.Printf("Generating %d samples per font and kind for %d fonts (seed %d)", *genQuantity, len(cfg.Fonts), seed)

	d := &batch.Driver{
		Synth:      s,
		Writer:     &dataset.Writer{Dir: *genOutput, Ext: cfg.ImageFormat},
		Profiles:   cfg.Fonts,
		Generators: gens,
		Quantity:   *genQuantity,
		Recreate:   *genDelete,
		Workers:    *genWorkers,
		Seed:       seed,
		Naming:     *genNaming,
		Prefix:     cfg.Prefix,
		IDWidth:    cfg.IDWidth,
		StartID:    *genStartID,
		Progress:   !*genNoProgress,
		Verbose:    debug,
	}

	summary, err := d.Run(ctx)
	if err != nil {
		return err
	}
	if summary.Succeeded < summary.Attempted {
		log.Printf("Warning: %d samples were skipped", summary.Attempted-summary.Succeeded)
	}
	return nil
}

func runTune(debug bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	charset := *tuneCharset
	if charset == "" {
		charset = labels.DefaultCharset + "/-"
	}

	s, err := newSynthesizer(cfg)
	if err != nil {
		return err
	}
	s.Debug = true
	s.Overlay.Cycle = true

	gen, err := labels.New(labels.KindString, charset)
	if err != nil {
		return err
	}
	w := &dataset.Writer{Dir: *tuneOutput, Ext: cfg.ImageFormat}
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	corrected := make([]config.FontProfile, 0, len(cfg.Fonts))
	for i, profile := range cfg.Fonts {
		suggestions, err := inspect.Suggest(s, profile, charset, *tuneThreshold)
		if err != nil {
			log.Printf("Skipping %s: %v", profile.Name(), err)
			continue
		}
		if debug {
			for _, line := range inspect.Summary(suggestions) {
				log.Printf("%s %s", profile.Name(), line)
			}
		}
		fixed := inspect.CorrectedProfile(profile, suggestions)
		corrected = append(corrected, fixed)

		// One overlay sample per font, rendered with the suggested corrections.
		stem := dataset.Stem(cfg.Prefix, i, cfg.IDWidth)
		sample, err := s.Render(fixed, stem, gen.Generate(rng).Text, rng)
		if err != nil {
			log.Printf("Failed to render review sample for %s: %v", profile.Name(), err)
			continue
		}
		if err := w.Write(sample); err != nil {
			return err
		}
		log.Printf("Wrote review sample %s for %s", filepath.Join(w.Dir, stem+w.Ext), profile.Name())
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(map[string]interface{}{"fonts": corrected}); err != nil {
		return fmt.Errorf("failed to encode suggestions: %w", err)
	}
	return nil
}

func runOverlay() error {
	cache := imaging.NewImageCache()
	rec, err := dataset.Read(*overlayDir, *overlayStem, *overlayExt, cache)
	if err != nil {
		return err
	}

	info, err := imaging.LoadImageInfo(cache, filepath.Join(*overlayDir, *overlayStem+*overlayExt))
	if err != nil {
		return err
	}
	log.Printf("Sample %s: %dx%d %s, %d bytes", rec.Stem, info.Width, info.Height, info.Format, info.FileSizeBytes)

	col, err := imaging.ParseHexColor(*overlayColor)
	if err != nil {
		return &config.ConfigError{Field: "color", Reason: "invalid colour", Err: err}
	}

	b := rec.Image.Bounds()
	canvas := boxes.Canvas{Width: b.Dx(), Height: b.Dy()}
	img := imaging.OverlayBoxes(rec.Image, rec.Boxes, canvas, imaging.OverlayStyle{Color: col, Cycle: *overlayCycle})

	out := *overlayOut
	if out == "" {
		out = filepath.Join(*overlayDir, *overlayStem+".overlay.png")
	}
	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", out, err)
	}
	defer f.Close()

	if err := imaging.Encode(f, img, filepath.Ext(out)); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", out, err)
	}

	log.Printf("Wrote %s (%d boxes, text %q)", out, len(rec.Boxes), rec.Text)
	return nil
}
