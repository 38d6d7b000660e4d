package imaging

import (
	"image"
	"math/rand"
	"sync"

	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/noise"
)

// NoiseOptions controls the synthetic paper background.
type NoiseOptions struct {
	// Min and Max bound the gray level of every pixel (inclusive, 0-255).
	Min int `json:"min"`
	Max int `json:"max"`

	// BlurRadius is the Gaussian blur radius applied after noise generation.
	// Zero disables blurring.
	BlurRadius float64 `json:"blur_radius"`
}

// NoiseBackground returns a width x height monochrome noise image whose gray
// levels are drawn uniformly from [opts.Min, opts.Max] using rng, optionally
// softened with a Gaussian blur.
func NoiseBackground(width, height int, opts NoiseOptions, rng *rand.Rand) *image.RGBA {
	lo, hi := opts.Min, opts.Max
	if lo > hi {
		lo, hi = hi, lo
	}
	span := hi - lo + 1

	// noise.Generate fills rows from several goroutines; rand.Rand is not safe
	// for concurrent use.
	var mu sync.Mutex
	fn := func() uint8 {
		mu.Lock()
		v := rng.Intn(span)
		mu.Unlock()
		return uint8(lo + v)
	}

	img := noise.Generate(width, height, &noise.Options{
		NoiseFn:    fn,
		Monochrome: true,
	})

	if opts.BlurRadius > 0 {
		img = blur.Gaussian(img, opts.BlurRadius)
	}
	return img
}

// WhiteBackground returns an opaque white width x height image.
func WhiteBackground(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	return img
}
