// Package imaging renders training sample images.
//
// It provides the raster side of sample synthesis: a noisy paper-like
// background, text painting that follows the box engine's cursor, debug
// outlines for computed character boxes, lossless encoding, and a cache for
// reading samples back for review.
//
// # Coordinate System
//
// Images use the standard Go convention: (0,0) at the top-left corner, X
// increasing rightward and Y increasing downward. Character boxes from package
// boxes use a bottom-left origin; OverlayBoxes converts them using the canvas
// height.
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. NoiseBackground, PaintText and
// OverlayBoxes only touch the images and RNG passed to them, so concurrent
// calls are safe as long as each goroutine uses its own images, font face and
// *rand.Rand.
//
// # Libraries
//
//   - github.com/anthonynsimon/bild: noise generation and Gaussian blur
//   - github.com/disintegration/imaging: PNG/TIFF encoding
//   - github.com/lucasb-eyer/go-colorful: colour parsing and hue cycling
//   - golang.org/x/image: font drawing and TIFF decoding
package imaging
