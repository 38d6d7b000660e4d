// Package dataset persists samples as Tesseract training triples.
//
// A sample with stem S is written as three files in one directory:
//
//	S.tif      the rendered image (or S.png)
//	S.box      one box line per character
//	S.gt.txt   the exact rendered text, no trailing newline
//
// The files are written in that order. A failure aborts the remaining writes
// and removes the files of the triple already written, so a directory never
// holds an image without its ground truth.
package dataset

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/ironsheep/tesstrain-gen/internal/boxes"
	"github.com/ironsheep/tesstrain-gen/internal/imaging"
	"github.com/ironsheep/tesstrain-gen/internal/synth"
)

// File extensions of the text parts of a triple.
const (
	BoxExt         = ".box"
	GroundTruthExt = ".gt.txt"
)

// PersistenceError reports a failed filesystem operation on an output file.
type PersistenceError struct {
	Path string
	Op   string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Stem returns the sequential file stem for id, e.g. Stem("eng", 42, 6) is
// "eng_000042".
func Stem(prefix string, id, width int) string {
	return fmt.Sprintf("%s_%0*d", prefix, width, id)
}

// Recreate removes dir with all of its contents and creates it again empty.
func Recreate(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return &PersistenceError{Path: dir, Op: "remove", Err: err}
	}
	return Ensure(dir)
}

// Ensure creates dir and any missing parents.
func Ensure(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return &PersistenceError{Path: dir, Op: "create directory", Err: err}
	}
	return nil
}

// Writer writes samples into Dir using the image format named by Ext.
// A Writer is safe for concurrent use as long as stems are unique.
type Writer struct {
	Dir string
	Ext string
}

// Paths returns the image, box and ground truth paths for stem.
func (w *Writer) Paths(stem string) (img, box, gt string) {
	base := filepath.Join(w.Dir, stem)
	return base + w.Ext, base + BoxExt, base + GroundTruthExt
}

// Write persists s under the stem s.ID.
func (w *Writer) Write(s *synth.Sample) error {
	if s.ID == "" {
		return &PersistenceError{Path: w.Dir, Op: "write", Err: errors.New("sample has no stem")}
	}
	if err := Ensure(w.Dir); err != nil {
		return err
	}

	imgPath, boxPath, gtPath := w.Paths(s.ID)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, s.Image, w.Ext); err != nil {
		return &PersistenceError{Path: imgPath, Op: "encode", Err: err}
	}

	parts := []struct {
		path string
		data []byte
	}{
		{imgPath, buf.Bytes()},
		{boxPath, []byte(boxes.Format(s.Boxes))},
		{gtPath, []byte(s.Text)},
	}

	var written []string
	for _, p := range parts {
		_, statErr := os.Lstat(p.path)
		existed := statErr == nil
		if err := os.WriteFile(p.path, p.data, 0644); err != nil {
			if !existed {
				// A failed write can still leave a truncated file behind.
				written = append(written, p.path)
			}
			removeAll(written)
			return &PersistenceError{Path: p.path, Op: "write", Err: err}
		}
		written = append(written, p.path)
	}
	return nil
}

func removeAll(paths []string) {
	for _, p := range paths {
		os.Remove(p)
	}
}

// Record is a triple read back from disk.
type Record struct {
	Stem  string
	Text  string
	Boxes []boxes.CharBox
	Image image.Image
}

// Read loads the triple for stem from dir. ext names the image format. The
// image is decoded through cache when it is non-nil.
func Read(dir, stem, ext string, cache *imaging.ImageCache) (*Record, error) {
	base := filepath.Join(dir, stem)

	gt, err := os.ReadFile(base + GroundTruthExt)
	if err != nil {
		return nil, &PersistenceError{Path: base + GroundTruthExt, Op: "read", Err: err}
	}

	boxData, err := os.ReadFile(base + BoxExt)
	if err != nil {
		return nil, &PersistenceError{Path: base + BoxExt, Op: "read", Err: err}
	}
	bxs, err := boxes.Parse(string(boxData))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", base+BoxExt, err)
	}

	if cache == nil {
		cache = imaging.NewImageCache()
	}
	img, err := cache.Load(base + ext)
	if err != nil {
		return nil, &PersistenceError{Path: base + ext, Op: "read", Err: err}
	}

	return &Record{
		Stem:  stem,
		Text:  string(gt),
		Boxes: bxs,
		Image: img,
	}, nil
}
