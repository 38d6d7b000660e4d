package dataset

import (
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/ironsheep/tesstrain-gen/internal/boxes"
	"github.com/ironsheep/tesstrain-gen/internal/synth"
)

// newTestSample builds a sample with a recognisable image and two boxes.
func newTestSample(id, text string, bxs []boxes.CharBox) *synth.Sample {
	img := image.NewRGBA(image.Rect(0, 0, 40, 20))
	for y := 0; y < 20; y++ {
		for x := 0; x < 40; x++ {
			img.Set(x, y, color.RGBA{uint8(200 + x), uint8(200 + y), 230, 255})
		}
	}
	return &synth.Sample{ID: id, Text: text, Boxes: bxs, Image: img, Font: "test"}
}

func TestStem(t *testing.T) {
	tests := []struct {
		prefix string
		id     int
		width  int
		want   string
	}{
		{"eng", 0, 6, "eng_000000"},
		{"eng", 42, 6, "eng_000042"},
		{"eng", 1234567, 6, "eng_1234567"},
		{"deu", 7, 3, "deu_007"},
	}
	for _, tt := range tests {
		if got := Stem(tt.prefix, tt.id, tt.width); got != tt.want {
			t.Errorf("Stem(%q, %d, %d) = %q, want %q", tt.prefix, tt.id, tt.width, got, tt.want)
		}
	}
}

func TestWriteRead_RoundTrip(t *testing.T) {
	for _, ext := range []string{".tif", ".png"} {
		t.Run(ext, func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), "out")
			w := &Writer{Dir: dir, Ext: ext}

			bxs := []boxes.CharBox{
				{Char: 'A', Left: 1, Bottom: 2, Right: 10, Top: 18},
				{Char: '/', Left: 10, Bottom: 2, Right: 15, Top: 18},
			}
			text := "A/"
			s := newTestSample("eng_000001", text, bxs)

			if err := w.Write(s); err != nil {
				t.Fatalf("Write failed: %v", err)
			}

			rec, err := Read(dir, "eng_000001", ext, nil)
			if err != nil {
				t.Fatalf("Read failed: %v", err)
			}
			if rec.Text != text {
				t.Errorf("text: got %q, want %q", rec.Text, text)
			}
			if len(rec.Boxes) != len(bxs) {
				t.Fatalf("got %d boxes, want %d", len(rec.Boxes), len(bxs))
			}
			for i := range bxs {
				if rec.Boxes[i] != bxs[i] {
					t.Errorf("box %d: got %+v, want %+v", i, rec.Boxes[i], bxs[i])
				}
			}

			if rec.Image.Bounds() != s.Image.Bounds() {
				t.Fatalf("image bounds: got %v, want %v", rec.Image.Bounds(), s.Image.Bounds())
			}
			r1, g1, b1, _ := rec.Image.At(5, 7).RGBA()
			r2, g2, b2, _ := s.Image.At(5, 7).RGBA()
			if r1>>8 != r2>>8 || g1>>8 != g2>>8 || b1>>8 != b2>>8 {
				t.Errorf("pixel (5,7) changed after round trip")
			}
		})
	}
}

func TestWrite_GroundTruthIsExact(t *testing.T) {
	dir := t.TempDir()
	w := &Writer{Dir: dir, Ext: ".png"}

	text := "Zürich  12/31 \t"
	if err := w.Write(newTestSample("x", text, nil)); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	_, _, gt := w.Paths("x")
	data, err := os.ReadFile(gt)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != text {
		t.Errorf("gt.txt: got %q, want %q", data, text)
	}
}

func TestWrite_EmptyText(t *testing.T) {
	dir := t.TempDir()
	w := &Writer{Dir: dir, Ext: ".tif"}

	if err := w.Write(newTestSample("empty", "", nil)); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	img, box, gt := w.Paths("empty")
	for _, p := range []string{box, gt} {
		info, err := os.Stat(p)
		if err != nil {
			t.Fatalf("Stat %s: %v", p, err)
		}
		if info.Size() != 0 {
			t.Errorf("%s has %d bytes, want 0", p, info.Size())
		}
	}
	if _, err := os.Stat(img); err != nil {
		t.Errorf("image missing: %v", err)
	}
}

func TestWrite_BoxFileFormat(t *testing.T) {
	dir := t.TempDir()
	w := &Writer{Dir: dir, Ext: ".png"}

	bxs := []boxes.CharBox{
		{Char: 'A', Left: 22, Bottom: 70, Right: 32, Top: 94},
		{Char: 'B', Left: 32, Bottom: 70, Right: 44, Top: 94},
	}
	if err := w.Write(newTestSample("ab", "AB", bxs)); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	_, box, _ := w.Paths("ab")
	data, err := os.ReadFile(box)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	want := "A 22 70 32 94 0\nB 32 70 44 94 0"
	if string(data) != want {
		t.Errorf("box file: got %q, want %q", data, want)
	}
}

func TestWrite_FailureRemovesPartialTriple(t *testing.T) {
	dir := t.TempDir()
	w := &Writer{Dir: dir, Ext: ".png"}
	img, box, gt := w.Paths("eng_000005")

	// A directory where the box file should go makes the second write fail.
	if err := os.Mkdir(box, 0755); err != nil {
		t.Fatalf("Mkdir failed: %v", err)
	}

	err := w.Write(newTestSample("eng_000005", "hi", nil))
	var perr *PersistenceError
	if !errors.As(err, &perr) {
		t.Fatalf("got %v, want *PersistenceError", err)
	}
	if perr.Path != box || perr.Op != "write" {
		t.Errorf("PersistenceError: path=%s op=%s", perr.Path, perr.Op)
	}

	for _, p := range []string{img, gt} {
		if _, err := os.Stat(p); !os.IsNotExist(err) {
			t.Errorf("%s should not exist after a failed write", filepath.Base(p))
		}
	}
	if info, err := os.Stat(box); err != nil || !info.IsDir() {
		t.Error("pre-existing entry at the box path must be left alone")
	}
}

func TestWrite_Errors(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	tests := []struct {
		name   string
		writer *Writer
		sample *synth.Sample
	}{
		{"dir is a file", &Writer{Dir: blocker, Ext: ".png"}, newTestSample("a", "a", nil)},
		{"unsupported format", &Writer{Dir: t.TempDir(), Ext: ".jpg"}, newTestSample("a", "a", nil)},
		{"no stem", &Writer{Dir: t.TempDir(), Ext: ".png"}, newTestSample("", "a", nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.writer.Write(tt.sample)
			var perr *PersistenceError
			if !errors.As(err, &perr) {
				t.Errorf("got %v, want *PersistenceError", err)
			}
		})
	}
}

func TestRecreate(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	if err := Ensure(dir); err != nil {
		t.Fatalf("Ensure failed: %v", err)
	}
	stale := filepath.Join(dir, "eng_000000.box")
	if err := os.WriteFile(stale, []byte("old"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	if err := Recreate(dir); err != nil {
		t.Fatalf("Recreate failed: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("directory has %d entries after Recreate, want 0", len(entries))
	}

	// Recreating a directory that does not exist yet also succeeds.
	if err := Recreate(filepath.Join(dir, "fresh")); err != nil {
		t.Errorf("Recreate of missing dir failed: %v", err)
	}
}

func TestRead_Missing(t *testing.T) {
	_, err := Read(t.TempDir(), "nope", ".tif", nil)
	var perr *PersistenceError
	if !errors.As(err, &perr) {
		t.Fatalf("got %v, want *PersistenceError", err)
	}
	if perr.Op != "read" {
		t.Errorf("Op = %s, want read", perr.Op)
	}
}
