package boxes

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"
)

// fakeMetrics is a fixed-table Metrics implementation.
type fakeMetrics struct {
	ascent   float64
	descent  float64
	advances map[rune]float64
	fallback float64
}

var errNoGlyph = errors.New("no glyph")

func (f fakeMetrics) Ascent() float64  { return f.ascent }
func (f fakeMetrics) Descent() float64 { return f.descent }

func (f fakeMetrics) Advance(r rune) (float64, error) {
	if w, ok := f.advances[r]; ok {
		if w < 0 {
			return 0, errNoGlyph
		}
		return w, nil
	}
	return f.fallback, nil
}

func scenarioMetrics() fakeMetrics {
	return fakeMetrics{
		ascent:   20,
		descent:  4,
		advances: map[rune]float64{'A': 10, 'B': 12},
		fallback: 9,
	}
}

func TestCompute_Scenario(t *testing.T) {
	got, err := Compute("AB", scenarioMetrics(), DefaultCanvas, Subtractive, NoMargins)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d boxes, want 2", len(got))
	}

	want := []CharBox{
		{Char: 'A', Left: 22, Bottom: 70, Right: 32, Top: 94},
		{Char: 'B', Left: 32, Bottom: 70, Right: 44, Top: 94},
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("box %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
	if got[0].Top != got[1].Top || got[0].Bottom != got[1].Bottom {
		t.Errorf("vertical extents differ: %+v vs %+v", got[0], got[1])
	}
}

func TestCompute_ClipsToCanvasWidth(t *testing.T) {
	canvas := Canvas{Width: 30, Height: 100, BaselineX: 22, BaselineY: 26}

	got, err := Compute("AB", scenarioMetrics(), canvas, Subtractive, NoMargins)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if got[1].Right != 30 {
		t.Errorf("B right: got %d, want 30", got[1].Right)
	}
	// B collapses to zero width at the edge; that is not an error.
	if got[1].Left != 30 {
		t.Errorf("B left: got %d, want 30", got[1].Left)
	}
	if got[0].Right != 30 {
		t.Errorf("A right: got %d, want 30", got[0].Right)
	}
}

func TestCompute_ClipsVertically(t *testing.T) {
	m := fakeMetrics{ascent: 40, descent: 90, fallback: 5}
	canvas := Canvas{Width: 100, Height: 100, BaselineX: 0, BaselineY: 26}

	got, err := Compute("x", m, canvas, Subtractive, NoMargins)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if got[0].Top != 100 {
		t.Errorf("top: got %d, want 100", got[0].Top)
	}
	if got[0].Bottom != 0 {
		t.Errorf("bottom: got %d, want 0", got[0].Bottom)
	}
}

func TestCompute_EmptyText(t *testing.T) {
	got, err := Compute("", scenarioMetrics(), DefaultCanvas, Subtractive, NoMargins)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	if got == nil {
		t.Fatal("Compute returned nil slice for empty text")
	}
	if len(got) != 0 {
		t.Errorf("got %d boxes, want 0", len(got))
	}
}

func TestCompute_LengthAndOrder(t *testing.T) {
	texts := []string{
		"A",
		"AB",
		"01JR8667B9XFSC9FGF063TR6S2",
		"12/31/2024-123",
		"héllo wörld",
		"    ",
	}

	for _, text := range texts {
		t.Run(text, func(t *testing.T) {
			got, err := Compute(text, scenarioMetrics(), DefaultCanvas, Subtractive, NoMargins)
			if err != nil {
				t.Fatalf("Compute failed: %v", err)
			}
			runes := []rune(text)
			if len(got) != len(runes) {
				t.Fatalf("got %d boxes, want %d", len(got), len(runes))
			}
			for i, r := range runes {
				if got[i].Char != r {
					t.Errorf("box %d: char %q, want %q", i, got[i].Char, r)
				}
			}
		})
	}
}

func TestCompute_LeftIsMonotonic(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	m := fakeMetrics{ascent: 12, descent: 3, advances: map[rune]float64{}}
	for r := 'a'; r <= 'z'; r++ {
		m.advances[r] = rng.Float64() * 14
	}

	for trial := 0; trial < 50; trial++ {
		runes := make([]rune, 1+rng.Intn(30))
		for i := range runes {
			runes[i] = 'a' + rune(rng.Intn(26))
		}

		got, err := Compute(string(runes), m, DefaultCanvas, Subtractive, NoMargins)
		if err != nil {
			t.Fatalf("Compute failed: %v", err)
		}
		for i := 1; i < len(got); i++ {
			if got[i].Left < got[i-1].Left {
				t.Fatalf("trial %d: left decreased at %d: %d < %d", trial, i, got[i].Left, got[i-1].Left)
			}
		}
	}
}

func TestCompute_MarginConventions(t *testing.T) {
	policy := MarginTable{Chars: map[rune]Margins{'A': {Left: 1, Top: 2, Right: 3, Bottom: 4}}}

	tests := []struct {
		name string
		conv MarginConvention
		want CharBox
	}{
		{"subtractive", Subtractive, CharBox{Char: 'A', Left: 23, Bottom: 66, Right: 29, Top: 96}},
		{"additive", Additive, CharBox{Char: 'A', Left: 23, Bottom: 74, Right: 35, Top: 96}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Compute("AB", scenarioMetrics(), DefaultCanvas, tt.conv, policy)
			if err != nil {
				t.Fatalf("Compute failed: %v", err)
			}
			if got[0] != tt.want {
				t.Errorf("got %+v, want %+v", got[0], tt.want)
			}
			// Margins never move the cursor.
			if got[1].Left != 32 || got[1].Right != 44 {
				t.Errorf("B: got left=%d right=%d, want 32 and 44", got[1].Left, got[1].Right)
			}
		})
	}
}

func TestCompute_Truncates(t *testing.T) {
	m := fakeMetrics{ascent: 20.9, descent: 4.6, advances: map[rune]float64{'A': 10.7, 'B': 10.7}}

	got, err := Compute("AB", m, DefaultCanvas, Subtractive, NoMargins)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	// right of A = 32.7, left of B = 32.7, right of B = 43.4
	if got[0].Right != 32 {
		t.Errorf("A right: got %d, want 32", got[0].Right)
	}
	if got[1].Left != 32 || got[1].Right != 43 {
		t.Errorf("B: got left=%d right=%d, want 32 and 43", got[1].Left, got[1].Right)
	}
	// top = 100 - (26 - 20.9) = 94.9, bottom = 100 - 30.6 = 69.4
	if got[0].Top != 94 || got[0].Bottom != 69 {
		t.Errorf("A vertical: got top=%d bottom=%d, want 94 and 69", got[0].Top, got[0].Bottom)
	}
}

func TestCompute_GlyphFailureFailsSample(t *testing.T) {
	m := scenarioMetrics()
	m.advances['?'] = -1

	got, err := Compute("A?B", m, DefaultCanvas, Subtractive, NoMargins)
	if err == nil {
		t.Fatal("Compute should fail for a missing glyph")
	}
	if got != nil {
		t.Errorf("Compute returned %d boxes alongside an error", len(got))
	}

	var gerr *GlyphError
	if !errors.As(err, &gerr) {
		t.Fatalf("error %v is not a *GlyphError", err)
	}
	if gerr.Char != '?' || gerr.Index != 1 {
		t.Errorf("GlyphError: got char=%q index=%d, want '?' and 1", gerr.Char, gerr.Index)
	}
	if !errors.Is(err, errNoGlyph) {
		t.Error("GlyphError should unwrap to the metrics error")
	}
}

func TestCompute_InvalidInputs(t *testing.T) {
	tests := []struct {
		name   string
		canvas Canvas
		conv   MarginConvention
	}{
		{"zero width", Canvas{Width: 0, Height: 100}, Subtractive},
		{"negative height", Canvas{Width: 100, Height: -1}, Subtractive},
		{"baseline x at width", Canvas{Width: 100, Height: 100, BaselineX: 100}, Subtractive},
		{"baseline y negative", Canvas{Width: 100, Height: 100, BaselineY: -1}, Subtractive},
		{"unknown convention", DefaultCanvas, MarginConvention(9)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Compute("A", scenarioMetrics(), tt.canvas, tt.conv, NoMargins); err == nil {
				t.Error("Compute should fail")
			}
		})
	}
}

func TestCharBox_ClipIsIdempotent(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	canvas := Canvas{Width: 120, Height: 40}

	for i := 0; i < 500; i++ {
		b := CharBox{
			Char:   'x',
			Left:   rng.Intn(400) - 200,
			Bottom: rng.Intn(400) - 200,
			Right:  rng.Intn(400) - 200,
			Top:    rng.Intn(400) - 200,
		}
		once := b.Clip(canvas)
		twice := once.Clip(canvas)
		if once != twice {
			t.Fatalf("clip not idempotent: %+v -> %+v -> %+v", b, once, twice)
		}
		if once.Left < 0 || once.Right > canvas.Width || once.Bottom < 0 || once.Top > canvas.Height {
			t.Fatalf("clip left box outside canvas: %+v", once)
		}
	}
}

func TestCompute_OutputIsAlreadyClipped(t *testing.T) {
	m := fakeMetrics{ascent: 80, descent: 80, fallback: 40}
	canvas := Canvas{Width: 100, Height: 50, BaselineX: 10, BaselineY: 25}

	got, err := Compute("wide text", m, canvas, Additive, MarginTable{Default: Margins{Left: -30, Right: 30}})
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	for i, b := range got {
		if b.Clip(canvas) != b {
			t.Errorf("box %d not clipped: %+v", i, b)
		}
	}
}

func TestCharBox_Rect(t *testing.T) {
	b := CharBox{Char: 'A', Left: 22, Bottom: 70, Right: 32, Top: 94}
	r := b.Rect(DefaultCanvas)

	if r.Min.X != 22 || r.Min.Y != 6 || r.Max.X != 32 || r.Max.Y != 30 {
		t.Errorf("Rect: got %v, want (22,6)-(32,30)", r)
	}
}

func ExampleCompute() {
	m := fakeMetrics{ascent: 20, descent: 4, advances: map[rune]float64{'A': 10, 'B': 12}}
	bxs, _ := Compute("AB", m, DefaultCanvas, Subtractive, NoMargins)
	fmt.Println(Format(bxs))
	// Output:
	// A 22 70 32 94 0
	// B 32 70 44 94 0
}
