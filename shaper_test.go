package textline

import (
	"bytes"
	"testing"

	"github.com/go-text/typesetting/font"
	"golang.org/x/image/font/gofont/goregular"
)

func testFace(t *testing.T) *font.Face {
	t.Helper()
	face, err := font.ParseTTF(bytes.NewReader(goregular.TTF))
	if err != nil {
		t.Fatalf("parsing test font: %v", err)
	}
	return face
}

func fragmentLengths(frags []Fragment) int {
	sum := 0
	for _, f := range frags {
		sum += f.Length()
	}
	return sum
}

func TestHarfbuzzShapeBasic(t *testing.T) {
	shaper := NewHarfbuzzShaper(SingleFaceResolver{Face: testFace(t)}, 16)
	frags := shaper.Shape([]rune("Hello, world"), 0, 12, StylePlain, false, nil)
	if len(frags) != 1 {
		t.Fatalf("got %d fragments, want 1", len(frags))
	}
	f, ok := frags[0].(*TextFragment)
	if !ok {
		t.Fatalf("fragment type = %T, want *TextFragment", frags[0])
	}
	if f.Length() != 12 {
		t.Errorf("Length = %d, want 12", f.Length())
	}
	if f.IsRtl() {
		t.Error("LTR shaping produced an RTL fragment")
	}
	if width := f.OffsetToX(0, 0, 12); width <= 0 {
		t.Errorf("total width = %v, want > 0", width)
	}
	// Character boundaries progress monotonically.
	prev := f.VisualColumnToX(0, 0)
	for c := 1; c <= f.Length(); c++ {
		x := f.VisualColumnToX(0, c)
		if x < prev {
			t.Fatalf("boundary %d at x=%v is left of boundary %d at x=%v", c, x, c-1, prev)
		}
		prev = x
	}
}

func TestHarfbuzzShapeSubRange(t *testing.T) {
	shaper := NewHarfbuzzShaper(SingleFaceResolver{Face: testFace(t)}, 16)
	frags := shaper.Shape([]rune("Hello"), 1, 4, StylePlain, false, nil)
	if got := fragmentLengths(frags); got != 3 {
		t.Errorf("fragment lengths sum to %d, want 3", got)
	}
}

func TestHarfbuzzShapeRTL(t *testing.T) {
	shaper := NewHarfbuzzShaper(SingleFaceResolver{Face: testFace(t)}, 16)
	frags := shaper.Shape([]rune(rtlABC), 0, 3, StylePlain, true, nil)
	if got := fragmentLengths(frags); got != 3 {
		t.Fatalf("fragment lengths sum to %d, want 3", got)
	}
	for _, frag := range frags {
		f, ok := frag.(*TextFragment)
		if !ok {
			t.Fatalf("fragment type = %T, want *TextFragment", frag)
		}
		if !f.IsRtl() {
			t.Error("RTL shaping produced an LTR fragment")
		}
	}
}

func TestHarfbuzzShapeTabSplit(t *testing.T) {
	shaper := NewHarfbuzzShaper(SingleFaceResolver{Face: testFace(t)}, 16)
	tab := NewTabFragment(8, 4)
	frags := shaper.Shape([]rune("ab\tcd"), 0, 5, StylePlain, false, tab)
	if len(frags) != 3 {
		t.Fatalf("got %d fragments, want 3", len(frags))
	}
	if frags[0].Length() != 2 || frags[2].Length() != 2 {
		t.Errorf("text fragment lengths = %d, %d, want 2, 2", frags[0].Length(), frags[2].Length())
	}
	if frags[1] != Fragment(tab) {
		t.Error("tab character did not map to the shared tab fragment")
	}
}

func TestHarfbuzzShapeTabsWithoutTabFragment(t *testing.T) {
	// With no tab fragment, tabs shape as ordinary whitespace.
	shaper := NewHarfbuzzShaper(SingleFaceResolver{Face: testFace(t)}, 16)
	frags := shaper.Shape([]rune("ab\tcd"), 0, 5, StylePlain, false, nil)
	if len(frags) != 1 {
		t.Fatalf("got %d fragments, want 1", len(frags))
	}
	if frags[0].Length() != 5 {
		t.Errorf("Length = %d, want 5", frags[0].Length())
	}
}

func TestHarfbuzzShapeGlyphs(t *testing.T) {
	shaper := NewHarfbuzzShaper(SingleFaceResolver{Face: testFace(t)}, 16)
	frags := shaper.Shape([]rune("ab"), 0, 2, StylePlain, false, nil)
	f := frags[0].(*TextFragment)
	if len(f.glyphs) == 0 {
		t.Fatal("no glyphs recorded")
	}
	for _, g := range f.glyphs {
		if g.Cluster < 0 || g.Cluster >= 2 {
			t.Errorf("glyph cluster %d out of range [0, 2)", g.Cluster)
		}
	}
}

func TestHarfbuzzShapePanics(t *testing.T) {
	shaper := NewHarfbuzzShaper(SingleFaceResolver{Face: testFace(t)}, 16)

	t.Run("empty span", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Fatal("expected panic")
			}
		}()
		shaper.Shape([]rune("abc"), 1, 1, StylePlain, false, nil)
	})

	t.Run("tab in RTL run", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Fatal("expected panic")
			}
		}()
		shaper.Shape([]rune("a\tb"), 0, 3, StylePlain, true, NewTabFragment(8, 4))
	})
}

func TestNewHarfbuzzShaperNilResolver(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	NewHarfbuzzShaper(nil, 16)
}

func TestHarfbuzzShapeWidthsCoverAdvance(t *testing.T) {
	// Per-character widths must reproduce the glyph advances in total:
	// the fragment's last boundary equals the sum of the glyph XAdvances.
	shaper := NewHarfbuzzShaper(SingleFaceResolver{Face: testFace(t)}, 16)
	frags := shaper.Shape([]rune("Waffle"), 0, 6, StylePlain, false, nil)
	f := frags[0].(*TextFragment)
	var total float64
	for _, g := range f.glyphs {
		total += g.XAdvance
	}
	const epsilon = 1e-9
	if got := f.OffsetToX(0, 0, f.Length()); got < total-epsilon || got > total+epsilon {
		t.Errorf("boundary width = %v, glyph advances sum to %v", got, total)
	}
}

func TestSortInts(t *testing.T) {
	s := []int{3, 1, 2, 0}
	sortInts(s)
	for i := 1; i < len(s); i++ {
		if s[i-1] > s[i] {
			t.Fatalf("not sorted: %v", s)
		}
	}
}
