package textline

import (
	"math"

	"github.com/go-text/typesetting/font"
)

// GlyphID is a glyph index within a font.
type GlyphID uint16

// ShapedGlyph is a single positioned glyph inside a TextFragment.
// Positions are relative to the fragment's origin.
type ShapedGlyph struct {
	// GID is the glyph index in the font.
	GID GlyphID

	// Cluster is the character index this glyph maps to, relative to the
	// fragment start, in logical order. Several glyphs may share a cluster
	// (ligatures), and a cluster may span several characters.
	Cluster int

	// X, Y are the glyph position relative to the fragment origin.
	X, Y float64

	// XAdvance is the horizontal advance to the next glyph.
	XAdvance float64
}

// Painter renders positioned glyphs onto some surface. It is the draw
// primitive assumed by the fragment contract; textline never rasterizes
// anything itself.
type Painter interface {
	DrawGlyphs(x, y float64, face *font.Face, size float64, glyphs []ShapedGlyph)
}

// Fragment is the smallest laid-out unit of a line: a same-font text span,
// a tab, or a width approximation. A fragment never mixes a tab with text
// and never spans more than one chunk.
//
// Offsets passed to fragment methods are relative and progress in visual
// order: 0 is the fragment's leading (leftmost) boundary regardless of the
// fragment's direction. Column arguments are likewise fragment-relative.
// Bounds checking is the caller's responsibility.
type Fragment interface {
	// Length returns the number of characters covered.
	Length() int

	// LogicalColumnCount returns the number of logical columns occupied
	// when the fragment starts at the given logical column.
	LogicalColumnCount(startColumn int) int

	// VisualColumnCount returns the number of visual columns occupied when
	// the fragment starts at the given x position.
	VisualColumnCount(startX float64) int

	// LogicalToVisualColumn converts a fragment-relative logical column to
	// a fragment-relative visual column.
	LogicalToVisualColumn(startX float64, startColumn, column int) int

	// VisualToLogicalColumn converts a fragment-relative visual column to a
	// fragment-relative logical column.
	VisualToLogicalColumn(startX float64, startColumn, column int) int

	// OffsetToX returns the x position of relative offset `to`, given that
	// relative offset `from` is located at x.
	OffsetToX(x float64, from, to int) float64

	// XToVisualColumn returns the fragment-relative visual column nearest
	// to x, and whether the exact location lies beyond that column's
	// boundary (i.e. is closer to larger columns).
	XToVisualColumn(startX, x float64) (int, bool)

	// VisualColumnToX returns the x position of a fragment-relative visual
	// column.
	VisualColumnToX(startX float64, column int) float64

	// Sub returns a fragment restricted to the logical character range
	// [start, end) within this fragment.
	Sub(start, end int) Fragment

	// Draw renders the visual column range [startColumn, endColumn) of the
	// fragment with its leading edge at x and baseline at y.
	Draw(p Painter, x, y float64, startColumn, endColumn int)
}

// TextFragment is a shaped span of characters sharing one font and
// direction. Its per-boundary advance table progresses in visual order, so
// coordinate queries are direction-agnostic.
type TextFragment struct {
	glyphs []ShapedGlyph
	face   *font.Face
	size   float64
	rtl    bool

	// positions[i] is the x of the i-th visual character boundary relative
	// to the fragment origin; positions[0] == 0 and the slice is
	// non-decreasing. len(positions) == Length()+1.
	positions []float64
}

// newTextFragment builds a TextFragment from per-character logical widths.
// For RTL fragments the boundary table is reversed so that it progresses
// visually (leftmost boundary first).
func newTextFragment(widths []float64, glyphs []ShapedGlyph, face *font.Face, size float64, rtl bool) *TextFragment {
	n := len(widths)
	positions := make([]float64, n+1)
	for i := 0; i < n; i++ {
		w := widths[i]
		if rtl {
			w = widths[n-1-i]
		}
		positions[i+1] = positions[i] + w
	}
	return &TextFragment{glyphs: glyphs, face: face, size: size, rtl: rtl, positions: positions}
}

func (f *TextFragment) Length() int { return len(f.positions) - 1 }

// IsRtl reports the shaping direction of the fragment.
func (f *TextFragment) IsRtl() bool { return f.rtl }

func (f *TextFragment) LogicalColumnCount(startColumn int) int { return f.Length() }

func (f *TextFragment) VisualColumnCount(startX float64) int { return f.Length() }

func (f *TextFragment) LogicalToVisualColumn(startX float64, startColumn, column int) int {
	return column
}

func (f *TextFragment) VisualToLogicalColumn(startX float64, startColumn, column int) int {
	return column
}

func (f *TextFragment) OffsetToX(x float64, from, to int) float64 {
	return x + f.positions[to] - f.positions[from]
}

func (f *TextFragment) XToVisualColumn(startX, x float64) (int, bool) {
	rel := x - startX
	best := 0
	bestDist := math.Abs(rel - f.positions[0])
	for c := 1; c < len(f.positions); c++ {
		if d := math.Abs(rel - f.positions[c]); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best, rel > f.positions[best]
}

func (f *TextFragment) VisualColumnToX(startX float64, column int) float64 {
	return startX + f.positions[column]
}

func (f *TextFragment) Sub(start, end int) Fragment {
	if start == 0 && end == f.Length() {
		return f
	}
	// Logical range -> visual boundary range. For RTL fragments visual
	// boundary k counts characters from the logical end.
	visStart := start
	if f.rtl {
		visStart = f.Length() - end
	}
	count := end - start
	positions := make([]float64, count+1)
	base := f.positions[visStart]
	for i := 1; i <= count; i++ {
		positions[i] = f.positions[visStart+i] - base
	}
	var glyphs []ShapedGlyph
	for _, g := range f.glyphs {
		if g.Cluster >= start && g.Cluster < end {
			g.Cluster -= start
			g.X -= base
			glyphs = append(glyphs, g)
		}
	}
	return &TextFragment{glyphs: glyphs, face: f.face, size: f.size, rtl: f.rtl, positions: positions}
}

func (f *TextFragment) Draw(p Painter, x, y float64, startColumn, endColumn int) {
	if startColumn >= endColumn {
		return
	}
	from := f.positions[startColumn]
	to := f.positions[endColumn]
	var glyphs []ShapedGlyph
	for _, g := range f.glyphs {
		if g.X >= from && g.X < to {
			g.X += x - from
			glyphs = append(glyphs, g)
		}
	}
	p.DrawGlyphs(x, y, f.face, f.size, glyphs)
}

// TabFragment represents a single tab character expanding to the next tab
// stop. One instance is shared by all tabs of a view; it carries no
// per-occurrence state.
type TabFragment struct {
	columnWidth float64
	tabSize     int
}

// NewTabFragment creates a tab fragment for tab stops every tabSize columns
// of columnWidth pixels each.
func NewTabFragment(columnWidth float64, tabSize int) *TabFragment {
	if columnWidth <= 0 || tabSize <= 0 {
		panic("textline: tab fragment requires positive column width and tab size")
	}
	return &TabFragment{columnWidth: columnWidth, tabSize: tabSize}
}

// nextStop returns the x position of the first tab stop strictly after x.
func (t *TabFragment) nextStop(x float64) float64 {
	tabWidth := t.columnWidth * float64(t.tabSize)
	return (math.Floor(x/tabWidth) + 1) * tabWidth
}

func (t *TabFragment) Length() int { return 1 }

func (t *TabFragment) LogicalColumnCount(startColumn int) int {
	return t.tabSize - startColumn%t.tabSize
}

func (t *TabFragment) VisualColumnCount(startX float64) int {
	n := int((t.nextStop(startX)-startX)/t.columnWidth + 0.5)
	if n < 1 {
		n = 1
	}
	return n
}

func (t *TabFragment) LogicalToVisualColumn(startX float64, startColumn, column int) int {
	if column <= 0 {
		return 0
	}
	if vc := t.VisualColumnCount(startX); column > vc {
		return vc
	}
	return column
}

func (t *TabFragment) VisualToLogicalColumn(startX float64, startColumn, column int) int {
	if column <= 0 {
		return 0
	}
	if lc := t.LogicalColumnCount(startColumn); column > lc {
		return lc
	}
	return column
}

func (t *TabFragment) OffsetToX(x float64, from, to int) float64 {
	if to <= from {
		return x
	}
	return t.nextStop(x)
}

func (t *TabFragment) XToVisualColumn(startX, x float64) (int, bool) {
	vc := t.VisualColumnCount(startX)
	column := int((x-startX)/t.columnWidth + 0.5)
	if column < 0 {
		column = 0
	}
	if column > vc {
		column = vc
	}
	return column, x > t.VisualColumnToX(startX, column)
}

func (t *TabFragment) VisualColumnToX(startX float64, column int) float64 {
	if column >= t.VisualColumnCount(startX) {
		return t.nextStop(startX)
	}
	return startX + float64(column)*t.columnWidth
}

func (t *TabFragment) Sub(start, end int) Fragment {
	if start != 0 || end != 1 {
		panic("textline: tab fragment sub-range out of bounds")
	}
	return t
}

// Draw renders nothing: a tab is pure whitespace.
func (t *TabFragment) Draw(p Painter, x, y float64, startColumn, endColumn int) {}

// ApproximationFragment estimates the extent of an unshaped character range
// using an upper-bound per-character width. It is produced instead of real
// shaping when a caller only needs an approximate width, e.g. during
// incremental width probing.
type ApproximationFragment struct {
	length    int
	columns   int
	charWidth float64
}

// NewApproximationFragment creates an approximation for length characters
// occupying the given number of logical columns.
func NewApproximationFragment(length, columns int, charWidth float64) *ApproximationFragment {
	return &ApproximationFragment{length: length, columns: columns, charWidth: charWidth}
}

func (a *ApproximationFragment) Length() int { return a.length }

func (a *ApproximationFragment) LogicalColumnCount(startColumn int) int { return a.columns }

func (a *ApproximationFragment) VisualColumnCount(startX float64) int { return a.columns }

func (a *ApproximationFragment) LogicalToVisualColumn(startX float64, startColumn, column int) int {
	return column
}

func (a *ApproximationFragment) VisualToLogicalColumn(startX float64, startColumn, column int) int {
	return column
}

// width is the estimated total width: columns rather than characters, so
// that tab expansion stays within the upper bound.
func (a *ApproximationFragment) width() float64 {
	return float64(a.columns) * a.charWidth
}

func (a *ApproximationFragment) OffsetToX(x float64, from, to int) float64 {
	if a.length == 0 {
		return x
	}
	return x + float64(to-from)*(a.width()/float64(a.length))
}

func (a *ApproximationFragment) XToVisualColumn(startX, x float64) (int, bool) {
	if a.charWidth <= 0 {
		return 0, false
	}
	column := int((x-startX)/a.charWidth + 0.5)
	if column < 0 {
		column = 0
	}
	if column > a.columns {
		column = a.columns
	}
	return column, x > a.VisualColumnToX(startX, column)
}

func (a *ApproximationFragment) VisualColumnToX(startX float64, column int) float64 {
	return startX + float64(column)*a.charWidth
}

func (a *ApproximationFragment) Sub(start, end int) Fragment {
	if start == 0 && end == a.length {
		return a
	}
	columns := a.columns
	if a.length > 0 {
		columns = (a.columns*(end-start) + a.length - 1) / a.length
	}
	return &ApproximationFragment{length: end - start, columns: columns, charWidth: a.charWidth}
}

// Draw renders nothing: approximations exist only for measurement.
func (a *ApproximationFragment) Draw(p Painter, x, y float64, startColumn, endColumn int) {}
