package textline

import (
	"sync"

	"github.com/go-text/typesetting/di"
	"github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/math/fixed"
)

// FontStyle is a bitmask of font style flags applied to a span of text.
type FontStyle int

const (
	// StylePlain is the regular style.
	StylePlain FontStyle = 0
	// StyleBold marks bold text.
	StyleBold FontStyle = 1 << iota
	// StyleItalic marks italic text.
	StyleItalic
)

// FontResolver picks the font able to display a character in a given style.
// It is the fragment shaper's view of font preferences and fallback; real
// applications typically back it with a registry that walks a preference
// list and falls back across fonts per codepoint.
type FontResolver interface {
	ResolveFace(r rune, style FontStyle) *font.Face
}

// SingleFaceResolver resolves every character to one face, ignoring style.
// Sufficient for measurement-only use and for tests.
type SingleFaceResolver struct {
	Face *font.Face
}

func (r SingleFaceResolver) ResolveFace(rune, FontStyle) *font.Face { return r.Face }

// FragmentShaper turns a uniform-style span of characters into an ordered
// sequence of fragments. start and end are indices into text. When tab is
// non-nil, every tab character becomes that shared fragment, isolated from
// the surrounding text; when nil, tabs are shaped like any other character.
//
// Implementations must return at least one fragment for a non-empty span,
// with fragment lengths summing to end-start.
type FragmentShaper interface {
	Shape(text []rune, start, end int, style FontStyle, rtl bool, tab *TabFragment) []Fragment
}

// HarfbuzzFragmentShaper shapes text with go-text/typesetting's HarfBuzz
// implementation. It splits the input at tab characters and wherever the
// resolved font changes, and shapes each same-font span in one pass, so
// ligatures and kerning apply within a span.
//
// HarfbuzzShaper instances are pooled since they carry internal mutable
// state and are not safe for concurrent use.
type HarfbuzzFragmentShaper struct {
	resolver   FontResolver
	size       float64
	shaperPool sync.Pool
}

// NewHarfbuzzShaper creates a fragment shaper using the given font resolver
// and font size in pixels.
func NewHarfbuzzShaper(resolver FontResolver, size float64) *HarfbuzzFragmentShaper {
	if resolver == nil {
		panic("textline: font resolver is nil")
	}
	return &HarfbuzzFragmentShaper{
		resolver: resolver,
		size:     size,
		shaperPool: sync.Pool{
			New: func() any {
				return &shaping.HarfbuzzShaper{}
			},
		},
	}
}

// Shape implements FragmentShaper.
func (s *HarfbuzzFragmentShaper) Shape(text []rune, start, end int, style FontStyle, rtl bool, tab *TabFragment) []Fragment {
	if start >= end {
		panic("textline: shaping an empty span")
	}
	var frags []Fragment
	var curFace *font.Face
	cur := start
	for i := start; i < end; i++ {
		if text[i] == '\t' && tab != nil {
			// Segmentation isolates tabs into their own level-0 runs, so a
			// tab can only ever show up in a left-to-right span here.
			if rtl {
				panic("textline: tab character inside an RTL run")
			}
			frags = s.appendSpan(frags, text, cur, i, curFace, rtl)
			frags = append(frags, tab)
			curFace = nil
			cur = i + 1
			continue
		}
		face := s.resolver.ResolveFace(text[i], style)
		if face != curFace {
			frags = s.appendSpan(frags, text, cur, i, curFace, rtl)
			curFace = face
			cur = i
		}
	}
	frags = s.appendSpan(frags, text, cur, end, curFace, rtl)
	if len(frags) == 0 {
		panic("textline: shaping produced no fragments")
	}
	return frags
}

// appendSpan shapes text[from:to) with one face and appends the resulting
// fragment, if the span is non-empty.
func (s *HarfbuzzFragmentShaper) appendSpan(frags []Fragment, text []rune, from, to int, face *font.Face, rtl bool) []Fragment {
	if to <= from {
		return frags
	}
	if face == nil {
		panic("textline: no font resolved for text span")
	}

	dir := di.DirectionLTR
	if rtl {
		dir = di.DirectionRTL
	}
	input := shaping.Input{
		Text:      text,
		RunStart:  from,
		RunEnd:    to,
		Direction: dir,
		Face:      face,
		Size:      floatToFixed(s.size),
		Script:    spanScript(text[from:to]),
		Language:  language.NewLanguage("en"),
	}

	hbShaper := s.shaperPool.Get().(*shaping.HarfbuzzShaper)
	output := hbShaper.Shape(input)
	s.shaperPool.Put(hbShaper)

	widths, glyphs := convertOutput(output.Glyphs, from, to)
	return append(frags, newTextFragment(widths, glyphs, face, s.size, rtl))
}

// convertOutput turns shaped glyphs for the character range [from, to) into
// per-character widths (logical order) and positioned glyphs (visual order,
// x relative to the span origin). A cluster's advance is spread evenly over
// the characters it covers.
func convertOutput(glyphs []shaping.Glyph, from, to int) ([]float64, []ShapedGlyph) {
	widths := make([]float64, to-from)
	result := make([]ShapedGlyph, 0, len(glyphs))

	// Advance per cluster, keyed by span-relative character index.
	clusterAdvance := make(map[int]float64)
	clusters := make([]int, 0, len(glyphs))

	var x float64
	for _, g := range glyphs {
		cluster := g.TextIndex() - from
		adv := fixedToFloat(g.Advance)
		if _, seen := clusterAdvance[cluster]; !seen {
			clusters = append(clusters, cluster)
		}
		clusterAdvance[cluster] += adv

		result = append(result, ShapedGlyph{
			GID:      GlyphID(uint16(g.GlyphID)),
			Cluster:  cluster,
			X:        x + fixedToFloat(g.XOffset),
			Y:        fixedToFloat(g.YOffset),
			XAdvance: adv,
		})
		x += adv
	}

	// Clusters arrive in visual order; sort into logical order to find each
	// cluster's character extent.
	sortInts(clusters)
	for i, c := range clusters {
		next := to - from
		if i+1 < len(clusters) {
			next = clusters[i+1]
		}
		count := next - c
		if count <= 0 {
			continue
		}
		per := clusterAdvance[c] / float64(count)
		for j := c; j < next; j++ {
			widths[j] = per
		}
	}
	return widths, result
}

// sortInts sorts a small slice of ints in place. Cluster lists are tiny and
// nearly sorted (ascending for LTR, descending for RTL), so insertion sort
// is a good fit.
func sortInts(s []int) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j] < s[j-1]; j-- {
			s[j], s[j-1] = s[j-1], s[j]
		}
	}
}

// spanScript returns the script of the first non-space character of the
// span. Chunk construction splits runs at script-relevant boundaries before
// shaping, so one script per span is a safe assumption.
func spanScript(runes []rune) language.Script {
	for _, r := range runes {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			continue
		}
		return language.LookupScript(r)
	}
	return language.Latin
}

// floatToFixed converts a float64 font size to fixed.Int26_6.
func floatToFixed(size float64) fixed.Int26_6 {
	return fixed.Int26_6(size * 64)
}

// fixedToFloat converts a fixed.Int26_6 value to float64.
func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64.0
}
