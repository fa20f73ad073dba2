package textline

import (
	"github.com/go-text/typesetting/language"
)

// Document provides character data for lines of text.
// Offsets passed to Runes are absolute (document-wide) rune offsets;
// LineStart and LineEnd translate between lines and absolute offsets.
type Document interface {
	// LineStart returns the absolute offset of the first character of line.
	LineStart(line int) int

	// LineEnd returns the absolute offset just past the last character of
	// line, excluding the line terminator.
	LineEnd(line int) int

	// Runes returns the characters in the absolute range [start, end).
	Runes(start, end int) []rune
}

// Token identifies a lexer token for the purpose of restarting bidi
// analysis at token boundaries. Two tokens are the same when both fields
// are equal.
type Token struct {
	// Kind is the token type identity (e.g. "STRING_LITERAL").
	Kind string

	// Language is the language the token belongs to.
	Language language.Language
}

// TokenIterator walks lexer tokens from a given position in a document.
type TokenIterator interface {
	// AtEnd reports whether the iterator has run out of tokens.
	AtEnd() bool

	// Start returns the absolute start offset of the current token.
	Start() int

	// Token returns the current token.
	Token() Token

	// Advance moves to the next token.
	Advance()
}

// TokenSource creates token iterators. It is optional: without one,
// bidi analysis runs over the whole line in one pass.
type TokenSource interface {
	// Tokens returns an iterator positioned at the token containing offset.
	Tokens(offset int) TokenIterator
}

// RegionSeparator decides whether two adjacent tokens of the same language
// must start separate bidi regions. Directional runs never cross such a
// border, even if the Unicode algorithm alone would merge them.
type RegionSeparator interface {
	BorderBetween(a, b Token) bool
}

// StyleRun is a maximal span of uniform font style.
type StyleRun struct {
	// Start and End are absolute offsets.
	Start, End int

	// Style is the font style for the span.
	Style FontStyle
}

// StyleSource yields the style runs covering a character range.
// The returned runs must be contiguous and exactly cover [start, end).
type StyleSource interface {
	StyleRuns(start, end int) []StyleRun
}

// ColumnMapper converts a line-relative character offset to a logical
// column number, accounting for tab expansion.
type ColumnMapper interface {
	LogicalColumn(line, offset int) int
}

// ChunkAccessSink is notified whenever a real (non-approximation) chunk is
// touched during layout. The cache subpackage implements it with an LRU
// that clears fragment content of chunks that have not been used recently.
type ChunkAccessSink interface {
	OnChunkAccess(c *Chunk)
}

// LayoutListener is notified after glyph layout has been performed for an
// absolute character range, e.g. to keep incremental size bookkeeping
// up to date.
type LayoutListener interface {
	TextLayoutPerformed(startOffset, endOffset int)
}

// View aggregates the collaborators a layout needs. Document and Shaper are
// required for document-line layouts; the remaining fields are optional and
// default to reasonable no-op behavior.
type View struct {
	// Document supplies character data.
	Document Document

	// Shaper turns uniform-style character spans into fragments.
	Shaper FragmentShaper

	// Tokens supplies lexer token boundaries at which bidi analysis
	// restarts. Optional.
	Tokens TokenSource

	// Separators returns the per-language separator predicate consulted for
	// adjacent tokens of the same language. Optional; when nil (or when it
	// returns nil), adjacent distinct tokens always start separate regions.
	Separators func(lang language.Language) RegionSeparator

	// Styles supplies font style runs for document text. Optional; when
	// nil, the whole document is treated as plain-styled.
	Styles StyleSource

	// Columns maps offsets to logical columns. Optional; when nil, the
	// column of an offset is the offset itself (valid only for tab-free
	// content).
	Columns ColumnMapper

	// Layouts receives chunk access notifications. Optional.
	Layouts ChunkAccessSink

	// Sizes receives layout-performed notifications. Optional.
	Sizes LayoutListener

	// Tab is the shared fragment used for tab characters in document text.
	// Optional; when nil, tabs are shaped like ordinary characters.
	Tab *TabFragment

	// MaxCharWidth is the upper-bound pixel width of a single character,
	// used by approximation fragments.
	MaxCharWidth float64

	// DisableBidi turns directional analysis off entirely: every line
	// becomes a single left-to-right run.
	DisableBidi bool
}

// logicalColumn returns the logical column of a line-relative offset.
func (v *View) logicalColumn(line, offset int) int {
	if v.Columns == nil {
		return offset
	}
	return v.Columns.LogicalColumn(line, offset)
}

// styleRuns returns the style runs covering the absolute range [start, end).
func (v *View) styleRuns(start, end int) []StyleRun {
	if v.Styles == nil {
		return []StyleRun{{Start: start, End: end, Style: StylePlain}}
	}
	return v.Styles.StyleRuns(start, end)
}

// separatorFor returns the region separator for a language, or nil.
func (v *View) separatorFor(lang language.Language) RegionSeparator {
	if v.Separators == nil {
		return nil
	}
	return v.Separators(lang)
}

func (v *View) notifyChunkAccess(c *Chunk) {
	if v.Layouts != nil {
		v.Layouts.OnChunkAccess(c)
	}
}

func (v *View) notifyLayoutPerformed(start, end int) {
	if v.Sizes != nil {
		v.Sizes.TextLayoutPerformed(start, end)
	}
}
