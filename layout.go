package textline

import (
	"iter"
	"log/slog"
)

// layoutKind discriminates the layout variants.
type layoutKind int

const (
	// layoutEmpty is a zero-length line.
	layoutEmpty layoutKind = iota
	// layoutSingleChunk is an entire line held by one level-0 run that fits
	// in a single chunk. The run array machinery is skipped.
	layoutSingleChunk
	// layoutMultiRun is the general case with logical- and visual-order
	// run arrays.
	layoutMultiRun
)

// LineLayout is the layout of a single line of text: a series of BidiRuns
// whose fragments are grouped into chunks and shaped on demand.
//
// A layout is built once and is logically immutable; see the package
// documentation for the laziness and invalidation rules.
type LineLayout struct {
	kind  layoutKind
	chunk *Chunk // layoutSingleChunk

	logical []*BidiRun // layoutMultiRun
	visual  []*BidiRun // layoutMultiRun

	width    float64
	hasWidth bool
}

// New creates a layout for one line of the view's document. With skipBidi
// set, directional analysis is bypassed and the line becomes a single
// left-to-right run.
func New(v *View, line int, skipBidi bool) *LineLayout {
	runs := documentRuns(v, line, skipBidi)
	return createLayout(runs)
}

// NewFromText creates a layout for an arbitrary piece of text using a
// common font style. The text is shaped eagerly and the layout's total
// width is computed once and memoized; tabs are shaped like ordinary
// characters.
func NewFromText(v *View, text []rune, style FontStyle) *LineLayout {
	var runs []*BidiRun
	if len(text) > 0 {
		runs = createRuns(v, text, -1)
		for _, run := range runs {
			for _, chunk := range run.Chunks() {
				chunk.fragments = v.Shaper.Shape(text, chunk.startOffset, chunk.endOffset,
					style, run.IsRtl(), nil)
			}
		}
	}
	l := createLayout(runs)
	l.memoizeWidth()
	return l
}

func documentRuns(v *View, line int, skipBidi bool) []*BidiRun {
	lineStart := v.Document.LineStart(line)
	lineEnd := v.Document.LineEnd(line)
	if lineEnd <= lineStart {
		return nil
	}
	if skipBidi {
		return []*BidiRun{newWholeLineRun(lineEnd - lineStart)}
	}
	text := v.Document.Runes(lineStart, lineEnd)
	return createRuns(v, text, lineStart)
}

// createLayout classifies a logical-order run list into a layout variant.
// The classification relies on the level-0 merge rule: a line with no bidi
// influence arrives as exactly one level-0 run.
func createLayout(runs []*BidiRun) *LineLayout {
	if len(runs) == 0 {
		return &LineLayout{kind: layoutEmpty}
	}
	if len(runs) == 1 {
		run := runs[0]
		if run.level == 0 && run.chunkCount() == 1 {
			chunk := newChunk(0, run.endOffset)
			if run.chunks != nil {
				chunk = run.chunks[0]
			}
			Logger().Debug("textline: single-chunk layout", slog.Int("length", run.endOffset))
			return &LineLayout{kind: layoutSingleChunk, chunk: chunk}
		}
	}
	visual := runs
	if len(runs) > 1 {
		visual = make([]*BidiRun, len(runs))
		copy(visual, runs)
		reorderRunsVisually(visual)
	}
	Logger().Debug("textline: multi-run layout", slog.Int("runs", len(runs)))
	return &LineLayout{kind: layoutMultiRun, logical: runs, visual: visual}
}

// memoizeWidth performs one full visual traversal, summing fragment widths.
// Chunks must already be shaped.
func (l *LineLayout) memoizeWidth() {
	var x float64
	for fragment := range l.FragmentsInVisualOrder(0) {
		x = fragment.EndX()
	}
	l.width = x
	l.hasWidth = true
}

// Width returns the total pixel width memoized at construction time.
// Layouts that never measured themselves return ErrNoCachedWidth.
func (l *LineLayout) Width() (float64, error) {
	if !l.hasWidth {
		return 0, ErrNoCachedWidth
	}
	return l.width, nil
}

// IsLtr reports whether the line contains no right-to-left runs at all.
func (l *LineLayout) IsLtr() bool {
	if l.kind != layoutMultiRun {
		return true
	}
	return len(l.logical) == 0 || len(l.logical) == 1 && !l.logical[0].IsRtl()
}

// Direction returns the line's base direction.
func (l *LineLayout) Direction() Direction {
	if l.IsLtr() {
		return DirectionLTR
	}
	return DirectionRTL
}

// IsRtlLocation reports the directionality at a character position. At a
// boundary between two runs, leanForward picks the following run's
// direction, otherwise the preceding run's.
func (l *LineLayout) IsRtlLocation(offset int, leanForward bool) bool {
	if l.kind != layoutMultiRun {
		return false
	}
	if offset == 0 && !leanForward {
		return false
	}
	for _, run := range l.logical {
		if offset < run.endOffset || offset == run.endOffset && !leanForward {
			return run.IsRtl()
		}
	}
	return false
}

// FindNearestDirectionBoundary returns the nearest offset, scanning in the
// given direction from offset, where the embedding level changes. Returns
// -1 when no boundary exists in that direction. The line's outer edges
// count as boundaries only when the origin run is right-to-left.
func (l *LineLayout) FindNearestDirectionBoundary(offset int, lookForward bool) int {
	if l.kind != layoutMultiRun {
		return -1
	}
	if lookForward {
		originLevel := -1
		for _, run := range l.logical {
			if originLevel >= 0 {
				if int(run.level) != originLevel {
					return run.startOffset
				}
			} else if run.endOffset > offset {
				originLevel = int(run.level)
			}
		}
		if originLevel > 0 {
			return l.logical[len(l.logical)-1].endOffset
		}
		return -1
	}
	originLevel := -1
	for i := len(l.logical) - 1; i >= 0; i-- {
		run := l.logical[i]
		if originLevel >= 0 {
			if int(run.level) != originLevel {
				return run.endOffset
			}
		} else if run.startOffset < offset {
			originLevel = int(run.level)
		}
	}
	if originLevel > 0 {
		return 0
	}
	return -1
}

// singleRuns synthesizes the run array for the single-chunk variants.
// A fresh run is created per call; the chunk itself is shared.
func (l *LineLayout) singleRuns() []*BidiRun {
	if l.chunk == nil {
		return nil
	}
	run := newWholeLineRun(l.chunk.endOffset)
	run.chunks = []*Chunk{l.chunk}
	return []*BidiRun{run}
}

// RunsInLogicalOrder returns the line's runs in character order.
func (l *LineLayout) RunsInLogicalOrder() []*BidiRun {
	if l.kind != layoutMultiRun {
		return l.singleRuns()
	}
	return l.logical
}

// RunsInVisualOrder returns the line's runs in on-screen order, left to
// right. It is a permutation of RunsInLogicalOrder containing the same run
// objects.
func (l *LineLayout) RunsInVisualOrder() []*BidiRun {
	if l.kind != layoutMultiRun {
		return l.singleRuns()
	}
	return l.visual
}

// FragmentsInVisualOrder iterates the whole line's fragments in visual
// order, starting at the given x position. Chunks are not shaped by this
// form; only already-laid-out content is visited. The yielded fragment is
// reused between steps and must not be retained.
func (l *LineLayout) FragmentsInVisualOrder(startX float64) iter.Seq[*VisualFragment] {
	return newVisualIterator(nil, 0, startX, 0, 0, 0, l.RunsInVisualOrder()).All()
}

// FragmentsInRange returns an iterator over the fragments covering the
// line-relative range [startOffset, endOffset) in visual order, shaping
// chunks on demand as they are visited. startX and startVisualColumn seed
// the iterator's running position state.
//
// When quick is non-nil, approximate iteration is enabled: sub-ranges of
// chunks that have not been shaped yet are served by approximation
// fragments instead of triggering shaping, and quick is invoked every time
// that shortcut is taken.
func (l *LineLayout) FragmentsInRange(v *View, line int, startX float64, startVisualColumn,
	startOffset, endOffset int, quick func()) *VisualIterator {
	if startOffset > endOffset {
		panic("textline: fragment range start is past its end")
	}
	var runs []*BidiRun
	if startOffset < endOffset {
		for _, run := range l.RunsInLogicalOrder() {
			if run.endOffset <= startOffset {
				continue
			}
			if run.startOffset >= endOffset {
				break
			}
			runs = append(runs, run.subRun(v, line, startOffset, endOffset, quick))
		}
		if len(runs) > 1 {
			reorderRunsVisually(runs)
		}
	}
	startLogicalColumn := v.logicalColumn(line, startOffset)
	return newVisualIterator(v, line, startX, startVisualColumn, startLogicalColumn, startOffset, runs)
}
