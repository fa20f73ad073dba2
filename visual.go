package textline

import "iter"

// VisualIterator walks runs, chunks and fragments in visual order, shaping
// chunks lazily as they come into view. Within a right-to-left run, chunks
// and fragments are visited in reverse array order; run-level ordering has
// already been handled by the visual reordering step.
//
// The iterator owns a single VisualFragment that is updated in place on
// every Next call.
type VisualIterator struct {
	view *View
	line int
	runs []*BidiRun // visual order

	runIndex        int
	chunkIndex      int
	fragmentIndex   int
	offsetInsideRun int

	fragment VisualFragment
}

func newVisualIterator(view *View, line int, startX float64, startVisualColumn,
	startLogicalColumn, startOffset int, runsInVisualOrder []*BidiRun) *VisualIterator {
	it := &VisualIterator{view: view, line: line, runs: runsInVisualOrder}
	it.fragment.startX = startX
	it.fragment.startVisualColumn = startVisualColumn
	it.fragment.startLogicalColumn = startLogicalColumn
	it.fragment.startOffset = startOffset
	return it
}

// HasNext reports whether another fragment remains. It shapes the chunk
// about to be visited, so laziness is driven by visual-order visitation.
func (it *VisualIterator) HasNext() bool {
	if it.runIndex >= len(it.runs) {
		return false
	}
	run := it.runs[it.runIndex]
	chunks := run.Chunks()
	if it.chunkIndex >= len(chunks) {
		return false
	}
	chunk := chunks[chunkArrayIndex(run, chunks, it.chunkIndex)]
	if it.view != nil {
		chunk.EnsureLayout(it.view, run, it.line)
	}
	return it.fragmentIndex < len(chunk.fragments)
}

// Next advances to the next fragment in visual order and returns the
// iterator's fragment, updated in place. The logical column advances by a
// signed delta appropriate to the run's direction, while x position and
// visual column always grow monotonically.
//
// Next panics if the traversal is already exhausted.
func (it *VisualIterator) Next() *VisualFragment {
	if !it.HasNext() {
		panic("textline: visual iterator exhausted")
	}
	run := it.runs[it.runIndex]
	f := &it.fragment

	if it.runIndex == 0 && it.chunkIndex == 0 && it.fragmentIndex == 0 {
		f.startLogicalColumn += runEntryOffset(run) - f.startOffset
	} else {
		f.startLogicalColumn = f.EndLogicalColumn()
		if it.chunkIndex == 0 && it.fragmentIndex == 0 {
			f.startLogicalColumn += runEntryOffset(run) - f.EndOffset()
		}
		f.startVisualColumn = f.EndVisualColumn()
		f.startX = f.EndX()
	}

	f.isRtl = run.IsRtl()
	chunks := run.Chunks()
	chunk := chunks[chunkArrayIndex(run, chunks, it.chunkIndex)]
	if len(chunk.fragments) == 0 {
		panic("textline: visiting an unshaped chunk")
	}
	fragmentPos := it.fragmentIndex
	if run.IsRtl() {
		fragmentPos = len(chunk.fragments) - 1 - it.fragmentIndex
	}
	f.delegate = chunk.fragments[fragmentPos]
	if run.IsRtl() {
		f.startOffset = run.endOffset - it.offsetInsideRun
	} else {
		f.startOffset = run.startOffset + it.offsetInsideRun
	}

	it.offsetInsideRun += f.Length()
	it.fragmentIndex++
	if it.fragmentIndex >= len(chunk.fragments) {
		it.fragmentIndex = 0
		it.chunkIndex++
		if it.chunkIndex >= len(chunks) {
			it.chunkIndex = 0
			it.offsetInsideRun = 0
			it.runIndex++
		}
	}

	return f
}

// All returns a single-use sequence over the remaining fragments, for use
// with range-over-func. The yielded fragment is reused between steps and
// must not be retained.
func (it *VisualIterator) All() iter.Seq[*VisualFragment] {
	return func(yield func(*VisualFragment) bool) {
		for it.HasNext() {
			if !yield(it.Next()) {
				return
			}
		}
	}
}

// runEntryOffset is the offset at which a visual traversal enters a run:
// its start for LTR, its end for RTL.
func runEntryOffset(run *BidiRun) int {
	if run.IsRtl() {
		return run.endOffset
	}
	return run.startOffset
}

// chunkArrayIndex maps a visual chunk position to an index into the run's
// logical-order chunk array.
func chunkArrayIndex(run *BidiRun, chunks []*Chunk, visualIndex int) int {
	if run.IsRtl() {
		return len(chunks) - 1 - visualIndex
	}
	return visualIndex
}

// VisualFragment is the fragment currently visited by a VisualIterator,
// together with its accumulated position state. All end/min/max accessors
// derive from the start values plus the delegate's extent, mirrored when
// the fragment is right-to-left.
//
// A VisualFragment is owned by its iterator and reused across advances;
// callers must copy any values they need past the next call to Next.
type VisualFragment struct {
	delegate           Fragment
	startOffset        int
	startLogicalColumn int
	startVisualColumn  int
	startX             float64
	isRtl              bool
}

// IsRtl reports whether the fragment belongs to a right-to-left run.
func (f *VisualFragment) IsRtl() bool { return f.isRtl }

// MinOffset returns the smallest line-relative offset covered.
func (f *VisualFragment) MinOffset() int {
	if f.isRtl {
		return f.startOffset - f.Length()
	}
	return f.startOffset
}

// MaxOffset returns the largest line-relative offset covered.
func (f *VisualFragment) MaxOffset() int {
	if f.isRtl {
		return f.startOffset
	}
	return f.startOffset + f.Length()
}

// StartOffset returns the offset at the fragment's leading (visually
// leftmost) edge: the minimum offset for LTR, the maximum for RTL.
func (f *VisualFragment) StartOffset() int { return f.startOffset }

// EndOffset returns the offset at the fragment's trailing edge.
func (f *VisualFragment) EndOffset() int {
	if f.isRtl {
		return f.startOffset - f.Length()
	}
	return f.startOffset + f.Length()
}

// Length returns the number of characters covered.
func (f *VisualFragment) Length() int { return f.delegate.Length() }

// StartLogicalColumn returns the logical column at the fragment's leading
// edge.
func (f *VisualFragment) StartLogicalColumn() int { return f.startLogicalColumn }

// EndLogicalColumn returns the logical column at the fragment's trailing
// edge.
func (f *VisualFragment) EndLogicalColumn() int {
	if f.isRtl {
		return f.startLogicalColumn - f.LogicalColumnCount()
	}
	return f.startLogicalColumn + f.LogicalColumnCount()
}

// MinLogicalColumn returns the smallest logical column covered.
func (f *VisualFragment) MinLogicalColumn() int {
	if f.isRtl {
		return f.startLogicalColumn - f.LogicalColumnCount()
	}
	return f.startLogicalColumn
}

// MaxLogicalColumn returns the largest logical column covered.
func (f *VisualFragment) MaxLogicalColumn() int {
	if f.isRtl {
		return f.startLogicalColumn
	}
	return f.startLogicalColumn + f.LogicalColumnCount()
}

// StartVisualColumn returns the visual column at the fragment's left edge.
func (f *VisualFragment) StartVisualColumn() int { return f.startVisualColumn }

// EndVisualColumn returns the visual column at the fragment's right edge.
func (f *VisualFragment) EndVisualColumn() int {
	return f.startVisualColumn + f.VisualColumnCount()
}

// LogicalColumnCount returns the number of logical columns covered.
func (f *VisualFragment) LogicalColumnCount() int {
	if f.isRtl {
		return f.Length()
	}
	return f.delegate.LogicalColumnCount(f.MinLogicalColumn())
}

// VisualColumnCount returns the number of visual columns covered.
func (f *VisualFragment) VisualColumnCount() int {
	return f.delegate.VisualColumnCount(f.startX)
}

// StartX returns the x position of the fragment's left edge.
func (f *VisualFragment) StartX() float64 { return f.startX }

// EndX returns the x position of the fragment's right edge.
func (f *VisualFragment) EndX() float64 {
	return f.delegate.OffsetToX(f.startX, 0, f.Length())
}

// Width returns the fragment's pixel width.
func (f *VisualFragment) Width() float64 {
	return f.EndX() - f.StartX()
}

// LogicalToVisualColumn converts an absolute logical column, expected to be
// between MinLogicalColumn and MaxLogicalColumn, to an absolute visual
// column.
func (f *VisualFragment) LogicalToVisualColumn(column int) int {
	relative := column - f.startLogicalColumn
	if f.isRtl {
		relative = f.startLogicalColumn - column
	}
	return f.startVisualColumn + f.delegate.LogicalToVisualColumn(f.startX, f.MinLogicalColumn(), relative)
}

// VisualToLogicalColumn converts an absolute visual column, expected to be
// between StartVisualColumn and EndVisualColumn, to an absolute logical
// column.
func (f *VisualFragment) VisualToLogicalColumn(column int) int {
	relative := f.delegate.VisualToLogicalColumn(f.startX, f.MinLogicalColumn(), column-f.startVisualColumn)
	if f.isRtl {
		return f.startLogicalColumn - relative
	}
	return f.startLogicalColumn + relative
}

// OffsetToX returns the x position of an offset, expected to be between
// MinOffset and MaxOffset.
func (f *VisualFragment) OffsetToX(offset int) float64 {
	return f.delegate.OffsetToX(f.startX, 0, f.relativeOffset(offset))
}

// OffsetToXFrom returns the x position of an offset, given a known x
// position of another offset inside the fragment. Both offsets are expected
// to be between MinOffset and MaxOffset.
func (f *VisualFragment) OffsetToXFrom(x float64, fromOffset, offset int) float64 {
	return f.delegate.OffsetToX(x, f.relativeOffset(fromOffset), f.relativeOffset(offset))
}

// XToVisualColumn returns the absolute visual column nearest to x, which is
// expected to be between StartX and EndX, plus a tie-break flag that is
// true when the exact location is closer to larger columns.
func (f *VisualFragment) XToVisualColumn(x float64) (int, bool) {
	column, closerToNext := f.delegate.XToVisualColumn(f.startX, x)
	return column + f.startVisualColumn, closerToNext
}

// VisualColumnToX returns the x position of an absolute visual column,
// expected to be between StartVisualColumn and EndVisualColumn.
func (f *VisualFragment) VisualColumnToX(column int) float64 {
	return f.delegate.VisualColumnToX(f.startX, column-f.startVisualColumn)
}

// Draw renders the whole fragment with its leading edge at x and baseline
// at y.
func (f *VisualFragment) Draw(p Painter, x, y float64) {
	f.delegate.Draw(p, x, y, 0, f.VisualColumnCount())
}

// DrawRange renders the fragment-relative visual column range
// [startColumn, endColumn).
func (f *VisualFragment) DrawRange(p Painter, x, y float64, startColumn, endColumn int) {
	f.delegate.Draw(p, x, y, startColumn, endColumn)
}

// relativeOffset converts an absolute offset into the delegate's
// visual-progression relative offset.
func (f *VisualFragment) relativeOffset(offset int) int {
	if f.isRtl {
		return f.startOffset - offset
	}
	return offset - f.startOffset
}
