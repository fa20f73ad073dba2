package textline

import "log/slog"

// Chunk is a bounded-size sub-range of a run and the unit of lazy shaping:
// its fragment list starts empty and is populated on first access, then
// kept until the chunk is evicted via ClearCache.
type Chunk struct {
	startOffset   int // line-relative
	endOffset     int // line-relative
	fragments     []Fragment // logical order
	approximation bool
}

func newChunk(startOffset, endOffset int) *Chunk {
	return &Chunk{startOffset: startOffset, endOffset: endOffset}
}

// newApproximationChunk synthesizes an already-"shaped" chunk holding a
// single approximation fragment, sized from the logical column span of
// [start, end) and the view's per-character width estimate.
func newApproximationChunk(v *View, line, start, end int) *Chunk {
	startColumn := v.logicalColumn(line, start)
	endColumn := v.logicalColumn(line, end)
	return &Chunk{
		startOffset:   start,
		endOffset:     end,
		approximation: true,
		fragments: []Fragment{
			NewApproximationFragment(end-start, endColumn-startColumn, v.MaxCharWidth),
		},
	}
}

// StartOffset returns the line-relative offset of the chunk's first
// character.
func (c *Chunk) StartOffset() int { return c.startOffset }

// EndOffset returns the line-relative offset just past the chunk's last
// character.
func (c *Chunk) EndOffset() int { return c.endOffset }

// Fragments returns the chunk's fragments in logical order. Empty until the
// chunk has been laid out.
func (c *Chunk) Fragments() []Fragment { return c.fragments }

// IsReal reports whether the chunk holds (or will hold) genuinely shaped
// fragments, as opposed to a width approximation.
func (c *Chunk) IsReal() bool { return !c.approximation }

// EnsureLayout shapes the chunk's character range if that has not happened
// yet, and notifies the view's chunk-access sink for cache bookkeeping.
// Shaping walks the style runs covering the range and invokes the view's
// shaper once per uniform-style span.
func (c *Chunk) EnsureLayout(v *View, run *BidiRun, line int) {
	if c.IsReal() {
		v.notifyChunkAccess(c)
	}
	if len(c.fragments) > 0 {
		return
	}
	lineStart := v.Document.LineStart(line)
	start := lineStart + c.startOffset
	end := lineStart + c.endOffset
	text := v.Document.Runes(start, end)
	for _, sr := range v.styleRuns(start, end) {
		frags := v.Shaper.Shape(text, sr.Start-start, sr.End-start, sr.Style, run.IsRtl(), v.Tab)
		c.fragments = append(c.fragments, frags...)
	}
	v.notifyLayoutPerformed(start, end)
	if len(c.fragments) == 0 {
		panic("textline: chunk layout produced no fragments")
	}
	Logger().Debug("textline: chunk shaped",
		slog.Int("start", c.startOffset), slog.Int("end", c.endOffset),
		slog.Int("fragments", len(c.fragments)))
}

// subChunk returns a chunk restricted to the intersection of this chunk
// with [targetStart, targetEnd). An exactly-covering request returns the
// chunk itself; otherwise boundary fragments are sliced at the crossing
// points, shaping the chunk first if needed.
//
// When quick is non-nil and the chunk has not been shaped yet, real shaping
// is skipped entirely: quick is invoked and an approximation chunk is
// returned instead.
func (c *Chunk) subChunk(v *View, run *BidiRun, line, targetStart, targetEnd int, quick func()) *Chunk {
	if targetStart >= c.endOffset || targetEnd <= c.startOffset {
		panic("textline: sub-chunk range does not overlap chunk")
	}
	start := max(c.startOffset, targetStart)
	end := min(c.endOffset, targetEnd)
	if quick != nil && len(c.fragments) == 0 {
		quick()
		Logger().Debug("textline: approximating unshaped chunk",
			slog.Int("start", start), slog.Int("end", end))
		return newApproximationChunk(v, line, start, end)
	}
	if start == c.startOffset && end == c.endOffset {
		return c
	}
	c.EnsureLayout(v, run, line)
	sub := newChunk(start, end)
	offset := c.startOffset
	for _, fragment := range c.fragments {
		if end <= offset {
			break
		}
		fragmentEnd := offset + fragment.Length()
		if start < fragmentEnd {
			sub.fragments = append(sub.fragments,
				fragment.Sub(max(start, offset)-offset, min(end, fragmentEnd)-offset))
		}
		offset = fragmentEnd
	}
	return sub
}

// ClearCache discards the chunk's fragment content, reverting it to the
// unshaped state. Chunk boundaries are kept; the next EnsureLayout reshapes
// from current text and styles.
func (c *Chunk) ClearCache() {
	c.fragments = nil
}
