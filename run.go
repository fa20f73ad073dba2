package textline

// chunkCharacters is the maximum number of characters per chunk. Glyph
// layout is performed per chunk, so this bounds the cost of a single
// shaping call; the last chunk of a run absorbs the remainder.
const chunkCharacters = 1024

// BidiRun is a maximal contiguous span of the line sharing one
// bidirectional embedding level. Runs are created once at layout-build time
// and immutable afterwards, except for the first-touch creation of their
// chunk partition.
type BidiRun struct {
	level       byte
	startOffset int // line-relative
	endOffset   int // line-relative
	chunks      []*Chunk
}

// newWholeLineRun creates a level-0 run spanning [0, length).
func newWholeLineRun(length int) *BidiRun {
	return newBidiRun(0, 0, length)
}

func newBidiRun(level byte, startOffset, endOffset int) *BidiRun {
	return &BidiRun{level: level, startOffset: startOffset, endOffset: endOffset}
}

// Level returns the run's bidirectional embedding level.
func (r *BidiRun) Level() byte { return r.level }

// StartOffset returns the line-relative offset of the run's first character.
func (r *BidiRun) StartOffset() int { return r.startOffset }

// EndOffset returns the line-relative offset just past the run's last
// character.
func (r *BidiRun) EndOffset() int { return r.endOffset }

// IsRtl reports whether the run's embedding level is odd, i.e. the run is
// rendered right-to-left.
func (r *BidiRun) IsRtl() bool { return r.level&1 != 0 }

// Chunks lazily partitions the run into chunks of at most chunkCharacters
// characters and returns them in logical order. The partition is computed
// once and cached; fragment content inside each chunk stays unshaped.
func (r *BidiRun) Chunks() []*Chunk {
	if r.chunks == nil {
		count := r.chunkCount()
		r.chunks = make([]*Chunk, count)
		for i := 0; i < count; i++ {
			from := r.startOffset + i*chunkCharacters
			to := from + chunkCharacters
			if i == count-1 {
				to = r.endOffset
			}
			r.chunks[i] = newChunk(from, to)
		}
	}
	return r.chunks
}

func (r *BidiRun) chunkCount() int {
	return (r.endOffset - r.startOffset + chunkCharacters - 1) / chunkCharacters
}

// subRun returns a run restricted to the intersection of this run with
// [targetStart, targetEnd). Chunks fully inside the target range are shared
// by reference; boundary chunks are sliced. When quick is non-nil, unshaped
// chunks are replaced by approximations instead of being shaped, and quick
// is invoked each time that happens.
func (r *BidiRun) subRun(v *View, line, targetStart, targetEnd int, quick func()) *BidiRun {
	if targetStart >= r.endOffset || targetEnd <= r.startOffset {
		panic("textline: sub-run range does not overlap run")
	}
	start := max(r.startOffset, targetStart)
	end := min(r.endOffset, targetEnd)
	sub := newBidiRun(r.level, start, end)
	sub.chunks = make([]*Chunk, 0, 1)
	for _, chunk := range r.Chunks() {
		if chunk.endOffset <= start {
			continue
		}
		if chunk.startOffset >= end {
			break
		}
		sub.chunks = append(sub.chunks, chunk.subChunk(v, r, line, start, end, quick))
	}
	return sub
}
