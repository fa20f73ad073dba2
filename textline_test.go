package textline

// Shared test fakes. Engine tests avoid real glyph shaping: the stub shaper
// produces monospace fragments, which keeps expected positions exact.

// fakeDocument holds a single line of text at offset 0.
type fakeDocument struct {
	text []rune
}

func (d *fakeDocument) LineStart(line int) int { return 0 }
func (d *fakeDocument) LineEnd(line int) int   { return len(d.text) }
func (d *fakeDocument) Runes(start, end int) []rune {
	return d.text[start:end]
}

// stubShaper produces fixed-width text fragments without touching a font.
// It honors the tab-splitting contract of FragmentShaper.
type stubShaper struct {
	charWidth float64
	calls     int
}

func (s *stubShaper) Shape(text []rune, start, end int, style FontStyle, rtl bool, tab *TabFragment) []Fragment {
	if start >= end {
		panic("stubShaper: empty span")
	}
	s.calls++
	var frags []Fragment
	cur := start
	for i := start; i < end; i++ {
		if text[i] == '\t' && tab != nil {
			if i > cur {
				frags = append(frags, stubTextFragment(i-cur, s.charWidth, rtl))
			}
			frags = append(frags, tab)
			cur = i + 1
		}
	}
	if end > cur {
		frags = append(frags, stubTextFragment(end-cur, s.charWidth, rtl))
	}
	return frags
}

// stubTextFragment builds a TextFragment with uniform character widths and
// no glyphs; only its metric contract is exercised.
func stubTextFragment(length int, charWidth float64, rtl bool) *TextFragment {
	widths := make([]float64, length)
	for i := range widths {
		widths[i] = charWidth
	}
	return newTextFragment(widths, nil, nil, 0, rtl)
}

// recordingAccessSink records chunk access notifications.
type recordingAccessSink struct {
	accesses []*Chunk
}

func (r *recordingAccessSink) OnChunkAccess(c *Chunk) {
	r.accesses = append(r.accesses, c)
}

// recordingLayoutListener records layout-performed ranges.
type recordingLayoutListener struct {
	ranges [][2]int
}

func (r *recordingLayoutListener) TextLayoutPerformed(start, end int) {
	r.ranges = append(r.ranges, [2]int{start, end})
}

// newTestView builds a View over a one-line document with a monospace stub
// shaper (10px per character).
func newTestView(text string) (*View, *stubShaper) {
	shaper := &stubShaper{charWidth: 10}
	view := &View{
		Document:     &fakeDocument{text: []rune(text)},
		Shaper:       shaper,
		MaxCharWidth: 12,
	}
	return view, shaper
}

// Hebrew letters aleph-bet-gimel and dalet-he-vav; strongly right-to-left.
const (
	rtlABC = "אבג"
	rtlDEF = "דהו"
)

// tokenSpan is one token of the fake token source.
type tokenSpan struct {
	start, end int
	token      Token
}

// fakeTokenSource iterates over a fixed token list.
type fakeTokenSource struct {
	spans []tokenSpan
}

func (s *fakeTokenSource) Tokens(offset int) TokenIterator {
	idx := 0
	for idx < len(s.spans) && s.spans[idx].end <= offset {
		idx++
	}
	return &fakeTokenIterator{spans: s.spans, idx: idx}
}

type fakeTokenIterator struct {
	spans []tokenSpan
	idx   int
}

func (it *fakeTokenIterator) AtEnd() bool  { return it.idx >= len(it.spans) }
func (it *fakeTokenIterator) Start() int   { return it.spans[it.idx].start }
func (it *fakeTokenIterator) Token() Token { return it.spans[it.idx].token }
func (it *fakeTokenIterator) Advance()     { it.idx++ }
