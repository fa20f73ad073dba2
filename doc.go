// Package textline lays out a single line of text for rendering.
//
// # Overview
//
// A line is split into BidiRuns, maximal spans sharing one bidirectional
// embedding level. Each run is partitioned into fixed-size Chunks, and each
// chunk owns a lazily shaped list of Fragments. Shaping happens per-chunk,
// only for chunks that are actually visited, which keeps long lines cheap
// until (and unless) they are rendered.
//
// A layout exposes its runs in both logical (character) order and visual
// (on-screen) order, and produces VisualFragments that carry enough state to
// map between character offsets, logical columns, visual columns and pixel
// positions in either direction.
//
// # Quick Start
//
//	import "github.com/gogpu/textline"
//
//	view := &textline.View{
//	    Document:     doc,
//	    Shaper:       textline.NewHarfbuzzShaper(resolver, 16),
//	    MaxCharWidth: 12,
//	}
//
//	layout := textline.New(view, line, false)
//	it := layout.FragmentsInRange(view, line, 0, 0, 0, lineLength, nil)
//	for it.HasNext() {
//	    f := it.Next()
//	    f.Draw(painter, f.StartX(), baseline)
//	}
//
// # Collaborators
//
// The package deliberately does not own document storage, font resolution,
// glyph shaping internals, syntax tokenization or cache eviction policy.
// Those are supplied through the interfaces on View. A ready-made
// HarfbuzzFragmentShaper backed by github.com/go-text/typesetting is
// provided, as is an LRU chunk cache in the cache subpackage.
package textline
