package textline

import "testing"

func TestTextFragmentMetrics(t *testing.T) {
	f := newTextFragment([]float64{1, 2, 3}, nil, nil, 0, false)
	if f.Length() != 3 {
		t.Fatalf("Length = %d, want 3", f.Length())
	}
	if f.IsRtl() {
		t.Error("LTR fragment reports RTL")
	}
	if got := f.LogicalColumnCount(0); got != 3 {
		t.Errorf("LogicalColumnCount = %d, want 3", got)
	}
	if got := f.VisualColumnCount(0); got != 3 {
		t.Errorf("VisualColumnCount = %d, want 3", got)
	}
	// Boundaries at 0, 1, 3, 6.
	if got := f.OffsetToX(10, 0, 3); got != 16 {
		t.Errorf("OffsetToX(10, 0, 3) = %v, want 16", got)
	}
	if got := f.OffsetToX(10, 1, 2); got != 12 {
		t.Errorf("OffsetToX(10, 1, 2) = %v, want 12", got)
	}
	for column, want := range []float64{0, 1, 3, 6} {
		if got := f.VisualColumnToX(0, column); got != want {
			t.Errorf("VisualColumnToX(0, %d) = %v, want %v", column, got, want)
		}
	}
}

func TestTextFragmentXToVisualColumn(t *testing.T) {
	f := newTextFragment([]float64{1, 2, 3}, nil, nil, 0, false)
	tests := []struct {
		x           float64
		column      int
		closerToNext bool
	}{
		{0, 0, false},
		{0.4, 0, true},
		{0.6, 1, false},
		{1, 1, false},
		{2, 1, true}, // equidistant to boundaries 1 and 3; lower column wins
		{2.5, 2, false},
		{5, 3, false},
		{6, 3, false},
		{7, 3, true},
	}
	for _, tt := range tests {
		column, closerToNext := f.XToVisualColumn(0, tt.x)
		if column != tt.column || closerToNext != tt.closerToNext {
			t.Errorf("XToVisualColumn(0, %v) = (%d, %v), want (%d, %v)",
				tt.x, column, closerToNext, tt.column, tt.closerToNext)
		}
	}
}

func TestTextFragmentRTLPositions(t *testing.T) {
	// Logical widths 1, 2, 3 in an RTL fragment progress visually as
	// 3, 2, 1: boundaries at 0, 3, 5, 6.
	f := newTextFragment([]float64{1, 2, 3}, nil, nil, 0, true)
	if !f.IsRtl() {
		t.Fatal("RTL fragment reports LTR")
	}
	for column, want := range []float64{0, 3, 5, 6} {
		if got := f.VisualColumnToX(0, column); got != want {
			t.Errorf("VisualColumnToX(0, %d) = %v, want %v", column, got, want)
		}
	}
}

func TestTextFragmentSub(t *testing.T) {
	t.Run("full range returns the fragment itself", func(t *testing.T) {
		f := newTextFragment([]float64{1, 2, 3}, nil, nil, 0, false)
		if f.Sub(0, 3) != Fragment(f) {
			t.Error("full-range Sub allocated a copy")
		}
	})

	t.Run("LTR slice", func(t *testing.T) {
		f := newTextFragment([]float64{1, 2, 3}, nil, nil, 0, false)
		sub := f.Sub(1, 3)
		if sub.Length() != 2 {
			t.Fatalf("Length = %d, want 2", sub.Length())
		}
		// Characters with widths 2 and 3.
		if got := sub.OffsetToX(0, 0, 2); got != 5 {
			t.Errorf("OffsetToX(0, 0, 2) = %v, want 5", got)
		}
		if got := sub.VisualColumnToX(0, 1); got != 2 {
			t.Errorf("VisualColumnToX(0, 1) = %v, want 2", got)
		}
	})

	t.Run("RTL slice maps the logical range to visual boundaries", func(t *testing.T) {
		f := newTextFragment([]float64{1, 2, 3}, nil, nil, 0, true)
		// Logical [0, 2) is the two visually rightmost characters, with
		// widths 2 then 1 in visual progression.
		sub := f.Sub(0, 2)
		if sub.Length() != 2 {
			t.Fatalf("Length = %d, want 2", sub.Length())
		}
		if got := sub.OffsetToX(0, 0, 2); got != 3 {
			t.Errorf("OffsetToX(0, 0, 2) = %v, want 3", got)
		}
		if got := sub.VisualColumnToX(0, 1); got != 2 {
			t.Errorf("VisualColumnToX(0, 1) = %v, want 2", got)
		}
	})
}

func TestTextFragmentSubGlyphs(t *testing.T) {
	glyphs := []ShapedGlyph{
		{GID: 1, Cluster: 0, X: 0, XAdvance: 1},
		{GID: 2, Cluster: 1, X: 1, XAdvance: 2},
		{GID: 3, Cluster: 2, X: 3, XAdvance: 3},
	}
	f := newTextFragment([]float64{1, 2, 3}, glyphs, nil, 0, false)
	sub := f.Sub(1, 3).(*TextFragment)
	if len(sub.glyphs) != 2 {
		t.Fatalf("got %d glyphs, want 2", len(sub.glyphs))
	}
	if sub.glyphs[0].GID != 2 || sub.glyphs[0].Cluster != 0 || sub.glyphs[0].X != 0 {
		t.Errorf("first glyph = %+v, want GID 2 at cluster 0, x 0", sub.glyphs[0])
	}
	if sub.glyphs[1].GID != 3 || sub.glyphs[1].Cluster != 1 || sub.glyphs[1].X != 2 {
		t.Errorf("second glyph = %+v, want GID 3 at cluster 1, x 2", sub.glyphs[1])
	}
}

func TestTabFragment(t *testing.T) {
	tab := NewTabFragment(10, 4)
	if tab.Length() != 1 {
		t.Fatalf("Length = %d, want 1", tab.Length())
	}

	t.Run("logical columns run to the next multiple of the tab size", func(t *testing.T) {
		tests := []struct{ startColumn, want int }{
			{0, 4}, {1, 3}, {3, 1}, {4, 4}, {5, 3},
		}
		for _, tt := range tests {
			if got := tab.LogicalColumnCount(tt.startColumn); got != tt.want {
				t.Errorf("LogicalColumnCount(%d) = %d, want %d", tt.startColumn, got, tt.want)
			}
		}
	})

	t.Run("visual columns depend on the pixel position", func(t *testing.T) {
		tests := []struct {
			startX float64
			want   int
		}{
			{0, 4}, {5, 4}, {10, 3}, {35, 1}, {40, 4},
		}
		for _, tt := range tests {
			if got := tab.VisualColumnCount(tt.startX); got != tt.want {
				t.Errorf("VisualColumnCount(%v) = %d, want %d", tt.startX, got, tt.want)
			}
		}
	})

	t.Run("x mapping jumps to the next stop", func(t *testing.T) {
		if got := tab.OffsetToX(5, 0, 1); got != 40 {
			t.Errorf("OffsetToX(5, 0, 1) = %v, want 40", got)
		}
		if got := tab.OffsetToX(5, 0, 0); got != 5 {
			t.Errorf("OffsetToX(5, 0, 0) = %v, want 5", got)
		}
		if got := tab.OffsetToX(40, 0, 1); got != 80 {
			t.Errorf("OffsetToX(40, 0, 1) = %v, want 80", got)
		}
	})

	t.Run("column to x", func(t *testing.T) {
		if got := tab.VisualColumnToX(0, 2); got != 20 {
			t.Errorf("VisualColumnToX(0, 2) = %v, want 20", got)
		}
		// The last column ends at the stop, not at a full column width.
		if got := tab.VisualColumnToX(35, 1); got != 40 {
			t.Errorf("VisualColumnToX(35, 1) = %v, want 40", got)
		}
	})

	t.Run("x to column", func(t *testing.T) {
		column, closerToNext := tab.XToVisualColumn(0, 19)
		if column != 2 || closerToNext {
			t.Errorf("XToVisualColumn(0, 19) = (%d, %v), want (2, false)", column, closerToNext)
		}
		column, closerToNext = tab.XToVisualColumn(0, 21)
		if column != 2 || !closerToNext {
			t.Errorf("XToVisualColumn(0, 21) = (%d, %v), want (2, true)", column, closerToNext)
		}
	})

	t.Run("sub-range", func(t *testing.T) {
		if tab.Sub(0, 1) != Fragment(tab) {
			t.Error("Sub(0, 1) did not return the tab itself")
		}
		defer func() {
			if recover() == nil {
				t.Fatal("expected panic")
			}
		}()
		tab.Sub(1, 1)
	})
}

func TestNewTabFragmentValidation(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	NewTabFragment(0, 4)
}

func TestApproximationFragment(t *testing.T) {
	f := NewApproximationFragment(10, 12, 8)
	if f.Length() != 10 {
		t.Fatalf("Length = %d, want 10", f.Length())
	}
	if got := f.LogicalColumnCount(0); got != 12 {
		t.Errorf("LogicalColumnCount = %d, want 12", got)
	}
	if got := f.VisualColumnCount(0); got != 12 {
		t.Errorf("VisualColumnCount = %d, want 12", got)
	}
	// Total width is columns times the per-character bound, spread evenly
	// over the characters.
	if got := f.OffsetToX(0, 0, 10); got != 96 {
		t.Errorf("OffsetToX(0, 0, 10) = %v, want 96", got)
	}
	if got := f.OffsetToX(0, 0, 5); got != 48 {
		t.Errorf("OffsetToX(0, 0, 5) = %v, want 48", got)
	}
	if got := f.VisualColumnToX(0, 3); got != 24 {
		t.Errorf("VisualColumnToX(0, 3) = %v, want 24", got)
	}
	column, closerToNext := f.XToVisualColumn(0, 20)
	if column != 3 || closerToNext {
		t.Errorf("XToVisualColumn(0, 20) = (%d, %v), want (3, false)", column, closerToNext)
	}
}

func TestApproximationFragmentSub(t *testing.T) {
	f := NewApproximationFragment(10, 12, 8)
	if f.Sub(0, 10) != Fragment(f) {
		t.Error("full-range Sub allocated a copy")
	}
	sub := f.Sub(0, 5)
	if sub.Length() != 5 {
		t.Fatalf("Length = %d, want 5", sub.Length())
	}
	// Columns are prorated, rounding up.
	if got := sub.LogicalColumnCount(0); got != 6 {
		t.Errorf("LogicalColumnCount = %d, want 6", got)
	}
	if got := sub.OffsetToX(0, 0, 5); got != 48 {
		t.Errorf("OffsetToX(0, 0, 5) = %v, want 48", got)
	}
}
