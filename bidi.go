package textline

import (
	"log/slog"

	"golang.org/x/text/unicode/bidi"
)

// RequiresBidi reports whether text contains characters that make full
// bidirectional analysis necessary: right-to-left letters, Arabic numbers,
// or explicit right-to-left formatting controls.
func RequiresBidi(text []rune) bool {
	for _, r := range text {
		p, _ := bidi.LookupRune(r)
		switch p.Class() {
		case bidi.R, bidi.AL, bidi.AN, bidi.RLE, bidi.RLO, bidi.RLI:
			return true
		}
	}
	return false
}

// createRuns segments a line's characters into BidiRuns in logical order.
// startOffsetInDoc is the absolute offset of text[0] when the line belongs
// to a document (enabling token-boundary restarts), or -1 for detached text.
//
// The result covers [0, len(text)) with no gaps and never contains two
// adjacent level-0 runs.
func createRuns(v *View, text []rune, startOffsetInDoc int) []*BidiRun {
	if v.DisableBidi || !RequiresBidi(text) {
		return []*BidiRun{newWholeLineRun(len(text))}
	}
	var runs []*BidiRun
	if startOffsetInDoc >= 0 && v.Tokens != nil {
		// Restart the bidi algorithm at every border between distinct
		// lexer tokens, so directional runs never straddle one.
		lastOffset := startOffsetInDoc
		var lastToken *Token
		endOffsetInDoc := startOffsetInDoc + len(text)
		it := v.Tokens.Tokens(startOffsetInDoc)
		for !it.AtEnd() && it.Start() < endOffsetInDoc {
			current := it.Token()
			if distinctTokens(v, lastToken, current) {
				tokenStart := max(it.Start(), startOffsetInDoc)
				runs = addRuns(runs, text, lastOffset-startOffsetInDoc, tokenStart-startOffsetInDoc)
				lastToken = &current
				lastOffset = tokenStart
			}
			it.Advance()
		}
		runs = addRuns(runs, text, lastOffset-startOffsetInDoc, endOffsetInDoc-startOffsetInDoc)
	} else {
		runs = addRuns(runs, text, 0, len(text))
	}
	Logger().Debug("textline: runs segmented",
		slog.Int("length", len(text)), slog.Int("runs", len(runs)))
	return runs
}

// distinctTokens reports whether two adjacent tokens must start separate
// bidi regions.
func distinctTokens(v *View, last *Token, current Token) bool {
	if last == nil {
		return true
	}
	if *last == current {
		return false
	}
	if last.Language != current.Language {
		return true
	}
	sep := v.separatorFor(last.Language)
	if sep == nil {
		return true
	}
	return sep.BorderBetween(*last, current)
}

// addRuns appends runs for text[start:end), splitting the bidi analysis at
// every literal tab. A tab enters as its own level-0 run, so it can never
// land inside a right-to-left run; the merge rule may still fold it into
// level-0 neighbors.
func addRuns(runs []*BidiRun, text []rune, start, end int) []*BidiRun {
	afterLastTab := start
	for i := start; i < end; i++ {
		if text[i] == '\t' {
			runs = addRunsNoTabs(runs, text, afterLastTab, i)
			afterLastTab = i + 1
			runs = addOrMergeRun(runs, newBidiRun(0, i, i+1))
		}
	}
	return addRunsNoTabs(runs, text, afterLastTab, end)
}

// addRunsNoTabs appends level-tagged runs for a tab-free span, as resolved
// by the Unicode bidi algorithm under a default left-to-right base
// direction.
func addRunsNoTabs(runs []*BidiRun, text []rune, start, end int) []*BidiRun {
	if start >= end {
		return runs
	}
	var p bidi.Paragraph
	_, _ = p.SetString(string(text[start:end]))
	ordering, err := p.Order()
	if err != nil {
		// Malformed input; treat the span as plain left-to-right.
		Logger().Warn("textline: bidi analysis failed, treating span as LTR",
			slog.Int("start", start), slog.Int("end", end), slog.Any("error", err))
		return addOrMergeRun(runs, newBidiRun(0, start, end))
	}
	for i := 0; i < ordering.NumRuns(); i++ {
		run := ordering.Run(i)
		// Pos reports inclusive rune indices within the span.
		s, e := run.Pos()
		level := byte(0)
		if run.Direction() == bidi.RightToLeft {
			level = 1
		}
		runs = addOrMergeRun(runs, newBidiRun(level, start+s, start+e+1))
	}
	return runs
}

// addOrMergeRun appends a run, folding it into the previous one when both
// have level 0. The layout fast path depends on this: a line with no bidi
// influence must always collapse to exactly one run.
func addOrMergeRun(runs []*BidiRun, run *BidiRun) []*BidiRun {
	if n := len(runs); n > 0 && runs[n-1].level == 0 && run.level == 0 {
		last := runs[n-1]
		if last.endOffset != run.startOffset {
			panic("textline: merging non-adjacent runs")
		}
		runs[n-1] = newBidiRun(0, last.startOffset, run.endOffset)
		return runs
	}
	return append(runs, run)
}

// reorderRunsVisually permutes a logical-order run slice into visual order
// in place, per rule L2 of the Unicode bidi algorithm: from the highest
// level down to the lowest odd level, reverse every maximal contiguous
// subsequence of runs at that level or higher.
func reorderRunsVisually(runs []*BidiRun) {
	var maxLevel byte
	minOddLevel := byte(255)
	for _, r := range runs {
		if r.level > maxLevel {
			maxLevel = r.level
		}
		if r.level&1 != 0 && r.level < minOddLevel {
			minOddLevel = r.level
		}
	}
	if minOddLevel == 255 {
		return
	}
	for level := maxLevel; level >= minOddLevel; level-- {
		for i := 0; i < len(runs); i++ {
			if runs[i].level < level {
				continue
			}
			j := i
			for j+1 < len(runs) && runs[j+1].level >= level {
				j++
			}
			for lo, hi := i, j; lo < hi; lo, hi = lo+1, hi-1 {
				runs[lo], runs[hi] = runs[hi], runs[lo]
			}
			i = j
		}
	}
}
