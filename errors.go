package textline

import "errors"

// Sentinel errors for the textline package.
var (
	// ErrNoCachedWidth is returned by LineLayout.Width for layouts that do
	// not memoize their total width. Only layouts built with NewFromText
	// measure themselves at construction time; document-line layouts are
	// lazy and never compute a full-line width up front.
	ErrNoCachedWidth = errors.New("textline: layout has no precalculated width")
)
