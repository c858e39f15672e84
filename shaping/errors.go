package shaping

import "errors"

// Sentinel errors for the shaping package.
var (
	// ErrEmptyFontData is returned when font data is empty.
	ErrEmptyFontData = errors.New("shaping: empty font data")

	// ErrNoFonts is returned when shaping is attempted with an empty
	// font library.
	ErrNoFonts = errors.New("shaping: no fonts registered")
)
