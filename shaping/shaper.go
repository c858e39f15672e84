package shaping

import "github.com/gogpu/textmesh/rich"

// Shaper converts resolved styled runs into positioned glyphs.
//
// Implementations must preserve input ordering: the returned glyphs are in
// visual order, left to right within a line and top to bottom across
// lines, and the ordering is deterministic for identical input. An
// implementation may merge adjacent runs with identical shaping attributes
// for ligature and kerning correctness, as long as per-glyph style
// metadata is re-derived for the output.
type Shaper interface {
	// Shape lays out the runs and returns positioned glyphs with block
	// metrics. A rune with no glyph in the selected font is shaped as
	// the font's tofu glyph (GID 0) rather than failing.
	Shape(runs []rich.Run, opts Options) (*Result, error)
}

// Options configures one shaping pass.
type Options struct {
	// Size is the font size in pixels. Default 16.
	Size float32

	// Font is the default font family for runs that set none.
	Font string

	// LineHeight is the line height as a multiple of Size. Default 1.
	LineHeight float32

	// Align is the horizontal alignment of lines within the block.
	Align Align

	// Anchor places the block origin within the block's bounding box.
	Anchor Anchor

	// Color is the fill color for runs that set none.
	Color rich.Color

	// TabWidth is the tab stop in spaces. Default 4.
	TabWidth int
}

// DefaultOptions returns the default shaping options.
func DefaultOptions() Options {
	return Options{
		Size:       16,
		LineHeight: 1,
		Align:      AlignLeft,
		Anchor:     AnchorCenter,
		Color:      rich.White,
		TabWidth:   4,
	}
}

// normalize fills zero fields with defaults.
func (o Options) normalize() Options {
	if o.Size <= 0 {
		o.Size = 16
	}
	if o.LineHeight <= 0 {
		o.LineHeight = 1
	}
	if o.TabWidth <= 0 {
		o.TabWidth = 4
	}
	if o.Color == (rich.Color{}) {
		o.Color = rich.White
	}
	return o
}
