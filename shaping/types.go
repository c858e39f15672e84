package shaping

import "github.com/gogpu/textmesh/rich"

// GlyphID is a glyph index within a font.
type GlyphID uint16

// Rect is an axis-aligned rectangle in glyph space.
type Rect struct {
	MinX, MinY float32
	MaxX, MaxY float32
}

// Width returns the width of the rectangle.
func (r Rect) Width() float32 { return r.MaxX - r.MinX }

// Height returns the height of the rectangle.
func (r Rect) Height() float32 { return r.MaxY - r.MinY }

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool { return r.MinX >= r.MaxX || r.MinY >= r.MaxY }

// Align is the horizontal alignment of lines within a text block.
type Align uint8

const (
	// AlignLeft aligns line starts.
	AlignLeft Align = iota
	// AlignCenter centers each line.
	AlignCenter
	// AlignRight aligns line ends.
	AlignRight
)

// Factor returns the alignment as a fraction of leftover line width.
func (a Align) Factor() float32 {
	switch a {
	case AlignCenter:
		return 0.5
	case AlignRight:
		return 1
	default:
		return 0
	}
}

// Anchor places the block origin within its bounding box. Coordinates are
// in (-0.5, -0.5) bottom-left to (0.5, 0.5) top-right; the zero value is
// the block center.
type Anchor struct {
	X, Y float32
}

// Common anchors.
var (
	AnchorCenter      = Anchor{0, 0}
	AnchorBottomLeft  = Anchor{-0.5, -0.5}
	AnchorBottomRight = Anchor{0.5, -0.5}
	AnchorTopLeft     = Anchor{-0.5, 0.5}
	AnchorTopRight    = Anchor{0.5, 0.5}
)

// PositionedGlyph is a single glyph placed by the shaper, carrying the
// style metadata the mesh emitter needs.
type PositionedGlyph struct {
	// FontID identifies the font within the FontLibrary.
	FontID uint64

	// GID is the glyph index within the font. GID 0 is the font's tofu
	// glyph, substituted when a rune has no glyph.
	GID GlyphID

	// Size is the pixel size (ppem) the glyph was shaped at.
	Size float32

	// X, Y are the pen position of the glyph, y-up, relative to the
	// block origin after alignment and anchoring.
	X, Y float32

	// Advance is the horizontal advance of the glyph in pixels.
	Advance float32

	// Color is the resolved fill color of the originating run.
	Color rich.Color

	// Stroke is the stroke width percentage, zero for none.
	Stroke uint32

	// StrokeColor is the resolved stroke color, used when Stroke > 0.
	StrokeColor rich.Color

	// Filled reports whether the glyph interior is rendered. Stroke and
	// rule layers are unaffected.
	Filled bool

	// Underline and Strikethrough request rule quads spanning the
	// glyph's advance.
	Underline     bool
	Strikethrough bool

	// MagicNumber is the originating run's free scalar.
	MagicNumber float32

	// Line is the zero-based line index.
	Line int

	// LineProgress is the glyph center's fractional position within its
	// line, in [0, 1].
	LineProgress float32

	// Cluster is the rune cluster index within the source text.
	Cluster int

	// Rune is the first rune of the glyph's cluster.
	Rune rune

	// Whitespace marks glyphs that occupy advance but draw nothing.
	Whitespace bool
}

// Result pairs a shaped glyph sequence with block metrics.
type Result struct {
	// Glyphs in visual order: left to right within a line, top to
	// bottom across lines.
	Glyphs []PositionedGlyph

	// Width and Height of the laid-out block in pixels.
	Width, Height float32

	// Lines is the number of lines produced.
	Lines int
}
