package shaping

// OutlinePoint is a point in a glyph outline, in pixels at the requested
// ppem, y-up.
type OutlinePoint struct {
	X, Y float32
}

// OutlineOp is the type of path operation.
type OutlineOp uint8

const (
	// OutlineOpMoveTo starts a new contour.
	OutlineOpMoveTo OutlineOp = iota
	// OutlineOpLineTo draws a line to the target point.
	OutlineOpLineTo
	// OutlineOpQuadTo draws a quadratic bezier curve.
	OutlineOpQuadTo
	// OutlineOpCubicTo draws a cubic bezier curve.
	OutlineOpCubicTo
)

// String returns a string representation of the operation.
func (op OutlineOp) String() string {
	switch op {
	case OutlineOpMoveTo:
		return "MoveTo"
	case OutlineOpLineTo:
		return "LineTo"
	case OutlineOpQuadTo:
		return "QuadTo"
	case OutlineOpCubicTo:
		return "CubicTo"
	default:
		return "Unknown"
	}
}

// OutlineSegment is one segment of a glyph outline.
type OutlineSegment struct {
	// Op is the segment operation type.
	Op OutlineOp

	// Points contains the control and end points for this segment:
	// MoveTo/LineTo use Points[0]; QuadTo uses Points[0] as control and
	// Points[1] as target; CubicTo uses Points[0], Points[1] as controls
	// and Points[2] as target.
	Points [3]OutlinePoint
}

// GlyphOutline is the vector outline of a glyph, scaled to a pixel size.
// The outline consists of one or more closed contours.
type GlyphOutline struct {
	// Segments is the list of path segments that make up the outline.
	Segments []OutlineSegment

	// Bounds is the bounding box of the outline in pixels, y-up,
	// relative to the glyph origin on the baseline. Control points are
	// included, so the box is conservative for curves.
	Bounds Rect

	// Advance is the horizontal advance width in pixels.
	Advance float32

	// GID is the glyph this outline represents.
	GID GlyphID
}

// IsEmpty reports whether the outline has no segments. Control characters
// and whitespace rasterize from empty outlines.
func (o *GlyphOutline) IsEmpty() bool {
	return o == nil || len(o.Segments) == 0
}
