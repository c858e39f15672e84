package sdf

import (
	"image"
	"math"
	"sync"

	"golang.org/x/image/vector"

	"github.com/gogpu/textmesh/shaping"
)

// Config holds SDF generation parameters.
type Config struct {
	// Margin is the padding in pixels added around the glyph bounds so
	// the distance rolloff has room. Default: 4
	Margin int

	// Spread is the distance in pixels mapped to the full half-range of
	// the field. Larger values give softer, more scalable edges.
	// Default: 4.0
	Spread float64

	// Tolerance is the curve flattening tolerance in pixels.
	// Default: 0.25
	Tolerance float64
}

// DefaultConfig returns the default SDF configuration.
func DefaultConfig() Config {
	return Config{
		Margin:    4,
		Spread:    4.0,
		Tolerance: 0.25,
	}
}

// Validate checks if the configuration is valid and returns an error if not.
func (c *Config) Validate() error {
	if c.Margin < 0 {
		return &ConfigError{Field: "Margin", Reason: "must be non-negative"}
	}
	if c.Margin > 64 {
		return &ConfigError{Field: "Margin", Reason: "must be at most 64"}
	}
	if c.Spread <= 0 {
		return &ConfigError{Field: "Spread", Reason: "must be positive"}
	}
	if c.Tolerance <= 0 {
		return &ConfigError{Field: "Tolerance", Reason: "must be positive"}
	}
	return nil
}

// Field is a rasterized single-channel signed distance field.
// Pixel values map distance to the glyph edge: 128 is on the edge,
// above is inside, below is outside. Rows run top to bottom.
type Field struct {
	// Pix is the R8 pixel data, row-major, Width bytes per row.
	Pix []uint8

	// Width and Height in pixels. Both zero for empty glyphs.
	Width, Height int

	// Left and Bottom place the field relative to the glyph's pen
	// origin, in pixels, y-up: the field's bottom-left corner sits at
	// (Left, Bottom).
	Left, Bottom float32
}

// IsEmpty reports whether the field has no pixels.
func (f *Field) IsEmpty() bool {
	return f.Width == 0 || f.Height == 0
}

// At returns the field value at (x, y), row 0 at the top.
func (f *Field) At(x, y int) uint8 {
	return f.Pix[y*f.Width+x]
}

// Rasterizer converts glyph outlines into signed distance fields.
// A Rasterizer is stateless apart from its configuration and is safe
// for concurrent use.
type Rasterizer struct {
	config Config
}

// NewRasterizer creates a rasterizer with the given configuration.
func NewRasterizer(config Config) *Rasterizer {
	return &Rasterizer{config: config}
}

// DefaultRasterizer creates a rasterizer with default configuration.
func DefaultRasterizer() *Rasterizer {
	return NewRasterizer(DefaultConfig())
}

// Config returns the rasterizer's configuration.
func (r *Rasterizer) Config() Config {
	return r.config
}

// contour is a closed polyline in glyph space, y-up.
type contour []point

type point struct {
	x, y float64
}

// Rasterize generates the distance field for an outline already scaled
// to pixel size. offsetX is a fractional subpixel shift applied before
// rasterization. Empty outlines (spaces, control characters) yield an
// empty field, not an error.
//
// A strokeWidth above zero rasterizes the outline stroke instead of the
// filled glyph: the field covers a band strokeWidth pixels wide centered
// on the contour, with "inside" meaning inside the band. The margin
// grows by half the stroke width so the band keeps its rolloff room.
//
// The output is deterministic: identical outlines, offsets and stroke
// widths produce identical fields.
func (r *Rasterizer) Rasterize(outline *shaping.GlyphOutline, offsetX, strokeWidth float32) (*Field, error) {
	if err := r.config.Validate(); err != nil {
		return nil, err
	}
	if outline == nil || outline.IsEmpty() {
		return &Field{}, nil
	}

	stroke := float64(strokeWidth)
	if stroke < 0 {
		stroke = 0
	}

	contours := r.flatten(outline, float64(offsetX))
	if len(contours) == 0 {
		return &Field{}, nil
	}

	minX, minY, maxX, maxY := contourBounds(contours)
	margin := r.config.Margin + int(math.Ceil(stroke/2))

	left := int(math.Floor(minX)) - margin
	bottom := int(math.Floor(minY)) - margin
	w := int(math.Ceil(maxX)) - int(math.Floor(minX)) + 2*margin
	h := int(math.Ceil(maxY)) - int(math.Floor(minY)) + 2*margin
	if w <= 0 || h <= 0 {
		return &Field{}, nil
	}

	field := &Field{
		Pix:    make([]uint8, w*h),
		Width:  w,
		Height: h,
		Left:   float32(left),
		Bottom: float32(bottom),
	}

	// Transform contours into field coordinates, y-down with row 0 at
	// the top, so the inside mask and the distance scan agree.
	segs := make([]lineSeg, 0, 64)
	for _, c := range contours {
		for i := range c {
			a := c[i]
			b := c[(i+1)%len(c)]
			segs = append(segs, lineSeg{
				ax: a.x - float64(left), ay: float64(bottom+h) - a.y,
				bx: b.x - float64(left), by: float64(bottom+h) - b.y,
			})
		}
	}

	// The stroke band is symmetric around the contour, so it needs no
	// inside mask.
	var inside []bool
	if stroke == 0 {
		inside = r.insideMask(contours, left, bottom, w, h)
	}
	r.fillDistances(field, segs, inside, stroke)
	return field, nil
}

// flatten subdivides the outline's curves into closed polylines.
// Subdivision counts derive only from the control polygon length, so
// flattening is deterministic.
func (r *Rasterizer) flatten(outline *shaping.GlyphOutline, offsetX float64) []contour {
	var contours []contour
	var cur contour
	var pen point

	closeCurrent := func() {
		if len(cur) >= 3 {
			contours = append(contours, cur)
		}
		cur = nil
	}

	for _, seg := range outline.Segments {
		switch seg.Op {
		case shaping.OutlineOpMoveTo:
			closeCurrent()
			pen = point{float64(seg.Points[0].X) + offsetX, float64(seg.Points[0].Y)}
			cur = append(cur, pen)
		case shaping.OutlineOpLineTo:
			pen = point{float64(seg.Points[0].X) + offsetX, float64(seg.Points[0].Y)}
			cur = append(cur, pen)
		case shaping.OutlineOpQuadTo:
			c := point{float64(seg.Points[0].X) + offsetX, float64(seg.Points[0].Y)}
			end := point{float64(seg.Points[1].X) + offsetX, float64(seg.Points[1].Y)}
			steps := r.steps(dist(pen, c) + dist(c, end))
			for i := 1; i <= steps; i++ {
				t := float64(i) / float64(steps)
				cur = append(cur, quadPoint(pen, c, end, t))
			}
			pen = end
		case shaping.OutlineOpCubicTo:
			c1 := point{float64(seg.Points[0].X) + offsetX, float64(seg.Points[0].Y)}
			c2 := point{float64(seg.Points[1].X) + offsetX, float64(seg.Points[1].Y)}
			end := point{float64(seg.Points[2].X) + offsetX, float64(seg.Points[2].Y)}
			steps := r.steps(dist(pen, c1) + dist(c1, c2) + dist(c2, end))
			for i := 1; i <= steps; i++ {
				t := float64(i) / float64(steps)
				cur = append(cur, cubicPoint(pen, c1, c2, end, t))
			}
			pen = end
		}
	}
	closeCurrent()
	return contours
}

// steps picks a subdivision count from the control polygon length.
func (r *Rasterizer) steps(length float64) int {
	n := int(math.Ceil(math.Sqrt(length / r.config.Tolerance)))
	if n < 1 {
		n = 1
	}
	if n > 64 {
		n = 64
	}
	return n
}

// insideMask rasterizes the filled glyph with the nonzero winding rule
// and returns per-pixel inside flags.
func (r *Rasterizer) insideMask(contours []contour, left, bottom, w, h int) []bool {
	ras := vector.NewRasterizer(w, h)
	top := float64(bottom + h)
	for _, c := range contours {
		ras.MoveTo(float32(c[0].x-float64(left)), float32(top-c[0].y))
		for _, p := range c[1:] {
			ras.LineTo(float32(p.x-float64(left)), float32(top-p.y))
		}
		ras.ClosePath()
	}

	mask := image.NewAlpha(image.Rect(0, 0, w, h))
	ras.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})

	inside := make([]bool, w*h)
	for i, a := range mask.Pix {
		inside[i] = a >= 128
	}
	return inside
}

type lineSeg struct {
	ax, ay, bx, by float64
}

// fillDistances computes the min distance from each texel center to the
// outline and encodes it with the sign from the inside mask. With a
// stroke width the signed distance is taken to the stroke band edges
// instead. Rows are processed in parallel.
func (r *Rasterizer) fillDistances(field *Field, segs []lineSeg, inside []bool, stroke float64) {
	w, h := field.Width, field.Height
	spread := r.config.Spread

	var wg sync.WaitGroup
	numWorkers := 4
	rowsPerWorker := (h + numWorkers - 1) / numWorkers

	for wk := 0; wk < numWorkers; wk++ {
		start := wk * rowsPerWorker
		end := start + rowsPerWorker
		if end > h {
			end = h
		}
		if start >= end {
			continue
		}

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for y := start; y < end; y++ {
				py := float64(y) + 0.5
				for x := 0; x < w; x++ {
					px := float64(x) + 0.5

					minDist := math.Inf(1)
					for _, s := range segs {
						if d := segmentDistSq(px, py, s); d < minDist {
							minDist = d
						}
					}
					d := math.Sqrt(minDist)

					idx := y*w + x
					var v float64
					if stroke > 0 {
						v = 0.5 + (stroke/2-d)/(2*spread)
					} else if inside[idx] {
						v = 0.5 + d/(2*spread)
					} else {
						v = 0.5 - d/(2*spread)
					}
					if v < 0 {
						v = 0
					}
					if v > 1 {
						v = 1
					}
					field.Pix[idx] = uint8(v*255 + 0.5)
				}
			}
		}(start, end)
	}
	wg.Wait()
}

// segmentDistSq returns the squared distance from (px, py) to a segment.
func segmentDistSq(px, py float64, s lineSeg) float64 {
	dx := s.bx - s.ax
	dy := s.by - s.ay
	lenSq := dx*dx + dy*dy

	t := 0.0
	if lenSq > 0 {
		t = ((px-s.ax)*dx + (py-s.ay)*dy) / lenSq
		if t < 0 {
			t = 0
		} else if t > 1 {
			t = 1
		}
	}

	cx := s.ax + t*dx - px
	cy := s.ay + t*dy - py
	return cx*cx + cy*cy
}

func contourBounds(contours []contour) (minX, minY, maxX, maxY float64) {
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	for _, c := range contours {
		for _, p := range c {
			minX = math.Min(minX, p.x)
			minY = math.Min(minY, p.y)
			maxX = math.Max(maxX, p.x)
			maxY = math.Max(maxY, p.y)
		}
	}
	return
}

func dist(a, b point) float64 {
	return math.Hypot(b.x-a.x, b.y-a.y)
}

func quadPoint(p0, c, p1 point, t float64) point {
	u := 1 - t
	return point{
		x: u*u*p0.x + 2*u*t*c.x + t*t*p1.x,
		y: u*u*p0.y + 2*u*t*c.y + t*t*p1.y,
	}
}

func cubicPoint(p0, c1, c2, p1 point, t float64) point {
	u := 1 - t
	return point{
		x: u*u*u*p0.x + 3*u*u*t*c1.x + 3*u*t*t*c2.x + t*t*t*p1.x,
		y: u*u*u*p0.y + 3*u*u*t*c1.y + 3*u*t*t*c2.y + t*t*t*p1.y,
	}
}
