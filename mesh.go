package textmesh

import (
	"github.com/gogpu/textmesh/sdf"
	"github.com/gogpu/textmesh/shaping"
)

// Meta selects what per-glyph scalar a UVB channel carries. Shaders use
// these for per-glyph effects: typewriter reveals, wave offsets,
// gradients across the block.
type Meta uint8

const (
	// MetaGlyphIndex is glyphIndex/totalCount: monotone non-decreasing,
	// 0 for the first glyph, (N-1)/N for the last.
	MetaGlyphIndex Meta = iota

	// MetaLineProgress is the glyph center's fractional position within
	// its line, in [0, 1].
	MetaLineProgress

	// MetaAdvance is the cumulative pen advance up to the glyph, in
	// ems, as if the text were a single line.
	MetaAdvance

	// MetaGlyphCenter is the quad center on this channel's axis, in ems
	// relative to the block origin.
	MetaGlyphCenter

	// MetaRowX is the quad center's x normalized over the block's final
	// horizontal extent, in [0, 1].
	MetaRowX

	// MetaColY is the quad center's y normalized over the block's final
	// vertical extent, in [0, 1].
	MetaColY

	// MetaMagicNumber passes the run's free scalar through unchanged.
	MetaMagicNumber
)

// Rule metrics as fractions of the font size, relative to the baseline.
const (
	underlineOffset     = -0.1
	strikethroughOffset = 0.3
	ruleThickness       = 0.05
)

// Mesh is a textured triangle mesh, one quad per visible glyph plus one
// per stroke or rule layer. All slices share the same vertex count;
// Indices is three per triangle, two triangles per quad.
type Mesh struct {
	// Positions are vertex positions, y-up. Fill quads sit on the z=0
	// plane; stroke and rule quads are offset on z so layers do not
	// fight.
	Positions [][3]float32

	// Normals all face +z.
	Normals [][3]float32

	// UVs are atlas texture coordinates.
	UVs [][2]float32

	// UVBs carry per-glyph metadata, selected by EmitterConfig.
	UVBs [][2]float32

	// Colors are per-vertex linear RGBA colors: the fill color on fill
	// and rule quads, the stroke color on stroke quads.
	Colors [][4]float32

	// Indices are uint32 triangle indices.
	Indices []uint32
}

// QuadCount returns the number of quads in the mesh, layers included.
func (m *Mesh) QuadCount() int {
	return len(m.Positions) / 4
}

// addQuad appends one quad spanning [minX,maxX]x[minY,maxY] at depth z.
func (m *Mesh) addQuad(minX, minY, maxX, maxY, z float32, uv [4][2]float32, color [4]float32, uvb [2]float32) {
	base := uint32(len(m.Positions)) //nolint:gosec // vertex counts stay far below 2^32

	m.Positions = append(m.Positions,
		[3]float32{minX, minY, z},
		[3]float32{maxX, minY, z},
		[3]float32{minX, maxY, z},
		[3]float32{maxX, maxY, z},
	)
	m.UVs = append(m.UVs, uv[0], uv[1], uv[2], uv[3])
	for v := 0; v < 4; v++ {
		m.Normals = append(m.Normals, [3]float32{0, 0, 1})
		m.Colors = append(m.Colors, color)
		m.UVBs = append(m.UVBs, uvb)
	}
	m.Indices = append(m.Indices,
		base, base+1, base+2,
		base+1, base+3, base+2,
	)
}

// RegionSet carries the atlas regions backing one shaped result.
type RegionSet struct {
	// Fill regions parallel the result's glyphs. Whitespace, shapeless,
	// and stroke-only glyphs carry empty regions.
	Fill []sdf.Region

	// Stroke regions parallel Fill; nil when nothing is stroked.
	Stroke []sdf.Region

	// Solid is a fully-inside patch for underline and strikethrough
	// rules. Empty when no glyph requests a rule.
	Solid sdf.Region
}

// EmitterConfig configures mesh emission.
type EmitterConfig struct {
	// MetaX and MetaY select the UVB channel contents.
	// Defaults: MetaGlyphIndex, MetaLineProgress.
	MetaX, MetaY Meta

	// Scale converts pixels to world units. Default 1.
	Scale float32

	// LayerOffset separates stacked layers on z: stroke quads sit at
	// -LayerOffset behind the fill, underline rules at -2*LayerOffset,
	// strikethrough rules at +LayerOffset in front. Default 0.01.
	LayerOffset float32

	// Subpixel must match the atlas mode so quads land on the same
	// quantized positions the glyphs were rasterized at.
	Subpixel sdf.SubpixelMode
}

// DefaultEmitterConfig returns the default emitter configuration.
func DefaultEmitterConfig() EmitterConfig {
	return EmitterConfig{
		MetaX:       MetaGlyphIndex,
		MetaY:       MetaLineProgress,
		Scale:       1,
		LayerOffset: 0.01,
		Subpixel:    sdf.Subpixel4,
	}
}

// Emitter builds meshes from shaped glyphs and their atlas regions.
type Emitter struct {
	config EmitterConfig
}

// NewEmitter creates an emitter with the given configuration.
func NewEmitter(config EmitterConfig) *Emitter {
	if config.Scale <= 0 {
		config.Scale = 1
	}
	if config.LayerOffset == 0 {
		config.LayerOffset = 0.01
	}
	return &Emitter{config: config}
}

// Emit produces one quad per glyph with a non-empty fill region, plus a
// stroke quad behind stroked glyphs and rule quads for underline and
// strikethrough spans. Rules cover the glyph's full advance, so they run
// through whitespace. regions.Fill must parallel res.Glyphs, and
// regions.Stroke too when non-nil. Emission order follows shaping order,
// so identical input yields an identical mesh.
func (e *Emitter) Emit(res *shaping.Result, regions RegionSet) (*Mesh, error) {
	if len(regions.Fill) != len(res.Glyphs) {
		return nil, sdf.ErrLengthMismatch
	}
	if regions.Stroke != nil && len(regions.Stroke) != len(res.Glyphs) {
		return nil, sdf.ErrLengthMismatch
	}

	visible := 0
	for i := range regions.Fill {
		if !regions.Fill[i].IsEmpty() {
			visible++
		}
	}

	mesh := &Mesh{
		Positions: make([][3]float32, 0, visible*4),
		Normals:   make([][3]float32, 0, visible*4),
		UVs:       make([][2]float32, 0, visible*4),
		UVBs:      make([][2]float32, 0, visible*4),
		Colors:    make([][4]float32, 0, visible*4),
		Indices:   make([]uint32, 0, visible*6),
	}

	scale := e.config.Scale
	layer := e.config.LayerOffset
	solidUV := solidCenterUV(regions.Solid)
	quad := 0
	var cumAdvance float32

	for i := range res.Glyphs {
		g := &res.Glyphs[i]
		fill := regions.Fill[i]
		advanceBefore := cumAdvance
		cumAdvance += g.Advance

		var stroke sdf.Region
		if regions.Stroke != nil {
			stroke = regions.Stroke[i]
		}
		wantRule := (g.Underline || g.Strikethrough) && !regions.Solid.IsEmpty()
		if fill.IsEmpty() && stroke.IsEmpty() && !wantRule {
			continue
		}

		// The glyph was rasterized at a quantized pen position; the
		// quad snaps to the same whole pixel so field texels line up
		// with the vertex grid.
		intX, _ := sdf.Quantize(g.X, e.config.Subpixel)

		var minX, minY, maxX, maxY float32
		switch {
		case !fill.IsEmpty():
			minX, minY, maxX, maxY = quadRect(g, fill, intX, scale)
		case !stroke.IsEmpty():
			minX, minY, maxX, maxY = quadRect(g, stroke, intX, scale)
		default:
			// Rule only. Center the metadata on the advance span.
			minX, maxX = g.X*scale, (g.X+g.Advance)*scale
			minY, maxY = g.Y*scale, g.Y*scale
		}

		centerX, centerY := (minX+maxX)/2, (minY+maxY)/2
		uvb := [2]float32{
			e.metaValue(e.config.MetaX, g, quad, visible, advanceBefore, centerX, centerY, centerX),
			e.metaValue(e.config.MetaY, g, quad, visible, advanceBefore, centerX, centerY, centerY),
		}

		if !stroke.IsEmpty() {
			sx0, sy0, sx1, sy1 := quadRect(g, stroke, intX, scale)
			mesh.addQuad(sx0, sy0, sx1, sy1, -layer, regionUV(stroke), g.StrokeColor.Vec4(), uvb)
		}
		if !fill.IsEmpty() {
			mesh.addQuad(minX, minY, maxX, maxY, 0, regionUV(fill), g.Color.Vec4(), uvb)
			quad++
		}
		if wantRule {
			rx0 := g.X * scale
			rx1 := (g.X + g.Advance) * scale
			half := ruleThickness * g.Size * scale / 2
			if g.Underline {
				yc := (g.Y + underlineOffset*g.Size) * scale
				mesh.addQuad(rx0, yc-half, rx1, yc+half, -2*layer, solidUV, g.Color.Vec4(), uvb)
			}
			if g.Strikethrough {
				yc := (g.Y + strikethroughOffset*g.Size) * scale
				mesh.addQuad(rx0, yc-half, rx1, yc+half, layer, solidUV, g.Color.Vec4(), uvb)
			}
		}
	}

	e.normalizeBlockMeta(mesh)
	return mesh, nil
}

// quadRect returns the world-space rect of a glyph region placed at the
// quantized pen position.
func quadRect(g *shaping.PositionedGlyph, region sdf.Region, intX int, scale float32) (minX, minY, maxX, maxY float32) {
	minX = (float32(intX) + region.Left) * scale
	minY = (g.Y + region.Bottom) * scale
	maxX = minX + float32(region.Width)*scale
	maxY = minY + float32(region.Height)*scale
	return
}

// regionUV returns per-corner UVs for a glyph region. Page rows run top
// to bottom, so V0 is the glyph's top.
func regionUV(r sdf.Region) [4][2]float32 {
	return [4][2]float32{
		{r.U0, r.V1},
		{r.U1, r.V1},
		{r.U0, r.V0},
		{r.U1, r.V0},
	}
}

// solidCenterUV returns the solid patch's center for all four corners.
// A constant UV keeps rules fully inside the patch regardless of quad
// size, so border texels never bleed in.
func solidCenterUV(r sdf.Region) [4][2]float32 {
	u := (r.U0 + r.U1) / 2
	v := (r.V0 + r.V1) / 2
	return [4][2]float32{{u, v}, {u, v}, {u, v}, {u, v}}
}

// metaValue computes one UVB channel for a glyph. MetaRowX and MetaColY
// are placeholders here, replaced by normalizeBlockMeta once the block
// extent is known.
func (e *Emitter) metaValue(meta Meta, g *shaping.PositionedGlyph, quad, total int, advanceBefore, centerX, centerY, axisCenter float32) float32 {
	switch meta {
	case MetaLineProgress:
		return g.LineProgress
	case MetaAdvance:
		if g.Size > 0 {
			return advanceBefore / g.Size
		}
		return 0
	case MetaGlyphCenter:
		if g.Size > 0 {
			return axisCenter / (g.Size * e.config.Scale)
		}
		return 0
	case MetaRowX:
		return centerX
	case MetaColY:
		return centerY
	case MetaMagicNumber:
		return g.MagicNumber
	default: // MetaGlyphIndex
		if total > 0 {
			return float32(quad) / float32(total)
		}
		return 0
	}
}

// normalizeBlockMeta rescales MetaRowX / MetaColY channels from raw quad
// centers to [0, 1] over the emitted block's extent.
func (e *Emitter) normalizeBlockMeta(mesh *Mesh) {
	normalize := func(channel int) {
		if len(mesh.UVBs) == 0 {
			return
		}
		min, max := mesh.UVBs[0][channel], mesh.UVBs[0][channel]
		for _, uvb := range mesh.UVBs {
			if uvb[channel] < min {
				min = uvb[channel]
			}
			if uvb[channel] > max {
				max = uvb[channel]
			}
		}
		span := max - min
		if span <= 0 {
			return
		}
		for i := range mesh.UVBs {
			mesh.UVBs[i][channel] = (mesh.UVBs[i][channel] - min) / span
		}
	}

	if e.config.MetaX == MetaRowX || e.config.MetaX == MetaColY {
		normalize(0)
	}
	if e.config.MetaY == MetaRowX || e.config.MetaY == MetaColY {
		normalize(1)
	}
}
