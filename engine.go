package textmesh

import (
	"errors"
	"fmt"

	"github.com/gogpu/textmesh/rich"
	"github.com/gogpu/textmesh/sdf"
	"github.com/gogpu/textmesh/shaping"
)

// ErrNoGlyphSource is returned when an engine is constructed without a
// font library or outline source.
var ErrNoGlyphSource = errors.New("textmesh: engine needs a font library or outline source")

// OutlineSource hands glyph outlines to the rasterization step.
// *shaping.FontLibrary is the standard implementation.
type OutlineSource interface {
	Outline(fontID uint64, gid shaping.GlyphID, ppem float32) (*shaping.GlyphOutline, bool)
}

// EngineConfig configures an Engine. The zero value of every field has
// a sensible default except Library: either Library or both Shaper and
// Outlines must be set.
type EngineConfig struct {
	// Library owns the fonts. When set it provides the default Shaper
	// and Outlines.
	Library *shaping.FontLibrary

	// Shaper lays out styled runs. Default: GoTextShaper over Library.
	Shaper shaping.Shaper

	// Outlines provides glyph outlines. Default: Library.
	Outlines OutlineSource

	// Atlas caches rasterized glyphs. Default: sdf.NewAtlasDefault().
	Atlas *sdf.Atlas

	// Styles resolves named styles in markup. Optional.
	Styles rich.StyleTable

	// Markdown enables *italic* / **bold** shorthand in markup.
	Markdown bool

	// Emitter configures mesh emission. Subpixel is overridden to match
	// the atlas.
	Emitter EmitterConfig
}

// Engine owns the services of the text pipeline: one shaper, one atlas
// and one emitter, shared by all Text objects it creates. Engines have
// no global state; an application typically keeps one.
type Engine struct {
	shaper   shaping.Shaper
	outlines OutlineSource
	atlas    *sdf.Atlas
	emitter  *Emitter
	styles   rich.StyleTable
	markdown bool
}

// NewEngine creates an engine from the configuration.
func NewEngine(config EngineConfig) (*Engine, error) {
	if config.Shaper == nil {
		if config.Library == nil {
			return nil, ErrNoGlyphSource
		}
		config.Shaper = shaping.NewGoTextShaper(config.Library)
	}
	if config.Outlines == nil {
		if config.Library == nil {
			return nil, ErrNoGlyphSource
		}
		config.Outlines = config.Library
	}
	if config.Atlas == nil {
		config.Atlas = sdf.NewAtlasDefault()
	}

	emitterConfig := config.Emitter
	if emitterConfig == (EmitterConfig{}) {
		emitterConfig = DefaultEmitterConfig()
	}
	emitterConfig.Subpixel = config.Atlas.Subpixel()

	return &Engine{
		shaper:   config.Shaper,
		outlines: config.Outlines,
		atlas:    config.Atlas,
		emitter:  NewEmitter(emitterConfig),
		styles:   config.Styles,
		markdown: config.Markdown,
	}, nil
}

// Atlas returns the engine's glyph atlas, for GPU upload of its pages.
func (e *Engine) Atlas() *sdf.Atlas {
	return e.atlas
}

// NewText parses markup into a text object bound to a placeholder
// source. Parsing is total; malformed markup degrades to literal text
// rather than failing. src may be nil for templates without
// placeholders.
func (e *Engine) NewText(markup string, src Source, opts shaping.Options) *Text {
	parsed := rich.ParseWithOptions(markup, rich.Options{
		Styles:   e.styles,
		Markdown: e.markdown,
	})
	return &Text{
		engine:   e,
		parsed:   parsed,
		resolver: NewResolver(),
		source:   src,
		opts:     opts,
	}
}

// Text is a live text object: a parsed template, its placeholder
// source, and the mesh built from the latest values. Texts share the
// engine's atlas; discarding a Text needs no cleanup, cached glyphs
// stay keyed by glyph identity for other texts.
//
// A Text is not safe for concurrent use.
type Text struct {
	engine   *Engine
	parsed   *rich.Text
	resolver *Resolver
	source   Source
	opts     shaping.Options

	mesh   *Mesh
	result *shaping.Result
}

// Mesh returns the most recently built mesh, nil before the first
// Update.
func (t *Text) Mesh() *Mesh {
	return t.mesh
}

// Result returns the shaping result behind the current mesh, nil before
// the first Update.
func (t *Text) Result() *shaping.Result {
	return t.result
}

// SetSource swaps the placeholder source. The next Update re-resolves
// against it.
func (t *Text) SetSource(src Source) {
	t.source = src
}

// Update re-resolves the placeholder source and rebuilds the mesh if
// any value changed since the last pass. It reports whether the mesh
// was rebuilt. Unchanged values skip shaping and emission entirely.
func (t *Text) Update() (bool, error) {
	runs, changed := t.resolver.Resolve(t.parsed, t.source)
	if !changed && t.mesh != nil {
		return false, nil
	}

	res, err := t.engine.shaper.Shape(runs, t.opts)
	if err != nil {
		return false, fmt.Errorf("textmesh: shape: %w", err)
	}

	regions, err := t.engine.rasterize(res)
	if err != nil {
		return false, err
	}

	mesh, err := t.engine.emitter.Emit(res, regions)
	if err != nil {
		return false, err
	}

	t.mesh = mesh
	t.result = res
	return true, nil
}

// rasterize batch-fetches atlas regions for every glyph of a shaping
// result: fill fields for filled glyphs, stroke band fields for stroked
// glyphs, and the shared solid patch when any glyph carries a rule.
// Whitespace and outline-less glyphs get empty regions.
func (e *Engine) rasterize(res *shaping.Result) (RegionSet, error) {
	set := RegionSet{Fill: make([]sdf.Region, len(res.Glyphs))}

	keys := make([]sdf.AtlasKey, 0, len(res.Glyphs))
	outlines := make([]*shaping.GlyphOutline, 0, len(res.Glyphs))
	indices := make([]int, 0, len(res.Glyphs))
	strokeIdx := make([]bool, 0, len(res.Glyphs))
	needSolid := false

	mode := e.atlas.Subpixel()
	for i := range res.Glyphs {
		g := &res.Glyphs[i]
		if g.Underline || g.Strikethrough {
			needSolid = true
		}
		if g.Whitespace {
			continue
		}
		outline, ok := e.outlines.Outline(g.FontID, g.GID, g.Size)
		if !ok {
			continue
		}

		_, subX := sdf.Quantize(g.X, mode)
		key := sdf.AtlasKey{
			FontID: g.FontID,
			GID:    g.GID,
			Size:   int16(g.Size + 0.5), //nolint:gosec // pixel sizes stay far below 2^15
			SubX:   subX,
		}
		if g.Filled {
			keys = append(keys, key)
			outlines = append(outlines, outline)
			indices = append(indices, i)
			strokeIdx = append(strokeIdx, false)
		}
		if g.Stroke > 0 {
			key.Stroke = uint8(min(g.Stroke, 255)) //nolint:gosec // clamped above
			keys = append(keys, key)
			outlines = append(outlines, outline)
			indices = append(indices, i)
			strokeIdx = append(strokeIdx, true)
		}
	}

	got, err := e.atlas.GetBatch(keys, outlines)
	if err != nil {
		return RegionSet{}, fmt.Errorf("textmesh: atlas: %w", err)
	}
	for i, idx := range indices {
		if strokeIdx[i] {
			if set.Stroke == nil {
				set.Stroke = make([]sdf.Region, len(res.Glyphs))
			}
			set.Stroke[idx] = got[i]
		} else {
			set.Fill[idx] = got[i]
		}
	}

	if needSolid {
		solid, err := e.atlas.Solid()
		if err != nil {
			return RegionSet{}, fmt.Errorf("textmesh: atlas: %w", err)
		}
		set.Solid = solid
	}
	return set, nil
}
