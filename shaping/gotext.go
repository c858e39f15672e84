package shaping

import (
	"strings"
	"sync"
	"unicode"

	"github.com/go-text/typesetting/di"
	"github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	hb "github.com/go-text/typesetting/shaping"
	"golang.org/x/image/math/fixed"

	"github.com/gogpu/textmesh/rich"
)

// GoTextShaper shapes styled runs with go-text/typesetting's HarfBuzz
// implementation. It supports ligatures, kerning pairs, contextual
// alternates and complex scripts.
//
// Adjacent runs whose shaping-relevant attributes (family, weight, slant)
// match are merged before shaping so ligatures and kerning can form across
// color-only boundaries; per-glyph color and metadata are re-derived from
// cluster indices afterwards.
//
// GoTextShaper is safe for concurrent use. HarfbuzzShaper instances carry
// internal mutable state, so they are pooled; font.Face instances are
// created per call.
type GoTextShaper struct {
	library *FontLibrary

	// shaperPool pools HarfbuzzShaper instances, which are not safe for
	// concurrent use.
	shaperPool sync.Pool
}

// NewGoTextShaper creates a shaper over the given font library.
func NewGoTextShaper(library *FontLibrary) *GoTextShaper {
	return &GoTextShaper{
		library: library,
		shaperPool: sync.Pool{
			New: func() any {
				return &hb.HarfbuzzShaper{}
			},
		},
	}
}

// styledSpan is a piece of line text with its resolved style.
type styledSpan struct {
	text  string
	style rich.Style
}

// shapeGroup is one or more adjacent spans that share shaping attributes.
type shapeGroup struct {
	text  string
	entry *fontEntry
	// spans maps byte ranges of text back to source styles.
	spans []spanRange
}

type spanRange struct {
	start, end int
	style      rich.Style
}

// Shape implements the Shaper interface.
func (s *GoTextShaper) Shape(runs []rich.Run, opts Options) (*Result, error) {
	opts = opts.normalize()
	if s.library.Len() == 0 {
		return nil, ErrNoFonts
	}

	lines := splitLines(runs, opts.TabWidth)

	res := &Result{Lines: len(lines)}
	lineStep := opts.Size * opts.LineHeight

	var ascent, descent float32
	lineWidths := make([]float32, len(lines))
	lineStarts := make([]int, len(lines))

	for li, line := range lines {
		lineStarts[li] = len(res.Glyphs)
		lineY := -float32(li) * lineStep
		penX := float32(0)

		for _, group := range s.groupSpans(line, opts) {
			penX = s.shapeGroup(res, group, opts, li, lineY, penX, &ascent, &descent)
		}
		lineWidths[li] = penX
	}

	for _, w := range lineWidths {
		if w > res.Width {
			res.Width = w
		}
	}
	if len(lines) > 0 {
		res.Height = float32(len(lines)-1)*lineStep + ascent - descent
	}

	s.alignAndAnchor(res, lines, lineStarts, lineWidths, ascent, opts)
	return res, nil
}

// splitLines flattens runs into lines of styled spans, splitting on "\n"
// and expanding tabs to spaces.
func splitLines(runs []rich.Run, tabWidth int) [][]styledSpan {
	lines := [][]styledSpan{nil}
	tab := strings.Repeat(" ", tabWidth)

	for _, run := range runs {
		if run.Text == "" {
			continue
		}
		text := strings.ReplaceAll(run.Text, "\t", tab)
		for {
			idx := strings.IndexByte(text, '\n')
			if idx < 0 {
				break
			}
			if idx > 0 {
				last := len(lines) - 1
				lines[last] = append(lines[last], styledSpan{text: text[:idx], style: run.Style})
			}
			lines = append(lines, nil)
			text = text[idx+1:]
		}
		if text != "" {
			last := len(lines) - 1
			lines[last] = append(lines[last], styledSpan{text: text, style: run.Style})
		}
	}
	return lines
}

// groupSpans merges adjacent spans that resolve to the same face so that
// ligatures and kerning can form across style boundaries that do not
// affect shaping.
func (s *GoTextShaper) groupSpans(line []styledSpan, opts Options) []shapeGroup {
	var groups []shapeGroup
	for _, span := range line {
		family := span.style.Font
		if family == "" {
			family = opts.Font
		}
		entry := s.library.match(family, span.style.EffectiveWeight(), span.style.EffectiveSlant())
		if entry == nil {
			continue
		}

		if n := len(groups); n > 0 && groups[n-1].entry == entry {
			g := &groups[n-1]
			start := len(g.text)
			g.text += span.text
			g.spans = append(g.spans, spanRange{start: start, end: len(g.text), style: span.style})
			continue
		}
		groups = append(groups, shapeGroup{
			text:  span.text,
			entry: entry,
			spans: []spanRange{{start: 0, end: len(span.text), style: span.style}},
		})
	}
	return groups
}

// shapeGroup shapes one group, appending glyphs to res, and returns the
// advanced pen position.
func (s *GoTextShaper) shapeGroup(
	res *Result,
	group shapeGroup,
	opts Options,
	lineIndex int,
	lineY, penX float32,
	ascent, descent *float32,
) float32 {
	runes := []rune(group.text)
	if len(runes) == 0 {
		return penX
	}

	// Rune index to byte offset, for mapping clusters back to spans.
	byteOf := make([]int, len(runes)+1)
	off := 0
	for i, r := range runes {
		byteOf[i] = off
		off += len(string(r))
	}
	byteOf[len(runes)] = len(group.text)

	face := font.NewFace(group.entry.font)
	hbShaper := s.shaperPool.Get().(*hb.HarfbuzzShaper)
	defer s.shaperPool.Put(hbShaper)

	for _, dr := range directionRuns(group.text) {
		runStart, runEnd := runeIndexRange(byteOf, dr.start, dr.end)
		if runStart >= runEnd {
			continue
		}

		dir := di.DirectionLTR
		if dr.rtl {
			dir = di.DirectionRTL
		}

		input := hb.Input{
			Text:      runes,
			RunStart:  runStart,
			RunEnd:    runEnd,
			Direction: dir,
			Face:      face,
			Size:      floatToFixed(opts.Size),
			Script:    detectScript(runes[runStart:runEnd]),
			Language:  language.NewLanguage("en"),
		}
		output := hbShaper.Shape(input)

		if a := fixedToFloat(output.LineBounds.Ascent); a > *ascent {
			*ascent = a
		}
		if d := fixedToFloat(output.LineBounds.Descent); d < *descent {
			*descent = d
		}

		for _, g := range output.Glyphs {
			cluster := g.TextIndex()
			style := styleAt(group.spans, byteOf, cluster)

			r := rune(0)
			if cluster >= 0 && cluster < len(runes) {
				r = runes[cluster]
			}

			adv := fixedToFloat(g.Advance)
			color := opts.Color
			if style.FillColor != nil {
				color = *style.FillColor
			}

			res.Glyphs = append(res.Glyphs, PositionedGlyph{
				FontID:        group.entry.id,
				GID:           GlyphID(g.GlyphID), //nolint:gosec // glyph IDs above 64K do not occur in practice
				Size:          opts.Size,
				X:             penX + fixedToFloat(g.XOffset),
				Y:             lineY + fixedToFloat(g.YOffset),
				Advance:       adv,
				Color:         color,
				Stroke:        style.Stroke,
				StrokeColor:   style.EffectiveStrokeColor(),
				Filled:        style.EffectiveFill(),
				Underline:     style.EffectiveUnderline(),
				Strikethrough: style.EffectiveStrikethrough(),
				MagicNumber:   style.EffectiveMagicNumber(),
				Line:          lineIndex,
				Cluster:       cluster,
				Rune:          r,
				Whitespace:    unicode.IsSpace(r),
			})
			penX += adv
		}
	}
	return penX
}

// alignAndAnchor shifts each line by the alignment factor, fills in
// per-glyph line progress, and moves the block origin to the anchor.
func (s *GoTextShaper) alignAndAnchor(
	res *Result,
	lines [][]styledSpan,
	lineStarts []int,
	lineWidths []float32,
	ascent float32,
	opts Options,
) {
	factor := opts.Align.Factor()
	for li := range lines {
		start := lineStarts[li]
		end := len(res.Glyphs)
		if li+1 < len(lineStarts) {
			end = lineStarts[li+1]
		}

		shift := (res.Width - lineWidths[li]) * factor
		lineX := float32(0)
		for i := start; i < end; i++ {
			g := &res.Glyphs[i]
			if lineWidths[li] > 0 {
				g.LineProgress = (lineX + g.Advance/2) / lineWidths[li]
			}
			lineX += g.Advance
			g.X += shift
		}
	}

	// The shaped block spans x in [0, Width] and y in
	// [ascent - Height, ascent]. Place the origin at the anchor.
	anchorX := (opts.Anchor.X + 0.5) * res.Width
	anchorY := ascent - res.Height + (opts.Anchor.Y+0.5)*res.Height
	for i := range res.Glyphs {
		res.Glyphs[i].X -= anchorX
		res.Glyphs[i].Y -= anchorY
	}
}

// styleAt finds the style covering the given rune cluster.
func styleAt(spans []spanRange, byteOf []int, cluster int) rich.Style {
	if cluster < 0 || cluster >= len(byteOf) {
		return rich.Style{}
	}
	b := byteOf[cluster]
	for _, sp := range spans {
		if b >= sp.start && b < sp.end {
			return sp.style
		}
	}
	if len(spans) > 0 {
		return spans[len(spans)-1].style
	}
	return rich.Style{}
}

// runeIndexRange converts a byte range to a rune index range.
func runeIndexRange(byteOf []int, start, end int) (int, int) {
	rs, re := 0, 0
	for i, b := range byteOf {
		if b <= start {
			rs = i
		}
		if b < end {
			re = i + 1
		}
	}
	return rs, re
}

// detectScript inspects the runes and returns the script of the first
// non-space character. For mixed-script text the shaping engine falls
// back to per-glyph defaults.
func detectScript(runes []rune) language.Script {
	for _, r := range runes {
		if unicode.IsSpace(r) {
			continue
		}
		return language.LookupScript(r)
	}
	return language.Latin
}

// floatToFixed converts a float32 font size to fixed.Int26_6.
func floatToFixed(v float32) fixed.Int26_6 {
	return fixed.Int26_6(v * 64)
}

// fixedToFloat converts a fixed.Int26_6 value to float32.
func fixedToFloat(v fixed.Int26_6) float32 {
	return float32(v) / 64.0
}
