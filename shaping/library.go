package shaping

import (
	"bytes"
	"fmt"
	"hash/fnv"
	"math"
	"sync"

	"github.com/go-text/typesetting/font"
	ot "github.com/go-text/typesetting/font/opentype"

	"github.com/gogpu/textmesh/cache"
	"github.com/gogpu/textmesh/rich"
)

// FontLibrary owns parsed fonts and hands out shaping faces and glyph
// outlines. One library is shared per application; font discovery is the
// caller's concern, fonts arrive as raw TTF/OTF bytes.
//
// FontLibrary is safe for concurrent use. Parsed font.Font objects are
// read-only and shared; font.Face instances are created per call since
// they are not safe for concurrent use.
type FontLibrary struct {
	mu       sync.RWMutex
	families map[string][]*fontEntry
	byID     map[uint64]*fontEntry
	fallback *fontEntry

	// outlines caches extracted glyph outlines; extraction walks the
	// font tables and is worth avoiding on the hot path.
	outlines *cache.Sharded[outlineKey, *GlyphOutline]
}

// outlineKey identifies a scaled glyph outline. Ppem is stored as float
// bits so the key stays comparable.
type outlineKey struct {
	fontID uint64
	gid    GlyphID
	ppem   uint32
}

func hashOutlineKey(k outlineKey) uint64 {
	return k.fontID ^ uint64(k.gid)<<32 ^ uint64(k.ppem)
}

// fontEntry is one registered face.
type fontEntry struct {
	id     uint64
	font   *font.Font
	upem   float32
	family string
	weight rich.Weight
	slant  rich.Slant
}

// FaceOption configures a face being added to the library.
type FaceOption func(*faceConfig)

type faceConfig struct {
	weight rich.Weight
	slant  rich.Slant
}

// WithWeight declares the weight of the face being added.
func WithWeight(w rich.Weight) FaceOption {
	return func(c *faceConfig) { c.weight = w }
}

// WithSlant declares the slant of the face being added.
func WithSlant(s rich.Slant) FaceOption {
	return func(c *faceConfig) { c.slant = s }
}

// NewFontLibrary creates an empty font library.
func NewFontLibrary() *FontLibrary {
	return &FontLibrary{
		families: make(map[string][]*fontEntry),
		byID:     make(map[uint64]*fontEntry),
		outlines: cache.NewSharded[outlineKey, *GlyphOutline](0, hashOutlineKey),
	}
}

// Add parses TTF/OTF data and registers it under the given family name.
// The first font added becomes the fallback face for unknown families.
// The returned font ID is a stable hash of the font data, so the same
// font registered twice keeps one identity.
func (l *FontLibrary) Add(family string, data []byte, opts ...FaceOption) (uint64, error) {
	if len(data) == 0 {
		return 0, ErrEmptyFontData
	}

	cfg := faceConfig{weight: rich.WeightNormal, slant: rich.SlantNormal}
	for _, opt := range opts {
		opt(&cfg)
	}

	face, err := font.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return 0, fmt.Errorf("shaping: parse font %q: %w", family, err)
	}

	h := fnv.New64a()
	_, _ = h.Write(data)
	id := h.Sum64()

	entry := &fontEntry{
		id:     id,
		font:   face.Font,
		upem:   float32(face.Upem()),
		family: family,
		weight: cfg.weight,
		slant:  cfg.slant,
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.byID[id]; !ok {
		l.byID[id] = entry
		l.families[family] = append(l.families[family], entry)
		if l.fallback == nil {
			l.fallback = entry
		}
	}
	return id, nil
}

// Len returns the number of registered faces.
func (l *FontLibrary) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.byID)
}

// match selects the registered face closest to the requested family,
// weight and slant. An unknown family falls back to the first registered
// face. Returns nil only when the library is empty.
func (l *FontLibrary) match(family string, weight rich.Weight, slant rich.Slant) *fontEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	candidates := l.families[family]
	if len(candidates) == 0 {
		return l.fallback
	}

	best := candidates[0]
	bestScore := matchScore(best, weight, slant)
	for _, c := range candidates[1:] {
		if score := matchScore(c, weight, slant); score < bestScore {
			best, bestScore = c, score
		}
	}
	return best
}

// matchScore ranks a candidate face: slant mismatch dominates, then
// weight distance.
func matchScore(e *fontEntry, weight rich.Weight, slant rich.Slant) int {
	score := 0
	if e.slant != slant {
		score += 10000
	}
	d := int(e.weight) - int(weight)
	if d < 0 {
		d = -d
	}
	return score + d
}

// Outline extracts the vector outline of a glyph, scaled to the given
// pixel size. The second result is false when the font is unknown.
// Glyphs without outline data (bitmap-only faces, control characters)
// yield an empty outline, not an error.
func (l *FontLibrary) Outline(fontID uint64, gid GlyphID, ppem float32) (*GlyphOutline, bool) {
	l.mu.RLock()
	entry, ok := l.byID[fontID]
	l.mu.RUnlock()
	if !ok {
		return nil, false
	}

	key := outlineKey{fontID: fontID, gid: gid, ppem: math.Float32bits(ppem)}
	if out, ok := l.outlines.Get(key); ok {
		return out, true
	}

	// font.Face is not safe for concurrent use; create one per call.
	face := font.NewFace(entry.font)
	scale := ppem / entry.upem

	out := &GlyphOutline{
		GID:     gid,
		Advance: face.HorizontalAdvance(font.GID(gid)) * scale,
	}

	data := face.GlyphData(font.GID(gid))
	outline, ok := data.(font.GlyphOutline)
	if !ok || len(outline.Segments) == 0 {
		l.outlines.Set(key, out)
		return out, true
	}

	out.Segments = make([]OutlineSegment, 0, len(outline.Segments))
	first := true
	for _, seg := range outline.Segments {
		var conv OutlineSegment
		var used int
		switch seg.Op {
		case ot.SegmentOpMoveTo:
			conv.Op = OutlineOpMoveTo
			used = 1
		case ot.SegmentOpLineTo:
			conv.Op = OutlineOpLineTo
			used = 1
		case ot.SegmentOpQuadTo:
			conv.Op = OutlineOpQuadTo
			used = 2
		case ot.SegmentOpCubeTo:
			conv.Op = OutlineOpCubicTo
			used = 3
		default:
			continue
		}
		for i := 0; i < used; i++ {
			p := OutlinePoint{X: seg.Args[i].X * scale, Y: seg.Args[i].Y * scale}
			conv.Points[i] = p
			if first {
				out.Bounds = Rect{MinX: p.X, MinY: p.Y, MaxX: p.X, MaxY: p.Y}
				first = false
			} else {
				out.Bounds = growRect(out.Bounds, p)
			}
		}
		out.Segments = append(out.Segments, conv)
	}
	l.outlines.Set(key, out)
	return out, true
}

func growRect(r Rect, p OutlinePoint) Rect {
	if p.X < r.MinX {
		r.MinX = p.X
	}
	if p.Y < r.MinY {
		r.MinY = p.Y
	}
	if p.X > r.MaxX {
		r.MaxX = p.X
	}
	if p.Y > r.MaxY {
		r.MaxY = p.Y
	}
	return r
}
