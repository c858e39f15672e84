package sdf

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/textmesh/shaping"
)

// AtlasConfig holds atlas configuration.
type AtlasConfig struct {
	// Size is the page texture size (width = height).
	// Must be power of 2. Default: 1024
	Size int

	// Padding between glyphs to prevent sampling bleed.
	// Default: 2
	Padding int

	// MaxPages limits the number of texture pages. When all pages are
	// full, least-recently-used glyphs are evicted.
	// Default: 8
	MaxPages int

	// Subpixel controls how many horizontal subpixel variants of a
	// glyph the atlas distinguishes. Default: Subpixel4
	Subpixel SubpixelMode

	// Rasterizer holds SDF generation parameters.
	Rasterizer Config
}

// DefaultAtlasConfig returns default configuration.
func DefaultAtlasConfig() AtlasConfig {
	return AtlasConfig{
		Size:       1024,
		Padding:    2,
		MaxPages:   8,
		Subpixel:   Subpixel4,
		Rasterizer: DefaultConfig(),
	}
}

// Validate checks if the configuration is valid.
func (c *AtlasConfig) Validate() error {
	if c.Size < 64 {
		return &ConfigError{Field: "Size", Reason: "must be at least 64"}
	}
	if c.Size > 8192 {
		return &ConfigError{Field: "Size", Reason: "must be at most 8192"}
	}
	if c.Size&(c.Size-1) != 0 {
		return &ConfigError{Field: "Size", Reason: "must be power of 2"}
	}
	if c.Padding < 0 {
		return &ConfigError{Field: "Padding", Reason: "must be non-negative"}
	}
	if c.Padding >= c.Size/2 {
		return &ConfigError{Field: "Padding", Reason: "must be less than half Size"}
	}
	if c.MaxPages < 1 {
		return &ConfigError{Field: "MaxPages", Reason: "must be at least 1"}
	}
	if c.MaxPages > 256 {
		return &ConfigError{Field: "MaxPages", Reason: "must be at most 256"}
	}
	return c.Rasterizer.Validate()
}

// AtlasKey uniquely identifies a rasterized glyph in the atlas.
type AtlasKey struct {
	// FontID identifies the font within the FontLibrary.
	FontID uint64

	// GID is the glyph index within the font.
	GID shaping.GlyphID

	// Size is the rasterized pixel size (ppem). Different sizes
	// produce different fields.
	Size int16

	// SubX is the quantized horizontal subpixel bucket.
	SubX uint8

	// Stroke is the stroke width as a percentage of Size, zero for the
	// filled glyph. A stroked glyph is a separate atlas entry holding
	// the stroke band's distance field.
	Stroke uint8
}

// strokeWidth returns the stroke width in pixels.
func (k AtlasKey) strokeWidth() float32 {
	if k.Stroke == 0 {
		return 0
	}
	return float32(k.Stroke) / 100 * float32(k.Size)
}

// Region describes a glyph's location in the atlas.
type Region struct {
	// Page indicates which texture page the glyph is in.
	Page int

	// Pixel coordinates in the page. Width and Height are zero for
	// glyphs with no visible shape (spaces).
	X, Y, Width, Height int

	// UV coordinates [0, 1] for texture sampling.
	U0, V0, U1, V1 float32

	// Left and Bottom place the glyph rect relative to its pen origin,
	// in pixels, y-up.
	Left, Bottom float32
}

// IsEmpty reports whether the region holds no pixels.
func (r Region) IsEmpty() bool {
	return r.Width == 0 || r.Height == 0
}

// Page is a single R8 texture page of the atlas.
type Page struct {
	// Pix is the R8 pixel data, row-major, Size bytes per row.
	Pix []byte

	// Size is width = height of the page.
	Size int

	alloc *shelfAllocator
	dirty dirtyRect
	count int // live glyphs on this page
}

// dirtyRect accumulates the page area modified since the last upload.
type dirtyRect struct {
	minX, minY, maxX, maxY int
	valid                  bool
}

func (d *dirtyRect) add(x, y, w, h int) {
	if !d.valid {
		d.minX, d.minY, d.maxX, d.maxY = x, y, x+w, y+h
		d.valid = true
		return
	}
	if x < d.minX {
		d.minX = x
	}
	if y < d.minY {
		d.minY = y
	}
	if x+w > d.maxX {
		d.maxX = x + w
	}
	if y+h > d.maxY {
		d.maxY = y + h
	}
}

// entry pairs a region with its last-use generation for LRU eviction.
type entry struct {
	region Region
	gen    atomic.Uint64
}

// Atlas caches rasterized glyph distance fields across texture pages.
//
// Atlas is safe for concurrent use. Rasterization happens outside the
// lock; only page packing and lookup updates are serialized.
type Atlas struct {
	mu     sync.RWMutex
	config AtlasConfig
	rast   *Rasterizer
	pages  []*Page
	lookup map[AtlasKey]*entry

	gen       atomic.Uint64
	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

// NewAtlas creates an atlas with the given configuration.
func NewAtlas(config AtlasConfig) (*Atlas, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Atlas{
		config: config,
		rast:   NewRasterizer(config.Rasterizer),
		lookup: make(map[AtlasKey]*entry),
	}, nil
}

// NewAtlasDefault creates an atlas with default configuration.
func NewAtlasDefault() *Atlas {
	a, _ := NewAtlas(DefaultAtlasConfig())
	return a
}

// Config returns the atlas configuration.
func (a *Atlas) Config() AtlasConfig {
	return a.config
}

// Format returns the texture format of atlas pages.
func (a *Atlas) Format() gputypes.TextureFormat {
	return gputypes.TextureFormatR8Unorm
}

// Subpixel returns the atlas subpixel mode.
func (a *Atlas) Subpixel() SubpixelMode {
	return a.config.Subpixel
}

// Get retrieves a glyph region, rasterizing and packing the glyph if it
// is not cached. The outline must already be scaled to key.Size pixels.
func (a *Atlas) Get(key AtlasKey, outline *shaping.GlyphOutline) (Region, error) {
	a.mu.RLock()
	if e, ok := a.lookup[key]; ok {
		e.gen.Store(a.gen.Add(1))
		a.mu.RUnlock()
		a.hits.Add(1)
		return e.region, nil
	}
	a.mu.RUnlock()

	a.misses.Add(1)

	// Rasterize outside the lock; packing is the only serialized part.
	field, err := a.rast.Rasterize(outline, Offset(key.SubX, a.config.Subpixel), key.strokeWidth())
	if err != nil {
		return Region{}, fmt.Errorf("sdf: rasterize glyph %d: %w", key.GID, err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if e, ok := a.lookup[key]; ok {
		e.gen.Store(a.gen.Add(1))
		return e.region, nil
	}

	pinned := map[AtlasKey]struct{}{key: {}}
	return a.insertLocked(key, field, pinned)
}

// GetBatch retrieves multiple glyph regions at once. Missing glyphs are
// rasterized in parallel, then packed under one lock acquisition. All
// keys in the batch are pinned against eviction for the duration, so a
// batch can never evict its own members.
func (a *Atlas) GetBatch(keys []AtlasKey, outlines []*shaping.GlyphOutline) ([]Region, error) {
	if len(keys) != len(outlines) {
		return nil, ErrLengthMismatch
	}

	results := make([]Region, len(keys))
	missing := make([]int, 0, len(keys))

	a.mu.RLock()
	for i, key := range keys {
		if e, ok := a.lookup[key]; ok {
			e.gen.Store(a.gen.Add(1))
			results[i] = e.region
			a.hits.Add(1)
		} else {
			missing = append(missing, i)
		}
	}
	a.mu.RUnlock()

	if len(missing) == 0 {
		return results, nil
	}

	fields := make([]*Field, len(missing))
	errs := make([]error, len(missing))

	var wg sync.WaitGroup
	numWorkers := 4
	perWorker := (len(missing) + numWorkers - 1) / numWorkers
	for w := 0; w < numWorkers; w++ {
		start := w * perWorker
		end := start + perWorker
		if end > len(missing) {
			end = len(missing)
		}
		if start >= end {
			continue
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				idx := missing[i]
				fields[i], errs[i] = a.rast.Rasterize(outlines[idx], Offset(keys[idx].SubX, a.config.Subpixel), keys[idx].strokeWidth())
			}
		}(start, end)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("sdf: rasterize glyph %d: %w", keys[missing[i]].GID, err)
		}
	}

	pinned := make(map[AtlasKey]struct{}, len(keys))
	for _, key := range keys {
		pinned[key] = struct{}{}
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	for i, idx := range missing {
		key := keys[idx]
		if e, ok := a.lookup[key]; ok {
			e.gen.Store(a.gen.Add(1))
			results[idx] = e.region
			continue
		}
		a.misses.Add(1)

		region, err := a.insertLocked(key, fields[i], pinned)
		if err != nil {
			return nil, err
		}
		results[idx] = region
	}
	return results, nil
}

// solidKey is reserved for the solid patch; no font has ID 2^64-1.
var solidKey = AtlasKey{FontID: ^uint64(0)}

// Solid returns a small fully-inside patch. Underline and strikethrough
// quads sample its center so rules render through the same distance
// field shader as glyphs. The patch is packed on first use and cached
// like any glyph.
func (a *Atlas) Solid() (Region, error) {
	a.mu.RLock()
	if e, ok := a.lookup[solidKey]; ok {
		e.gen.Store(a.gen.Add(1))
		a.mu.RUnlock()
		return e.region, nil
	}
	a.mu.RUnlock()

	const solidSize = 8
	field := &Field{
		Pix:    make([]uint8, solidSize*solidSize),
		Width:  solidSize,
		Height: solidSize,
	}
	for i := range field.Pix {
		field.Pix[i] = 255
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if e, ok := a.lookup[solidKey]; ok {
		e.gen.Store(a.gen.Add(1))
		return e.region, nil
	}
	return a.insertLocked(solidKey, field, map[AtlasKey]struct{}{solidKey: {}})
}

// insertLocked packs a rasterized field and records its region.
// Must be called with the write lock held.
func (a *Atlas) insertLocked(key AtlasKey, field *Field, pinned map[AtlasKey]struct{}) (Region, error) {
	if field.IsEmpty() {
		e := &entry{}
		e.gen.Store(a.gen.Add(1))
		a.lookup[key] = e
		return Region{}, nil
	}

	if field.Width+a.config.Padding > a.config.Size || field.Height+a.config.Padding > a.config.Size {
		return Region{}, &GlyphTooLargeError{
			Width:     field.Width,
			Height:    field.Height,
			AtlasSize: a.config.Size,
		}
	}

	pageIdx, x, y, err := a.allocateLocked(field.Width, field.Height, pinned)
	if err != nil {
		return Region{}, err
	}

	page := a.pages[pageIdx]
	for row := 0; row < field.Height; row++ {
		copy(page.Pix[(y+row)*page.Size+x:], field.Pix[row*field.Width:(row+1)*field.Width])
	}
	page.dirty.add(x, y, field.Width, field.Height)
	page.count++

	size := float32(a.config.Size)
	region := Region{
		Page:   pageIdx,
		X:      x,
		Y:      y,
		Width:  field.Width,
		Height: field.Height,
		U0:     float32(x) / size,
		V0:     float32(y) / size,
		U1:     float32(x+field.Width) / size,
		V1:     float32(y+field.Height) / size,
		Left:   field.Left,
		Bottom: field.Bottom,
	}

	e := &entry{region: region}
	e.gen.Store(a.gen.Add(1))
	a.lookup[key] = e
	return region, nil
}

// allocateLocked finds room for a rect, creating pages and evicting
// stale glyphs as needed. Must be called with the write lock held.
func (a *Atlas) allocateLocked(w, h int, pinned map[AtlasKey]struct{}) (pageIdx, x, y int, err error) {
	for i, page := range a.pages {
		if x, y, ok := page.alloc.Allocate(w, h); ok {
			return i, x, y, nil
		}
	}

	if len(a.pages) < a.config.MaxPages {
		page := &Page{
			Pix:   make([]byte, a.config.Size*a.config.Size),
			Size:  a.config.Size,
			alloc: newShelfAllocator(a.config.Size, a.config.Size, a.config.Padding),
		}
		a.pages = append(a.pages, page)
		if x, y, ok := page.alloc.Allocate(w, h); ok {
			return len(a.pages) - 1, x, y, nil
		}
	}

	// All pages full: evict least-recently-used glyphs until the rect
	// fits. Pinned keys are part of the in-flight pass and never go.
	for {
		victim := a.oldestLocked(pinned)
		if victim == nil {
			return 0, 0, 0, ErrAllocationFailed
		}

		e := a.lookup[*victim]
		delete(a.lookup, *victim)
		a.evictions.Add(1)

		if e.region.IsEmpty() {
			continue
		}

		page := a.pages[e.region.Page]
		page.alloc.Free(e.region.X, e.region.Y, e.region.Width, e.region.Height)
		page.count--

		// A fully drained page resets to pristine shelves, undoing
		// fragmentation. Fresh allocations land on a new layout, so the
		// old pixels must go too or they would bleed into the padding
		// ring of whatever is packed next.
		if page.count == 0 {
			page.alloc.Reset()
			clear(page.Pix)
			page.dirty.add(0, 0, page.Size, page.Size)
		}

		if x, y, ok := page.alloc.Allocate(w, h); ok {
			return e.region.Page, x, y, nil
		}
	}
}

// oldestLocked returns the unpinned key with the lowest generation.
func (a *Atlas) oldestLocked(pinned map[AtlasKey]struct{}) *AtlasKey {
	var oldest *AtlasKey
	var oldestGen uint64
	for key, e := range a.lookup {
		if _, ok := pinned[key]; ok {
			continue
		}
		g := e.gen.Load()
		if oldest == nil || g < oldestGen {
			k := key
			oldest = &k
			oldestGen = g
		}
	}
	return oldest
}

// Has reports whether the glyph is already cached.
func (a *Atlas) Has(key AtlasKey) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	_, ok := a.lookup[key]
	return ok
}

// PageCount returns the number of texture pages in use.
func (a *Atlas) PageCount() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.pages)
}

// Page returns a texture page for GPU upload, or nil if index is out of
// range. The returned page's Pix must not be written by the caller.
func (a *Atlas) Page(index int) *Page {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if index < 0 || index >= len(a.pages) {
		return nil
	}
	return a.pages[index]
}

// GlyphCount returns the number of cached glyphs, empty regions included.
func (a *Atlas) GlyphCount() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.lookup)
}

// DirtyRect returns the modified area of a page since the last
// MarkClean, and whether there is one.
func (a *Atlas) DirtyRect(page int) (x, y, w, h int, dirty bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if page < 0 || page >= len(a.pages) {
		return 0, 0, 0, 0, false
	}
	d := a.pages[page].dirty
	if !d.valid {
		return 0, 0, 0, 0, false
	}
	return d.minX, d.minY, d.maxX - d.minX, d.maxY - d.minY, true
}

// DirtyPages returns indices of pages needing GPU upload.
func (a *Atlas) DirtyPages() []int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	var dirty []int
	for i, page := range a.pages {
		if page.dirty.valid {
			dirty = append(dirty, i)
		}
	}
	return dirty
}

// MarkClean marks a page as uploaded to GPU.
func (a *Atlas) MarkClean(page int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if page >= 0 && page < len(a.pages) {
		a.pages[page].dirty = dirtyRect{}
	}
}

// Clear removes all cached glyphs and pages.
func (a *Atlas) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pages = nil
	a.lookup = make(map[AtlasKey]*entry)
	a.hits.Store(0)
	a.misses.Store(0)
	a.evictions.Store(0)
}

// AtlasStats holds atlas cache statistics.
type AtlasStats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
	Pages     int
	Glyphs    int
}

// Stats returns cache statistics.
func (a *Atlas) Stats() AtlasStats {
	a.mu.RLock()
	pages := len(a.pages)
	glyphs := len(a.lookup)
	a.mu.RUnlock()

	return AtlasStats{
		Hits:      a.hits.Load(),
		Misses:    a.misses.Load(),
		Evictions: a.evictions.Load(),
		Pages:     pages,
		Glyphs:    glyphs,
	}
}

// Utilization returns the mean fraction of page space used.
func (a *Atlas) Utilization() float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if len(a.pages) == 0 {
		return 0
	}
	total := 0.0
	for _, page := range a.pages {
		total += page.alloc.Utilization()
	}
	return total / float64(len(a.pages))
}
