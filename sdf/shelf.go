package sdf

// shelfAllocator implements shelf-based rectangle packing with reuse of
// freed rectangles. Simple and fast, well suited to glyph-sized items.
//
// Rectangles are packed into horizontal "shelves". Each shelf has a
// fixed height (the tallest item placed so far); new items go
// left-to-right on a shelf until no space remains, then a new shelf is
// started below. Freed rectangles are kept on a list and handed out to
// exact-size matches before the shelves are consulted, so eviction makes
// room for same-sized glyphs without a full repack.
type shelfAllocator struct {
	width   int
	height  int
	padding int
	shelves []shelf
	freed   []freeRect

	usedArea int
}

// shelf is a horizontal strip in the atlas.
type shelf struct {
	y      int // y position of shelf top
	height int // height of the shelf (tallest item so far)
	x      int // next free slot
}

// freeRect is a previously allocated region returned to the allocator.
type freeRect struct {
	x, y, w, h int
}

func newShelfAllocator(width, height, padding int) *shelfAllocator {
	return &shelfAllocator{
		width:   width,
		height:  height,
		padding: padding,
		shelves: make([]shelf, 0, 16),
	}
}

// Allocate finds space for a rectangle of the given size. Returns the
// position and true, or -1, -1, false when the page is full.
func (a *shelfAllocator) Allocate(w, h int) (x, y int, ok bool) {
	if w <= 0 || h <= 0 {
		return -1, -1, false
	}

	// Freed rectangles first. Only exact fits are handed out: the area
	// freed later matches the area charged here, and the slot leaves no
	// stale remainder pixels around the new item.
	for i, fr := range a.freed {
		if w == fr.w && h == fr.h {
			a.freed = append(a.freed[:i], a.freed[i+1:]...)
			a.usedArea += w * h
			return fr.x, fr.y, true
		}
	}

	paddedW := w + a.padding
	paddedH := h + a.padding

	for i := range a.shelves {
		s := &a.shelves[i]

		if s.x+paddedW > a.width {
			continue
		}

		if h > s.height {
			// Taller than the shelf. The last shelf can grow downward
			// if there is room below it.
			if i == len(a.shelves)-1 && s.y+paddedH <= a.height {
				s.height = h
				x, y = s.x, s.y
				s.x += paddedW
				a.usedArea += w * h
				return x, y, true
			}
			continue
		}

		x, y = s.x, s.y
		s.x += paddedW
		a.usedArea += w * h
		return x, y, true
	}

	// Open a new shelf below the last one.
	newY := 0
	if len(a.shelves) > 0 {
		last := a.shelves[len(a.shelves)-1]
		newY = last.y + last.height + a.padding
	}
	if newY+paddedH > a.height {
		return -1, -1, false
	}

	a.shelves = append(a.shelves, shelf{y: newY, height: h, x: paddedW})
	a.usedArea += w * h
	return 0, newY, true
}

// Free returns a rectangle to the allocator for reuse.
func (a *shelfAllocator) Free(x, y, w, h int) {
	if w <= 0 || h <= 0 {
		return
	}
	a.freed = append(a.freed, freeRect{x: x, y: y, w: w, h: h})
	a.usedArea -= w * h
	if a.usedArea < 0 {
		a.usedArea = 0
	}
}

// Reset clears all allocations, keeping capacity.
func (a *shelfAllocator) Reset() {
	a.shelves = a.shelves[:0]
	a.freed = a.freed[:0]
	a.usedArea = 0
}

// Empty reports whether nothing is currently allocated.
func (a *shelfAllocator) Empty() bool {
	return a.usedArea == 0
}

// Utilization returns the fraction of page space used (0.0 to 1.0).
func (a *shelfAllocator) Utilization() float64 {
	if a.width <= 0 || a.height <= 0 {
		return 0
	}
	return float64(a.usedArea) / float64(a.width*a.height)
}

// CanFit reports whether an item of the given size could possibly fit,
// without allocating.
func (a *shelfAllocator) CanFit(w, h int) bool {
	for _, fr := range a.freed {
		if w == fr.w && h == fr.h {
			return true
		}
	}

	paddedW := w + a.padding
	paddedH := h + a.padding
	if paddedW > a.width || paddedH > a.height {
		return false
	}

	for i := range a.shelves {
		s := &a.shelves[i]
		if s.x+paddedW > a.width {
			continue
		}
		if h <= s.height {
			return true
		}
		if i == len(a.shelves)-1 && s.y+paddedH <= a.height {
			return true
		}
	}

	newY := 0
	if len(a.shelves) > 0 {
		last := a.shelves[len(a.shelves)-1]
		newY = last.y + last.height + a.padding
	}
	return newY+paddedH <= a.height
}
