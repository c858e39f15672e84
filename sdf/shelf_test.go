package sdf

import "testing"

func TestShelfAllocator_Basic(t *testing.T) {
	a := newShelfAllocator(100, 100, 2)

	x, y, ok := a.Allocate(30, 20)
	if !ok || x != 0 || y != 0 {
		t.Fatalf("first allocation = (%d, %d, %v), want (0, 0, true)", x, y, ok)
	}

	// Second item goes right of the first, past the padding.
	x, y, ok = a.Allocate(30, 20)
	if !ok || x != 32 || y != 0 {
		t.Fatalf("second allocation = (%d, %d, %v), want (32, 0, true)", x, y, ok)
	}

	// Too wide for the remaining shelf space, opens a new shelf.
	x, y, ok = a.Allocate(50, 20)
	if !ok || x != 0 || y != 22 {
		t.Fatalf("third allocation = (%d, %d, %v), want (0, 22, true)", x, y, ok)
	}
}

func TestShelfAllocator_FailsWhenFull(t *testing.T) {
	a := newShelfAllocator(64, 64, 0)

	if _, _, ok := a.Allocate(64, 64); !ok {
		t.Fatal("exact-size allocation should succeed")
	}
	if _, _, ok := a.Allocate(1, 1); ok {
		t.Error("allocation in a full page should fail")
	}
}

func TestShelfAllocator_RejectsOversize(t *testing.T) {
	a := newShelfAllocator(64, 64, 2)
	if _, _, ok := a.Allocate(70, 10); ok {
		t.Error("item wider than the page should not allocate")
	}
	if _, _, ok := a.Allocate(10, 70); ok {
		t.Error("item taller than the page should not allocate")
	}
	if a.CanFit(70, 10) {
		t.Error("CanFit should reject oversize items")
	}
}

func TestShelfAllocator_FreeReuse(t *testing.T) {
	a := newShelfAllocator(64, 64, 0)

	x1, y1, _ := a.Allocate(64, 32)
	if _, _, ok := a.Allocate(64, 32); !ok {
		t.Fatal("page should hold two 64x32 items")
	}
	if _, _, ok := a.Allocate(10, 10); ok {
		t.Fatal("page should now be full")
	}

	a.Free(x1, y1, 64, 32)

	// Freed rectangles are handed out to exact-size matches only, so
	// every reuse overwrites the slot completely and the area
	// accounting of Allocate and Free stays symmetric.
	if a.CanFit(10, 10) {
		t.Error("CanFit should not offer a freed rectangle to a smaller item")
	}
	if _, _, ok := a.Allocate(10, 10); ok {
		t.Fatal("smaller item must not reuse the freed rectangle")
	}

	if !a.CanFit(64, 32) {
		t.Error("CanFit should see the freed rectangle for an exact match")
	}
	x, y, ok := a.Allocate(64, 32)
	if !ok {
		t.Fatal("exact-size allocation should reuse the freed rectangle")
	}
	if x != x1 || y != y1 {
		t.Errorf("reused position = (%d, %d), want (%d, %d)", x, y, x1, y1)
	}
}

func TestShelfAllocator_FreeReuseSymmetricArea(t *testing.T) {
	a := newShelfAllocator(64, 64, 0)

	x, y, _ := a.Allocate(64, 32)
	a.Free(x, y, 64, 32)

	x, y, ok := a.Allocate(64, 32)
	if !ok {
		t.Fatal("exact-size allocation should reuse the freed rectangle")
	}
	if got := a.Utilization(); got != 0.5 {
		t.Errorf("utilization after reuse = %v, want 0.5", got)
	}

	a.Free(x, y, 64, 32)
	if got := a.Utilization(); got != 0 {
		t.Errorf("utilization after free = %v, want 0", got)
	}
	if !a.Empty() {
		t.Error("allocator should be empty after a full reuse cycle")
	}
}

func TestShelfAllocator_Reset(t *testing.T) {
	a := newShelfAllocator(64, 64, 0)
	a.Allocate(64, 64)
	a.Reset()

	if !a.Empty() {
		t.Error("allocator should be empty after Reset")
	}
	if x, y, ok := a.Allocate(64, 64); !ok || x != 0 || y != 0 {
		t.Errorf("allocation after Reset = (%d, %d, %v), want (0, 0, true)", x, y, ok)
	}
}

func TestShelfAllocator_Utilization(t *testing.T) {
	a := newShelfAllocator(100, 100, 0)
	if a.Utilization() != 0 {
		t.Error("empty allocator utilization should be 0")
	}
	a.Allocate(50, 100)
	if got := a.Utilization(); got != 0.5 {
		t.Errorf("utilization = %v, want 0.5", got)
	}
	a.Free(0, 0, 50, 100)
	if got := a.Utilization(); got != 0 {
		t.Errorf("utilization after free = %v, want 0", got)
	}
}
