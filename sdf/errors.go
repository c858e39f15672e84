package sdf

import (
	"errors"
	"fmt"
)

// Sentinel errors for sdf package.
var (
	// ErrLengthMismatch is returned when keys and outlines have different lengths.
	ErrLengthMismatch = errors.New("sdf: keys and outlines must have same length")

	// ErrAllocationFailed is returned when glyph allocation in the atlas fails
	// even after eviction.
	ErrAllocationFailed = errors.New("sdf: failed to allocate glyph in atlas")
)

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return "sdf: invalid config." + e.Field + ": " + e.Reason
}

// GlyphTooLargeError is returned when a rasterized glyph cannot fit in an
// empty atlas page. No amount of eviction helps; the caller must either
// enlarge the atlas or shrink the glyph size.
type GlyphTooLargeError struct {
	Width, Height int
	AtlasSize     int
}

func (e *GlyphTooLargeError) Error() string {
	return fmt.Sprintf("sdf: glyph %dx%d exceeds atlas size %d", e.Width, e.Height, e.AtlasSize)
}
