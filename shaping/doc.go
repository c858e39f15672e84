// Package shaping turns resolved styled runs into a flat, ordered sequence
// of positioned glyphs.
//
// The heavy lifting, OpenType shaping with ligatures, kerning and complex
// scripts, is delegated to go-text/typesetting's HarfBuzz implementation.
// This package adapts between the textmesh styled-run model and the shaping
// engine: it merges adjacent runs whose shaping attributes match (so
// ligatures can form across style-irrelevant boundaries), splits text into
// lines and bidi/script sub-runs, and re-derives per-glyph color and style
// metadata from the shaper's cluster output.
//
// Glyph positions are produced in a y-up coordinate space: the first line's
// baseline is y=0 and subsequent lines run downward (negative y). Ordering
// is stable and visual: left to right within a line, top to bottom across
// lines.
package shaping
