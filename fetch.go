package textmesh

import "github.com/gogpu/textmesh/rich"

// Source supplies values for the placeholders of a text template.
// Lookup returns the current value of a named placeholder and whether
// the name is known. Sources are polled on every Update; they should be
// cheap and must be safe for concurrent use if shared between texts.
type Source interface {
	Lookup(name string) (string, bool)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(name string) (string, bool)

// Lookup implements Source.
func (f SourceFunc) Lookup(name string) (string, bool) {
	return f(name)
}

// MapSource is a map-backed Source. The zero value resolves nothing.
type MapSource map[string]string

// Lookup implements Source.
func (m MapSource) Lookup(name string) (string, bool) {
	v, ok := m[name]
	return v, ok
}

// Resolver substitutes placeholder values into a parsed text and tracks
// changes between passes so callers can skip re-shaping unchanged text.
// One Resolver serves one Text; it is not safe for concurrent use.
type Resolver struct {
	last map[string]string
}

// NewResolver creates a resolver with no previous pass.
func NewResolver() *Resolver {
	return &Resolver{}
}

// Resolve flattens the text into runs, replacing each placeholder run's
// content with the source's current value. A missing name resolves to
// the empty string, never an error; a nil source resolves every name to
// the empty string.
//
// The second result reports whether any placeholder value differs from
// the previous pass. The first pass always reports changed. Identical
// consecutive passes report unchanged and yield identical runs.
func (r *Resolver) Resolve(text *rich.Text, src Source) ([]rich.Run, bool) {
	runs := text.Flatten()

	current := make(map[string]string)
	for i := range runs {
		if !runs[i].Placeholder {
			continue
		}
		name := runs[i].Text
		value := ""
		if src != nil {
			if v, ok := src.Lookup(name); ok {
				value = v
			}
		}
		current[name] = value
		runs[i].Text = value
	}

	changed := r.last == nil || len(current) != len(r.last)
	if !changed {
		for name, value := range current {
			if prev, ok := r.last[name]; !ok || prev != value {
				changed = true
				break
			}
		}
	}
	r.last = current
	return runs, changed
}
