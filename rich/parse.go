package rich

import (
	"strconv"
	"strings"
)

// Options configures parsing.
type Options struct {
	// Styles resolves named styles that are not standard styles.
	// May be nil, in which case unknown names become opaque attributes.
	Styles StyleTable

	// Markdown enables the markdown subset: *emphasis*, **strong** and
	// ***both*** toggle slant and weight for the rest of the enclosing
	// scope. Off by default so literal asterisks pass through unchanged.
	Markdown bool
}

// Parse parses a rich-text markup string into a segment tree.
//
// Parse is total: it never fails. Malformed markup degrades to literal
// text. An unmatched "{" turns the remainder of the input into a literal
// run, and a stray "}" becomes a literal brace.
//
// Brace escapes are asymmetric inside a style span: "{{" always yields a
// literal "{", but the first "}" closes the innermost open span, so "}}"
// there closes the span and then emits a literal "}". Escaped closing
// braces only work outside spans.
func Parse(input string) *Text {
	return ParseWithOptions(input, Options{})
}

// ParseWithOptions parses with an explicit style table and options.
func ParseWithOptions(input string, opts Options) *Text {
	p := &parser{src: []rune(input), opts: opts}
	segs, _, _ := p.parseSegments(0, Style{}, 0)
	return &Text{Segments: segs}
}

type parser struct {
	src  []rune
	opts Options
}

// parseSegments consumes segments until end of input (depth 0) or the "}"
// closing the current scope (depth > 0). It returns the parsed segments,
// the index after the consumed input, and whether the scope was closed.
// An unclosed scope at depth > 0 reports closed=false so the caller can
// degrade its own opening brace to literal text.
func (p *parser) parseSegments(i int, scope Style, depth int) ([]Segment, int, bool) {
	var segs []Segment
	var buf strings.Builder
	cur := scope

	flush := func() {
		if buf.Len() > 0 {
			segs = append(segs, Segment{Kind: SegmentLiteral, Text: buf.String(), Style: cur})
			buf.Reset()
		}
	}

	n := len(p.src)
	for i < n {
		c := p.src[i]
		switch {
		case c == '{':
			if i+1 < n && p.src[i+1] == '{' {
				buf.WriteByte('{')
				i += 2
				continue
			}
			seg, next, ok := p.parseBrace(i, cur, depth)
			if !ok {
				// No matching "}": the rest of the input is literal.
				flush()
				segs = append(segs, Segment{Kind: SegmentLiteral, Text: string(p.src[i:]), Style: cur})
				return segs, n, depth == 0
			}
			flush()
			segs = append(segs, seg)
			i = next

		case c == '}':
			if depth > 0 {
				flush()
				return segs, i + 1, true
			}
			if i+1 < n && p.src[i+1] == '}' {
				buf.WriteByte('}')
				i += 2
				continue
			}
			// Stray closing brace, keep it.
			buf.WriteByte('}')
			i++

		case c == '*' && p.opts.Markdown:
			flush()
			stars := 1
			for i+stars < n && p.src[i+stars] == '*' {
				stars++
			}
			i += stars
			switch {
			case stars == 1:
				cur.flipSlant()
			case stars == 2:
				cur.flipWeight()
			case stars == 3:
				cur.flipSlant()
				cur.flipWeight()
			case stars%2 == 1:
				cur.flipSlant()
			}

		default:
			buf.WriteRune(c)
			i++
		}
	}
	flush()
	return segs, n, depth == 0
}

// parseBrace parses a "{...}" expression starting at the opening brace.
// Reports ok=false when the expression is malformed, in which case the
// caller treats the input from i onward as literal text.
func (p *parser) parseBrace(i int, outer Style, depth int) (Segment, int, bool) {
	n := len(p.src)
	for j := i + 1; j < n; j++ {
		switch p.src[j] {
		case ':':
			// Style span. Only the first ":" separates the style list
			// from the value; further colons belong to the value.
			head := string(p.src[i+1 : j])
			style := outer
			for _, tok := range strings.Split(head, ",") {
				style = style.Merge(p.resolveStyle(tok))
			}
			children, next, ok := p.parseSegments(j+1, style, depth+1)
			if !ok {
				return Segment{}, 0, false
			}
			return Segment{Kind: SegmentSpan, Text: head, Style: style, Children: children}, next, true

		case '}':
			// Placeholder. Names are exact-match: no trimming.
			return Segment{
				Kind:  SegmentPlaceholder,
				Text:  string(p.src[i+1 : j]),
				Style: outer,
			}, j + 1, true

		case '{':
			// Braces cannot nest inside a style list or placeholder name.
			return Segment{}, 0, false
		}
	}
	return Segment{}, 0, false
}

// resolveStyle resolves one style token. Standard styles (colors, stroke,
// magic number) are recognized first; the style table is consulted next;
// anything else is kept as an opaque attribute for the shaping adapter.
// The empty token is a no-op, so "{:value}" wraps value with no style.
func (p *parser) resolveStyle(name string) Style {
	if name == "" {
		return Style{}
	}
	if rest, ok := strings.CutPrefix(name, "v-"); ok {
		if v, err := strconv.ParseFloat(rest, 32); err == nil {
			m := float32(v)
			return Style{MagicNumber: &m}
		}
	}
	if rest, ok := strings.CutPrefix(name, "s-"); ok {
		if v, err := strconv.ParseUint(rest, 10, 32); err == nil && v > 0 {
			return Style{Stroke: uint32(v)}
		}
		if c, ok := ParseColor(rest); ok {
			return Style{StrokeColor: &c}
		}
	}
	if c, ok := ParseColor(name); ok {
		return Style{FillColor: &c}
	}
	if p.opts.Styles != nil {
		if s, ok := p.opts.Styles.Lookup(name); ok {
			return s
		}
	}
	return Style{Attrs: map[string]string{name: ""}}
}
