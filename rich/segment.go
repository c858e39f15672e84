package rich

import "strings"

// SegmentKind discriminates the node types of a parsed segment tree.
type SegmentKind uint8

const (
	// SegmentLiteral is a run of literal text.
	SegmentLiteral SegmentKind = iota
	// SegmentPlaceholder is a named slot resolved by a fetch source at
	// render time.
	SegmentPlaceholder
	// SegmentSpan is a style scope enclosing child segments.
	SegmentSpan
)

// String returns the string representation of the kind.
func (k SegmentKind) String() string {
	switch k {
	case SegmentLiteral:
		return "Literal"
	case SegmentPlaceholder:
		return "Placeholder"
	case SegmentSpan:
		return "Span"
	default:
		return "Unknown"
	}
}

// Segment is a node in the parse tree.
//
// Literal and Placeholder nodes are leaves; Text holds the literal run or
// the placeholder name, and Style holds the fully-resolved style-set
// accumulated from all enclosing scopes. Span nodes mirror the markup
// nesting; Text holds the raw style-list head so the tree can be printed
// back as markup.
type Segment struct {
	Kind     SegmentKind
	Text     string
	Style    Style
	Children []Segment
}

// Run is a flattened leaf, ready for fetch resolution and shaping.
type Run struct {
	// Text is the literal text, or the placeholder name when Placeholder
	// is set.
	Text string

	// Style is the resolved style-set of the leaf.
	Style Style

	// Placeholder reports that Text names a fetch slot rather than
	// literal content.
	Placeholder bool
}

// Text is a parsed rich-text template.
type Text struct {
	Segments []Segment
}

// Plain creates a template holding a single unstyled literal, bypassing
// the parser.
func Plain(s string) *Text {
	if s == "" {
		return &Text{}
	}
	return &Text{Segments: []Segment{{Kind: SegmentLiteral, Text: s}}}
}

// Flatten returns the leaves of the tree in depth-first, left-to-right
// order. Span nodes contribute their children only.
func (t *Text) Flatten() []Run {
	var runs []Run
	for i := range t.Segments {
		runs = flattenInto(runs, &t.Segments[i])
	}
	return runs
}

func flattenInto(runs []Run, s *Segment) []Run {
	switch s.Kind {
	case SegmentSpan:
		for i := range s.Children {
			runs = flattenInto(runs, &s.Children[i])
		}
	case SegmentPlaceholder:
		runs = append(runs, Run{Text: s.Text, Style: s.Style, Placeholder: true})
	default:
		runs = append(runs, Run{Text: s.Text, Style: s.Style})
	}
	return runs
}

// Placeholders returns the distinct placeholder names in the template, in
// first-appearance order.
func (t *Text) Placeholders() []string {
	var names []string
	seen := map[string]bool{}
	for _, run := range t.Flatten() {
		if run.Placeholder && !seen[run.Text] {
			seen[run.Text] = true
			names = append(names, run.Text)
		}
	}
	return names
}

// String re-emits the tree as markup. Literal braces are re-escaped, so
// for input consisting only of literal text and brace escapes,
// Parse(input).String() == input.
func (t *Text) String() string {
	var b strings.Builder
	for i := range t.Segments {
		writeSegment(&b, &t.Segments[i])
	}
	return b.String()
}

func writeSegment(b *strings.Builder, s *Segment) {
	switch s.Kind {
	case SegmentSpan:
		b.WriteByte('{')
		b.WriteString(s.Text)
		b.WriteByte(':')
		for i := range s.Children {
			writeSegment(b, &s.Children[i])
		}
		b.WriteByte('}')
	case SegmentPlaceholder:
		b.WriteByte('{')
		b.WriteString(s.Text)
		b.WriteByte('}')
	default:
		for _, r := range s.Text {
			switch r {
			case '{':
				b.WriteString("{{")
			case '}':
				b.WriteString("}}")
			default:
				b.WriteRune(r)
			}
		}
	}
}
