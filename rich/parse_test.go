package rich

import (
	"reflect"
	"testing"
)

// testTable is a StyleTable with bold/italic entries for nesting tests.
var testTable = StyleTableFunc(func(name string) (Style, bool) {
	switch name {
	case "bold":
		return Style{Weight: WeightBold}, true
	case "italic":
		slant := SlantItalic
		return Style{Slant: &slant}, true
	}
	return Style{}, false
})

func TestParse_PlainText(t *testing.T) {
	tree := Parse("hello world")
	runs := tree.Flatten()
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	if runs[0].Text != "hello world" || runs[0].Placeholder {
		t.Errorf("unexpected run: %+v", runs[0])
	}
}

func TestParse_Empty(t *testing.T) {
	tree := Parse("")
	if len(tree.Segments) != 0 {
		t.Errorf("expected no segments, got %d", len(tree.Segments))
	}
}

func TestParse_Nesting(t *testing.T) {
	tree := ParseWithOptions("{bold:a{italic:b}c}", Options{Styles: testTable})
	runs := tree.Flatten()
	if len(runs) != 3 {
		t.Fatalf("expected 3 runs, got %d: %+v", len(runs), runs)
	}

	if runs[0].Text != "a" || runs[0].Style.EffectiveWeight() != WeightBold {
		t.Errorf("run 0: got %q weight %d", runs[0].Text, runs[0].Style.EffectiveWeight())
	}
	if runs[0].Style.EffectiveSlant() != SlantNormal {
		t.Errorf("run 0 should not be italic")
	}

	if runs[1].Text != "b" || runs[1].Style.EffectiveWeight() != WeightBold ||
		runs[1].Style.EffectiveSlant() != SlantItalic {
		t.Errorf("run 1: got %q %+v", runs[1].Text, runs[1].Style)
	}

	if runs[2].Text != "c" || runs[2].Style.EffectiveWeight() != WeightBold {
		t.Errorf("run 2: got %q weight %d", runs[2].Text, runs[2].Style.EffectiveWeight())
	}
	if runs[2].Style.EffectiveSlant() != SlantNormal {
		t.Errorf("run 2 should not be italic")
	}
}

func TestParse_Escaping(t *testing.T) {
	tree := Parse("{{literal}}")
	runs := tree.Flatten()
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d: %+v", len(runs), runs)
	}
	if runs[0].Text != "{literal}" {
		t.Errorf("expected %q, got %q", "{literal}", runs[0].Text)
	}
	if runs[0].Placeholder {
		t.Error("escaped braces must not form a placeholder")
	}
}

func TestParse_RoundTrip(t *testing.T) {
	// Inputs containing only literal text and escaped braces must
	// round-trip exactly through Parse then String.
	inputs := []string{
		"",
		"plain text",
		"{{",
		"}}",
		"{{}}",
		"a{{b}}c",
		"{{{{double}}}}",
		"multi\nline {{x}}",
	}
	for _, in := range inputs {
		if got := Parse(in).String(); got != in {
			t.Errorf("round trip %q: got %q", in, got)
		}
	}
}

func TestParse_Placeholder(t *testing.T) {
	tree := Parse("Score: {score}")
	runs := tree.Flatten()
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].Text != "Score: " || runs[0].Placeholder {
		t.Errorf("run 0: %+v", runs[0])
	}
	if runs[1].Text != "score" || !runs[1].Placeholder {
		t.Errorf("run 1: %+v", runs[1])
	}
}

func TestParse_EmptyPlaceholder(t *testing.T) {
	runs := Parse("a{}b").Flatten()
	if len(runs) != 3 {
		t.Fatalf("expected 3 runs, got %d: %+v", len(runs), runs)
	}
	if !runs[1].Placeholder || runs[1].Text != "" {
		t.Errorf("expected empty placeholder, got %+v", runs[1])
	}
}

func TestParse_EmptyStyleName(t *testing.T) {
	// "{:value}" is a no-op style wrapping "value".
	runs := Parse("{:value}").Flatten()
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	if runs[0].Text != "value" || runs[0].Placeholder {
		t.Errorf("unexpected run: %+v", runs[0])
	}
	if !reflect.DeepEqual(runs[0].Style, Style{}) {
		t.Errorf("expected empty style, got %+v", runs[0].Style)
	}
}

func TestParse_MultipleColons(t *testing.T) {
	// Only the first colon separates style from value.
	runs := Parse("{red:a:b:c}").Flatten()
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	if runs[0].Text != "a:b:c" {
		t.Errorf("expected %q, got %q", "a:b:c", runs[0].Text)
	}
	if runs[0].Style.FillColor == nil {
		t.Error("expected fill color from standard style")
	}
}

func TestParse_UnmatchedOpen(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"a{b", "a{b"},
		{"{", "{"},
		{"{red:oops", "{red:oops"},
		{"pre{red:a{blue:b", "pre{red:a{blue:b"},
	}
	for _, tt := range tests {
		runs := Parse(tt.in).Flatten()
		var got string
		for _, r := range runs {
			got += r.Text
		}
		if got != tt.want {
			t.Errorf("Parse(%q): flattened to %q, want %q", tt.in, got, tt.want)
		}
		for _, r := range runs {
			if r.Placeholder {
				t.Errorf("Parse(%q): malformed markup produced a placeholder", tt.in)
			}
		}
	}
}

func TestParse_CloseWinsInsideSpan(t *testing.T) {
	// Inside a span the first "}" closes the scope, so "}}" is not an
	// escape there: "{{" still opens a literal brace, the first "}"
	// ends the span, and the rest degrades to literal text.
	runs := Parse("{red:a{{b}}c}").Flatten()
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d: %+v", len(runs), runs)
	}
	if runs[0].Text != "a{b" || runs[0].Style.FillColor == nil {
		t.Errorf("span run: got %q style %+v", runs[0].Text, runs[0].Style)
	}
	if runs[1].Text != "}c}" || runs[1].Style.FillColor != nil {
		t.Errorf("trailing run: got %q style %+v", runs[1].Text, runs[1].Style)
	}
}

func TestParse_StrayClose(t *testing.T) {
	runs := Parse("a}b").Flatten()
	if len(runs) != 1 || runs[0].Text != "a}b" {
		t.Fatalf("expected literal %q, got %+v", "a}b", runs)
	}
}

func TestParse_NoTrimming(t *testing.T) {
	// Names are exact-match keys: whitespace is preserved.
	runs := Parse("{ score }").Flatten()
	if len(runs) != 1 || !runs[0].Placeholder {
		t.Fatalf("expected placeholder, got %+v", runs)
	}
	if runs[0].Text != " score " {
		t.Errorf("expected %q, got %q", " score ", runs[0].Text)
	}
}

func TestParse_ChainedStyles(t *testing.T) {
	runs := Parse("{red,s-2:x}").Flatten()
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	st := runs[0].Style
	if st.FillColor == nil || *st.FillColor != (Color{255, 0, 0, 255}) {
		t.Errorf("expected red fill, got %+v", st.FillColor)
	}
	if st.Stroke != 2 {
		t.Errorf("expected stroke 2, got %d", st.Stroke)
	}
}

func TestParse_StandardStyles(t *testing.T) {
	tests := []struct {
		name  string
		check func(Style) bool
	}{
		{"red", func(s Style) bool { return s.FillColor != nil && *s.FillColor == Color{255, 0, 0, 255} }},
		{"#ff00ff", func(s Style) bool { return s.FillColor != nil && *s.FillColor == Color{255, 0, 255, 255} }},
		{"#f0f", func(s Style) bool { return s.FillColor != nil && *s.FillColor == Color{255, 0, 255, 255} }},
		{"s-4", func(s Style) bool { return s.Stroke == 4 }},
		{"s-blue", func(s Style) bool { return s.StrokeColor != nil && *s.StrokeColor == Color{0, 0, 255, 255} }},
		{"v-1.5", func(s Style) bool { return s.MagicNumber != nil && *s.MagicNumber == 1.5 }},
	}
	for _, tt := range tests {
		runs := Parse("{" + tt.name + ":x}").Flatten()
		if len(runs) != 1 {
			t.Fatalf("%s: expected 1 run, got %d", tt.name, len(runs))
		}
		if !tt.check(runs[0].Style) {
			t.Errorf("%s: style not applied: %+v", tt.name, runs[0].Style)
		}
	}
}

func TestParse_UnknownStyleBecomesAttr(t *testing.T) {
	runs := Parse("{wobble:x}").Flatten()
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	if _, ok := runs[0].Style.Attrs["wobble"]; !ok {
		t.Errorf("expected opaque attribute, got %+v", runs[0].Style.Attrs)
	}
}

func TestParse_Markdown(t *testing.T) {
	runs := ParseWithOptions("a *b* **c** d", Options{Markdown: true}).Flatten()
	if len(runs) != 5 {
		t.Fatalf("expected 5 runs, got %d: %+v", len(runs), runs)
	}
	if runs[0].Style.EffectiveSlant() != SlantNormal {
		t.Error("leading run should be upright")
	}
	if runs[1].Style.EffectiveSlant() != SlantItalic {
		t.Error("emphasis run should be italic")
	}
	if runs[2].Style.EffectiveSlant() != SlantNormal {
		t.Error("run between emphasis and strong should be upright")
	}
	if runs[3].Style.EffectiveWeight() != WeightBold {
		t.Error("strong run should be bold")
	}
	if runs[4].Style.EffectiveWeight() != WeightNormal {
		t.Error("trailing run should be back to normal weight")
	}
}

func TestParse_MarkdownDisabledByDefault(t *testing.T) {
	runs := Parse("a *b*").Flatten()
	if len(runs) != 1 || runs[0].Text != "a *b*" {
		t.Fatalf("asterisks must be literal by default, got %+v", runs)
	}
}

func TestParse_DeepNesting(t *testing.T) {
	runs := Parse("{a:{b:{c:{d:x}}}}").Flatten()
	if len(runs) != 1 || runs[0].Text != "x" {
		t.Fatalf("expected single deep literal, got %+v", runs)
	}
	attrs := runs[0].Style.Attrs
	for _, name := range []string{"a", "b", "c", "d"} {
		if _, ok := attrs[name]; !ok {
			t.Errorf("missing inherited attr %q", name)
		}
	}
}

func TestPlaceholders(t *testing.T) {
	names := Parse("{a} {b} {a}").Placeholders()
	if !reflect.DeepEqual(names, []string{"a", "b"}) {
		t.Errorf("got %v", names)
	}
}
