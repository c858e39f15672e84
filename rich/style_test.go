package rich

import "testing"

func TestStyle_MergeInnerWins(t *testing.T) {
	red := Color{255, 0, 0, 255}
	blue := Color{0, 0, 255, 255}

	outer := Style{FillColor: &red, Stroke: 3, Font: "serif"}
	inner := Style{FillColor: &blue}

	merged := outer.Merge(inner)
	if *merged.FillColor != blue {
		t.Errorf("inner fill color must win, got %+v", merged.FillColor)
	}
	if merged.Stroke != 3 {
		t.Errorf("outer stroke must be inherited, got %d", merged.Stroke)
	}
	if merged.Font != "serif" {
		t.Errorf("outer font must be inherited, got %q", merged.Font)
	}
}

func TestStyle_MergeDoesNotMutate(t *testing.T) {
	red := Color{255, 0, 0, 255}
	outer := Style{FillColor: &red, Attrs: map[string]string{"a": "1"}}
	inner := Style{Attrs: map[string]string{"b": "2"}}

	merged := outer.Merge(inner)
	if len(outer.Attrs) != 1 {
		t.Errorf("outer attrs mutated: %+v", outer.Attrs)
	}
	if len(merged.Attrs) != 2 {
		t.Errorf("merged attrs: %+v", merged.Attrs)
	}
}

func TestStyle_Defaults(t *testing.T) {
	var s Style
	if s.EffectiveWeight() != WeightNormal {
		t.Error("default weight must be normal")
	}
	if s.EffectiveSlant() != SlantNormal {
		t.Error("default slant must be normal")
	}
	if !s.EffectiveFill() {
		t.Error("fill must default to on")
	}
	if s.EffectiveFillColor() != White {
		t.Error("fill color must default to white")
	}
	if s.EffectiveMagicNumber() != 0 {
		t.Error("magic number must default to zero")
	}
}

func TestColor_Vec4(t *testing.T) {
	v := Color{255, 0, 127, 255}.Vec4()
	if v[0] != 1 || v[1] != 0 || v[3] != 1 {
		t.Errorf("unexpected vec4: %v", v)
	}
	if v[2] < 0.49 || v[2] > 0.51 {
		t.Errorf("blue component out of range: %v", v[2])
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want Color
		ok   bool
	}{
		{"red", Color{255, 0, 0, 255}, true},
		{"black", Color{0, 0, 0, 255}, true},
		{"#fff", Color{255, 255, 255, 255}, true},
		{"#f00f", Color{255, 0, 0, 255}, true},
		{"#102030", Color{16, 32, 48, 255}, true},
		{"#10203040", Color{16, 32, 48, 64}, true},
		{"", Color{}, false},
		{"#12345", Color{}, false},
		{"#zzz", Color{}, false},
		{"notacolor", Color{}, false},
	}
	for _, tt := range tests {
		got, ok := ParseColor(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ParseColor(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
