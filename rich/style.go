package rich

// Weight specifies the weight of glyphs in a font, following the usual
// OpenType scale of 100 (thin) to 900 (black).
type Weight uint16

const (
	// WeightThin is the thinnest weight (100).
	WeightThin Weight = 100
	// WeightExtraLight is extra light weight (200).
	WeightExtraLight Weight = 200
	// WeightLight is light weight (300).
	WeightLight Weight = 300
	// WeightNormal is the regular weight (400).
	WeightNormal Weight = 400
	// WeightMedium is medium weight (500).
	WeightMedium Weight = 500
	// WeightSemibold is semibold weight (600).
	WeightSemibold Weight = 600
	// WeightBold is bold weight (700).
	WeightBold Weight = 700
	// WeightExtraBold is extra bold weight (800).
	WeightExtraBold Weight = 800
	// WeightBlack is the thickest weight (900).
	WeightBlack Weight = 900
)

// Slant selects an italic or oblique face.
type Slant uint8

const (
	// SlantNormal is a face that is neither italic nor obliqued.
	SlantNormal Slant = iota
	// SlantItalic is a generally cursive face.
	SlantItalic
	// SlantOblique is a sloped version of the regular face.
	SlantOblique
)

// String returns the string representation of the slant.
func (s Slant) String() string {
	switch s {
	case SlantNormal:
		return "Normal"
	case SlantItalic:
		return "Italic"
	case SlantOblique:
		return "Oblique"
	default:
		return "Unknown"
	}
}

// Color is an 8-bit non-premultiplied RGBA color.
type Color struct {
	R, G, B, A uint8
}

// White is the default fill color.
var White = Color{255, 255, 255, 255}

// Black is the default stroke color.
var Black = Color{0, 0, 0, 255}

// Vec4 returns the color as normalized float components, ready for a
// vertex color attribute.
func (c Color) Vec4() [4]float32 {
	return [4]float32{
		float32(c.R) / 255,
		float32(c.G) / 255,
		float32(c.B) / 255,
		float32(c.A) / 255,
	}
}

// Style is the set of optional attributes a style scope contributes to the
// segments it encloses. The zero value contributes nothing.
//
// Pointer fields distinguish "not set" from a set zero value; unset fields
// inherit from the enclosing scope during Merge.
type Style struct {
	// Font is the font family name, empty for the default face.
	Font string

	// FillColor is the glyph fill color.
	FillColor *Color

	// StrokeColor is the outline stroke color.
	StrokeColor *Color

	// Fill controls whether the glyph interior is rendered.
	// When nil the interior is rendered.
	Fill *bool

	// Stroke is the stroke width as a percentage of the font size.
	// Zero means no stroke.
	Stroke uint32

	// Weight is the font weight, zero for inherited.
	Weight Weight

	// Slant selects the italic or oblique face.
	Slant *Slant

	// Underline draws a line under the segment.
	Underline *bool

	// Strikethrough draws a line through the segment.
	Strikethrough *bool

	// MagicNumber is a free per-segment scalar that can be routed into the
	// mesh's auxiliary UV channel (MetaMagicNumber).
	MagicNumber *float32

	// Attrs holds attributes this package does not interpret. They are
	// forwarded verbatim to the shaping adapter.
	Attrs map[string]string
}

// StyleTable resolves named styles the parser does not recognize as
// standard styles. Implementations are supplied by the caller.
type StyleTable interface {
	// Lookup returns the style for a name, and whether the name is known.
	Lookup(name string) (Style, bool)
}

// StyleTableFunc adapts a function to the StyleTable interface.
type StyleTableFunc func(name string) (Style, bool)

// Lookup implements StyleTable.
func (f StyleTableFunc) Lookup(name string) (Style, bool) { return f(name) }

// Merge returns the union of s and inner, with inner overriding same-key
// attributes of s. Neither receiver nor argument is modified. This is the
// only precedence rule: inner scope wins.
func (s Style) Merge(inner Style) Style {
	out := s
	if inner.Font != "" {
		out.Font = inner.Font
	}
	if inner.FillColor != nil {
		out.FillColor = inner.FillColor
	}
	if inner.StrokeColor != nil {
		out.StrokeColor = inner.StrokeColor
	}
	if inner.Fill != nil {
		out.Fill = inner.Fill
	}
	if inner.Stroke != 0 {
		out.Stroke = inner.Stroke
	}
	if inner.Weight != 0 {
		out.Weight = inner.Weight
	}
	if inner.Slant != nil {
		out.Slant = inner.Slant
	}
	if inner.Underline != nil {
		out.Underline = inner.Underline
	}
	if inner.Strikethrough != nil {
		out.Strikethrough = inner.Strikethrough
	}
	if inner.MagicNumber != nil {
		out.MagicNumber = inner.MagicNumber
	}
	if len(inner.Attrs) > 0 {
		attrs := make(map[string]string, len(s.Attrs)+len(inner.Attrs))
		for k, v := range s.Attrs {
			attrs[k] = v
		}
		for k, v := range inner.Attrs {
			attrs[k] = v
		}
		out.Attrs = attrs
	}
	return out
}

// EffectiveWeight returns the weight, defaulting to WeightNormal.
func (s Style) EffectiveWeight() Weight {
	if s.Weight == 0 {
		return WeightNormal
	}
	return s.Weight
}

// EffectiveSlant returns the slant, defaulting to SlantNormal.
func (s Style) EffectiveSlant() Slant {
	if s.Slant == nil {
		return SlantNormal
	}
	return *s.Slant
}

// EffectiveFill reports whether the glyph interior is rendered.
func (s Style) EffectiveFill() bool {
	return s.Fill == nil || *s.Fill
}

// EffectiveFillColor returns the fill color, defaulting to white.
func (s Style) EffectiveFillColor() Color {
	if s.FillColor == nil {
		return White
	}
	return *s.FillColor
}

// EffectiveStrokeColor returns the stroke color, defaulting to black.
func (s Style) EffectiveStrokeColor() Color {
	if s.StrokeColor == nil {
		return Black
	}
	return *s.StrokeColor
}

// EffectiveUnderline reports whether the segment is underlined.
func (s Style) EffectiveUnderline() bool {
	return s.Underline != nil && *s.Underline
}

// EffectiveStrikethrough reports whether the segment is struck through.
func (s Style) EffectiveStrikethrough() bool {
	return s.Strikethrough != nil && *s.Strikethrough
}

// EffectiveMagicNumber returns the magic number, defaulting to zero.
func (s Style) EffectiveMagicNumber() float32 {
	if s.MagicNumber == nil {
		return 0
	}
	return *s.MagicNumber
}

// flipWeight toggles between normal and bold, used by markdown strong.
func (s *Style) flipWeight() {
	if s.Weight == 0 || s.Weight <= WeightNormal {
		s.Weight = WeightBold
	} else {
		s.Weight = WeightNormal
	}
}

// flipSlant toggles between normal and italic, used by markdown emphasis.
func (s *Style) flipSlant() {
	slant := SlantItalic
	if s.Slant != nil && *s.Slant == SlantItalic {
		slant = SlantNormal
	}
	s.Slant = &slant
}
