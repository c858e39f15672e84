package rich

import (
	"golang.org/x/image/colornames"
)

// ParseColor parses a CSS color name ("red", "rebeccapurple") or a hex
// color ("#f0f", "#f0f8", "#ff00ff", "#ff00ff80"). The bool result reports
// whether the string was a valid color.
func ParseColor(s string) (Color, bool) {
	if s == "" {
		return Color{}, false
	}
	if s[0] == '#' {
		return parseHexColor(s[1:])
	}
	if c, ok := colornames.Map[s]; ok {
		return Color{R: c.R, G: c.G, B: c.B, A: c.A}, true
	}
	return Color{}, false
}

// parseHexColor parses 3, 4, 6 or 8 hex digits into a color.
func parseHexColor(hex string) (Color, bool) {
	var r, g, b, a uint32
	a = 255

	switch len(hex) {
	case 3: // RGB
		if !parseHex(hex[0:1], &r) || !parseHex(hex[1:2], &g) || !parseHex(hex[2:3], &b) {
			return Color{}, false
		}
		r, g, b = r*17, g*17, b*17
	case 4: // RGBA
		if !parseHex(hex[0:1], &r) || !parseHex(hex[1:2], &g) ||
			!parseHex(hex[2:3], &b) || !parseHex(hex[3:4], &a) {
			return Color{}, false
		}
		r, g, b, a = r*17, g*17, b*17, a*17
	case 6: // RRGGBB
		if !parseHex(hex[0:2], &r) || !parseHex(hex[2:4], &g) || !parseHex(hex[4:6], &b) {
			return Color{}, false
		}
	case 8: // RRGGBBAA
		if !parseHex(hex[0:2], &r) || !parseHex(hex[2:4], &g) ||
			!parseHex(hex[4:6], &b) || !parseHex(hex[6:8], &a) {
			return Color{}, false
		}
	default:
		return Color{}, false
	}

	return Color{R: uint8(r), G: uint8(g), B: uint8(b), A: uint8(a)}, true
}

// parseHex parses a hex digit group into dst, reporting validity.
func parseHex(s string, dst *uint32) bool {
	var v uint32
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
			v = v<<4 | uint32(c-'0')
		case c >= 'a' && c <= 'f':
			v = v<<4 | uint32(c-'a'+10)
		case c >= 'A' && c <= 'F':
			v = v<<4 | uint32(c-'A'+10)
		default:
			return false
		}
	}
	*dst = v
	return true
}
