package textmesh

import (
	"testing"

	"github.com/gogpu/textmesh/rich"
	"github.com/gogpu/textmesh/sdf"
	"github.com/gogpu/textmesh/shaping"
)

// meshFixture builds three glyphs on one line; the middle one is a
// space with an empty region.
func meshFixture() (*shaping.Result, RegionSet) {
	red := rich.Color{R: 255, A: 255}
	res := &shaping.Result{
		Glyphs: []shaping.PositionedGlyph{
			{GID: 1, Size: 16, X: 0, Y: 0, Advance: 10, Color: red, LineProgress: 0.2},
			{GID: 2, Size: 16, X: 10, Y: 0, Advance: 10, Whitespace: true, LineProgress: 0.5},
			{GID: 3, Size: 16, X: 20.3, Y: 0, Advance: 10, Color: red, LineProgress: 0.8},
		},
		Width:  30,
		Height: 16,
		Lines:  1,
	}
	regions := RegionSet{
		Fill: []sdf.Region{
			{Page: 0, X: 0, Y: 0, Width: 10, Height: 12, U0: 0, V0: 0, U1: 0.1, V1: 0.12, Left: -1, Bottom: -2},
			{},
			{Page: 0, X: 12, Y: 0, Width: 10, Height: 12, U0: 0.12, V0: 0, U1: 0.22, V1: 0.12, Left: -1, Bottom: -2},
		},
	}
	return res, regions
}

func TestEmit_QuadPerVisibleGlyph(t *testing.T) {
	e := NewEmitter(DefaultEmitterConfig())
	res, regions := meshFixture()

	mesh, err := e.Emit(res, regions)
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}

	if mesh.QuadCount() != 2 {
		t.Errorf("quad count = %d, want 2 (space skipped)", mesh.QuadCount())
	}
	if len(mesh.Positions) != 8 || len(mesh.UVs) != 8 || len(mesh.UVBs) != 8 ||
		len(mesh.Colors) != 8 || len(mesh.Normals) != 8 {
		t.Errorf("vertex buffers disagree: %d positions, %d uvs", len(mesh.Positions), len(mesh.UVs))
	}
	if len(mesh.Indices) != 12 {
		t.Errorf("index count = %d, want 12", len(mesh.Indices))
	}
}

func TestEmit_QuadGeometry(t *testing.T) {
	e := NewEmitter(DefaultEmitterConfig())
	res, regions := meshFixture()

	mesh, err := e.Emit(res, regions)
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}

	// First glyph at pen x=0, region offset (-1, -2), 10x12 px.
	want := [][3]float32{
		{-1, -2, 0},
		{9, -2, 0},
		{-1, 10, 0},
		{9, 10, 0},
	}
	for i, w := range want {
		if mesh.Positions[i] != w {
			t.Errorf("vertex %d = %v, want %v", i, mesh.Positions[i], w)
		}
	}

	// Third glyph's pen x=20.3 snaps to the quantized pixel 20.
	if got := mesh.Positions[4][0]; got != 19 {
		t.Errorf("second quad min x = %v, want 19", got)
	}

	// Indices follow the i, i+1, i+2, i+1, i+3, i+2 pattern per quad.
	wantIdx := []uint32{0, 1, 2, 1, 3, 2, 4, 5, 6, 5, 7, 6}
	for i, w := range wantIdx {
		if mesh.Indices[i] != w {
			t.Errorf("index %d = %d, want %d", i, mesh.Indices[i], w)
		}
	}
}

func TestEmit_UVOrientation(t *testing.T) {
	e := NewEmitter(DefaultEmitterConfig())
	res, regions := meshFixture()

	mesh, _ := e.Emit(res, regions)

	// Atlas rows run top-down while mesh y runs up: the bottom-left
	// vertex samples V1, the top-left vertex samples V0.
	if mesh.UVs[0] != ([2]float32{0, 0.12}) {
		t.Errorf("bottom-left UV = %v, want (0, 0.12)", mesh.UVs[0])
	}
	if mesh.UVs[2] != ([2]float32{0, 0}) {
		t.Errorf("top-left UV = %v, want (0, 0)", mesh.UVs[2])
	}
}

func TestEmit_GlyphIndexMonotone(t *testing.T) {
	e := NewEmitter(DefaultEmitterConfig())
	res, regions := meshFixture()

	mesh, _ := e.Emit(res, regions)

	// Two visible glyphs: uv_b.x is 0 then 0.5, constant per quad.
	if mesh.UVBs[0][0] != 0 {
		t.Errorf("first quad uv_b.x = %v, want 0", mesh.UVBs[0][0])
	}
	if mesh.UVBs[4][0] != 0.5 {
		t.Errorf("second quad uv_b.x = %v, want 0.5", mesh.UVBs[4][0])
	}
	for q := 0; q < mesh.QuadCount(); q++ {
		for v := 1; v < 4; v++ {
			if mesh.UVBs[q*4+v] != mesh.UVBs[q*4] {
				t.Fatalf("uv_b varies within quad %d", q)
			}
		}
	}

	// Default y channel carries line progress.
	if mesh.UVBs[0][1] != 0.2 || mesh.UVBs[4][1] != 0.8 {
		t.Errorf("uv_b.y = %v, %v, want 0.2, 0.8", mesh.UVBs[0][1], mesh.UVBs[4][1])
	}
}

func TestEmit_RowXNormalized(t *testing.T) {
	config := DefaultEmitterConfig()
	config.MetaX = MetaRowX
	e := NewEmitter(config)
	res, regions := meshFixture()

	mesh, _ := e.Emit(res, regions)

	if mesh.UVBs[0][0] != 0 {
		t.Errorf("leftmost quad RowX = %v, want 0", mesh.UVBs[0][0])
	}
	if mesh.UVBs[4][0] != 1 {
		t.Errorf("rightmost quad RowX = %v, want 1", mesh.UVBs[4][0])
	}
}

func TestEmit_MagicNumber(t *testing.T) {
	config := DefaultEmitterConfig()
	config.MetaY = MetaMagicNumber
	e := NewEmitter(config)

	res, regions := meshFixture()
	res.Glyphs[2].MagicNumber = 3.5

	mesh, _ := e.Emit(res, regions)
	if mesh.UVBs[4][1] != 3.5 {
		t.Errorf("magic number channel = %v, want 3.5", mesh.UVBs[4][1])
	}
}

func TestEmit_Colors(t *testing.T) {
	e := NewEmitter(DefaultEmitterConfig())
	res, regions := meshFixture()

	mesh, _ := e.Emit(res, regions)
	want := [4]float32{1, 0, 0, 1}
	if mesh.Colors[0] != want {
		t.Errorf("vertex color = %v, want %v", mesh.Colors[0], want)
	}
}

func TestEmit_Scale(t *testing.T) {
	config := DefaultEmitterConfig()
	config.Scale = 0.5
	e := NewEmitter(config)
	res, regions := meshFixture()

	mesh, _ := e.Emit(res, regions)
	if got := mesh.Positions[1][0] - mesh.Positions[0][0]; got != 5 {
		t.Errorf("scaled quad width = %v, want 5", got)
	}
}

func TestEmit_StrokeLayer(t *testing.T) {
	e := NewEmitter(DefaultEmitterConfig())
	res, regions := meshFixture()

	blue := rich.Color{B: 255, A: 255}
	res.Glyphs[0].Stroke = 10
	res.Glyphs[0].StrokeColor = blue
	regions.Stroke = make([]sdf.Region, len(res.Glyphs))
	regions.Stroke[0] = sdf.Region{
		Page: 0, X: 32, Y: 0, Width: 14, Height: 16,
		U0: 0.32, V0: 0, U1: 0.46, V1: 0.16, Left: -3, Bottom: -4,
	}

	mesh, err := e.Emit(res, regions)
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}

	// Stroke quad first, behind the fill, then the two fill quads.
	if mesh.QuadCount() != 3 {
		t.Fatalf("quad count = %d, want 3", mesh.QuadCount())
	}
	if z := mesh.Positions[0][2]; z != -0.01 {
		t.Errorf("stroke quad z = %v, want -0.01", z)
	}
	if mesh.Colors[0] != ([4]float32{0, 0, 1, 1}) {
		t.Errorf("stroke quad color = %v, want blue", mesh.Colors[0])
	}
	if mesh.Positions[0][0] != -3 || mesh.Positions[0][1] != -4 {
		t.Errorf("stroke quad origin = (%v, %v), want (-3, -4)",
			mesh.Positions[0][0], mesh.Positions[0][1])
	}

	// The fill quad keeps its geometry and depth.
	if z := mesh.Positions[4][2]; z != 0 {
		t.Errorf("fill quad z = %v, want 0", z)
	}
	if mesh.Colors[4] != ([4]float32{1, 0, 0, 1}) {
		t.Errorf("fill quad color = %v, want red", mesh.Colors[4])
	}

	// Both layers of the glyph share metadata.
	if mesh.UVBs[0] != mesh.UVBs[4] {
		t.Errorf("stroke uv_b %v differs from fill uv_b %v", mesh.UVBs[0], mesh.UVBs[4])
	}
}

func TestEmit_StrokeWithoutFill(t *testing.T) {
	e := NewEmitter(DefaultEmitterConfig())
	res, regions := meshFixture()

	// A hollow glyph: stroke layer only, no fill quad.
	regions.Fill[0] = sdf.Region{}
	regions.Stroke = make([]sdf.Region, len(res.Glyphs))
	regions.Stroke[0] = sdf.Region{
		Page: 0, X: 32, Y: 0, Width: 14, Height: 16,
		U0: 0.32, V0: 0, U1: 0.46, V1: 0.16, Left: -3, Bottom: -4,
	}

	mesh, err := e.Emit(res, regions)
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if mesh.QuadCount() != 2 {
		t.Fatalf("quad count = %d, want 2 (stroke plus one fill)", mesh.QuadCount())
	}
	if z := mesh.Positions[0][2]; z != -0.01 {
		t.Errorf("hollow glyph quad z = %v, want the stroke layer", z)
	}
}

func TestEmit_RuleQuads(t *testing.T) {
	e := NewEmitter(DefaultEmitterConfig())
	res, regions := meshFixture()

	// All three glyphs underlined; the space contributes a rule quad
	// even though it has no fill, so the line runs unbroken.
	for i := range res.Glyphs {
		res.Glyphs[i].Underline = true
	}
	res.Glyphs[2].Strikethrough = true
	regions.Solid = sdf.Region{
		Page: 0, X: 56, Y: 0, Width: 8, Height: 8,
		U0: 0.56, V0: 0, U1: 0.64, V1: 0.08,
	}

	mesh, err := e.Emit(res, regions)
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}

	// 2 fills + 3 underlines + 1 strikethrough.
	if mesh.QuadCount() != 6 {
		t.Fatalf("quad count = %d, want 6", mesh.QuadCount())
	}

	var underlines, strikes int
	for q := 0; q < mesh.QuadCount(); q++ {
		v := q * 4
		switch z := mesh.Positions[v][2]; z {
		case float32(-0.02):
			underlines++
			// Rules span the glyph's advance, 16px font: thickness
			// 0.8px centered 1.6px under the baseline.
			width := mesh.Positions[v+1][0] - mesh.Positions[v][0]
			if width < 9.99 || width > 10.01 {
				t.Errorf("underline width = %v, want 10", width)
			}
			if y0, y1 := mesh.Positions[v][1], mesh.Positions[v+2][1]; y0 != -2.0 || y1 != -1.2 {
				t.Errorf("underline y span = (%v, %v), want (-2.0, -1.2)", y0, y1)
			}
			// Constant center UV keeps the sample inside the patch.
			for c := 1; c < 4; c++ {
				if mesh.UVs[v+c] != mesh.UVs[v] {
					t.Errorf("rule UV varies within quad %d", q)
				}
			}
			if mesh.UVs[v] != ([2]float32{0.6, 0.04}) {
				t.Errorf("rule UV = %v, want the solid patch center", mesh.UVs[v])
			}
		case float32(0.01):
			strikes++
			if y0 := mesh.Positions[v][1]; y0 != 4.8-0.4 {
				t.Errorf("strikethrough bottom = %v, want 4.4", y0)
			}
		}
	}
	if underlines != 3 || strikes != 1 {
		t.Errorf("rule quads = %d underlines, %d strikes, want 3, 1", underlines, strikes)
	}
}

func TestEmit_LengthMismatch(t *testing.T) {
	e := NewEmitter(DefaultEmitterConfig())
	res, _ := meshFixture()

	if _, err := e.Emit(res, RegionSet{}); err == nil {
		t.Error("mismatched fill regions should error")
	}

	regions := RegionSet{
		Fill:   make([]sdf.Region, len(res.Glyphs)),
		Stroke: make([]sdf.Region, 1),
	}
	if _, err := e.Emit(res, regions); err == nil {
		t.Error("mismatched stroke regions should error")
	}
}

func TestEmit_Empty(t *testing.T) {
	e := NewEmitter(DefaultEmitterConfig())
	mesh, err := e.Emit(&shaping.Result{}, RegionSet{})
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if mesh.QuadCount() != 0 || len(mesh.Indices) != 0 {
		t.Error("empty result should emit an empty mesh")
	}
}
