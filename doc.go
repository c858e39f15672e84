// Package textmesh turns rich-text markup into textured triangle meshes
// backed by a signed distance field glyph atlas.
//
// The pipeline has four stages, each usable on its own:
//
//   - rich parses markup like "Score: {red:**{score}**}" into styled runs
//   - shaping lays the runs out into positioned glyphs via HarfBuzz
//   - sdf rasterizes glyph outlines into a distance field atlas
//   - textmesh resolves placeholders and emits one quad per glyph
//
// The Engine ties the stages together. A Text object owns a parsed
// template plus a placeholder source; Update re-resolves the source and
// rebuilds the mesh only when a value actually changed:
//
//	lib := shaping.NewFontLibrary()
//	fontID, _ := lib.Add("sans", fontBytes)
//
//	engine, _ := textmesh.NewEngine(textmesh.EngineConfig{Library: lib})
//	text, _ := engine.NewText("Score: {score}", textmesh.MapSource{"score": "0"}, shaping.DefaultOptions())
//
//	for frame := range frames {
//	    if changed, err := text.Update(); err != nil {
//	        return err
//	    } else if changed {
//	        upload(text.Mesh(), engine.Atlas())
//	    }
//	}
//
// Atlas pages are R8 textures; the mesh carries atlas UVs in one channel
// and configurable per-glyph metadata in a second channel for shader
// effects.
package textmesh
