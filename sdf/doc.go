// Package sdf provides single-channel signed distance field generation
// and atlas packing for scalable text rendering on GPU.
//
// An SDF encodes, per texel, the distance to the nearest glyph edge:
// 0.5 is exactly on the edge, values above 0.5 are inside the glyph and
// values below are outside. Sampling the field with bilinear filtering
// and thresholding at 0.5 yields crisp antialiased glyphs at arbitrary
// scale from a single rasterization; widening the threshold band gives
// outlines, glow and soft shadows for free.
//
// # Usage
//
//	atlas, err := sdf.NewAtlas(sdf.DefaultAtlasConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	key := sdf.AtlasKey{FontID: fontID, GID: gid, Size: 32}
//	region, err := atlas.Get(key, outline)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// region.U0..V1 are the texture coordinates of the glyph.
//	// atlas.Page(region.Page).Pix is R8 data for GPU upload.
//
// # WGSL Shader Example
//
//	@fragment
//	fn fs_main(@location(0) uv: vec2<f32>) -> @location(0) vec4<f32> {
//	    let d = textureSample(sdf_tex, samp, uv).r - 0.5;
//	    let alpha = clamp(d / fwidth(d) + 0.5, 0.0, 1.0);
//	    return vec4<f32>(color.rgb, color.a * alpha);
//	}
//
// # References
//
// - Valve, "Improved Alpha-Tested Magnification for Vector Textures"
package sdf
