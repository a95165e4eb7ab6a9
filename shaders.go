package postfx

import (
	"image/color"

	"github.com/gogpu/postfx/gfx"
)

// copyShaderWGSL is the fullscreen blit used by CopyPass and by the
// final presentation step of the Composer.
const copyShaderWGSL = `
struct Uniforms {
    opacity: f32,
}

@group(0) @binding(0) var<uniform> u: Uniforms;
@group(0) @binding(1) var src: texture_2d<f32>;
@group(0) @binding(2) var srcSampler: sampler;

@fragment
fn fs_main(@location(0) uv: vec2<f32>) -> @location(0) vec4<f32> {
    let texel = textureSample(src, srcSampler, uv);
    return vec4<f32>(texel.rgb, texel.a * u.opacity);
}
`

// NewCopyShader returns a shader that samples its first input and
// scales alpha by the "opacity" uniform (default 1).
func NewCopyShader() *gfx.Shader {
	var sh *gfx.Shader
	sh = gfx.NewShader("copy", copyShaderWGSL, func(x, y int, inputs []gfx.Texture) color.RGBA {
		if len(inputs) == 0 {
			return color.RGBA{}
		}
		reader, ok := inputs[0].(gfx.PixelReader)
		if !ok {
			return color.RGBA{}
		}
		c := reader.RGBAAt(x, y)
		if op := sh.Uniform("opacity"); op != 1 {
			c.A = uint8(float32(c.A)*op + 0.5)
		}
		return c
	})
	sh.SetUniform("opacity", 1)
	return sh
}
