package postfx

import (
	"github.com/gogpu/postfx/cache"
	"github.com/gogpu/postfx/gfx"
)

// ShaderPass runs an arbitrary fullscreen shader over the input buffer
// and writes into the output buffer. It swaps.
//
// The pass keeps preprocessed variants of its shader in an LRU so
// toggling a define back and forth does not redo the preprocessing work
// every frame.
type ShaderPass struct {
	PassBase

	shader   *gfx.Shader
	variants *cache.LRU[string, string]

	// ExtraInputs are bound after the ping-pong input texture.
	ExtraInputs []gfx.Texture

	// Blend selects how the shader output combines with what is already
	// in the output buffer. Default is a plain overwrite.
	Blend gfx.BlendMode
}

// NewShaderPass creates a pass around sh.
func NewShaderPass(sh *gfx.Shader) *ShaderPass {
	return &ShaderPass{
		PassBase: NewPassBase("shader:"+sh.Name(), true, false),
		shader:   sh,
		variants: cache.New[string, string](cache.DefaultCapacity),
	}
}

// Shader returns the wrapped shader for uniform and define updates.
func (p *ShaderPass) Shader() *gfx.Shader { return p.shader }

// VariantSource returns the preprocessed source for the shader's current
// define set, computing it at most once per variant.
func (p *ShaderPass) VariantSource() (string, error) {
	return p.variants.GetOrCreate(p.shader.VariantKey(), func() (string, error) {
		return p.shader.PreprocessedSource(), nil
	})
}

// Render evaluates the shader over output.
func (p *ShaderPass) Render(ctx gfx.Context, input, output gfx.RenderTarget, dt float64, stencilActive bool) error {
	if p.shader.Dirty() {
		// Warm the variant cache so backends can fetch the source
		// without preprocessing on the draw path.
		if _, err := p.VariantSource(); err != nil {
			return err
		}
	}
	inputs := make([]gfx.Texture, 0, 1+len(p.ExtraInputs))
	inputs = append(inputs, input.ColorTexture(0))
	inputs = append(inputs, p.ExtraInputs...)
	return ctx.DrawFullscreen(p.shader, inputs, output, gfx.DrawOptions{
		Blend:       p.Blend,
		StencilTest: stencilActive,
	})
}

var _ Pass = (*ShaderPass)(nil)
