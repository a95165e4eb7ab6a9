package postfx

import (
	"github.com/gogpu/postfx/gfx"
)

// CopyPass replicates the input buffer into the output buffer through
// the built-in copy shader. It swaps, so downstream passes read the
// copy. When a mask is active the copy is confined to the stencil.
type CopyPass struct {
	PassBase

	shader *gfx.Shader
}

// NewCopyPass creates a copy pass with opacity 1.
func NewCopyPass() *CopyPass {
	return &CopyPass{
		PassBase: NewPassBase("copy", true, false),
		shader:   NewCopyShader(),
	}
}

// SetOpacity scales the copied alpha. 1 is an exact copy.
func (p *CopyPass) SetOpacity(opacity float32) {
	p.shader.SetUniform("opacity", opacity)
}

// Render draws input into output.
func (p *CopyPass) Render(ctx gfx.Context, input, output gfx.RenderTarget, dt float64, stencilActive bool) error {
	return ctx.DrawFullscreen(p.shader, []gfx.Texture{input.ColorTexture(0)}, output, gfx.DrawOptions{
		StencilTest: stencilActive,
	})
}

var _ Pass = (*CopyPass)(nil)
