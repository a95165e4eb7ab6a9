package postfx

import (
	"image/color"

	"github.com/gogpu/postfx/gfx"
)

// ClearPass wipes the current input buffer at the top of a frame.
// It draws in place and does not swap.
type ClearPass struct {
	PassBase

	// Color is the clear color. nil clears to transparent black.
	Color color.Color

	// ClearDepth and ClearStencil extend the wipe to the other planes.
	ClearDepth   bool
	ClearStencil bool
}

// NewClearPass creates a pass that clears the color plane.
func NewClearPass(clr color.Color) *ClearPass {
	return &ClearPass{
		PassBase: NewPassBase("clear", false, false),
		Color:    clr,
	}
}

// Render clears the selected planes of input.
func (p *ClearPass) Render(ctx gfx.Context, input, output gfx.RenderTarget, dt float64, stencilActive bool) error {
	return ctx.Clear(input, gfx.ClearOptions{
		Color:        p.Color,
		ClearColor:   true,
		ClearDepth:   p.ClearDepth,
		ClearStencil: p.ClearStencil,
	})
}

var _ Pass = (*ClearPass)(nil)
