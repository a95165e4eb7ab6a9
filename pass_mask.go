package postfx

import (
	"github.com/gogpu/postfx/gfx"
	"github.com/gogpu/postfx/scene"
)

// MaskPass writes a scene's footprint into the stencil plane of BOTH
// ping-pong buffers, so the mask survives any number of swaps. The
// Composer marks the stencil active after this pass; subsequent
// fullscreen passes only touch pixels inside the mask until a
// ClearMaskPass ends the scope. Does not swap.
type MaskPass struct {
	PassBase

	scene  scene.Scene
	camera scene.Camera
}

// NewMaskPass creates a mask pass for s through cam.
func NewMaskPass(s scene.Scene, cam scene.Camera) *MaskPass {
	return &MaskPass{
		PassBase: NewPassBase("mask", false, false),
		scene:    s,
		camera:   cam,
	}
}

// SetScene rebinds the pass to another scene.
func (p *MaskPass) SetScene(s scene.Scene) { p.scene = s }

// SetCamera rebinds the pass to another camera.
func (p *MaskPass) SetCamera(c scene.Camera) { p.camera = c }

// Render stencils the scene footprint into both buffers.
func (p *MaskPass) Render(ctx gfx.Context, input, output gfx.RenderTarget, dt float64, stencilActive bool) error {
	for _, rt := range []gfx.RenderTarget{input, output} {
		if err := ctx.Clear(rt, gfx.ClearOptions{ClearStencil: true}); err != nil {
			return err
		}
		if err := ctx.RenderScene(p.scene, p.camera, rt, gfx.SceneOptions{StencilWrite: true}); err != nil {
			return err
		}
	}
	return nil
}

// ClearMaskPass ends a MaskPass scope: it clears the stencil and depth
// planes of both buffers and tells the Composer to stop stencil-testing
// fullscreen draws. The depth clear keeps the mask geometry's depth
// writes from leaking into whatever renders next. Does not swap.
type ClearMaskPass struct {
	PassBase
}

// NewClearMaskPass creates a mask-clearing pass.
func NewClearMaskPass() *ClearMaskPass {
	return &ClearMaskPass{PassBase: NewPassBase("clear-mask", false, false)}
}

// Render wipes the stencil and depth planes of both buffers.
func (p *ClearMaskPass) Render(ctx gfx.Context, input, output gfx.RenderTarget, dt float64, stencilActive bool) error {
	for _, rt := range []gfx.RenderTarget{input, output} {
		if err := ctx.Clear(rt, gfx.ClearOptions{ClearStencil: true, ClearDepth: true}); err != nil {
			return err
		}
	}
	return nil
}

var (
	_ Pass         = (*MaskPass)(nil)
	_ Pass         = (*ClearMaskPass)(nil)
	_ sceneHolder  = (*MaskPass)(nil)
	_ cameraHolder = (*MaskPass)(nil)
)
