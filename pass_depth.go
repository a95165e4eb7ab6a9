package postfx

import (
	"fmt"

	"github.com/gogpu/postfx/gfx"
	"github.com/gogpu/postfx/scene"
)

// DepthPass renders a scene's depth into a private color target, packing
// normalized depth into grayscale. It bypasses the ping-pong pair and
// does not swap; consumers read Texture().
//
// Its Resolution decouples the depth buffer size from the composer
// buffers, so effects can sample depth at reduced resolution.
type DepthPass struct {
	PassBase

	scene  scene.Scene
	camera scene.Camera

	resolution *Resolution
	target     gfx.RenderTarget
}

// NewDepthPass creates a depth pass for s through cam at the given
// resolution scale.
func NewDepthPass(s scene.Scene, cam scene.Camera, scale float64) *DepthPass {
	return &DepthPass{
		PassBase:   NewPassBase("depth", false, false),
		scene:      s,
		camera:     cam,
		resolution: NewResolution(1, 1, scale),
	}
}

// Resolution returns the pass's private resolution.
func (p *DepthPass) Resolution() *Resolution { return p.resolution }

// Texture returns the packed-depth texture, or nil before the first
// render.
func (p *DepthPass) Texture() gfx.Texture {
	if p.target == nil {
		return nil
	}
	return p.target.ColorTexture(0)
}

// SetScene rebinds the pass to another scene.
func (p *DepthPass) SetScene(s scene.Scene) { p.scene = s }

// SetCamera rebinds the pass to another camera.
func (p *DepthPass) SetCamera(c scene.Camera) { p.camera = c }

// SetSize resizes the private target through the pass resolution.
func (p *DepthPass) SetSize(width, height int) {
	p.PassBase.SetSize(width, height)
	p.resolution.SetBaseSize(width, height)
	if p.target != nil {
		p.target.Resize(p.resolution.Width(), p.resolution.Height())
	}
}

// Render draws the scene depth-only into the private target.
func (p *DepthPass) Render(ctx gfx.Context, input, output gfx.RenderTarget, dt float64, stencilActive bool) error {
	if p.target == nil {
		t, err := ctx.NewTarget(gfx.TargetDescriptor{
			Label:       "depth-pass",
			Width:       p.resolution.Width(),
			Height:      p.resolution.Height(),
			DepthBuffer: true,
		})
		if err != nil {
			return fmt.Errorf("depth pass target: %w", err)
		}
		p.target = t
	}
	if err := ctx.Clear(p.target, gfx.ClearOptions{ClearColor: true, ClearDepth: true}); err != nil {
		return err
	}
	return ctx.RenderScene(p.scene, p.camera, p.target, gfx.SceneOptions{DepthOnly: true})
}

// Dispose releases the private target.
func (p *DepthPass) Dispose() {
	if p.target != nil {
		p.target.Dispose()
		p.target = nil
	}
}

var (
	_ Pass         = (*DepthPass)(nil)
	_ sceneHolder  = (*DepthPass)(nil)
	_ cameraHolder = (*DepthPass)(nil)
)
