package postfx

import (
	"github.com/gogpu/postfx/gfx"
	"github.com/gogpu/postfx/scene"
)

// ScenePass rasterizes a scene into the current input buffer. It does
// not swap: the scene lands in the same buffer later passes read.
type ScenePass struct {
	PassBase

	scene  scene.Scene
	camera scene.Camera

	// ClearBeforeRender wipes the buffer's color and depth planes before
	// drawing. The first scene pass of a chain usually wants this.
	ClearBeforeRender bool
}

// NewScenePass creates a pass rendering s through cam.
func NewScenePass(s scene.Scene, cam scene.Camera) *ScenePass {
	return &ScenePass{
		PassBase:          NewPassBase("scene", false, false),
		scene:             s,
		camera:            cam,
		ClearBeforeRender: true,
	}
}

// Scene returns the bound scene.
func (p *ScenePass) Scene() scene.Scene { return p.scene }

// SetScene rebinds the pass to another scene.
func (p *ScenePass) SetScene(s scene.Scene) { p.scene = s }

// Camera returns the bound camera.
func (p *ScenePass) Camera() scene.Camera { return p.camera }

// SetCamera rebinds the pass to another camera.
func (p *ScenePass) SetCamera(c scene.Camera) { p.camera = c }

// SetSize forwards the aspect ratio to the camera.
func (p *ScenePass) SetSize(width, height int) {
	p.PassBase.SetSize(width, height)
	if p.camera != nil && height > 0 {
		p.camera.SetAspect(float64(width) / float64(height))
	}
}

// Render draws the scene into input.
func (p *ScenePass) Render(ctx gfx.Context, input, output gfx.RenderTarget, dt float64, stencilActive bool) error {
	if p.ClearBeforeRender {
		if err := ctx.Clear(input, gfx.ClearOptions{ClearColor: true, ClearDepth: true}); err != nil {
			return err
		}
	}
	return ctx.RenderScene(p.scene, p.camera, input, gfx.SceneOptions{})
}

var (
	_ Pass         = (*ScenePass)(nil)
	_ sceneHolder  = (*ScenePass)(nil)
	_ cameraHolder = (*ScenePass)(nil)
)
