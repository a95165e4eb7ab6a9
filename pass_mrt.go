package postfx

import (
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/postfx/gfx"
	"github.com/gogpu/postfx/scene"
)

// MultiTargetPass renders a scene's color and packed depth in a single
// pass through a two-attachment target, then blits the color into the
// current input buffer. On hardware with at least two color attachments
// the Composer substitutes it for a plain ScenePass, saving the
// separate depth prepass.
//
// Initialize fails with ErrCapabilityUnsupported on single-attachment
// contexts; the Composer then keeps the plain pass.
type MultiTargetPass struct {
	PassBase

	scene  scene.Scene
	camera scene.Camera

	target gfx.RenderTarget
}

// NewMultiTargetPass creates a combined color+depth pass for s
// through cam.
func NewMultiTargetPass(s scene.Scene, cam scene.Camera) *MultiTargetPass {
	return &MultiTargetPass{
		PassBase: NewPassBase("scene-mrt", false, false),
		scene:    s,
		camera:   cam,
	}
}

// Initialize allocates the two-attachment target. Classification alone
// is not trusted: the allocation must actually succeed.
func (p *MultiTargetPass) Initialize(ctx gfx.Context, alpha bool, format gputypes.TextureFormat) error {
	if !ClassifySupport(ctx.Capabilities()).MultiTarget {
		return fmt.Errorf("%w: context reports %d color attachments", ErrCapabilityUnsupported,
			ctx.Capabilities().MaxColorAttachments)
	}
	w, h := ctx.DrawingBufferSize()
	t, err := ctx.NewTarget(gfx.TargetDescriptor{
		Label:            "scene-mrt",
		Width:            w,
		Height:           h,
		Format:           format,
		ColorAttachments: 2,
		DepthBuffer:      true,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCapabilityUnsupported, err)
	}
	p.target = t
	return nil
}

// SetScene rebinds the pass to another scene.
func (p *MultiTargetPass) SetScene(s scene.Scene) { p.scene = s }

// SetCamera rebinds the pass to another camera.
func (p *MultiTargetPass) SetCamera(c scene.Camera) { p.camera = c }

// SetSize resizes the private target.
func (p *MultiTargetPass) SetSize(width, height int) {
	p.PassBase.SetSize(width, height)
	if p.camera != nil && height > 0 {
		p.camera.SetAspect(float64(width) / float64(height))
	}
	if p.target != nil {
		p.target.Resize(width, height)
	}
}

// DepthTexture returns the pass's packed-depth attachment wrapped as a
// depth-readable texture, or nil before Initialize.
func (p *MultiTargetPass) DepthTexture() gfx.Texture {
	if p.target == nil {
		return nil
	}
	return &packedDepthTexture{tex: p.target.ColorTexture(1)}
}

// Render draws color and depth together, then blits the color into
// input.
func (p *MultiTargetPass) Render(ctx gfx.Context, input, output gfx.RenderTarget, dt float64, stencilActive bool) error {
	if p.target == nil {
		return ErrNotInitialized
	}
	if err := ctx.Clear(p.target, gfx.ClearOptions{ClearColor: true, ClearDepth: true}); err != nil {
		return err
	}
	if err := ctx.RenderScene(p.scene, p.camera, p.target, gfx.SceneOptions{DepthToAttachment: true}); err != nil {
		return err
	}
	return ctx.Blit(p.target.ColorTexture(0), input)
}

// Dispose releases the private target.
func (p *MultiTargetPass) Dispose() {
	if p.target != nil {
		p.target.Dispose()
		p.target = nil
	}
}

// packedDepthTexture adapts a grayscale packed-depth color attachment to
// the DepthReader interface.
type packedDepthTexture struct {
	tex gfx.Texture
}

func (t *packedDepthTexture) Width() int { return t.tex.Width() }
func (t *packedDepthTexture) Height() int { return t.tex.Height() }

func (t *packedDepthTexture) Format() gputypes.TextureFormat { return t.tex.Format() }

// DepthAt unpacks the stored grayscale back to normalized depth.
func (t *packedDepthTexture) DepthAt(x, y int) float32 {
	reader, ok := t.tex.(gfx.PixelReader)
	if !ok {
		return 1
	}
	return gfx.UnpackDepth(reader.RGBAAt(x, y).R)
}

var (
	_ Pass            = (*MultiTargetPass)(nil)
	_ sceneHolder     = (*MultiTargetPass)(nil)
	_ cameraHolder    = (*MultiTargetPass)(nil)
	_ gfx.Texture     = (*packedDepthTexture)(nil)
	_ gfx.DepthReader = (*packedDepthTexture)(nil)
)
