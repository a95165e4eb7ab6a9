package postfx

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/postfx/gfx"
	"github.com/gogpu/postfx/scene"
)

func newTestTarget(t *testing.T, ctx gfx.Context, label string) gfx.RenderTarget {
	t.Helper()
	rt, err := ctx.NewTarget(gfx.TargetDescriptor{
		Label:         label,
		Width:         64,
		Height:        48,
		DepthBuffer:   true,
		StencilBuffer: true,
	})
	if err != nil {
		t.Fatalf("NewTarget: %v", err)
	}
	return rt
}

func TestClearPassFillsColor(t *testing.T) {
	ctx := newTestContext(t)
	in := newTestTarget(t, ctx, "in")
	out := newTestTarget(t, ctx, "out")

	p := NewClearPass(color.RGBA{R: 9, G: 8, B: 7, A: 255})
	if err := p.Render(ctx, in, out, 0, false); err != nil {
		t.Fatalf("Render: %v", err)
	}
	got := in.ColorTexture(0).(gfx.PixelReader).RGBAAt(30, 30)
	if got.R != 9 || got.G != 8 || got.B != 7 {
		t.Errorf("pixel = %v, want clear color", got)
	}
	if p.NeedsSwap() {
		t.Error("clear pass must not swap")
	}
}

func TestCopyPassOpacity(t *testing.T) {
	ctx := newTestContext(t)
	in := newTestTarget(t, ctx, "in")
	out := newTestTarget(t, ctx, "out")

	if err := ctx.Clear(in, gfx.ClearOptions{Color: color.RGBA{R: 100, A: 200}, ClearColor: true}); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	p := NewCopyPass()
	p.SetOpacity(0.5)
	if err := p.Render(ctx, in, out, 0, false); err != nil {
		t.Fatalf("Render: %v", err)
	}
	got := out.ColorTexture(0).(gfx.PixelReader).RGBAAt(1, 1)
	if got.R != 100 {
		t.Errorf("R = %d, want color untouched", got.R)
	}
	if got.A != 100 {
		t.Errorf("A = %d, want alpha halved to 100", got.A)
	}
}

func TestShaderPassVariantCache(t *testing.T) {
	ctx := newTestContext(t)
	in := newTestTarget(t, ctx, "in")
	out := newTestTarget(t, ctx, "out")

	calls := 0
	sh := gfx.NewShader("tint", "", func(x, y int, inputs []gfx.Texture) color.RGBA {
		calls++
		return color.RGBA{R: 255, A: 255}
	})
	p := NewShaderPass(sh)
	p.Shader().SetDefine("MODE", "1")

	if err := p.Render(ctx, in, out, 0, false); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if calls != 64*48 {
		t.Errorf("fragment calls = %d, want one per pixel", calls)
	}

	// Same define set again: the cached variant is reused and the
	// shader is no longer dirty.
	p.Shader().SetDefine("MODE", "1")
	if p.Shader().Dirty() {
		t.Error("unchanged define dirtied the shader")
	}
	src, err := p.VariantSource()
	if err != nil {
		t.Fatalf("VariantSource: %v", err)
	}
	if src != p.Shader().PreprocessedSource() {
		t.Error("cached variant source diverged from the shader")
	}
}

func TestDepthPassCapturesPackedDepth(t *testing.T) {
	ctx := newTestContext(t)
	in := newTestTarget(t, ctx, "in")
	out := newTestTarget(t, ctx, "out")

	sprite := scene.NewSprite(image.Rect(10, 10, 20, 20), 0.25, color.RGBA{A: 255})
	st, cam := newTestScene(sprite)

	p := NewDepthPass(st, cam, 1)
	p.SetSize(64, 48)
	if err := p.Render(ctx, in, out, 0, false); err != nil {
		t.Fatalf("Render: %v", err)
	}

	tex := p.Texture()
	if tex == nil {
		t.Fatal("no depth texture after render")
	}
	got := tex.(gfx.PixelReader).RGBAAt(15, 15).R
	if want := gfx.PackDepth(0.25); got != want {
		t.Errorf("packed depth = %d, want %d", got, want)
	}
	if bg := tex.(gfx.PixelReader).RGBAAt(40, 40).R; bg != 0 {
		t.Errorf("background depth = %d, want 0 (cleared)", bg)
	}
}

func TestDepthPassScaledResolution(t *testing.T) {
	ctx := newTestContext(t)
	in := newTestTarget(t, ctx, "in")
	out := newTestTarget(t, ctx, "out")

	st, cam := newTestScene()
	p := NewDepthPass(st, cam, 0.5)
	p.SetSize(64, 48)
	if err := p.Render(ctx, in, out, 0, false); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got := p.Texture().Width(); got != 32 {
		t.Errorf("depth texture width = %d, want 32 at half scale", got)
	}
}

func TestMultiTargetPassRejectsSingleAttachmentContext(t *testing.T) {
	ctx := newTestContext(t, gfx.WithMaxColorAttachments(1))
	st, cam := newTestScene()

	p := NewMultiTargetPass(st, cam)
	p.SetSize(64, 48)
	err := p.Initialize(ctx, true, gputypes.TextureFormatRGBA8Unorm)
	if !errors.Is(err, ErrCapabilityUnsupported) {
		t.Errorf("Initialize = %v, want ErrCapabilityUnsupported", err)
	}
}

func TestMultiTargetPassRendersColorAndDepth(t *testing.T) {
	ctx := newTestContext(t)
	in := newTestTarget(t, ctx, "in")
	out := newTestTarget(t, ctx, "out")

	sprite := scene.NewSprite(image.Rect(10, 10, 20, 20), 0.25, color.RGBA{G: 150, A: 255})
	st, cam := newTestScene(sprite)

	p := NewMultiTargetPass(st, cam)
	p.SetSize(64, 48)
	if err := p.Initialize(ctx, true, gputypes.TextureFormatRGBA8Unorm); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if err := p.Render(ctx, in, out, 0, false); err != nil {
		t.Fatalf("Render: %v", err)
	}

	// Color reaches the ping-pong input.
	got := in.ColorTexture(0).(gfx.PixelReader).RGBAAt(15, 15)
	if got.G != 150 {
		t.Errorf("color pixel = %v, want sprite green blitted into input", got)
	}

	// The depth wrapper exposes the same packing convention DepthPass
	// uses.
	dt := p.DepthTexture()
	reader, ok := dt.(gfx.DepthReader)
	if !ok {
		t.Fatalf("depth texture %T is not depth-readable", dt)
	}
	if d := reader.DepthAt(15, 15); d < 0.24 || d > 0.26 {
		t.Errorf("depth = %v, want about 0.25", d)
	}
	if d := reader.DepthAt(40, 40); d > 0.01 {
		t.Errorf("background depth = %v, want 0 (cleared attachment)", d)
	}
}

func TestMaskPassStencilsBothBuffers(t *testing.T) {
	ctx := newTestContext(t)
	in := newTestTarget(t, ctx, "in")
	out := newTestTarget(t, ctx, "out")

	sprite := scene.NewSprite(image.Rect(0, 0, 32, 48), 0.5, color.RGBA{A: 255})
	st, cam := newTestScene(sprite)

	mask := NewMaskPass(st, cam)
	if err := mask.Render(ctx, in, out, 0, false); err != nil {
		t.Fatalf("Render: %v", err)
	}

	// A stencil-tested fullscreen draw on either buffer only touches the
	// masked half.
	copyPass := NewCopyPass()
	if err := ctx.Clear(in, gfx.ClearOptions{Color: color.RGBA{R: 50, A: 255}, ClearColor: true}); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if err := copyPass.Render(ctx, in, out, 0, true); err != nil {
		t.Fatalf("copy: %v", err)
	}
	reader := out.ColorTexture(0).(gfx.PixelReader)
	if got := reader.RGBAAt(10, 10); got.R != 50 {
		t.Errorf("masked-in pixel = %v, want copied", got)
	}
	if got := reader.RGBAAt(50, 10); got.R != 0 {
		t.Errorf("masked-out pixel = %v, want untouched", got)
	}

	clearMask := NewClearMaskPass()
	if err := clearMask.Render(ctx, in, out, 0, true); err != nil {
		t.Fatalf("clear mask: %v", err)
	}
	if err := copyPass.Render(ctx, in, out, 0, false); err != nil {
		t.Fatalf("copy after clear: %v", err)
	}
	if got := reader.RGBAAt(50, 10); got.R != 50 {
		t.Errorf("pixel after mask cleared = %v, want copied everywhere", got)
	}
}

func TestClearMaskPassResetsDepth(t *testing.T) {
	ctx := newTestContext(t)
	in := newTestTarget(t, ctx, "in")
	out := newTestTarget(t, ctx, "out")

	sprite := scene.NewSprite(image.Rect(0, 0, 32, 48), 0.5, color.RGBA{A: 255})
	st, cam := newTestScene(sprite)

	if err := NewMaskPass(st, cam).Render(ctx, in, out, 0, false); err != nil {
		t.Fatalf("mask: %v", err)
	}
	if d := in.DepthTexture().(gfx.DepthReader).DepthAt(10, 10); d != 0.5 {
		t.Fatalf("depth after mask = %v, want 0.5 written by the mask geometry", d)
	}

	if err := NewClearMaskPass().Render(ctx, in, out, 0, true); err != nil {
		t.Fatalf("clear mask: %v", err)
	}
	for _, rt := range []gfx.RenderTarget{in, out} {
		if d := rt.DepthTexture().(gfx.DepthReader).DepthAt(10, 10); d != 1 {
			t.Errorf("depth after clear = %v, want reset to far", d)
		}
	}
}

func TestScenePassSetsCameraAspect(t *testing.T) {
	st, cam := newTestScene()
	p := NewScenePass(st, cam)
	p.SetSize(200, 100)
	if got := cam.Aspect(); got != 2 {
		t.Errorf("aspect = %v, want 2", got)
	}
}
