// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package outline

import (
	"image"
	"image/color"
	"strings"
	"testing"
	"time"

	"github.com/gogpu/postfx/gfx"
	"github.com/gogpu/postfx/scene"
)

type effectFixture struct {
	ctx   *gfx.SoftwareContext
	stage *scene.Stage
	cam   *scene.SimpleCamera
	m     *Manager
	clock *testClock
	in    gfx.RenderTarget
	out   gfx.RenderTarget
}

func newEffectFixture(t *testing.T, sprites ...*scene.Sprite) *effectFixture {
	t.Helper()
	ctx, err := gfx.NewSoftwareContext(64, 48)
	if err != nil {
		t.Fatalf("NewSoftwareContext: %v", err)
	}
	st := scene.NewStage()
	for _, s := range sprites {
		st.Add(s)
	}
	cam := scene.NewCamera()
	clock := &testClock{now: time.Unix(1000, 0)}
	m := NewManager(st, cam, WithClock(clock.Now))

	newTarget := func(label string) gfx.RenderTarget {
		rt, err := ctx.NewTarget(gfx.TargetDescriptor{Label: label, Width: 64, Height: 48})
		if err != nil {
			t.Fatalf("NewTarget: %v", err)
		}
		return rt
	}
	return &effectFixture{
		ctx:   ctx,
		stage: st,
		cam:   cam,
		m:     m,
		clock: clock,
		in:    newTarget("in"),
		out:   newTarget("out"),
	}
}

func (f *effectFixture) newEffect(t *testing.T, layer int) *Effect {
	t.Helper()
	e, err := NewEffect(f.m, layer)
	if err != nil {
		t.Fatalf("NewEffect: %v", err)
	}
	e.SetSize(64, 48)
	return e
}

func edgeAlphaAt(t *testing.T, e *Effect, x, y int) uint8 {
	t.Helper()
	tex := e.EdgeTexture()
	if tex == nil {
		t.Fatal("edge texture not rendered")
	}
	return tex.(gfx.PixelReader).RGBAAt(x, y).A
}

func TestEffectOutlinesSelectedObject(t *testing.T) {
	sprite := scene.NewSprite(image.Rect(8, 8, 16, 16), 0.5, color.RGBA{R: 200, A: 255})
	f := newEffectFixture(t, sprite)
	defer f.m.Dispose()

	e := f.newEffect(t, 11)
	defer e.Dispose()
	e.Selection().Add(sprite)

	if err := e.Render(f.ctx, f.in, f.out, 0.016, false); err != nil {
		t.Fatalf("Render: %v", err)
	}

	if got := edgeAlphaAt(t, e, 8, 12); got == 0 {
		t.Error("no edge at the object's left boundary")
	}
	if got := edgeAlphaAt(t, e, 12, 12); got != 0 {
		t.Error("edge inside the object's interior")
	}
	if got := edgeAlphaAt(t, e, 40, 12); got != 0 {
		t.Error("edge far from the object")
	}
}

func TestEffectDisjointConsumersDoNotContaminate(t *testing.T) {
	a := scene.NewSprite(image.Rect(8, 8, 16, 16), 0.5, color.RGBA{A: 255})
	b := scene.NewSprite(image.Rect(40, 8, 48, 16), 0.5, color.RGBA{A: 255})
	f := newEffectFixture(t, a, b)
	defer f.m.Dispose()

	ea := f.newEffect(t, 11)
	eb := f.newEffect(t, 12)
	defer ea.Dispose()
	defer eb.Dispose()
	ea.Selection().Add(a)
	eb.Selection().Add(b)

	if err := ea.Render(f.ctx, f.in, f.out, 0.016, false); err != nil {
		t.Fatalf("Render A: %v", err)
	}
	if err := eb.Render(f.ctx, f.out, f.in, 0.016, false); err != nil {
		t.Fatalf("Render B: %v", err)
	}

	if edgeAlphaAt(t, ea, 8, 12) == 0 {
		t.Error("consumer A missing its own object's edge")
	}
	if edgeAlphaAt(t, ea, 40, 12) != 0 {
		t.Error("consumer B's object bled into consumer A's edges")
	}
	if edgeAlphaAt(t, eb, 40, 12) == 0 {
		t.Error("consumer B missing its own object's edge")
	}
	if edgeAlphaAt(t, eb, 8, 12) != 0 {
		t.Error("consumer A's object bled into consumer B's edges")
	}

	// The expensive depth render ran once for both consumers.
	if got := f.m.DepthRenders(); got != 1 {
		t.Errorf("depth renders = %d, want 1", got)
	}
}

func TestEffectSharedObjectInBothLayers(t *testing.T) {
	s := scene.NewSprite(image.Rect(20, 16, 32, 28), 0.5, color.RGBA{A: 255})
	f := newEffectFixture(t, s)
	defer f.m.Dispose()

	ea := f.newEffect(t, 11)
	eb := f.newEffect(t, 12)
	defer ea.Dispose()
	defer eb.Dispose()
	ea.Selection().Add(s)
	eb.Selection().Add(s)

	if err := ea.Render(f.ctx, f.in, f.out, 0.016, false); err != nil {
		t.Fatalf("Render A: %v", err)
	}
	if err := eb.Render(f.ctx, f.out, f.in, 0.016, false); err != nil {
		t.Fatalf("Render B: %v", err)
	}

	if edgeAlphaAt(t, ea, 20, 22) == 0 {
		t.Error("consumer A missing the shared object's edge")
	}
	if edgeAlphaAt(t, eb, 20, 22) == 0 {
		t.Error("consumer B missing the shared object's edge")
	}
}

func TestEffectHiddenEdgesUseHiddenColor(t *testing.T) {
	// A blocker in front of the object's left half, on the base layer
	// only. Edges behind it classify as hidden.
	target := scene.NewSprite(image.Rect(8, 8, 16, 16), 0.5, color.RGBA{A: 255})
	blocker := scene.NewSprite(image.Rect(0, 0, 12, 48), 0.2, color.RGBA{A: 255})
	f := newEffectFixture(t, target, blocker)
	defer f.m.Dispose()

	e := f.newEffect(t, 11)
	defer e.Dispose()
	e.SetEdgeColor(color.RGBA{R: 255, A: 255})
	e.SetHiddenEdgeColor(color.RGBA{B: 255, A: 255})
	e.Selection().Add(target)

	if err := e.Render(f.ctx, f.in, f.out, 0.016, false); err != nil {
		t.Fatalf("Render: %v", err)
	}

	tex := e.EdgeTexture().(gfx.PixelReader)
	occluded := tex.RGBAAt(8, 12)
	if occluded.A == 0 || occluded.B != 255 || occluded.R != 0 {
		t.Errorf("occluded edge = %v, want hidden color", occluded)
	}
	visible := tex.RGBAAt(16, 12)
	if visible.A == 0 || visible.R != 255 || visible.B != 0 {
		t.Errorf("visible edge = %v, want edge color", visible)
	}
}

func TestEffectCompositesOverInput(t *testing.T) {
	sprite := scene.NewSprite(image.Rect(8, 8, 16, 16), 0.5, color.RGBA{A: 255})
	f := newEffectFixture(t, sprite)
	defer f.m.Dispose()

	e := f.newEffect(t, 11)
	defer e.Dispose()
	e.SetEdgeColor(color.RGBA{G: 255, A: 255})
	e.Selection().Add(sprite)

	// Fill the input so the copy path is observable.
	if err := f.ctx.Clear(f.in, gfx.ClearOptions{Color: color.RGBA{R: 10, G: 20, B: 30, A: 255}, ClearColor: true}); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if err := e.Render(f.ctx, f.in, f.out, 0.016, false); err != nil {
		t.Fatalf("Render: %v", err)
	}

	reader := f.out.ColorTexture(0).(gfx.PixelReader)
	if got := reader.RGBAAt(40, 40); got.R != 10 || got.G != 20 || got.B != 30 {
		t.Errorf("background pixel = %v, want input copied through", got)
	}
	if got := reader.RGBAAt(8, 12); got.G != 255 {
		t.Errorf("edge pixel = %v, want green outline composited", got)
	}
}

func TestEffectEmptySelectionActsAsCopy(t *testing.T) {
	f := newEffectFixture(t)
	defer f.m.Dispose()

	e := f.newEffect(t, 11)
	defer e.Dispose()

	if err := f.ctx.Clear(f.in, gfx.ClearOptions{Color: color.RGBA{R: 77, A: 255}, ClearColor: true}); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if err := e.Render(f.ctx, f.in, f.out, 0.016, false); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got := f.m.DepthRenders(); got != 0 {
		t.Errorf("depth renders = %d, want 0 for an empty selection", got)
	}
	reader := f.out.ColorTexture(0).(gfx.PixelReader)
	if got := reader.RGBAAt(5, 5); got.R != 77 {
		t.Errorf("pixel = %v, want plain copy of the input", got)
	}
}

func TestEffectBlurSpreadsEdges(t *testing.T) {
	sprite := scene.NewSprite(image.Rect(16, 16, 32, 32), 0.5, color.RGBA{A: 255})
	f := newEffectFixture(t, sprite)
	defer f.m.Dispose()

	e := f.newEffect(t, 11)
	defer e.Dispose()
	e.Selection().Add(sprite)
	e.SetBlurEnabled(true)
	e.SetBlurRadius(2)

	if err := e.Render(f.ctx, f.in, f.out, 0.016, false); err != nil {
		t.Fatalf("Render: %v", err)
	}

	// Two pixels left of the sharp boundary would be zero without blur.
	if got := edgeAlphaAt(t, e, 14, 24); got == 0 {
		t.Error("blur did not spread the edge")
	}
}

func TestEffectClearSelectionForcesFinalUpdate(t *testing.T) {
	sprite := scene.NewSprite(image.Rect(8, 8, 16, 16), 0.5, color.RGBA{A: 255})
	f := newEffectFixture(t, sprite)
	defer f.m.Dispose()

	e := f.newEffect(t, 11)
	defer e.Dispose()
	e.Selection().Add(sprite)

	if err := e.Render(f.ctx, f.in, f.out, 0.016, false); err != nil {
		t.Fatalf("Render: %v", err)
	}
	masks := f.m.MaskRenders()

	e.ClearSelection()
	f.clock.Step(20 * time.Millisecond)
	if err := e.Render(f.ctx, f.in, f.out, 0.016, false); err != nil {
		t.Fatalf("Render after clear: %v", err)
	}
	if got := f.m.MaskRenders(); got != masks+1 {
		t.Errorf("mask renders = %d, want %d: the stale mask needs one clearing render", got, masks+1)
	}

	// With the flag consumed and nothing selected, further frames are
	// no-ops.
	f.clock.Step(20 * time.Millisecond)
	if err := e.Render(f.ctx, f.in, f.out, 0.016, false); err != nil {
		t.Fatalf("Render idle: %v", err)
	}
	if got := f.m.MaskRenders(); got != masks+1 {
		t.Errorf("mask renders = %d, want unchanged %d", got, masks+1)
	}
}

func TestEffectBlurShaderCarriesKernel(t *testing.T) {
	f := newEffectFixture(t)
	defer f.m.Dispose()

	e := f.newEffect(t, 11)
	defer e.Dispose()
	e.SetBlurRadius(3)

	if got, want := len(e.kernel), 7; got != want {
		t.Fatalf("kernel taps = %d, want %d", got, want)
	}
	for _, sh := range []*gfx.Shader{e.blurXShader, e.blurYShader} {
		kernel, ok := sh.Define("KERNEL")
		if !ok {
			t.Fatalf("%s: no KERNEL define", sh.Name())
		}
		if want := "array<f32, 7>("; !strings.HasPrefix(kernel, want) {
			t.Errorf("%s: kernel = %q, want a %s literal", sh.Name(), kernel, want)
		}
		if radius, _ := sh.Define("RADIUS"); radius != "3" {
			t.Errorf("%s: radius define = %q, want 3", sh.Name(), radius)
		}
		if src := sh.PreprocessedSource(); !strings.Contains(src, "const KERNEL = array<f32, 7>(") {
			t.Errorf("%s: preprocessed source lacks the kernel constant", sh.Name())
		}
	}
}
