// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package outline

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/gogpu/postfx"
	"github.com/gogpu/postfx/gfx"
	"github.com/gogpu/postfx/scene"
)

const edgeShaderWGSL = `
struct Params {
    thickness: f32,
    depth_bias: f32,
}

@group(0) @binding(0) var<uniform> params: Params;
@group(0) @binding(1) var maskTex: texture_2d<f32>;
@group(0) @binding(2) var maskDepth: texture_depth_2d;
@group(0) @binding(3) var sceneDepth: texture_depth_2d;
@group(0) @binding(4) var samp: sampler;

@fragment
fn fs_main(@location(0) uv: vec2<f32>) -> @location(0) vec4<f32> {
    let px = vec2<f32>(params.thickness) / vec2<f32>(textureDimensions(maskTex));
    let l = textureSample(maskTex, samp, uv - vec2<f32>(px.x, 0.0)).r;
    let r = textureSample(maskTex, samp, uv + vec2<f32>(px.x, 0.0)).r;
    let u = textureSample(maskTex, samp, uv - vec2<f32>(0.0, px.y)).r;
    let d = textureSample(maskTex, samp, uv + vec2<f32>(0.0, px.y)).r;
    let edge = clamp(abs(l - r) + abs(u - d), 0.0, 1.0);
    let occluded = textureSample(sceneDepth, samp, uv) + params.depth_bias
        < textureSample(maskDepth, samp, uv);
    let hidden = select(0.0, 1.0, occluded);
    return vec4<f32>(EDGE_COLOR.rgb * (1.0 - hidden) + HIDDEN_COLOR.rgb * hidden, edge);
}
`

const blurShaderWGSL = `
struct Params {
    direction: vec2<f32>,
}

@group(0) @binding(0) var<uniform> params: Params;
@group(0) @binding(1) var src: texture_2d<f32>;
@group(0) @binding(2) var samp: sampler;

@fragment
fn fs_main(@location(0) uv: vec2<f32>) -> @location(0) vec4<f32> {
    let px = params.direction / vec2<f32>(textureDimensions(src));
    var acc = vec4<f32>(0.0);
    for (var i = -RADIUS; i <= RADIUS; i++) {
        acc += textureSample(src, samp, uv + f32(i) * px) * KERNEL[i + RADIUS];
    }
    return acc;
}
`

const compositeShaderWGSL = `
@group(0) @binding(0) var base: texture_2d<f32>;
@group(0) @binding(1) var edges: texture_2d<f32>;
@group(0) @binding(2) var samp: sampler;

@fragment
fn fs_main(@location(0) uv: vec2<f32>) -> @location(0) vec4<f32> {
    let b = textureSample(base, samp, uv);
    let e = textureSample(edges, samp, uv);
    let a = e.a * STRENGTH;
    return vec4<f32>(e.rgb * a + b.rgb * (1.0 - a), max(b.a, a));
}
`

// depthBias keeps z-fighting between the mask depth and the scene depth
// from flickering edges between visible and hidden.
const depthBias = 0.001

// Effect draws colored silhouette edges around one layer's selected
// objects. It is a composer pass: add it to the chain after the scene
// pass, give it objects through Selection, and it composites outlines
// over the frame.
type Effect struct {
	postfx.PassBase

	manager *Manager
	handle  *ConsumerHandle

	edgeColor   color.RGBA
	hiddenColor color.RGBA
	thickness   int
	strength    float32
	blurEnabled bool
	blurRadius  int

	kernel []float32

	edgeShader      *gfx.Shader
	blurXShader     *gfx.Shader
	blurYShader     *gfx.Shader
	compositeShader *gfx.Shader

	edgeTarget gfx.RenderTarget
	blurTarget gfx.RenderTarget
}

// NewEffect registers a consumer on m for layer and returns the pass.
func NewEffect(m *Manager, layer int) (*Effect, error) {
	h, err := m.RegisterConsumer(layer)
	if err != nil {
		return nil, err
	}
	e := &Effect{
		PassBase:    postfx.NewPassBase(fmt.Sprintf("outline:%d", layer), true, false),
		manager:     m,
		handle:      h,
		edgeColor:   color.RGBA{R: 255, G: 255, B: 255, A: 255},
		hiddenColor: color.RGBA{R: 76, G: 76, B: 102, A: 255},
		thickness:   1,
		strength:    1,
		blurRadius:  2,
	}
	e.edgeShader = gfx.NewShader("outline-edge", edgeShaderWGSL, e.edgeFragment)
	e.edgeShader.SetDefine("EDGE_COLOR", wgslColor(e.edgeColor))
	e.edgeShader.SetDefine("HIDDEN_COLOR", wgslColor(e.hiddenColor))
	e.blurXShader = gfx.NewShader("outline-blur-x", blurShaderWGSL, e.blurFragment(1, 0))
	e.blurYShader = gfx.NewShader("outline-blur-y", blurShaderWGSL, e.blurFragment(0, 1))
	e.kernel = GaussianKernel(e.blurRadius, 0)
	e.setBlurDefines()
	e.compositeShader = gfx.NewShader("outline-composite", compositeShaderWGSL, e.compositeFragment)
	e.compositeShader.SetDefine("STRENGTH", "1.0")
	return e, nil
}

// Manager returns the shared manager.
func (e *Effect) Manager() *Manager { return e.manager }

// Layer returns the effect's layer id.
func (e *Effect) Layer() int { return e.handle.Layer() }

// Selection returns the set of outlined objects. Adding a node enables
// the effect's layer on it; removing disables it again.
func (e *Effect) Selection() *scene.Selection { return e.handle.Selection() }

// ClearSelection empties the selection and forces one more manager
// update so the stale mask gets cleared.
func (e *Effect) ClearSelection() {
	e.handle.Selection().Clear()
	e.manager.SetNeedsUpdate()
}

// EdgeColor returns the visible edge color.
func (e *Effect) EdgeColor() color.RGBA { return e.edgeColor }

// SetEdgeColor changes the visible edge color.
func (e *Effect) SetEdgeColor(c color.RGBA) {
	if e.edgeColor == c {
		return
	}
	e.edgeColor = c
	e.edgeShader.SetDefine("EDGE_COLOR", wgslColor(c))
}

// HiddenEdgeColor returns the color of edges occluded by other
// geometry.
func (e *Effect) HiddenEdgeColor() color.RGBA { return e.hiddenColor }

// SetHiddenEdgeColor changes the occluded edge color.
func (e *Effect) SetHiddenEdgeColor(c color.RGBA) {
	if e.hiddenColor == c {
		return
	}
	e.hiddenColor = c
	e.edgeShader.SetDefine("HIDDEN_COLOR", wgslColor(c))
}

// Thickness returns the edge sampling radius in pixels.
func (e *Effect) Thickness() int { return e.thickness }

// SetThickness changes the edge sampling radius.
func (e *Effect) SetThickness(px int) {
	if px < 1 {
		px = 1
	}
	e.thickness = px
	e.edgeShader.SetUniform("thickness", float32(px))
}

// Strength returns the outline opacity multiplier.
func (e *Effect) Strength() float32 { return e.strength }

// SetStrength changes the outline opacity multiplier.
func (e *Effect) SetStrength(s float32) {
	if s < 0 {
		s = 0
	}
	e.strength = s
	e.compositeShader.SetDefine("STRENGTH",
		strconv.FormatFloat(float64(s), 'f', -1, 32))
}

// BlurEnabled reports whether edges are softened.
func (e *Effect) BlurEnabled() bool { return e.blurEnabled }

// SetBlurEnabled toggles edge softening.
func (e *Effect) SetBlurEnabled(enabled bool) { e.blurEnabled = enabled }

// SetBlurRadius changes the gaussian radius used when blur is enabled.
func (e *Effect) SetBlurRadius(radius int) {
	if radius < 1 {
		radius = 1
	}
	if radius == e.blurRadius {
		return
	}
	e.blurRadius = radius
	e.kernel = GaussianKernel(radius, 0)
	e.setBlurDefines()
}

// setBlurDefines keeps the WGSL blur variant in step with the CPU
// kernel: the same weights drive both paths.
func (e *Effect) setBlurDefines() {
	radius := strconv.Itoa(e.blurRadius)
	kernel := wgslKernel(e.kernel)
	for _, sh := range []*gfx.Shader{e.blurXShader, e.blurYShader} {
		sh.SetDefine("RADIUS", radius)
		sh.SetDefine("KERNEL", kernel)
	}
}

// EdgeTexture returns the private edge texture, or nil before the first
// render.
func (e *Effect) EdgeTexture() gfx.Texture {
	if e.edgeTarget == nil {
		return nil
	}
	return e.edgeTarget.ColorTexture(0)
}

// SetSize forwards the drawing-buffer size to the manager and resizes
// the private edge targets.
func (e *Effect) SetSize(width, height int) {
	e.PassBase.SetSize(width, height)
	e.manager.SetSize(width, height)
	if e.edgeTarget != nil {
		e.edgeTarget.Resize(width, height)
	}
	if e.blurTarget != nil {
		e.blurTarget.Resize(width, height)
	}
}

// Render runs one frame of the effect: register with the manager, run
// the shared update, regenerate edges if anything was drawn, composite
// over the frame. A no-op manager update still composites, so the pass
// behaves as a plain copy when nothing is selected.
func (e *Effect) Render(ctx gfx.Context, input, output gfx.RenderTarget, dt float64, stencilActive bool) error {
	updated, err := e.handle.Update(ctx, dt)
	if err != nil {
		return err
	}

	if updated {
		if err := e.ensureTargets(ctx); err != nil {
			return err
		}
		inputs := []gfx.Texture{
			e.manager.MaskTexture(),
			e.manager.MaskDepthReader(),
			e.manager.SceneDepthReader(),
		}
		if err := ctx.DrawFullscreen(e.edgeShader, inputs, e.edgeTarget, gfx.DrawOptions{}); err != nil {
			return fmt.Errorf("outline: edge pass: %w", err)
		}
		if e.blurEnabled {
			if err := e.blur(ctx); err != nil {
				return fmt.Errorf("outline: blur pass: %w", err)
			}
		}
	}

	inputs := []gfx.Texture{input.ColorTexture(0)}
	if e.edgeTarget != nil {
		inputs = append(inputs, e.edgeTarget.ColorTexture(0))
	}
	return ctx.DrawFullscreen(e.compositeShader, inputs, output, gfx.DrawOptions{
		StencilTest: stencilActive,
	})
}

// Dispose unregisters from the manager and releases the edge targets.
func (e *Effect) Dispose() {
	e.handle.Close()
	if e.edgeTarget != nil {
		e.edgeTarget.Dispose()
		e.edgeTarget = nil
	}
	if e.blurTarget != nil {
		e.blurTarget.Dispose()
		e.blurTarget = nil
	}
}

func (e *Effect) ensureTargets(ctx gfx.Context) error {
	w, h := e.Size()
	if w < 1 || h < 1 {
		w, h = defaultMaskSize, defaultMaskSize
	}
	if e.edgeTarget == nil {
		t, err := ctx.NewTarget(gfx.TargetDescriptor{Label: "outline-edges", Width: w, Height: h})
		if err != nil {
			return fmt.Errorf("outline: edge target: %w", err)
		}
		e.edgeTarget = t
	}
	if e.blurEnabled && e.blurTarget == nil {
		t, err := ctx.NewTarget(gfx.TargetDescriptor{Label: "outline-blur", Width: w, Height: h})
		if err != nil {
			return fmt.Errorf("outline: blur target: %w", err)
		}
		e.blurTarget = t
	}
	return nil
}

// blur softens the edge texture with a separable gaussian: horizontal
// into the scratch target, vertical back into the edge target.
func (e *Effect) blur(ctx gfx.Context) error {
	if err := ctx.DrawFullscreen(e.blurXShader, []gfx.Texture{e.edgeTarget.ColorTexture(0)}, e.blurTarget, gfx.DrawOptions{}); err != nil {
		return err
	}
	return ctx.DrawFullscreen(e.blurYShader, []gfx.Texture{e.blurTarget.ColorTexture(0)}, e.edgeTarget, gfx.DrawOptions{})
}

// edgeFragment is the CPU edge detector: the gradient of the mask
// coverage, classified visible or hidden by comparing the mask depth
// with the scene depth captured without the selected objects.
func (e *Effect) edgeFragment(x, y int, inputs []gfx.Texture) color.RGBA {
	if len(inputs) < 1 {
		return color.RGBA{}
	}
	mask, ok := inputs[0].(gfx.PixelReader)
	if !ok {
		return color.RGBA{}
	}
	t := e.thickness
	l := int(mask.RGBAAt(x-t, y).R)
	r := int(mask.RGBAAt(x+t, y).R)
	u := int(mask.RGBAAt(x, y-t).R)
	d := int(mask.RGBAAt(x, y+t).R)
	edge := absInt(l-r) + absInt(u-d)
	if edge > 255 {
		edge = 255
	}
	if edge == 0 {
		return color.RGBA{}
	}

	clr := e.edgeColor
	if len(inputs) >= 3 {
		maskDepth, mok := inputs[1].(gfx.DepthReader)
		sceneDepth, sok := inputs[2].(gfx.DepthReader)
		if mok && sok {
			od := objectDepthNear(maskDepth, x, y, t)
			if od < 1 && sceneDepth.DepthAt(x, y)+depthBias < od {
				clr = e.hiddenColor
			}
		}
	}
	return color.RGBA{R: clr.R, G: clr.G, B: clr.B, A: uint8(edge)}
}

// objectDepthNear samples the mask depth around an edge pixel and
// returns the nearest covered depth, or 1 when nothing is covered.
func objectDepthNear(d gfx.DepthReader, x, y, t int) float32 {
	depth := float32(1)
	for _, p := range [...][2]int{{x, y}, {x - t, y}, {x + t, y}, {x, y - t}, {x, y + t}} {
		if v := d.DepthAt(p[0], p[1]); v < depth {
			depth = v
		}
	}
	return depth
}

// blurFragment returns the CPU gaussian tap along one axis.
func (e *Effect) blurFragment(dx, dy int) gfx.FragmentFunc {
	return func(x, y int, inputs []gfx.Texture) color.RGBA {
		if len(inputs) < 1 {
			return color.RGBA{}
		}
		src, ok := inputs[0].(gfx.PixelReader)
		if !ok {
			return color.RGBA{}
		}
		radius := len(e.kernel) / 2
		var r, g, b, a float32
		for i, w := range e.kernel {
			off := i - radius
			p := src.RGBAAt(x+off*dx, y+off*dy)
			r += w * float32(p.R)
			g += w * float32(p.G)
			b += w * float32(p.B)
			a += w * float32(p.A)
		}
		return color.RGBA{
			R: uint8(r + 0.5),
			G: uint8(g + 0.5),
			B: uint8(b + 0.5),
			A: uint8(a + 0.5),
		}
	}
}

// compositeFragment blends the edge texture over the frame.
func (e *Effect) compositeFragment(x, y int, inputs []gfx.Texture) color.RGBA {
	if len(inputs) < 1 {
		return color.RGBA{}
	}
	base, ok := inputs[0].(gfx.PixelReader)
	if !ok {
		return color.RGBA{}
	}
	b := base.RGBAAt(x, y)
	if len(inputs) < 2 {
		return b
	}
	edges, ok := inputs[1].(gfx.PixelReader)
	if !ok {
		return b
	}
	ed := edges.RGBAAt(x, y)
	a := uint32(float32(ed.A) * e.strength)
	if a > 255 {
		a = 255
	}
	if a == 0 {
		return b
	}
	inv := 255 - a
	return color.RGBA{
		R: uint8((uint32(ed.R)*a + uint32(b.R)*inv) / 255),
		G: uint8((uint32(ed.G)*a + uint32(b.G)*inv) / 255),
		B: uint8((uint32(ed.B)*a + uint32(b.B)*inv) / 255),
		A: maxU8(b.A, uint8(a)),
	}
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func maxU8(a, b uint8) uint8 {
	if a > b {
		return a
	}
	return b
}

// wgslColor renders a color as a WGSL vec4 literal for shader defines.
func wgslColor(c color.RGBA) string {
	return fmt.Sprintf("vec4<f32>(%.4f, %.4f, %.4f, %.4f)",
		float64(c.R)/255, float64(c.G)/255, float64(c.B)/255, float64(c.A)/255)
}

// wgslKernel renders gaussian weights as a WGSL array literal.
func wgslKernel(k []float32) string {
	parts := make([]string, len(k))
	for i, w := range k {
		parts[i] = strconv.FormatFloat(float64(w), 'f', -1, 32)
	}
	return fmt.Sprintf("array<f32, %d>(%s)", len(k), strings.Join(parts, ", "))
}

var _ postfx.Pass = (*Effect)(nil)
