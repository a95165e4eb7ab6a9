// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gfx

import (
	"fmt"
	"image"
	"image/color"
	"log/slog"

	"github.com/gogpu/gputypes"
	xdraw "golang.org/x/image/draw"

	"github.com/gogpu/postfx/scene"
)

// Software context capability defaults. MaxColorAttachments follows the
// WebGPU guaranteed minimum.
const (
	defaultMaxColorAttachments = 8
	defaultMaxSamples          = 4
	defaultMaxTextureSize      = 8192
)

// SoftwareOption configures a SoftwareContext during creation.
type SoftwareOption func(*SoftwareContext)

// WithMaxColorAttachments overrides the reported attachment limit.
// Tests use 1 to model hardware without multi-target support.
func WithMaxColorAttachments(n int) SoftwareOption {
	return func(c *SoftwareContext) {
		if n >= 1 {
			c.caps.MaxColorAttachments = n
		}
	}
}

// WithMaxSamples overrides the reported MSAA sample limit.
func WithMaxSamples(n int) SoftwareOption {
	return func(c *SoftwareContext) {
		if n >= 1 {
			c.caps.MaxSamples = n
		}
	}
}

// WithFailingAllocations makes every NewTarget call fail. Tests use it to
// model contexts whose advertised capabilities are not functional.
func WithFailingAllocations() SoftwareOption {
	return func(c *SoftwareContext) { c.failAllocs = true }
}

// SoftwareContext is a complete CPU implementation of Context.
//
// It rasterizes scene nodes that implement scene.Footprinted as flat
// depth-tested rectangles and evaluates fullscreen shaders through their
// FragmentFunc. It is the default backend and the reference the GPU
// backends are validated against.
type SoftwareContext struct {
	width  int
	height int
	caps   Capabilities
	logger *slog.Logger

	failAllocs bool
	disposed   bool
}

// NewSoftwareContext creates a CPU context with the given drawing-buffer
// size.
func NewSoftwareContext(width, height int, opts ...SoftwareOption) (*SoftwareContext, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	c := &SoftwareContext{
		width:  width,
		height: height,
		caps: Capabilities{
			MaxColorAttachments: defaultMaxColorAttachments,
			MaxSamples:          defaultMaxSamples,
			MaxTextureSize:      defaultMaxTextureSize,
		},
		logger: NopLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// SetLogger replaces the context logger. nil restores the silent default.
func (c *SoftwareContext) SetLogger(l *slog.Logger) {
	if l == nil {
		l = NopLogger()
	}
	c.logger = l
}

// Capabilities returns the context capabilities.
func (c *SoftwareContext) Capabilities() Capabilities { return c.caps }

// DrawingBufferSize returns the output surface size.
func (c *SoftwareContext) DrawingBufferSize() (int, int) { return c.width, c.height }

// SetDrawingBufferSize resizes the output surface. The host calls this
// when its window size changes, before calling Composer.SetSize.
func (c *SoftwareContext) SetDrawingBufferSize(width, height int) {
	if width >= 1 && height >= 1 {
		c.width = width
		c.height = height
	}
}

// NewTarget allocates a CPU render target.
func (c *SoftwareContext) NewTarget(desc TargetDescriptor) (RenderTarget, error) {
	if c.failAllocs {
		return nil, fmt.Errorf("gfx: allocation failed for %q", desc.Label)
	}
	if desc.Width <= 0 || desc.Height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, desc.Width, desc.Height)
	}
	attachments := desc.ColorAttachments
	if attachments == 0 {
		attachments = 1
	}
	if attachments > c.caps.MaxColorAttachments {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyAttachments, attachments, c.caps.MaxColorAttachments)
	}
	format := desc.Format
	if format == gputypes.TextureFormatUndefined {
		format = gputypes.TextureFormatRGBA8Unorm
	}
	samples := desc.SampleCount
	if samples == 0 {
		samples = 1
	}
	if samples > c.caps.MaxSamples {
		c.logger.Warn("sample count clamped", "requested", samples, "max", c.caps.MaxSamples)
		samples = c.caps.MaxSamples
	}

	t := &softTarget{
		label:   desc.Label,
		width:   desc.Width,
		height:  desc.Height,
		format:  format,
		samples: samples,
	}
	for i := 0; i < attachments; i++ {
		t.colors = append(t.colors, newSoftTexture(desc.Width, desc.Height, format))
	}
	if desc.DepthBuffer {
		t.depth = newSoftDepthTexture(desc.Width, desc.Height)
	}
	if desc.StencilBuffer {
		t.stencil = make([]uint8, desc.Width*desc.Height)
	}
	return t, nil
}

// NewDepthTexture allocates a standalone depth texture.
func (c *SoftwareContext) NewDepthTexture(width, height int) (Texture, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	return newSoftDepthTexture(width, height), nil
}

// Clear wipes the selected planes of dst.
func (c *SoftwareContext) Clear(dst RenderTarget, opts ClearOptions) error {
	t, err := c.softTargetOf(dst)
	if err != nil {
		return err
	}
	if opts.ClearColor {
		clr := color.Color(color.RGBA{})
		if opts.Color != nil {
			clr = opts.Color
		}
		src := image.NewUniform(clr)
		for _, tex := range t.colors {
			xdraw.Copy(tex.img, image.Point{}, src, tex.img.Bounds(), xdraw.Src, nil)
		}
	}
	if opts.ClearDepth && t.depth != nil {
		t.depth.fill(1)
	}
	if opts.ClearStencil && t.stencil != nil {
		clear(t.stencil)
	}
	return nil
}

// DrawFullscreen evaluates sh over every pixel of dst.
func (c *SoftwareContext) DrawFullscreen(sh *Shader, inputs []Texture, dst RenderTarget, opts DrawOptions) error {
	if sh == nil {
		return ErrNilShader
	}
	t, err := c.softTargetOf(dst)
	if err != nil {
		return err
	}
	if sh.Dirty() {
		sh.Rebuild()
		c.logger.Debug("shader rebuilt", "shader", sh.Name(), "variant", sh.VariantKey())
	}
	frag := sh.Fragment()
	if frag == nil {
		return fmt.Errorf("gfx: shader %q has no CPU fragment", sh.Name())
	}

	out := t.colors[0]
	for y := 0; y < t.height; y++ {
		for x := 0; x < t.width; x++ {
			if opts.StencilTest && t.stencil != nil && t.stencil[y*t.width+x] == 0 {
				continue
			}
			src := frag(x, y, inputs)
			switch opts.Blend {
			case BlendOver:
				out.setRGBA(x, y, blendOver(out.RGBAAt(x, y), src))
			case BlendAdd:
				out.setRGBA(x, y, blendAdd(out.RGBAAt(x, y), src))
			default:
				out.setRGBA(x, y, src)
			}
		}
	}
	return nil
}

// RenderScene rasterizes every visible, layer-matching node of sc that
// reports a footprint. Nodes without a footprint are skipped silently;
// the software context has no other geometry path.
func (c *SoftwareContext) RenderScene(sc scene.Scene, cam scene.Camera, dst RenderTarget, opts SceneOptions) error {
	t, err := c.softTargetOf(dst)
	if err != nil {
		return err
	}
	if sc == nil || cam == nil {
		return fmt.Errorf("gfx: nil scene or camera")
	}

	if !opts.DepthOnly && !opts.StencilWrite && !opts.NoBackground {
		if bg := sc.Background(); bg != nil {
			src := image.NewUniform(bg)
			xdraw.Copy(t.colors[0].img, image.Point{}, src, t.colors[0].img.Bounds(), xdraw.Src, nil)
		}
	}

	bounds := image.Rect(0, 0, t.width, t.height)
	sc.Traverse(func(n scene.Node) {
		if !n.Visible() || !n.Layers().Test(cam.Layers()) {
			return
		}
		fp, ok := n.(scene.Footprinted)
		if !ok {
			return
		}
		rect, depth := fp.Footprint()
		rect = rect.Intersect(bounds)
		if rect.Empty() {
			return
		}
		c.drawFootprint(t, rect, depth, fp.Color(), opts)
	})
	return nil
}

// drawFootprint fills one depth-tested rectangle.
func (c *SoftwareContext) drawFootprint(t *softTarget, rect image.Rectangle, depth float32, clr color.RGBA, opts SceneOptions) {
	packed := PackDepth(depth)
	depthColor := color.RGBA{R: packed, G: packed, B: packed, A: 255}
	if opts.OverrideColor != nil {
		r, g, b, a := opts.OverrideColor.RGBA()
		clr = color.RGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: uint8(a >> 8)}
	}

	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			if t.depth != nil {
				i := y*t.width + x
				if depth > t.depth.data[i] {
					continue
				}
				t.depth.data[i] = depth
			}
			switch {
			case opts.StencilWrite:
				if t.stencil != nil {
					t.stencil[y*t.width+x] = 0xff
				}
			case opts.DepthOnly:
				t.colors[0].setRGBA(x, y, depthColor)
			default:
				t.colors[0].setRGBA(x, y, clr)
				if opts.DepthToAttachment && len(t.colors) > 1 {
					t.colors[1].setRGBA(x, y, depthColor)
				}
			}
		}
	}
}

// Blit copies src into attachment 0 of dst, scaling with bilinear
// filtering when the sizes differ.
func (c *SoftwareContext) Blit(src Texture, dst RenderTarget) error {
	t, err := c.softTargetOf(dst)
	if err != nil {
		return err
	}
	reader, ok := src.(*softTexture)
	if !ok {
		return fmt.Errorf("gfx: blit source is not a software texture")
	}
	dstImg := t.colors[0].img
	if src.Width() == t.width && src.Height() == t.height {
		xdraw.Copy(dstImg, image.Point{}, reader.img, reader.img.Bounds(), xdraw.Src, nil)
		return nil
	}
	xdraw.ApproxBiLinear.Scale(dstImg, dstImg.Bounds(), reader.img, reader.img.Bounds(), xdraw.Src, nil)
	return nil
}

// ReadPixels returns a copy of one color attachment's bytes.
func (c *SoftwareContext) ReadPixels(src RenderTarget, attachment int) ([]byte, error) {
	t, err := c.softTargetOf(src)
	if err != nil {
		return nil, err
	}
	if attachment < 0 || attachment >= len(t.colors) {
		return nil, fmt.Errorf("%w: %d", ErrNoSuchAttachment, attachment)
	}
	pix := t.colors[attachment].img.Pix
	out := make([]byte, len(pix))
	copy(out, pix)
	return out, nil
}

// Dispose releases the context. Idempotent.
func (c *SoftwareContext) Dispose() {
	c.disposed = true
}

// softTargetOf validates and unwraps a render target.
func (c *SoftwareContext) softTargetOf(rt RenderTarget) (*softTarget, error) {
	if rt == nil {
		return nil, ErrNilTarget
	}
	t, ok := rt.(*softTarget)
	if !ok {
		return nil, fmt.Errorf("gfx: target %T does not belong to a software context", rt)
	}
	if t.disposed {
		return nil, fmt.Errorf("gfx: target %q is disposed", t.label)
	}
	return t, nil
}

func blendOver(dst, src color.RGBA) color.RGBA {
	a := uint32(src.A)
	inv := 255 - a
	return color.RGBA{
		R: uint8((uint32(src.R)*a + uint32(dst.R)*inv) / 255),
		G: uint8((uint32(src.G)*a + uint32(dst.G)*inv) / 255),
		B: uint8((uint32(src.B)*a + uint32(dst.B)*inv) / 255),
		A: uint8(min(255, a+uint32(dst.A)*inv/255)),
	}
}

func blendAdd(dst, src color.RGBA) color.RGBA {
	return color.RGBA{
		R: uint8(min(255, uint32(dst.R)+uint32(src.R))),
		G: uint8(min(255, uint32(dst.G)+uint32(src.G))),
		B: uint8(min(255, uint32(dst.B)+uint32(src.B))),
		A: uint8(min(255, uint32(dst.A)+uint32(src.A))),
	}
}

// softTexture is a CPU color texture backed by *image.RGBA.
type softTexture struct {
	img    *image.RGBA
	format gputypes.TextureFormat
}

func newSoftTexture(width, height int, format gputypes.TextureFormat) *softTexture {
	return &softTexture{
		img:    image.NewRGBA(image.Rect(0, 0, width, height)),
		format: format,
	}
}

func (t *softTexture) Width() int { return t.img.Bounds().Dx() }
func (t *softTexture) Height() int { return t.img.Bounds().Dy() }
func (t *softTexture) Format() gputypes.TextureFormat { return t.format }
func (t *softTexture) setRGBA(x, y int, c color.RGBA) { t.img.SetRGBA(x, y, c) }

// RGBAAt returns the color at the given coordinates.
func (t *softTexture) RGBAAt(x, y int) color.RGBA {
	if !(image.Point{X: x, Y: y}).In(t.img.Bounds()) {
		return color.RGBA{}
	}
	return t.img.RGBAAt(x, y)
}

// softDepthTexture is a CPU depth texture.
type softDepthTexture struct {
	width  int
	height int
	data   []float32
}

func newSoftDepthTexture(width, height int) *softDepthTexture {
	t := &softDepthTexture{
		width:  width,
		height: height,
		data:   make([]float32, width*height),
	}
	t.fill(1)
	return t
}

func (t *softDepthTexture) Width() int { return t.width }
func (t *softDepthTexture) Height() int { return t.height }
func (t *softDepthTexture) Format() gputypes.TextureFormat { return gputypes.TextureFormatDepth24PlusStencil8 }

// DepthAt returns the normalized depth at the given coordinates.
func (t *softDepthTexture) DepthAt(x, y int) float32 {
	if x < 0 || y < 0 || x >= t.width || y >= t.height {
		return 1
	}
	return t.data[y*t.width+x]
}

func (t *softDepthTexture) fill(v float32) {
	for i := range t.data {
		t.data[i] = v
	}
}

// softTarget is a CPU render target.
type softTarget struct {
	label   string
	width   int
	height  int
	format  gputypes.TextureFormat
	samples int

	colors  []*softTexture
	depth   *softDepthTexture
	stencil []uint8

	// attachedDepth marks depth as shared; Dispose leaves it alone and
	// Resize refuses to reallocate it behind the owner's back.
	attachedDepth bool
	disposed      bool
}

func (t *softTarget) Width() int { return t.width }
func (t *softTarget) Height() int { return t.height }
func (t *softTarget) Format() gputypes.TextureFormat { return t.format }
func (t *softTarget) SampleCount() int { return t.samples }
func (t *softTarget) ColorAttachmentCount() int { return len(t.colors) }

func (t *softTarget) ColorTexture(index int) Texture {
	if index < 0 || index >= len(t.colors) {
		return nil
	}
	return t.colors[index]
}

func (t *softTarget) DepthTexture() Texture {
	if t.depth == nil {
		return nil
	}
	return t.depth
}

func (t *softTarget) AttachDepth(tex Texture) error {
	if tex == nil {
		if t.attachedDepth {
			t.depth = nil
			t.attachedDepth = false
		}
		return nil
	}
	d, ok := tex.(*softDepthTexture)
	if !ok {
		return fmt.Errorf("gfx: depth texture %T does not belong to a software context", tex)
	}
	t.depth = d
	t.attachedDepth = true
	return nil
}

func (t *softTarget) Resize(width, height int) {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	if width == t.width && height == t.height {
		return
	}
	t.width = width
	t.height = height
	for i := range t.colors {
		t.colors[i] = newSoftTexture(width, height, t.format)
	}
	if t.depth != nil && !t.attachedDepth {
		t.depth = newSoftDepthTexture(width, height)
	}
	if t.stencil != nil {
		t.stencil = make([]uint8, width*height)
	}
}

func (t *softTarget) Dispose() {
	if t.disposed {
		return
	}
	t.colors = nil
	if !t.attachedDepth {
		t.depth = nil
	}
	t.stencil = nil
	t.disposed = true
}

var (
	_ Context      = (*SoftwareContext)(nil)
	_ RenderTarget = (*softTarget)(nil)
	_ Texture      = (*softTexture)(nil)
	_ PixelReader  = (*softTexture)(nil)
	_ DepthReader  = (*softDepthTexture)(nil)
)
