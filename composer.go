package postfx

import (
	"errors"
	"fmt"
	"slices"

	"github.com/gogpu/postfx/gfx"
	"github.com/gogpu/postfx/scene"
)

// Composer runs an ordered chain of passes over a ping-pong buffer pair
// once per frame.
//
// Two equally sized targets alternate roles: each pass reads the
// current input buffer and, if it transforms the image, writes the
// output buffer and reports NeedsSwap so the roles flip. The final
// image is whatever the input buffer holds after the last pass; hosts
// read it through Result.
//
// A Composer is not safe for concurrent use. Drive it from the frame
// loop goroutine.
type Composer struct {
	ctx  gfx.Context
	opts composerOptions

	resolution *Resolution
	support    Support

	read  gfx.RenderTarget
	write gfx.RenderTarget

	passes []Pass

	// sharedDepth is allocated lazily for the first pass that reports
	// NeedsDepthTexture and released when the last one leaves. When a
	// MultiTargetPass provides it instead, sharedDepthFrom records the
	// provider so removal can rewire the consumers.
	sharedDepth      gfx.Texture
	sharedDepthOwned bool
	sharedDepthFrom  *MultiTargetPass

	disposed bool
}

// NewComposer creates a composer over ctx with two buffers sized to the
// drawing buffer (scaled by WithResolutionScale).
func NewComposer(ctx gfx.Context, opts ...ComposerOption) (*Composer, error) {
	if ctx == nil {
		return nil, fmt.Errorf("postfx: nil context")
	}
	o := defaultComposerOptions()
	for _, opt := range opts {
		opt(&o)
	}
	propagateLogger(ctx, Logger())

	w, h := ctx.DrawingBufferSize()
	c := &Composer{
		ctx:        ctx,
		opts:       o,
		resolution: NewResolution(w, h, o.scale),
		support:    ProbeSupport(ctx),
	}

	var err error
	if c.read, err = c.newBuffer("composer-read"); err != nil {
		return nil, err
	}
	if c.write, err = c.newBuffer("composer-write"); err != nil {
		c.read.Dispose()
		return nil, err
	}

	c.resolution.AddListener(func(*Resolution) { c.applySize() })

	Logger().Debug("composer created",
		"width", c.resolution.Width(), "height", c.resolution.Height(),
		"multiTarget", c.support.MultiTarget)
	return c, nil
}

// newBuffer allocates one ping-pong target per the composer options.
func (c *Composer) newBuffer(label string) (gfx.RenderTarget, error) {
	t, err := c.ctx.NewTarget(gfx.TargetDescriptor{
		Label:         label,
		Width:         c.resolution.Width(),
		Height:        c.resolution.Height(),
		Format:        c.opts.format,
		SampleCount:   c.opts.sampleCount,
		DepthBuffer:   c.opts.depthBuffer,
		StencilBuffer: c.opts.stencilBuffer,
	})
	if err != nil {
		return nil, fmt.Errorf("postfx: %s: %w", label, err)
	}
	return t, nil
}

// Resolution returns the composer's buffer resolution.
func (c *Composer) Resolution() *Resolution { return c.resolution }

// Support returns the probed capability classification.
func (c *Composer) Support() Support { return c.support }

// Result returns the buffer holding the latest composed frame.
func (c *Composer) Result() gfx.RenderTarget { return c.read }

// Passes returns the pass chain in execution order.
func (c *Composer) Passes() []Pass { return slices.Clone(c.passes) }

// AddPass appends p to the chain. The pass is sized and initialized
// first; an initialization error rejects it and the chain is unchanged.
//
// A plain ScenePass is transparently upgraded to a MultiTargetPass when
// the context supports two color attachments, folding a separate depth
// render into the color pass for any depth-consuming pass downstream.
// The upgrade is abandoned, never fatal, if the combined target cannot
// be built.
func (c *Composer) AddPass(p Pass) error {
	return c.insertPass(p, len(c.passes))
}

// InsertPass inserts p at index in the chain, shifting later passes.
func (c *Composer) InsertPass(p Pass, index int) error {
	if index < 0 || index > len(c.passes) {
		return fmt.Errorf("postfx: insert index %d out of range", index)
	}
	return c.insertPass(p, index)
}

func (c *Composer) insertPass(p Pass, index int) error {
	if c.disposed {
		return ErrDisposed
	}
	if p == nil {
		return fmt.Errorf("postfx: nil pass")
	}

	p = c.maybeUpgrade(p)

	p.SetSize(c.resolution.Width(), c.resolution.Height())
	if err := p.Initialize(c.ctx, c.opts.alpha, c.opts.format); err != nil {
		return fmt.Errorf("postfx: pass %q rejected: %w", p.Name(), err)
	}

	c.passes = slices.Insert(c.passes, index, p)

	// A combined color+depth pass supersedes any standalone depth
	// texture: the upgraded pass renders into its private target and
	// never writes the buffers' attached depth plane, so consumers must
	// be rewired to its packed depth.
	if _, ok := p.(*MultiTargetPass); ok && c.sharedDepthOwned {
		c.dropSharedDepth()
		if err := c.ensureSharedDepth(); err != nil {
			Logger().Warn("shared depth texture unavailable", "pass", p.Name(), "error", err)
		}
	}

	if p.NeedsDepthTexture() {
		if err := c.ensureSharedDepth(); err != nil {
			Logger().Warn("shared depth texture unavailable", "pass", p.Name(), "error", err)
		}
	}
	if c.sharedDepth != nil && p.NeedsDepthTexture() {
		p.SetDepthTexture(c.sharedDepth)
	}
	return nil
}

// maybeUpgrade substitutes a MultiTargetPass for a plain ScenePass when
// the combined color+depth path applies.
func (c *Composer) maybeUpgrade(p Pass) Pass {
	sp, ok := p.(*ScenePass)
	if !ok || !c.support.MultiTarget {
		return p
	}
	mrt := NewMultiTargetPass(sp.Scene(), sp.Camera())
	mrt.SetEnabled(sp.Enabled())
	mrt.SetSize(c.resolution.Width(), c.resolution.Height())
	if err := mrt.Initialize(c.ctx, c.opts.alpha, c.opts.format); err != nil {
		Logger().Warn("multi-target upgrade abandoned", "error", err)
		return p
	}
	Logger().Debug("scene pass upgraded to multi-target")
	return mrt
}

// RemovePass removes p from the chain. The pass itself is not disposed;
// the caller still owns it. Returns false if p is not in the chain.
func (c *Composer) RemovePass(p Pass) bool {
	i := slices.Index(c.passes, p)
	if i < 0 {
		return false
	}
	c.passes = slices.Delete(c.passes, i, i+1)
	p.SetDepthTexture(nil)
	if mrt, ok := p.(*MultiTargetPass); ok && mrt == c.sharedDepthFrom {
		c.dropSharedDepth()
		if c.anyDepthConsumer() {
			if err := c.ensureSharedDepth(); err != nil {
				Logger().Warn("shared depth texture unavailable", "error", err)
			}
		}
	}
	c.releaseSharedDepthIfUnused()
	return true
}

// RemoveAllPasses empties the chain without disposing the passes.
func (c *Composer) RemoveAllPasses() {
	for _, p := range c.passes {
		p.SetDepthTexture(nil)
	}
	c.passes = nil
	c.releaseSharedDepthIfUnused()
}

// Render runs every enabled pass for one frame. A pass that fails or
// panics is logged and skipped; the rest of the chain still runs. The
// joined per-pass errors are returned for hosts that want them.
func (c *Composer) Render(dt float64) error {
	if c.disposed {
		return ErrDisposed
	}

	stencilActive := false
	var errs []error
	for _, p := range c.passes {
		if !p.Enabled() {
			continue
		}
		if err := c.renderOne(p, dt, stencilActive); err != nil {
			Logger().Error("pass failed", "pass", p.Name(), "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
			continue
		}
		switch p.(type) {
		case *MaskPass:
			stencilActive = true
		case *ClearMaskPass:
			stencilActive = false
		}
		if p.NeedsSwap() {
			c.read, c.write = c.write, c.read
		}
	}
	return errors.Join(errs...)
}

// renderOne runs a single pass behind a recover boundary, so a panicking
// pass cannot take the frame loop down.
func (c *Composer) renderOne(p Pass, dt float64, stencilActive bool) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return p.Render(c.ctx, c.read, c.write, dt, stencilActive)
}

// SetSize resizes the buffer pair and every pass. Hosts call it after
// resizing the context's drawing buffer.
func (c *Composer) SetSize(width, height int) {
	c.resolution.SetBaseSize(width, height)
}

// SetResolutionScale changes the internal buffer scale.
func (c *Composer) SetResolutionScale(scale float64) {
	c.resolution.SetScale(scale)
}

// applySize propagates the current resolution to buffers, passes, and
// the shared depth texture.
func (c *Composer) applySize() {
	w, h := c.resolution.Width(), c.resolution.Height()
	c.read.Resize(w, h)
	c.write.Resize(w, h)
	for _, p := range c.passes {
		p.SetSize(w, h)
	}
	if c.sharedDepth != nil {
		// Depth textures have fixed extents; rebuild and redistribute.
		c.dropSharedDepth()
		if err := c.ensureSharedDepth(); err != nil {
			Logger().Warn("shared depth texture lost on resize", "error", err)
		}
	}
}

// SetMainScene rebinds every scene-holding pass to s.
func (c *Composer) SetMainScene(s scene.Scene) {
	for _, p := range c.passes {
		if h, ok := p.(sceneHolder); ok {
			h.SetScene(s)
		}
	}
}

// SetMainCamera rebinds every camera-holding pass to cam.
func (c *Composer) SetMainCamera(cam scene.Camera) {
	for _, p := range c.passes {
		if h, ok := p.(cameraHolder); ok {
			h.SetCamera(cam)
		}
	}
}

// ensureSharedDepth makes the scene depth texture available to
// depth-consuming passes. When the chain contains a MultiTargetPass its
// packed-depth attachment is reused directly; otherwise a standalone
// depth texture is allocated and attached to both buffers so scene
// passes populate it. Consumers cannot tell the two sources apart.
func (c *Composer) ensureSharedDepth() error {
	if c.sharedDepth != nil {
		return nil
	}
	for _, p := range c.passes {
		mrt, ok := p.(*MultiTargetPass)
		if !ok {
			continue
		}
		if t := mrt.DepthTexture(); t != nil {
			c.sharedDepth = t
			c.sharedDepthOwned = false
			c.sharedDepthFrom = mrt
			c.distributeDepth()
			return nil
		}
	}

	t, err := c.ctx.NewDepthTexture(c.resolution.Width(), c.resolution.Height())
	if err != nil {
		return err
	}
	if err := c.read.AttachDepth(t); err != nil {
		return err
	}
	if err := c.write.AttachDepth(t); err != nil {
		c.read.AttachDepth(nil)
		return err
	}
	c.sharedDepth = t
	c.sharedDepthOwned = true
	c.distributeDepth()
	return nil
}

// distributeDepth hands the shared depth texture to every pass that
// wants it.
func (c *Composer) distributeDepth() {
	for _, p := range c.passes {
		if p.NeedsDepthTexture() {
			p.SetDepthTexture(c.sharedDepth)
		}
	}
}

// releaseSharedDepthIfUnused drops the shared depth texture when no
// remaining pass consumes it.
func (c *Composer) releaseSharedDepthIfUnused() {
	if c.sharedDepth == nil || c.anyDepthConsumer() {
		return
	}
	c.dropSharedDepth()
}

func (c *Composer) anyDepthConsumer() bool {
	for _, p := range c.passes {
		if p.NeedsDepthTexture() {
			return true
		}
	}
	return false
}

func (c *Composer) dropSharedDepth() {
	if c.sharedDepthOwned {
		c.read.AttachDepth(nil)
		c.write.AttachDepth(nil)
	}
	c.sharedDepth = nil
	c.sharedDepthOwned = false
	c.sharedDepthFrom = nil
	for _, p := range c.passes {
		if p.NeedsDepthTexture() {
			p.SetDepthTexture(nil)
		}
	}
}

// Dispose releases the buffers and every pass in the chain. Idempotent.
func (c *Composer) Dispose() {
	if c.disposed {
		return
	}
	c.dropSharedDepth()
	for _, p := range c.passes {
		p.Dispose()
	}
	c.passes = nil
	c.read.Dispose()
	c.write.Dispose()
	c.disposed = true
}
