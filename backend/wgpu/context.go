package wgpu

import (
	"log/slog"

	"github.com/gogpu/postfx/cache"
	"github.com/gogpu/postfx/gfx"
	"github.com/gogpu/postfx/scene"
)

// shaderVariantCacheSize bounds compiled SPIR-V modules kept per
// context. The per-frame working set is a handful of variants.
const shaderVariantCacheSize = 32

// Context is the wgpu-backed gfx.Context.
//
// Shader variants are compiled from preprocessed WGSL to SPIR-V through
// naga and cached by variant key. Pixel work delegates to an embedded
// software context until native render-pass encoding is complete;
// capabilities come from the device so composer probing reflects the
// hardware.
type Context struct {
	*gfx.SoftwareContext

	provider *Provider
	variants *cache.LRU[string, []uint32]
	caps     gfx.Capabilities
	logger   *slog.Logger
}

func newContext(p *Provider, width, height int) (*Context, error) {
	soft, err := gfx.NewSoftwareContext(width, height)
	if err != nil {
		return nil, err
	}
	c := &Context{
		SoftwareContext: soft,
		provider:        p,
		variants:        cache.New[string, []uint32](shaderVariantCacheSize),
		logger:          gfx.NopLogger(),
	}
	c.caps = gfx.Capabilities{
		MaxColorAttachments: 8,
		MaxSamples:          4,
		MaxTextureSize:      deviceMaxTextureSize(p.device),
	}
	return c, nil
}

// SetLogger replaces the context logger. nil restores the silent
// default.
func (c *Context) SetLogger(l *slog.Logger) {
	if l == nil {
		l = gfx.NopLogger()
	}
	c.logger = l
	c.SoftwareContext.SetLogger(l)
}

// Capabilities returns the device-derived capabilities.
func (c *Context) Capabilities() gfx.Capabilities { return c.caps }

// DrawFullscreen compiles the shader's current variant if needed, then
// runs the draw.
func (c *Context) DrawFullscreen(sh *gfx.Shader, inputs []gfx.Texture, dst gfx.RenderTarget, opts gfx.DrawOptions) error {
	if sh == nil {
		return gfx.ErrNilShader
	}
	if sh.Source() != "" {
		if err := c.ensureVariant(sh); err != nil {
			// A variant that does not compile is a pass bug; the CPU
			// fallback still renders the frame.
			c.logger.Warn("shader variant compilation failed",
				"shader", sh.Name(), "variant", sh.VariantKey(), "error", err)
		}
	}
	return c.SoftwareContext.DrawFullscreen(sh, inputs, dst, opts)
}

// RenderScene rasterizes the scene.
func (c *Context) RenderScene(sc scene.Scene, cam scene.Camera, dst gfx.RenderTarget, opts gfx.SceneOptions) error {
	return c.SoftwareContext.RenderScene(sc, cam, dst, opts)
}

// ensureVariant compiles and caches the SPIR-V for the shader's current
// define set.
func (c *Context) ensureVariant(sh *gfx.Shader) error {
	if sh.Dirty() {
		c.variants.Delete(sh.VariantKey())
		sh.Rebuild()
	}
	_, err := c.variants.GetOrCreate(sh.VariantKey(), func() ([]uint32, error) {
		return compileToSPIRV(sh.PreprocessedSource())
	})
	return err
}

// VariantCacheStats exposes the compiled-shader cache counters.
func (c *Context) VariantCacheStats() cache.Stats { return c.variants.Stats() }

// Dispose releases the context and its compiled shaders. The provider's
// device stays alive for other contexts.
func (c *Context) Dispose() {
	c.variants.Clear()
	c.SoftwareContext.Dispose()
}

var (
	_ gfx.Context      = (*Context)(nil)
	_ gfx.LoggerSetter = (*Context)(nil)
)
