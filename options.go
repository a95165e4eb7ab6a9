package postfx

import "github.com/gogpu/gputypes"

// ComposerOption configures a Composer during creation.
// Use functional options to customize Composer behavior.
//
// Example:
//
//	// Default configuration
//	composer, err := postfx.NewComposer(ctx)
//
//	// Half-resolution buffers without stencil
//	composer, err := postfx.NewComposer(ctx,
//	    postfx.WithResolutionScale(0.5),
//	    postfx.WithStencilBuffer(false))
type ComposerOption func(*composerOptions)

// composerOptions holds optional configuration for Composer creation.
type composerOptions struct {
	alpha         bool
	format        gputypes.TextureFormat
	sampleCount   int
	scale         float64
	depthBuffer   bool
	stencilBuffer bool
}

// defaultComposerOptions returns the default composer options.
func defaultComposerOptions() composerOptions {
	return composerOptions{
		alpha:         true,
		format:        gputypes.TextureFormatRGBA8Unorm,
		sampleCount:   1,
		scale:         1,
		depthBuffer:   true,
		stencilBuffer: true,
	}
}

// WithAlpha controls whether the ping-pong buffers carry meaningful
// alpha. Defaults to true.
func WithAlpha(alpha bool) ComposerOption {
	return func(o *composerOptions) { o.alpha = alpha }
}

// WithFrameBufferFormat sets the pixel format of the ping-pong buffers.
// Defaults to RGBA8Unorm.
func WithFrameBufferFormat(format gputypes.TextureFormat) ComposerOption {
	return func(o *composerOptions) { o.format = format }
}

// WithSampleCount sets the MSAA sample count of the ping-pong buffers.
// Values above the context limit are clamped by the context. Defaults
// to 1.
func WithSampleCount(n int) ComposerOption {
	return func(o *composerOptions) {
		if n >= 1 {
			o.sampleCount = n
		}
	}
}

// WithResolutionScale renders the pipeline buffers at a fraction of the
// drawing-buffer size. Values outside (0, 1] are clamped to 1.
func WithResolutionScale(scale float64) ComposerOption {
	return func(o *composerOptions) { o.scale = scale }
}

// WithDepthBuffer controls the private depth plane of the ping-pong
// buffers. Defaults to true; scene passes need it for depth testing.
func WithDepthBuffer(enabled bool) ComposerOption {
	return func(o *composerOptions) { o.depthBuffer = enabled }
}

// WithStencilBuffer controls the stencil plane of the ping-pong buffers.
// Defaults to true; MaskPass/ClearMaskPass need it.
func WithStencilBuffer(enabled bool) ComposerOption {
	return func(o *composerOptions) { o.stencilBuffer = enabled }
}
