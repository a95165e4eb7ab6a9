package postfx

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/postfx/gfx"
	"github.com/gogpu/postfx/scene"
)

// Pass is one GPU-side processing stage in a Composer chain.
//
// The Composer feeds Render the current ping-pong buffer pair. A pass
// that transforms the image reads input and writes output and reports
// NeedsSwap so the next pass sees its result; a pass that renders into
// its own private target (DepthPass, the outline mask) bypasses the pair
// and reports NeedsSwap false. Ping-pong only governs fullscreen color
// composition steps.
type Pass interface {
	// Name returns the pass name for logging.
	Name() string

	// Initialize prepares context-dependent resources. alpha reports
	// whether the pipeline buffers carry meaningful alpha; format is the
	// buffer pixel format. A non-nil error rejects the pass: the
	// Composer will not add it.
	Initialize(ctx gfx.Context, alpha bool, format gputypes.TextureFormat) error

	// Render performs the pass's work for one frame. stencilActive
	// reports whether a MaskPass currently scopes fullscreen draws.
	// Errors are caught at the Composer's per-pass boundary; a failed
	// pass is a no-op for the frame, never a pipeline abort.
	Render(ctx gfx.Context, input, output gfx.RenderTarget, dt float64, stencilActive bool) error

	// SetSize informs the pass of the drawing-buffer size. Passes with
	// private targets size them relative to their own Resolution.
	SetSize(width, height int)

	// Dispose releases pass resources. Idempotent.
	Dispose()

	// Enabled reports whether the Composer should run this pass.
	Enabled() bool

	// SetEnabled toggles the pass without removing it from the chain.
	SetEnabled(enabled bool)

	// NeedsSwap reports whether the buffer pair must swap after this
	// pass so its output becomes the next pass's input.
	NeedsSwap() bool

	// NeedsDepthTexture reports whether this pass reads the shared scene
	// depth texture. The Composer allocates one lazily for the first
	// such pass and propagates it with SetDepthTexture.
	NeedsDepthTexture() bool

	// SetDepthTexture wires the shared depth texture, or clears it with
	// nil when the last depth-consuming pass leaves the chain.
	SetDepthTexture(t gfx.Texture)
}

// PassBase carries the state every pass shares. Concrete passes embed it
// and override the methods they care about.
type PassBase struct {
	name       string
	enabled    bool
	needsSwap  bool
	needsDepth bool

	width  int
	height int

	depthTexture gfx.Texture
}

// NewPassBase creates the embedded core of a pass.
func NewPassBase(name string, needsSwap, needsDepthTexture bool) PassBase {
	return PassBase{
		name:       name,
		enabled:    true,
		needsSwap:  needsSwap,
		needsDepth: needsDepthTexture,
	}
}

// Name returns the pass name.
func (b *PassBase) Name() string { return b.name }

// Initialize is a no-op by default.
func (b *PassBase) Initialize(ctx gfx.Context, alpha bool, format gputypes.TextureFormat) error {
	return nil
}

// SetSize records the drawing-buffer size.
func (b *PassBase) SetSize(width, height int) {
	b.width, b.height = width, height
}

// Size returns the last size passed to SetSize.
func (b *PassBase) Size() (width, height int) { return b.width, b.height }

// Dispose is a no-op by default.
func (b *PassBase) Dispose() {}

// Enabled reports whether the pass runs.
func (b *PassBase) Enabled() bool { return b.enabled }

// SetEnabled toggles the pass.
func (b *PassBase) SetEnabled(enabled bool) { b.enabled = enabled }

// NeedsSwap reports whether the buffer pair swaps after this pass.
func (b *PassBase) NeedsSwap() bool { return b.needsSwap }

// SetNeedsSwap changes the swap behavior.
func (b *PassBase) SetNeedsSwap(v bool) { b.needsSwap = v }

// NeedsDepthTexture reports whether this pass reads shared scene depth.
func (b *PassBase) NeedsDepthTexture() bool { return b.needsDepth }

// SetDepthTexture stores the shared depth texture reference.
func (b *PassBase) SetDepthTexture(t gfx.Texture) { b.depthTexture = t }

// DepthTexture returns the shared depth texture, or nil.
func (b *PassBase) DepthTexture() gfx.Texture { return b.depthTexture }

// sceneHolder is implemented by passes bound to the main scene, so the
// Composer can rebind them on SetMainScene.
type sceneHolder interface {
	SetScene(s scene.Scene)
}

// cameraHolder is implemented by passes bound to the main camera.
type cameraHolder interface {
	SetCamera(c scene.Camera)
}
