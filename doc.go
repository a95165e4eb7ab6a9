// Package postfx is a frame-synchronous rendering pass pipeline.
//
// A Composer owns an ordered chain of passes and a pair of ping-pong
// color buffers. Each frame, Composer.Render feeds every enabled pass the
// current input/output buffer pair and swaps the pair after passes that
// report NeedsSwap, so a pass always reads what the previous pass wrote.
//
// Built-in passes cover the common chain stages: ClearPass, CopyPass,
// ShaderPass (fullscreen effects with define-driven variants), ScenePass
// (draws the host scene into the pipeline), DepthPass (captures scene
// depth into a private target), MaskPass/ClearMaskPass (stencil-scoped
// composition), and MultiTargetPass (the capability-gated single-draw
// color+depth alternative the Composer substitutes transparently when
// the context supports multiple simultaneous render targets).
//
// The outline sub-package multiplexes one expensive depth/mask
// computation across many layered consumer effects; see outline.Manager.
//
// Rendering goes through the gfx.Context abstraction. The software
// context works everywhere; GPU contexts are selected through the
// backend registry:
//
//	import _ "github.com/gogpu/postfx/backend/software"
//
//	ctx, _ := backend.Default().NewContext(1280, 720)
//	composer, _ := postfx.NewComposer(ctx)
//	composer.AddPass(postfx.NewScenePass(sc, cam))
//	composer.AddPass(postfx.NewCopyPass())
//	composer.Render(dt)
//
// Nothing in this package panics across the Render boundary: a failing
// pass is logged and skipped for the frame, degrading output quality
// instead of stopping the loop.
package postfx
