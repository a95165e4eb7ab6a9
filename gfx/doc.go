// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package gfx provides the graphics-context abstraction the postfx
// pipeline renders through.
//
// A Context owns capability queries, render-target allocation, fullscreen
// shader draws, scene draws, and pixel read-back. Two implementations
// exist:
//
//   - SoftwareContext (this package): a complete CPU implementation used
//     as the default backend and by the test suite.
//   - backend/wgpu: a GPU-backed context built on github.com/gogpu/wgpu.
//
// Targets may carry several color attachments; Capabilities reports how
// many the context supports simultaneously, which gates the pipeline's
// combined color+depth optimization.
//
// Shaders carry WGSL source for GPU contexts plus a FragmentFunc fallback
// the software context evaluates per pixel. Define changes never recompile
// implicitly: callers mark the shader dirty and Rebuild runs once before
// the next draw.
package gfx
