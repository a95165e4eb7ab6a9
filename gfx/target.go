// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gfx

import (
	"image/color"

	"github.com/gogpu/gputypes"
)

// Texture is a read-only handle to image data owned by a context.
//
// Software textures additionally implement PixelReader (color) or
// DepthReader (depth) for CPU sampling.
type Texture interface {
	// Width returns the texture width in pixels.
	Width() int

	// Height returns the texture height in pixels.
	Height() int

	// Format returns the pixel format.
	Format() gputypes.TextureFormat
}

// PixelReader is implemented by CPU-resident color textures.
type PixelReader interface {
	// RGBAAt returns the color at the given coordinates.
	// Out-of-bounds coordinates return the zero color.
	RGBAAt(x, y int) color.RGBA
}

// DepthReader is implemented by CPU-resident depth textures.
type DepthReader interface {
	// DepthAt returns the normalized depth in [0, 1] at the given
	// coordinates, 0 nearest. Out-of-bounds coordinates return 1.
	DepthAt(x, y int) float32
}

// TargetDescriptor describes parameters for allocating a render target.
type TargetDescriptor struct {
	// Label is an optional debug label.
	Label string

	// Width and Height are the target dimensions in pixels.
	Width  int
	Height int

	// Format is the color attachment format.
	// Zero defaults to RGBA8Unorm.
	Format gputypes.TextureFormat

	// ColorAttachments is the number of simultaneous color attachments.
	// Zero defaults to 1. Values above Capabilities.MaxColorAttachments
	// are rejected with ErrTooManyAttachments.
	ColorAttachments int

	// SampleCount is the MSAA sample count. Zero defaults to 1.
	SampleCount int

	// DepthBuffer allocates a private depth plane.
	DepthBuffer bool

	// StencilBuffer allocates a stencil plane.
	StencilBuffer bool
}

// RenderTarget is a drawable surface with one or more color attachments
// and optional depth and stencil planes.
//
// A target is owned exclusively by whoever allocated it; it is never
// aliased unless explicitly shared (the pipeline's shared depth texture is
// the one sanctioned case, wired through AttachDepth).
type RenderTarget interface {
	// Width returns the target width in pixels.
	Width() int

	// Height returns the target height in pixels.
	Height() int

	// Format returns the color attachment format.
	Format() gputypes.TextureFormat

	// SampleCount returns the MSAA sample count.
	SampleCount() int

	// ColorAttachmentCount returns the number of color attachments.
	ColorAttachmentCount() int

	// ColorTexture returns the texture backing one color attachment,
	// or nil if the index is out of range.
	ColorTexture(index int) Texture

	// DepthTexture returns the depth texture, private or attached,
	// or nil if the target carries no depth plane.
	DepthTexture() Texture

	// AttachDepth shares an externally allocated depth texture with this
	// target, replacing any private depth plane. Passing nil detaches.
	AttachDepth(t Texture) error

	// Resize reallocates all attachments at the new size.
	// Contents are not preserved.
	Resize(width, height int)

	// Dispose releases the target's resources. Idempotent.
	// Attached (shared) depth textures are not disposed.
	Dispose()
}

// PackDepth converts a normalized depth value to the grayscale byte
// convention used by depth-only renders and the combined color+depth
// pass: 0 (nearest) maps to 0, 1 (farthest) to 255. Both the two-pass
// and the single-pass paths use this same packing, so consumers cannot
// tell which produced their depth input.
func PackDepth(depth float32) uint8 {
	if depth <= 0 {
		return 0
	}
	if depth >= 1 {
		return 255
	}
	return uint8(depth*255 + 0.5)
}

// UnpackDepth is the inverse of PackDepth.
func UnpackDepth(b uint8) float32 {
	return float32(b) / 255
}
