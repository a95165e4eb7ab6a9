// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gfx

import (
	"context"
	"errors"
	"image/color"
	"log/slog"

	"github.com/gogpu/gpucontext"

	"github.com/gogpu/postfx/scene"
)

// Common context errors.
var (
	// ErrInvalidDimensions is returned for zero or negative target sizes.
	ErrInvalidDimensions = errors.New("gfx: invalid dimensions")

	// ErrTooManyAttachments is returned when a target descriptor asks for
	// more simultaneous color attachments than the context supports.
	ErrTooManyAttachments = errors.New("gfx: too many color attachments")

	// ErrNilTarget is returned when a draw is issued against a nil target.
	ErrNilTarget = errors.New("gfx: nil render target")

	// ErrNilShader is returned when a fullscreen draw has no shader.
	ErrNilShader = errors.New("gfx: nil shader")

	// ErrNoSuchAttachment is returned by ReadPixels for a missing attachment.
	ErrNoSuchAttachment = errors.New("gfx: no such attachment")
)

// DeviceHandle provides GPU device access from the host application.
//
// Hosts that already own a GPU device (a gogpu window, for example) pass it
// to GPU-backed contexts through this interface so postfx never creates a
// second device. It is an alias for gpucontext.DeviceProvider, keeping
// postfx compatible with the gpucontext ecosystem.
type DeviceHandle = gpucontext.DeviceProvider

// Capabilities describes the hardware features of a context.
//
// The values are raw context facts. Whether a feature is actually usable
// is decided by the pipeline's capability classification plus a functional
// probe, since an advertised limit can be present without working support.
type Capabilities struct {
	// MaxColorAttachments is the number of simultaneous color attachments
	// a render target may carry. 1 means no multi-target rendering.
	MaxColorAttachments int

	// MaxSamples is the highest supported MSAA sample count.
	MaxSamples int

	// MaxTextureSize is the maximum texture dimension in pixels.
	MaxTextureSize int
}

// ClearOptions selects which target planes a Clear touches.
type ClearOptions struct {
	// Color is the clear color applied to every color attachment.
	// A nil Color with ClearColor set clears to transparent black.
	Color color.Color

	// ClearColor clears the color attachments.
	ClearColor bool

	// ClearDepth resets the depth plane to the far value.
	ClearDepth bool

	// ClearStencil zeroes the stencil plane.
	ClearStencil bool
}

// BlendMode selects how a fullscreen draw combines with existing content.
type BlendMode uint8

const (
	// BlendNone overwrites the destination.
	BlendNone BlendMode = iota

	// BlendOver applies source-over alpha compositing.
	BlendOver

	// BlendAdd adds the source to the destination, clamped.
	BlendAdd
)

// DrawOptions modifies a fullscreen shader draw.
type DrawOptions struct {
	// Blend selects the compositing mode against the destination.
	Blend BlendMode

	// StencilTest restricts writes to pixels with a nonzero stencil value.
	// Ignored when the destination has no stencil plane.
	StencilTest bool
}

// SceneOptions modifies a scene draw.
type SceneOptions struct {
	// DepthOnly writes normalized scene depth into color attachment 0 as
	// grayscale (see PackDepth) instead of node colors.
	DepthOnly bool

	// DepthToAttachment additionally writes packed depth into color
	// attachment 1. Requires a target with at least two attachments.
	DepthToAttachment bool

	// StencilWrite marks covered pixels in the stencil plane and leaves
	// the color attachments untouched.
	StencilWrite bool

	// OverrideColor draws every node in a flat color. Used for mask
	// renders where only coverage matters.
	OverrideColor color.Color

	// NoBackground skips the scene background fill even when one is set.
	NoBackground bool
}

// Context is the rendering surface the pipeline draws through.
//
// Contexts are frame-synchronous: every method completes its work before
// returning, and no call may overlap another. The pipeline serializes all
// access from a single goroutine.
type Context interface {
	// Capabilities returns the context's hardware capabilities.
	// The result is stable for the lifetime of the context.
	Capabilities() Capabilities

	// DrawingBufferSize returns the size of the context's output surface.
	DrawingBufferSize() (width, height int)

	// NewTarget allocates a render target.
	NewTarget(desc TargetDescriptor) (RenderTarget, error)

	// NewDepthTexture allocates a standalone depth texture that can be
	// attached to targets via RenderTarget.AttachDepth.
	NewDepthTexture(width, height int) (Texture, error)

	// Clear wipes the selected planes of dst.
	Clear(dst RenderTarget, opts ClearOptions) error

	// DrawFullscreen evaluates sh over every pixel of dst, sampling the
	// given input textures. If sh is dirty it is rebuilt first.
	DrawFullscreen(sh *Shader, inputs []Texture, dst RenderTarget, opts DrawOptions) error

	// RenderScene draws sc as seen by cam into dst.
	RenderScene(sc scene.Scene, cam scene.Camera, dst RenderTarget, opts SceneOptions) error

	// Blit copies src into attachment 0 of dst, scaling if the sizes
	// differ. It is the cheap copy-only draw used when a multi-attachment
	// pass must feed a single-attachment consumer.
	Blit(src Texture, dst RenderTarget) error

	// ReadPixels returns a copy of the pixel bytes of one color
	// attachment, RGBA, 4 bytes per pixel, row by row.
	ReadPixels(src RenderTarget, attachment int) ([]byte, error)

	// Dispose releases all context resources. Idempotent.
	Dispose()
}

// LoggerSetter is implemented by contexts that accept a logger.
// postfx.SetLogger propagates through it.
type LoggerSetter interface {
	SetLogger(*slog.Logger)
}

// nopHandler discards all log records. Enabled returns false so callers
// skip formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler { return nopHandler{} }

// NopLogger returns a logger that silently discards all output.
// It is the default for contexts and for the postfx package logger.
func NopLogger() *slog.Logger { return slog.New(nopHandler{}) }
