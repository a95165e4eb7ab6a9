// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package outline implements layered outline rendering on top of the
// composer: a shared-resource manager that computes one scene depth
// buffer and one per-layer object mask per frame, and a consumer effect
// that turns a mask into colored, optionally blurred silhouette edges.
//
// Several effects can share a single Manager. Each binds to its own
// layer through RegisterConsumer; the manager guarantees the expensive
// depth render happens at most once per frame no matter how many
// consumers ask for it, and keeps one consumer's objects out of
// another's mask.
package outline

import (
	"fmt"
	"image/color"
	"time"

	"github.com/gogpu/postfx"
	"github.com/gogpu/postfx/gfx"
	"github.com/gogpu/postfx/scene"
)

// DefaultLayer is the layer the manager falls back to when a consumer
// did not mark one current. It always has a Selection.
const DefaultLayer = 10

// Fallback extent used when the manager is asked to render before
// anyone called SetSize.
const defaultMaskSize = 256

// DefaultDedupWindow bounds one frame for depth deduplication: two
// Update calls closer together than this are treated as the same frame.
const DefaultDedupWindow = 16 * time.Millisecond

// Option configures a Manager during creation.
type Option func(*Manager)

// WithDedupWindow overrides the frame deduplication window.
func WithDedupWindow(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.dedupWindow = d
		}
	}
}

// WithResolutionScale renders the depth and mask targets at a fraction
// of the drawing-buffer size.
func WithResolutionScale(scale float64) Option {
	return func(m *Manager) { m.resolution.SetScale(scale) }
}

// WithClock overrides the time source. Tests use it to step frames
// deterministically.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// frameState is the manager's per-frame scratch, reset when the clock
// moves past the dedup window. Holding it here rather than in package
// globals keeps independent managers independent.
type frameState struct {
	start      time.Time
	depthDone  bool
	updated    map[*ConsumerHandle]bool
	reconciled bool
}

// Manager multiplexes one depth render and one mask target across any
// number of layered consumers.
//
// Not safe for concurrent use; drive it from the frame loop goroutine
// like the Composer.
type Manager struct {
	scene  scene.Scene
	camera scene.Camera

	resolution  *postfx.Resolution
	depthTarget gfx.RenderTarget
	maskTarget  gfx.RenderTarget

	selections map[int]*scene.Selection
	consumers  map[*ConsumerHandle]struct{}

	dedupWindow time.Duration
	now         func() time.Time

	needsUpdate  bool
	currentLayer int
	hasCurrent   bool

	frame frameState

	depthRenders int
	maskRenders  int

	warnedDefaultSize bool
	disposed          bool
}

// NewManager creates a manager over s as seen by cam.
func NewManager(s scene.Scene, cam scene.Camera, opts ...Option) *Manager {
	m := &Manager{
		scene:       s,
		camera:      cam,
		resolution:  postfx.NewResolution(1, 1, 1),
		selections:  make(map[int]*scene.Selection),
		consumers:   make(map[*ConsumerHandle]struct{}),
		dedupWindow: DefaultDedupWindow,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.selections[DefaultLayer] = scene.NewSelection(DefaultLayer)
	return m
}

// SelectionForLayer returns the Selection bound to layer, creating it
// on first reference.
func (m *Manager) SelectionForLayer(layer int) *scene.Selection {
	if sel, ok := m.selections[layer]; ok {
		return sel
	}
	sel := scene.NewSelection(layer)
	m.selections[layer] = sel
	return sel
}

// RegisterConsumer binds a new consumer to layer and returns its
// handle. Each layer takes at most one consumer; a second registration
// on the same layer fails.
func (m *Manager) RegisterConsumer(layer int) (*ConsumerHandle, error) {
	if layer < 0 || layer > scene.MaxLayer {
		return nil, fmt.Errorf("outline: layer %d out of range [0, %d]", layer, scene.MaxLayer)
	}
	for h := range m.consumers {
		if h.layer == layer {
			return nil, fmt.Errorf("outline: layer %d already has a consumer", layer)
		}
	}
	m.SelectionForLayer(layer)
	h := &ConsumerHandle{m: m, layer: layer}
	m.consumers[h] = struct{}{}
	return h, nil
}

// SetNeedsUpdate forces the next Update to run even if every selection
// is empty. Call it after emptying a selection so the stale mask gets
// cleared once more.
func (m *Manager) SetNeedsUpdate() { m.needsUpdate = true }

// SetSize informs the manager of the drawing-buffer size.
func (m *Manager) SetSize(width, height int) {
	m.resolution.SetBaseSize(width, height)
	w, h := m.resolution.Width(), m.resolution.Height()
	if m.depthTarget != nil {
		m.depthTarget.Resize(w, h)
	}
	if m.maskTarget != nil {
		m.maskTarget.Resize(w, h)
	}
}

// Resolution returns the manager's target resolution.
func (m *Manager) Resolution() *postfx.Resolution { return m.resolution }

// DepthTexture returns the packed scene depth, or nil before the first
// depth render.
func (m *Manager) DepthTexture() gfx.Texture {
	if m.depthTarget == nil {
		return nil
	}
	return m.depthTarget.ColorTexture(0)
}

// SceneDepthReader returns the raw depth plane of the depth target, or
// nil before the first depth render.
func (m *Manager) SceneDepthReader() gfx.Texture {
	if m.depthTarget == nil {
		return nil
	}
	return m.depthTarget.DepthTexture()
}

// MaskTexture returns the current layer mask, or nil before the first
// mask render.
func (m *Manager) MaskTexture() gfx.Texture {
	if m.maskTarget == nil {
		return nil
	}
	return m.maskTarget.ColorTexture(0)
}

// MaskDepthReader returns the depth plane of the mask target, or nil
// before the first mask render.
func (m *Manager) MaskDepthReader() gfx.Texture {
	if m.maskTarget == nil {
		return nil
	}
	return m.maskTarget.DepthTexture()
}

// DepthRenders returns how many depth renders have run. Tests use it to
// assert the once-per-frame guarantee.
func (m *Manager) DepthRenders() int { return m.depthRenders }

// MaskRenders returns how many mask renders have run.
func (m *Manager) MaskRenders() int { return m.maskRenders }

// Update performs the shared per-frame work: at most one depth render
// per dedup window, then one mask render restricted to the current
// layer (or DefaultLayer when none is marked). Returns false without
// touching the context when every selection is empty and no update was
// forced.
func (m *Manager) Update(ctx gfx.Context, dt float64) (bool, error) {
	if m.disposed {
		return false, postfx.ErrDisposed
	}
	m.rollFrame()

	if !m.needsUpdate && m.allEmpty() {
		return false, nil
	}
	m.needsUpdate = false

	if err := m.ensureTargets(ctx); err != nil {
		return false, fmt.Errorf("outline: %w", err)
	}

	if !m.frame.depthDone {
		if err := m.renderDepth(ctx); err != nil {
			return false, fmt.Errorf("outline: depth render: %w", err)
		}
		m.frame.depthDone = true
	}

	layer := DefaultLayer
	if m.hasCurrent {
		layer = m.currentLayer
		m.hasCurrent = false
	}
	if err := m.renderMask(ctx, layer); err != nil {
		return false, fmt.Errorf("outline: mask render: %w", err)
	}
	return true, nil
}

// ClearUnused removes, from every layer except exceptLayer, members not
// present in active. Pass a negative exceptLayer to reconcile all
// layers. Consumers that stop selecting an object without an explicit
// Remove are reconciled here.
func (m *Manager) ClearUnused(active []scene.Node, exceptLayer int) {
	keep := make(map[scene.Node]bool, len(active))
	for _, n := range active {
		keep[n] = true
	}
	for layer, sel := range m.selections {
		if layer == exceptLayer {
			continue
		}
		for _, n := range sel.Nodes() {
			if !keep[n] {
				sel.Remove(n)
			}
		}
	}
}

// Dispose releases the render targets. Idempotent.
func (m *Manager) Dispose() {
	if m.disposed {
		return
	}
	if m.depthTarget != nil {
		m.depthTarget.Dispose()
		m.depthTarget = nil
	}
	if m.maskTarget != nil {
		m.maskTarget.Dispose()
		m.maskTarget = nil
	}
	m.disposed = true
}

// rollFrame resets the per-frame state when the clock left the dedup
// window.
func (m *Manager) rollFrame() {
	now := m.now()
	if now.Sub(m.frame.start) <= m.dedupWindow {
		return
	}
	m.frame = frameState{
		start:   now,
		updated: make(map[*ConsumerHandle]bool),
	}
}

func (m *Manager) allEmpty() bool {
	for _, sel := range m.selections {
		if !sel.Empty() {
			return false
		}
	}
	return true
}

// ensureTargets lazily allocates the depth and mask targets. A manager
// that was never sized falls back to defaultMaskSize with a warning
// rather than failing the frame.
func (m *Manager) ensureTargets(ctx gfx.Context) error {
	w, h := m.resolution.Width(), m.resolution.Height()
	if w <= 1 || h <= 1 {
		if !m.warnedDefaultSize {
			postfx.Logger().Warn("outline manager never sized, using default extent",
				"extent", defaultMaskSize)
			m.warnedDefaultSize = true
		}
		w, h = defaultMaskSize, defaultMaskSize
	}
	if m.depthTarget == nil {
		t, err := ctx.NewTarget(gfx.TargetDescriptor{
			Label:       "outline-depth",
			Width:       w,
			Height:      h,
			DepthBuffer: true,
		})
		if err != nil {
			return err
		}
		m.depthTarget = t
	}
	if m.maskTarget == nil {
		t, err := ctx.NewTarget(gfx.TargetDescriptor{
			Label:       "outline-mask",
			Width:       w,
			Height:      h,
			DepthBuffer: true,
		})
		if err != nil {
			return err
		}
		m.maskTarget = t
	}
	return nil
}

// renderDepth captures the scene depth with every selected object
// hidden, so outlines can later tell visible silhouette pixels from
// occluded ones. Visibility and background are restored on every exit
// path; later passes in the frame read that shared state.
//
// Visibility is snapshotted once at the manager level rather than per
// Selection: a node selected in several layers is visited several
// times, and only the first visit may record its prior state.
func (m *Manager) renderDepth(ctx gfx.Context) error {
	saved := make(map[scene.Node]bool)
	for _, sel := range m.selections {
		sel.ForEach(func(n scene.Node) {
			if _, ok := saved[n]; !ok {
				saved[n] = n.Visible()
			}
			n.SetVisible(false)
		})
	}
	defer func() {
		for n, visible := range saved {
			n.SetVisible(visible)
		}
	}()

	bg := m.scene.Background()
	m.scene.SetBackground(nil)
	defer m.scene.SetBackground(bg)

	if err := ctx.Clear(m.depthTarget, gfx.ClearOptions{ClearColor: true, ClearDepth: true}); err != nil {
		return err
	}
	if err := ctx.RenderScene(m.scene, m.camera, m.depthTarget, gfx.SceneOptions{DepthOnly: true}); err != nil {
		return err
	}
	m.depthRenders++
	return nil
}

// renderMask draws the selected objects of exactly one layer, flat
// white, by narrowing the camera to that layer for the duration of the
// draw.
func (m *Manager) renderMask(ctx gfx.Context, layer int) error {
	saved := m.camera.Layers().Mask()
	m.camera.Layers().SetMask(1 << uint(layer))
	defer m.camera.Layers().SetMask(saved)

	bg := m.scene.Background()
	m.scene.SetBackground(nil)
	defer m.scene.SetBackground(bg)

	if err := ctx.Clear(m.maskTarget, gfx.ClearOptions{ClearColor: true, ClearDepth: true}); err != nil {
		return err
	}
	opts := gfx.SceneOptions{
		OverrideColor: color.RGBA{R: 255, G: 255, B: 255, A: 255},
		NoBackground:  true,
	}
	if err := ctx.RenderScene(m.scene, m.camera, m.maskTarget, opts); err != nil {
		return err
	}
	m.maskRenders++
	return nil
}

// reconcile drops members of every layer that no registered consumer
// currently selects. Runs once per frame, after the last registered
// consumer's update.
func (m *Manager) reconcile() {
	var active []scene.Node
	for h := range m.consumers {
		active = append(active, m.SelectionForLayer(h.layer).Nodes()...)
	}
	m.ClearUnused(active, -1)
}

// ConsumerHandle is one consumer's registration with a Manager.
// Consumers keep the handle and call Update once per frame; Close
// unregisters.
type ConsumerHandle struct {
	m      *Manager
	layer  int
	closed bool
}

// Layer returns the consumer's layer id.
func (h *ConsumerHandle) Layer() int { return h.layer }

// Selection returns the manager Selection for this consumer's layer.
func (h *ConsumerHandle) Selection() *scene.Selection {
	return h.m.SelectionForLayer(h.layer)
}

// Update marks this consumer's layer current and runs the manager's
// shared update. After the last registered consumer updates in a frame,
// stale members are reconciled out of every layer.
func (h *ConsumerHandle) Update(ctx gfx.Context, dt float64) (bool, error) {
	if h.closed {
		return false, postfx.ErrDisposed
	}
	m := h.m
	m.rollFrame()
	m.currentLayer = h.layer
	m.hasCurrent = true

	updated, err := m.Update(ctx, dt)

	m.frame.updated[h] = true
	if !m.frame.reconciled && len(m.frame.updated) >= len(m.consumers) {
		m.reconcile()
		m.frame.reconciled = true
	}
	return updated, err
}

// Close unregisters the consumer. Its layer's leftover members are
// reconciled away on the next frame. Idempotent.
func (h *ConsumerHandle) Close() {
	if h.closed {
		return
	}
	h.closed = true
	delete(h.m.consumers, h)
}
