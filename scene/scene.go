// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package scene

import (
	"image"
	"image/color"
	"sync/atomic"
)

// Node is one entry in a host scene graph.
//
// The pipeline toggles visibility during shared depth renders and tags
// nodes with layer bits through Selections; everything else about a node
// belongs to the host engine.
//
// Node implementations must be comparable (pointer types are), since
// Selections key membership and saved visibility by node identity.
type Node interface {
	// ID returns a stable identifier for the node, unique within its scene.
	ID() uint64

	// Visible reports whether the node is currently rendered.
	Visible() bool

	// SetVisible shows or hides the node.
	SetVisible(visible bool)

	// Layers returns the node's layer mask. The returned value is live:
	// enabling a layer on it immediately affects camera visibility tests.
	Layers() *Layers
}

// Scene is the host scene abstraction: traversal plus a clearable
// background. The shared depth and mask renders null the background and
// restore it afterwards, so SetBackground must accept nil.
type Scene interface {
	// Traverse visits every node in the scene in a stable order.
	Traverse(fn func(Node))

	// Background returns the current background color, or nil if none.
	Background() color.Color

	// SetBackground replaces the background. nil disables it.
	SetBackground(c color.Color)
}

// Camera is the host camera abstraction. The pipeline needs only the
// layer-visibility mask and the ability to keep projection in step with
// target resizes.
type Camera interface {
	// Layers returns the camera's live layer-visibility mask.
	Layers() *Layers

	// SetAspect updates the projection aspect ratio after a resize.
	SetAspect(aspect float64)
}

// Footprinted is an optional Node extension for software rasterization.
// A node reporting a screen-space footprint can be drawn by the software
// context without any projection math.
type Footprinted interface {
	// Footprint returns the node's screen-space bounding rectangle and a
	// normalized depth in [0, 1] (0 = nearest).
	Footprint() (bounds image.Rectangle, depth float32)

	// Color returns the node's flat draw color.
	Color() color.RGBA
}

// nextObjectID hands out scene-wide unique node ids.
var nextObjectID atomic.Uint64

// Object is a minimal concrete Node.
type Object struct {
	id      uint64
	visible bool
	layers  *Layers
}

// NewObject creates a visible node on layer 0.
func NewObject() *Object {
	return &Object{
		id:      nextObjectID.Add(1),
		visible: true,
		layers:  NewLayers(),
	}
}

// ID returns the node's unique id.
func (o *Object) ID() uint64 { return o.id }

// Visible reports whether the node is rendered.
func (o *Object) Visible() bool { return o.visible }

// SetVisible shows or hides the node.
func (o *Object) SetVisible(visible bool) { o.visible = visible }

// Layers returns the node's live layer mask.
func (o *Object) Layers() *Layers { return o.layers }

// Sprite is an Object with a screen-space footprint, drawable by the
// software context. Depth is normalized to [0, 1], 0 nearest.
type Sprite struct {
	Object
	Bounds image.Rectangle
	Depth  float32
	Fill   color.RGBA
}

// NewSprite creates a visible sprite covering bounds at the given depth.
func NewSprite(bounds image.Rectangle, depth float32, fill color.RGBA) *Sprite {
	s := &Sprite{
		Bounds: bounds,
		Depth:  depth,
		Fill:   fill,
	}
	s.Object = *NewObject()
	return s
}

// Footprint returns the sprite's screen rectangle and depth.
func (s *Sprite) Footprint() (image.Rectangle, float32) {
	return s.Bounds, s.Depth
}

// Color returns the sprite's fill color.
func (s *Sprite) Color() color.RGBA { return s.Fill }

// Ensure Sprite satisfies the optional rasterization interface.
var _ Footprinted = (*Sprite)(nil)

// Stage is a flat in-memory Scene implementation.
type Stage struct {
	nodes      []Node
	background color.Color
}

// NewStage creates an empty scene with no background.
func NewStage() *Stage {
	return &Stage{}
}

// Add appends a node to the stage. Adding the same node twice is a no-op.
func (s *Stage) Add(n Node) {
	for _, existing := range s.nodes {
		if existing == n {
			return
		}
	}
	s.nodes = append(s.nodes, n)
}

// Remove deletes a node from the stage.
func (s *Stage) Remove(n Node) {
	for i, existing := range s.nodes {
		if existing == n {
			s.nodes = append(s.nodes[:i], s.nodes[i+1:]...)
			return
		}
	}
}

// Len returns the number of nodes on the stage.
func (s *Stage) Len() int { return len(s.nodes) }

// Traverse visits nodes in insertion order.
func (s *Stage) Traverse(fn func(Node)) {
	for _, n := range s.nodes {
		fn(n)
	}
}

// Background returns the stage background, or nil.
func (s *Stage) Background() color.Color { return s.background }

// SetBackground replaces the stage background. nil disables it.
func (s *Stage) SetBackground(c color.Color) { s.background = c }

// SimpleCamera is a minimal concrete Camera.
type SimpleCamera struct {
	layers *Layers
	aspect float64
}

// NewCamera creates a camera seeing layer 0 with square aspect.
func NewCamera() *SimpleCamera {
	return &SimpleCamera{
		layers: NewLayers(),
		aspect: 1,
	}
}

// Layers returns the camera's live layer mask.
func (c *SimpleCamera) Layers() *Layers { return c.layers }

// SetAspect records the projection aspect ratio.
func (c *SimpleCamera) SetAspect(aspect float64) { c.aspect = aspect }

// Aspect returns the last aspect ratio set.
func (c *SimpleCamera) Aspect() float64 { return c.aspect }

var (
	_ Scene  = (*Stage)(nil)
	_ Camera = (*SimpleCamera)(nil)
	_ Node   = (*Object)(nil)
)
