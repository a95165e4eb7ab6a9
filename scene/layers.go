// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package scene

// MaxLayer is the highest addressable layer id. Layers are bits in a
// 32-bit mask, so valid ids are 0 through 31.
const MaxLayer = 31

// Layers is a 32-bit layer-visibility mask.
//
// A camera renders a node when the two masks share at least one set bit.
// Layer ids partition objects between consumers that share one physical
// render target: each outline consumer claims a distinct layer, and the
// mask render narrows the camera to exactly that layer.
//
// The zero value has only layer 0 enabled once Reset is called; a freshly
// constructed Layers via NewLayers starts on layer 0.
type Layers struct {
	mask uint32
}

// NewLayers returns a mask with only layer 0 enabled.
func NewLayers() *Layers {
	return &Layers{mask: 1}
}

// Set replaces the mask with only the given layer.
// Out-of-range layers are ignored.
func (l *Layers) Set(layer int) {
	if layer < 0 || layer > MaxLayer {
		return
	}
	l.mask = 1 << uint(layer)
}

// Enable turns the given layer bit on.
func (l *Layers) Enable(layer int) {
	if layer < 0 || layer > MaxLayer {
		return
	}
	l.mask |= 1 << uint(layer)
}

// Disable turns the given layer bit off.
func (l *Layers) Disable(layer int) {
	if layer < 0 || layer > MaxLayer {
		return
	}
	l.mask &^= 1 << uint(layer)
}

// Toggle flips the given layer bit.
func (l *Layers) Toggle(layer int) {
	if layer < 0 || layer > MaxLayer {
		return
	}
	l.mask ^= 1 << uint(layer)
}

// Test reports whether this mask and other share at least one layer.
func (l *Layers) Test(other *Layers) bool {
	return l.mask&other.mask != 0
}

// Has reports whether the given layer bit is set.
func (l *Layers) Has(layer int) bool {
	if layer < 0 || layer > MaxLayer {
		return false
	}
	return l.mask&(1<<uint(layer)) != 0
}

// Mask returns the raw bitmask.
func (l *Layers) Mask() uint32 {
	return l.mask
}

// SetMask replaces the raw bitmask. Used by the save-restore protocol
// around shared depth/mask renders.
func (l *Layers) SetMask(mask uint32) {
	l.mask = mask
}

// Reset restores the default state (only layer 0 enabled).
func (l *Layers) Reset() {
	l.mask = 1
}
