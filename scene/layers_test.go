// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package scene

import "testing"

func TestLayersDefault(t *testing.T) {
	l := NewLayers()
	if !l.Has(0) {
		t.Error("new Layers should have layer 0 enabled")
	}
	if l.Mask() != 1 {
		t.Errorf("Mask() = %#x, want 0x1", l.Mask())
	}
}

func TestLayersSet(t *testing.T) {
	l := NewLayers()
	l.Set(5)
	if !l.Has(5) {
		t.Error("Has(5) = false after Set(5)")
	}
	if l.Has(0) {
		t.Error("Set must replace the mask, layer 0 still enabled")
	}
}

func TestLayersEnableDisable(t *testing.T) {
	l := NewLayers()
	l.Enable(3)
	if !l.Has(0) || !l.Has(3) {
		t.Errorf("mask = %#x, want layers 0 and 3", l.Mask())
	}
	l.Disable(0)
	if l.Has(0) {
		t.Error("Has(0) = true after Disable(0)")
	}
	if !l.Has(3) {
		t.Error("Disable(0) must not touch layer 3")
	}
}

func TestLayersToggle(t *testing.T) {
	l := NewLayers()
	l.Toggle(7)
	if !l.Has(7) {
		t.Error("Toggle(7) should enable layer 7")
	}
	l.Toggle(7)
	if l.Has(7) {
		t.Error("second Toggle(7) should disable layer 7")
	}
}

func TestLayersTest(t *testing.T) {
	a := NewLayers()
	b := NewLayers()
	b.Set(4)
	if a.Test(b) {
		t.Error("disjoint masks should not test true")
	}
	a.Enable(4)
	if !a.Test(b) {
		t.Error("masks sharing layer 4 should test true")
	}
}

func TestLayersOutOfRange(t *testing.T) {
	l := NewLayers()
	before := l.Mask()
	l.Set(32)
	l.Enable(-1)
	l.Disable(99)
	l.Toggle(40)
	if l.Mask() != before {
		t.Errorf("out-of-range ops changed mask: %#x, want %#x", l.Mask(), before)
	}
	if l.Has(32) || l.Has(-1) {
		t.Error("Has must report false for out-of-range layers")
	}
}

func TestLayersSetMaskRoundTrip(t *testing.T) {
	l := NewLayers()
	saved := l.Mask()
	l.Set(9)
	l.SetMask(saved)
	if l.Mask() != saved {
		t.Errorf("restored mask = %#x, want %#x", l.Mask(), saved)
	}
}
