// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package scene

import (
	"image"
	"image/color"
	"testing"
)

func TestStageAddRemove(t *testing.T) {
	st := NewStage()
	a, b := NewObject(), NewObject()

	st.Add(a)
	st.Add(b)
	st.Add(a) // duplicate

	if st.Len() != 2 {
		t.Errorf("Len() = %d, want 2", st.Len())
	}

	st.Remove(a)
	if st.Len() != 1 {
		t.Errorf("Len() = %d after Remove, want 1", st.Len())
	}

	var seen []Node
	st.Traverse(func(n Node) { seen = append(seen, n) })
	if len(seen) != 1 || seen[0] != Node(b) {
		t.Errorf("Traverse visited %v, want [b]", seen)
	}
}

func TestStageBackground(t *testing.T) {
	st := NewStage()
	if st.Background() != nil {
		t.Error("new stage should have nil background")
	}

	bg := color.RGBA{R: 20, G: 30, B: 40, A: 255}
	st.SetBackground(bg)
	if st.Background() != color.Color(bg) {
		t.Errorf("Background() = %v, want %v", st.Background(), bg)
	}

	st.SetBackground(nil)
	if st.Background() != nil {
		t.Error("SetBackground(nil) must clear the background")
	}
}

func TestObjectIDsUnique(t *testing.T) {
	a, b := NewObject(), NewObject()
	if a.ID() == b.ID() {
		t.Errorf("two objects share id %d", a.ID())
	}
}

func TestSpriteFootprint(t *testing.T) {
	rect := image.Rect(10, 20, 30, 40)
	s := NewSprite(rect, 0.5, color.RGBA{R: 255, A: 255})

	bounds, depth := s.Footprint()
	if bounds != rect {
		t.Errorf("Footprint bounds = %v, want %v", bounds, rect)
	}
	if depth != 0.5 {
		t.Errorf("Footprint depth = %v, want 0.5", depth)
	}
	if !s.Visible() {
		t.Error("new sprite should be visible")
	}
}

func TestCameraAspect(t *testing.T) {
	cam := NewCamera()
	cam.SetAspect(16.0 / 9.0)
	if got := cam.Aspect(); got != 16.0/9.0 {
		t.Errorf("Aspect() = %v, want %v", got, 16.0/9.0)
	}
	if !cam.Layers().Has(0) {
		t.Error("new camera should see layer 0")
	}
}
