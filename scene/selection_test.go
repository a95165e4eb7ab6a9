// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package scene

import "testing"

func TestSelectionAddEnablesLayer(t *testing.T) {
	sel := NewSelection(10)
	n := NewObject()

	sel.Add(n)

	if !sel.Has(n) {
		t.Error("Has(n) = false after Add")
	}
	if !n.Layers().Has(10) {
		t.Error("Add must enable the selection layer on the node")
	}
}

func TestSelectionAddIdempotent(t *testing.T) {
	sel := NewSelection(1)
	n := NewObject()

	sel.Add(n)
	sel.Add(n)

	if sel.Size() != 1 {
		t.Errorf("Size() = %d after duplicate Add, want 1", sel.Size())
	}
}

func TestSelectionRemoveDisablesLayer(t *testing.T) {
	sel := NewSelection(2)
	n := NewObject()
	sel.Add(n)

	if !sel.Remove(n) {
		t.Fatal("Remove returned false for a member")
	}
	if n.Layers().Has(2) {
		t.Error("Remove must disable the selection layer on the node")
	}
	if sel.Remove(n) {
		t.Error("Remove of a non-member should return false")
	}
}

func TestSelectionToggle(t *testing.T) {
	sel := NewSelection(3)
	n := NewObject()

	if !sel.Toggle(n) {
		t.Error("first Toggle should add and return true")
	}
	if sel.Toggle(n) {
		t.Error("second Toggle should remove and return false")
	}
	if sel.Size() != 0 {
		t.Errorf("Size() = %d after add+remove toggle, want 0", sel.Size())
	}
}

func TestSelectionOrder(t *testing.T) {
	sel := NewSelection(0)
	a, b, c := NewObject(), NewObject(), NewObject()
	sel.Add(a)
	sel.Add(b)
	sel.Add(c)
	sel.Remove(b)

	nodes := sel.Nodes()
	if len(nodes) != 2 || nodes[0] != Node(a) || nodes[1] != Node(c) {
		t.Errorf("Nodes() order = %v, want [a c]", nodes)
	}
}

func TestSelectionSetLayerMigratesMembers(t *testing.T) {
	sel := NewSelection(4)
	n := NewObject()
	sel.Add(n)

	sel.SetLayer(6)

	if n.Layers().Has(4) {
		t.Error("old layer still enabled after SetLayer")
	}
	if !n.Layers().Has(6) {
		t.Error("new layer not enabled after SetLayer")
	}
	if sel.Layer() != 6 {
		t.Errorf("Layer() = %d, want 6", sel.Layer())
	}
}

func TestSelectionMembershipIndependent(t *testing.T) {
	a := NewSelection(1)
	b := NewSelection(2)
	n := NewObject()

	a.Add(n)
	b.Add(n)
	a.Remove(n)

	if !b.Has(n) {
		t.Error("removing from one selection must not affect another")
	}
	if !n.Layers().Has(2) {
		t.Error("layer 2 must survive removal from the layer-1 selection")
	}
}

func TestSelectionHideShowRestoresVisibility(t *testing.T) {
	sel := NewSelection(0)
	shown := NewObject()
	hidden := NewObject()
	hidden.SetVisible(false)
	sel.Add(shown)
	sel.Add(hidden)

	sel.Hide()
	if shown.Visible() || hidden.Visible() {
		t.Fatal("Hide must make every member invisible")
	}

	sel.Show()
	if !shown.Visible() {
		t.Error("Show must restore a previously visible node")
	}
	if hidden.Visible() {
		t.Error("Show must keep a previously hidden node hidden")
	}
}

func TestSelectionDoubleHideKeepsFirstSnapshot(t *testing.T) {
	sel := NewSelection(0)
	n := NewObject()
	sel.Add(n)

	sel.Hide()
	sel.Hide()
	sel.Show()

	if !n.Visible() {
		t.Error("double Hide must not overwrite the saved visibility")
	}
}

func TestSelectionClear(t *testing.T) {
	sel := NewSelection(5)
	n := NewObject()
	sel.Add(n)

	sel.Clear()

	if !sel.Empty() {
		t.Error("Empty() = false after Clear")
	}
	if n.Layers().Has(5) {
		t.Error("Clear must disable the selection layer on former members")
	}
}
