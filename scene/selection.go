// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package scene

// Selection is an ordered set of nodes tagged with one layer id.
//
// Adding a node enables the selection's layer bit on that node, so a camera
// narrowed to the layer sees exactly the selected nodes. Membership is
// independent across selections: one node may belong to several selections
// at once, and exclusivity across consumers is the caller's responsibility.
//
// Hide and Show implement bulk visibility save-and-restore: Hide remembers
// each node's prior visibility and Show puts it back, so temporarily hidden
// nodes come back in whatever state they were in, not unconditionally
// visible.
type Selection struct {
	layer   int
	nodes   []Node
	member  map[Node]struct{}
	wasSeen map[Node]bool // visibility saved by Hide, consumed by Show
}

// NewSelection creates a selection bound to the given layer, pre-populated
// with nodes. Out-of-range layers are clamped into [0, MaxLayer].
func NewSelection(layer int, nodes ...Node) *Selection {
	s := &Selection{
		layer:   clampLayer(layer),
		member:  make(map[Node]struct{}),
		wasSeen: make(map[Node]bool),
	}
	for _, n := range nodes {
		s.Add(n)
	}
	return s
}

func clampLayer(layer int) int {
	if layer < 0 {
		return 0
	}
	if layer > MaxLayer {
		return MaxLayer
	}
	return layer
}

// Layer returns the selection's layer id.
func (s *Selection) Layer() int { return s.layer }

// SetLayer moves the selection to a new layer, migrating the layer bit on
// every member.
func (s *Selection) SetLayer(layer int) {
	layer = clampLayer(layer)
	if layer == s.layer {
		return
	}
	for _, n := range s.nodes {
		n.Layers().Disable(s.layer)
		n.Layers().Enable(layer)
	}
	s.layer = layer
}

// Add inserts a node and enables the selection's layer on it.
// Adding a member twice is a no-op, preserving order.
func (s *Selection) Add(n Node) {
	if n == nil {
		return
	}
	if _, ok := s.member[n]; ok {
		return
	}
	s.member[n] = struct{}{}
	s.nodes = append(s.nodes, n)
	n.Layers().Enable(s.layer)
}

// Remove deletes a node and disables the selection's layer on it.
// Returns true if the node was a member.
func (s *Selection) Remove(n Node) bool {
	if _, ok := s.member[n]; !ok {
		return false
	}
	delete(s.member, n)
	delete(s.wasSeen, n)
	for i, existing := range s.nodes {
		if existing == n {
			s.nodes = append(s.nodes[:i], s.nodes[i+1:]...)
			break
		}
	}
	n.Layers().Disable(s.layer)
	return true
}

// Toggle adds the node if absent, removes it if present.
// Returns true if the node is a member afterwards.
func (s *Selection) Toggle(n Node) bool {
	if s.Has(n) {
		s.Remove(n)
		return false
	}
	s.Add(n)
	return true
}

// Has reports membership.
func (s *Selection) Has(n Node) bool {
	_, ok := s.member[n]
	return ok
}

// Size returns the number of members.
func (s *Selection) Size() int { return len(s.nodes) }

// Empty reports whether the selection has no members.
func (s *Selection) Empty() bool { return len(s.nodes) == 0 }

// Nodes returns the members in insertion order. The slice is a copy.
func (s *Selection) Nodes() []Node {
	out := make([]Node, len(s.nodes))
	copy(out, s.nodes)
	return out
}

// ForEach visits members in insertion order.
func (s *Selection) ForEach(fn func(Node)) {
	for _, n := range s.nodes {
		fn(n)
	}
}

// Clear removes all members, disabling the selection's layer on each.
// Saved visibility state is dropped.
func (s *Selection) Clear() {
	for _, n := range s.nodes {
		n.Layers().Disable(s.layer)
	}
	s.nodes = s.nodes[:0]
	clear(s.member)
	clear(s.wasSeen)
}

// Hide makes every member invisible, remembering prior visibility.
// Calling Hide twice without an intervening Show keeps the first snapshot.
func (s *Selection) Hide() {
	for _, n := range s.nodes {
		if _, saved := s.wasSeen[n]; !saved {
			s.wasSeen[n] = n.Visible()
		}
		n.SetVisible(false)
	}
}

// Show restores the visibility each member had before Hide.
// Members added after Hide are left untouched.
func (s *Selection) Show() {
	for _, n := range s.nodes {
		if visible, saved := s.wasSeen[n]; saved {
			n.SetVisible(visible)
			delete(s.wasSeen, n)
		}
	}
}
