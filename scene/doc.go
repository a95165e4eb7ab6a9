// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package scene defines the 3D-engine collaborator abstractions consumed by
// the postfx pipeline: a Scene that can be traversed, a Camera with an
// integer layer-visibility mask, and Nodes with per-node visibility.
//
// The pipeline never owns the scene graph; it only reads traversal and
// visibility state and temporarily narrows camera layer visibility while
// rendering shared depth and mask targets. Host engines adapt their own
// scene types to these interfaces.
//
// The package also ships small in-memory implementations (Stage, Object,
// Sprite, SimpleCamera) that back the software rendering context and the
// test suite. They are intentionally minimal: a Sprite is a screen-space
// rectangle with a depth value, which is all the software rasterizer needs.
package scene
