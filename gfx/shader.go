// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gfx

import (
	"image/color"
	"sort"
	"strings"
)

// FragmentFunc is the CPU evaluation of a fullscreen shader: given the
// output pixel coordinates and the bound input textures, return the output
// color. The software context calls it once per pixel.
type FragmentFunc func(x, y int, inputs []Texture) color.RGBA

// Shader is a fullscreen processing program.
//
// GPU contexts compile Source (WGSL) with the current define set; the
// software context evaluates the FragmentFunc instead. Both views of the
// shader must implement the same math.
//
// Mutating a define never triggers a recompile by itself: setters only
// mark the shader dirty, and Rebuild runs exactly once before the next
// draw (DrawFullscreen calls it when needed). GPU contexts key compiled
// variants by VariantKey.
type Shader struct {
	name     string
	source   string
	fragment FragmentFunc

	defines  map[string]string
	uniforms map[string]float32

	dirty   bool
	version uint64
}

// NewShader creates a shader from WGSL source and its CPU fallback.
// Either may be empty/nil when a context is known to never need it.
func NewShader(name, source string, fragment FragmentFunc) *Shader {
	return &Shader{
		name:     name,
		source:   source,
		fragment: fragment,
		defines:  make(map[string]string),
		uniforms: make(map[string]float32),
	}
}

// Name returns the shader's debug name.
func (s *Shader) Name() string { return s.name }

// Source returns the WGSL source.
func (s *Shader) Source() string { return s.source }

// Fragment returns the CPU fallback, or nil.
func (s *Shader) Fragment() FragmentFunc { return s.fragment }

// SetDefine sets a preprocessor define and marks the shader dirty if the
// value changed.
func (s *Shader) SetDefine(key, value string) {
	if old, ok := s.defines[key]; ok && old == value {
		return
	}
	s.defines[key] = value
	s.MarkDirty()
}

// RemoveDefine deletes a define and marks the shader dirty if it existed.
func (s *Shader) RemoveDefine(key string) {
	if _, ok := s.defines[key]; !ok {
		return
	}
	delete(s.defines, key)
	s.MarkDirty()
}

// Define returns a define's value and whether it is set.
func (s *Shader) Define(key string) (string, bool) {
	v, ok := s.defines[key]
	return v, ok
}

// SetUniform sets a scalar uniform. Uniform changes never dirty the
// shader; they are per-draw data, not variant state.
func (s *Shader) SetUniform(key string, value float32) {
	s.uniforms[key] = value
}

// Uniform returns a uniform's value, or 0 if unset.
func (s *Shader) Uniform(key string) float32 {
	return s.uniforms[key]
}

// MarkDirty flags the shader for a rebuild before the next draw.
func (s *Shader) MarkDirty() { s.dirty = true }

// Dirty reports whether a rebuild is pending.
func (s *Shader) Dirty() bool { return s.dirty }

// Rebuild clears the dirty flag and bumps the variant version. Contexts
// call it once per pending change set, immediately before drawing.
func (s *Shader) Rebuild() {
	if !s.dirty {
		return
	}
	s.dirty = false
	s.version++
}

// Version returns the rebuild counter. GPU contexts drop stale compiled
// variants when the version moves.
func (s *Shader) Version() uint64 { return s.version }

// VariantKey returns a stable cache key for the current define set.
// Equal define sets yield equal keys regardless of insertion order.
func (s *Shader) VariantKey() string {
	if len(s.defines) == 0 {
		return s.name
	}
	keys := make([]string, 0, len(s.defines))
	for k := range s.defines {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(s.name)
	for _, k := range keys {
		b.WriteByte(';')
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(s.defines[k])
	}
	return b.String()
}

// PreprocessedSource returns the WGSL source with the define set rendered
// as leading "const" declarations, ready for compilation.
func (s *Shader) PreprocessedSource() string {
	if len(s.defines) == 0 {
		return s.source
	}
	keys := make([]string, 0, len(s.defines))
	for k := range s.defines {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString("const ")
		b.WriteString(k)
		b.WriteString(" = ")
		b.WriteString(s.defines[k])
		b.WriteString(";\n")
	}
	b.WriteString(s.source)
	return b.String()
}
