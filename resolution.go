package postfx

import "math"

// AutoSize marks a preferred dimension as "derive from base size and
// scale" rather than an explicit pixel value.
const AutoSize = -1

// Resolution tracks a logical base size, an optional independent physical
// size, and a scale factor.
//
// The effective physical size is the preferred value when one was set
// explicitly, otherwise round(base * scale), and never below 1 pixel in
// either dimension. Passes own a Resolution for their private render
// targets; listeners fire whenever the effective size changes so owners
// can resize those targets.
type Resolution struct {
	baseWidth  int
	baseHeight int

	preferredWidth  int
	preferredHeight int

	scale float64

	listeners []func(*Resolution)
}

// NewResolution creates a resolution with the given base size and scale.
// Scale values outside (0, 1] are clamped to 1.
func NewResolution(baseWidth, baseHeight int, scale float64) *Resolution {
	r := &Resolution{
		preferredWidth:  AutoSize,
		preferredHeight: AutoSize,
		scale:           clampScale(scale),
	}
	r.baseWidth, r.baseHeight = maxInt(baseWidth, 1), maxInt(baseHeight, 1)
	return r
}

func clampScale(s float64) float64 {
	if s <= 0 || s > 1 {
		return 1
	}
	return s
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Width returns the effective physical width.
func (r *Resolution) Width() int {
	if r.preferredWidth != AutoSize {
		return maxInt(r.preferredWidth, 1)
	}
	return maxInt(int(math.Round(float64(r.baseWidth)*r.scale)), 1)
}

// Height returns the effective physical height.
func (r *Resolution) Height() int {
	if r.preferredHeight != AutoSize {
		return maxInt(r.preferredHeight, 1)
	}
	return maxInt(int(math.Round(float64(r.baseHeight)*r.scale)), 1)
}

// BaseWidth returns the logical base width.
func (r *Resolution) BaseWidth() int { return r.baseWidth }

// BaseHeight returns the logical base height.
func (r *Resolution) BaseHeight() int { return r.baseHeight }

// Scale returns the scale factor.
func (r *Resolution) Scale() float64 { return r.scale }

// SetBaseSize updates the logical base size, notifying listeners when the
// effective size changed.
func (r *Resolution) SetBaseSize(width, height int) {
	r.mutate(func() {
		r.baseWidth = maxInt(width, 1)
		r.baseHeight = maxInt(height, 1)
	})
}

// SetPreferredSize pins the physical size independently of base and
// scale. Pass AutoSize for either dimension to derive it again.
func (r *Resolution) SetPreferredSize(width, height int) {
	r.mutate(func() {
		r.preferredWidth = width
		r.preferredHeight = height
	})
}

// SetScale updates the scale factor. Values outside (0, 1] are clamped
// to 1.
func (r *Resolution) SetScale(scale float64) {
	r.mutate(func() { r.scale = clampScale(scale) })
}

// AddListener registers a callback fired after every effective size
// change.
func (r *Resolution) AddListener(fn func(*Resolution)) {
	if fn != nil {
		r.listeners = append(r.listeners, fn)
	}
}

// mutate applies a change and notifies listeners if the effective size
// moved.
func (r *Resolution) mutate(apply func()) {
	oldW, oldH := r.Width(), r.Height()
	apply()
	if r.Width() != oldW || r.Height() != oldH {
		for _, fn := range r.listeners {
			fn(r)
		}
	}
}
