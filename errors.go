package postfx

import "errors"

// Pipeline error taxonomy. Everything here is recoverable: capability
// failures fall back, invalid resources substitute defaults, and render
// failures skip a single pass for one frame. None of them crosses the
// Composer.Render boundary.
var (
	// ErrCapabilityUnsupported indicates the context lacks a hardware
	// feature (multi-target rendering). Always recoverable: the caller
	// falls back to the baseline path.
	ErrCapabilityUnsupported = errors.New("postfx: capability unsupported")

	// ErrResourceInvalid indicates a nil or zero-sized texture or render
	// target. Recoverable: a documented default size is substituted.
	ErrResourceInvalid = errors.New("postfx: invalid resource")

	// ErrNotInitialized is returned when a pass renders before Initialize.
	ErrNotInitialized = errors.New("postfx: not initialized")

	// ErrDisposed is returned for operations on a disposed composer.
	ErrDisposed = errors.New("postfx: composer disposed")
)
