// Package backend selects and initializes a graphics context provider.
//
// Providers are registered via Register, usually from init functions in
// the provider packages, and selected by name with Get or by priority
// with Default. Importing a provider package for its side effects is
// enough to make it available:
//
//	import (
//	    "github.com/gogpu/postfx/backend"
//	    _ "github.com/gogpu/postfx/backend/software"
//	)
//
//	b, err := backend.InitDefault()
package backend

import (
	"errors"

	"github.com/gogpu/postfx/gfx"
)

// Common backend errors.
var (
	// ErrBackendNotAvailable is returned when a requested backend is not available.
	ErrBackendNotAvailable = errors.New("backend: not available")

	// ErrNotInitialized is returned when operations are called before Init.
	ErrNotInitialized = errors.New("backend: not initialized")
)

// Backend name constants.
const (
	// NameSoftware is the CPU rasterizing backend.
	NameSoftware = "software"
	// NameWGPU is the GPU backend (gogpu/wgpu).
	NameWGPU = "wgpu"
)

// Provider creates graphics contexts for the composer.
//
// Providers must be registered via Register and are selected via Get
// or Default.
type Provider interface {
	// Name returns the provider identifier (e.g., "software", "wgpu").
	Name() string

	// Init acquires the provider's resources (for GPU providers: the
	// instance, adapter, device, and queue). Must be called before
	// NewContext.
	Init() error

	// Close releases all provider resources. The provider should not
	// be used after Close.
	Close()

	// NewContext creates a context with the given drawing-buffer size.
	NewContext(width, height int) (gfx.Context, error)
}
