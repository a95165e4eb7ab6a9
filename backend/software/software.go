// Package software registers the CPU context provider. Import it for
// its side effect:
//
//	import _ "github.com/gogpu/postfx/backend/software"
package software

import (
	"github.com/gogpu/postfx/backend"
	"github.com/gogpu/postfx/gfx"
)

// Provider is the CPU rasterizing backend. It has no resources to
// acquire; Init and Close are bookkeeping only.
type Provider struct {
	initialized bool
}

// init registers the software provider on package import.
func init() {
	backend.Register(backend.NameSoftware, func() backend.Provider {
		return &Provider{}
	})
}

// New creates a software provider directly, bypassing the registry.
func New() *Provider {
	return &Provider{}
}

// Name returns the provider identifier.
func (p *Provider) Name() string {
	return backend.NameSoftware
}

// Init initializes the provider.
func (p *Provider) Init() error {
	p.initialized = true
	return nil
}

// Close releases provider resources.
func (p *Provider) Close() {
	p.initialized = false
}

// NewContext creates a CPU context.
func (p *Provider) NewContext(width, height int) (gfx.Context, error) {
	if !p.initialized {
		return nil, backend.ErrNotInitialized
	}
	return gfx.NewSoftwareContext(width, height)
}

var _ backend.Provider = (*Provider)(nil)
