// Package wgpu registers the GPU context provider built on gogpu/wgpu.
// Import it for its side effect:
//
//	import _ "github.com/gogpu/postfx/backend/wgpu"
//
// The provider owns the wgpu instance, adapter, device, and queue, and
// compiles pipeline shaders from WGSL through naga. Rasterization of
// the composer's fullscreen and scene draws currently delegates to the
// software path while the native render-pass encoding lands; contexts
// still report the device's real limits so capability probing sees the
// hardware.
package wgpu

import (
	"fmt"
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/core"

	"github.com/gogpu/postfx/backend"
	"github.com/gogpu/postfx/gfx"
)

// Provider is the GPU backend.
type Provider struct {
	mu sync.RWMutex

	// GPU resources
	instance *core.Instance
	adapter  core.AdapterID
	device   core.DeviceID
	queue    core.QueueID

	// shared is an optional host-supplied device; when set, Init skips
	// adapter and device acquisition.
	shared gfx.DeviceHandle

	initialized bool
}

// init registers the wgpu provider on package import.
func init() {
	backend.Register(backend.NameWGPU, func() backend.Provider {
		return &Provider{}
	})
}

// New creates a wgpu provider directly, bypassing the registry.
// The provider must be initialized with Init() before use.
func New() *Provider {
	return &Provider{}
}

// NewShared creates a provider that reuses the host application's GPU
// device instead of acquiring its own. The handle typically comes from
// the windowing layer's GPUContextProvider.
func NewShared(handle gfx.DeviceHandle) *Provider {
	return &Provider{shared: handle}
}

// Name returns the provider identifier.
func (p *Provider) Name() string {
	return backend.NameWGPU
}

// Init initializes the provider by creating GPU resources: an
// instance, an adapter, a device, and the command queue. With a shared
// device handle only bookkeeping happens.
func (p *Provider) Init() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.initialized {
		return nil
	}
	if p.shared != nil {
		p.initialized = true
		return nil
	}

	desc := &gputypes.InstanceDescriptor{
		Backends: gputypes.BackendsPrimary,
		Flags:    0,
	}
	p.instance = core.NewInstance(desc)

	adapterID, err := p.instance.RequestAdapter(&gputypes.RequestAdapterOptions{
		PowerPreference: gputypes.PowerPreferenceHighPerformance,
	})
	if err != nil {
		return fmt.Errorf("wgpu: no adapter: %w", err)
	}
	p.adapter = adapterID

	logAdapterInfo(adapterID)

	deviceID, err := requestDevice(adapterID, "postfx-device")
	if err != nil {
		return fmt.Errorf("wgpu: %w", err)
	}
	p.device = deviceID

	queueID, err := deviceQueue(deviceID)
	if err != nil {
		dropDevice(deviceID)
		return fmt.Errorf("wgpu: %w", err)
	}
	p.queue = queueID

	p.initialized = true
	return nil
}

// Close releases all provider resources in reverse order of creation.
// Shared devices belong to the host and are left alone.
func (p *Provider) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.initialized {
		return
	}
	if p.shared == nil {
		dropDevice(p.device)
		p.device = core.DeviceID{}
		dropAdapter(p.adapter)
		p.adapter = core.AdapterID{}
		p.instance = nil
		p.queue = core.QueueID{}
	}
	p.initialized = false
}

// NewContext creates a context backed by this provider's device.
func (p *Provider) NewContext(width, height int) (gfx.Context, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if !p.initialized {
		return nil, backend.ErrNotInitialized
	}
	return newContext(p, width, height)
}

var _ backend.Provider = (*Provider)(nil)
