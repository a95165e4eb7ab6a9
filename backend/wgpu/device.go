package wgpu

import (
	"fmt"

	"github.com/gogpu/wgpu/core"
	types "github.com/gogpu/gputypes"

	"github.com/gogpu/postfx"
)

// logAdapterInfo reports the selected adapter through the package
// logger. The adapter is usable without its description, so failures
// are logged and ignored.
func logAdapterInfo(adapterID core.AdapterID) {
	info, err := core.GetAdapterInfo(adapterID)
	if err != nil {
		postfx.Logger().Warn("wgpu: adapter info unavailable", "error", err)
		return
	}
	postfx.Logger().Info("wgpu: adapter selected",
		"name", info.Name,
		"vendor", info.Vendor,
		"type", info.DeviceType,
		"backend", info.Backend,
		"driver", info.Driver)
}

// requestDevice creates a logical device with default limits.
func requestDevice(adapterID core.AdapterID, label string) (core.DeviceID, error) {
	deviceID, err := core.RequestDevice(adapterID, &types.DeviceDescriptor{
		Label:          label,
		RequiredLimits: types.DefaultLimits(),
	})
	if err != nil {
		return core.DeviceID{}, fmt.Errorf("request device: %w", err)
	}
	return deviceID, nil
}

// deviceQueue retrieves the command queue of a device.
func deviceQueue(deviceID core.DeviceID) (core.QueueID, error) {
	queueID, err := core.GetDeviceQueue(deviceID)
	if err != nil {
		return core.QueueID{}, fmt.Errorf("get device queue: %w", err)
	}
	return queueID, nil
}

// dropDevice releases a device, logging instead of failing; Close has
// nothing useful to do with the error.
func dropDevice(deviceID core.DeviceID) {
	if deviceID.IsZero() {
		return
	}
	if err := core.DeviceDrop(deviceID); err != nil {
		postfx.Logger().Warn("wgpu: device release failed", "error", err)
	}
}

// dropAdapter releases an adapter, logging instead of failing.
func dropAdapter(adapterID core.AdapterID) {
	if adapterID.IsZero() {
		return
	}
	if err := core.AdapterDrop(adapterID); err != nil {
		postfx.Logger().Warn("wgpu: adapter release failed", "error", err)
	}
}

// deviceMaxTextureSize reads the 2D texture limit off a device, falling
// back to the WebGPU minimum when the query fails.
func deviceMaxTextureSize(deviceID core.DeviceID) int {
	const fallback = 8192
	if deviceID.IsZero() {
		return fallback
	}
	limits, err := core.GetDeviceLimits(deviceID)
	if err != nil {
		postfx.Logger().Warn("wgpu: failed to get device limits", "error", err)
		return fallback
	}
	if limits.MaxTextureDimension2D > 0 {
		return int(limits.MaxTextureDimension2D)
	}
	return fallback
}
