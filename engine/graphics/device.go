package graphics

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// DeviceFeatures is a bitmask of optional GPU adapter capabilities.
type DeviceFeatures uint32

const (
	// DeviceFeatureBasicRendering covers vertex/index/constant buffers,
	// textures, samplers and indexed draws. Every usable adapter has it.
	DeviceFeatureBasicRendering DeviceFeatures = 1 << iota

	// DeviceFeaturePresentToWindow marks adapters that can drive a surface.
	DeviceFeaturePresentToWindow

	// DeviceFeatureAnisotropicFiltering marks anisotropic sampler support.
	DeviceFeatureAnisotropicFiltering
)

// String returns the feature names joined for logs and error messages.
func (f DeviceFeatures) String() string {
	if f == 0 {
		return "None"
	}
	var names []string
	if f&DeviceFeatureBasicRendering != 0 {
		names = append(names, "BasicRendering")
	}
	if f&DeviceFeaturePresentToWindow != 0 {
		names = append(names, "PresentToWindow")
	}
	if f&DeviceFeatureAnisotropicFiltering != 0 {
		names = append(names, "AnisotropicFiltering")
	}
	return strings.Join(names, "|")
}

// HasAll reports whether every feature in required is present.
func (f DeviceFeatures) HasAll(required DeviceFeatures) bool {
	return f&required == required
}

// DeviceInfo is the backend-reported description of one GPU adapter.
type DeviceInfo struct {
	// Name is the adapter name as reported by the driver.
	Name string
	// Software reports CPU rasterization.
	Software bool
	// Features is the supported capability bitmask.
	Features DeviceFeatures
	// Native is the backend-native adapter handle.
	Native any
}

// Device is one GPU adapter handle. Devices are immutable after creation and
// reference counted: a rendering context retains its device for its lifetime,
// so a device list refresh cannot pull the adapter out from under a live
// context.
type Device struct {
	info DeviceInfo
	refs atomic.Int32
}

func newDevice(info DeviceInfo) *Device {
	d := &Device{info: info}
	d.refs.Store(1)
	return d
}

// Name returns the adapter name.
func (d *Device) Name() string {
	return d.info.Name
}

// IsSoftware reports whether the adapter rasterizes on the CPU.
func (d *Device) IsSoftware() bool {
	return d.info.Software
}

// Features returns the adapter capability bitmask.
func (d *Device) Features() DeviceFeatures {
	return d.info.Features
}

// Native returns the backend-native adapter handle.
func (d *Device) Native() any {
	return d.info.Native
}

// AddRef increments the reference count. Called by contexts on creation.
func (d *Device) AddRef() {
	d.refs.Add(1)
}

// Release decrements the reference count. The registry drops its own
// reference on UpdateGpuDevices; the device stays alive while any context
// still holds one.
func (d *Device) Release() {
	d.refs.Add(-1)
}

// String returns a one-line device description for logs.
func (d *Device) String() string {
	kind := "hardware"
	if d.info.Software {
		kind = "software"
	}
	return fmt.Sprintf("%s (%s, %s)", d.info.Name, kind, d.info.Features)
}
