package graphics

import (
	"errors"
	"fmt"
	"sync"
)

// ErrNoDevice is returned when no enumerated adapter satisfies a request.
var ErrNoDevice = errors.New("graphics: no suitable device")

// system is the implementation of the System interface.
type system struct {
	mu      sync.Mutex
	backend Backend
	devices []*Device
}

// System is the process-scoped GPU adapter registry for one backend. It is an
// explicit object rather than a hidden global, so tests can run several
// registries side by side and teardown order stays under the caller's control.
type System interface {
	// Backend returns the backend this system enumerates adapters from.
	Backend() Backend

	// UpdateGpuDevices re-enumerates adapters, filters them by the required
	// features and replaces the previous device list. Enumeration failure is
	// logged and yields an empty list; it is not fatal because adapters can
	// legitimately come and go.
	//
	// Parameters:
	//   - required: feature bitmask devices must satisfy; zero keeps all
	//
	// Returns:
	//   - []*Device: the refreshed device list
	UpdateGpuDevices(required DeviceFeatures) []*Device

	// Devices returns the device list from the last UpdateGpuDevices call.
	Devices() []*Device

	// DefaultDevice picks the preferred adapter from the current list,
	// favoring hardware over software.
	//
	// Returns:
	//   - *Device: the preferred adapter
	//   - error: ErrNoDevice if the list is empty
	DefaultDevice() (*Device, error)
}

var _ System = &system{}

// NewSystem creates a device registry on a backend. With no option the
// highest-priority registered backend is used. A missing or uncreatable
// backend instance is a construction error, not an empty registry: without a
// backend nothing downstream can work.
//
// Parameters:
//   - opts: a variadic list of SystemOption functions to configure the system
//
// Returns:
//   - System: the new device registry
//   - error: an error if no usable backend is available
func NewSystem(opts ...SystemOption) (System, error) {
	var cfg systemConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	backend := cfg.backend
	if backend == nil && cfg.backendName != "" {
		b, err := GetBackend(cfg.backendName)
		if err != nil {
			return nil, fmt.Errorf("system: backend %q: %w", cfg.backendName, err)
		}
		backend = b
	}
	if backend == nil {
		b, err := DefaultBackend()
		if err != nil {
			return nil, fmt.Errorf("system: %w", err)
		}
		backend = b
	}

	logger().Info("graphics system created", "backend", backend.Name(), "software", backend.Software())
	return &system{backend: backend}, nil
}

func (s *system) Backend() Backend {
	return s.backend
}

func (s *system) UpdateGpuDevices(required DeviceFeatures) []*Device {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, dev := range s.devices {
		dev.Release()
	}
	s.devices = nil

	infos, err := s.backend.EnumerateDevices(required)
	if err != nil {
		logger().Warn("device enumeration failed", "backend", s.backend.Name(), "error", err)
		return nil
	}

	for _, info := range infos {
		if !info.Features.HasAll(required) {
			continue
		}
		dev := newDevice(info)
		s.devices = append(s.devices, dev)
		logger().Info("gpu device", "name", dev.Name(), "software", dev.IsSoftware(), "features", dev.Features().String())
	}
	return s.devices
}

func (s *system) Devices() []*Device {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.devices
}

func (s *system) DefaultDevice() (*Device, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.devices) == 0 {
		return nil, ErrNoDevice
	}
	for _, dev := range s.devices {
		if !dev.IsSoftware() {
			return dev, nil
		}
	}
	return s.devices[0], nil
}
