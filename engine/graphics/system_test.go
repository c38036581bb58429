package graphics

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubBackend is a minimal Backend for registry and selection tests.
type stubBackend struct {
	name     string
	software bool
	infos    []DeviceInfo
	enumErr  error
}

func (b *stubBackend) Name() string   { return b.name }
func (b *stubBackend) Software() bool { return b.software }
func (b *stubBackend) EnumerateDevices(DeviceFeatures) ([]DeviceInfo, error) {
	return b.infos, b.enumErr
}
func (b *stubBackend) NewContext(*Device, ContextSettings) (ContextBackend, error) {
	return nil, errors.New("stub")
}

func TestBackendRegistry(t *testing.T) {
	software, err := GetBackend(SoftwareBackendName)
	require.NoError(t, err)
	assert.Equal(t, SoftwareBackendName, software.Name())
	assert.True(t, software.Software())

	_, err = GetBackend("no-such-backend")
	assert.ErrorIs(t, err, ErrBackendNotFound)
}

func TestDefaultBackendPrefersHigherPriority(t *testing.T) {
	stub := &stubBackend{name: "stub-priority-test"}
	RegisterBackend(stub, 100)

	b, err := DefaultBackend()
	require.NoError(t, err)
	assert.Equal(t, stub.name, b.Name())

	// Restore normal ordering for other tests.
	RegisterBackend(stub, -1)
}

func TestNewSystemSelection(t *testing.T) {
	t.Run("explicit backend instance", func(t *testing.T) {
		stub := &stubBackend{name: "stub-instance"}
		sys, err := NewSystem(WithBackend(stub))
		require.NoError(t, err)
		assert.Same(t, stub, sys.Backend())
	})

	t.Run("by registered name", func(t *testing.T) {
		sys, err := NewSystem(WithBackendName(SoftwareBackendName))
		require.NoError(t, err)
		assert.Equal(t, SoftwareBackendName, sys.Backend().Name())
	})

	t.Run("unknown name is a construction error", func(t *testing.T) {
		_, err := NewSystem(WithBackendName("no-such-backend"))
		assert.ErrorIs(t, err, ErrBackendNotFound)
	})
}

func TestUpdateGpuDevicesFiltersByFeatures(t *testing.T) {
	stub := &stubBackend{
		name: "stub-filter",
		infos: []DeviceInfo{
			{Name: "basic", Features: DeviceFeatureBasicRendering},
			{Name: "full", Features: DeviceFeatureBasicRendering | DeviceFeaturePresentToWindow},
		},
	}
	sys, err := NewSystem(WithBackend(stub))
	require.NoError(t, err)

	devices := sys.UpdateGpuDevices(DeviceFeatureBasicRendering | DeviceFeaturePresentToWindow)
	require.Len(t, devices, 1)
	assert.Equal(t, "full", devices[0].Name())
}

// Enumeration failure empties the list but is not fatal: adapters come and go.
func TestUpdateGpuDevicesEnumerationFailure(t *testing.T) {
	stub := &stubBackend{name: "stub-fail", enumErr: errors.New("boom")}
	sys, err := NewSystem(WithBackend(stub))
	require.NoError(t, err)

	assert.Empty(t, sys.UpdateGpuDevices(0))
	assert.Empty(t, sys.Devices())
}

func TestDefaultDevicePrefersHardware(t *testing.T) {
	stub := &stubBackend{
		name: "stub-hw",
		infos: []DeviceInfo{
			{Name: "cpu", Software: true, Features: DeviceFeatureBasicRendering},
			{Name: "gpu", Features: DeviceFeatureBasicRendering},
		},
	}
	sys, err := NewSystem(WithBackend(stub))
	require.NoError(t, err)
	sys.UpdateGpuDevices(0)

	dev, err := sys.DefaultDevice()
	require.NoError(t, err)
	assert.Equal(t, "gpu", dev.Name())
	assert.False(t, dev.IsSoftware())
}

func TestDefaultDeviceEmptyList(t *testing.T) {
	sys, err := NewSystem(WithBackend(&stubBackend{name: "stub-empty"}))
	require.NoError(t, err)

	_, err = sys.DefaultDevice()
	assert.ErrorIs(t, err, ErrNoDevice)
}

func TestDeviceFeaturesString(t *testing.T) {
	features := DeviceFeatureBasicRendering | DeviceFeatureAnisotropicFiltering
	s := features.String()
	assert.Contains(t, s, "BasicRendering")
	assert.Contains(t, s, "AnisotropicFiltering")
	assert.True(t, features.HasAll(DeviceFeatureBasicRendering))
	assert.False(t, features.HasAll(DeviceFeaturePresentToWindow))
}

func TestDeviceRefCounting(t *testing.T) {
	dev := newDevice(DeviceInfo{Name: "d", Features: DeviceFeatureBasicRendering})
	dev.AddRef()
	dev.Release()
	dev.Release()
	// Fully released; further state is backend-defined, but the calls must not panic.
}
