package graphics

// systemConfig holds the options applied during NewSystem.
type systemConfig struct {
	backend     Backend
	backendName string
}

// SystemOption is a functional option used to configure a System during construction.
type SystemOption func(*systemConfig)

// WithBackendName selects a registered backend by name instead of the
// highest-priority default.
//
// Parameters:
//   - name: the backend identifier to look up
//
// Returns:
//   - SystemOption: a function that sets the backend name
func WithBackendName(name string) SystemOption {
	return func(c *systemConfig) {
		c.backendName = name
	}
}

// WithBackend injects a backend instance directly, bypassing the registry.
// Intended for tests that construct a backend with specific settings.
//
// Parameters:
//   - b: the backend instance to use
//
// Returns:
//   - SystemOption: a function that sets the backend
func WithBackend(b Backend) SystemOption {
	return func(c *systemConfig) {
		c.backend = b
	}
}
