package resource

// AddressMode controls texture coordinate wrapping outside [0, 1].
type AddressMode int

const (
	// AddressModeRepeat tiles the texture (default).
	AddressModeRepeat AddressMode = iota

	// AddressModeClampToEdge clamps coordinates to the edge texel.
	AddressModeClampToEdge

	// AddressModeMirrorRepeat tiles the texture, mirroring every other repeat.
	AddressModeMirrorRepeat
)

// FilterMode controls texel filtering.
type FilterMode int

const (
	// FilterModeLinear interpolates between texels (default).
	FilterModeLinear FilterMode = iota

	// FilterModeNearest picks the closest texel.
	FilterModeNearest
)

// SamplerSettings describes a sampler's immutable creation parameters.
// Zero values fall back to sensible defaults at backend creation time:
// repeat addressing, linear filtering, LOD clamp [0, 32], anisotropy 1.
type SamplerSettings struct {
	// AddressModeU, AddressModeV, AddressModeW control coordinate wrapping per axis.
	AddressModeU, AddressModeV, AddressModeW AddressMode
	// MagFilter and MinFilter control magnification and minification filtering.
	MagFilter, MinFilter FilterMode
	// MipmapFilter controls mip level blending.
	MipmapFilter FilterMode
	// LodMinClamp and LodMaxClamp bound the level of detail range.
	LodMinClamp, LodMaxClamp float32
	// MaxAnisotropy is the maximum anisotropic filtering level; zero means 1.
	MaxAnisotropy uint16
}

// sampler is the implementation of the Sampler interface.
type sampler struct {
	shared

	settings SamplerSettings
}

// Sampler is a GPU texture sampling state object.
type Sampler interface {
	Resource

	// Settings returns the sampler's immutable creation parameters.
	Settings() SamplerSettings
}

var _ Sampler = &sampler{}

// NewSampler creates a sampler resource. The sampler owns no GPU object until
// a graphics context initializes it.
//
// Parameters:
//   - label: debug label for the sampler
//   - settings: the sampler configuration
//
// Returns:
//   - Sampler: the new sampler
func NewSampler(label string, settings SamplerSettings) Sampler {
	if settings.LodMaxClamp == 0 {
		settings.LodMaxClamp = 32
	}
	if settings.MaxAnisotropy == 0 {
		settings.MaxAnisotropy = 1
	}
	return &sampler{
		shared:   newShared(label),
		settings: settings,
	}
}

func (s *sampler) Settings() SamplerSettings {
	return s.settings
}
