// Package program models a compiled shader-stage set together with its vertex
// input layout and named argument descriptors. Programs are immutable after
// creation and shared across all frames in flight; the engine consumes
// compiled shader source from a provider collaborator and never compiles
// shader source itself.
package program

import (
	"fmt"

	"github.com/basalt3d/basalt/common"
)

// ShaderType identifies a programmable pipeline stage.
type ShaderType int

const (
	// ShaderTypeVertex is the vertex stage.
	ShaderTypeVertex ShaderType = iota

	// ShaderTypeFragment is the fragment (pixel) stage.
	ShaderTypeFragment

	// ShaderTypeAll marks an argument visible to every stage. Not a pipeline
	// stage itself, only valid in ArgumentDescriptor.Stage.
	ShaderTypeAll
)

// String returns the stage name for debug labels and error messages.
func (t ShaderType) String() string {
	switch t {
	case ShaderTypeVertex:
		return "Vertex"
	case ShaderTypeFragment:
		return "Fragment"
	case ShaderTypeAll:
		return "All"
	default:
		return "Unknown"
	}
}

// ShaderSettings describes one compiled shader stage supplied by the shader
// provider collaborator: a source (or binary) blob plus an entry point.
type ShaderSettings struct {
	// SourcePath identifies where the shader came from, for debug labels.
	SourcePath string
	// EntryPoint is the stage entry function name.
	EntryPoint string
	// Source is the compiled shader code (WGSL text or backend binary).
	Source string
	// Outputs lists the inter-stage output semantics this stage produces.
	Outputs []string
	// Inputs lists the inter-stage input semantics this stage consumes.
	Inputs []string
}

// ArgumentModifier distinguishes bindings that stay fixed for the program
// lifetime from ones rebound every frame.
type ArgumentModifier int

const (
	// ArgumentModifierMutable marks an argument rebound per frame (e.g.,
	// per-frame uniforms).
	ArgumentModifierMutable ArgumentModifier = iota

	// ArgumentModifierConstant marks an argument bound once and never
	// changed; backends may validate and cache its descriptor setup.
	ArgumentModifierConstant
)

// ArgumentType identifies the resource kind an argument accepts. Backends
// need it up front to build native descriptor layouts before any resource is
// bound.
type ArgumentType int

const (
	// ArgumentTypeConstantBuffer accepts a constant (uniform) buffer.
	ArgumentTypeConstantBuffer ArgumentType = iota

	// ArgumentTypeTexture accepts a 2D texture.
	ArgumentTypeTexture

	// ArgumentTypeTextureCube accepts a cube texture.
	ArgumentTypeTextureCube

	// ArgumentTypeSampler accepts a sampler.
	ArgumentTypeSampler
)

// ArgumentDescriptor declares one named shader-visible binding slot. The
// declaration index within Settings.Arguments is the binding slot number.
type ArgumentDescriptor struct {
	// Stage is the shader stage that reads the argument.
	Stage ShaderType
	// Name is the binding name used by ResourceBindings.
	Name string
	// Type is the resource kind the argument accepts.
	Type ArgumentType
	// Modifier distinguishes constant from per-frame mutable arguments.
	Modifier ArgumentModifier
	// Optional arguments may be left unbound.
	Optional bool
}

// VertexAttribute describes one attribute of a vertex input layout.
type VertexAttribute struct {
	// Name is the attribute semantic (e.g., "position", "texcoord").
	Name string
	// Format is the component layout of the attribute.
	Format AttributeFormat
	// Offset is the byte offset within one vertex.
	Offset uint32
}

// AttributeFormat enumerates the vertex attribute component layouts.
type AttributeFormat int

const (
	// AttributeFormatFloat32x2 is two 32-bit floats.
	AttributeFormatFloat32x2 AttributeFormat = iota

	// AttributeFormatFloat32x3 is three 32-bit floats.
	AttributeFormatFloat32x3

	// AttributeFormatFloat32x4 is four 32-bit floats.
	AttributeFormatFloat32x4
)

// ByteSize returns the attribute size in bytes.
func (f AttributeFormat) ByteSize() uint32 {
	switch f {
	case AttributeFormatFloat32x2:
		return 8
	case AttributeFormatFloat32x3:
		return 12
	default:
		return 16
	}
}

// InputLayout describes one vertex buffer's attribute arrangement.
type InputLayout struct {
	// Stride is the byte stride of one vertex.
	Stride uint32
	// Attributes are the attributes read from this buffer.
	Attributes []VertexAttribute
}

// Settings collects everything needed to create a Program.
type Settings struct {
	// Shaders maps each stage to its compiled shader.
	Shaders map[ShaderType]ShaderSettings
	// InputLayouts describe the vertex buffers the vertex stage reads.
	InputLayouts []InputLayout
	// Arguments declare the named binding slots of all stages.
	Arguments []ArgumentDescriptor
	// ColorFormats are the render target formats the program renders to.
	ColorFormats []common.PixelFormat
	// DepthFormat is the depth attachment format, or PixelFormatUnknown.
	DepthFormat common.PixelFormat
}

// program is the implementation of the Program interface.
type program struct {
	label    string
	settings Settings
	// native is the backend-native program object (shader modules, pipeline
	// layout), set by the graphics context during initialization.
	native any
}

// Program is an immutable compiled shader-stage set with its input layout and
// argument descriptors. Programs are owned by render states and shared across
// frames.
type Program interface {
	// Label returns the debug label for this program.
	Label() string

	// Shader returns the shader settings for the given stage, or false if the
	// stage is not part of this program.
	//
	// Parameters:
	//   - stage: the shader stage to retrieve
	//
	// Returns:
	//   - ShaderSettings: the shader for the stage
	//   - bool: whether the stage exists
	Shader(stage ShaderType) (ShaderSettings, bool)

	// Arguments returns the declared argument descriptors in declaration order.
	Arguments() []ArgumentDescriptor

	// Argument looks up an argument descriptor by name.
	//
	// Parameters:
	//   - name: the argument name
	//
	// Returns:
	//   - ArgumentDescriptor: the descriptor
	//   - bool: whether the argument exists
	Argument(name string) (ArgumentDescriptor, bool)

	// InputLayouts returns the vertex input layouts.
	InputLayouts() []InputLayout

	// ColorFormats returns the render target formats baked into this program.
	ColorFormats() []common.PixelFormat

	// DepthFormat returns the depth attachment format baked into this program.
	DepthFormat() common.PixelFormat

	// Native returns the backend-native program object, or nil before
	// initialization.
	Native() any

	// SetNative stores the backend-native program object. Called by the
	// graphics context during initialization, not by user code.
	SetNative(native any)
}

var _ Program = &program{}

// New creates a Program from compiled shaders, input layouts and argument
// descriptors. Validation is all-or-nothing: any contract violation fails the
// whole construction and no partially valid program is produced.
//
// A vertex stage is always required. When a fragment stage is present, every
// inter-stage input it declares must be produced by the vertex stage's
// outputs; a gap is a "shader stage mismatch" construction error.
//
// Parameters:
//   - label: debug label for the program
//   - settings: shaders, layouts, arguments, and target formats
//
// Returns:
//   - Program: the new program
//   - error: an error if the settings violate the program contract
func New(label string, settings Settings) (Program, error) {
	vertex, ok := settings.Shaders[ShaderTypeVertex]
	if !ok {
		return nil, fmt.Errorf("program %q: vertex shader is required", label)
	}
	if vertex.EntryPoint == "" {
		return nil, fmt.Errorf("program %q: vertex shader entry point is empty", label)
	}

	if fragment, ok := settings.Shaders[ShaderTypeFragment]; ok {
		if fragment.EntryPoint == "" {
			return nil, fmt.Errorf("program %q: fragment shader entry point is empty", label)
		}
		if err := checkStageLink(label, vertex, fragment); err != nil {
			return nil, err
		}
	}

	seen := make(map[string]bool, len(settings.Arguments))
	for _, arg := range settings.Arguments {
		if arg.Name == "" {
			return nil, fmt.Errorf("program %q: argument with empty name", label)
		}
		if seen[arg.Name] {
			return nil, fmt.Errorf("program %q: duplicate argument %q", label, arg.Name)
		}
		seen[arg.Name] = true
	}

	for i, layout := range settings.InputLayouts {
		for _, attr := range layout.Attributes {
			if attr.Offset+attr.Format.ByteSize() > layout.Stride {
				return nil, fmt.Errorf("program %q: input layout %d attribute %q overruns stride %d", label, i, attr.Name, layout.Stride)
			}
		}
	}

	return &program{label: label, settings: settings}, nil
}

// checkStageLink verifies the fragment stage's declared inputs are satisfied
// by the vertex stage's declared outputs.
func checkStageLink(label string, vertex, fragment ShaderSettings) error {
	produced := make(map[string]bool, len(vertex.Outputs))
	for _, out := range vertex.Outputs {
		produced[out] = true
	}
	for _, in := range fragment.Inputs {
		if !produced[in] {
			return fmt.Errorf("program %q: shader stage mismatch: fragment input %q is not produced by the vertex stage", label, in)
		}
	}
	return nil
}

func (p *program) Label() string {
	return p.label
}

func (p *program) Shader(stage ShaderType) (ShaderSettings, bool) {
	s, ok := p.settings.Shaders[stage]
	return s, ok
}

func (p *program) Arguments() []ArgumentDescriptor {
	return p.settings.Arguments
}

func (p *program) Argument(name string) (ArgumentDescriptor, bool) {
	for _, arg := range p.settings.Arguments {
		if arg.Name == name {
			return arg, true
		}
	}
	return ArgumentDescriptor{}, false
}

func (p *program) InputLayouts() []InputLayout {
	return p.settings.InputLayouts
}

func (p *program) ColorFormats() []common.PixelFormat {
	return p.settings.ColorFormats
}

func (p *program) DepthFormat() common.PixelFormat {
	return p.settings.DepthFormat
}

func (p *program) Native() any {
	return p.native
}

func (p *program) SetNative(native any) {
	p.native = native
}
