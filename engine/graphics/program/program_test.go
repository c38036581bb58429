package program

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validShaders() map[ShaderType]ShaderSettings {
	return map[ShaderType]ShaderSettings{
		ShaderTypeVertex: {
			EntryPoint: "vs_main",
			Source:     "// vertex",
			Outputs:    []string{"color", "texcoord"},
		},
		ShaderTypeFragment: {
			EntryPoint: "fs_main",
			Source:     "// fragment",
			Inputs:     []string{"color"},
		},
	}
}

func TestNewProgram(t *testing.T) {
	p, err := New("test", Settings{
		Shaders: validShaders(),
		Arguments: []ArgumentDescriptor{
			{Stage: ShaderTypeVertex, Name: "uniforms", Type: ArgumentTypeConstantBuffer},
			{Stage: ShaderTypeFragment, Name: "texture", Type: ArgumentTypeTexture},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "test", p.Label())

	_, ok := p.Shader(ShaderTypeVertex)
	assert.True(t, ok)

	arg, ok := p.Argument("texture")
	require.True(t, ok)
	assert.Equal(t, ArgumentTypeTexture, arg.Type)

	_, ok = p.Argument("missing")
	assert.False(t, ok)
}

func TestNewProgramRequiresVertexStage(t *testing.T) {
	shaders := validShaders()
	delete(shaders, ShaderTypeVertex)
	_, err := New("test", Settings{Shaders: shaders})
	assert.Error(t, err)
}

func TestNewProgramEmptyEntryPoint(t *testing.T) {
	shaders := validShaders()
	vs := shaders[ShaderTypeVertex]
	vs.EntryPoint = ""
	shaders[ShaderTypeVertex] = vs
	_, err := New("test", Settings{Shaders: shaders})
	assert.Error(t, err)
}

// A fragment input the vertex stage never produces is a deterministic
// construction failure, not a runtime surprise.
func TestNewProgramStageMismatch(t *testing.T) {
	shaders := validShaders()
	fs := shaders[ShaderTypeFragment]
	fs.Inputs = []string{"color", "normal"}
	shaders[ShaderTypeFragment] = fs

	_, err := New("test", Settings{Shaders: shaders})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "shader stage mismatch")
	assert.Contains(t, err.Error(), "normal")
}

func TestNewProgramArgumentValidation(t *testing.T) {
	t.Run("duplicate names", func(t *testing.T) {
		_, err := New("test", Settings{
			Shaders: validShaders(),
			Arguments: []ArgumentDescriptor{
				{Stage: ShaderTypeVertex, Name: "uniforms"},
				{Stage: ShaderTypeFragment, Name: "uniforms"},
			},
		})
		assert.Error(t, err)
	})

	t.Run("empty name", func(t *testing.T) {
		_, err := New("test", Settings{
			Shaders:   validShaders(),
			Arguments: []ArgumentDescriptor{{Stage: ShaderTypeVertex}},
		})
		assert.Error(t, err)
	})
}

func TestNewProgramInputLayoutValidation(t *testing.T) {
	_, err := New("test", Settings{
		Shaders: validShaders(),
		InputLayouts: []InputLayout{{
			Stride: 16,
			Attributes: []VertexAttribute{
				{Name: "position", Format: AttributeFormatFloat32x3, Offset: 8},
			},
		}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "overruns")
}

func TestAttributeFormatByteSize(t *testing.T) {
	assert.Equal(t, uint32(8), AttributeFormatFloat32x2.ByteSize())
	assert.Equal(t, uint32(12), AttributeFormatFloat32x3.ByteSize())
	assert.Equal(t, uint32(16), AttributeFormatFloat32x4.ByteSize())
}
