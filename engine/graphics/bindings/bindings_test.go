package bindings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/basalt3d/basalt/common"
	"github.com/basalt3d/basalt/engine/graphics/program"
	"github.com/basalt3d/basalt/engine/graphics/resource"
)

func testProgram(t *testing.T) program.Program {
	t.Helper()
	p, err := program.New("test", program.Settings{
		Shaders: map[program.ShaderType]program.ShaderSettings{
			program.ShaderTypeVertex: {EntryPoint: "vs_main", Source: "// vs"},
		},
		Arguments: []program.ArgumentDescriptor{
			{Stage: program.ShaderTypeAll, Name: "uniforms", Type: program.ArgumentTypeConstantBuffer},
			{Stage: program.ShaderTypeFragment, Name: "texture", Type: program.ArgumentTypeTexture, Modifier: program.ArgumentModifierConstant},
			{Stage: program.ShaderTypeFragment, Name: "overlay", Type: program.ArgumentTypeTexture, Optional: true},
		},
	})
	require.NoError(t, err)
	return p
}

func testBuffer(t *testing.T, label string) resource.Buffer {
	t.Helper()
	b, err := resource.NewBuffer(label, resource.BufferKindConstant, 64)
	require.NoError(t, err)
	return b
}

func testTexture(t *testing.T, label string) resource.Texture {
	t.Helper()
	tex, err := resource.NewTexture(label, common.ImageData{
		Width:         2,
		Height:        2,
		ChannelsCount: 4,
		Pixels:        make([]byte, 16),
	})
	require.NoError(t, err)
	return tex
}

func TestNewBindings(t *testing.T) {
	prog := testProgram(t)
	buf := testBuffer(t, "uniforms")
	tex := testTexture(t, "texture")

	b, err := New(prog, map[string]resource.Resource{
		"uniforms": buf,
		"texture":  tex,
	})
	require.NoError(t, err)

	res, ok := b.Resource("uniforms")
	require.True(t, ok)
	assert.Same(t, buf, res)

	// Optional argument left unbound.
	_, ok = b.Resource("overlay")
	assert.False(t, ok)
}

// Binding resolution is all-or-nothing: a failure retains no references.
func TestNewBindingsMissingRequiredArgument(t *testing.T) {
	prog := testProgram(t)
	tex := testTexture(t, "texture")

	_, err := New(prog, map[string]resource.Resource{"texture": tex})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "uniforms")

	refCounter, ok := tex.(interface{ RefCount() int32 })
	require.True(t, ok)
	assert.Equal(t, int32(1), refCounter.RefCount(), "failed binding must not retain resources")
}

func TestNewBindingsUndeclaredName(t *testing.T) {
	prog := testProgram(t)

	_, err := New(prog, map[string]resource.Resource{
		"uniforms": testBuffer(t, "uniforms"),
		"texture":  testTexture(t, "texture"),
		"bogus":    testBuffer(t, "bogus"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bogus")
}

func TestBindingsRetainAndRelease(t *testing.T) {
	prog := testProgram(t)
	buf := testBuffer(t, "uniforms")
	tex := testTexture(t, "texture")

	b, err := New(prog, map[string]resource.Resource{
		"uniforms": buf,
		"texture":  tex,
	})
	require.NoError(t, err)

	refCounter := buf.(interface{ RefCount() int32 })
	assert.Equal(t, int32(2), refCounter.RefCount())

	b.Release()
	assert.Equal(t, int32(1), refCounter.RefCount())

	// Idempotent.
	b.Release()
	assert.Equal(t, int32(1), refCounter.RefCount())
}

func TestNewFromOverridesMutableArgument(t *testing.T) {
	prog := testProgram(t)
	base, err := New(prog, map[string]resource.Resource{
		"uniforms": testBuffer(t, "uniforms-0"),
		"texture":  testTexture(t, "texture"),
	})
	require.NoError(t, err)

	frameBuf := testBuffer(t, "uniforms-1")
	derived, err := NewFrom(base, map[string]resource.Resource{"uniforms": frameBuf})
	require.NoError(t, err)

	res, ok := derived.Resource("uniforms")
	require.True(t, ok)
	assert.Same(t, frameBuf, res)

	// The constant argument is shared with the base set.
	baseTex, _ := base.Resource("texture")
	derivedTex, ok := derived.Resource("texture")
	require.True(t, ok)
	assert.Same(t, baseTex, derivedTex)
}

func TestNewFromRejectsConstantOverride(t *testing.T) {
	prog := testProgram(t)
	base, err := New(prog, map[string]resource.Resource{
		"uniforms": testBuffer(t, "uniforms"),
		"texture":  testTexture(t, "texture"),
	})
	require.NoError(t, err)

	_, err = NewFrom(base, map[string]resource.Resource{"texture": testTexture(t, "other")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "constant")
}

func TestNewFromRejectsUndeclaredOverride(t *testing.T) {
	prog := testProgram(t)
	base, err := New(prog, map[string]resource.Resource{
		"uniforms": testBuffer(t, "uniforms"),
		"texture":  testTexture(t, "texture"),
	})
	require.NoError(t, err)

	_, err = NewFrom(base, map[string]resource.Resource{"bogus": testBuffer(t, "bogus")})
	assert.Error(t, err)
}

func TestNewFromNilOverrideUnbinds(t *testing.T) {
	prog := testProgram(t)
	base, err := New(prog, map[string]resource.Resource{
		"uniforms": testBuffer(t, "uniforms"),
		"texture":  testTexture(t, "texture"),
		"overlay":  testTexture(t, "overlay"),
	})
	require.NoError(t, err)

	// Unbinding the optional argument succeeds.
	derived, err := NewFrom(base, map[string]resource.Resource{"overlay": nil})
	require.NoError(t, err)
	_, ok := derived.Resource("overlay")
	assert.False(t, ok)

	// Unbinding a required argument fails resolution.
	_, err = NewFrom(base, map[string]resource.Resource{"uniforms": nil})
	assert.Error(t, err)
}
