package mesh

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVertexStrideMatchesStructSize(t *testing.T) {
	assert.Equal(t, uintptr(VertexStride), unsafe.Sizeof(Vertex{}))
}

func TestNewCube(t *testing.T) {
	m := NewCube(2)

	require.Len(t, m.Vertices, 24)
	require.Len(t, m.Indices, 36)
	assert.Equal(t, uint64(24*VertexStride), m.VertexDataSize())
	assert.Equal(t, uint64(36*4), m.IndexDataSize())
	assert.Len(t, m.VertexBytes(), 24*VertexStride)
	assert.Len(t, m.IndexBytes(), 36*4)

	// Every position sits on the half-size bound and every normal is a unit
	// axis vector.
	for _, v := range m.Vertices {
		for _, c := range v.Position {
			assert.InDelta(t, 1, abs(c), 1e-6)
		}
		lengthSq := v.Normal[0]*v.Normal[0] + v.Normal[1]*v.Normal[1] + v.Normal[2]*v.Normal[2]
		assert.InDelta(t, 1, lengthSq, 1e-6)
	}

	// All indices reference valid vertices, two triangles per face.
	for _, idx := range m.Indices {
		assert.Less(t, idx, uint32(len(m.Vertices)))
	}
}

func TestNewCubeNormalsPointOutward(t *testing.T) {
	m := NewCube(2)

	// For a cube centered on the origin the normal and the position must
	// agree in sign along the normal's axis.
	for _, v := range m.Vertices {
		for axis := 0; axis < 3; axis++ {
			if v.Normal[axis] != 0 {
				assert.Positive(t, v.Position[axis]*v.Normal[axis])
			}
		}
	}
}

func TestNewQuad(t *testing.T) {
	m := NewQuad(4, 2)

	require.Len(t, m.Vertices, 4)
	require.Len(t, m.Indices, 6)

	for _, v := range m.Vertices {
		assert.InDelta(t, 2, abs(v.Position[0]), 1e-6)
		assert.InDelta(t, 1, abs(v.Position[1]), 1e-6)
		assert.Zero(t, v.Position[2])
		assert.Equal(t, [3]float32{0, 0, 1}, v.Normal)
	}
}

func abs(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
