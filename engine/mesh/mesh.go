// Package mesh generates procedural geometry in the vertex layout the engine
// renders: position, normal and texture coordinates per vertex, indexed
// triangle lists.
package mesh

import (
	"github.com/basalt3d/basalt/common"
)

// Vertex is one mesh vertex. The field order matches the engine's default
// vertex input layout: position at offset 0, normal at 12, texcoord at 24,
// 32 bytes per vertex.
type Vertex struct {
	Position [3]float32
	Normal   [3]float32
	TexCoord [2]float32
}

// VertexStride is the byte size of one Vertex.
const VertexStride = 32

// Mesh is indexed triangle geometry ready for buffer upload.
type Mesh struct {
	Vertices []Vertex
	Indices  []uint32
}

// VertexBytes returns the vertex data as raw bytes for a vertex buffer
// upload. The slice shares memory with the mesh.
func (m *Mesh) VertexBytes() []byte {
	return common.SliceToBytes(m.Vertices)
}

// IndexBytes returns the index data as raw bytes for an index buffer upload.
// The slice shares memory with the mesh.
func (m *Mesh) IndexBytes() []byte {
	return common.SliceToBytes(m.Indices)
}

// VertexDataSize returns the vertex data size in bytes.
func (m *Mesh) VertexDataSize() uint64 {
	return uint64(len(m.Vertices)) * VertexStride
}

// IndexDataSize returns the index data size in bytes.
func (m *Mesh) IndexDataSize() uint64 {
	return uint64(len(m.Indices)) * 4
}

// cubeFace is one cube face: 4 corner positions and the outward normal.
// Texture coordinates are the standard (0,1)(1,1)(1,0)(0,0) quad per face.
type cubeFace struct {
	positions [4][3]float32
	normal    [3]float32
}

// NewCube generates a cube centered on the origin with the given edge size.
// 6 faces × 4 vertices = 24 vertices, each face with its own normal so
// lighting and cube sampling stay per-face; 36 indices.
//
// Parameters:
//   - size: the edge length
//
// Returns:
//   - *Mesh: the cube geometry
func NewCube(size float32) *Mesh {
	h := size / 2

	faces := []cubeFace{
		// +X
		{positions: [4][3]float32{{h, -h, -h}, {h, h, -h}, {h, h, h}, {h, -h, h}}, normal: [3]float32{1, 0, 0}},
		// -X
		{positions: [4][3]float32{{-h, -h, h}, {-h, h, h}, {-h, h, -h}, {-h, -h, -h}}, normal: [3]float32{-1, 0, 0}},
		// +Y
		{positions: [4][3]float32{{-h, h, -h}, {-h, h, h}, {h, h, h}, {h, h, -h}}, normal: [3]float32{0, 1, 0}},
		// -Y
		{positions: [4][3]float32{{-h, -h, h}, {-h, -h, -h}, {h, -h, -h}, {h, -h, h}}, normal: [3]float32{0, -1, 0}},
		// +Z
		{positions: [4][3]float32{{-h, -h, h}, {h, -h, h}, {h, h, h}, {-h, h, h}}, normal: [3]float32{0, 0, 1}},
		// -Z
		{positions: [4][3]float32{{h, -h, -h}, {-h, -h, -h}, {-h, h, -h}, {h, h, -h}}, normal: [3]float32{0, 0, -1}},
	}

	texCoords := [4][2]float32{{0, 1}, {1, 1}, {1, 0}, {0, 0}}

	m := &Mesh{
		Vertices: make([]Vertex, 0, 24),
		Indices:  make([]uint32, 0, 36),
	}
	for fi, face := range faces {
		for vi, pos := range face.positions {
			m.Vertices = append(m.Vertices, Vertex{
				Position: pos,
				Normal:   face.normal,
				TexCoord: texCoords[vi],
			})
		}
		base := uint32(fi * 4)
		m.Indices = append(m.Indices,
			base+0, base+1, base+2,
			base+0, base+2, base+3,
		)
	}
	return m
}

// NewQuad generates a single quad in the XY plane facing +Z, centered on the
// origin.
//
// Parameters:
//   - width: the quad width
//   - height: the quad height
//
// Returns:
//   - *Mesh: the quad geometry
func NewQuad(width, height float32) *Mesh {
	hw, hh := width/2, height/2
	return &Mesh{
		Vertices: []Vertex{
			{Position: [3]float32{-hw, -hh, 0}, Normal: [3]float32{0, 0, 1}, TexCoord: [2]float32{0, 1}},
			{Position: [3]float32{hw, -hh, 0}, Normal: [3]float32{0, 0, 1}, TexCoord: [2]float32{1, 1}},
			{Position: [3]float32{hw, hh, 0}, Normal: [3]float32{0, 0, 1}, TexCoord: [2]float32{1, 0}},
			{Position: [3]float32{-hw, hh, 0}, Normal: [3]float32{0, 0, 1}, TexCoord: [2]float32{0, 0}},
		},
		Indices: []uint32{0, 1, 2, 0, 2, 3},
	}
}
