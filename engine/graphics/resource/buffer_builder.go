package resource

// BufferOption is a functional option used to configure a Buffer during construction.
type BufferOption func(*buffer)

// WithVertexStride sets the byte stride of one vertex. Required for vertex buffers.
//
// Parameters:
//   - stride: the per-vertex byte stride
//
// Returns:
//   - BufferOption: a function that sets the vertex stride
func WithVertexStride(stride uint32) BufferOption {
	return func(b *buffer) {
		b.vertexStride = stride
	}
}

// WithIndexFormat sets the index element width. Defaults to IndexFormatUint32.
//
// Parameters:
//   - format: the index format to use
//
// Returns:
//   - BufferOption: a function that sets the index format
func WithIndexFormat(format IndexFormat) BufferOption {
	return func(b *buffer) {
		b.indexFormat = format
	}
}

// WithAlignedSize overrides the allocated byte size. The value must be at
// least the declared size and, for constant buffers, a multiple of
// ConstantBufferAlignment; NewBuffer rejects anything else.
//
// Parameters:
//   - size: the allocated byte size
//
// Returns:
//   - BufferOption: a function that sets the aligned size
func WithAlignedSize(size uint64) BufferOption {
	return func(b *buffer) {
		b.alignedSize = size
	}
}
