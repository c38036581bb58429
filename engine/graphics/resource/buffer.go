package resource

import (
	"fmt"
)

// ConstantBufferAlignment is the minimum constant buffer size alignment shared
// by the supported native APIs (256 bytes on D3D12 and Vulkan desktop GPUs).
const ConstantBufferAlignment = 256

// GetAlignedBufferSize rounds size up to the backend constant-buffer
// alignment. The function is idempotent and the result is always >= size and
// a multiple of ConstantBufferAlignment.
//
// Parameters:
//   - size: the unaligned byte size
//
// Returns:
//   - uint64: the aligned byte size
func GetAlignedBufferSize(size uint64) uint64 {
	if size%ConstantBufferAlignment == 0 {
		return size
	}
	return (size/ConstantBufferAlignment + 1) * ConstantBufferAlignment
}

// BufferKind identifies how a buffer is bound by the GPU.
type BufferKind int

const (
	// BufferKindVertex is a vertex attribute buffer.
	BufferKindVertex BufferKind = iota

	// BufferKindIndex is an index buffer for indexed draws.
	BufferKindIndex

	// BufferKindConstant is a shader-visible constant (uniform) buffer.
	// Constant buffers are padded to ConstantBufferAlignment.
	BufferKindConstant
)

// String returns the kind name for debug labels and error messages.
func (k BufferKind) String() string {
	switch k {
	case BufferKindVertex:
		return "Vertex"
	case BufferKindIndex:
		return "Index"
	case BufferKindConstant:
		return "Constant"
	default:
		return "Unknown"
	}
}

// IndexFormat is the integer width of index buffer elements.
type IndexFormat int

const (
	// IndexFormatUint32 is 32-bit indices (default).
	IndexFormatUint32 IndexFormat = iota

	// IndexFormatUint16 is 16-bit indices.
	IndexFormatUint16
)

// ByteSize returns the size of one index element in bytes.
func (f IndexFormat) ByteSize() uint64 {
	if f == IndexFormatUint16 {
		return 2
	}
	return 4
}

// buffer is the implementation of the Buffer interface.
type buffer struct {
	shared

	kind BufferKind
	// size is the declared (unaligned) byte size callers stage data against.
	size uint64
	// alignedSize is the backend-padded byte size actually allocated.
	alignedSize uint64
	// vertexStride is the byte stride of one vertex, vertex buffers only.
	vertexStride uint32
	// indexFormat is the element width, index buffers only.
	indexFormat IndexFormat
}

// Buffer is a GPU-resident linear memory resource. Constant buffers are
// alignment-padded: callers size host-side staging structures to the declared
// (unaligned) size and the resource padding absorbs the difference.
type Buffer interface {
	Resource

	// Kind returns how this buffer is bound by the GPU.
	Kind() BufferKind

	// Size returns the declared (unaligned) byte size.
	Size() uint64

	// AlignedSize returns the allocated byte size after backend padding.
	// Equal to Size for vertex and index buffers.
	AlignedSize() uint64

	// VertexStride returns the byte stride of one vertex. Zero unless this is
	// a vertex buffer.
	VertexStride() uint32

	// IndexFormat returns the index element width. Meaningful only for index
	// buffers.
	IndexFormat() IndexFormat

	// ElementCount returns the number of elements the declared size holds:
	// vertices for vertex buffers, indices for index buffers. Zero for
	// constant buffers.
	ElementCount() uint32

	// SetData uploads data starting at byte offset zero. For host-visible
	// memory this is an immediate copy; for device-local memory the backend
	// queues an upload and barrier transparently. Either way the upload
	// completes before any command list reading this buffer executes.
	// Mutating a buffer referenced by an in-flight command list without a
	// prior fence wait is a usage error the engine does not detect.
	//
	// Parameters:
	//   - data: the bytes to upload; must fit the declared size
	//
	// Returns:
	//   - error: ErrSizeExceeded if data does not fit, ErrNotInitialized if
	//     the buffer was never initialized by a context
	SetData(data []byte) error

	// GetData reads the buffer contents back to the CPU, where the backend
	// supports it. The result is AlignedSize bytes long; bytes beyond the
	// declared size are backend padding.
	//
	// Returns:
	//   - []byte: the buffer contents
	//   - error: ErrReadbackUnsupported if the backend cannot read back
	GetData() ([]byte, error)
}

var _ Buffer = &buffer{}

// NewBuffer creates a buffer resource of the given kind and declared size.
// The buffer owns no GPU memory until a graphics context initializes it.
//
// Constant buffers are padded to ConstantBufferAlignment. An explicit aligned
// size may be supplied with WithAlignedSize; supplying one that is smaller
// than the declared size or not a multiple of the alignment is a construction
// error, never a silent truncation.
//
// Parameters:
//   - label: debug label for the buffer
//   - kind: the buffer kind (vertex, index, constant)
//   - size: the declared (unaligned) byte size
//   - opts: a variadic list of BufferOption functions to configure the buffer
//
// Returns:
//   - Buffer: the new buffer
//   - error: an error if the settings violate the buffer contract
func NewBuffer(label string, kind BufferKind, size uint64, opts ...BufferOption) (Buffer, error) {
	if size == 0 {
		return nil, fmt.Errorf("buffer %q: size must be non-zero", label)
	}

	b := &buffer{
		shared:      newShared(label),
		kind:        kind,
		size:        size,
		indexFormat: IndexFormatUint32,
	}
	for _, opt := range opts {
		opt(b)
	}

	switch {
	case b.alignedSize == 0:
		if kind == BufferKindConstant {
			b.alignedSize = GetAlignedBufferSize(size)
		} else {
			b.alignedSize = size
		}
	case b.alignedSize < size:
		return nil, fmt.Errorf("buffer %q: aligned size %d is smaller than declared size %d", label, b.alignedSize, size)
	case kind == BufferKindConstant && b.alignedSize%ConstantBufferAlignment != 0:
		return nil, fmt.Errorf("buffer %q: aligned size %d is not a multiple of %d", label, b.alignedSize, ConstantBufferAlignment)
	}

	if kind == BufferKindVertex && b.vertexStride == 0 {
		return nil, fmt.Errorf("buffer %q: vertex buffers require a vertex stride", label)
	}

	return b, nil
}

func (b *buffer) Kind() BufferKind {
	return b.kind
}

func (b *buffer) Size() uint64 {
	return b.size
}

func (b *buffer) AlignedSize() uint64 {
	return b.alignedSize
}

func (b *buffer) VertexStride() uint32 {
	return b.vertexStride
}

func (b *buffer) IndexFormat() IndexFormat {
	return b.indexFormat
}

func (b *buffer) ElementCount() uint32 {
	switch b.kind {
	case BufferKindVertex:
		return uint32(b.size / uint64(b.vertexStride))
	case BufferKindIndex:
		return uint32(b.size / b.indexFormat.ByteSize())
	default:
		return 0
	}
}

func (b *buffer) SetData(data []byte) error {
	if b.uploader == nil {
		return ErrNotInitialized
	}
	if uint64(len(data)) > b.size {
		return fmt.Errorf("buffer %q: %w: %d > %d", b.label, ErrSizeExceeded, len(data), b.size)
	}
	return b.uploader.WriteBuffer(b, 0, data)
}

func (b *buffer) GetData() ([]byte, error) {
	if b.uploader == nil {
		return nil, ErrNotInitialized
	}
	return b.uploader.ReadBuffer(b)
}
