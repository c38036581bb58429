package webgpu

import (
	"github.com/cogentcore/webgpu/wgpu"

	"github.com/basalt3d/basalt/common"
	"github.com/basalt3d/basalt/engine/graphics/program"
	"github.com/basalt3d/basalt/engine/graphics/resource"
	"github.com/basalt3d/basalt/engine/graphics/state"
)

func pixelFormat(f common.PixelFormat) wgpu.TextureFormat {
	switch f {
	case common.PixelFormatRGBA8Unorm:
		return wgpu.TextureFormatRGBA8Unorm
	case common.PixelFormatRGBA8UnormSrgb:
		return wgpu.TextureFormatRGBA8UnormSrgb
	case common.PixelFormatBGRA8Unorm:
		return wgpu.TextureFormatBGRA8Unorm
	case common.PixelFormatDepth24Plus:
		return wgpu.TextureFormatDepth24Plus
	case common.PixelFormatDepth32Float:
		return wgpu.TextureFormatDepth32Float
	default:
		return wgpu.TextureFormatBGRA8Unorm
	}
}

func addressMode(m resource.AddressMode) wgpu.AddressMode {
	switch m {
	case resource.AddressModeClampToEdge:
		return wgpu.AddressModeClampToEdge
	case resource.AddressModeMirrorRepeat:
		return wgpu.AddressModeMirrorRepeat
	default:
		return wgpu.AddressModeRepeat
	}
}

func filterMode(m resource.FilterMode) wgpu.FilterMode {
	if m == resource.FilterModeNearest {
		return wgpu.FilterModeNearest
	}
	return wgpu.FilterModeLinear
}

func mipmapFilterMode(m resource.FilterMode) wgpu.MipmapFilterMode {
	if m == resource.FilterModeNearest {
		return wgpu.MipmapFilterModeNearest
	}
	return wgpu.MipmapFilterModeLinear
}

func vertexFormat(f program.AttributeFormat) wgpu.VertexFormat {
	switch f {
	case program.AttributeFormatFloat32x2:
		return wgpu.VertexFormatFloat32x2
	case program.AttributeFormatFloat32x3:
		return wgpu.VertexFormatFloat32x3
	default:
		return wgpu.VertexFormatFloat32x4
	}
}

func indexFormat(f resource.IndexFormat) wgpu.IndexFormat {
	if f == resource.IndexFormatUint16 {
		return wgpu.IndexFormatUint16
	}
	return wgpu.IndexFormatUint32
}

func cullMode(m state.CullMode) wgpu.CullMode {
	switch m {
	case state.CullModeFront:
		return wgpu.CullModeFront
	case state.CullModeNone:
		return wgpu.CullModeNone
	default:
		return wgpu.CullModeBack
	}
}

func frontFace(r state.RasterizerSettings) wgpu.FrontFace {
	if r.FrontCounterClockwise {
		return wgpu.FrontFaceCCW
	}
	return wgpu.FrontFaceCW
}

func compareFunc(c state.CompareFunc, depthEnabled bool) wgpu.CompareFunction {
	if !depthEnabled {
		return wgpu.CompareFunctionAlways
	}
	switch c {
	case state.CompareFuncLessEqual:
		return wgpu.CompareFunctionLessEqual
	case state.CompareFuncAlways:
		return wgpu.CompareFunctionAlways
	default:
		return wgpu.CompareFunctionLess
	}
}

func stageVisibility(stage program.ShaderType) wgpu.ShaderStage {
	switch stage {
	case program.ShaderTypeFragment:
		return wgpu.ShaderStageFragment
	case program.ShaderTypeAll:
		return wgpu.ShaderStageVertex | wgpu.ShaderStageFragment
	default:
		return wgpu.ShaderStageVertex
	}
}
