// Package webgpu implements the hardware graphics backend on top of
// wgpu-native, which maps to Direct3D 12, Vulkan or Metal depending on the
// platform. Importing the package registers the backend; the engine selects
// it over the software backend whenever it is present.
package webgpu

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/basalt3d/basalt/common"
	"github.com/basalt3d/basalt/engine/graphics"
	"github.com/basalt3d/basalt/engine/graphics/bindings"
	"github.com/basalt3d/basalt/engine/graphics/program"
	"github.com/basalt3d/basalt/engine/graphics/resource"
	"github.com/basalt3d/basalt/engine/graphics/state"
)

// BackendName is the registry name of the wgpu backend.
const BackendName = "wgpu"

func init() {
	graphics.RegisterBackend(&backend{}, 10)
}

// backend is the wgpu implementation of graphics.Backend.
type backend struct{}

var _ graphics.Backend = &backend{}

func (b *backend) Name() string {
	return BackendName
}

func (b *backend) Software() bool {
	return false
}

func (b *backend) EnumerateDevices(required graphics.DeviceFeatures) ([]graphics.DeviceInfo, error) {
	instance := wgpu.CreateInstance(nil)
	if instance == nil {
		return nil, errors.New("webgpu: instance creation failed")
	}
	defer instance.Release()

	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{})
	if err != nil {
		return nil, fmt.Errorf("webgpu: request adapter: %w", err)
	}
	defer adapter.Release()

	info := adapter.GetInfo()

	name := info.Name
	if name == "" {
		name = info.DriverDescription
	}
	return []graphics.DeviceInfo{{
		Name:     name,
		Software: info.AdapterType == wgpu.AdapterTypeCPU,
		Features: graphics.DeviceFeatureBasicRendering |
			graphics.DeviceFeaturePresentToWindow |
			graphics.DeviceFeatureAnisotropicFiltering,
	}}, nil
}

func (b *backend) NewContext(device *graphics.Device, settings graphics.ContextSettings) (graphics.ContextBackend, error) {
	// wgpu surface and device calls must stay on the thread that owns the
	// window.
	runtime.LockOSThread()

	descriptor, err := surfaceDescriptor(settings.Surface)
	if err != nil {
		return nil, err
	}

	instance := wgpu.CreateInstance(nil)
	if instance == nil {
		return nil, errors.New("webgpu: instance creation failed")
	}

	surface := instance.CreateSurface(descriptor)

	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: device.IsSoftware(),
		CompatibleSurface:    surface,
	})
	if err != nil {
		instance.Release()
		return nil, fmt.Errorf("webgpu: request adapter: %w", err)
	}

	dev, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "basalt device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: wgpu.DefaultLimits(),
		},
	})
	if err != nil {
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("webgpu: request device: %w", err)
	}

	c := &contextBackend{
		settings: settings,
		instance: instance,
		adapter:  adapter,
		device:   dev,
		queue:    dev.GetQueue(),
		surface:  surface,
	}
	if err := c.configureSurface(settings.FrameSize); err != nil {
		c.Release()
		return nil, err
	}
	return c, nil
}

// surfaceDescriptor resolves the opaque surface handle of the context
// settings. GLFW windows go through the wgpuglfw bridge, which has
// per-platform implementations; a prebuilt descriptor passes through.
func surfaceDescriptor(surface any) (*wgpu.SurfaceDescriptor, error) {
	switch s := surface.(type) {
	case *glfw.Window:
		return wgpuglfw.GetSurfaceDescriptor(s), nil
	case *wgpu.SurfaceDescriptor:
		return s, nil
	case nil:
		return nil, errors.New("webgpu: headless contexts are not supported, use the software backend")
	default:
		return nil, fmt.Errorf("webgpu: unsupported surface handle %T", surface)
	}
}

// contextBackend is the wgpu implementation of graphics.ContextBackend.
type contextBackend struct {
	mu       sync.Mutex
	settings graphics.ContextSettings

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue
	surface  *wgpu.Surface

	surfaceFormat wgpu.TextureFormat
	depthTexture  *wgpu.Texture
	depthView     *wgpu.TextureView

	// frameSurface and frameView hold the swap-chain image acquired by the
	// first Execute of a frame, released on Present.
	frameSurface *wgpu.Texture
	frameView    *wgpu.TextureView
	frameCleared bool

	// submitted is the highest fence value handed to Execute or Present.
	// wgpu-native has no user fence object, so Wait drains the device queue
	// with a blocking Poll and signals everything submitted so far. Coarser
	// than a per-value fence, but completion order is preserved.
	submitted  atomic.Uint64
	waiterOnce sync.Once
}

var _ graphics.ContextBackend = &contextBackend{}

func (c *contextBackend) configureSurface(size common.FrameSize) error {
	capabilities := c.surface.GetCapabilities(c.adapter)
	if len(capabilities.Formats) == 0 {
		return errors.New("webgpu: surface reports no formats")
	}
	c.surfaceFormat = capabilities.Formats[0]

	presentMode := wgpu.PresentModeImmediate
	if c.settings.VSync {
		presentMode = wgpu.PresentModeFifo
	}
	c.surface.Configure(c.adapter, c.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      c.surfaceFormat,
		Width:       size.Width,
		Height:      size.Height,
		PresentMode: presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})

	if c.depthView != nil {
		c.depthView.Release()
		c.depthView = nil
	}
	if c.depthTexture != nil {
		c.depthTexture.Release()
		c.depthTexture = nil
	}
	if c.settings.DepthFormat == common.PixelFormatUnknown {
		return nil
	}

	depthTexture, err := c.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "Depth Texture",
		Size: wgpu.Extent3D{
			Width:              size.Width,
			Height:             size.Height,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        pixelFormat(c.settings.DepthFormat),
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		return fmt.Errorf("webgpu: depth texture: %w", err)
	}
	depthView, err := depthTexture.CreateView(nil)
	if err != nil {
		depthTexture.Release()
		return fmt.Errorf("webgpu: depth view: %w", err)
	}
	c.depthTexture = depthTexture
	c.depthView = depthView
	return nil
}

// releaseHooker lets the backend install native cleanup on a resource.
type releaseHooker interface {
	SetReleaseHook(hook func())
}

func (c *contextBackend) InitBuffer(buf resource.Buffer) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var usage wgpu.BufferUsage
	switch buf.Kind() {
	case resource.BufferKindVertex:
		usage = wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst
	case resource.BufferKindIndex:
		usage = wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst
	default:
		usage = wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst
	}

	native, err := c.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: buf.Label(),
		Size:  buf.AlignedSize(),
		Usage: usage,
	})
	if err != nil {
		return fmt.Errorf("webgpu: buffer %q: %w", buf.Label(), err)
	}
	buf.SetNative(native)
	if h, ok := buf.(releaseHooker); ok {
		h.SetReleaseHook(native.Release)
	}
	return nil
}

// textureNative pairs a wgpu texture with the view bind groups reference.
type textureNative struct {
	texture *wgpu.Texture
	view    *wgpu.TextureView
}

func (c *contextBackend) InitTexture(tex resource.Texture) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	settings := tex.Settings()
	native, err := c.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: tex.Label(),
		Size: wgpu.Extent3D{
			Width:              settings.Width,
			Height:             settings.Height,
			DepthOrArrayLayers: settings.ArrayLayers,
		},
		MipLevelCount: settings.MipCount,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        pixelFormat(settings.Format),
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("webgpu: texture %q: %w", tex.Label(), err)
	}

	var viewDescriptor *wgpu.TextureViewDescriptor
	if settings.Kind == resource.TextureKindCube {
		viewDescriptor = &wgpu.TextureViewDescriptor{
			Label:           tex.Label(),
			Format:          pixelFormat(settings.Format),
			Dimension:       wgpu.TextureViewDimensionCube,
			MipLevelCount:   settings.MipCount,
			ArrayLayerCount: settings.ArrayLayers,
		}
	}
	view, err := native.CreateView(viewDescriptor)
	if err != nil {
		native.Release()
		return fmt.Errorf("webgpu: texture view %q: %w", tex.Label(), err)
	}

	tex.SetNative(&textureNative{texture: native, view: view})
	if h, ok := tex.(releaseHooker); ok {
		h.SetReleaseHook(func() {
			view.Release()
			native.Release()
		})
	}
	return nil
}

func (c *contextBackend) InitSampler(s resource.Sampler) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	settings := s.Settings()
	native, err := c.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         s.Label(),
		AddressModeU:  addressMode(settings.AddressModeU),
		AddressModeV:  addressMode(settings.AddressModeV),
		AddressModeW:  addressMode(settings.AddressModeW),
		MagFilter:     filterMode(settings.MagFilter),
		MinFilter:     filterMode(settings.MinFilter),
		MipmapFilter:  mipmapFilterMode(settings.MipmapFilter),
		LodMinClamp:   settings.LodMinClamp,
		LodMaxClamp:   settings.LodMaxClamp,
		MaxAnisotropy: settings.MaxAnisotropy,
	})
	if err != nil {
		return fmt.Errorf("webgpu: sampler %q: %w", s.Label(), err)
	}
	s.SetNative(native)
	if h, ok := s.(releaseHooker); ok {
		h.SetReleaseHook(native.Release)
	}
	return nil
}

// programNative holds the compiled shader modules and descriptor layouts of
// one program.
type programNative struct {
	vertexModule    *wgpu.ShaderModule
	fragmentModule  *wgpu.ShaderModule
	bindGroupLayout *wgpu.BindGroupLayout
	pipelineLayout  *wgpu.PipelineLayout
}

func (c *contextBackend) InitProgram(p program.Program) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if p.Native() != nil {
		return nil
	}

	vertex, _ := p.Shader(program.ShaderTypeVertex)
	vertexModule, err := c.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: vertex.SourcePath,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: vertex.Source,
		},
	})
	if err != nil {
		return fmt.Errorf("webgpu: program %q vertex shader: %w", p.Label(), err)
	}

	native := &programNative{vertexModule: vertexModule}
	if fragment, ok := p.Shader(program.ShaderTypeFragment); ok {
		fragmentModule, fsErr := c.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
			Label: fragment.SourcePath,
			WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
				Code: fragment.Source,
			},
		})
		if fsErr != nil {
			vertexModule.Release()
			return fmt.Errorf("webgpu: program %q fragment shader: %w", p.Label(), fsErr)
		}
		native.fragmentModule = fragmentModule
	}

	layoutEntries := make([]wgpu.BindGroupLayoutEntry, 0, len(p.Arguments()))
	for i, arg := range p.Arguments() {
		entry := wgpu.BindGroupLayoutEntry{
			Binding:    uint32(i),
			Visibility: stageVisibility(arg.Stage),
		}
		switch arg.Type {
		case program.ArgumentTypeConstantBuffer:
			entry.Buffer = wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeUniform}
		case program.ArgumentTypeTexture:
			entry.Texture = wgpu.TextureBindingLayout{
				SampleType:    wgpu.TextureSampleTypeFloat,
				ViewDimension: wgpu.TextureViewDimension2D,
			}
		case program.ArgumentTypeTextureCube:
			entry.Texture = wgpu.TextureBindingLayout{
				SampleType:    wgpu.TextureSampleTypeFloat,
				ViewDimension: wgpu.TextureViewDimensionCube,
			}
		case program.ArgumentTypeSampler:
			entry.Sampler = wgpu.SamplerBindingLayout{Type: wgpu.SamplerBindingTypeFiltering}
		}
		layoutEntries = append(layoutEntries, entry)
	}

	bindGroupLayout, err := c.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label:   p.Label(),
		Entries: layoutEntries,
	})
	if err != nil {
		native.release()
		return fmt.Errorf("webgpu: program %q bind group layout: %w", p.Label(), err)
	}
	native.bindGroupLayout = bindGroupLayout

	pipelineLayout, err := c.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            p.Label(),
		BindGroupLayouts: []*wgpu.BindGroupLayout{bindGroupLayout},
	})
	if err != nil {
		native.release()
		return fmt.Errorf("webgpu: program %q pipeline layout: %w", p.Label(), err)
	}
	native.pipelineLayout = pipelineLayout

	p.SetNative(native)
	return nil
}

func (n *programNative) release() {
	if n.pipelineLayout != nil {
		n.pipelineLayout.Release()
	}
	if n.bindGroupLayout != nil {
		n.bindGroupLayout.Release()
	}
	if n.fragmentModule != nil {
		n.fragmentModule.Release()
	}
	if n.vertexModule != nil {
		n.vertexModule.Release()
	}
}

func (c *contextBackend) InitState(st state.RenderState) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if st.Native() != nil {
		return nil
	}

	prog := st.Program()
	native, ok := prog.Native().(*programNative)
	if !ok {
		return fmt.Errorf("webgpu: state %q: program %q not initialized", st.Label(), prog.Label())
	}

	vertexLayouts := make([]wgpu.VertexBufferLayout, 0, len(prog.InputLayouts()))
	location := uint32(0)
	for _, layout := range prog.InputLayouts() {
		attributes := make([]wgpu.VertexAttribute, 0, len(layout.Attributes))
		for _, attr := range layout.Attributes {
			attributes = append(attributes, wgpu.VertexAttribute{
				ShaderLocation: location,
				Format:         vertexFormat(attr.Format),
				Offset:         uint64(attr.Offset),
			})
			location++
		}
		vertexLayouts = append(vertexLayouts, wgpu.VertexBufferLayout{
			ArrayStride: uint64(layout.Stride),
			StepMode:    wgpu.VertexStepModeVertex,
			Attributes:  attributes,
		})
	}

	colorFormats := prog.ColorFormats()
	targets := make([]wgpu.ColorTargetState, 0, len(colorFormats))
	for _, format := range colorFormats {
		target := wgpu.ColorTargetState{
			Format:    pixelFormat(format),
			WriteMask: wgpu.ColorWriteMaskAll,
		}
		if format == common.PixelFormatUnknown {
			target.Format = c.surfaceFormat
		}
		targets = append(targets, target)
	}

	descriptor := &wgpu.RenderPipelineDescriptor{
		Label:  st.Label(),
		Layout: native.pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     native.vertexModule,
			EntryPoint: mustShader(prog, program.ShaderTypeVertex).EntryPoint,
			Buffers:    vertexLayouts,
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: frontFace(st.Settings().Rasterizer),
			CullMode:  cullMode(st.Settings().Rasterizer.CullMode),
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	}
	if native.fragmentModule != nil {
		descriptor.Fragment = &wgpu.FragmentState{
			Module:     native.fragmentModule,
			EntryPoint: mustShader(prog, program.ShaderTypeFragment).EntryPoint,
			Targets:    targets,
		}
	}
	if prog.DepthFormat() != common.PixelFormatUnknown {
		depth := st.Settings().Depth
		descriptor.DepthStencil = &wgpu.DepthStencilState{
			Format:            pixelFormat(prog.DepthFormat()),
			DepthWriteEnabled: depth.WriteEnabled,
			DepthCompare:      compareFunc(depth.Compare, depth.Enabled),
			StencilFront: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
			StencilBack: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
		}
	}

	pipeline, err := c.device.CreateRenderPipeline(descriptor)
	if err != nil {
		return fmt.Errorf("webgpu: state %q pipeline: %w", st.Label(), err)
	}
	st.SetNative(pipeline)
	return nil
}

func mustShader(prog program.Program, stage program.ShaderType) program.ShaderSettings {
	shader, _ := prog.Shader(stage)
	return shader
}

func (c *contextBackend) WriteBuffer(buf resource.Buffer, offset uint64, data []byte) error {
	native, ok := buf.Native().(*wgpu.Buffer)
	if !ok {
		return fmt.Errorf("webgpu: buffer %q: %w", buf.Label(), resource.ErrNotInitialized)
	}
	c.queue.WriteBuffer(native, offset, data)
	return nil
}

func (c *contextBackend) WriteTexture(tex resource.Texture, subresources []resource.SubresourceData) error {
	native, ok := tex.Native().(*textureNative)
	if !ok {
		return fmt.Errorf("webgpu: texture %q: %w", tex.Label(), resource.ErrNotInitialized)
	}
	settings := tex.Settings()
	for _, sub := range subresources {
		width := settings.Width >> sub.Mip
		height := settings.Height >> sub.Mip
		bytesPerRow := sub.BytesPerRow
		if bytesPerRow == 0 {
			bytesPerRow = width * 4
		}
		c.queue.WriteTexture(
			&wgpu.ImageCopyTexture{
				Texture:  native.texture,
				MipLevel: sub.Mip,
				Origin:   wgpu.Origin3D{Z: sub.Layer},
				Aspect:   wgpu.TextureAspectAll,
			},
			sub.Pixels,
			&wgpu.TextureDataLayout{
				BytesPerRow:  bytesPerRow,
				RowsPerImage: height,
			},
			&wgpu.Extent3D{
				Width:              width,
				Height:             height,
				DepthOrArrayLayers: 1,
			},
		)
	}
	return nil
}

func (c *contextBackend) ReadBuffer(buf resource.Buffer) ([]byte, error) {
	return nil, resource.ErrReadbackUnsupported
}

func (c *contextBackend) Execute(lists []graphics.CommandList, fence *graphics.Fence, value uint64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ensureWaiter(fence)

	if err := c.acquireFrame(); err != nil {
		return err
	}

	encoder, err := c.device.CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("webgpu: command encoder: %w", err)
	}

	for _, list := range lists {
		if err := c.encodePass(encoder, list); err != nil {
			encoder.Release()
			return err
		}
	}

	commandBuffer, err := encoder.Finish(nil)
	if err != nil {
		encoder.Release()
		return fmt.Errorf("webgpu: finish encoder: %w", err)
	}
	c.queue.Submit(commandBuffer)
	commandBuffer.Release()
	encoder.Release()

	c.submitted.Store(value)
	return nil
}

// acquireFrame takes the swap-chain image for this frame if not already held.
func (c *contextBackend) acquireFrame() error {
	if c.frameSurface != nil {
		return nil
	}
	surfaceTexture, err := c.surface.GetCurrentTexture()
	if err != nil {
		return fmt.Errorf("webgpu: acquire surface texture: %w", err)
	}
	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return fmt.Errorf("webgpu: surface view: %w", err)
	}
	c.frameSurface = surfaceTexture
	c.frameView = view
	c.frameCleared = false
	return nil
}

// encodePass replays one command list's recording as a render pass.
func (c *contextBackend) encodePass(encoder *wgpu.CommandEncoder, list graphics.CommandList) error {
	st := list.RenderState()
	pipeline, ok := st.Native().(*wgpu.RenderPipeline)
	if !ok {
		return fmt.Errorf("webgpu: command list %q: render state %q not initialized", list.Label(), st.Label())
	}

	// The first pass of a frame clears the targets, subsequent passes load.
	colorLoadOp := wgpu.LoadOpClear
	depthLoadOp := wgpu.LoadOpClear
	if c.frameCleared {
		colorLoadOp = wgpu.LoadOpLoad
		depthLoadOp = wgpu.LoadOpLoad
	}
	c.frameCleared = true

	clear := c.settings.ClearColor
	descriptor := &wgpu.RenderPassDescriptor{
		Label: list.Label(),
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:    c.frameView,
				LoadOp:  colorLoadOp,
				StoreOp: wgpu.StoreOpStore,
				ClearValue: wgpu.Color{
					R: clear.R, G: clear.G, B: clear.B, A: clear.A,
				},
			},
		},
	}
	if c.depthView != nil {
		descriptor.DepthStencilAttachment = &wgpu.RenderPassDepthStencilAttachment{
			View:            c.depthView,
			DepthLoadOp:     depthLoadOp,
			DepthStoreOp:    wgpu.StoreOpStore,
			DepthClearValue: float32(c.settings.ClearDepth),
		}
	}

	pass := encoder.BeginRenderPass(descriptor)
	pass.SetPipeline(pipeline)
	for _, viewport := range st.Viewports() {
		pass.SetViewport(viewport.X, viewport.Y, viewport.Width, viewport.Height, viewport.MinDepth, viewport.MaxDepth)
	}
	for _, rect := range st.ScissorRects() {
		pass.SetScissorRect(rect.X, rect.Y, rect.Width, rect.Height)
	}

	for _, cmd := range list.Commands() {
		switch cmd.Kind {
		case graphics.CommandKindSetBindings:
			bindGroup, err := c.ensureBindGroup(cmd.Bindings)
			if err != nil {
				pass.End()
				return err
			}
			pass.SetBindGroup(0, bindGroup, nil)
		case graphics.CommandKindSetVertexBuffers:
			for slot, buf := range cmd.VertexBuffers {
				native, ok := buf.Native().(*wgpu.Buffer)
				if !ok {
					pass.End()
					return fmt.Errorf("webgpu: vertex buffer %q: %w", buf.Label(), resource.ErrNotInitialized)
				}
				pass.SetVertexBuffer(uint32(slot), native, 0, wgpu.WholeSize)
			}
		case graphics.CommandKindDrawIndexed:
			native, ok := cmd.IndexBuffer.Native().(*wgpu.Buffer)
			if !ok {
				pass.End()
				return fmt.Errorf("webgpu: index buffer %q: %w", cmd.IndexBuffer.Label(), resource.ErrNotInitialized)
			}
			pass.SetIndexBuffer(native, indexFormat(cmd.IndexBuffer.IndexFormat()), 0, wgpu.WholeSize)
			pass.DrawIndexed(cmd.IndexCount, 1, 0, 0, 0)
		}
	}
	pass.End()
	return nil
}

// ensureBindGroup builds the native bind group for a binding set on first
// use and caches it on the set.
func (c *contextBackend) ensureBindGroup(view bindings.ProgramBindings) (*wgpu.BindGroup, error) {
	if cached, ok := view.Native().(*wgpu.BindGroup); ok {
		return cached, nil
	}

	prog := view.Program()
	native, ok := prog.Native().(*programNative)
	if !ok {
		return nil, fmt.Errorf("webgpu: bindings: program %q not initialized", prog.Label())
	}

	entries := make([]wgpu.BindGroupEntry, 0, len(prog.Arguments()))
	for i, arg := range prog.Arguments() {
		res, bound := view.Resource(arg.Name)
		if !bound {
			return nil, fmt.Errorf("webgpu: bindings: argument %q is unbound; the wgpu backend requires every declared argument", arg.Name)
		}
		entry := wgpu.BindGroupEntry{Binding: uint32(i)}
		switch arg.Type {
		case program.ArgumentTypeConstantBuffer:
			buffer, ok := res.Native().(*wgpu.Buffer)
			if !ok {
				return nil, fmt.Errorf("webgpu: bindings: buffer %q: %w", res.Label(), resource.ErrNotInitialized)
			}
			entry.Buffer = buffer
			entry.Size = wgpu.WholeSize
		case program.ArgumentTypeTexture, program.ArgumentTypeTextureCube:
			texture, ok := res.Native().(*textureNative)
			if !ok {
				return nil, fmt.Errorf("webgpu: bindings: texture %q: %w", res.Label(), resource.ErrNotInitialized)
			}
			entry.TextureView = texture.view
		case program.ArgumentTypeSampler:
			sampler, ok := res.Native().(*wgpu.Sampler)
			if !ok {
				return nil, fmt.Errorf("webgpu: bindings: sampler %q: %w", res.Label(), resource.ErrNotInitialized)
			}
			entry.Sampler = sampler
		}
		entries = append(entries, entry)
	}

	bindGroup, err := c.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   prog.Label(),
		Layout:  native.bindGroupLayout,
		Entries: entries,
	})
	if err != nil {
		return nil, fmt.Errorf("webgpu: bind group: %w", err)
	}
	view.SetNative(bindGroup)
	return bindGroup, nil
}

func (c *contextBackend) Present(fence *graphics.Fence, value uint64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ensureWaiter(fence)

	// Presenting with no executed work still swaps a (cleared) image, so an
	// empty frame keeps the ring advancing.
	if err := c.acquireFrame(); err != nil {
		return err
	}

	c.surface.Present()
	c.frameView.Release()
	c.frameSurface.Release()
	c.frameView = nil
	c.frameSurface = nil

	c.submitted.Store(value)
	fence.Signal(value)
	return nil
}

// ensureWaiter installs the fence progress hook that drains the device queue.
func (c *contextBackend) ensureWaiter(fence *graphics.Fence) {
	c.waiterOnce.Do(func() {
		fence.SetWaiter(func(uint64) {
			c.device.Poll(true, nil)
			fence.Signal(c.submitted.Load())
		})
	})
}

func (c *contextBackend) Resize(size common.FrameSize) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.configureSurface(size)
}

func (c *contextBackend) Release() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.frameView != nil {
		c.frameView.Release()
		c.frameView = nil
	}
	if c.frameSurface != nil {
		c.frameSurface.Release()
		c.frameSurface = nil
	}
	if c.depthView != nil {
		c.depthView.Release()
		c.depthView = nil
	}
	if c.depthTexture != nil {
		c.depthTexture.Release()
		c.depthTexture = nil
	}
	if c.device != nil {
		c.device.Release()
		c.device = nil
	}
	if c.adapter != nil {
		c.adapter.Release()
		c.adapter = nil
	}
	if c.surface != nil {
		c.surface.Release()
		c.surface = nil
	}
	if c.instance != nil {
		c.instance.Release()
		c.instance = nil
	}
}
