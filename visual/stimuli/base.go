// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package stimuli

import (
	_ "embed"
	"encoding/binary"
	"fmt"
	"math"
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/psykit/visual"
)

// Embedded WGSL pixel patterns shared by the built-in stimuli.

//go:embed shaders/fill.wgsl
var fillShaderSource string

//go:embed shaders/gratings.wgsl
var gratingsShaderSource string

//go:embed shaders/textured.wgsl
var texturedShaderSource string

// uniformSize is the byte size of the StimulusUniforms block:
// viewport (vec4<f32>) + rect (vec4<f32>) + color (vec4<f32>) +
// params (vec4<f32>) = 64 bytes.
const uniformSize = 64

// quadVertexStride is the byte stride per vertex: float32x2 corner.
const quadVertexStride = 8

// quadVertexCount is two triangles covering the unit quad.
const quadVertexCount = 6

// unitQuad holds the corner coordinates of the unit quad, triangle list
// order. The vertex shader maps it through the stimulus rect.
var unitQuad = []float32{
	0, 0, 1, 0, 1, 1,
	0, 0, 1, 1, 0, 1,
}

// base carries the GPU plumbing every built-in stimulus shares: a unit
// quad, a uniform block with the resolved geometry, an optional RGBA
// texture, and a render pipeline targeting the current surface format.
//
// Outer stimulus types configure base at construction and mutate it
// through their setters; the render task drives Prepare and Render. The
// mutex serializes both sides, which is what makes calling a setter from
// the experiment goroutine while a frame is in flight safe.
type base struct {
	mu sync.Mutex

	label    string
	wgsl     string
	textured bool

	rect   Rect
	color  gputypes.Color
	params [4]float32

	// onPrepare runs at the start of every Prepare with the frame's
	// render context. Stimuli use it to resolve unit-bearing parameters
	// (gratings cycle length) or repaint their texture (text).
	onPrepare func(rc *visual.RenderContext) error

	// CPU-side texture staging; valid only when textured.
	texPixels []byte
	texW      uint32
	texH      uint32
	texDirty  bool

	gpu *gpuState
}

// gpuState holds the device resources of one stimulus. Created on the
// first Prepare and rebuilt when the surface format changes.
type gpuState struct {
	device hal.Device
	format gputypes.TextureFormat

	shader     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipeline   hal.RenderPipeline
	vertBuf    hal.Buffer
	uniformBuf hal.Buffer
	bindGroup  hal.BindGroup

	sampler hal.Sampler
	texture hal.Texture
	texView hal.TextureView
	texW    uint32
	texH    uint32

	lastUniforms [uniformSize]byte
	hasUniforms  bool
}

// Prepare implements visual.Renderable. It resolves the stimulus geometry
// against the frame's surface and display metrics, lazily (re)builds the
// pipeline, uploads texture data if it changed, and writes the uniform
// block when its contents differ from the previous frame.
func (b *base) Prepare(rc *visual.RenderContext) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.onPrepare != nil {
		if err := b.onPrepare(rc); err != nil {
			return err
		}
	}
	if err := b.ensurePipeline(rc); err != nil {
		return err
	}
	if b.textured {
		if err := b.ensureTexture(rc); err != nil {
			return err
		}
	}
	if b.gpu.bindGroup == nil {
		if err := b.createBindGroup(); err != nil {
			return err
		}
	}
	b.uploadUniforms(rc)
	return nil
}

// Render implements visual.Renderable. It opens a load-op render pass on
// the target so the stimulus composites over whatever the frame has drawn
// so far, then draws the quad.
func (b *base) Render(enc hal.CommandEncoder, view hal.TextureView) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.gpu == nil || b.gpu.bindGroup == nil {
		return fmt.Errorf("stimuli: %s rendered before prepare", b.label)
	}
	rp := enc.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: b.label,
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:    view,
			LoadOp:  gputypes.LoadOpLoad,
			StoreOp: gputypes.StoreOpStore,
		}},
	})
	rp.SetPipeline(b.gpu.pipeline)
	rp.SetBindGroup(0, b.gpu.bindGroup, nil)
	rp.SetVertexBuffer(0, b.gpu.vertBuf, 0)
	rp.Draw(quadVertexCount, 1, 0, 0)
	rp.End()
	return nil
}

// Destroy releases all GPU resources held by the stimulus. Safe to call
// multiple times; the stimulus may be prepared again afterwards.
func (b *base) Destroy() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.destroyGPU()
}

func (b *base) destroyGPU() {
	g := b.gpu
	if g == nil {
		return
	}
	if g.bindGroup != nil {
		g.device.DestroyBindGroup(g.bindGroup)
	}
	if g.texView != nil {
		g.device.DestroyTextureView(g.texView)
	}
	if g.texture != nil {
		g.device.DestroyTexture(g.texture)
	}
	if g.sampler != nil {
		g.device.DestroySampler(g.sampler)
	}
	if g.uniformBuf != nil {
		g.device.DestroyBuffer(g.uniformBuf)
	}
	if g.vertBuf != nil {
		g.device.DestroyBuffer(g.vertBuf)
	}
	if g.pipeline != nil {
		g.device.DestroyRenderPipeline(g.pipeline)
	}
	if g.pipeLayout != nil {
		g.device.DestroyPipelineLayout(g.pipeLayout)
	}
	if g.bindLayout != nil {
		g.device.DestroyBindGroupLayout(g.bindLayout)
	}
	if g.shader != nil {
		g.device.DestroyShaderModule(g.shader)
	}
	b.gpu = nil
	b.texDirty = len(b.texPixels) > 0
}

// ensurePipeline builds the render pipeline for the current surface
// format. A format change (the host moved the window to another monitor)
// tears the old state down and rebuilds.
func (b *base) ensurePipeline(rc *visual.RenderContext) error {
	if b.gpu != nil && b.gpu.format == rc.Config.Format {
		return nil
	}
	b.destroyGPU()

	g := &gpuState{device: rc.Device, format: rc.Config.Format}

	shader, err := rc.Device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  b.label + "_shader",
		Source: hal.ShaderSource{WGSL: b.wgsl},
	})
	if err != nil {
		return fmt.Errorf("stimuli: compile %s shader: %w", b.label, err)
	}
	g.shader = shader

	// Binding 0: StimulusUniforms, vertex+fragment.
	// Bindings 1+2 (textured only): pattern texture and sampler.
	layoutEntries := []gputypes.BindGroupLayoutEntry{
		{
			Binding:    0,
			Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
			Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
		},
	}
	if b.textured {
		layoutEntries = append(layoutEntries,
			gputypes.BindGroupLayoutEntry{
				Binding:    1,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			gputypes.BindGroupLayoutEntry{
				Binding:    2,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			},
		)
	}
	bindLayout, err := rc.Device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label:   b.label + "_bind_layout",
		Entries: layoutEntries,
	})
	if err != nil {
		return fmt.Errorf("stimuli: create %s bind group layout: %w", b.label, err)
	}
	g.bindLayout = bindLayout

	pipeLayout, err := rc.Device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            b.label + "_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{bindLayout},
	})
	if err != nil {
		return fmt.Errorf("stimuli: create %s pipeline layout: %w", b.label, err)
	}
	g.pipeLayout = pipeLayout

	if b.textured {
		sampler, err := rc.Device.CreateSampler(&hal.SamplerDescriptor{
			Label:        b.label + "_sampler",
			AddressModeU: gputypes.AddressModeClampToEdge,
			AddressModeV: gputypes.AddressModeClampToEdge,
			AddressModeW: gputypes.AddressModeClampToEdge,
			MagFilter:    gputypes.FilterModeLinear,
			MinFilter:    gputypes.FilterModeLinear,
			MipmapFilter: gputypes.FilterModeNearest,
		})
		if err != nil {
			return fmt.Errorf("stimuli: create %s sampler: %w", b.label, err)
		}
		g.sampler = sampler
	}

	premulBlend := gputypes.BlendStatePremultiplied()
	pipeline, err := rc.Device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  b.label + "_pipeline",
		Layout: pipeLayout,
		Vertex: hal.VertexState{
			Module:     shader,
			EntryPoint: "vs_main",
			Buffers: []gputypes.VertexBufferLayout{
				{
					ArrayStride: quadVertexStride,
					StepMode:    gputypes.VertexStepModeVertex,
					Attributes: []gputypes.VertexAttribute{
						{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
					},
				},
			},
		},
		Fragment: &hal.FragmentState{
			Module:     shader,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{
				{
					Format:    rc.Config.Format,
					Blend:     &premulBlend,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fmt.Errorf("stimuli: create %s pipeline: %w", b.label, err)
	}
	g.pipeline = pipeline

	vertBuf, err := rc.Device.CreateBuffer(&hal.BufferDescriptor{
		Label: b.label + "_quad",
		Size:  uint64(len(unitQuad) * 4),
		Usage: gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("stimuli: create %s vertex buffer: %w", b.label, err)
	}
	g.vertBuf = vertBuf
	rc.Queue.WriteBuffer(vertBuf, 0, f32Bytes(unitQuad))

	uniformBuf, err := rc.Device.CreateBuffer(&hal.BufferDescriptor{
		Label: b.label + "_uniforms",
		Size:  uniformSize,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("stimuli: create %s uniform buffer: %w", b.label, err)
	}
	g.uniformBuf = uniformBuf

	b.gpu = g
	return nil
}

// ensureTexture uploads the staged RGBA pixels, recreating the texture
// when its size changed. Upload happens only when setTexture marked the
// staging data dirty, keeping Prepare idempotent for unchanged inputs.
func (b *base) ensureTexture(rc *visual.RenderContext) error {
	g := b.gpu
	if b.texW == 0 || b.texH == 0 {
		return fmt.Errorf("stimuli: %s has no texture data", b.label)
	}
	if g.texture != nil && (g.texW != b.texW || g.texH != b.texH) {
		if g.bindGroup != nil {
			g.device.DestroyBindGroup(g.bindGroup)
			g.bindGroup = nil
		}
		g.device.DestroyTextureView(g.texView)
		g.device.DestroyTexture(g.texture)
		g.texture = nil
		g.texView = nil
	}
	if g.texture == nil {
		tex, err := rc.Device.CreateTexture(&hal.TextureDescriptor{
			Label:         b.label + "_texture",
			Size:          hal.Extent3D{Width: b.texW, Height: b.texH, DepthOrArrayLayers: 1},
			MipLevelCount: 1,
			SampleCount:   1,
			Dimension:     gputypes.TextureDimension2D,
			Format:        gputypes.TextureFormatRGBA8Unorm,
			Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
		})
		if err != nil {
			return fmt.Errorf("stimuli: create %s texture: %w", b.label, err)
		}
		view, err := rc.Device.CreateTextureView(tex, &hal.TextureViewDescriptor{
			Label:         b.label + "_texture_view",
			Format:        gputypes.TextureFormatRGBA8Unorm,
			Dimension:     gputypes.TextureViewDimension2D,
			Aspect:        gputypes.TextureAspectAll,
			MipLevelCount: 1,
		})
		if err != nil {
			rc.Device.DestroyTexture(tex)
			return fmt.Errorf("stimuli: create %s texture view: %w", b.label, err)
		}
		g.texture = tex
		g.texView = view
		g.texW = b.texW
		g.texH = b.texH
		b.texDirty = true
	}
	if b.texDirty {
		rc.Queue.WriteTexture(
			&hal.ImageCopyTexture{Texture: g.texture, MipLevel: 0},
			b.texPixels,
			&hal.ImageDataLayout{
				Offset:       0,
				BytesPerRow:  b.texW * 4,
				RowsPerImage: b.texH,
			},
			&hal.Extent3D{Width: b.texW, Height: b.texH, DepthOrArrayLayers: 1},
		)
		b.texDirty = false
	}
	return nil
}

func (b *base) createBindGroup() error {
	g := b.gpu
	entries := []gputypes.BindGroupEntry{
		{Binding: 0, Resource: gputypes.BufferBinding{
			Buffer: g.uniformBuf.NativeHandle(), Offset: 0, Size: uniformSize,
		}},
	}
	if b.textured {
		entries = append(entries,
			gputypes.BindGroupEntry{Binding: 1, Resource: gputypes.TextureViewBinding{
				TextureView: g.texView.NativeHandle(),
			}},
			gputypes.BindGroupEntry{Binding: 2, Resource: gputypes.SamplerBinding{
				Sampler: g.sampler.NativeHandle(),
			}},
		)
	}
	bindGroup, err := g.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:   b.label + "_bind",
		Layout:  g.bindLayout,
		Entries: entries,
	})
	if err != nil {
		return fmt.Errorf("stimuli: create %s bind group: %w", b.label, err)
	}
	g.bindGroup = bindGroup
	return nil
}

// packUniforms resolves the stimulus geometry against the frame's
// surface and fills the uniform block.
func (b *base) packUniforms(rc *visual.RenderContext) [uniformSize]byte {
	x, y, w, h := b.rect.toPixels(
		rc.PhysicalWidthMM, rc.ViewingDistanceMM,
		rc.Config.Width, rc.Config.Height,
	)
	var buf [uniformSize]byte
	packF32(buf[0:], float32(rc.Config.Width))
	packF32(buf[4:], float32(rc.Config.Height))
	packF32(buf[16:], x)
	packF32(buf[20:], y)
	packF32(buf[24:], w)
	packF32(buf[28:], h)
	packF32(buf[32:], float32(b.color.R))
	packF32(buf[36:], float32(b.color.G))
	packF32(buf[40:], float32(b.color.B))
	packF32(buf[44:], float32(b.color.A))
	for i, p := range b.params {
		packF32(buf[48+i*4:], p)
	}
	return buf
}

// uploadUniforms writes the uniform block only when its contents changed
// since the previous frame.
func (b *base) uploadUniforms(rc *visual.RenderContext) {
	buf := b.packUniforms(rc)
	if b.gpu.hasUniforms && buf == b.gpu.lastUniforms {
		return
	}
	rc.Queue.WriteBuffer(b.gpu.uniformBuf, 0, buf[:])
	b.gpu.lastUniforms = buf
	b.gpu.hasUniforms = true
}

// setTexture stages RGBA pixels for upload on the next Prepare. The
// pixel slice is retained; callers hand over ownership.
func (b *base) setTexture(pixels []byte, w, h uint32) {
	b.texPixels = pixels
	b.texW = w
	b.texH = h
	b.texDirty = true
}

// SetRect moves and resizes the stimulus. Takes effect on the next
// prepared frame.
func (b *base) SetRect(r Rect) {
	b.mu.Lock()
	b.rect = r
	b.mu.Unlock()
}

// Rect returns the configured stimulus rectangle.
func (b *base) Rect() Rect {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.rect
}

// SetColor sets the stimulus color. For textured stimuli only the alpha
// component is applied, as an opacity multiplier.
func (b *base) SetColor(c gputypes.Color) {
	b.mu.Lock()
	b.color = c
	b.mu.Unlock()
}

// Color returns the stimulus color.
func (b *base) Color() gputypes.Color {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.color
}

func packF32(dst []byte, v float32) {
	binary.LittleEndian.PutUint32(dst, math.Float32bits(v))
}

func f32Bytes(vals []float32) []byte {
	out := make([]byte, len(vals)*4)
	for i, v := range vals {
		packF32(out[i*4:], v)
	}
	return out
}
