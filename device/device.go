package device

import (
	"fmt"

	"github.com/spsquared/softbody-webgpu/engine/renderer/bind_group_provider"
	"github.com/spsquared/softbody-webgpu/engine/renderer/pipeline"
	"github.com/spsquared/softbody-webgpu/engine/renderer/shader"
	"github.com/spsquared/softbody-webgpu/layout"
	"github.com/cogentcore/webgpu/wgpu"
)

// stressScale converts beam force magnitude into the stored stress field (§4.3).
const stressScale = 1.0 / 20.0

// forceFixedPointScale is the fixed-point multiplier applied before force
// scratch values are stored as i32 atomics, and divided back out on consume,
// preserving associativity across GPU atomic adds (§4.3, §5).
const forceFixedPointScale = 65536

// BindVariant selects which of the two alternating particle buffers is read
// from and which is written to for a given sub-tick (§4.3 buffer alternation).
type BindVariant int

const (
	VariantA BindVariant = iota
	VariantB
)

// Device owns every GPU buffer and pipeline the simulation needs: the
// double-buffered particle storage, the beam/mapping/metadata/delete-bitmap
// buffers, the force-accumulation scratch buffer, and the four pipelines
// (update, delete, particle draw, beam draw).
type Device struct {
	backend *backend

	MaxParticles int
	MaxBeams     int

	particleA, particleB bind_group_provider.BindGroupProvider // hold the P0/P1 storage buffers
	beamProvider         bind_group_provider.BindGroupProvider
	mappingProvider      bind_group_provider.BindGroupProvider
	metadataProvider     bind_group_provider.BindGroupProvider
	forcesProvider       bind_group_provider.BindGroupProvider
	deleteBitmapProvider bind_group_provider.BindGroupProvider

	particleCornerIndex bind_group_provider.BindGroupProvider // constant {0,1,2} u16 index buffer, one triangle
	beamEndpointIndex   bind_group_provider.BindGroupProvider // constant {0,1} u16 index buffer, one line

	updateBindGroupA bind_group_provider.BindGroupProvider
	updateBindGroupB bind_group_provider.BindGroupProvider
	deleteBindGroup  bind_group_provider.BindGroupProvider
	particleRenderBG bind_group_provider.BindGroupProvider
	beamRenderBG     bind_group_provider.BindGroupProvider

	updatePipeline   pipeline.Pipeline
	deletePipeline   pipeline.Pipeline
	particlePipeline pipeline.Pipeline
	beamPipeline     pipeline.Pipeline
}

// New creates the GPU device/queue/surface and allocates every buffer sized
// for maxParticles/maxBeams. Shader sources are loaded from shaderDir
// ("assets/shaders" in the default layout).
func New(surfaceDescriptor *wgpu.SurfaceDescriptor, forceFallbackAdapter bool, maxParticles, maxBeams int, shaderDir string) (*Device, error) {
	b, err := newBackend(surfaceDescriptor, forceFallbackAdapter)
	if err != nil {
		return nil, err
	}

	d := &Device{
		backend:      b,
		MaxParticles: maxParticles,
		MaxBeams:     maxBeams,
	}

	if err := d.initBuffers(); err != nil {
		return nil, err
	}
	if err := d.initPipelines(shaderDir); err != nil {
		return nil, err
	}
	if err := d.initBindGroups(); err != nil {
		return nil, err
	}

	return d, nil
}

func (d *Device) ConfigureSurface(width, height int)  { d.backend.ConfigureSurface(width, height) }
func (d *Device) SetPresentMode(mode PresentMode)     { d.backend.SetPresentMode(mode) }
func (d *Device) Queue() *wgpu.Queue                  { return d.backend.Queue() }
func (d *Device) GPUDevice() *wgpu.Device             { return d.backend.Device() }

func (d *Device) initBuffers() error {
	particleBytes := uint64(d.MaxParticles * layout.ParticleStride)
	beamBytes := uint64(d.MaxBeams * layout.BeamStride)
	mappingBytes := uint64((d.MaxParticles + d.MaxBeams) * 2)
	forcesBytes := uint64(d.MaxParticles * 2 * 4) // fx,fy as i32 per particle
	deleteBitmapWords := (d.MaxParticles + d.MaxBeams + 31) / 32
	deleteBitmapBytes := uint64(deleteBitmapWords * 4)

	storageUsage := wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst | wgpu.BufferUsageCopySrc

	makeStorage := func(label string, size uint64, usage wgpu.BufferUsage) (bind_group_provider.BindGroupProvider, error) {
		p := bind_group_provider.NewBindGroupProvider(label)
		buf, err := d.backend.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: label,
			Size:  size,
			Usage: usage,
		})
		if err != nil {
			return nil, fmt.Errorf("device: failed to create %s buffer: %w", label, err)
		}
		p.SetBuffer(0, buf)
		return p, nil
	}

	var err error
	if d.particleA, err = makeStorage("Particle Buffer 0", particleBytes, storageUsage); err != nil {
		return err
	}
	if d.particleB, err = makeStorage("Particle Buffer 1", particleBytes, storageUsage); err != nil {
		return err
	}
	if d.beamProvider, err = makeStorage("Beam Buffer", beamBytes, storageUsage); err != nil {
		return err
	}
	if d.mappingProvider, err = makeStorage("Mapping Buffer", mappingBytes, storageUsage); err != nil {
		return err
	}
	if d.metadataProvider, err = makeStorage("Metadata Buffer", uint64(layout.MetadataSize), storageUsage|wgpu.BufferUsageIndirect); err != nil {
		return err
	}
	if d.forcesProvider, err = makeStorage("Forces Scratch Buffer", forcesBytes, storageUsage); err != nil {
		return err
	}
	if d.deleteBitmapProvider, err = makeStorage("Delete Bitmap Buffer", deleteBitmapBytes, storageUsage); err != nil {
		return err
	}

	// Both draws are indexed only to satisfy DrawIndexedIndirect's argument
	// layout; the index buffers themselves never change. Instance index (not
	// index-buffer content) carries the live logical id, decoded from the
	// mapping table inside the vertex shader.
	indexUsage := wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst
	if d.particleCornerIndex, err = makeStorage("Particle Corner Index", 6, indexUsage); err != nil {
		return err
	}
	if d.beamEndpointIndex, err = makeStorage("Beam Endpoint Index", 4, indexUsage); err != nil {
		return err
	}
	cornerBytes := make([]byte, 6)
	layout.PutLeUint16(cornerBytes[0:2], 0)
	layout.PutLeUint16(cornerBytes[2:4], 1)
	layout.PutLeUint16(cornerBytes[4:6], 2)
	endpointBytes := make([]byte, 4)
	layout.PutLeUint16(endpointBytes[0:2], 0)
	layout.PutLeUint16(endpointBytes[2:4], 1)
	d.backend.WriteBuffers([]bind_group_provider.BufferWrite{
		{Provider: d.particleCornerIndex, Binding: 0, Offset: 0, Data: cornerBytes},
		{Provider: d.beamEndpointIndex, Binding: 0, Offset: 0, Data: endpointBytes},
	})

	return nil
}

func (d *Device) initPipelines(shaderDir string) error {
	updateShader := shader.NewShader("update", shader.ShaderTypeCompute, shaderDir+"/update.wgsl")
	deleteShader := shader.NewShader("delete", shader.ShaderTypeCompute, shaderDir+"/delete.wgsl")
	particleVert := shader.NewShader("particle-vert", shader.ShaderTypeVertex, shaderDir+"/particle.wgsl")
	particleFrag := shader.NewShader("particle-frag", shader.ShaderTypeFragment, shaderDir+"/particle.wgsl")
	beamVert := shader.NewShader("beam-vert", shader.ShaderTypeVertex, shaderDir+"/beam.wgsl")
	beamFrag := shader.NewShader("beam-frag", shader.ShaderTypeFragment, shaderDir+"/beam.wgsl")

	d.updatePipeline = pipeline.NewPipeline("update", pipeline.PipelineTypeCompute, pipeline.WithComputeShader(updateShader))
	if err := d.backend.RegisterComputePipeline(d.updatePipeline); err != nil {
		return fmt.Errorf("device: update pipeline: %w", err)
	}

	d.deletePipeline = pipeline.NewPipeline("delete", pipeline.PipelineTypeCompute, pipeline.WithComputeShader(deleteShader))
	if err := d.backend.RegisterComputePipeline(d.deletePipeline); err != nil {
		return fmt.Errorf("device: delete pipeline: %w", err)
	}

	d.particlePipeline = pipeline.NewPipeline("particle", pipeline.PipelineTypeRender,
		pipeline.WithVertexShader(particleVert),
		pipeline.WithFragmentShader(particleFrag),
		pipeline.WithTopology(wgpu.PrimitiveTopologyTriangleList),
		pipeline.WithBlendEnabled(true),
		pipeline.WithDepthTestEnabled(false),
		pipeline.WithDepthWriteEnabled(false),
		pipeline.WithBlendState(&wgpu.BlendState{
			Color: wgpu.BlendComponent{SrcFactor: wgpu.BlendFactorOne, DstFactor: wgpu.BlendFactorOneMinusSrcAlpha, Operation: wgpu.BlendOperationAdd},
			Alpha: wgpu.BlendComponent{SrcFactor: wgpu.BlendFactorOne, DstFactor: wgpu.BlendFactorOneMinusSrcAlpha, Operation: wgpu.BlendOperationAdd},
		}),
	)
	if err := d.backend.RegisterRenderPipeline(d.particlePipeline); err != nil {
		return fmt.Errorf("device: particle pipeline: %w", err)
	}

	d.beamPipeline = pipeline.NewPipeline("beam", pipeline.PipelineTypeRender,
		pipeline.WithVertexShader(beamVert),
		pipeline.WithFragmentShader(beamFrag),
		pipeline.WithTopology(wgpu.PrimitiveTopologyLineList),
		pipeline.WithBlendEnabled(false),
		pipeline.WithDepthTestEnabled(false),
		pipeline.WithDepthWriteEnabled(false),
	)
	if err := d.backend.RegisterRenderPipeline(d.beamPipeline); err != nil {
		return fmt.Errorf("device: beam pipeline: %w", err)
	}

	return nil
}

// initBindGroups wires each bind group's buffers in the binding order the
// WGSL sources declare them (see assets/shaders/*.wgsl). Update: metadata,
// read particles, write particles, beams, mapping, delete bitmap, forces
// scratch. Delete: metadata, mapping, delete bitmap. Particle render:
// metadata, particles, mapping. Beam render: metadata, beams, particles,
// mapping. The render draws are indexed only to satisfy DrawIndexedIndirect's
// argument layout — the bound index buffers hold a fixed {0,1,2}/{0,1}
// corner pattern, and the live logical id is carried by the native instance
// index instead, decoded against the mapping table inside the vertex shader.
func (d *Device) initBindGroups() error {
	updateShaderCompute := d.updatePipeline.Shader(shader.ShaderTypeCompute)
	updateLayoutDesc := updateShaderCompute.BindGroupLayoutDescriptor(0)

	d.updateBindGroupA = bind_group_provider.NewBindGroupProvider("Update Bind Group A")
	d.updateBindGroupA.SetBuffer(0, d.metadataProvider.Buffer(0))
	d.updateBindGroupA.SetBuffer(1, d.particleA.Buffer(0))
	d.updateBindGroupA.SetBuffer(2, d.particleB.Buffer(0))
	d.updateBindGroupA.SetBuffer(3, d.beamProvider.Buffer(0))
	d.updateBindGroupA.SetBuffer(4, d.mappingProvider.Buffer(0))
	d.updateBindGroupA.SetBuffer(5, d.deleteBitmapProvider.Buffer(0))
	d.updateBindGroupA.SetBuffer(6, d.forcesProvider.Buffer(0))
	if err := d.backend.InitBindGroup(d.updateBindGroupA, updateLayoutDesc, nil, nil); err != nil {
		return fmt.Errorf("device: update bind group A: %w", err)
	}

	d.updateBindGroupB = bind_group_provider.NewBindGroupProvider("Update Bind Group B")
	d.updateBindGroupB.SetBuffer(0, d.metadataProvider.Buffer(0))
	d.updateBindGroupB.SetBuffer(1, d.particleB.Buffer(0))
	d.updateBindGroupB.SetBuffer(2, d.particleA.Buffer(0))
	d.updateBindGroupB.SetBuffer(3, d.beamProvider.Buffer(0))
	d.updateBindGroupB.SetBuffer(4, d.mappingProvider.Buffer(0))
	d.updateBindGroupB.SetBuffer(5, d.deleteBitmapProvider.Buffer(0))
	d.updateBindGroupB.SetBuffer(6, d.forcesProvider.Buffer(0))
	if err := d.backend.InitBindGroup(d.updateBindGroupB, updateLayoutDesc, nil, nil); err != nil {
		return fmt.Errorf("device: update bind group B: %w", err)
	}

	deleteShaderCompute := d.deletePipeline.Shader(shader.ShaderTypeCompute)
	d.deleteBindGroup = bind_group_provider.NewBindGroupProvider("Delete Bind Group")
	d.deleteBindGroup.SetBuffer(0, d.metadataProvider.Buffer(0))
	d.deleteBindGroup.SetBuffer(1, d.mappingProvider.Buffer(0))
	d.deleteBindGroup.SetBuffer(2, d.deleteBitmapProvider.Buffer(0))
	if err := d.backend.InitBindGroup(d.deleteBindGroup, deleteShaderCompute.BindGroupLayoutDescriptor(0), nil, nil); err != nil {
		return fmt.Errorf("device: delete bind group: %w", err)
	}

	particleVertShader := d.particlePipeline.Shader(shader.ShaderTypeVertex)
	d.particleRenderBG = bind_group_provider.NewBindGroupProvider("Particle Render Bind Group")
	d.particleRenderBG.SetBuffer(0, d.metadataProvider.Buffer(0))
	d.particleRenderBG.SetBuffer(1, d.particleA.Buffer(0))
	d.particleRenderBG.SetBuffer(2, d.mappingProvider.Buffer(0))
	d.particleRenderBG.SetIndexBuffer(d.particleCornerIndex.Buffer(0))
	if err := d.backend.InitBindGroup(d.particleRenderBG, particleVertShader.BindGroupLayoutDescriptor(0), nil, nil); err != nil {
		return fmt.Errorf("device: particle render bind group: %w", err)
	}

	beamVertShader := d.beamPipeline.Shader(shader.ShaderTypeVertex)
	d.beamRenderBG = bind_group_provider.NewBindGroupProvider("Beam Render Bind Group")
	d.beamRenderBG.SetBuffer(0, d.metadataProvider.Buffer(0))
	d.beamRenderBG.SetBuffer(1, d.beamProvider.Buffer(0))
	d.beamRenderBG.SetBuffer(2, d.particleA.Buffer(0))
	d.beamRenderBG.SetBuffer(3, d.mappingProvider.Buffer(0))
	d.beamRenderBG.SetIndexBuffer(d.beamEndpointIndex.Buffer(0))
	if err := d.backend.InitBindGroup(d.beamRenderBG, beamVertShader.BindGroupLayoutDescriptor(0), nil, nil); err != nil {
		return fmt.Errorf("device: beam render bind group: %w", err)
	}

	return nil
}

// WorkgroupCount returns the number of 64-invocation workgroups needed to
// cover max(MaxParticles, MaxBeams), per §4.3's dispatch geometry.
func (d *Device) WorkgroupCount() uint32 {
	n := d.MaxParticles
	if d.MaxBeams > n {
		n = d.MaxBeams
	}
	return uint32((n + 63) / 64)
}

// BeginComputeFrame/EndComputeFrame bracket the batched sub-tick + delete
// dispatches for one frame (§4.5 steps 3–5).
func (d *Device) BeginComputeFrame() error { return d.backend.BeginComputeFrame() }
func (d *Device) EndComputeFrame()         { d.backend.EndComputeFrame() }

// RunSubtick dispatches the update kernel using bind group A on even
// sub-ticks and B on odd, per §4.3's buffer alternation.
func (d *Device) RunSubtick(variant BindVariant) {
	bg := d.updateBindGroupA
	if variant == VariantB {
		bg = d.updateBindGroupB
	}
	d.backend.DispatchCompute(d.updatePipeline, bg, [3]uint32{d.WorkgroupCount(), 1, 1})
}

// RunDelete dispatches the one-workgroup compaction pass (§4.3 delete pass).
func (d *Device) RunDelete() {
	d.backend.DispatchCompute(d.deletePipeline, d.deleteBindGroup, [3]uint32{1, 1, 1})
}

// BeginFrame/EndFrame/Present bracket the render pass (§4.5 step 6).
func (d *Device) BeginFrame() error { return d.backend.BeginFrame() }
func (d *Device) EndFrame()         { d.backend.EndFrame() }
func (d *Device) Present()          { d.backend.Present() }

// DrawParticlesIndirect draws the live particle billboard triangles, instance
// count pulled from the metadata buffer's ParticleDraw region. Each instance
// decodes its logical id from the instance index and looks up the physical
// slot via the mapping table in the vertex shader.
func (d *Device) DrawParticlesIndirect() {
	d.backend.DrawIndirect(d.particlePipeline, d.particleRenderBG, d.metadataProvider.Buffer(0), 0, []bind_group_provider.BindGroupProvider{d.particleRenderBG})
}

// DrawBeamsIndirect draws the live beam line segments, instance count pulled
// from the metadata buffer's BeamDraw region.
func (d *Device) DrawBeamsIndirect() {
	const indirectDrawArgsSize = 20
	d.backend.DrawIndirect(d.beamPipeline, d.beamRenderBG, d.metadataProvider.Buffer(0), indirectDrawArgsSize, []bind_group_provider.BindGroupProvider{d.beamRenderBG})
}

// WriteMetadata overwrites the entire metadata buffer (constants, counts,
// draw args, input). Used at construction and whenever physics constants
// change via PHYSICS_CONSTANTS.
func (d *Device) WriteMetadata(m layout.Metadata) {
	buf := make([]byte, layout.MetadataSize)
	layout.WriteMetadata(buf, m)
	d.backend.WriteBuffers([]bind_group_provider.BufferWrite{
		{Provider: d.metadataProvider, Binding: 0, Offset: 0, Data: buf},
	})
}

// WriteInputRegion writes just the per-frame input fields of the metadata
// buffer (§4.5 step 2), avoiding a full metadata re-encode every frame.
func (d *Device) WriteInputRegion(cursorActive uint32, cursorPosX, cursorPosY, cursorVelX, cursorVelY, keyboardForceX, keyboardForceY float32) {
	buf := make([]byte, 28) // CursorActive(4) + CursorPos(8) + CursorVel(8) + KeyboardForce(8)
	layout.PutLeUint32(buf[0:4], cursorActive)
	layout.PutLeFloat32(buf[4:8], cursorPosX)
	layout.PutLeFloat32(buf[8:12], cursorPosY)
	layout.PutLeFloat32(buf[12:16], cursorVelX)
	layout.PutLeFloat32(buf[16:20], cursorVelY)
	layout.PutLeFloat32(buf[20:24], keyboardForceX)
	layout.PutLeFloat32(buf[24:28], keyboardForceY)
	const cursorActiveOffset = 84
	d.backend.WriteBuffers([]bind_group_provider.BufferWrite{
		{Provider: d.metadataProvider, Binding: 0, Offset: cursorActiveOffset, Data: buf},
	})
}

// WriteParticlesAndBeams uploads a freshly written/loaded packed state
// (scenestore.PackedState) to the device buffers: particle data into P0,
// beam data, the mapping table, and the draw/count fields of metadata.
func (d *Device) WriteParticlesAndBeams(mapping *layout.Mapping, particleBytes, beamBytes []byte, particleCount, beamCount int) {
	writes := []bind_group_provider.BufferWrite{
		{Provider: d.particleA, Binding: 0, Offset: 0, Data: particleBytes},
		{Provider: d.beamProvider, Binding: 0, Offset: 0, Data: beamBytes},
		{Provider: d.mappingProvider, Binding: 0, Offset: 0, Data: mapping.Bytes()},
	}
	d.backend.WriteBuffers(writes)

	// Live counts are carried entirely by ParticleDraw.InstanceCount /
	// BeamDraw.InstanceCount; MaxParticles/MaxBeams (offset 40) are fixed
	// capacity constants set once at construction and never rewritten here.
	drawArgs := make([]byte, 40)
	layout.PutLeUint32(drawArgs[0:4], 3)
	layout.PutLeUint32(drawArgs[4:8], uint32(particleCount))
	layout.PutLeUint32(drawArgs[20:24], 2)
	layout.PutLeUint32(drawArgs[24:28], uint32(beamCount))
	d.backend.WriteBuffers([]bind_group_provider.BufferWrite{
		{Provider: d.metadataProvider, Binding: 0, Offset: 0, Data: drawArgs},
	})
}

// WriteConstantsSlab overwrites the 8xf32 physics-constants slab in place,
// used by PHYSICS_CONSTANTS and by the snapshot codec's Load write-through.
func (d *Device) WriteConstantsSlab(data []byte) {
	d.backend.WriteBuffers([]bind_group_provider.BufferWrite{
		{Provider: d.metadataProvider, Binding: 0, Offset: 48, Data: data},
	})
}

// ReadDrawCounts reads the live ParticleCount/BeamCount straight from the
// metadata buffer's indirect-draw instance-count fields. It is the first,
// sequential step of a snapshot Save — the subsequent buffer reads need
// these counts to know how many live bytes to stage-copy.
func (d *Device) ReadDrawCounts() (particleCount, beamCount int, err error) {
	buf, err := d.backend.ReadBuffer(d.metadataProvider.Buffer(0), 0, 40)
	if err != nil {
		return 0, 0, fmt.Errorf("device: read draw counts: %w", err)
	}
	return int(layout.LeUint32(buf[4:8])), int(layout.LeUint32(buf[24:28])), nil
}

// ReadConstantsSlab reads the 8xf32 physics-constants slab (gravity,
// borderElasticity, borderFriction, elasticity, friction, dragCoeff,
// dragExp) that the snapshot codec saves/loads (§4.6). It lives at a fixed
// offset within Metadata, immediately following MaxParticles/MaxBeams.
func (d *Device) ReadConstantsSlab() ([32]byte, error) {
	var out [32]byte
	buf, err := d.backend.ReadBuffer(d.metadataProvider.Buffer(0), 48, 32)
	if err != nil {
		return out, fmt.Errorf("device: read constants slab: %w", err)
	}
	copy(out[:], buf)
	return out, nil
}

// ReadLiveParticleMapping reads the first particleCount entries of the
// mapping table's particle section — the live particle-mapping section of a
// snapshot.
func (d *Device) ReadLiveParticleMapping(particleCount int) ([]byte, error) {
	buf, err := d.backend.ReadBuffer(d.mappingProvider.Buffer(0), 0, uint64(particleCount*2))
	if err != nil {
		return nil, fmt.Errorf("device: read particle mapping: %w", err)
	}
	return buf, nil
}

// ReadLiveBeamMapping reads the first beamCount entries of the mapping
// table's beam section (offset MaxParticles entries into the table).
func (d *Device) ReadLiveBeamMapping(beamCount int) ([]byte, error) {
	buf, err := d.backend.ReadBuffer(d.mappingProvider.Buffer(0), uint64(d.MaxParticles*2), uint64(beamCount*2))
	if err != nil {
		return nil, fmt.Errorf("device: read beam mapping: %w", err)
	}
	return buf, nil
}

// ReadLiveParticles reads the first particleCount records of the
// authoritative particle buffer. Subticks are always even (§9), so P0
// (particleA) is always authoritative at frame end, which is also what the
// render pass reads.
func (d *Device) ReadLiveParticles(particleCount int) ([]byte, error) {
	buf, err := d.backend.ReadBuffer(d.particleA.Buffer(0), 0, uint64(particleCount*layout.ParticleStride))
	if err != nil {
		return nil, fmt.Errorf("device: read particles: %w", err)
	}
	return buf, nil
}

// ReadLiveBeams reads the first beamCount records of the beam buffer.
func (d *Device) ReadLiveBeams(beamCount int) ([]byte, error) {
	buf, err := d.backend.ReadBuffer(d.beamProvider.Buffer(0), 0, uint64(beamCount*layout.BeamStride))
	if err != nil {
		return nil, fmt.Errorf("device: read beams: %w", err)
	}
	return buf, nil
}

// ClearScratch zeros the force-accumulation scratch buffer, the delete
// bitmap, and the non-authoritative particle buffer (P1). A snapshot Load
// must not let a stale force accumulator or delete bit from the previous
// scene bleed into the freshly loaded one.
func (d *Device) ClearScratch() {
	forcesBytes := make([]byte, d.MaxParticles*2*4)
	deleteBitmapWords := (d.MaxParticles + d.MaxBeams + 31) / 32
	deleteBitmapBytes := make([]byte, deleteBitmapWords*4)
	particleBBytes := make([]byte, d.MaxParticles*layout.ParticleStride)
	d.backend.WriteBuffers([]bind_group_provider.BufferWrite{
		{Provider: d.forcesProvider, Binding: 0, Offset: 0, Data: forcesBytes},
		{Provider: d.deleteBitmapProvider, Binding: 0, Offset: 0, Data: deleteBitmapBytes},
		{Provider: d.particleB, Binding: 0, Offset: 0, Data: particleBBytes},
	})
}

// Corrupt overwrites the whole of P0 (particleA) with 0xFF bytes, which
// read back as NaN floats. It backs the CorruptBuffers diagnostic message
// (§6); the beam buffer and P1 are left untouched.
func (d *Device) Corrupt() {
	garbage := make([]byte, d.MaxParticles*layout.ParticleStride)
	for i := range garbage {
		garbage[i] = 0xFF
	}
	d.backend.WriteBuffers([]bind_group_provider.BufferWrite{
		{Provider: d.particleA, Binding: 0, Offset: 0, Data: garbage},
	})
}
