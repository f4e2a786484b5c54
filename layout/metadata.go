package layout

// IndirectDrawArgs mirrors wgpu's DrawIndexedIndirect argument block (20 bytes,
// 5 u32 words): vertex count, instance count, first vertex, base vertex, first
// instance.
type IndirectDrawArgs struct {
	VertexCount   uint32
	InstanceCount uint32
	FirstVertex   uint32
	BaseVertex    uint32
	FirstInstance uint32
}

// Metadata is the fixed-size record shared by the compute kernels, the host
// queue, and the indirect-draw commands. Field order matches spec.md section 3;
// it is 128 bytes, the last 16 of which are construction-time constants
// (particle radius, world bounds, delta time) plus a reserved pad word that
// keeps the record's size a multiple of 8 for WGSL's vec2<f32> alignment.
type Metadata struct {
	ParticleDraw IndirectDrawArgs // 20 bytes
	BeamDraw     IndirectDrawArgs // 20 bytes

	MaxParticles uint32
	MaxBeams     uint32

	GravityX, GravityY float32

	BorderElasticity float32
	BorderFriction   float32
	PairElasticity   float32
	PairFriction     float32
	DragCoeff        float32
	DragExp          float32
	UserForce        float32

	CursorActive uint32 // 0 or 1

	CursorPosX, CursorPosY float32
	CursorVelX, CursorVelY float32

	KeyboardForceX, KeyboardForceY float32

	// ParticleRadius and Bounds are fixed at engine construction (§6 config
	// options) and never change afterward, the same way MaxParticles/MaxBeams
	// are construction-time constants carried in this record rather than
	// recomputed per frame. They live outside the 8xf32 physics-constants
	// slab the snapshot codec saves/loads (§4.6) since they are not among the
	// "recognized physics scalars" a snapshot or PHYSICS_CONSTANTS message can
	// change.
	ParticleRadius float32
	Bounds         float32 // world is a Bounds x Bounds square
	DeltaTime      float32 // 1/subticks; also construction-time fixed

	reserved uint32 // pads the record to a multiple of 8 for WGSL vec2 alignment
}

const (
	offParticleDraw   = 0
	offBeamDraw       = 20
	offMaxParticles   = 40
	offMaxBeams       = 44
	offGravity        = 48
	offBorderElastic  = 56
	offBorderFriction = 60
	offPairElastic    = 64
	offPairFriction   = 68
	offDragCoeff      = 72
	offDragExp        = 76
	offUserForce      = 80
	offCursorActive   = 84
	offCursorPos      = 88
	offCursorVel      = 96
	offKeyboardForce  = 104
	offParticleRadius = 112
	offBounds         = 116
	offDeltaTime      = 120
	offReserved       = 124
)

func writeIndirect(b []byte, off int, a IndirectDrawArgs) {
	putLeUint32(b[off:off+4], a.VertexCount)
	putLeUint32(b[off+4:off+8], a.InstanceCount)
	putLeUint32(b[off+8:off+12], a.FirstVertex)
	putLeUint32(b[off+12:off+16], a.BaseVertex)
	putLeUint32(b[off+16:off+20], a.FirstInstance)
}

func readIndirect(b []byte, off int) IndirectDrawArgs {
	return IndirectDrawArgs{
		VertexCount:   leUint32(b[off : off+4]),
		InstanceCount: leUint32(b[off+4 : off+8]),
		FirstVertex:   leUint32(b[off+8 : off+12]),
		BaseVertex:    leUint32(b[off+12 : off+16]),
		FirstInstance: leUint32(b[off+16 : off+20]),
	}
}

// WriteMetadata encodes m into a MetadataSize-byte buffer.
func WriteMetadata(buf []byte, m Metadata) {
	writeIndirect(buf, offParticleDraw, m.ParticleDraw)
	writeIndirect(buf, offBeamDraw, m.BeamDraw)
	putLeUint32(buf[offMaxParticles:offMaxParticles+4], m.MaxParticles)
	putLeUint32(buf[offMaxBeams:offMaxBeams+4], m.MaxBeams)
	putLeFloat32(buf[offGravity:offGravity+4], m.GravityX)
	putLeFloat32(buf[offGravity+4:offGravity+8], m.GravityY)
	putLeFloat32(buf[offBorderElastic:offBorderElastic+4], m.BorderElasticity)
	putLeFloat32(buf[offBorderFriction:offBorderFriction+4], m.BorderFriction)
	putLeFloat32(buf[offPairElastic:offPairElastic+4], m.PairElasticity)
	putLeFloat32(buf[offPairFriction:offPairFriction+4], m.PairFriction)
	putLeFloat32(buf[offDragCoeff:offDragCoeff+4], m.DragCoeff)
	putLeFloat32(buf[offDragExp:offDragExp+4], m.DragExp)
	putLeFloat32(buf[offUserForce:offUserForce+4], m.UserForce)
	putLeUint32(buf[offCursorActive:offCursorActive+4], m.CursorActive)
	putLeFloat32(buf[offCursorPos:offCursorPos+4], m.CursorPosX)
	putLeFloat32(buf[offCursorPos+4:offCursorPos+8], m.CursorPosY)
	putLeFloat32(buf[offCursorVel:offCursorVel+4], m.CursorVelX)
	putLeFloat32(buf[offCursorVel+4:offCursorVel+8], m.CursorVelY)
	putLeFloat32(buf[offKeyboardForce:offKeyboardForce+4], m.KeyboardForceX)
	putLeFloat32(buf[offKeyboardForce+4:offKeyboardForce+8], m.KeyboardForceY)
	putLeFloat32(buf[offParticleRadius:offParticleRadius+4], m.ParticleRadius)
	putLeFloat32(buf[offBounds:offBounds+4], m.Bounds)
	putLeFloat32(buf[offDeltaTime:offDeltaTime+4], m.DeltaTime)
	putLeUint32(buf[offReserved:offReserved+4], m.reserved)
}

// ReadMetadata decodes a Metadata record from a MetadataSize-byte buffer.
func ReadMetadata(buf []byte) Metadata {
	return Metadata{
		ParticleDraw:     readIndirect(buf, offParticleDraw),
		BeamDraw:         readIndirect(buf, offBeamDraw),
		MaxParticles:     leUint32(buf[offMaxParticles : offMaxParticles+4]),
		MaxBeams:         leUint32(buf[offMaxBeams : offMaxBeams+4]),
		GravityX:         leFloat32(buf[offGravity : offGravity+4]),
		GravityY:         leFloat32(buf[offGravity+4 : offGravity+8]),
		BorderElasticity: leFloat32(buf[offBorderElastic : offBorderElastic+4]),
		BorderFriction:   leFloat32(buf[offBorderFriction : offBorderFriction+4]),
		PairElasticity:   leFloat32(buf[offPairElastic : offPairElastic+4]),
		PairFriction:     leFloat32(buf[offPairFriction : offPairFriction+4]),
		DragCoeff:        leFloat32(buf[offDragCoeff : offDragCoeff+4]),
		DragExp:          leFloat32(buf[offDragExp : offDragExp+4]),
		UserForce:        leFloat32(buf[offUserForce : offUserForce+4]),
		CursorActive:     leUint32(buf[offCursorActive : offCursorActive+4]),
		CursorPosX:       leFloat32(buf[offCursorPos : offCursorPos+4]),
		CursorPosY:       leFloat32(buf[offCursorPos+4 : offCursorPos+8]),
		CursorVelX:       leFloat32(buf[offCursorVel : offCursorVel+4]),
		CursorVelY:       leFloat32(buf[offCursorVel+4 : offCursorVel+8]),
		KeyboardForceX:   leFloat32(buf[offKeyboardForce : offKeyboardForce+4]),
		KeyboardForceY:   leFloat32(buf[offKeyboardForce+4 : offKeyboardForce+8]),
		ParticleRadius:   leFloat32(buf[offParticleRadius : offParticleRadius+4]),
		Bounds:           leFloat32(buf[offBounds : offBounds+4]),
		DeltaTime:        leFloat32(buf[offDeltaTime : offDeltaTime+4]),
		reserved:         leUint32(buf[offReserved : offReserved+4]),
	}
}
