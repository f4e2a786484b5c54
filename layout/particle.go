package layout

import (
	"github.com/spsquared/softbody-webgpu/common"
)

// Particle is a unit-mass circle of the engine-wide particle radius
// (Metadata.ParticleRadius) with position, velocity, and acceleration.
// Acceleration is a per-substep force accumulator; it is zeroed by the compute
// kernel after every integration step.
//
// Layout (24 bytes, little-endian): PosX, PosY, VelX, VelY, AccX, AccY, all f32.
type Particle struct {
	PosX, PosY float32
	VelX, VelY float32
	AccX, AccY float32
}

// ReadParticle decodes a Particle from a physical slot of a packed particle buffer.
func ReadParticle(buf []byte, slot int) Particle {
	off := slot * ParticleStride
	b := buf[off : off+ParticleStride]
	return Particle{
		PosX: leFloat32(b[0:4]),
		PosY: leFloat32(b[4:8]),
		VelX: leFloat32(b[8:12]),
		VelY: leFloat32(b[12:16]),
		AccX: leFloat32(b[16:20]),
		AccY: leFloat32(b[20:24]),
	}
}

// WriteParticle encodes p into the given physical slot of a packed particle buffer.
func WriteParticle(buf []byte, slot int, p Particle) {
	off := slot * ParticleStride
	b := buf[off : off+ParticleStride]
	putLeFloat32(b[0:4], p.PosX)
	putLeFloat32(b[4:8], p.PosY)
	putLeFloat32(b[8:12], p.VelX)
	putLeFloat32(b[12:16], p.VelY)
	putLeFloat32(b[16:20], p.AccX)
	putLeFloat32(b[20:24], p.AccY)
}

// ParticlesToBytes produces a zero-copy byte view over a slice of packed-order
// particles, suitable for a single queue.WriteBuffer call.
func ParticlesToBytes(particles []Particle) []byte {
	return common.SliceToBytes(particles)
}
