// Package layout defines the fixed binary layouts shared between the host and the
// GPU: particles, beams, the mapping table, and the metadata record. All encodings
// are little-endian and match the WGSL struct declarations in assets/shaders
// exactly; nothing here may change independently of the shader source.
package layout

// ParticleStride is the byte size of one packed Particle record.
const ParticleStride = 24

// BeamStride is the byte size of one packed Beam record.
const BeamStride = 40

// MetadataSize is the byte size of the Metadata record.
const MetadataSize = 128

// InvalidSlot marks a mapping-table entry with no physical slot assigned.
const InvalidSlot = 0xFFFF
