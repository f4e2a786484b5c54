package layout

// Beam is a spring-damper link between two particles, addressed on the host by
// the logical particle ids of its endpoints. On the device the endpoints are
// stored as physical slots; WriteBeam/ReadBeam perform the translation through
// a Mapping table.
//
// Layout (40 bytes, little-endian): packed u32 (low u16 = slot A, high u16 =
// slot B), then OriginalLen, TargetLen, LastLen, Spring, Damp, YieldStrain,
// StrainBreakLimit, Strain, Stress, all f32 (9 fields, 36 bytes).
type Beam struct {
	ParticleA, ParticleB int // logical particle ids
	OriginalLen          float32
	TargetLen            float32
	LastLen              float32
	Spring               float32
	Damp                 float32
	YieldStrain          float32
	StrainBreakLimit     float32
	Strain               float32
	Stress               float32
}

// WriteBeam encodes b into the given physical beam slot, translating its
// logical particle endpoints to physical slots via mapping.
func WriteBeam(buf []byte, slot int, b Beam, mapping *Mapping) {
	off := slot * BeamStride
	field := buf[off : off+BeamStride]
	slotA := mapping.ParticleSlot(b.ParticleA)
	slotB := mapping.ParticleSlot(b.ParticleB)
	putLeUint16(field[0:2], slotA)
	putLeUint16(field[2:4], slotB)
	putLeFloat32(field[4:8], b.OriginalLen)
	putLeFloat32(field[8:12], b.TargetLen)
	putLeFloat32(field[12:16], b.LastLen)
	putLeFloat32(field[16:20], b.Spring)
	putLeFloat32(field[20:24], b.Damp)
	putLeFloat32(field[24:28], b.YieldStrain)
	putLeFloat32(field[28:32], b.StrainBreakLimit)
	putLeFloat32(field[32:36], b.Strain)
	putLeFloat32(field[36:40], b.Stress)
}

// ReadBeam decodes the beam at the given physical slot, reconstructing logical
// particle ids by linear-scanning the mapping table's particle section. This
// is the expensive path spec.md calls out as acceptable only for edit/snapshot
// loads, never per-frame.
func ReadBeam(buf []byte, slot int, mapping *Mapping, particleCount int) Beam {
	raw := ReadBeamRaw(buf, slot)
	logicalA := mapping.ParticleLogicalID(particleCount, raw.SlotA)
	logicalB := mapping.ParticleLogicalID(particleCount, raw.SlotB)
	return Beam{
		ParticleA:        logicalA,
		ParticleB:        logicalB,
		OriginalLen:      raw.OriginalLen,
		TargetLen:        raw.TargetLen,
		LastLen:          raw.LastLen,
		Spring:           raw.Spring,
		Damp:             raw.Damp,
		YieldStrain:      raw.YieldStrain,
		StrainBreakLimit: raw.StrainBreakLimit,
		Strain:           raw.Strain,
		Stress:           raw.Stress,
	}
}

// BeamRaw is the device-facing decode of a beam record: physical slots, no
// logical-id translation.
type BeamRaw struct {
	SlotA, SlotB     uint16
	OriginalLen      float32
	TargetLen        float32
	LastLen          float32
	Spring           float32
	Damp             float32
	YieldStrain      float32
	StrainBreakLimit float32
	Strain           float32
	Stress           float32
}

// ReadBeamRaw decodes the beam at the given physical slot without translating
// endpoints to logical ids.
func ReadBeamRaw(buf []byte, slot int) BeamRaw {
	off := slot * BeamStride
	field := buf[off : off+BeamStride]
	return BeamRaw{
		SlotA:            leUint16(field[0:2]),
		SlotB:            leUint16(field[2:4]),
		OriginalLen:      leFloat32(field[4:8]),
		TargetLen:        leFloat32(field[8:12]),
		LastLen:          leFloat32(field[12:16]),
		Spring:           leFloat32(field[16:20]),
		Damp:             leFloat32(field[20:24]),
		YieldStrain:      leFloat32(field[24:28]),
		StrainBreakLimit: leFloat32(field[28:32]),
		Strain:           leFloat32(field[32:36]),
		Stress:           leFloat32(field[36:40]),
	}
}
