package layout

// Mapping is the logical-id -> physical-slot indirection table. It is laid out
// as two contiguous sections: particle logical ids [0, MaxParticles) followed by
// beam logical ids [MaxParticles, MaxParticles+MaxBeams). The same table doubles
// as the index buffer for indirect-draw on the device.
type Mapping struct {
	MaxParticles int
	MaxBeams     int
	Slots        []uint16
}

// NewMapping allocates a mapping table for the given capacities, with every
// entry set to InvalidSlot.
func NewMapping(maxParticles, maxBeams int) *Mapping {
	m := &Mapping{
		MaxParticles: maxParticles,
		MaxBeams:     maxBeams,
		Slots:        make([]uint16, maxParticles+maxBeams),
	}
	for i := range m.Slots {
		m.Slots[i] = InvalidSlot
	}
	return m
}

// ParticleSlot returns the physical slot for particle logical id.
func (m *Mapping) ParticleSlot(logicalID int) uint16 {
	return m.Slots[logicalID]
}

// SetParticleSlot sets the physical slot for particle logical id.
func (m *Mapping) SetParticleSlot(logicalID int, slot uint16) {
	m.Slots[logicalID] = slot
}

// BeamSlot returns the physical slot for beam logical id.
func (m *Mapping) BeamSlot(logicalID int) uint16 {
	return m.Slots[m.MaxParticles+logicalID]
}

// SetBeamSlot sets the physical slot for beam logical id.
func (m *Mapping) SetBeamSlot(logicalID int, slot uint16) {
	m.Slots[m.MaxParticles+logicalID] = slot
}

// ParticleLogicalID reconstructs the logical id owning physicalSlot by linear
// scan over the first particleCount entries of the particle section. Returns
// -1 if no live particle logical id maps to that slot. This is the expensive
// path spec.md documents as acceptable only during edit/snapshot loads.
func (m *Mapping) ParticleLogicalID(particleCount int, physicalSlot uint16) int {
	for i := 0; i < particleCount; i++ {
		if m.Slots[i] == physicalSlot {
			return i
		}
	}
	return -1
}

// Bytes returns a little-endian copy of the full mapping table (particle
// section then beam section), the form uploaded as the index buffer.
func (m *Mapping) Bytes() []byte {
	out := make([]byte, len(m.Slots)*2)
	for i, s := range m.Slots {
		putLeUint16(out[i*2:i*2+2], s)
	}
	return out
}
