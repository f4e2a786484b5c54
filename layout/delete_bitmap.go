package layout

// DeleteBitmap is a packed bit array marking entities (particles then beams,
// in logical-id order) scheduled for removal by the delete-compaction pass.
type DeleteBitmap struct {
	MaxParticles int
	Words        []uint32
}

// NewDeleteBitmap allocates a cleared bitmap sized for maxParticles+maxBeams bits.
func NewDeleteBitmap(maxParticles, maxBeams int) *DeleteBitmap {
	total := maxParticles + maxBeams
	return &DeleteBitmap{
		MaxParticles: maxParticles,
		Words:        make([]uint32, (total+31)/32),
	}
}

func (d *DeleteBitmap) bitIndex(particleOrBeamLogicalID int, isBeam bool) int {
	if isBeam {
		return d.MaxParticles + particleOrBeamLogicalID
	}
	return particleOrBeamLogicalID
}

// TestParticle reports whether particle logicalID is marked for deletion.
func (d *DeleteBitmap) TestParticle(logicalID int) bool {
	return d.test(d.bitIndex(logicalID, false))
}

// SetParticle marks particle logicalID for deletion.
func (d *DeleteBitmap) SetParticle(logicalID int) {
	d.set(d.bitIndex(logicalID, false))
}

// TestBeam reports whether beam logicalID is marked for deletion.
func (d *DeleteBitmap) TestBeam(logicalID int) bool {
	return d.test(d.bitIndex(logicalID, true))
}

// SetBeam marks beam logicalID for deletion.
func (d *DeleteBitmap) SetBeam(logicalID int) {
	d.set(d.bitIndex(logicalID, true))
}

func (d *DeleteBitmap) test(bit int) bool {
	return d.Words[bit/32]&(1<<uint(bit%32)) != 0
}

func (d *DeleteBitmap) set(bit int) {
	d.Words[bit/32] |= 1 << uint(bit%32)
}

// Clear zeros every word, consuming all pending deletions. Called by the
// delete pass after compaction.
func (d *DeleteBitmap) Clear() {
	for i := range d.Words {
		d.Words[i] = 0
	}
}

// Bytes returns a little-endian copy of the bitmap words for GPU upload.
func (d *DeleteBitmap) Bytes() []byte {
	out := make([]byte, len(d.Words)*4)
	for i, w := range d.Words {
		putLeUint32(out[i*4:i*4+4], w)
	}
	return out
}
