package layout

import "testing"

func TestParticleRoundTrip(t *testing.T) {
	buf := make([]byte, ParticleStride*2)
	p := Particle{PosX: 1.5, PosY: -2.5, VelX: 3, VelY: -4, AccX: 0.125, AccY: -0.25}
	WriteParticle(buf, 1, p)

	got := ReadParticle(buf, 1)
	if got != p {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, p)
	}
	zero := ReadParticle(buf, 0)
	if zero != (Particle{}) {
		t.Fatalf("slot 0 should be untouched, got %+v", zero)
	}
}

func TestBeamRoundTrip(t *testing.T) {
	mapping := NewMapping(4, 4)
	mapping.SetParticleSlot(0, 2)
	mapping.SetParticleSlot(1, 3)

	buf := make([]byte, BeamStride)
	b := Beam{
		ParticleA: 0, ParticleB: 1,
		OriginalLen: 100, TargetLen: 110, LastLen: 105,
		Spring: 10, Damp: 1, YieldStrain: 0.1, StrainBreakLimit: 0.2,
		Strain: 0.05, Stress: 2.5,
	}
	WriteBeam(buf, 0, b, mapping)

	raw := ReadBeamRaw(buf, 0)
	if raw.SlotA != 2 || raw.SlotB != 3 {
		t.Fatalf("expected physical slots 2,3, got %d,%d", raw.SlotA, raw.SlotB)
	}

	got := ReadBeam(buf, 0, mapping, 2)
	if got.ParticleA != 0 || got.ParticleB != 1 {
		t.Fatalf("expected logical ids 0,1, got %d,%d", got.ParticleA, got.ParticleB)
	}
	if got.OriginalLen != b.OriginalLen || got.Spring != b.Spring || got.Stress != b.Stress {
		t.Fatalf("field mismatch: got %+v want %+v", got, b)
	}
}

func TestMetadataRoundTrip(t *testing.T) {
	buf := make([]byte, MetadataSize)
	m := Metadata{
		ParticleDraw: IndirectDrawArgs{VertexCount: 3, InstanceCount: 100},
		BeamDraw:     IndirectDrawArgs{VertexCount: 2, InstanceCount: 50},
		MaxParticles: 1000, MaxBeams: 2000,
		GravityX: 0, GravityY: -0.5,
		BorderElasticity: 0.5, BorderFriction: 0.1,
		PairElasticity: 1, PairFriction: 0,
		DragCoeff: 0.01, DragExp: 2,
		UserForce:    1.5,
		CursorActive: 1,
		CursorPosX:   500, CursorPosY: 500,
		CursorVelX: 1, CursorVelY: 2,
		KeyboardForceX: 0.1, KeyboardForceY: 0.2,
		ParticleRadius: 8, Bounds: 1000, DeltaTime: 1.0 / 64.0,
	}
	WriteMetadata(buf, m)
	got := ReadMetadata(buf)
	if got != m {
		t.Fatalf("metadata round trip mismatch:\ngot  %+v\nwant %+v", got, m)
	}
}

func TestMetadataSizeIs128Bytes(t *testing.T) {
	if len(make([]byte, MetadataSize)) != 128 {
		t.Fatalf("MetadataSize must be 128, got %d", MetadataSize)
	}
}

func TestMappingParticleLogicalID(t *testing.T) {
	m := NewMapping(4, 4)
	m.SetParticleSlot(0, 7)
	m.SetParticleSlot(1, 3)
	m.SetParticleSlot(2, 9)

	if id := m.ParticleLogicalID(3, 3); id != 1 {
		t.Fatalf("expected logical id 1 for slot 3, got %d", id)
	}
	if id := m.ParticleLogicalID(3, 255); id != -1 {
		t.Fatalf("expected -1 for unmapped slot, got %d", id)
	}
}

func TestDeleteBitmapSetTestClear(t *testing.T) {
	d := NewDeleteBitmap(40, 20)
	d.SetParticle(5)
	d.SetBeam(3)

	if !d.TestParticle(5) {
		t.Fatalf("expected particle 5 marked")
	}
	if !d.TestBeam(3) {
		t.Fatalf("expected beam 3 marked")
	}
	if d.TestParticle(6) {
		t.Fatalf("particle 6 should not be marked")
	}
	d.Clear()
	if d.TestParticle(5) || d.TestBeam(3) {
		t.Fatalf("expected bitmap cleared")
	}
}
