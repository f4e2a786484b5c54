package scenestore

import (
	"testing"

	"github.com/spsquared/softbody-webgpu/layout"
)

func TestAddParticleDuplicate(t *testing.T) {
	s := New(4, 4)
	if err := s.AddParticle(0, layout.Particle{PosX: 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.AddParticle(0, layout.Particle{}); err != ErrDuplicateID {
		t.Fatalf("expected ErrDuplicateID, got %v", err)
	}
}

func TestAddParticleCapacity(t *testing.T) {
	s := New(1, 1)
	if err := s.AddParticle(0, layout.Particle{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.AddParticle(1, layout.Particle{}); err != ErrCapacityExceeded {
		t.Fatalf("expected ErrCapacityExceeded, got %v", err)
	}
}

func TestRemoveParticleRemovesAttachedBeams(t *testing.T) {
	s := New(4, 4)
	_ = s.AddParticle(0, layout.Particle{})
	_ = s.AddParticle(1, layout.Particle{})
	_ = s.AddBeam(0, layout.Beam{ParticleA: 0, ParticleB: 1, OriginalLen: 10, TargetLen: 10})

	s.RemoveParticle(0)

	if _, ok := s.FindBeam(0); ok {
		t.Fatalf("expected beam 0 to be removed along with particle 0")
	}
	if _, ok := s.FindParticle(1); !ok {
		t.Fatalf("expected particle 1 to remain")
	}
}

func TestRemoveIdempotent(t *testing.T) {
	s := New(4, 4)
	s.RemoveParticle(99)
	s.RemoveBeam(99)
}

func TestWriteStateCompactsInInsertionOrder(t *testing.T) {
	s := New(4, 4)
	_ = s.AddParticle(5, layout.Particle{PosX: 1})
	_ = s.AddParticle(2, layout.Particle{PosX: 2})
	s.RemoveParticle(5)
	_ = s.AddParticle(7, layout.Particle{PosX: 3})

	state := s.WriteState()
	if state.ParticleCount != 2 {
		t.Fatalf("expected 2 live particles, got %d", state.ParticleCount)
	}
	p0 := layout.ReadParticle(state.ParticleBytes, 0)
	p1 := layout.ReadParticle(state.ParticleBytes, 1)
	if p0.PosX != 2 || p1.PosX != 3 {
		t.Fatalf("unexpected compacted order: %+v %+v", p0, p1)
	}
}

func TestWriteLoadRoundTrip(t *testing.T) {
	s := New(8, 8)
	_ = s.AddParticle(0, layout.Particle{PosX: 10, PosY: 20})
	_ = s.AddParticle(1, layout.Particle{PosX: 30, PosY: 40})
	_ = s.AddBeam(0, layout.Beam{
		ParticleA: 0, ParticleB: 1,
		OriginalLen: 100, TargetLen: 100, LastLen: 100,
		Spring: 10, Damp: 1, YieldStrain: 0.1, StrainBreakLimit: 0.2,
	})

	state := s.WriteState()
	reloaded := LoadState(8, 8, state)

	if reloaded.ParticleCount() != 2 || reloaded.BeamCount() != 1 {
		t.Fatalf("counts not preserved: particles=%d beams=%d", reloaded.ParticleCount(), reloaded.BeamCount())
	}
	p, ok := reloaded.FindParticle(0)
	if !ok || p.PosX != 10 || p.PosY != 20 {
		t.Fatalf("particle 0 not preserved: %+v", p)
	}
	b, ok := reloaded.FindBeam(0)
	if !ok || b.OriginalLen != 100 || b.Spring != 10 {
		t.Fatalf("beam 0 not preserved: %+v", b)
	}
}

func TestParallelEncodingMatchesInline(t *testing.T) {
	s := New(parallelThreshold*2, 0)
	for i := 0; i < parallelThreshold+10; i++ {
		_ = s.AddParticle(i, layout.Particle{PosX: float32(i), PosY: float32(i) * 2})
	}
	state := s.WriteState()
	if state.ParticleCount != parallelThreshold+10 {
		t.Fatalf("expected %d particles, got %d", parallelThreshold+10, state.ParticleCount)
	}
	for i := 0; i < state.ParticleCount; i++ {
		p := layout.ReadParticle(state.ParticleBytes, i)
		if p.PosX != float32(i) || p.PosY != float32(i)*2 {
			t.Fatalf("slot %d corrupted: %+v", i, p)
		}
	}
}
