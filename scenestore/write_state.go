package scenestore

import (
	"sync"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/spsquared/softbody-webgpu/layout"
)

// PackedState is the compacted, physical-slot form of a Store: a mapping
// table plus the packed particle/beam byte buffers, ready for upload.
type PackedState struct {
	Mapping       *layout.Mapping
	ParticleBytes []byte
	BeamBytes     []byte
	ParticleCount int
	BeamCount     int
}

// WriteState compacts the store into packed buffers, assigning physical slots
// in insertion order. IDs are not guaranteed stable across a write/load cycle.
//
// Above parallelThreshold live entities, encoding is fanned out across a
// worker pool in fixed-size shards with a WaitGroup barrier (mirrors the
// teacher's per-frame CPU-prep pattern: pool.Wait() idle-exits workers, which
// is unsuitable for frame-rate work, so an explicit WaitGroup is used
// instead). Below the threshold encoding runs inline to avoid pool overhead.
func (s *Store) WriteState() PackedState {
	liveParticles := make([]int, 0, len(s.particles))
	for _, id := range s.particleOrder {
		if _, ok := s.particles[id]; ok {
			liveParticles = append(liveParticles, id)
		}
	}
	liveBeams := make([]int, 0, len(s.beams))
	for _, id := range s.beamOrder {
		if _, ok := s.beams[id]; ok {
			liveBeams = append(liveBeams, id)
		}
	}

	mapping := layout.NewMapping(s.MaxParticles, s.MaxBeams)
	for slot, id := range liveParticles {
		mapping.SetParticleSlot(id, uint16(slot))
	}

	particleBytes := make([]byte, len(liveParticles)*layout.ParticleStride)
	s.encodeParticles(liveParticles, particleBytes)

	for slot, id := range liveBeams {
		mapping.SetBeamSlot(id, uint16(slot))
	}
	beamBytes := make([]byte, len(liveBeams)*layout.BeamStride)
	s.encodeBeams(liveBeams, mapping, beamBytes)

	return PackedState{
		Mapping:       mapping,
		ParticleBytes: particleBytes,
		BeamBytes:     beamBytes,
		ParticleCount: len(liveParticles),
		BeamCount:     len(liveBeams),
	}
}

func (s *Store) encodeParticles(ids []int, out []byte) {
	if len(ids) < parallelThreshold {
		for slot, id := range ids {
			p := s.particles[id]
			layout.WriteParticle(out, slot, p)
		}
		return
	}
	pool := s.ensurePool()
	var wg sync.WaitGroup
	taskID := 0
	for shardStart := 0; shardStart < len(ids); shardStart += shardSize {
		shardEnd := shardStart + shardSize
		if shardEnd > len(ids) {
			shardEnd = len(ids)
		}
		start, end := shardStart, shardEnd
		wg.Add(1)
		id := taskID
		taskID++
		pool.SubmitTask(worker.Task{
			ID: id,
			Do: func() (any, error) {
				defer wg.Done()
				for slot := start; slot < end; slot++ {
					p := s.particles[ids[slot]]
					layout.WriteParticle(out, slot, p)
				}
				return nil, nil
			},
		})
	}
	wg.Wait()
}

func (s *Store) encodeBeams(ids []int, mapping *layout.Mapping, out []byte) {
	if len(ids) < parallelThreshold {
		for slot, id := range ids {
			b := s.beams[id]
			layout.WriteBeam(out, slot, b, mapping)
		}
		return
	}
	pool := s.ensurePool()
	var wg sync.WaitGroup
	taskID := 0
	for shardStart := 0; shardStart < len(ids); shardStart += shardSize {
		shardEnd := shardStart + shardSize
		if shardEnd > len(ids) {
			shardEnd = len(ids)
		}
		start, end := shardStart, shardEnd
		wg.Add(1)
		id := taskID
		taskID++
		pool.SubmitTask(worker.Task{
			ID: id,
			Do: func() (any, error) {
				defer wg.Done()
				for slot := start; slot < end; slot++ {
					b := s.beams[ids[slot]]
					layout.WriteBeam(out, slot, b, mapping)
				}
				return nil, nil
			},
		})
	}
	wg.Wait()
}

// LoadState rebuilds a fresh Store from a packed state. IDs are reassigned as
// insertion-order-equals-physical-slot; they are not guaranteed to match the
// ids the state was originally written with.
func LoadState(maxParticles, maxBeams int, state PackedState) *Store {
	s := New(maxParticles, maxBeams)
	for slot := 0; slot < state.ParticleCount; slot++ {
		p := layout.ReadParticle(state.ParticleBytes, slot)
		_ = s.AddParticle(slot, p)
	}
	for slot := 0; slot < state.BeamCount; slot++ {
		raw := layout.ReadBeamRaw(state.BeamBytes, slot)
		b := layout.Beam{
			ParticleA:        int(raw.SlotA),
			ParticleB:        int(raw.SlotB),
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
		_ = s.AddBeam(slot, b)
	}
	return s
}
