// Package scenestore holds the mutable, host-side in-memory scene: particles
// and beams addressed by stable logical ids, plus a per-particle beam index
// for O(1) lookup during editing and deletion. It is the editor-facing
// counterpart to the packed, physical-slot buffers layout and device work with.
package scenestore

import (
	"errors"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/spsquared/softbody-webgpu/layout"
)

// ErrDuplicateID is returned by AddParticle/AddBeam when the requested id is
// already in use.
var ErrDuplicateID = errors.New("scenestore: duplicate id")

// ErrCapacityExceeded is returned by AddParticle/AddBeam when the store is
// already at MaxParticles/MaxBeams.
var ErrCapacityExceeded = errors.New("scenestore: capacity exceeded")

// parallelThreshold is the live-entity count at or above which WriteState
// fans encoding work out to the worker pool instead of running inline
// (LoadState always runs inline). Below
// it, pool dispatch overhead would exceed the cost of the work itself.
const parallelThreshold = 512

// shardSize is the number of entities encoded per worker task when fanning out.
const shardSize = 256

// Store is the mutable host-side scene: particles, beams, and the per-particle
// beam index. It is not safe for concurrent use by multiple goroutines; the
// engine serializes access the same way it serializes device mutation.
type Store struct {
	MaxParticles int
	MaxBeams     int

	particles map[int]layout.Particle
	beams     map[int]layout.Beam

	particleBeams map[int]map[int]struct{} // particle logical id -> set of beam logical ids

	// particleOrder/beamOrder record insertion order; WriteState assigns
	// physical slots by walking these, skipping ids since removed.
	particleOrder []int
	beamOrder     []int

	pool        worker.DynamicWorkerPool
	poolOnce    sync.Once
	poolWorkers int
}

// New creates an empty Store with the given capacities.
func New(maxParticles, maxBeams int) *Store {
	return &Store{
		MaxParticles:  maxParticles,
		MaxBeams:      maxBeams,
		particles:     make(map[int]layout.Particle),
		beams:         make(map[int]layout.Beam),
		particleBeams: make(map[int]map[int]struct{}),
		poolWorkers:   4,
	}
}

func (s *Store) ensurePool() worker.DynamicWorkerPool {
	s.poolOnce.Do(func() {
		s.pool = worker.NewDynamicWorkerPool(s.poolWorkers, 256, time.Second)
	})
	return s.pool
}

// AddParticle inserts a new particle under logicalID. Fails on duplicate id or
// capacity exhaustion.
func (s *Store) AddParticle(logicalID int, p layout.Particle) error {
	if _, exists := s.particles[logicalID]; exists {
		return ErrDuplicateID
	}
	if len(s.particles) >= s.MaxParticles {
		return ErrCapacityExceeded
	}
	s.particles[logicalID] = p
	s.particleOrder = append(s.particleOrder, logicalID)
	return nil
}

// AddBeam inserts a new beam under logicalID. Fails on duplicate id or
// capacity exhaustion.
func (s *Store) AddBeam(logicalID int, b layout.Beam) error {
	if _, exists := s.beams[logicalID]; exists {
		return ErrDuplicateID
	}
	if len(s.beams) >= s.MaxBeams {
		return ErrCapacityExceeded
	}
	s.beams[logicalID] = b
	s.beamOrder = append(s.beamOrder, logicalID)
	s.indexBeam(logicalID, b)
	return nil
}

func (s *Store) indexBeam(beamID int, b layout.Beam) {
	s.linkParticleBeam(b.ParticleA, beamID)
	s.linkParticleBeam(b.ParticleB, beamID)
}

func (s *Store) linkParticleBeam(particleID, beamID int) {
	set, ok := s.particleBeams[particleID]
	if !ok {
		set = make(map[int]struct{})
		s.particleBeams[particleID] = set
	}
	set[beamID] = struct{}{}
}

func (s *Store) unlinkParticleBeam(particleID, beamID int) {
	if set, ok := s.particleBeams[particleID]; ok {
		delete(set, beamID)
		if len(set) == 0 {
			delete(s.particleBeams, particleID)
		}
	}
}

// RemoveParticle deletes the particle and every beam attached to it. Idempotent.
func (s *Store) RemoveParticle(logicalID int) {
	if _, exists := s.particles[logicalID]; !exists {
		return
	}
	for beamID := range s.particleBeams[logicalID] {
		s.RemoveBeam(beamID)
	}
	delete(s.particles, logicalID)
	delete(s.particleBeams, logicalID)
}

// RemoveBeam deletes the beam. Idempotent.
func (s *Store) RemoveBeam(logicalID int) {
	b, exists := s.beams[logicalID]
	if !exists {
		return
	}
	s.unlinkParticleBeam(b.ParticleA, logicalID)
	s.unlinkParticleBeam(b.ParticleB, logicalID)
	delete(s.beams, logicalID)
}

// FindParticle returns the particle with the given id.
func (s *Store) FindParticle(logicalID int) (layout.Particle, bool) {
	p, ok := s.particles[logicalID]
	return p, ok
}

// FindBeam returns the beam with the given id.
func (s *Store) FindBeam(logicalID int) (layout.Beam, bool) {
	b, ok := s.beams[logicalID]
	return b, ok
}

// ListParticles returns every live particle id, unordered.
func (s *Store) ListParticles() []int {
	ids := make([]int, 0, len(s.particles))
	for id := range s.particles {
		ids = append(ids, id)
	}
	return ids
}

// ListBeams returns every live beam id, unordered.
func (s *Store) ListBeams() []int {
	ids := make([]int, 0, len(s.beams))
	for id := range s.beams {
		ids = append(ids, id)
	}
	return ids
}

// BeamsOnParticle returns every beam id attached to particleID.
func (s *Store) BeamsOnParticle(particleID int) []int {
	set := s.particleBeams[particleID]
	ids := make([]int, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	return ids
}

// FirstEmptyParticleID returns the smallest non-negative id not currently in use.
func (s *Store) FirstEmptyParticleID() int {
	for id := 0; id < s.MaxParticles; id++ {
		if _, used := s.particles[id]; !used {
			return id
		}
	}
	return -1
}

// FirstEmptyBeamID returns the smallest non-negative id not currently in use.
func (s *Store) FirstEmptyBeamID() int {
	for id := 0; id < s.MaxBeams; id++ {
		if _, used := s.beams[id]; !used {
			return id
		}
	}
	return -1
}

// ParticleCount returns the number of live particles.
func (s *Store) ParticleCount() int {
	return len(s.particles)
}

// BeamCount returns the number of live beams.
func (s *Store) BeamCount() int {
	return len(s.beams)
}
