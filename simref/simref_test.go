package simref

import (
	"math"
	"testing"

	"github.com/spsquared/softbody-webgpu/layout"
)

const epsilon = 1e-3

func approx(t *testing.T, name string, got, want, tol float32) {
	t.Helper()
	if math.Abs(float64(got-want)) > float64(tol) {
		t.Errorf("%s = %v, want %v (tol %v)", name, got, want, tol)
	}
}

func baseWorld(particles []layout.Particle, beams []layout.Beam) *World {
	return &World{
		Particles:      particles,
		Beams:          beams,
		ParticleRadius: 10,
		Bounds:         1000,
		DeltaTime:      1.0 / 64.0,
		Constants: Constants{
			BorderElasticity: 0.5,
			BorderFriction:   0.1,
			PairElasticity:   1,
			PairFriction:     0,
			DragCoeff:        0,
			DragExp:          1,
			UserForce:        1,
		},
	}
}

// Gravity fall: one particle, no beams, subticks=64, one frame.
func TestGravityFall(t *testing.T) {
	w := baseWorld([]layout.Particle{{PosX: 500, PosY: 500}}, nil)
	w.Constants.Gravity = vec(0, -0.5)

	w.Step(64, Input{})

	// Semi-implicit Euler integrates marginally ahead of the continuous
	// closed form the spec states, with error on the order of dt; a wider
	// tolerance accounts for the discretization, not a looser invariant.
	approx(t, "p.y", w.Particles[0].PosY, 499.75, 5e-3)
	approx(t, "v.x", w.Particles[0].VelX, 0, epsilon)
	approx(t, "v.y", w.Particles[0].VelY, -0.5, epsilon)
}

// Elastic floor: particle resting on the border with downward velocity
// bounces with the configured elasticity.
func TestElasticFloor(t *testing.T) {
	w := baseWorld([]layout.Particle{{PosX: 500, PosY: 10, VelY: -10}}, nil)
	w.Constants.Gravity = vec(0, 0)
	w.DeltaTime = 1

	w.Step(1, Input{})

	approx(t, "p.y", w.Particles[0].PosY, 10, epsilon)
	approx(t, "v.y", w.Particles[0].VelY, 5, 1e-2)
}

// Spring rest: a beam at its rest length with no gravity stays put.
func TestSpringRest(t *testing.T) {
	particles := []layout.Particle{
		{PosX: 400, PosY: 500},
		{PosX: 500, PosY: 500},
	}
	beams := []layout.Beam{
		{ParticleA: 0, ParticleB: 1, OriginalLen: 100, TargetLen: 100, LastLen: 100, Spring: 10, Damp: 1, YieldStrain: 1, StrainBreakLimit: 1},
	}
	w := baseWorld(particles, beams)
	w.DeltaTime = 1.0 / 64.0

	for i := 0; i < 100; i++ {
		w.Step(1, Input{})
	}

	approx(t, "p0.x", w.Particles[0].PosX, 400, epsilon)
	approx(t, "p0.y", w.Particles[0].PosY, 500, epsilon)
	approx(t, "p1.x", w.Particles[1].PosX, 500, epsilon)
	approx(t, "p1.y", w.Particles[1].PosY, 500, epsilon)
}

// Pair collision: two particles approaching head-on with full elasticity
// and no friction swap x-velocity sign after one tick.
func TestPairCollision(t *testing.T) {
	particles := []layout.Particle{
		{PosX: 500, PosY: 500, VelX: 5},
		{PosX: 515, PosY: 500, VelX: -5},
	}
	w := baseWorld(particles, nil)
	w.DeltaTime = 1.0 / 64.0

	w.Step(1, Input{})

	if w.Particles[0].VelX >= 0 {
		t.Errorf("p0.VelX = %v, want negative", w.Particles[0].VelX)
	}
	if w.Particles[1].VelX <= 0 {
		t.Errorf("p1.VelX = %v, want positive", w.Particles[1].VelX)
	}
	approx(t, "p0.VelX", w.Particles[0].VelX, -5, 1e-2)
	approx(t, "p1.VelX", w.Particles[1].VelX, 5, 1e-2)
}

// Plastic yield: a beam stretched past yield_strain relaxes target_len
// toward the stretched length on the first tick.
func TestPlasticYield(t *testing.T) {
	particles := []layout.Particle{
		{PosX: 400, PosY: 500},
		{PosX: 520, PosY: 500},
	}
	beams := []layout.Beam{
		{ParticleA: 0, ParticleB: 1, OriginalLen: 100, TargetLen: 100, Spring: 10, Damp: 1, YieldStrain: 0.1, StrainBreakLimit: 1},
	}
	w := baseWorld(particles, beams)
	w.DeltaTime = 1.0 / 64.0

	w.Step(1, Input{})

	approx(t, "beam.TargetLen", w.Beams[0].TargetLen, 110, 1)
}

// Fracture: a beam stretched past strain_break_limit is removed after the
// sub-step that marks it.
func TestFracture(t *testing.T) {
	particles := []layout.Particle{
		{PosX: 400, PosY: 500},
		{PosX: 525, PosY: 500},
	}
	beams := []layout.Beam{
		{ParticleA: 0, ParticleB: 1, OriginalLen: 100, TargetLen: 100, Spring: 10, Damp: 1, YieldStrain: 1, StrainBreakLimit: 0.2},
	}
	w := baseWorld(particles, beams)
	w.DeltaTime = 1.0 / 64.0

	w.Step(1, Input{})

	if len(w.Beams) != 0 {
		t.Fatalf("expected beam to be removed, got %d beams remaining", len(w.Beams))
	}
}

// Boundary behavior: two particles initialized at the same position must
// separate (not NaN, not stuck) on the next tick.
func TestCoincidentParticlesSeparate(t *testing.T) {
	particles := []layout.Particle{
		{PosX: 500, PosY: 500},
		{PosX: 500, PosY: 500},
	}
	w := baseWorld(particles, nil)
	w.DeltaTime = 1.0 / 64.0

	w.Step(1, Input{})

	for i, p := range w.Particles {
		if math.IsNaN(float64(p.PosX)) || math.IsNaN(float64(p.PosY)) {
			t.Fatalf("particle %d has NaN position: %+v", i, p)
		}
	}
	if w.Particles[0].PosY == w.Particles[1].PosY && w.Particles[0].PosX == w.Particles[1].PosX {
		t.Fatalf("particles did not separate: %+v / %+v", w.Particles[0], w.Particles[1])
	}
}

// Boundary behavior: a beam with coincident endpoints produces a finite
// force, not NaN.
func TestCoincidentBeamEndpointsFinite(t *testing.T) {
	particles := []layout.Particle{
		{PosX: 500, PosY: 500},
		{PosX: 500, PosY: 500},
	}
	beams := []layout.Beam{
		{ParticleA: 0, ParticleB: 1, OriginalLen: 100, TargetLen: 100, Spring: 10, Damp: 1, YieldStrain: 1, StrainBreakLimit: 1},
	}
	w := baseWorld(particles, beams)
	w.DeltaTime = 1.0 / 64.0

	w.Step(1, Input{})

	for i, p := range w.Particles {
		if math.IsNaN(float64(p.VelX)) || math.IsNaN(float64(p.VelY)) {
			t.Fatalf("particle %d has NaN velocity: %+v", i, p)
		}
	}
}

// Boundary behavior: strain_break_limit = 0 deletes the beam on the first
// tick regardless of how small the deformation is.
func TestZeroStrainBreakLimitDeletesImmediately(t *testing.T) {
	particles := []layout.Particle{
		{PosX: 400, PosY: 500},
		{PosX: 500.001, PosY: 500},
	}
	beams := []layout.Beam{
		{ParticleA: 0, ParticleB: 1, OriginalLen: 100, TargetLen: 100, Spring: 10, Damp: 1, YieldStrain: 1, StrainBreakLimit: 0},
	}
	w := baseWorld(particles, beams)
	w.DeltaTime = 1.0 / 64.0

	w.Step(1, Input{})

	if len(w.Beams) != 0 {
		t.Fatalf("expected beam deleted with strain_break_limit=0, got %d remaining", len(w.Beams))
	}
}

// Law: applying the same gravity constant for one sub-tick twice in a row
// from the same starting state is deterministic — a proxy for idempotence
// of repeated constants application, since World has no separate "apply
// constants" step distinct from Step itself.
func TestRepeatedStepDeterministic(t *testing.T) {
	w1 := baseWorld([]layout.Particle{{PosX: 500, PosY: 500}}, nil)
	w1.Constants.Gravity = vec(0, -0.5)
	w2 := baseWorld([]layout.Particle{{PosX: 500, PosY: 500}}, nil)
	w2.Constants.Gravity = vec(0, -0.5)

	w1.Step(10, Input{})
	w2.Step(10, Input{})

	approx(t, "p.x", w1.Particles[0].PosX, w2.Particles[0].PosX, 1e-6)
	approx(t, "p.y", w1.Particles[0].PosY, w2.Particles[0].PosY, 1e-6)
}

// Invariant: positions stay within [R, bounds-R] for a particle shoved hard
// against a border.
func TestPositionStaysWithinBounds(t *testing.T) {
	w := baseWorld([]layout.Particle{{PosX: 500, PosY: 995, VelY: 1000}}, nil)
	w.DeltaTime = 1.0 / 64.0

	for i := 0; i < 200; i++ {
		w.Step(1, Input{})
	}

	p := w.Particles[0]
	if p.PosY < w.ParticleRadius-epsilon || p.PosY > w.Bounds-w.ParticleRadius+epsilon {
		t.Fatalf("p.y = %v out of bounds [%v, %v]", p.PosY, w.ParticleRadius, w.Bounds-w.ParticleRadius)
	}
}
