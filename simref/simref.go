// Package simref is a pure-Go, float32 CPU mirror of the per-substep update
// kernel (assets/shaders/update.wgsl): spring/damper beam forces with
// plastic yield and scheduled fracture, pairwise particle collision read
// from a snapshot of the previous state, gravity/drag/user/cursor forces,
// semi-implicit Euler integration, and border collision. It exists because
// the WGSL compute kernels cannot be driven by `go test` in this
// environment; it is the executable oracle §8's concrete scenarios are
// checked against, not a substitute for the device path. The slot/mapping
// indirection the device uses for parallel compaction is an implementation
// detail of that parallelism, not observable physics, so World addresses
// particles directly by index rather than through a mapping table.
package simref

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/spsquared/softbody-webgpu/layout"
)

const (
	forceFixedPointScale = 65536.0
	stressScale          = 1.0 / 20.0
)

// Constants mirrors the recognized physics scalars of spec.md §6.
type Constants struct {
	Gravity          r2.Vec
	BorderElasticity float32
	BorderFriction   float32
	PairElasticity   float32
	PairFriction     float32
	DragCoeff        float32
	DragExp          float32
	UserForce        float32
}

// Input mirrors one frame's INPUT message payload (§6).
type Input struct {
	CursorActive bool
	CursorPos    r2.Vec
	CursorVel    r2.Vec
	KeyboardForce r2.Vec
}

// World is a live scene: particles indexed by logical id, beams referencing
// those indices directly (no physical-slot indirection — see package doc).
type World struct {
	Particles []layout.Particle
	Beams     []layout.Beam

	ParticleRadius float32
	Bounds         float32
	DeltaTime      float32
	Constants      Constants
}

// vec converts a float32 pair, as layout.Particle fields use, to a gonum
// r2.Vec (float64).
func vec(x, y float32) r2.Vec { return r2.Vec{X: float64(x), Y: float64(y)} }

func f32(v float64) float32 { return float32(v) }

func norm(v r2.Vec) float64 { return math.Sqrt(r2.Dot(v, v)) }

func signf(v float32) float32 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

// Step advances the world by subticks sub-steps, applying input identically
// on every sub-step — the same as the orchestrator writing one INPUT value
// into metadata before dispatching all of a frame's sub-ticks (§4.5).
func (w *World) Step(subticks int, in Input) {
	for i := 0; i < subticks; i++ {
		w.substep(in)
	}
}

// substep runs one beam pass, one particle pass (both reading the same
// pre-substep snapshot), and one delete-compaction pass, mirroring
// update.wgsl's beam_main/particle_main and delete.wgsl within a single
// dispatch.
func (w *World) substep(in Input) {
	forces := make([]r2.Vec, len(w.Particles))
	fractured := make([]bool, len(w.Beams))

	w.beamPass(forces, fractured)
	w.particlePass(forces, in)
	w.compactBeams(fractured)
}

// beamPass accumulates spring/damper forces for every live beam into forces
// (indexed by particle id), applies plastic yield to target_len, records
// strain/stress, and schedules fracture via the fractured slice — mirroring
// beam_main's delete-bitmap mark, which removal only acts on in the
// following delete pass.
func (w *World) beamPass(forces []r2.Vec, fractured []bool) {
	for i := range w.Beams {
		b := &w.Beams[i]
		a := w.Particles[b.ParticleA]
		c := w.Particles[b.ParticleB]

		delta := vec(c.PosX-a.PosX, c.PosY-a.PosY)
		length := norm(delta)
		if length == 0 {
			delta = r2.Vec{X: 0, Y: -1e-10}
			length = norm(delta)
		}
		dir := r2.Scale(1/length, delta)

		forceMag := f32(float64(b.TargetLen-f32(length))*float64(b.Spring)) + f32(float64(b.LastLen-f32(length))*float64(b.Damp))
		force := r2.Scale(float64(forceMag), dir)

		strain := (f32(length) - b.TargetLen) / b.OriginalLen
		if absf(strain) > b.YieldStrain {
			b.TargetLen += b.YieldStrain * b.OriginalLen * signf(strain)
		}

		if absf(f32(length)-b.OriginalLen) > b.OriginalLen*b.StrainBreakLimit {
			fractured[i] = true
		}

		b.Stress = forceMag * stressScale
		b.Strain = absf(strain) / b.YieldStrain
		b.LastLen = f32(length)

		forces[b.ParticleA] = r2.Sub(forces[b.ParticleA], force)
		forces[b.ParticleB] = r2.Add(forces[b.ParticleB], force)
	}
}

// particlePass computes each live particle's next state from a snapshot of
// the pre-substep positions/velocities — pairwise collision, gravity, drag,
// user/cursor force, the accumulated beam force, border-damped integration,
// and border collision — exactly mirroring particle_main.
func (w *World) particlePass(forces []r2.Vec, in Input) {
	snapshot := make([]layout.Particle, len(w.Particles))
	copy(snapshot, w.Particles)
	out := make([]layout.Particle, len(snapshot))

	radius := w.ParticleRadius
	c := w.Constants

	for i := range snapshot {
		p := snapshot[i]

		for j := range snapshot {
			if j == i {
				continue
			}
			o := snapshot[j]
			delta := vec(o.PosX-p.PosX, o.PosY-p.PosY)
			dist := norm(delta)
			if dist == 0 {
				s := float32(-1)
				if i < j {
					s = 1
				}
				delta = r2.Vec{X: 0, Y: float64(s) * 1e-10}
				dist = norm(delta)
			}
			if dist >= 2*float64(radius) {
				continue
			}
			n := r2.Scale(1/dist, delta)
			t := r2.Vec{X: -n.Y, Y: n.X}

			v := vec(p.VelX-o.VelX, p.VelY-o.VelY)
			jn := f32((float64(c.PairElasticity)+1)*0.5*r2.Dot(v, n))
			muMax := absf(jn * c.PairFriction)
			jt := clampf(f32(r2.Dot(v, t)), -muMax, muMax)

			p.VelX -= jn*f32(n.X) + jt*f32(t.X)
			p.VelY -= jn*f32(n.Y) + jt*f32(t.Y)
			p.PosX -= f32(n.X) * ((2*radius - f32(dist)) * 0.5)
			p.PosY -= f32(n.Y) * ((2*radius - f32(dist)) * 0.5)
		}

		accel := vec(float32(c.Gravity.X), float32(c.Gravity.Y))

		speed := norm(vec(p.VelX, p.VelY))
		if speed > 0 {
			accel.X -= float64(c.DragCoeff) * math.Pow(math.Abs(float64(p.VelX)), float64(c.DragExp)) * float64(signf(p.VelX))
			accel.Y -= float64(c.DragCoeff) * math.Pow(math.Abs(float64(p.VelY)), float64(c.DragExp)) * float64(signf(p.VelY))
		}

		accel.X += float64(in.KeyboardForce.X) * float64(c.UserForce)
		accel.Y += float64(in.KeyboardForce.Y) * float64(c.UserForce)

		if in.CursorActive {
			toCursor := vec(f32(in.CursorPos.X)-p.PosX, f32(in.CursorPos.Y)-p.PosY)
			if norm(toCursor) < 10*float64(radius) {
				accel.X += (in.CursorVel.X - float64(p.VelX)) * float64(c.UserForce) - float64(c.Gravity.X)
				accel.Y += (in.CursorVel.Y - float64(p.VelY)) * float64(c.UserForce) - float64(c.Gravity.Y)
			}
		}

		accel.X += forces[i].X
		accel.Y += forces[i].Y

		bounds := w.Bounds
		if p.PosX < radius || p.PosX > bounds-radius {
			accel.Y -= float64(signf(f32(accel.Y))) * math.Min(math.Abs(accel.Y)*float64(c.BorderFriction), math.Abs(accel.Y))
		}
		if p.PosY < radius || p.PosY > bounds-radius {
			accel.X -= float64(signf(f32(accel.X))) * math.Min(math.Abs(accel.X)*float64(c.BorderFriction), math.Abs(accel.X))
		}

		dt := w.DeltaTime
		p.VelX += f32(accel.X) * dt
		p.VelY += f32(accel.Y) * dt
		p.PosX += p.VelX * dt
		p.PosY += p.VelY * dt
		p.AccX, p.AccY = 0, 0

		if p.PosX < radius {
			p.PosX = radius
			p.VelX = -p.VelX * c.BorderElasticity
		} else if p.PosX > bounds-radius {
			p.PosX = bounds - radius
			p.VelX = -p.VelX * c.BorderElasticity
		}
		if p.PosY < radius {
			p.PosY = radius
			p.VelY = -p.VelY * c.BorderElasticity
		} else if p.PosY > bounds-radius {
			p.PosY = bounds - radius
			p.VelY = -p.VelY * c.BorderElasticity
		}

		out[i] = p
	}

	w.Particles = out
}

// compactBeams removes every beam fracture flagged during beamPass,
// mirroring the delete pass's compaction (without the device's parallel
// atomic-cursor implementation, which is a GPU-occupancy concern rather
// than an observable behavior).
func (w *World) compactBeams(fractured []bool) {
	live := w.Beams[:0]
	for i, f := range fractured {
		if !f {
			live = append(live, w.Beams[i])
		}
	}
	w.Beams = live
}

func absf(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

func clampf(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
