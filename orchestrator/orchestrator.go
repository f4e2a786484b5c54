// Package orchestrator drives one device.Device through the per-frame
// compute/render sequence of spec.md §4.5: input ingestion, alternating
// sub-tick compute dispatches, the delete-compaction dispatch, the indirect
// render pass, and a 1-second sliding FPS window. It is the component the
// engine's render goroutine calls once per frame.
package orchestrator

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/spsquared/softbody-webgpu/device"
	"github.com/spsquared/softbody-webgpu/metrics"
)

var logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "orchestrator"})

// ErrTransient is returned by Step when a device submission failed but the
// device survived; the frame is dropped and the next Step call proceeds
// normally (§7).
var ErrTransient = errors.New("orchestrator: transient submission failure")

// ErrDeviceLost is returned by Step once submission failures reach
// transientFailureLimit in a row — this binding surfaces no device-lost
// callback, so sustained failure is the signal used in its place (§7,
// DESIGN.md Open Question decisions).
var ErrDeviceLost = errors.New("orchestrator: device lost")

// transientFailureLimit is the number of consecutive dropped frames at
// which Step escalates from ErrTransient to ErrDeviceLost.
const transientFailureLimit = 3

// Input is the decoded form of an INPUT message (§6): the keyboard-directed
// body force, the cursor position in simulation coordinates, and whether the
// cursor is actively dragging.
type Input struct {
	Force        [2]float32
	CursorPos    [2]float32
	CursorActive bool
}

// Orchestrator serializes every device-buffer mutation behind a single
// mutex, mirroring §5's "single asynchronous mutex" model: Step, and any
// other caller that must interleave device mutation with a running
// simulation (snapshot load/save, a physics-constants write), take the same
// lock via Lock/Unlock.
type Orchestrator struct {
	mu sync.Mutex

	dev      *device.Device
	subticks int
	bounds   float32
	metrics  *metrics.Collectors

	pendingInput  Input
	lastCursor    [2]float32
	hasLastCursor bool

	hidden bool

	particleCount, beamCount int

	frameTimes          []time.Time
	fpsChan             chan float64
	consecutiveFailures int
}

// New creates an Orchestrator driving dev. subticks must already be the even
// value the engine constructor validated (§7 InvalidConfiguration); bounds
// is the side length of the simulation's square world.
func New(dev *device.Device, subticks int, bounds float32, m *metrics.Collectors) *Orchestrator {
	return &Orchestrator{
		dev:      dev,
		subticks: subticks,
		bounds:   bounds,
		metrics:  m,
		fpsChan:  make(chan float64, 1),
	}
}

// Lock acquires the single async mutex guarding every device-buffer
// mutation. Callers outside Step (snapshot load/save, a physics-constants
// write) must hold this for the duration of their own device mutation.
func (o *Orchestrator) Lock() { o.mu.Lock() }

// Unlock releases the lock acquired by Lock.
func (o *Orchestrator) Unlock() { o.mu.Unlock() }

// SetInput stages the latest INPUT message for the next Step call.
func (o *Orchestrator) SetInput(in Input) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.pendingInput = in
}

// SetVisibility records whether the host window is hidden. The caller (the
// engine's render goroutine) is responsible for idling on a coarse timer
// instead of calling Step while Hidden reports true (§4.5 "Visibility").
func (o *Orchestrator) SetVisibility(hidden bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.hidden = hidden
}

// Hidden reports the most recently set visibility state.
func (o *Orchestrator) Hidden() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.hidden
}

// SetCounts updates the live particle/beam counts the next metrics
// observation reports. Called whenever the device's live counts change
// outside of Step's own delete pass — a scene write or a snapshot load.
func (o *Orchestrator) SetCounts(particleCount, beamCount int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.particleCount = particleCount
	o.beamCount = beamCount
}

// Framerate returns a channel receiving the most recent 1-second
// sliding-window FPS measurement after every successful Step call (§6
// FRAMERATE message).
func (o *Orchestrator) Framerate() <-chan float64 { return o.fpsChan }

// Step executes one full frame: §4.5's 8-step sequence. dtWall is the
// wall-clock time elapsed since the previous Step call, used to scale the
// cursor-velocity estimate derived from consecutive cursor positions.
func (o *Orchestrator) Step(dtWall time.Duration) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	start := time.Now()

	// Step 2: compose the input record. Cursor velocity is derived from the
	// delta between this and the previous frame's cursor position, scaled
	// by the current FPS, the wall-clock frame interval, and the world
	// bounds — exactly the scaling spec.md §4.5 step 2 specifies.
	fps := float64(len(o.frameTimes))
	cursorVel := [2]float32{}
	if o.hasLastCursor && o.pendingInput.CursorActive {
		dtSeconds := float32(dtWall.Seconds())
		scale := float32(fps) * dtSeconds * o.bounds
		cursorVel[0] = (o.pendingInput.CursorPos[0] - o.lastCursor[0]) * scale
		cursorVel[1] = (o.pendingInput.CursorPos[1] - o.lastCursor[1]) * scale
	}
	o.lastCursor = o.pendingInput.CursorPos
	o.hasLastCursor = true

	var cursorActive uint32
	if o.pendingInput.CursorActive {
		cursorActive = 1
	}
	o.dev.WriteInputRegion(cursorActive,
		o.pendingInput.CursorPos[0], o.pendingInput.CursorPos[1],
		cursorVel[0], cursorVel[1],
		o.pendingInput.Force[0], o.pendingInput.Force[1])

	// Steps 3-5: subticks update dispatches alternating bind group A/B,
	// then one delete dispatch, batched into a single compute submission.
	if err := o.dev.BeginComputeFrame(); err != nil {
		return o.frameFailureLocked(err)
	}
	for i := 0; i < o.subticks; i++ {
		variant := device.VariantA
		if i%2 == 1 {
			variant = device.VariantB
		}
		o.dev.RunSubtick(variant)
	}
	o.dev.RunDelete()
	o.dev.EndComputeFrame()

	// Step 6: the indirect render pass.
	if err := o.dev.BeginFrame(); err != nil {
		return o.frameFailureLocked(err)
	}
	o.dev.DrawParticlesIndirect()
	o.dev.DrawBeamsIndirect()
	o.dev.EndFrame()
	o.dev.Present()

	o.consecutiveFailures = 0

	// Step 8: framerate accounting.
	now := time.Now()
	o.frameTimes = append(o.frameTimes, now)
	o.frameTimes = pruneOlderThanOneSecond(o.frameTimes, now)
	reportedFPS := float64(len(o.frameTimes))

	select {
	case o.fpsChan <- reportedFPS:
	default:
	}

	if o.metrics != nil {
		o.metrics.FPS.Set(reportedFPS)
		o.metrics.ObserveFrame(time.Since(start), o.particleCount, o.beamCount)
	}

	return nil
}

// frameFailureLocked classifies a dropped-frame submission error: the first
// transientFailureLimit-1 in a row are ErrTransient (the frame is dropped,
// the device survives); past that, Step reports ErrDeviceLost.
func (o *Orchestrator) frameFailureLocked(cause error) error {
	o.consecutiveFailures++
	if o.metrics != nil {
		o.metrics.DroppedFrames.Inc()
	}
	if o.consecutiveFailures >= transientFailureLimit {
		logger.Error("device submission failed repeatedly, declaring device lost", "err", cause, "consecutiveFailures", o.consecutiveFailures)
		return fmt.Errorf("%w: %v", ErrDeviceLost, cause)
	}
	logger.Warn("dropping frame after submission failure", "err", cause, "consecutiveFailures", o.consecutiveFailures)
	return fmt.Errorf("%w: %v", ErrTransient, cause)
}

func pruneOlderThanOneSecond(times []time.Time, now time.Time) []time.Time {
	cutoff := now.Add(-time.Second)
	i := 0
	for i < len(times) && times[i].Before(cutoff) {
		i++
	}
	if i == 0 {
		return times
	}
	return append(times[:0], times[i:]...)
}
