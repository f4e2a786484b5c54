// Package engine is the public API boundary (§6): it owns the window, the
// GPU device, and the frame orchestrator, and exposes the message-channel
// operations a host issues over the lifetime of a simulation (physics
// constants, input, visibility, snapshot save/load, buffer corruption, and
// the asynchronous framerate push). It keeps the teacher's tick/render/quit
// goroutine shape, collapsed to two worker goroutines since compute and
// render submission are batched into a single orchestrator.Step call rather
// than driven by separate tick and render callbacks.
package engine

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/spsquared/softbody-webgpu/common"
	"github.com/spsquared/softbody-webgpu/config"
	"github.com/spsquared/softbody-webgpu/device"
	"github.com/spsquared/softbody-webgpu/engine/profiler"
	"github.com/spsquared/softbody-webgpu/engine/window"
	"github.com/spsquared/softbody-webgpu/layout"
	"github.com/spsquared/softbody-webgpu/metrics"
	"github.com/spsquared/softbody-webgpu/orchestrator"
	"github.com/spsquared/softbody-webgpu/snapshot"
)

var logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "engine"})

// Engine owns one simulation's window, device, and frame orchestrator, and
// serves the host-facing message-channel operations of §6.
type Engine struct {
	window  window.Window
	dev     *device.Device
	orch    *orchestrator.Orchestrator
	metrics *metrics.Collectors
	cfg     config.Options

	profiler         *profiler.Profiler
	profilingEnabled bool

	pressedKeys  map[uint32]bool
	cursorActive bool
	cursorPos    [2]float32

	running     bool
	wg          sync.WaitGroup
	quitChannel chan struct{}
	quitOnce    sync.Once

	renderFrameLimit time.Duration
	configWatcher    *config.Watcher
}

// NewEngine validates configuration, creates the GPU device sized to the
// configured capacities, and wires local window input to the orchestrator.
// Returns ErrInvalidConfiguration for a non-positive/odd sub-tick count or
// non-positive particle radius, or ErrUnsupportedDevice if no compatible
// adapter/device could be created.
func NewEngine(options ...EngineBuilderOption) (*Engine, error) {
	o := engineOptions{shaderDir: "assets/shaders"}
	for _, opt := range options {
		opt(&o)
	}

	if o.cfg.ParticleRadius <= 0 || o.cfg.Subticks <= 0 {
		return nil, fmt.Errorf("%w: particleRadius and subticks must be positive", ErrInvalidConfiguration)
	}
	if o.cfg.Subticks%2 != 0 {
		return nil, fmt.Errorf("%w: subticks must be even", ErrInvalidConfiguration)
	}
	if o.window == nil {
		return nil, fmt.Errorf("%w: a window is required", ErrInvalidConfiguration)
	}

	dev, err := device.New(o.window.SurfaceDescriptor(), o.forceFallbackAdapter, o.cfg.MaxParticles, o.cfg.MaxBeams, o.shaderDir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedDevice, err)
	}
	dev.ConfigureSurface(o.window.Width(), o.window.Height())
	if o.cfg.Window.PresentMode == "uncapped" {
		dev.SetPresentMode(device.PresentModeUncapped)
	} else {
		dev.SetPresentMode(device.PresentModeVSync)
	}

	m := o.metrics
	if m == nil {
		m = metrics.NewCollectors()
	}

	dev.WriteMetadata(metadataFromConfig(o.cfg))

	e := &Engine{
		window:           o.window,
		dev:              dev,
		orch:             orchestrator.New(dev, o.cfg.Subticks, o.cfg.Bounds, m),
		metrics:          m,
		cfg:              o.cfg,
		profiler:         profiler.NewProfiler(),
		profilingEnabled: o.profilingEnabled,
		pressedKeys:      make(map[uint32]bool),
		quitChannel:      make(chan struct{}),
		renderFrameLimit: o.renderFrameLimit,
	}

	e.window.SetResizeCallback(func(width, height int) {
		e.dev.ConfigureSurface(width, height)
	})
	e.wireInput()

	if o.configPath != "" {
		watcher, err := config.Watch(o.configPath, func(reloaded config.Options) {
			e.SetPhysicsConstants(reloaded.Physics)
		})
		if err != nil {
			logger.Error("config hot-reload disabled, watch failed", "path", o.configPath, "err", err)
		} else {
			e.configWatcher = watcher
		}
	}

	logger.Info("engine constructed", "maxParticles", o.cfg.MaxParticles, "maxBeams", o.cfg.MaxBeams, "subticks", o.cfg.Subticks)
	return e, nil
}

// metadataFromConfig builds the initial Metadata record from construction
// options: the physics scalars a PHYSICS_CONSTANTS message can later change,
// plus the fixed particleRadius/Bounds/DeltaTime constants (§3 [ADDED]).
func metadataFromConfig(cfg config.Options) layout.Metadata {
	return layout.Metadata{
		MaxParticles:     uint32(cfg.MaxParticles),
		MaxBeams:         uint32(cfg.MaxBeams),
		GravityX:         cfg.Physics.Gravity.X,
		GravityY:         cfg.Physics.Gravity.Y,
		BorderElasticity: cfg.Physics.BorderElasticity,
		BorderFriction:   cfg.Physics.BorderFriction,
		PairElasticity:   cfg.Physics.Elasticity,
		PairFriction:     cfg.Physics.Friction,
		DragCoeff:        cfg.Physics.DragCoeff,
		DragExp:          cfg.Physics.DragExp,
		ParticleRadius:   cfg.ParticleRadius,
		Bounds:           cfg.Bounds,
		DeltaTime:        1 / float32(cfg.Subticks),
	}
}

// constantsSlabBytes encodes the 8xf32 physics-constants slab in the exact
// field order layout.Metadata stores it (gravity, borderElasticity,
// borderFriction, elasticity, friction, dragCoeff, dragExp).
func constantsSlabBytes(p config.PhysicsConstants) []byte {
	buf := make([]byte, 32)
	layout.PutLeFloat32(buf[0:4], p.Gravity.X)
	layout.PutLeFloat32(buf[4:8], p.Gravity.Y)
	layout.PutLeFloat32(buf[8:12], p.BorderElasticity)
	layout.PutLeFloat32(buf[12:16], p.BorderFriction)
	layout.PutLeFloat32(buf[16:20], p.Elasticity)
	layout.PutLeFloat32(buf[20:24], p.Friction)
	layout.PutLeFloat32(buf[24:28], p.DragCoeff)
	layout.PutLeFloat32(buf[28:32], p.DragExp)
	return buf
}

// wireInput composes local keyboard/mouse activity (WASD body force, middle
// mouse drag as the cursor force) into orchestrator.Input, giving the
// window a working input source on its own, independent of the host message
// channel's SendInput. Both ultimately stage the same Orchestrator.SetInput
// call, so whichever fires last wins for the next Step.
func (e *Engine) wireInput() {
	const keyForce = float32(1)

	compose := func() {
		var force [2]float32
		if e.pressedKeys[common.KeyW] {
			force[1] += keyForce
		}
		if e.pressedKeys[common.KeyS] {
			force[1] -= keyForce
		}
		if e.pressedKeys[common.KeyD] {
			force[0] += keyForce
		}
		if e.pressedKeys[common.KeyA] {
			force[0] -= keyForce
		}
		e.orch.SetInput(orchestrator.Input{
			Force:        force,
			CursorPos:    e.cursorPos,
			CursorActive: e.cursorActive,
		})
	}

	e.window.SetKeyDownCallback(func(keyCode uint32) {
		e.pressedKeys[keyCode] = true
		compose()
	})
	e.window.SetKeyUpCallback(func(keyCode uint32) {
		delete(e.pressedKeys, keyCode)
		compose()
	})
	e.window.SetMiddleMouseDownCallback(func(x, y int32) {
		e.cursorActive = true
		e.cursorPos = e.toSimSpace(x, y)
		compose()
	})
	e.window.SetMiddleMouseUpCallback(func(x, y int32) {
		e.cursorActive = false
		compose()
	})
	e.window.SetMouseMoveCallback(func(x, y int32) {
		if e.cursorActive {
			e.cursorPos = e.toSimSpace(x, y)
			compose()
		}
	})
}

// toSimSpace maps a window-pixel coordinate to the [0, Bounds] x [0, Bounds]
// simulation square, with y pointing up.
func (e *Engine) toSimSpace(x, y int32) [2]float32 {
	w, h := float32(e.window.Width()), float32(e.window.Height())
	if w == 0 {
		w = 1
	}
	if h == 0 {
		h = 1
	}
	return [2]float32{
		float32(x) / w * e.cfg.Bounds,
		(1 - float32(y)/h) * e.cfg.Bounds,
	}
}

// Window returns the underlying window.
func (e *Engine) Window() window.Window { return e.window }

// EnableProfiler enables performance profiling output to the log.
func (e *Engine) EnableProfiler() { e.profilingEnabled = true }

// DisableProfiler disables performance profiling output.
func (e *Engine) DisableProfiler() { e.profilingEnabled = false }

// SetPhysicsConstants writes the recognized physics scalars (§6
// PHYSICS_CONSTANTS) through to the device's constants slab and returns the
// values just applied, matching the message table's "echo current" response.
func (e *Engine) SetPhysicsConstants(p config.PhysicsConstants) config.PhysicsConstants {
	e.orch.Lock()
	defer e.orch.Unlock()
	e.dev.WriteConstantsSlab(constantsSlabBytes(p))
	e.cfg.Physics = p
	logger.Info("physics constants updated", "gravity", p.Gravity, "elasticity", p.Elasticity)
	return p
}

// GetPhysicsConstants returns the physics scalars currently in effect
// (§6 GET_PHYSICS_CONSTANTS).
func (e *Engine) GetPhysicsConstants() config.PhysicsConstants {
	return e.cfg.Physics
}

// SendInput stages a host-issued INPUT message (§6) for the next frame,
// overriding whatever the window's local input composed.
func (e *Engine) SendInput(in orchestrator.Input) {
	e.orch.SetInput(in)
}

// SetVisibility records the host window's visibility (§6 VISIBILITY_CHANGE).
// While hidden, the frame loop idles instead of stepping the simulation.
func (e *Engine) SetVisibility(hidden bool) {
	e.orch.SetVisibility(hidden)
}

// SaveSnapshot stage-copies the live device state to a framed binary blob
// (§6 SNAPSHOT_SAVE, §4.6).
func (e *Engine) SaveSnapshot() ([]byte, error) {
	e.orch.Lock()
	defer e.orch.Unlock()
	data, err := snapshot.Save(e.dev)
	if err != nil {
		logger.Error("snapshot save failed", "err", err)
		return nil, err
	}
	return data, nil
}

// LoadSnapshot parses and writes a framed binary blob through the device
// queue (§6 SNAPSHOT_LOAD, §4.6). A nil return is the message table's
// "success: true"; a non-nil error (commonly ErrCapacityExceeded) leaves
// simulation state unchanged.
func (e *Engine) LoadSnapshot(data []byte) error {
	e.orch.Lock()
	defer e.orch.Unlock()

	if err := snapshot.Load(e.dev, data); err != nil {
		if errors.Is(err, snapshot.ErrCapacityExceeded) {
			logger.Warn("snapshot load rejected, capacity exceeded")
			return ErrCapacityExceeded
		}
		logger.Error("snapshot load failed", "err", err)
		return err
	}

	particleCount, beamCount, err := e.dev.ReadDrawCounts()
	if err == nil {
		e.orch.SetCounts(particleCount, beamCount)
	}
	return nil
}

// CorruptBuffers scribbles garbage into the live particle buffer (§6
// CORRUPT_BUFFERS), a debug hook; see device.Corrupt.
func (e *Engine) CorruptBuffers() {
	e.orch.Lock()
	defer e.orch.Unlock()
	logger.Warn("corrupting buffers by request")
	e.dev.Corrupt()
}

// Framerate returns a channel receiving the 1-second sliding-window FPS
// measurement after every successful frame (§6 FRAMERATE).
func (e *Engine) Framerate() <-chan float64 { return e.orch.Framerate() }

// Run starts the frame and quit goroutines, then blocks on the window's
// message loop until the window closes.
func (e *Engine) Run() {
	e.running = true
	e.handle()
	e.window.ProcessMessages()
}

// Quit signals the frame loop to stop and closes the config watcher, if any.
// It does not release the GPU device. Safe to call multiple times;
// subsequent calls are no-ops.
func (e *Engine) Quit() {
	e.signalQuit()
}

func (e *Engine) signalQuit() {
	e.quitOnce.Do(func() {
		e.running = false
		if e.configWatcher != nil {
			e.configWatcher.Close()
		}
		close(e.quitChannel)
	})
}

func (e *Engine) handle() {
	e.wg.Add(2)
	go e.handleFrame()
	go e.handleQuit()
}

// handleFrame runs the combined compute+render frame loop (§4.5): one
// orchestrator.Step per iteration, idling while the window is hidden.
// Recovers from panics to avoid crashing the process, treating one as a
// device-loss event.
func (e *Engine) handleFrame() {
	defer e.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			logger.Error("frame loop recovered from panic", "panic", r)
			e.signalQuit()
		}
	}()

	const hiddenPollInterval = 100 * time.Millisecond
	lastFrame := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		default:
		}

		if e.orch.Hidden() {
			time.Sleep(hiddenPollInterval)
			continue
		}

		now := time.Now()
		dt := now.Sub(lastFrame)
		lastFrame = now

		if err := e.orch.Step(dt); err != nil {
			if errors.Is(err, orchestrator.ErrDeviceLost) {
				logger.Error("device lost, shutting down", "err", err)
				e.signalQuit()
				return
			}
			// ErrTransient: frame already dropped and logged by the orchestrator.
		}

		if e.profilingEnabled {
			e.profiler.Tick()
		}

		if e.renderFrameLimit > 0 {
			if remaining := e.renderFrameLimit - time.Since(now); remaining > 0 {
				time.Sleep(remaining)
			}
		}
	}
}

func (e *Engine) handleQuit() {
	defer e.wg.Done()
	<-e.quitChannel
}
