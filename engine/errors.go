package engine

import (
	"errors"

	"github.com/spsquared/softbody-webgpu/orchestrator"
	"github.com/spsquared/softbody-webgpu/snapshot"
)

// ErrUnsupportedDevice is returned by NewEngine when no compatible GPU
// adapter/device could be created. Fatal at construction (§7).
var ErrUnsupportedDevice = errors.New("engine: unsupported device")

// ErrInvalidConfiguration is returned by NewEngine when the particle radius
// or sub-tick count is non-positive, or sub-ticks is odd (§7).
var ErrInvalidConfiguration = errors.New("engine: invalid configuration")

// ErrCapacityExceeded is returned by LoadSnapshot when a snapshot's live
// counts exceed the engine's configured MaxParticles/MaxBeams. Simulation
// state is left unchanged. Aliases snapshot.ErrCapacityExceeded so callers
// can errors.Is against either name.
var ErrCapacityExceeded = snapshot.ErrCapacityExceeded

// ErrTransient is returned when a single frame's device submission failed
// but the device survived; the frame was dropped and the loop continues.
// Aliases orchestrator.ErrTransient.
var ErrTransient = orchestrator.ErrTransient

// ErrDeviceLost is returned once submission failures repeat past the
// orchestrator's consecutive-failure limit. The engine treats this the same
// as an external DESTROY: the frame loop stops and the quit channel closes.
// Aliases orchestrator.ErrDeviceLost.
var ErrDeviceLost = orchestrator.ErrDeviceLost
