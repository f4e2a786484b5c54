package engine

import (
	"time"

	"github.com/spsquared/softbody-webgpu/config"
	"github.com/spsquared/softbody-webgpu/engine/window"
	"github.com/spsquared/softbody-webgpu/metrics"
)

// engineOptions accumulates EngineBuilderOption values before construction.
// Unlike the teacher's pattern of applying options directly onto a
// half-built engine struct, device creation here needs several of these
// values (window, capacities, shader directory) all at once, so options are
// collected into a plain struct first and NewEngine does the actual build.
type engineOptions struct {
	window               window.Window
	cfg                  config.Options
	configPath           string
	shaderDir            string
	forceFallbackAdapter bool
	metrics              *metrics.Collectors
	profilingEnabled     bool
	renderFrameLimit     time.Duration
}

// EngineBuilderOption is a functional option for configuring an Engine.
type EngineBuilderOption func(*engineOptions)

// WithWindow sets the window the engine renders into and reads local input
// from. Required — NewEngine returns InvalidConfiguration without one.
func WithWindow(w window.Window) EngineBuilderOption {
	return func(o *engineOptions) {
		o.window = w
	}
}

// WithConfig sets the engine's construction options and physics constants,
// typically the result of config.Load. Required — NewEngine returns
// InvalidConfiguration if ParticleRadius or Subticks is non-positive.
func WithConfig(cfg config.Options) EngineBuilderOption {
	return func(o *engineOptions) {
		o.cfg = cfg
	}
}

// WithConfigPath enables hot-reload: NewEngine starts a config.Watcher on
// this path, re-applying the reloaded PhysicsConstants through
// SetPhysicsConstants on every write, until Quit closes it. Leave unset to
// use the one-shot config.Options from WithConfig with no live reload.
func WithConfigPath(path string) EngineBuilderOption {
	return func(o *engineOptions) {
		o.configPath = path
	}
}

// WithShaderDir overrides the directory WGSL sources are loaded from
// (default "assets/shaders").
func WithShaderDir(dir string) EngineBuilderOption {
	return func(o *engineOptions) {
		o.shaderDir = dir
	}
}

// WithForceFallbackAdapter forces wgpu to pick a software/fallback adapter,
// useful for headless test environments with no real GPU.
func WithForceFallbackAdapter(force bool) EngineBuilderOption {
	return func(o *engineOptions) {
		o.forceFallbackAdapter = force
	}
}

// WithMetrics supplies a pre-constructed metrics.Collectors (so the host can
// register it against its own Prometheus registry) instead of letting
// NewEngine create one.
func WithMetrics(m *metrics.Collectors) EngineBuilderOption {
	return func(o *engineOptions) {
		o.metrics = m
	}
}

// WithProfiling enables performance profiling output to the log.
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(o *engineOptions) {
		o.profilingEnabled = enabled
	}
}

// WithRenderFrameLimit sets an optional frame rate cap in frames per second.
// Pass 0 (the default) to leave the frame loop uncapped.
func WithRenderFrameLimit(fps float64) EngineBuilderOption {
	return func(o *engineOptions) {
		if fps <= 0 {
			o.renderFrameLimit = 0
			return
		}
		o.renderFrameLimit = time.Second / time.Duration(fps)
	}
}
