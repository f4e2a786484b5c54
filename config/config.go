// Package config loads and hot-reloads the engine's TOML configuration file:
// construction options (particle radius, sub-ticks, buffer capacities, window
// setup) plus the recognized physics scalars from spec.md §6. Values read here
// are advisory — InvalidConfiguration is still enforced by the engine
// constructor, not by this package.
package config

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/pelletier/go-toml/v2"
)

var logger = log.NewWithOptions(os.Stderr, log.Options{
	ReportTimestamp: true,
	Prefix:          "config",
})

// Vector2 is a plain 2D float pair, used for gravity in the TOML document.
type Vector2 struct {
	X float32 `toml:"x"`
	Y float32 `toml:"y"`
}

// PhysicsConstants mirrors the PHYSICS_CONSTANTS message payload (spec.md §6):
// gravity plus every recognized physics scalar.
type PhysicsConstants struct {
	Gravity          Vector2 `toml:"gravity"`
	BorderElasticity float32 `toml:"borderElasticity"`
	BorderFriction   float32 `toml:"borderFriction"`
	Elasticity       float32 `toml:"elasticity"`
	Friction         float32 `toml:"friction"`
	DragCoeff        float32 `toml:"dragCoeff"`
	DragExp          float32 `toml:"dragExp"`
}

// WindowOptions mirrors the window construction options the teacher's
// window.WindowBuilderOption surface accepts (title, size, present mode).
type WindowOptions struct {
	Title       string `toml:"title"`
	Width       int    `toml:"width"`
	Height      int    `toml:"height"`
	PresentMode string `toml:"presentMode"` // "vsync" or "uncapped"
}

// Options is the full decoded configuration document.
type Options struct {
	ParticleRadius float32          `toml:"particleRadius"`
	Subticks       int              `toml:"subticks"`
	MaxParticles   int              `toml:"maxParticles"`
	MaxBeams       int              `toml:"maxBeams"`
	Bounds         float32          `toml:"bounds"`
	Window         WindowOptions    `toml:"window"`
	Physics        PhysicsConstants `toml:"physics"`
}

// defaults mirrors the field-by-field fallbacks applied when a TOML document
// omits a section entirely; it keeps a hand-edited partial config usable.
func defaults() Options {
	return Options{
		ParticleRadius: 8,
		Subticks:       64,
		MaxParticles:   4096,
		MaxBeams:       8192,
		Bounds:         1000,
		Window: WindowOptions{
			Title:       "softbody-webgpu",
			Width:       1280,
			Height:      720,
			PresentMode: "vsync",
		},
		Physics: PhysicsConstants{
			Gravity:          Vector2{X: 0, Y: -0.5},
			BorderElasticity: 0.5,
			BorderFriction:   0.1,
			Elasticity:       1,
			Friction:         0,
			DragCoeff:        0.01,
			DragExp:          2,
		},
	}
}

// Load reads and decodes a TOML configuration file at path, starting from
// defaults() so a partial document only overrides the fields it sets.
func Load(path string) (Options, error) {
	opts := defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return opts, fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &opts); err != nil {
		return opts, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	if opts.Subticks%2 != 0 {
		opts.Subticks++
		logger.Warn("subticks rounded up to even", "subticks", opts.Subticks)
	}

	logger.Info("loaded configuration", "path", path, "particleRadius", opts.ParticleRadius, "subticks", opts.Subticks)
	return opts, nil
}
