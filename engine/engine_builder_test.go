package engine

import (
	"testing"
	"time"

	"github.com/spsquared/softbody-webgpu/config"
)

func TestWithRenderFrameLimitConvertsFPS(t *testing.T) {
	o := engineOptions{}
	WithRenderFrameLimit(60)(&o)

	want := time.Second / 60
	if o.renderFrameLimit != want {
		t.Fatalf("renderFrameLimit = %v, want %v", o.renderFrameLimit, want)
	}
}

func TestWithRenderFrameLimitZeroMeansUncapped(t *testing.T) {
	o := engineOptions{renderFrameLimit: 16 * time.Millisecond}
	WithRenderFrameLimit(0)(&o)

	if o.renderFrameLimit != 0 {
		t.Fatalf("renderFrameLimit = %v, want 0 (uncapped)", o.renderFrameLimit)
	}
}

func TestWithConfigPathSetsPath(t *testing.T) {
	o := engineOptions{}
	WithConfigPath("config.toml")(&o)

	if o.configPath != "config.toml" {
		t.Fatalf("configPath = %q, want %q", o.configPath, "config.toml")
	}
}

func TestWithShaderDirOverridesDefault(t *testing.T) {
	o := engineOptions{shaderDir: "assets/shaders"}
	WithShaderDir("custom/shaders")(&o)

	if o.shaderDir != "custom/shaders" {
		t.Fatalf("shaderDir = %q, want %q", o.shaderDir, "custom/shaders")
	}
}

func TestWithConfigStoresOptions(t *testing.T) {
	o := engineOptions{}
	cfg := config.Options{ParticleRadius: 5, Subticks: 4}
	WithConfig(cfg)(&o)

	if o.cfg != cfg {
		t.Fatalf("cfg = %+v, want %+v", o.cfg, cfg)
	}
}

func TestNewEngineRequiresWindow(t *testing.T) {
	_, err := NewEngine(WithConfig(config.Options{ParticleRadius: 1, Subticks: 2}))
	if err == nil {
		t.Fatal("expected error when no window is supplied")
	}
}

func TestNewEngineRejectsNonPositiveParticleRadius(t *testing.T) {
	_, err := NewEngine(WithConfig(config.Options{ParticleRadius: 0, Subticks: 2}))
	if err == nil {
		t.Fatal("expected error for non-positive particle radius")
	}
}

func TestNewEngineRejectsOddSubticks(t *testing.T) {
	_, err := NewEngine(WithConfig(config.Options{ParticleRadius: 1, Subticks: 3}))
	if err == nil {
		t.Fatal("expected error for odd subticks")
	}
}
