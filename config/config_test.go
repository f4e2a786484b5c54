package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeTemp(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaultsToPartialDocument(t *testing.T) {
	path := writeTemp(t, `particleRadius = 12`)

	opts, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if opts.ParticleRadius != 12 {
		t.Fatalf("expected overridden radius 12, got %v", opts.ParticleRadius)
	}
	if opts.Subticks != 64 {
		t.Fatalf("expected default subticks 64, got %v", opts.Subticks)
	}
	if opts.Window.Title != "softbody-webgpu" {
		t.Fatalf("expected default window title, got %q", opts.Window.Title)
	}
}

func TestLoadRoundsOddSubticksUp(t *testing.T) {
	path := writeTemp(t, `subticks = 63`)

	opts, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if opts.Subticks != 64 {
		t.Fatalf("expected subticks rounded to 64, got %d", opts.Subticks)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}

func TestWatchReloadsOnWrite(t *testing.T) {
	path := writeTemp(t, `particleRadius = 8`)

	changed := make(chan Options, 1)
	w, err := Watch(path, func(o Options) { changed <- o })
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(path, []byte(`particleRadius = 20`), 0o644); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}

	select {
	case opts := <-changed:
		if opts.ParticleRadius != 20 {
			t.Fatalf("expected reloaded radius 20, got %v", opts.ParticleRadius)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload callback")
	}
}
