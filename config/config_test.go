package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm-cable/swarm/sim"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load defaults: %v", err)
	}

	if cfg.Particles.Count != 1024 {
		t.Errorf("particles.count = %d, want 1024", cfg.Particles.Count)
	}
	if cfg.Flock.PerceptionRadius != 2.5 {
		t.Errorf("flock.perception_radius = %v, want 2.5", cfg.Flock.PerceptionRadius)
	}
	if cfg.Flock.WorldBound != 20 {
		t.Errorf("flock.world_bound = %v, want 20", cfg.Flock.WorldBound)
	}
	if cfg.Particles.Gravity.Y != -9.8 {
		t.Errorf("particles.gravity.y = %v, want -9.8", cfg.Particles.Gravity.Y)
	}
	if cfg.Derived.DT32 <= 0 {
		t.Errorf("derived dt = %v, want > 0", cfg.Derived.DT32)
	}
}

func TestLoadOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	user := `
particles:
  count: 64
  lifetime: 2.5
flock:
  max_speed: 7
`
	if err := os.WriteFile(path, []byte(user), 0644); err != nil {
		t.Fatalf("writing user config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	// Overridden fields.
	if cfg.Particles.Count != 64 {
		t.Errorf("particles.count = %d, want 64", cfg.Particles.Count)
	}
	if cfg.Particles.Lifetime != 2.5 {
		t.Errorf("particles.lifetime = %v, want 2.5", cfg.Particles.Lifetime)
	}
	if cfg.Flock.MaxSpeed != 7 {
		t.Errorf("flock.max_speed = %v, want 7", cfg.Flock.MaxSpeed)
	}

	// Untouched fields keep defaults.
	if cfg.Flock.Count != 512 {
		t.Errorf("flock.count = %d, want default 512", cfg.Flock.Count)
	}
	if cfg.Particles.Bounds.Max.Y != 10 {
		t.Errorf("particles.bounds.max.y = %v, want default 10", cfg.Particles.Bounds.Max.Y)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantMsg string
	}{
		{"zero particle count", "particles:\n  count: 0\n", "count"},
		{"negative lifetime", "particles:\n  lifetime: -1\n", "lifetime"},
		{"zero flock count", "flock:\n  count: 0\n", "count"},
		{"zero dt", "step:\n  dt: 0\n", "dt"},
		{"zero stats window", "telemetry:\n  stats_window: 0\n", "stats_window"},
	}

	dir := t.TempDir()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, "bad.yaml")
			if err := os.WriteFile(path, []byte(tt.yaml), 0644); err != nil {
				t.Fatalf("writing config: %v", err)
			}

			_, err := Load(path)
			if !errors.Is(err, sim.ErrInvalidConfig) {
				t.Fatalf("error = %v, want ErrInvalidConfig", err)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q does not name field %q", err, tt.wantMsg)
			}
		})
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}

	back, err := Load(path)
	if err != nil {
		t.Fatalf("Load round trip: %v", err)
	}
	if back.Particles.Count != cfg.Particles.Count ||
		back.Flock.WorldBound != cfg.Flock.WorldBound ||
		back.Particles.Gravity != cfg.Particles.Gravity {
		t.Error("round-tripped config differs from original")
	}
}
