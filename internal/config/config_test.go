package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg != Default() {
		t.Errorf("Expected defaults, got %+v", cfg)
	}
}

func TestLoadOverlaysFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "terra2d.yaml")
	doc := `
world:
  seed: "1234567"
simulation:
  ups: 30
  profile_every: 5s
log:
  level: debug
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.World.Seed != "1234567" {
		t.Errorf("Expected seed 1234567, got %q", cfg.World.Seed)
	}
	if cfg.Simulation.UPS != 30 {
		t.Errorf("Expected ups 30, got %d", cfg.Simulation.UPS)
	}
	if cfg.Simulation.ProfileEvery != 5*time.Second {
		t.Errorf("Expected profile_every 5s, got %v", cfg.Simulation.ProfileEvery)
	}
	if cfg.World.ViewportWidth != 400 {
		t.Errorf("Expected default viewport width kept, got %d", cfg.World.ViewportWidth)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"bad yaml", "world: [\n"},
		{"zero ups", "simulation:\n  ups: 0\n"},
		{"bad level", "log:\n  level: loud\n"},
		{"source without dir", "assets:\n  source: https://example.com/blocks.zip\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "terra2d.yaml")
			if err := os.WriteFile(path, []byte(tt.doc), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Errorf("Expected error for %s", tt.name)
			}
		})
	}
}

func TestMergeAppliesOnlyExplicitValues(t *testing.T) {
	cfg := Default()
	cfg.Saves.Dir = "from-file"
	seed, level := "42", "warn"
	if err := cfg.Merge(Overrides{Seed: &seed, LogLevel: &level}); err != nil {
		t.Fatalf("Merge() error: %v", err)
	}
	if cfg.World.Seed != "42" || cfg.Log.Level != "warn" {
		t.Errorf("Expected overrides applied, got %+v", cfg)
	}
	if cfg.Saves.Dir != "from-file" {
		t.Errorf("Expected saves dir kept, got %q", cfg.Saves.Dir)
	}

	ups := -1
	if err := cfg.Merge(Overrides{UPS: &ups}); err == nil {
		t.Errorf("Expected invalid ups override to fail validation")
	}
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{"": slog.LevelInfo, "debug": slog.LevelDebug, "ERROR": slog.LevelError} {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Errorf("ParseLevel(%q) = %v, %v; expected %v", in, got, err, want)
		}
	}
}
