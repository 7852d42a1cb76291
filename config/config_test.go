package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load defaults: %v", err)
	}

	if cfg.Field.Mode != FieldModeDiffuse {
		t.Errorf("expected default mode %q, got %q", FieldModeDiffuse, cfg.Field.Mode)
	}
	if cfg.Field.Width != 200 || cfg.Field.Height != 200 {
		t.Errorf("expected 200x200 grid, got %dx%d", cfg.Field.Width, cfg.Field.Height)
	}
	if cfg.Derived.FieldWorldW != 800 || cfg.Derived.FieldWorldH != 800 {
		t.Errorf("expected 800x800 world extent, got %.0fx%.0f", cfg.Derived.FieldWorldW, cfg.Derived.FieldWorldH)
	}
	if cfg.Derived.LeftAntenna.X != 5 || cfg.Derived.LeftAntenna.Y != 2 {
		t.Errorf("unexpected left antenna %+v", cfg.Derived.LeftAntenna)
	}
	if cfg.Derived.RightAntenna.X != 5 || cfg.Derived.RightAntenna.Y != -2 {
		t.Errorf("unexpected right antenna %+v", cfg.Derived.RightAntenna)
	}
}

func TestLoadOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "override.yaml")
	data := []byte("field:\n  mode: stamp\n  width: 64\n  height: 64\n  cell_size: 6\n  centered: true\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load overlay: %v", err)
	}

	if cfg.Field.Mode != FieldModeStamp {
		t.Errorf("expected stamp mode, got %q", cfg.Field.Mode)
	}
	// Fields absent from the overlay keep their defaults
	if cfg.Ants.MaxSpeed != 200 {
		t.Errorf("expected default max_speed 200, got %v", cfg.Ants.MaxSpeed)
	}
	if cfg.Derived.FieldOrigin.X != -192 || cfg.Derived.FieldOrigin.Y != -192 {
		t.Errorf("expected centred origin (-192,-192), got %+v", cfg.Derived.FieldOrigin)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{"unknown mode", "field:\n  mode: blur\n", "field.mode"},
		{"zero width", "field:\n  width: 0\n", "dimensions"},
		{"negative cell size", "field:\n  cell_size: -1\n", "cell_size"},
		{"zero max speed", "ants:\n  max_speed: 0\n", "max_speed"},
		{"zero max force", "ants:\n  max_force: 0\n", "max_force"},
		{"zero dt", "physics:\n  dt: 0\n", "physics.dt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bad.yaml")
			if err := os.WriteFile(path, []byte(tt.yaml), 0644); err != nil {
				t.Fatal(err)
			}
			_, err := Load(path)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestRatesOutsideUnitIntervalAccepted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rates.yaml")
	if err := os.WriteFile(path, []byte("field:\n  diffusion_rate: 1.5\n  decay_rate: -0.2\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err != nil {
		t.Fatalf("expected out-of-range rates to load, got %v", err)
	}
}

func TestAntennaDefaultsFromBodySize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "body.yaml")
	data := "ants:\n  body_size: 8\n  left_antenna: {x: 0, y: 0}\n  right_antenna: {x: 0, y: 0}\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Derived.LeftAntenna.X != 10 || cfg.Derived.LeftAntenna.Y != 4 {
		t.Errorf("unexpected left antenna %+v", cfg.Derived.LeftAntenna)
	}
	if cfg.Derived.RightAntenna.Y != -4 {
		t.Errorf("unexpected right antenna %+v", cfg.Derived.RightAntenna)
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	cfg.Field.DecayRate = 0.25

	path := filepath.Join(t.TempDir(), "snapshot.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load snapshot: %v", err)
	}
	if loaded.Field.DecayRate != 0.25 {
		t.Errorf("expected decay_rate 0.25 after reload, got %v", loaded.Field.DecayRate)
	}
}

func TestResolveAfterEdit(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}

	cfg.Field.Width = 10
	cfg.Field.CellSize = 2
	cfg.Field.Centered = true
	if err := cfg.Resolve(); err != nil {
		t.Fatal(err)
	}
	if cfg.Derived.FieldOrigin.X != -10 || cfg.Derived.FieldWorldW != 20 {
		t.Errorf("derived not refreshed: origin %v width %v", cfg.Derived.FieldOrigin, cfg.Derived.FieldWorldW)
	}

	cfg.Ants.MaxForce = 0
	if err := cfg.Resolve(); err == nil {
		t.Error("expected error for zero max force")
	}
}
