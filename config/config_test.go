package config

import (
	"path/filepath"
	"testing"
)

func TestValidateRejectsTempoOutOfRange(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Tempo = 400
	if err := cfg.Validate(); err == nil {
		t.Errorf("expected validation error for tempo 400")
	}
}

func TestValidateRejectsUnknownScale(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Scale = "blorkian"
	if err := cfg.Validate(); err == nil {
		t.Errorf("expected validation error for unknown scale")
	}
}

func TestValidateRejectsDanglingPartTrackReference(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Tracks = []TrackConfig{{Name: "lead", Channel: 0}}
	cfg.Parts = []PartConfig{{
		Name:   "A",
		Tracks: []PartTrackConfig{{Track: "bass", State: "hold"}},
	}}
	if err := cfg.Validate(); err == nil {
		t.Errorf("expected validation error for part referencing unknown track")
	}
}

func TestValidateAcceptsDefaultConfig(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("DefaultConfig should validate cleanly, got %v", err)
	}
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "song.yaml")

	cfg := DefaultConfig()
	cfg.Name = "test-song"
	velocityScale := 1.0
	cfg.Tracks = []TrackConfig{{Name: "lead", Channel: 0, VelocityScale: &velocityScale}}

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Name != "test-song" {
		t.Errorf("Name = %q, want test-song", loaded.Name)
	}
	if len(loaded.Tracks) != 1 || loaded.Tracks[0].Name != "lead" {
		t.Errorf("Tracks = %+v, want one track named lead", loaded.Tracks)
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(filepath.Join(dir, "nonexistent.yaml"))
	if err != nil {
		t.Fatalf("Load of missing file should not error, got %v", err)
	}
	if cfg.Tempo != 120 {
		t.Errorf("Tempo = %v, want default 120", cfg.Tempo)
	}
}
