package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"peaklab/internal/platform/config"
	apperrors "peaklab/internal/platform/errors"
	"peaklab/internal/platform/kind"
)

func TestNewWithoutFileUsesDefaults(t *testing.T) {
	t.Parallel()
	ws := t.TempDir()
	cfg, err := config.New(ws)
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	if cfg.DBPath != filepath.Join(ws, ".peaklab", "peaklab.db") {
		t.Fatalf("unexpected db path: %s", cfg.DBPath)
	}
	if got := cfg.DomainRoot(kind.Nova, true); got != filepath.Join(ws, "saved_data", "nova") {
		t.Fatalf("unexpected saved nova root: %s", got)
	}
	if len(cfg.DefaultScans) != 11 || cfg.DefaultScans[10] != 50 {
		t.Fatalf("unexpected default scans: %v", cfg.DefaultScans)
	}
}

func TestNewOverlaysYAML(t *testing.T) {
	t.Parallel()
	ws := t.TempDir()
	body := "data_dir: raw\nextensions: [csv, .TXT]\nraman_cutoff: 900\nsmoothing:\n  window: 7\n  order: 2\n"
	if err := os.WriteFile(filepath.Join(ws, config.FileName), []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := config.New(ws)
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	if cfg.DataRoot() != filepath.Join(ws, "raw") {
		t.Fatalf("unexpected data root: %s", cfg.DataRoot())
	}
	if cfg.Extensions[0] != ".csv" || cfg.Extensions[1] != ".txt" {
		t.Fatalf("extensions not normalised: %v", cfg.Extensions)
	}
	if cfg.RamanCutoff != 900 || cfg.Smoothing.Window != 7 {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.SavedDir != "saved_data" {
		t.Fatalf("unset keys must keep defaults, got %q", cfg.SavedDir)
	}
}

func TestNewRejectsEvenSmoothingWindow(t *testing.T) {
	t.Parallel()
	ws := t.TempDir()
	if err := os.WriteFile(filepath.Join(ws, config.FileName), []byte("smoothing:\n  window: 10\n  order: 3\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := config.New(ws); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestNewRequiresWorkspace(t *testing.T) {
	t.Parallel()
	if _, err := config.New(" "); err == nil {
		t.Fatalf("expected error for empty workspace")
	}
}
