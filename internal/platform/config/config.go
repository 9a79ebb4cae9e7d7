package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	apperrors "peaklab/internal/platform/errors"
	"peaklab/internal/platform/kind"
)

const FileName = "peaklab.yaml"

type Smoothing struct {
	Window int `yaml:"window"`
	Order  int `yaml:"order"`
}

type Config struct {
	WorkspacePath string    `yaml:"-"`
	DBPath        string    `yaml:"db_path"`
	DataDir       string    `yaml:"data_dir"`
	SavedDir      string    `yaml:"saved_dir"`
	Extensions    []string  `yaml:"extensions"`
	DefaultScans  []int     `yaml:"default_scans"`
	Smoothing     Smoothing `yaml:"smoothing"`
	RamanCutoff   float64   `yaml:"raman_cutoff"`
	LogLevel      string    `yaml:"log_level"`
	Development   bool      `yaml:"development"`
}

func Defaults(workspacePath string) Config {
	return Config{
		WorkspacePath: workspacePath,
		DBPath:        filepath.Join(workspacePath, ".peaklab", "peaklab.db"),
		DataDir:       "data",
		SavedDir:      "saved_data",
		Extensions:    []string{".txt"},
		DefaultScans:  []int{1, 2, 5, 10, 15, 20, 25, 30, 35, 45, 50},
		Smoothing:     Smoothing{Window: 11, Order: 3},
		RamanCutoff:   1200,
		LogLevel:      "info",
	}
}

// New loads peaklab.yaml from the workspace when present and overlays it on
// the defaults. Relative paths in the file resolve against the workspace.
func New(workspacePath string) (Config, error) {
	if strings.TrimSpace(workspacePath) == "" {
		return Config{}, fmt.Errorf("workspace path is required")
	}
	cfg := Defaults(workspacePath)
	raw, err := os.ReadFile(filepath.Join(workspacePath, FileName))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("%w: parse %s: %v", apperrors.ErrInvalidInput, FileName, err)
		}
	}
	cfg.WorkspacePath = workspacePath
	if !filepath.IsAbs(cfg.DBPath) {
		cfg.DBPath = filepath.Join(workspacePath, cfg.DBPath)
	}
	for i, ext := range cfg.Extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext != "" && !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		cfg.Extensions[i] = ext
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.DataDir == "" || c.SavedDir == "" {
		return fmt.Errorf("%w: data_dir and saved_dir are required", apperrors.ErrInvalidInput)
	}
	if filepath.Clean(c.DataDir) == filepath.Clean(c.SavedDir) {
		return fmt.Errorf("%w: data_dir and saved_dir must differ", apperrors.ErrInvalidInput)
	}
	if len(c.Extensions) == 0 {
		return fmt.Errorf("%w: at least one extension is required", apperrors.ErrInvalidInput)
	}
	if c.Smoothing.Window != 0 {
		if c.Smoothing.Window%2 == 0 || c.Smoothing.Window <= c.Smoothing.Order || c.Smoothing.Order < 0 {
			return fmt.Errorf("%w: smoothing window must be odd and larger than the order", apperrors.ErrInvalidInput)
		}
	}
	for _, scan := range c.DefaultScans {
		if scan < 1 {
			return fmt.Errorf("%w: default scans must be positive", apperrors.ErrInvalidInput)
		}
	}
	if c.RamanCutoff <= 0 {
		return fmt.Errorf("%w: raman_cutoff must be positive", apperrors.ErrInvalidInput)
	}
	return nil
}

func (c Config) DataRoot() string {
	return filepath.Join(c.WorkspacePath, c.DataDir)
}

func (c Config) SavedRoot() string {
	return filepath.Join(c.WorkspacePath, c.SavedDir)
}

// DomainRoot is the directory a tree is rooted at.
func (c Config) DomainRoot(k kind.Kind, saved bool) string {
	if saved {
		return filepath.Join(c.SavedRoot(), k.String())
	}
	return filepath.Join(c.DataRoot(), k.String())
}
