package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/ecopia-map/pointcloud_updater/internal/raster"
)

// Overrides the scratch directory, the same way CESIUM_TILER_WORKDIR relocates the tiler work folder
const ScratchDirEnv = "POINTCLOUD_UPDATER_SCRATCH"

// Tuning values of the updater. HoleAreaThreshold (m²) and JoinTolerance (m) are converted
// to the dataset linear unit when a run starts, AnalysisCellSize is in dataset units
type Config struct {
	AnalysisCellSize  float64 `toml:"analysis_cell_size" yaml:"analysis_cell_size"`
	Statistic         string  `toml:"statistic" yaml:"statistic"`
	HoleAreaThreshold float64 `toml:"hole_area_threshold" yaml:"hole_area_threshold"`
	JoinTolerance     float64 `toml:"join_tolerance" yaml:"join_tolerance"`
	SimplifyTolerance float64 `toml:"simplify_tolerance" yaml:"simplify_tolerance"`
	Workers           int     `toml:"workers" yaml:"workers"`
	ScratchDir        string  `toml:"scratch_dir" yaml:"scratch_dir"`
}

func Default() Config {
	return Config{
		AnalysisCellSize:  0.5,
		Statistic:         string(raster.IntensityRange),
		HoleAreaThreshold: 10,
		JoinTolerance:     1,
		SimplifyTolerance: 0,
		Workers:           0,
		ScratchDir:        "",
	}
}

// Loads a .toml, .yaml or .yml file on top of the defaults
func Load(path string) (Config, error) {
	cfg := Default()

	content, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(content, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse TOML: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(content, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config YAML: %w", err)
		}
	default:
		return cfg, fmt.Errorf("unsupported config format %s, expected .toml, .yaml or .yml", path)
	}

	return cfg, cfg.Validate()
}

// Loads a .env file when present and applies the environment overrides
func (c *Config) ApplyEnv(envFiles ...string) {
	_ = godotenv.Load(envFiles...)
	if dir := os.Getenv(ScratchDirEnv); dir != "" {
		c.ScratchDir = dir
	}
}

func (c Config) Validate() error {
	if c.AnalysisCellSize <= 0 {
		return fmt.Errorf("analysis_cell_size must be positive, got %v", c.AnalysisCellSize)
	}
	if _, err := raster.ParseStatistic(c.Statistic); err != nil {
		return err
	}
	if c.HoleAreaThreshold < 0 {
		return fmt.Errorf("hole_area_threshold cannot be negative, got %v", c.HoleAreaThreshold)
	}
	if c.JoinTolerance < 0 {
		return fmt.Errorf("join_tolerance cannot be negative, got %v", c.JoinTolerance)
	}
	if c.SimplifyTolerance < 0 {
		return fmt.Errorf("simplify_tolerance cannot be negative, got %v", c.SimplifyTolerance)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers cannot be negative, got %d", c.Workers)
	}
	return nil
}
