package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name string, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0666))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, 0.5, cfg.AnalysisCellSize)
	assert.Equal(t, "INTENSITY_RANGE", cfg.Statistic)
}

func TestLoadTOML(t *testing.T) {
	path := writeFile(t, "updater.toml", `
analysis_cell_size = 1.5
statistic = "POINT_COUNT"
workers = 4
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	want := Default()
	want.AnalysisCellSize = 1.5
	want.Statistic = "POINT_COUNT"
	want.Workers = 4
	assert.Equal(t, want, cfg)
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "updater.yml", `
hole_area_threshold: 25
join_tolerance: 2
scratch_dir: /var/tmp/updater
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 25.0, cfg.HoleAreaThreshold)
	assert.Equal(t, 2.0, cfg.JoinTolerance)
	assert.Equal(t, "/var/tmp/updater", cfg.ScratchDir)
	assert.Equal(t, 0.5, cfg.AnalysisCellSize, "unset values keep their default")
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "updater.ini", "workers=1"))
	assert.ErrorContains(t, err, "unsupported config format")

	_, err = Load(writeFile(t, "updater.toml", `statistic = "MEAN"`))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "updater.yaml", "analysis_cell_size: -1"))
	assert.ErrorContains(t, err, "analysis_cell_size")
}

func TestApplyEnvFromDotEnv(t *testing.T) {
	t.Setenv(ScratchDirEnv, "")
	require.NoError(t, os.Unsetenv(ScratchDirEnv))

	envFile := writeFile(t, ".env", ScratchDirEnv+"=/scratch/from/dotenv\n")
	cfg := Default()
	cfg.ApplyEnv(envFile)
	assert.Equal(t, "/scratch/from/dotenv", cfg.ScratchDir)
}

func TestApplyEnvKeepsProcessEnvironment(t *testing.T) {
	t.Setenv(ScratchDirEnv, "/scratch/from/env")

	envFile := writeFile(t, ".env", ScratchDirEnv+"=/scratch/from/dotenv\n")
	cfg := Default()
	cfg.ApplyEnv(envFile)
	assert.Equal(t, "/scratch/from/env", cfg.ScratchDir)
}

func TestApplyEnvWithoutOverride(t *testing.T) {
	t.Setenv(ScratchDirEnv, "")
	require.NoError(t, os.Unsetenv(ScratchDirEnv))

	cfg := Default()
	cfg.ScratchDir = "/configured"
	cfg.ApplyEnv(filepath.Join(t.TempDir(), "missing.env"))
	assert.Equal(t, "/configured", cfg.ScratchDir)
}
