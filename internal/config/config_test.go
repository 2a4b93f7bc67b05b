package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "data/visits.xlsx", cfg.Dataset.File)
	assert.Equal(t, 30, cfg.Pipeline.TargetMinutes)
	assert.Equal(t, 90, cfg.Pipeline.DeptThreshold)
	assert.Equal(t, 30, cfg.Pipeline.AlertDays)
	assert.Equal(t, "direct", cfg.Pipeline.WaitingMode)
	assert.False(t, cfg.Pipeline.CountMissingAsNoncompliant)
	assert.True(t, cfg.Server.RateLimit.Enabled)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("CPULSE_SERVER_PORT", "9090")
	t.Setenv("CPULSE_PIPELINE_TARGET_MINUTES", "45")
	t.Setenv("CPULSE_DATASET_FILE", "custom/visits.csv")
	t.Setenv("CPULSE_DATASET_MAPPING_DOCTOR", "Physician")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 45, cfg.Pipeline.TargetMinutes)
	assert.Equal(t, "custom/visits.csv", cfg.Dataset.File)
	assert.Equal(t, "Physician", cfg.Dataset.Mapping.Doctor)
}

func TestLoadFileOverlay(t *testing.T) {
	content := `
server:
  port: 3000
logging:
  level: debug
dataset:
  file: file/visits.xlsx
  sheet: Visits
pipeline:
  target_minutes: 20
  waiting_mode: timediff
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "file/visits.xlsx", cfg.Dataset.File)
	assert.Equal(t, "Visits", cfg.Dataset.Sheet)
	assert.Equal(t, 20, cfg.Pipeline.TargetMinutes)
	assert.Equal(t, "timediff", cfg.Pipeline.WaitingMode)

	// Fields absent from the file keep their defaults.
	assert.Equal(t, 90, cfg.Pipeline.DeptThreshold)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadMissingFileIsIgnored(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoadValidation(t *testing.T) {
	t.Setenv("CPULSE_LOGGING_LEVEL", "loud")

	_, err := Load("")
	assert.ErrorContains(t, err, "validation")
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [not a map"), 0644))

	_, err := Load(path)
	assert.ErrorContains(t, err, "config from file")
}

func TestNewPaths(t *testing.T) {
	base := t.TempDir()
	cfg := PathsConfig{
		DataDir:    filepath.Join(base, "data"),
		DerivedDir: filepath.Join(base, "data", "derived"),
		LogsDir:    filepath.Join(base, "logs"),
	}

	paths, err := NewPaths(cfg)
	require.NoError(t, err)

	for _, dir := range []string{paths.DataDir, paths.DerivedDir, paths.LogsDir} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}

	assert.Equal(t, filepath.Join(paths.DerivedDir, WeeklyCSV), paths.GetDerivedPath(WeeklyCSV))
	assert.Equal(t, filepath.Join(paths.DataDir, "visits.xlsx"), paths.GetDataPath("visits.xlsx"))
}
