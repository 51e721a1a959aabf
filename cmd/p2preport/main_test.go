package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigFlagOverrides(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("analysis:\n  days_back: 15\n"), 0o644))

	cfg, err := loadConfig(cfgPath, 0, "")
	require.NoError(t, err)
	assert.Equal(t, 15, cfg.Analysis.DaysBack)
	assert.Equal(t, filepath.Join("data", "p2p-data.json"), cfg.OutputPath())

	cfg, err = loadConfig(cfgPath, 7, filepath.Join(dir, "out", "report.json"))
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Analysis.DaysBack)
	assert.Equal(t, filepath.Join(dir, "out", "report.json"), cfg.OutputPath())
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := loadConfig(filepath.Join(t.TempDir(), "nope.yaml"), 0, "report.json")
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.Analysis.DaysBack)
	assert.Equal(t, "report.json", cfg.OutputPath())
}

func TestLoadConfigRejectsDirectoryOutput(t *testing.T) {
	_, err := loadConfig(filepath.Join(t.TempDir(), "nope.yaml"), 0, "data/")
	assert.Error(t, err)
}

func TestLoadConfigRejectsNegativeDays(t *testing.T) {
	_, err := loadConfig(filepath.Join(t.TempDir(), "nope.yaml"), -3, "")
	assert.ErrorContains(t, err, "-days")
}
