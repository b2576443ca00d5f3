package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoaderDefaultsWithoutFile(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Chdir(t.TempDir())

	cfg, err := NewLoader().Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoaderReadsConfigFile(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	path := filepath.Join(t.TempDir(), "surveyscan.yaml")
	data := `
log_level: debug
anchor:
  search_half_width: 120
checkbox:
  fill_threshold_percent: 15.0
parallel:
  max_workers: 4
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	l := NewLoader()
	l.SetConfigFile(path)
	cfg, err := l.Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 120, cfg.Anchor.SearchHalfWidth)
	assert.InDelta(t, 15.0, cfg.Checkbox.FillThresholdPercent, 1e-9)
	assert.Equal(t, 4, cfg.Parallel.MaxWorkers)
	// Untouched keys keep their defaults.
	assert.InDelta(t, 4.5, cfg.Register.WarnResidualPx, 1e-9)
}

func TestLoaderRejectsInvalidFile(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	path := filepath.Join(t.TempDir(), "surveyscan.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: shouting\n"), 0o600))

	l := NewLoader()
	l.SetConfigFile(path)
	_, err := l.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestLoaderEnvironmentOverride(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Chdir(t.TempDir())
	t.Setenv("SURVEYSCAN_LOG_LEVEL", "warn")

	cfg, err := NewLoader().Load()
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
}
