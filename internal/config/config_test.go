package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
}

func TestDefaultValues(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 80, cfg.Anchor.SearchHalfWidth)
	assert.InDelta(t, 10, cfg.Anchor.MinArea, 1e-9)
	assert.InDelta(t, 3.0, cfg.Register.RANSACThresholdPx, 1e-9)
	assert.InDelta(t, 4.5, cfg.Register.WarnResidualPx, 1e-9)
	assert.InDelta(t, 6.0, cfg.Register.FailResidualPx, 1e-9)
	assert.InDelta(t, 11.5, cfg.Checkbox.FillThresholdPercent, 1e-9)
	assert.Equal(t, 2, cfg.Checkbox.InsetPx)
	assert.InDelta(t, 3.0, cfg.Review.NearMarginPercent, 1e-9)
	assert.Equal(t, 0, cfg.Parallel.MaxWorkers)
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantMsg string
	}{
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, "log level"},
		{"zero search width", func(c *Config) { c.Anchor.SearchHalfWidth = 0 }, "search half-width"},
		{"negative min area", func(c *Config) { c.Anchor.MinArea = -1 }, "min area"},
		{"zero ransac threshold", func(c *Config) { c.Register.RANSACThresholdPx = 0 }, "ransac"},
		{"zero warn residual", func(c *Config) { c.Register.WarnResidualPx = 0 }, "residual thresholds"},
		{"fail below warn", func(c *Config) { c.Register.FailResidualPx = 1 }, "below warn"},
		{"threshold over 100", func(c *Config) { c.Checkbox.FillThresholdPercent = 120 }, "fill threshold"},
		{"negative inset", func(c *Config) { c.Checkbox.InsetPx = -1 }, "inset"},
		{"negative margin", func(c *Config) { c.Review.NearMarginPercent = -1 }, "near margin"},
		{"zero review residual", func(c *Config) { c.Review.ResidualFailPx = 0 }, "review residual"},
		{"negative workers", func(c *Config) { c.Parallel.MaxWorkers = -2 }, "max workers"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}
