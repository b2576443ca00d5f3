// Package config loads and validates the surveyscan configuration from
// files, environment variables and flags.
package config

import (
	"fmt"
)

// Config is the complete application configuration. Invalid values fail
// fast at startup, before any page is processed.
type Config struct {
	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`

	Anchor   AnchorConfig   `mapstructure:"anchor" yaml:"anchor" json:"anchor"`
	Register RegisterConfig `mapstructure:"register" yaml:"register" json:"register"`
	Checkbox CheckboxConfig `mapstructure:"checkbox" yaml:"checkbox" json:"checkbox"`
	Review   ReviewConfig   `mapstructure:"review" yaml:"review" json:"review"`
	Parallel ParallelConfig `mapstructure:"parallel" yaml:"parallel" json:"parallel"`
}

// AnchorConfig contains fiducial detection settings.
type AnchorConfig struct {
	SearchHalfWidth int     `mapstructure:"search_half_width" yaml:"search_half_width" json:"search_half_width"`
	MinArea         float64 `mapstructure:"min_area" yaml:"min_area" json:"min_area"`
	BlurRadius      float64 `mapstructure:"blur_radius" yaml:"blur_radius" json:"blur_radius"`
}

// RegisterConfig contains transform fitting and grading settings.
type RegisterConfig struct {
	RANSACThresholdPx float64 `mapstructure:"ransac_threshold_px" yaml:"ransac_threshold_px" json:"ransac_threshold_px"`
	WarnResidualPx    float64 `mapstructure:"warn_residual_px" yaml:"warn_residual_px" json:"warn_residual_px"`
	FailResidualPx    float64 `mapstructure:"fail_residual_px" yaml:"fail_residual_px" json:"fail_residual_px"`
}

// CheckboxConfig contains classification settings.
type CheckboxConfig struct {
	// FillThresholdPercent is the global default fill threshold
	// (0-100), the last stop in the resolution order.
	FillThresholdPercent float64 `mapstructure:"fill_threshold_percent" yaml:"fill_threshold_percent" json:"fill_threshold_percent"`
	// InsetPx shrinks each ROI on every side before extraction to
	// avoid the printed box outline dominating the features.
	InsetPx int `mapstructure:"inset_px" yaml:"inset_px" json:"inset_px"`
	// ModelPath points at a trained model artifact. Absence is not an
	// error; the threshold policy is the default path.
	ModelPath string `mapstructure:"model_path" yaml:"model_path" json:"model_path"`
}

// ReviewConfig contains review-queue settings.
type ReviewConfig struct {
	NearMarginPercent float64 `mapstructure:"near_margin_percent" yaml:"near_margin_percent" json:"near_margin_percent"`
	ResidualFailPx    float64 `mapstructure:"residual_fail_px" yaml:"residual_fail_px" json:"residual_fail_px"`
}

// ParallelConfig contains worker-pool settings.
type ParallelConfig struct {
	// MaxWorkers bounds concurrent page processing; 0 means the CPU
	// core count.
	MaxWorkers int `mapstructure:"max_workers" yaml:"max_workers" json:"max_workers"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Anchor: AnchorConfig{
			SearchHalfWidth: 80,
			MinArea:         10,
			BlurRadius:      2.0,
		},
		Register: RegisterConfig{
			RANSACThresholdPx: 3.0,
			WarnResidualPx:    4.5,
			FailResidualPx:    6.0,
		},
		Checkbox: CheckboxConfig{
			FillThresholdPercent: 11.5,
			InsetPx:              2,
		},
		Review: ReviewConfig{
			NearMarginPercent: 3.0,
			ResidualFailPx:    6.0,
		},
		Parallel: ParallelConfig{MaxWorkers: 0},
	}
}

// Validate checks configuration invariants.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	if c.Anchor.SearchHalfWidth <= 0 {
		return fmt.Errorf("anchor search half-width must be positive, got %d", c.Anchor.SearchHalfWidth)
	}
	if c.Anchor.MinArea < 0 {
		return fmt.Errorf("anchor min area must not be negative, got %g", c.Anchor.MinArea)
	}
	if c.Register.RANSACThresholdPx <= 0 {
		return fmt.Errorf("ransac threshold must be positive, got %g", c.Register.RANSACThresholdPx)
	}
	if c.Register.WarnResidualPx <= 0 || c.Register.FailResidualPx <= 0 {
		return fmt.Errorf("residual thresholds must be positive, got warn=%g fail=%g",
			c.Register.WarnResidualPx, c.Register.FailResidualPx)
	}
	if c.Register.FailResidualPx < c.Register.WarnResidualPx {
		return fmt.Errorf("fail residual %g below warn residual %g",
			c.Register.FailResidualPx, c.Register.WarnResidualPx)
	}
	if c.Checkbox.FillThresholdPercent < 0 || c.Checkbox.FillThresholdPercent > 100 {
		return fmt.Errorf("fill threshold %g outside [0,100]", c.Checkbox.FillThresholdPercent)
	}
	if c.Checkbox.InsetPx < 0 {
		return fmt.Errorf("checkbox inset must not be negative, got %d", c.Checkbox.InsetPx)
	}
	if c.Review.NearMarginPercent < 0 {
		return fmt.Errorf("near margin must not be negative, got %g", c.Review.NearMarginPercent)
	}
	if c.Review.ResidualFailPx <= 0 {
		return fmt.Errorf("review residual threshold must be positive, got %g", c.Review.ResidualFailPx)
	}
	if c.Parallel.MaxWorkers < 0 {
		return fmt.Errorf("max workers must not be negative, got %d", c.Parallel.MaxWorkers)
	}
	return nil
}
