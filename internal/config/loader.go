package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	// ConfigFileName is the base name for configuration files.
	ConfigFileName = "surveyscan"

	// EnvPrefix is the prefix for environment variables.
	EnvPrefix = "SURVEYSCAN"
)

// Loader handles loading configuration from various sources.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a configuration loader backed by the global viper
// instance so cobra flag bindings take effect.
func NewLoader() *Loader {
	return &Loader{v: viper.GetViper()}
}

// Load loads configuration from file, environment and defaults, then
// validates it. A missing config file is fine; an invalid one is not.
func (l *Loader) Load() (*Config, error) {
	l.v.SetConfigName(ConfigFileName)
	l.v.SetConfigType("yaml")
	l.addConfigPaths()
	l.setupEnvironmentVariables()
	l.setDefaults()

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// SetConfigFile points the loader at an explicit config file path.
func (l *Loader) SetConfigFile(path string) {
	if path != "" {
		l.v.SetConfigFile(path)
	}
}

func (l *Loader) addConfigPaths() {
	l.v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		l.v.AddConfigPath(home)
		l.v.AddConfigPath(filepath.Join(home, ".config", "surveyscan"))
	}
	l.v.AddConfigPath("/etc/surveyscan")
}

func (l *Loader) setupEnvironmentVariables() {
	l.v.SetEnvPrefix(EnvPrefix)
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	l.v.AutomaticEnv()
}

func (l *Loader) setDefaults() {
	def := DefaultConfig()
	l.v.SetDefault("log_level", def.LogLevel)
	l.v.SetDefault("verbose", def.Verbose)
	l.v.SetDefault("anchor.search_half_width", def.Anchor.SearchHalfWidth)
	l.v.SetDefault("anchor.min_area", def.Anchor.MinArea)
	l.v.SetDefault("anchor.blur_radius", def.Anchor.BlurRadius)
	l.v.SetDefault("register.ransac_threshold_px", def.Register.RANSACThresholdPx)
	l.v.SetDefault("register.warn_residual_px", def.Register.WarnResidualPx)
	l.v.SetDefault("register.fail_residual_px", def.Register.FailResidualPx)
	l.v.SetDefault("checkbox.fill_threshold_percent", def.Checkbox.FillThresholdPercent)
	l.v.SetDefault("checkbox.inset_px", def.Checkbox.InsetPx)
	l.v.SetDefault("checkbox.model_path", def.Checkbox.ModelPath)
	l.v.SetDefault("review.near_margin_percent", def.Review.NearMarginPercent)
	l.v.SetDefault("review.residual_fail_px", def.Review.ResidualFailPx)
	l.v.SetDefault("parallel.max_workers", def.Parallel.MaxWorkers)
}
