package cmd

import (
	"log/slog"
	"os"

	"github.com/MeKo-Tech/surveyscan/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without subcommands.
var rootCmd = &cobra.Command{
	Use:   "surveyscan",
	Short: "Register scanned survey pages and classify checkboxes",
	Long: `surveyscan registers scanned paper survey pages against a canonical
template and classifies hand-marked checkboxes.

The pipeline detects L-shaped corner fiducials, fits a projective
transform into template coordinates, grades registration quality,
extracts per-checkbox features, classifies each box by fill threshold
or a trained linear model, and ranks pages needing manual review.

Examples:
  surveyscan anchors scans/ --template template.json
  surveyscan align scans/ --template template.json --out aligned/
  surveyscan classify scans/ --template template.json --threshold 12.5
  surveyscan run scans/ --template template.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// Execute runs the root command. Called once from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initLogging)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default is search in ., $HOME, $HOME/.config/surveyscan, /etc/surveyscan)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output (equivalent to --log-level=debug)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func initLogging() {
	level := slog.LevelInfo
	switch viper.GetString("log_level") {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if viper.GetBool("verbose") {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// loadConfig loads configuration honoring the --config flag.
func loadConfig() (*config.Config, error) {
	loader := config.NewLoader()
	loader.SetConfigFile(cfgFile)
	return loader.Load()
}
