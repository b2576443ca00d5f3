package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/MeKo-Tech/surveyscan/internal/config"
	"github.com/MeKo-Tech/surveyscan/internal/pipeline"
	"github.com/MeKo-Tech/surveyscan/internal/template"
	"github.com/spf13/cobra"
)

// addPipelineFlags registers the flags shared by all processing
// subcommands.
func addPipelineFlags(c *cobra.Command) {
	c.Flags().StringP("template", "t", "", "template descriptor JSON (required)")
	c.Flags().Float64("threshold", -1,
		"fill threshold override in percent (highest-precedence threshold source)")
	c.Flags().String("model", "", "trained classifier model artifact (JSON)")
	c.Flags().Int("workers", 0, "parallel page workers (0 = CPU count)")
	c.Flags().StringP("output", "o", "", "write the JSON report to this file instead of stdout")
	_ = c.MarkFlagRequired("template")
}

// buildPipeline assembles a pipeline from config and command flags.
func buildPipeline(c *cobra.Command) (*pipeline.Pipeline, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	if workers, _ := c.Flags().GetInt("workers"); workers > 0 {
		cfg.Parallel.MaxWorkers = workers
	}

	tplPath, _ := c.Flags().GetString("template")
	tpl, err := template.Load(tplPath)
	if err != nil {
		return nil, nil, err
	}

	b := pipeline.NewBuilder().WithTemplate(tpl).WithConfig(cfg)
	if model, _ := c.Flags().GetString("model"); model != "" {
		b = b.WithModelPath(model)
	}
	if th, _ := c.Flags().GetFloat64("threshold"); th >= 0 {
		b = b.WithThresholdOverride(th)
	}
	p, err := b.Build()
	if err != nil {
		return nil, nil, err
	}
	return p, cfg, nil
}

// writeReport marshals the report as indented JSON to the --output file
// or stdout.
func writeReport(c *cobra.Command, report any) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	data = append(data, '\n')

	out, _ := c.Flags().GetString("output")
	if out == "" {
		_, err = c.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(out, data, 0o600); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}
