package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/MeKo-Tech/surveyscan/internal/pipeline"
	"github.com/MeKo-Tech/surveyscan/internal/registrar"
	"github.com/MeKo-Tech/surveyscan/internal/utils"
	"github.com/spf13/cobra"
)

type alignEntry struct {
	Page         string            `json:"page"`
	Registration *registrar.Result `json:"registration,omitempty"`
	Output       string            `json:"output,omitempty"`
	Err          string            `json:"error,omitempty"`
}

var alignCmd = &cobra.Command{
	Use:   "align [directory]",
	Short: "Register pages and write warped, cropped rasters",
	Long: `Register every page in a directory against the template, grade the
residual quality and write the warped-and-cropped page rasters to the
output directory. Pages whose registration fails are reported and
skipped, never aborting the batch.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, _, err := buildPipeline(cmd)
		if err != nil {
			return err
		}
		outDir, _ := cmd.Flags().GetString("out")

		batch, err := p.ProcessDirectory(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		report := make([]alignEntry, 0, len(batch.Pages))
		for _, pr := range batch.Pages {
			entry := alignEntry{Page: pr.Page, Registration: pr.Registration, Err: pr.Err}
			if pr.Cropped != nil && outDir != "" {
				base := strings.TrimSuffix(filepath.Base(pr.Page), filepath.Ext(pr.Page))
				entry.Output = filepath.Join(outDir, base+"_aligned_cropped.png")
				if err := utils.SavePNG(entry.Output, pr.Cropped); err != nil {
					entry.Err = err.Error()
					entry.Output = ""
				}
			}
			report = append(report, entry)
		}

		printSummary(cmd, batch)
		return writeReport(cmd, report)
	},
}

func printSummary(cmd *cobra.Command, batch *pipeline.BatchResult) {
	fmt.Fprintf(cmd.ErrOrStderr(), "registration: %d ok, %d warn, %d fail\n",
		batch.Summary.OK, batch.Summary.Warn, batch.Summary.Fail)
}

func init() {
	rootCmd.AddCommand(alignCmd)
	addPipelineFlags(alignCmd)
	alignCmd.Flags().String("out", "", "directory for warped and cropped page rasters")
}
