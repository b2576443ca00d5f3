package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/MeKo-Tech/surveyscan/internal/pipeline"
	"github.com/MeKo-Tech/surveyscan/internal/utils"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run [directory]",
	Short: "Run the whole pipeline: detect, register, classify, review",
	Long: `Process a directory of scanned pages end to end. Every page goes
through anchor detection, registration, warp-and-crop and checkbox
classification, and the batch is finished with a ranked review queue.
The full batch report is written as JSON; cropped page rasters are
saved when --out is given.`,
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

		if outDir != "" {
			if err := saveCropped(batch, outDir); err != nil {
				return err
			}
		}

		fmt.Fprintf(cmd.ErrOrStderr(),
			"%d pages: %d ok, %d warn, %d fail, %d flagged for review\n",
			len(batch.Pages), batch.Summary.OK, batch.Summary.Warn,
			batch.Summary.Fail, len(batch.Review))
		return writeReport(cmd, batch)
	},
}

func saveCropped(batch *pipeline.BatchResult, dir string) error {
	for _, pr := range batch.Pages {
		if pr.Cropped == nil {
			continue
		}
		base := strings.TrimSuffix(filepath.Base(pr.Page), filepath.Ext(pr.Page))
		if err := utils.SavePNG(filepath.Join(dir, base+"_aligned_cropped.png"), pr.Cropped); err != nil {
			return fmt.Errorf("saving cropped page %s: %w", pr.Page, err)
		}
	}
	return nil
}

func init() {
	rootCmd.AddCommand(runCmd)
	addPipelineFlags(runCmd)
	runCmd.Flags().String("out", "", "directory for warped and cropped page rasters")
}
