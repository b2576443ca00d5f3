package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var reviewCmd = &cobra.Command{
	Use:   "review [directory]",
	Short: "Build the manual-review queue for a batch of pages",
	Long: `Process a directory of pages and report only the pages that need a
human look: conflicting answers, missing answers, scores near the
decision threshold, and pages with poor or failed registration. Pages
without findings are left out. The queue is ranked high, medium, low.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, _, err := buildPipeline(cmd)
		if err != nil {
			return err
		}

		batch, err := p.ProcessDirectory(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.ErrOrStderr(), "%d of %d pages flagged for review\n",
			len(batch.Review), len(batch.Pages))
		return writeReport(cmd, batch.Review)
	},
}

func init() {
	rootCmd.AddCommand(reviewCmd)
	addPipelineFlags(reviewCmd)
}
