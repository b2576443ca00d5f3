package cmd

import (
	"fmt"

	"github.com/MeKo-Tech/surveyscan/internal/checkbox"
	"github.com/spf13/cobra"
)

type classifyEntry struct {
	Page       string                    `json:"page"`
	Checkboxes []checkbox.Classification `json:"checkboxes,omitempty"`
	Checked    int                       `json:"checked_total"`
	Err        string                    `json:"error,omitempty"`
}

var classifyCmd = &cobra.Command{
	Use:   "classify [directory]",
	Short: "Classify checkbox marks on registered pages",
	Long: `Run the full page pipeline over a directory and report, per page,
the checked/unchecked decision and score for every checkbox region.
Scores are fill percentages under the threshold classifier and
probabilities when a trained model is supplied with --model.`,
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

		report := make([]classifyEntry, 0, len(batch.Pages))
		for _, pr := range batch.Pages {
			report = append(report, classifyEntry{
				Page:       pr.Page,
				Checkboxes: pr.Checkboxes,
				Checked:    pr.CheckedTotal,
				Err:        pr.Err,
			})
		}

		fmt.Fprintf(cmd.ErrOrStderr(), "classified %d pages (%d failed)\n",
			len(batch.Pages), batch.Summary.Fail)
		return writeReport(cmd, report)
	},
}

func init() {
	rootCmd.AddCommand(classifyCmd)
	addPipelineFlags(classifyCmd)
}
