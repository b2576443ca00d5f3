package cmd

import (
	"github.com/MeKo-Tech/surveyscan/internal/anchor"
	"github.com/MeKo-Tech/surveyscan/internal/template"
	"github.com/MeKo-Tech/surveyscan/internal/utils"
	"github.com/spf13/cobra"
)

type pageAnchors struct {
	Page    string                                 `json:"page"`
	Anchors [template.AnchorCount]anchor.Detection `json:"anchors"`
	Found   int                                    `json:"found"`
}

var anchorsCmd = &cobra.Command{
	Use:   "anchors [directory]",
	Short: "Detect corner fiducials on scanned pages",
	Long: `Detect the four L-shaped corner fiducials on every page image in a
directory and report detected positions, confidence and supporting
contour area per corner.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		tplPath, _ := cmd.Flags().GetString("template")
		tpl, err := template.Load(tplPath)
		if err != nil {
			return err
		}

		det := anchor.NewDetector(anchor.Config{
			SearchHalfWidth: cfg.Anchor.SearchHalfWidth,
			MinArea:         cfg.Anchor.MinArea,
			BlurRadius:      cfg.Anchor.BlurRadius,
		})

		paths, err := utils.DiscoverImages(args[0])
		if err != nil {
			return err
		}

		report := make([]pageAnchors, 0, len(paths))
		for _, path := range paths {
			img, err := utils.LoadImage(path)
			if err != nil {
				report = append(report, pageAnchors{Page: path})
				continue
			}
			dets := det.DetectAll(utils.ToGray(img), tpl.AnchorPixels())
			found := 0
			for _, d := range dets {
				if d.Found {
					found++
				}
			}
			report = append(report, pageAnchors{Page: path, Anchors: dets, Found: found})
		}
		return writeReport(cmd, report)
	},
}

func init() {
	rootCmd.AddCommand(anchorsCmd)
	anchorsCmd.Flags().StringP("template", "t", "", "template descriptor JSON (required)")
	anchorsCmd.Flags().StringP("output", "o", "", "write the JSON report to this file instead of stdout")
	_ = anchorsCmd.MarkFlagRequired("template")
}
