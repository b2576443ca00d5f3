package pipeline

import (
	"image"

	"github.com/MeKo-Tech/surveyscan/internal/anchor"
	"github.com/MeKo-Tech/surveyscan/internal/checkbox"
	"github.com/MeKo-Tech/surveyscan/internal/registrar"
	"github.com/MeKo-Tech/surveyscan/internal/review"
	"github.com/MeKo-Tech/surveyscan/internal/template"
)

// PageResult is the per-page pipeline outcome. Failures are recorded as
// data; a failed page never aborts the batch.
type PageResult struct {
	Page         string                                 `json:"page"`
	Anchors      [template.AnchorCount]anchor.Detection `json:"anchors"`
	Registration *registrar.Result                      `json:"registration,omitempty"`
	Checkboxes   []checkbox.Classification              `json:"checkboxes,omitempty"`
	CheckedTotal int                                    `json:"checkbox_checked_total"`
	Err          string                                 `json:"error,omitempty"`

	// Cropped is the warped-and-cropped page raster, nil when
	// registration failed. Excluded from serialized records.
	Cropped image.Image `json:"-"`
}

// Failed reports whether the page produced no classifications.
func (r *PageResult) Failed() bool {
	return r.Err != "" || r.Registration == nil || r.Registration.Quality == registrar.QualityFail
}

// QualitySummary counts pages per registration quality.
type QualitySummary struct {
	OK   int `json:"ok"`
	Warn int `json:"warn"`
	Fail int `json:"fail"`
}

// BatchResult aggregates a whole run. It is produced even when every
// page failed; the report itself communicates total failure.
type BatchResult struct {
	Pages   []*PageResult  `json:"pages"`
	Summary QualitySummary `json:"summary"`
	Review  []review.Flag  `json:"review_queue"`
}
