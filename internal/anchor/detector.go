// Package anchor locates the printed L-shaped corner fiducials used to
// register a scanned page against the template.
package anchor

import (
	"image"
	"log/slog"
	"math"

	"github.com/MeKo-Tech/surveyscan/internal/imgproc"
	"github.com/MeKo-Tech/surveyscan/internal/template"
	"github.com/MeKo-Tech/surveyscan/internal/utils"
)

// Config holds anchor detection settings.
type Config struct {
	// SearchHalfWidth is the half-width of the square search window,
	// in pixels, centered on the expected anchor position.
	SearchHalfWidth int
	// MinArea rejects contours smaller than this many square pixels
	// as noise.
	MinArea float64
	// BlurRadius is the Gaussian smoothing radius applied to the
	// search window before binarization.
	BlurRadius float64
	// ReferenceArea is the contour area at which the area term of the
	// confidence saturates.
	ReferenceArea float64
}

// DefaultConfig returns sensible defaults for 300 DPI scans.
func DefaultConfig() Config {
	return Config{
		SearchHalfWidth: 80,
		MinArea:         10,
		BlurRadius:      2.0,
		ReferenceArea:   500,
	}
}

// Detection is the per-corner result. Position is only meaningful when
// Found is true; a missed anchor is never substituted by the expected
// position here.
type Detection struct {
	Position   utils.Point `json:"position"`
	Found      bool        `json:"found"`
	Confidence float64     `json:"confidence"`
	Area       float64     `json:"area"`
}

// Detector finds fiducial marks near expected positions.
type Detector struct {
	cfg Config
}

// NewDetector creates a detector with the given configuration, filling
// zero values with defaults.
func NewDetector(cfg Config) *Detector {
	def := DefaultConfig()
	if cfg.SearchHalfWidth <= 0 {
		cfg.SearchHalfWidth = def.SearchHalfWidth
	}
	if cfg.MinArea <= 0 {
		cfg.MinArea = def.MinArea
	}
	if cfg.ReferenceArea <= 0 {
		cfg.ReferenceArea = def.ReferenceArea
	}
	return &Detector{cfg: cfg}
}

// Detect searches for one fiducial near the expected position on the
// full grayscale page. It reports not-found rather than guessing.
func (d *Detector) Detect(gray *image.Gray, expected utils.Point) Detection {
	b := gray.Bounds()
	win := image.Rect(
		int(expected.X)-d.cfg.SearchHalfWidth,
		int(expected.Y)-d.cfg.SearchHalfWidth,
		int(expected.X)+d.cfg.SearchHalfWidth,
		int(expected.Y)+d.cfg.SearchHalfWidth,
	).Intersect(b)
	if win.Empty() {
		return Detection{}
	}

	roi := utils.CropGray(gray, win)
	roi = imgproc.GaussianBlur(roi, d.cfg.BlurRadius)

	thr := imgproc.OtsuThreshold(roi)
	w, h := roi.Bounds().Dx(), roi.Bounds().Dy()
	mask := imgproc.BinarizeInv(roi, thr)

	comps, labels := imgproc.ConnectedComponents(mask, w, h)
	if len(comps) == 0 {
		return Detection{}
	}

	best, bestContour, bestArea := d.largestContour(comps, labels, w, h)
	if bestArea < d.cfg.MinArea {
		return Detection{}
	}

	cx, cy := componentCentroid(best, bestContour)
	return Detection{
		Position: utils.Point{
			X: float64(win.Min.X) + cx,
			Y: float64(win.Min.Y) + cy,
		},
		Found:      true,
		Confidence: d.confidence(bestArea, imgproc.PolygonPerimeter(bestContour)),
		Area:       bestArea,
	}
}

// largestContour traces each component's external contour and returns
// the one enclosing the largest area.
func (d *Detector) largestContour(comps []imgproc.Component, labels []int, w, h int) (imgproc.Component, []utils.Point, float64) {
	var best imgproc.Component
	var bestContour []utils.Point
	bestArea := -1.0
	for i, c := range comps {
		contour := imgproc.TraceContour(labels, w, h, i+1, c)
		area := imgproc.PolygonArea(contour)
		if area == 0 {
			// Thin or single-pixel components have no enclosed area;
			// fall back to the pixel count.
			area = float64(c.Count)
		}
		if area > bestArea {
			best = c
			bestContour = contour
			bestArea = area
		}
	}
	return best, bestContour, bestArea
}

// componentCentroid is the first-order moment centroid of the component
// interior, falling back to the contour vertex mean when the component
// is degenerate.
func componentCentroid(c imgproc.Component, contour []utils.Point) (float64, float64) {
	if c.Count > 0 {
		return c.CentroidX(), c.CentroidY()
	}
	if len(contour) == 0 {
		return 0, 0
	}
	var sx, sy float64
	for _, p := range contour {
		sx += p.X
		sy += p.Y
	}
	n := float64(len(contour))
	return sx / n, sy / n
}

// confidence combines a capped area term with a compactness penalty.
// True L-marks have high perimeter relative to area, so a low
// isoperimetric ratio raises confidence.
func (d *Detector) confidence(area, perimeter float64) float64 {
	if perimeter == 0 {
		return 0
	}
	compactness := 4 * math.Pi * area / (perimeter * perimeter)
	if compactness > 1 {
		compactness = 1
	}
	areaTerm := area / d.cfg.ReferenceArea
	if areaTerm > 1 {
		areaTerm = 1
	}
	return areaTerm * (1 - compactness)
}

// DetectAll runs detection for each template corner in order TL, TR,
// BR, BL.
func (d *Detector) DetectAll(gray *image.Gray, expected [template.AnchorCount]utils.Point) [template.AnchorCount]Detection {
	var out [template.AnchorCount]Detection
	for i, e := range expected {
		out[i] = d.Detect(gray, e)
		if !out[i].Found {
			slog.Debug("anchor not found",
				"corner", template.AnchorNames[i],
				"expected_x", e.X,
				"expected_y", e.Y)
		}
	}
	return out
}
