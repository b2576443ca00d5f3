// Package template loads and validates the canonical survey page
// descriptor: page size, fiducial anchor positions, the fixed content
// crop rectangle and the checkbox ROIs measured on the cropped page.
package template

import (
	"encoding/json"
	"fmt"
	"image"
	"os"
	"strings"

	"github.com/MeKo-Tech/surveyscan/internal/utils"
)

// AnchorCount is the fixed number of corner fiducials per page.
const AnchorCount = 4

// AnchorNames identify the four corners in template order.
var AnchorNames = [AnchorCount]string{"TL", "TR", "BR", "BL"}

// NormPoint is a position normalized to [0,1] page coordinates.
type NormPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// PageSize is the canonical page raster size in pixels.
type PageSize struct {
	WidthPx  int `json:"width_px"`
	HeightPx int `json:"height_px"`
}

// CropRect is the fixed content rectangle, in template pixels, applied
// after warping. It strips transform-edge artifacts and normalizes the
// coordinate base for checkbox ROIs.
type CropRect struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// ROI is a checkbox region of interest with coordinates normalized
// relative to the cropped page.
type ROI struct {
	ID string  `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
	W  float64 `json:"w"`
	H  float64 `json:"h"`
}

// Question returns the question-group prefix of the ROI ID, the part
// before the first underscore ("Q3" for "Q3_2").
func (r ROI) Question() string {
	if i := strings.Index(r.ID, "_"); i > 0 {
		return r.ID[:i]
	}
	return r.ID
}

// Rect resolves the normalized ROI to pixel coordinates on a cropped
// page of the given size, inset by insetPx on every side. Degenerate
// extents clamp to a single pixel.
func (r ROI) Rect(cropW, cropH, insetPx int) image.Rectangle {
	x := int(r.X*float64(cropW)) + insetPx
	y := int(r.Y*float64(cropH)) + insetPx
	w := int(r.W*float64(cropW)) - 2*insetPx
	h := int(r.H*float64(cropH)) - 2*insetPx
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return image.Rect(x, y, x+w, y+h)
}

// DetectionSettings carries template-embedded classification defaults.
type DetectionSettings struct {
	// FillThresholdPercent is the template default fill threshold
	// (0-100). Nil means the template carries no default.
	FillThresholdPercent *float64 `json:"fill_threshold_percent,omitempty"`
	// PerQuestionThresholds overrides the fill threshold for specific
	// question groups, keyed by question prefix, in percent.
	PerQuestionThresholds map[string]float64 `json:"per_question_thresholds,omitempty"`
}

// Template is the immutable canonical page descriptor.
type Template struct {
	Version     string            `json:"version"`
	PageSize    PageSize          `json:"page_size"`
	AnchorsNorm []NormPoint       `json:"anchors_norm"`
	Crop        CropRect          `json:"crop_rect"`
	Checkboxes  []ROI             `json:"checkbox_rois_norm"`
	Detection   DetectionSettings `json:"detection_settings"`
}

// Load reads and validates a template descriptor from a JSON file.
func Load(path string) (*Template, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: user-provided template path is expected
	if err != nil {
		return nil, fmt.Errorf("cannot read template %s: %w", path, err)
	}
	var tpl Template
	if err := json.Unmarshal(data, &tpl); err != nil {
		return nil, fmt.Errorf("cannot parse template %s: %w", path, err)
	}
	if err := tpl.Validate(); err != nil {
		return nil, fmt.Errorf("invalid template %s: %w", path, err)
	}
	return &tpl, nil
}

// Validate checks structural invariants. Template errors are fatal at
// startup since every page would fail identically.
func (t *Template) Validate() error {
	if t.PageSize.WidthPx <= 0 || t.PageSize.HeightPx <= 0 {
		return fmt.Errorf("page size must be positive, got %dx%d", t.PageSize.WidthPx, t.PageSize.HeightPx)
	}
	if len(t.AnchorsNorm) != AnchorCount {
		return fmt.Errorf("expected %d anchors, got %d", AnchorCount, len(t.AnchorsNorm))
	}
	for i, a := range t.AnchorsNorm {
		if a.X < 0 || a.X > 1 || a.Y < 0 || a.Y > 1 {
			return fmt.Errorf("anchor %s position (%g,%g) outside [0,1]", AnchorNames[i], a.X, a.Y)
		}
	}
	if err := t.validateCrop(); err != nil {
		return err
	}
	if err := t.validateROIs(); err != nil {
		return err
	}
	if t.Detection.FillThresholdPercent != nil {
		v := *t.Detection.FillThresholdPercent
		if v < 0 || v > 100 {
			return fmt.Errorf("fill threshold %g outside [0,100]", v)
		}
	}
	for q, v := range t.Detection.PerQuestionThresholds {
		if v < 0 || v > 100 {
			return fmt.Errorf("per-question threshold %s=%g outside [0,100]", q, v)
		}
	}
	return nil
}

func (t *Template) validateCrop() error {
	c := t.Crop
	if c.W <= 0 || c.H <= 0 {
		return fmt.Errorf("crop rect must have positive extent, got %dx%d", c.W, c.H)
	}
	if c.X < 0 || c.Y < 0 || c.X+c.W > t.PageSize.WidthPx || c.Y+c.H > t.PageSize.HeightPx {
		return fmt.Errorf("crop rect (%d,%d,%d,%d) outside page %dx%d",
			c.X, c.Y, c.W, c.H, t.PageSize.WidthPx, t.PageSize.HeightPx)
	}
	return nil
}

func (t *Template) validateROIs() error {
	if len(t.Checkboxes) == 0 {
		return fmt.Errorf("template has no checkbox ROIs")
	}
	seen := make(map[string]struct{}, len(t.Checkboxes))
	for _, r := range t.Checkboxes {
		if r.ID == "" {
			return fmt.Errorf("checkbox ROI with empty id")
		}
		if _, dup := seen[r.ID]; dup {
			return fmt.Errorf("duplicate checkbox ROI id %q", r.ID)
		}
		seen[r.ID] = struct{}{}
		if r.W <= 0 || r.H <= 0 {
			return fmt.Errorf("checkbox ROI %s has non-positive extent", r.ID)
		}
		if r.X < 0 || r.Y < 0 || r.X+r.W > 1 || r.Y+r.H > 1 {
			return fmt.Errorf("checkbox ROI %s outside [0,1]", r.ID)
		}
	}
	return nil
}

// AnchorPixels returns the template anchor positions in page pixels.
func (t *Template) AnchorPixels() [AnchorCount]utils.Point {
	var out [AnchorCount]utils.Point
	for i, a := range t.AnchorsNorm {
		out[i] = utils.Point{
			X: a.X * float64(t.PageSize.WidthPx),
			Y: a.Y * float64(t.PageSize.HeightPx),
		}
	}
	return out
}

// CropRectangle returns the crop rect as an image.Rectangle.
func (t *Template) CropRectangle() image.Rectangle {
	return image.Rect(t.Crop.X, t.Crop.Y, t.Crop.X+t.Crop.W, t.Crop.Y+t.Crop.H)
}
