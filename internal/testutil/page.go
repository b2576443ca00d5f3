// Package testutil generates synthetic survey pages for tests: white
// pages with L-shaped corner fiducials and checkbox boxes at template
// ROI positions.
package testutil

import (
	"image"
	"image/color"

	"github.com/MeKo-Tech/surveyscan/internal/template"
)

// NewWhiteGray returns a white grayscale image of the given size.
func NewWhiteGray(w, h int) *image.Gray {
	g := image.NewGray(image.Rect(0, 0, w, h))
	for i := range g.Pix {
		g.Pix[i] = 255
	}
	return g
}

// FillRect paints a filled rectangle, clamped to image bounds.
func FillRect(g *image.Gray, rect image.Rectangle, v uint8) {
	r := rect.Intersect(g.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			g.SetGray(x, y, color.Gray{Y: v})
		}
	}
}

// DrawLMark draws an L-shaped fiducial whose two arms meet at the
// top-left of the mark, centered on (cx, cy). This mirrors the printed
// corner marks on the survey template.
func DrawLMark(g *image.Gray, cx, cy, armLength, thickness int) {
	x0 := cx - armLength/2
	y0 := cy - armLength/2
	// Horizontal arm.
	FillRect(g, image.Rect(x0, y0, x0+armLength, y0+thickness), 0)
	// Vertical arm.
	FillRect(g, image.Rect(x0, y0, x0+thickness, y0+armLength), 0)
}

// DrawBoxOutline draws a 1px checkbox outline.
func DrawBoxOutline(g *image.Gray, rect image.Rectangle) {
	FillRect(g, image.Rect(rect.Min.X, rect.Min.Y, rect.Max.X, rect.Min.Y+1), 0)
	FillRect(g, image.Rect(rect.Min.X, rect.Max.Y-1, rect.Max.X, rect.Max.Y), 0)
	FillRect(g, image.Rect(rect.Min.X, rect.Min.Y, rect.Min.X+1, rect.Max.Y), 0)
	FillRect(g, image.Rect(rect.Max.X-1, rect.Min.Y, rect.Max.X, rect.Max.Y), 0)
}

// DrawCheckMark draws a heavy X through the rectangle interior, with
// strokes thick enough that the fill ratio clearly exceeds typical
// detection thresholds.
func DrawCheckMark(g *image.Gray, rect image.Rectangle) {
	w := rect.Dx()
	h := rect.Dy()
	if w < 8 || h < 8 {
		FillRect(g, rect, 0)
		return
	}
	th := h / 4
	if th < 2 {
		th = 2
	}
	for i := range w {
		y := rect.Min.Y + i*h/w
		FillRect(g, image.Rect(rect.Min.X+i, y-th/2, rect.Min.X+i+1, y+th/2+1), 0)
		yr := rect.Max.Y - 1 - i*h/w
		FillRect(g, image.Rect(rect.Min.X+i, yr-th/2, rect.Min.X+i+1, yr+th/2+1), 0)
	}
}

// SurveyTemplate returns a small but realistic template: a 1000x1000
// page, anchors inset 5% from each corner, a central crop and two
// questions with two checkboxes each.
func SurveyTemplate() *template.Template {
	def := 25.0
	return &template.Template{
		Version:  "test_v1",
		PageSize: template.PageSize{WidthPx: 1000, HeightPx: 1000},
		AnchorsNorm: []template.NormPoint{
			{X: 0.05, Y: 0.05},
			{X: 0.95, Y: 0.05},
			{X: 0.95, Y: 0.95},
			{X: 0.05, Y: 0.95},
		},
		Crop: template.CropRect{X: 100, Y: 100, W: 800, H: 800},
		Checkboxes: []template.ROI{
			{ID: "Q1_1", X: 0.10, Y: 0.10, W: 0.05, H: 0.05},
			{ID: "Q1_2", X: 0.25, Y: 0.10, W: 0.05, H: 0.05},
			{ID: "Q2_1", X: 0.10, Y: 0.30, W: 0.05, H: 0.05},
			{ID: "Q2_2", X: 0.25, Y: 0.30, W: 0.05, H: 0.05},
		},
		Detection: template.DetectionSettings{FillThresholdPercent: &def},
	}
}

// SyntheticPage renders a source page that matches the template layout
// exactly: fiducials at the template anchor positions and checkbox
// outlines at the ROI positions, with the listed boxes marked.
func SyntheticPage(tpl *template.Template, checked map[string]bool) *image.Gray {
	g := NewWhiteGray(tpl.PageSize.WidthPx, tpl.PageSize.HeightPx)
	for _, a := range tpl.AnchorPixels() {
		DrawLMark(g, int(a.X), int(a.Y), 30, 8)
	}
	crop := tpl.CropRectangle()
	for _, roi := range tpl.Checkboxes {
		rect := roi.Rect(crop.Dx(), crop.Dy(), 0).Add(crop.Min)
		DrawBoxOutline(g, rect)
		if checked[roi.ID] {
			DrawCheckMark(g, rect.Inset(2))
		}
	}
	return g
}
