package pipeline

import (
	"context"
	"image"
	"log/slog"

	"github.com/MeKo-Tech/surveyscan/internal/checkbox"
	"github.com/MeKo-Tech/surveyscan/internal/registrar"
	"github.com/MeKo-Tech/surveyscan/internal/utils"
)

// NamedImage pairs a page identifier with its decoded raster.
type NamedImage struct {
	Name  string
	Image image.Image
}

// ProcessPage runs the single-page pipeline: detect anchors, register,
// warp and crop, extract features and classify every checkbox ROI. The
// stages within a page are strictly ordered; failures short-circuit
// into the result instead of an error.
func (p *Pipeline) ProcessPage(ctx context.Context, name string, img image.Image) *PageResult {
	res := &PageResult{Page: name}
	if err := ctx.Err(); err != nil {
		res.Err = err.Error()
		return res
	}

	gray := utils.ToGray(img)
	res.Anchors = p.detector.DetectAll(gray, p.tpl.AnchorPixels())

	res.Registration = p.registrar.Register(res.Anchors, p.tpl, img.Bounds())
	if res.Registration.Quality == registrar.QualityFail {
		slog.Info("page registration failed",
			"page", name,
			"reason", res.Registration.Reason)
		return res
	}

	res.Cropped = registrar.WarpAndCrop(res.Registration, p.tpl, img)
	if res.Cropped == nil {
		res.Err = "warp produced no image"
		return res
	}
	p.classifyPage(res)
	return res
}

func (p *Pipeline) classifyPage(res *PageResult) {
	grayCrop := utils.ToGray(res.Cropped)
	cb := grayCrop.Bounds()
	cropW, cropH := cb.Dx(), cb.Dy()

	res.Checkboxes = make([]checkbox.Classification, 0, len(p.tpl.Checkboxes))
	for _, roi := range p.tpl.Checkboxes {
		rect := roi.Rect(cropW, cropH, p.cfg.Checkbox.InsetPx)
		crop := utils.CropGray(grayCrop, rect)
		feats := checkbox.Extract(crop)
		cls := p.classifier.Classify(roi, feats)
		if cls.Checked {
			res.CheckedTotal++
		}
		res.Checkboxes = append(res.Checkboxes, cls)
	}
}
