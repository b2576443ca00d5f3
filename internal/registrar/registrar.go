// Package registrar fits the geometric transform mapping a scanned page
// into template coordinates, grades its residual quality and produces
// the warped, cropped page consumed by checkbox extraction.
package registrar

import (
	"fmt"
	"image"
	"log/slog"

	"github.com/MeKo-Tech/surveyscan/internal/anchor"
	"github.com/MeKo-Tech/surveyscan/internal/template"
	"github.com/MeKo-Tech/surveyscan/internal/utils"
)

// Quality grades a registration by mean reprojection residual.
type Quality string

const (
	QualityOK   Quality = "ok"
	QualityWarn Quality = "warn"
	QualityFail Quality = "fail"
)

// TransformType names the fitted transform family.
type TransformType string

const (
	TransformHomography TransformType = "homography"
	TransformAffine     TransformType = "affine"
	TransformScale      TransformType = "scale"
)

// Config holds registration settings. Thresholds are configuration, not
// hardcoded policy.
type Config struct {
	// RANSACThresholdPx is the inlier reprojection distance for the
	// robust homography fit.
	RANSACThresholdPx float64
	// WarnResidualPx is the mean residual above which quality drops
	// from ok to warn.
	WarnResidualPx float64
	// FailResidualPx is the mean residual above which quality is fail.
	FailResidualPx float64
}

// DefaultConfig returns sensible defaults for 300 DPI scans.
func DefaultConfig() Config {
	return Config{
		RANSACThresholdPx: 3.0,
		WarnResidualPx:    4.5,
		FailResidualPx:    6.0,
	}
}

// AnchorResidual is the per-anchor reprojection error in pixels.
type AnchorResidual struct {
	Anchor  string  `json:"anchor"`
	ErrorPx float64 `json:"error_px"`
}

// Result is the immutable per-page registration record.
type Result struct {
	Transform      utils.Matrix3    `json:"transform"`
	Inverse        utils.Matrix3    `json:"inverse"`
	Type           TransformType    `json:"transform_type"`
	Residuals      []AnchorResidual `json:"residuals"`
	MeanResidualPx float64          `json:"mean_residual_px"`
	MaxResidualPx  float64          `json:"max_residual_px"`
	Quality        Quality          `json:"quality"`
	Reason         string           `json:"reason,omitempty"`
}

// Registrar fits page-to-template transforms.
type Registrar struct {
	cfg Config
}

// NewRegistrar creates a registrar, filling zero config values with
// defaults.
func NewRegistrar(cfg Config) *Registrar {
	def := DefaultConfig()
	if cfg.RANSACThresholdPx <= 0 {
		cfg.RANSACThresholdPx = def.RANSACThresholdPx
	}
	if cfg.WarnResidualPx <= 0 {
		cfg.WarnResidualPx = def.WarnResidualPx
	}
	if cfg.FailResidualPx <= 0 {
		cfg.FailResidualPx = def.FailResidualPx
	}
	return &Registrar{cfg: cfg}
}

// Register fits the transform from detected anchors to template anchors
// and grades it. Fewer than three found anchors yields a fail result
// with no solver invocation; fit failures degrade to a scale-only
// fallback rather than aborting the page.
func (r *Registrar) Register(detections [template.AnchorCount]anchor.Detection, tpl *template.Template, srcBounds image.Rectangle) *Result {
	tplAnchors := tpl.AnchorPixels()

	var src, dst []utils.Point
	var names []string
	for i, det := range detections {
		if det.Found {
			src = append(src, det.Position)
			dst = append(dst, tplAnchors[i])
			names = append(names, template.AnchorNames[i])
		}
	}

	if len(src) < 3 {
		return &Result{
			Quality: QualityFail,
			Reason:  fmt.Sprintf("insufficient anchors (%d/4)", len(src)),
		}
	}

	m, ttype, ok := r.fit(src, dst)
	if !ok || !m.IsFinite() {
		m, ok = scaleFallback(srcBounds, tpl)
		ttype = TransformScale
		if !ok {
			return &Result{
				Quality: QualityFail,
				Reason:  "transform fit failed and scale fallback degenerate",
			}
		}
		slog.Warn("transform fit failed, using scale-only fallback")
	}

	inv, invOK := m.Inverse()
	if !invOK {
		return &Result{
			Quality: QualityFail,
			Reason:  "transform is not invertible",
		}
	}

	res := &Result{Transform: m, Inverse: inv, Type: ttype}
	res.Residuals = make([]AnchorResidual, len(src))
	for i := range src {
		e := utils.ReprojectionError(m, src[i], dst[i])
		res.Residuals[i] = AnchorResidual{Anchor: names[i], ErrorPx: e}
		res.MeanResidualPx += e
		if e > res.MaxResidualPx {
			res.MaxResidualPx = e
		}
	}
	res.MeanResidualPx /= float64(len(src))

	switch {
	case res.MeanResidualPx <= r.cfg.WarnResidualPx:
		res.Quality = QualityOK
	case res.MeanResidualPx <= r.cfg.FailResidualPx:
		res.Quality = QualityWarn
	default:
		res.Quality = QualityFail
		res.Reason = fmt.Sprintf("mean residual %.2fpx above fail threshold %.2fpx",
			res.MeanResidualPx, r.cfg.FailResidualPx)
	}
	return res
}

func (r *Registrar) fit(src, dst []utils.Point) (utils.Matrix3, TransformType, bool) {
	if len(src) == 4 {
		if m, ok := fitHomographyRANSAC(src, dst, r.cfg.RANSACThresholdPx); ok {
			return m, TransformHomography, true
		}
		return utils.Matrix3{}, TransformHomography, false
	}
	if m, ok := fitAffine(src, dst); ok {
		return m, TransformAffine, true
	}
	return utils.Matrix3{}, TransformAffine, false
}

// scaleFallback derives an axis-aligned scale transform from the
// image-to-template size ratio, guaranteeing a usable if low-quality
// result.
func scaleFallback(srcBounds image.Rectangle, tpl *template.Template) (utils.Matrix3, bool) {
	sw, sh := float64(srcBounds.Dx()), float64(srcBounds.Dy())
	if sw <= 0 || sh <= 0 {
		return utils.Matrix3{}, false
	}
	return utils.ScaleMatrix(float64(tpl.PageSize.WidthPx)/sw, float64(tpl.PageSize.HeightPx)/sh), true
}
