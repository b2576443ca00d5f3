// Package checkbox extracts multi-feature descriptors from checkbox
// regions and classifies them as checked or unchecked via a threshold
// or a trained linear model.
package checkbox

import (
	"image"

	"github.com/MeKo-Tech/surveyscan/internal/imgproc"
)

// FeatureCount is the fixed descriptor size.
const FeatureCount = 7

// FeatureNames lists descriptor entries in canonical vector order. The
// order matches trained model artifacts and must not change.
var FeatureNames = [FeatureCount]string{
	"fill_pct",
	"edge_density",
	"stroke_length",
	"corner_count",
	"num_components",
	"hv_ratio",
	"variance",
}

const (
	// edgeMagnitudeThreshold flags a pixel as an edge when its Sobel
	// magnitude exceeds this value.
	edgeMagnitudeThreshold = 128.0
	// harrisFraction keeps Harris responses above this fraction of the
	// frame maximum.
	harrisFraction = 0.01
	harrisRadius   = 2
	harrisK        = 0.04
)

// Features is the named per-ROI descriptor.
type Features struct {
	// FillPct is the mean darkness of the ROI as a percentage, the
	// baseline and most robust signal.
	FillPct float64 `json:"fill_pct"`
	// EdgeDensity is the percentage of pixels flagged by the gradient
	// magnitude edge operator.
	EdgeDensity float64 `json:"edge_density"`
	// StrokeLength is the percentage of pixels in the morphological
	// boundary of the binarized foreground.
	StrokeLength float64 `json:"stroke_length"`
	// CornerCount counts corner-detector response peaks.
	CornerCount float64 `json:"corner_count"`
	// ComponentCount is the number of disjoint foreground blobs.
	ComponentCount float64 `json:"num_components"`
	// HVRatio is horizontal over vertical gradient energy.
	HVRatio float64 `json:"hv_ratio"`
	// Variance is the raw intensity variance of the ROI.
	Variance float64 `json:"variance"`
}

// Vector returns the features in canonical order.
func (f Features) Vector() [FeatureCount]float64 {
	return [FeatureCount]float64{
		f.FillPct, f.EdgeDensity, f.StrokeLength, f.CornerCount,
		f.ComponentCount, f.HVRatio, f.Variance,
	}
}

// Extract computes the descriptor for one checkbox crop. All features
// derive from the same ROI with no shared mutable state, so extraction
// is safe to run concurrently across ROIs.
func Extract(g *image.Gray) Features {
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	n := float64(w * h)
	if n == 0 {
		return Features{}
	}

	var f Features

	// Fill and variance over raw intensities.
	var sum, sumSq float64
	for y := range h {
		row := g.Pix[y*g.Stride : y*g.Stride+w]
		for _, v := range row {
			fv := float64(v)
			sum += fv
			sumSq += fv * fv
		}
	}
	mean := sum / n
	f.FillPct = (1 - mean/255) * 100
	f.Variance = sumSq/n - mean*mean

	// Gradient-derived features.
	gx, gy := imgproc.SobelGradients(g)
	mag := imgproc.GradientMagnitude(gx, gy)
	edges := 0
	var hEnergy, vEnergy float64
	for i := range mag {
		if mag[i] > edgeMagnitudeThreshold {
			edges++
		}
		hEnergy += abs(gx[i])
		vEnergy += abs(gy[i])
	}
	f.EdgeDensity = float64(edges) / n * 100
	f.HVRatio = hEnergy / (vEnergy + 1e-6)

	// Binarized-foreground features.
	thr := imgproc.OtsuThreshold(g)
	mask := imgproc.BinarizeInv(g, thr)
	grad := imgproc.MorphGradient(mask, w, h)
	f.StrokeLength = float64(imgproc.CountMask(grad)) / n * 100
	comps, _ := imgproc.ConnectedComponents(mask, w, h)
	f.ComponentCount = float64(len(comps))

	// Corner response peaks above an adaptive fraction of the maximum.
	resp := imgproc.HarrisResponse(g, harrisRadius, harrisK)
	maxResp := 0.0
	for _, v := range resp {
		if v > maxResp {
			maxResp = v
		}
	}
	if maxResp > 0 {
		cut := maxResp * harrisFraction
		count := 0
		for _, v := range resp {
			if v > cut {
				count++
			}
		}
		f.CornerCount = float64(count)
	}

	return f
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
