// Package imgproc provides grayscale raster primitives shared by the
// anchor detector and the checkbox feature extractor: global Otsu
// binarization, gradient operators, connected components, contour
// tracing and lightweight morphology.
package imgproc

import "image"

// OtsuThreshold computes the global threshold minimizing within-class
// intensity variance over a 256-bin histogram.
func OtsuThreshold(g *image.Gray) uint8 {
	var hist [256]int
	b := g.Bounds()
	total := b.Dx() * b.Dy()
	if total == 0 {
		return 0
	}
	for y := range b.Dy() {
		row := g.Pix[y*g.Stride : y*g.Stride+b.Dx()]
		for _, v := range row {
			hist[v]++
		}
	}

	var sum float64
	for i, c := range hist {
		sum += float64(i) * float64(c)
	}

	var sumB, wB float64
	bestVar := -1.0
	var best uint8
	for t := range 256 {
		wB += float64(hist[t])
		if wB == 0 {
			continue
		}
		wF := float64(total) - wB
		if wF == 0 {
			break
		}
		sumB += float64(t) * float64(hist[t])
		mB := sumB / wB
		mF := (sum - sumB) / wF
		between := wB * wF * (mB - mF) * (mB - mF)
		if between > bestVar {
			bestVar = between
			best = uint8(t)
		}
	}
	return best
}

// BinarizeInv produces an ink-as-foreground mask: pixels at or below the
// threshold (dark ink on light paper) become true.
func BinarizeInv(g *image.Gray, thr uint8) []bool {
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	mask := make([]bool, w*h)
	for y := range h {
		row := g.Pix[y*g.Stride : y*g.Stride+w]
		for x, v := range row {
			if v <= thr {
				mask[y*w+x] = true
			}
		}
	}
	return mask
}

// CountMask returns the number of set pixels in the mask.
func CountMask(mask []bool) int {
	n := 0
	for _, v := range mask {
		if v {
			n++
		}
	}
	return n
}
