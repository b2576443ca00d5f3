package imgproc

import (
	"image"
	"math"
)

// SobelGradients computes horizontal and vertical 3x3 Sobel responses.
// Border pixels are left at zero.
func SobelGradients(g *image.Gray) (gx, gy []float64) {
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	gx = make([]float64, w*h)
	gy = make([]float64, w*h)
	if w < 3 || h < 3 {
		return gx, gy
	}
	at := func(x, y int) float64 {
		return float64(g.Pix[y*g.Stride+x])
	}
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			tl, tc, tr := at(x-1, y-1), at(x, y-1), at(x+1, y-1)
			ml, mr := at(x-1, y), at(x+1, y)
			bl, bc, br := at(x-1, y+1), at(x, y+1), at(x+1, y+1)
			gx[y*w+x] = (tr + 2*mr + br) - (tl + 2*ml + bl)
			gy[y*w+x] = (bl + 2*bc + br) - (tl + 2*tc + tr)
		}
	}
	return gx, gy
}

// GradientMagnitude returns per-pixel magnitudes for the given gradients.
func GradientMagnitude(gx, gy []float64) []float64 {
	mag := make([]float64, len(gx))
	for i := range gx {
		mag[i] = math.Hypot(gx[i], gy[i])
	}
	return mag
}

// HarrisResponse computes the Harris corner response over a square
// structure window. blockRadius is the half-width of the window and k
// the standard sensitivity constant (0.04-0.06).
func HarrisResponse(g *image.Gray, blockRadius int, k float64) []float64 {
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	resp := make([]float64, w*h)
	if w < 3 || h < 3 || blockRadius < 1 {
		return resp
	}
	gx, gy := SobelGradients(g)

	ixx := make([]float64, w*h)
	iyy := make([]float64, w*h)
	ixy := make([]float64, w*h)
	for i := range gx {
		ixx[i] = gx[i] * gx[i]
		iyy[i] = gy[i] * gy[i]
		ixy[i] = gx[i] * gy[i]
	}

	for y := range h {
		for x := range w {
			var sxx, syy, sxy float64
			for dy := -blockRadius; dy <= blockRadius; dy++ {
				ny := y + dy
				if ny < 0 || ny >= h {
					continue
				}
				for dx := -blockRadius; dx <= blockRadius; dx++ {
					nx := x + dx
					if nx < 0 || nx >= w {
						continue
					}
					i := ny*w + nx
					sxx += ixx[i]
					syy += iyy[i]
					sxy += ixy[i]
				}
			}
			det := sxx*syy - sxy*sxy
			trace := sxx + syy
			resp[y*w+x] = det - k*trace*trace
		}
	}
	return resp
}
