package imgproc

import (
	"image"

	"github.com/anthonynsimon/bild/blur"
)

// GaussianBlur smooths a grayscale image with the given radius. A radius
// of zero or less returns the input unchanged.
func GaussianBlur(g *image.Gray, radius float64) *image.Gray {
	if radius <= 0 {
		return g
	}
	blurred := blur.Gaussian(g, radius)
	b := blurred.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := range b.Dy() {
		src := blurred.Pix[y*blurred.Stride:]
		dst := out.Pix[y*out.Stride:]
		for x := range b.Dx() {
			dst[x] = src[x*4]
		}
	}
	return out
}
