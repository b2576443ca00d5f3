package registrar

import (
	"image"
	"image/color"

	"github.com/MeKo-Tech/surveyscan/internal/template"
	"github.com/MeKo-Tech/surveyscan/internal/utils"
)

// WarpAndCrop warps the source page into template pixel dimensions with
// the registration's forward transform and crops to the template's
// fixed content rectangle. The result is nil for fail-quality
// registrations.
func WarpAndCrop(res *Result, tpl *template.Template, src image.Image) image.Image {
	if res == nil || res.Quality == QualityFail {
		return nil
	}
	warped := warpToTemplate(src, res.Inverse, tpl.PageSize.WidthPx, tpl.PageSize.HeightPx)
	return cropImage(warped, tpl.CropRectangle())
}

// warpToTemplate inverse-maps every destination pixel through inv (the
// template-to-source transform) and samples bilinearly. Out-of-bounds
// samples take a deterministic white fill.
func warpToTemplate(src image.Image, inv utils.Matrix3, dstW, dstH int) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, dstW, dstH))
	sb := src.Bounds()
	for y := range dstH {
		for x := range dstW {
			p := inv.Apply(utils.Point{X: float64(x), Y: float64(y)})
			out.Set(x, y, bilinearSample(src, p.X+float64(sb.Min.X), p.Y+float64(sb.Min.Y)))
		}
	}
	return out
}

func bilinearSample(src image.Image, x, y float64) color.Color {
	b := src.Bounds()
	if x < float64(b.Min.X) || y < float64(b.Min.Y) || x > float64(b.Max.X-1) || y > float64(b.Max.Y-1) {
		return color.RGBA{255, 255, 255, 255}
	}
	x0, y0 := int(x), int(y)
	x1, y1 := x0+1, y0+1
	if x1 >= b.Max.X {
		x1 = b.Max.X - 1
	}
	if y1 >= b.Max.Y {
		y1 = b.Max.Y - 1
	}
	fx, fy := x-float64(x0), y-float64(y0)
	c00 := toFloatRGBA(src.At(x0, y0))
	c10 := toFloatRGBA(src.At(x1, y0))
	c01 := toFloatRGBA(src.At(x0, y1))
	c11 := toFloatRGBA(src.At(x1, y1))
	r := lerp(lerp(c00.r, c10.r, fx), lerp(c01.r, c11.r, fx), fy)
	g := lerp(lerp(c00.g, c10.g, fx), lerp(c01.g, c11.g, fx), fy)
	bl := lerp(lerp(c00.b, c10.b, fx), lerp(c01.b, c11.b, fx), fy)
	a := lerp(lerp(c00.a, c10.a, fx), lerp(c01.a, c11.a, fx), fy)
	return color.RGBA{uint8(r + 0.5), uint8(g + 0.5), uint8(bl + 0.5), uint8(a + 0.5)}
}

type floatRGBA struct{ r, g, b, a float64 }

func toFloatRGBA(c color.Color) floatRGBA {
	r, g, b, a := c.RGBA()
	return floatRGBA{float64(r >> 8), float64(g >> 8), float64(b >> 8), float64(a >> 8)}
}

func lerp(a, b, t float64) float64 { return a + (b-a)*t }

func cropImage(img *image.RGBA, rect image.Rectangle) *image.RGBA {
	r := rect.Intersect(img.Bounds())
	out := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	for y := range r.Dy() {
		srcOff := (r.Min.Y+y)*img.Stride + r.Min.X*4
		copy(out.Pix[y*out.Stride:y*out.Stride+r.Dx()*4], img.Pix[srcOff:srcOff+r.Dx()*4])
	}
	return out
}
