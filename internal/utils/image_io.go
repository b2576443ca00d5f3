package utils

import (
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
)

// ImageProcessingError represents errors that occur while loading or
// converting page rasters.
type ImageProcessingError struct {
	Operation string
	Err       error
}

func (e *ImageProcessingError) Error() string {
	return fmt.Sprintf("image processing error in %s: %v", e.Operation, e.Err)
}

func (e *ImageProcessingError) Unwrap() error { return e.Err }

// SupportedImageExtensions lists supported file extensions for page scans.
var SupportedImageExtensions = []string{".png", ".jpg", ".jpeg", ".bmp"}

// IsSupportedImage reports whether the path has a supported image extension.
func IsSupportedImage(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, s := range SupportedImageExtensions {
		if ext == s {
			return true
		}
	}
	return false
}

// LoadImage opens and decodes a page image file.
func LoadImage(path string) (image.Image, error) {
	if path == "" {
		return nil, &ImageProcessingError{Operation: "load", Err: errors.New("empty path")}
	}
	if !IsSupportedImage(path) {
		return nil, &ImageProcessingError{
			Operation: "load",
			Err:       fmt.Errorf("unsupported format: %s", filepath.Ext(path)),
		}
	}
	f, err := os.Open(path) //nolint:gosec // G304: user-provided scan path is expected
	if err != nil {
		return nil, &ImageProcessingError{Operation: "load", Err: err}
	}
	defer func() { _ = f.Close() }()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, &ImageProcessingError{Operation: "decode", Err: err}
	}
	return img, nil
}

// SavePNG writes an image as PNG, creating parent directories as needed.
func SavePNG(path string, img image.Image) error {
	if img == nil {
		return &ImageProcessingError{Operation: "save", Err: errors.New("input image is nil")}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return &ImageProcessingError{Operation: "save", Err: err}
	}
	f, err := os.Create(path) //nolint:gosec // G304: user-provided output path is expected
	if err != nil {
		return &ImageProcessingError{Operation: "save", Err: err}
	}
	defer func() { _ = f.Close() }()
	if err := png.Encode(f, img); err != nil {
		return &ImageProcessingError{Operation: "encode", Err: err}
	}
	return nil
}

// ToGray converts any image to 8-bit grayscale.
func ToGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}
	nrgba := imaging.Grayscale(img)
	b := nrgba.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := range b.Dy() {
		srcRow := nrgba.Pix[y*nrgba.Stride:]
		dstRow := out.Pix[y*out.Stride:]
		for x := range b.Dx() {
			// Grayscale output has R==G==B; take the red channel.
			dstRow[x] = srcRow[x*4]
		}
	}
	return out
}

// CropGray crops a grayscale image to the given rectangle, clamped to bounds.
// The result is a copy with zero-based bounds.
func CropGray(g *image.Gray, rect image.Rectangle) *image.Gray {
	r := rect.Intersect(g.Bounds())
	out := image.NewGray(image.Rect(0, 0, r.Dx(), r.Dy()))
	for y := range r.Dy() {
		src := g.Pix[(r.Min.Y+y-g.Rect.Min.Y)*g.Stride+(r.Min.X-g.Rect.Min.X):]
		copy(out.Pix[y*out.Stride:y*out.Stride+r.Dx()], src[:r.Dx()])
	}
	return out
}

// DiscoverImages returns the sorted list of supported image files in dir.
func DiscoverImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot read image directory %s: %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		p := filepath.Join(dir, e.Name())
		if IsSupportedImage(p) {
			files = append(files, p)
		}
	}
	sort.Strings(files)
	return files, nil
}
