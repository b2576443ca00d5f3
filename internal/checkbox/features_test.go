package checkbox

import (
	"image"
	"testing"

	"github.com/MeKo-Tech/surveyscan/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractEmptyImage(t *testing.T) {
	f := Extract(image.NewGray(image.Rect(0, 0, 0, 0)))
	assert.Equal(t, Features{}, f)
}

func TestExtractWhiteCrop(t *testing.T) {
	f := Extract(testutil.NewWhiteGray(40, 40))
	assert.InDelta(t, 0, f.FillPct, 1e-9)
	assert.InDelta(t, 0, f.Variance, 1e-9)
	assert.InDelta(t, 0, f.EdgeDensity, 1e-9)
}

func TestExtractBlackCrop(t *testing.T) {
	g := image.NewGray(image.Rect(0, 0, 40, 40))
	f := Extract(g)
	assert.InDelta(t, 100, f.FillPct, 1e-9)
	assert.InDelta(t, 0, f.Variance, 1e-9)
	assert.InDelta(t, 0, f.EdgeDensity, 1e-9)
}

func TestExtractHalfFilled(t *testing.T) {
	g := testutil.NewWhiteGray(40, 40)
	testutil.FillRect(g, image.Rect(0, 0, 40, 20), 0)
	f := Extract(g)
	assert.InDelta(t, 50, f.FillPct, 1.0)
	assert.Greater(t, f.Variance, 10000.0)
	assert.Greater(t, f.EdgeDensity, 0.0)
}

func TestExtractMarkedVsEmptyBox(t *testing.T) {
	empty := testutil.NewWhiteGray(40, 40)
	testutil.DrawBoxOutline(empty, image.Rect(2, 2, 38, 38))

	marked := testutil.NewWhiteGray(40, 40)
	testutil.DrawBoxOutline(marked, image.Rect(2, 2, 38, 38))
	testutil.DrawCheckMark(marked, image.Rect(6, 6, 34, 34))

	fe := Extract(empty)
	fm := Extract(marked)

	assert.Greater(t, fm.FillPct, fe.FillPct)
	assert.Greater(t, fm.StrokeLength, fe.StrokeLength)
	assert.Greater(t, fm.EdgeDensity, fe.EdgeDensity)
}

func TestExtractHVRatio(t *testing.T) {
	// Horizontal stripes produce vertical gradients, vertical stripes
	// horizontal ones.
	horizontal := testutil.NewWhiteGray(40, 40)
	for y := 4; y < 40; y += 8 {
		testutil.FillRect(horizontal, image.Rect(0, y, 40, y+2), 0)
	}
	vertical := testutil.NewWhiteGray(40, 40)
	for x := 4; x < 40; x += 8 {
		testutil.FillRect(vertical, image.Rect(x, 0, x+2, 40), 0)
	}

	fh := Extract(horizontal)
	fv := Extract(vertical)
	assert.Less(t, fh.HVRatio, 1.0)
	assert.Greater(t, fv.HVRatio, 1.0)
}

func TestExtractComponentCount(t *testing.T) {
	g := testutil.NewWhiteGray(40, 40)
	testutil.FillRect(g, image.Rect(4, 4, 10, 10), 0)
	testutil.FillRect(g, image.Rect(24, 24, 30, 30), 0)
	f := Extract(g)
	assert.InDelta(t, 2, f.ComponentCount, 1e-9)
}

func TestExtractCornerCount(t *testing.T) {
	flat := testutil.NewWhiteGray(40, 40)
	square := testutil.NewWhiteGray(40, 40)
	testutil.FillRect(square, image.Rect(10, 10, 30, 30), 0)

	ff := Extract(flat)
	fs := Extract(square)
	assert.Zero(t, ff.CornerCount)
	assert.Greater(t, fs.CornerCount, 0.0)
}

func TestVectorOrderMatchesFeatureNames(t *testing.T) {
	f := Features{
		FillPct:        1,
		EdgeDensity:    2,
		StrokeLength:   3,
		CornerCount:    4,
		ComponentCount: 5,
		HVRatio:        6,
		Variance:       7,
	}
	v := f.Vector()
	require.Len(t, v, FeatureCount)
	for i := range v {
		assert.InDelta(t, float64(i+1), v[i], 1e-12, FeatureNames[i])
	}
}
