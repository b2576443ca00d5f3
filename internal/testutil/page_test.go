package testutil

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWhiteGray(t *testing.T) {
	g := NewWhiteGray(10, 5)
	assert.Equal(t, image.Rect(0, 0, 10, 5), g.Bounds())
	for _, v := range g.Pix {
		assert.Equal(t, uint8(255), v)
	}
}

func TestFillRectClamps(t *testing.T) {
	g := NewWhiteGray(10, 10)
	FillRect(g, image.Rect(-5, -5, 3, 3), 0)
	assert.Equal(t, uint8(0), g.GrayAt(0, 0).Y)
	assert.Equal(t, uint8(0), g.GrayAt(2, 2).Y)
	assert.Equal(t, uint8(255), g.GrayAt(3, 3).Y)
}

func TestDrawLMarkShape(t *testing.T) {
	g := NewWhiteGray(100, 100)
	DrawLMark(g, 50, 50, 30, 8)

	// Arms meet at the top-left of the mark extent.
	assert.Equal(t, uint8(0), g.GrayAt(36, 36).Y)
	// Horizontal arm reaches right, vertical arm reaches down.
	assert.Equal(t, uint8(0), g.GrayAt(64, 38).Y)
	assert.Equal(t, uint8(0), g.GrayAt(38, 64).Y)
	// The inside of the L stays white.
	assert.Equal(t, uint8(255), g.GrayAt(55, 55).Y)
}

func TestSurveyTemplateIsValid(t *testing.T) {
	require.NoError(t, SurveyTemplate().Validate())
}

func TestSyntheticPageMarks(t *testing.T) {
	tpl := SurveyTemplate()
	page := SyntheticPage(tpl, map[string]bool{"Q1_1": true})

	require.Equal(t, image.Rect(0, 0, 1000, 1000), page.Bounds())

	// Q1_1 sits at 10% of the 800px crop, offset by the crop origin.
	// Its interior carries ink, while the unmarked Q1_2 interior is
	// empty apart from the printed outline.
	markedInk := countDark(page, image.Rect(185, 185, 215, 215))
	emptyInk := countDark(page, image.Rect(305, 185, 335, 215))
	assert.Greater(t, markedInk, 50)
	assert.Zero(t, emptyInk)
}

func countDark(g *image.Gray, r image.Rectangle) int {
	n := 0
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if g.GrayAt(x, y).Y < 128 {
				n++
			}
		}
	}
	return n
}
