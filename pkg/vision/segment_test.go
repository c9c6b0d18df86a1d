package vision

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func TestSegmentSingleCategory(t *testing.T) {
	img := blankImage(t, 100, 100)
	fillRect(img, image.Rect(20, 20, 60, 60), bgrGreen)

	masks, err := Segment(img, testCategories)
	require.NoError(t, err)
	defer CloseMasks(masks)

	require.Len(t, masks, 3)
	for _, m := range masks {
		assert.Equal(t, 100, m.Mat.Rows())
		assert.Equal(t, 100, m.Mat.Cols())

		switch m.Category {
		case "healthy":
			assert.Equal(t, 40*40, gocv.CountNonZero(m.Mat))
			assert.Equal(t, uint8(255), m.Mat.GetUCharAt(30, 30))
			assert.Equal(t, uint8(0), m.Mat.GetUCharAt(10, 10))
		default:
			assert.Zero(t, gocv.CountNonZero(m.Mat), m.Category)
		}
	}
}

func TestSegmentRedWrapsAround(t *testing.T) {
	img := blankImage(t, 80, 40)
	// hue 0 on the left, hue ~175 (BGR 128,0,255) on the right
	fillRect(img, image.Rect(0, 0, 40, 40), bgrRed)
	fillRect(img, image.Rect(40, 0, 80, 40), gocv.NewScalar(40, 0, 255, 0))

	mask := maskFor(t, img, "red")
	assert.Equal(t, 80*40, gocv.CountNonZero(mask))
}

func TestSegmentRejectsEmptyImage(t *testing.T) {
	img := gocv.NewMat()
	defer img.Close()

	_, err := Segment(img, testCategories)
	assert.ErrorIs(t, err, ErrEmptyImage)
}
