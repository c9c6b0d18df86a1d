package vision

import (
	"context"
	"image"
	"image/color"
	"testing"

	"greeny/pkg/classifier"

	"gocv.io/x/gocv"
)

var (
	bgrGreen = gocv.NewScalar(0, 255, 0, 0)
	bgrRed   = gocv.NewScalar(0, 0, 255, 0)
)

var testCategories = []Category{
	{Name: "red", Ranges: []HSVRange{
		{Lower: [3]float64{0, 120, 70}, Upper: [3]float64{10, 255, 255}},
		{Lower: [3]float64{170, 120, 70}, Upper: [3]float64{180, 255, 255}},
	}},
	{Name: "healthy", Ranges: []HSVRange{
		{Lower: [3]float64{36, 50, 70}, Upper: [3]float64{89, 255, 255}},
	}},
	{Name: "anthracnose", Ranges: []HSVRange{
		{Lower: [3]float64{10, 100, 20}, Upper: [3]float64{25, 255, 255}},
	}},
}

func blankImage(t *testing.T, w, h int) gocv.Mat {
	t.Helper()
	img := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), h, w, gocv.MatTypeCV8UC3)
	t.Cleanup(func() { img.Close() })
	return img
}

func fillRect(img gocv.Mat, r image.Rectangle, s gocv.Scalar) {
	roi := img.Region(r)
	roi.SetTo(s)
	roi.Close()
}

func colorOf(s gocv.Scalar) color.RGBA {
	return color.RGBA{R: uint8(s.Val3), G: uint8(s.Val2), B: uint8(s.Val1), A: 255}
}

func maskFor(t *testing.T, img gocv.Mat, category string) gocv.Mat {
	t.Helper()
	masks, err := Segment(img, testCategories)
	if err != nil {
		t.Fatalf("segment: %v", err)
	}
	t.Cleanup(func() { CloseMasks(masks) })
	for _, m := range masks {
		if m.Category == category {
			return m.Mat
		}
	}
	t.Fatalf("no mask for %s", category)
	return gocv.Mat{}
}

// colourClassifier labels a crop by its dominant BGR channel and records the
// size of every batch it receives.
type colourClassifier struct {
	batches []int
}

func (c *colourClassifier) Labels() []string {
	return []string{"healthy", "red", "background"}
}

func (c *colourClassifier) InputSize() image.Point {
	return image.Pt(32, 32)
}

func (c *colourClassifier) Predict(_ context.Context, images []gocv.Mat) ([]classifier.Prediction, error) {
	c.batches = append(c.batches, len(images))

	preds := make([]classifier.Prediction, len(images))
	for i, img := range images {
		mean := img.Mean()
		scores := []float64{mean.Val2 / 255, mean.Val3 / 255, 0.1}
		p, err := classifier.Decode(scores, c.Labels(), true)
		if err != nil {
			return nil, err
		}
		preds[i] = p
	}
	return preds, nil
}
