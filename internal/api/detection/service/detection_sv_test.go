package detectionService

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"testing"

	"greeny/internal/api/detection"
	"greeny/pkg/classifier"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

// channelClassifier labels a crop from its mean colour: mostly green is
// green, mostly red is red, anything else is fallback.
type channelClassifier struct {
	labels     []string
	green, red string
	fallback   classifier.Prediction
	calls      int
	sizes      []image.Point
	panics     bool
}

func (c *channelClassifier) Labels() []string       { return c.labels }
func (c *channelClassifier) InputSize() image.Point { return image.Pt(224, 224) }

func (c *channelClassifier) Predict(_ context.Context, images []gocv.Mat) ([]classifier.Prediction, error) {
	if c.panics {
		panic("inference exploded")
	}
	c.calls++

	out := make([]classifier.Prediction, len(images))
	for i, img := range images {
		c.sizes = append(c.sizes, image.Pt(img.Cols(), img.Rows()))
		mean := img.Mean()
		switch {
		case mean.Val2 > 100 && mean.Val2 > mean.Val3:
			out[i] = classifier.Prediction{Label: c.green, Confidence: 0.9}
		case mean.Val3 > 100:
			out[i] = classifier.Prediction{Label: c.red, Confidence: 0.9}
		default:
			out[i] = c.fallback
		}
	}
	return out, nil
}

func newService(t *testing.T, classifiers Classifiers) IDetectionService {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewDetectionService(log, classifiers)
}

func qualityClassifier() *channelClassifier {
	return &channelClassifier{
		labels:   QualityLabels,
		green:    ChilliHealthy,
		red:      ChilliRed,
		fallback: classifier.Prediction{Label: ChilliRed, Confidence: 0.8},
	}
}

func encodePNG(t *testing.T, w, h int, rects map[image.Rectangle]color.RGBA) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{A: 255})
		}
	}
	for r, c := range rects {
		for y := r.Min.Y; y < r.Max.Y; y++ {
			for x := r.Min.X; x < r.Max.X; x++ {
				img.Set(x, y, c)
			}
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

var (
	green = color.RGBA{G: 255, A: 255}
	red   = color.RGBA{R: 255, A: 255}
)

func TestDetectQualitySingleCategory(t *testing.T) {
	clf := qualityClassifier()
	svc := newService(t, Classifiers{Quality: clf})

	data := encodePNG(t, 240, 120, map[image.Rectangle]color.RGBA{
		image.Rect(20, 30, 80, 90):   green,
		image.Rect(150, 30, 210, 90): green,
	})

	res, err := svc.DetectQuality(context.Background(), data)
	require.NoError(t, err)

	assert.Equal(t, ChilliHealthy, res.Class)
	require.NotNil(t, res.Confidence)
	assert.InDelta(t, 1.0, *res.Confidence, 1e-9)
	assert.Equal(t, map[string]int{ChilliHealthy: 2}, res.Counts)
	assert.Equal(t, "Healthy: High-level market", res.MarketRecommendation)
	assert.Len(t, res.Boxes, 2)
	assert.NotEmpty(t, res.AnnotatedImage)
	assert.Equal(t, 1, clf.calls, "all crops go through one batch")
}

func TestDetectQualityMixed(t *testing.T) {
	svc := newService(t, Classifiers{Quality: qualityClassifier()})

	data := encodePNG(t, 240, 120, map[image.Rectangle]color.RGBA{
		image.Rect(20, 30, 80, 90):   green,
		image.Rect(150, 30, 210, 90): red,
	})

	res, err := svc.DetectQuality(context.Background(), data)
	require.NoError(t, err)

	assert.Equal(t, "mixed", res.Class)
	assert.Nil(t, res.Confidence)
	assert.Equal(t, "Healthy: High-level market\nRed: Not suitable for market", res.MarketRecommendation)
	assert.Equal(t, map[string]int{ChilliHealthy: 1, ChilliRed: 1}, res.Counts)
}

func TestDetectQualityFallsBackToWholeImage(t *testing.T) {
	clf := qualityClassifier()
	svc := newService(t, Classifiers{Quality: clf})

	res, err := svc.DetectQuality(context.Background(), encodePNG(t, 64, 64, nil))
	require.NoError(t, err)

	assert.Equal(t, ChilliRed, res.Class)
	require.NotNil(t, res.Confidence)
	assert.InDelta(t, 0.8, *res.Confidence, 1e-9)
	assert.Equal(t, "Not suitable for market", res.MarketRecommendation)
	assert.Empty(t, res.Boxes)
	assert.Equal(t, 1, clf.calls)
}

func TestDetectQualityErrors(t *testing.T) {
	t.Run("model not loaded", func(t *testing.T) {
		svc := newService(t, Classifiers{})
		_, err := svc.DetectQuality(context.Background(), []byte("anything"))
		assert.ErrorIs(t, err, detection.ErrModelNotLoaded)
	})

	t.Run("undecodable image", func(t *testing.T) {
		svc := newService(t, Classifiers{Quality: qualityClassifier()})
		_, err := svc.DetectQuality(context.Background(), []byte("not an image"))
		assert.ErrorIs(t, err, detection.ErrInvalidImage)
	})

	t.Run("panic becomes processing error", func(t *testing.T) {
		clf := qualityClassifier()
		clf.panics = true
		svc := newService(t, Classifiers{Quality: clf})

		res, err := svc.DetectQuality(context.Background(), encodePNG(t, 64, 64, nil))
		assert.ErrorIs(t, err, detection.ErrProcessing)
		assert.Nil(t, res)
	})
}

func TestProcessWeedFrame(t *testing.T) {
	clf := &channelClassifier{
		labels:   WeedLabels,
		green:    WeedLabel,
		red:      ChiliLabel,
		fallback: classifier.Prediction{Label: ChiliLabel},
	}
	svc := newService(t, Classifiers{Weed: clf})

	res, err := svc.ProcessWeedFrame(context.Background(), encodePNG(t, 160, 120, map[image.Rectangle]color.RGBA{
		image.Rect(20, 20, 80, 80): green,
	}))
	require.NoError(t, err)

	assert.Equal(t, 160, res.ImageWidth)
	assert.Equal(t, 120, res.ImageHeight)
	assert.Equal(t, 1, res.NumWeeds)
	require.Len(t, res.BoundingBoxes, 1)
	assert.InDelta(t, 60, res.BoundingBoxes[0].Width, 2)
	assert.InDelta(t, 60, res.BoundingBoxes[0].Height, 2)
	assert.NotEmpty(t, res.AnnotatedImage)

	_, err = svc.ProcessWeedFrame(context.Background(), []byte{0x00, 0x01})
	assert.ErrorIs(t, err, detection.ErrInvalidImage)
}

// tieClassifier scores every crop 0.5/0.5, which argmax reports as "weed".
type tieClassifier struct{}

func (tieClassifier) Labels() []string       { return WeedLabels }
func (tieClassifier) InputSize() image.Point { return image.Pt(64, 64) }

func (tieClassifier) Predict(_ context.Context, images []gocv.Mat) ([]classifier.Prediction, error) {
	out := make([]classifier.Prediction, len(images))
	for i := range images {
		p, err := classifier.Decode([]float64{0.5}, WeedLabels, false)
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}

func TestProcessWeedFrameTieIsChili(t *testing.T) {
	svc := newService(t, Classifiers{Weed: tieClassifier{}})

	res, err := svc.ProcessWeedFrame(context.Background(), encodePNG(t, 160, 120, map[image.Rectangle]color.RGBA{
		image.Rect(20, 20, 80, 80): green,
	}))
	require.NoError(t, err)

	assert.Equal(t, 0, res.NumWeeds)
	assert.Empty(t, res.BoundingBoxes)
}

func TestWeedWins(t *testing.T) {
	assert.True(t, weedWins(WeedLabels, classifier.Prediction{Label: WeedLabel, Scores: []float64{0.51, 0.49}}))
	assert.False(t, weedWins(WeedLabels, classifier.Prediction{Label: WeedLabel, Scores: []float64{0.5, 0.5}}))
	assert.False(t, weedWins(WeedLabels, classifier.Prediction{Label: ChiliLabel, Scores: []float64{0.2, 0.8}}))
	assert.True(t, weedWins(WeedLabels, classifier.Prediction{Label: WeedLabel}))
}

func TestClassifyLeaf(t *testing.T) {
	clf := &channelClassifier{
		labels:   LeafLabels,
		green:    "Healthy Leaf",
		red:      "Spot Leaf",
		fallback: classifier.Prediction{Label: "Curl Leaf", Confidence: 0.7},
	}
	svc := newService(t, Classifiers{Leaf: clf})

	data := encodePNG(t, 300, 200, map[image.Rectangle]color.RGBA{
		image.Rect(0, 0, 300, 200): green,
	})

	res, err := svc.ClassifyLeaf(context.Background(), data)
	require.NoError(t, err)
	assert.Equal(t, "Healthy Leaf", res.Class)
	assert.InDelta(t, 0.9, res.Confidence, 1e-9)
	assert.Equal(t, []image.Point{image.Pt(224, 224)}, clf.sizes)

	_, err = svc.ClassifyLeaf(context.Background(), []byte("garbage"))
	assert.ErrorIs(t, err, detection.ErrInvalidImage)
}

func TestMarketRecommendation(t *testing.T) {
	assert.Equal(t, "Anthracnose: Not suitable for market\nRed: Not suitable for market",
		marketRecommendation([]string{ChilliRed, ChilliAnthracnose}))
	assert.Equal(t, MarketHighLevel, marketVerdict(ChilliHealthy))
}

// offlineClassifier is loaded but its model server is unreachable.
type offlineClassifier struct{ channelClassifier }

func (*offlineClassifier) Ready() bool { return false }

func TestModelStatus(t *testing.T) {
	svc := newService(t, Classifiers{Leaf: qualityClassifier(), Weed: &offlineClassifier{}})
	assert.Equal(t, map[string]bool{"quality": false, "weed": false, "leaf": true}, svc.ModelStatus())
}
