package vision

import (
	"context"
	"image"

	"greeny/pkg/classifier"

	"gocv.io/x/gocv"
)

// Candidate is a segmented box together with the classifier's opinion of it.
type Candidate struct {
	Box        Box
	Prediction classifier.Prediction
	Accepted   bool
}

// Verify crops every box from img and classifies all non-empty crops in one
// batch. A candidate is accepted when the predicted label is one of
// recognized. Empty crops are rejected without reaching the classifier.
// Candidates keep the order of boxes.
func Verify(ctx context.Context, clf classifier.Classifier, img gocv.Mat, boxes []Box, recognized []string) ([]Candidate, error) {
	candidates := make([]Candidate, len(boxes))
	bounds := image.Rect(0, 0, img.Cols(), img.Rows())

	crops := make([]gocv.Mat, 0, len(boxes))
	index := make([]int, 0, len(boxes))
	defer func() {
		for _, c := range crops {
			c.Close()
		}
	}()

	for i, b := range boxes {
		rect := b.Rect.Intersect(bounds)
		candidates[i] = Candidate{Box: Box{Category: b.Category, Rect: rect}}
		if rect.Empty() {
			continue
		}

		region := img.Region(rect)
		crops = append(crops, region.Clone())
		region.Close()
		index = append(index, i)
	}

	if len(crops) == 0 {
		return candidates, nil
	}

	preds, err := clf.Predict(ctx, crops)
	if err != nil {
		return nil, err
	}
	if len(preds) != len(crops) {
		return nil, classifier.ErrBadOutput
	}

	for k, p := range preds {
		c := &candidates[index[k]]
		c.Prediction = p
		c.Accepted = contains(recognized, p.Label)
	}

	return candidates, nil
}

func Accepted(candidates []Candidate) []Box {
	boxes := make([]Box, 0, len(candidates))
	for _, c := range candidates {
		if c.Accepted {
			boxes = append(boxes, c.Box)
		}
	}
	return boxes
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
