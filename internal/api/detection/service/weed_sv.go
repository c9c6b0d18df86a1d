package detectionService

import (
	"context"

	"greeny/internal/api/detection"
	"greeny/internal/entity"
	"greeny/pkg/classifier"
	"greeny/pkg/vision"

	"gocv.io/x/gocv"
)

// ProcessWeedFrame finds vegetation in one stream frame and reports the
// regions the weed model labels as weeds. Crops are outlined too.
func (s *detectionService) ProcessWeedFrame(ctx context.Context, frame []byte) (*entity.WeedResult, error) {
	clf := s.classifiers.Weed
	if clf == nil {
		return nil, detection.ErrModelNotLoaded
	}

	var result *entity.WeedResult
	err := s.guard(ctx, "detect_weed", func() error {
		img, err := vision.Decode(frame)
		if err != nil {
			return err
		}
		defer img.Close()

		result, err = s.detectWeeds(ctx, clf, img)
		return err
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (s *detectionService) detectWeeds(ctx context.Context, clf classifier.Classifier, img gocv.Mat) (*entity.WeedResult, error) {
	masks, err := vision.Segment(img, []vision.Category{Vegetation})
	if err != nil {
		return nil, err
	}
	defer vision.CloseMasks(masks)

	boxes := vision.ContourBoxes(masks[0].Mat, Vegetation.Name, s.contour)

	candidates, err := vision.Verify(ctx, clf, img, boxes, []string{WeedLabel})
	if err != nil {
		return nil, err
	}

	labelled := make([]vision.Box, 0, len(candidates))
	weeds := make([]entity.PixelBox, 0, len(candidates))
	for _, c := range candidates {
		if c.Box.Rect.Empty() {
			continue
		}

		label := ChiliLabel
		if c.Accepted && weedWins(clf.Labels(), c.Prediction) {
			label = WeedLabel
			r := c.Box.Rect
			weeds = append(weeds, entity.PixelBox{X: r.Min.X, Y: r.Min.Y, Width: r.Dx(), Height: r.Dy()})
		}
		labelled = append(labelled, vision.Box{Category: label, Rect: c.Box.Rect})
	}

	annotated, err := vision.Annotate(img, labelled, WeedPalette, weedBoxThickness)
	if err != nil {
		return nil, err
	}

	return &entity.WeedResult{
		ImageWidth:     img.Cols(),
		ImageHeight:    img.Rows(),
		NumWeeds:       len(weeds),
		BoundingBoxes:  weeds,
		AnnotatedImage: annotated,
	}, nil
}

// weedWins requires p[weed] > p[chili]; argmax alone would hand ties to
// whichever label comes first.
func weedWins(labels []string, p classifier.Prediction) bool {
	weed, chili := indexOf(labels, WeedLabel), indexOf(labels, ChiliLabel)
	if weed < 0 || chili < 0 || weed >= len(p.Scores) || chili >= len(p.Scores) {
		return p.Label == WeedLabel
	}
	return p.Scores[weed] > p.Scores[chili]
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}
