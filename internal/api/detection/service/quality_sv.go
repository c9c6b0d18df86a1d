package detectionService

import (
	"context"

	"greeny/internal/api/detection"
	"greeny/internal/entity"
	"greeny/pkg/classifier"
	contextPkg "greeny/pkg/context"
	"greeny/pkg/vision"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"
)

func (s *detectionService) DetectQuality(ctx context.Context, data []byte) (*entity.QualityResult, error) {
	clf := s.classifiers.Quality
	if clf == nil {
		return nil, detection.ErrModelNotLoaded
	}

	var result *entity.QualityResult
	err := s.guard(ctx, "detect_quality", func() error {
		img, err := vision.Decode(data)
		if err != nil {
			return err
		}
		defer img.Close()

		result, err = s.detectQuality(ctx, clf, img)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"request_id": contextPkg.GetRequestID(ctx),
		"class":      result.Class,
		"boxes":      len(result.Boxes),
	}).Debug("Quality detection finished")

	return result, nil
}

func (s *detectionService) detectQuality(ctx context.Context, clf classifier.Classifier, img gocv.Mat) (*entity.QualityResult, error) {
	masks, err := vision.Segment(img, QualityCategories)
	if err != nil {
		return nil, err
	}
	defer vision.CloseMasks(masks)

	var boxes []vision.Box
	for _, m := range masks {
		boxes = append(boxes, vision.SplitBlobs(m.Mat, img, m.Category, s.split)...)
	}

	candidates, err := vision.Verify(ctx, clf, img, boxes, QualityLabels)
	if err != nil {
		return nil, err
	}
	accepted := vision.Accepted(candidates)

	verdict, ok := vision.Aggregate(candidates)
	var market string
	if ok {
		market = marketRecommendation(verdict.Categories)
	} else {
		pred, err := classifier.PredictOne(ctx, clf, img)
		if err != nil {
			return nil, err
		}
		verdict = vision.Fallback(pred.Label, pred.Confidence)
		market = marketVerdict(pred.Label)
	}

	annotated, err := vision.Annotate(img, accepted, QualityPalette, qualityBoxThickness)
	if err != nil {
		return nil, err
	}

	w, h := img.Cols(), img.Rows()
	out := make([]entity.QualityBox, 0, len(accepted))
	for _, b := range accepted {
		n := b.Normalize(w, h)
		out = append(out, entity.QualityBox{
			X:      n.X,
			Y:      n.Y,
			Width:  n.Width,
			Height: n.Height,
			Class:  n.Category,
		})
	}

	return &entity.QualityResult{
		Class:                verdict.Class,
		Confidence:           verdict.Confidence,
		MarketRecommendation: market,
		Boxes:                out,
		Counts:               verdict.Counts,
		AnnotatedImage:       annotated,
	}, nil
}
