package detectionService

import (
	"context"

	"greeny/internal/entity"
	"greeny/pkg/classifier"
	"greeny/pkg/vision"

	"github.com/sirupsen/logrus"
)

type IDetectionService interface {
	DetectQuality(ctx context.Context, data []byte) (*entity.QualityResult, error)
	ClassifyLeaf(ctx context.Context, data []byte) (*entity.LeafResult, error)
	ProcessWeedFrame(ctx context.Context, frame []byte) (*entity.WeedResult, error)
	ModelStatus() map[string]bool
}

// Classifiers are loaded once at start up. A nil entry disables the feature
// that needs it.
type Classifiers struct {
	Quality classifier.Classifier
	Weed    classifier.Classifier
	Leaf    classifier.Classifier
}

type detectionService struct {
	log         *logrus.Logger
	classifiers Classifiers
	split       vision.SplitOptions
	contour     vision.ContourOptions
}

func NewDetectionService(log *logrus.Logger, classifiers Classifiers) IDetectionService {
	return &detectionService{
		log:         log,
		classifiers: classifiers,
		split:       vision.DefaultSplitOptions(),
		contour:     vision.DefaultContourOptions(),
	}
}

// ModelStatus reports per feature whether its classifier is loaded and, for
// remote backends, connected.
func (s *detectionService) ModelStatus() map[string]bool {
	return map[string]bool{
		"quality": classifier.Ready(s.classifiers.Quality),
		"weed":    classifier.Ready(s.classifiers.Weed),
		"leaf":    classifier.Ready(s.classifiers.Leaf),
	}
}
