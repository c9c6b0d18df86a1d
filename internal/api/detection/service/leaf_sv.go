package detectionService

import (
	"bytes"
	"context"
	"image"

	"greeny/internal/api/detection"
	"greeny/internal/entity"
	"greeny/pkg/classifier"
	"greeny/pkg/vision"

	"github.com/disintegration/imaging"
	"gocv.io/x/gocv"
	"golang.org/x/image/webp"
)

func (s *detectionService) ClassifyLeaf(ctx context.Context, data []byte) (*entity.LeafResult, error) {
	clf := s.classifiers.Leaf
	if clf == nil {
		return nil, detection.ErrModelNotLoaded
	}

	var result *entity.LeafResult
	err := s.guard(ctx, "classify_leaf", func() error {
		src, err := decodeLeaf(data)
		if err != nil {
			return err
		}

		size := clf.InputSize()
		fitted := imaging.Fill(src, size.X, size.Y, imaging.Center, imaging.Lanczos)

		mat, err := gocv.ImageToMatRGB(fitted)
		if err != nil {
			return err
		}
		defer mat.Close()

		pred, err := classifier.PredictOne(ctx, clf, mat)
		if err != nil {
			return err
		}

		result = &entity.LeafResult{Class: pred.Label, Confidence: pred.Confidence}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// decodeLeaf honours EXIF orientation for camera uploads and falls back to
// webp, which the registered decoders do not cover.
func decodeLeaf(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, vision.ErrInvalidImage
	}

	if img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true)); err == nil {
		return img, nil
	}

	if img, err := webp.Decode(bytes.NewReader(data)); err == nil {
		return img, nil
	}

	return nil, vision.ErrInvalidImage
}
