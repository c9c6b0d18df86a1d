package detectionService

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"

	"greeny/internal/api/detection"
	"greeny/pkg/classifier"
	contextPkg "greeny/pkg/context"
	"greeny/pkg/vision"

	"github.com/sirupsen/logrus"
)

// guard runs fn and converts panics and unexpected errors into
// detection.ErrProcessing. Nothing fn produced is returned on failure.
func (s *detectionService) guard(ctx context.Context, op string, fn func() error) (err error) {
	requestID := contextPkg.GetRequestID(ctx)

	defer func() {
		if r := recover(); r != nil {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"operation":  op,
				"panic":      fmt.Sprint(r),
				"stack":      string(debug.Stack()),
			}).Error("Recovered from panic in detection pipeline")
			err = detection.ErrProcessing
		}
	}()

	err = fn()
	switch {
	case err == nil:
		return nil
	case errors.Is(err, vision.ErrInvalidImage), errors.Is(err, vision.ErrEmptyImage):
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"operation":  op,
		}).Warn("Rejected undecodable image")
		return detection.ErrInvalidImage
	case errors.Is(err, classifier.ErrModelNotLoaded):
		return detection.ErrModelNotLoaded
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"operation":  op,
			"error":      err.Error(),
		}).Error("Detection pipeline failed")
		return detection.ErrProcessing
	}
}
