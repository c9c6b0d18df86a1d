package recommendationService

import (
	"context"
	"strings"
	"time"

	"greeny/internal/api/recommendation"
	"greeny/internal/entity"
	contextPkg "greeny/pkg/context"

	"github.com/sirupsen/logrus"
)

func (s *recommendationService) SaveRecommendation(ctx context.Context, userID string, req recommendation.SaveRecommendationRequest) (recommendation.CreatedResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)

	className, err := normalizeClassName(req.ClassName)
	if err != nil {
		return recommendation.CreatedResponse{}, err
	}

	repo, err := s.repo.NewClient(false)
	if err != nil {
		return recommendation.CreatedResponse{}, err
	}

	now := time.Now()
	id, err := s.utils.NewULIDFromTimestamp(now)
	if err != nil {
		return recommendation.CreatedResponse{}, err
	}

	saved := entity.SavedRecommendation{
		ID:          id,
		UserID:      userID,
		ClassName:   className,
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		SavedAt:     now,
	}

	if err := repo.Saved.Create(ctx, saved); err != nil {
		return recommendation.CreatedResponse{}, err
	}

	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"user_id":    userID,
		"id":         id,
	}).Debug("Recommendation saved")

	return recommendation.CreatedResponse{Message: "Recommendation saved", ID: id}, nil
}

func (s *recommendationService) ListSavedRecommendations(ctx context.Context, userID string) (recommendation.SavedRecommendationListResponse, error) {
	repo, err := s.repo.NewClient(false)
	if err != nil {
		return recommendation.SavedRecommendationListResponse{}, err
	}

	saved, err := repo.Saved.ListByUser(ctx, userID)
	if err != nil {
		return recommendation.SavedRecommendationListResponse{}, err
	}

	res := recommendation.SavedRecommendationListResponse{
		Recommendations: make([]recommendation.SavedRecommendationResponse, 0, len(saved)),
		Total:           len(saved),
	}
	for _, item := range saved {
		res.Recommendations = append(res.Recommendations, toSavedResponse(item))
	}

	return res, nil
}
