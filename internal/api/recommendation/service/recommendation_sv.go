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

func (s *recommendationService) CreateRecommendation(ctx context.Context, req recommendation.CreateRecommendationRequest) (recommendation.CreatedResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)

	className, err := normalizeClassName(req.ClassName)
	if err != nil {
		return recommendation.CreatedResponse{}, err
	}

	repo, err := s.repo.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create repository client")
		return recommendation.CreatedResponse{}, err
	}

	now := time.Now()
	id, err := s.utils.NewULIDFromTimestamp(now)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to generate ULID")
		return recommendation.CreatedResponse{}, err
	}

	rec := entity.Recommendation{
		ID:          id,
		ClassName:   className,
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := repo.Recommendations.Create(ctx, rec); err != nil {
		return recommendation.CreatedResponse{}, err
	}

	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"id":         id,
		"class_name": className,
	}).Info("Recommendation added")

	return recommendation.CreatedResponse{Message: "Recommendation added", ID: id}, nil
}

func (s *recommendationService) GetRecommendationByID(ctx context.Context, id string) (recommendation.RecommendationResponse, error) {
	if err := validateID(id); err != nil {
		return recommendation.RecommendationResponse{}, err
	}

	repo, err := s.repo.NewClient(false)
	if err != nil {
		return recommendation.RecommendationResponse{}, err
	}

	rec, err := repo.Recommendations.GetByID(ctx, id)
	if err != nil {
		return recommendation.RecommendationResponse{}, err
	}

	return toResponse(rec), nil
}

func (s *recommendationService) ListRecommendations(ctx context.Context, className string) (recommendation.RecommendationListResponse, error) {
	if className != "" {
		var err error
		if className, err = normalizeClassName(className); err != nil {
			return recommendation.RecommendationListResponse{}, err
		}
	}

	repo, err := s.repo.NewClient(false)
	if err != nil {
		return recommendation.RecommendationListResponse{}, err
	}

	recs, err := repo.Recommendations.List(ctx, className)
	if err != nil {
		return recommendation.RecommendationListResponse{}, err
	}

	res := recommendation.RecommendationListResponse{
		Recommendations: make([]recommendation.RecommendationResponse, 0, len(recs)),
		Total:           len(recs),
	}
	for _, rec := range recs {
		res.Recommendations = append(res.Recommendations, toResponse(rec))
	}

	return res, nil
}

func (s *recommendationService) UpdateRecommendation(ctx context.Context, id string, req recommendation.UpdateRecommendationRequest) (recommendation.RecommendationResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)

	if err := validateID(id); err != nil {
		return recommendation.RecommendationResponse{}, err
	}
	if req.Empty() {
		return recommendation.RecommendationResponse{}, recommendation.ErrNoFieldsToUpdate
	}

	repo, err := s.repo.NewClient(true)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create repository client")
		return recommendation.RecommendationResponse{}, err
	}
	defer repo.Rollback()

	rec, err := repo.Recommendations.GetByID(ctx, id)
	if err != nil {
		return recommendation.RecommendationResponse{}, err
	}

	if req.ClassName != "" {
		if rec.ClassName, err = normalizeClassName(req.ClassName); err != nil {
			return recommendation.RecommendationResponse{}, err
		}
	}
	if req.Title != "" {
		rec.Title = strings.TrimSpace(req.Title)
	}
	if req.Description != "" {
		rec.Description = strings.TrimSpace(req.Description)
	}
	rec.UpdatedAt = time.Now()

	if err := repo.Recommendations.Update(ctx, rec); err != nil {
		return recommendation.RecommendationResponse{}, err
	}

	if err := repo.Commit(); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to commit recommendation update")
		return recommendation.RecommendationResponse{}, err
	}

	return toResponse(rec), nil
}

func (s *recommendationService) DeleteRecommendation(ctx context.Context, id string) error {
	if err := validateID(id); err != nil {
		return err
	}

	repo, err := s.repo.NewClient(false)
	if err != nil {
		return err
	}

	if err := repo.Recommendations.Delete(ctx, id); err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{
		"request_id": contextPkg.GetRequestID(ctx),
		"id":         id,
	}).Info("Recommendation deleted")

	return nil
}
