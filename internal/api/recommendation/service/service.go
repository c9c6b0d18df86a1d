package recommendationService

import (
	"context"

	"greeny/internal/api/recommendation"
	recommendationRepository "greeny/internal/api/recommendation/repository"
	"greeny/pkg/utils"

	"github.com/sirupsen/logrus"
)

type IRecommendationService interface {
	CreateRecommendation(ctx context.Context, req recommendation.CreateRecommendationRequest) (recommendation.CreatedResponse, error)
	GetRecommendationByID(ctx context.Context, id string) (recommendation.RecommendationResponse, error)
	ListRecommendations(ctx context.Context, className string) (recommendation.RecommendationListResponse, error)
	UpdateRecommendation(ctx context.Context, id string, req recommendation.UpdateRecommendationRequest) (recommendation.RecommendationResponse, error)
	DeleteRecommendation(ctx context.Context, id string) error
	SaveRecommendation(ctx context.Context, userID string, req recommendation.SaveRecommendationRequest) (recommendation.CreatedResponse, error)
	ListSavedRecommendations(ctx context.Context, userID string) (recommendation.SavedRecommendationListResponse, error)
}

type recommendationService struct {
	log   *logrus.Logger
	repo  recommendationRepository.Repository
	utils utils.IUtils
}

func New(
	log *logrus.Logger,
	repo recommendationRepository.Repository,
	utils utils.IUtils,
) IRecommendationService {
	return &recommendationService{
		log:   log,
		repo:  repo,
		utils: utils,
	}
}
