package recommendationHandler

import (
	recommendationService "greeny/internal/api/recommendation/service"
	"greeny/internal/middleware"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type RecommendationHandler struct {
	log                   *logrus.Logger
	validator             *validator.Validate
	middleware            middleware.Middleware
	recommendationService recommendationService.IRecommendationService
}

func New(
	log *logrus.Logger,
	validate *validator.Validate,
	middleware middleware.Middleware,
	rs recommendationService.IRecommendationService,
) *RecommendationHandler {
	return &RecommendationHandler{
		log:                   log,
		validator:             validate,
		middleware:            middleware,
		recommendationService: rs,
	}
}

func (h *RecommendationHandler) Start(srv fiber.Router) {
	recommendations := srv.Group("/recommendations")

	// Saved items are registered before /:id so "saved" is not taken as an id
	recommendations.Post("/saved", h.middleware.NewTokenMiddleware, h.SaveRecommendation)
	recommendations.Get("/saved", h.middleware.NewTokenMiddleware, h.ListSavedRecommendations)

	recommendations.Get("", h.ListRecommendations)
	recommendations.Get("/:id", h.GetRecommendationByID)

	recommendations.Post("", h.middleware.NewTokenMiddleware, h.middleware.NewAdminMiddleware, h.CreateRecommendation)
	recommendations.Put("/:id", h.middleware.NewTokenMiddleware, h.middleware.NewAdminMiddleware, h.UpdateRecommendation)
	recommendations.Delete("/:id", h.middleware.NewTokenMiddleware, h.middleware.NewAdminMiddleware, h.DeleteRecommendation)
}
