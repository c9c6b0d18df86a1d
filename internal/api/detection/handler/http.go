package detectionHandler

import (
	detectionService "greeny/internal/api/detection/service"
	"greeny/internal/middleware"
	"greeny/pkg/utils"
	"greeny/pkg/workerpool"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"
)

type DetectionHandler struct {
	log              *logrus.Logger
	validator        *validator.Validate
	middleware       middleware.Middleware
	detectionService detectionService.IDetectionService
	utils            utils.IUtils
	pool             *workerpool.Pool
}

func New(
	log *logrus.Logger,
	validator *validator.Validate,
	middleware middleware.Middleware,
	ds detectionService.IDetectionService,
	utils utils.IUtils,
	pool *workerpool.Pool,
) *DetectionHandler {
	return &DetectionHandler{
		detectionService: ds,
		log:              log,
		validator:        validator,
		middleware:       middleware,
		utils:            utils,
		pool:             pool,
	}
}

func (h *DetectionHandler) Start(srv fiber.Router) {
	wsMiddleware := func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}

	det := srv.Group("/detection")
	det.Post("/quality", h.DetectQuality)
	det.Post("/leaf", h.ClassifyLeaf)

	weed := det.Group("/weed")
	weed.Use("/ws", wsMiddleware)
	weed.Get("/ws", websocket.New(h.handleWeedWebSocket))
}
