package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"greeny/database/mongodb"
	"greeny/database/postgres"
	authHandler "greeny/internal/api/auth/handler"
	authRepository "greeny/internal/api/auth/repository"
	authService "greeny/internal/api/auth/service"
	"greeny/internal/api/detection"
	detectionHandler "greeny/internal/api/detection/handler"
	detectionService "greeny/internal/api/detection/service"
	recommendationHandler "greeny/internal/api/recommendation/handler"
	recommendationRepository "greeny/internal/api/recommendation/repository"
	recommendationService "greeny/internal/api/recommendation/service"
	"greeny/internal/middleware"
	"greeny/pkg/bcrypt"
	"greeny/pkg/redis"
	"greeny/pkg/s3"
	"greeny/pkg/utils"
	"greeny/pkg/workerpool"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	driverMongo    = "mongo"
	driverPostgres = "postgres"
)

type ServerOption func(*Server) error

type Server struct {
	engine      *fiber.App
	db          *sqlx.DB
	mongoDB     *mongo.Database
	log         *logrus.Logger
	middleware  middleware.Middleware
	validator   *validator.Validate
	utils       utils.IUtils
	bcryptUtils bcrypt.IBcrypt
	handlers    []handler
	redisServer redis.IRedis
	s3Client    s3.ItfS3
	classifiers detectionService.Classifiers
	closers     []closer
	pool        *workerpool.Pool
	detection   detectionService.IDetectionService
}

type handler interface {
	Start(srv fiber.Router)
}

func NewServer(options ...ServerOption) (*Server, error) {
	server := &Server{}

	for _, option := range options {
		if err := option(server); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if server.engine == nil {
		return nil, fmt.Errorf("fiber app is required")
	}
	if server.log == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if server.db == nil && server.mongoDB == nil {
		return nil, fmt.Errorf("database is required")
	}
	if server.middleware == nil {
		server.middleware = middleware.New(server.log)
	}
	if server.validator == nil {
		server.validator = NewValidator()
	}
	if server.utils == nil {
		server.utils = utils.New()
	}
	if server.bcryptUtils == nil {
		server.bcryptUtils = bcrypt.New()
	}
	if server.pool == nil {
		server.pool = workerpool.NewFromEnv("WEED_WORKERS")
	}

	return server, nil
}

func WithFiber(fiberApp *fiber.App) ServerOption {
	return func(s *Server) error {
		s.engine = fiberApp
		return nil
	}
}

func WithLogger(logger *logrus.Logger) ServerOption {
	return func(s *Server) error {
		s.log = logger
		return nil
	}
}

func WithValidator(validator *validator.Validate) ServerOption {
	return func(s *Server) error {
		s.validator = validator
		return nil
	}
}

// WithDatabase connects to MongoDB, or to PostgreSQL when DB_DRIVER=postgres.
func WithDatabase() ServerOption {
	return func(s *Server) error {
		driver := strings.ToLower(os.Getenv("DB_DRIVER"))
		if driver == "" {
			driver = driverMongo
		}

		switch driver {
		case driverMongo:
			db, err := mongodb.New(s.log)
			if err != nil {
				return fmt.Errorf("failed to create mongo connection: %w", err)
			}
			s.mongoDB = db
		case driverPostgres:
			db, err := postgres.New()
			if err != nil {
				if s.log != nil {
					s.log.Errorf("Failed to connect to database: %v", err)
				}
				return fmt.Errorf("failed to create database connection: %w", err)
			}
			s.db = db
		default:
			return fmt.Errorf("unsupported DB_DRIVER %q", driver)
		}
		return nil
	}
}

func WithRedisServer(redisServer redis.IRedis) ServerOption {
	return func(s *Server) error {
		s.redisServer = redisServer
		return nil
	}
}

func WithMiddleware() ServerOption {
	return func(s *Server) error {
		if s.log == nil {
			return fmt.Errorf("logger must be initialized before middleware")
		}
		s.middleware = middleware.New(s.log)
		return nil
	}
}

// WithS3Client is optional. Without AWS_BUCKET_NAME models are only read
// from local paths.
func WithS3Client() ServerOption {
	return func(s *Server) error {
		client, err := s3.New()
		if err != nil {
			if s.log != nil {
				s.log.Warnf("S3 client not configured: %v", err)
			}
			return nil
		}
		s.s3Client = client
		return nil
	}
}

// WithClassifiers loads the detection models. It must run after
// WithS3Client for S3 hosted models.
func WithClassifiers() ServerOption {
	return func(s *Server) error {
		if s.log == nil {
			return fmt.Errorf("logger must be initialized before classifiers")
		}
		s.classifiers, s.closers = loadClassifiers(s.log, s.s3Client)
		return nil
	}
}

func WithWorkerPool(pool *workerpool.Pool) ServerOption {
	return func(s *Server) error {
		s.pool = pool
		return nil
	}
}

func WithUtils() ServerOption {
	return func(s *Server) error {
		s.utils = utils.New()
		return nil
	}
}

func WithBcryptUtils() ServerOption {
	return func(s *Server) error {
		s.bcryptUtils = bcrypt.New()
		return nil
	}
}

func (s *Server) RegisterHandler() {
	var (
		authRepo           authRepository.Repository
		recommendationRepo recommendationRepository.Repository
	)
	if s.mongoDB != nil {
		authRepo = authRepository.NewMongo(s.mongoDB, s.log)
		recommendationRepo = recommendationRepository.NewMongo(s.mongoDB, s.log)
	} else {
		authRepo = authRepository.New(s.db, s.log)
		recommendationRepo = recommendationRepository.New(s.db, s.log)
	}

	// Auth Domain
	authServices := authService.New(s.log, authRepo, s.redisServer, s.bcryptUtils, s.utils)
	authHandlers := authHandler.New(s.log, authServices, s.validator, s.middleware)

	// Recommendation Domain
	recommendationServices := recommendationService.New(s.log, recommendationRepo, s.utils)
	recommendationHandlers := recommendationHandler.New(s.log, s.validator, s.middleware, recommendationServices)

	// Detection
	s.detection = detectionService.NewDetectionService(s.log, s.classifiers)
	detectionHandlers := detectionHandler.New(s.log, s.validator, s.middleware, s.detection, s.utils, s.pool)

	s.handlers = append(s.handlers, authHandlers, recommendationHandlers, detectionHandlers)
}

// Run blocks until the listener stops.
func (s *Server) Run() error {
	s.engine.Use(s.middleware.NewRequestIDMiddleware())
	s.engine.Use(s.middleware.NewLoggingMiddleware)
	s.engine.Use(s.middleware.NewRateLimiter)

	s.setupHealthCheck()

	router := s.engine.Group("/api/v1")
	router.Get("/health", s.health)
	for _, h := range s.handlers {
		h.Start(router)
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8000"
	}

	return s.engine.Listen(fmt.Sprintf(":%s", port))
}

// Shutdown stops accepting requests, waits for in flight frames and then
// releases the models and connections.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.engine.ShutdownWithContext(ctx)

	s.pool.Close()
	for _, c := range s.closers {
		c.Close()
	}

	if s.redisServer != nil {
		if cerr := s.redisServer.Close(); cerr != nil {
			s.log.Warnf("Error closing redis: %v", cerr)
		}
	}
	if s.mongoDB != nil {
		if cerr := mongodb.Close(s.mongoDB); cerr != nil {
			s.log.Warnf("Error closing mongo: %v", cerr)
		}
	}
	if s.db != nil {
		if cerr := s.db.Close(); cerr != nil {
			s.log.Warnf("Error closing database: %v", cerr)
		}
	}

	return err
}

func (s *Server) setupHealthCheck() {
	s.engine.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.JSON(fiber.Map{
			"message": "Server is Healthy!",
		})
	})
}

func (s *Server) health(ctx *fiber.Ctx) error {
	models := map[string]bool{}
	if s.detection != nil {
		models = s.detection.ModelStatus()
	}
	return ctx.JSON(detection.HealthResponse{Status: "ok", Models: models})
}
