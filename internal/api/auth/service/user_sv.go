package authService

import (
	"context"
	"strings"
	"time"

	"greeny/internal/api/auth"
	"greeny/internal/entity"
	contextPkg "greeny/pkg/context"

	"github.com/sirupsen/logrus"
)

func (s *userDomainImpl) RegisterUser(c context.Context, req auth.CreateUserRequest) (auth.CreateUserResponse, error) {
	requestID := contextPkg.GetRequestID(c)

	if len(req.Password) < 8 {
		return auth.CreateUserResponse{}, auth.ErrWeakPassword
	}

	repo, err := s.repo.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create repository client")
		return auth.CreateUserResponse{}, err
	}

	now := time.Now()
	userID, err := s.utils.NewULIDFromTimestamp(now)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to generate user ID")
		return auth.CreateUserResponse{}, err
	}

	hashedPassword, err := s.bcryptUtils.HashPassword(req.Password)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to hash password")
		return auth.CreateUserResponse{}, err
	}

	user := entity.User{
		ID:        userID,
		Name:      strings.TrimSpace(req.Name),
		Email:     normalizeEmail(req.Email),
		Password:  hashedPassword,
		IsAdmin:   false,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := repo.Users.CreateUser(c, user); err != nil {
		return auth.CreateUserResponse{}, err
	}

	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"user_id":    userID,
	}).Info("User registered")

	return auth.CreateUserResponse{
		Message: "User added",
		UserID:  userID,
		IsAdmin: false,
	}, nil
}

func (s *userDomainImpl) GetProfile(c context.Context, id string) (auth.UserResponse, error) {
	requestID := contextPkg.GetRequestID(c)

	repo, err := s.repo.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create repository client")
		return auth.UserResponse{}, err
	}

	user, err := repo.Users.GetByID(c, id)
	if err != nil {
		return auth.UserResponse{}, err
	}

	return toUserResponse(user), nil
}
