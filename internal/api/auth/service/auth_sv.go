package authService

import (
	"context"
	"errors"
	"time"

	"greeny/internal/api/auth"
	"greeny/pkg/bcrypt"
	contextPkg "greeny/pkg/context"
	jwtPkg "greeny/pkg/jwt"

	"github.com/sirupsen/logrus"
)

const (
	maxLoginFailures   = 5
	loginFailureWindow = 15 * time.Minute
	accessTokenTTL     = time.Hour
)

func (s *authDomainImpl) Login(c context.Context, req auth.LoginUserRequest) (auth.LoginUserResponse, error) {
	requestID := contextPkg.GetRequestID(c)
	email := normalizeEmail(req.Email)
	key := loginAttemptsKey(email)

	if s.tooManyFailures(c, requestID, key) {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"email":      email,
		}).Warn("Sign-in throttled")
		return auth.LoginUserResponse{}, auth.ErrTooManyLoginAttempts
	}

	repo, err := s.repo.NewClient(false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create repository client")
		return auth.LoginUserResponse{}, err
	}

	user, err := repo.Users.GetByEmail(c, email)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"error":      err.Error(),
			}).Warn("Failed to get user by email")
			s.recordFailure(c, requestID, key)
			return auth.LoginUserResponse{}, auth.ErrInvalidEmailOrPassword
		}

		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to get user by email")
		return auth.LoginUserResponse{}, err
	}

	if err := s.bcryptUtils.ComparePassword(user.Password, req.Password); err != nil {
		if !errors.Is(err, bcrypt.ErrMismatchedPassword) {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"error":      err.Error(),
			}).Error("Failed to compare password")
		}
		s.recordFailure(c, requestID, key)
		return auth.LoginUserResponse{}, auth.ErrInvalidEmailOrPassword
	}

	token, _, err := jwtPkg.Sign(MakeUserData(user), accessTokenTTL)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to sign access token")
		return auth.LoginUserResponse{}, err
	}

	if s.redisServer != nil {
		if err := s.redisServer.ResetAttempts(c, key); err != nil {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"error":      err.Error(),
			}).Warn("Failed to reset sign-in attempts")
		}
	}

	return auth.LoginUserResponse{
		Message:          "Login successful",
		UserID:           user.ID,
		Name:             user.Name,
		Email:            user.Email,
		IsAdmin:          user.IsAdmin,
		AccessToken:      token,
		ExpiresInMinutes: int64(accessTokenTTL / time.Minute),
	}, nil
}

// tooManyFailures fails open when the counter store is unreachable.
func (s *authDomainImpl) tooManyFailures(c context.Context, requestID, key string) bool {
	if s.redisServer == nil {
		return false
	}

	attempts, err := s.redisServer.GetAttempts(c, key)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Sign-in throttle unavailable")
		return false
	}

	return attempts >= maxLoginFailures
}

func (s *authDomainImpl) recordFailure(c context.Context, requestID, key string) {
	if s.redisServer == nil {
		return
	}

	if _, err := s.redisServer.IncrementAttempts(c, key, loginFailureWindow); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Failed to record sign-in failure")
	}
}
