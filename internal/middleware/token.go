package middleware

import (
	"greeny/internal/entity"
	"greeny/pkg/handlerUtil"
	jwtPkg "greeny/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
)

const (
	unauthorizedMessage  = "Unauthorized, access token invalid or expired"
	adminRequiredMessage = "admin access required"
)

func (m *middleware) NewTokenMiddleware(ctx *fiber.Ctx) error {
	userToken, err := jwtPkg.VerifyTokenHeader(ctx, jwtPkg.AccessTokenSecretEnv)
	if err != nil {
		m.log.WithFields(logrus.Fields{
			"request_id": m.GetRequestID(ctx),
			"path":       ctx.Path(),
			"error":      err.Error(),
		}).Warn("Token verification failed")
		return handlerUtil.New(m.log).HandleUnauthorized(ctx, m.GetRequestID(ctx), unauthorizedMessage)
	}

	claims, ok := userToken.Claims.(jwt.MapClaims)
	if !ok {
		m.log.WithFields(logrus.Fields{
			"error": "Invalid token claims",
		}).Warn("Token claims check")
		return handlerUtil.New(m.log).HandleUnauthorized(ctx, m.GetRequestID(ctx), unauthorizedMessage)
	}

	id, idOK := claims["id"].(string)
	email, emailOK := claims["email"].(string)
	if !idOK || !emailOK || id == "" {
		m.log.WithFields(logrus.Fields{
			"error": "Token claims are missing required fields",
		}).Warn("Token claims check")
		return handlerUtil.New(m.log).HandleUnauthorized(ctx, m.GetRequestID(ctx), unauthorizedMessage)
	}

	name, _ := claims["name"].(string)
	isAdmin, _ := claims["is_admin"].(bool)

	ctx.Locals("user", entity.UserLoginData{
		ID:      id,
		Name:    name,
		Email:   email,
		IsAdmin: isAdmin,
	})

	m.log.WithFields(logrus.Fields{
		"request_id": m.GetRequestID(ctx),
		"user_id":    id,
	}).Debug("Authentication successful")
	return ctx.Next()
}

// NewAdminMiddleware must be chained after NewTokenMiddleware.
func (m *middleware) NewAdminMiddleware(ctx *fiber.Ctx) error {
	user, err := jwtPkg.GetUserLoginData(ctx)
	if err != nil {
		return handlerUtil.New(m.log).HandleUnauthorized(ctx, m.GetRequestID(ctx), unauthorizedMessage)
	}

	if !user.IsAdmin {
		m.log.WithField("user_id", user.ID).Debug("Admin access denied")
		return handlerUtil.New(m.log).HandleForbidden(ctx, m.GetRequestID(ctx), adminRequiredMessage)
	}

	return ctx.Next()
}
