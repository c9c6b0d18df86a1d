package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	jwtPkg "greeny/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMiddleware(t *testing.T) Middleware {
	t.Helper()
	t.Setenv(jwtPkg.AccessTokenSecretEnv, "middleware-secret")
	t.Setenv("RATE_LIMIT_RPS", "1")
	t.Setenv("RATE_LIMIT_BURST", "2")

	log := logrus.New()
	log.SetOutput(io.Discard)
	return New(log)
}

func sign(t *testing.T, claims map[string]interface{}) string {
	t.Helper()
	token, _, err := jwtPkg.Sign(claims, time.Minute)
	require.NoError(t, err)
	return token
}

func get(t *testing.T, app *fiber.App, path, token string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestTokenMiddleware(t *testing.T) {
	m := newTestMiddleware(t)
	app := fiber.New()
	app.Get("/me", m.NewTokenMiddleware, func(c *fiber.Ctx) error {
		user, err := jwtPkg.GetUserLoginData(c)
		if err != nil {
			return err
		}
		return c.SendString(user.ID + "|" + user.Email)
	})

	t.Run("missing header", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, get(t, app, "/me", "").StatusCode)
	})

	t.Run("garbage token", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, get(t, app, "/me", "not-a-jwt").StatusCode)
	})

	t.Run("missing email claim", func(t *testing.T) {
		token := sign(t, map[string]interface{}{"id": "u1"})
		assert.Equal(t, http.StatusUnauthorized, get(t, app, "/me", token).StatusCode)
	})

	t.Run("valid token", func(t *testing.T) {
		token := sign(t, map[string]interface{}{"id": "u1", "email": "u1@example.com"})
		resp := get(t, app, "/me", token)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Equal(t, "u1|u1@example.com", string(body))
	})
}

func TestAdminMiddleware(t *testing.T) {
	m := newTestMiddleware(t)
	app := fiber.New()
	app.Get("/admin", m.NewTokenMiddleware, m.NewAdminMiddleware, func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusNoContent)
	})

	farmer := sign(t, map[string]interface{}{"id": "u1", "email": "a@b.c", "is_admin": false})
	admin := sign(t, map[string]interface{}{"id": "u2", "email": "d@e.f", "is_admin": true})

	resp := get(t, app, "/admin", farmer)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	var body map[string]string
	require.NoError(t, jsoniter.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, map[string]string{"error": "admin access required", "code": "FORBIDDEN"}, body)

	assert.Equal(t, http.StatusNoContent, get(t, app, "/admin", admin).StatusCode)
}

func TestRateLimiter(t *testing.T) {
	m := newTestMiddleware(t)
	app := fiber.New()
	app.Use(m.NewRateLimiter)
	app.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(http.StatusOK) })

	assert.Equal(t, http.StatusOK, get(t, app, "/", "").StatusCode)
	assert.Equal(t, http.StatusOK, get(t, app, "/", "").StatusCode)
	assert.Equal(t, http.StatusTooManyRequests, get(t, app, "/", "").StatusCode)
}

func TestRequestIDMiddleware(t *testing.T) {
	m := newTestMiddleware(t)
	app := fiber.New()
	app.Use(m.NewRequestIDMiddleware())
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString(m.GetRequestID(c)) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDKey, "req-42")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, "req-42", resp.Header.Get(RequestIDKey))

	resp = get(t, app, "/", "")
	assert.Len(t, resp.Header.Get(RequestIDKey), 26, "generated ids are ULIDs")
}
