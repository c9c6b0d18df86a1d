package handlerUtil

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"greeny/pkg/response"
	"greeny/pkg/utils"

	"github.com/gofiber/fiber/v2"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testApp(err error, requestID string) *fiber.App {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	h := New(logger)

	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return h.Handle(c, requestID, err, c.Path(), "test")
	})
	return app
}

func call(t *testing.T, app *fiber.App) (int, ErrorResponse) {
	t.Helper()

	res, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/", nil))
	require.NoError(t, err)
	defer res.Body.Close()

	var body ErrorResponse
	require.NoError(t, jsoniter.NewDecoder(res.Body).Decode(&body))
	return res.StatusCode, body
}

func TestHandleDomainError(t *testing.T) {
	status, body := call(t, testApp(response.NewError(fiber.StatusNotFound, "recommendation not found"), "req-1"))

	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "recommendation not found", body.Error)
	assert.Empty(t, body.TraceID)
}

func TestHandleUploadError(t *testing.T) {
	status, body := call(t, testApp(utils.ErrNoFile, "req-1"))

	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, utils.ErrNoFile.Error(), body.Error)
}

func TestHandleUnexpectedErrorReturnsTraceID(t *testing.T) {
	t.Run("reuses request id", func(t *testing.T) {
		status, body := call(t, testApp(errors.New("connection reset"), "req-42"))

		assert.Equal(t, fiber.StatusInternalServerError, status)
		assert.Equal(t, "An unexpected error occurred", body.Error)
		assert.Equal(t, "req-42", body.TraceID)
	})

	t.Run("generates one when request id is unknown", func(t *testing.T) {
		_, body := call(t, testApp(errors.New("connection reset"), "unknown"))

		assert.NotEmpty(t, body.TraceID)
		assert.NotEqual(t, "unknown", body.TraceID)
	})
}
