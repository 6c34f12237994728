package requestlog

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newApp(log *zap.Logger) *fiber.App {
	app := fiber.New()
	app.Use(Middleware(log))
	app.Get("/report/:session_id/", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Session not found"})
	})
	app.Get("/boom", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusTeapot, "short and stout")
	})
	return app
}

func TestMiddleware_AssignsRequestID(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	app := newApp(zap.New(core))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/report/7/", nil), -1)
	require.NoError(t, err)

	id := resp.Header.Get(HeaderRequestID)
	_, err = uuid.Parse(id)
	assert.NoError(t, err)

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zap.WarnLevel, entries[0].Level)

	fields := entries[0].ContextMap()
	assert.Equal(t, id, fields["request_id"])
	assert.Equal(t, "/report/:session_id/", fields["route"])
	assert.Equal(t, int64(http.StatusNotFound), fields["status"])
}

func TestMiddleware_KeepsValidIncomingID(t *testing.T) {
	app := newApp(nil)
	incoming := uuid.New().String()

	req := httptest.NewRequest(http.MethodGet, "/report/7/", nil)
	req.Header.Set(HeaderRequestID, incoming)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, incoming, resp.Header.Get(HeaderRequestID))

	req = httptest.NewRequest(http.MethodGet, "/report/7/", nil)
	req.Header.Set(HeaderRequestID, "not-a-uuid")
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.NotEqual(t, "not-a-uuid", resp.Header.Get(HeaderRequestID))
}

func TestMiddleware_LogsHandlerErrors(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	app := newApp(zap.New(core))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTeapot, resp.StatusCode)

	require.Len(t, logs.All(), 1)
	assert.Equal(t, int64(fiber.StatusTeapot), logs.All()[0].ContextMap()["status"])
}
