package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

type stubStats struct {
	stats map[string]int64
	err   error
}

func (s stubStats) Stats(context.Context) (map[string]int64, error) { return s.stats, s.err }

func getJSON(t *testing.T, app *fiber.App, path string) (int, map[string]any) {
	t.Helper()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func systemApp(h *SystemHandler) *fiber.App {
	app := fiber.New()
	app.Get("/health", h.Health)
	app.Get("/ready", h.Ready)
	app.Get("/stats", h.Stats)
	return app
}

func TestSystemHandler_Health(t *testing.T) {
	app := systemApp(NewSystemHandler(stubPinger{}, nil, nil))

	status, out := getJSON(t, app, "/health")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "healthy", out["status"])
}

func TestSystemHandler_Ready(t *testing.T) {
	status, out := getJSON(t, systemApp(NewSystemHandler(stubPinger{}, nil, nil)), "/ready")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, map[string]any{"sqlite": "ok"}, out["checks"])

	status, out = getJSON(t, systemApp(NewSystemHandler(stubPinger{}, stubPinger{err: errors.New("refused")}, nil)), "/ready")
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, map[string]any{"sqlite": "ok", "redis": "refused"}, out["checks"])

	status, _ = getJSON(t, systemApp(NewSystemHandler(stubPinger{err: errors.New("locked")}, nil, nil)), "/ready")
	assert.Equal(t, http.StatusServiceUnavailable, status)
}

func TestSystemHandler_Stats(t *testing.T) {
	status, out := getJSON(t, systemApp(NewSystemHandler(stubPinger{}, nil, nil)), "/stats")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, out["enabled"])

	stats := stubStats{stats: map[string]int64{"sessions_started": 4}}
	status, out = getJSON(t, systemApp(NewSystemHandler(stubPinger{}, nil, stats)), "/stats")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, out["enabled"])
	assert.Equal(t, map[string]any{"sessions_started": float64(4)}, out["events"])

	status, _ = getJSON(t, systemApp(NewSystemHandler(stubPinger{}, nil, stubStats{err: errors.New("open")})), "/stats")
	assert.Equal(t, http.StatusServiceUnavailable, status)
}
