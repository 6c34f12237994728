package main

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/interview-sim/backend/pkg/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Server:   config.ServerConfig{ReadTimeout: 5, WriteTimeout: 5, BodyLimit: 1 << 20},
		SQLite:   config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "interviews.db")},
		Security: config.SecurityConfig{IsDevelopment: true},
		Interview: config.InterviewConfig{
			MaxResumeLength: 200,
			MaxAnswerLength: 50,
		},
	}
}

func newTestServer(t *testing.T, cfg *config.Config) *server {
	t.Helper()
	srv, err := newServer(cfg)
	require.NoError(t, err)
	t.Cleanup(srv.Close)
	return srv
}

func call(t *testing.T, srv *server, method, path, body string) (*http.Response, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := srv.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var out map[string]any
	if len(data) > 0 && data[0] == '{' {
		require.NoError(t, json.Unmarshal(data, &out))
	}
	return resp, out
}

func TestServer_InterviewFlow(t *testing.T) {
	srv := newTestServer(t, testConfig(t))

	resp, started := call(t, srv, http.MethodPost, "/start/", `{"resume_text":"Go Kafka Go"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "no-store", resp.Header.Get("Cache-Control"))
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	sessionID := int64(started["session_id"].(float64))
	questionID := int64(started["question"].(map[string]any)["id"].(float64))

	body := `{"session_id":` + strconv.FormatInt(sessionID, 10) +
		`,"question_id":` + strconv.FormatInt(questionID, 10) +
		`,"answer_text":"Built a Go service"}`
	resp, answered := call(t, srv, http.MethodPost, "/answer/", body)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, answered["completed"])

	resp, report := call(t, srv, http.MethodGet, "/report/"+strconv.FormatInt(sessionID, 10)+"/", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(sessionID), report["session_id"])

	resp, stats := call(t, srv, http.MethodGet, "/api/v1/stats", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, stats["enabled"])
}

func TestServer_FieldLimits(t *testing.T) {
	srv := newTestServer(t, testConfig(t))

	resp, out := call(t, srv, http.MethodPost, "/start/", `{"resume_text":"`+strings.Repeat("a", 201)+`"}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
	assert.Equal(t, "resume_text exceeds maximum length of 200 characters", out["error"])

	resp, out = call(t, srv, http.MethodPost, "/answer/", `{"session_id":1,"question_id":1,"answer_text":"`+strings.Repeat("a", 51)+`"}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
	assert.Equal(t, "answer_text exceeds maximum length of 50 characters", out["error"])
}

func TestServer_RateLimit(t *testing.T) {
	cfg := testConfig(t)
	cfg.RateLimit = config.RateLimitConfig{Enabled: true, MaxRequestsPerMinute: 2}
	srv := newTestServer(t, cfg)

	for i := 0; i < 2; i++ {
		resp, _ := call(t, srv, http.MethodPost, "/start/", "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	resp, out := call(t, srv, http.MethodPost, "/start/", "")
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("Retry-After"))
	assert.Equal(t, "Rate limit exceeded. Please try again later.", out["error"])

	resp, _ = call(t, srv, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_WithRedis(t *testing.T) {
	redisServer := miniredis.RunT(t)
	port, err := strconv.Atoi(redisServer.Port())
	require.NoError(t, err)

	cfg := testConfig(t)
	cfg.Redis = config.RedisConfig{Enabled: true, Host: redisServer.Host(), Port: port, KeywordTTLSec: 60}
	srv := newTestServer(t, cfg)

	for i := 0; i < 2; i++ {
		resp, _ := call(t, srv, http.MethodPost, "/start/", `{"resume_text":"Terraform AWS"}`)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	keys := redisServer.Keys()
	assert.Contains(t, keys, "metric:sessions_started")

	resp, stats := call(t, srv, http.MethodGet, "/api/v1/stats", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, stats["enabled"])
	assert.Equal(t, float64(2), stats["events"].(map[string]any)["sessions_started"])

	resp, ready := call(t, srv, http.MethodGet, "/ready", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", ready["checks"].(map[string]any)["redis"])
}

func TestServer_WebSocketRejectsPlainHTTP(t *testing.T) {
	srv := newTestServer(t, testConfig(t))

	resp, _ := call(t, srv, http.MethodGet, "/ws/interview", "")
	assert.Equal(t, http.StatusUpgradeRequired, resp.StatusCode)
}

func TestAllowOrigins(t *testing.T) {
	assert.Equal(t, "*", allowOrigins(nil))
	assert.Equal(t, "https://a.example,https://b.example", allowOrigins([]string{"https://a.example", "https://b.example"}))
}
