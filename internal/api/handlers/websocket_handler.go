package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/interview-sim/backend/pkg/logger"
)

// WebSocketHandler runs a whole interview over one socket. Each inbound
// message names an action ("start", "answer" or "report") and carries the
// same fields as the matching HTTP body; each reply wraps the HTTP response.
type WebSocketHandler struct {
	interviews *InterviewHandler
}

func NewWebSocketHandler(interviews *InterviewHandler) *WebSocketHandler {
	return &WebSocketHandler{interviews: interviews}
}

// Upgrade rejects plain HTTP requests to the websocket route.
func (h *WebSocketHandler) Upgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

func (h *WebSocketHandler) HandleConnection(c *websocket.Conn) {
	logger.Info("WebSocket connection established", zap.String("remote", c.RemoteAddr().String()))

	defer func() {
		c.Close()
		logger.Info("WebSocket connection closed")
	}()

	ctx := context.Background()

	for {
		_, raw, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("Failed to read WebSocket message", zap.Error(err))
			}
			return
		}

		if err := c.WriteJSON(h.dispatch(ctx, raw)); err != nil {
			logger.Error("Failed to write WebSocket reply", zap.Error(err))
			return
		}
	}
}

// dispatch turns one inbound frame into its reply.
func (h *WebSocketHandler) dispatch(ctx context.Context, raw []byte) fiber.Map {
	p := parsePayload(raw)
	action := p.stringOr("type", "")

	var status int
	var body fiber.Map
	var replyType string

	switch action {
	case "start":
		replyType = "started"
		status, body = h.interviews.start(ctx, p)
	case "answer":
		replyType = "answered"
		status, body = h.interviews.answer(ctx, p)
	case "report":
		replyType = "report"
		id, _, ok := p.id("session_id")
		if !ok {
			status, body = fiber.StatusNotFound, fiber.Map{"error": msgSessionNotFound}
			break
		}
		status, body = h.interviews.report(ctx, id)
	default:
		return fiber.Map{
			"type":   "error",
			"status": fiber.StatusBadRequest,
			"error":  "type must be start, answer or report",
		}
	}

	if status != fiber.StatusOK {
		return fiber.Map{"type": "error", "action": action, "status": status, "error": body["error"]}
	}

	logger.Debug("WebSocket message handled", zap.String("action", action))
	return fiber.Map{"type": replyType, "status": status, "data": body}
}
