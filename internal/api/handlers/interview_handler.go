package handlers

import (
	"context"
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/interview-sim/backend/internal/cache/redis"
	"github.com/interview-sim/backend/internal/ingestion"
	"github.com/interview-sim/backend/internal/interview"
	"github.com/interview-sim/backend/internal/metrics"
	"github.com/interview-sim/backend/internal/storage/models"
	"github.com/interview-sim/backend/pkg/logger"
)

const (
	defaultCandidateName = "Candidate"

	msgAnswerNotFound  = "Session/question not found"
	msgSessionNotFound = "Session not found"
)

// EventCounter records interview events outside the process. It is optional.
type EventCounter interface {
	IncrementMetric(ctx context.Context, metricName string) error
}

type startRequest struct {
	CandidateName string `validate:"max=255"`
	ResumeText    string
	InputMode     string `validate:"oneof=text voice"`
}

type answerRequest struct {
	SessionID  int64 `validate:"gt=0"`
	QuestionID int64 `validate:"gt=0"`
	AnswerText string
}

type InterviewHandler struct {
	engine     *interview.Engine
	normalizer *ingestion.Normalizer
	validate   *validator.Validate
	events     EventCounter
}

// NewInterviewHandler builds the handler. events may be nil.
func NewInterviewHandler(engine *interview.Engine, normalizer *ingestion.Normalizer, events EventCounter) *InterviewHandler {
	return &InterviewHandler{
		engine:     engine,
		normalizer: normalizer,
		validate:   validator.New(),
		events:     events,
	}
}

// Register mounts the interview routes. Any other method on them gets a 405.
func (h *InterviewHandler) Register(router fiber.Router) {
	router.Post("/start/", h.Start)
	router.All("/start/", methodNotAllowed("POST"))

	router.Post("/answer/", h.Answer)
	router.All("/answer/", methodNotAllowed("POST"))

	router.Get("/report/:session_id/", h.Report)
	router.All("/report/:session_id/", methodNotAllowed("GET"))
}

func (h *InterviewHandler) Start(c *fiber.Ctx) error {
	status, body := h.start(c.UserContext(), parsePayload(c.Body()))
	return c.Status(status).JSON(body)
}

func (h *InterviewHandler) Answer(c *fiber.Ctx) error {
	status, body := h.answer(c.UserContext(), parsePayload(c.Body()))
	return c.Status(status).JSON(body)
}

func (h *InterviewHandler) Report(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("session_id"), 10, 64)
	if err != nil || id < 1 {
		return writeError(c, models.ErrNotFound, msgSessionNotFound)
	}

	status, body := h.report(c.UserContext(), id)
	return c.Status(status).JSON(body)
}

func (h *InterviewHandler) start(ctx context.Context, p payload) (int, fiber.Map) {
	req := startRequest{
		CandidateName: p.stringOr("candidate_name", defaultCandidateName),
		ResumeText:    p.stringOr("resume_text", ""),
		InputMode:     string(models.InputModeText),
	}
	if p.has("input_mode") {
		mode, _ := p["input_mode"].(string)
		req.InputMode = mode
	}

	if err := h.validate.Struct(req); err != nil {
		return errorBody(startValidationError(err), "")
	}

	resume := h.normalizer.Normalize(req.ResumeText)

	result, err := h.engine.StartSession(ctx, interview.StartParams{
		CandidateName: req.CandidateName,
		ResumeText:    resume.Text,
		InputMode:     models.InputMode(req.InputMode),
	})
	if err != nil {
		return errorBody(err, msgSessionNotFound)
	}

	metrics.ResumesIngested.WithLabelValues(resume.Format()).Inc()
	h.record(ctx, redis.EventSessionStarted)

	var first fiber.Map
	if len(result.Questions) > 0 {
		q := result.Questions[0]
		first = fiber.Map{"id": q.ID, "order": q.Order, "text": q.Text}
	}

	return fiber.StatusOK, fiber.Map{
		"session_id":      result.Session.ID,
		"input_mode":      result.Session.InputMode,
		"question":        first,
		"total_questions": len(result.Questions),
	}
}

func (h *InterviewHandler) answer(ctx context.Context, p payload) (int, fiber.Map) {
	sessionID, sessionGiven, sessionOK := p.id("session_id")
	questionID, questionGiven, questionOK := p.id("question_id")

	req := answerRequest{SessionID: sessionID, QuestionID: questionID, AnswerText: p.stringOr("answer_text", "")}
	if !sessionGiven || !questionGiven {
		return errorBody(&interview.ValidationError{Message: "session_id and question_id are required"}, "")
	}
	// ids that are present but not valid record ids cannot match anything
	if !sessionOK || !questionOK {
		return errorBody(models.ErrNotFound, msgAnswerNotFound)
	}
	if err := h.validate.Struct(req); err != nil {
		return errorBody(&interview.ValidationError{Message: "session_id and question_id are required"}, "")
	}

	result, err := h.engine.SubmitAnswer(ctx, interview.SubmitParams{
		SessionID:  req.SessionID,
		QuestionID: req.QuestionID,
		AnswerText: req.AnswerText,
	})
	if err != nil {
		return errorBody(err, msgAnswerNotFound)
	}

	h.record(ctx, redis.EventAnswerSubmitted)

	var next fiber.Map
	if q := result.NextQuestion; q != nil {
		next = fiber.Map{"id": q.ID, "order": q.Order, "text": q.Text, "is_follow_up": q.IsFollowUp}
	}

	return fiber.StatusOK, fiber.Map{
		"answer_id":     result.Answer.ID,
		"score":         result.Answer.Score,
		"mistakes":      result.Answer.Mistakes,
		"next_question": next,
		"completed":     result.NextQuestion == nil,
	}
}

func (h *InterviewHandler) report(ctx context.Context, sessionID int64) (int, fiber.Map) {
	result, err := h.engine.Report(ctx, sessionID)
	if err != nil {
		return errorBody(err, msgSessionNotFound)
	}

	h.record(ctx, redis.EventReportGenerated)

	return fiber.StatusOK, fiber.Map{
		"session_id":   result.Session.ID,
		"status":       result.Session.Status,
		"summary":      result.Feedback.Summary,
		"total_score":  result.Feedback.TotalScore,
		"improvements": result.Feedback.Improvements,
	}
}

func (h *InterviewHandler) record(ctx context.Context, event string) {
	if h.events == nil {
		return
	}
	if err := h.events.IncrementMetric(ctx, event); err != nil {
		logger.Warn("Failed to record event", zap.String("event", event), zap.Error(err))
	}
}

func startValidationError(err error) error {
	var fieldErrors validator.ValidationErrors
	if errors.As(err, &fieldErrors) && len(fieldErrors) > 0 {
		switch fieldErrors[0].Field() {
		case "InputMode":
			return &interview.ValidationError{Message: "input_mode must be text or voice"}
		case "CandidateName":
			return &interview.ValidationError{Message: "candidate_name must be at most 255 characters"}
		}
	}
	return &interview.ValidationError{Message: "Invalid request"}
}
