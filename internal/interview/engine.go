package interview

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/interview-sim/backend/internal/metrics"
	"github.com/interview-sim/backend/internal/storage/models"
	"github.com/interview-sim/backend/pkg/logger"
)

// ValidationError reports a request the engine refuses to act on.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

type Engine struct {
	store       Store
	generator   *QuestionGenerator
	evaluator   *AnswerEvaluator
	followUps   *FollowUpInjector
	progression *Progression
	feedback    *FeedbackAggregator
}

type StartParams struct {
	CandidateName string
	ResumeText    string
	InputMode     models.InputMode
}

type StartResult struct {
	Session   *models.Session
	Questions []models.Question
}

type SubmitParams struct {
	SessionID  int64
	QuestionID int64
	AnswerText string
}

type SubmitResult struct {
	Session      *models.Session
	Answer       *models.Answer
	FollowUp     *models.Question
	NextQuestion *models.Question
}

type ReportResult struct {
	Session  *models.Session
	Feedback *models.Feedback
}

// NewEngine wires every component to the same heuristics and store. cache may
// be nil.
func NewEngine(h Heuristics, store Store, cache KeywordCache) *Engine {
	keywords := NewKeywordExtractor(h)

	return &Engine{
		store:       store,
		generator:   NewQuestionGenerator(h, store, keywords, cache),
		evaluator:   NewAnswerEvaluator(h, keywords),
		followUps:   NewFollowUpInjector(h, store, keywords),
		progression: NewProgression(store),
		feedback:    NewFeedbackAggregator(h, store),
	}
}

func (e *Engine) StartSession(ctx context.Context, params StartParams) (*StartResult, error) {
	if params.InputMode == "" {
		params.InputMode = models.InputModeText
	}
	if !params.InputMode.Valid() {
		return nil, &ValidationError{Message: "input_mode must be text or voice"}
	}

	session := &models.Session{
		CandidateName: params.CandidateName,
		ResumeText:    params.ResumeText,
		InputMode:     params.InputMode,
		Status:        models.StatusInProgress,
	}
	if err := e.store.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	questions, err := e.generator.BuildInitialQuestions(ctx, session)
	if err != nil {
		return nil, err
	}

	metrics.SessionsStarted.WithLabelValues(string(session.InputMode)).Inc()
	metrics.QuestionsGenerated.WithLabelValues("base").Add(float64(len(questions)))

	logger.Info("Interview session started",
		zap.Int64("session_id", session.ID),
		zap.String("candidate", session.CandidateName),
		zap.String("input_mode", string(session.InputMode)),
		zap.Int("questions", len(questions)),
	)

	return &StartResult{Session: session, Questions: questions}, nil
}

// SubmitAnswer evaluates and stores an answer, injects a follow-up and moves
// the session forward.
func (e *Engine) SubmitAnswer(ctx context.Context, params SubmitParams) (*SubmitResult, error) {
	startTime := time.Now()

	if params.SessionID == 0 || params.QuestionID == 0 {
		return nil, &ValidationError{Message: "session_id and question_id are required"}
	}

	session, err := e.store.GetSession(ctx, params.SessionID)
	if err != nil {
		return nil, err
	}
	question, err := e.store.GetSessionQuestion(ctx, session.ID, params.QuestionID)
	if err != nil {
		return nil, err
	}

	if session.InputMode == models.InputModeVoice && params.AnswerText == "" {
		return nil, &ValidationError{Message: "For voice interviews, send transcribed text in answer_text."}
	}

	evaluation := e.evaluator.Evaluate(params.AnswerText, question.SourceKeyword)

	answer := &models.Answer{
		QuestionID:  question.ID,
		AnswerText:  params.AnswerText,
		Score:       evaluation.Score,
		Mistakes:    evaluation.Mistakes,
		KeywordHits: evaluation.KeywordHits,
	}
	if err := e.store.InsertAnswer(ctx, answer); err != nil {
		if errors.Is(err, models.ErrAlreadyAnswered) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to store answer: %w", err)
	}

	metrics.AnswersSubmitted.Inc()
	metrics.AnswerScore.Observe(evaluation.Score)
	for _, check := range evaluation.FailedChecks {
		metrics.AnswerMistakes.WithLabelValues(check).Inc()
	}

	followUp, err := e.followUps.Inject(ctx, session, params.AnswerText)
	if err != nil {
		return nil, err
	}
	if followUp != nil {
		metrics.QuestionsGenerated.WithLabelValues("follow_up").Inc()
	}

	wasCompleted := session.Status == models.StatusCompleted
	next, err := e.progression.Advance(ctx, session)
	if err != nil {
		return nil, err
	}
	if next == nil && !wasCompleted {
		metrics.SessionsCompleted.Inc()
	}

	logger.Info("Answer evaluated",
		zap.Int64("session_id", session.ID),
		zap.Int64("question_id", question.ID),
		zap.Float64("score", evaluation.Score),
		zap.Int("mistakes", len(evaluation.Mistakes)),
		zap.Bool("follow_up", followUp != nil),
		zap.Bool("completed", next == nil),
		zap.Duration("latency", time.Since(startTime)),
	)

	return &SubmitResult{
		Session:      session,
		Answer:       answer,
		FollowUp:     followUp,
		NextQuestion: next,
	}, nil
}

func (e *Engine) Report(ctx context.Context, sessionID int64) (*ReportResult, error) {
	session, err := e.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	feedback, err := e.feedback.Finalize(ctx, session)
	if err != nil {
		return nil, err
	}

	metrics.ReportsGenerated.Inc()

	return &ReportResult{Session: session, Feedback: feedback}, nil
}
