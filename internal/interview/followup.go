package interview

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/interview-sim/backend/internal/storage/models"
	"github.com/interview-sim/backend/pkg/logger"
)

type FollowUpInjector struct {
	h        Heuristics
	store    Store
	keywords *KeywordExtractor
}

func NewFollowUpInjector(h Heuristics, store Store, keywords *KeywordExtractor) *FollowUpInjector {
	return &FollowUpInjector{h: h.clone(), store: store, keywords: keywords}
}

// TemplateFor picks the follow-up phrasing from the number of questions the
// session has answered, rotating through the templates.
func (f *FollowUpInjector) TemplateFor(answered int) string {
	if len(f.h.FollowUpTemplates) == 0 {
		return ""
	}
	return f.h.FollowUpTemplates[(answered+1)%len(f.h.FollowUpTemplates)]
}

// Inject appends one follow-up question built from the answer's top keyword.
// It returns nil without writing when the answer has no usable keyword.
func (f *FollowUpInjector) Inject(ctx context.Context, session *models.Session, answerText string) (*models.Question, error) {
	top := f.keywords.Rank(answerText, 1)
	if len(top) == 0 || len(f.h.FollowUpTemplates) == 0 {
		logger.Debug("No follow-up keyword found", zap.Int64("session_id", session.ID))
		return nil, nil
	}
	keyword := top[0]

	// Orders are contiguous per session, so count+1 is the next free slot.
	count, err := f.store.CountQuestions(ctx, session.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count questions: %w", err)
	}

	question := &models.Question{
		SessionID:     session.ID,
		Order:         count + 1,
		Text:          fillTemplate(f.TemplateFor(session.CurrentQuestionIndex), keyword),
		SourceKeyword: keyword,
		IsFollowUp:    true,
	}

	if err := f.store.InsertQuestion(ctx, question); err != nil {
		return nil, fmt.Errorf("failed to store follow-up: %w", err)
	}

	logger.Info("Follow-up question injected",
		zap.Int64("session_id", session.ID),
		zap.Int64("question_id", question.ID),
		zap.Int("order", question.Order),
		zap.String("keyword", keyword),
	)

	return question, nil
}
