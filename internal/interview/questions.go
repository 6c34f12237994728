package interview

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/interview-sim/backend/internal/storage/models"
	"github.com/interview-sim/backend/pkg/logger"
	"github.com/interview-sim/backend/pkg/utils"
)

type QuestionGenerator struct {
	h        Heuristics
	store    Store
	keywords *KeywordExtractor
	cache    KeywordCache
}

// NewQuestionGenerator builds a generator. cache may be nil.
func NewQuestionGenerator(h Heuristics, store Store, keywords *KeywordExtractor, cache KeywordCache) *QuestionGenerator {
	return &QuestionGenerator{
		h:        h.clone(),
		store:    store,
		keywords: keywords,
		cache:    cache,
	}
}

// Plan lays out the base questions for a session without touching the store.
// Keywords are cycled through every template until MinQuestions is reached.
func (g *QuestionGenerator) Plan(sessionID int64, keywords []string) []models.Question {
	if len(keywords) == 0 {
		keywords = g.h.FallbackKeywords
	}
	if len(keywords) == 0 || len(g.h.BaseTemplates) == 0 {
		return nil
	}

	questions := make([]models.Question, 0, g.h.MinQuestions)
	order := 1

	for len(questions) < g.h.MinQuestions {
		for _, keyword := range keywords {
			for _, template := range g.h.BaseTemplates {
				if len(questions) >= g.h.MinQuestions {
					break
				}
				questions = append(questions, models.Question{
					SessionID:     sessionID,
					Order:         order,
					Text:          fillTemplate(template, keyword),
					SourceKeyword: keyword,
					IsFollowUp:    false,
				})
				order++
			}
			if len(questions) >= g.h.MinQuestions {
				break
			}
		}
	}

	return questions
}

// BuildInitialQuestions generates, persists and re-reads the base question set
// for a freshly created session.
func (g *QuestionGenerator) BuildInitialQuestions(ctx context.Context, session *models.Session) ([]models.Question, error) {
	keywords := g.resumeKeywords(ctx, session.ResumeText)

	planned := g.Plan(session.ID, keywords)
	if err := g.store.InsertQuestions(ctx, planned); err != nil {
		return nil, fmt.Errorf("failed to store questions: %w", err)
	}

	questions, err := g.store.ListQuestions(ctx, session.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload questions: %w", err)
	}

	logger.Info("Initial questions generated",
		zap.Int64("session_id", session.ID),
		zap.Strings("keywords", keywords),
		zap.Int("count", len(questions)),
	)

	return questions, nil
}

func (g *QuestionGenerator) resumeKeywords(ctx context.Context, resume string) []string {
	limit := g.h.ResumeKeywordLimit
	if g.cache == nil {
		return g.keywords.Extract(resume, limit)
	}

	key := utils.HashString(fmt.Sprintf("%d:%s", limit, resume))

	cached, ok, err := g.cache.GetKeywords(ctx, key)
	if err != nil {
		logger.Warn("Keyword cache lookup failed", zap.Error(err))
	}
	if ok && len(cached) > 0 {
		return cached
	}

	keywords := g.keywords.Extract(resume, limit)
	if err := g.cache.SetKeywords(ctx, key, keywords); err != nil {
		logger.Warn("Keyword cache store failed", zap.Error(err))
	}

	return keywords
}

func fillTemplate(template, keyword string) string {
	return strings.ReplaceAll(template, keywordPlaceholder, keyword)
}
