package interview

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/interview-sim/backend/internal/storage/models"
	"github.com/interview-sim/backend/pkg/logger"
)

const (
	summaryNotStarted       = "Interview not completed yet."
	improvementNoAnswers    = "Provide answers to generate actionable feedback."
	improvementKeepGoing    = "Keep giving structured, metric-backed answers."
	summaryCoachingGuidance = "Focus on structure (Situation, Action, Result), clarity, and measurable impact."
)

type FeedbackAggregator struct {
	h     Heuristics
	store Store
}

func NewFeedbackAggregator(h Heuristics, store Store) *FeedbackAggregator {
	return &FeedbackAggregator{h: h.clone(), store: store}
}

// Summarize reduces a set of answers to a feedback record. It is pure: the same
// answers always give the same feedback.
func (a *FeedbackAggregator) Summarize(sessionID int64, answers []models.Answer) *models.Feedback {
	if len(answers) == 0 {
		return &models.Feedback{
			SessionID:    sessionID,
			Summary:      summaryNotStarted,
			Improvements: []string{improvementNoAnswers},
			TotalScore:   0,
		}
	}

	var total float64
	var mistakes []string
	for _, answer := range answers {
		total += answer.Score
		mistakes = append(mistakes, answer.Mistakes...)
	}
	score := roundScore(total / float64(len(answers)))

	improvements := mostCommon(mistakes, a.h.MaxImprovements)
	if len(improvements) == 0 {
		improvements = []string{improvementKeepGoing}
	}

	summary := fmt.Sprintf("You completed %d questions with an average score of %s/10. %s",
		len(answers), formatScore(score), summaryCoachingGuidance)

	return &models.Feedback{
		SessionID:    sessionID,
		Summary:      summary,
		Improvements: improvements,
		TotalScore:   score,
	}
}

// Finalize recomputes the session's feedback from its stored answers and
// upserts it.
func (a *FeedbackAggregator) Finalize(ctx context.Context, session *models.Session) (*models.Feedback, error) {
	answers, err := a.store.ListSessionAnswers(ctx, session.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load answers: %w", err)
	}

	feedback := a.Summarize(session.ID, answers)
	if err := a.store.UpsertFeedback(ctx, feedback); err != nil {
		return nil, fmt.Errorf("failed to save feedback: %w", err)
	}

	logger.Info("Feedback finalized",
		zap.Int64("session_id", session.ID),
		zap.Int("answers", len(answers)),
		zap.Float64("total_score", feedback.TotalScore),
	)

	return feedback, nil
}

// mostCommon returns up to n distinct items by descending frequency, ties in
// order of first appearance.
func mostCommon(items []string, n int) []string {
	counts := make(map[string]int)
	var distinct []string
	for _, item := range items {
		if _, seen := counts[item]; !seen {
			distinct = append(distinct, item)
		}
		counts[item]++
	}

	sort.SliceStable(distinct, func(i, j int) bool {
		return counts[distinct[i]] > counts[distinct[j]]
	})

	if len(distinct) > n {
		distinct = distinct[:n]
	}
	return distinct
}

// roundScore rounds to two decimals from the exact binary value, half to even,
// so a mean of 8.125 becomes 8.12.
func roundScore(mean float64) float64 {
	rounded, err := strconv.ParseFloat(strconv.FormatFloat(mean, 'f', 2, 64), 64)
	if err != nil {
		return mean
	}
	return rounded
}

// formatScore always keeps one decimal place so 7 reads as "7.0".
func formatScore(score float64) string {
	s := strconv.FormatFloat(score, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
