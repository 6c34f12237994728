package interview

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/interview-sim/backend/internal/storage/models"
)

func TestFeedbackAggregator_NoAnswers(t *testing.T) {
	aggregator := NewFeedbackAggregator(DefaultHeuristics(), newMemStore())

	feedback := aggregator.Summarize(3, nil)

	assert.Equal(t, int64(3), feedback.SessionID)
	assert.Equal(t, "Interview not completed yet.", feedback.Summary)
	assert.Equal(t, []string{"Provide answers to generate actionable feedback."}, feedback.Improvements)
	assert.Zero(t, feedback.TotalScore)
}

func TestFeedbackAggregator_Summarize(t *testing.T) {
	aggregator := NewFeedbackAggregator(DefaultHeuristics(), newMemStore())

	answers := []models.Answer{
		{Score: 10, Mistakes: []string{}},
		{Score: 8, Mistakes: []string{mistakeTooShort}},
		{Score: 8, Mistakes: []string{mistakeNoEvidence}},
	}

	feedback := aggregator.Summarize(1, answers)

	assert.Equal(t, 8.67, feedback.TotalScore)
	assert.Equal(t,
		"You completed 3 questions with an average score of 8.67/10. "+
			"Focus on structure (Situation, Action, Result), clarity, and measurable impact.",
		feedback.Summary)
	assert.Equal(t, []string{mistakeTooShort, mistakeNoEvidence}, feedback.Improvements)
}

func TestFeedbackAggregator_WholeScoreKeepsDecimal(t *testing.T) {
	aggregator := NewFeedbackAggregator(DefaultHeuristics(), newMemStore())

	feedback := aggregator.Summarize(1, []models.Answer{{Score: 4, Mistakes: []string{mistakeTooShort}}})

	assert.Equal(t, 4.0, feedback.TotalScore)
	assert.Contains(t, feedback.Summary, "average score of 4.0/10.")
}

func TestFeedbackAggregator_HalfwayMeanRoundsToEven(t *testing.T) {
	aggregator := NewFeedbackAggregator(DefaultHeuristics(), newMemStore())

	var answers []models.Answer
	for _, score := range []float64{10, 10, 10, 10, 8, 8, 8, 1} {
		answers = append(answers, models.Answer{Score: score})
	}

	feedback := aggregator.Summarize(1, answers)

	assert.Equal(t, 8.12, feedback.TotalScore)
	assert.Contains(t, feedback.Summary, "8 questions with an average score of 8.12/10.")
}

func TestFeedbackAggregator_PerfectAnswersKeepGoing(t *testing.T) {
	aggregator := NewFeedbackAggregator(DefaultHeuristics(), newMemStore())

	feedback := aggregator.Summarize(1, []models.Answer{{Score: 10}, {Score: 10}})

	assert.Equal(t, 10.0, feedback.TotalScore)
	assert.Equal(t, []string{"Keep giving structured, metric-backed answers."}, feedback.Improvements)
}

func TestFeedbackAggregator_ImprovementsByFrequency(t *testing.T) {
	aggregator := NewFeedbackAggregator(DefaultHeuristics(), newMemStore())

	answers := []models.Answer{
		{Score: 5, Mistakes: []string{"a", "b", "c"}},
		{Score: 5, Mistakes: []string{"d", "c", "e"}},
		{Score: 5, Mistakes: []string{"f", "e", "c"}},
	}

	feedback := aggregator.Summarize(1, answers)

	assert.Equal(t, []string{"c", "e", "a", "b", "d"}, feedback.Improvements)
}

func TestFeedbackAggregator_FinalizeIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	session, questions := seededSession(t, store, "Python Django")

	require.NoError(t, store.InsertAnswer(ctx, &models.Answer{
		QuestionID: questions[0].ID,
		Score:      6,
		Mistakes:   []string{mistakeTooShort, mistakeNoEvidence},
	}))

	aggregator := NewFeedbackAggregator(DefaultHeuristics(), store)

	first, err := aggregator.Finalize(ctx, session)
	require.NoError(t, err)
	second, err := aggregator.Finalize(ctx, session)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.Summary, second.Summary)
	assert.Equal(t, first.Improvements, second.Improvements)
	assert.Equal(t, 6.0, second.TotalScore)
	assert.Equal(t, 2, store.upserts)
	assert.Len(t, store.feedback, 1)
}

func TestRoundScore(t *testing.T) {
	tests := []struct {
		mean float64
		want float64
	}{
		{8.125, 8.12},
		{0.375, 0.38},
		{2.675, 2.67},
		{26.0 / 3, 8.67},
		{7, 7},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, roundScore(tt.mean), "mean=%v", tt.mean)
	}
}

func TestFormatScore(t *testing.T) {
	assert.Equal(t, "7.0", formatScore(7))
	assert.Equal(t, "8.67", formatScore(8.67))
	assert.Equal(t, "8.5", formatScore(8.5))
	assert.Equal(t, "0.0", formatScore(0))
}
