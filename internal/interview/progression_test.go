package interview

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/interview-sim/backend/internal/storage/models"
)

func TestProgression_AdvanceReturnsNextQuestion(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	session, questions := seededSession(t, store, "Python Django")
	progression := NewProgression(store)

	next, err := progression.Advance(ctx, session)
	require.NoError(t, err)
	require.NotNil(t, next)

	assert.Equal(t, questions[1].ID, next.ID)
	assert.Equal(t, 1, session.CurrentQuestionIndex)
	assert.Equal(t, models.StatusInProgress, session.Status)

	stored, err := store.GetSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.CurrentQuestionIndex)
}

func TestProgression_CompletesWhenQuestionsRunOut(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	session, questions := seededSession(t, store, "Python Django")
	progression := NewProgression(store)

	for i := 0; i < len(questions)-1; i++ {
		next, err := progression.Advance(ctx, session)
		require.NoError(t, err)
		require.NotNil(t, next)
		assert.Equal(t, i+2, next.Order)
	}

	next, err := progression.Advance(ctx, session)
	require.NoError(t, err)
	assert.Nil(t, next)
	assert.Equal(t, models.StatusCompleted, session.Status)
	assert.Equal(t, len(questions), session.CurrentQuestionIndex)

	stored, err := store.GetSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, stored.Status)
}

func TestProgression_CompletedIsTerminal(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	session := &models.Session{Status: models.StatusCompleted, CurrentQuestionIndex: 25}
	require.NoError(t, store.CreateSession(ctx, session))

	next, err := NewProgression(store).Advance(ctx, session)
	require.NoError(t, err)
	assert.Nil(t, next)
	assert.Equal(t, models.StatusCompleted, session.Status)
	assert.Equal(t, 26, session.CurrentQuestionIndex)
}

func TestProgression_MissingSession(t *testing.T) {
	session := &models.Session{ID: 99}

	_, err := NewProgression(newMemStore()).Advance(context.Background(), session)
	assert.ErrorIs(t, err, models.ErrNotFound)
}
