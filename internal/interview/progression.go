package interview

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/interview-sim/backend/internal/storage/models"
	"github.com/interview-sim/backend/pkg/logger"
)

type Progression struct {
	store Store
}

func NewProgression(store Store) *Progression {
	return &Progression{store: store}
}

// Advance records one more answered question and returns the question at the
// next position, or nil once the session has run out and is marked completed.
// Completed is terminal; Advance never moves a session back to in_progress.
func (p *Progression) Advance(ctx context.Context, session *models.Session) (*models.Question, error) {
	session.CurrentQuestionIndex++
	if err := p.store.UpdateSessionProgress(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save question index: %w", err)
	}

	next, err := p.store.GetQuestionByOrder(ctx, session.ID, session.CurrentQuestionIndex+1)
	if err == nil {
		return next, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up next question: %w", err)
	}

	session.Status = models.StatusCompleted
	if err := p.store.UpdateSessionProgress(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to complete session: %w", err)
	}

	logger.Info("Session completed",
		zap.Int64("session_id", session.ID),
		zap.Int("answered", session.CurrentQuestionIndex),
	)

	return nil, nil
}
