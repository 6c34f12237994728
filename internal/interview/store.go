package interview

import (
	"context"

	"github.com/interview-sim/backend/internal/storage/models"
)

// Store is the read/write boundary the engine needs from persistence. Lookups
// that find nothing return models.ErrNotFound.
type Store interface {
	CreateSession(ctx context.Context, session *models.Session) error
	GetSession(ctx context.Context, id int64) (*models.Session, error)
	UpdateSessionProgress(ctx context.Context, session *models.Session) error

	// InsertQuestions writes the batch atomically and fills in the IDs.
	InsertQuestions(ctx context.Context, questions []models.Question) error
	InsertQuestion(ctx context.Context, question *models.Question) error
	ListQuestions(ctx context.Context, sessionID int64) ([]models.Question, error)
	CountQuestions(ctx context.Context, sessionID int64) (int, error)
	GetSessionQuestion(ctx context.Context, sessionID, questionID int64) (*models.Question, error)
	GetQuestionByOrder(ctx context.Context, sessionID int64, order int) (*models.Question, error)

	// InsertAnswer returns models.ErrAlreadyAnswered when the question has an answer.
	InsertAnswer(ctx context.Context, answer *models.Answer) error
	ListSessionAnswers(ctx context.Context, sessionID int64) ([]models.Answer, error)

	UpsertFeedback(ctx context.Context, feedback *models.Feedback) error
}

// KeywordCache memoizes resume keyword extraction by content hash.
type KeywordCache interface {
	GetKeywords(ctx context.Context, textHash string) ([]string, bool, error)
	SetKeywords(ctx context.Context, textHash string, keywords []string) error
}
