package interview

import (
	"context"
	"sort"
	"sync"

	"github.com/interview-sim/backend/internal/storage/models"
)

// memStore is an in-memory Store for engine tests.
type memStore struct {
	mu        sync.Mutex
	nextID    int64
	sessions  map[int64]models.Session
	questions map[int64]models.Question
	answers   map[int64]models.Answer // keyed by question id
	feedback  map[int64]models.Feedback
	upserts   int
}

func newMemStore() *memStore {
	return &memStore{
		sessions:  make(map[int64]models.Session),
		questions: make(map[int64]models.Question),
		answers:   make(map[int64]models.Answer),
		feedback:  make(map[int64]models.Feedback),
	}
}

func (s *memStore) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *memStore) CreateSession(_ context.Context, session *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session.ID = s.id()
	s.sessions[session.ID] = *session
	return nil
}

func (s *memStore) GetSession(_ context.Context, id int64) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &session, nil
}

func (s *memStore) UpdateSessionProgress(_ context.Context, session *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[session.ID]; !ok {
		return models.ErrNotFound
	}
	s.sessions[session.ID] = *session
	return nil
}

func (s *memStore) InsertQuestions(ctx context.Context, questions []models.Question) error {
	for i := range questions {
		if err := s.InsertQuestion(ctx, &questions[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s *memStore) InsertQuestion(_ context.Context, question *models.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	question.ID = s.id()
	s.questions[question.ID] = *question
	return nil
}

func (s *memStore) ListQuestions(_ context.Context, sessionID int64) ([]models.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Question
	for _, q := range s.questions {
		if q.SessionID == sessionID {
			out = append(out, q)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (s *memStore) CountQuestions(ctx context.Context, sessionID int64) (int, error) {
	questions, err := s.ListQuestions(ctx, sessionID)
	return len(questions), err
}

func (s *memStore) GetSessionQuestion(_ context.Context, sessionID, questionID int64) (*models.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.questions[questionID]
	if !ok || q.SessionID != sessionID {
		return nil, models.ErrNotFound
	}
	return &q, nil
}

func (s *memStore) GetQuestionByOrder(_ context.Context, sessionID int64, order int) (*models.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, q := range s.questions {
		if q.SessionID == sessionID && q.Order == order {
			q := q
			return &q, nil
		}
	}
	return nil, models.ErrNotFound
}

func (s *memStore) InsertAnswer(_ context.Context, answer *models.Answer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.answers[answer.QuestionID]; ok {
		return models.ErrAlreadyAnswered
	}
	answer.ID = s.id()
	s.answers[answer.QuestionID] = *answer
	return nil
}

func (s *memStore) ListSessionAnswers(_ context.Context, sessionID int64) ([]models.Answer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Answer
	for questionID, a := range s.answers {
		if s.questions[questionID].SessionID == sessionID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memStore) UpsertFeedback(_ context.Context, feedback *models.Feedback) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.feedback[feedback.SessionID]; ok {
		feedback.ID = existing.ID
	} else {
		feedback.ID = s.id()
	}
	s.feedback[feedback.SessionID] = *feedback
	s.upserts++
	return nil
}

// memCache is an in-memory KeywordCache.
type memCache struct {
	entries map[string][]string
	gets    int
	sets    int
}

func newMemCache() *memCache {
	return &memCache{entries: make(map[string][]string)}
}

func (c *memCache) GetKeywords(_ context.Context, textHash string) ([]string, bool, error) {
	c.gets++
	keywords, ok := c.entries[textHash]
	return keywords, ok, nil
}

func (c *memCache) SetKeywords(_ context.Context, textHash string, keywords []string) error {
	c.sets++
	c.entries[textHash] = keywords
	return nil
}
