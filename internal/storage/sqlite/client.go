package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/interview-sim/backend/internal/storage/models"
	"github.com/interview-sim/backend/pkg/logger"
	"github.com/interview-sim/backend/pkg/retry"
)

var errBusy = errors.New("database is busy")

type Client struct {
	db    *sql.DB
	retry retry.Policy
}

func NewClient(dbPath string) (*Client, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	policy := retry.DefaultPolicy("sqlite")
	policy.Retryable = func(err error) bool { return errors.Is(err, errBusy) }
	policy.Logger = logger.GetLogger()

	logger.Info("SQLite client initialized", zap.String("path", dbPath))

	return &Client{db: db, retry: policy}, nil
}

func (c *Client) Close() error {
	return c.db.Close()
}

func (c *Client) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

func (c *Client) InitSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS interview_sessions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		candidate_name TEXT NOT NULL,
		resume_text TEXT NOT NULL,
		input_mode TEXT NOT NULL DEFAULT 'text',
		status TEXT NOT NULL DEFAULT 'in_progress',
		current_question_index INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS interview_questions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id INTEGER NOT NULL,
		question_order INTEGER NOT NULL,
		text TEXT NOT NULL,
		source_keyword TEXT NOT NULL DEFAULT '',
		is_follow_up INTEGER NOT NULL DEFAULT 0,
		UNIQUE (session_id, question_order),
		FOREIGN KEY (session_id) REFERENCES interview_sessions(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS interview_answers (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		question_id INTEGER NOT NULL UNIQUE,
		answer_text TEXT NOT NULL,
		score REAL NOT NULL DEFAULT 0,
		mistakes TEXT NOT NULL DEFAULT '[]',
		keyword_hits TEXT NOT NULL DEFAULT '[]',
		created_at INTEGER NOT NULL,
		FOREIGN KEY (question_id) REFERENCES interview_questions(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS interview_feedback (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id INTEGER NOT NULL UNIQUE,
		summary TEXT NOT NULL,
		improvements TEXT NOT NULL DEFAULT '[]',
		total_score REAL NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL,
		FOREIGN KEY (session_id) REFERENCES interview_sessions(id) ON DELETE CASCADE
	);
	`

	_, err := c.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Info("SQLite schema initialized")
	return nil
}

func (c *Client) CreateSession(ctx context.Context, session *models.Session) error {
	query := `
		INSERT INTO interview_sessions (candidate_name, resume_text, input_mode, status, current_question_index, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	now := time.Now()
	if session.Status == "" {
		session.Status = models.StatusInProgress
	}

	var res sql.Result
	err := c.exec(ctx, func() error {
		var err error
		res, err = c.db.ExecContext(
			ctx,
			query,
			session.CandidateName,
			session.ResumeText,
			string(session.InputMode),
			string(session.Status),
			session.CurrentQuestionIndex,
			now.Unix(),
			now.Unix(),
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read session id: %w", err)
	}

	session.ID = id
	session.CreatedAt = time.Unix(now.Unix(), 0)
	session.UpdatedAt = session.CreatedAt

	logger.Debug("Session inserted", zap.Int64("session_id", id))
	return nil
}

func (c *Client) GetSession(ctx context.Context, id int64) (*models.Session, error) {
	query := `
		SELECT id, candidate_name, resume_text, input_mode, status, current_question_index, created_at, updated_at
		FROM interview_sessions WHERE id = ?
	`

	var s models.Session
	var inputMode, status string
	var createdAt, updatedAt int64

	err := c.db.QueryRowContext(ctx, query, id).Scan(
		&s.ID,
		&s.CandidateName,
		&s.ResumeText,
		&inputMode,
		&status,
		&s.CurrentQuestionIndex,
		&createdAt,
		&updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	s.InputMode = models.InputMode(inputMode)
	s.Status = models.SessionStatus(status)
	s.CreatedAt = time.Unix(createdAt, 0)
	s.UpdatedAt = time.Unix(updatedAt, 0)

	return &s, nil
}

func (c *Client) UpdateSessionProgress(ctx context.Context, session *models.Session) error {
	query := `UPDATE interview_sessions SET current_question_index = ?, status = ?, updated_at = ? WHERE id = ?`

	now := time.Now()
	var res sql.Result
	err := c.exec(ctx, func() error {
		var err error
		res, err = c.db.ExecContext(ctx, query, session.CurrentQuestionIndex, string(session.Status), now.Unix(), session.ID)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return models.ErrNotFound
	}

	session.UpdatedAt = time.Unix(now.Unix(), 0)
	return nil
}

func (c *Client) InsertQuestions(ctx context.Context, questions []models.Question) error {
	if len(questions) == 0 {
		return nil
	}

	err := c.exec(ctx, func() error {
		tx, err := c.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer tx.Rollback()

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO interview_questions (session_id, question_order, text, source_keyword, is_follow_up)
			VALUES (?, ?, ?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		ids := make([]int64, len(questions))
		for i, q := range questions {
			res, err := stmt.ExecContext(ctx, q.SessionID, q.Order, q.Text, q.SourceKeyword, boolToInt(q.IsFollowUp))
			if err != nil {
				return err
			}
			ids[i], err = res.LastInsertId()
			if err != nil {
				return err
			}
		}

		if err := tx.Commit(); err != nil {
			return err
		}

		for i := range questions {
			questions[i].ID = ids[i]
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to insert questions: %w", err)
	}

	logger.Debug("Questions inserted",
		zap.Int64("session_id", questions[0].SessionID),
		zap.Int("count", len(questions)),
	)
	return nil
}

func (c *Client) InsertQuestion(ctx context.Context, question *models.Question) error {
	query := `
		INSERT INTO interview_questions (session_id, question_order, text, source_keyword, is_follow_up)
		VALUES (?, ?, ?, ?, ?)
	`

	var res sql.Result
	err := c.exec(ctx, func() error {
		var err error
		res, err = c.db.ExecContext(ctx, query,
			question.SessionID,
			question.Order,
			question.Text,
			question.SourceKeyword,
			boolToInt(question.IsFollowUp),
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to insert question: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read question id: %w", err)
	}
	question.ID = id

	return nil
}

func (c *Client) ListQuestions(ctx context.Context, sessionID int64) ([]models.Question, error) {
	query := `
		SELECT id, session_id, question_order, text, source_keyword, is_follow_up
		FROM interview_questions
		WHERE session_id = ?
		ORDER BY question_order ASC
	`

	rows, err := c.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	defer rows.Close()

	var questions []models.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		questions = append(questions, *q)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate questions: %w", err)
	}

	return questions, nil
}

func (c *Client) CountQuestions(ctx context.Context, sessionID int64) (int, error) {
	count, err := retry.Value(ctx, c.retry, func() (int, error) {
		var n int
		err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM interview_questions WHERE session_id = ?`, sessionID).Scan(&n)
		return n, classify(err)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count questions: %w", err)
	}
	return count, nil
}

func (c *Client) GetSessionQuestion(ctx context.Context, sessionID, questionID int64) (*models.Question, error) {
	query := `
		SELECT id, session_id, question_order, text, source_keyword, is_follow_up
		FROM interview_questions
		WHERE id = ? AND session_id = ?
	`

	q, err := scanQuestion(c.db.QueryRowContext(ctx, query, questionID, sessionID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	return q, nil
}

func (c *Client) GetQuestionByOrder(ctx context.Context, sessionID int64, order int) (*models.Question, error) {
	query := `
		SELECT id, session_id, question_order, text, source_keyword, is_follow_up
		FROM interview_questions
		WHERE session_id = ? AND question_order = ?
	`

	q, err := scanQuestion(c.db.QueryRowContext(ctx, query, sessionID, order))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get question by order: %w", err)
	}
	return q, nil
}

func (c *Client) InsertAnswer(ctx context.Context, answer *models.Answer) error {
	query := `
		INSERT INTO interview_answers (question_id, answer_text, score, mistakes, keyword_hits, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	mistakesJSON, err := marshalList(answer.Mistakes)
	if err != nil {
		return fmt.Errorf("failed to marshal mistakes: %w", err)
	}
	hitsJSON, err := marshalList(answer.KeywordHits)
	if err != nil {
		return fmt.Errorf("failed to marshal keyword hits: %w", err)
	}

	now := time.Now()
	var res sql.Result
	err = c.exec(ctx, func() error {
		var err error
		res, err = c.db.ExecContext(ctx, query,
			answer.QuestionID,
			answer.AnswerText,
			answer.Score,
			mistakesJSON,
			hitsJSON,
			now.Unix(),
		)
		return err
	})
	if errors.Is(err, models.ErrAlreadyAnswered) {
		return err
	}
	if err != nil {
		return fmt.Errorf("failed to insert answer: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read answer id: %w", err)
	}
	answer.ID = id
	answer.CreatedAt = time.Unix(now.Unix(), 0)

	logger.Debug("Answer inserted",
		zap.Int64("answer_id", id),
		zap.Int64("question_id", answer.QuestionID),
		zap.Float64("score", answer.Score),
	)
	return nil
}

func (c *Client) ListSessionAnswers(ctx context.Context, sessionID int64) ([]models.Answer, error) {
	query := `
		SELECT a.id, a.question_id, a.answer_text, a.score, a.mistakes, a.keyword_hits, a.created_at
		FROM interview_answers a
		JOIN interview_questions q ON q.id = a.question_id
		WHERE q.session_id = ?
		ORDER BY a.id ASC
	`

	rows, err := c.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list answers: %w", err)
	}
	defer rows.Close()

	var answers []models.Answer
	for rows.Next() {
		var a models.Answer
		var mistakesJSON, hitsJSON string
		var createdAt int64

		err := rows.Scan(&a.ID, &a.QuestionID, &a.AnswerText, &a.Score, &mistakesJSON, &hitsJSON, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		if err := json.Unmarshal([]byte(mistakesJSON), &a.Mistakes); err != nil {
			return nil, fmt.Errorf("failed to unmarshal mistakes: %w", err)
		}
		if err := json.Unmarshal([]byte(hitsJSON), &a.KeywordHits); err != nil {
			return nil, fmt.Errorf("failed to unmarshal keyword hits: %w", err)
		}
		a.CreatedAt = time.Unix(createdAt, 0)

		answers = append(answers, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate answers: %w", err)
	}

	return answers, nil
}

func (c *Client) UpsertFeedback(ctx context.Context, feedback *models.Feedback) error {
	query := `
		INSERT INTO interview_feedback (session_id, summary, improvements, total_score, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET
			summary = excluded.summary,
			improvements = excluded.improvements,
			total_score = excluded.total_score
		RETURNING id, created_at
	`

	improvementsJSON, err := marshalList(feedback.Improvements)
	if err != nil {
		return fmt.Errorf("failed to marshal improvements: %w", err)
	}

	var id, createdAt int64
	err = c.exec(ctx, func() error {
		return c.db.QueryRowContext(ctx, query,
			feedback.SessionID,
			feedback.Summary,
			improvementsJSON,
			feedback.TotalScore,
			time.Now().Unix(),
		).Scan(&id, &createdAt)
	})
	if err != nil {
		return fmt.Errorf("failed to upsert feedback: %w", err)
	}

	feedback.ID = id
	feedback.CreatedAt = time.Unix(createdAt, 0)

	logger.Info("Feedback stored",
		zap.Int64("session_id", feedback.SessionID),
		zap.Float64("total_score", feedback.TotalScore),
	)
	return nil
}

// exec runs a write, retrying while sqlite reports the database as busy.
func (c *Client) exec(ctx context.Context, op func() error) error {
	return c.retry.Do(ctx, func() error {
		return classify(op())
	})
}

func classify(err error) error {
	if err == nil {
		return nil
	}

	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return err
	}

	switch {
	case sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked:
		return fmt.Errorf("%w: %v", errBusy, err)
	case sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique &&
		strings.Contains(sqliteErr.Error(), "interview_answers.question_id"):
		return models.ErrAlreadyAnswered
	}
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanQuestion(row rowScanner) (*models.Question, error) {
	var q models.Question
	var isFollowUp int

	if err := row.Scan(&q.ID, &q.SessionID, &q.Order, &q.Text, &q.SourceKeyword, &isFollowUp); err != nil {
		return nil, err
	}
	q.IsFollowUp = isFollowUp != 0

	return &q, nil
}

func marshalList(items []string) (string, error) {
	if items == nil {
		items = []string{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
