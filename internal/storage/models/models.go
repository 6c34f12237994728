package models

import (
	"errors"
	"time"
)

var (
	ErrNotFound        = errors.New("record not found")
	ErrAlreadyAnswered = errors.New("question already answered")
)

type InputMode string

const (
	InputModeText  InputMode = "text"
	InputModeVoice InputMode = "voice"
)

func (m InputMode) Valid() bool {
	return m == InputModeText || m == InputModeVoice
}

type SessionStatus string

const (
	StatusInProgress SessionStatus = "in_progress"
	StatusCompleted  SessionStatus = "completed"
)

// Session is one interview attempt. CurrentQuestionIndex counts answered questions.
type Session struct {
	ID                   int64
	CandidateName        string
	ResumeText           string
	InputMode            InputMode
	Status               SessionStatus
	CurrentQuestionIndex int
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

type Question struct {
	ID            int64
	SessionID     int64
	Order         int
	Text          string
	SourceKeyword string
	IsFollowUp    bool
}

type Answer struct {
	ID          int64
	QuestionID  int64
	AnswerText  string
	Score       float64
	Mistakes    []string
	KeywordHits []string
	CreatedAt   time.Time
}

type Feedback struct {
	ID           int64
	SessionID    int64
	Summary      string
	Improvements []string
	TotalScore   float64
	CreatedAt    time.Time
}
