// Package interview implements the adaptive interview engine: keyword
// extraction, question generation, heuristic answer scoring, follow-up
// injection, session progression and feedback aggregation.
package interview

import "github.com/interview-sim/backend/pkg/config"

// Heuristics is the immutable rule set shared by every engine component.
// Components receive their own copy at construction time.
type Heuristics struct {
	StopWords         map[string]struct{}
	FallbackKeywords  []string
	BaseTemplates     []string
	FollowUpTemplates []string

	MinQuestions       int
	ResumeKeywordLimit int
	AnswerKeywordLimit int
	MinTokenLength     int

	MinAnswerWords  int
	BaseScore       float64
	MinScore        float64
	ShortPenalty    float64
	KeywordPenalty  float64
	EvidencePenalty float64
	FillerPenalty   float64

	EvidenceWords []string
	FillerWords   []string

	MaxImprovements int
}

const keywordPlaceholder = "{keyword}"

func DefaultHeuristics() Heuristics {
	stopWords := []string{
		"the", "a", "an", "and", "or", "is", "are", "to", "in", "on", "for", "of", "with",
		"i", "my", "we", "our", "you", "your", "it", "this", "that", "as", "at", "be", "have",
		"has", "had", "from", "by", "was", "were", "will", "would", "can", "could", "should",
	}

	set := make(map[string]struct{}, len(stopWords))
	for _, w := range stopWords {
		set[w] = struct{}{}
	}

	return Heuristics{
		StopWords:        set,
		FallbackKeywords: []string{"problem-solving", "communication", "teamwork"},
		BaseTemplates: []string{
			"Can you explain your experience using {keyword} in a real project?",
			"What are the best practices you follow when working with {keyword}?",
			"Describe a challenge you faced with {keyword} and how you solved it.",
			"How do you measure success when delivering work related to {keyword}?",
			"If you had to mentor a junior on {keyword}, what would you teach first?",
		},
		FollowUpTemplates: []string{
			"You mentioned {keyword}. Can you go deeper with a practical example?",
			"How would you optimize your approach for {keyword} at scale?",
			"What trade-offs should be considered when using {keyword}?",
		},

		MinQuestions:       25,
		ResumeKeywordLimit: 12,
		AnswerKeywordLimit: 5,
		MinTokenLength:     3,

		MinAnswerWords:  20,
		BaseScore:       10,
		MinScore:        1,
		ShortPenalty:    2,
		KeywordPenalty:  2,
		EvidencePenalty: 2,
		FillerPenalty:   1,

		EvidenceWords: []string{"example", "project", "result", "impact", "metric"},
		FillerWords:   []string{"um", "uh", "like", "you know"},

		MaxImprovements: 5,
	}
}

// WithConfig returns a copy of h with the non-zero knobs from cfg applied.
func (h Heuristics) WithConfig(cfg config.InterviewConfig) Heuristics {
	if cfg.MinQuestions > 0 {
		h.MinQuestions = cfg.MinQuestions
	}
	if cfg.ResumeKeywordLimit > 0 {
		h.ResumeKeywordLimit = cfg.ResumeKeywordLimit
	}
	if cfg.AnswerKeywordLimit > 0 {
		h.AnswerKeywordLimit = cfg.AnswerKeywordLimit
	}
	if cfg.MinAnswerWords > 0 {
		h.MinAnswerWords = cfg.MinAnswerWords
	}
	return h.clone()
}

func (h Heuristics) clone() Heuristics {
	stop := make(map[string]struct{}, len(h.StopWords))
	for w := range h.StopWords {
		stop[w] = struct{}{}
	}
	h.StopWords = stop
	h.FallbackKeywords = append([]string(nil), h.FallbackKeywords...)
	h.BaseTemplates = append([]string(nil), h.BaseTemplates...)
	h.FollowUpTemplates = append([]string(nil), h.FollowUpTemplates...)
	h.EvidenceWords = append([]string(nil), h.EvidenceWords...)
	h.FillerWords = append([]string(nil), h.FillerWords...)
	return h
}
