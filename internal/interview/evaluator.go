package interview

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	mistakeTooShort   = "Answer is too short; add context, action, and outcome."
	mistakeNoEvidence = "Include at least one concrete example or measurable result."
	mistakeFiller     = "Avoid filler words to improve clarity."
)

const (
	CheckLength   = "length"
	CheckKeyword  = "keyword"
	CheckEvidence = "evidence"
	CheckFiller   = "filler"
)

type Evaluation struct {
	Score        float64
	Mistakes     []string
	KeywordHits  []string
	FailedChecks []string // check names behind Mistakes, same order
}

type AnswerEvaluator struct {
	h        Heuristics
	keywords *KeywordExtractor
	evidence *regexp.Regexp
	filler   *regexp.Regexp
}

func NewAnswerEvaluator(h Heuristics, keywords *KeywordExtractor) *AnswerEvaluator {
	return &AnswerEvaluator{
		h:        h.clone(),
		keywords: keywords,
		evidence: wholeWords(h.EvidenceWords),
		filler:   wholeWords(h.FillerWords),
	}
}

// Evaluate scores an answer against the keyword its question was built from.
// Every check runs; penalties add up and the score never drops below MinScore.
func (e *AnswerEvaluator) Evaluate(answerText, expectedKeyword string) Evaluation {
	lower := strings.ToLower(answerText)
	mistakes := []string{}
	var failed []string
	score := e.h.BaseScore

	if len(strings.Fields(answerText)) < e.h.MinAnswerWords {
		mistakes = append(mistakes, mistakeTooShort)
		failed = append(failed, CheckLength)
		score -= e.h.ShortPenalty
	}
	if !strings.Contains(lower, strings.ToLower(expectedKeyword)) {
		mistakes = append(mistakes, fmt.Sprintf("You did not clearly connect the answer to '%s'.", expectedKeyword))
		failed = append(failed, CheckKeyword)
		score -= e.h.KeywordPenalty
	}
	if e.evidence == nil || !e.evidence.MatchString(lower) {
		mistakes = append(mistakes, mistakeNoEvidence)
		failed = append(failed, CheckEvidence)
		score -= e.h.EvidencePenalty
	}
	if e.filler != nil && e.filler.MatchString(lower) {
		mistakes = append(mistakes, mistakeFiller)
		failed = append(failed, CheckFiller)
		score -= e.h.FillerPenalty
	}

	if score < e.h.MinScore {
		score = e.h.MinScore
	}

	return Evaluation{
		Score:        score,
		Mistakes:     mistakes,
		KeywordHits:  e.keywords.Extract(answerText, e.h.AnswerKeywordLimit),
		FailedChecks: failed,
	}
}

func wholeWords(words []string) *regexp.Regexp {
	if len(words) == 0 {
		return nil
	}
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(strings.ToLower(w))
	}
	return regexp.MustCompile(`\b(` + strings.Join(quoted, "|") + `)\b`)
}
