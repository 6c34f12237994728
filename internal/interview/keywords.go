package interview

import (
	"regexp"
	"sort"
	"strings"
)

var tokenPattern = regexp.MustCompile(`[a-z][a-z0-9#+.-]+`)

type KeywordExtractor struct {
	h Heuristics
}

func NewKeywordExtractor(h Heuristics) *KeywordExtractor {
	return &KeywordExtractor{h: h.clone()}
}

// Extract returns up to limit keywords, most frequent first with ties kept in
// order of first appearance. Text with no usable token yields the fallback set.
func (e *KeywordExtractor) Extract(text string, limit int) []string {
	keywords := e.Rank(text, limit)
	if len(keywords) == 0 {
		return append([]string(nil), e.h.FallbackKeywords...)
	}
	return keywords
}

// Rank is Extract without the fallback; it returns nil when nothing survives
// filtering.
func (e *KeywordExtractor) Rank(text string, limit int) []string {
	if limit <= 0 {
		return nil
	}

	type entry struct {
		word  string
		count int
	}

	counts := make(map[string]*entry)
	var entries []*entry

	for _, token := range tokenPattern.FindAllString(strings.ToLower(text), -1) {
		if len(token) < e.h.MinTokenLength {
			continue
		}
		if _, stop := e.h.StopWords[token]; stop {
			continue
		}

		if existing, ok := counts[token]; ok {
			existing.count++
			continue
		}
		item := &entry{word: token, count: 1}
		counts[token] = item
		entries = append(entries, item)
	}

	if len(entries) == 0 {
		return nil
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].count > entries[j].count
	})

	if len(entries) > limit {
		entries = entries[:limit]
	}

	keywords := make([]string, len(entries))
	for i, item := range entries {
		keywords[i] = item.word
	}
	return keywords
}
