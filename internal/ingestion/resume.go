package ingestion

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/interview-sim/backend/pkg/logger"
)

var (
	// a resume is treated as markup only when it opens with a document or
	// block element and closes with a tag
	leadingTagPattern = regexp.MustCompile(`(?i)^(<!doctype\s+html|<(html|head|body|div|p|ul|ol|li|span|h[1-6]|table|section|article|header|main)[\s/>])`)
	whitespacePattern = regexp.MustCompile(`\s+`)
)

// Resume is resume text ready for keyword extraction.
type Resume struct {
	Text    string
	WasHTML bool
}

// Format labels how the resume arrived.
func (r Resume) Format() string {
	if r.WasHTML {
		return "html"
	}
	return "text"
}

type Normalizer struct{}

func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// Normalize strips markup from resumes pasted as HTML documents. Anything else,
// including plain text that mentions tags, is returned untouched so keyword
// extraction sees exactly what the candidate sent.
func (n *Normalizer) Normalize(raw string) Resume {
	if !isMarkup(raw) {
		return Resume{Text: raw}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		logger.Warn("Failed to parse resume markup, keeping raw text", zap.Error(err))
		return Resume{Text: raw}
	}

	doc.Find("script, style, nav, footer, aside, noscript").Remove()

	// keep adjacent blocks from gluing their words together
	doc.Find("p, li, div, br, tr, td, th, section, article, h1, h2, h3, h4, h5, h6").AfterHtml(" ")

	text := whitespacePattern.ReplaceAllString(doc.Find("body").Text(), " ")
	text = strings.TrimSpace(text)

	logger.Debug("Resume markup stripped",
		zap.Int("raw_length", len(raw)),
		zap.Int("text_length", len(text)),
	)

	return Resume{Text: text, WasHTML: true}
}

func isMarkup(raw string) bool {
	trimmed := strings.TrimSpace(raw)
	return strings.HasSuffix(trimmed, ">") && leadingTagPattern.MatchString(trimmed)
}
