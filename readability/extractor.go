// Package readability provides an alternative pagesnap.Extractor backend
// backed by go-readability's scoring heuristics. It produces better content
// blocks on cluttered pages at the cost of the social-metadata fields,
// which readability does not model.
package readability

import (
	"strings"
	"unicode/utf8"

	"github.com/fwojciec/pagesnap"
	"github.com/go-shiori/go-readability"
)

// Ensure Extractor implements pagesnap.Extractor at compile time.
var _ pagesnap.Extractor = (*Extractor)(nil)

// Extractor wraps go-readability.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract processes raw HTML and returns the article fields readability
// can derive. Meta, Lang, Dir and PublishedTime are always nil for this
// backend.
func (e *Extractor) Extract(rawHTML string) (*pagesnap.Extraction, error) {
	if rawHTML == "" {
		return nil, pagesnap.Errorf(pagesnap.EINVALID, "empty HTML input")
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), nil)
	if err != nil {
		return nil, err
	}

	ex := &pagesnap.Extraction{
		Title:    nonEmpty(article.Title),
		Byline:   nonEmpty(article.Byline),
		Excerpt:  nonEmpty(article.Excerpt),
		SiteName: nonEmpty(article.SiteName),
		Content:  nonEmpty(article.Content),
	}
	if text := strings.TrimSpace(article.TextContent); text != "" {
		length := utf8.RuneCountInString(text)
		ex.TextContent = &text
		ex.Length = &length
	}
	return ex, nil
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
