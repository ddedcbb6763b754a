package article_test

import (
	"testing"
	"time"

	"github.com/fwojciec/pagesnap"
	"github.com/fwojciec/pagesnap/article"
	"github.com/fwojciec/pagesnap/xxhash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestAssemble_IdentityFields(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 30, 45, 123456000, time.UTC)
	result := article.Assemble(article.AssembleInput{
		FinalURL:    "https://example.com/articles/1",
		OriginalURL: "https://example.com/a",
		HTML:        "<html></html>",
		Extraction:  &pagesnap.Extraction{Title: strPtr("T")},
		Now:         now,
	})

	wantID := xxhash.Sum("https://example.com/articles/1")
	assert.Equal(t, wantID, result.ID)
	assert.Equal(t, "https://example.com/articles/1", result.URL)
	assert.Equal(t, "example.com", result.Domain)
	assert.Equal(t, "api://article/"+wantID, result.ResultURI)
	assert.Equal(t, "2026-03-01T12:30:45.123456Z", result.Date)
	require.NotNil(t, result.Title)
	assert.Equal(t, "T", *result.Title)
}

func TestAssemble_QueryOverlaysParams(t *testing.T) {
	t.Parallel()

	result := article.Assemble(article.AssembleInput{
		FinalURL:    "https://example.com/final",
		OriginalURL: "https://example.com/a",
		Params: map[string]string{
			"url":     "should-not-win",
			"timeout": "30000",
			"cache":   "true",
		},
		Now: time.Now(),
	})

	assert.Equal(t, map[string]string{
		"url":     "https://example.com/a",
		"timeout": "30000",
		"cache":   "true",
	}, result.Query)
}

func TestAssemble_FullContentOnlyWhenRequested(t *testing.T) {
	t.Parallel()

	in := article.AssembleInput{
		FinalURL: "https://example.com/a",
		HTML:     "<html><body>raw</body></html>",
		Now:      time.Now(),
	}

	result := article.Assemble(in)
	assert.Nil(t, result.FullContent)

	in.Config.FullContent = true
	result = article.Assemble(in)
	require.NotNil(t, result.FullContent)
	assert.Equal(t, "<html><body>raw</body></html>", *result.FullContent)
}

func TestAssemble_NilExtraction(t *testing.T) {
	t.Parallel()

	result := article.Assemble(article.AssembleInput{
		FinalURL: "https://example.com/a",
		Now:      time.Now(),
	})

	assert.Nil(t, result.Title)
	assert.Nil(t, result.Content)
	assert.Nil(t, result.Meta)
	assert.Nil(t, result.ScreenshotURI)
}
