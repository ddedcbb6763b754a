package goquery_test

import (
	"strings"
	"testing"

	"github.com/fwojciec/pagesnap/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractor_TitleFallbackChain(t *testing.T) {
	t.Parallel()

	t.Run("prefers the document title element", func(t *testing.T) {
		t.Parallel()

		html := `<html><head><title> Doc Title </title><meta property="og:title" content="OG Title"></head><body></body></html>`

		ex, err := goquery.NewExtractor().Extract(html)

		require.NoError(t, err)
		require.NotNil(t, ex.Title)
		assert.Equal(t, "Doc Title", *ex.Title)
	})

	t.Run("falls back to the Open Graph title", func(t *testing.T) {
		t.Parallel()

		html := `<html><head><meta property="og:title" content="OG Title"></head><body></body></html>`

		ex, err := goquery.NewExtractor().Extract(html)

		require.NoError(t, err)
		require.NotNil(t, ex.Title)
		assert.Equal(t, "OG Title", *ex.Title)
	})

	t.Run("absent when neither exists", func(t *testing.T) {
		t.Parallel()

		ex, err := goquery.NewExtractor().Extract(`<html><head></head><body><p>x</p></body></html>`)

		require.NoError(t, err)
		assert.Nil(t, ex.Title)
	})
}

func TestExtractor_ExcerptFallbackChain(t *testing.T) {
	t.Parallel()

	html := `<html><head><meta property="og:description" content="og desc"></head><body></body></html>`

	ex, err := goquery.NewExtractor().Extract(html)

	require.NoError(t, err)
	require.NotNil(t, ex.Excerpt)
	assert.Equal(t, "og desc", *ex.Excerpt)

	html = `<html><head><meta name="description" content="plain desc"><meta property="og:description" content="og desc"></head></html>`

	ex, err = goquery.NewExtractor().Extract(html)

	require.NoError(t, err)
	require.NotNil(t, ex.Excerpt)
	assert.Equal(t, "plain desc", *ex.Excerpt)
}

func TestExtractor_BylineFallbackChain(t *testing.T) {
	t.Parallel()

	html := `<html><head><meta property="article:author" content="Jane"></head></html>`

	ex, err := goquery.NewExtractor().Extract(html)

	require.NoError(t, err)
	require.NotNil(t, ex.Byline)
	assert.Equal(t, "Jane", *ex.Byline)

	html = `<html><head><meta name="author" content="John"><meta property="article:author" content="Jane"></head></html>`

	ex, err = goquery.NewExtractor().Extract(html)

	require.NoError(t, err)
	require.NotNil(t, ex.Byline)
	assert.Equal(t, "John", *ex.Byline)
}

func TestExtractor_SiteNameAndLangDir(t *testing.T) {
	t.Parallel()

	html := `<html lang="en" dir="rtl"><head><meta property="og:site_name" content="Example"></head><body></body></html>`

	ex, err := goquery.NewExtractor().Extract(html)

	require.NoError(t, err)
	require.NotNil(t, ex.SiteName)
	assert.Equal(t, "Example", *ex.SiteName)
	require.NotNil(t, ex.Lang)
	assert.Equal(t, "en", *ex.Lang)
	require.NotNil(t, ex.Dir)
	assert.Equal(t, "rtl", *ex.Dir)
}

func TestExtractor_ContentFallbackOrder(t *testing.T) {
	t.Parallel()

	t.Run("article wins over main", func(t *testing.T) {
		t.Parallel()

		html := `<html><body><main><p>main text</p></main><article><p>article text</p></article></body></html>`

		ex, err := goquery.NewExtractor().Extract(html)

		require.NoError(t, err)
		require.NotNil(t, ex.Content)
		assert.Contains(t, *ex.Content, "article text")
		assert.NotContains(t, *ex.Content, "main text")
		assert.True(t, strings.HasPrefix(*ex.Content, "<article"))
	})

	t.Run("main wins when no article exists", func(t *testing.T) {
		t.Parallel()

		html := `<html><body><main><p>main text</p></main><div class="post">div text</div></body></html>`

		ex, err := goquery.NewExtractor().Extract(html)

		require.NoError(t, err)
		require.NotNil(t, ex.Content)
		assert.True(t, strings.HasPrefix(*ex.Content, "<main"))
	})

	t.Run("matches conventional class names case-insensitively", func(t *testing.T) {
		t.Parallel()

		html := `<html><body><div class="site-POST-wrapper"><p>classy</p></div></body></html>`

		ex, err := goquery.NewExtractor().Extract(html)

		require.NoError(t, err)
		require.NotNil(t, ex.Content)
		assert.Contains(t, *ex.Content, "classy")
	})

	t.Run("matches section elements too", func(t *testing.T) {
		t.Parallel()

		html := `<html><body><section class="entry"><p>sectioned</p></section></body></html>`

		ex, err := goquery.NewExtractor().Extract(html)

		require.NoError(t, err)
		require.NotNil(t, ex.Content)
		assert.True(t, strings.HasPrefix(*ex.Content, "<section"))
	})

	t.Run("absent when nothing matches", func(t *testing.T) {
		t.Parallel()

		ex, err := goquery.NewExtractor().Extract(`<html><body><div class="sidebar">x</div></body></html>`)

		require.NoError(t, err)
		assert.Nil(t, ex.Content)
	})
}

func TestExtractor_TextSanitation(t *testing.T) {
	t.Parallel()

	html := `<html><body>
		<script>var secret = 1;</script>
		<style>.hidden { display: none; }</style>
		<nav>nav links</nav>
		<header>site header</header>
		<footer>site footer</footer>
		<p>Visible paragraph.</p>
	</body></html>`

	ex, err := goquery.NewExtractor().Extract(html)

	require.NoError(t, err)
	require.NotNil(t, ex.TextContent)
	text := *ex.TextContent
	assert.Contains(t, text, "Visible paragraph.")
	assert.NotContains(t, text, "secret")
	assert.NotContains(t, text, "display: none")
	assert.NotContains(t, text, "nav links")
	assert.NotContains(t, text, "site header")
	assert.NotContains(t, text, "site footer")
}

func TestExtractor_TextContentAbsentWhenEmpty(t *testing.T) {
	t.Parallel()

	ex, err := goquery.NewExtractor().Extract(`<html><body><script>x()</script></body></html>`)

	require.NoError(t, err)
	assert.Nil(t, ex.TextContent)
	assert.Nil(t, ex.Length)
}

func TestExtractor_TextContentJoinsBlocksWithNewlines(t *testing.T) {
	t.Parallel()

	html := `<html><body><p>First block.</p><p>Second block.</p></body></html>`

	ex, err := goquery.NewExtractor().Extract(html)

	require.NoError(t, err)
	require.NotNil(t, ex.TextContent)
	assert.Equal(t, "First block.\nSecond block.", *ex.TextContent)
	require.NotNil(t, ex.Length)
	assert.Equal(t, len("First block.\nSecond block."), *ex.Length)
}

func TestExtractor_PublishedTimeFallbackChain(t *testing.T) {
	t.Parallel()

	t.Run("article:published_time meta wins", func(t *testing.T) {
		t.Parallel()

		html := `<html><head>
			<meta property="article:published_time" content="2026-01-02T03:04:05Z">
			<meta name="publication_date" content="2026-01-01">
		</head><body><time datetime="2025-12-31">then</time></body></html>`

		ex, err := goquery.NewExtractor().Extract(html)

		require.NoError(t, err)
		require.NotNil(t, ex.PublishedTime)
		assert.Equal(t, "2026-01-02T03:04:05Z", *ex.PublishedTime)
	})

	t.Run("publication_date meta next", func(t *testing.T) {
		t.Parallel()

		html := `<html><head><meta name="publication_date" content="2026-01-01"></head><body><time datetime="2025-12-31">then</time></body></html>`

		ex, err := goquery.NewExtractor().Extract(html)

		require.NoError(t, err)
		require.NotNil(t, ex.PublishedTime)
		assert.Equal(t, "2026-01-01", *ex.PublishedTime)
	})

	t.Run("time element datetime last", func(t *testing.T) {
		t.Parallel()

		html := `<html><body><time datetime="2025-12-31">then</time></body></html>`

		ex, err := goquery.NewExtractor().Extract(html)

		require.NoError(t, err)
		require.NotNil(t, ex.PublishedTime)
		assert.Equal(t, "2025-12-31", *ex.PublishedTime)
	})

	t.Run("absent otherwise", func(t *testing.T) {
		t.Parallel()

		ex, err := goquery.NewExtractor().Extract(`<html><body><p>x</p></body></html>`)

		require.NoError(t, err)
		assert.Nil(t, ex.PublishedTime)
	})
}

func TestExtractor_MetaMap(t *testing.T) {
	t.Parallel()

	t.Run("collects og and twitter tags with rewritten prefixes", func(t *testing.T) {
		t.Parallel()

		html := `<html><head>
			<meta property="og:title" content="OG Title">
			<meta property="og:image" content="https://example.com/i.png">
			<meta name="twitter:card" content="summary">
			<meta name="twitter:creator" content="@jane">
			<meta name="description" content="not social">
		</head></html>`

		ex, err := goquery.NewExtractor().Extract(html)

		require.NoError(t, err)
		assert.Equal(t, map[string]string{
			"og_title":        "OG Title",
			"og_image":        "https://example.com/i.png",
			"twitter_card":    "summary",
			"twitter_creator": "@jane",
		}, ex.Meta)
	})

	t.Run("nil when none found", func(t *testing.T) {
		t.Parallel()

		ex, err := goquery.NewExtractor().Extract(`<html><head><meta name="description" content="d"></head></html>`)

		require.NoError(t, err)
		assert.Nil(t, ex.Meta)
	})
}

func TestExtractor_EndToEndSample(t *testing.T) {
	t.Parallel()

	html := `<html lang="en"><head><title>T</title><meta name="description" content="D"></head><body><article><p>Body</p></article></body></html>`

	ex, err := goquery.NewExtractor().Extract(html)

	require.NoError(t, err)
	require.NotNil(t, ex.Title)
	assert.Equal(t, "T", *ex.Title)
	require.NotNil(t, ex.Excerpt)
	assert.Equal(t, "D", *ex.Excerpt)
	require.NotNil(t, ex.Lang)
	assert.Equal(t, "en", *ex.Lang)
	require.NotNil(t, ex.Content)
	assert.Contains(t, *ex.Content, "<article")
	assert.Contains(t, *ex.Content, "Body")
	require.NotNil(t, ex.TextContent)
	assert.Contains(t, *ex.TextContent, "Body")
	assert.Nil(t, ex.PublishedTime)
}
