// Package goquery implements the article extraction pipeline on top of
// CSS-selector queries over the parsed document.
package goquery

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/pagesnap"
)

// Ensure Extractor implements pagesnap.Extractor at compile time.
var _ pagesnap.Extractor = (*Extractor)(nil)

// Extractor extracts article fields from HTML using ordered fallback
// chains. Each chain is a slice of pure rules evaluated in sequence; the
// first rule yielding a non-empty value wins. Extractor is stateless and
// safe for concurrent use.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// rule extracts a candidate value for one field from the document.
type rule func(doc *goquery.Document) string

// Fallback chains, in evaluation order.
var (
	titleRules = []rule{
		documentTitle,
		metaProperty("og:title"),
	}
	excerptRules = []rule{
		metaName("description"),
		metaProperty("og:description"),
	}
	bylineRules = []rule{
		metaName("author"),
		metaProperty("article:author"),
	}
	siteNameRules = []rule{
		metaProperty("og:site_name"),
	}
	publishedTimeRules = []rule{
		metaProperty("article:published_time"),
		metaName("publication_date"),
		timeDatetime,
	}
)

// contentClassNames are conventional container class names tried, in order,
// when no article or main element exists.
var contentClassNames = []string{"article", "post", "entry", "content", "main-content"}

// Extract processes raw HTML and returns the extraction-relevant article
// fields. It never mutates the parsed document; text extraction works on a
// disposable second parse.
func (e *Extractor) Extract(rawHTML string) (*pagesnap.Extraction, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, pagesnap.Errorf(pagesnap.EINVALID, "failed to parse HTML: %v", err)
	}

	ex := &pagesnap.Extraction{
		Title:         firstNonEmpty(doc, titleRules),
		Excerpt:       firstNonEmpty(doc, excerptRules),
		Byline:        firstNonEmpty(doc, bylineRules),
		SiteName:      firstNonEmpty(doc, siteNameRules),
		PublishedTime: firstNonEmpty(doc, publishedTimeRules),
		Lang:          rootAttr(doc, "lang"),
		Dir:           rootAttr(doc, "dir"),
		Content:       extractContent(doc),
		Meta:          extractMeta(doc),
	}

	if text := extractText(rawHTML); text != "" {
		length := utf8.RuneCountInString(text)
		ex.TextContent = &text
		ex.Length = &length
	}

	return ex, nil
}

// firstNonEmpty evaluates rules in order and returns the first non-empty
// value, or nil when the field is absent from the document.
func firstNonEmpty(doc *goquery.Document, rules []rule) *string {
	for _, r := range rules {
		if v := r(doc); v != "" {
			return &v
		}
	}
	return nil
}

// documentTitle returns the trimmed text of the title element.
func documentTitle(doc *goquery.Document) string {
	return strings.TrimSpace(doc.Find("title").First().Text())
}

// metaProperty returns a rule reading the content of the first meta element
// with the given property attribute.
func metaProperty(property string) rule {
	sel := `meta[property="` + property + `"]`
	return func(doc *goquery.Document) string {
		content, _ := doc.Find(sel).First().Attr("content")
		return content
	}
}

// metaName returns a rule reading the content of the first meta element
// with the given name attribute.
func metaName(name string) rule {
	sel := `meta[name="` + name + `"]`
	return func(doc *goquery.Document) string {
		content, _ := doc.Find(sel).First().Attr("content")
		return content
	}
}

// timeDatetime returns the datetime attribute of the first time element.
func timeDatetime(doc *goquery.Document) string {
	datetime, _ := doc.Find("time").First().Attr("datetime")
	return datetime
}

// rootAttr returns the given attribute of the root html element.
func rootAttr(doc *goquery.Document, attr string) *string {
	if v, ok := doc.Find("html").First().Attr(attr); ok && v != "" {
		return &v
	}
	return nil
}

// extractContent returns the outer markup of the best-matched content
// block: an article element, then a main element, then the first div or
// section whose class attribute contains one of the conventional container
// names (case-insensitively).
func extractContent(doc *goquery.Document) *string {
	for _, tag := range []string{"article", "main"} {
		if s := doc.Find(tag).First(); s.Length() > 0 {
			return outerHTML(s)
		}
	}

	for _, name := range contentClassNames {
		var found *string
		doc.Find("div, section").EachWithBreak(func(_ int, s *goquery.Selection) bool {
			class, ok := s.Attr("class")
			if !ok || !strings.Contains(strings.ToLower(class), name) {
				return true
			}
			found = outerHTML(s)
			return false
		})
		if found != nil {
			return found
		}
	}

	return nil
}

// extractMeta collects Open Graph and Twitter-card metadata into one map,
// with namespace prefixes rewritten to og_ and twitter_. Returns nil, not
// an empty map, when the document carries neither.
func extractMeta(doc *goquery.Document) map[string]string {
	meta := make(map[string]string)

	doc.Find("meta").Each(func(_ int, s *goquery.Selection) {
		content, ok := s.Attr("content")
		if !ok || content == "" {
			return
		}
		if property, ok := s.Attr("property"); ok && strings.HasPrefix(property, "og:") {
			if name := strings.TrimPrefix(property, "og:"); name != "" {
				meta["og_"+name] = content
			}
		}
		if name, ok := s.Attr("name"); ok && strings.HasPrefix(name, "twitter:") {
			if card := strings.TrimPrefix(name, "twitter:"); card != "" {
				meta["twitter_"+card] = content
			}
		}
	})

	if len(meta) == 0 {
		return nil
	}
	return meta
}
