package goquery

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// blankRun matches a newline, optional whitespace, and another newline —
// i.e. one or more blank lines between two text lines.
var blankRun = regexp.MustCompile(`\n\s*\n`)

// extractText returns the visible text of the document with script, style,
// nav, header and footer subtrees removed. Text nodes are trimmed and
// joined with single newlines; runs of blank lines collapse to exactly one.
// Returns "" when nothing visible remains.
//
// The function re-parses rawHTML into a disposable working copy so the
// caller's document is never mutated.
func extractText(rawHTML string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return ""
	}

	doc.Find("script, style, nav, header, footer").Remove()

	var parts []string
	for _, root := range doc.Nodes {
		collectText(root, &parts)
	}

	text := strings.Join(parts, "\n")
	text = blankRun.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// collectText appends the trimmed data of every text node under n.
func collectText(n *html.Node, parts *[]string) {
	if n.Type == html.TextNode {
		if t := strings.TrimSpace(n.Data); t != "" {
			*parts = append(*parts, t)
		}
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, parts)
	}
}

// outerHTML serializes the first node of s including the element itself.
func outerHTML(s *goquery.Selection) *string {
	if len(s.Nodes) == 0 {
		return nil
	}
	var b strings.Builder
	if err := html.Render(&b, s.Nodes[0]); err != nil {
		return nil
	}
	out := b.String()
	return &out
}
