package article

import (
	"net/url"
	"time"

	"github.com/fwojciec/pagesnap"
	"github.com/fwojciec/pagesnap/xxhash"
)

// dateLayout renders the fetch timestamp. The trailing Z is appended as a
// literal so the format stays fixed regardless of host timezone.
const dateLayout = "2006-01-02T15:04:05.000000"

// AssembleInput carries everything the assembler combines into the final
// response envelope.
type AssembleInput struct {
	FinalURL      string
	OriginalURL   string
	HTML          string
	Extraction    *pagesnap.Extraction
	Config        pagesnap.RequestConfig
	Params        map[string]string // original request parameters
	ScreenshotURI *string
	Now           time.Time
}

// Assemble builds the complete ArticleResult from renderer output, the
// extraction partial and request metadata.
func Assemble(in AssembleInput) *pagesnap.ArticleResult {
	id := xxhash.Sum(in.FinalURL)

	ex := in.Extraction
	if ex == nil {
		ex = &pagesnap.Extraction{}
	}

	result := &pagesnap.ArticleResult{
		ID:            id,
		URL:           in.FinalURL,
		Domain:        domainOf(in.FinalURL),
		Title:         ex.Title,
		Byline:        ex.Byline,
		Excerpt:       ex.Excerpt,
		SiteName:      ex.SiteName,
		Content:       ex.Content,
		TextContent:   ex.TextContent,
		Length:        ex.Length,
		Lang:          ex.Lang,
		Dir:           ex.Dir,
		PublishedTime: ex.PublishedTime,
		Date:          in.Now.UTC().Format(dateLayout) + "Z",
		Query:         buildQuery(in.OriginalURL, in.Params),
		Meta:          ex.Meta,
		ResultURI:     "api://article/" + id,
		ScreenshotURI: in.ScreenshotURI,
	}

	if in.Config.FullContent {
		html := in.HTML
		result.FullContent = &html
	}

	return result
}

// domainOf returns the authority component of rawURL, or "" when it cannot
// be parsed.
func domainOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Host
}

// buildQuery overlays the non-url request parameters onto the original URL.
func buildQuery(originalURL string, params map[string]string) map[string]string {
	query := map[string]string{"url": originalURL}
	for k, v := range params {
		if k == "url" {
			continue
		}
		query[k] = v
	}
	return query
}
