package pagesnap

import "context"

// ArticleResult is the normalized output for a rendered page.
//
// Nullable fields are pointers without omitempty so that absence is
// serialized as an explicit JSON null. Consumers can then distinguish
// "not present in source" from "not requested".
type ArticleResult struct {
	ID            string            `json:"id"`
	URL           string            `json:"url"`
	Domain        string            `json:"domain"`
	Title         *string           `json:"title"`
	Byline        *string           `json:"byline"`
	Excerpt       *string           `json:"excerpt"`
	SiteName      *string           `json:"siteName"`
	Content       *string           `json:"content"`
	TextContent   *string           `json:"textContent"`
	Length        *int              `json:"length"`
	Lang          *string           `json:"lang"`
	Dir           *string           `json:"dir"`
	PublishedTime *string           `json:"publishedTime"`
	FullContent   *string           `json:"fullContent"`
	Date          string            `json:"date"`
	Query         map[string]string `json:"query"`
	Meta          map[string]string `json:"meta"`
	ResultURI     string            `json:"resultUri"`
	ScreenshotURI *string           `json:"screenshotUri"`
}

// RequestConfig holds every request parameter that can affect the rendered
// artifact. It is an immutable per-request value; defaults come from the
// server configuration and query parameters overlay them.
//
// UseCache, HTTPCredentials and ExtraHTTPHeaders are excluded from cache key
// derivation: the first does not affect the rendered artifact and the latter
// two must not leak credentials into key material.
type RequestConfig struct {
	UseCache           bool
	FullContent        bool
	Screenshot         bool
	UserScripts        string // comma-separated script names
	UserScriptsTimeout int    // milliseconds
	Incognito          bool
	Timeout            int // navigation timeout, milliseconds
	WaitUntil          string
	Sleep              int // wait after load, milliseconds
	Resource           string
	ViewportWidth      *int
	ViewportHeight     *int
	ScreenWidth        *int
	ScreenHeight       *int
	Device             string
	ScrollDown         int // pixels
	IgnoreHTTPSErrors  bool
	UserAgent          string
	Locale             string
	Timezone           string
	HTTPCredentials    string
	ExtraHTTPHeaders   string
}

// FetchRequest is a single article request.
type FetchRequest struct {
	URL    string
	Config RequestConfig

	// Params echoes the original request parameters into the result's
	// query field.
	Params map[string]string
}

// ArticleService runs the cache-and-extraction pipeline for a single
// article request.
type ArticleService interface {
	Fetch(ctx context.Context, req FetchRequest) (*ArticleResult, error)
}

// KeyDeriver derives a stable cache key from a URL and its effective
// request configuration. Implementations must be pure: deterministic for
// identical inputs across process restarts and independent of field
// insertion order.
type KeyDeriver interface {
	Derive(url string, config RequestConfig) string
}
