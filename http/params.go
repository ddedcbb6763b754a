package http

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/fwojciec/pagesnap"
)

// Defaults holds the server-level default value for every request
// option. Query parameters overlay these per request.
type Defaults struct {
	Cache              bool
	FullContent        bool
	Screenshot         bool
	UserScripts        string
	UserScriptsTimeout int
	Incognito          bool
	Timeout            int
	WaitUntil          string
	Sleep              int
	Resource           string
	ViewportWidth      int
	ViewportHeight     int
	ScreenWidth        int
	ScreenHeight       int
	Device             string
	ScrollDown         int
	IgnoreHTTPSErrors  bool
	UserAgent          string
	Locale             string
	Timezone           string
	HTTPCredentials    string
	ExtraHTTPHeaders   string
}

// ParseConfig builds the effective request config from query parameters,
// falling back to the server defaults for anything absent. Unparseable
// values fall back to the default rather than erroring.
func ParseConfig(values url.Values, d Defaults) pagesnap.RequestConfig {
	return pagesnap.RequestConfig{
		UseCache:           parseBool(values.Get("cache"), d.Cache),
		FullContent:        parseBool(values.Get("full-content"), d.FullContent),
		Screenshot:         parseBool(values.Get("screenshot"), d.Screenshot),
		UserScripts:        stringParam(values, "user-scripts", d.UserScripts),
		UserScriptsTimeout: parseInt(values.Get("user-scripts-timeout"), d.UserScriptsTimeout),
		Incognito:          parseBool(values.Get("incognito"), d.Incognito),
		Timeout:            parseInt(values.Get("timeout"), d.Timeout),
		WaitUntil:          stringParam(values, "wait-until", d.WaitUntil),
		Sleep:              parseInt(values.Get("sleep"), d.Sleep),
		Resource:           stringParam(values, "resource", d.Resource),
		ViewportWidth:      parseIntPtr(values.Get("viewport-width"), d.ViewportWidth),
		ViewportHeight:     parseIntPtr(values.Get("viewport-height"), d.ViewportHeight),
		ScreenWidth:        parseIntPtr(values.Get("screen-width"), d.ScreenWidth),
		ScreenHeight:       parseIntPtr(values.Get("screen-height"), d.ScreenHeight),
		Device:             stringParam(values, "device", d.Device),
		ScrollDown:         parseInt(values.Get("scroll-down"), d.ScrollDown),
		IgnoreHTTPSErrors:  parseBool(values.Get("ignore-https-errors"), d.IgnoreHTTPSErrors),
		UserAgent:          stringParam(values, "user-agent", d.UserAgent),
		Locale:             stringParam(values, "locale", d.Locale),
		Timezone:           stringParam(values, "timezone", d.Timezone),
		HTTPCredentials:    stringParam(values, "http-credentials", d.HTTPCredentials),
		ExtraHTTPHeaders:   stringParam(values, "extra-http-headers", d.ExtraHTTPHeaders),
	}
}

// flattenParams keeps the first value of each query parameter for the
// result's query echo.
func flattenParams(values url.Values) map[string]string {
	params := make(map[string]string, len(values))
	for key := range values {
		params[key] = values.Get(key)
	}
	return params
}

func parseBool(value string, def bool) bool {
	if value == "" {
		return def
	}
	switch strings.ToLower(value) {
	case "true", "1", "yes":
		return true
	default:
		return false
	}
}

func parseInt(value string, def int) int {
	if value == "" {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return def
	}
	return n
}

// parseIntPtr treats a zero default as "unset" and returns nil for it.
func parseIntPtr(value string, def int) *int {
	n := parseInt(value, def)
	if n == 0 {
		return nil
	}
	return &n
}

// stringParam returns the parameter's value when the key is present,
// even if empty, so a request can clear a server default.
func stringParam(values url.Values, key, def string) string {
	if values.Has(key) {
		return values.Get(key)
	}
	return def
}
