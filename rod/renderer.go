package rod

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fwojciec/pagesnap"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// Ensure Renderer implements pagesnap.Renderer at compile time.
var _ pagesnap.Renderer = (*Renderer)(nil)

// DefaultTimeout bounds navigation when the request does not carry its
// own timeout.
const DefaultTimeout = 60 * time.Second

// Renderer retrieves rendered HTML from URLs using Chrome browser
// automation. Pages are created per request and the underlying browser
// is recycled periodically by a BrowserManager.
//
// Renderer is safe for concurrent use by multiple goroutines.
type Renderer struct {
	manager    *BrowserManager
	scriptsDir string
	logger     *slog.Logger
	closed     atomic.Bool
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithScriptsDir sets the directory user scripts are loaded from.
func WithScriptsDir(dir string) Option {
	return func(r *Renderer) {
		r.scriptsDir = dir
	}
}

// WithLogger sets the logger used for non-fatal render events.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Renderer) {
		r.logger = logger
	}
}

// NewRenderer creates a Renderer backed by a fresh headless browser.
// Close must be called when the Renderer is no longer needed.
func NewRenderer(opts ...Option) (*Renderer, error) {
	r := &Renderer{logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}

	manager, err := NewBrowserManager(WithManagerLogger(r.logger))
	if err != nil {
		return nil, err
	}
	r.manager = manager

	return r, nil
}

// Render navigates to the requested URL, applies the browser settings
// from the request config, and returns the rendered page.
func (r *Renderer) Render(ctx context.Context, req pagesnap.RenderRequest) (*pagesnap.RenderResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.closed.Load() {
		return nil, pagesnap.Errorf(pagesnap.EINVALID, "renderer is closed")
	}

	cfg := req.Config

	browser := r.manager.Browser()
	cleanup := func() {}
	if cfg.Incognito {
		incognito, err := browser.Incognito()
		if err != nil {
			return nil, fmt.Errorf("creating incognito context: %w", err)
		}
		browser = incognito
		// Dispose only the incognito context; Close would take down the
		// shared browser.
		cleanup = func() {
			_ = proto.TargetDisposeBrowserContext{BrowserContextID: incognito.BrowserContextID}.Call(incognito)
		}
	}
	defer cleanup()

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("creating page: %w", err)
	}
	defer page.Close()

	timeout := DefaultTimeout
	if cfg.Timeout > 0 {
		timeout = time.Duration(cfg.Timeout) * time.Millisecond
	}
	page = page.Context(ctx).Timeout(timeout)

	if err := r.preparePage(page, cfg); err != nil {
		return nil, err
	}

	if cfg.Resource != "" {
		router := r.filterResources(page, cfg.Resource)
		defer func() { _ = router.Stop() }()
	}

	if err := r.navigate(page, req.URL, cfg.WaitUntil); err != nil {
		return nil, fmt.Errorf("navigating to %s: %w", req.URL, err)
	}

	r.runUserScripts(page, cfg)

	if cfg.Sleep > 0 {
		time.Sleep(time.Duration(cfg.Sleep) * time.Millisecond)
	}

	if cfg.ScrollDown > 0 {
		if _, err := page.Eval(`(px) => window.scrollBy(0, px)`, cfg.ScrollDown); err != nil {
			r.logger.Warn("scroll failed", "url", req.URL, "error", err)
		}
		// Give lazy-loaded content a moment to settle after scrolling.
		time.Sleep(500 * time.Millisecond)
	}

	info, err := page.Info()
	if err != nil {
		return nil, fmt.Errorf("reading page info: %w", err)
	}

	html, err := page.HTML()
	if err != nil {
		return nil, fmt.Errorf("reading page HTML: %w", err)
	}

	result := &pagesnap.RenderResult{
		FinalURL: info.URL,
		HTML:     html,
	}

	if req.ScreenshotPath != "" {
		result.ScreenshotTaken = r.screenshot(page, req.ScreenshotPath)
	}

	r.manager.IncrementPageCount()
	return result, nil
}

// preparePage applies pre-navigation settings: certificate handling,
// viewport, user agent, locale, timezone and headers.
func (r *Renderer) preparePage(page *rod.Page, cfg pagesnap.RequestConfig) error {
	if cfg.IgnoreHTTPSErrors {
		if err := (proto.SecuritySetIgnoreCertificateErrors{Ignore: true}).Call(page); err != nil {
			return fmt.Errorf("ignoring certificate errors: %w", err)
		}
	}

	if cfg.ViewportWidth != nil && cfg.ViewportHeight != nil {
		metrics := &proto.EmulationSetDeviceMetricsOverride{
			Width:             *cfg.ViewportWidth,
			Height:            *cfg.ViewportHeight,
			DeviceScaleFactor: 1,
		}
		if cfg.ScreenWidth != nil {
			metrics.ScreenWidth = cfg.ScreenWidth
		}
		if cfg.ScreenHeight != nil {
			metrics.ScreenHeight = cfg.ScreenHeight
		}
		if err := page.SetViewport(metrics); err != nil {
			return fmt.Errorf("setting viewport: %w", err)
		}
	}

	if cfg.UserAgent != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: cfg.UserAgent}); err != nil {
			return fmt.Errorf("setting user agent: %w", err)
		}
	}

	if cfg.Locale != "" {
		if err := (proto.EmulationSetLocaleOverride{Locale: cfg.Locale}).Call(page); err != nil {
			return fmt.Errorf("setting locale: %w", err)
		}
	}

	if cfg.Timezone != "" {
		if err := (proto.EmulationSetTimezoneOverride{TimezoneID: cfg.Timezone}).Call(page); err != nil {
			return fmt.Errorf("setting timezone: %w", err)
		}
	}

	headers := ParseHeaderList(cfg.ExtraHTTPHeaders)
	if cfg.HTTPCredentials != "" {
		encoded := base64.StdEncoding.EncodeToString([]byte(cfg.HTTPCredentials))
		headers = append(headers, "Authorization", "Basic "+encoded)
	}
	if len(headers) > 0 {
		if _, err := page.SetExtraHeaders(headers); err != nil {
			return fmt.Errorf("setting extra headers: %w", err)
		}
	}

	return nil
}

// filterResources blocks requests whose resource type is not in the
// comma-separated allow list. The document itself is always allowed.
// The caller must stop the returned router when the page is done.
func (r *Renderer) filterResources(page *rod.Page, allowList string) *rod.HijackRouter {
	allowed := map[string]bool{"document": true}
	for _, name := range strings.Split(allowList, ",") {
		if name = strings.TrimSpace(name); name != "" {
			allowed[strings.ToLower(name)] = true
		}
	}

	router := page.HijackRequests()
	_ = router.Add("*", "", func(h *rod.Hijack) {
		if allowed[strings.ToLower(string(h.Request.Type()))] {
			h.ContinueRequest(&proto.FetchContinueRequest{})
			return
		}
		h.Response.Fail(proto.NetworkErrorReasonBlockedByClient)
	})
	go router.Run()
	return router
}

// navigate loads the URL and waits for the lifecycle event the config
// asks for. An unrecognized wait-until value falls back to
// domcontentloaded; "commit" returns as soon as navigation starts.
func (r *Renderer) navigate(page *rod.Page, url, waitUntil string) error {
	var event proto.PageLifecycleEventName
	switch waitUntil {
	case "load":
		event = proto.PageLifecycleEventNameLoad
	case "networkidle":
		event = proto.PageLifecycleEventNameNetworkIdle
	case "commit":
		return page.Navigate(url)
	default:
		event = proto.PageLifecycleEventNameDOMContentLoaded
	}

	wait := page.WaitNavigation(event)
	if err := page.Navigate(url); err != nil {
		return err
	}
	wait()
	return nil
}

// runUserScripts evaluates each configured script against the page.
// Script failures are logged and skipped so a broken script cannot fail
// the whole render.
func (r *Renderer) runUserScripts(page *rod.Page, cfg pagesnap.RequestConfig) {
	if cfg.UserScripts == "" || r.scriptsDir == "" {
		return
	}

	for _, name := range strings.Split(cfg.UserScripts, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		src, err := os.ReadFile(filepath.Join(r.scriptsDir, name))
		if err != nil {
			r.logger.Warn("user script not readable", "script", name, "error", err)
			continue
		}
		if _, err := page.Eval(fmt.Sprintf("() => { %s }", src)); err != nil {
			r.logger.Warn("user script failed", "script", name, "error", err)
		}
	}

	if cfg.UserScriptsTimeout > 0 {
		time.Sleep(time.Duration(cfg.UserScriptsTimeout) * time.Millisecond)
	}
}

// screenshot captures the page to path. Screenshot failures are logged
// rather than propagated so the article result can still be served.
func (r *Renderer) screenshot(page *rod.Page, path string) bool {
	data, err := page.Screenshot(false, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		r.logger.Warn("screenshot capture failed", "path", path, "error", err)
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		r.logger.Warn("screenshot dir not writable", "path", path, "error", err)
		return false
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		r.logger.Warn("screenshot write failed", "path", path, "error", err)
		return false
	}
	return true
}

// ParseHeaderList converts a "k1:v1;k2:v2" header specification into the
// flat key/value list the browser protocol expects. Malformed segments
// are skipped.
func ParseHeaderList(spec string) []string {
	var pairs []string
	for _, segment := range strings.Split(spec, ";") {
		key, value, ok := strings.Cut(segment, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if key == "" {
			continue
		}
		pairs = append(pairs, key, value)
	}
	return pairs
}

// Close releases browser resources. Close is safe to call multiple times.
func (r *Renderer) Close() error {
	r.closed.Store(true)
	return r.manager.Close()
}

// LauncherPID returns the process ID of the browser launcher.
// This method exists for testing purposes to verify proper cleanup.
func (r *Renderer) LauncherPID() int {
	return r.manager.LauncherPID()
}
