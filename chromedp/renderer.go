// Package chromedp provides an alternative Renderer backed by the
// chromedp driver. Compared to the rod backend it reuses a single exec
// allocator and bounds concurrent renders with a slot limiter.
package chromedp

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/security"
	"github.com/chromedp/chromedp"

	"github.com/fwojciec/pagesnap"
)

// Ensure Renderer implements pagesnap.Renderer at compile time.
var _ pagesnap.Renderer = (*Renderer)(nil)

// DefaultTimeout bounds navigation when the request does not carry its
// own timeout.
const DefaultTimeout = 60 * time.Second

// Config controls the behavior of the chromedp renderer.
type Config struct {
	// MaxParallel bounds concurrent renders. Zero means unbounded.
	MaxParallel int
	// ScriptsDir is the directory user scripts are loaded from.
	ScriptsDir string
	Logger     *slog.Logger
}

// Renderer renders pages with headless Chrome via chromedp. Every render
// runs in its own tab, so the Incognito request option is a no-op for
// this backend. Resource-type filtering is likewise not supported here;
// use the rod backend when either matters.
type Renderer struct {
	cfg         Config
	limiter     chan struct{}
	allocator   context.Context
	allocCancel context.CancelFunc
}

// NewRenderer creates a Renderer backed by a shared exec allocator.
// Close must be called when the Renderer is no longer needed.
func NewRenderer(cfg Config) (*Renderer, error) {
	if cfg.MaxParallel < 0 {
		return nil, fmt.Errorf("max parallel must be >= 0")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	var limiter chan struct{}
	if cfg.MaxParallel > 0 {
		limiter = make(chan struct{}, cfg.MaxParallel)
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", "new"),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("hide-scrollbars", true),
		chromedp.Flag("enable-automation", false),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)

	return &Renderer{
		cfg:         cfg,
		limiter:     limiter,
		allocator:   allocCtx,
		allocCancel: allocCancel,
	}, nil
}

// Render navigates to the requested URL and returns the rendered page.
func (r *Renderer) Render(ctx context.Context, req pagesnap.RenderRequest) (*pagesnap.RenderResult, error) {
	if err := r.acquire(ctx); err != nil {
		return nil, err
	}
	defer r.release()

	cfg := req.Config

	taskCtx, taskCancel := chromedp.NewContext(r.allocator)
	defer taskCancel()

	timeout := DefaultTimeout
	if cfg.Timeout > 0 {
		timeout = time.Duration(cfg.Timeout) * time.Millisecond
	}
	taskCtx, cancel := context.WithTimeout(taskCtx, timeout)
	defer cancel()

	// Cancel the tab when the caller gives up.
	stop := context.AfterFunc(ctx, taskCancel)
	defer stop()

	var (
		html     string
		finalURL string
	)
	actions := []chromedp.Action{
		r.pageSetupAction(cfg),
		chromedp.Navigate(req.URL),
		chromedp.WaitReady("body", chromedp.ByQuery),
	}
	actions = append(actions, r.userScriptActions(cfg)...)
	if cfg.Sleep > 0 {
		actions = append(actions, chromedp.Sleep(time.Duration(cfg.Sleep)*time.Millisecond))
	}
	if cfg.ScrollDown > 0 {
		actions = append(actions,
			chromedp.Evaluate(fmt.Sprintf("window.scrollBy(0, %d)", cfg.ScrollDown), nil),
			chromedp.Sleep(500*time.Millisecond),
		)
	}
	actions = append(actions,
		chromedp.Location(&finalURL),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)

	var screenshot []byte
	if req.ScreenshotPath != "" {
		actions = append(actions, chromedp.CaptureScreenshot(&screenshot))
	}

	if err := chromedp.Run(taskCtx, actions...); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("chromedp run: %w", err)
	}

	result := &pagesnap.RenderResult{
		FinalURL: finalURL,
		HTML:     html,
	}
	if len(screenshot) > 0 {
		result.ScreenshotTaken = r.writeScreenshot(req.ScreenshotPath, screenshot)
	}
	return result, nil
}

// pageSetupAction applies pre-navigation settings from the request
// config in a single action.
func (r *Renderer) pageSetupAction(cfg pagesnap.RequestConfig) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		if err := network.Enable().Do(ctx); err != nil {
			return fmt.Errorf("enable network domain: %w", err)
		}
		if cfg.IgnoreHTTPSErrors {
			if err := security.SetIgnoreCertificateErrors(true).Do(ctx); err != nil {
				return fmt.Errorf("ignore certificate errors: %w", err)
			}
		}
		if cfg.UserAgent != "" {
			if err := emulation.SetUserAgentOverride(cfg.UserAgent).Do(ctx); err != nil {
				return fmt.Errorf("set user-agent: %w", err)
			}
		}
		if cfg.Locale != "" {
			if err := emulation.SetLocaleOverride().WithLocale(cfg.Locale).Do(ctx); err != nil {
				return fmt.Errorf("set locale: %w", err)
			}
		}
		if cfg.Timezone != "" {
			if err := emulation.SetTimezoneOverride(cfg.Timezone).Do(ctx); err != nil {
				return fmt.Errorf("set timezone: %w", err)
			}
		}
		if cfg.ViewportWidth != nil && cfg.ViewportHeight != nil {
			if err := chromedp.EmulateViewport(int64(*cfg.ViewportWidth), int64(*cfg.ViewportHeight)).Do(ctx); err != nil {
				return fmt.Errorf("set viewport: %w", err)
			}
		}
		headers := ParseHeaders(cfg.ExtraHTTPHeaders)
		if cfg.HTTPCredentials != "" {
			encoded := base64.StdEncoding.EncodeToString([]byte(cfg.HTTPCredentials))
			headers["Authorization"] = "Basic " + encoded
		}
		if len(headers) > 0 {
			if err := network.SetExtraHTTPHeaders(headers).Do(ctx); err != nil {
				return fmt.Errorf("set extra headers: %w", err)
			}
		}
		return nil
	})
}

// userScriptActions loads each configured script from the scripts
// directory and evaluates it against the page. Script failures are
// logged and skipped so a broken script cannot fail the whole render.
func (r *Renderer) userScriptActions(cfg pagesnap.RequestConfig) []chromedp.Action {
	if cfg.UserScripts == "" || r.cfg.ScriptsDir == "" {
		return nil
	}

	var actions []chromedp.Action
	for _, name := range strings.Split(cfg.UserScripts, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		actions = append(actions, chromedp.ActionFunc(func(ctx context.Context) error {
			src, err := os.ReadFile(filepath.Join(r.cfg.ScriptsDir, name))
			if err != nil {
				r.cfg.Logger.Warn("user script not readable", "script", name, "error", err)
				return nil
			}
			if err := chromedp.Evaluate(string(src), nil).Do(ctx); err != nil {
				r.cfg.Logger.Warn("user script failed", "script", name, "error", err)
			}
			return nil
		}))
	}
	if cfg.UserScriptsTimeout > 0 {
		actions = append(actions, chromedp.Sleep(time.Duration(cfg.UserScriptsTimeout)*time.Millisecond))
	}
	return actions
}

// writeScreenshot persists captured screenshot bytes. Failures are
// logged rather than propagated so the article result can still be
// served.
func (r *Renderer) writeScreenshot(path string, data []byte) bool {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		r.cfg.Logger.Warn("screenshot dir not writable", "path", path, "error", err)
		return false
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		r.cfg.Logger.Warn("screenshot write failed", "path", path, "error", err)
		return false
	}
	return true
}

// Close cancels the allocator context, shutting down the browser.
func (r *Renderer) Close() error {
	r.allocCancel()
	return nil
}

func (r *Renderer) acquire(ctx context.Context) error {
	if r.limiter == nil {
		return nil
	}
	select {
	case r.limiter <- struct{}{}:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("render slot wait canceled: %w", ctx.Err())
	}
}

func (r *Renderer) release() {
	if r.limiter == nil {
		return
	}
	select {
	case <-r.limiter:
	default:
	}
}

// ParseHeaders converts a "k1:v1;k2:v2" header specification into the
// map the network domain expects. Malformed segments are skipped.
func ParseHeaders(spec string) network.Headers {
	headers := network.Headers{}
	for _, segment := range strings.Split(spec, ";") {
		key, value, ok := strings.Cut(segment, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		headers[key] = strings.TrimSpace(value)
	}
	return headers
}
