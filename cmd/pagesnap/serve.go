package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/fwojciec/pagesnap"
	"github.com/fwojciec/pagesnap/article"
	"github.com/fwojciec/pagesnap/bloom"
	cdp "github.com/fwojciec/pagesnap/chromedp"
	"github.com/fwojciec/pagesnap/fs"
	"github.com/fwojciec/pagesnap/goquery"
	pshttp "github.com/fwojciec/pagesnap/http"
	"github.com/fwojciec/pagesnap/prometheus"
	"github.com/fwojciec/pagesnap/readability"
	"github.com/fwojciec/pagesnap/rod"
	pslog "github.com/fwojciec/pagesnap/slog"
	"github.com/fwojciec/pagesnap/sqlite"
	"github.com/fwojciec/pagesnap/xxhash"
)

// bloomCapacity sizes the known-key filter for the fs cache backend.
const bloomCapacity = 100_000

// ServeCmd is the "serve" subcommand.
type ServeCmd struct {
	Host string `env:"API_HOST" default:"0.0.0.0" help:"Listen address"`
	Port int    `env:"API_PORT" default:"3000" help:"Listen port"`

	Renderer      string  `enum:"rod,chromedp" env:"RENDERER" default:"rod" help:"Browser automation backend"`
	Extractor     string  `enum:"goquery,readability" env:"EXTRACTOR" default:"goquery" help:"HTML extraction backend"`
	MaxParallel   int     `env:"MAX_PARALLEL" default:"4" help:"Concurrent render limit (chromedp backend only)"`
	RatePerDomain float64 `name:"rate-per-domain" env:"RATE_PER_DOMAIN" default:"1" help:"Renders per second per domain"`

	CacheBackend string `name:"cache-backend" enum:"fs,sqlite" env:"CACHE_BACKEND" default:"fs" help:"Cache storage backend"`
	CacheDir     string `env:"CACHE_DIR" default:"cache" help:"Directory for the fs cache backend"`
	CacheDB      string `env:"CACHE_DB" default:"pagesnap.db" help:"Database path for the sqlite cache backend"`
	CacheTTL     int    `env:"DEFAULT_CACHE_TTL" default:"3600" help:"Cache TTL in seconds"`

	UserScriptsDir string `env:"USER_SCRIPTS_DIR" default:"user_scripts" help:"Directory user scripts are loaded from"`
	ScreenshotsDir string `env:"SCREENSHOTS_DIR" default:"screenshots" help:"Directory screenshots are written to"`

	DefaultCache              bool   `env:"DEFAULT_CACHE" help:"Default for the cache parameter"`
	DefaultFullContent        bool   `env:"DEFAULT_FULL_CONTENT" help:"Default for the full-content parameter"`
	DefaultScreenshot         bool   `env:"DEFAULT_SCREENSHOT" help:"Default for the screenshot parameter"`
	DefaultUserScripts        string `env:"DEFAULT_USER_SCRIPTS" help:"Default for the user-scripts parameter"`
	DefaultUserScriptsTimeout int    `env:"DEFAULT_USER_SCRIPTS_TIMEOUT" help:"Default for the user-scripts-timeout parameter"`
	DefaultIncognito          bool   `env:"DEFAULT_INCOGNITO" default:"true" negatable:"" help:"Default for the incognito parameter"`
	DefaultTimeout            int    `env:"DEFAULT_TIMEOUT" default:"60000" help:"Default navigation timeout in milliseconds"`
	DefaultWaitUntil          string `env:"DEFAULT_WAIT_UNTIL" default:"domcontentloaded" help:"Default for the wait-until parameter"`
	DefaultSleep              int    `env:"DEFAULT_SLEEP" help:"Default post-load sleep in milliseconds"`
	DefaultResource           string `env:"DEFAULT_RESOURCE" help:"Default allowed resource types"`
	DefaultViewportWidth      int    `env:"DEFAULT_VIEWPORT_WIDTH" help:"Default viewport width"`
	DefaultViewportHeight     int    `env:"DEFAULT_VIEWPORT_HEIGHT" help:"Default viewport height"`
	DefaultScreenWidth        int    `env:"DEFAULT_SCREEN_WIDTH" help:"Default screen width"`
	DefaultScreenHeight       int    `env:"DEFAULT_SCREEN_HEIGHT" help:"Default screen height"`
	DefaultDevice             string `env:"DEFAULT_DEVICE" default:"Desktop Chrome" help:"Default device name"`
	DefaultScrollDown         int    `env:"DEFAULT_SCROLL_DOWN" help:"Default scroll distance in pixels"`
	DefaultIgnoreHTTPSErrors  bool   `env:"DEFAULT_IGNORE_HTTPS_ERRORS" default:"true" negatable:"" help:"Ignore certificate errors by default"`
	DefaultUserAgent          string `env:"DEFAULT_USER_AGENT" help:"Default user agent override"`
	DefaultLocale             string `env:"DEFAULT_LOCALE" help:"Default browser locale"`
	DefaultTimezone           string `env:"DEFAULT_TIMEZONE" help:"Default browser timezone"`
	DefaultHTTPCredentials    string `env:"DEFAULT_HTTP_CREDENTIALS" help:"Default basic auth credentials (username:password)"`
	DefaultExtraHTTPHeaders   string `env:"DEFAULT_EXTRA_HTTP_HEADERS" help:"Default extra headers (key1:value1;key2:value2)"`
}

// Run wires the service and serves HTTP until the context is canceled.
func (c *ServeCmd) Run(deps *Dependencies) error {
	logger := slog.New(slog.NewJSONHandler(deps.Stdout, nil))
	metrics := prometheus.NewMetrics()

	cache, closeCache, err := c.buildCache(logger)
	if err != nil {
		return err
	}
	defer closeCache()
	cache = prometheus.NewMetricsCache(pslog.NewLoggingCache(cache, logger), metrics)

	renderer, err := c.buildRenderer(logger)
	if err != nil {
		fmt.Fprintln(deps.Stderr, "Hint: Chrome or Chromium must be installed")
		return fmt.Errorf("failed to start browser: %w", err)
	}
	renderer = prometheus.NewMetricsRenderer(pslog.NewLoggingRenderer(renderer, logger), metrics)
	defer renderer.Close()

	service := &article.Service{
		Renderer:       renderer,
		Extractor:      c.buildExtractor(),
		Keys:           xxhash.NewDeriver(),
		Cache:          cache,
		Limiter:        article.NewDomainLimiter(c.RatePerDomain),
		Logger:         logger,
		TTL:            time.Duration(c.CacheTTL) * time.Second,
		ScreenshotsDir: c.ScreenshotsDir,
	}

	server := pshttp.NewServer(service, c.defaults(),
		pshttp.WithLogger(logger),
		pshttp.WithMetricsHandler(metrics.Handler()),
	)

	addr := net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
	srv := &http.Server{
		Addr:              addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", addr, "renderer", c.Renderer, "extractor", c.Extractor, "cache_backend", c.CacheBackend)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-deps.Ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// buildCache constructs the configured cache backend. The fs backend is
// fronted by a bloom filter seeded from the keys already on disk; the
// sqlite backend is not, since it has no cheap key listing.
func (c *ServeCmd) buildCache(logger *slog.Logger) (pagesnap.ArticleCache, func(), error) {
	switch c.CacheBackend {
	case "sqlite":
		db := sqlite.NewDB(c.CacheDB)
		if err := db.Open(); err != nil {
			return nil, nil, fmt.Errorf("failed to open cache database at %q: %w", c.CacheDB, err)
		}
		return sqlite.NewCache(db, sqlite.WithLogger(logger)), func() { _ = db.Close() }, nil
	default:
		store := fs.NewCache(c.CacheDir, fs.WithLogger(logger))
		seed, err := store.Keys()
		if err != nil {
			logger.Warn("could not seed key filter from cache dir", "dir", c.CacheDir, "error", err)
		}
		return bloom.NewKeyFilter(store, seed, bloomCapacity, 0.01), func() {}, nil
	}
}

func (c *ServeCmd) buildRenderer(logger *slog.Logger) (pagesnap.Renderer, error) {
	switch c.Renderer {
	case "chromedp":
		return cdp.NewRenderer(cdp.Config{
			MaxParallel: c.MaxParallel,
			ScriptsDir:  c.UserScriptsDir,
			Logger:      logger,
		})
	default:
		return rod.NewRenderer(rod.WithScriptsDir(c.UserScriptsDir), rod.WithLogger(logger))
	}
}

func (c *ServeCmd) buildExtractor() pagesnap.Extractor {
	if c.Extractor == "readability" {
		return readability.NewExtractor()
	}
	return goquery.NewExtractor()
}

func (c *ServeCmd) defaults() pshttp.Defaults {
	return pshttp.Defaults{
		Cache:              c.DefaultCache,
		FullContent:        c.DefaultFullContent,
		Screenshot:         c.DefaultScreenshot,
		UserScripts:        c.DefaultUserScripts,
		UserScriptsTimeout: c.DefaultUserScriptsTimeout,
		Incognito:          c.DefaultIncognito,
		Timeout:            c.DefaultTimeout,
		WaitUntil:          c.DefaultWaitUntil,
		Sleep:              c.DefaultSleep,
		Resource:           c.DefaultResource,
		ViewportWidth:      c.DefaultViewportWidth,
		ViewportHeight:     c.DefaultViewportHeight,
		ScreenWidth:        c.DefaultScreenWidth,
		ScreenHeight:       c.DefaultScreenHeight,
		Device:             c.DefaultDevice,
		ScrollDown:         c.DefaultScrollDown,
		IgnoreHTTPSErrors:  c.DefaultIgnoreHTTPSErrors,
		UserAgent:          c.DefaultUserAgent,
		Locale:             c.DefaultLocale,
		Timezone:           c.DefaultTimezone,
		HTTPCredentials:    c.DefaultHTTPCredentials,
		ExtraHTTPHeaders:   c.DefaultExtraHTTPHeaders,
	}
}
