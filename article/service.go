// Package article orchestrates the cache-and-extraction pipeline: consult
// the cache, render on a miss, extract article fields, assemble the
// response envelope, and persist the result best-effort.
package article

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fwojciec/pagesnap"
	"golang.org/x/sync/singleflight"
)

// DefaultRenderTimeout bounds a render when the request config carries no
// navigation timeout.
const DefaultRenderTimeout = 60 * time.Second

// renderGrace is added on top of the navigation timeout to leave room for
// post-navigation work (scripts, sleep, scroll, screenshot).
const renderGrace = 30 * time.Second

// Ensure Service implements pagesnap.ArticleService at compile time.
var _ pagesnap.ArticleService = (*Service)(nil)

// Service implements the article pipeline. All fields except Renderer,
// Extractor and Keys are optional.
type Service struct {
	Renderer  pagesnap.Renderer
	Extractor pagesnap.Extractor
	Keys      pagesnap.KeyDeriver
	Cache     pagesnap.ArticleCache
	Limiter   pagesnap.DomainLimiter
	Logger    *slog.Logger

	// TTL is the read-time expiration applied to cache lookups.
	TTL time.Duration

	// ScreenshotsDir is where renderers write <key>.png files. Empty
	// disables screenshots even when requested.
	ScreenshotsDir string

	// Now overrides the time source for tests.
	Now func() time.Time

	// flights collapses concurrent renders of the same cache key. The
	// on-disk last-write-wins race remains for separate processes sharing
	// a cache directory.
	flights singleflight.Group
}

// Fetch runs the pipeline for one request. Only renderer failures are
// fatal; cache problems degrade to a miss or a lost write, and extraction
// problems degrade to absent fields.
func (s *Service) Fetch(ctx context.Context, req pagesnap.FetchRequest) (*pagesnap.ArticleResult, error) {
	if req.URL == "" {
		return nil, pagesnap.Errorf(pagesnap.EINVALID, "Missing required parameter: url")
	}

	key := s.Keys.Derive(req.URL, req.Config)

	if req.Config.UseCache && s.Cache != nil {
		if result, ok := s.Cache.Get(ctx, key, s.TTL); ok {
			s.logger().Info("returning cached result", "url", req.URL, "key", key)
			return result, nil
		}
	}

	if s.Limiter != nil {
		if domain := domainOf(req.URL); domain != "" {
			if err := s.Limiter.Wait(ctx, domain); err != nil {
				return nil, err
			}
		}
	}

	// The render runs on its own timeout-derived context, detached from
	// any single caller, so canceling one waiter cannot poison a render
	// other waiters share.
	ch := s.flights.DoChan(key, func() (any, error) {
		return s.renderAndBuild(key, req)
	})

	select {
	case <-ctx.Done():
		// No cache entry is attributed to a canceled request; the shared
		// flight finishes (and persists) on its own if others still wait.
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*pagesnap.ArticleResult), nil
	}
}

func (s *Service) renderAndBuild(key string, req pagesnap.FetchRequest) (*pagesnap.ArticleResult, error) {
	timeout := DefaultRenderTimeout
	if req.Config.Timeout > 0 {
		timeout = time.Duration(req.Config.Timeout) * time.Millisecond
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout+renderGrace)
	defer cancel()

	rr := pagesnap.RenderRequest{URL: req.URL, Config: req.Config}
	if req.Config.Screenshot && s.ScreenshotsDir != "" {
		rr.ScreenshotPath = filepath.Join(s.ScreenshotsDir, key+".png")
	}

	s.logger().Info("fetching URL", "url", req.URL, "key", key)
	rendered, err := s.Renderer.Render(ctx, rr)
	if err != nil {
		return nil, pagesnap.Errorf(pagesnap.EUNAVAILABLE, "Failed to fetch URL: %v", err)
	}

	extraction, err := s.Extractor.Extract(rendered.HTML)
	if err != nil {
		// Extraction failures never abort the request; every extracted
		// field degrades to absent.
		s.logger().Warn("extraction failed", "url", req.URL, "err", err)
		extraction = &pagesnap.Extraction{}
	}

	var screenshotURI *string
	if rendered.ScreenshotTaken {
		uri := "file://screenshots/" + key + ".png"
		screenshotURI = &uri
	}

	result := Assemble(AssembleInput{
		FinalURL:      rendered.FinalURL,
		OriginalURL:   req.URL,
		HTML:          rendered.HTML,
		Extraction:    extraction,
		Config:        req.Config,
		Params:        req.Params,
		ScreenshotURI: screenshotURI,
		Now:           s.now(),
	})

	if s.Cache != nil {
		if err := s.Cache.Put(ctx, key, result); err != nil {
			// Best-effort write; the request still succeeds.
			s.logger().Warn("failed to save cache", "key", key, "err", err)
		}
	}

	return result, nil
}

func (s *Service) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
