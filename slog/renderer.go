// Package slog provides logging decorators for the domain interfaces.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/pagesnap"
)

// Ensure LoggingRenderer implements pagesnap.Renderer.
var _ pagesnap.Renderer = (*LoggingRenderer)(nil)

// LoggingRenderer wraps a Renderer with debug logging.
type LoggingRenderer struct {
	next   pagesnap.Renderer
	logger *slog.Logger
}

// NewLoggingRenderer creates a new LoggingRenderer.
func NewLoggingRenderer(next pagesnap.Renderer, logger *slog.Logger) *LoggingRenderer {
	return &LoggingRenderer{next: next, logger: logger}
}

// Render logs the URL being rendered and delegates to the wrapped renderer.
func (r *LoggingRenderer) Render(ctx context.Context, req pagesnap.RenderRequest) (res *pagesnap.RenderResult, err error) {
	defer func(begin time.Time) {
		var bytes int
		var screenshot bool
		if res != nil {
			bytes = len(res.HTML)
			screenshot = res.ScreenshotTaken
		}
		r.logger.Info("render",
			"url", req.URL,
			"bytes", bytes,
			"screenshot", screenshot,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return r.next.Render(ctx, req)
}

// Close delegates to the wrapped renderer.
func (r *LoggingRenderer) Close() error {
	return r.next.Close()
}
