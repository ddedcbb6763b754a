package pagesnap

import "context"

// RenderRequest describes a single page render.
type RenderRequest struct {
	URL    string
	Config RequestConfig

	// ScreenshotPath is where the renderer should write a PNG screenshot
	// when Config.Screenshot is set. Empty disables screenshots.
	ScreenshotPath string
}

// RenderResult is the outcome of a successful render.
type RenderResult struct {
	// FinalURL is the page URL after redirects.
	FinalURL string

	// HTML is the rendered document snapshot.
	HTML string

	// ScreenshotTaken reports whether a screenshot was written to
	// RenderRequest.ScreenshotPath. Screenshot failures are non-fatal.
	ScreenshotTaken bool
}

// Renderer loads a URL in a browser-like environment and returns the
// resulting document and final URL. Renders can block for seconds; the
// context controls timeout and cancellation. Implementations must release
// page resources even when the context is canceled mid-render.
type Renderer interface {
	Render(ctx context.Context, req RenderRequest) (*RenderResult, error)

	// Close releases browser resources. Must be called when the Renderer
	// is no longer needed.
	Close() error
}

// DomainLimiter throttles renders per target domain.
type DomainLimiter interface {
	// Wait blocks until the rate limit allows a request to the domain.
	// Returns an error if the context is canceled before the wait completes.
	Wait(ctx context.Context, domain string) error
}
