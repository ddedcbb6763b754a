package prometheus

import (
	"context"
	"time"

	"github.com/fwojciec/pagesnap"
)

// Ensure MetricsRenderer implements pagesnap.Renderer.
var _ pagesnap.Renderer = (*MetricsRenderer)(nil)

// MetricsRenderer wraps a Renderer with duration and in-flight metrics.
type MetricsRenderer struct {
	next    pagesnap.Renderer
	metrics *Metrics
}

// NewMetricsRenderer creates a new MetricsRenderer.
func NewMetricsRenderer(next pagesnap.Renderer, metrics *Metrics) *MetricsRenderer {
	return &MetricsRenderer{next: next, metrics: metrics}
}

// Render observes the render duration and delegates to the wrapped
// renderer.
func (r *MetricsRenderer) Render(ctx context.Context, req pagesnap.RenderRequest) (*pagesnap.RenderResult, error) {
	r.metrics.rendersInFlight.Inc()
	defer r.metrics.rendersInFlight.Dec()

	begin := time.Now()
	result, err := r.next.Render(ctx, req)

	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	r.metrics.renderDurationSeconds.WithLabelValues(outcome).Observe(time.Since(begin).Seconds())

	return result, err
}

// Close delegates to the wrapped renderer.
func (r *MetricsRenderer) Close() error {
	return r.next.Close()
}
