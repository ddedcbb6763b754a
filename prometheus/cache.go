package prometheus

import (
	"context"
	"time"

	"github.com/fwojciec/pagesnap"
)

// Ensure MetricsCache implements pagesnap.ArticleCache.
var _ pagesnap.ArticleCache = (*MetricsCache)(nil)

// MetricsCache wraps an ArticleCache with hit/miss/error counters.
type MetricsCache struct {
	next    pagesnap.ArticleCache
	metrics *Metrics
}

// NewMetricsCache creates a new MetricsCache.
func NewMetricsCache(next pagesnap.ArticleCache, metrics *Metrics) *MetricsCache {
	return &MetricsCache{next: next, metrics: metrics}
}

// Get counts the lookup outcome and delegates to the wrapped cache.
func (c *MetricsCache) Get(ctx context.Context, key string, ttl time.Duration) (*pagesnap.ArticleResult, bool) {
	result, ok := c.next.Get(ctx, key, ttl)
	if ok {
		c.metrics.cacheHitsTotal.Inc()
	} else {
		c.metrics.cacheMissesTotal.Inc()
	}
	return result, ok
}

// Put counts write failures and delegates to the wrapped cache.
func (c *MetricsCache) Put(ctx context.Context, key string, result *pagesnap.ArticleResult) error {
	err := c.next.Put(ctx, key, result)
	if err != nil {
		c.metrics.cacheWriteErrorsTotal.Inc()
	}
	return err
}
