package mock

import (
	"context"
	"time"

	"github.com/fwojciec/pagesnap"
)

var _ pagesnap.ArticleCache = (*ArticleCache)(nil)

// ArticleCache is a mock implementation of pagesnap.ArticleCache.
type ArticleCache struct {
	GetFn func(ctx context.Context, key string, ttl time.Duration) (*pagesnap.ArticleResult, bool)
	PutFn func(ctx context.Context, key string, result *pagesnap.ArticleResult) error
}

func (c *ArticleCache) Get(ctx context.Context, key string, ttl time.Duration) (*pagesnap.ArticleResult, bool) {
	return c.GetFn(ctx, key, ttl)
}

func (c *ArticleCache) Put(ctx context.Context, key string, result *pagesnap.ArticleResult) error {
	return c.PutFn(ctx, key, result)
}
