package mock

import (
	"context"

	"github.com/fwojciec/pagesnap"
)

var _ pagesnap.ArticleService = (*ArticleService)(nil)

// ArticleService is a mock implementation of pagesnap.ArticleService.
type ArticleService struct {
	FetchFn func(ctx context.Context, req pagesnap.FetchRequest) (*pagesnap.ArticleResult, error)
}

func (s *ArticleService) Fetch(ctx context.Context, req pagesnap.FetchRequest) (*pagesnap.ArticleResult, error) {
	return s.FetchFn(ctx, req)
}
