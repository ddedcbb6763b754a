// Package mock provides function-field mock implementations of the domain
// interfaces for use in tests.
package mock

import (
	"context"

	"github.com/fwojciec/pagesnap"
)

var _ pagesnap.Renderer = (*Renderer)(nil)

// Renderer is a mock implementation of pagesnap.Renderer.
type Renderer struct {
	RenderFn func(ctx context.Context, req pagesnap.RenderRequest) (*pagesnap.RenderResult, error)
	CloseFn  func() error
}

func (r *Renderer) Render(ctx context.Context, req pagesnap.RenderRequest) (*pagesnap.RenderResult, error) {
	return r.RenderFn(ctx, req)
}

func (r *Renderer) Close() error {
	if r.CloseFn == nil {
		return nil
	}
	return r.CloseFn()
}
