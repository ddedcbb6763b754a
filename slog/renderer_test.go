package slog_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/fwojciec/pagesnap"
	"github.com/fwojciec/pagesnap/mock"
	pslog "github.com/fwojciec/pagesnap/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingRenderer_Render(t *testing.T) {
	t.Parallel()

	t.Run("logs render with bytes and duration", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.Renderer{
			RenderFn: func(ctx context.Context, req pagesnap.RenderRequest) (*pagesnap.RenderResult, error) {
				return &pagesnap.RenderResult{FinalURL: req.URL, HTML: "<html>content</html>"}, nil
			},
		}

		renderer := pslog.NewLoggingRenderer(inner, logger)
		res, err := renderer.Render(context.Background(), pagesnap.RenderRequest{URL: "https://example.com/post"})

		require.NoError(t, err)
		assert.Equal(t, "<html>content</html>", res.HTML)
		output := buf.String()
		assert.Contains(t, output, "render")
		assert.Contains(t, output, "url=https://example.com/post")
		assert.Contains(t, output, "bytes=20")
		assert.Contains(t, output, "duration=")
	})

	t.Run("logs error on failure", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.Renderer{
			RenderFn: func(ctx context.Context, req pagesnap.RenderRequest) (*pagesnap.RenderResult, error) {
				return nil, errors.New("network error")
			},
		}

		renderer := pslog.NewLoggingRenderer(inner, logger)
		_, err := renderer.Render(context.Background(), pagesnap.RenderRequest{URL: "https://example.com/post"})

		require.Error(t, err)
		output := buf.String()
		assert.Contains(t, output, "render")
		assert.Contains(t, output, "err=\"network error\"")
	})
}

func TestLoggingRenderer_Close(t *testing.T) {
	t.Parallel()

	var closed bool
	inner := &mock.Renderer{
		CloseFn: func() error {
			closed = true
			return nil
		},
	}

	renderer := pslog.NewLoggingRenderer(inner, slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	require.NoError(t, renderer.Close())
	assert.True(t, closed)
}
