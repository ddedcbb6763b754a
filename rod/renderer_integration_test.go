//go:build integration

package rod_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fwojciec/pagesnap"
	"github.com/fwojciec/pagesnap/rod"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderer_Render_ReturnsRenderedHTML(t *testing.T) {
	t.Parallel()

	// Serve a page that uses JavaScript to add content
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>Test Page</title></head>
<body>
<div id="content">Loading...</div>
<script>
document.getElementById('content').textContent = 'JavaScript Rendered';
</script>
</body>
</html>`))
	}))
	defer srv.Close()

	renderer, err := rod.NewRenderer()
	require.NoError(t, err)
	defer renderer.Close()

	res, err := renderer.Render(context.Background(), pagesnap.RenderRequest{
		URL:    srv.URL,
		Config: pagesnap.RequestConfig{WaitUntil: "load"},
	})

	require.NoError(t, err)
	assert.Contains(t, res.HTML, "JavaScript Rendered")
	assert.NotContains(t, res.HTML, "Loading...")
}

func TestRenderer_Render_ReportsFinalURLAfterRedirect(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/start", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/landed", http.StatusFound)
	})
	mux.HandleFunc("/landed", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><body>landed</body></html>`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	renderer, err := rod.NewRenderer()
	require.NoError(t, err)
	defer renderer.Close()

	res, err := renderer.Render(context.Background(), pagesnap.RenderRequest{
		URL:    srv.URL + "/start",
		Config: pagesnap.RequestConfig{WaitUntil: "load"},
	})

	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/landed", res.FinalURL)
}

func TestRenderer_Render_WritesScreenshot(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><body><h1>Screenshot Me</h1></body></html>`))
	}))
	defer srv.Close()

	renderer, err := rod.NewRenderer()
	require.NoError(t, err)
	defer renderer.Close()

	path := filepath.Join(t.TempDir(), "shot.png")
	res, err := renderer.Render(context.Background(), pagesnap.RenderRequest{
		URL:            srv.URL,
		Config:         pagesnap.RequestConfig{WaitUntil: "load"},
		ScreenshotPath: path,
	})

	require.NoError(t, err)
	assert.True(t, res.ScreenshotTaken)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestRenderer_Render_RunsUserScripts(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><body><div id="target">before</div></body></html>`))
	}))
	defer srv.Close()

	scriptsDir := t.TempDir()
	script := `document.getElementById('target').textContent = 'after';`
	require.NoError(t, os.WriteFile(filepath.Join(scriptsDir, "rewrite.js"), []byte(script), 0o644))

	renderer, err := rod.NewRenderer(rod.WithScriptsDir(scriptsDir))
	require.NoError(t, err)
	defer renderer.Close()

	res, err := renderer.Render(context.Background(), pagesnap.RenderRequest{
		URL: srv.URL,
		Config: pagesnap.RequestConfig{
			WaitUntil:   "load",
			UserScripts: "rewrite.js",
		},
	})

	require.NoError(t, err)
	assert.Contains(t, res.HTML, "after")
	assert.NotContains(t, res.HTML, ">before<")
}

func TestRenderer_Render_ContextCancellation(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {}
	}))
	defer srv.Close()

	renderer, err := rod.NewRenderer()
	require.NoError(t, err)
	defer renderer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = renderer.Render(ctx, pagesnap.RenderRequest{URL: srv.URL})

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRenderer_Render_TimeoutTriggersOnSlowPage(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><body>delayed</body></html>`))
	}))
	defer srv.Close()

	renderer, err := rod.NewRenderer()
	require.NoError(t, err)
	defer renderer.Close()

	_, err = renderer.Render(context.Background(), pagesnap.RenderRequest{
		URL:    srv.URL,
		Config: pagesnap.RequestConfig{Timeout: 100},
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRenderer_Close_Idempotent(t *testing.T) {
	t.Parallel()

	renderer, err := rod.NewRenderer()
	require.NoError(t, err)

	require.NoError(t, renderer.Close())
	require.NoError(t, renderer.Close())
}

func TestRenderer_Render_AfterClose_ReturnsError(t *testing.T) {
	t.Parallel()

	renderer, err := rod.NewRenderer()
	require.NoError(t, err)
	require.NoError(t, renderer.Close())

	_, err = renderer.Render(context.Background(), pagesnap.RenderRequest{URL: "http://example.com"})

	require.Error(t, err)
	assert.Equal(t, pagesnap.EINVALID, pagesnap.ErrorCode(err))
	assert.Contains(t, pagesnap.ErrorMessage(err), "closed")
}
