// Package http exposes the article pipeline over HTTP.
package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/fwojciec/pagesnap"
)

// Server wires HTTP handlers to the article service.
type Server struct {
	router   chi.Router
	service  pagesnap.ArticleService
	defaults Defaults
	logger   *slog.Logger
	metrics  http.Handler
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithLogger sets the logger used by the request middleware.
func WithLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetricsHandler mounts a metrics endpoint at /metrics.
func WithMetricsHandler(h http.Handler) ServerOption {
	return func(s *Server) {
		s.metrics = h
	}
}

// NewServer constructs a Server with middleware and routes.
func NewServer(service pagesnap.ArticleService, defaults Defaults, opts ...ServerOption) *Server {
	s := &Server{
		service:  service,
		defaults: defaults,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoverMiddleware)

	r.Get("/", s.index)
	r.Get("/health", s.health)
	r.Get("/api/article", s.getArticle)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	s.router = r
	return s
}

// Handler returns the router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) getArticle(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	url := query.Get("url")
	if url == "" {
		writeDetail(w, http.StatusBadRequest, "missing_parameter", "Missing required parameter: url")
		return
	}

	result, err := s.service.Fetch(r.Context(), pagesnap.FetchRequest{
		URL:    url,
		Config: ParseConfig(query, s.defaults),
		Params: flattenParams(query),
	})
	if err != nil {
		if pagesnap.ErrorCode(err) == pagesnap.EINVALID {
			writeDetail(w, http.StatusBadRequest, "missing_parameter", pagesnap.ErrorMessage(err))
			return
		}
		s.logger.Error("article fetch failed", "url", url, "error", err)
		writeDetail(w, http.StatusInternalServerError, "fetch_error", pagesnap.ErrorMessage(err))
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "pagesnap",
	})
}

func (s *Server) index(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"service": "pagesnap",
		"version": "1.0.0",
		"endpoints": map[string]any{
			"/api/article": map[string]any{
				"method":      "GET",
				"description": "Fetch article content and metadata from a URL",
				"parameters": map[string]string{
					"url": "The URL to fetch (required)",
				},
				"example": "/api/article?url=https://en.wikipedia.org/wiki/web_scraping",
			},
			"/health": map[string]any{
				"method":      "GET",
				"description": "Health check endpoint",
			},
		},
	})
}

// detail is one entry of the error envelope.
type detail struct {
	Type string `json:"type"`
	Msg  string `json:"msg"`
}

func writeDetail(w http.ResponseWriter, status int, typ, msg string) {
	writeJSON(w, status, map[string][]detail{
		"detail": {{Type: typ, Msg: msg}},
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Default().Error("write JSON failed", "error", err)
	}
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := uuid.NewString()
		w.Header().Set("X-Request-ID", reqID)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)
		s.logger.Info("request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic recovered", "error", rec)
				writeDetail(w, http.StatusInternalServerError, "fetch_error", "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}
