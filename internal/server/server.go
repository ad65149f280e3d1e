// Package server runs the cardgrid preview server.
//
// Pages are server-side rendered through the same pipeline the CLI
// uses, and they satisfy the DOM contract the loader consumes: a grid
// container, post-card articles, a rel=next link, and the pagination
// JSON block. Pointing the engine at its own preview server therefore
// exercises the full fetch loop, which is how the integration tests
// work.
//
// Content comes from the configured upstream blog, or from a built-in
// demo post set when demo mode is enabled.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/masonworks/cardgrid/internal/config"
	"github.com/masonworks/cardgrid/pkg/card"
	"github.com/masonworks/cardgrid/pkg/content"
	"github.com/masonworks/cardgrid/pkg/errors"
	"github.com/masonworks/cardgrid/pkg/loader"
	"github.com/masonworks/cardgrid/pkg/pipeline"
	"github.com/masonworks/cardgrid/pkg/render"
)

// PageData is one page of cards as a Source reports it.
type PageData struct {
	Cards     []card.Card
	Container content.ContainerKind
	Page      int
	Pages     int
	Next      string // next page address, empty at the end of the trail
}

// Source provides the cards the preview server renders.
type Source interface {
	// Page returns one page of the trail, 1-based.
	Page(ctx context.Context, n int) (PageData, error)

	// Category returns one capped batch of cards for a category key.
	Category(ctx context.Context, key string) ([]card.Card, error)
}

// Server is the preview HTTP server.
type Server struct {
	cfg    config.Config
	source Source
	logger *log.Logger
	router chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server's logger.
func WithLogger(logger *log.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithSource overrides the content source, mainly for tests.
func WithSource(src Source) Option {
	return func(s *Server) { s.source = src }
}

// New creates a preview server for the given configuration. The source
// defaults to the built-in demo set in demo mode, otherwise to the
// configured upstream blog.
func New(cfg config.Config, opts ...Option) (*Server, error) {
	s := &Server{
		cfg:    cfg,
		logger: log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.source == nil {
		if cfg.Server.Demo {
			s.source = newDemoSource(cfg.Content.PerPage)
		} else {
			src, err := newUpstreamSource(cfg)
			if err != nil {
				return nil, err
			}
			s.source = src
		}
	}

	s.router = s.routes()
	return s, nil
}

// Handler returns the server's HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe runs the server until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("preview server listening", "addr", s.cfg.Server.Addr, "demo", s.cfg.Server.Demo)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("shutting down preview server")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)
	r.Use(s.logRequests)

	r.Get("/", s.handlePage)
	r.Get("/page/{n}", s.handlePage)
	r.Get("/category/{key}", s.handleCategory)
	r.Get("/api/layout", s.handleLayout)
	r.Get("/healthz", s.handleHealth)
	r.Get("/img/{name}", s.handleImage)

	return r
}

// logRequests tags each request with an id and logs one line for it
// through the server's logger. The id goes back to the client so a log
// line can be matched to the response that produced it.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := uuid.NewString()
		w.Header().Set("X-Request-Id", id)
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"id", id,
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start))
	})
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	n := 1
	if raw := chi.URLParam(r, "n"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			s.writeError(w, errors.New(errors.ErrCodeInvalidPage, "invalid page %q", raw))
			return
		}
		n = parsed
	}

	data, err := s.source.Page(r.Context(), n)
	if err != nil {
		s.writeError(w, err)
		return
	}

	scene, err := s.scene(r.Context(), data, s.layoutOptions())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeHTML(w, scene)
}

func (s *Server) handleCategory(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if err := errors.ValidateCategoryKey(key); err != nil {
		s.writeError(w, err)
		return
	}

	cards, err := s.source.Category(r.Context(), key)
	if err != nil {
		s.writeError(w, err)
		return
	}

	data := PageData{Cards: cards, Container: content.ContainerMasonry, Page: 1, Pages: 1}
	scene, err := s.scene(r.Context(), data, s.layoutOptions())
	if err != nil {
		s.writeError(w, err)
		return
	}
	scene.Title = fmt.Sprintf("%s: %s", s.title(), key)
	s.writeHTML(w, scene)
}

// handleLayout serves the computed layout as JSON, the debug view of
// what the SSR pages position.
func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	opts := s.layoutOptions()

	q := r.URL.Query()
	if raw := q.Get("width"); raw != "" {
		width, err := strconv.ParseFloat(raw, 64)
		if err != nil || width <= 0 {
			s.writeError(w, errors.New(errors.ErrCodeInvalidViewport, "invalid width %q", raw))
			return
		}
		opts.Width = width
	}
	if mode := q.Get("mode"); mode != "" {
		if err := pipeline.ValidateMode(mode); err != nil {
			s.writeError(w, err)
			return
		}
		opts.Mode = mode
	}
	if raw := q.Get("seed"); raw != "" {
		seed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "invalid seed %q", raw))
			return
		}
		opts.Seed = seed
	}

	n := 1
	if raw := q.Get("page"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			s.writeError(w, errors.New(errors.ErrCodeInvalidPage, "invalid page %q", raw))
			return
		}
		n = parsed
	}

	data, err := s.source.Page(r.Context(), n)
	if err != nil {
		s.writeError(w, err)
		return
	}

	scene, err := s.scene(r.Context(), data, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}

	payload, err := render.RenderJSON(scene)
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_, _ = w.Write(payload)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// scene runs the layout stage over one page of cards.
func (s *Server) scene(ctx context.Context, data PageData, opts pipeline.Options) (render.Scene, error) {
	fetched := pipeline.Fetched{
		Cards:     data.Cards,
		Container: data.Container,
		Cursor: loader.Cursor{
			Page:    data.Page,
			Pages:   data.Pages,
			HasNext: data.Next != "",
			NextURL: data.Next,
		},
	}
	scene, err := pipeline.ComputeScene(ctx, fetched, opts)
	if err != nil {
		return render.Scene{}, err
	}
	scene.Title = s.title()
	return scene, nil
}

func (s *Server) layoutOptions() pipeline.Options {
	return pipeline.Options{
		Mode:   s.cfg.Layout.Mode,
		Width:  s.cfg.Layout.Width,
		Seed:   s.cfg.Layout.Seed,
		Logger: s.logger,
	}
}

func (s *Server) title() string {
	if s.cfg.Site.Title != "" {
		return s.cfg.Site.Title
	}
	if s.cfg.Server.Demo {
		return "cardgrid demo"
	}
	return "cardgrid"
}

func (s *Server) writeHTML(w http.ResponseWriter, scene render.Scene) {
	page, err := render.RenderHTML(scene)
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page)
}

// writeError maps error codes to HTTP statuses.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidCategory, errors.ErrCodeInvalidPage,
		errors.ErrCodeInvalidViewport, errors.ErrCodeInvalidFormat:
		status = http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodePageNotFound, errors.ErrCodeCategoryNotFound:
		status = http.StatusNotFound
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	}
	http.Error(w, errors.UserMessage(err), status)
}
