package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/nguyentantai21042004/transcript-flow/internal/combiner"
	"github.com/nguyentantai21042004/transcript-flow/internal/config"
	"github.com/nguyentantai21042004/transcript-flow/internal/logger"
	"github.com/nguyentantai21042004/transcript-flow/internal/metrics"
	"github.com/nguyentantai21042004/transcript-flow/internal/processor"
	"github.com/nguyentantai21042004/transcript-flow/internal/tasks"
	"github.com/nguyentantai21042004/transcript-flow/internal/thumbnail"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Server struct {
	http   *http.Server
	logger logger.Logger
}

// Deps are the components behind the routes. Tasks and Thumbnails are optional;
// their routes are only mounted when set.
type Deps struct {
	Combiner   combiner.Combiner
	Processor  processor.Processor
	Tasks      tasks.Registry
	Thumbnails thumbnail.Generator
}

func NewServer(cfg config.HTTPConfig, deps Deps, version string, startTime time.Time, log logger.Logger) *Server {
	return &Server{
		http: &http.Server{
			Addr:         cfg.Addr,
			Handler:      NewRouter(cfg.AuthToken, deps, version, startTime, log),
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
		logger: log,
	}
}

// NewRouter wires middleware and routes.
func NewRouter(authToken string, deps Deps, version string, startTime time.Time, log logger.Logger) http.Handler {
	h := &handlers{
		combiner:   deps.Combiner,
		processor:  deps.Processor,
		tasks:      deps.Tasks,
		thumbnails: deps.Thumbnails,
		version:    version,
		startTime:  startTime,
	}

	r := chi.NewRouter()

	// Global middleware
	r.Use(RequestID)
	r.Use(Recoverer)
	r.Use(Logger(logger.Zerolog(log)))
	r.Use(metrics.InstrumentHandler)

	// Health and metrics: no auth
	r.Get("/api/v1/health", h.health)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(BearerAuth(authToken))
		r.Post("/api/v1/transcripts", h.createTranscript)
		r.Post("/api/v1/digests", h.createDigest)
		if h.tasks != nil {
			r.Post("/api/v1/tasks", h.submitTask)
			r.Get("/api/v1/tasks/{id}", h.getTask)
			r.Get("/api/v1/tasks/{id}/result", h.getTaskResult)
		}
		if h.thumbnails != nil {
			r.Post("/api/v1/thumbnails", h.createThumbnail)
		}
	})

	return r
}

func (s *Server) Start(ctx context.Context) error {
	s.logger.Info(ctx, "HTTP server listening on %s", s.http.Addr)
	err := s.http.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info(ctx, "HTTP server shutting down")
	return s.http.Shutdown(ctx)
}
