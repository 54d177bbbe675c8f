package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MatheusDSantossi/data-analyses-automate/internal/pipeline"
)

// Server exposes the analysis pipeline over HTTP for the web frontend.
type Server struct {
	controller *pipeline.Controller
	log        *slog.Logger
	maxUpload  int64
}

// Options configures the HTTP server.
type Options struct {
	// MaxUploadBytes caps spreadsheet uploads; 0 means 50MB.
	MaxUploadBytes int64
	AllowedOrigins []string
}

// New builds a Server around a pipeline controller.
func New(controller *pipeline.Controller, log *slog.Logger, opt Options) *Server {
	if log == nil {
		log = slog.Default()
	}
	if opt.MaxUploadBytes <= 0 {
		opt.MaxUploadBytes = 50 * 1024 * 1024
	}
	return &Server{controller: controller, log: log, maxUpload: opt.MaxUploadBytes}
}

// Router builds the chi router with middleware and all API routes.
func (s *Server) Router(opt Options) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	origins := opt.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", s.handleHealth)
	r.Post("/api/analyze", s.handleAnalyze)
	r.Get("/api/analysis", s.handleCurrentAnalysis)
	r.Post("/api/charts/{chartID}/regenerate", s.handleRegenerate)

	return r
}

// ListenAndServe runs the server until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string, opt Options) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(opt),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.log.Info("http server listening", "addr", addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
