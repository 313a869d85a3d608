package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/aristath/fund-sentry/internal/config"
	"github.com/aristath/fund-sentry/internal/modules/analysis"
	"github.com/aristath/fund-sentry/internal/modules/holdings"
	"github.com/aristath/fund-sentry/internal/modules/reports"
	"github.com/aristath/fund-sentry/internal/scheduler"
)

// Config holds server configuration
type Config struct {
	Port      int
	Log       zerolog.Logger
	Config    *config.Config
	DevMode   bool
	Scheduler *scheduler.Scheduler

	Holdings *holdings.Handler
	Analysis *analysis.Handler
	Reports  *reports.Handler
}

// Server represents the HTTP server
type Server struct {
	router    *chi.Mux
	server    *http.Server
	log       zerolog.Logger
	cfg       *config.Config
	scheduler *scheduler.Scheduler
	startedAt time.Time
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		log:       cfg.Log.With().Str("component", "server").Logger(),
		cfg:       cfg.Config,
		scheduler: cfg.Scheduler,
		startedAt: time.Now(),
	}

	s.setupMiddleware(cfg.DevMode)
	s.setupRoutes(cfg)

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(devMode bool) {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)

	// Batch analysis endpoints pace themselves between upstream calls, so
	// the request timeout must cover a full batch rather than a single call
	s.router.Use(middleware.Timeout(10 * time.Minute))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes(cfg Config) {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Route("/system", func(r chi.Router) {
			r.Get("/status", s.handleSystemStatus)
		})

		r.Route("/holdings", func(r chi.Router) {
			r.Get("/", cfg.Holdings.HandleListHoldings)
			r.Post("/", cfg.Holdings.HandleSaveHolding)
			r.Get("/{fundCode}", cfg.Holdings.HandleGetHolding)
			r.Delete("/{fundCode}", cfg.Holdings.HandleDeleteHolding)
			r.Post("/{fundCode}/watch", cfg.Holdings.HandleMoveToWatchlist)
		})

		r.Route("/watchlist", func(r chi.Router) {
			r.Get("/", cfg.Holdings.HandleListWatchlist)
			r.Post("/", cfg.Holdings.HandleSaveWatch)
			r.Delete("/{fundCode}", cfg.Holdings.HandleDeleteWatch)
			r.Post("/{fundCode}/hold", cfg.Holdings.HandleMoveToHoldings)
		})

		r.Route("/analysis", func(r chi.Router) {
			r.Get("/{fundCode}", cfg.Analysis.HandleAnalyzeFund)
		})

		r.Route("/reports", func(r chi.Router) {
			r.Post("/run", cfg.Reports.HandleRun)
			r.Get("/latest", cfg.Reports.HandleLatest)
		})
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Int("port", s.cfg.Port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
