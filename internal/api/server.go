// Package api serves the season model and the local bet store over HTTP.
package api

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/parlaydesk/tracker/internal/metrics"
	"github.com/parlaydesk/tracker/internal/store"
)

// Refresher runs one refresh cycle on demand.
type Refresher interface {
	RunOnce(ctx context.Context) error
}

// BetService is the local bet store.
type BetService interface {
	List(ctx context.Context) ([]store.Bet, error)
	Add(ctx context.Context, leg store.Leg) (store.Bet, error)
	Update(ctx context.Context, bet store.Bet) error
	Delete(ctx context.Context, id string) error
	Export(ctx context.Context, w io.Writer) error
	Import(ctx context.Context, r io.Reader) (int, error)
}

// Config holds server dependencies.
type Config struct {
	Port      int
	Logger    *slog.Logger
	Tracker   *metrics.Tracker
	Refresher Refresher

	// Bets is nil unless the local store is the data source
	Bets BetService

	// RateLimit is requests per second per client on mutating routes
	RateLimit float64
}

// Server is the HTTP server.
type Server struct {
	router    *chi.Mux
	server    *http.Server
	log       *slog.Logger
	tracker   *metrics.Tracker
	refresher Refresher
	bets      BetService
	limiter   *RateLimiter
	hub       *Hub
	port      int
}

// New creates a Server and subscribes its WebSocket hub to the tracker.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	burst := int(cfg.RateLimit)
	if burst < 5 {
		burst = 5
	}

	s := &Server{
		router:    chi.NewRouter(),
		log:       logger.With("component", "server"),
		tracker:   cfg.Tracker,
		refresher: cfg.Refresher,
		bets:      cfg.Bets,
		limiter:   NewRateLimiter(cfg.RateLimit, burst),
		hub:       NewHub(logger),
		port:      cfg.Port,
	}

	if m, ok := s.tracker.Model(); ok {
		s.hub.Broadcast(m)
	}
	s.tracker.Subscribe(s.hub.Broadcast)

	s.setupMiddleware()
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	// Not wrapped in a timeout: the connection is long-lived.
	s.router.Get("/ws", s.hub.ServeHTTP)

	s.router.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))

		r.Get("/status", s.handleStatus)
		r.Get("/season", s.handleSeason)
		r.Get("/months/{key}", s.handleMonth)
		r.Get("/parlays/{key}", s.handleParlay)

		r.With(s.limiter.Middleware).Post("/refresh", s.handleRefresh)

		if s.bets != nil {
			r.Route("/bets", func(r chi.Router) {
				r.Get("/", s.handleListBets)
				r.Get("/export", s.handleExportBets)

				r.Group(func(r chi.Router) {
					r.Use(s.limiter.Middleware)
					r.Post("/", s.handleAddBet)
					r.Post("/import", s.handleImportBets)
					r.Put("/{id}", s.handleUpdateBet)
					r.Delete("/{id}", s.handleDeleteBet)
				})
			})
		}
	})
}

// Start listens until Shutdown is called.
func (s *Server) Start() error {
	s.log.Info("http_server_starting", "port", s.port)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("listen: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("http_server_stopping")
	s.hub.Close()
	return s.server.Shutdown(ctx)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Debug("http_request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
