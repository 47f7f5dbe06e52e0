package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/chatlens/chatlens/internal/logger"
	"github.com/chatlens/chatlens/internal/web/handlers"
)

// Config holds the HTTP server settings.
type Config struct {
	Port           int
	AllowedOrigins []string
}

// Server is the HTTP front of the parsing service.
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	config     Config
	log        *logger.Logger
}

// NewServer creates a server with all routes and middleware wired.
func NewServer(cfg Config, parse *handlers.ParseHandler, tasks *handlers.TasksHandler, hub *Hub, limiter *UploadLimiter, log *logger.Logger) *Server {
	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		log:    log,
	}
	s.setupMiddleware()
	s.setupRoutes(parse, tasks, hub, limiter)
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(120 * time.Second))
	s.router.Use(middleware.Compress(5))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.config.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
}

func (s *Server) setupRoutes(parse *handlers.ParseHandler, tasks *handlers.TasksHandler, hub *Hub, limiter *UploadLimiter) {
	s.router.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","message":"Parsing Service is running."}`))
	})

	s.router.Group(func(r chi.Router) {
		if limiter != nil {
			r.Use(limiter.Middleware)
		}
		r.Post("/parse", parse.Parse)
		r.Post("/parse/async", parse.ParseAsync)
	})

	s.router.Get("/tasks/{id}", tasks.Get)

	if hub != nil {
		s.router.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
			ServeWs(hub, w, r)
		})
	}
}

// Router exposes the handler, mainly for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start runs the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.config.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.log.Info().Int("port", s.config.Port).Msg("starting http server")
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
