package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"chatdeck/internal/config"
	"chatdeck/internal/confstore"
	"chatdeck/internal/logging"
	"chatdeck/internal/shell"
	"chatdeck/internal/uploads"
)

const (
	maxDocumentBytes = 4 << 20
	maxUploadMemory  = 32 << 20
	shutdownTimeout  = 5 * time.Second
)

// Server is the chatdeck HTTP API.
type Server struct {
	cfg    *config.Config
	logger *slog.Logger
	store  *confstore.Store
	saver  *uploads.Saver
	runner *shell.Runner
	router *chi.Mux

	listener net.Listener
	httpSrv  *http.Server
}

// New constructs the API server and its routes. Nothing listens until Start.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("server requires config")
	}
	logger = logging.NewComponentLogger(logger, "api-server")

	s := &Server{
		cfg:    cfg,
		logger: logger,
		store:  confstore.New(cfg.Paths.ConfigDir, confstore.WithLogger(logger)),
		saver:  uploads.NewSaver(cfg.Paths.UploadsDir, uploads.WithLogger(logger)),
		runner: shell.NewRunner(shell.WithShell(cfg.Exec.Shell), shell.WithLogger(logger)),
		router: chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()

	s.httpSrv = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       60 * time.Second,
		// Command output streams for as long as the command runs.
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}
	return s, nil
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RealIP)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)

	if len(s.cfg.API.AllowedOrigins) > 0 {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.cfg.API.AllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", requestIDHeader},
			ExposedHeaders: []string{requestIDHeader},
			MaxAge:         300,
		}))
	}

	s.router.Use(authMiddleware(s.cfg.API.Token))
}

func (s *Server) setupRoutes() {
	s.router.Route("/api", func(r chi.Router) {
		r.Get("/status", s.handleStatus)

		r.Post("/config/regenerate", s.handleRegenerate)
		r.Get("/config/{name}", s.handleGetConfig)
		r.Put("/config/{name}", s.handlePutConfig)

		r.Post("/uploads", s.handleUpload)
		r.Post("/exec", s.handleExec)
	})
}

// Handler returns the routed handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens on the configured bind address and serves until ctx is
// cancelled or Stop is called.
func (s *Server) Start(ctx context.Context) error {
	bind := strings.TrimSpace(s.cfg.API.Bind)
	if bind == "" {
		return errors.New("api bind address not configured")
	}
	listener, err := net.Listen("tcp", bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.httpSrv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = s.httpSrv.Shutdown(shutdownCtx)
	}()

	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

// Addr returns the listening address, or "" before Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Stop shuts the server down, waiting briefly for in-flight requests.
func (s *Server) Stop() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	_ = s.httpSrv.Shutdown(shutdownCtx)
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}
