package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/pageza/cookbooks/dashboard/config"
)

const idleTimeout = 60 * time.Second

// Server represents the HTTP server
type Server struct {
	http   *http.Server
	cfg    *config.Config
	logger *zap.Logger
}

// New creates a new server instance serving handler with the configured
// address and timeouts
func New(cfg *config.Config, handler http.Handler, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		http: &http.Server{
			Addr:              cfg.Addr(),
			Handler:           handler,
			ReadTimeout:       cfg.ReadTimeout,
			ReadHeaderTimeout: cfg.ReadTimeout,
			WriteTimeout:      cfg.WriteTimeout,
			IdleTimeout:       idleTimeout,
			ErrorLog:          zap.NewStdLog(logger.Named("http")),
		},
		cfg:    cfg,
		logger: logger,
	}
}

// Start serves until Shutdown is called. It returns nil after a graceful
// shutdown.
func (s *Server) Start() error {
	s.logger.Info("starting server", zap.String("addr", s.http.Addr), zap.String("environment", s.cfg.Environment.String()))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server, waiting at most the configured
// shutdown timeout for in-flight requests
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.ShutdownTimeout)
	defer cancel()

	s.logger.Info("shutting down server")
	return s.http.Shutdown(ctx)
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}
