package server

import (
	"context"
	"crypto/tls"
	stderrors "errors"
	"fmt"
	"net/http"
	_ "net/http/pprof" // Registers pprof handlers on http.DefaultServeMux
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/quic-go/quic-go"
	"github.com/quic-go/quic-go/http3"
	"github.com/sirupsen/logrus"

	"github.com/zsiec/livedash/internal/config"
	"github.com/zsiec/livedash/internal/dashboard"
	"github.com/zsiec/livedash/internal/errors"
	"github.com/zsiec/livedash/internal/health"
	"github.com/zsiec/livedash/internal/status"
)

const healthCheckInterval = 30 * time.Second

// StatusProvider builds the status payloads the API serves.
type StatusProvider interface {
	Twitch(ctx context.Context) (*status.TwitchStatus, error)
	YouTube(ctx context.Context) (*status.YouTubeStatus, error)
}

// Server serves the status API, health endpoints and the dashboard page
// over HTTP/1.1, and over HTTP/3 when TLS files are configured.
type Server struct {
	config       *config.ServerConfig
	router       *mux.Router
	http3Server  *http3.Server
	httpServer   *http.Server
	logger       *logrus.Logger
	healthMgr    *health.Manager
	errorHandler *errors.ErrorHandler
	statuses     StatusProvider
	layout       dashboard.Layout
	pageRefresh  time.Duration

	routesOnce       sync.Once
	additionalRoutes []func(*mux.Router)
}

// New creates a server. Health checkers are registered on healthMgr by the
// caller.
func New(cfg *config.ServerConfig, log *logrus.Logger, statuses StatusProvider, healthMgr *health.Manager) *Server {
	if healthMgr == nil {
		healthMgr = health.NewManager(log)
	}
	return &Server{
		config:           cfg,
		router:           mux.NewRouter(),
		logger:           log,
		healthMgr:        healthMgr,
		errorHandler:     errors.NewErrorHandler(log),
		statuses:         statuses,
		layout:           dashboard.DefaultLayout(),
		pageRefresh:      10 * time.Second,
		additionalRoutes: make([]func(*mux.Router), 0),
	}
}

// Handler returns the fully configured router.
func (s *Server) Handler() http.Handler {
	s.routesOnce.Do(s.setupRoutes)
	return s.router
}

// Start serves until ctx is done, then shuts down.
func (s *Server) Start(ctx context.Context) error {
	handler := s.Handler()

	go s.healthMgr.StartPeriodicChecks(ctx, healthCheckInterval)

	errCh := make(chan error, 2)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.HTTPPort),
		Handler:      handler,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}
	go func() {
		s.logger.WithField("port", s.config.HTTPPort).Info("Starting HTTP server")
		if err := s.httpServer.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	if s.config.HTTP3Enabled() {
		if err := s.startHTTP3Server(handler, errCh); err != nil {
			return err
		}
	}

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	}
}

func (s *Server) startHTTP3Server(handler http.Handler, errCh chan<- error) error {
	cert, err := tls.LoadX509KeyPair(s.config.TLSCertFile, s.config.TLSKeyFile)
	if err != nil {
		return fmt.Errorf("failed to load TLS certificates: %w", err)
	}

	s.http3Server = &http3.Server{
		Addr:    fmt.Sprintf(":%d", s.config.HTTP3Port),
		Handler: handler,
		TLSConfig: http3.ConfigureTLSConfig(&tls.Config{
			MinVersion:   tls.VersionTLS13,
			Certificates: []tls.Certificate{cert},
		}),
		QUICConfig: &quic.Config{
			MaxIncomingStreams: s.config.MaxIncomingStreams,
			MaxIdleTimeout:     s.config.MaxIdleTimeout,
		},
	}

	go func() {
		s.logger.WithField("port", s.config.HTTP3Port).Info("Starting HTTP/3 server")
		if err := s.http3Server.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http3 server: %w", err)
		}
	}()
	return nil
}

// Shutdown gracefully stops both listeners.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server")

	var errs []error
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("http server: %w", err))
		}
	}
	// http3.Server.Close does not take a context.
	if s.http3Server != nil {
		if err := s.http3Server.Close(); err != nil {
			errs = append(errs, fmt.Errorf("http3 server: %w", err))
		}
	}
	if err := stderrors.Join(errs...); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	s.logger.Info("Server shutdown complete")
	return nil
}

// HealthManager returns the server's health manager.
func (s *Server) HealthManager() *health.Manager {
	return s.healthMgr
}

// RegisterRoutes adds route handlers; call before Handler or Start.
func (s *Server) RegisterRoutes(registerFunc func(*mux.Router)) {
	s.additionalRoutes = append(s.additionalRoutes, registerFunc)
}

// GetRouter returns the router for testing.
func (s *Server) GetRouter() *mux.Router {
	return s.router
}
