package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/zsiec/livedash/internal/errors"
	"github.com/zsiec/livedash/internal/health"
	"github.com/zsiec/livedash/internal/logger"
	"github.com/zsiec/livedash/internal/status"
	"github.com/zsiec/livedash/pkg/version"
)

func (s *Server) setupRoutes() {
	s.router.Use(s.requestIDMiddleware)
	s.router.Use(logger.RequestLoggerMiddleware(s.logger))
	s.router.Use(s.recoveryMiddleware)
	s.router.Use(s.errorHandler.Middleware)
	s.router.Use(s.metricsMiddleware)
	s.router.Use(s.corsMiddleware)
	if s.config.HTTP3Enabled() {
		s.router.Use(s.altSvcMiddleware)
	}

	healthHandler := health.NewHandler(s.healthMgr)
	s.router.HandleFunc("/health", healthHandler.HandleHealth).Methods("GET")
	s.router.HandleFunc("/ready", healthHandler.HandleReady).Methods("GET")
	s.router.HandleFunc("/live", healthHandler.HandleLive).Methods("GET")

	s.router.HandleFunc("/version", s.handleVersion).Methods("GET")

	// Registered on the root router so a method mismatch reaches the 405
	// handler below instead of a subrouter's default 404.
	s.router.HandleFunc("/api/twitch", s.handleTwitch).Methods("GET", "OPTIONS")
	s.router.HandleFunc("/api/youtube", s.handleYouTube).Methods("GET", "OPTIONS")
	s.router.HandleFunc("/api/status", s.handleTwitch).Methods("GET", "OPTIONS")

	s.router.HandleFunc("/", s.handleDashboard).Methods("GET")

	if s.config.DebugEndpoints {
		s.setupDebugEndpoints()
	}

	for _, registerFunc := range s.additionalRoutes {
		registerFunc(s.router)
	}

	s.router.NotFoundHandler = http.HandlerFunc(s.errorHandler.HandleNotFound)
	s.router.MethodNotAllowedHandler = http.HandlerFunc(s.errorHandler.HandleMethodNotAllowed)
}

// handleTwitch serves the Twitch status for /api/twitch and /api/status.
func (s *Server) handleTwitch(w http.ResponseWriter, r *http.Request) {
	st, err := s.statuses.Twitch(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeStatus(w, r, st)
}

func (s *Server) handleYouTube(w http.ResponseWriter, r *http.Request) {
	st, err := s.statuses.YouTube(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeStatus(w, r, st)
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "public, max-age=3600")
	if err := s.writeJSON(w, http.StatusOK, version.GetInfo()); err != nil {
		s.logger.WithError(err).Error("Failed to encode version response")
	}
}

func (s *Server) setupDebugEndpoints() {
	s.logger.Info("Enabling debug endpoints")

	s.router.PathPrefix("/debug/pprof/").Handler(http.DefaultServeMux)
	s.router.HandleFunc("/debug/info", func(w http.ResponseWriter, r *http.Request) {
		info := map[string]interface{}{
			"protocols": map[string]bool{
				"http11": true,
				"http3":  s.config.HTTP3Enabled(),
			},
			"ports": map[string]int{
				"http":  s.config.HTTPPort,
				"http3": s.config.HTTP3Port,
			},
			"health": s.healthMgr.GetResults(),
		}
		_ = s.writeJSON(w, http.StatusOK, info)
	}).Methods("GET")
}

func (s *Server) writeStatus(w http.ResponseWriter, r *http.Request, v interface{}) {
	w.Header().Set("Cache-Control", "no-store")
	if err := s.writeJSON(w, http.StatusOK, v); err != nil {
		s.logger.WithError(err).Error("Failed to encode status response")
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// writeError maps status-service failures onto API errors.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	s.errorHandler.HandleError(w, r, toAppError(err))
}

func toAppError(err error) error {
	var upstream *status.UpstreamError
	switch {
	case errors.IsAppError(err):
		return err
	case stderrors.Is(err, status.ErrNoChannel):
		return errors.Wrap(err, errors.ErrorTypeInternal, "No channel data", http.StatusInternalServerError).
			WithCode("no_channel")
	case stderrors.Is(err, context.DeadlineExceeded):
		return errors.NewTimeoutError("Upstream request timed out")
	case stderrors.As(err, &upstream):
		return errors.WrapUpstreamError(err, upstream.API)
	default:
		return errors.WrapInternalError(err, "Failed to build status")
	}
}

// toAppErrorMessage is the client-facing message for err.
func toAppErrorMessage(err error) string {
	if appErr, ok := errors.GetAppError(toAppError(err)); ok {
		return appErr.Message
	}
	return err.Error()
}
