package services

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// defaultShutdownTimeout is the grace period for in-flight requests when the
// configuration does not override it.
const defaultShutdownTimeout = 10 * time.Second

// HTTPServer runs the HTTP transport (REST endpoints and the WebSocket
// upgrade path) as a lifecycle-managed service.
type HTTPServer struct {
	server          *http.Server
	shutdownTimeout time.Duration
	logger          zerolog.Logger
	running         bool
}

// NewHTTPServer creates an HTTPServer listening on addr and serving handler.
func NewHTTPServer(addr string, handler http.Handler, shutdownTimeout time.Duration, logger zerolog.Logger) *HTTPServer {
	if shutdownTimeout <= 0 {
		shutdownTimeout = defaultShutdownTimeout
	}
	return &HTTPServer{
		server: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
		},
		shutdownTimeout: shutdownTimeout,
		logger:          logger,
	}
}

// Start begins serving in a background goroutine.
func (h *HTTPServer) Start() error {
	if h.running {
		h.logger.Warn().Msg("HTTP server is already running")
		return errors.New("http server is already running")
	}

	h.running = true
	go func() {
		if err := h.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			h.logger.Error().Err(err).Msg("HTTP server terminated unexpectedly")
		}
	}()

	h.logger.Info().Str("addr", h.server.Addr).Msg("HTTP server started")
	return nil
}

// Stop drains in-flight requests and shuts the listener down.
func (h *HTTPServer) Stop() error {
	if !h.running {
		h.logger.Warn().Msg("HTTP server is not running")
		return errors.New("http server is not running")
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.shutdownTimeout)
	defer cancel()

	if err := h.server.Shutdown(ctx); err != nil {
		h.logger.Error().Err(err).Msg("HTTP server shutdown failed")
		return err
	}

	h.running = false
	h.logger.Info().Msg("HTTP server stopped")
	return nil
}
