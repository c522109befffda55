package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/adfharrison1/go-blog/pkg/api"
	"github.com/adfharrison1/go-blog/pkg/config"
	"github.com/adfharrison1/go-blog/pkg/domain"
)

// Server holds references to the post store, router and logger
type Server struct {
	router  *mux.Router
	handler http.Handler
	store   domain.PostStore
	cfg     config.ServerConfig
	logger  *zap.Logger
}

// NewServer creates a new instance of Server with all routes registered
func NewServer(cfg config.ServerConfig, store domain.PostStore, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		router: mux.NewRouter(),
		store:  store,
		cfg:    cfg,
		logger: logger,
	}
	// CORS wraps the whole router so preflight requests are answered for
	// every path before route matching
	s.handler = corsMiddleware(cfg.AllowedOrigins)(s.router)

	apiHandler := api.NewHandler(store, logger)
	apiHandler.RegisterRoutes(s.router)

	// Recovery sits inside the logger so a panicking request is still logged
	middlewares := []mux.MiddlewareFunc{
		api.RequestIDMiddleware,
		s.requestLoggerMiddleware,
		s.recoveryMiddleware,
	}
	s.router.Use(middlewares...)

	// mux does not run Use middleware for unmatched requests
	s.router.NotFoundHandler = chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.logger.Warn("no route found",
			zap.String("request_id", api.RequestID(r.Context())),
			zap.String("method", r.Method), zap.String("path", r.URL.Path))
		api.WriteJSONError(w, http.StatusNotFound, fmt.Sprintf("no route for %s %s", r.Method, r.URL.Path))
	}), middlewares)
	s.router.MethodNotAllowedHandler = chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		api.WriteJSONError(w, http.StatusMethodNotAllowed, fmt.Sprintf("method %s not allowed on %s", r.Method, r.URL.Path))
	}), middlewares)

	return s
}

// chain wraps h so the first middleware runs outermost, as mux does
func chain(h http.Handler, middlewares []mux.MiddlewareFunc) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

// Router exposes the root handler: the mux.Router behind the CORS layer
func (s *Server) Router() http.Handler {
	return s.handler
}

// HTTPServer builds the http.Server with the configured timeouts
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         ":" + s.cfg.Port,
		Handler:      s.handler,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully and closes the store
func (s *Server) Run(ctx context.Context, shutdownTimeout time.Duration) error {
	httpServer := s.HTTPServer()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting blog server", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			if closeErr := s.store.Close(context.Background()); closeErr != nil {
				s.logger.Error("failed to close post store", zap.Error(closeErr))
			}
			return fmt.Errorf("server failed to start: %w", err)
		}
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	shutdownErr := httpServer.Shutdown(shutdownCtx)
	if err := s.store.Close(shutdownCtx); err != nil {
		s.logger.Error("failed to close post store", zap.Error(err))
	}
	if shutdownErr != nil {
		return fmt.Errorf("server forced to shutdown: %w", shutdownErr)
	}

	s.logger.Info("server exited")
	return nil
}
