package api

import (
	"context"
	"errors"
	"fmt"
	"github.com/ZertGraf/customer-roster/internal/api/handler"
	"github.com/ZertGraf/customer-roster/internal/api/middleware"
	"github.com/ZertGraf/customer-roster/internal/pkg/logger"
	"github.com/go-chi/chi/v5"
	"net/http"
	"time"
)

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// Handlers groups the route handlers mounted by the server.
type Handlers struct {
	Customer   *handler.CustomerHandler
	Directory  *handler.DirectoryHandler
	Navigation *handler.NavigationHandler

	// Readiness backs /ready; nil means always ready
	Readiness func(ctx context.Context) error
}

type HTTPServer struct {
	server *http.Server
	config *ServerConfig
	logger *logger.Logger
}

func NewHTTPServer(config *ServerConfig, handlers Handlers, logger *logger.Logger) *HTTPServer {
	router := NewRouter(handlers, logger)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler:      router,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	return &HTTPServer{
		server: server,
		config: config,
		logger: logger.Component("http"),
	}
}

func (s *HTTPServer) Start(_ context.Context) error {
	go func() {
		s.logger.Info("http server listening", "addr", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("http server failed", "error", err)
		}
	}()

	return nil
}

func (s *HTTPServer) Stop(ctx context.Context) error {
	s.logger.Info("stopping http server")
	if err := s.server.Shutdown(ctx); err != nil {
		s.logger.Error("http server shutdown failed", "error", err)
		return err
	}

	s.logger.Info("http server stopped")
	return nil
}

// NewRouter wires middleware and mounts every handler.
func NewRouter(handlers Handlers, logger *logger.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Security())
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(`{"status":"healthy"}`)); err != nil {
			logger.Warn("failed to write health response", "error", err)
		}
	})

	r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if handlers.Readiness != nil {
			if err := handlers.Readiness(r.Context()); err != nil {
				logger.Warn("readiness check failed", "error", err)
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(`{"status":"unavailable"}`))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ready"}`))
	})

	r.Mount("/navigation", handlers.Navigation.Routes())
	r.Mount("/customers", handlers.Customer.Routes())
	r.Mount("/directory", handlers.Directory.Routes())

	return r
}
