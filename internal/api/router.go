// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package api serves IPS conversion over HTTP.
package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/wingedpig/ips2crash/internal/api/handlers"
	"github.com/wingedpig/ips2crash/internal/api/middleware"
	"github.com/wingedpig/ips2crash/internal/crashes"
	"github.com/wingedpig/ips2crash/internal/events"
)

// ServerConfig holds configuration for the API server.
type ServerConfig struct {
	Host         string
	Port         int
	MaxBodyBytes int64 // Largest accepted upload; <= 0 means unlimited
}

// Dependencies holds all dependencies for API handlers.
type Dependencies struct {
	Reports *crashes.Manager // Report store; report routes are omitted when nil
	Events  events.EventBus  // Activity bus; the events routes are omitted when nil
	Log     zerolog.Logger
	Version string // Application version string
}

// NewRouter creates a new API router.
func NewRouter(cfg ServerConfig, deps Dependencies) *mux.Router {
	r := mux.NewRouter()

	// Apply global middleware
	r.Use(middleware.Logging(deps.Log))
	r.Use(middleware.Recovery(deps.Log))

	// API v1 routes
	api := r.PathPrefix("/api/v1").Subrouter()

	healthHandler := handlers.NewHealthHandler(deps.Version)
	api.HandleFunc("/health", healthHandler.Health).Methods("GET")

	convertHandler := handlers.NewConvertHandler(deps.Reports, deps.Events, cfg.MaxBodyBytes, deps.Log)
	api.HandleFunc("/convert", convertHandler.Convert).Methods("POST")
	api.HandleFunc("/inspect", convertHandler.Inspect).Methods("POST")

	// Report store handlers
	if deps.Reports != nil {
		reportsHandler := handlers.NewReportsHandler(deps.Reports, deps.Events)
		api.HandleFunc("/reports", reportsHandler.List).Methods("GET")
		api.HandleFunc("/reports", reportsHandler.Clear).Methods("DELETE")
		api.HandleFunc("/reports/newest", reportsHandler.Newest).Methods("GET")
		api.HandleFunc("/reports/{id}", reportsHandler.Get).Methods("GET")
		api.HandleFunc("/reports/{id}", reportsHandler.Delete).Methods("DELETE")
	}

	// Event history and live stream
	if deps.Events != nil {
		eventsHandler := handlers.NewEventsHandler(deps.Events)
		api.HandleFunc("/events", eventsHandler.History).Methods("GET")
		api.HandleFunc("/events/ws", eventsHandler.Stream).Methods("GET")
	}

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlers.WriteError(w, http.StatusNotFound, handlers.ErrNotFound, "no route for "+r.URL.Path)
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlers.WriteError(w, http.StatusMethodNotAllowed, handlers.ErrBadRequest, r.Method+" not allowed on "+r.URL.Path)
	})

	return r
}

// Server represents the API server.
type Server struct {
	router *mux.Router
	cfg    ServerConfig
	log    zerolog.Logger
	server *http.Server
}

// NewServer creates a new API server.
func NewServer(cfg ServerConfig, deps Dependencies) *Server {
	s := &Server{
		router: NewRouter(cfg, deps),
		cfg:    cfg,
		log:    deps.Log,
	}
	s.server = &http.Server{
		Addr:              s.Addr(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Router returns the underlying router.
func (s *Server) Router() *mux.Router {
	return s.router
}

// Handler returns the full HTTP handler, including CORS preflight handling
// that must run before route matching.
func (s *Server) Handler() http.Handler {
	return middleware.CORS(s.router)
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
}

// ListenAndServe starts the server and blocks until it stops. A graceful
// Shutdown makes it return nil.
func (s *Server) ListenAndServe() error {
	s.log.Info().Str("addr", "http://"+s.server.Addr).Msg("API server listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down API server...")

	// Create a timeout context if none provided
	shutdownCtx := ctx
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		shutdownCtx, cancel = context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
	}

	return s.server.Shutdown(shutdownCtx)
}
