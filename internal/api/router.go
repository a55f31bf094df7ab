// Package api serves the controller over loopback HTTP.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/illarion/hostlock/internal/core"
	"github.com/illarion/hostlock/internal/host"
)

// Controller is the part of core.Controller the router drives
type Controller interface {
	Handle(ctx context.Context, req core.Request) (core.Response, error)
	IconClicked(ctx context.Context) error
	Startup(ctx context.Context) error
	WindowCreated(ctx context.Context, id host.WindowID) error
	WindowRemoved(ctx context.Context, id host.WindowID) error
	Installed(ctx context.Context, reason core.InstallReason) error
}

// Options configures the router
type Options struct {
	Controller Controller
	InstanceID string

	// Host enables the /v1/host endpoints that simulate host events
	Host *host.Memory

	Logger *slog.Logger
}

type server struct {
	ctrl       Controller
	host       *host.Memory
	instanceID string
	logger     *slog.Logger
}

// NewRouter builds the HTTP handler
func NewRouter(opts Options) *mux.Router {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &server{
		ctrl:       opts.Controller,
		host:       opts.Host,
		instanceID: opts.InstanceID,
		logger:     logger,
	}

	r := mux.NewRouter()
	r.Use(s.logRequests)

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK\n"))
	}).Methods("GET")

	v1 := r.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/messages", s.handleMessage).Methods("POST")
	v1.HandleFunc("/instance", s.handleInstance).Methods("GET")

	if s.host != nil {
		h := v1.PathPrefix("/host").Subrouter()
		h.HandleFunc("/startup", s.handleStartup).Methods("POST")
		h.HandleFunc("/icon", s.handleIcon).Methods("POST")
		h.HandleFunc("/install", s.handleInstall).Methods("POST")
		h.HandleFunc("/windows", s.handleListWindows).Methods("GET")
		h.HandleFunc("/windows", s.handleOpenWindow).Methods("POST")
		h.HandleFunc("/windows/{id}", s.handleCloseWindow).Methods("DELETE")
	}

	return r
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start))
	})
}
