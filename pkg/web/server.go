// Package web serves the search page. Every browser gets its own session
// controller, identified by a cookie, and receives live updates over a
// websocket.
package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/klauspost/compress/gzhttp"
	"github.com/rubiojr/stusearch/pkg/backend"
	"github.com/rubiojr/stusearch/pkg/config"
	"github.com/rubiojr/stusearch/pkg/controller"
	"github.com/rubiojr/stusearch/pkg/log"
	"github.com/rubiojr/stusearch/pkg/metrics"
	"github.com/rubiojr/stusearch/pkg/notify"
	"github.com/rubiojr/stusearch/pkg/version"
)

//go:embed static/*
var staticFS embed.FS

var logger = log.ForService("web")

// BackendFactory builds the backend client for a set of backend settings.
type BackendFactory func(config.BackendConfig) controller.Backend

// DefaultBackendFactory returns an HTTP client for the records service.
func DefaultBackendFactory(cfg config.BackendConfig) controller.Backend {
	return backend.NewClient(cfg.BaseURL, backend.WithTimeout(cfg.Timeout.Duration))
}

type Options struct {
	Config   *config.Config
	Recorder controller.Recorder
	// Backend overrides DefaultBackendFactory.
	Backend BackendFactory
}

type Server struct {
	mu        sync.RWMutex
	cfg       *config.Config
	backend   controller.Backend
	newClient BackendFactory
	recorder  controller.Recorder

	sessions *sessions
	upgrader websocket.Upgrader
}

func NewServer(opts Options) *Server {
	if opts.Backend == nil {
		opts.Backend = DefaultBackendFactory
	}
	s := &Server{
		cfg:       opts.Config,
		backend:   opts.Backend(opts.Config.Backend),
		newClient: opts.Backend,
		recorder:  opts.Recorder,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
	s.sessions = newSessions(opts.Config.Web.SessionTTL.Duration, s.newController)
	return s
}

func (s *Server) newController(id string) *controller.Controller {
	s.mu.RLock()
	defer s.mu.RUnlock()

	opts := []controller.Option{
		controller.WithSession(id),
		controller.WithFencing(s.cfg.Backend.FenceStaleResponses),
		controller.WithNotifyOptions(notify.WithLifetime(
			s.cfg.Notifications.Lifetime.Duration,
			s.cfg.Notifications.Exit.Duration,
		)),
	}
	if s.recorder != nil {
		opts = append(opts, controller.WithRecorder(s.recorder))
	}
	return controller.New(s.backend, opts...)
}

// Reload applies new backend and notification settings to sessions created
// from now on. Listen address changes need a restart.
func (s *Server) Reload(cfg *config.Config) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cfg.Addr() != s.cfg.Addr() {
		logger.Warnf("listen address changed to %s, restart to apply", cfg.Addr())
	}
	if cfg.Backend != s.cfg.Backend {
		s.backend = s.newClient(cfg.Backend)
		logger.Infof("backend set to %s", cfg.Backend.BaseURL)
	}
	s.cfg = cfg
}

// Handler returns the complete route table wrapped in logging and
// compression.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleHome)
	mux.HandleFunc("POST /search", s.handleSearch)
	mux.HandleFunc("POST /reset", s.handleReset)
	mux.HandleFunc("GET /students/{key}", s.handleDetails)
	mux.HandleFunc("POST /close", s.handleClose)
	mux.HandleFunc("GET /students/{key}/print", s.handlePrint)
	mux.HandleFunc("GET /fragment", s.handleFragment)
	mux.Handle("GET /api/state", corsMiddleware(http.HandlerFunc(s.handleState)))
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", metrics.Handler())
	mux.HandleFunc("GET /static/", s.handleStatic)

	// websocket upgrades need the raw connection, keep them out of gzip
	root := http.NewServeMux()
	root.HandleFunc("GET /ws", s.handleEvents)
	root.Handle("/", gzhttp.GzipHandler(mux))

	return requestLogger(root)
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	s.mu.RLock()
	addr := s.cfg.Addr()
	ttl := s.cfg.Web.SessionTTL.Duration
	s.mu.RUnlock()

	server := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("starting web server on http://%s", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	sweep := time.NewTicker(sweepInterval(ttl))
	defer sweep.Stop()

	for {
		select {
		case err, ok := <-errCh:
			if ok {
				return fmt.Errorf("web server: %w", err)
			}
			return nil
		case now := <-sweep.C:
			if n := s.sessions.sweep(now); n > 0 {
				logger.Debugf("expired %d idle sessions", n)
			}
		case <-ctx.Done():
			logger.Infof("shutting down web server...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			err := server.Shutdown(shutdownCtx)
			s.sessions.closeAll()
			return err
		}
	}
}

func sweepInterval(ttl time.Duration) time.Duration {
	interval := ttl / 4
	if interval < time.Second {
		return time.Second
	}
	if interval > 10*time.Minute {
		return 10 * time.Minute
	}
	return interval
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Errorf("encoding JSON response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: code, Message: message})
}

func healthResponse() map[string]string {
	return map[string]string{
		"status":  "ok",
		"version": version.APIVersion(),
	}
}
