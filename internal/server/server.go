// Package server runs mcpreg's read-through caching proxy: a small REST
// service exposing the registry's read endpoints, with every response
// served through the shared response cache.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/mcptooling/mcpreg/pkg/errors"
	"github.com/mcptooling/mcpreg/pkg/registry"
)

// shutdownGrace is how long in-flight requests get to finish once the
// serve context is cancelled.
const shutdownGrace = 10 * time.Second

// sweepInterval is how often expired cache entries are collected.
const sweepInterval = time.Minute

// Sweeper removes expired entries from a cache backend. The memory
// backend implements it; backends with native expiry do not need to.
type Sweeper interface {
	Sweep() int
}

// Server is the proxy service. Construct with New.
type Server struct {
	client  *registry.Client
	logger  *log.Logger
	addr    string
	sweeper Sweeper
}

// Options configures a Server.
type Options struct {
	// Addr is the listen address, e.g. "127.0.0.1:8080".
	Addr string
	// Client is the registry client requests are served through.
	Client *registry.Client
	// Logger receives request and lifecycle logs.
	Logger *log.Logger
	// Sweeper, when non-nil, is run periodically to evict expired
	// cache entries.
	Sweeper Sweeper
}

// New creates a Server.
func New(opts Options) (*Server, error) {
	if opts.Client == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "registry client is required")
	}
	if opts.Addr == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "listen address is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		client:  opts.Client,
		logger:  logger,
		addr:    opts.Addr,
		sweeper: opts.Sweeper,
	}, nil
}

// Router builds the HTTP handler tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealthz)
	r.Get("/v0/servers", s.handleSearch)
	r.Get("/v0/servers/{id}", s.handleGetServer)
	return r
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	if s.sweeper != nil {
		go s.runSweeper(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) runSweeper(ctx context.Context) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := s.sweeper.Sweep(); removed > 0 {
				s.logger.Debug("swept expired cache entries", "removed", removed)
			}
		}
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleSearch proxies GET /v0/servers?search=term.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("search")

	resp, err := s.client.Search(r.Context(), term)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleGetServer proxies GET /v0/servers/{id}.
func (s *Server) handleGetServer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	srv, err := s.client.GetByID(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if srv == nil {
		// Known ID but not active: absent from this proxy's view.
		s.writeErrorBody(w, http.StatusNotFound, errors.ErrCodeServerNotFound, "server not found")
		return
	}
	writeJSON(w, http.StatusOK, srv)
}

// errorBody mirrors the registry's own error shape.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.GetCode(err)
	status := statusForCode(code)
	if status >= 500 {
		s.logger.Error("request failed", "path", r.URL.Path, "err", err)
	}
	s.writeErrorBody(w, status, code, errors.UserMessage(err))
}

func (s *Server) writeErrorBody(w http.ResponseWriter, status int, code errors.Code, msg string) {
	writeJSON(w, status, errorBody{Error: string(code), Message: msg})
}

func statusForCode(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput:
		return http.StatusBadRequest
	case errors.ErrCodeServerNotFound:
		return http.StatusNotFound
	case errors.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case errors.ErrCodeNetwork, errors.ErrCodeAPI, errors.ErrCodeParse, errors.ErrCodeRetryExhausted:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type ctxKey int

const requestIDKey ctxKey = 0

// requestID assigns a UUID to each request and echoes it back in the
// X-Request-ID header.
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		ctx := context.WithValue(r.Context(), requestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestID returns the request's assigned ID, if any.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// logRequests emits one structured line per request.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", RequestID(r.Context()),
		)
	})
}
