// Package opsserver serves the health check and runtime statistics over
// HTTP, next to the chat transport.
package opsserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/jeanzhou31/slackattack/core/database"
	"github.com/jeanzhou31/slackattack/core/logger"
)

// Heartbeat is the body of /healthz.
const Heartbeat = "Hi! Don't worry, I'm always awake."

const (
	defaultLimit = 20
	maxLimit     = 200
)

// SessionStats describes the live conversations.
type SessionStats struct {
	Live     int            `json:"live"`
	ByIntent map[string]int `json:"by_intent"`
}

// Audit reads recorded conversations. *database.Recorder implements it.
type Audit interface {
	Recent(ctx context.Context, limit int) ([]database.Conversation, error)
	Outcomes(ctx context.Context) (map[string]map[string]int, error)
}

// Options wires the server's data sources.
type Options struct {
	Listen   string
	Sessions func() SessionStats
	// Audit is nil when the audit store is disabled.
	Audit Audit
}

// Server is the ops HTTP listener.
type Server struct {
	opts   Options
	router chi.Router

	mu   sync.Mutex
	srv  *http.Server
	addr string
	done chan error
}

// New builds the server and its routes; Start begins listening.
func New(opts Options) *Server {
	s := &Server{opts: opts}
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(accessLog)

	r.Get("/healthz", s.health)
	r.Get("/sessions", s.sessions)
	r.Route("/conversations", func(r chi.Router) {
		r.Get("/", s.conversations)
		r.Get("/outcomes", s.outcomes)
	})
	s.router = r
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

// Addr returns the bound address once started.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// Start binds the listener and serves in the background. An empty Listen
// leaves the server disabled.
func (s *Server) Start(ctx context.Context) error {
	if s.opts.Listen == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.srv != nil {
		return fmt.Errorf("opsserver: already started")
	}

	ln, err := net.Listen("tcp", s.opts.Listen)
	if err != nil {
		return fmt.Errorf("opsserver: listen %s: %w", s.opts.Listen, err)
	}
	s.srv = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	s.addr = ln.Addr().String()
	s.done = make(chan error, 1)

	logger.LogEvent(ctx, logger.Ops, slog.LevelInfo, "listen",
		slog.String("status", "ok"),
		slog.String("listen", s.addr),
	)
	go func(srv *http.Server, done chan<- error) {
		err := srv.Serve(ln)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		if err != nil {
			logger.LogEvent(context.Background(), logger.Ops, slog.LevelError, "serve",
				slog.String("status", "fail"),
				slog.String("err", err.Error()),
			)
		}
		done <- err
	}(s.srv, s.done)
	return nil
}

// Shutdown stops the listener, waiting for in-flight requests until ctx ends.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv, done := s.srv, s.done
	s.srv, s.done = nil, nil
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("opsserver: shutdown: %w", err)
	}
	return <-done
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(Heartbeat))
}

func (s *Server) sessions(w http.ResponseWriter, _ *http.Request) {
	stats := SessionStats{ByIntent: map[string]int{}}
	if s.opts.Sessions != nil {
		stats = s.opts.Sessions()
		if stats.ByIntent == nil {
			stats.ByIntent = map[string]int{}
		}
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) conversations(w http.ResponseWriter, r *http.Request) {
	if s.opts.Audit == nil {
		writeError(w, http.StatusNotFound, "audit store disabled")
		return
	}
	limit := defaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxLimit)
	}
	rows, err := s.opts.Audit.Recent(r.Context(), limit)
	if err != nil {
		s.fail(w, r, "conversations", err)
		return
	}
	if rows == nil {
		rows = []database.Conversation{}
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) outcomes(w http.ResponseWriter, r *http.Request) {
	if s.opts.Audit == nil {
		writeError(w, http.StatusNotFound, "audit store disabled")
		return
	}
	out, err := s.opts.Audit.Outcomes(r.Context())
	if err != nil {
		s.fail(w, r, "outcomes", err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	logger.LogEvent(r.Context(), logger.Ops, slog.LevelError, "query",
		slog.String("status", "fail"),
		slog.String("op", op),
		slog.String("err", err.Error()),
	)
	writeError(w, http.StatusInternalServerError, "query failed")
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		status := "ok"
		if ww.Status() >= http.StatusInternalServerError {
			status = "fail"
		}
		ctx := logger.WithRID(r.Context(), chimiddleware.GetReqID(r.Context()))
		logger.LogEvent(ctx, logger.Ops, slog.LevelDebug, "request",
			slog.String("status", status),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("http_code", ww.Status()),
			slog.Duration("duration", logger.Took(start)),
		)
	})
}
