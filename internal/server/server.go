// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/jeranaias/portal-tui/internal/config"
	"github.com/jeranaias/portal-tui/internal/logging"
	"github.com/jeranaias/portal-tui/internal/storage"
)

// ============================================================================
// CONSTANTS
// ============================================================================

const (
	// MaxRequestBodySize bounds request bodies (1MB).
	MaxRequestBodySize = 1 * 1024 * 1024

	// MaxMessageCount is the maximum number of messages in a transcript.
	MaxMessageCount = 200

	// DefaultReplyTimeout bounds a single reply from the engine.
	DefaultReplyTimeout = 2 * time.Minute
)

// ============================================================================
// SERVER
// ============================================================================

// Server is the development backend.
type Server struct {
	cfg     config.ServerConfig
	store   *storage.Store
	tokens  *TokenIssuer
	replier Replier
	log     *logging.Logger

	mux     *http.ServeMux
	limiter *RateLimiter
	handler http.Handler

	replyTimeout time.Duration
	now          func() time.Time

	mu     sync.Mutex
	server *http.Server
	closed bool
}

// New creates a Server. It does not start listening.
func New(cfg config.ServerConfig, store *storage.Store, replier Replier, log *logging.Logger) (*Server, error) {
	if store == nil {
		return nil, errors.New("server: nil store")
	}
	if replier == nil {
		replier = DemoReplier{}
	}
	if log == nil {
		log = logging.Nop()
	}

	ttl := time.Duration(cfg.TokenTTLHours) * time.Hour
	tokens, err := NewTokenIssuer(cfg.JWTSecret, ttl)
	if err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}

	s := &Server{
		cfg:          cfg,
		store:        store,
		tokens:       tokens,
		replier:      replier,
		log:          log,
		mux:          http.NewServeMux(),
		replyTimeout: DefaultReplyTimeout,
		now:          time.Now,
	}

	s.setupRoutes()
	s.handler = s.buildHandler()
	return s, nil
}

// Tokens returns the issuer used for bearer tokens.
func (s *Server) Tokens() *TokenIssuer {
	return s.tokens
}

// Handler returns the routed handler with all middleware applied.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
}

// ============================================================================
// ROUTES
// ============================================================================

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("GET /{$}", s.handleRoot)

	s.mux.HandleFunc("POST /api/auth/register", s.handleRegister)
	s.mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	s.mux.HandleFunc("GET /api/auth/me", s.RequireUser(s.handleMe))

	s.mux.HandleFunc("POST /api/ai/{assistant}", s.RequireUser(s.handleAI))
	s.mux.HandleFunc("GET /api/chats", s.RequireUser(s.handleChats))
	s.mux.HandleFunc("GET /api/chats/{id}", s.RequireUser(s.handleChat))
}

func (s *Server) buildHandler() http.Handler {
	cors := DefaultCORSConfig()
	if len(s.cfg.CORSOrigins) > 0 {
		cors.AllowedOrigins = s.cfg.CORSOrigins
	}

	middlewares := []func(http.Handler) http.Handler{
		RecoveryMiddleware(s.log),
		SecurityHeadersMiddleware(),
		RequestIDMiddleware(),
		LoggingMiddleware(s.log),
		CORSMiddleware(cors),
	}
	if s.cfg.RateLimitPerMinute > 0 {
		s.limiter = NewRateLimiter(s.cfg.RateLimitPerMinute)
		middlewares = append(middlewares, RateLimitMiddleware(s.limiter, s.log))
	}

	return Chain(middlewares...)(s.mux)
}

// ============================================================================
// SERVER LIFECYCLE
// ============================================================================

// Start listens on the configured address and serves until Shutdown.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.Addr())
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.Addr(), err)
	}
	return s.Serve(ln)
}

// Serve serves on ln until Shutdown. It returns nil after a clean shutdown.
func (s *Server) Serve(ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      s.replyTimeout + 30*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		ln.Close()
		return nil
	}
	s.server = srv
	s.mu.Unlock()

	s.log.Info("server started", "addr", ln.Addr().String(), "reply_mode", s.cfg.ReplyMode)
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server. A Serve call that has not
// started yet returns immediately once Shutdown has run.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.limiter != nil {
		s.limiter.Stop()
	}

	s.mu.Lock()
	s.closed = true
	srv := s.server
	s.mu.Unlock()
	if srv == nil {
		return nil
	}

	s.log.Info("server shutting down")
	return srv.Shutdown(ctx)
}

// ============================================================================
// HELPERS
// ============================================================================

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes {"detail": message}.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"detail": message})
}

// decodeJSON reads a bounded JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxRequestBodySize)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return err
	}
	return nil
}
