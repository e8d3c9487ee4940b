// Package server owns the lifecycle of the network front end's HTTP listener.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Config holds HTTP server configuration.
type Config struct {
	// Addr is host:port; port 0 picks a free port.
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DefaultConfig returns default HTTP server configuration.
// WriteTimeout leaves room for a backend call that runs up to its own 60s limit.
func DefaultConfig() Config {
	return Config{
		Addr:         "127.0.0.1:3000",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// Server wraps the HTTP server.
type Server struct {
	config Config
	http   *http.Server
	logger zerolog.Logger

	mu       sync.Mutex
	listener net.Listener
}

// NewServer creates a new HTTP server serving handler.
func NewServer(handler http.Handler, config Config, logger zerolog.Logger) *Server {
	httpServer := &http.Server{
		Addr:              config.Addr,
		Handler:           handler,
		ReadTimeout:       config.ReadTimeout,
		ReadHeaderTimeout: config.ReadTimeout,
		WriteTimeout:      config.WriteTimeout,
		IdleTimeout:       config.IdleTimeout,
	}

	return &Server{
		config: config,
		http:   httpServer,
		logger: logger,
	}
}

// Listen binds the configured address. A bind failure is returned here rather than from Serve.
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.http.Addr, err)
	}
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()
	return nil
}

// Addr returns the bound address, or the configured one before Listen.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.http.Addr
}

// Start listens if needed and serves until Shutdown. A clean shutdown returns nil.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	ln := s.listener
	s.mu.Unlock()
	if ln == nil {
		if err := s.Listen(); err != nil {
			return err
		}
		ln = s.listener
	}

	s.logger.Info().Str("addr", ln.Addr().String()).Msg("http server listening")
	if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

// Shutdown gracefully drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("shutting down http server")
	if err := s.http.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	s.logger.Info().Msg("http server stopped")
	return nil
}
