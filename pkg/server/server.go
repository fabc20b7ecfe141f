package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"portfolioos/pkg/logger"
)

// Server represents an HTTP server with routing and static file support.
type Server struct {
	handler       http.Handler
	server        *http.Server
	tlsConfig     *tls.Config
	tlsEnabled    bool
	staticHandler http.Handler
	log           *logger.Logger
	mu            sync.RWMutex
	started       bool
	listener      net.Listener
}

// Config holds server configuration.
type Config struct {
	Addr         string
	Handler      http.Handler
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	StaticDir    string
	Logger       *logger.Logger
}

// New creates a new HTTP server with the given configuration.
func New(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = logger.Nop()
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 30 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 30 * time.Second
	}
	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = 120 * time.Second
	}

	s := &Server{
		handler: cfg.Handler,
		log:     cfg.Logger,
	}
	s.server = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}

	if cfg.StaticDir != "" {
		s.staticHandler = NewStaticFileHandler(cfg.StaticDir)
	}
	return s
}

// SetHandler sets the main request handler.
func (s *Server) SetHandler(handler http.Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handler = handler
}

// EnableTLS loads the certificate pair and serves TLS 1.3 only.
func (s *Server) EnableTLS(certFile, keyFile string) error {
	certs, err := (&TLSConfig{CertFile: certFile, KeyFile: keyFile}).LoadCertificates()
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.tlsConfig = ServerTLSConfig(certs)
	s.tlsEnabled = true
	s.server.TLSConfig = s.tlsConfig
	return nil
}

// TLSEnabled reports whether EnableTLS succeeded.
func (s *Server) TLSEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tlsEnabled
}

// ServeHTTP implements http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	staticHandler := s.staticHandler
	handler := s.handler
	s.mu.RUnlock()

	if handler != nil {
		handler.ServeHTTP(w, r)
		return
	}
	if staticHandler != nil {
		staticHandler.ServeHTTP(w, r)
		return
	}
	http.NotFound(w, r)
}

// ListenAndServe listens on the configured address and serves until
// Shutdown. It returns nil after a graceful shutdown.
func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.server.Addr, err)
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln.
func (s *Server) Serve(ln net.Listener) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		ln.Close()
		return errors.New("server already started")
	}
	s.started = true
	s.listener = ln
	tlsEnabled := s.tlsEnabled
	s.mu.Unlock()

	s.log.Info("Server listening", "addr", ln.Addr().String(), "tls", tlsEnabled)

	var err error
	if tlsEnabled {
		err = s.server.ServeTLS(ln, "", "")
	} else {
		err = s.server.Serve(ln)
	}
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if !s.Started() {
		return nil
	}
	s.log.Info("Shutting down server")
	return s.server.Shutdown(ctx)
}

// Close closes the server immediately.
func (s *Server) Close() error {
	if !s.Started() {
		return nil
	}
	return s.server.Close()
}

// Addr returns the listening address once started, otherwise the
// configured one.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.server.Addr
}

// Started returns whether the server has been started.
func (s *Server) Started() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}
