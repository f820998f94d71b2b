// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

// Package httpapi exposes the authentication service over HTTP.
package httpapi

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/samber/oops"

	"github.com/gatehouse/gatehouse/internal/auth"
	"github.com/gatehouse/gatehouse/internal/observability"
)

// Options configure the API server.
type Options struct {
	Service *auth.Service
	Tokens  *auth.TokenIssuer

	// Metrics is optional; when nil no metrics are recorded.
	Metrics *observability.Metrics
	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// CookieSecure marks the session cookie Secure; enable behind TLS.
	CookieSecure bool
	// CORSAllowedOrigins lists origins allowed to call the API with
	// credentials.
	CORSAllowedOrigins []string
	// StoreTimeout bounds each database call made by a handler.
	StoreTimeout time.Duration
}

// Server is the HTTP API server.
type Server struct {
	addr         string
	svc          *auth.Service
	tokens       *auth.TokenIssuer
	metrics      *observability.Metrics
	logger       *slog.Logger
	limiter      *loginLimiter
	cookieSecure bool
	storeTimeout time.Duration

	engine     *gin.Engine
	listener   net.Listener
	httpServer *http.Server
	running    atomic.Bool
}

// NewServer creates the API server listening on addr.
func NewServer(addr string, opts Options) (*Server, error) {
	if opts.Service == nil {
		return nil, oops.Errorf("auth service is required")
	}
	if opts.Tokens == nil {
		return nil, oops.Errorf("token issuer is required")
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.StoreTimeout <= 0 {
		opts.StoreTimeout = 5 * time.Second
	}

	s := &Server{
		addr:         addr,
		svc:          opts.Service,
		tokens:       opts.Tokens,
		metrics:      opts.Metrics,
		logger:       opts.Logger,
		limiter:      newLoginLimiter(),
		cookieSecure: opts.CookieSecure,
		storeTimeout: opts.StoreTimeout,
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestID())
	engine.Use(requestLogger(s.logger))

	if len(opts.CORSAllowedOrigins) > 0 {
		engine.Use(cors.New(cors.Config{
			AllowOrigins:     opts.CORSAllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	engine.POST("/register", s.handleRegister)
	engine.POST("/login", s.handleLogin)
	engine.POST("/logout", s.handleLogout)
	engine.GET("/me", s.requireAuth(), s.handleMe)
	engine.GET("/health", s.handleHealth)

	s.engine = engine
	return s, nil
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// storeContext derives the timeout context used for database calls.
func (s *Server) storeContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), s.storeTimeout)
}

// Start begins serving. It returns an error channel that receives any
// error from the HTTP server after startup; the channel is closed on
// graceful shutdown.
func (s *Server) Start() (<-chan error, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, oops.Errorf("api server already running")
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		s.running.Store(false)
		return nil, oops.With("addr", s.addr).Wrap(err)
	}
	s.listener = listener

	httpSrv := &http.Server{
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.httpServer = httpSrv

	errCh := make(chan error, 1)

	go func() {
		defer close(errCh)
		if serveErr := httpSrv.Serve(listener); serveErr != nil && serveErr != http.ErrServerClosed {
			s.logger.Error("api server error", "error", serveErr)
			errCh <- serveErr
		}
	}()

	s.logger.Info("api server started", "addr", listener.Addr().String())
	return errCh, nil
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.running.Store(true)
			return oops.With("operation", "shutdown_api_server").Wrap(err)
		}
	}

	s.logger.Info("api server stopped")
	return nil
}

// Addr returns the listen address, or "" when not running.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return ""
}
