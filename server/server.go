package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	pixerr "pixgate/errors"
	"pixgate/handlers"
	"pixgate/logging"
	"pixgate/server/health"
	"pixgate/server/middleware"
)

// Config holds server configuration.
type Config struct {
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	EnableCORS      bool
	CORSOrigins     []string
	Production      bool
}

// Server represents the HTTP server.
type Server struct {
	Router        *gin.Engine
	httpServer    *http.Server
	config        *Config
	healthChecker *health.Checker
	log           *logging.Logger
}

// New creates a new server wired with the image handler and the
// gateway's standard middleware chain.
func New(config *Config, imageHandler *handlers.ImageHandler, log *logging.Logger) *Server {
	if config.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	if err := router.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		log.WarnWithFields("failed to set trusted proxies", "error", err.Error())
	}

	srv := &Server{
		Router:        router,
		config:        config,
		healthChecker: health.NewChecker(),
		log:           log,
	}

	srv.setupMiddleware()
	srv.setupHealthEndpoints()
	srv.setupImageRoute(imageHandler)

	return srv
}

// setupMiddleware configures the middleware chain. Order matters:
// request ID first so every later log line can carry it, recovery
// before logging, so a panic unwinds past the logging middleware and is
// logged by the recovery middleware itself.
func (s *Server) setupMiddleware() {
	s.Router.Use(middleware.RequestID())
	s.Router.Use(middleware.SecurityHeaders())

	if s.config.EnableCORS {
		if len(s.config.CORSOrigins) > 0 {
			s.Router.Use(middleware.CORSWithOrigins(s.config.CORSOrigins))
		} else {
			s.Router.Use(middleware.CORS())
		}
	}

	s.Router.Use(pixerr.RecoveryMiddleware(s.log.Slog()))
	s.Router.Use(middleware.Logging(s.log))
}

// setupHealthEndpoints registers health check endpoints.
func (s *Server) setupHealthEndpoints() {
	s.Router.GET("/health", s.healthChecker.DetailedHealthHandler)
	s.Router.GET("/live", s.healthChecker.LivenessHandler)
	s.Router.GET("/ready", s.healthChecker.ReadinessHandler)
}

// setupImageRoute registers the gateway's single content route. A nil
// imageHandler leaves the wildcard route unregistered, which tests use
// to mount their own routes without conflicting with it.
func (s *Server) setupImageRoute(imageHandler *handlers.ImageHandler) {
	if imageHandler == nil {
		return
	}
	s.Router.GET("/*path", imageHandler.ServeImage)
}

// AddHealthCheck registers a health check function.
func (s *Server) AddHealthCheck(name string, check health.HealthCheck) {
	s.healthChecker.AddCheck(name, check)
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.Router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.log.InfoWithFields("starting server", "addr", addr)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}

	s.log.Info("shutting down server")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.log.Info("server stopped gracefully")
	return nil
}

// Run starts the server and blocks until an interrupt signal triggers
// a graceful shutdown.
func (s *Server) Run() error {
	go func() {
		if err := s.Start(); err != nil {
			s.log.ErrorWithFields("server error", "error", err.Error())
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()

	return s.Shutdown(ctx)
}
