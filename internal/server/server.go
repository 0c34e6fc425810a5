// Package server
//
// @title Authgate API
// @version 1.0
// @description Session login and role-gated user routes
// @host localhost:8080
// @BasePath /
package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/branchd-dev/authgate/internal/auth"
	"github.com/branchd-dev/authgate/internal/config"
	"github.com/branchd-dev/authgate/internal/models"
	"github.com/branchd-dev/authgate/internal/sessionstore"
	"github.com/branchd-dev/authgate/internal/store"
)

// Server represents the HTTP server
type Server struct {
	router   *gin.Engine
	db       *gorm.DB
	config   *config.Config
	logger   zerolog.Logger
	users    *store.UserStore
	sessions auth.SessionStore
	auth     *auth.Service
	gate     *auth.Gate
	version  string
}

// Dependencies are the stores and primitives the server is built from
type Dependencies struct {
	DB       *gorm.DB
	Sessions auth.SessionStore
	Hasher   *auth.Hasher
}

// New opens the database and session store named in cfg and creates a server on them
func New(cfg *config.Config, zlog zerolog.Logger, version string) (*Server, error) {
	db, err := store.Open(cfg.Database, zlog)
	if err != nil {
		return nil, err
	}

	// Run database migrations
	if err := models.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	sessions, err := sessionstore.New(context.Background(), cfg, db, zlog)
	if err != nil {
		return nil, err
	}

	return NewWithDependencies(cfg, Dependencies{
		DB:       db,
		Sessions: sessions,
		Hasher:   auth.NewHasher(cfg.Security.BcryptCost),
	}, zlog, version)
}

// NewWithDependencies creates a server on already opened stores
func NewWithDependencies(cfg *config.Config, deps Dependencies, zlog zerolog.Logger, version string) (*Server, error) {
	signer, err := auth.NewTokenSigner(cfg.Security.SecretKey)
	if err != nil {
		return nil, err
	}

	users := store.NewUserStore(deps.DB)
	sessionManager := auth.NewSessionManager(deps.Sessions, signer, cfg.Sessions.TTL)

	authService, err := auth.NewService(users, deps.Hasher, sessionManager)
	if err != nil {
		return nil, err
	}

	server := &Server{
		db:       deps.DB,
		config:   cfg,
		logger:   zlog,
		users:    users,
		sessions: deps.Sessions,
		auth:     authService,
		gate:     auth.NewGate(sessionManager, users),
		version:  version,
	}

	server.setupRouter()

	return server, nil
}

// setupRouter configures the Gin router with routes and middleware
func (s *Server) setupRouter() {
	gin.SetMode(gin.ReleaseMode)

	s.router = gin.New()

	// unknown paths must answer 404 directly, never with a redirect
	s.router.RedirectTrailingSlash = false
	s.router.RedirectFixedPath = false

	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())

	if len(s.config.Server.AllowedOrigins) > 0 {
		s.router.Use(cors.New(cors.Config{
			AllowOrigins:     s.config.Server.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	s.router.NoRoute(s.notFound)

	// Health check endpoint (no auth required)
	s.router.GET("/health", s.healthCheck)

	authRoutes := s.router.Group("/auth")
	{
		authRoutes.POST("/login", s.login)
		authRoutes.GET("/logout", s.RequireLogin(), s.logout)
		authRoutes.POST("/logout", s.RequireLogin(), s.logout)
	}

	userRoutes := s.router.Group("/users")
	{
		userRoutes.GET("", s.RequireLogin(), s.listUsers)
		userRoutes.GET("/admin", s.RequireAdmin(), s.adminListUsers)
	}
}

// loggingMiddleware creates a custom logging middleware using zerolog
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start)

		s.logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", duration).
			Str("client_ip", c.ClientIP()).
			Msg("HTTP request")
	}
}

// Handler returns the HTTP handler serving all routes
func (s *Server) Handler() http.Handler {
	return s.router
}

// GetDB returns the database connection for use by the CLI and workers
func (s *Server) GetDB() *gorm.DB {
	return s.db
}

// Start starts the HTTP server and blocks until SIGINT or SIGTERM
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Server.Port)

	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		s.logger.Error().Err(err).Msg("HTTP server error")
		s.close()
		return err
	case <-sigChan:
		s.logger.Info().Msg("Received shutdown signal, shutting down gracefully...")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	s.logger.Info().Msg("Shutting down HTTP server...")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error().Err(err).Msg("Error shutting down HTTP server")
		return err
	}

	s.close()
	s.logger.Info().Msg("Server shutdown complete")
	return nil
}

// close releases the session store and the database
func (s *Server) close() {
	if closer, ok := s.sessions.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			s.logger.Warn().Err(err).Msg("Error closing session store")
		}
	}

	// Close database connection to flush WAL writes
	s.logger.Info().Msg("Closing database connection...")
	if err := store.Close(s.db); err != nil {
		s.logger.Error().Err(err).Msg("Error closing database")
	} else {
		s.logger.Info().Msg("Database closed successfully")
	}
}
