// Package server implements taskd, the HTTP task server consumed by taskman.
package server

import (
	"context"
	"crypto/rand"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"taskman/internal/storage"
)

// Store is the persistence the handlers need.
type Store interface {
	CreateUser(ctx context.Context, username string, passwordHash []byte) (int64, error)
	UserByUsername(ctx context.Context, username string) (storage.User, error)
	ListTasks(ctx context.Context, userID int64) ([]storage.Task, error)
	GetTask(ctx context.Context, userID, id int64) (storage.Task, error)
	CreateTask(ctx context.Context, t storage.Task) (storage.Task, error)
	UpdateTask(ctx context.Context, t storage.Task) (storage.Task, error)
	DeleteTask(ctx context.Context, userID, id int64) error
}

// Config configures the server.
type Config struct {
	// Addr is the listen address. Defaults to ":5000".
	Addr string

	// Secret signs bearer tokens. A random per-process secret is used when empty,
	// which invalidates every token on restart.
	Secret string

	// TokenTTL is the bearer token lifetime. Defaults to one hour.
	TokenTTL time.Duration

	// BcryptCost is the password hashing cost. Defaults to bcrypt.DefaultCost.
	BcryptCost int
}

// Server is the taskd HTTP server.
type Server struct {
	cfg     Config
	store   Store
	logger  *slog.Logger
	router  *gin.Engine
	httpSrv *http.Server
	secret  []byte
}

// New creates a Server and registers its routes.
func New(cfg Config, store Store, logger *slog.Logger) *Server {
	if cfg.Addr == "" {
		cfg.Addr = ":5000"
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = time.Hour
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}

	s := &Server{
		cfg:    cfg,
		store:  store,
		logger: logger,
		router: gin.New(),
		secret: []byte(cfg.Secret),
	}
	if len(s.secret) == 0 {
		s.secret = generateSecret()
		logger.Warn("no token secret configured, tokens will not survive a restart")
	}
	s.registerRoutes()
	return s
}

// Handler returns the HTTP handler (for tests and embedding).
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start begins listening. It blocks until the server stops.
func (s *Server) Start() error {
	s.httpSrv = &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 15 * time.Second,
	}
	s.logger.Info("server listening", slog.String("addr", s.cfg.Addr))
	return s.httpSrv.ListenAndServe()
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

// registerRoutes sets up all HTTP routes.
func (s *Server) registerRoutes() {
	s.router.Use(gin.Recovery(), s.requestLogger())

	// Public routes
	s.router.POST("/register", s.handleRegister)
	s.router.POST("/login", s.handleLogin)

	// Protected routes
	tasks := s.router.Group("/tasks", s.authMiddleware())
	{
		tasks.GET("", s.handleListTasks)
		tasks.POST("", s.handleCreateTask)
		tasks.GET("/:id", s.handleGetTask)
		tasks.PUT("/:id", s.handleUpdateTask)
		tasks.DELETE("/:id", s.handleDeleteTask)
	}
}

// requestLogger tags each request with an id and logs its outcome.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		reqID := uuid.NewString()
		c.Header("X-Request-ID", reqID)

		c.Next()

		s.logger.Info("request",
			slog.String("request_id", reqID),
			slog.String("method", c.Request.Method),
			slog.String("path", c.FullPath()),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("duration", time.Since(start)),
		)
	}
}

// writeError writes a JSON error response.
func writeError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

// generateSecret creates a random 32-byte signing key.
func generateSecret() []byte {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return b
}
