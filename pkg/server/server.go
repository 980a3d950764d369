package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/soundprediction/go-domainprompts/pkg/cache"
	"github.com/soundprediction/go-domainprompts/pkg/config"
	"github.com/soundprediction/go-domainprompts/pkg/prompts"
	"github.com/soundprediction/go-domainprompts/pkg/server/handlers"
)

// RequestIDHeader carries the request id in and out.
const RequestIDHeader = "X-Request-ID"

// Server is the HTTP front end of the prompt library.
type Server struct {
	config  config.ServerConfig
	library prompts.Library
	cache   *cache.RenderCache
	logger  *slog.Logger
	router  *gin.Engine
	http    *http.Server
}

// New creates a server. renderCache may be nil.
func New(cfg config.ServerConfig, library prompts.Library, renderCache *cache.RenderCache, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		config:  cfg,
		library: library,
		cache:   renderCache,
		logger:  logger,
	}
}

// Setup builds the router.
func (s *Server) Setup() {
	if s.config.Mode != "" {
		gin.SetMode(s.config.Mode)
	}

	router := gin.New()
	router.Use(gin.Recovery(), s.requestID(), s.accessLog())

	health := handlers.NewHealthHandler(s.library.Registry())
	router.GET("/health", health.HealthCheck)
	router.GET("/ready", health.ReadinessCheck)

	prompt := handlers.NewPromptHandler(s.library, s.cache, s.logger)
	v1 := router.Group("/v1")
	{
		v1.GET("/domains", prompt.ListDomains)
		v1.POST("/domains/:family/:key", prompt.BindDomain)
		v1.POST("/prompts/render", prompt.Render)
	}

	s.router = router
}

// Handler returns the router, building it on first use.
func (s *Server) Handler() http.Handler {
	if s.router == nil {
		s.Setup()
	}
	return s.router
}

// Start listens on the configured address until Stop is called.
func (s *Server) Start() error {
	s.http = &http.Server{
		Addr:              s.config.Addr(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("Starting prompt server", "addr", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to serve: %w", err)
	}
	return nil
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

func (s *Server) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Set(handlers.RequestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("HTTP request",
			"request_id", c.GetString(handlers.RequestIDKey),
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}
