package server

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/textgate/textgate/internal/adapter"
	"github.com/textgate/textgate/internal/config"
	"github.com/textgate/textgate/internal/engine"
	"github.com/textgate/textgate/internal/storage"
)

// Server represents the API server
type Server struct {
	cfg        *config.Config
	logger     *zap.Logger
	router     *gin.Engine
	engine     *engine.Client
	formatter  *adapter.ChatFormatter
	usageStore *storage.UsageStore
}

// New creates a new server instance
func New(cfg *config.Config, logger *zap.Logger) (*Server, error) {
	gin.SetMode(cfg.Server.Mode)

	s := &Server{
		cfg:    cfg,
		logger: logger,
		router: gin.New(),
	}

	s.engine = engine.NewClient(cfg.Upstream, logger)
	// Built once at startup, shared read-only by all requests.
	s.formatter = adapter.NewChatFormatter(cfg.ChatTemplate)
	s.usageStore = storage.NewUsageStore(cfg.Storage.UsageDir)

	s.setupMiddleware()
	s.setupRoutes()

	return s, nil
}

// Router returns the gin engine
func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())

	s.router.Use(s.loggerMiddleware())

	if s.cfg.Security.EnableCORS {
		s.router.Use(s.corsMiddleware())
	}
}

func (s *Server) setupRoutes() {
	s.router.GET("/", func(c *gin.Context) {
		c.String(200, "ok")
	})

	s.router.GET("/health", s.healthCheck)
	s.router.GET("/ping", s.ping)

	// OpenAI-compatible API
	api := s.router.Group("/v1")
	if s.cfg.Security.APIKey != "" {
		api.Use(s.apiKeyAuthMiddleware())
	}
	{
		api.POST("/completions", s.completions)
		api.POST("/chat/completions", s.chatCompletions)
		api.GET("/models", s.listModels)
	}

	s.router.GET("/usage", s.getUsageHistory)
}

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(200, gin.H{"status": "ok"})
}

func (s *Server) ping(c *gin.Context) {
	c.JSON(200, gin.H{"message": "pong"})
}
