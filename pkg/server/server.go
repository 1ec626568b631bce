// Package server exposes the knowledge graph over HTTP.
package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kgraph-io/kgraph"
	"github.com/kgraph-io/kgraph/pkg/config"
	"github.com/kgraph-io/kgraph/pkg/server/handlers"
)

// Server represents the HTTP server
type Server struct {
	config *config.Config
	router *gin.Engine
	graph  *kgraph.Graph
	server *http.Server
}

// New creates a new server instance
func New(cfg *config.Config, graph *kgraph.Graph) *Server {
	return &Server{
		config: cfg,
		graph:  graph,
	}
}

// Setup sets up the server routes and middleware
func (s *Server) Setup() {
	gin.SetMode(s.config.Server.Mode)

	s.router = gin.New()
	s.router.Use(gin.Logger())
	s.router.Use(gin.Recovery())
	s.router.Use(corsMiddleware())

	s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.router,
	}
}

// setupRoutes sets up all the routes
func (s *Server) setupRoutes() {
	healthHandler := handlers.NewHealthHandler(s.graph)
	graphHandler := handlers.NewGraphHandler(s.graph)
	reasonHandler := handlers.NewReasonHandler(s.graph)
	adminHandler := handlers.NewAdminHandler(s.graph)

	// Health endpoints
	s.router.GET("/health", healthHandler.HealthCheck)
	s.router.GET("/ready", healthHandler.ReadinessCheck)
	s.router.GET("/live", healthHandler.LivenessCheck)
	s.router.GET("/health/detailed", healthHandler.DetailedHealthCheck)

	// API v1 routes
	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/entities", graphHandler.UpsertEntity)
		v1.GET("/entities", graphHandler.QueryEntities)
		v1.GET("/entities/:id", graphHandler.GetEntity)
		v1.POST("/relations", graphHandler.UpsertRelation)
		v1.GET("/relations", graphHandler.QueryRelations)
		v1.POST("/paths", graphHandler.FindPaths)

		reason := v1.Group("/reason")
		{
			reason.POST("/transitive", reasonHandler.InferTransitive)
			reason.POST("/similar", reasonHandler.FindSimilar)
			reason.POST("/recommend", reasonHandler.Recommend)
		}

		v1.POST("/analyze", adminHandler.Analyze)
		v1.GET("/statistics", adminHandler.Statistics)
		v1.GET("/insights", adminHandler.Insights)
		v1.POST("/export", adminHandler.Export)
		v1.POST("/cleanup", adminHandler.Cleanup)
		v1.POST("/extract", adminHandler.Extract)
	}
}

// Start starts the server
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Stop stops the server gracefully
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Router exposes the gin engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// corsMiddleware adds CORS headers
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Header("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
