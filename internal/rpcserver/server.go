// Package rpcserver implements the minimal local ingress described at
// spec.md §6: a JSON endpoint that pushes user-submitted payload
// strings into the engine's ingress channel. The full JSON-RPC
// protocol surface is explicitly out of scope per spec.md §1 ("The
// JSON-RPC ingress that pushes user strings into the core"); this is
// the thin concrete stand-in SPEC_FULL.md §6 calls for, grounded on
// OmishaPatel-DistributedFileStorage/backend/pkg/server/coordinator.go's
// gin route setup.
package rpcserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Server hosts the RPC ingress HTTP endpoint.
type Server struct {
	router  *gin.Engine
	ingress chan<- string
	logger  *zap.Logger
}

// New builds a Server that forwards submissions onto ingress. ingress
// is expected to be the bounded channel spec.md §6 suggests sizing at
// 100; when full, submitters receive a 503 back-pressure response
// rather than blocking the HTTP handler indefinitely.
func New(ingress chan<- string, logger *zap.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{router: router, ingress: ingress, logger: logger}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.POST("/submit", s.handleSubmit)
	s.router.GET("/health", s.handleHealth)
}

type submitRequest struct {
	Data string `json:"data" binding:"required"`
}

func (s *Server) handleSubmit(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	correlationID := uuid.NewString()

	select {
	case s.ingress <- req.Data:
		c.JSON(http.StatusAccepted, gin.H{"accepted": true, "correlation_id": correlationID})
	default:
		s.logger.Warn("ingress channel full, rejecting submission",
			zap.String("correlation_id", correlationID))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "ingress channel full", "correlation_id": correlationID})
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Run starts the HTTP server on addr. It blocks until the server
// stops or errors, matching net/http.Server.ListenAndServe's contract.
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}
