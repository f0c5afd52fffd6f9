// Package api exposes the run lifecycle over HTTP: submit, poll, fetch
// results, cancel.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/regulata/researchd/pkg/orchestrator"
	"github.com/regulata/researchd/pkg/version"
)

// Server holds the HTTP handlers and their collaborators.
type Server struct {
	facade *orchestrator.Facade
}

// NewServer creates an API server around the orchestration facade.
func NewServer(facade *orchestrator.Facade) *Server {
	return &Server{facade: facade}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", s.healthHandler)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.POST("/runs", s.createRunHandler)
		v1.GET("/runs/active", s.activeRunsHandler)
		v1.GET("/runs/:id", s.getRunHandler)
		v1.GET("/runs/:id/result", s.getResultHandler)
		v1.POST("/runs/:id/cancel", s.cancelRunHandler)
	}

	return router
}

func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"version": version.Full(),
	})
}
