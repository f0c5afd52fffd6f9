package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/regulata/researchd/pkg/orchestrator"
	"github.com/regulata/researchd/pkg/worklog"
)

// CreateRunRequest is the request body for POST /api/v1/runs.
type CreateRunRequest struct {
	// ExecutionID keys the conversation. Reusing an id within the
	// residency window continues the conversation; omitting it starts a
	// fresh one under a generated id.
	ExecutionID    string `json:"execution_id"`
	Query          string `json:"query" binding:"required"`
	Workflow       string `json:"workflow" binding:"required"`
	Explainability bool   `json:"explainability"`
}

// createRunHandler handles POST /api/v1/runs. The run executes in the
// background; the response carries the registered work log snapshot for
// polling.
func (s *Server) createRunHandler(c *gin.Context) {
	var req CreateRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	kind := worklog.WorkflowKind(req.Workflow)
	if !kind.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown workflow: " + req.Workflow})
		return
	}

	if req.ExecutionID == "" {
		req.ExecutionID = uuid.New().String()
	}

	w, err := s.facade.Start(orchestrator.RunRequest{
		ExecutionID:    req.ExecutionID,
		Query:          req.Query,
		Kind:           kind,
		Explainability: req.Explainability,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, w.Snapshot())
}

// getRunHandler handles GET /api/v1/runs/:id.
func (s *Server) getRunHandler(c *gin.Context) {
	snap, err := s.facade.Status(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// getResultHandler handles GET /api/v1/runs/:id/result. It only answers
// for completed runs; polling callers get a conflict until then.
func (s *Server) getResultHandler(c *gin.Context) {
	snap, err := s.facade.Result(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// cancelRunHandler handles POST /api/v1/runs/:id/cancel. Cancellation is
// cooperative; the run stops at its next checkpoint, so the response only
// acknowledges the request.
func (s *Server) cancelRunHandler(c *gin.Context) {
	id := c.Param("id")
	tracked := s.facade.Cancel(id)
	if !tracked {
		if _, err := s.facade.Status(id); err != nil {
			writeError(c, err)
			return
		}
	}
	c.JSON(http.StatusAccepted, gin.H{"execution_id": id, "cancelling": true})
}

// activeRunsHandler handles GET /api/v1/runs/active.
func (s *Server) activeRunsHandler(c *gin.Context) {
	ids := s.facade.ActiveRuns()
	c.JSON(http.StatusOK, gin.H{"active": ids, "count": len(ids)})
}
