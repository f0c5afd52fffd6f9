package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/regulata/researchd/pkg/executor"
	"github.com/regulata/researchd/pkg/orchestrator"
	"github.com/regulata/researchd/pkg/worklog"
)

// writeError maps facade-layer errors to HTTP error responses.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, orchestrator.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
	case errors.Is(err, orchestrator.ErrRunActive), errors.Is(err, executor.ErrAlreadyActive):
		c.JSON(http.StatusConflict, gin.H{"error": "a run with this execution id is already active"})
	case errors.Is(err, orchestrator.ErrNotReady):
		c.JSON(http.StatusConflict, gin.H{"error": "run has not completed"})
	case errors.Is(err, worklog.ErrUnknownWorkflowKind):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, executor.ErrShuttingDown):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "server is shutting down"})
	default:
		slog.Error("Unexpected error in handler", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
