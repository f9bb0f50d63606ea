package httpapi

import (
	"io"
	"net/http"

	"github.com/flowmesh/orchestrator/engine/job"
	"github.com/flowmesh/orchestrator/pkg/logger"
	"github.com/gin-gonic/gin"
)

// submitResponse is the exact shape from spec.md §6: result is always null
// on submission since the job has only just been created.
type submitResponse struct {
	JobID  string  `json:"jobId"`
	Status string  `json:"status"`
	Result *string `json:"result"`
}

// statusResponse mirrors a job.Record for the wire.
type statusResponse struct {
	JobID  string  `json:"jobId"`
	Status string  `json:"status"`
	Result *string `json:"result"`
}

func submitHandler(submitter Submitter) gin.HandlerFunc {
	return func(c *gin.Context) {
		workflowID := c.Param("workflowId")
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
			return
		}
		jobID, err := submitter.Submit(c.Request.Context(), workflowID, string(body))
		if err != nil {
			logger.FromContext(c.Request.Context()).Error(
				"failed to submit workflow", "workflowId", workflowID, "error", err,
			)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to submit workflow"})
			return
		}
		c.JSON(http.StatusAccepted, submitResponse{JobID: jobID, Status: string(job.StatusPending), Result: nil})
	}
}

func statusHandler(jobs JobSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		jobID := c.Param("jobId")
		rec := jobs.Get(jobID)
		c.JSON(http.StatusOK, statusResponse{JobID: rec.JobID, Status: string(rec.Status), Result: rec.Result})
	}
}

func discoveryWorkflowsHandler(source DiscoverySource) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, source.Workflows())
	}
}

func discoveryAgentsHandler(source DiscoverySource) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, source.Agents())
	}
}
