// Package httpapi is the reference HTTP binding for the orchestration
// engine: the four endpoints from spec.md §6 and nothing else — no auth,
// no quota, no streaming. It is a thin transport layer; every handler
// delegates immediately to the engine packages it wraps.
package httpapi

import (
	"context"

	"github.com/flowmesh/orchestrator/engine/discovery"
	"github.com/flowmesh/orchestrator/engine/job"
	"github.com/gin-gonic/gin"
)

// Submitter accepts a workflow submission and returns the new jobId
// immediately. Satisfied by *dispatch.Dispatcher.
type Submitter interface {
	Submit(ctx context.Context, workflowID, input string) (string, error)
}

// JobSource answers status polls. Satisfied by *job.Manager.
type JobSource interface {
	Get(jobID string) job.Record
}

// DiscoverySource answers the read-only catalog endpoints. Satisfied by
// *discovery.Service.
type DiscoverySource interface {
	Agents() []discovery.AgentSummary
	Workflows() []discovery.WorkflowSummary
}

// Dependencies bundles everything the handlers in this package need.
type Dependencies struct {
	Submitter Submitter
	Jobs      JobSource
	Discovery DiscoverySource
}

// Register attaches the submit/status/discovery routes to apiBase,
// mirroring the teacher's one-package-per-route-group Register(group)
// convention.
func Register(apiBase *gin.RouterGroup, deps Dependencies) {
	workflows := apiBase.Group("/workflows")
	{
		workflows.POST("/submit/:workflowId", submitHandler(deps.Submitter))
		workflows.GET("/status/:jobId", statusHandler(deps.Jobs))
	}

	discoveryGroup := apiBase.Group("/discovery")
	{
		discoveryGroup.GET("/workflows", discoveryWorkflowsHandler(deps.Discovery))
		discoveryGroup.GET("/agents", discoveryAgentsHandler(deps.Discovery))
	}
}
