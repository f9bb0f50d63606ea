// Package discovery exposes read-only projections of the agent registry and
// workflow engine for clients that need to enumerate what is available
// without ever seeing prompts, credentials, or other internal state.
package discovery

import (
	"sort"

	"github.com/flowmesh/orchestrator/engine/agent"
	"github.com/flowmesh/orchestrator/engine/workflow"
)

// AgentSummary is the only view of an agent definition ever surfaced
// outside the engine: no system/user prompt, model, or metadata, since
// those may carry provider identifiers or other sensitive configuration.
type AgentSummary struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	AllowedTools []string `json:"allowedTools"`
}

// WorkflowSummary is the only view of a workflow definition ever surfaced
// outside the engine.
type WorkflowSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// AgentSource is satisfied by the agent registry.
type AgentSource interface {
	All() []*agent.Definition
}

// WorkflowSource is satisfied by the workflow engine.
type WorkflowSource interface {
	All() []*workflow.Definition
}

// Service answers discovery queries over live agent and workflow sources.
type Service struct {
	agents    AgentSource
	workflows WorkflowSource
}

// NewService builds a discovery Service backed by agents and workflows.
func NewService(agents AgentSource, workflows WorkflowSource) *Service {
	return &Service{agents: agents, workflows: workflows}
}

// Agents returns a summary of every currently loaded agent, sorted by ID
// for a stable response ordering.
func (s *Service) Agents() []AgentSummary {
	defs := s.agents.All()
	out := make([]AgentSummary, 0, len(defs))
	for _, d := range defs {
		out = append(out, AgentSummary{
			ID:           d.ID,
			Name:         d.Name,
			Description:  d.Description,
			AllowedTools: d.AllowedTools,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Workflows returns a summary of every currently loaded workflow, sorted
// by ID for a stable response ordering.
func (s *Service) Workflows() []WorkflowSummary {
	defs := s.workflows.All()
	out := make([]WorkflowSummary, 0, len(defs))
	for _, d := range defs {
		out = append(out, WorkflowSummary{ID: d.ID, Name: d.Name, Type: string(d.Type)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
