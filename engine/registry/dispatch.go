package registry

import (
	"path/filepath"
	"strings"

	"github.com/flowmesh/orchestrator/engine/agent"
	"github.com/flowmesh/orchestrator/engine/watcher"
	"github.com/flowmesh/orchestrator/engine/workflow"
	"github.com/flowmesh/orchestrator/pkg/logger"
)

// Dispatcher wires File Watcher events to the Agent Registry and republishes
// workflow-file changes onto a channel the Workflow Engine drains, per the
// dispatch table in the Agent Registry's design.
type Dispatcher struct {
	agents          *AgentRegistry
	workflowChanges chan<- workflow.WorkflowFileChanged
	log             logger.Logger
}

// NewDispatcher builds a Dispatcher. workflowChanges should be buffered
// generously enough to absorb bursts of workflow file edits; the dispatcher
// never blocks indefinitely trying to send.
func NewDispatcher(agents *AgentRegistry, workflowChanges chan<- workflow.WorkflowFileChanged, log logger.Logger) *Dispatcher {
	return &Dispatcher{agents: agents, workflowChanges: workflowChanges, log: log}
}

// HandleEvent applies the dispatch table for one file event: a changed
// agent .yaml reloads that one agent, a changed workflow .yaml republishes
// to the engine, and a changed .md prompt reloads every .yaml sibling in
// the parent agent's directory.
func (d *Dispatcher) HandleEvent(ev watcher.Event) {
	switch strings.ToLower(filepath.Ext(ev.Path)) {
	case ".yaml", ".yml":
		d.handleYAML(ev.Path)
	case ".md":
		d.handleMarkdown(ev.Path)
	}
}

func (d *Dispatcher) handleYAML(path string) {
	if workflow.IsWorkflowPath(path) {
		d.publishWorkflowChange(path)
		return
	}
	d.reloadAgentFile(path)
}

// handleMarkdown reloads the agent(s) owning a changed prompt file. The
// owning agent yaml may sit alongside the prompt or one directory above it
// (a prompt kept in its own subdirectory), so both directories are scanned
// for both yaml extensions.
func (d *Dispatcher) handleMarkdown(path string) {
	dir := filepath.Dir(path)
	dirs := []string{dir}
	if parent := filepath.Dir(dir); parent != dir {
		dirs = append(dirs, parent)
	}
	seen := make(map[string]bool)
	for _, d2 := range dirs {
		for _, pattern := range []string{"*.yaml", "*.yml"} {
			siblings, err := discoverFiles(d2, pattern)
			if err != nil {
				d.log.Warn("failed to scan sibling agent files for prompt change", "dir", d2, "error", err)
				continue
			}
			for _, sibling := range siblings {
				if seen[sibling] {
					continue
				}
				seen[sibling] = true
				d.reloadAgentFile(sibling)
			}
		}
	}
}

func (d *Dispatcher) reloadAgentFile(path string) {
	def, err := agent.Load(path, d.agents.root)
	if err != nil {
		d.log.Warn("failed to reload agent file", "path", path, "error", err)
		return
	}
	d.agents.put(def)
}

func (d *Dispatcher) publishWorkflowChange(path string) {
	select {
	case d.workflowChanges <- workflow.WorkflowFileChanged{Path: path}:
	default:
		d.log.Warn("workflow change channel full, dropping event", "path", path)
	}
}
