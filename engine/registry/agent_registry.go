package registry

import (
	"fmt"
	"sync"

	"github.com/flowmesh/orchestrator/engine/agent"
	"github.com/flowmesh/orchestrator/engine/core"
)

// AgentRegistry holds the currently loaded agent definitions, keyed by ID.
// Reads take an atomic snapshot under a read lock; reloads replace the
// snapshot wholesale under a write lock, so readers never observe a
// partially rebuilt registry.
type AgentRegistry struct {
	root    string
	pattern string

	mu   sync.RWMutex
	byID map[string]*agent.Definition
}

// NewAgentRegistry creates an empty registry rooted at root. pattern is the
// glob (relative to root) used to discover agent definition files, e.g.
// "agents/**/*.yaml".
func NewAgentRegistry(root, pattern string) *AgentRegistry {
	return &AgentRegistry{
		root:    root,
		pattern: pattern,
		byID:    make(map[string]*agent.Definition),
	}
}

// Reload re-discovers and re-parses every agent file under root, replacing
// the registry's contents atomically. A per-file load failure is collected
// but does not abort the reload of the remaining files.
func (r *AgentRegistry) Reload() error {
	files, err := discoverFiles(r.root, r.pattern)
	if err != nil {
		return err
	}
	next := make(map[string]*agent.Definition, len(files))
	var failures []string
	for _, file := range files {
		def, loadErr := agent.Load(file, r.root)
		if loadErr != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", file, loadErr))
			continue
		}
		next[def.ID] = def
	}
	r.mu.Lock()
	r.byID = next
	r.mu.Unlock()
	if len(failures) > 0 {
		return core.NewError(
			fmt.Errorf("failed to load %d agent file(s)", len(failures)),
			core.KindConfigInvalid,
			map[string]any{"failures": failures},
		)
	}
	return nil
}

// put atomically replaces (or inserts) the entry for def.ID. Used by the
// dispatcher when reloading a single changed file.
func (r *AgentRegistry) put(def *agent.Definition) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[def.ID] = def
}

// Remove atomically evicts the entry for id, if present.
func (r *AgentRegistry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byID, id)
}

// Get returns the agent definition for id.
func (r *AgentRegistry) Get(id string) (*agent.Definition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.byID[id]
	if !ok {
		return nil, core.NewError(
			fmt.Errorf("agent not found: %s", id),
			core.KindAgentNotFound,
			map[string]any{"id": id},
		)
	}
	return def, nil
}

// All returns a snapshot slice of every currently loaded agent definition.
func (r *AgentRegistry) All() []*agent.Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*agent.Definition, 0, len(r.byID))
	for _, def := range r.byID {
		out = append(out, def)
	}
	return out
}

// Count returns the number of currently loaded agent definitions.
func (r *AgentRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}
