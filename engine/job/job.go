// Package job implements the concurrency-safe, in-memory job record store
// that decouples workflow submission from execution.
package job

import (
	"sync"

	"github.com/flowmesh/orchestrator/engine/core"
)

// Status is one of the four lifecycle states a job can occupy. Transitions
// are monotonic: PENDING -> PROCESSING -> {COMPLETED | FAILED}.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusCompleted  Status = "COMPLETED"
	StatusFailed     Status = "FAILED"
)

// notFoundMessage is the result returned for an unknown or expired jobId,
// letting the polling endpoint respond uniformly rather than 404ing.
const notFoundMessage = "Job ID not found or expired"

// Record is the externally visible shape of one job.
type Record struct {
	JobID      string
	WorkflowID string
	Status     Status
	Result     *string
}

// Manager is the concurrency-safe jobId -> Record store.
type Manager struct {
	mu      sync.RWMutex
	records map[string]*Record
}

// NewManager returns an empty Manager.
func NewManager() *Manager {
	return &Manager{records: make(map[string]*Record)}
}

// Create allocates a new job for workflowID in PENDING state and returns its id.
func (m *Manager) Create(workflowID string) (string, error) {
	id, err := core.NewID()
	if err != nil {
		return "", core.NewError(err, core.KindInternal, nil)
	}
	jobID := id.String()
	m.mu.Lock()
	m.records[jobID] = &Record{JobID: jobID, WorkflowID: workflowID, Status: StatusPending}
	m.mu.Unlock()
	return jobID, nil
}

// Update transitions jobID to status with the given result. result is only
// attached to the record for terminal states (COMPLETED, FAILED); a
// PENDING/PROCESSING transition leaves Result nil so pollers see null until
// the job actually finishes.
func (m *Manager) Update(jobID string, status Status, result string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[jobID]
	if !ok {
		return core.NewError(
			nil,
			core.KindInternal,
			map[string]any{"jobId": jobID, "reason": "update of unknown job"},
		)
	}
	rec.Status = status
	if status == StatusCompleted || status == StatusFailed {
		rec.Result = &result
	} else {
		rec.Result = nil
	}
	return nil
}

// Get returns the current record for jobID, or a synthetic FAILED record
// when jobID is unknown or expired.
func (m *Manager) Get(jobID string) Record {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[jobID]
	if !ok {
		msg := notFoundMessage
		return Record{JobID: jobID, Status: StatusFailed, Result: &msg}
	}
	return *rec
}
