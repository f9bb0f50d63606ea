// Package dispatch is the glue between a workflow submission and its
// asynchronous execution: it creates a job, hands it to a bounded worker
// pool, and returns immediately.
package dispatch

import (
	"context"
	"fmt"

	"github.com/flowmesh/orchestrator/engine/job"
	"github.com/flowmesh/orchestrator/pkg/logger"
)

// Executor runs a workflow to completion and returns its final output.
type Executor interface {
	Execute(ctx context.Context, workflowID, input string) (string, error)
}

// Dispatcher accepts submissions and runs them on a fixed-size worker pool.
// Workers never propagate a panic or error past their own goroutine; every
// outcome is written to the job manager as a terminal status.
type Dispatcher struct {
	jobs     *job.Manager
	executor Executor
	log      logger.Logger
	sem      chan struct{}
}

// New builds a Dispatcher whose worker pool admits at most concurrency
// simultaneous executions.
func New(jobs *job.Manager, executor Executor, concurrency int, log logger.Logger) *Dispatcher {
	if concurrency <= 0 {
		concurrency = 1
	}
	if log == nil {
		log = logger.FromContext(context.Background())
	}
	return &Dispatcher{jobs: jobs, executor: executor, log: log, sem: make(chan struct{}, concurrency)}
}

// Submit creates a PENDING job for workflowID and schedules its execution
// on a worker, returning the new jobId immediately. The worker keeps ctx's
// values but not its cancellation, so the job outlives the submitting call.
func (d *Dispatcher) Submit(ctx context.Context, workflowID, input string) (string, error) {
	jobID, err := d.jobs.Create(workflowID)
	if err != nil {
		return "", err
	}
	go d.run(context.WithoutCancel(ctx), jobID, workflowID, input)
	return jobID, nil
}

func (d *Dispatcher) run(ctx context.Context, jobID, workflowID, input string) {
	d.sem <- struct{}{}
	defer func() { <-d.sem }()
	defer d.recoverPanic(jobID)

	if err := d.jobs.Update(jobID, job.StatusProcessing, ""); err != nil {
		d.log.Error("failed to mark job processing", "jobId", jobID, "error", err)
		return
	}

	output, err := d.executor.Execute(ctx, workflowID, input)
	if err != nil {
		msg := fmt.Sprintf("Processing failed: %s", err.Error())
		if updateErr := d.jobs.Update(jobID, job.StatusFailed, msg); updateErr != nil {
			d.log.Error("failed to record job failure", "jobId", jobID, "error", updateErr)
		}
		return
	}
	if updateErr := d.jobs.Update(jobID, job.StatusCompleted, output); updateErr != nil {
		d.log.Error("failed to record job completion", "jobId", jobID, "error", updateErr)
	}
}

// recoverPanic ensures a panicking workflow execution still terminates the
// job as FAILED instead of crashing the worker pool.
func (d *Dispatcher) recoverPanic(jobID string) {
	if r := recover(); r != nil {
		msg := fmt.Sprintf("Processing failed: panic: %v", r)
		d.log.Error("worker panicked", "jobId", jobID, "panic", r)
		if err := d.jobs.Update(jobID, job.StatusFailed, msg); err != nil {
			d.log.Error("failed to record job failure after panic", "jobId", jobID, "error", err)
		}
	}
}
