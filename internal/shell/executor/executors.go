package executor

import (
	"log"

	"turbo-export/internal/core/domain"
	"turbo-export/internal/shell/worker"
)

// JobExecutor runs a job to completion. Every implementation produces the
// same output for the same job; they differ only in where the work runs.
type JobExecutor interface {
	Execute(job *domain.Job) (domain.Result, error)
}

// InlineExecutor processes the job on the calling goroutine.
type InlineExecutor struct {
	processor worker.Processor
}

func NewInlineExecutor(processor worker.Processor) *InlineExecutor {
	return &InlineExecutor{processor: processor}
}

func (e *InlineExecutor) Execute(job *domain.Job) (domain.Result, error) {
	result, err := worker.Run(e.processor, job)
	job.Complete(result, err)
	return job.Wait()
}

// PoolExecutor builds a pool sized to the job's worker count, runs the job
// on it and tears the pool down before returning.
type PoolExecutor struct {
	processor     worker.Processor
	queueCapacity int
}

func NewPoolExecutor(processor worker.Processor, queueCapacity int) *PoolExecutor {
	return &PoolExecutor{processor: processor, queueCapacity: queueCapacity}
}

func (e *PoolExecutor) Execute(job *domain.Job) (domain.Result, error) {
	pool := worker.NewPool(job.Config.Workers, e.queueCapacity, e.processor)
	pool.Start()
	defer pool.Shutdown()

	if !pool.Submit(job) {
		return domain.Result{}, domain.ErrPoolClosed
	}
	return job.Wait()
}

// SharedPoolExecutor submits to a long-lived pool shared with other callers.
type SharedPoolExecutor struct {
	shared *worker.SharedPool
}

func NewSharedPoolExecutor(shared *worker.SharedPool) *SharedPoolExecutor {
	return &SharedPoolExecutor{shared: shared}
}

func (e *SharedPoolExecutor) Execute(job *domain.Job) (domain.Result, error) {
	if !e.shared.Submit(job) {
		log.Printf("[DEBUG] SharedPoolExecutor - rejected job %s: shared pool is shut down", job.ID)
		return domain.Result{}, domain.ErrPoolClosed
	}
	return job.Wait()
}
