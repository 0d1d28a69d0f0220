package executor

import (
	"fmt"
	"log"
	"time"

	"turbo-export/internal/core/domain"
)

// DefaultJobExecutor dispatches each job to the executor registered for its mode.
type DefaultJobExecutor struct {
	executors map[domain.ExportMode]JobExecutor
}

func NewJobExecutor(executors map[domain.ExportMode]JobExecutor) *DefaultJobExecutor {
	return &DefaultJobExecutor{
		executors: executors,
	}
}

func (e *DefaultJobExecutor) Execute(job *domain.Job) (domain.Result, error) {
	mode := job.Config.Mode
	executor, ok := e.executors[mode]
	if !ok {
		return domain.Result{}, fmt.Errorf("%w: %q", domain.ErrUnsupportedMode, mode)
	}

	log.Printf("Executing %s job %s in %s mode", job.Kind, job.ID, mode)

	start := time.Now()
	result, err := runTracked(executor, job)

	status := string(domain.RunStatusCompleted)
	if err != nil {
		status = string(domain.RunStatusFailed)
	}
	JobDuration.WithLabelValues(string(mode)).Observe(time.Since(start).Seconds())
	JobsTotal.WithLabelValues(string(mode), string(job.Config.Format), status).Inc()
	if err == nil {
		RowsExported.WithLabelValues(string(job.Config.Format)).Add(float64(result.RowCount()))
	}

	return result, err
}

func runTracked(executor JobExecutor, job *domain.Job) (domain.Result, error) {
	JobsCurrentlyRunning.Inc()
	defer JobsCurrentlyRunning.Dec()
	return executor.Execute(job)
}
