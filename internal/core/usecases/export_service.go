package usecases

import (
	"context"
	"log"
	"time"

	"turbo-export/internal/core/domain"
)

type ExportRunRepository interface {
	Save(run domain.ExportRun) error
	FindByID(id string) (domain.ExportRun, error)
	FindByOrgID(orgID string, offset, limit int) ([]domain.ExportRun, int, error)
	DeleteFinishedBefore(cutoff time.Time) (int, error)
}

// JobExecutor runs a job to completion and returns its result.
type JobExecutor interface {
	Execute(job *domain.Job) (domain.Result, error)
}

// JobCompletionNotifier is told about every finished run, successful or not.
type JobCompletionNotifier interface {
	JobComplete(ctx context.Context, notification *domain.ExportNotification) error
}

type ExportService struct {
	executor JobExecutor
	runRepo  ExportRunRepository
	notifier JobCompletionNotifier
}

func NewExportService(executor JobExecutor, runRepo ExportRunRepository, notifier JobCompletionNotifier) *ExportService {
	return &ExportService{
		executor: executor,
		runRepo:  runRepo,
		notifier: notifier,
	}
}

// Export writes headers and rows to a single CSV or XLSX file.
func (s *ExportService) Export(ctx context.Context, orgID string, cfg domain.ExportConfig, headers []string, rows []domain.Row) (domain.ExportRun, domain.Result, error) {
	job := domain.NewExportJob(cfg, headers, rows)
	job.OrgID = orgID
	return s.run(ctx, job)
}

// SplitZip writes headers and rows as numbered parts inside one ZIP archive.
func (s *ExportService) SplitZip(ctx context.Context, orgID string, cfg domain.SplitZipConfig, headers []string, rows []domain.Row) (domain.ExportRun, domain.Result, error) {
	job := domain.NewSplitZipJob(cfg, headers, rows)
	job.OrgID = orgID
	return s.run(ctx, job)
}

func (s *ExportService) run(ctx context.Context, job *domain.Job) (domain.ExportRun, domain.Result, error) {
	log.Printf("[DEBUG] ExportService - job %s: kind=%s mode=%s format=%s rows=%d", job.ID, job.Kind, job.Config.Mode, job.Config.Format, len(job.Rows))

	if err := job.Validate(); err != nil {
		log.Printf("[DEBUG] ExportService - job %s rejected: %v", job.ID, err)
		return domain.ExportRun{}, domain.Result{}, err
	}

	run := domain.NewExportRun(job)
	if err := s.runRepo.Save(run); err != nil {
		// The export still runs; only its history is lost.
		log.Printf("Failed to create export run record: %v", err)
	}

	result, execErr := s.executor.Execute(job)
	if execErr != nil {
		run = run.WithFailed(execErr.Error())
	} else {
		run = run.WithCompleted(result)
	}

	if err := s.runRepo.Save(run); err != nil {
		log.Printf("Failed to update export run record: %v", err)
	} else {
		log.Printf("[DEBUG] ExportService - run %s finished with status %s in %v", run.ID, run.Status, run.Duration())
	}

	if err := s.notifier.JobComplete(ctx, domain.NewExportNotification(run)); err != nil {
		log.Printf("Warning: failed to send completion notification for run %s: %v", run.ID, err)
	}

	return run, result, execErr
}
