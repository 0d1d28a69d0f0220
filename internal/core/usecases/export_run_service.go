package usecases

import (
	"context"
	"fmt"
	"log"
	"time"

	"turbo-export/internal/core/domain"
)

type ExportRunService struct {
	runRepo ExportRunRepository
}

func NewExportRunService(runRepo ExportRunRepository) *ExportRunService {
	return &ExportRunService{
		runRepo: runRepo,
	}
}

// GetRunWithOrgCheck returns a run only if it belongs to orgID.
func (s *ExportRunService) GetRunWithOrgCheck(ctx context.Context, runID, orgID string) (domain.ExportRun, error) {
	run, err := s.runRepo.FindByID(runID)
	if err != nil {
		return domain.ExportRun{}, err
	}

	if run.OrgID != orgID {
		log.Printf("[DEBUG] ExportRunService - org_id mismatch: run belongs to org_id=%s, requested org_id=%s", run.OrgID, orgID)
		return domain.ExportRun{}, domain.ErrExportRunNotFound
	}

	return run, nil
}

// ListRuns returns one page of an organization's runs, newest first, and the total count.
func (s *ExportRunService) ListRuns(ctx context.Context, orgID string, offset, limit int) ([]domain.ExportRun, int, error) {
	if orgID == "" {
		return nil, 0, fmt.Errorf("org_id is required to list runs")
	}
	return s.runRepo.FindByOrgID(orgID, offset, limit)
}

// PruneRuns deletes finished runs that ended more than maxAge ago.
func (s *ExportRunService) PruneRuns(ctx context.Context, maxAge time.Duration) (int, error) {
	cutoff := time.Now().UTC().Add(-maxAge)
	deleted, err := s.runRepo.DeleteFinishedBefore(cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune export runs: %w", err)
	}
	log.Printf("[DEBUG] ExportRunService - pruned %d runs finished before %s", deleted, cutoff.Format(time.RFC3339))
	return deleted, nil
}
