package ports

import (
	"context"
	"time"

	"turbo-export/internal/core/domain"
)

// ExportService defines the contract for running exports on behalf of an organization.
type ExportService interface {
	// Export writes a single CSV or XLSX file
	Export(ctx context.Context, orgID string, cfg domain.ExportConfig, headers []string, rows []domain.Row) (domain.ExportRun, domain.Result, error)

	// SplitZip writes numbered parts into a single ZIP archive
	SplitZip(ctx context.Context, orgID string, cfg domain.SplitZipConfig, headers []string, rows []domain.Row) (domain.ExportRun, domain.Result, error)
}

// ExportRunService defines the contract for reading and pruning run history.
type ExportRunService interface {
	GetRunWithOrgCheck(ctx context.Context, runID, orgID string) (domain.ExportRun, error)
	ListRuns(ctx context.Context, orgID string, offset, limit int) ([]domain.ExportRun, int, error)
	PruneRuns(ctx context.Context, maxAge time.Duration) (int, error)
}
