package domain

import (
	"time"

	"github.com/google/uuid"
)

type ExportRunStatus string

const (
	RunStatusRunning   ExportRunStatus = "running"
	RunStatusCompleted ExportRunStatus = "completed"
	RunStatusFailed    ExportRunStatus = "failed"
)

// ExportRun is the history record of one executed job.
type ExportRun struct {
	ID           string          `json:"id"`
	JobID        string          `json:"job_id"`
	OrgID        string          `json:"org_id"`
	Kind         JobKind         `json:"kind"`
	Mode         ExportMode      `json:"mode"`
	Format       ExportFormat    `json:"format"`
	Status       ExportRunStatus `json:"status"`
	StartTime    time.Time       `json:"start_time"`
	EndTime      *time.Time      `json:"end_time,omitempty"`
	ErrorMessage *string         `json:"error_message,omitempty"`
	OutputPath   string          `json:"output_path"`
	RowCount     int             `json:"row_count"`
	PartCount    int             `json:"part_count"`
}

func NewExportRun(job *Job) ExportRun {
	return ExportRun{
		ID:         uuid.New().String(),
		JobID:      job.ID,
		OrgID:      job.OrgID,
		Kind:       job.Kind,
		Mode:       job.Config.Mode,
		Format:     job.Config.Format,
		Status:     RunStatusRunning,
		StartTime:  time.Now().UTC(),
		OutputPath: job.Config.OutputPath,
	}
}

func (r ExportRun) WithCompleted(result Result) ExportRun {
	now := time.Now().UTC()
	completed := r
	completed.Status = RunStatusCompleted
	completed.EndTime = &now
	completed.ErrorMessage = nil
	completed.OutputPath = result.OutputPath()
	completed.RowCount = result.RowCount()
	completed.PartCount = result.PartCount()
	return completed
}

func (r ExportRun) WithFailed(errorMessage string) ExportRun {
	now := time.Now().UTC()
	failed := r
	failed.Status = RunStatusFailed
	failed.EndTime = &now
	failed.ErrorMessage = &errorMessage
	return failed
}

// Duration is the wall-clock time of a finished run, zero while running.
func (r ExportRun) Duration() time.Duration {
	if r.EndTime == nil {
		return 0
	}
	return r.EndTime.Sub(r.StartTime)
}

func IsValidRunStatus(s string) bool {
	switch ExportRunStatus(s) {
	case RunStatusRunning, RunStatusCompleted, RunStatusFailed:
		return true
	default:
		return false
	}
}
