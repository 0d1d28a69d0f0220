package http

import (
	"time"

	"turbo-export/internal/core/domain"
)

// exportConfigRequest mirrors domain.ExportConfig; optional flags are pointers
// so that an omitted field can be told apart from an explicit false.
type exportConfigRequest struct {
	Mode           domain.ExportMode   `json:"mode"`
	Format         domain.ExportFormat `json:"format"`
	Workers        int                 `json:"workers"`
	ChunkSize      int                 `json:"chunk_size"`
	OutputPath     string              `json:"output_path"`
	Split          *bool               `json:"split"`
	Zip            *bool               `json:"zip"`
	IncludeHeaders *bool               `json:"include_headers"`
}

type exportRequest struct {
	Headers []string            `json:"headers"`
	Rows    [][]interface{}     `json:"rows"`
	Config  exportConfigRequest `json:"config"`
}

func (r exportRequest) domainRows() []domain.Row {
	rows := make([]domain.Row, len(r.Rows))
	for i, row := range r.Rows {
		rows[i] = domain.Row(row)
	}
	return rows
}

// ExportResponse is returned by both export endpoints. Result holds either an
// ExportResult or a SplitZipResult.
type ExportResponse struct {
	RunID  string      `json:"run_id"`
	JobID  string      `json:"job_id"`
	Result interface{} `json:"result"`
}

// RunResponse is the API view of an ExportRun. org_id is implied by the identity header.
type RunResponse struct {
	ID           string     `json:"id"`
	JobID        string     `json:"job_id"`
	Kind         string     `json:"kind"`
	Mode         string     `json:"mode"`
	Format       string     `json:"format"`
	Status       string     `json:"status"`
	StartTime    time.Time  `json:"start_time"`
	EndTime      *time.Time `json:"end_time,omitempty"`
	DurationMS   int64      `json:"duration_ms"`
	ErrorMessage *string    `json:"error_message,omitempty"`
	OutputPath   string     `json:"output_path"`
	RowCount     int        `json:"row_count"`
	PartCount    int        `json:"part_count"`
}

func ToRunResponse(run domain.ExportRun) RunResponse {
	return RunResponse{
		ID:           run.ID,
		JobID:        run.JobID,
		Kind:         string(run.Kind),
		Mode:         string(run.Mode),
		Format:       string(run.Format),
		Status:       string(run.Status),
		StartTime:    run.StartTime,
		EndTime:      run.EndTime,
		DurationMS:   run.Duration().Milliseconds(),
		ErrorMessage: run.ErrorMessage,
		OutputPath:   run.OutputPath,
		RowCount:     run.RowCount,
		PartCount:    run.PartCount,
	}
}

func ToRunResponseList(runs []domain.ExportRun) []RunResponse {
	responses := make([]RunResponse, len(runs))
	for i, run := range runs {
		responses[i] = ToRunResponse(run)
	}
	return responses
}
