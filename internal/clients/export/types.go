package export

import (
	"time"
)

// ExportConfig is the wire form of an export configuration. Zero values are
// filled in by the server from its configured defaults.
type ExportConfig struct {
	Mode           string `json:"mode,omitempty"`
	Format         string `json:"format,omitempty"`
	Workers        int    `json:"workers,omitempty"`
	ChunkSize      int    `json:"chunk_size,omitempty"`
	OutputPath     string `json:"output_path,omitempty"`
	Split          *bool  `json:"split,omitempty"`
	Zip            *bool  `json:"zip,omitempty"`
	IncludeHeaders *bool  `json:"include_headers,omitempty"`
}

// ExportRequest carries the table to export.
type ExportRequest struct {
	Headers []string        `json:"headers"`
	Rows    [][]interface{} `json:"rows"`
	Config  ExportConfig    `json:"config"`
}

// ExportResult covers both single-file and split+zip results; the
// split-only fields are zero for a single-file export.
type ExportResult struct {
	OutputPath string   `json:"output_path"`
	RowCount   int      `json:"row_count"`
	TotalParts int      `json:"total_parts"`
	TotalRows  int      `json:"total_rows"`
	PartFiles  []string `json:"part_files"`
}

type ExportResponse struct {
	RunID  string       `json:"run_id"`
	JobID  string       `json:"job_id"`
	Result ExportResult `json:"result"`
}

// Run represents one recorded export run
type Run struct {
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

// RunListResponse is one page of runs
type RunListResponse struct {
	Meta struct {
		Count int `json:"count"`
	} `json:"meta"`
	Links struct {
		First string `json:"first,omitempty"`
		Last  string `json:"last,omitempty"`
		Next  string `json:"next,omitempty"`
		Prev  string `json:"prev,omitempty"`
	} `json:"links"`
	Data []Run `json:"data"`
}

// ListParams represents query parameters for listing runs
type ListParams struct {
	Limit  *int
	Offset *int
}

type ErrorObject struct {
	Status string `json:"status"`
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

// ErrorResponse is the JSON:API error document returned by the server
type ErrorResponse struct {
	Errors []ErrorObject `json:"errors"`
}
