// Package render turns a job into output files using the encoder that
// matches its kind and format.
package render

import (
	"fmt"

	"turbo-export/internal/core/csvexport"
	"turbo-export/internal/core/domain"
	"turbo-export/internal/core/splitzip"
	"turbo-export/internal/core/xlsx"
)

// Renderer is stateless and safe for concurrent use.
type Renderer struct{}

func NewRenderer() *Renderer {
	return &Renderer{}
}

// Process validates the job and renders it. Jobs in sync mode are encoded
// sequentially; the other modes use the chunked parallel encoders.
func (r *Renderer) Process(job *domain.Job) (domain.Result, error) {
	if err := job.Validate(); err != nil {
		return domain.Result{}, err
	}

	switch job.Kind {
	case domain.KindSplitZip:
		result, err := splitzip.NewSplitter(job.SplitZip).Execute(job.Headers, job.Rows)
		if err != nil {
			return domain.Result{}, err
		}
		return domain.Result{SplitZip: result}, nil
	case domain.KindExport:
		if err := r.export(job.Config, job.Headers, job.Rows); err != nil {
			return domain.Result{}, err
		}
		return domain.Result{Export: &domain.ExportResult{
			OutputPath: job.Config.OutputPath,
			RowCount:   len(job.Rows),
		}}, nil
	default:
		return domain.Result{}, fmt.Errorf("%w: %q", domain.ErrInvalidJobKind, job.Kind)
	}
}

func (r *Renderer) export(cfg domain.ExportConfig, headers []string, rows []domain.Row) error {
	parallel := cfg.Mode != domain.ModeSync
	switch cfg.Format {
	case domain.FormatCSV:
		return csvexport.NewWriter(cfg.Workers, cfg.ChunkSize).WriteFile(cfg.OutputPath, headers, rows, parallel)
	case domain.FormatXLSX:
		return xlsx.NewBuilder(cfg.Workers, cfg.ChunkSize).WriteFile(cfg.OutputPath, headers, rows, true, parallel)
	default:
		return fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, cfg.Format)
	}
}
