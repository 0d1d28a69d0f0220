// Package splitzip partitions rows into fixed-size parts, encodes each part
// as a standalone CSV or XLSX document, and packages them in one ZIP archive.
package splitzip

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zip"

	"turbo-export/internal/core/chunk"
	"turbo-export/internal/core/csvexport"
	"turbo-export/internal/core/domain"
	"turbo-export/internal/core/xlsx"
)

type Splitter struct {
	config domain.SplitZipConfig
	xlsx   *xlsx.Builder
}

func NewSplitter(config domain.SplitZipConfig) *Splitter {
	normalized := config.Normalize()
	return &Splitter{
		config: normalized,
		// Each part is a single sequential render; parallelism is across parts.
		xlsx: xlsx.NewBuilder(1, normalized.ChunkSize),
	}
}

// PartCount returns ceil(rows/partSize), never less than one.
func PartCount(rows, partSize int) int {
	return len(chunk.Plan(rows, partSize, 0))
}

// PartName returns the archive entry name of the zero-based part index.
func PartName(index int, format domain.ExportFormat) string {
	return fmt.Sprintf("part_%d.%s", index+1, format.Extension())
}

// Execute writes the archive to the configured output path.
func (s *Splitter) Execute(headers []string, rows []domain.Row) (*domain.SplitZipResult, error) {
	if err := s.config.Validate(); err != nil {
		return nil, err
	}

	file, err := os.Create(s.config.OutputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}

	partFiles, err := s.Write(file, headers, rows)
	if err != nil {
		file.Close()
		return nil, err
	}
	if err := file.Close(); err != nil {
		return nil, fmt.Errorf("failed to close output file: %w", err)
	}

	return &domain.SplitZipResult{
		OutputPath: s.config.OutputPath,
		TotalParts: len(partFiles),
		TotalRows:  len(rows),
		PartFiles:  partFiles,
	}, nil
}

// Write emits the archive to out and returns the part names in order.
// Sync mode streams each part into its entry; the other modes encode parts
// concurrently and write them in ascending index once all have finished.
func (s *Splitter) Write(out io.Writer, headers []string, rows []domain.Row) ([]string, error) {
	zw := zip.NewWriter(out)
	parts := chunk.Plan(len(rows), s.config.ChunkSize, 0)

	var partFiles []string
	var err error
	if s.config.Mode == domain.ModeSync {
		partFiles, err = s.writeSync(zw, parts, headers, rows)
	} else {
		partFiles, err = s.writeParallel(zw, parts, headers, rows)
	}
	if err != nil {
		return nil, err
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize archive: %w", err)
	}
	return partFiles, nil
}

func (s *Splitter) writeSync(zw *zip.Writer, parts []chunk.Chunk, headers []string, rows []domain.Row) ([]string, error) {
	partFiles := make([]string, 0, len(parts))
	for _, p := range parts {
		name := PartName(p.Index, s.config.Format)
		w, err := zw.Create(name)
		if err != nil {
			return nil, fmt.Errorf("part %d: failed to create zip entry: %w", p.Index+1, err)
		}
		if err := s.encodePart(w, headers, rows[p.Start:p.End]); err != nil {
			return nil, fmt.Errorf("part %d: %w", p.Index+1, err)
		}
		partFiles = append(partFiles, name)
	}
	return partFiles, nil
}

func (s *Splitter) writeParallel(zw *zip.Writer, parts []chunk.Chunk, headers []string, rows []domain.Row) ([]string, error) {
	results, err := chunk.Run(parts, s.config.Workers, func(p chunk.Chunk) (domain.PartResult, error) {
		var buf bytes.Buffer
		if err := s.encodePart(&buf, headers, rows[p.Start:p.End]); err != nil {
			return domain.PartResult{}, fmt.Errorf("part %d: %w", p.Index+1, err)
		}
		return domain.PartResult{
			Index:    p.Index,
			Name:     PartName(p.Index, s.config.Format),
			Data:     buf.Bytes(),
			RowCount: p.Len(),
		}, nil
	})
	if err != nil {
		return nil, err
	}

	partFiles := make([]string, 0, len(results))
	for _, result := range results {
		w, err := zw.Create(result.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to create zip entry %s: %w", result.Name, err)
		}
		if _, err := w.Write(result.Data); err != nil {
			return nil, fmt.Errorf("failed to write zip entry %s: %w", result.Name, err)
		}
		partFiles = append(partFiles, result.Name)
	}
	return partFiles, nil
}

func (s *Splitter) encodePart(w io.Writer, headers []string, rows []domain.Row) error {
	switch s.config.Format {
	case domain.FormatCSV:
		return csvexport.EncodePart(w, headers, rows, s.config.IncludeHeaders)
	case domain.FormatXLSX:
		return s.xlsx.Write(w, headers, rows, s.config.IncludeHeaders, false)
	default:
		return fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, s.config.Format)
	}
}
