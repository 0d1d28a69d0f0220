// Package xlsx writes minimal single-sheet OOXML workbooks with inline
// string cells, without a spreadsheet library.
package xlsx

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zip"

	"turbo-export/internal/core/chunk"
	"turbo-export/internal/core/domain"
)

const sheetBufferSize = 128 * 1024

type Builder struct {
	workers   int
	chunkSize int
}

// NewBuilder returns a builder that renders up to workers row chunks of
// chunkSize rows at a time in parallel mode.
func NewBuilder(workers, chunkSize int) *Builder {
	if workers <= 0 {
		workers = domain.DefaultWorkers
	}
	if chunkSize <= 0 {
		chunkSize = domain.DefaultChunkSize
	}
	return &Builder{workers: workers, chunkSize: chunkSize}
}

// Write emits a complete workbook to out. The header row, when included and
// non-empty, is row 1 and data rows follow without gaps.
func (b *Builder) Write(out io.Writer, headers []string, rows []domain.Row, includeHeaders, parallel bool) error {
	zw := zip.NewWriter(out)

	for _, part := range fixedParts {
		w, err := zw.Create(part.path)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", part.path, err)
		}
		if _, err := io.WriteString(w, part.content); err != nil {
			return fmt.Errorf("failed to write %s: %w", part.path, err)
		}
	}

	sheet, err := zw.Create(worksheetPath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", worksheetPath, err)
	}
	if err := b.writeSheet(sheet, headers, rows, includeHeaders, parallel); err != nil {
		return err
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finalize workbook: %w", err)
	}
	return nil
}

// WriteFile creates path and writes the workbook into it.
func (b *Builder) WriteFile(path string, headers []string, rows []domain.Row, includeHeaders, parallel bool) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := b.Write(file, headers, rows, includeHeaders, parallel); err != nil {
		file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close output file: %w", err)
	}
	return nil
}

func (b *Builder) writeSheet(w io.Writer, headers []string, rows []domain.Row, includeHeaders, parallel bool) error {
	buffered := bufio.NewWriterSize(w, sheetBufferSize)

	if _, err := buffered.WriteString(worksheetPrologue); err != nil {
		return fmt.Errorf("failed to write worksheet: %w", err)
	}

	rowNum := 1
	if includeHeaders && len(headers) > 0 {
		if _, err := buffered.Write(appendRow(nil, rowNum, headers)); err != nil {
			return fmt.Errorf("failed to write header row: %w", err)
		}
		rowNum++
	}

	if parallel {
		chunks := chunk.Plan(len(rows), b.chunkSize, rowNum)
		parts, err := chunk.Run(chunks, b.workers, func(c chunk.Chunk) ([]byte, error) {
			return renderRows(rows[c.Start:c.End], c.FirstRow), nil
		})
		if err != nil {
			return err
		}
		if err := chunk.Reassemble(buffered, parts); err != nil {
			return err
		}
	} else {
		var scratch []byte
		for i, row := range rows {
			scratch = appendRow(scratch[:0], rowNum+i, domain.RowText(row))
			if _, err := buffered.Write(scratch); err != nil {
				return fmt.Errorf("failed to write row %d: %w", rowNum+i, err)
			}
		}
	}

	if _, err := buffered.WriteString(worksheetEpilogue); err != nil {
		return fmt.Errorf("failed to write worksheet: %w", err)
	}
	if err := buffered.Flush(); err != nil {
		return fmt.Errorf("failed to flush worksheet: %w", err)
	}
	return nil
}

// renderRows renders a contiguous run of rows starting at output row firstRow.
func renderRows(rows []domain.Row, firstRow int) []byte {
	var dst []byte
	for i, row := range rows {
		dst = appendRow(dst, firstRow+i, domain.RowText(row))
	}
	return dst
}
