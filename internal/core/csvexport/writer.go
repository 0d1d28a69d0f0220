// Package csvexport encodes tabular rows as RFC 4180 style CSV, either
// sequentially or as independently rendered chunks reassembled in order.
package csvexport

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"turbo-export/internal/core/chunk"
	"turbo-export/internal/core/domain"
)

const bufferSize = 64 * 1024

type Writer struct {
	workers   int
	chunkSize int
}

// NewWriter returns a writer that renders up to workers chunks of chunkSize
// rows at a time in parallel mode.
func NewWriter(workers, chunkSize int) *Writer {
	if workers <= 0 {
		workers = domain.DefaultWorkers
	}
	if chunkSize <= 0 {
		chunkSize = domain.DefaultChunkSize
	}
	return &Writer{workers: workers, chunkSize: chunkSize}
}

// Encode writes the header record, when present, followed by one record per row.
func (w *Writer) Encode(out io.Writer, headers []string, rows []domain.Row, parallel bool) error {
	if !parallel {
		return w.encodeSync(out, headers, rows)
	}
	return w.encodeParallel(out, headers, rows)
}

// WriteFile creates path and encodes into it.
func (w *Writer) WriteFile(path string, headers []string, rows []domain.Row, parallel bool) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	buffered := bufio.NewWriterSize(file, bufferSize)
	if err := w.Encode(buffered, headers, rows, parallel); err != nil {
		file.Close()
		return err
	}
	if err := buffered.Flush(); err != nil {
		file.Close()
		return fmt.Errorf("failed to flush output file: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close output file: %w", err)
	}
	return nil
}

func (w *Writer) encodeSync(out io.Writer, headers []string, rows []domain.Row) error {
	csvWriter := csv.NewWriter(out)
	if err := writeHeader(csvWriter, headers); err != nil {
		return err
	}
	if err := writeRecords(csvWriter, rows); err != nil {
		return err
	}
	csvWriter.Flush()
	if err := csvWriter.Error(); err != nil {
		return fmt.Errorf("csv writer error: %w", err)
	}
	return nil
}

func (w *Writer) encodeParallel(out io.Writer, headers []string, rows []domain.Row) error {
	headerWriter := csv.NewWriter(out)
	if err := writeHeader(headerWriter, headers); err != nil {
		return err
	}
	headerWriter.Flush()
	if err := headerWriter.Error(); err != nil {
		return fmt.Errorf("csv writer error: %w", err)
	}

	chunks := chunk.Plan(len(rows), w.chunkSize, 0)
	parts, err := chunk.Run(chunks, w.workers, func(c chunk.Chunk) ([]byte, error) {
		return EncodeRows(rows[c.Start:c.End])
	})
	if err != nil {
		return err
	}
	return chunk.Reassemble(out, parts)
}

// EncodeRows renders rows, without a header, into a standalone buffer.
func EncodeRows(rows []domain.Row) ([]byte, error) {
	var buf bytes.Buffer
	csvWriter := csv.NewWriter(&buf)
	if err := writeRecords(csvWriter, rows); err != nil {
		return nil, err
	}
	csvWriter.Flush()
	if err := csvWriter.Error(); err != nil {
		return nil, fmt.Errorf("csv writer error: %w", err)
	}
	return buf.Bytes(), nil
}

// EncodePart renders a self-contained CSV document with an optional header.
func EncodePart(out io.Writer, headers []string, rows []domain.Row, includeHeaders bool) error {
	csvWriter := csv.NewWriter(out)
	if includeHeaders {
		if err := writeHeader(csvWriter, headers); err != nil {
			return err
		}
	}
	if err := writeRecords(csvWriter, rows); err != nil {
		return err
	}
	csvWriter.Flush()
	if err := csvWriter.Error(); err != nil {
		return fmt.Errorf("csv writer error: %w", err)
	}
	return nil
}

func writeHeader(csvWriter *csv.Writer, headers []string) error {
	if len(headers) == 0 {
		return nil
	}
	if err := csvWriter.Write(headers); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}
	return nil
}

func writeRecords(csvWriter *csv.Writer, rows []domain.Row) error {
	for _, row := range rows {
		if err := csvWriter.Write(domain.RowText(row)); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	return nil
}
