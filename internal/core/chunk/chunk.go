// Package chunk splits a row range into contiguous chunks, renders them
// concurrently with bounded admission, and hands results back in chunk order.
package chunk

import (
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"
)

// Chunk is the half-open row range [Start, End) of one unit of parallel work.
// FirstRow is the absolute output-row ordinal of Start, fixed before dispatch.
type Chunk struct {
	Index    int
	Start    int
	End      int
	FirstRow int
}

// Len returns the number of rows in the chunk.
func (c Chunk) Len() int {
	return c.End - c.Start
}

// Plan divides total rows into chunks of at most size rows. At least one chunk
// is returned, so an empty input still renders once. firstRow is the ordinal
// assigned to row 0.
func Plan(total, size, firstRow int) []Chunk {
	if size <= 0 {
		size = 1
	}
	if total <= 0 {
		return []Chunk{{Index: 0, Start: 0, End: 0, FirstRow: firstRow}}
	}

	count := (total + size - 1) / size
	chunks := make([]Chunk, count)
	for i := range chunks {
		start := i * size
		end := min(start+size, total)
		chunks[i] = Chunk{
			Index:    i,
			Start:    start,
			End:      end,
			FirstRow: firstRow + start,
		}
	}
	return chunks
}

// Run renders every chunk, with at most workers renders in flight at a time.
// Results are stored by chunk index. The first error wins; tasks already
// dispatched run to completion and their output is discarded.
func Run[T any](chunks []Chunk, workers int, render func(Chunk) (T, error)) ([]T, error) {
	if workers <= 0 {
		workers = 1
	}

	results := make([]T, len(chunks))
	var g errgroup.Group
	g.SetLimit(workers)

	for _, c := range chunks {
		g.Go(func() error {
			out, err := render(c)
			if err != nil {
				return fmt.Errorf("chunk %d: %w", c.Index, err)
			}
			results[c.Index] = out
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Reassemble writes parts to w in slice order.
func Reassemble(w io.Writer, parts [][]byte) error {
	for i, part := range parts {
		if _, err := w.Write(part); err != nil {
			return fmt.Errorf("failed to write chunk %d: %w", i, err)
		}
	}
	return nil
}
