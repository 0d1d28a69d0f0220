package storage

import (
	"sort"
	"sync"
	"time"

	"turbo-export/internal/core/domain"
)

type MemoryExportRunRepository struct {
	runs map[string]domain.ExportRun
	mu   sync.RWMutex
}

func NewMemoryExportRunRepository() *MemoryExportRunRepository {
	return &MemoryExportRunRepository{
		runs: make(map[string]domain.ExportRun),
	}
}

func (r *MemoryExportRunRepository) Save(run domain.ExportRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.runs[run.ID] = run
	return nil
}

func (r *MemoryExportRunRepository) FindByID(id string) (domain.ExportRun, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	run, exists := r.runs[id]
	if !exists {
		return domain.ExportRun{}, domain.ErrExportRunNotFound
	}

	return run, nil
}

func (r *MemoryExportRunRepository) FindByOrgID(orgID string, offset, limit int) ([]domain.ExportRun, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []domain.ExportRun
	for _, run := range r.runs {
		if run.OrgID == orgID {
			matched = append(matched, run)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].StartTime.Equal(matched[j].StartTime) {
			return matched[i].ID < matched[j].ID
		}
		return matched[i].StartTime.After(matched[j].StartTime)
	})

	total := len(matched)
	if offset < 0 {
		offset = 0
	}
	if offset >= total {
		return []domain.ExportRun{}, total, nil
	}
	end := total
	if limit > 0 && offset+limit < total {
		end = offset + limit
	}

	return matched[offset:end], total, nil
}

func (r *MemoryExportRunRepository) DeleteFinishedBefore(cutoff time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	deleted := 0
	for id, run := range r.runs {
		if run.EndTime != nil && run.EndTime.Before(cutoff) {
			delete(r.runs, id)
			deleted++
		}
	}
	return deleted, nil
}
