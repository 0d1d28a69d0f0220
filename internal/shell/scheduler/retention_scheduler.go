package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"turbo-export/internal/core/domain"
)

// RunPruner deletes finished export runs older than maxAge.
type RunPruner interface {
	PruneRuns(ctx context.Context, maxAge time.Duration) (int, error)
}

// RetentionScheduler periodically prunes the export run history.
type RetentionScheduler struct {
	pruner   RunPruner
	schedule string
	maxAge   time.Duration
	cron     *cron.Cron

	mu      sync.Mutex
	entryID cron.EntryID
	ctx     context.Context
}

func NewRetentionScheduler(pruner RunPruner, schedule string, maxAge time.Duration) (*RetentionScheduler, error) {
	if !domain.IsValidSchedule(schedule) {
		return nil, fmt.Errorf("invalid retention schedule %q", schedule)
	}
	if maxAge <= 0 {
		return nil, fmt.Errorf("retention max age must be positive, got %v", maxAge)
	}

	return &RetentionScheduler{
		pruner:   pruner,
		schedule: schedule,
		maxAge:   maxAge,
		cron:     cron.New(), // Standard 5-field format (minute hour dom month dow)
		ctx:      context.Background(),
	}, nil
}

// Start registers the sweep, starts the cron and blocks until ctx is cancelled.
func (s *RetentionScheduler) Start(ctx context.Context) error {
	log.Printf("Starting retention scheduler (schedule: %s, max age: %v)", s.schedule, s.maxAge)

	if err := s.register(ctx); err != nil {
		return err
	}

	s.cron.Start()

	<-ctx.Done()
	log.Println("Retention scheduler context cancelled, stopping")
	return nil
}

func (s *RetentionScheduler) Stop() {
	log.Println("Stopping retention scheduler")
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("Retention scheduler stopped")
}

// RunOnce prunes immediately, outside the schedule.
func (s *RetentionScheduler) RunOnce(ctx context.Context) (int, error) {
	deleted, err := s.pruner.PruneRuns(ctx, s.maxAge)
	if err != nil {
		log.Printf("Error pruning export runs: %v", err)
		return 0, err
	}
	log.Printf("Retention sweep removed %d export runs older than %v", deleted, s.maxAge)
	return deleted, nil
}

func (s *RetentionScheduler) register(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.entryID != 0 {
		return nil
	}
	s.ctx = ctx

	entryID, err := s.cron.AddFunc(s.schedule, func() {
		s.RunOnce(s.ctx)
	})
	if err != nil {
		log.Printf("[DEBUG] RetentionScheduler - cron.AddFunc error: %v", err)
		return err
	}

	s.entryID = entryID
	log.Printf("[DEBUG] RetentionScheduler - sweep registered (entry ID: %d)", entryID)
	return nil
}

// NextRun reports when the next sweep is due, or the zero time before Start.
func (s *RetentionScheduler) NextRun() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.entryID == 0 {
		return time.Time{}
	}
	return s.cron.Entry(s.entryID).Next
}
