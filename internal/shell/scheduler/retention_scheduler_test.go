package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type fakePruner struct {
	mu      sync.Mutex
	calls   int
	maxAges []time.Duration
	deleted int
	err     error
}

func (p *fakePruner) PruneRuns(ctx context.Context, maxAge time.Duration) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	p.maxAges = append(p.maxAges, maxAge)
	return p.deleted, p.err
}

func (p *fakePruner) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func TestNewRetentionScheduler_Validation(t *testing.T) {
	tests := []struct {
		name      string
		schedule  string
		maxAge    time.Duration
		expectErr bool
	}{
		{"Daily descriptor", "@daily", 24 * time.Hour, false},
		{"Cron expression", "0 3 * * *", time.Hour, false},
		{"Invalid schedule", "every day", time.Hour, true},
		{"Zero max age", "@daily", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRetentionScheduler(&fakePruner{}, tt.schedule, tt.maxAge)
			if tt.expectErr && err == nil {
				t.Error("Expected error, got nil")
			}
			if !tt.expectErr && err != nil {
				t.Errorf("Expected no error, got %v", err)
			}
		})
	}
}

func TestRetentionScheduler_RunOnce(t *testing.T) {
	pruner := &fakePruner{deleted: 3}
	s, err := NewRetentionScheduler(pruner, "@daily", 72*time.Hour)
	if err != nil {
		t.Fatalf("Failed to create scheduler: %v", err)
	}

	deleted, err := s.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce failed: %v", err)
	}
	if deleted != 3 {
		t.Errorf("Expected 3 deleted runs, got %d", deleted)
	}
	if pruner.maxAges[0] != 72*time.Hour {
		t.Errorf("Expected max age 72h, got %v", pruner.maxAges[0])
	}

	pruner.err = errors.New("database unavailable")
	if _, err := s.RunOnce(context.Background()); err == nil {
		t.Error("Expected pruner error to be returned")
	}
}

func TestRetentionScheduler_StartAndStop(t *testing.T) {
	pruner := &fakePruner{}
	s, err := NewRetentionScheduler(pruner, "@every 1s", time.Hour)
	if err != nil {
		t.Fatalf("Failed to create scheduler: %v", err)
	}

	if !s.NextRun().IsZero() {
		t.Error("Expected no next run before Start")
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.Start(ctx)
	}()

	deadline := time.Now().Add(3 * time.Second)
	for pruner.callCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(50 * time.Millisecond)
	}
	if pruner.callCount() == 0 {
		t.Error("Expected the sweep to run at least once")
	}
	if s.NextRun().IsZero() {
		t.Error("Expected a next run once started")
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Expected Start to return nil, got %v", err)
	}
	s.Stop()
}
