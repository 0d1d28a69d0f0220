package executor

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"turbo-export/internal/core/domain"
	"turbo-export/internal/core/render"
	"turbo-export/internal/shell/messaging"
	"turbo-export/internal/shell/worker"
)

func testRows(n int) []domain.Row {
	rows := make([]domain.Row, n)
	for i := range rows {
		rows[i] = domain.Row{i, "name", 1.5, nil, i%2 == 0}
	}
	return rows
}

func newExecutors(shared *worker.SharedPool) map[domain.ExportMode]JobExecutor {
	renderer := render.NewRenderer()
	return map[domain.ExportMode]JobExecutor{
		domain.ModeSync:       NewInlineExecutor(renderer),
		domain.ModeParallel:   NewPoolExecutor(renderer, 10),
		domain.ModeGlobalPool: NewSharedPoolExecutor(shared),
	}
}

func TestDefaultJobExecutor_ModesProduceIdenticalOutput(t *testing.T) {
	shared := worker.NewSharedPool(2, 10, render.NewRenderer())
	defer shared.Shutdown()
	executor := NewJobExecutor(newExecutors(shared))

	dir := t.TempDir()
	headers := []string{"id", "name", "score", "note", "even"}
	rows := testRows(25)

	outputs := make(map[domain.ExportMode][]byte)
	for _, mode := range []domain.ExportMode{domain.ModeSync, domain.ModeParallel, domain.ModeGlobalPool} {
		path := filepath.Join(dir, string(mode)+".csv")
		job := domain.NewExportJob(domain.ExportConfig{Mode: mode, Format: domain.FormatCSV, Workers: 3, ChunkSize: 4, OutputPath: path}, headers, rows)

		result, err := executor.Execute(job)
		if err != nil {
			t.Fatalf("Execute(%s) failed: %v", mode, err)
		}
		if result.RowCount() != 25 {
			t.Errorf("Expected 25 rows for %s, got %d", mode, result.RowCount())
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("Failed to read output for %s: %v", mode, err)
		}
		outputs[mode] = data
	}

	if !bytes.Equal(outputs[domain.ModeSync], outputs[domain.ModeParallel]) {
		t.Error("Expected parallel output to match sync output")
	}
	if !bytes.Equal(outputs[domain.ModeSync], outputs[domain.ModeGlobalPool]) {
		t.Error("Expected global pool output to match sync output")
	}
}

func TestDefaultJobExecutor_UnknownMode(t *testing.T) {
	executor := NewJobExecutor(map[domain.ExportMode]JobExecutor{})

	job := domain.NewExportJob(domain.NewExportConfig("out.csv"), nil, nil)
	_, err := executor.Execute(job)
	if !errors.Is(err, domain.ErrUnsupportedMode) {
		t.Errorf("Expected %v, got %v", domain.ErrUnsupportedMode, err)
	}
}

func TestInlineExecutor_PropagatesError(t *testing.T) {
	boom := errors.New("boom")
	executor := NewInlineExecutor(worker.ProcessorFunc(func(job *domain.Job) (domain.Result, error) {
		return domain.Result{}, boom
	}))

	job := domain.NewExportJob(domain.NewExportConfig("out.csv"), nil, nil)
	if _, err := executor.Execute(job); !errors.Is(err, boom) {
		t.Errorf("Expected %v, got %v", boom, err)
	}
}

func TestInlineExecutor_RecoversPanic(t *testing.T) {
	executor := NewJobExecutor(map[domain.ExportMode]JobExecutor{
		domain.ModeSync: NewInlineExecutor(worker.ProcessorFunc(func(job *domain.Job) (domain.Result, error) {
			panic("bad job")
		})),
	})

	job := domain.NewExportJob(domain.NewExportConfig("out.csv"), nil, nil)
	if _, err := executor.Execute(job); err == nil {
		t.Error("Expected panicking processor to report an error")
	}
	select {
	case <-job.Done():
	default:
		t.Error("Expected job to be completed after a panic")
	}
}

func TestPoolExecutor_SizesPoolToJob(t *testing.T) {
	var calls int32
	executor := NewPoolExecutor(worker.ProcessorFunc(func(job *domain.Job) (domain.Result, error) {
		atomic.AddInt32(&calls, 1)
		return domain.Result{Export: &domain.ExportResult{OutputPath: job.Config.OutputPath, RowCount: len(job.Rows)}}, nil
	}), 0)

	job := domain.NewExportJob(domain.ExportConfig{Mode: domain.ModeParallel, Workers: 3, OutputPath: "out.csv"}, nil, testRows(2))
	result, err := executor.Execute(job)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if result.RowCount() != 2 {
		t.Errorf("Expected 2 rows, got %d", result.RowCount())
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Errorf("Expected processor to run once, got %d", calls)
	}
}

func TestSharedPoolExecutor_RejectsAfterShutdown(t *testing.T) {
	shared := worker.NewSharedPool(1, 1, render.NewRenderer())
	executor := NewSharedPoolExecutor(shared)
	shared.Shutdown()

	job := domain.NewExportJob(domain.ExportConfig{Mode: domain.ModeGlobalPool, OutputPath: filepath.Join(t.TempDir(), "out.csv")}, nil, nil)
	if _, err := executor.Execute(job); !errors.Is(err, domain.ErrPoolClosed) {
		t.Errorf("Expected %v, got %v", domain.ErrPoolClosed, err)
	}
}

func TestDefaultJobExecutor_SplitZipAcrossModes(t *testing.T) {
	shared := worker.NewSharedPool(2, 10, render.NewRenderer())
	defer shared.Shutdown()
	executor := NewJobExecutor(newExecutors(shared))

	dir := t.TempDir()
	for _, mode := range []domain.ExportMode{domain.ModeSync, domain.ModeParallel, domain.ModeGlobalPool} {
		cfg := domain.NewSplitZipConfig(filepath.Join(dir, string(mode)+".zip"))
		cfg.Mode = mode
		cfg.ChunkSize = 10

		result, err := executor.Execute(domain.NewSplitZipJob(cfg, []string{"id"}, testRows(25)))
		if err != nil {
			t.Fatalf("Execute(%s) failed: %v", mode, err)
		}
		if result.PartCount() != 3 {
			t.Errorf("Expected 3 parts for %s, got %d", mode, result.PartCount())
		}
		if result.RowCount() != 25 {
			t.Errorf("Expected 25 rows for %s, got %d", mode, result.RowCount())
		}
	}
}

type recordingSender struct {
	messages []*messaging.NotificationMessage
	err      error
}

func (s *recordingSender) SendNotificationMessage(message *messaging.NotificationMessage) error {
	s.messages = append(s.messages, message)
	return s.err
}

func TestNotificationsBasedJobCompletionNotifier(t *testing.T) {
	sender := &recordingSender{}
	notifier := NewNotificationsBasedJobCompletionNotifier(sender)

	notification := &domain.ExportNotification{
		RunID:      "run-1",
		JobID:      "job-1",
		OrgID:      "org-123",
		Kind:       domain.KindExport,
		Status:     domain.RunStatusCompleted,
		OutputPath: "/exports/out.csv",
		RowCount:   5,
	}

	if err := notifier.JobComplete(context.Background(), notification); err != nil {
		t.Fatalf("JobComplete failed: %v", err)
	}
	if len(sender.messages) != 1 {
		t.Fatalf("Expected 1 message, got %d", len(sender.messages))
	}
	message := sender.messages[0]
	if message.OrgID != "org-123" {
		t.Errorf("Expected org ID 'org-123', got %s", message.OrgID)
	}
	if message.EventType != messaging.EventExportCompleted {
		t.Errorf("Expected event type %s, got %s", messaging.EventExportCompleted, message.EventType)
	}

	sender.err = errors.New("broker down")
	if err := notifier.JobComplete(context.Background(), notification); err == nil {
		t.Error("Expected sender error to be returned")
	}
}

func TestNullJobCompletionNotifier(t *testing.T) {
	notifier := NewNullJobCompletionNotifier()
	if err := notifier.JobComplete(context.Background(), &domain.ExportNotification{RunID: "run-1"}); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
}
