//go:build sql
// +build sql

package storage

import (
	"testing"
	"time"

	"turbo-export/internal/config"
	"turbo-export/internal/core/domain"
)

// These tests require a running PostgreSQL instance
// Run with: go test -tags sql -v ./internal/shell/storage -run TestPostgres

func setupPostgresRepo(t *testing.T) *PostgresExportRunRepository {
	cfg, err := config.LoadConfig()
	if err != nil {
		t.Fatalf("PostgreSQL test: configuration error: %v", err)
	}

	repo, err := NewPostgresExportRunRepository(PostgresOptions{ConnectionString: cfg.Database.ConnectionString()})
	if err != nil {
		t.Fatalf("PostgreSQL test: database not available: %v", err)
	}

	repo.db.Exec("DELETE FROM export_runs WHERE org_id LIKE 'test-%'")
	return repo
}

func TestPostgresExportRunRepository_Lifecycle(t *testing.T) {
	repo := setupPostgresRepo(t)
	defer repo.Close()

	run := newRun("test-run-1", "test-org-a", time.Now())
	if err := repo.Save(run); err != nil {
		t.Fatalf("Failed to save run: %v", err)
	}

	completed := run.WithCompleted(domain.Result{Export: &domain.ExportResult{OutputPath: run.OutputPath, RowCount: 3}})
	if err := repo.Save(completed); err != nil {
		t.Fatalf("Failed to update run: %v", err)
	}

	found, err := repo.FindByID(run.ID)
	if err != nil {
		t.Fatalf("Failed to find run: %v", err)
	}
	if found.Status != domain.RunStatusCompleted || found.RowCount != 3 {
		t.Errorf("Expected completed run with 3 rows, got %+v", found)
	}

	runs, total, err := repo.FindByOrgID("test-org-a", 0, 10)
	if err != nil {
		t.Fatalf("FindByOrgID failed: %v", err)
	}
	if total != 1 || len(runs) != 1 {
		t.Errorf("Expected 1 run, got %d (total %d)", len(runs), total)
	}

	deleted, err := repo.DeleteFinishedBefore(time.Now().Add(time.Minute))
	if err != nil {
		t.Fatalf("DeleteFinishedBefore failed: %v", err)
	}
	if deleted < 1 {
		t.Errorf("Expected at least 1 deleted run, got %d", deleted)
	}
}
