package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	_ "github.com/lib/pq"

	"turbo-export/internal/core/domain"
)

type PostgresExportRunRepository struct {
	db *sql.DB
}

// PostgresOptions configures the connection pool.
type PostgresOptions struct {
	ConnectionString      string
	MaxOpenConnections    int
	MaxIdleConnections    int
	ConnectionMaxLifetime time.Duration
}

func NewPostgresExportRunRepository(opts PostgresOptions) (*PostgresExportRunRepository, error) {
	db, err := OpenPostgres(opts)
	if err != nil {
		return nil, err
	}

	if err := MigratePostgres(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	log.Printf("[DEBUG] PostgresExportRunRepository - database initialized successfully")
	return &PostgresExportRunRepository{db: db}, nil
}

// OpenPostgres opens and pings a PostgreSQL connection pool.
func OpenPostgres(opts PostgresOptions) (*sql.DB, error) {
	db, err := sql.Open("postgres", opts.ConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if opts.MaxOpenConnections > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConnections)
	}
	if opts.MaxIdleConnections > 0 {
		db.SetMaxIdleConns(opts.MaxIdleConnections)
	}
	if opts.ConnectionMaxLifetime > 0 {
		db.SetConnMaxLifetime(opts.ConnectionMaxLifetime)
	}
	return db, nil
}

func (r *PostgresExportRunRepository) Save(run domain.ExportRun) error {
	query := `
		INSERT INTO export_runs (` + exportRunColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			end_time = EXCLUDED.end_time,
			error_message = EXCLUDED.error_message,
			output_path = EXCLUDED.output_path,
			row_count = EXCLUDED.row_count,
			part_count = EXCLUDED.part_count`

	var endTime sql.NullTime
	if run.EndTime != nil {
		endTime = sql.NullTime{Time: run.EndTime.UTC(), Valid: true}
	}

	_, err := r.db.Exec(query, run.ID, run.JobID, run.OrgID, string(run.Kind), string(run.Mode), string(run.Format),
		string(run.Status), run.StartTime.UTC(), endTime, run.ErrorMessage, run.OutputPath, run.RowCount, run.PartCount)
	if err != nil {
		return fmt.Errorf("failed to save export run: %w", err)
	}
	return nil
}

func (r *PostgresExportRunRepository) FindByID(id string) (domain.ExportRun, error) {
	run, err := scanPostgresRun(r.db.QueryRow(`SELECT `+exportRunColumns+` FROM export_runs WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ExportRun{}, domain.ErrExportRunNotFound
	}
	if err != nil {
		return domain.ExportRun{}, fmt.Errorf("failed to find export run: %w", err)
	}
	return run, nil
}

func (r *PostgresExportRunRepository) FindByOrgID(orgID string, offset, limit int) ([]domain.ExportRun, int, error) {
	var total int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM export_runs WHERE org_id = $1`, orgID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count export runs: %w", err)
	}

	rows, err := r.db.Query(`SELECT `+exportRunColumns+` FROM export_runs
		WHERE org_id = $1 ORDER BY start_time DESC, id ASC LIMIT $2 OFFSET $3`, orgID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query export runs: %w", err)
	}
	defer rows.Close()

	runs := []domain.ExportRun{}
	for rows.Next() {
		run, err := scanPostgresRun(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan export run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, total, rows.Err()
}

func (r *PostgresExportRunRepository) DeleteFinishedBefore(cutoff time.Time) (int, error) {
	result, err := r.db.Exec(`DELETE FROM export_runs WHERE end_time IS NOT NULL AND end_time < $1`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to delete export runs: %w", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return int(deleted), nil
}

func (r *PostgresExportRunRepository) Close() error {
	return r.db.Close()
}

func scanPostgresRun(s rowScanner) (domain.ExportRun, error) {
	var run domain.ExportRun
	var endTime sql.NullTime
	var errorMessage sql.NullString

	if err := s.Scan(&run.ID, &run.JobID, &run.OrgID, &run.Kind, &run.Mode, &run.Format, &run.Status,
		&run.StartTime, &endTime, &errorMessage, &run.OutputPath, &run.RowCount, &run.PartCount); err != nil {
		return domain.ExportRun{}, err
	}

	run.StartTime = run.StartTime.UTC()
	if endTime.Valid {
		t := endTime.Time.UTC()
		run.EndTime = &t
	}
	if errorMessage.Valid {
		msg := errorMessage.String
		run.ErrorMessage = &msg
	}
	return run, nil
}
