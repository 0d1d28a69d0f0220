package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"turbo-export/internal/core/domain"
)

// Fixed-width UTC timestamps keep TEXT comparisons in chronological order.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z"

const exportRunColumns = `id, job_id, org_id, kind, mode, format, status, start_time, end_time, error_message, output_path, row_count, part_count`

type SQLiteExportRunRepository struct {
	db *sql.DB
}

func NewSQLiteExportRunRepository(dbPath string) (*SQLiteExportRunRepository, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// One writer at a time; sqlite serializes anyway and this avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := MigrateSQLite(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	log.Printf("[DEBUG] SQLiteExportRunRepository - database initialized at %s", dbPath)
	return &SQLiteExportRunRepository{db: db}, nil
}

func (r *SQLiteExportRunRepository) Save(run domain.ExportRun) error {
	query := `
		INSERT INTO export_runs (` + exportRunColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			end_time = excluded.end_time,
			error_message = excluded.error_message,
			output_path = excluded.output_path,
			row_count = excluded.row_count,
			part_count = excluded.part_count
	`

	var endTime *string
	if run.EndTime != nil {
		endTimeStr := formatSQLiteTime(*run.EndTime)
		endTime = &endTimeStr
	}

	_, err := r.db.Exec(
		query,
		run.ID,
		run.JobID,
		run.OrgID,
		string(run.Kind),
		string(run.Mode),
		string(run.Format),
		string(run.Status),
		formatSQLiteTime(run.StartTime),
		endTime,
		run.ErrorMessage,
		run.OutputPath,
		run.RowCount,
		run.PartCount,
	)
	if err != nil {
		return fmt.Errorf("failed to save export run: %w", err)
	}

	log.Printf("[DEBUG] SQLiteExportRunRepository - saved run: id=%s, job_id=%s, status=%s", run.ID, run.JobID, run.Status)
	return nil
}

func (r *SQLiteExportRunRepository) FindByID(id string) (domain.ExportRun, error) {
	query := `SELECT ` + exportRunColumns + ` FROM export_runs WHERE id = ?`

	run, err := scanSQLiteRun(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ExportRun{}, domain.ErrExportRunNotFound
	}
	if err != nil {
		return domain.ExportRun{}, fmt.Errorf("failed to find export run: %w", err)
	}
	return run, nil
}

func (r *SQLiteExportRunRepository) FindByOrgID(orgID string, offset, limit int) ([]domain.ExportRun, int, error) {
	var total int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM export_runs WHERE org_id = ?`, orgID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count export runs: %w", err)
	}

	query := `SELECT ` + exportRunColumns + ` FROM export_runs
		WHERE org_id = ?
		ORDER BY start_time DESC, id ASC
		LIMIT ? OFFSET ?`

	rows, err := r.db.Query(query, orgID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query export runs: %w", err)
	}
	defer rows.Close()

	runs := []domain.ExportRun{}
	for rows.Next() {
		run, err := scanSQLiteRun(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan export run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating export runs: %w", err)
	}

	return runs, total, nil
}

func (r *SQLiteExportRunRepository) DeleteFinishedBefore(cutoff time.Time) (int, error) {
	result, err := r.db.Exec(`DELETE FROM export_runs WHERE end_time IS NOT NULL AND end_time < ?`, formatSQLiteTime(cutoff))
	if err != nil {
		return 0, fmt.Errorf("failed to delete export runs: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return int(deleted), nil
}

func (r *SQLiteExportRunRepository) Close() error {
	return r.db.Close()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSQLiteRun(s rowScanner) (domain.ExportRun, error) {
	var run domain.ExportRun
	var startTimeStr string
	var endTimeStr sql.NullString
	var errorMessage sql.NullString

	err := s.Scan(
		&run.ID,
		&run.JobID,
		&run.OrgID,
		&run.Kind,
		&run.Mode,
		&run.Format,
		&run.Status,
		&startTimeStr,
		&endTimeStr,
		&errorMessage,
		&run.OutputPath,
		&run.RowCount,
		&run.PartCount,
	)
	if err != nil {
		return domain.ExportRun{}, err
	}

	startTime, err := time.Parse(sqliteTimeLayout, startTimeStr)
	if err != nil {
		return domain.ExportRun{}, fmt.Errorf("failed to parse start time: %w", err)
	}
	run.StartTime = startTime

	if endTimeStr.Valid {
		endTime, err := time.Parse(sqliteTimeLayout, endTimeStr.String)
		if err != nil {
			return domain.ExportRun{}, fmt.Errorf("failed to parse end time: %w", err)
		}
		run.EndTime = &endTime
	}

	if errorMessage.Valid {
		msg := errorMessage.String
		run.ErrorMessage = &msg
	}

	return run, nil
}

func formatSQLiteTime(t time.Time) string {
	return t.UTC().Format(sqliteTimeLayout)
}
