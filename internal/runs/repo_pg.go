package runs

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

type PGRepo struct {
	DB *sql.DB
}

const runColumns = `id, start_date, end_date, schema_version, status, records, unrecognized, failures,
  file_name, storage_key, size_bytes, error_kind, error_message, report, created_at, completed_at`

func (r *PGRepo) Create(ctx context.Context, run Run) error {
	const query = `
INSERT INTO export_runs (id, start_date, end_date, schema_version, status, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.DB.ExecContext(ctx, query,
		run.ID,
		run.StartDate,
		run.EndDate,
		run.SchemaVersion,
		string(run.Status),
		run.CreatedAt,
	)
	return err
}

func (r *PGRepo) Update(ctx context.Context, run Run) error {
	report, err := json.Marshal(run.Report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	const query = `
UPDATE export_runs SET
  schema_version = $2,
  status = $3,
  records = $4,
  unrecognized = $5,
  failures = $6,
  file_name = $7,
  storage_key = $8,
  size_bytes = $9,
  error_kind = $10,
  error_message = $11,
  report = $12,
  completed_at = $13
WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query,
		run.ID,
		run.SchemaVersion,
		string(run.Status),
		run.Records,
		run.Unrecognized,
		run.Failures,
		nullableString(run.FileName),
		nullableString(run.StorageKey),
		run.SizeBytes,
		nullableString(run.ErrorKind),
		nullableString(run.ErrorMessage),
		report,
		run.CompletedAt,
	)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) Get(ctx context.Context, id string) (Run, error) {
	query := `SELECT ` + runColumns + ` FROM export_runs WHERE id = $1 LIMIT 1`
	run, err := scanRun(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, ErrNotFound
		}
		return Run{}, err
	}
	return run, nil
}

func (r *PGRepo) List(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM export_runs ORDER BY created_at DESC, id DESC LIMIT $1`
	rows, err := r.DB.QueryContext(ctx, query, normalizeLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var run Run
	var status string
	var fileName, storageKey, errorKind, errorMessage sql.NullString
	var report []byte
	var completedAt sql.NullTime
	err := row.Scan(
		&run.ID,
		&run.StartDate,
		&run.EndDate,
		&run.SchemaVersion,
		&status,
		&run.Records,
		&run.Unrecognized,
		&run.Failures,
		&fileName,
		&storageKey,
		&run.SizeBytes,
		&errorKind,
		&errorMessage,
		&report,
		&run.CreatedAt,
		&completedAt,
	)
	if err != nil {
		return Run{}, err
	}
	run.Status = Status(status)
	run.FileName = fileName.String
	run.StorageKey = storageKey.String
	run.ErrorKind = errorKind.String
	run.ErrorMessage = errorMessage.String
	if len(report) > 0 {
		if err := json.Unmarshal(report, &run.Report); err != nil {
			return Run{}, fmt.Errorf("decode report for run %s: %w", run.ID, err)
		}
	}
	if completedAt.Valid {
		t := completedAt.Time
		run.CompletedAt = &t
	}
	return run, nil
}

func nullableString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

var _ Repo = (*PGRepo)(nil)
