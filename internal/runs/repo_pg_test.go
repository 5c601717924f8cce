package runs

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPGRepoCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	run := Run{
		ID:            "run-1",
		StartDate:     "11/14/2023",
		EndDate:       "11/16/2023",
		SchemaVersion: "v1",
		Status:        StatusRunning,
		CreatedAt:     time.Now().UTC(),
	}

	mock.ExpectExec("INSERT INTO export_runs").
		WithArgs(run.ID, run.StartDate, run.EndDate, run.SchemaVersion, "running", run.CreatedAt).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Create(context.Background(), run); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoUpdateMissingRun(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectExec("UPDATE export_runs SET").
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := &PGRepo{DB: db}
	err = repo.Update(context.Background(), Run{ID: "missing", Status: StatusFailed})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoUpdateStoresOutcome(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	completed := time.Now().UTC()
	run := Run{
		ID:            "run-1",
		SchemaVersion: "v1",
		Status:        StatusSucceeded,
		Records:       2,
		FileName:      "resightings.xlsx",
		StorageKey:    "run-1/resightings.xlsx",
		SizeBytes:     4096,
		CompletedAt:   &completed,
	}
	run.Report.Records = 2

	mock.ExpectExec("UPDATE export_runs SET").
		WithArgs(
			run.ID,
			run.SchemaVersion,
			"succeeded",
			2,
			0,
			0,
			sql.NullString{String: run.FileName, Valid: true},
			sql.NullString{String: run.StorageKey, Valid: true},
			run.SizeBytes,
			sql.NullString{},
			sql.NullString{},
			sqlmock.AnyArg(), // report
			run.CompletedAt,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := &PGRepo{DB: db}
	if err := repo.Update(context.Background(), run); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGet(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	created := time.Date(2023, 11, 20, 8, 0, 0, 0, time.UTC)
	cols := []string{
		"id", "start_date", "end_date", "schema_version", "status", "records", "unrecognized", "failures",
		"file_name", "storage_key", "size_bytes", "error_kind", "error_message", "report", "created_at", "completed_at",
	}
	mock.ExpectQuery("SELECT (.+) FROM export_runs WHERE id = \\$1").
		WithArgs("run-1").
		WillReturnRows(sqlmock.NewRows(cols).AddRow(
			"run-1", "11/14/2023", "11/16/2023", "v1", "failed", 0, 0, 0,
			nil, nil, 0, "store_unavailable", "The resighting store could not be reached.",
			[]byte(`{"records":0}`), created, created,
		))
	mock.ExpectQuery("SELECT (.+) FROM export_runs WHERE id = \\$1").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	repo := &PGRepo{DB: db}
	run, err := repo.Get(context.Background(), "run-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if run.Status != StatusFailed || run.ErrorKind != "store_unavailable" || run.FileName != "" {
		t.Fatalf("unexpected run: %+v", run)
	}
	if run.CompletedAt == nil || !run.CompletedAt.Equal(created) {
		t.Fatalf("unexpected completedAt: %v", run.CompletedAt)
	}

	if _, err := repo.Get(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
