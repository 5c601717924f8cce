// Package runs records export runs and publishes finished workbooks to the
// object store.
package runs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"resighting-export/internal/export"
	"resighting-export/internal/shared/storage/object"
	"resighting-export/internal/shared/telemetry"
	"resighting-export/internal/shared/util"
)

// Exporter runs one export to a local destination.
type Exporter interface {
	Run(ctx context.Context, req export.Request) (export.Result, error)
}

// Service drives an export for the HTTP surface and keeps the run history.
type Service struct {
	Exporter Exporter
	Store    object.ObjectStore
	Repo     Repo
	// WorkDir holds workbooks until they are published.
	WorkDir string
	// SchemaVersion is recorded on runs that fail before a schema is applied.
	SchemaVersion string

	now   func() time.Time
	newID func() string
}

// Start runs an export for the inclusive date range and returns the stored
// run. On failure the run is still returned alongside the export error.
func (s *Service) Start(ctx context.Context, start, end string) (Run, error) {
	fileName := util.ExportFileName(start, end)
	run := Run{
		ID:            s.id(),
		StartDate:     start,
		EndDate:       end,
		SchemaVersion: s.SchemaVersion,
		Status:        StatusRunning,
		FileName:      fileName,
		CreatedAt:     s.clock().UTC(),
	}
	if err := s.Repo.Create(ctx, run); err != nil {
		return Run{}, fmt.Errorf("create run: %w", err)
	}

	workDir := filepath.Join(s.WorkDir, run.ID)
	defer func() {
		if err := os.RemoveAll(workDir); err != nil {
			telemetry.Warn("runs.cleanup_failed", map[string]any{"run_id": run.ID, "error": err})
		}
	}()

	res, exportErr := s.Exporter.Run(ctx, export.Request{
		Start: start,
		End:   end,
		Dest:  filepath.Join(workDir, fileName),
	})
	if res.SchemaVersion != "" {
		run.SchemaVersion = res.SchemaVersion
	}
	run.Report = res.Report
	run.Records = res.Report.Records
	run.Unrecognized = res.Report.UnrecognizedTotal()
	run.Failures = len(res.Report.Failures)

	switch {
	case exportErr != nil:
		s.fail(&run, exportErr)
	case res.Empty:
		run.Status = StatusEmpty
		run.FileName = ""
	default:
		key, size, err := s.publish(ctx, run.ID, res.Dest)
		if err != nil {
			exportErr = err
			s.fail(&run, err)
			break
		}
		run.Status = StatusSucceeded
		run.StorageKey = key
		run.SizeBytes = size
	}

	completed := s.clock().UTC()
	run.CompletedAt = &completed
	// The caller's context may already be cancelled; the history entry is
	// still written.
	if err := s.Repo.Update(context.WithoutCancel(ctx), run); err != nil {
		telemetry.Error("runs.update_failed", map[string]any{"run_id": run.ID, "error": err})
		if exportErr == nil {
			return run, fmt.Errorf("update run: %w", err)
		}
	}
	telemetry.Info("runs.finished", map[string]any{
		"run_id":      run.ID,
		"status":      string(run.Status),
		"records":     run.Records,
		"storage_key": run.StorageKey,
	})
	return run, exportErr
}

func (s *Service) fail(run *Run, err error) {
	kind := export.Classify(err)
	run.Status = StatusFailed
	if kind == export.KindCancelled {
		run.Status = StatusCancelled
	}
	run.FileName = ""
	run.ErrorKind = string(kind)
	run.ErrorMessage = export.UserMessage(err)
}

func (s *Service) publish(ctx context.Context, runID, path string) (string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()
	key, size, err := s.Store.Save(ctx, runID, filepath.Base(path), f)
	if err != nil {
		return "", 0, fmt.Errorf("publish workbook: %w", err)
	}
	return key, size, nil
}

// Get returns one run.
func (s *Service) Get(ctx context.Context, id string) (Run, error) {
	return s.Repo.Get(ctx, id)
}

// List returns the most recent runs first.
func (s *Service) List(ctx context.Context, limit int) ([]Run, error) {
	return s.Repo.List(ctx, limit)
}

// Open streams the published workbook of a succeeded run.
func (s *Service) Open(ctx context.Context, id string) (Run, io.ReadCloser, error) {
	run, err := s.Repo.Get(ctx, id)
	if err != nil {
		return Run{}, nil, err
	}
	if run.Status != StatusSucceeded || run.StorageKey == "" {
		return run, nil, ErrNoDocument
	}
	rc, err := s.Store.Open(ctx, run.StorageKey)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return run, nil, ErrNoDocument
		}
		return run, nil, err
	}
	return run, rc, nil
}

func (s *Service) id() string {
	if s.newID != nil {
		return s.newID()
	}
	return uuid.NewString()
}

func (s *Service) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}
