// Package export runs the resighting export: fetch a date range, render every
// recognized field and save one workbook.
package export

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"resighting-export/internal/document"
	"resighting-export/internal/gateway"
	"resighting-export/internal/render"
	"resighting-export/internal/schema"
	"resighting-export/internal/shared/metrics"
	"resighting-export/internal/shared/telemetry"
)

// Request carries the three caller inputs of an export.
type Request struct {
	Start string
	End   string
	Dest  string
}

// Result describes a finished run. Empty is set when no record matched; no
// file is written in that case.
type Result struct {
	Dest          string
	Empty         bool
	Range         gateway.DateRange
	SchemaVersion string
	Report        Report
}

// Service wires one gateway and one schema. Each Run owns its own workbook, so
// a Service may serve concurrent runs with distinct destinations.
type Service struct {
	Gateway      gateway.Gateway
	Schema       *schema.Schema
	Renderer     *render.Renderer
	Location     *time.Location
	KeyAttribute string
	Layout       document.Options
}

// Run executes an export. Date and destination problems are reported before
// the store is contacted. Cancellation is checked between records; a cancelled
// run leaves nothing at Dest.
func (s *Service) Run(ctx context.Context, req Request) (Result, error) {
	started := time.Now()
	metrics.IncExportsStarted()

	res, err := s.run(ctx, req)

	metrics.ObserveExportDurationMs(metrics.SinceMillis(started))
	fields := map[string]any{
		"start":          req.Start,
		"end":            req.End,
		"dest":           req.Dest,
		"schema_version": res.SchemaVersion,
		"records":        res.Report.Records,
		"unrecognized":   res.Report.UnrecognizedTotal(),
		"failures":       len(res.Report.Failures),
		"duration_ms":    time.Since(started).Milliseconds(),
	}
	switch {
	case err != nil:
		metrics.IncExportsFailed()
		fields["error"] = err.Error()
		fields["kind"] = string(Classify(err))
		telemetry.Error("export.failed", fields)
	case res.Empty:
		metrics.IncExportsEmpty()
		telemetry.Info("export.empty", fields)
	default:
		metrics.IncExportsCompleted()
		metrics.AddRecordsExported(res.Report.Records)
		telemetry.Info("export.complete", fields)
	}
	return res, err
}

func (s *Service) run(ctx context.Context, req Request) (Result, error) {
	res := Result{Dest: req.Dest}
	if s.Schema != nil {
		res.SchemaVersion = s.Schema.Version()
	}

	loc := s.Location
	if loc == nil {
		loc = time.Local
	}
	dr, err := gateway.ParseDateRange(req.Start, req.End, loc)
	if err != nil {
		return res, err
	}
	res.Range = dr
	if !strings.EqualFold(filepath.Ext(req.Dest), ".xlsx") {
		return res, fmt.Errorf("%w: %q must end in .xlsx", document.ErrInvalidDestination, req.Dest)
	}
	if s.Schema == nil || s.Gateway == nil {
		return res, fmt.Errorf("export service is missing its gateway or schema")
	}

	records, err := s.Gateway.Fetch(ctx, dr)
	if err != nil {
		return res, fmt.Errorf("fetch resightings: %w", err)
	}

	renderer := s.Renderer
	if renderer == nil {
		renderer = render.New(loc)
	}

	var wb *document.Workbook
	abort := func() {
		if wb != nil {
			_ = wb.Abort()
		}
	}

	for rec, err := range records {
		if err != nil {
			abort()
			return res, fmt.Errorf("fetch resightings: %w", err)
		}
		if err := ctx.Err(); err != nil {
			abort()
			return res, fmt.Errorf("export interrupted after %d records: %w", res.Report.Records, err)
		}
		if wb == nil {
			wb, err = document.New(s.Schema, s.Layout)
			if err != nil {
				return res, fmt.Errorf("create workbook: %w", err)
			}
		}

		res.Report.Records++
		cells := s.renderRecord(renderer, res.Report.Records, rec, &res.Report)
		if _, err := wb.AppendRow(cells); err != nil {
			abort()
			return res, fmt.Errorf("write record %s: %w", s.recordID(res.Report.Records, rec), err)
		}
	}

	if wb == nil {
		res.Empty = true
		return res, nil
	}
	if err := ctx.Err(); err != nil {
		abort()
		return res, fmt.Errorf("export interrupted before save: %w", err)
	}
	if err := wb.Finalize(req.Dest); err != nil {
		abort()
		return res, fmt.Errorf("save workbook: %w", err)
	}
	return res, nil
}

func (s *Service) renderRecord(r *render.Renderer, n int, rec gateway.RawRecord, report *Report) []document.Cell {
	names := make([]string, 0, len(rec))
	for name := range rec {
		names = append(names, name)
	}
	sort.Strings(names)

	cells := make([]document.Cell, 0, len(names))
	for _, name := range names {
		field, ok := s.Schema.Resolve(name)
		if !ok {
			report.unrecognized(name)
			telemetry.Debug("export.field_unrecognized", map[string]any{
				"record_id": s.recordID(n, rec),
				"field":     name,
			})
			metrics.IncUnrecognizedFields()
			continue
		}

		payload, err := r.Render(rec[name], field.Kind)
		if err != nil {
			f := Failure{
				RecordID: s.recordID(n, rec),
				Row:      n,
				Field:    name,
				Kind:     failureKind(err),
				Message:  err.Error(),
			}
			report.Failures = append(report.Failures, f)
			metrics.IncFieldFailures()
			telemetry.Warn("export.field_failed", map[string]any{
				"record_id": f.RecordID,
				"field":     f.Field,
				"kind":      f.Kind,
				"error":     err,
			})
			continue
		}
		cells = append(cells, document.Cell{Column: field.Column, Payload: payload})
	}
	return cells
}

func (s *Service) recordID(n int, rec gateway.RawRecord) string {
	if s.KeyAttribute != "" {
		if v, ok := rec[s.KeyAttribute]; ok && v != nil {
			return fmt.Sprint(v)
		}
	}
	return fmt.Sprintf("row-%d", n)
}
