package main

// Export resightings between two dates (M/D/YYYY, inclusive) to an xlsx file:
//   go run ./cmd/export 6/1/2023 6/30/2023 ./june.xlsx

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"resighting-export/internal/bootstrap"
	"resighting-export/internal/export"
	"resighting-export/internal/shared/config"
	"resighting-export/internal/shared/telemetry"
)

type exporter interface {
	Run(ctx context.Context, req export.Request) (export.Result, error)
}

type buildFunc func(ctx context.Context, cfg config.Config) (exporter, error)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr, func(ctx context.Context, cfg config.Config) (exporter, error) {
		return bootstrap.BuildExporter(ctx, cfg)
	})
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer, build buildFunc) int {
	// stdout carries only the result summary.
	defer telemetry.SetOutput(stderr)()

	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: export <start M/D/YYYY> <end M/D/YYYY> <dest.xlsx>")
		fmt.Fprintln(stderr, "schema, time zone and log level come from SCHEMA_VERSION, SCHEMA_FILE, TIMEZONE and LOG_LEVEL")
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 3 {
		fs.Usage()
		return 2
	}

	cfg := config.Load()
	telemetry.Setup(cfg.LogLevel)

	svc, err := build(ctx, cfg)
	if err != nil {
		fmt.Fprintf(stderr, "export: %v\n", err)
		return 1
	}

	res, err := svc.Run(ctx, export.Request{
		Start: fs.Arg(0),
		End:   fs.Arg(1),
		Dest:  fs.Arg(2),
	})
	if err != nil {
		fmt.Fprintln(stderr, export.UserMessage(err))
		return 1
	}
	if res.Empty {
		fmt.Fprintf(stdout, "No resightings between %s and %s; nothing was written.\n", fs.Arg(0), fs.Arg(1))
		return 0
	}
	fmt.Fprintf(stdout, "Exported %d resightings to %s (schema %s).\n", res.Report.Records, res.Dest, res.SchemaVersion)
	printReport(stdout, res.Report)
	return 0
}

func printReport(w io.Writer, r export.Report) {
	if names := r.UnrecognizedNames(); len(names) > 0 {
		fmt.Fprintf(w, "Skipped %d unrecognized field values:\n", r.UnrecognizedTotal())
		for _, name := range names {
			fmt.Fprintf(w, "  %s (%d)\n", name, r.Unrecognized[name])
		}
	}
	if len(r.Failures) > 0 {
		fmt.Fprintf(w, "%d cells left blank:\n", len(r.Failures))
		for _, f := range r.Failures {
			fmt.Fprintf(w, "  row %d, %s, record %s: %s\n", f.Row, f.Field, f.RecordID, f.Kind)
		}
	}
}
