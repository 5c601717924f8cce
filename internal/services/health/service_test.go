package health

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestStatusReportsEachCheck(t *testing.T) {
	svc := NewService(time.Second)
	svc.Register("db", func(ctx context.Context) error { return nil })
	svc.Register("store", func(ctx context.Context) error { return errors.New("bucket missing") })
	svc.Register("ignored", nil)

	ok, results := svc.Status(context.Background())
	if ok {
		t.Fatalf("expected failing status")
	}
	if results["db"] != "ok" || results["store"] != "bucket missing" {
		t.Fatalf("unexpected results: %v", results)
	}
	if _, found := results["ignored"]; found {
		t.Fatalf("nil check should not be registered")
	}
}

func TestStatusAppliesTimeout(t *testing.T) {
	svc := NewService(10 * time.Millisecond)
	svc.Register("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	ok, results := svc.Status(context.Background())
	if ok || results["slow"] != context.DeadlineExceeded.Error() {
		t.Fatalf("expected deadline failure, got %v %v", ok, results)
	}
}

func TestStatusWithoutChecks(t *testing.T) {
	ok, results := NewService(0).Status(context.Background())
	if !ok || len(results) != 0 {
		t.Fatalf("expected ok with no checks, got %v %v", ok, results)
	}
}
