package runs

import (
	"testing"
	"time"

	"resighting-export/internal/export"
	"resighting-export/internal/gateway"
	"resighting-export/internal/render"
	"resighting-export/internal/schema"
	local "resighting-export/internal/shared/storage/object/local"
)

func newExporter(t *testing.T, gw gateway.Gateway) *export.Service {
	t.Helper()
	s, err := schema.Builtin("v1")
	if err != nil {
		t.Fatalf("schema.Builtin: %v", err)
	}
	return &export.Service{
		Gateway:      gw,
		Schema:       s,
		Renderer:     render.New(time.UTC),
		Location:     time.UTC,
		KeyAttribute: "ResightingId",
	}
}

func newTestService(t *testing.T, gw gateway.Gateway) (*Service, *MemoryRepo, string) {
	t.Helper()
	storeDir := t.TempDir()
	repo := NewMemoryRepo()
	n := 0
	svc := &Service{
		Exporter:      newExporter(t, gw),
		Store:         local.New(storeDir),
		Repo:          repo,
		WorkDir:       t.TempDir(),
		SchemaVersion: "v1",
		newID: func() string {
			n++
			return "run-" + string(rune('0'+n))
		},
		now: func() time.Time { return time.Date(2023, 11, 20, 8, 0, 0, 0, time.UTC) },
	}
	return svc, repo, storeDir
}

func sampleRecords() []gateway.RawRecord {
	return []gateway.RawRecord{
		{"ResightingId": "a", "Timestamp": int64(1699920000), "AnimalType": "Seal"},
		{"ResightingId": "b", "Timestamp": int64(1700006400), "AnimalType": "Sea Lion", "Latitude": 36.6},
	}
}
