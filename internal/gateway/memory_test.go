package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
)

func collect(t *testing.T, g Gateway, r DateRange) []RawRecord {
	t.Helper()
	seq, err := g.Fetch(context.Background(), r)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	var out []RawRecord
	for rec, err := range seq {
		if err != nil {
			t.Fatalf("iterate: %v", err)
		}
		out = append(out, rec)
	}
	return out
}

func TestMemoryFetchInclusiveBounds(t *testing.T) {
	gw := NewMemory("Timestamp",
		RawRecord{"id": "before", "Timestamp": int64(99)},
		RawRecord{"id": "start", "Timestamp": int64(100)},
		RawRecord{"id": "middle", "Timestamp": json.Number("150")},
		RawRecord{"id": "end", "Timestamp": float64(200)},
		RawRecord{"id": "after", "Timestamp": "201"},
		RawRecord{"id": "missing"},
	)

	got := collect(t, gw, DateRange{Start: 100, End: 200})
	want := []string{"start", "middle", "end"}
	if len(got) != len(want) {
		t.Fatalf("got %d records, want %d: %v", len(got), len(want), got)
	}
	for i, id := range want {
		if got[i]["id"] != id {
			t.Fatalf("record %d = %v, want %s", i, got[i]["id"], id)
		}
	}
}

func TestMemoryFetchFailure(t *testing.T) {
	gw := NewMemory("")
	gw.Err = errors.New("connection refused")

	_, err := gw.Fetch(context.Background(), DateRange{})
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("error = %v, want ErrStoreUnavailable", err)
	}
	if gw.Calls() != 1 {
		t.Fatalf("Calls = %d, want 1", gw.Calls())
	}
}
