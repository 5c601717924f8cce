package gateway

import (
	"context"
	"fmt"
	"iter"
	"math"
	"strconv"
	"sync"
)

// Memory is an in-process Gateway over a fixed record set.
type Memory struct {
	mu      sync.Mutex
	records []RawRecord
	tsAttr  string
	calls   int

	// Err, when set, is returned from every Fetch wrapped in ErrStoreUnavailable.
	Err error
}

// NewMemory returns a gateway that filters records on tsAttr.
func NewMemory(tsAttr string, records ...RawRecord) *Memory {
	if tsAttr == "" {
		tsAttr = "Timestamp"
	}
	return &Memory{records: records, tsAttr: tsAttr}
}

// Fetch returns the records inside r in insertion order.
func (m *Memory) Fetch(ctx context.Context, r DateRange) (iter.Seq2[RawRecord, error], error) {
	m.mu.Lock()
	m.calls++
	records := append([]RawRecord(nil), m.records...)
	failure := m.Err
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if failure != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, failure)
	}

	var matched []RawRecord
	for _, rec := range records {
		ts, ok := epochValue(rec[m.tsAttr])
		if ok && r.Contains(ts) {
			matched = append(matched, rec)
		}
	}
	return func(yield func(RawRecord, error) bool) {
		for _, rec := range matched {
			if !yield(rec, nil) {
				return
			}
		}
	}, nil
}

// Calls reports how many times Fetch was invoked.
func (m *Memory) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func epochValue(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int64(n), true
	case string:
		i, err := strconv.ParseInt(n, 10, 64)
		return i, err == nil
	case interface{ Int64() (int64, error) }:
		i, err := n.Int64()
		return i, err == nil
	}
	return 0, false
}

var _ Gateway = (*Memory)(nil)
