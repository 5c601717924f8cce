// Package gateway retrieves resighting records from the backing store for a
// calendar date range.
package gateway

import (
	"context"
	"errors"
	"iter"
)

var (
	// ErrInvalidDateFormat indicates a caller-supplied date that is not month/day/year,
	// or a range whose start falls after its end. No store call is made.
	ErrInvalidDateFormat = errors.New("invalid date format")

	// ErrStoreUnavailable indicates a network, auth, throttling or timeout fault
	// while talking to the store.
	ErrStoreUnavailable = errors.New("record store unavailable")
)

// RawRecord is one stored resighting: attribute name to value. Values are
// string, bool, []byte, nil, numbers (types with Int64/Float64 methods such as
// json.Number), or nested lists and maps.
type RawRecord map[string]any

// Gateway fetches records whose timestamp attribute falls inside r, both ends
// inclusive. The returned sequence is in store order. Implementations may
// yield an error mid-sequence; consumers stop at the first one.
type Gateway interface {
	Fetch(ctx context.Context, r DateRange) (iter.Seq2[RawRecord, error], error)
}
