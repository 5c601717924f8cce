package gateway

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is month/day/year; one- or two-digit month and day are accepted.
const DateLayout = "1/2/2006"

// DateRange is an inclusive epoch-second window.
type DateRange struct {
	Start int64
	End   int64
}

// Contains reports whether epoch lies within the range, inclusive.
func (r DateRange) Contains(epoch int64) bool {
	return epoch >= r.Start && epoch <= r.End
}

// ParseDate converts a month/day/year string to the epoch second of midnight
// in loc.
func ParseDate(raw string, loc *time.Location) (int64, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(raw), loc)
	if err != nil {
		return 0, fmt.Errorf("%w: %q, enter dates as month/day/year", ErrInvalidDateFormat, raw)
	}
	return t.Unix(), nil
}

// ParseDateRange validates both bounds locally. It never touches the store.
func ParseDateRange(start, end string, loc *time.Location) (DateRange, error) {
	s, err := ParseDate(start, loc)
	if err != nil {
		return DateRange{}, err
	}
	e, err := ParseDate(end, loc)
	if err != nil {
		return DateRange{}, err
	}
	if s > e {
		return DateRange{}, fmt.Errorf("%w: start %q is after end %q", ErrInvalidDateFormat, start, end)
	}
	return DateRange{Start: s, End: e}, nil
}
