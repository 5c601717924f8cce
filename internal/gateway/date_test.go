package gateway

import (
	"errors"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	loc := time.FixedZone("PST", -8*3600)

	tests := []struct {
		name    string
		raw     string
		want    int64
		wantErr bool
	}{
		{name: "padded", raw: "11/14/2023", want: time.Date(2023, 11, 14, 0, 0, 0, 0, loc).Unix()},
		{name: "single digits", raw: "1/2/2024", want: time.Date(2024, 1, 2, 0, 0, 0, 0, loc).Unix()},
		{name: "surrounding space", raw: " 3/4/2022 ", want: time.Date(2022, 3, 4, 0, 0, 0, 0, loc).Unix()},
		{name: "day first", raw: "14/11/2023", wantErr: true},
		{name: "iso", raw: "2023-11-14", wantErr: true},
		{name: "two digit year", raw: "11/14/23", wantErr: true},
		{name: "empty", raw: "", wantErr: true},
		{name: "trailing junk", raw: "11/14/2023x", wantErr: true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseDate(tt.raw, loc)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidDateFormat) {
					t.Fatalf("ParseDate(%q) error = %v, want ErrInvalidDateFormat", tt.raw, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDate(%q): %v", tt.raw, err)
			}
			if got != tt.want {
				t.Fatalf("ParseDate(%q) = %d, want %d", tt.raw, got, tt.want)
			}
		})
	}
}

func TestParseDateRangeRejectsInvertedRange(t *testing.T) {
	_, err := ParseDateRange("12/01/2023", "11/01/2023", time.UTC)
	if !errors.Is(err, ErrInvalidDateFormat) {
		t.Fatalf("error = %v, want ErrInvalidDateFormat", err)
	}
}

func TestParseDateRangeSameDay(t *testing.T) {
	r, err := ParseDateRange("11/14/2023", "11/14/2023", time.UTC)
	if err != nil {
		t.Fatalf("ParseDateRange: %v", err)
	}
	if r.Start != r.End || r.Start != 1699920000 {
		t.Fatalf("range = %+v", r)
	}
	if !r.Contains(1699920000) || r.Contains(1699920001) {
		t.Fatalf("Contains mismatch for %+v", r)
	}
}
