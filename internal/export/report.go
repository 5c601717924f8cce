package export

import (
	"sort"
)

// Failure kinds recorded for a cell that rendered blank.
const (
	FailureMalformedTimestamp = "malformed_timestamp"
	FailureImageDecode        = "image_decode_error"
	FailureRender             = "render_error"
)

// Failure is one per-field rendering fault.
type Failure struct {
	RecordID string `json:"recordId"`
	Row      int    `json:"row"`
	Field    string `json:"field"`
	Kind     string `json:"kind"`
	Message  string `json:"message"`
}

// Report aggregates the non-fatal diagnostics of a run.
type Report struct {
	Records      int            `json:"records"`
	Unrecognized map[string]int `json:"unrecognized,omitempty"`
	Failures     []Failure      `json:"failures,omitempty"`
}

func (r *Report) unrecognized(name string) {
	if r.Unrecognized == nil {
		r.Unrecognized = make(map[string]int)
	}
	r.Unrecognized[name]++
}

// UnrecognizedNames returns the skipped field names, sorted.
func (r Report) UnrecognizedNames() []string {
	names := make([]string, 0, len(r.Unrecognized))
	for name := range r.Unrecognized {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// UnrecognizedTotal counts every skipped occurrence.
func (r Report) UnrecognizedTotal() int {
	total := 0
	for _, n := range r.Unrecognized {
		total += n
	}
	return total
}

// FailureCount returns how many failures of kind were recorded; an empty kind
// counts them all.
func (r Report) FailureCount(kind string) int {
	if kind == "" {
		return len(r.Failures)
	}
	n := 0
	for _, f := range r.Failures {
		if f.Kind == kind {
			n++
		}
	}
	return n
}
