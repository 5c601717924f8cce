package schema

import (
	"errors"
	"strings"
	"testing"
)

func TestBuiltinV1Layout(t *testing.T) {
	s, err := Builtin("v1")
	if err != nil {
		t.Fatalf("Builtin: %v", err)
	}
	if s.Len() != 15 {
		t.Fatalf("Len = %d, want 15", s.Len())
	}
	f, ok := s.Resolve("Timestamp")
	if !ok || f.Column != 2 || f.Kind != KindTimestampEpoch {
		t.Fatalf("Resolve(Timestamp) = %+v, %v", f, ok)
	}
	for _, name := range []string{"SituationImage", "TagImage"} {
		if f, _ := s.Resolve(name); f.Kind != KindImage {
			t.Fatalf("%s kind = %q, want image", name, f.Kind)
		}
	}
	if _, ok := s.Resolve("PhotographerEmail"); ok {
		t.Fatalf("unexpected match for unknown field")
	}
	for i, f := range s.Fields() {
		if f.Column != i {
			t.Fatalf("Fields()[%d].Column = %d", i, f.Column)
		}
	}
}

func TestKindDecidesImageRouting(t *testing.T) {
	s, err := New("custom", []Field{
		{Name: "ImageCaption", Column: 0, Kind: KindText},
		{Name: "Photo", Column: 1, Kind: KindImage},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if f, _ := s.Resolve("ImageCaption"); f.Kind != KindText {
		t.Fatalf("ImageCaption kind = %q, want text", f.Kind)
	}
	if f, _ := s.Resolve("Photo"); f.Kind != KindImage {
		t.Fatalf("Photo kind = %q, want image", f.Kind)
	}
}

func TestNewRejectsBrokenLayouts(t *testing.T) {
	tests := []struct {
		name   string
		fields []Field
	}{
		{name: "empty", fields: nil},
		{name: "gap", fields: []Field{{Name: "A", Column: 0, Kind: KindText}, {Name: "B", Column: 2, Kind: KindText}}},
		{name: "duplicate column", fields: []Field{{Name: "A", Column: 0, Kind: KindText}, {Name: "B", Column: 0, Kind: KindText}}},
		{name: "duplicate name", fields: []Field{{Name: "A", Column: 0, Kind: KindText}, {Name: "A", Column: 1, Kind: KindText}}},
		{name: "not from zero", fields: []Field{{Name: "A", Column: 1, Kind: KindText}}},
		{name: "unknown kind", fields: []Field{{Name: "A", Column: 0, Kind: "blob"}}},
		{name: "blank name", fields: []Field{{Name: " ", Column: 0, Kind: KindText}}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := New("bad", tt.fields); !errors.Is(err, ErrInvalidSchema) {
				t.Fatalf("New error = %v, want ErrInvalidSchema", err)
			}
		})
	}
}

func TestNewSortsByColumn(t *testing.T) {
	s, err := New("x", []Field{
		{Name: "B", Column: 1, Kind: KindText},
		{Name: "A", Column: 0, Kind: KindNumeric},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := s.Fields()[0].Name; got != "A" {
		t.Fatalf("first field = %q, want A", got)
	}
}

func TestSelect(t *testing.T) {
	s, err := Select("", "")
	if err != nil || s.Version() != DefaultVersion {
		t.Fatalf("Select default = %v, %v", s, err)
	}
	if _, err := Select("v0", ""); !errors.Is(err, ErrUnknownVersion) {
		t.Fatalf("Select(v0) error = %v", err)
	}
	s, err = Select("v1", "testdata/v2.yaml")
	if err != nil {
		t.Fatalf("Select file: %v", err)
	}
	if s.Version() != "v2" || s.Len() != 4 {
		t.Fatalf("file schema = %s/%d", s.Version(), s.Len())
	}
	if f, _ := s.Resolve("GPSAccuracy"); f.Kind != KindNumeric || f.Column != 3 {
		t.Fatalf("GPSAccuracy = %+v", f)
	}
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := Parse(strings.NewReader("version: v3\ncolumns: []\n"))
	if !errors.Is(err, ErrInvalidSchema) {
		t.Fatalf("Parse error = %v", err)
	}
}
