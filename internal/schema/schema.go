// Package schema holds the versioned field layouts that map resighting
// attributes onto spreadsheet columns.
package schema

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Kind tells the renderer how to treat a field's raw value.
type Kind string

const (
	KindText           Kind = "text"
	KindNumeric        Kind = "numeric"
	KindTimestampEpoch Kind = "timestamp-epoch"
	KindImage          Kind = "image"
)

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindText, KindNumeric, KindTimestampEpoch, KindImage:
		return true
	}
	return false
}

// ErrInvalidSchema indicates a layout that breaks the column invariants.
var ErrInvalidSchema = errors.New("invalid schema")

// ErrUnknownVersion indicates no built-in schema carries the requested version.
var ErrUnknownVersion = errors.New("unknown schema version")

// Field maps one attribute name to its output column.
type Field struct {
	Name   string `yaml:"name"`
	Column int    `yaml:"column"`
	Kind   Kind   `yaml:"kind"`
}

// Schema is one immutable field layout. Build it with New.
type Schema struct {
	version string
	fields  []Field
	byName  map[string]Field
}

// New validates fields and returns a Schema ordered by column.
// Names must be unique and columns must be unique and contiguous from 0.
func New(version string, fields []Field) (*Schema, error) {
	version = strings.TrimSpace(version)
	if version == "" {
		return nil, fmt.Errorf("%w: version is required", ErrInvalidSchema)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: %s has no fields", ErrInvalidSchema, version)
	}

	sorted := append([]Field(nil), fields...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Column < sorted[j].Column })

	byName := make(map[string]Field, len(sorted))
	for i, f := range sorted {
		if strings.TrimSpace(f.Name) == "" {
			return nil, fmt.Errorf("%w: %s column %d has no name", ErrInvalidSchema, version, f.Column)
		}
		if !f.Kind.Valid() {
			return nil, fmt.Errorf("%w: %s field %q has unknown kind %q", ErrInvalidSchema, version, f.Name, f.Kind)
		}
		if f.Column != i {
			return nil, fmt.Errorf("%w: %s columns must be unique and contiguous from 0, field %q has column %d", ErrInvalidSchema, version, f.Name, f.Column)
		}
		if _, dup := byName[f.Name]; dup {
			return nil, fmt.Errorf("%w: %s field %q declared twice", ErrInvalidSchema, version, f.Name)
		}
		byName[f.Name] = f
	}

	return &Schema{version: version, fields: sorted, byName: byName}, nil
}

// Version returns the schema's version label.
func (s *Schema) Version() string { return s.version }

// Fields returns the fields in column order.
func (s *Schema) Fields() []Field {
	return append([]Field(nil), s.fields...)
}

// Len returns the number of columns.
func (s *Schema) Len() int { return len(s.fields) }

// Resolve looks up the column and kind for an attribute name.
// ok is false when the name is not part of this layout.
func (s *Schema) Resolve(name string) (Field, bool) {
	f, ok := s.byName[name]
	return f, ok
}
