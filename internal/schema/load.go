package schema

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type fileLayout struct {
	Version string  `yaml:"version"`
	Fields  []Field `yaml:"fields"`
}

// Load reads a YAML layout file:
//
//	version: v2
//	fields:
//	  - {name: TagImage, column: 0, kind: image}
func Load(path string) (*Schema, error) {
	raw, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read schema file: %w", err)
	}
	return Parse(bytes.NewReader(raw))
}

// Parse decodes a YAML layout from r.
func Parse(r io.Reader) (*Schema, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var layout fileLayout
	if err := dec.Decode(&layout); err != nil {
		return nil, fmt.Errorf("%w: decode yaml: %v", ErrInvalidSchema, err)
	}
	return New(layout.Version, layout.Fields)
}
