package util

import (
	"errors"
	"strings"
)

// SanitizeFileName removes path separators and rejects traversal patterns.
func SanitizeFileName(name string) (string, error) {
	if strings.Contains(name, "..") {
		return "", errors.New("invalid file name")
	}
	s := strings.TrimSpace(name)
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	if s == "" {
		return "", errors.New("invalid file name")
	}
	return s, nil
}

// ExportFileName builds a workbook name from a month/day/year range, e.g.
// "resightings_6-1-2023_to_6-30-2023.xlsx".
func ExportFileName(start, end string) string {
	clean := func(s string) string {
		s = strings.TrimSpace(s)
		s = strings.NewReplacer("/", "-", "\\", "-", " ", "", "..", "").Replace(s)
		if s == "" {
			return "unknown"
		}
		return s
	}
	return "resightings_" + clean(start) + "_to_" + clean(end) + ".xlsx"
}
