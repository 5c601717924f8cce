package schema

import (
	"fmt"
	"sort"
	"strings"
)

// DefaultVersion is the layout used when nothing else is configured.
const DefaultVersion = "v1"

var builtins = map[string][]Field{
	"v1": {
		{Name: "SituationImage", Column: 0, Kind: KindImage},
		{Name: "TagImage", Column: 1, Kind: KindImage},
		{Name: "Timestamp", Column: 2, Kind: KindTimestampEpoch},
		{Name: "AnimalType", Column: 3, Kind: KindText},
		{Name: "Latitude", Column: 4, Kind: KindNumeric},
		{Name: "Longitude", Column: 5, Kind: KindNumeric},
		{Name: "Location", Column: 6, Kind: KindText},
		{Name: "TagLocation", Column: 7, Kind: KindText},
		{Name: "TagColor", Column: 8, Kind: KindText},
		{Name: "DeadOrAlive", Column: 9, Kind: KindText},
		{Name: "Condition", Column: 10, Kind: KindText},
		{Name: "Injured", Column: 11, Kind: KindText},
		{Name: "Entangled", Column: 12, Kind: KindText},
		{Name: "InjuredOrEntangledLocation", Column: 13, Kind: KindText},
		{Name: "NuisanceBehaviors", Column: 14, Kind: KindText},
	},
}

// Builtin returns the compiled-in layout for version.
func Builtin(version string) (*Schema, error) {
	fields, ok := builtins[strings.TrimSpace(version)]
	if !ok {
		return nil, fmt.Errorf("%w: %q (known: %s)", ErrUnknownVersion, version, strings.Join(Versions(), ", "))
	}
	return New(version, fields)
}

// Versions lists the compiled-in versions.
func Versions() []string {
	out := make([]string, 0, len(builtins))
	for v := range builtins {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Select returns the schema for a run: the file at path when set, otherwise
// the built-in layout named by version.
func Select(version, path string) (*Schema, error) {
	if strings.TrimSpace(path) != "" {
		return Load(path)
	}
	if strings.TrimSpace(version) == "" {
		version = DefaultVersion
	}
	return Builtin(version)
}
