package iucn

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Species is a red list species record. The record is loosely structured:
// every field the API returns is kept verbatim so that snapshots round-trip
// whatever upstream sends.
type Species map[string]json.RawMessage

// Field returns the named field as a string, numbers are returned in their
// JSON form and a missing or null field is an empty string.
func (s Species) Field(name string) string {
	raw, ok := s[name]
	if !ok {
		return ""
	}
	var text string
	if json.Unmarshal(raw, &text) == nil {
		return text
	}
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "null" {
		return ""
	}
	return trimmed
}

// ScientificName returns the "scientific_name" field, it is an error for it
// to be missing since every lookup is keyed by it.
func (s Species) ScientificName() (string, error) {
	name := s.Field("scientific_name")
	if name == "" {
		return "", fmt.Errorf("species record has no scientific_name")
	}
	return name, nil
}

// CladeName returns the name of the clade at the given level, "order" reads
// the "order_name" field.
func (s Species) CladeName(level string) string {
	return s.Field(fmt.Sprintf("%s_name", strings.ToLower(level)))
}

// With returns a copy of the record with key set to value, the receiver is
// left untouched.
func (s Species) With(key string, value json.RawMessage) Species {
	out := make(Species, len(s)+1)
	for k, v := range s {
		out[k] = v
	}
	out[key] = value
	return out
}
