package record

import (
	"sort"

	"dekereke/internal/config"
	"dekereke/internal/services"
)

// SuffixMapping maps filename suffixes (possibly empty) to the record fields
// they identify. Invariant: a field appears under at most one suffix.
type SuffixMapping struct {
	fields map[string][]string // suffix -> fields
	owner  map[string]string   // field -> suffix
}

// NewSuffixMapping builds a mapping, rejecting any field that would be
// reachable through two different suffixes.
func NewSuffixMapping(suffixes map[string][]string) (SuffixMapping, error) {
	m := SuffixMapping{
		fields: make(map[string][]string, len(suffixes)),
		owner:  make(map[string]string),
	}
	// Deterministic iteration so the reported violation is stable.
	keys := make([]string, 0, len(suffixes))
	for suffix := range suffixes {
		keys = append(keys, suffix)
	}
	sort.Strings(keys)
	for _, suffix := range keys {
		for _, field := range suffixes[suffix] {
			if prev, ok := m.owner[field]; ok && prev != suffix {
				return SuffixMapping{}, services.Wrap(services.ErrValidation, "records", "suffix mapping",
					"field "+field+" mapped to suffixes "+quoted(prev)+" and "+quoted(suffix), nil)
			}
			if _, ok := m.owner[field]; ok {
				continue
			}
			m.owner[field] = suffix
			m.fields[suffix] = append(m.fields[suffix], field)
		}
	}
	return m, nil
}

// MappingFromConfig builds the suffix mapping from loaded configuration.
func MappingFromConfig(cfg *config.Config) (SuffixMapping, error) {
	return NewSuffixMapping(cfg.Suffixes)
}

// Suffixes returns all mapped suffixes in sorted order.
func (m SuffixMapping) Suffixes() []string {
	suffixes := make([]string, 0, len(m.fields))
	for suffix := range m.fields {
		suffixes = append(suffixes, suffix)
	}
	sort.Strings(suffixes)
	return suffixes
}

// FieldsFor returns the fields identified by a suffix, in mapping order.
func (m SuffixMapping) FieldsFor(suffix string) []string {
	return m.fields[suffix]
}

// SuffixFor returns the suffix that identifies the given field.
func (m SuffixMapping) SuffixFor(field string) (string, bool) {
	suffix, ok := m.owner[field]
	return suffix, ok
}

// HasSuffix reports whether the suffix is mapped to any field.
func (m SuffixMapping) HasSuffix(suffix string) bool {
	_, ok := m.fields[suffix]
	return ok
}

// Len returns the number of mapped suffixes.
func (m SuffixMapping) Len() int {
	return len(m.fields)
}

func quoted(s string) string {
	return `"` + s + `"`
}
