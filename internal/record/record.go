package record

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Record is one database entry supplied by the external record store.
// Reference is an opaque identifier: it may look numeric, but leading zeros
// are significant and it is never coerced to a number anywhere in the engine.
type Record struct {
	Reference    string            `json:"reference"`
	Fields       map[string]string `json:"fields"`
	BaseFilename string            `json:"base_filename"`
}

// Field returns the named field's value, with a missing field reading as the
// empty string.
func (r Record) Field(name string) string {
	if r.Fields == nil {
		return ""
	}
	return r.Fields[name]
}

// BaseStem returns the record's base filename without its extension, along
// with the extension itself. When the base filename carries no extension the
// provided default is returned.
func (r Record) BaseStem(defaultExt string) (stem, ext string) {
	base := strings.TrimSpace(r.BaseFilename)
	ext = filepath.Ext(base)
	if ext == "" {
		return base, defaultExt
	}
	return strings.TrimSuffix(base, ext), ext
}

// Set is an ordered collection of records for one reconciliation pass.
// Records are immutable within a pass; the engine never writes them back.
type Set struct {
	Records []Record
}

// LoadSet reads a record snapshot: a JSON array of records as exported by
// the host from the record store.
func LoadSet(path string) (Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Set{}, fmt.Errorf("read records: %w", err)
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return Set{}, fmt.Errorf("parse records: %w", err)
	}
	return Set{Records: records}, nil
}

// FieldNames returns the sorted union of field names across all records,
// excluding the distinguished reference and base-filename attributes (which
// are not fields).
func (s Set) FieldNames() []string {
	seen := map[string]struct{}{}
	for _, rec := range s.Records {
		for name := range rec.Fields {
			seen[name] = struct{}{}
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DuplicateReferences returns references shared by more than one record,
// mapped to the indices of the records that carry them.
func (s Set) DuplicateReferences() map[string][]int {
	byRef := map[string][]int{}
	for idx, rec := range s.Records {
		ref := strings.TrimSpace(rec.Reference)
		if ref == "" {
			continue
		}
		byRef[ref] = append(byRef[ref], idx)
	}
	duplicates := map[string][]int{}
	for ref, indices := range byRef {
		if len(indices) > 1 {
			duplicates[ref] = indices
		}
	}
	return duplicates
}

// EmptyBaseFilenames returns the indices of records whose base filename is
// empty or whitespace. Such records produce no expected artifacts until the
// host fills the value in.
func (s Set) EmptyBaseFilenames() []int {
	var indices []int
	for idx, rec := range s.Records {
		if strings.TrimSpace(rec.BaseFilename) == "" {
			indices = append(indices, idx)
		}
	}
	return indices
}

// BaseFilenames returns the non-empty base filenames in record order.
func (s Set) BaseFilenames() []string {
	bases := make([]string, 0, len(s.Records))
	for _, rec := range s.Records {
		if base := strings.TrimSpace(rec.BaseFilename); base != "" {
			bases = append(bases, base)
		}
	}
	return bases
}

// ByReference returns the first record carrying the given reference.
func (s Set) ByReference(ref string) (Record, bool) {
	for _, rec := range s.Records {
		if rec.Reference == ref {
			return rec, true
		}
	}
	return Record{}, false
}
