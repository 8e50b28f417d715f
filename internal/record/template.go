package record

import (
	"strings"

	"dekereke/internal/textutil"
)

// GenerateBaseFilename expands a template such as "{Reference}_{Gloss}.wav"
// against a record, sanitizing each substituted value for filesystem use.
// Unknown placeholders are left in place so the caller can surface them.
func GenerateBaseFilename(rec Record, template string) string {
	result := template

	replace := func(placeholder, value string) {
		if strings.Contains(result, placeholder) {
			result = strings.ReplaceAll(result, placeholder, textutil.SanitizeFileName(value))
		}
	}

	replace("{Reference}", rec.Reference)
	for name, value := range rec.Fields {
		replace("{"+name+"}", value)
	}
	return result
}

// GeneratedName pairs a record index with its template expansion.
type GeneratedName struct {
	Index     int
	Reference string
	Name      string
}

// PreviewGenerated returns template expansions for every record. The engine
// only previews; writing the value back to the record store is the host's
// job.
func (s Set) PreviewGenerated(template string) []GeneratedName {
	out := make([]GeneratedName, 0, len(s.Records))
	for idx, rec := range s.Records {
		out = append(out, GeneratedName{
			Index:     idx,
			Reference: rec.Reference,
			Name:      GenerateBaseFilename(rec, template),
		})
	}
	return out
}
