package textutil

import "strings"

// SanitizeFileName converts a generated base filename to a filesystem-safe
// form: spaces become underscores and characters invalid on common file
// systems are removed. The result is trimmed of surrounding whitespace.
func SanitizeFileName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch r {
		case ' ':
			b.WriteByte('_')
		case '<', '>', ':', '"', '/', '\\', '|', '?', '*':
			// dropped
		default:
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
