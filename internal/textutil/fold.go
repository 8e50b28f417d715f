package textutil

import (
	"strings"

	"golang.org/x/text/cases"
)

// Fold returns the Unicode case-folded form of s, suitable for
// case-insensitive comparison across scripts.
func Fold(s string) string {
	return cases.Fold().String(s)
}

// EqualFold reports whether a and b are equal under Unicode case folding.
func EqualFold(a, b string) bool {
	return Fold(a) == Fold(b)
}

// HasPrefixFold reports whether s begins with prefix under Unicode case
// folding. The second return value is the length in bytes of the matched
// prefix within s, needed to slice the remainder out of the original string.
func HasPrefixFold(s, prefix string) (bool, int) {
	if prefix == "" {
		return true, 0
	}
	folded := Fold(prefix)
	// Case folding can change byte length, so walk candidate prefixes of s
	// instead of comparing a fixed-size slice.
	for i := range s {
		if i == 0 {
			continue
		}
		candidate := Fold(s[:i])
		if candidate == folded {
			return true, i
		}
		if len(candidate) > len(folded) {
			return false, 0
		}
	}
	if Fold(s) == folded {
		return true, len(s)
	}
	return false, 0
}

// Caser compares strings honoring a configured case-sensitivity policy.
type Caser struct {
	Sensitive bool
}

// Key returns the comparison key for s under the policy.
func (c Caser) Key(s string) string {
	if c.Sensitive {
		return s
	}
	return Fold(s)
}

// Equal reports whether a and b compare equal under the policy.
func (c Caser) Equal(a, b string) bool {
	if c.Sensitive {
		return a == b
	}
	return EqualFold(a, b)
}

// HasPrefix reports whether s begins with prefix under the policy, returning
// the byte length of the matched prefix within s.
func (c Caser) HasPrefix(s, prefix string) (bool, int) {
	if c.Sensitive {
		if strings.HasPrefix(s, prefix) {
			return true, len(prefix)
		}
		return false, 0
	}
	return HasPrefixFold(s, prefix)
}
