// Package rules evaluates expectation rules: pure predicates over a record
// that decide whether a recording is expected for a field. A rule is either
// Always, NonEmpty, or a custom boolean tree of AND/OR combinators over
// atomic field predicates.
package rules

import (
	"strings"

	"dekereke/internal/record"
	"dekereke/internal/textutil"
)

// Kind discriminates the three rule forms.
type Kind int

const (
	Always Kind = iota
	NonEmpty
	Custom
)

func (k Kind) String() string {
	switch k {
	case Always:
		return "always"
	case NonEmpty:
		return "non_empty"
	case Custom:
		return "custom"
	default:
		return "unknown"
	}
}

// Operator names an atomic predicate comparison.
type Operator string

const (
	OpEquals      Operator = "equals"
	OpNotEquals   Operator = "not_equals"
	OpContains    Operator = "contains"
	OpNotContains Operator = "not_contains"
	OpEmpty       Operator = "empty"
	OpNotEmpty    Operator = "not_empty"
	OpInList      Operator = "in_list"
	OpNotInList   Operator = "not_in_list"
)

// Predicate compares one record field against an operand. A field missing
// from the record evaluates as the empty string.
type Predicate struct {
	Field    string
	Operator Operator
	Value    string
	Values   []string
}

// Node is one node of a rule tree: a leaf predicate, or an AND/OR combinator
// over children. Exactly one of the three members is populated.
type Node struct {
	Pred *Predicate
	All  []Node
	Any  []Node
}

// Rule is the expectation rule for a field or group.
type Rule struct {
	Kind Kind
	Tree Node // populated when Kind == Custom
}

// Evaluate reports whether the rule expects a recording for the given record.
// fields carries the field (or all fields of the group) the rule governs;
// NonEmpty is satisfied when any of them has a non-blank value.
func (r Rule) Evaluate(rec record.Record, fields []string, caser textutil.Caser) bool {
	switch r.Kind {
	case Always:
		return true
	case NonEmpty:
		for _, field := range fields {
			if strings.TrimSpace(rec.Field(field)) != "" {
				return true
			}
		}
		return false
	case Custom:
		return r.Tree.Evaluate(rec, caser)
	default:
		return false
	}
}

// Evaluate walks the tree by recursive descent. AND nodes require every
// child to hold, OR nodes require at least one; both short-circuit.
func (n Node) Evaluate(rec record.Record, caser textutil.Caser) bool {
	switch {
	case n.Pred != nil:
		return n.Pred.Evaluate(rec, caser)
	case len(n.All) > 0:
		for _, child := range n.All {
			if !child.Evaluate(rec, caser) {
				return false
			}
		}
		return true
	case len(n.Any) > 0:
		for _, child := range n.Any {
			if child.Evaluate(rec, caser) {
				return true
			}
		}
		return false
	default:
		// An empty node holds vacuously; config validation prevents it.
		return true
	}
}

// Evaluate applies the predicate to the record.
func (p Predicate) Evaluate(rec record.Record, caser textutil.Caser) bool {
	value := rec.Field(p.Field)
	switch p.Operator {
	case OpEquals:
		return caser.Equal(value, p.Value)
	case OpNotEquals:
		return !caser.Equal(value, p.Value)
	case OpContains:
		return strings.Contains(caser.Key(value), caser.Key(p.Value))
	case OpNotContains:
		return !strings.Contains(caser.Key(value), caser.Key(p.Value))
	case OpEmpty:
		return strings.TrimSpace(value) == ""
	case OpNotEmpty:
		return strings.TrimSpace(value) != ""
	case OpInList:
		return p.inList(value, caser)
	case OpNotInList:
		return !p.inList(value, caser)
	default:
		return false
	}
}

func (p Predicate) inList(value string, caser textutil.Caser) bool {
	for _, candidate := range p.Values {
		if caser.Equal(value, candidate) {
			return true
		}
	}
	return false
}
