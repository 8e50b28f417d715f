package rules

import (
	"dekereke/internal/config"
	"dekereke/internal/record"
	"dekereke/internal/services"
	"dekereke/internal/textutil"
)

// resolved carries a rule together with the governed fields (one entry for a
// plain field, the full member list for a group rule).
type resolved struct {
	rule   Rule
	fields []string
}

// Set resolves per-field and per-group rule configuration into a lookup the
// expectation evaluator can query field by field. Fields without a
// configured rule default to Always.
type Set struct {
	byField map[string]resolved
	caser   textutil.Caser
}

// FromConfig builds the rule set from loaded configuration, expanding group
// rules onto their member fields.
func FromConfig(cfg *config.Config) (Set, error) {
	set := Set{
		byField: map[string]resolved{},
		caser:   textutil.Caser{Sensitive: cfg.Matching.CaseSensitive},
	}

	for name, ruleCfg := range cfg.Rules {
		rule, err := parseRule(name, ruleCfg)
		if err != nil {
			return Set{}, err
		}
		if members, ok := cfg.Groups[name]; ok {
			for _, field := range members {
				if _, exists := set.byField[field]; exists {
					return Set{}, services.Wrap(services.ErrConfiguration, "rules", "resolve",
						"field "+field+" governed by more than one rule", nil)
				}
				set.byField[field] = resolved{rule: rule, fields: members}
			}
			continue
		}
		if _, exists := set.byField[name]; exists {
			return Set{}, services.Wrap(services.ErrConfiguration, "rules", "resolve",
				"field "+name+" governed by more than one rule", nil)
		}
		set.byField[name] = resolved{rule: rule, fields: []string{name}}
	}

	return set, nil
}

// Expected reports whether a recording for the field is expected on the
// record. Unconfigured fields are always expected.
func (s Set) Expected(rec record.Record, field string) bool {
	entry, ok := s.byField[field]
	if !ok {
		return Rule{Kind: Always}.Evaluate(rec, []string{field}, s.caser)
	}
	return entry.rule.Evaluate(rec, entry.fields, s.caser)
}

// RuleFor returns the configured rule for a field, defaulting to Always.
func (s Set) RuleFor(field string) Rule {
	if entry, ok := s.byField[field]; ok {
		return entry.rule
	}
	return Rule{Kind: Always}
}

func parseRule(name string, cfg config.Rule) (Rule, error) {
	switch cfg.Kind {
	case "always", "":
		return Rule{Kind: Always}, nil
	case "non_empty":
		return Rule{Kind: NonEmpty}, nil
	case "custom":
		if cfg.When == nil {
			return Rule{}, services.Wrap(services.ErrConfiguration, "rules", "parse",
				"custom rule "+name+" missing condition tree", nil)
		}
		return Rule{Kind: Custom, Tree: parseNode(*cfg.When)}, nil
	default:
		return Rule{}, services.Wrap(services.ErrConfiguration, "rules", "parse",
			"rule "+name+" has unknown kind "+cfg.Kind, nil)
	}
}

func parseNode(node config.RuleNode) Node {
	switch {
	case len(node.All) > 0:
		children := make([]Node, 0, len(node.All))
		for _, child := range node.All {
			children = append(children, parseNode(child))
		}
		return Node{All: children}
	case len(node.Any) > 0:
		children := make([]Node, 0, len(node.Any))
		for _, child := range node.Any {
			children = append(children, parseNode(child))
		}
		return Node{Any: children}
	default:
		values := append([]string{}, node.Values...)
		return Node{Pred: &Predicate{
			Field:    node.Field,
			Operator: Operator(node.Operator),
			Value:    node.Value,
			Values:   values,
		}}
	}
}
