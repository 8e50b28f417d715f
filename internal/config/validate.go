package config

import (
	"errors"
	"fmt"
)

var validOperators = map[string]struct{}{
	"equals":       {},
	"not_equals":   {},
	"contains":     {},
	"not_contains": {},
	"empty":        {},
	"not_empty":    {},
	"in_list":      {},
	"not_in_list":  {},
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateMatching(); err != nil {
		return err
	}
	if err := c.validateSuffixes(); err != nil {
		return err
	}
	if err := c.validateRules(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateMatching() error {
	if c.Matching.ConfidenceFloor < 0 || c.Matching.ConfidenceFloor > 1 {
		return errors.New("matching.confidence_floor must be between 0 and 1")
	}
	if len(c.Matching.AudioExtensions) == 0 {
		return errors.New("matching.audio_extensions must name at least one extension")
	}
	return nil
}

// validateSuffixes enforces the one-suffix-per-field invariant: a field may
// appear under at most one suffix across the whole mapping.
func (c *Config) validateSuffixes() error {
	owner := map[string]string{}
	for suffix, fields := range c.Suffixes {
		for _, field := range fields {
			if prev, ok := owner[field]; ok && prev != suffix {
				return fmt.Errorf("suffixes: field %q mapped to both %q and %q", field, prev, suffix)
			}
			owner[field] = suffix
		}
	}
	return nil
}

func (c *Config) validateRules() error {
	for name, rule := range c.Rules {
		switch rule.Kind {
		case "always", "non_empty":
			if rule.When != nil {
				return fmt.Errorf("rules.%s: %q rules take no condition tree", name, rule.Kind)
			}
		case "custom":
			if rule.When == nil {
				return fmt.Errorf("rules.%s: custom rules require a when tree", name)
			}
			if err := validateNode(name, rule.When); err != nil {
				return err
			}
		default:
			return fmt.Errorf("rules.%s: unknown kind %q", name, rule.Kind)
		}
	}
	return nil
}

func validateNode(rule string, node *RuleNode) error {
	combinator := len(node.All) > 0 || len(node.Any) > 0
	predicate := node.Field != "" || node.Operator != ""

	switch {
	case combinator && predicate:
		return fmt.Errorf("rules.%s: node mixes combinator and predicate fields", rule)
	case len(node.All) > 0 && len(node.Any) > 0:
		return fmt.Errorf("rules.%s: node sets both all and any", rule)
	case combinator:
		children := node.All
		if len(children) == 0 {
			children = node.Any
		}
		for i := range children {
			if err := validateNode(rule, &children[i]); err != nil {
				return err
			}
		}
		return nil
	case predicate:
		if node.Field == "" {
			return fmt.Errorf("rules.%s: predicate missing field", rule)
		}
		if _, ok := validOperators[node.Operator]; !ok {
			return fmt.Errorf("rules.%s: unknown operator %q", rule, node.Operator)
		}
		switch node.Operator {
		case "in_list", "not_in_list":
			if len(node.Values) == 0 {
				return fmt.Errorf("rules.%s: operator %q requires values", rule, node.Operator)
			}
		}
		return nil
	default:
		return fmt.Errorf("rules.%s: empty rule node", rule)
	}
}
