package rules

import (
	"testing"

	"dekereke/internal/config"
	"dekereke/internal/record"
	"dekereke/internal/textutil"
)

var insensitive = textutil.Caser{}

func rec(fields map[string]string) record.Record {
	return record.Record{Reference: "0001", Fields: fields}
}

func TestPredicateOperators(t *testing.T) {
	r := rec(map[string]string{
		"Dialect": "North",
		"Gloss":   "big pig",
		"Status":  "draft",
		"Blank":   "   ",
	})

	cases := []struct {
		name string
		pred Predicate
		want bool
	}{
		{"equals folds case", Predicate{Field: "Dialect", Operator: OpEquals, Value: "north"}, true},
		{"not_equals", Predicate{Field: "Dialect", Operator: OpNotEquals, Value: "south"}, true},
		{"contains", Predicate{Field: "Gloss", Operator: OpContains, Value: "PIG"}, true},
		{"not_contains", Predicate{Field: "Gloss", Operator: OpNotContains, Value: "cow"}, true},
		{"empty on whitespace", Predicate{Field: "Blank", Operator: OpEmpty}, true},
		{"not_empty", Predicate{Field: "Gloss", Operator: OpNotEmpty}, true},
		{"in_list", Predicate{Field: "Status", Operator: OpInList, Values: []string{"draft", "final"}}, true},
		{"not_in_list", Predicate{Field: "Status", Operator: OpNotInList, Values: []string{"final"}}, true},
		{"missing field reads empty", Predicate{Field: "Absent", Operator: OpEmpty}, true},
		{"missing field not equal", Predicate{Field: "Absent", Operator: OpEquals, Value: "x"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.pred.Evaluate(r, insensitive); got != tc.want {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestPredicateCaseSensitive(t *testing.T) {
	sensitive := textutil.Caser{Sensitive: true}
	r := rec(map[string]string{"Dialect": "North"})
	pred := Predicate{Field: "Dialect", Operator: OpEquals, Value: "north"}
	if pred.Evaluate(r, sensitive) {
		t.Fatal("sensitive comparison must distinguish case")
	}
	if !pred.Evaluate(r, insensitive) {
		t.Fatal("insensitive comparison must fold case")
	}
}

func TestNodeCombinators(t *testing.T) {
	r := rec(map[string]string{"A": "1", "B": ""})

	and := Node{All: []Node{
		{Pred: &Predicate{Field: "A", Operator: OpNotEmpty}},
		{Pred: &Predicate{Field: "B", Operator: OpEmpty}},
	}}
	if !and.Evaluate(r, insensitive) {
		t.Fatal("AND of true children should hold")
	}

	or := Node{Any: []Node{
		{Pred: &Predicate{Field: "B", Operator: OpNotEmpty}},
		{Pred: &Predicate{Field: "A", Operator: OpEquals, Value: "1"}},
	}}
	if !or.Evaluate(r, insensitive) {
		t.Fatal("OR with one true child should hold")
	}

	nested := Node{Any: []Node{
		{All: []Node{
			{Pred: &Predicate{Field: "A", Operator: OpEquals, Value: "2"}},
		}},
		{All: []Node{
			{Pred: &Predicate{Field: "A", Operator: OpEquals, Value: "1"}},
			{Pred: &Predicate{Field: "B", Operator: OpEmpty}},
		}},
	}}
	if !nested.Evaluate(r, insensitive) {
		t.Fatal("nested tree should hold")
	}
}

func TestRuleEvaluationIsPure(t *testing.T) {
	r := rec(map[string]string{"Gloss": "pig"})
	rule := Rule{Kind: Custom, Tree: Node{Pred: &Predicate{Field: "Gloss", Operator: OpNotEmpty}}}
	first := rule.Evaluate(r, []string{"Gloss"}, insensitive)
	for i := 0; i < 100; i++ {
		if rule.Evaluate(r, []string{"Gloss"}, insensitive) != first {
			t.Fatal("repeated evaluation diverged")
		}
	}
}

func TestAlwaysIndependentOfContent(t *testing.T) {
	rule := Rule{Kind: Always}
	for _, fields := range []map[string]string{nil, {"Gloss": ""}, {"Gloss": "pig"}} {
		if !rule.Evaluate(rec(fields), []string{"Gloss"}, insensitive) {
			t.Fatal("Always must expect regardless of content")
		}
	}
}

func TestNonEmptyTrimsValue(t *testing.T) {
	rule := Rule{Kind: NonEmpty}
	if rule.Evaluate(rec(map[string]string{"Gloss": "  "}), []string{"Gloss"}, insensitive) {
		t.Fatal("whitespace-only value should not be expected")
	}
	if !rule.Evaluate(rec(map[string]string{"Gloss": "pig"}), []string{"Gloss"}, insensitive) {
		t.Fatal("non-empty value should be expected")
	}
}

func TestGroupNonEmptyIsAnyField(t *testing.T) {
	rule := Rule{Kind: NonEmpty}
	group := []string{"Sentence1", "Sentence2"}
	r := rec(map[string]string{"Sentence1": "", "Sentence2": "aliqua"})
	if !rule.Evaluate(r, group, insensitive) {
		t.Fatal("group NonEmpty should hold when any member is non-empty")
	}
	r = rec(map[string]string{"Sentence1": "", "Sentence2": " "})
	if rule.Evaluate(r, group, insensitive) {
		t.Fatal("group NonEmpty should fail when all members are blank")
	}
}

func TestSetFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Groups = map[string][]string{"Sentences": {"Sentence1", "Sentence2"}}
	cfg.Rules = map[string]config.Rule{
		"Phonetic":  {Kind: "non_empty"},
		"Sentences": {Kind: "non_empty"},
		"Gloss": {Kind: "custom", When: &config.RuleNode{
			Any: []config.RuleNode{
				{Field: "Dialect", Operator: "equals", Value: "north"},
				{Field: "Gloss", Operator: "not_empty"},
			},
		}},
	}

	set, err := FromConfig(&cfg)
	if err != nil {
		t.Fatal(err)
	}

	r := rec(map[string]string{"Sentence1": "x", "Sentence2": "", "Gloss": "", "Dialect": "north"})
	if !set.Expected(r, "Sentence2") {
		t.Fatal("group rule must apply to every member field")
	}
	if !set.Expected(r, "Gloss") {
		t.Fatal("custom OR tree should hold via Dialect")
	}
	if set.Expected(rec(map[string]string{"Phonetic": ""}), "Phonetic") {
		t.Fatal("non_empty field rule should fail on empty")
	}
	if !set.Expected(r, "Unconfigured") {
		t.Fatal("unconfigured field defaults to always")
	}
}

func TestSetRejectsDoubleGovernance(t *testing.T) {
	cfg := config.Default()
	cfg.Groups = map[string][]string{"G": {"Phonetic"}}
	cfg.Rules = map[string]config.Rule{
		"G":        {Kind: "non_empty"},
		"Phonetic": {Kind: "always"},
	}
	if _, err := FromConfig(&cfg); err == nil {
		t.Fatal("expected field governed twice to be rejected")
	}
}
